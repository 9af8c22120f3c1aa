package logger

import "context"

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields contains structured fields automatically added to all logs within a context.
// Fields flow through context enrichment so business context (request_id, donor_id,
// bridge_id) is included in every log statement without threading it by hand.
type LogFields struct {
	RequestID *int64  // blood request ID
	DonorID   *int64  // donor user ID
	BridgeID  *int64  // bridge (engagement) ID
	Phone     *string // normalized phone identifier of the contact
	Intent    *string // classified command intent (e.g. "confirm", "create-request")
	MessageID *string // redis stream message ID
	Component string  // component name, e.g. "engage.service.notifier"
}

// WithLogFields enriches context with structured log fields.
// Multiple calls merge fields, with newer non-nil/non-empty values taking precedence.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	existing := GetLogFields(ctx)
	merged := mergeFields(existing, fields)
	return context.WithValue(ctx, logFieldsKey, merged)
}

// GetLogFields retrieves log fields from context.
// Returns empty LogFields if none are set.
func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}

func mergeFields(existing, next LogFields) LogFields {
	result := existing

	if next.RequestID != nil {
		result.RequestID = next.RequestID
	}
	if next.DonorID != nil {
		result.DonorID = next.DonorID
	}
	if next.BridgeID != nil {
		result.BridgeID = next.BridgeID
	}
	if next.Phone != nil {
		result.Phone = next.Phone
	}
	if next.Intent != nil {
		result.Intent = next.Intent
	}
	if next.MessageID != nil {
		result.MessageID = next.MessageID
	}
	if next.Component != "" {
		result.Component = next.Component
	}

	return result
}

// Ptr is a helper to create a pointer from a value.
// Useful for setting LogFields inline: logger.WithLogFields(ctx, logger.LogFields{DonorID: logger.Ptr(id)})
func Ptr[T any](v T) *T {
	return &v
}

// Truncate truncates a string to maxLen characters, appending "..." if truncated.
// Useful for logging inbound message bodies without flooding the log.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
