// Package phone normalizes messaging-channel sender identifiers into the
// canonical E.164-ish form used as the donor identity key.
package phone

import (
	"fmt"
	"strings"
)

// Normalize strips the channel prefix (e.g. "whatsapp:+91...") and
// surrounding whitespace, returning the bare phone identifier.
func Normalize(from string) string {
	s := strings.TrimSpace(from)
	s = strings.TrimPrefix(s, "whatsapp:")
	return strings.TrimSpace(s)
}

// ChannelAddress converts a normalized phone back into the address the
// outbound channel expects.
func ChannelAddress(phone string) string {
	if strings.HasPrefix(phone, "whatsapp:") {
		return phone
	}
	return "whatsapp:" + phone
}

// SynthEmail builds a placeholder email for rows created from inbound
// contact. The users table has a NOT NULL email column, a leftover from the
// dashboard signup path.
func SynthEmail(phone string) string {
	return strings.ReplaceAll(phone, "+", "plus") + "@wa.local"
}

// SynthName builds a placeholder display name from the last digits of the
// phone, e.g. "WA 4521".
func SynthName(phone string) string {
	tail := phone
	if len(tail) > 4 {
		tail = tail[len(tail)-4:]
	}
	return fmt.Sprintf("WA %s", tail)
}
