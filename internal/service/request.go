package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"bloodbridge.app/engage/common/id"
	"bloodbridge.app/engage/internal/model"
	"bloodbridge.app/engage/internal/store"
)

type CreateRequestParams struct {
	RequesterName  string
	RequesterPhone string
	BloodGroup     string
	Units          int
	Urgency        string
	Location       string
}

type RequestService interface {
	Create(ctx context.Context, params CreateRequestParams) (*model.Request, error)
	GetByID(ctx context.Context, id int64) (*model.Request, error)
	List(ctx context.Context, status *model.RequestStatus) ([]model.Request, error)
	ListRecentByRequester(ctx context.Context, phoneE164 string, limit int) ([]model.Request, error)
	UpdateStatus(ctx context.Context, id int64, status model.RequestStatus) (*model.Request, error)
}

type requestService struct {
	requestStore store.RequestStore
}

func NewRequestService(requestStore store.RequestStore) RequestService {
	return &requestService{requestStore: requestStore}
}

func (s *requestService) Create(ctx context.Context, params CreateRequestParams) (*model.Request, error) {
	bg := strings.ToUpper(strings.TrimSpace(params.BloodGroup))
	if !model.ValidBloodGroup(bg) {
		return nil, ErrInvalidBloodGroup
	}
	if params.Units < 1 {
		return nil, fmt.Errorf("unit count must be positive")
	}

	urgency := model.Urgency(strings.ToLower(strings.TrimSpace(params.Urgency)))
	if urgency == "" {
		urgency = model.UrgencyNormal
	}

	req := &model.Request{
		ID:             id.New(),
		RequesterName:  params.RequesterName,
		RequesterPhone: params.RequesterPhone,
		BloodGroup:     bg,
		Units:          params.Units,
		Urgency:        urgency,
		Location:       params.Location,
		Status:         model.RequestOpen,
	}

	if err := s.requestStore.Create(ctx, req); err != nil {
		slog.ErrorContext(ctx, "failed to create request",
			"error", err,
			"blood_group", bg,
		)
		return nil, fmt.Errorf("creating request: %w", err)
	}

	slog.InfoContext(ctx, "request created",
		"request_id", req.ID,
		"blood_group", req.BloodGroup,
		"units", req.Units,
		"urgency", req.Urgency,
	)
	return req, nil
}

func (s *requestService) GetByID(ctx context.Context, id int64) (*model.Request, error) {
	return s.requestStore.GetByID(ctx, id)
}

func (s *requestService) List(ctx context.Context, status *model.RequestStatus) ([]model.Request, error) {
	reqs, err := s.requestStore.List(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("listing requests: %w", err)
	}
	return reqs, nil
}

func (s *requestService) ListRecentByRequester(ctx context.Context, phoneE164 string, limit int) ([]model.Request, error) {
	if limit < 1 {
		limit = 5
	}
	reqs, err := s.requestStore.ListByRequesterPhone(ctx, phoneE164, limit)
	if err != nil {
		return nil, fmt.Errorf("listing requests by requester: %w", err)
	}
	return reqs, nil
}

// UpdateStatus sets the status directly. Forward-only transitions are a
// convention of the coordinator workflow, not enforced here.
func (s *requestService) UpdateStatus(ctx context.Context, id int64, status model.RequestStatus) (*model.Request, error) {
	if !model.ValidRequestStatus(status) {
		return nil, fmt.Errorf("unknown request status %q", status)
	}
	req, err := s.requestStore.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, fmt.Errorf("updating request status: %w", err)
	}
	return req, nil
}
