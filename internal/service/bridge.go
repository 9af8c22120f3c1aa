package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"bloodbridge.app/engage/common/id"
	"bloodbridge.app/engage/common/logger"
	"bloodbridge.app/engage/internal/model"
	"bloodbridge.app/engage/internal/store"
)

// ErrNoPending is returned when a donor replies but has no pending bridge.
// Callers answer with an informational reply, never an error.
var ErrNoPending = errors.New("no pending bridge")

// ReplyAction is a donor's answer to an alert.
type ReplyAction string

const (
	ReplyConfirm ReplyAction = "confirm"
	ReplyDecline ReplyAction = "decline"
)

type BridgeService interface {
	Create(ctx context.Context, requestID, donorUserID int64, notes *string) (*model.Bridge, error)
	GetByID(ctx context.Context, bridgeID int64) (*model.Bridge, error)
	// Resolve applies the donor's reply to their single most recent pending
	// bridge. Exactly one bridge transitions per reply even if the invariant
	// was violated and several are pending.
	Resolve(ctx context.Context, donorPhone string, action ReplyAction) (*model.Bridge, error)
	UpdateStatus(ctx context.Context, bridgeID int64, status model.BridgeStatus) (*model.Bridge, error)
	ListByRequest(ctx context.Context, requestID int64) ([]model.Bridge, error)
}

type bridgeService struct {
	bridgeStore store.BridgeStore
}

func NewBridgeService(bridgeStore store.BridgeStore) BridgeService {
	return &bridgeService{bridgeStore: bridgeStore}
}

func (s *bridgeService) Create(ctx context.Context, requestID, donorUserID int64, notes *string) (*model.Bridge, error) {
	bridge := &model.Bridge{
		ID:          id.New(),
		RequestID:   requestID,
		DonorUserID: donorUserID,
		Status:      model.BridgePending,
		Notes:       notes,
	}

	if err := s.bridgeStore.Create(ctx, bridge); err != nil {
		return nil, fmt.Errorf("creating bridge: %w", err)
	}

	slog.InfoContext(ctx, "bridge created",
		"bridge_id", bridge.ID,
		"request_id", requestID,
		"donor_id", donorUserID,
	)
	return bridge, nil
}

func (s *bridgeService) GetByID(ctx context.Context, bridgeID int64) (*model.Bridge, error) {
	return s.bridgeStore.GetByID(ctx, bridgeID)
}

func (s *bridgeService) Resolve(ctx context.Context, donorPhone string, action ReplyAction) (*model.Bridge, error) {
	pending, err := s.bridgeStore.LatestPendingByPhone(ctx, donorPhone)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNoPending
		}
		return nil, fmt.Errorf("finding pending bridge: %w", err)
	}

	status := model.BridgeConfirmed
	if action == ReplyDecline {
		status = model.BridgeDeclined
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		BridgeID:  logger.Ptr(pending.ID),
		RequestID: logger.Ptr(pending.RequestID),
		DonorID:   logger.Ptr(pending.DonorUserID),
	})

	updated, err := s.bridgeStore.UpdateStatus(ctx, pending.ID, status, confirmationTime(status))
	if err != nil {
		return nil, fmt.Errorf("updating bridge status: %w", err)
	}

	slog.InfoContext(ctx, "bridge resolved", "status", status)
	return updated, nil
}

func (s *bridgeService) UpdateStatus(ctx context.Context, bridgeID int64, status model.BridgeStatus) (*model.Bridge, error) {
	if !model.ValidBridgeStatus(status) {
		return nil, fmt.Errorf("unknown bridge status %q", status)
	}
	bridge, err := s.bridgeStore.UpdateStatus(ctx, bridgeID, status, confirmationTime(status))
	if err != nil {
		return nil, fmt.Errorf("updating bridge status: %w", err)
	}
	return bridge, nil
}

// confirmationTime returns the timestamp to stamp onto a confirming
// transition, nil for every other status.
func confirmationTime(status model.BridgeStatus) *time.Time {
	if status != model.BridgeConfirmed {
		return nil
	}
	now := time.Now().UTC()
	return &now
}

func (s *bridgeService) ListByRequest(ctx context.Context, requestID int64) ([]model.Bridge, error) {
	bridges, err := s.bridgeStore.ListByRequest(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("listing bridges: %w", err)
	}
	return bridges, nil
}
