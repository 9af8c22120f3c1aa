package store

import (
	"context"
	"errors"
	"time"

	"bloodbridge.app/engage/internal/model"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// CandidateFilter narrows the donor candidate query for ranking.
type CandidateFilter struct {
	BloodGroup *string // exact match when set
	Location   *string // case-insensitive substring match when set
	Limit      int
}

// UserStore defines the contract for user/donor data access
type UserStore interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByPhone(ctx context.Context, phone string) (*model.User, error)
	// Upsert inserts by unique phone, or on conflict re-enables opt-in and
	// the preferred channel. The stored row is written back into user.
	Upsert(ctx context.Context, user *model.User) error
	SetOptIn(ctx context.Context, phone string, optedIn bool) error
	SetBloodGroup(ctx context.Context, phone, bloodGroup string) error
	SetLocation(ctx context.Context, phone, location string) error
	SetPropensityScore(ctx context.Context, id int64, score float64) error
	// ListCandidates returns opted-in donors with a contact phone, ordered
	// by stored propensity then recency of creation.
	ListCandidates(ctx context.Context, filter CandidateFilter) ([]model.User, error)
}

// RequestStore defines the contract for blood-request data access
type RequestStore interface {
	GetByID(ctx context.Context, id int64) (*model.Request, error)
	Create(ctx context.Context, req *model.Request) error
	List(ctx context.Context, status *model.RequestStatus) ([]model.Request, error)
	ListByRequesterPhone(ctx context.Context, phone string, limit int) ([]model.Request, error)
	UpdateStatus(ctx context.Context, id int64, status model.RequestStatus) (*model.Request, error)
}

// BridgeStore defines the contract for engagement data access
type BridgeStore interface {
	GetByID(ctx context.Context, id int64) (*model.Bridge, error)
	Create(ctx context.Context, bridge *model.Bridge) error
	// LatestPendingByPhone returns the most recently created pending bridge
	// for the donor identified by phone, or ErrNotFound.
	LatestPendingByPhone(ctx context.Context, phone string) (*model.Bridge, error)
	// UpdateStatus applies the transition. A non-nil confirmedAt stamps the
	// confirmation time; the first stamp wins on repeated confirms.
	UpdateStatus(ctx context.Context, id int64, status model.BridgeStatus, confirmedAt *time.Time) (*model.Bridge, error)
	ListByRequest(ctx context.Context, requestID int64) ([]model.Bridge, error)
}

// MessageStore defines the contract for the append-only message log
type MessageStore interface {
	Create(ctx context.Context, msg *model.Message) error
	List(ctx context.Context, userID *int64, limit int) ([]model.Message, error)
}
