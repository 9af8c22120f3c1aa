package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"bloodbridge.app/engage/internal/model"
)

const bridgeColumns = `id, request_id, donor_user_id, status, contacted_at, confirmed_at, notes`

type bridgeStore struct {
	pool *pgxpool.Pool
}

func newBridgeStore(pool *pgxpool.Pool) BridgeStore {
	return &bridgeStore{pool: pool}
}

func (s *bridgeStore) GetByID(ctx context.Context, id int64) (*model.Bridge, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+bridgeColumns+` FROM bridges WHERE id = $1`, id)
	return scanBridge(row)
}

func (s *bridgeStore) Create(ctx context.Context, bridge *model.Bridge) error {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO bridges (id, request_id, donor_user_id, status, contacted_at, notes)
		 VALUES ($1, $2, $3, $4, NOW(), $5)
		 RETURNING `+bridgeColumns,
		bridge.ID, bridge.RequestID, bridge.DonorUserID, bridge.Status, bridge.Notes)

	stored, err := scanBridge(row)
	if err != nil {
		return err
	}
	*bridge = *stored
	return nil
}

// LatestPendingByPhone joins through users so callers can resolve a reply
// without first loading the donor row.
func (s *bridgeStore) LatestPendingByPhone(ctx context.Context, phone string) (*model.Bridge, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT b.id, b.request_id, b.donor_user_id, b.status, b.contacted_at, b.confirmed_at, b.notes
		 FROM bridges b
		 JOIN users u ON u.id = b.donor_user_id
		 WHERE u.phone_e164 = $1 AND b.status = 'pending'
		 ORDER BY b.id DESC
		 LIMIT 1`,
		phone)
	return scanBridge(row)
}

func (s *bridgeStore) UpdateStatus(ctx context.Context, id int64, status model.BridgeStatus, confirmedAt *time.Time) (*model.Bridge, error) {
	// An existing confirmed_at is never overwritten.
	row := s.pool.QueryRow(ctx,
		`UPDATE bridges
		 SET status = $1,
		     confirmed_at = COALESCE(confirmed_at, $2)
		 WHERE id = $3
		 RETURNING `+bridgeColumns,
		status, confirmedAt, id)
	return scanBridge(row)
}

func (s *bridgeStore) ListByRequest(ctx context.Context, requestID int64) ([]model.Bridge, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+bridgeColumns+` FROM bridges WHERE request_id = $1 ORDER BY id DESC`,
		requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bridges []model.Bridge
	for rows.Next() {
		b, err := scanBridge(rows)
		if err != nil {
			return nil, err
		}
		bridges = append(bridges, *b)
	}
	return bridges, rows.Err()
}

func scanBridge(row rowScanner) (*model.Bridge, error) {
	var b model.Bridge
	err := row.Scan(
		&b.ID, &b.RequestID, &b.DonorUserID, &b.Status,
		&b.ContactedAt, &b.ConfirmedAt, &b.Notes,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}
