package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"bloodbridge.app/engage/internal/model"
)

const requestColumns = `id, requester_name, requester_phone, blood_group, units,
	urgency, location, status, created_at`

type requestStore struct {
	pool *pgxpool.Pool
}

func newRequestStore(pool *pgxpool.Pool) RequestStore {
	return &requestStore{pool: pool}
}

func (s *requestStore) GetByID(ctx context.Context, id int64) (*model.Request, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+requestColumns+` FROM requests WHERE id = $1`, id)
	return scanRequest(row)
}

func (s *requestStore) Create(ctx context.Context, req *model.Request) error {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO requests (id, requester_name, requester_phone, blood_group, units, urgency, location, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING `+requestColumns,
		req.ID, req.RequesterName, req.RequesterPhone, req.BloodGroup,
		req.Units, req.Urgency, req.Location, req.Status)

	stored, err := scanRequest(row)
	if err != nil {
		return err
	}
	*req = *stored
	return nil
}

func (s *requestStore) List(ctx context.Context, status *model.RequestStatus) ([]model.Request, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+requestColumns+`
		 FROM requests
		 WHERE ($1::text IS NULL OR status = $1)
		 ORDER BY created_at DESC`,
		status)
	if err != nil {
		return nil, fmt.Errorf("querying requests: %w", err)
	}
	defer rows.Close()
	return collectRequests(rows)
}

func (s *requestStore) ListByRequesterPhone(ctx context.Context, phone string, limit int) ([]model.Request, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+requestColumns+`
		 FROM requests
		 WHERE requester_phone = $1
		 ORDER BY id DESC
		 LIMIT $2`,
		phone, limit)
	if err != nil {
		return nil, fmt.Errorf("querying requests by requester: %w", err)
	}
	defer rows.Close()
	return collectRequests(rows)
}

func (s *requestStore) UpdateStatus(ctx context.Context, id int64, status model.RequestStatus) (*model.Request, error) {
	row := s.pool.QueryRow(ctx,
		`UPDATE requests SET status = $1 WHERE id = $2 RETURNING `+requestColumns,
		status, id)
	return scanRequest(row)
}

func collectRequests(rows pgx.Rows) ([]model.Request, error) {
	var reqs []model.Request
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, *r)
	}
	return reqs, rows.Err()
}

func scanRequest(row rowScanner) (*model.Request, error) {
	var r model.Request
	err := row.Scan(
		&r.ID, &r.RequesterName, &r.RequesterPhone, &r.BloodGroup,
		&r.Units, &r.Urgency, &r.Location, &r.Status, &r.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &r, nil
}
