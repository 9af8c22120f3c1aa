package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"bloodbridge.app/engage/internal/model"
)

type messageStore struct {
	pool *pgxpool.Pool
}

func newMessageStore(pool *pgxpool.Pool) MessageStore {
	return &messageStore{pool: pool}
}

func (s *messageStore) Create(ctx context.Context, msg *model.Message) error {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO messages (id, user_id, channel, direction, text, intent)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, user_id, channel, direction, text, intent, ts`,
		msg.ID, msg.UserID, msg.Channel, msg.Direction, msg.Text, msg.Intent)

	var stored model.Message
	err := row.Scan(&stored.ID, &stored.UserID, &stored.Channel,
		&stored.Direction, &stored.Text, &stored.Intent, &stored.Timestamp)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	*msg = stored
	return nil
}

func (s *messageStore) List(ctx context.Context, userID *int64, limit int) ([]model.Message, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, channel, direction, text, intent, ts
		 FROM messages
		 WHERE ($1::bigint IS NULL OR user_id = $1)
		 ORDER BY ts DESC
		 LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}
	defer rows.Close()

	var msgs []model.Message
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.ID, &m.UserID, &m.Channel, &m.Direction,
			&m.Text, &m.Intent, &m.Timestamp); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}
