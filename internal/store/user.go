package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"bloodbridge.app/engage/internal/model"
)

const userColumns = `id, name, email, phone_e164, blood_group, location, wa_opt_in,
	preferred_channel, gender, ml_score, days_since_last_donation,
	frequency_in_days, calls_to_donations_ratio, donated_earlier,
	created_at, updated_at`

type userStore struct {
	pool *pgxpool.Pool
}

func newUserStore(pool *pgxpool.Pool) UserStore {
	return &userStore{pool: pool}
}

func (s *userStore) GetByID(ctx context.Context, id int64) (*model.User, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (s *userStore) GetByPhone(ctx context.Context, phone string) (*model.User, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE phone_e164 = $1`, phone)
	return scanUser(row)
}

func (s *userStore) Upsert(ctx context.Context, user *model.User) error {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO users (id, name, email, phone_e164, wa_opt_in, preferred_channel)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (phone_e164) DO UPDATE
		   SET wa_opt_in = EXCLUDED.wa_opt_in,
		       preferred_channel = EXCLUDED.preferred_channel,
		       updated_at = NOW()
		 RETURNING `+userColumns,
		user.ID, user.Name, user.Email, user.Phone, user.OptedIn, user.PreferredChannel)

	stored, err := scanUser(row)
	if err != nil {
		return err
	}
	*user = *stored
	return nil
}

func (s *userStore) SetOptIn(ctx context.Context, phone string, optedIn bool) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE users SET wa_opt_in = $1, updated_at = NOW() WHERE phone_e164 = $2`,
		optedIn, phone)
	return err
}

func (s *userStore) SetBloodGroup(ctx context.Context, phone, bloodGroup string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE users SET blood_group = $1, updated_at = NOW() WHERE phone_e164 = $2`,
		bloodGroup, phone)
	return err
}

func (s *userStore) SetLocation(ctx context.Context, phone, location string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE users SET location = $1, updated_at = NOW() WHERE phone_e164 = $2`,
		location, phone)
	return err
}

func (s *userStore) SetPropensityScore(ctx context.Context, id int64, score float64) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE users SET ml_score = $1, updated_at = NOW() WHERE id = $2`,
		score, id)
	return err
}

func (s *userStore) ListCandidates(ctx context.Context, filter CandidateFilter) ([]model.User, error) {
	var locPattern *string
	if filter.Location != nil && *filter.Location != "" {
		p := "%" + *filter.Location + "%"
		locPattern = &p
	}

	rows, err := s.pool.Query(ctx,
		`SELECT `+userColumns+`
		 FROM users
		 WHERE wa_opt_in = TRUE
		   AND phone_e164 IS NOT NULL AND phone_e164 <> ''
		   AND ($1::text IS NULL OR blood_group = $1)
		   AND ($2::text IS NULL OR location ILIKE $2)
		 ORDER BY COALESCE(ml_score, 0.0) DESC, created_at DESC
		 LIMIT $3`,
		filter.BloodGroup, locPattern, filter.Limit)
	if err != nil {
		return nil, fmt.Errorf("querying candidates: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*model.User, error) {
	var u model.User
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.Phone, &u.BloodGroup, &u.Location,
		&u.OptedIn, &u.PreferredChannel, &u.Gender, &u.PropensityScore,
		&u.DaysSinceLastDonation, &u.FrequencyInDays, &u.CallsToDonationsRatio,
		&u.DonatedEarlier, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}
