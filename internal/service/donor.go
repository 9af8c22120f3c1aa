package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"bloodbridge.app/engage/common/id"
	"bloodbridge.app/engage/common/phone"
	"bloodbridge.app/engage/internal/model"
	"bloodbridge.app/engage/internal/store"
)

// ErrInvalidBloodGroup is returned when a blood group does not match one of
// the 8 recognized values.
var ErrInvalidBloodGroup = fmt.Errorf("invalid blood group")

type DonorService interface {
	// EnsureFromPhone idempotently creates the contact's user row. Every
	// inbound command batch runs through this first because downstream
	// commands assume an identity row exists.
	EnsureFromPhone(ctx context.Context, phoneE164 string) (*model.User, error)
	OptIn(ctx context.Context, phoneE164 string) error
	SetBloodGroup(ctx context.Context, phoneE164, bloodGroup string) error
	SetLocation(ctx context.Context, phoneE164, location string) error
}

type donorService struct {
	userStore store.UserStore
}

func NewDonorService(userStore store.UserStore) DonorService {
	return &donorService{userStore: userStore}
}

func (s *donorService) EnsureFromPhone(ctx context.Context, phoneE164 string) (*model.User, error) {
	user := &model.User{
		ID:               id.New(),
		Name:             phone.SynthName(phoneE164),
		Email:            phone.SynthEmail(phoneE164),
		Phone:            phoneE164,
		OptedIn:          true,
		PreferredChannel: "whatsapp",
	}

	if err := s.userStore.Upsert(ctx, user); err != nil {
		slog.ErrorContext(ctx, "failed to upsert user from phone",
			"error", err,
			"phone", phoneE164,
		)
		return nil, fmt.Errorf("upserting user: %w", err)
	}

	return user, nil
}

func (s *donorService) OptIn(ctx context.Context, phoneE164 string) error {
	if err := s.userStore.SetOptIn(ctx, phoneE164, true); err != nil {
		return fmt.Errorf("setting opt-in: %w", err)
	}
	slog.InfoContext(ctx, "donor opted in", "phone", phoneE164)
	return nil
}

func (s *donorService) SetBloodGroup(ctx context.Context, phoneE164, bloodGroup string) error {
	bg := strings.ToUpper(strings.TrimSpace(bloodGroup))
	if !model.ValidBloodGroup(bg) {
		return ErrInvalidBloodGroup
	}
	if err := s.userStore.SetBloodGroup(ctx, phoneE164, bg); err != nil {
		return fmt.Errorf("setting blood group: %w", err)
	}
	return nil
}

func (s *donorService) SetLocation(ctx context.Context, phoneE164, location string) error {
	if err := s.userStore.SetLocation(ctx, phoneE164, location); err != nil {
		return fmt.Errorf("setting location: %w", err)
	}
	return nil
}
