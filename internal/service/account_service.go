package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dom/visa-booking-website/internal/domain"
	"github.com/dom/visa-booking-website/internal/password"
	"github.com/dom/visa-booking-website/internal/repository"
)

// AccountService mutates the account of a user already resolved by the
// access gate. It never takes a user id from request input.
type AccountService struct {
	users  repository.UserRepository
	hasher password.Hasher
	log    *slog.Logger
}

func NewAccountService(users repository.UserRepository, hasher password.Hasher, log *slog.Logger) *AccountService {
	return &AccountService{
		users:  users,
		hasher: hasher,
		log:    log,
	}
}

type UpdateProfileInput struct {
	FirstName string
	LastName  string
	Email     string
}

type ChangePasswordInput struct {
	CurrentPassword string
	NewPassword     string
}

func (s *AccountService) UpdateProfile(ctx context.Context, user *domain.User, input UpdateProfileInput) (*domain.User, error) {
	email := domain.NormalizeEmail(input.Email)

	if email != user.Email {
		taken, err := s.users.EmailTakenByOther(ctx, email, user.ID)
		if err != nil {
			return nil, fmt.Errorf("check email: %w", err)
		}
		if taken {
			return nil, ErrEmailTaken
		}
	}

	updated, err := s.users.UpdateProfile(ctx, user.ID, email, input.FirstName, input.LastName)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrDuplicateEmail):
			return nil, ErrEmailTaken
		case errors.Is(err, domain.ErrUserNotFound):
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}

	s.log.InfoContext(ctx, "profile updated", "user_id", user.ID, "email_changed", email != user.Email)
	return updated, nil
}

// ChangePassword re-verifies the current password before replacing the hash,
// even though the caller already holds a valid session.
func (s *AccountService) ChangePassword(ctx context.Context, user *domain.User, input ChangePasswordInput) error {
	current, err := s.users.GetByID(ctx, user.ID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return ErrUnauthorized
		}
		return fmt.Errorf("load user: %w", err)
	}

	ok, err := s.hasher.Verify(ctx, input.CurrentPassword, current.PasswordHash)
	if err != nil {
		return hashingError(err)
	}
	if !ok {
		return ErrInvalidCurrentPassword
	}

	hash, err := s.hasher.Hash(ctx, input.NewPassword)
	if err != nil {
		return hashingError(err)
	}

	if err := s.users.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return ErrUnauthorized
		}
		return fmt.Errorf("store password: %w", err)
	}

	s.log.InfoContext(ctx, "password changed", "user_id", user.ID)
	return nil
}
