package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dom/visa-booking-website/internal/domain"
	"github.com/dom/visa-booking-website/internal/notify"
	"github.com/dom/visa-booking-website/internal/password"
	"github.com/dom/visa-booking-website/internal/repository"
	"github.com/dom/visa-booking-website/internal/token"
	"github.com/google/uuid"
)

// AuthService issues sessions. Register and Login are the only producers of
// valid tokens.
type AuthService struct {
	users         repository.UserRepository
	hasher        password.Hasher
	tokens        *token.Codec
	notifier      notify.Notifier
	notifyTimeout time.Duration
	log           *slog.Logger

	// Compared against on unknown emails so both login failures cost a bcrypt run.
	dummyOnce sync.Once
	dummyHash string

	pending sync.WaitGroup
}

func NewAuthService(
	users repository.UserRepository,
	hasher password.Hasher,
	tokens *token.Codec,
	notifier notify.Notifier,
	notifyTimeout time.Duration,
	log *slog.Logger,
) *AuthService {
	if notifyTimeout <= 0 {
		notifyTimeout = 10 * time.Second
	}
	return &AuthService{
		users:         users,
		hasher:        hasher,
		tokens:        tokens,
		notifier:      notifier,
		notifyTimeout: notifyTimeout,
		log:           log,
	}
}

type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

type LoginInput struct {
	Email    string
	Password string
}

type AuthResult struct {
	User  *domain.User
	Token string
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	email := domain.NormalizeEmail(input.Email)

	// Friendlier error for the common case; the unique index decides races.
	_, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, ErrDuplicateEmail
	case !errors.Is(err, domain.ErrUserNotFound):
		return nil, fmt.Errorf("lookup email: %w", err)
	}

	hash, err := s.hasher.Hash(ctx, input.Password)
	if err != nil {
		return nil, hashingError(err)
	}

	now := time.Now()
	user := &domain.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	result, err := s.issue(user)
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "user registered", "user_id", user.ID)
	s.notifyRegistered(ctx, user)

	return result, nil
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	email := domain.NormalizeEmail(input.Email)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, fmt.Errorf("lookup email: %w", err)
		}
		if _, err := s.hasher.Verify(ctx, input.Password, s.dummyDigest(ctx)); err != nil {
			return nil, hashingError(err)
		}
		return nil, ErrInvalidCredentials
	}

	ok, err := s.hasher.Verify(ctx, input.Password, user.PasswordHash)
	if err != nil {
		return nil, hashingError(err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	return s.issue(user)
}

// Authenticate resolves the user behind a bearer token. Every token problem
// and a since-deleted user collapse into ErrUnauthorized; store outages do not.
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (*domain.User, error) {
	claims, err := s.tokens.Parse(tokenString)
	if err != nil {
		return nil, ErrUnauthorized
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("resolve user: %w", err)
	}

	return user, nil
}

// Wait blocks until in-flight registration notifications have finished.
func (s *AuthService) Wait() {
	s.pending.Wait()
}

func (s *AuthService) issue(user *domain.User) (*AuthResult, error) {
	signed, err := s.tokens.Issue(token.Identity{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	})
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &AuthResult{User: user, Token: signed}, nil
}

func (s *AuthService) notifyRegistered(ctx context.Context, user *domain.User) {
	if s.notifier == nil {
		return
	}

	u := user.Clone()
	base := context.WithoutCancel(ctx)

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()

		nctx, cancel := context.WithTimeout(base, s.notifyTimeout)
		defer cancel()

		if err := s.notifier.UserRegistered(nctx, u); err != nil {
			s.log.WarnContext(nctx, "registration notification failed", "user_id", u.ID, "error", err)
		}
	}()
}

func (s *AuthService) dummyDigest(ctx context.Context) string {
	s.dummyOnce.Do(func() {
		h, err := s.hasher.Hash(context.WithoutCancel(ctx), uuid.NewString())
		if err != nil {
			s.log.WarnContext(ctx, "could not prepare dummy digest", "error", err)
			return
		}
		s.dummyHash = h
	})
	return s.dummyHash
}

func hashingError(err error) error {
	if errors.Is(err, password.ErrHashingUnavailable) {
		return fmt.Errorf("%w: %v", ErrTransient, err)
	}
	return fmt.Errorf("hash password: %w", err)
}
