package repository

import (
	"context"
	"errors"

	"github.com/dom/visa-booking-website/internal/domain"
	"github.com/google/uuid"
)

// ErrNotFound is returned for missing rows other than users.
var ErrNotFound = errors.New("record not found")

// UserRepository is the credential store. Implementations return
// domain.ErrUserNotFound for missing rows and domain.ErrDuplicateEmail when a
// write would give two users the same email; the storage-level unique
// constraint is the authority for the latter.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// EmailTakenByOther reports whether another user than id owns email.
	EmailTakenByOther(ctx context.Context, email string, id uuid.UUID) (bool, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, email, firstName, lastName string) (*domain.User, error)
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, passwordHash string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	ListPending(ctx context.Context, limit int) ([]*domain.Notification, error)
	MarkSent(ctx context.Context, id uuid.UUID) error
}

type Repositories struct {
	User         UserRepository
	Notification NotificationRepository
}
