// Package memory holds map-backed repositories for tests and local development.
// Each repository is an explicitly constructed instance; nothing is shared at
// package level.
package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dom/visa-booking-website/internal/domain"
	"github.com/dom/visa-booking-website/internal/repository"
	"github.com/google/uuid"
)

type userRepository struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]*domain.User
	byEmail map[string]uuid.UUID
}

func NewUserRepository() *userRepository {
	return &userRepository{
		byID:    make(map[uuid.UUID]*domain.User),
		byEmail: make(map[string]uuid.UUID),
	}
}

var _ repository.UserRepository = (*userRepository)(nil)

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byEmail[user.Email]; taken {
		return domain.ErrDuplicateEmail
	}

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = now
	}

	r.byID[user.ID] = user.Clone()
	r.byEmail[user.Email] = user.ID
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u.Clone(), nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return r.byID[id].Clone(), nil
}

func (r *userRepository) EmailTakenByOther(ctx context.Context, email string, id uuid.UUID) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	owner, ok := r.byEmail[email]
	return ok && owner != id, nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, id uuid.UUID, email, firstName, lastName string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if owner, taken := r.byEmail[email]; taken && owner != id {
		return nil, domain.ErrDuplicateEmail
	}

	delete(r.byEmail, u.Email)
	u.Email = email
	u.FirstName = firstName
	u.LastName = lastName
	u.UpdatedAt = time.Now()
	r.byEmail[email] = id

	return u.Clone(), nil
}

func (r *userRepository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, passwordHash string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if passwordHash == "" {
		return errors.New("refusing to store an empty password hash")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	u.UpdatedAt = time.Now()
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	delete(r.byEmail, u.Email)
	delete(r.byID, id)
	return nil
}
