package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dom/visa-booking-website/internal/domain"
	"github.com/dom/visa-booking-website/internal/repository"
	"github.com/google/uuid"
)

type notificationRepository struct {
	mu    sync.Mutex
	items map[uuid.UUID]*domain.Notification
}

func NewNotificationRepository() *notificationRepository {
	return &notificationRepository{items: make(map[uuid.UUID]*domain.Notification)}
}

var _ repository.NotificationRepository = (*notificationRepository)(nil)

func (r *notificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	c := *n
	r.items[n.ID] = &c
	return nil
}

func (r *notificationRepository) ListPending(ctx context.Context, limit int) ([]*domain.Notification, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*domain.Notification
	for _, n := range r.items {
		if n.Status == domain.NotificationPending {
			c := *n
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *notificationRepository) MarkSent(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.items[id]
	if !ok {
		return repository.ErrNotFound
	}
	n.Status = domain.NotificationSent
	return nil
}

// NewRepositories returns a fresh, empty set of in-memory repositories.
func NewRepositories() *repository.Repositories {
	return &repository.Repositories{
		User:         NewUserRepository(),
		Notification: NewNotificationRepository(),
	}
}
