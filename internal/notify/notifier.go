// Package notify delivers the fire-and-forget messages that follow a
// successful registration.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/dom/visa-booking-website/internal/domain"
	"github.com/dom/visa-booking-website/internal/repository"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Notifier interface {
	UserRegistered(ctx context.Context, user *domain.User) error
}

// WelcomePayload is the body stored with a welcome-email notification.
type WelcomePayload struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// OutboxNotifier records a pending notification for the Dispatcher to send.
type OutboxNotifier struct {
	repo repository.NotificationRepository
	log  *slog.Logger
}

func NewOutboxNotifier(repo repository.NotificationRepository, log *slog.Logger) *OutboxNotifier {
	return &OutboxNotifier{repo: repo, log: log}
}

func (n *OutboxNotifier) UserRegistered(ctx context.Context, user *domain.User) error {
	payload, err := json.Marshal(WelcomePayload{
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	})
	if err != nil {
		return fmt.Errorf("encode welcome payload: %w", err)
	}

	notification := &domain.Notification{
		ID:        uuid.New(),
		UserID:    user.ID,
		Kind:      domain.NotificationWelcomeEmail,
		Status:    domain.NotificationPending,
		Payload:   datatypes.JSON(payload),
		CreatedAt: time.Now(),
	}
	if err := n.repo.Create(ctx, notification); err != nil {
		return fmt.Errorf("store notification: %w", err)
	}

	n.log.DebugContext(ctx, "welcome email queued", "user_id", user.ID, "notification_id", notification.ID)
	return nil
}

// LogNotifier only logs; used when no outbox is configured.
type LogNotifier struct {
	log *slog.Logger
}

func NewLogNotifier(log *slog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) UserRegistered(ctx context.Context, user *domain.User) error {
	n.log.InfoContext(ctx, "user registered", "user_id", user.ID)
	return nil
}
