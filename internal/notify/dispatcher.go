package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/dom/visa-booking-website/internal/domain"
	"github.com/dom/visa-booking-website/internal/repository"
)

// Sender hands a notification to the mail provider.
type Sender interface {
	Send(ctx context.Context, n *domain.Notification) error
}

// LogSender is the mocked mail provider: it logs what would be sent.
type LogSender struct {
	log *slog.Logger
}

func NewLogSender(log *slog.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(ctx context.Context, n *domain.Notification) error {
	var p WelcomePayload
	if err := json.Unmarshal(n.Payload, &p); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	s.log.InfoContext(ctx, "email sent", "kind", n.Kind, "notification_id", n.ID, "user_id", n.UserID)
	return nil
}

// Dispatcher drains pending notifications from the outbox.
type Dispatcher struct {
	repo      repository.NotificationRepository
	sender    Sender
	log       *slog.Logger
	interval  time.Duration
	batchSize int
}

func NewDispatcher(repo repository.NotificationRepository, sender Sender, log *slog.Logger, interval time.Duration) *Dispatcher {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Dispatcher{
		repo:      repo,
		sender:    sender,
		log:       log,
		interval:  interval,
		batchSize: 50,
	}
}

// Run polls until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := d.DrainOnce(ctx); err != nil && ctx.Err() == nil {
				d.log.ErrorContext(ctx, "drain notifications failed", "error", err)
			}
		}
	}
}

// DrainOnce sends one batch and returns how many were marked sent. A failed
// send leaves the notification pending for the next pass.
func (d *Dispatcher) DrainOnce(ctx context.Context) (int, error) {
	pending, err := d.repo.ListPending(ctx, d.batchSize)
	if err != nil {
		return 0, fmt.Errorf("list pending: %w", err)
	}

	sent := 0
	for _, n := range pending {
		if err := d.sender.Send(ctx, n); err != nil {
			d.log.WarnContext(ctx, "send notification failed", "notification_id", n.ID, "error", err)
			continue
		}
		if err := d.repo.MarkSent(ctx, n.ID); err != nil {
			return sent, fmt.Errorf("mark sent: %w", err)
		}
		sent++
	}
	return sent, nil
}
