package service

import (
	"fmt"
	"log/slog"

	"github.com/dom/visa-booking-website/internal/config"
	"github.com/dom/visa-booking-website/internal/logging"
	"github.com/dom/visa-booking-website/internal/notify"
	"github.com/dom/visa-booking-website/internal/password"
	"github.com/dom/visa-booking-website/internal/repository"
	"github.com/dom/visa-booking-website/internal/token"
)

type Services struct {
	Auth    *AuthService
	Account *AccountService
}

func NewServices(repos *repository.Repositories, cfg *config.Config, log *slog.Logger) (*Services, error) {
	codec, err := token.NewCodec([]byte(cfg.JWTSecret), cfg.TokenTTL(), cfg.JWTIssuer)
	if err != nil {
		return nil, fmt.Errorf("token codec: %w", err)
	}

	hasher := password.NewBcryptHasher(cfg.BcryptCost)

	var notifier notify.Notifier
	switch cfg.Notifier {
	case config.NotifierLog:
		notifier = notify.NewLogNotifier(logging.Component(log, "notify"))
	default:
		if repos.Notification == nil {
			return nil, fmt.Errorf("notifier %q needs a notification repository", config.NotifierOutbox)
		}
		notifier = notify.NewOutboxNotifier(repos.Notification, logging.Component(log, "notify"))
	}

	return &Services{
		Auth:    NewAuthService(repos.User, hasher, codec, notifier, cfg.NotifyTimeout, logging.Component(log, "auth")),
		Account: NewAccountService(repos.User, hasher, logging.Component(log, "account")),
	}, nil
}
