package postgres

import (
	"log/slog"
	"time"

	"github.com/dom/visa-booking-website/internal/domain"
	"github.com/dom/visa-booking-website/internal/repository"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Models lists every table the service owns, in migration order.
var Models = []interface{}{
	&domain.User{},
	&domain.Notification{},
}

func NewConnection(databaseURL string, log *slog.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: logger.NewSlogLogger(log, logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
		// Maps unique violations to gorm.ErrDuplicatedKey.
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate creates or updates the schema, including the unique email index.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models...)
}

func NewRepositories(db *gorm.DB) *repository.Repositories {
	return &repository.Repositories{
		User:         NewUserRepository(db),
		Notification: NewNotificationRepository(db),
	}
}
