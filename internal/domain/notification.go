package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type NotificationKind string

const (
	NotificationWelcomeEmail NotificationKind = "welcome_email"
)

type NotificationStatus string

const (
	NotificationPending NotificationStatus = "pending"
	NotificationSent    NotificationStatus = "sent"
)

// Notification is an outbound message waiting for the mail sender to pick it up.
type Notification struct {
	ID        uuid.UUID          `json:"id" gorm:"type:uuid;primary_key"`
	UserID    uuid.UUID          `json:"userId" gorm:"type:uuid;not null;index"`
	Kind      NotificationKind   `json:"kind" gorm:"size:50;not null"`
	Status    NotificationStatus `json:"status" gorm:"size:20;not null;index"`
	Payload   datatypes.JSON     `json:"payload"`
	CreatedAt time.Time          `json:"createdAt"`
}
