package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	Email        string    `json:"email" gorm:"uniqueIndex;size:254;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	FirstName    string    `json:"firstName" gorm:"size:100;not null"`
	LastName     string    `json:"lastName" gorm:"size:100;not null"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// NormalizeEmail is applied before every lookup and write so that uniqueness
// and login are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Clone returns a copy that shares no memory with u.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
