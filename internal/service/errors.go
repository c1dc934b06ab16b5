package service

import (
	"errors"

	"github.com/dom/visa-booking-website/internal/domain"
)

var (
	// ErrInvalidCredentials covers both unknown email and wrong password.
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrDuplicateEmail         = domain.ErrDuplicateEmail
	ErrEmailTaken             = errors.New("email is already in use")
	ErrInvalidCurrentPassword = errors.New("current password is incorrect")
	// ErrUnauthorized is the single outcome of a failed token check.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrTransient marks failures the client may retry, such as a hashing
	// deadline. It never means the credentials were wrong.
	ErrTransient = errors.New("temporarily unavailable")
)
