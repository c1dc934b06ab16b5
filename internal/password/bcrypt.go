// Package password hashes and verifies user credentials with bcrypt.
package password

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the work factor used for stored credentials.
const DefaultCost = 10

// MaxLength is the longest password bcrypt will hash without truncation.
const MaxLength = 72

var (
	// ErrEmptyPassword is returned by Hash for an empty plaintext.
	ErrEmptyPassword = errors.New("password must not be empty")
	// ErrHashingUnavailable means the caller's deadline elapsed before bcrypt
	// finished. It is transient and never means the password was wrong.
	ErrHashingUnavailable = errors.New("password hashing unavailable")
)

type Hasher interface {
	Hash(ctx context.Context, plaintext string) (string, error)
	// Verify reports whether plaintext matches digest. A malformed digest is a
	// mismatch, not an error; err is only set for ErrHashingUnavailable.
	Verify(ctx context.Context, plaintext, digest string) (bool, error)
}

type BcryptHasher struct {
	cost int
}

func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Cost() int {
	return h.cost
}

func (h *BcryptHasher) Hash(ctx context.Context, plaintext string) (string, error) {
	if plaintext == "" {
		return "", ErrEmptyPassword
	}
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrHashingUnavailable, err)
	}

	type result struct {
		digest []byte
		err    error
	}
	done := make(chan result, 1)
	go func() {
		d, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
		done <- result{digest: d, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%w: %v", ErrHashingUnavailable, ctx.Err())
	case r := <-done:
		if r.err != nil {
			return "", fmt.Errorf("hash password: %w", r.err)
		}
		return string(r.digest), nil
	}
}

func (h *BcryptHasher) Verify(ctx context.Context, plaintext, digest string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("%w: %v", ErrHashingUnavailable, err)
	}
	if digest == "" {
		return false, nil
	}

	done := make(chan error, 1)
	go func() {
		done <- bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext))
	}()

	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%w: %v", ErrHashingUnavailable, ctx.Err())
	case err := <-done:
		// Mismatch, malformed digest and unsupported version all read as "no".
		return err == nil, nil
	}
}
