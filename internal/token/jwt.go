// Package token issues and parses the signed session tokens handed out at
// login and registration.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalid is the only failure Parse reports. Malformed, tampered, expired
// and wrongly-issued tokens all look the same to callers.
var ErrInvalid = errors.New("invalid token")

var ErrMissingSecret = errors.New("token signing secret is required")

// Identity is the snapshot of a user embedded in a token.
type Identity struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
}

// Claims is the full JWT payload: the identity snapshot plus the registered
// claims (sub mirrors id, jti is random per token).
type Claims struct {
	UserID    uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	jwt.RegisteredClaims
}

func (c *Claims) Identity() Identity {
	return Identity{
		ID:        c.UserID,
		Email:     c.Email,
		FirstName: c.FirstName,
		LastName:  c.LastName,
	}
}

type Codec struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
	parser *jwt.Parser
}

type Option func(*Codec)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) {
		c.now = now
	}
}

func NewCodec(secret []byte, ttl time.Duration, issuer string, opts ...Option) (*Codec, error) {
	if len(secret) == 0 {
		return nil, ErrMissingSecret
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("token ttl must be positive, got %s", ttl)
	}

	c := &Codec{
		secret: secret,
		ttl:    ttl,
		issuer: issuer,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(func() time.Time { return c.now() }),
	}
	if issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(issuer))
	}
	c.parser = jwt.NewParser(parserOpts...)

	return c, nil
}

func (c *Codec) TTL() time.Duration {
	return c.ttl
}

// Issue signs a token for id that expires after the codec's TTL.
func (c *Codec) Issue(id Identity) (string, error) {
	if id.ID == uuid.Nil {
		return "", errors.New("token subject must not be empty")
	}

	now := c.now()
	claims := &Claims{
		UserID:    id.ID,
		Email:     id.Email,
		FirstName: id.FirstName,
		LastName:  id.LastName,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   id.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies tokenString and returns its claims, or ErrInvalid.
func (c *Codec) Parse(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrInvalid
	}

	claims := &Claims{}
	tok, err := c.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return c.secret, nil
	})
	if err != nil || !tok.Valid {
		return nil, ErrInvalid
	}

	if claims.UserID == uuid.Nil || claims.Subject != claims.UserID.String() {
		return nil, ErrInvalid
	}

	return claims, nil
}
