// Package session stores the opaque tokens of the identity provider:
// refresh tokens, password reset tokens and magic-link tokens.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

type Kind string

const (
	KindRefresh   Kind = "refresh"
	KindReset     Kind = "reset"
	KindMagicLink Kind = "magic"
)

const (
	DefaultResetTTL     = time.Hour
	DefaultMagicLinkTTL = 15 * time.Minute
)

// ErrTokenNotFound is returned for unknown, expired or already consumed tokens.
var ErrTokenNotFound = errors.New("token not found")

// Store issues one-time tokens bound to a user ID.
type Store interface {
	Issue(ctx context.Context, kind Kind, userID string, ttl time.Duration) (string, error)
	// Consume returns the user ID bound to token and invalidates it.
	Consume(ctx context.Context, kind Kind, token string) (string, error)
	Revoke(ctx context.Context, kind Kind, token string) error
	// RevokeAll invalidates every token of kind issued to userID.
	RevokeAll(ctx context.Context, kind Kind, userID string) error
}

// NewToken is the default token generator.
func NewToken() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
