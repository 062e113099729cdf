// Package session stores server-side login sessions keyed by bearer token.
package session

import (
	"context"
	"fmt"
	"time"
)

// ErrNotFound is returned when a token does not map to a live session.
var ErrNotFound = fmt.Errorf("session not found")

// Session is the identity attached to a bearer token.
type Session struct {
	Username   string `json:"username"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	MerchantID string `json:"merchant_id"`
	IssuedAt   int64  `json:"issued_at"`
}

// Store persists sessions for the lifetime of a token.
type Store interface {
	Save(ctx context.Context, token string, s Session, ttl time.Duration) error
	// Lookup returns the session for the token, or ErrNotFound.
	Lookup(ctx context.Context, token string) (*Session, error)
	Delete(ctx context.Context, token string) error
}
