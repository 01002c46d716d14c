// Package auth defines the authentication seam the sync engine depends on.
// The engine only needs to know whether a user is signed in and who they
// are; the identity backend itself is a black box.
package auth

import (
	"context"
	"errors"
)

// ErrNotAuthenticated is returned when an operation requires a signed-in
// user and there is none. Sync fails fast on it without performing any I/O.
var ErrNotAuthenticated = errors.New("user not authenticated")

// Provider exposes the current authentication state.
type Provider interface {
	// IsAuthenticated reports whether a user is currently signed in.
	IsAuthenticated(ctx context.Context) bool

	// CurrentUserID returns the signed-in user's stable identifier,
	// or ErrNotAuthenticated when nobody is signed in.
	CurrentUserID(ctx context.Context) (string, error)
}

// StaticProvider is a Provider fixed to one user id, for self-hosted
// single-user deployments where identity comes from configuration.
// An empty user id means signed out.
type StaticProvider struct {
	UserID string
}

// IsAuthenticated implements Provider.
func (p StaticProvider) IsAuthenticated(ctx context.Context) bool {
	return p.UserID != ""
}

// CurrentUserID implements Provider.
func (p StaticProvider) CurrentUserID(ctx context.Context) (string, error) {
	if p.UserID == "" {
		return "", ErrNotAuthenticated
	}
	return p.UserID, nil
}
