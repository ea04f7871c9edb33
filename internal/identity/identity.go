package identity

import (
	"context"

	"github.com/google/uuid"
)

// Identity is an authenticated user as the rest of the service sees it.
type Identity struct {
	UserID uuid.UUID
	Email  string
}

// Provider resolves a bearer credential to an identity or ErrUnauthorized.
type Provider interface {
	Resolve(ctx context.Context, token string) (*Identity, error)
}
