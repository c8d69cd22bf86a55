package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/erazemk/najdeno/internal/apperr"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

// Identity is an authenticated caller. Role is read from the store, not
// from the token, so a demoted or deactivated user loses access at once.
type Identity struct {
	UserID      int64
	Identifier  string
	DisplayName string
	Role        string

	// Token metadata, needed for logout.
	TokenID string
	Claims  *Claims
}

// IsAdmin reports whether the identity carries the admin role.
func (id *Identity) IsAdmin() bool {
	return id != nil && id.Role == model.RoleAdmin
}

// Authenticator turns bearer tokens into identities.
type Authenticator struct {
	DB     *sql.DB
	Secret string
}

// Authenticate validates the token signature and expiry, rejects revoked
// tokens, and reloads the user. Any failure to authenticate is returned
// as an apperr.ErrUnauthenticated; store failures are returned as is.
func (a *Authenticator) Authenticate(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, apperr.Unauthenticated(errors.New("missing token"))
	}

	claims, err := ValidateToken(a.Secret, token)
	if err != nil {
		return nil, apperr.Unauthenticated(err)
	}

	revoked, err := store.IsTokenRevoked(ctx, a.DB, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("authenticating: %w", err)
	}
	if revoked {
		return nil, apperr.Unauthenticated(errors.New("token revoked"))
	}

	user, err := store.GetUser(ctx, a.DB, claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("authenticating: %w", err)
	}
	if user == nil || user.IsDeleted() {
		return nil, apperr.Unauthenticated(errors.New("account not active"))
	}

	return &Identity{
		UserID:      user.ID,
		Identifier:  user.Identifier,
		DisplayName: user.DisplayName,
		Role:        user.Role,
		TokenID:     claims.ID,
		Claims:      claims,
	}, nil
}

// RequireRole returns a Forbidden error unless the identity has at least
// the given role.
func RequireRole(id *Identity, role string) error {
	if id == nil {
		return apperr.Unauthenticated(errors.New("no identity"))
	}
	if !model.RoleAtLeast(id.Role, role) {
		return apperr.Forbidden("insufficient permissions")
	}
	return nil
}
