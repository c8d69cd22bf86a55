package lifecycle

import (
	"context"
	"database/sql"

	"github.com/erazemk/najdeno/internal/apperr"
	"github.com/erazemk/najdeno/internal/auth"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

// DeactivateUser soft-deletes a user. Their items and claims are kept.
// Deactivating an unknown or already deactivated user is NotFound.
func (e *Engine) DeactivateUser(ctx context.Context, admin *auth.Identity, userID int64) error {
	if err := auth.RequireRole(admin, model.RoleAdmin); err != nil {
		return err
	}
	if admin.UserID == userID {
		return apperr.InvalidState("cannot deactivate yourself")
	}

	err := e.atomically(ctx, "deactivate user", func(ctx context.Context, tx *sql.Tx) error {
		ok, err := store.DeactivateUser(ctx, tx, userID)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.NotFound("user not found")
		}
		return nil
	})
	if err != nil {
		return err
	}

	e.log.Info("user deactivated", "user", admin.Identifier, "target", userID)
	return nil
}

// ListUsers lists active users for admins.
func (e *Engine) ListUsers(ctx context.Context, admin *auth.Identity, limit, page int) ([]model.User, error) {
	if err := auth.RequireRole(admin, model.RoleAdmin); err != nil {
		return nil, err
	}
	users, err := store.ListUsers(ctx, e.db, store.Page{Limit: limit, Page: page})
	if err != nil {
		return nil, apperr.Store(err)
	}
	return users, nil
}
