package lifecycle

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeactivateUser(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	item := e.reportFound(t)

	require.NoError(t, e.engine.DeactivateUser(ctx, e.admin, e.finder.UserID))
	assert.True(t, e.user(t, e.finder.UserID).IsDeleted())

	// Items of deactivated users stay listed.
	got, err := e.engine.GetItem(ctx, nil, item.ID)
	require.NoError(t, err)
	assert.Equal(t, item.ID, got.ID)

	// Deactivating again, or an unknown user, is NotFound.
	assert.ErrorIs(t, e.engine.DeactivateUser(ctx, e.admin, e.finder.UserID), ErrNotFound)
	assert.ErrorIs(t, e.engine.DeactivateUser(ctx, e.admin, 999), ErrNotFound)

	assert.ErrorIs(t, e.engine.DeactivateUser(ctx, e.admin, e.admin.UserID), ErrInvalidState)
	assert.ErrorIs(t, e.engine.DeactivateUser(ctx, e.claimant, e.admin.UserID), ErrForbidden)

	users, err := e.engine.ListUsers(ctx, e.admin, 0, 0)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	_, err = e.engine.ListUsers(ctx, e.claimant, 0, 0)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestDeactivatedUserCannotClaim(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	item := e.reportFound(t)

	require.NoError(t, e.engine.DeactivateUser(ctx, e.admin, e.claimant.UserID))
	_, err := e.engine.SubmitClaim(ctx, e.claimant.UserID, SubmitClaimInput{FoundItemID: item.ID})
	assert.ErrorIs(t, err, ErrForbidden)
}
