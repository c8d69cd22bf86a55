package lifecycle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/najdeno/internal/model"
)

func TestReport(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	returned := e.reportFound(t)
	open := e.reportFound(t)
	c1, err := e.engine.SubmitClaim(ctx, e.claimant.UserID, SubmitClaimInput{FoundItemID: returned.ID})
	require.NoError(t, err)
	_, err = e.engine.AdjudicateClaim(ctx, e.admin, c1.ID, AdjudicateInput{Decision: model.ClaimStatusApproved})
	require.NoError(t, err)
	c2, err := e.engine.SubmitClaim(ctx, e.claimant.UserID, SubmitClaimInput{FoundItemID: open.ID})
	require.NoError(t, err)
	_, err = e.engine.AdjudicateClaim(ctx, e.admin, c2.ID, AdjudicateInput{Decision: model.ClaimStatusDenied})
	require.NoError(t, err)

	report, err := e.engine.Report(ctx, e.admin, ReportFilter{})
	require.NoError(t, err)
	assert.Equal(t, model.ReportStats{
		TotalItems: 2, FoundItems: 2, ReturnedItems: 1,
		TotalClaims: 2, ApprovedClaims: 1, DeniedClaims: 1,
	}, report.Stats)

	_, err = e.engine.Report(ctx, e.finder, ReportFilter{})
	assert.ErrorIs(t, err, ErrForbidden)

	now := time.Now()
	_, err = e.engine.Report(ctx, e.admin, ReportFilter{From: now, To: now.Add(-time.Hour)})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestReportSkipsDeletedItems(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	e.reportFound(t)
	gone := e.reportFound(t)
	require.NoError(t, e.engine.DeleteItem(ctx, e.finder, gone.ID))

	report, err := e.engine.Report(ctx, e.admin, ReportFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Stats.TotalItems)
	assert.Equal(t, 1, report.Stats.FoundItems)
	require.Len(t, report.Items, 1)
	assert.NotEqual(t, gone.ID, report.Items[0].ID)
}
