package lifecycle

import (
	"context"
	"time"

	"github.com/erazemk/najdeno/internal/apperr"
	"github.com/erazemk/najdeno/internal/auth"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

// ReportFilter bounds the activity report. Zero times are open ends.
type ReportFilter struct {
	From  time.Time
	To    time.Time
	Type  string
	Limit int
}

// Report returns the admin activity report.
func (e *Engine) Report(ctx context.Context, admin *auth.Identity, f ReportFilter) (*model.Report, error) {
	if err := auth.RequireRole(admin, model.RoleAdmin); err != nil {
		return nil, err
	}
	fields := make(map[string]string)
	if !f.From.IsZero() && !f.To.IsZero() && f.From.After(f.To) {
		fields["from"] = "must not be after to"
	}
	if f.Type != "" && !model.ValidItemType(f.Type) {
		fields["type"] = "must be lost or found"
	}
	if len(fields) > 0 {
		return nil, apperr.Validation(fields)
	}

	report, err := store.ActivityReport(ctx, e.db, store.ReportFilter(f))
	if err != nil {
		return nil, apperr.Store(err)
	}
	return report, nil
}
