package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/erazemk/najdeno/internal/model"
)

// ReportFilter bounds an activity report. Zero times are open ends.
type ReportFilter struct {
	From  time.Time
	To    time.Time
	Type  string
	Limit int
}

// ActivityReport returns the live items and claims created in the window,
// newest first, with their stats tallied. Soft-deleted rows are left out.
func ActivityReport(ctx context.Context, db DBTX, f ReportFilter) (*model.Report, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = MaxLimit
	}

	window := func(alias string) ([]string, []any) {
		col := alias + "created_at"
		where := []string{alias + "deleted_at IS NULL"}
		var args []any
		if !f.From.IsZero() {
			where = append(where, "julianday("+col+") >= julianday(?)")
			args = append(args, f.From.UTC())
		}
		if !f.To.IsZero() {
			where = append(where, "julianday("+col+") <= julianday(?)")
			args = append(args, f.To.UTC())
		}
		return where, args
	}

	report := &model.Report{Items: []model.ReportItem{}, Claims: []model.ReportClaim{}}

	where, args := window("i.")
	if f.Type != "" {
		where = append(where, "i.type = ?")
		args = append(args, f.Type)
	}
	query := `SELECT i.id, i.title, i.type, i.status, c.name, l.name, i.owner_id, u.display_name, i.created_at
		FROM items i
		JOIN categories c ON c.id = i.category_id
		JOIN locations l ON l.id = i.location_id
		JOIN users u ON u.id = i.owner_id
		WHERE ` + strings.Join(where, " AND ")
	query += ` ORDER BY i.created_at DESC, i.id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("reporting items: %w", err)
	}
	for rows.Next() {
		var it model.ReportItem
		if err := rows.Scan(&it.ID, &it.Title, &it.Type, &it.Status, &it.CategoryName,
			&it.LocationName, &it.OwnerID, &it.OwnerName, &it.CreatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning report item: %w", err)
		}
		report.Items = append(report.Items, it)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reporting items: %w", err)
	}

	where, args = window("")
	query = `SELECT id, claimant_id, claimant_name, item_id, status, created_at FROM claims
		WHERE ` + strings.Join(where, " AND ")
	query += ` ORDER BY created_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err = db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("reporting claims: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var c model.ReportClaim
		if err := rows.Scan(&c.ID, &c.ClaimantID, &c.ClaimantName, &c.FoundItemID, &c.Status, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning report claim: %w", err)
		}
		report.Claims = append(report.Claims, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reporting claims: %w", err)
	}

	report.Tally()
	return report, nil
}
