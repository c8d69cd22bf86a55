package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/erazemk/najdeno/internal/model"
)

// NewClaim holds the fields needed to create a claim. Answer hashes must
// already be digested.
type NewClaim struct {
	FoundItemID  int64
	ClaimantID   int64
	ClaimantName string
	FinderID     int64
	FinderName   string
	AnswerHashes []string
	Message      string
}

// ClaimFilter narrows a claim listing.
type ClaimFilter struct {
	Status     string
	ClaimantID int64
	ItemID     int64
	Page
}

const claimSelect = `SELECT c.id, c.item_id, c.claimant_id, c.claimant_name, c.finder_id, c.finder_name,
	c.message, c.status, c.admin_comment, c.adjudicated_by, c.version,
	c.created_at, c.updated_at, c.deleted_at, i.title, i.type
	FROM claims c
	JOIN items i ON i.id = c.item_id`

// CreateClaim inserts a Pending claim with its answers. The partial unique
// index on pending claims makes a second pending claim on the same item
// fail with a constraint error.
func CreateClaim(ctx context.Context, db DBTX, c NewClaim) (*model.Claim, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO claims (item_id, claimant_id, claimant_name, finder_id, finder_name, message, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.FoundItemID, c.ClaimantID, c.ClaimantName, c.FinderID, c.FinderName, c.Message,
		model.ClaimStatusPending,
	)
	if err != nil {
		return nil, fmt.Errorf("creating claim: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting claim id: %w", err)
	}

	for n, h := range c.AnswerHashes {
		_, err := db.ExecContext(ctx,
			`INSERT INTO claim_answers (claim_id, position, answer_hash) VALUES (?, ?, ?)`,
			id, n+1, h,
		)
		if err != nil {
			return nil, fmt.Errorf("storing claim answer: %w", err)
		}
	}

	return GetClaim(ctx, db, id)
}

// GetClaim returns a claim by ID with its answer hashes.
func GetClaim(ctx context.Context, db DBTX, id int64) (*model.Claim, error) {
	c, err := scanClaim(db.QueryRowContext(ctx, claimSelect+` WHERE c.id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting claim: %w", err)
	}

	rows, err := db.QueryContext(ctx,
		`SELECT answer_hash FROM claim_answers WHERE claim_id = ? ORDER BY position`, id,
	)
	if err != nil {
		return nil, fmt.Errorf("loading claim answers: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, fmt.Errorf("scanning claim answer: %w", err)
		}
		c.AnswerHashes = append(c.AnswerHashes, h)
	}
	return c, rows.Err()
}

// ListClaims returns non-deleted claims matching the filter, newest first.
// Answer hashes are not loaded.
func ListClaims(ctx context.Context, db DBTX, f ClaimFilter) ([]model.Claim, error) {
	where := []string{"c.deleted_at IS NULL"}
	var args []any
	if f.Status != "" {
		where = append(where, "c.status = ?")
		args = append(args, f.Status)
	}
	if f.ClaimantID != 0 {
		where = append(where, "c.claimant_id = ?")
		args = append(args, f.ClaimantID)
	}
	if f.ItemID != 0 {
		where = append(where, "c.item_id = ?")
		args = append(args, f.ItemID)
	}
	limit, offset := f.Window()
	args = append(args, limit, offset)

	rows, err := db.QueryContext(ctx,
		claimSelect+` WHERE `+strings.Join(where, " AND ")+
			` ORDER BY c.created_at DESC, c.id DESC LIMIT ? OFFSET ?`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("listing claims: %w", err)
	}
	defer rows.Close()

	var claims []model.Claim
	for rows.Next() {
		c, err := scanClaim(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning claim: %w", err)
		}
		claims = append(claims, *c)
	}
	return claims, rows.Err()
}

// HasPendingClaim reports whether the claimant already has a Pending
// claim on the item.
func HasPendingClaim(ctx context.Context, db DBTX, itemID, claimantID int64) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM claims
		 WHERE item_id = ? AND claimant_id = ? AND status = ? AND deleted_at IS NULL`,
		itemID, claimantID, model.ClaimStatusPending,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking pending claims: %w", err)
	}
	return count > 0, nil
}

// CountPendingClaims returns the number of Pending claims on an item.
func CountPendingClaims(ctx context.Context, db DBTX, itemID int64) (int, error) {
	var count int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM claims WHERE item_id = ? AND status = ? AND deleted_at IS NULL`,
		itemID, model.ClaimStatusPending,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting pending claims: %w", err)
	}
	return count, nil
}

// Adjudication is the outcome recorded on a claim.
type Adjudication struct {
	Status       string
	AdminComment string
	AdminID      int64
}

// SetClaimStatus records an adjudication if the claim is still Pending at
// the given version. It reports false otherwise.
func SetClaimStatus(ctx context.Context, db DBTX, id, version int64, a Adjudication) (bool, error) {
	res, err := db.ExecContext(ctx,
		`UPDATE claims SET status = ?, admin_comment = ?, adjudicated_by = ?,
		        version = version + 1, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND status = ? AND version = ? AND deleted_at IS NULL`,
		a.Status, a.AdminComment, a.AdminID, id, model.ClaimStatusPending, version,
	)
	if err != nil {
		return false, fmt.Errorf("updating claim status: %w", err)
	}
	ok, err := affectedOne(res)
	if err != nil {
		return false, fmt.Errorf("updating claim status: %w", err)
	}
	return ok, nil
}

func scanClaim(row rowScanner) (*model.Claim, error) {
	c := &model.Claim{}
	var adjudicatedBy sql.NullInt64
	err := row.Scan(&c.ID, &c.FoundItemID, &c.ClaimantID, &c.ClaimantName, &c.FinderID, &c.FinderName,
		&c.Message, &c.Status, &c.AdminComment, &adjudicatedBy, &c.Version,
		&c.CreatedAt, &c.UpdatedAt, &c.DeletedAt, &c.ItemTitle, &c.ItemType)
	if err != nil {
		return nil, err
	}
	if adjudicatedBy.Valid {
		c.AdjudicatedBy = &adjudicatedBy.Int64
	}
	return c, nil
}
