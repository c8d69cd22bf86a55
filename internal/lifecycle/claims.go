package lifecycle

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/erazemk/najdeno/internal/apperr"
	"github.com/erazemk/najdeno/internal/auth"
	"github.com/erazemk/najdeno/internal/db"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

// MaxMessageLength bounds claim messages and admin comments.
const MaxMessageLength = 2000

// SubmitClaimInput is a claim on a found item. Answers are matched to the
// item's security questions by position.
type SubmitClaimInput struct {
	FoundItemID int64
	Answers     []string
	Message     string
}

// AdjudicateInput is an admin's decision on a pending claim.
type AdjudicateInput struct {
	Decision     string
	AdminComment string
}

// ClaimFilter narrows an admin claim listing.
type ClaimFilter struct {
	Status     string
	ClaimantID int64
	ItemID     int64
	Limit      int
	Page       int
}

// SubmitClaim files a claim on an open found item and moves the item to
// Claimed. Answers are stored as digests and never compared here; an
// admin decides.
func (e *Engine) SubmitClaim(ctx context.Context, claimantID int64, in SubmitClaimInput) (*model.Claim, error) {
	fields := make(map[string]string)
	if len(in.Answers) > model.MaxSecurityQuestions {
		fields["answers"] = "at most 3 allowed"
	}
	message := strings.TrimSpace(in.Message)
	if utf8.RuneCountInString(message) > MaxMessageLength {
		fields["message"] = "too long"
	}
	if len(fields) > 0 {
		return nil, apperr.Validation(fields)
	}

	hashes := make([]string, len(in.Answers))
	for i, a := range in.Answers {
		hashes[i] = auth.HashAnswer(a)
	}

	var claim *model.Claim
	var claimant *model.User
	err := e.atomically(ctx, "submit claim", func(ctx context.Context, tx *sql.Tx) error {
		item, err := store.GetItem(ctx, tx, in.FoundItemID)
		if err != nil {
			return err
		}
		if item == nil || item.IsDeleted() {
			return apperr.NotFound("item not found")
		}
		if item.Type != model.ItemTypeFound || item.Status != model.ItemStatusOpen {
			return apperr.InvalidState("item cannot be claimed")
		}
		if item.OwnerID == claimantID {
			return apperr.Forbidden("cannot claim own item")
		}
		pending, err := store.HasPendingClaim(ctx, tx, item.ID, claimantID)
		if err != nil {
			return err
		}
		if pending {
			return apperr.Conflict("claim already pending")
		}

		claimant, err = store.GetUser(ctx, tx, claimantID)
		if err != nil {
			return err
		}
		if claimant == nil {
			return apperr.NotFound("user not found")
		}
		if claimant.IsDeleted() {
			return apperr.Forbidden("account is deactivated")
		}

		claim, err = store.CreateClaim(ctx, tx, store.NewClaim{
			FoundItemID:  item.ID,
			ClaimantID:   claimant.ID,
			ClaimantName: claimant.DisplayName,
			FinderID:     item.OwnerID,
			FinderName:   item.OwnerName,
			AnswerHashes: hashes,
			Message:      message,
		})
		if db.IsConstraint(err) {
			// Another pending claim slipped in; rerun to report why.
			return errStale
		}
		if err != nil {
			return err
		}

		if err := e.moveItem(ctx, tx, item, model.ItemStatusClaimed); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.log.Info("claim submitted", "user", claimant.Identifier, "claim", claim.ID, "item", in.FoundItemID)
	return claim, nil
}

// AdjudicateClaim approves or denies a pending claim. Approval returns
// the item and credits both parties' track records; denial reopens it.
func (e *Engine) AdjudicateClaim(ctx context.Context, admin *auth.Identity, claimID int64, in AdjudicateInput) (*model.Claim, error) {
	if err := auth.RequireRole(admin, model.RoleAdmin); err != nil {
		return nil, err
	}
	if in.Decision != model.ClaimStatusApproved && in.Decision != model.ClaimStatusDenied {
		return nil, apperr.Validation(map[string]string{"status": "must be Approved or Denied"})
	}
	comment := strings.TrimSpace(in.AdminComment)
	if utf8.RuneCountInString(comment) > MaxMessageLength {
		return nil, apperr.Validation(map[string]string{"admin_comment": "too long"})
	}

	var claim *model.Claim
	err := e.atomically(ctx, "adjudicate claim", func(ctx context.Context, tx *sql.Tx) error {
		c, err := store.GetClaim(ctx, tx, claimID)
		if err != nil {
			return err
		}
		if c == nil || c.IsDeleted() {
			return apperr.NotFound("claim not found")
		}
		if !canTransition(claimTransitions, c.Status, in.Decision) {
			return apperr.InvalidState("claim already processed")
		}

		item, err := store.GetItem(ctx, tx, c.FoundItemID)
		if err != nil {
			return err
		}
		if item == nil || item.IsDeleted() {
			return apperr.InvalidState("claimed item no longer exists")
		}
		if item.Status != model.ItemStatusClaimed {
			return apperr.InvalidState(fmt.Sprintf("item is %s, not Claimed", item.Status))
		}

		ok, err := store.SetClaimStatus(ctx, tx, c.ID, c.Version, store.Adjudication{
			Status:       in.Decision,
			AdminComment: comment,
			AdminID:      admin.UserID,
		})
		if err != nil {
			return err
		}
		if !ok {
			return errStale
		}

		if err := e.moveItem(ctx, tx, item, itemStatusAfter(in.Decision)); err != nil {
			return err
		}

		if in.Decision == model.ClaimStatusApproved {
			if err := store.AddTrackRecord(ctx, tx, c.ClaimantID, model.TrackRecord{ItemsFound: 1, ItemsReturned: 1}); err != nil {
				return err
			}
			if err := store.AddTrackRecord(ctx, tx, c.FinderID, model.TrackRecord{ItemsLost: 1, ItemsReturned: 1}); err != nil {
				return err
			}
		}

		claim, err = store.GetClaim(ctx, tx, c.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	e.log.Info("claim adjudicated", "user", admin.Identifier, "claim", claimID, "decision", in.Decision)
	return claim, nil
}

// moveItem compare-and-swaps an item's status, failing with errStale if
// it changed since it was read.
func (e *Engine) moveItem(ctx context.Context, tx *sql.Tx, item *model.Item, to string) error {
	if !canTransition(itemTransitions, item.Status, to) {
		return apperr.InvalidState(fmt.Sprintf("item cannot move from %s to %s", item.Status, to))
	}
	ok, err := store.SetItemStatus(ctx, tx, item.ID, item.Version, item.Status, to)
	if err != nil {
		return err
	}
	if !ok {
		return errStale
	}
	return nil
}

// GetClaim returns a claim to an admin or to its claimant.
func (e *Engine) GetClaim(ctx context.Context, id *auth.Identity, claimID int64) (*model.Claim, error) {
	if err := auth.RequireRole(id, model.RoleUser); err != nil {
		return nil, err
	}
	c, err := store.GetClaim(ctx, e.db, claimID)
	if err != nil {
		return nil, apperr.Store(err)
	}
	if c == nil || c.IsDeleted() {
		return nil, apperr.NotFound("claim not found")
	}
	if !id.IsAdmin() && c.ClaimantID != id.UserID {
		return nil, apperr.Forbidden("not your claim")
	}
	return c, nil
}

// ListClaims lists claims for admins.
func (e *Engine) ListClaims(ctx context.Context, admin *auth.Identity, f ClaimFilter) ([]model.Claim, error) {
	if err := auth.RequireRole(admin, model.RoleAdmin); err != nil {
		return nil, err
	}
	if f.Status != "" && !model.ValidClaimStatus(f.Status) {
		return nil, apperr.Validation(map[string]string{"status": "unknown status"})
	}
	claims, err := store.ListClaims(ctx, e.db, store.ClaimFilter{
		Status:     f.Status,
		ClaimantID: f.ClaimantID,
		ItemID:     f.ItemID,
		Page:       store.Page{Limit: f.Limit, Page: f.Page},
	})
	if err != nil {
		return nil, apperr.Store(err)
	}
	return claims, nil
}

// ListMyClaims lists the caller's own claims.
func (e *Engine) ListMyClaims(ctx context.Context, id *auth.Identity, limit, page int) ([]model.Claim, error) {
	if err := auth.RequireRole(id, model.RoleUser); err != nil {
		return nil, err
	}
	claims, err := store.ListClaims(ctx, e.db, store.ClaimFilter{
		ClaimantID: id.UserID,
		Page:       store.Page{Limit: limit, Page: page},
	})
	if err != nil {
		return nil, apperr.Store(err)
	}
	return claims, nil
}
