package model

import "time"

// Claim is a user's request to be recognized as the owner of a found item.
type Claim struct {
	ID            int64      `json:"id"`
	FoundItemID   int64      `json:"found_item_id"`
	ClaimantID    int64      `json:"claimant_id"`
	ClaimantName  string     `json:"claimant_name"`
	FinderID      int64      `json:"finder_id"`
	FinderName    string     `json:"finder_name"`
	AnswerHashes  []string   `json:"-"`
	Message       string     `json:"message,omitempty"`
	Status        string     `json:"status"`
	AdminComment  string     `json:"admin_comment"`
	AdjudicatedBy *int64     `json:"adjudicated_by,omitempty"`
	Version       int64      `json:"-"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	DeletedAt     *time.Time `json:"deleted_at,omitempty"`

	// Joined fields (not always populated).
	ItemTitle string `json:"item_title,omitempty"`
	ItemType  string `json:"item_type,omitempty"`
}

// Claim statuses.
const (
	ClaimStatusPending  = "Pending"
	ClaimStatusApproved = "Approved"
	ClaimStatusDenied   = "Denied"
)

// IsDeleted reports whether the claim has been soft-deleted.
func (c *Claim) IsDeleted() bool {
	return c.DeletedAt != nil
}

// ValidClaimStatus reports whether s is a known claim status.
func ValidClaimStatus(s string) bool {
	return s == ClaimStatusPending || s == ClaimStatusApproved || s == ClaimStatusDenied
}
