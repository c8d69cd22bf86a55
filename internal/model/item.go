package model

import "time"

// Item is a reported lost or found object.
type Item struct {
	ID                int64              `json:"id"`
	Title             string             `json:"title"`
	Description       string             `json:"description"`
	Type              string             `json:"type"`
	Status            string             `json:"status"`
	CategoryID        int64              `json:"category_id"`
	LocationID        int64              `json:"location_id"`
	DateFound         *time.Time         `json:"date_found,omitempty"`
	DateLastSeen      *time.Time         `json:"date_last_seen,omitempty"`
	OwnerID           int64              `json:"owner_id"`
	ContactInfo       string             `json:"contact_info,omitempty"`
	SecurityQuestions []SecurityQuestion `json:"security_questions"`
	Photos            []string           `json:"photos"`
	Keywords          []string           `json:"-"`
	Version           int64              `json:"-"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
	DeletedAt         *time.Time         `json:"deleted_at,omitempty"`

	// Joined fields (not always populated).
	CategoryName string `json:"category_name,omitempty"`
	LocationName string `json:"location_name,omitempty"`
	OwnerName    string `json:"owner_name,omitempty"`
}

// SecurityQuestion is a question the finder asks claimants. Only the
// digest of the expected answer is stored.
type SecurityQuestion struct {
	Question   string `json:"question"`
	AnswerHash string `json:"answer_hash,omitempty"`
}

// Item types.
const (
	ItemTypeLost  = "lost"
	ItemTypeFound = "found"
)

// Item statuses.
const (
	ItemStatusOpen     = "Open"
	ItemStatusClaimed  = "Claimed"
	ItemStatusReturned = "Returned"
)

// MaxSecurityQuestions is the number of questions an item may carry.
const MaxSecurityQuestions = 3

// MaxPhotos is the number of photos an item may carry.
const MaxPhotos = 3

// IsDeleted reports whether the item has been soft-deleted.
func (i *Item) IsDeleted() bool {
	return i.DeletedAt != nil
}

// ValidItemType reports whether t is a known item type.
func ValidItemType(t string) bool {
	return t == ItemTypeLost || t == ItemTypeFound
}

// ValidItemStatus reports whether s is a known item status.
func ValidItemStatus(s string) bool {
	return s == ItemStatusOpen || s == ItemStatusClaimed || s == ItemStatusReturned
}

// ViewFor returns a copy of the item as seen by the given viewer. Answer
// digests are only visible to the reporter and to admins.
func (i *Item) ViewFor(viewerID int64, viewerRole string) *Item {
	out := *i
	if viewerID == i.OwnerID || viewerRole == RoleAdmin {
		return &out
	}
	out.SecurityQuestions = make([]SecurityQuestion, len(i.SecurityQuestions))
	for n, q := range i.SecurityQuestions {
		out.SecurityQuestions[n] = SecurityQuestion{Question: q.Question}
	}
	return &out
}
