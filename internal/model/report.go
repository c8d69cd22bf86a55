package model

import "time"

// Report is the admin activity overview over a time window.
type Report struct {
	Stats  ReportStats   `json:"stats"`
	Items  []ReportItem  `json:"items"`
	Claims []ReportClaim `json:"claims"`
}

// ReportStats aggregates the rows of a report.
type ReportStats struct {
	TotalItems     int `json:"total_items"`
	LostItems      int `json:"lost_items"`
	FoundItems     int `json:"found_items"`
	ReturnedItems  int `json:"returned_items"`
	TotalClaims    int `json:"total_claims"`
	ApprovedClaims int `json:"approved_claims"`
	DeniedClaims   int `json:"denied_claims"`
	PendingClaims  int `json:"pending_claims"`
}

// ReportItem is an item row of a report.
type ReportItem struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Type         string    `json:"type"`
	Status       string    `json:"status"`
	CategoryName string    `json:"category_name"`
	LocationName string    `json:"location_name"`
	OwnerID      int64     `json:"owner_id"`
	OwnerName    string    `json:"owner_name"`
	CreatedAt    time.Time `json:"created_at"`
}

// ReportClaim is a claim row of a report.
type ReportClaim struct {
	ID           int64     `json:"id"`
	ClaimantID   int64     `json:"claimant_id"`
	ClaimantName string    `json:"claimant_name"`
	FoundItemID  int64     `json:"found_item_id"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

// Tally computes the stats from the report rows.
func (r *Report) Tally() {
	s := ReportStats{TotalItems: len(r.Items), TotalClaims: len(r.Claims)}
	for _, it := range r.Items {
		switch it.Type {
		case ItemTypeLost:
			s.LostItems++
		case ItemTypeFound:
			s.FoundItems++
		}
		if it.Status == ItemStatusReturned {
			s.ReturnedItems++
		}
	}
	for _, c := range r.Claims {
		switch c.Status {
		case ClaimStatusApproved:
			s.ApprovedClaims++
		case ClaimStatusDenied:
			s.DeniedClaims++
		case ClaimStatusPending:
			s.PendingClaims++
		}
	}
	r.Stats = s
}
