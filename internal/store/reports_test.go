package store

import (
	"context"
	"testing"
	"time"

	"github.com/erazemk/najdeno/internal/db"
	"github.com/erazemk/najdeno/internal/model"
)

func TestActivityReport(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	f := newFixture(t, database)

	first := f.foundItem(t, database, "Phone")
	second := f.foundItem(t, database, "Wallet")
	c1, _ := CreateClaim(ctx, database, NewClaim{FoundItemID: first.ID, ClaimantID: f.other.ID, ClaimantName: "Lou", FinderID: f.owner.ID, FinderName: "Fiona"})
	CreateClaim(ctx, database, NewClaim{FoundItemID: second.ID, ClaimantID: f.other.ID, ClaimantName: "Lou", FinderID: f.owner.ID, FinderName: "Fiona"})
	SetClaimStatus(ctx, database, c1.ID, c1.Version, Adjudication{Status: model.ClaimStatusApproved, AdminID: f.owner.ID})
	SetItemStatus(ctx, database, first.ID, first.Version, model.ItemStatusOpen, model.ItemStatusReturned)

	report, err := ActivityReport(ctx, database, ReportFilter{})
	if err != nil {
		t.Fatalf("ActivityReport: %v", err)
	}
	want := model.ReportStats{
		TotalItems: 2, FoundItems: 2, ReturnedItems: 1,
		TotalClaims: 2, ApprovedClaims: 1, PendingClaims: 1,
	}
	if report.Stats != want {
		t.Errorf("expected stats %+v, got %+v", want, report.Stats)
	}
	if report.Items[0].OwnerName != "Fiona Finder" || report.Items[0].CategoryName != "Electronics" {
		t.Errorf("expected joined names, got %+v", report.Items[0])
	}

	lost, _ := ActivityReport(ctx, database, ReportFilter{Type: model.ItemTypeLost})
	if len(lost.Items) != 0 || lost.Stats.TotalClaims != 2 {
		t.Errorf("expected type filter to apply to items only, got %+v", lost.Stats)
	}

	future, err := ActivityReport(ctx, database, ReportFilter{From: time.Now().Add(24 * time.Hour)})
	if err != nil {
		t.Fatalf("ActivityReport: %v", err)
	}
	if len(future.Items) != 0 || len(future.Claims) != 0 {
		t.Errorf("expected empty report for a future window, got %+v", future.Stats)
	}

	past, _ := ActivityReport(ctx, database, ReportFilter{
		From: time.Now().Add(-24 * time.Hour),
		To:   time.Now().Add(24 * time.Hour),
	})
	if len(past.Items) != 2 {
		t.Errorf("expected both items in window, got %d", len(past.Items))
	}

	limited, _ := ActivityReport(ctx, database, ReportFilter{Limit: 1})
	if len(limited.Items) != 1 || len(limited.Claims) != 1 {
		t.Errorf("expected limit to apply, got %d items %d claims", len(limited.Items), len(limited.Claims))
	}

	if _, err := SoftDeleteItem(ctx, database, second.ID, second.Version); err != nil {
		t.Fatalf("SoftDeleteItem: %v", err)
	}
	if _, err := database.ExecContext(ctx, `UPDATE claims SET deleted_at = CURRENT_TIMESTAMP WHERE id = ?`, c1.ID); err != nil {
		t.Fatalf("deleting claim: %v", err)
	}
	live, err := ActivityReport(ctx, database, ReportFilter{})
	if err != nil {
		t.Fatalf("ActivityReport: %v", err)
	}
	if live.Stats.TotalItems != 1 || live.Stats.TotalClaims != 1 || live.Stats.ApprovedClaims != 0 {
		t.Errorf("expected deleted rows to be left out, got %+v", live.Stats)
	}
}
