package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/erazemk/najdeno/internal/model"
)

type fixture struct {
	owner    *model.User
	other    *model.User
	category *model.Category
	location *model.Location
}

func newFixture(t *testing.T, database *sql.DB) fixture {
	t.Helper()
	ctx := context.Background()

	owner, err := CreateUser(ctx, database, NewUser{Identifier: "finder", DisplayName: "Fiona Finder", PasswordHash: "hash"})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	other, err := CreateUser(ctx, database, NewUser{Identifier: "loser", DisplayName: "Lou Loser", PasswordHash: "hash"})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	cat, err := CreateCategory(ctx, database, "Electronics")
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	loc, err := CreateLocation(ctx, database, "Library")
	if err != nil {
		t.Fatalf("CreateLocation: %v", err)
	}
	return fixture{owner: owner, other: other, category: cat, location: loc}
}

func (f fixture) foundItem(t *testing.T, database *sql.DB, title string, keywords ...string) *model.Item {
	t.Helper()
	found := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	item, err := CreateItem(context.Background(), database, NewItem{
		Title:       title,
		Description: "found near the entrance",
		Type:        model.ItemTypeFound,
		CategoryID:  f.category.ID,
		LocationID:  f.location.ID,
		DateFound:   &found,
		OwnerID:     f.owner.ID,
		Questions:   []model.SecurityQuestion{{Question: "Colour?", AnswerHash: "abc"}},
		Photos:      []string{"/api/photos/a.jpg"},
		Keywords:    keywords,
	})
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	return item
}
