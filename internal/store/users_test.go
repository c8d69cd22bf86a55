package store

import (
	"context"
	"testing"
	"time"

	"github.com/erazemk/najdeno/internal/db"
	"github.com/erazemk/najdeno/internal/model"
)

func TestCreateAndGetUser(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, err := CreateUser(ctx, database, NewUser{
		Identifier:   "12345",
		DisplayName:  "Test User",
		Email:        "test@example.com",
		School:       "FRI",
		PasswordHash: "hash123",
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if user.Identifier != "12345" {
		t.Errorf("expected identifier '12345', got %q", user.Identifier)
	}
	if user.Role != model.RoleUser {
		t.Errorf("expected role 'user', got %q", user.Role)
	}
	if user.TrackRecord != (model.TrackRecord{}) {
		t.Errorf("expected empty track record, got %+v", user.TrackRecord)
	}

	got, err := GetUser(ctx, database, user.ID)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.DisplayName != "Test User" || got.School != "FRI" {
		t.Errorf("unexpected user %+v", got)
	}
}

func TestCreateUserDuplicateIdentifier(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	if _, err := CreateUser(ctx, database, NewUser{Identifier: "dup", DisplayName: "A", PasswordHash: "h"}); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	_, err := CreateUser(ctx, database, NewUser{Identifier: "dup", DisplayName: "B", PasswordHash: "h"})
	if !db.IsConstraint(err) {
		t.Fatalf("expected constraint error, got %v", err)
	}
}

func TestIdentifierReusableAfterDeactivation(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	old, err := CreateUser(ctx, database, NewUser{Identifier: "pc-17", DisplayName: "Old", PasswordHash: "h"})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if ok, err := DeactivateUser(ctx, database, old.ID); err != nil || !ok {
		t.Fatalf("DeactivateUser: ok=%v err=%v", ok, err)
	}

	got, err := GetUserByIdentifier(ctx, database, "pc-17")
	if err != nil {
		t.Fatalf("GetUserByIdentifier: %v", err)
	}
	if got == nil || got.ID != old.ID || got.DeletedAt == nil {
		t.Fatalf("expected deactivated user %d, got %+v", old.ID, got)
	}

	fresh, err := CreateUser(ctx, database, NewUser{Identifier: "pc-17", DisplayName: "New", PasswordHash: "h"})
	if err != nil {
		t.Fatalf("CreateUser after deactivation: %v", err)
	}

	got, err = GetUserByIdentifier(ctx, database, "pc-17")
	if err != nil {
		t.Fatalf("GetUserByIdentifier: %v", err)
	}
	if got == nil || got.ID != fresh.ID {
		t.Fatalf("expected active user %d, got %+v", fresh.ID, got)
	}

	_, err = CreateUser(ctx, database, NewUser{Identifier: "pc-17", DisplayName: "Third", PasswordHash: "h"})
	if !db.IsConstraint(err) {
		t.Fatalf("expected constraint error for second active holder, got %v", err)
	}
}

func TestGetUserByIdentifier(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	CreateUser(ctx, database, NewUser{Identifier: "alice", DisplayName: "Alice", PasswordHash: "hash", Role: model.RoleAdmin})

	user, err := GetUserByIdentifier(ctx, database, "alice")
	if err != nil {
		t.Fatalf("GetUserByIdentifier: %v", err)
	}
	if user == nil {
		t.Fatal("expected user, got nil")
	}
	if user.Role != model.RoleAdmin {
		t.Errorf("expected admin, got %q", user.Role)
	}

	missing, err := GetUserByIdentifier(ctx, database, "bob")
	if err != nil {
		t.Fatalf("GetUserByIdentifier: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for missing user")
	}
}

func TestListUsersSkipsDeactivated(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	CreateUser(ctx, database, NewUser{Identifier: "a", DisplayName: "A", PasswordHash: "hash"})
	b, _ := CreateUser(ctx, database, NewUser{Identifier: "b", DisplayName: "B", PasswordHash: "hash"})

	ok, err := DeactivateUser(ctx, database, b.ID)
	if err != nil {
		t.Fatalf("DeactivateUser: %v", err)
	}
	if !ok {
		t.Fatal("expected deactivation to apply")
	}

	users, err := ListUsers(ctx, database, Page{})
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(users) != 1 || users[0].Identifier != "a" {
		t.Errorf("expected only user 'a', got %+v", users)
	}

	// The record is retained.
	got, _ := GetUser(ctx, database, b.ID)
	if got == nil || !got.IsDeleted() {
		t.Errorf("expected retained deactivated user, got %+v", got)
	}
}

func TestDeactivateUserTwice(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	u, _ := CreateUser(ctx, database, NewUser{Identifier: "x", DisplayName: "X", PasswordHash: "hash"})
	DeactivateUser(ctx, database, u.ID)

	ok, err := DeactivateUser(ctx, database, u.ID)
	if err != nil {
		t.Fatalf("DeactivateUser: %v", err)
	}
	if ok {
		t.Error("expected second deactivation to be a no-op")
	}

	ok, _ = DeactivateUser(ctx, database, 9999)
	if ok {
		t.Error("expected deactivating a missing user to be a no-op")
	}
}

func TestUpdateUserPassword(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, _ := CreateUser(ctx, database, NewUser{Identifier: "pw", DisplayName: "PW", PasswordHash: "oldhash"})
	UpdateUserPassword(ctx, database, user.ID, "newhash")

	got, _ := GetUser(ctx, database, user.ID)
	if got.PasswordHash != "newhash" {
		t.Errorf("expected password hash 'newhash', got %q", got.PasswordHash)
	}
}

func TestTouchLastLogin(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, _ := CreateUser(ctx, database, NewUser{Identifier: "ll", DisplayName: "LL", PasswordHash: "h"})
	if user.LastLogin != nil {
		t.Fatal("expected no last login on a new user")
	}

	at := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	if err := TouchLastLogin(ctx, database, user.ID, at); err != nil {
		t.Fatalf("TouchLastLogin: %v", err)
	}
	got, _ := GetUser(ctx, database, user.ID)
	if got.LastLogin == nil || !got.LastLogin.Equal(at) {
		t.Errorf("expected last login %v, got %v", at, got.LastLogin)
	}
}

func TestAddTrackRecord(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, _ := CreateUser(ctx, database, NewUser{Identifier: "tr", DisplayName: "TR", PasswordHash: "h"})
	delta := model.TrackRecord{ItemsFound: 1, ItemsReturned: 1}
	if err := AddTrackRecord(ctx, database, user.ID, delta); err != nil {
		t.Fatalf("AddTrackRecord: %v", err)
	}
	if err := AddTrackRecord(ctx, database, user.ID, delta); err != nil {
		t.Fatalf("AddTrackRecord: %v", err)
	}

	got, _ := GetUser(ctx, database, user.ID)
	want := model.TrackRecord{ItemsFound: 2, ItemsReturned: 2}
	if got.TrackRecord != want {
		t.Errorf("expected %+v, got %+v", want, got.TrackRecord)
	}

	if err := AddTrackRecord(ctx, database, 9999, delta); err == nil {
		t.Error("expected error for missing user")
	}
}

func TestPageWindow(t *testing.T) {
	tests := []struct {
		page         Page
		limit, offset int
	}{
		{Page{}, DefaultLimit, 0},
		{Page{Limit: 5, Page: 3}, 5, 10},
		{Page{Limit: 1000, Page: 1}, MaxLimit, 0},
		{Page{Limit: -1, Page: -4}, DefaultLimit, 0},
	}
	for _, tt := range tests {
		limit, offset := tt.page.Window()
		if limit != tt.limit || offset != tt.offset {
			t.Errorf("%+v.Window() = %d, %d; want %d, %d", tt.page, limit, offset, tt.limit, tt.offset)
		}
	}
}
