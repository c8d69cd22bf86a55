package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/erazemk/najdeno/internal/model"
)

// NewUser holds the fields needed to create a user.
type NewUser struct {
	Identifier   string
	DisplayName  string
	Email        string
	School       string
	PasswordHash string
	Role         string
}

const userColumns = `id, identifier, display_name, email, school, password_hash, role,
	items_found, items_lost, items_returned, created_at, last_login, deleted_at`

// CreateUser creates a new user.
func CreateUser(ctx context.Context, db DBTX, u NewUser) (*model.User, error) {
	if u.Role == "" {
		u.Role = model.RoleUser
	}
	result, err := db.ExecContext(ctx,
		`INSERT INTO users (identifier, display_name, email, school, password_hash, role)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		u.Identifier, u.DisplayName, u.Email, u.School, u.PasswordHash, u.Role,
	)
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting user id: %w", err)
	}

	return GetUser(ctx, db, id)
}

// GetUser returns a user by ID, including deactivated users.
func GetUser(ctx context.Context, db DBTX, id int64) (*model.User, error) {
	u, err := scanUser(db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return u, nil
}

// GetUserByIdentifier returns a user by login identifier. The active
// holder wins; otherwise the most recently deactivated one is returned so
// login can report the deactivation.
func GetUserByIdentifier(ctx context.Context, db DBTX, identifier string) (*model.User, error) {
	u, err := scanUser(db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE identifier = ?
		 ORDER BY deleted_at IS NULL DESC, id DESC LIMIT 1`, identifier,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user by identifier: %w", err)
	}
	return u, nil
}

// ListUsers returns active users, newest first.
func ListUsers(ctx context.Context, db DBTX, page Page) ([]model.User, error) {
	limit, offset := page.Window()
	rows, err := db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE deleted_at IS NULL
		 ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// UpdateUserPassword updates an active user's password hash.
func UpdateUserPassword(ctx context.Context, db DBTX, id int64, passwordHash string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE users SET password_hash = ? WHERE id = ? AND deleted_at IS NULL`,
		passwordHash, id,
	)
	if err != nil {
		return fmt.Errorf("updating user password: %w", err)
	}
	return nil
}

// TouchLastLogin records a successful login.
func TouchLastLogin(ctx context.Context, db DBTX, id int64, at time.Time) error {
	_, err := db.ExecContext(ctx,
		`UPDATE users SET last_login = ? WHERE id = ?`, at.UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("updating last login: %w", err)
	}
	return nil
}

// DeactivateUser soft-deletes an active user. It reports false when no
// active user with that ID exists.
func DeactivateUser(ctx context.Context, db DBTX, id int64) (bool, error) {
	res, err := db.ExecContext(ctx,
		`UPDATE users SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL`,
		id,
	)
	if err != nil {
		return false, fmt.Errorf("deactivating user: %w", err)
	}
	ok, err := affectedOne(res)
	if err != nil {
		return false, fmt.Errorf("deactivating user: %w", err)
	}
	return ok, nil
}

// AddTrackRecord adds the deltas to a user's counters. It fails if the
// user row does not exist.
func AddTrackRecord(ctx context.Context, db DBTX, id int64, delta model.TrackRecord) error {
	res, err := db.ExecContext(ctx,
		`UPDATE users SET items_found = items_found + ?, items_lost = items_lost + ?,
		        items_returned = items_returned + ?
		 WHERE id = ?`,
		delta.ItemsFound, delta.ItemsLost, delta.ItemsReturned, id,
	)
	if err != nil {
		return fmt.Errorf("updating track record: %w", err)
	}
	ok, err := affectedOne(res)
	if err != nil {
		return fmt.Errorf("updating track record: %w", err)
	}
	if !ok {
		return fmt.Errorf("updating track record: user %d not found", id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*model.User, error) {
	u := &model.User{}
	err := row.Scan(&u.ID, &u.Identifier, &u.DisplayName, &u.Email, &u.School, &u.PasswordHash, &u.Role,
		&u.TrackRecord.ItemsFound, &u.TrackRecord.ItemsLost, &u.TrackRecord.ItemsReturned,
		&u.CreatedAt, &u.LastLogin, &u.DeletedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}
