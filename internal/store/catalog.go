package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/najdeno/internal/model"
)

// CreateCategory creates a category. Names are unique.
func CreateCategory(ctx context.Context, db DBTX, name string) (*model.Category, error) {
	id, err := insertNamed(ctx, db, "categories", name)
	if err != nil {
		return nil, fmt.Errorf("creating category: %w", err)
	}
	return &model.Category{ID: id, Name: name}, nil
}

// GetCategory returns a category by ID.
func GetCategory(ctx context.Context, db DBTX, id int64) (*model.Category, error) {
	c := &model.Category{}
	err := db.QueryRowContext(ctx, `SELECT id, name FROM categories WHERE id = ?`, id).Scan(&c.ID, &c.Name)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting category: %w", err)
	}
	return c, nil
}

// ListCategories returns all categories ordered by name.
func ListCategories(ctx context.Context, db DBTX) ([]model.Category, error) {
	rows, err := db.QueryContext(ctx, `SELECT id, name FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	defer rows.Close()

	var out []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// EnsureCategory returns the category with the given name, creating it if
// it does not exist yet.
func EnsureCategory(ctx context.Context, db DBTX, name string) (*model.Category, error) {
	id, err := ensureNamed(ctx, db, "categories", name)
	if err != nil {
		return nil, fmt.Errorf("ensuring category: %w", err)
	}
	return &model.Category{ID: id, Name: name}, nil
}

// CreateLocation creates a location. Names are unique.
func CreateLocation(ctx context.Context, db DBTX, name string) (*model.Location, error) {
	id, err := insertNamed(ctx, db, "locations", name)
	if err != nil {
		return nil, fmt.Errorf("creating location: %w", err)
	}
	return &model.Location{ID: id, Name: name}, nil
}

// GetLocation returns a location by ID.
func GetLocation(ctx context.Context, db DBTX, id int64) (*model.Location, error) {
	l := &model.Location{}
	err := db.QueryRowContext(ctx, `SELECT id, name FROM locations WHERE id = ?`, id).Scan(&l.ID, &l.Name)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting location: %w", err)
	}
	return l, nil
}

// ListLocations returns all locations ordered by name.
func ListLocations(ctx context.Context, db DBTX) ([]model.Location, error) {
	rows, err := db.QueryContext(ctx, `SELECT id, name FROM locations ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing locations: %w", err)
	}
	defer rows.Close()

	var out []model.Location
	for rows.Next() {
		var l model.Location
		if err := rows.Scan(&l.ID, &l.Name); err != nil {
			return nil, fmt.Errorf("scanning location: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// EnsureLocation returns the location with the given name, creating it if
// it does not exist yet.
func EnsureLocation(ctx context.Context, db DBTX, name string) (*model.Location, error) {
	id, err := ensureNamed(ctx, db, "locations", name)
	if err != nil {
		return nil, fmt.Errorf("ensuring location: %w", err)
	}
	return &model.Location{ID: id, Name: name}, nil
}

// table is always one of the two literal catalog table names above.
func insertNamed(ctx context.Context, db DBTX, table, name string) (int64, error) {
	res, err := db.ExecContext(ctx, `INSERT INTO `+table+` (name) VALUES (?)`, name)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func ensureNamed(ctx context.Context, db DBTX, table, name string) (int64, error) {
	if _, err := db.ExecContext(ctx, `INSERT OR IGNORE INTO `+table+` (name) VALUES (?)`, name); err != nil {
		return 0, err
	}
	var id int64
	if err := db.QueryRowContext(ctx, `SELECT id FROM `+table+` WHERE name = ?`, name).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}
