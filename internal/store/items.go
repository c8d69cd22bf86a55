package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/erazemk/najdeno/internal/model"
)

// NewItem holds the fields needed to create an item. Answer hashes in
// Questions must already be digested.
type NewItem struct {
	Title        string
	Description  string
	Type         string
	CategoryID   int64
	LocationID   int64
	DateFound    *time.Time
	DateLastSeen *time.Time
	OwnerID      int64
	ContactInfo  string
	Questions    []model.SecurityQuestion
	Photos       []string
	Keywords     []string
}

// ItemDetails are the client-editable fields of an item.
type ItemDetails struct {
	Title        string
	Description  string
	CategoryID   int64
	LocationID   int64
	DateFound    *time.Time
	DateLastSeen *time.Time
	ContactInfo  string
	Keywords     []string
}

// ItemFilter narrows a listing. Terms must already be normalized; every
// term has to appear among an item's keywords.
type ItemFilter struct {
	Terms      []string
	Type       string
	CategoryID int64
	LocationID int64
	Status     string
	OwnerID    int64
	Page
}

const itemSelect = `SELECT i.id, i.title, i.description, i.type, i.status, i.category_id, i.location_id,
	i.date_found, i.date_last_seen, i.owner_id, i.contact_info, i.search_keywords, i.version,
	i.created_at, i.updated_at, i.deleted_at, c.name, l.name, u.display_name
	FROM items i
	JOIN categories c ON c.id = i.category_id
	JOIN locations l ON l.id = i.location_id
	JOIN users u ON u.id = i.owner_id`

// CreateItem inserts an item with its questions and photos. Status
// starts at Open.
func CreateItem(ctx context.Context, db DBTX, it NewItem) (*model.Item, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO items (title, description, type, status, category_id, location_id,
		                    date_found, date_last_seen, owner_id, contact_info, search_keywords)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		it.Title, it.Description, it.Type, model.ItemStatusOpen, it.CategoryID, it.LocationID,
		utcPtr(it.DateFound), utcPtr(it.DateLastSeen), it.OwnerID, it.ContactInfo,
		strings.Join(it.Keywords, " "),
	)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting item id: %w", err)
	}

	for n, q := range it.Questions {
		_, err := db.ExecContext(ctx,
			`INSERT INTO item_security_questions (item_id, position, question, answer_hash)
			 VALUES (?, ?, ?, ?)`,
			id, n+1, q.Question, q.AnswerHash,
		)
		if err != nil {
			return nil, fmt.Errorf("storing security question: %w", err)
		}
	}

	if err := ReplaceItemPhotos(ctx, db, id, it.Photos); err != nil {
		return nil, err
	}

	return GetItem(ctx, db, id)
}

// GetItem returns an item by ID with its questions and photos. Deleted
// items are returned too; callers check IsDeleted.
func GetItem(ctx context.Context, db DBTX, id int64) (*model.Item, error) {
	item, err := scanItem(db.QueryRowContext(ctx, itemSelect+` WHERE i.id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	if err := loadItemChildren(ctx, db, item); err != nil {
		return nil, err
	}
	return item, nil
}

// SearchItems returns non-deleted items matching the filter, newest first.
func SearchItems(ctx context.Context, db DBTX, f ItemFilter) ([]model.Item, error) {
	var where []string
	var args []any
	where = append(where, "i.deleted_at IS NULL")
	for _, term := range f.Terms {
		where = append(where, `(' ' || i.search_keywords || ' ') LIKE ? ESCAPE '\'`)
		args = append(args, "% "+escapeLike(term)+" %")
	}
	if f.Type != "" {
		where = append(where, "i.type = ?")
		args = append(args, f.Type)
	}
	if f.CategoryID != 0 {
		where = append(where, "i.category_id = ?")
		args = append(args, f.CategoryID)
	}
	if f.LocationID != 0 {
		where = append(where, "i.location_id = ?")
		args = append(args, f.LocationID)
	}
	if f.Status != "" {
		where = append(where, "i.status = ?")
		args = append(args, f.Status)
	}
	if f.OwnerID != 0 {
		where = append(where, "i.owner_id = ?")
		args = append(args, f.OwnerID)
	}

	limit, offset := f.Window()
	args = append(args, limit, offset)

	rows, err := db.QueryContext(ctx,
		itemSelect+` WHERE `+strings.Join(where, " AND ")+
			` ORDER BY i.created_at DESC, i.id DESC LIMIT ? OFFSET ?`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("searching items: %w", err)
	}

	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("searching items: %w", err)
	}
	rows.Close()

	for n := range items {
		if err := loadItemChildren(ctx, db, &items[n]); err != nil {
			return nil, err
		}
	}
	return items, nil
}

// UpdateItemDetails overwrites the editable fields of a live item if its
// version still matches. It reports false when the item changed or was
// deleted in the meantime.
func UpdateItemDetails(ctx context.Context, db DBTX, id, version int64, d ItemDetails) (bool, error) {
	res, err := db.ExecContext(ctx,
		`UPDATE items SET title = ?, description = ?, category_id = ?, location_id = ?,
		        date_found = ?, date_last_seen = ?, contact_info = ?, search_keywords = ?,
		        version = version + 1, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND version = ? AND deleted_at IS NULL`,
		d.Title, d.Description, d.CategoryID, d.LocationID,
		utcPtr(d.DateFound), utcPtr(d.DateLastSeen), d.ContactInfo, strings.Join(d.Keywords, " "),
		id, version,
	)
	if err != nil {
		return false, fmt.Errorf("updating item: %w", err)
	}
	ok, err := affectedOne(res)
	if err != nil {
		return false, fmt.Errorf("updating item: %w", err)
	}
	return ok, nil
}

// SetItemStatus moves a live item from one status to another if both its
// status and version still match.
func SetItemStatus(ctx context.Context, db DBTX, id, version int64, from, to string) (bool, error) {
	res, err := db.ExecContext(ctx,
		`UPDATE items SET status = ?, version = version + 1, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND status = ? AND version = ? AND deleted_at IS NULL`,
		to, id, from, version,
	)
	if err != nil {
		return false, fmt.Errorf("updating item status: %w", err)
	}
	ok, err := affectedOne(res)
	if err != nil {
		return false, fmt.Errorf("updating item status: %w", err)
	}
	return ok, nil
}

// SoftDeleteItem marks a live item deleted if its version still matches.
func SoftDeleteItem(ctx context.Context, db DBTX, id, version int64) (bool, error) {
	res, err := db.ExecContext(ctx,
		`UPDATE items SET deleted_at = CURRENT_TIMESTAMP, version = version + 1,
		        updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND version = ? AND deleted_at IS NULL`,
		id, version,
	)
	if err != nil {
		return false, fmt.Errorf("deleting item: %w", err)
	}
	ok, err := affectedOne(res)
	if err != nil {
		return false, fmt.Errorf("deleting item: %w", err)
	}
	return ok, nil
}

// ReplaceItemPhotos sets the photo URLs of an item, in order.
func ReplaceItemPhotos(ctx context.Context, db DBTX, id int64, urls []string) error {
	if _, err := db.ExecContext(ctx, `DELETE FROM item_photos WHERE item_id = ?`, id); err != nil {
		return fmt.Errorf("clearing item photos: %w", err)
	}
	for n, url := range urls {
		_, err := db.ExecContext(ctx,
			`INSERT INTO item_photos (item_id, position, url) VALUES (?, ?, ?)`,
			id, n+1, url,
		)
		if err != nil {
			return fmt.Errorf("storing item photo: %w", err)
		}
	}
	return nil
}

func loadItemChildren(ctx context.Context, db DBTX, item *model.Item) error {
	rows, err := db.QueryContext(ctx,
		`SELECT question, answer_hash FROM item_security_questions
		 WHERE item_id = ? ORDER BY position`, item.ID,
	)
	if err != nil {
		return fmt.Errorf("loading security questions: %w", err)
	}
	item.SecurityQuestions = []model.SecurityQuestion{}
	for rows.Next() {
		var q model.SecurityQuestion
		if err := rows.Scan(&q.Question, &q.AnswerHash); err != nil {
			rows.Close()
			return fmt.Errorf("scanning security question: %w", err)
		}
		item.SecurityQuestions = append(item.SecurityQuestions, q)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("loading security questions: %w", err)
	}

	rows, err = db.QueryContext(ctx,
		`SELECT url FROM item_photos WHERE item_id = ? ORDER BY position`, item.ID,
	)
	if err != nil {
		return fmt.Errorf("loading item photos: %w", err)
	}
	defer rows.Close()
	item.Photos = []string{}
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return fmt.Errorf("scanning item photo: %w", err)
		}
		item.Photos = append(item.Photos, url)
	}
	return rows.Err()
}

func scanItem(row rowScanner) (*model.Item, error) {
	item := &model.Item{}
	var keywords string
	err := row.Scan(&item.ID, &item.Title, &item.Description, &item.Type, &item.Status,
		&item.CategoryID, &item.LocationID, &item.DateFound, &item.DateLastSeen,
		&item.OwnerID, &item.ContactInfo, &keywords, &item.Version,
		&item.CreatedAt, &item.UpdatedAt, &item.DeletedAt,
		&item.CategoryName, &item.LocationName, &item.OwnerName)
	if err != nil {
		return nil, err
	}
	item.Keywords = strings.Fields(keywords)
	return item, nil
}

func utcPtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
