package lifecycle

import (
	"context"
	"database/sql"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/erazemk/najdeno/internal/apperr"
	"github.com/erazemk/najdeno/internal/auth"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

// Field limits.
const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 5000
	MaxContactLength     = 500
)

// QuestionInput is a security question with its expected answer in
// plain text. Only the answer's digest is stored.
type QuestionInput struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// CreateItemInput describes a new lost or found item.
type CreateItemInput struct {
	Title             string
	Description       string
	Type              string
	CategoryID        int64
	LocationID        int64
	DateFound         *time.Time
	DateLastSeen      *time.Time
	ContactInfo       string
	SecurityQuestions []QuestionInput
	// Keywords are extra search terms on top of the derived ones.
	Keywords []string
	Photos   []Upload
}

// UpdateItemInput holds the editable fields of an item. Nil fields are
// left unchanged.
type UpdateItemInput struct {
	Title        *string
	Description  *string
	CategoryID   *int64
	LocationID   *int64
	DateFound    *time.Time
	DateLastSeen *time.Time
	ContactInfo  *string
}

// ItemFilter narrows an item search. Query is free text; every word in
// it must match.
type ItemFilter struct {
	Query      string
	Type       string
	CategoryID int64
	LocationID int64
	Status     string
	OwnerID    int64
	Limit      int
	Page       int
}

// itemFields is the common shape validated on create and update.
type itemFields struct {
	title, description, itemType, contact string
	categoryID, locationID                int64
	dateFound, dateLastSeen               *time.Time
}

func (f itemFields) validate(fields map[string]string) {
	switch {
	case f.title == "":
		fields["title"] = "required"
	case utf8.RuneCountInString(f.title) > MaxTitleLength:
		fields["title"] = "too long"
	}
	switch {
	case f.description == "":
		fields["description"] = "required"
	case utf8.RuneCountInString(f.description) > MaxDescriptionLength:
		fields["description"] = "too long"
	}
	if utf8.RuneCountInString(f.contact) > MaxContactLength {
		fields["contact_info"] = "too long"
	}
	if f.categoryID <= 0 {
		fields["category_id"] = "required"
	}
	if f.locationID <= 0 {
		fields["location_id"] = "required"
	}

	switch f.itemType {
	case model.ItemTypeFound:
		if f.dateFound == nil {
			fields["date_found"] = "required for found items"
		}
		if f.dateLastSeen != nil {
			fields["date_last_seen"] = "not allowed for found items"
		}
	case model.ItemTypeLost:
		if f.dateLastSeen == nil {
			fields["date_last_seen"] = "required for lost items"
		}
		if f.dateFound != nil {
			fields["date_found"] = "not allowed for lost items"
		}
	default:
		fields["type"] = "must be lost or found"
	}
}

// resolveCatalog loads the category and location, recording missing ones
// as validation failures.
func resolveCatalog(ctx context.Context, q store.DBTX, categoryID, locationID int64, fields map[string]string) (*model.Category, *model.Location, error) {
	var cat *model.Category
	var loc *model.Location
	var err error
	if categoryID > 0 {
		if cat, err = store.GetCategory(ctx, q, categoryID); err != nil {
			return nil, nil, err
		}
		if cat == nil {
			fields["category_id"] = "unknown category"
		}
	}
	if locationID > 0 {
		if loc, err = store.GetLocation(ctx, q, locationID); err != nil {
			return nil, nil, err
		}
		if loc == nil {
			fields["location_id"] = "unknown location"
		}
	}
	return cat, loc, nil
}

// CreateItem reports a lost or found item. Photos are processed and
// uploaded before the item is stored; the item starts Open.
func (e *Engine) CreateItem(ctx context.Context, reporterID int64, in CreateItemInput) (*model.Item, error) {
	f := itemFields{
		title:        strings.TrimSpace(in.Title),
		description:  strings.TrimSpace(in.Description),
		itemType:     in.Type,
		contact:      strings.TrimSpace(in.ContactInfo),
		categoryID:   in.CategoryID,
		locationID:   in.LocationID,
		dateFound:    in.DateFound,
		dateLastSeen: in.DateLastSeen,
	}
	fields := make(map[string]string)
	f.validate(fields)

	if len(in.SecurityQuestions) > model.MaxSecurityQuestions {
		fields["security_questions"] = "at most 3 allowed"
	}
	questions := make([]model.SecurityQuestion, 0, len(in.SecurityQuestions))
	for _, q := range in.SecurityQuestions {
		question := strings.TrimSpace(q.Question)
		if question == "" || strings.TrimSpace(q.Answer) == "" {
			fields["security_questions"] = "question and answer required"
			continue
		}
		questions = append(questions, model.SecurityQuestion{
			Question:   question,
			AnswerHash: auth.HashAnswer(q.Answer),
		})
	}
	if len(in.Photos) > model.MaxPhotos {
		fields["photos"] = "at most 3 allowed"
	}

	reporter, err := store.GetUser(ctx, e.db, reporterID)
	if err != nil {
		return nil, apperr.Store(err)
	}
	if reporter == nil {
		return nil, apperr.NotFound("user not found")
	}
	if reporter.IsDeleted() {
		return nil, apperr.Forbidden("account is deactivated")
	}

	cat, loc, err := resolveCatalog(ctx, e.db, f.categoryID, f.locationID, fields)
	if err != nil {
		return nil, apperr.Store(err)
	}
	if len(fields) > 0 {
		return nil, apperr.Validation(fields)
	}

	photos, err := e.storePhotos(ctx, in.Photos)
	if err != nil {
		return nil, err
	}

	var keywords []string
	keywords = append(keywords, in.Keywords...)
	keywords = Keywords(append(keywords, f.title, f.description, cat.Name, loc.Name)...)

	var item *model.Item
	err = e.atomically(ctx, "create item", func(ctx context.Context, tx *sql.Tx) error {
		var err error
		item, err = store.CreateItem(ctx, tx, store.NewItem{
			Title:        f.title,
			Description:  f.description,
			Type:         f.itemType,
			CategoryID:   f.categoryID,
			LocationID:   f.locationID,
			DateFound:    f.dateFound,
			DateLastSeen: f.dateLastSeen,
			OwnerID:      reporterID,
			ContactInfo:  f.contact,
			Questions:    questions,
			Photos:       photoURLs(photos),
			Keywords:     keywords,
		})
		return err
	})
	if err != nil {
		e.discardPhotos(photos)
		return nil, err
	}

	e.log.Info("item reported", "user", reporter.Identifier, "item", item.ID, "type", item.Type)
	return item, nil
}

// UpdateItem edits an item's details. Only the reporter or an admin may
// do so; status, owner and security questions are never touched.
func (e *Engine) UpdateItem(ctx context.Context, id *auth.Identity, itemID int64, in UpdateItemInput) (*model.Item, error) {
	if err := auth.RequireRole(id, model.RoleUser); err != nil {
		return nil, err
	}

	var updated *model.Item
	err := e.atomically(ctx, "update item", func(ctx context.Context, tx *sql.Tx) error {
		item, err := store.GetItem(ctx, tx, itemID)
		if err != nil {
			return err
		}
		if item == nil || item.IsDeleted() {
			return apperr.NotFound("item not found")
		}
		if item.OwnerID != id.UserID && !id.IsAdmin() {
			return apperr.Forbidden("only the reporter or an admin can edit this item")
		}

		f := itemFields{
			title:        item.Title,
			description:  item.Description,
			itemType:     item.Type,
			contact:      item.ContactInfo,
			categoryID:   item.CategoryID,
			locationID:   item.LocationID,
			dateFound:    item.DateFound,
			dateLastSeen: item.DateLastSeen,
		}
		if in.Title != nil {
			f.title = strings.TrimSpace(*in.Title)
		}
		if in.Description != nil {
			f.description = strings.TrimSpace(*in.Description)
		}
		if in.ContactInfo != nil {
			f.contact = strings.TrimSpace(*in.ContactInfo)
		}
		if in.CategoryID != nil {
			f.categoryID = *in.CategoryID
		}
		if in.LocationID != nil {
			f.locationID = *in.LocationID
		}
		if in.DateFound != nil {
			f.dateFound = in.DateFound
		}
		if in.DateLastSeen != nil {
			f.dateLastSeen = in.DateLastSeen
		}

		fields := make(map[string]string)
		f.validate(fields)
		cat, loc, err := resolveCatalog(ctx, tx, f.categoryID, f.locationID, fields)
		if err != nil {
			return err
		}
		if len(fields) > 0 {
			return apperr.Validation(fields)
		}

		ok, err := store.UpdateItemDetails(ctx, tx, item.ID, item.Version, store.ItemDetails{
			Title:        f.title,
			Description:  f.description,
			CategoryID:   f.categoryID,
			LocationID:   f.locationID,
			DateFound:    f.dateFound,
			DateLastSeen: f.dateLastSeen,
			ContactInfo:  f.contact,
			Keywords:     Keywords(f.title, f.description, cat.Name, loc.Name),
		})
		if err != nil {
			return err
		}
		if !ok {
			return errStale
		}

		updated, err = store.GetItem(ctx, tx, item.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	e.log.Info("item updated", "user", id.Identifier, "item", itemID)
	return updated.ViewFor(id.UserID, id.Role), nil
}

// DeleteItem soft-deletes an item. Items with a pending claim cannot be
// deleted until the claim is adjudicated.
func (e *Engine) DeleteItem(ctx context.Context, id *auth.Identity, itemID int64) error {
	if err := auth.RequireRole(id, model.RoleUser); err != nil {
		return err
	}

	err := e.atomically(ctx, "delete item", func(ctx context.Context, tx *sql.Tx) error {
		item, err := store.GetItem(ctx, tx, itemID)
		if err != nil {
			return err
		}
		if item == nil || item.IsDeleted() {
			return apperr.NotFound("item not found")
		}
		if item.OwnerID != id.UserID && !id.IsAdmin() {
			return apperr.Forbidden("only the reporter or an admin can delete this item")
		}

		pending, err := store.CountPendingClaims(ctx, tx, item.ID)
		if err != nil {
			return err
		}
		if pending > 0 {
			return apperr.InvalidState("item has a pending claim")
		}

		ok, err := store.SoftDeleteItem(ctx, tx, item.ID, item.Version)
		if err != nil {
			return err
		}
		if !ok {
			return errStale
		}
		return nil
	})
	if err != nil {
		return err
	}

	e.log.Info("item deleted", "user", id.Identifier, "item", itemID)
	return nil
}

// GetItem returns a live item as seen by viewer, which may be nil for
// anonymous callers.
func (e *Engine) GetItem(ctx context.Context, viewer *auth.Identity, itemID int64) (*model.Item, error) {
	item, err := store.GetItem(ctx, e.db, itemID)
	if err != nil {
		return nil, apperr.Store(err)
	}
	if item == nil || item.IsDeleted() {
		return nil, apperr.NotFound("item not found")
	}
	return view(item, viewer), nil
}

// SearchItems lists live items matching the filter, newest first.
func (e *Engine) SearchItems(ctx context.Context, viewer *auth.Identity, f ItemFilter) ([]model.Item, error) {
	fields := make(map[string]string)
	if f.Type != "" && !model.ValidItemType(f.Type) {
		fields["type"] = "must be lost or found"
	}
	if f.Status != "" && !model.ValidItemStatus(f.Status) {
		fields["status"] = "unknown status"
	}
	if len(fields) > 0 {
		return nil, apperr.Validation(fields)
	}

	items, err := store.SearchItems(ctx, e.db, store.ItemFilter{
		Terms:      Keywords(f.Query),
		Type:       f.Type,
		CategoryID: f.CategoryID,
		LocationID: f.LocationID,
		Status:     f.Status,
		OwnerID:    f.OwnerID,
		Page:       store.Page{Limit: f.Limit, Page: f.Page},
	})
	if err != nil {
		return nil, apperr.Store(err)
	}

	out := make([]model.Item, len(items))
	for i := range items {
		out[i] = *view(&items[i], viewer)
	}
	return out, nil
}

func view(item *model.Item, viewer *auth.Identity) *model.Item {
	if viewer == nil {
		return item.ViewFor(0, "")
	}
	return item.ViewFor(viewer.UserID, viewer.Role)
}
