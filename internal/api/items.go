package api

import (
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/erazemk/najdeno/internal/apperr"
	"github.com/erazemk/najdeno/internal/imaging"
	"github.com/erazemk/najdeno/internal/lifecycle"
	"github.com/erazemk/najdeno/internal/model"
)

// maxMultipartBytes bounds a whole item upload: three photos plus fields.
const maxMultipartBytes = 3*imaging.MaxUploadBytes + 1<<20

// ItemsHandler handles item endpoints.
type ItemsHandler struct {
	Engine *lifecycle.Engine
}

type createItemRequest struct {
	Title             string                    `json:"title"`
	Description       string                    `json:"description"`
	Type              string                    `json:"type"`
	CategoryID        int64                     `json:"category_id"`
	LocationID        int64                     `json:"location_id"`
	DateFound         string                    `json:"date_found"`
	DateLastSeen      string                    `json:"date_last_seen"`
	ContactInfo       string                    `json:"contact_info"`
	SecurityQuestions []lifecycle.QuestionInput `json:"security_questions"`
	Keywords          []string                  `json:"keywords"`
}

type updateItemRequest struct {
	Title        *string `json:"title"`
	Description  *string `json:"description"`
	CategoryID   *int64  `json:"category_id"`
	LocationID   *int64  `json:"location_id"`
	DateFound    *string `json:"date_found"`
	DateLastSeen *string `json:"date_last_seen"`
	ContactInfo  *string `json:"contact_info"`
}

// List handles GET /api/items.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := lifecycle.ItemFilter{
		Query:  q.Get("q"),
		Type:   q.Get("type"),
		Status: q.Get("status"),
	}

	var limit, page int64
	fields := make(map[string]string)
	ints := []struct {
		name, alias string
		dst         *int64
	}{
		{"category_id", "categoryId", &filter.CategoryID},
		{"location_id", "locationId", &filter.LocationID},
		{"owner_id", "ownerId", &filter.OwnerID},
		{"limit", "", &limit},
		{"page", "", &page},
	}
	for _, p := range ints {
		name := p.name
		if q.Get(name) == "" && p.alias != "" {
			name = p.alias
		}
		n, err := queryInt(r, name)
		if err != nil {
			fields[p.name] = "must be a number"
		}
		*p.dst = n
	}
	if len(fields) > 0 {
		writeError(w, r, apperr.Validation(fields))
		return
	}
	filter.Limit, filter.Page = int(limit), int(page)

	items, err := h.Engine.SearchItems(r.Context(), GetIdentity(r.Context()), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// Get handles GET /api/items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	item, err := h.Engine.GetItem(r.Context(), GetIdentity(r.Context()), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Create handles POST /api/items. It accepts a JSON body, or a multipart
// form with the same fields plus up to three "photos" files.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createItemRequest
	var uploads []lifecycle.Upload

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		r.Body = http.MaxBytesReader(w, r.Body, maxMultipartBytes)
		if err := r.ParseMultipartForm(maxMultipartBytes); err != nil {
			jsonError(w, http.StatusBadRequest, "invalid multipart form")
			return
		}
		defer r.MultipartForm.RemoveAll()

		var err error
		req, err = itemFromForm(r.MultipartForm)
		if err != nil {
			writeError(w, r, err)
			return
		}

		files := r.MultipartForm.File["photos"]
		if len(files) > model.MaxPhotos {
			writeError(w, r, apperr.Validation(map[string]string{"photos": "at most 3 allowed"}))
			return
		}
		for _, fh := range files {
			f, err := fh.Open()
			if err != nil {
				jsonError(w, http.StatusBadRequest, "invalid photo upload")
				return
			}
			defer f.Close()
			uploads = append(uploads, lifecycle.Upload{Filename: fh.Filename, Body: f})
		}
	} else if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	fields := make(map[string]string)
	dateFound, err := parseDate(req.DateFound)
	if err != nil {
		fields["date_found"] = err.Error()
	}
	dateLastSeen, err := parseDate(req.DateLastSeen)
	if err != nil {
		fields["date_last_seen"] = err.Error()
	}
	if len(fields) > 0 {
		writeError(w, r, apperr.Validation(fields))
		return
	}

	id := GetIdentity(r.Context())
	item, err := h.Engine.CreateItem(r.Context(), id.UserID, lifecycle.CreateItemInput{
		Title:             req.Title,
		Description:       req.Description,
		Type:              req.Type,
		CategoryID:        req.CategoryID,
		LocationID:        req.LocationID,
		DateFound:         dateFound,
		DateLastSeen:      dateLastSeen,
		ContactInfo:       req.ContactInfo,
		SecurityQuestions: req.SecurityQuestions,
		Keywords:          req.Keywords,
		Photos:            uploads,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	jsonResponse(w, http.StatusCreated, item)
}

// itemFromForm reads item fields from a multipart form. Security
// questions come as a JSON array; keywords as a comma-separated list.
func itemFromForm(form *multipart.Form) (createItemRequest, error) {
	get := func(name string) string {
		if v := form.Value[name]; len(v) > 0 {
			return v[0]
		}
		return ""
	}

	req := createItemRequest{
		Title:        get("title"),
		Description:  get("description"),
		Type:         get("type"),
		DateFound:    get("date_found"),
		DateLastSeen: get("date_last_seen"),
		ContactInfo:  get("contact_info"),
	}

	fields := make(map[string]string)
	for name, dst := range map[string]*int64{"category_id": &req.CategoryID, "location_id": &req.LocationID} {
		if v := get(name); v != "" {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				fields[name] = "must be a number"
			}
			*dst = n
		}
	}
	if v := get("security_questions"); v != "" {
		if err := json.Unmarshal([]byte(v), &req.SecurityQuestions); err != nil {
			fields["security_questions"] = fmt.Sprintf("invalid JSON: %v", err)
		}
	}
	for _, k := range strings.Split(get("keywords"), ",") {
		if k = strings.TrimSpace(k); k != "" {
			req.Keywords = append(req.Keywords, k)
		}
	}
	if len(fields) > 0 {
		return req, apperr.Validation(fields)
	}
	return req, nil
}

// Update handles PUT /api/items/{id}.
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	itemID, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var req updateItemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	in := lifecycle.UpdateItemInput{
		Title:       req.Title,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		LocationID:  req.LocationID,
		ContactInfo: req.ContactInfo,
	}
	fields := make(map[string]string)
	if req.DateFound != nil {
		if in.DateFound, err = parseDate(*req.DateFound); err != nil {
			fields["date_found"] = err.Error()
		}
	}
	if req.DateLastSeen != nil {
		if in.DateLastSeen, err = parseDate(*req.DateLastSeen); err != nil {
			fields["date_last_seen"] = err.Error()
		}
	}
	if len(fields) > 0 {
		writeError(w, r, apperr.Validation(fields))
		return
	}

	item, err := h.Engine.UpdateItem(r.Context(), GetIdentity(r.Context()), itemID, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Delete handles DELETE /api/items/{id}.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	itemID, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	if err := h.Engine.DeleteItem(r.Context(), GetIdentity(r.Context()), itemID); err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "item deleted"})
}
