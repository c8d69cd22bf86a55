package api

import (
	"net/http"
	"time"

	"github.com/erazemk/najdeno/internal/apperr"
	"github.com/erazemk/najdeno/internal/lifecycle"
	"github.com/erazemk/najdeno/internal/model"
)

// AdminHandler handles admin-only user management and reporting.
type AdminHandler struct {
	Engine *lifecycle.Engine
}

// ListUsers handles GET /api/admin/users.
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	limit, _ := queryInt(r, "limit")
	page, _ := queryInt(r, "page")

	users, err := h.Engine.ListUsers(r.Context(), GetIdentity(r.Context()), int(limit), int(page))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if users == nil {
		users = []model.User{}
	}
	jsonResponse(w, http.StatusOK, users)
}

// Deactivate handles PUT /api/admin/users/{id}/deactivate.
func (h *AdminHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	if err := h.Engine.DeactivateUser(r.Context(), GetIdentity(r.Context()), userID); err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "user deactivated"})
}

// Logs handles GET /api/admin/logs, the activity report.
func (h *AdminHandler) Logs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	fields := make(map[string]string)

	var filter lifecycle.ReportFilter
	for name, dst := range map[string]*time.Time{"from": &filter.From, "to": &filter.To} {
		t, err := parseDate(q.Get(name))
		if err != nil {
			fields[name] = err.Error()
			continue
		}
		if t != nil {
			*dst = *t
		}
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		fields["limit"] = "must be a number"
	}
	if len(fields) > 0 {
		writeError(w, r, apperr.Validation(fields))
		return
	}
	filter.Type = q.Get("type")
	filter.Limit = int(limit)

	report, err := h.Engine.Report(r.Context(), GetIdentity(r.Context()), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, report)
}
