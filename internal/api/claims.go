package api

import (
	"net/http"

	"github.com/erazemk/najdeno/internal/lifecycle"
	"github.com/erazemk/najdeno/internal/model"
)

// ClaimsHandler handles claim endpoints.
type ClaimsHandler struct {
	Engine *lifecycle.Engine
}

type submitClaimRequest struct {
	FoundItemID int64    `json:"found_item_id"`
	Answers     []string `json:"answers"`
	Message     string   `json:"message"`
}

type adjudicateRequest struct {
	Status       string `json:"status"`
	AdminComment string `json:"admin_comment"`
}

// Create handles POST /api/claims.
func (h *ClaimsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req submitClaimRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.FoundItemID <= 0 {
		jsonError(w, http.StatusBadRequest, "found_item_id required")
		return
	}

	id := GetIdentity(r.Context())
	claim, err := h.Engine.SubmitClaim(r.Context(), id.UserID, lifecycle.SubmitClaimInput{
		FoundItemID: req.FoundItemID,
		Answers:     req.Answers,
		Message:     req.Message,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, claim)
}

// Mine handles GET /api/claims/mine.
func (h *ClaimsHandler) Mine(w http.ResponseWriter, r *http.Request) {
	limit, _ := queryInt(r, "limit")
	page, _ := queryInt(r, "page")

	claims, err := h.Engine.ListMyClaims(r.Context(), GetIdentity(r.Context()), int(limit), int(page))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if claims == nil {
		claims = []model.Claim{}
	}
	jsonResponse(w, http.StatusOK, claims)
}

// List handles GET /api/claims.
func (h *ClaimsHandler) List(w http.ResponseWriter, r *http.Request) {
	claimantID, _ := queryInt(r, "claimant_id")
	itemID, _ := queryInt(r, "item_id")
	limit, _ := queryInt(r, "limit")
	page, _ := queryInt(r, "page")

	claims, err := h.Engine.ListClaims(r.Context(), GetIdentity(r.Context()), lifecycle.ClaimFilter{
		Status:     r.URL.Query().Get("status"),
		ClaimantID: claimantID,
		ItemID:     itemID,
		Limit:      int(limit),
		Page:       int(page),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	if claims == nil {
		claims = []model.Claim{}
	}
	jsonResponse(w, http.StatusOK, claims)
}

// Get handles GET /api/claims/{id}.
func (h *ClaimsHandler) Get(w http.ResponseWriter, r *http.Request) {
	claimID, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid claim id")
		return
	}

	claim, err := h.Engine.GetClaim(r.Context(), GetIdentity(r.Context()), claimID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, claim)
}

// Adjudicate handles PUT /api/claims/{id}.
func (h *ClaimsHandler) Adjudicate(w http.ResponseWriter, r *http.Request) {
	claimID, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid claim id")
		return
	}

	var req adjudicateRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	claim, err := h.Engine.AdjudicateClaim(r.Context(), GetIdentity(r.Context()), claimID, lifecycle.AdjudicateInput{
		Decision:     req.Status,
		AdminComment: req.AdminComment,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, claim)
}
