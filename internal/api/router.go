package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/erazemk/najdeno/internal/auth"
	"github.com/erazemk/najdeno/internal/lifecycle"
	"github.com/erazemk/najdeno/internal/model"
)

// Deps holds everything the router needs.
type Deps struct {
	DB            *sql.DB
	Engine        *lifecycle.Engine
	Authenticator *auth.Authenticator
	JWTSecret     string
	TokenTTL      time.Duration
	// Photos is nil when photos live in an external object store.
	Photos PhotoSource
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(d Deps) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: d.DB, JWTSecret: d.JWTSecret, TokenTTL: d.TokenTTL}
	catalogHandler := &CatalogHandler{DB: d.DB}
	itemsHandler := &ItemsHandler{Engine: d.Engine}
	claimsHandler := &ClaimsHandler{Engine: d.Engine}
	adminHandler := &AdminHandler{Engine: d.Engine}

	authMW := AuthMiddleware(d.Authenticator)
	optionalAuth := OptionalAuth(d.Authenticator)
	requireAdmin := RequireRole(model.RoleAdmin)

	// Public.
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("GET /api/categories", catalogHandler.Categories)
	mux.HandleFunc("GET /api/locations", catalogHandler.Locations)
	if d.Photos != nil {
		photosHandler := &PhotosHandler{Photos: d.Photos}
		mux.HandleFunc("GET /api/photos/{key...}", photosHandler.Get)
	}

	// Account.
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))
	mux.Handle("GET /api/auth/me", authMW(http.HandlerFunc(authHandler.Me)))
	mux.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))

	// Items: anyone may browse; signed-in users report. Ownership is
	// checked by the engine.
	mux.Handle("GET /api/items", optionalAuth(http.HandlerFunc(itemsHandler.List)))
	mux.Handle("GET /api/items/{id}", optionalAuth(http.HandlerFunc(itemsHandler.Get)))
	mux.Handle("POST /api/items", authMW(http.HandlerFunc(itemsHandler.Create)))
	mux.Handle("PUT /api/items/{id}", authMW(http.HandlerFunc(itemsHandler.Update)))
	mux.Handle("DELETE /api/items/{id}", authMW(http.HandlerFunc(itemsHandler.Delete)))

	// Claims.
	mux.Handle("POST /api/claims", authMW(http.HandlerFunc(claimsHandler.Create)))
	mux.Handle("GET /api/claims/mine", authMW(http.HandlerFunc(claimsHandler.Mine)))
	mux.Handle("GET /api/claims", authMW(requireAdmin(http.HandlerFunc(claimsHandler.List))))
	mux.Handle("GET /api/claims/{id}", authMW(http.HandlerFunc(claimsHandler.Get)))
	mux.Handle("PUT /api/claims/{id}", authMW(requireAdmin(http.HandlerFunc(claimsHandler.Adjudicate))))

	// Admin.
	mux.Handle("GET /api/admin/users", authMW(requireAdmin(http.HandlerFunc(adminHandler.ListUsers))))
	mux.Handle("PUT /api/admin/users/{id}/deactivate", authMW(requireAdmin(http.HandlerFunc(adminHandler.Deactivate))))
	mux.Handle("GET /api/admin/logs", authMW(requireAdmin(http.HandlerFunc(adminHandler.Logs))))

	return mux
}
