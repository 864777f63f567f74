// Package server implements the HTTP server and routing logic.
package server

import (
	"net/http"

	"github.com/snapdb/snapdb/internal/auth"
	"github.com/snapdb/snapdb/internal/models"
	"github.com/snapdb/snapdb/internal/server/handlers"
	"github.com/snapdb/snapdb/internal/server/ipgeo"
	"github.com/snapdb/snapdb/internal/server/ratelimit"
	"github.com/snapdb/snapdb/internal/storage"
)

// Config carries the router's dependencies and settings.
type Config struct {
	// Tokens signs and verifies API tokens.
	Tokens *auth.Manager
	// AuthRatePerMin limits login/register attempts per client IP, 0 for
	// unlimited.
	AuthRatePerMin int
	// Geo annotates auth log lines with the client country; may be nil.
	Geo *ipgeo.Checker
	// Version is reported by the health endpoint.
	Version string
}

// NewRouter creates and configures the HTTP router.
func NewRouter(db *storage.DB, cfg *Config) http.Handler {
	mux := &http.ServeMux{}

	items := storage.NewItemService(db)
	users := storage.NewUserService(db)

	ih := handlers.NewItemHandler(items)
	authh := handlers.NewAuthHandler(users, cfg.Tokens, cfg.Geo)
	hh := handlers.NewHealthHandler(cfg.Version)

	mux.Handle("GET /api/health", Wrap(hh.Health))
	mux.Handle("GET /api/schema", Wrap(handlers.Schema))

	// Auth endpoints, rate limited per client IP.
	var limiter *ratelimit.Limiter
	if cfg.AuthRatePerMin > 0 {
		limiter = ratelimit.NewLimiter(cfg.AuthRatePerMin)
	}
	limited := ratelimit.Middleware(limiter)
	mux.Handle("POST /api/auth/login", limited(Wrap(authh.Login)))
	mux.Handle("POST /api/auth/register", limited(Wrap(authh.Register)))

	// Item endpoints. Reads are public, mutations need MUTATE.
	mutate := RequirePermission(models.PermMutate)
	mux.Handle("GET /api/items", Wrap(ih.ListItems))
	mux.Handle("GET /api/items/{id}", Wrap(ih.GetItem))
	mux.Handle("POST /api/items", mutate(Wrap(ih.CreateItem)))
	mux.Handle("PUT /api/items/{id}", mutate(Wrap(ih.UpdateItem)))
	mux.Handle("DELETE /api/items/{id}", mutate(Wrap(ih.DeleteItem)))

	return AuthMiddleware(cfg.Tokens)(mux)
}
