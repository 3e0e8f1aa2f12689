package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/cwmc/portable-launcher/internal/api/handler"
	"github.com/cwmc/portable-launcher/internal/api/middleware"
	"github.com/cwmc/portable-launcher/internal/services/auth"
	"github.com/cwmc/portable-launcher/internal/services/roster"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger        *slog.Logger
	AuthService   *auth.Service
	RosterService *roster.Service
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(handler.NotFound)

	documentHandler := handler.NewDocumentHandler(cfg.RosterService, cfg.Logger)

	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))

	// Documents fetched by launchers
	r.HandleFunc("/teams.json", documentHandler.Teams).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/args.json", documentHandler.Config).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/health", documentHandler.Health).Methods(http.MethodGet)

	// Organizer uploads
	admin := r.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.BasicAuth(cfg.AuthService))
	admin.HandleFunc("/teams.json", documentHandler.PutTeams).Methods(http.MethodPut)
	admin.HandleFunc("/args.json", documentHandler.PutConfig).Methods(http.MethodPut)

	return r
}
