package web

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/cwmc/portable-launcher/internal/services/roster"
	"github.com/cwmc/portable-launcher/internal/web/handler"
	"github.com/cwmc/portable-launcher/internal/web/middleware"
)

// RouterConfig holds configuration for the web router
type RouterConfig struct {
	Logger        *slog.Logger
	RosterService *roster.Service
	Title         string
	ContentDir    string // Directory served at the root; content packs live here
}

// NewRouter creates a new web router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))

	rosterHandler := handler.NewRosterHandler(cfg.RosterService, cfg.Title, cfg.Logger)
	r.HandleFunc("/roster", rosterHandler.Roster).Methods(http.MethodGet)
	r.Handle("/", http.RedirectHandler("/roster", http.StatusFound)).Methods(http.MethodGet)

	// Content pack files
	if cfg.ContentDir != "" {
		r.PathPrefix("/").Handler(handler.NewContentHandler(cfg.ContentDir)).Methods(http.MethodGet, http.MethodHead)
	}

	return r
}
