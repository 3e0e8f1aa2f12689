package handler

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/cwmc/portable-launcher/internal/model"
	"github.com/cwmc/portable-launcher/internal/services/roster"
)

//go:embed templates/*.html
var templateFS embed.FS

var rosterTemplate = template.Must(template.New("roster.html").Funcs(template.FuncMap{
	"stamp": func(t time.Time) string {
		return t.UTC().Format("2006-01-02 15:04 MST")
	},
	"teamID": func(t model.Team) string {
		if id, ok := t.ID(); ok {
			return strconv.Itoa(id)
		}
		return ""
	},
}).ParseFS(templateFS, "templates/roster.html"))

// RosterData is the roster page model
type RosterData struct {
	Title string
	*roster.View
}

// RosterHandler renders the organizer roster page
type RosterHandler struct {
	roster *roster.Service
	title  string
	logger *slog.Logger
}

// NewRosterHandler creates a new RosterHandler
func NewRosterHandler(rosterService *roster.Service, title string, logger *slog.Logger) *RosterHandler {
	if title == "" {
		title = "Event roster"
	}
	return &RosterHandler{
		roster: rosterService,
		title:  title,
		logger: logger,
	}
}

// Roster handles GET /roster
func (h *RosterHandler) Roster(w http.ResponseWriter, r *http.Request) {
	view, err := h.roster.View(r.Context())
	if err != nil {
		h.logger.Error("failed to load roster", slog.String("error", err.Error()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := rosterTemplate.Execute(w, RosterData{Title: h.title, View: view}); err != nil {
		h.logger.Error("failed to render roster", slog.String("error", err.Error()))
	}
}
