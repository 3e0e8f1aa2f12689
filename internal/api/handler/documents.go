package handler

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/cwmc/portable-launcher/internal/api/middleware"
	"github.com/cwmc/portable-launcher/internal/api/response"
	"github.com/cwmc/portable-launcher/internal/services/roster"
)

// MaxDocumentBytes caps admin upload bodies
const MaxDocumentBytes = 1 << 20

// DocumentHandler serves and replaces the launcher documents
type DocumentHandler struct {
	roster *roster.Service
	logger *slog.Logger
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(rosterService *roster.Service, logger *slog.Logger) *DocumentHandler {
	return &DocumentHandler{
		roster: rosterService,
		logger: logger,
	}
}

// Teams handles GET /teams.json
func (h *DocumentHandler) Teams(w http.ResponseWriter, r *http.Request) {
	doc, err := h.roster.Teams(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	response.Document(w, doc)
}

// Config handles GET /args.json
func (h *DocumentHandler) Config(w http.ResponseWriter, r *http.Request) {
	doc, err := h.roster.Config(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	response.Document(w, doc)
}

// PutTeams handles PUT /admin/teams.json
func (h *DocumentHandler) PutTeams(w http.ResponseWriter, r *http.Request) {
	raw, err := readBody(w, r)
	if err != nil {
		WriteError(w, err)
		return
	}

	stored, err := h.roster.PutTeams(r.Context(), raw, middleware.MustGetAdmin(r.Context()))
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.PublishedFromTeams(stored))
}

// PutConfig handles PUT /admin/args.json
func (h *DocumentHandler) PutConfig(w http.ResponseWriter, r *http.Request) {
	raw, err := readBody(w, r)
	if err != nil {
		WriteError(w, err)
		return
	}

	stored, err := h.roster.PutConfig(r.Context(), raw, middleware.MustGetAdmin(r.Context()))
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.PublishedFromConfig(stored))
}

// Health handles GET /health
func (h *DocumentHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.roster.Check(r.Context()); err != nil {
		h.logger.Error("storage check failed", slog.String("error", err.Error()))
		response.JSON(w, http.StatusServiceUnavailable, response.Health{Status: "degraded", Storage: "unavailable"})
		return
	}
	response.JSON(w, http.StatusOK, response.Health{Status: "ok", Storage: "ok"})
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	return io.ReadAll(http.MaxBytesReader(w, r.Body, MaxDocumentBytes))
}
