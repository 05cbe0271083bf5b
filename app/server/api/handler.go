// Package api provides the JSON API for theme preferences.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	log "github.com/go-pkgz/lgr"
	"github.com/go-pkgz/rest"
	"github.com/go-pkgz/routegroup"

	"github.com/umputun/shade/app/enum"
	"github.com/umputun/shade/app/theme"
)

//go:generate moq -out mocks/store.go -pkg mocks -skip-ensure -fmt goimports . Store

// visitor identity sources, header preferred over cookie for non-browser
// clients.
const (
	visitorHeader = "X-Visitor-ID"
	visitorCookie = "shade-visitor"
)

// Store defines preference storage operations used by the API.
type Store interface {
	Get(ctx context.Context, visitor string) (enum.Theme, error)
	Set(ctx context.Context, visitor string, theme enum.Theme) error
}

// Handler handles API requests for /api/v1/* endpoints.
type Handler struct {
	store    Store
	resolver *theme.Resolver
}

// New creates a new API handler.
func New(st Store) *Handler {
	return &Handler{store: st, resolver: theme.NewResolver(st)}
}

// Register registers API routes on the given router.
func (h *Handler) Register(r *routegroup.Bundle) {
	r.HandleFunc("GET /theme", h.handleGet)
	r.HandleFunc("PUT /theme", h.handleSet)
}

// themeResponse is the wire representation of a resolved theme.
type themeResponse struct {
	Theme  enum.Theme `json:"theme"`
	Source string     `json:"source"`
}

// themeRequest is the wire representation of an explicit preference.
type themeRequest struct {
	Theme string `json:"theme"`
}

// handleGet returns the resolved theme for the caller.
// GET /api/v1/theme
func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	visitor := visitorFromRequest(r)
	signal := enum.ParseSignal(r.Header.Get("Sec-CH-Prefers-Color-Scheme"))
	res := h.resolver.Preferred(r.Context(), visitor, signal)
	rest.RenderJSON(w, themeResponse{Theme: res.Theme, Source: res.Source.String()})
}

// handleSet stores an explicit theme preference for the caller.
// PUT /api/v1/theme with body {"theme": "dark"}
func (h *Handler) handleSet(w http.ResponseWriter, r *http.Request) {
	visitor := visitorFromRequest(r)
	if visitor == "" {
		rest.SendErrorJSON(w, r, log.Default(), http.StatusBadRequest, nil, "visitor identity required")
		return
	}

	var req themeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rest.SendErrorJSON(w, r, log.Default(), http.StatusBadRequest, err, "invalid request body")
		return
	}

	th, err := enum.ParseTheme(req.Theme)
	if err != nil {
		rest.SendErrorJSON(w, r, log.Default(), http.StatusBadRequest, err, "invalid theme")
		return
	}

	if err := h.store.Set(r.Context(), visitor, th); err != nil {
		rest.SendErrorJSON(w, r, log.Default(), http.StatusInternalServerError, err, "failed to store preference")
		return
	}

	rest.RenderJSON(w, themeResponse{Theme: th, Source: enum.SourceStored.String()})
}

// visitorFromRequest extracts the visitor identity from the header or the
// visitor cookie. Empty when neither is present.
func visitorFromRequest(r *http.Request) string {
	if id := r.Header.Get(visitorHeader); id != "" {
		return id
	}
	if cookie, err := r.Cookie(visitorCookie); err == nil {
		return cookie.Value
	}
	return ""
}
