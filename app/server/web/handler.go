// Package web provides HTTP handlers for the theme UI.
package web

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/go-pkgz/routegroup"
	"github.com/google/uuid"

	"github.com/umputun/shade/app/enum"
	"github.com/umputun/shade/app/theme"
)

//go:generate moq -out mocks/store.go -pkg mocks -skip-ensure -fmt goimports . Store

// cookie and header names forming the page's theme contract.
const (
	themeCookie     = "theme"                       // fixed durable-storage key
	visitorCookie   = "shade-visitor"               // keys the server-side store
	colorSchemeHint = "Sec-CH-Prefers-Color-Scheme" // platform signal, read-only

	cookieMaxAge = 365 * 24 * 60 * 60 // 1 year
)

// icon class sets for the toggle control. Sun is shown when the applied
// theme is dark, moon otherwise.
const (
	sunIconClass  = "bi bi-sun-fill"
	moonIconClass = "bi bi-moon-fill"
)

//go:embed static
var staticFS embed.FS

//go:embed templates
var templatesFS embed.FS

// StaticFS returns the embedded static filesystem for external use.
func StaticFS() (fs.FS, error) {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("failed to get static sub-filesystem: %w", err)
	}
	return sub, nil
}

// Store defines preference storage operations used by the web UI.
type Store interface {
	Get(ctx context.Context, visitor string) (enum.Theme, error)
	Set(ctx context.Context, visitor string, theme enum.Theme) error
}

// Config holds web handler configuration.
type Config struct {
	BaseURL string
	Title   string // page title, defaults to "Shade"
}

// Handler handles web UI requests.
type Handler struct {
	store    Store
	resolver *theme.Resolver
	tmpl     *template.Template
	baseURL  string
	title    string
}

// New creates a new web handler.
func New(st Store, cfg Config) (*Handler, error) {
	tmpl, err := parseTemplates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	title := cfg.Title
	if title == "" {
		title = "Shade"
	}

	return &Handler{
		store:    st,
		resolver: theme.NewResolver(st),
		tmpl:     tmpl,
		baseURL:  cfg.BaseURL,
		title:    title,
	}, nil
}

// Register registers web UI routes on the given router.
func (h *Handler) Register(r *routegroup.Bundle) {
	r.HandleFunc("GET /{$}", h.handleIndex)
	r.HandleFunc("POST /web/theme", h.handleThemeToggle)
}

// parseTemplates parses all templates from embedded filesystem.
func parseTemplates() (*template.Template, error) {
	content, err := templatesFS.ReadFile("templates/base.html")
	if err != nil {
		return nil, fmt.Errorf("read base.html: %w", err)
	}
	tmpl, err := template.New("base.html").Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("parse base.html: %w", err)
	}
	return tmpl, nil
}

// templateData holds data passed to templates.
type templateData struct {
	Theme     string // applied theme, written to the root data-bs-theme attribute
	IconClass string // toggle control icon class set
	Source    string // where the resolution came from (stored, signal, default)
	Title     string
	BaseURL   string
}

// cookieTheme returns the theme from the durable cookie if present and
// valid. Any unrecognized value is treated as absent.
func (h *Handler) cookieTheme(r *http.Request) (enum.Theme, bool) {
	cookie, err := r.Cookie(themeCookie)
	if err != nil || cookie.Value == "" {
		return enum.ThemeLight, false
	}
	th, err := enum.ParseTheme(cookie.Value)
	if err != nil {
		return enum.ThemeLight, false
	}
	return th, true
}

// signalFromRequest reads the platform color-scheme signal from the
// client hint header. Absent or unparseable hint yields SignalUnknown.
func signalFromRequest(r *http.Request) enum.Signal {
	return enum.ParseSignal(r.Header.Get(colorSchemeHint))
}

// resolveTheme computes the effective theme for the request: the theme
// cookie dominates, then the server-side stored preference, then the
// platform signal, then the implicit light default.
func (h *Handler) resolveTheme(r *http.Request, visitor string) (enum.Theme, enum.Source) {
	if th, ok := h.cookieTheme(r); ok {
		return th, enum.SourceStored
	}
	res := h.resolver.Preferred(r.Context(), visitor, signalFromRequest(r))
	return res.Theme, res.Source
}

// visitorID returns the visitor identifier from the cookie, minting and
// setting a new one when missing.
func (h *Handler) visitorID(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie(visitorCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	id := uuid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     visitorCookie,
		Value:    id,
		Path:     h.cookiePath(),
		MaxAge:   cookieMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

// iconClass returns the toggle icon class set for the applied theme.
func iconClass(t enum.Theme) string {
	if t == enum.ThemeDark {
		return sunIconClass
	}
	return moonIconClass
}

// cookiePath returns the path for cookies (base URL with trailing slash or "/").
func (h *Handler) cookiePath() string {
	if h.baseURL == "" {
		return "/"
	}
	return h.baseURL + "/"
}
