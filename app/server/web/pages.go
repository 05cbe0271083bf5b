package web

import (
	"net/http"

	log "github.com/go-pkgz/lgr"

	"github.com/umputun/shade/app/enum"
)

// handleIndex renders the page shell with the resolved theme applied to
// the root element and the toggle icon matching it.
func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	visitor := h.visitorID(w, r)
	th, src := h.resolveTheme(r, visitor)

	// ask the browser to send the color-scheme hint on subsequent requests
	w.Header().Set("Accept-CH", colorSchemeHint)
	w.Header().Set("Critical-CH", colorSchemeHint)
	w.Header().Add("Vary", colorSchemeHint)

	data := templateData{
		Theme:     th.String(),
		IconClass: iconClass(th),
		Source:    src.String(),
		Title:     h.title,
		BaseURL:   h.baseURL,
	}

	if err := h.tmpl.ExecuteTemplate(w, "base.html", data); err != nil {
		log.Printf("[ERROR] failed to execute template: %v", err)
	}
}

// handleThemeToggle flips the applied theme, persists the choice and
// triggers a full page refresh. Storage failures are logged only, the
// cookie still carries the preference for the session.
func (h *Handler) handleThemeToggle(w http.ResponseWriter, r *http.Request) {
	visitor := h.visitorID(w, r)
	current := h.appliedTheme(r, visitor)
	next := current.Toggle()

	http.SetCookie(w, &http.Cookie{
		Name:     themeCookie,
		Value:    next.String(),
		Path:     h.cookiePath(),
		MaxAge:   cookieMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	if err := h.store.Set(r.Context(), visitor, next); err != nil {
		log.Printf("[WARN] failed to persist theme for %s: %v", visitor, err)
	}
	log.Printf("[DEBUG] theme toggled %s -> %s for %s", current, next, visitor)

	// trigger full page refresh
	w.Header().Set("HX-Refresh", "true")
	w.WriteHeader(http.StatusOK)
}

// appliedTheme returns the theme the visitor currently sees: the value
// echoed by the toggle control when valid, the theme cookie otherwise,
// full resolution when neither is usable.
func (h *Handler) appliedTheme(r *http.Request, visitor string) enum.Theme {
	if v := r.FormValue("current"); v != "" {
		if th, err := enum.ParseTheme(v); err == nil {
			return th
		}
		log.Printf("[WARN] toggle control echoed invalid theme %q, ignored", v)
	}
	if th, ok := h.cookieTheme(r); ok {
		return th
	}
	return h.resolver.Preferred(r.Context(), visitor, signalFromRequest(r)).Theme
}
