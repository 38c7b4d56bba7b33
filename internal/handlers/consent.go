package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"

	"nexttripanywhere.com/web/internal/consent"
	mw "nexttripanywhere.com/web/internal/middleware"
)

// Consent stores the banner choice. htmx callers get the data layer event in
// HX-Trigger, plain form posts are sent back to the page they came from.
func (a *App) Consent(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		mw.WriteError(w, r, http.StatusBadRequest, "invalid form")
		return
	}
	prefs := consent.FromForm(r.PostForm)
	consent.Apply(w, prefs, consent.WithSecure(a.cfg.Session.Secure), consent.WithNow(a.now()))
	w.Header().Set("Cache-Control", mw.CacheNoStore)

	if mw.IsHTMX(r.Context()) {
		if b, err := json.Marshal(map[string]any{"cookieConsent": consent.Event(prefs)}); err == nil {
			w.Header().Set("HX-Trigger", string(b))
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, backTo(r), http.StatusSeeOther)
}

// backTo returns the same-host referer path, or "/".
func backTo(r *http.Request) string {
	ref, err := url.Parse(r.Referer())
	if err != nil || ref.Path == "" || (ref.Host != "" && ref.Host != r.Host) {
		return "/"
	}
	return ref.RequestURI()
}
