package handlers

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"nexttripanywhere.com/web/internal/metrics"
	mw "nexttripanywhere.com/web/internal/middleware"
	"nexttripanywhere.com/web/internal/nav"
)

var notFoundSections = map[string]bool{
	"cruises": true, "destinations": true, "deals": true, "services": true,
	"guides": true, "blog": true, "from": true, "locations": true, "assets": true,
	"packages": true, "tools": true,
}

// NotFound answers paths no page serves. Retired and misspelled paths listed
// in the redirect table are sent on to their replacement; everything else
// gets the 404 page, which is never indexed.
func (a *App) NotFound(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		if to, permanent, ok := a.Catalog().Redirect(r.URL.Path); ok {
			a.redirect(w, r, to, permanent)
			return
		}
	}
	metrics.NotFound.WithLabelValues(notFoundSection(r.URL.Path)).Inc()
	w.Header().Set("Cache-Control", mw.CacheNoStore)
	if mw.IsHTMX(r.Context()) {
		mw.WriteError(w, r, http.StatusNotFound, "not found")
		return
	}
	lang := mw.Lang(r)
	meta := a.identity.NotFound(r.URL.Path)
	vm := a.page(r, meta, nav.Trail(nav.Crumb{Href: r.URL.Path, LabelKey: "notfound.title", Label: "Page Not Found"}))
	vm.Title = a.i18nOrDefault(lang, "notfound.title", "Page Not Found")
	a.renderPage(w, r, http.StatusNotFound, "not_found", vm)
}

func (a *App) redirect(w http.ResponseWriter, r *http.Request, to string, permanent bool) {
	code := http.StatusFound
	if permanent {
		code = http.StatusMovedPermanently
	}
	target := (&url.URL{Path: to, RawQuery: r.URL.RawQuery}).String()
	metrics.Redirects.WithLabelValues(strconv.Itoa(code)).Inc()
	if permanent {
		w.Header().Set("Cache-Control", mw.CachePage)
	} else {
		w.Header().Set("Cache-Control", mw.CacheNoStore)
	}
	http.Redirect(w, r, target, code)
}

func notFoundSection(p string) string {
	seg, _, _ := strings.Cut(strings.TrimPrefix(p, "/"), "/")
	switch {
	case seg == "":
		return "root"
	case notFoundSections[seg]:
		return seg
	case strings.HasPrefix(seg, "travel-from-"):
		return "travel-from"
	default:
		return "other"
	}
}
