package handlers

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Masterminds/sprig/v3"
	"go.uber.org/zap"

	"nexttripanywhere.com/web/internal/catalog"
	"nexttripanywhere.com/web/internal/consent"
	"nexttripanywhere.com/web/internal/format"
	"nexttripanywhere.com/web/internal/leadform"
	mw "nexttripanywhere.com/web/internal/middleware"
	"nexttripanywhere.com/web/internal/nav"
	"nexttripanywhere.com/web/internal/observability"
	"nexttripanywhere.com/web/internal/seo"
)

// templateSet holds the shared layout and partials plus one clone per page.
// Each page file defines "content" and may define "head".
type templateSet struct {
	dir   string
	funcs template.FuncMap
	dev   bool

	mu    sync.RWMutex
	base  *template.Template
	pages map[string]*template.Template
}

func newTemplateSet(dir string, funcs template.FuncMap, dev bool) (*templateSet, error) {
	ts := &templateSet{dir: dir, funcs: funcs, dev: dev}
	if err := ts.reload(); err != nil {
		return nil, err
	}
	return ts, nil
}

func (ts *templateSet) reload() error {
	base, pages, err := parseTemplates(ts.dir, ts.funcs)
	if err != nil {
		return err
	}
	ts.mu.Lock()
	ts.base, ts.pages = base, pages
	ts.mu.Unlock()
	return nil
}

// lookup returns the page template. In dev mode, templates are reparsed on each request.
func (ts *templateSet) lookup(page string) (*template.Template, error) {
	if ts.dev {
		if err := ts.reload(); err != nil {
			return nil, err
		}
	}
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	if page == "" {
		return ts.base, nil
	}
	t, ok := ts.pages[page]
	if !ok {
		return nil, fmt.Errorf("handlers: template %q not found", page)
	}
	return t, nil
}

func parseTemplates(dir string, funcs template.FuncMap) (*template.Template, map[string]*template.Template, error) {
	// Recursively discover all .tmpl files. Note: ParseGlob doesn't support **.
	var shared, pages []string
	if err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".tmpl") {
			return nil
		}
		if filepath.Base(filepath.Dir(path)) == "pages" {
			pages = append(pages, path)
		} else {
			shared = append(shared, path)
		}
		return nil
	}); err != nil {
		return nil, nil, err
	}
	if len(shared) == 0 {
		return nil, nil, fmt.Errorf("no templates found under %s", dir)
	}
	base, err := template.New("_root").Funcs(funcs).ParseFiles(shared...)
	if err != nil {
		return nil, nil, err
	}
	out := make(map[string]*template.Template, len(pages))
	for _, p := range pages {
		clone, err := base.Clone()
		if err != nil {
			return nil, nil, err
		}
		if _, err := clone.ParseFiles(p); err != nil {
			return nil, nil, err
		}
		out[strings.TrimSuffix(filepath.Base(p), ".tmpl")] = clone
	}
	return base, out, nil
}

// renderPage executes the base layout with the page's content block.
func (a *App) renderPage(w http.ResponseWriter, r *http.Request, status int, page string, vm PageData) {
	t, err := a.tmpl.lookup(page)
	if err != nil {
		a.serverError(w, r, fmt.Errorf("template parse error: %w", err))
		return
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "base", vm); err != nil {
		a.serverError(w, r, fmt.Errorf("template exec error: %w", err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// renderTemplate executes a shared partial, used for htmx fragments.
func (a *App) renderTemplate(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	t, err := a.tmpl.lookup("")
	if err != nil {
		a.serverError(w, r, fmt.Errorf("template parse error: %w", err))
		return
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		a.serverError(w, r, fmt.Errorf("template exec error: %w", err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (a *App) serverError(w http.ResponseWriter, r *http.Request, err error) {
	observability.FromContext(r.Context()).Error("render failed", zap.String("path", r.URL.Path), zap.Error(err))
	msg := http.StatusText(http.StatusInternalServerError)
	if a.cfg.Dev {
		msg = err.Error()
	}
	mw.WriteError(w, r, http.StatusInternalServerError, msg)
}

// page assembles the layout view model. The JSON-LD graph always carries the
// organization, the website and the breadcrumb trail ahead of the page nodes.
func (a *App) page(r *http.Request, meta seo.Meta, crumbs []nav.Crumb, nodes ...map[string]any) PageData {
	lang := mw.Lang(r)
	if len(crumbs) == 0 {
		crumbs = nav.Breadcrumbs(r.URL.Path, nil)
	}
	meta.Alternates = a.alternates(meta.Canonical)
	// a translated page is canonical at its own hreflang URL
	if lang != a.bundle.Fallback() && meta.Canonical != "" {
		meta.Canonical = localizedURL(meta.Canonical, lang)
		meta.OG.URL = meta.Canonical
	}
	meta.Verification = a.analytics.SearchConsoleToken
	meta.JSONLD = a.graph(lang, crumbs, nodes...)
	if lang == "es" {
		meta.OG.Locale = "es_US"
	}
	return PageData{
		Title:       meta.Title,
		Lang:        lang,
		Meta:        meta,
		Analytics:   a.analytics,
		Consent:     consent.FromContext(r.Context()),
		Site:        a.site,
		Path:        r.URL.Path,
		Nav:         nav.Build(r.URL.Path),
		Breadcrumbs: crumbs,
		Year:        a.now().Year(),
	}
}

func (a *App) graph(lang string, crumbs []nav.Crumb, nodes ...map[string]any) map[string]any {
	items := make([]seo.BreadcrumbItem, 0, len(crumbs))
	for _, c := range crumbs {
		items = append(items, seo.BreadcrumbItem{Name: a.crumbLabel(lang, c), Item: c.Href})
	}
	g := seo.NewGraph().Add(
		a.identity.Organization(seo.KindTravelAgency),
		a.identity.WebSite(),
		a.identity.BreadcrumbList(items),
	)
	g.Add(nodes...)
	return g.Build()
}

// alternates lists the hreflang links. Spanish is served from the same URL with ?hl=es.
func (a *App) alternates(canonical string) []seo.Alternate {
	out := []seo.Alternate{{Lang: "x-default", Href: canonical}}
	for _, l := range a.bundle.Supported() {
		href := canonical
		if l != a.bundle.Fallback() {
			href = localizedURL(canonical, l)
		}
		out = append(out, seo.Alternate{Lang: l, Href: href})
	}
	return out
}

func localizedURL(canonical, lang string) string {
	if strings.Contains(canonical, "?") {
		return canonical + "&hl=" + lang
	}
	return canonical + "?hl=" + lang
}

// i18nOrDefault returns the translation of key, or def when the key is missing.
func (a *App) i18nOrDefault(lang, key, def string) string {
	if v := a.bundle.T(lang, key); v != "" && v != key {
		return v
	}
	return def
}

func (a *App) crumbLabel(lang string, c nav.Crumb) string {
	if c.LabelKey != "" {
		return a.i18nOrDefault(lang, c.LabelKey, c.Label)
	}
	return c.Label
}

func (a *App) funcs() template.FuncMap {
	fm := sprig.FuncMap()
	fm["t"] = func(lang, key string) string { return a.bundle.T(lang, key) }
	fm["tf"] = func(lang, key string, args ...any) string { return a.bundle.Tf(lang, key, args...) }
	fm["crumb"] = a.crumbLabel
	fm["usd"] = format.USD
	fm["fromPrice"] = format.FromPrice
	fm["priceRange"] = func(p catalog.PriceRange, lang string) string { return format.PriceRange(p.Min, p.Max, p.Unit, lang) }
	fm["fmtDate"] = format.Date
	fm["nights"] = format.Duration
	fm["number"] = format.Number
	fm["tel"] = format.Tel
	fm["phone"] = format.Phone
	fm["jsonld"] = func(v any) template.JS { return template.JS(seo.JSON(v)) }
	fm["consentMode"] = func(s consent.State) template.JS { return template.JS(seo.JSON(s.Mode())) }
	fm["asset"] = func(p string) string {
		if v := a.assets.Version(p); v != "" {
			return p + "?v=" + v
		}
		return p
	}
	fm["fieldError"] = func(errs leadform.FieldErrors, field string) string { return errs[field] }
	return fm
}
