package handlers

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"

	"nexttripanywhere.com/web/internal/cms"
	"nexttripanywhere.com/web/internal/sitemap"
)

// SitemapIndex lists the child sitemaps.
func (a *App) SitemapIndex(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := sitemap.WriteIndex(&buf, sitemap.Index(a.identity.URL, sitemap.Revision(a.Catalog(), a.now()))); err != nil {
		a.serverError(w, r, err)
		return
	}
	writeXML(w, &buf)
}

// SitemapMain covers every page outside the cruise section.
func (a *App) SitemapMain(w http.ResponseWriter, r *http.Request) {
	entries, err := a.MainSitemap(r.Context())
	if err != nil {
		a.serverError(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := sitemap.WriteURLSet(&buf, entries); err != nil {
		a.serverError(w, r, err)
		return
	}
	writeXML(w, &buf)
}

// MainSitemap builds the main sitemap entries from the catalog and blog.
func (a *App) MainSitemap(ctx context.Context) ([]sitemap.Entry, error) {
	posts, err := a.content.ListPosts(ctx, cms.ListPostsOptions{})
	if err != nil {
		return nil, err
	}
	src := sitemap.Source{Catalog: a.Catalog()}
	for _, p := range posts {
		updated := p.UpdatedAt
		if updated.IsZero() {
			updated = p.PublishedAt
		}
		src.Posts = append(src.Posts, sitemap.Post{Slug: p.Slug, Updated: updated})
	}
	return sitemap.Main(a.identity.URL, src, a.now()), nil
}

// SitemapCruises covers cruise lines, their deals pages and cruise destinations.
func (a *App) SitemapCruises(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := sitemap.WriteURLSet(&buf, a.CruiseSitemap()); err != nil {
		a.serverError(w, r, err)
		return
	}
	writeXML(w, &buf)
}

// CruiseSitemap builds the cruise sitemap entries.
func (a *App) CruiseSitemap() []sitemap.Entry {
	return sitemap.Cruises(a.identity.URL, a.Catalog(), a.now())
}

// PagePaths lists the site-relative path of every page in both sitemaps.
func (a *App) PagePaths(ctx context.Context) ([]string, error) {
	main, err := a.MainSitemap(ctx)
	if err != nil {
		return nil, err
	}
	entries := append(main, a.CruiseSitemap()...)
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		p := strings.TrimPrefix(e.Loc, a.identity.URL)
		if p == "" {
			p = "/"
		}
		out = append(out, p)
	}
	return out, nil
}

// Robots serves robots.txt pointing at the sitemap index.
func (a *App) Robots(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, sitemap.Robots(a.identity.URL))
}

func writeXML(w http.ResponseWriter, buf *bytes.Buffer) {
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
