package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"nexttripanywhere.com/web/internal/catalog"
	"nexttripanywhere.com/web/internal/cms"
	mw "nexttripanywhere.com/web/internal/middleware"
	"nexttripanywhere.com/web/internal/nav"
	"nexttripanywhere.com/web/internal/seo"
)

// PackagesView is the /packages index.
type PackagesView struct {
	Packages []catalog.Package
}

// PackageView is a vacation package landing page.
type PackageView struct {
	Package catalog.Package
	Links   []Link
}

// FlightsView is /flights: the managed copy plus the origin cities we book from.
type FlightsView struct {
	Page    cms.ContentPage
	Origins []catalog.NationalLocation
}

// Packages lists vacation packages by priority.
func (a *App) Packages(w http.ResponseWriter, r *http.Request) {
	pkgs := a.Catalog().PackagesByPriority()
	meta := a.identity.Page(
		"Vacation Packages from Newark | "+a.identity.Name,
		"All-inclusive, family and luxury vacation packages from Newark Airport, planned by Essex County travel agents.",
		"/packages",
		"vacation packages from newark", "all inclusive packages nj", "family vacation packages",
	)
	items := listItems(pkgs, func(p catalog.Package) seo.ListItem {
		return seo.ListItem{Name: p.Title, URL: "/packages/" + p.Slug}
	})
	vm := a.page(r, meta, a.crumbs(r), a.identity.ItemList("/packages", "Vacation packages", items))
	vm.Page = PackagesView{Packages: pkgs}
	a.renderPage(w, r, http.StatusOK, "packages", vm)
}

// Package renders /packages/<slug>.
func (a *App) Package(w http.ResponseWriter, r *http.Request) {
	cat := a.Catalog()
	p, ok := cat.Package(chi.URLParam(r, "slug"))
	if !ok {
		a.NotFound(w, r)
		return
	}
	pageURL := a.identity.Abs("/packages/" + p.Slug)
	vm := a.page(r, a.identity.PackageMeta(p), a.crumbs(r),
		a.identity.PackageTrip(p),
		a.identity.FAQPage(pageURL, p.FAQ),
	)
	vm.Page = PackageView{Package: p, Links: a.resolveLinks(mw.Lang(r), cat, p.InternalLinks)}
	a.renderPage(w, r, http.StatusOK, "package", vm)
}

// Flights renders /flights from content/pages/flights.md.
func (a *App) Flights(w http.ResponseWriter, r *http.Request) {
	page, err := a.content.GetContentPage(r.Context(), cms.KindPages, "flights")
	if errors.Is(err, cms.ErrNotFound) {
		a.NotFound(w, r)
		return
	}
	if err != nil {
		a.serverError(w, r, err)
		return
	}
	cat := a.Catalog()
	origins := make([]string, 0, len(cat.Locations))
	for _, loc := range cat.Locations {
		origins = append(origins, loc.City)
	}
	crumbs := nav.Trail(nav.Crumb{Href: "/flights", LabelKey: "nav.flights", Label: "Flights"})
	vm := a.page(r, a.contentMeta(page, "/flights"), crumbs,
		a.identity.FlightService(origins),
		a.identity.FAQPage(a.identity.Abs("/flights"), contentFAQ(page)),
	)
	vm.Page = FlightsView{Page: page, Origins: cat.Locations}
	a.renderPage(w, r, http.StatusOK, "flights", vm)
}

func contentFAQ(p cms.ContentPage) []catalog.FAQ {
	out := make([]catalog.FAQ, 0, len(p.FAQ))
	for _, f := range p.FAQ {
		out = append(out, catalog.FAQ{Question: f.Question, Answer: f.Answer})
	}
	return out
}
