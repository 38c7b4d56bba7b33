package handlers

import (
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"

	"nexttripanywhere.com/web/internal/catalog"
	"nexttripanywhere.com/web/internal/leadform"
	"nexttripanywhere.com/web/internal/seo"
)

// Deal filters accepted by /deals?filter=.
const (
	DealFilterAll        = "all"
	DealFilterLastMinute = "last-minute"
	DealFilterValue      = "value"
	DealFilterFeatured   = "featured"
)

// DealsView is /deals.
type DealsView struct {
	Filter     string
	Filters    []string
	Category   string
	Categories []string
	Deals      []catalog.Deal
}

// DealView is /deals/<slug>.
type DealView struct {
	Deal     catalog.Deal
	SoldOut  bool
	Line     *catalog.CruiseLine
	Similar  []catalog.Deal
	QuoteURL string
}

// Deals lists bookable deals. Sold-out and expired deals never appear.
func (a *App) Deals(w http.ResponseWriter, r *http.Request) {
	cat := a.Catalog()
	filter := strings.TrimSpace(r.URL.Query().Get("filter"))
	category := strings.TrimSpace(r.URL.Query().Get("category"))

	var subset []catalog.Deal
	switch filter {
	case DealFilterLastMinute:
		subset = cat.LastMinuteDeals()
	case DealFilterValue:
		subset = cat.ValueDeals()
	case DealFilterFeatured:
		subset = cat.FeaturedDeals()
	default:
		filter = DealFilterAll
		subset = cat.Deals
	}
	if category != "" {
		subset = intersect(subset, cat.DealsByCategory(category))
	}
	deals := a.activeOnly(cat, subset)

	meta := a.identity.Page(
		"Cruise & Vacation Deals from NJ | "+a.identity.Name,
		"Last-minute cruises and value vacation deals from New Jersey and New York ports, with perks negotiated by Essex County travel agents.",
		"/deals",
		"cruise deals from nj", "last minute cruises", "vacation deals",
	)
	if filter != DealFilterAll || category != "" {
		meta.Robots = seo.RobotsNoIndex
	}
	items := listItems(deals, func(d catalog.Deal) seo.ListItem {
		return seo.ListItem{Name: d.Title, URL: "/deals/" + d.Slug}
	})
	vm := a.page(r, meta, a.crumbs(r), a.identity.ItemList("/deals", "Current deals", items))
	vm.Page = DealsView{
		Filter:     filter,
		Filters:    []string{DealFilterAll, DealFilterLastMinute, DealFilterValue, DealFilterFeatured},
		Category:   category,
		Categories: dealCategories(cat),
		Deals:      deals,
	}
	a.renderPage(w, r, http.StatusOK, "deals", vm)
}

// Deal renders one deal. Sold-out deals still render, marked noindex by their meta.
func (a *App) Deal(w http.ResponseWriter, r *http.Request) {
	cat := a.Catalog()
	d, ok := cat.Deal(chi.URLParam(r, "slug"))
	if !ok {
		a.NotFound(w, r)
		return
	}
	view := DealView{Deal: d, SoldOut: d.Availability == catalog.SoldOut}
	if line, ok := lineByName(cat, d.CruiseLine); ok {
		view.Line = &line
	}
	for _, other := range a.activeOnly(cat, cat.DealsByCategory(d.Category)) {
		if other.Slug != d.Slug {
			view.Similar = append(view.Similar, other)
		}
	}
	view.Similar = truncate(view.Similar, 3)
	q := url.Values{}
	q.Set(leadform.FieldTripType, "cruise")
	q.Set(leadform.FieldDestination, strings.Join(d.Destinations, ", "))
	if !d.DepartureDate.IsZero() {
		q.Set(leadform.FieldDeparture, d.DepartureDate.ISO())
	}
	if !d.ReturnDate.IsZero() {
		q.Set(leadform.FieldReturn, d.ReturnDate.ISO())
	}
	q.Set("source", "deal-"+d.Slug)
	view.QuoteURL = "/quote?" + q.Encode()

	vm := a.page(r, a.identity.DealMeta(d), a.crumbs(r), a.identity.DealOffer(d))
	vm.Page = view
	a.renderPage(w, r, http.StatusOK, "deal", vm)
}

func intersect(a, b []catalog.Deal) []catalog.Deal {
	keep := map[string]bool{}
	for _, d := range b {
		keep[d.Slug] = true
	}
	var out []catalog.Deal
	for _, d := range a {
		if keep[d.Slug] {
			out = append(out, d)
		}
	}
	return out
}

func dealCategories(cat *catalog.Catalog) []string {
	seen := map[string]bool{}
	var out []string
	for _, d := range cat.Deals {
		if d.Category != "" && !seen[d.Category] {
			seen[d.Category] = true
			out = append(out, d.Category)
		}
	}
	sort.Strings(out)
	return out
}
