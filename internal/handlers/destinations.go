package handlers

import (
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"

	"nexttripanywhere.com/web/internal/catalog"
	"nexttripanywhere.com/web/internal/seo"
)

// DestinationsView is /destinations with optional ?q= search and ?region= filter.
type DestinationsView struct {
	Query        string
	Region       string
	Regions      []string
	Featured     []catalog.Destination
	Destinations []catalog.Destination
}

// DestinationView is /destinations/<slug>.
type DestinationView struct {
	Destination catalog.Destination
	Related     []catalog.Destination
}

// Destinations renders the destination index.
func (a *App) Destinations(w http.ResponseWriter, r *http.Request) {
	cat := a.Catalog()
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	region := strings.TrimSpace(r.URL.Query().Get("region"))

	view := DestinationsView{Query: q, Region: region, Regions: regions(cat), Featured: cat.FeaturedDestinations(3)}
	switch {
	case q != "":
		view.Destinations = cat.SearchDestinations(q)
	case region != "":
		view.Destinations = cat.DestinationsByRegion(region)
	default:
		view.Destinations = cat.Destinations
	}

	meta := a.identity.Page(
		"Vacation Destinations from Newark | "+a.identity.Name,
		"Beach escapes, European tours and family vacations with direct flights from Newark Liberty. Destination guides from Essex County travel experts.",
		"/destinations",
		"vacations from newark", "vacation destinations", "all inclusive from nj",
	)
	// filtered and search views are thin duplicates of the index
	if q != "" || region != "" {
		meta.Robots = seo.RobotsNoIndex
	}
	items := listItems(view.Destinations, func(d catalog.Destination) seo.ListItem {
		return seo.ListItem{Name: d.Name, URL: "/destinations/" + d.Slug}
	})
	vm := a.page(r, meta, a.crumbs(r), a.identity.ItemList("/destinations", "Destinations", items))
	vm.Page = view
	a.renderPage(w, r, http.StatusOK, "destinations", vm)
}

// Destination renders one destination guide.
func (a *App) Destination(w http.ResponseWriter, r *http.Request) {
	cat := a.Catalog()
	d, ok := cat.Destination(chi.URLParam(r, "slug"))
	if !ok {
		a.NotFound(w, r)
		return
	}
	pageURL := a.identity.Abs("/destinations/" + d.Slug)
	vm := a.page(r, a.identity.DestinationMeta(d), a.crumbs(r),
		a.identity.DestinationPlace(d),
		a.identity.FAQPage(pageURL, d.FAQ),
	)
	vm.Page = DestinationView{Destination: d, Related: cat.RelatedDestinations(d, 3)}
	a.renderPage(w, r, http.StatusOK, "destination", vm)
}

func regions(cat *catalog.Catalog) []string {
	seen := map[string]bool{}
	var out []string
	for _, d := range cat.Destinations {
		if d.Region == "" || seen[d.Region] {
			continue
		}
		seen[d.Region] = true
		out = append(out, d.Region)
	}
	sort.Strings(out)
	return out
}
