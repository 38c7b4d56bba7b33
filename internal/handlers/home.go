package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"nexttripanywhere.com/web/internal/catalog"
	"nexttripanywhere.com/web/internal/cms"
	"nexttripanywhere.com/web/internal/nav"
	"nexttripanywhere.com/web/internal/observability"
	"nexttripanywhere.com/web/internal/seo"
)

// HomeData is the view model for the home page.
type HomeData struct {
	Deals        []catalog.Deal
	Cruises      []catalog.CruiseDestination
	Lines        []catalog.CruiseLine
	Destinations []catalog.Destination
	Cities       []catalog.City
	Services     []catalog.Service
	Posts        []cms.Post
}

// BuildHomeData picks the featured records for the landing page.
func BuildHomeData(cat *catalog.Catalog, posts []cms.Post) HomeData {
	return HomeData{
		Deals:        truncate(cat.FeaturedDeals(), 3),
		Cruises:      truncate(cat.HighPriorityCruises(), 3),
		Lines:        cat.CruiseLines,
		Destinations: cat.FeaturedDestinations(4),
		Cities:       cat.Cities,
		Services:     cat.Services,
		Posts:        truncate(posts, 3),
	}
}

// Home renders the landing page.
func (a *App) Home(w http.ResponseWriter, r *http.Request) {
	posts, err := a.content.ListPosts(r.Context(), cmsRecent)
	if err != nil {
		observability.FromContext(r.Context()).Warn("list posts", zap.Error(err))
	}
	view := BuildHomeData(a.Catalog(), posts)

	meta := a.identity.Page(
		a.identity.Name+" | Essex County NJ Travel Agency",
		"Essex County's travel agency for cruises from Cape Liberty and Manhattan, all-inclusive resorts and vacation packages from Newark. Call "+a.site.PhoneDisplay+".",
		"/",
		"travel agency essex county nj", "cruises from new jersey", "newark vacation packages",
	)
	vm := a.page(r, meta, nav.Trail(), a.identity.LocalBusiness(nil), a.identity.Service(
		"Vacation Planning", a.identity.Description, "Travel Agency Services", "/"))
	vm.Page = view
	a.renderPage(w, r, http.StatusOK, "home", vm)
}

var cmsRecent = cms.ListPostsOptions{Limit: 3}

func truncate[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}

func listItems[T any](items []T, item func(T) seo.ListItem) []seo.ListItem {
	out := make([]seo.ListItem, 0, len(items))
	for _, it := range items {
		out = append(out, item(it))
	}
	return out
}
