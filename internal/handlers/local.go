package handlers

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"nexttripanywhere.com/web/internal/catalog"
	"nexttripanywhere.com/web/internal/nav"
	"nexttripanywhere.com/web/internal/seo"
)

// CountyView is the /essex-county hub.
type CountyView struct {
	Cities   []catalog.City
	Services []catalog.Service
	Cruises  []catalog.CruiseDestination
}

// TownView is /travel-from-<city>.
type TownView struct {
	City     catalog.City
	Nearby   []catalog.City
	Services []catalog.Service
	Cruises  []catalog.CruiseDestination
}

// ServicesView is /services.
type ServicesView struct {
	Services []catalog.Service
	Cities   []catalog.City
}

// ServiceView is /services/<service>.
type ServiceView struct {
	Service catalog.Service
	Cities  []catalog.City
	Others  []catalog.Service
}

// CityServiceView is /locations/essex-county/<city>/<service>.
type CityServiceView struct {
	City    catalog.City
	Service catalog.Service
	Nearby  []catalog.City
	Others  []catalog.Service
}

// LocationView is /from/<location>.
type LocationView struct {
	Location catalog.NationalLocation
	Others   []catalog.NationalLocation
	Cruises  []catalog.CruiseDestination
}

// EssexCounty renders the county hub.
func (a *App) EssexCounty(w http.ResponseWriter, r *http.Request) {
	cat := a.Catalog()
	towns := listItems(cat.Cities, func(c catalog.City) seo.ListItem {
		return seo.ListItem{Name: c.Name, URL: "/travel-from-" + c.ID}
	})
	vm := a.page(r, a.identity.CountyMeta(), nav.Trail(countyCrumb()),
		a.identity.LocalBusiness(nil),
		a.identity.ItemList("/essex-county", "Essex County towns", towns),
	)
	vm.Page = CountyView{Cities: cat.Cities, Services: cat.Services, Cruises: truncate(cat.HighPriorityCruises(), 3)}
	a.renderPage(w, r, http.StatusOK, "essex_county", vm)
}

// TravelFrom renders a town page.
func (a *App) TravelFrom(w http.ResponseWriter, r *http.Request) {
	cat := a.Catalog()
	city, ok := cat.City(chi.URLParam(r, "city"))
	if !ok {
		a.NotFound(w, r)
		return
	}
	crumbs := nav.Trail(countyCrumb(), nav.Crumb{Href: "/travel-from-" + city.ID, Label: city.Name})
	vm := a.page(r, a.identity.TownMeta(city), crumbs, a.identity.LocalBusiness(&city))
	vm.Page = TownView{
		City:     city,
		Nearby:   cat.NearbyCities(city.ID),
		Services: cat.Services,
		Cruises:  truncate(cat.HighPriorityCruises(), 3),
	}
	a.renderPage(w, r, http.StatusOK, "town", vm)
}

// Services renders the service index.
func (a *App) Services(w http.ResponseWriter, r *http.Request) {
	cat := a.Catalog()
	meta := a.identity.Page(
		"Travel Services in Essex County NJ | "+a.identity.Name,
		"Airport transfers, cruise port transfers, corporate travel and event transportation across Essex County, New Jersey.",
		"/services",
		"essex county transportation", "airport transfers nj", "cruise transfers",
	)
	items := listItems(cat.Services, func(s catalog.Service) seo.ListItem {
		return seo.ListItem{Name: s.Name, URL: "/services/" + s.ID}
	})
	vm := a.page(r, meta, a.crumbs(r), a.identity.ItemList("/services", "Services", items))
	vm.Page = ServicesView{Services: cat.Services, Cities: cat.Cities}
	a.renderPage(w, r, http.StatusOK, "services", vm)
}

// Service renders one service across the county.
func (a *App) Service(w http.ResponseWriter, r *http.Request) {
	cat := a.Catalog()
	svc, ok := cat.Service(chi.URLParam(r, "service"))
	if !ok {
		a.NotFound(w, r)
		return
	}
	vm := a.page(r, a.identity.ServiceMeta(svc), a.crumbs(r),
		a.identity.Service(svc.Name, svc.LongDescription, svc.Name, "/services/"+svc.ID))
	vm.Page = ServiceView{Service: svc, Cities: cat.Cities, Others: otherServices(cat, svc.ID)}
	a.renderPage(w, r, http.StatusOK, "service", vm)
}

// CityService renders a town × service page.
func (a *App) CityService(w http.ResponseWriter, r *http.Request) {
	cat := a.Catalog()
	city, ok := cat.City(chi.URLParam(r, "city"))
	if !ok {
		a.NotFound(w, r)
		return
	}
	svc, ok := cat.Service(chi.URLParam(r, "service"))
	if !ok {
		a.NotFound(w, r)
		return
	}
	path := "/locations/essex-county/" + city.ID + "/" + svc.ID
	crumbs := nav.Trail(
		countyCrumb(),
		nav.Crumb{Href: "/travel-from-" + city.ID, Label: city.Name},
		nav.Crumb{Href: path, Label: svc.Name},
	)
	node := a.identity.Service(
		fmt.Sprintf("%s in %s, NJ", svc.Name, city.Name),
		fmt.Sprintf("%s for %s residents. %s", svc.Name, city.Name, svc.ShortDescription),
		svc.Name, path)
	node["@id"] = a.identity.Abs(path) + "#service"
	node["areaServed"] = map[string]any{"@type": "City", "name": city.Name}
	vm := a.page(r, a.identity.CityServiceMeta(city, svc), crumbs, node, a.identity.LocalBusiness(&city))
	vm.Page = CityServiceView{City: city, Service: svc, Nearby: cat.NearbyCities(city.ID), Others: otherServices(cat, svc.ID)}
	a.renderPage(w, r, http.StatusOK, "city_service", vm)
}

// FromLocation renders a national origin page.
func (a *App) FromLocation(w http.ResponseWriter, r *http.Request) {
	cat := a.Catalog()
	loc, ok := cat.NationalLocation(chi.URLParam(r, "location"))
	if !ok {
		a.NotFound(w, r)
		return
	}
	var others []catalog.NationalLocation
	for _, l := range cat.Locations {
		if l.Slug != loc.Slug {
			others = append(others, l)
		}
	}
	crumbs := nav.Trail(nav.Crumb{Href: "/from/" + loc.Slug, Label: loc.City})
	vm := a.page(r, a.identity.LocationMeta(loc), crumbs, a.identity.Service(
		"Vacation Planning from "+loc.City,
		loc.Summary,
		"Vacation Planning",
		"/from/"+loc.Slug,
	))
	vm.Page = LocationView{Location: loc, Others: others, Cruises: truncate(cat.HighPriorityCruises(), 3)}
	a.renderPage(w, r, http.StatusOK, "from_location", vm)
}

func countyCrumb() nav.Crumb {
	return nav.Crumb{Href: "/essex-county", LabelKey: "nav.essex_county", Label: "Essex County"}
}

func otherServices(cat *catalog.Catalog, id string) []catalog.Service {
	var out []catalog.Service
	for _, s := range cat.Services {
		if s.ID != id {
			out = append(out, s)
		}
	}
	return out
}
