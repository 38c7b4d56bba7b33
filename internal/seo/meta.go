package seo

import (
	"fmt"
	"strings"

	"nexttripanywhere.com/web/internal/catalog"
)

const defaultOGImage = "/assets/images/og-default.jpg"

// Page builds a standard indexable Meta for a site path.
func (id Identity) Page(title, description, path string, keywords ...string) Meta {
	return id.meta(title, description, path, defaultOGImage, keywords)
}

// NotFound is the Meta for the 404 page. It is never indexed.
func (id Identity) NotFound(path string) Meta {
	m := id.meta("Page Not Found | "+id.Name, "The page you were looking for could not be found.", path, defaultOGImage, nil)
	m.Robots = RobotsNoIndex
	return m
}

// TownMeta is the Meta for /travel-from-<city>.
func (id Identity) TownMeta(city catalog.City) Meta {
	state := firstNonEmpty(city.State, "NJ")
	title := fmt.Sprintf("Travel Agency %s %s | %s", city.Name, state, id.Name)
	description := fmt.Sprintf(
		"Looking for the best travel agency in %s, %s? %s offers personalized vacation planning, exclusive deals, and expert travel advice for %s residents. Call %s.",
		city.Name, state, id.Name, city.Name, displayPhone(id.Phone))
	keywords := []string{
		fmt.Sprintf("travel agency %s %s", city.Name, state),
		city.Name + " vacation planning",
		"travel agent " + city.Name,
		city.Name + " travel deals",
		"vacation packages from " + city.Name,
		firstNonEmpty(city.County, "Essex") + " County travel agency",
		"cruise packages",
	}
	for _, a := range city.NearbyAirports {
		keywords = append(keywords, "flights from "+a.Name)
	}
	m := id.meta(title, description, "/travel-from-"+city.ID, "/assets/images/essex-county-travel.jpg", keywords)
	m.OG.ImageAlt = fmt.Sprintf("Travel Agency in %s, %s", city.Name, state)
	return m
}

// CountyMeta is the Meta for the /essex-county hub.
func (id Identity) CountyMeta() Meta {
	title := "Travel Agency Essex County NJ | " + id.Name
	description := id.Name + " is Essex County's premier travel agency, serving Newark, Montclair, West Orange, and all surrounding towns. Expert vacation planning and exclusive deals."
	return id.meta(title, description, "/essex-county", "/assets/images/essex-county-hero.jpg", []string{
		"travel agency Essex County NJ",
		"Essex County vacation planning",
		"Newark travel agency",
		"Montclair travel agent",
		"New Jersey travel agency",
	})
}

// CityServiceMeta is the Meta for /locations/essex-county/<city>/<service>.
func (id Identity) CityServiceMeta(city catalog.City, svc catalog.Service) Meta {
	title := fmt.Sprintf("%s in %s, NJ | %s", svc.Name, city.Name, id.Name)
	description := fmt.Sprintf("%s for %s residents. %s", svc.Name, city.Name, svc.ShortDescription)
	keywords := make([]string, 0, len(svc.Keywords)+1)
	keywords = append(keywords, strings.ToLower(svc.Name)+" "+city.Name)
	for _, k := range svc.Keywords {
		keywords = append(keywords, k+" "+city.Name)
	}
	return id.meta(title, description, "/locations/essex-county/"+city.ID+"/"+svc.ID, defaultOGImage, keywords)
}

// ServiceMeta is the Meta for /services/<service>.
func (id Identity) ServiceMeta(svc catalog.Service) Meta {
	return id.meta(svc.Name+" in Essex County NJ | "+id.Name, svc.ShortDescription, "/services/"+svc.ID, defaultOGImage, svc.Keywords)
}

// CruiseMeta is the Meta for a cruise destination page.
func (id Identity) CruiseMeta(cd catalog.CruiseDestination) Meta {
	title := firstNonEmpty(cd.MetaTitle, cd.Title+" | "+id.Name)
	description := firstNonEmpty(cd.MetaDescription, cd.Description)
	m := id.meta(title, description, "/cruises/"+cd.Slug, defaultOGImage, cd.Keywords)
	m.OG.Type = "article"
	return m
}

// CruiseLineMeta is the Meta for a cruise line page.
func (id Identity) CruiseLineMeta(cl catalog.CruiseLine) Meta {
	title := fmt.Sprintf("%s Cruises from NJ | %s", cl.Name, id.Name)
	description := firstSentence(cl.Description) + " Book with Essex County cruise experts."
	if cl.Tagline != "" {
		description = cl.Tagline + ". " + description
	}
	return id.meta(title, description, "/cruises/"+cl.Slug, defaultOGImage, []string{
		strings.ToLower(cl.Name) + " cruises",
		strings.ToLower(cl.Name) + " deals",
		strings.ToLower(cl.Name) + " from new jersey",
	})
}

// DealMeta is the Meta for /deals/<slug>.
func (id Identity) DealMeta(d catalog.Deal) Meta {
	title := fmt.Sprintf("%s | %s Deal", d.Title, d.CruiseLine)
	description := fmt.Sprintf("%s on %s from %s. %s", d.Title, firstNonEmpty(d.Ship, d.CruiseLine), d.DeparturePort, d.Summary)
	if d.StartingPrice > 0 {
		description = fmt.Sprintf("%s From $%d per person.", strings.TrimSpace(description), d.StartingPrice)
	}
	m := id.meta(title, description, "/deals/"+d.Slug, defaultOGImage, []string{
		strings.ToLower(d.CruiseLine) + " deals",
		d.Category + " cruise deals",
	})
	if d.Availability == catalog.SoldOut {
		m.Robots = RobotsNoIndex
	}
	return m
}

// DestinationMeta is the Meta for /destinations/<slug>.
func (id Identity) DestinationMeta(d catalog.Destination) Meta {
	title := fmt.Sprintf("%s Vacations from Newark | %s", d.Name, id.Name)
	m := id.meta(title, firstNonEmpty(d.Summary, d.Description), "/destinations/"+d.Slug, firstNonEmpty(d.Image, defaultOGImage), d.Tags)
	m.OG.ImageAlt = d.Name
	return m
}

// GuideMeta is the Meta for /guides/<slug>.
func (id Identity) GuideMeta(g catalog.Guide) Meta {
	m := id.meta(firstNonEmpty(g.MetaTitle, g.Title), firstNonEmpty(g.MetaDescription, g.Introduction), "/guides/"+g.Slug, defaultOGImage, g.Keywords)
	m.OG.Type = "article"
	return m
}

// PackageMeta is the Meta for /packages/<slug>.
func (id Identity) PackageMeta(p catalog.Package) Meta {
	title := firstNonEmpty(p.MetaTitle, p.Title+" | "+id.Name)
	m := id.meta(title, firstNonEmpty(p.MetaDescription, p.Description), "/packages/"+p.Slug, defaultOGImage, p.Keywords)
	m.OG.Type = "article"
	return m
}

// LocationMeta is the Meta for /from/<slug>.
func (id Identity) LocationMeta(loc catalog.NationalLocation) Meta {
	title := fmt.Sprintf("Vacations & Cruises from %s | %s", loc.City, id.Name)
	return id.meta(title, loc.Summary, "/from/"+loc.Slug, defaultOGImage, []string{
		"vacations from " + strings.ToLower(loc.City),
		"cruises from " + strings.ToLower(loc.City),
	})
}

func (id Identity) meta(title, description, path, image string, keywords []string) Meta {
	canonical := id.Abs(path)
	img := id.Abs(image)
	return Meta{
		Title:       title,
		Description: description,
		Keywords:    keywords,
		Canonical:   canonical,
		Robots:      RobotsIndex,
		OG: OpenGraph{
			Title:       title,
			Description: description,
			URL:         canonical,
			Image:       img,
			ImageAlt:    title,
			Type:        "website",
			SiteName:    id.Name,
			Locale:      "en_US",
		},
		Twitter: Twitter{
			Card:        "summary_large_image",
			Site:        id.TwitterSite,
			Title:       TwitterTitle(title),
			Description: TwitterDescription(description),
			Image:       img,
		},
	}
}

func displayPhone(tel string) string {
	return strings.TrimPrefix(tel, "+1-")
}

func firstSentence(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.Index(s, ". "); i >= 0 {
		return s[:i+1]
	}
	return s
}
