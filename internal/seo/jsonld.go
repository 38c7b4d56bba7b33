package seo

import (
	"encoding/json"
	"fmt"
	"strings"

	"nexttripanywhere.com/web/internal/catalog"
)

const schemaContext = "https://schema.org"

// JSON marshals v to a compact JSON string. It returns an empty string on error.
func JSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// Organization kinds accepted by Organization.
const (
	KindOrganization  = "Organization"
	KindTravelAgency  = "TravelAgency"
	KindLocalBusiness = "LocalBusiness"
)

// Organization returns the business node. kind defaults to TravelAgency.
func (id Identity) Organization(kind string) map[string]any {
	switch kind {
	case KindOrganization, KindTravelAgency, KindLocalBusiness:
	default:
		kind = KindTravelAgency
	}
	m := map[string]any{
		"@type":       kind,
		"@id":         id.OrganizationID(),
		"name":        id.Name,
		"url":         id.URL,
		"description": id.Description,
		"telephone":   id.Phone,
		"priceRange":  "$$",
		"address": map[string]any{
			"@type":           "PostalAddress",
			"addressLocality": id.Locality,
			"addressRegion":   id.Region,
			"postalCode":      id.PostalCode,
			"addressCountry":  id.Country,
		},
		"geo":                       geo(id.Latitude, id.Longitude),
		"areaServed":                areaServed(),
		"openingHoursSpecification": openingHours(),
		"currenciesAccepted":        "USD",
	}
	if id.Logo != "" {
		m["logo"] = id.Logo
	}
	if id.Email != "" {
		m["email"] = id.Email
	}
	if len(id.Images) > 0 {
		m["image"] = id.Images
	}
	if len(id.SameAs) > 0 {
		m["sameAs"] = id.SameAs
	}
	if id.ReviewCount > 0 {
		m["aggregateRating"] = id.aggregateRating()
	}
	return m
}

// WebSite returns the website node with a SearchAction into /destinations.
func (id Identity) WebSite() map[string]any {
	return map[string]any{
		"@type":       "WebSite",
		"@id":         id.WebSiteID(),
		"url":         id.URL,
		"name":        id.Name + " - Essex County Travel Agency",
		"publisher":   id.orgRef(),
		"inLanguage":  []string{"en-US", "es"},
		"description": "Your trusted travel partner for cruises, vacation packages, and all-inclusive resorts from Newark and Essex County, New Jersey",
		"potentialAction": map[string]any{
			"@type": "SearchAction",
			"target": map[string]any{
				"@type":       "EntryPoint",
				"urlTemplate": id.URL + "/destinations?q={search_term_string}",
			},
			"query-input": "required name=search_term_string",
		},
	}
}

// BreadcrumbItem maps name and absolute item URL.
type BreadcrumbItem struct {
	Name string
	Item string
}

// BreadcrumbList builds schema.org BreadcrumbList. The @id hangs off the last item.
func (id Identity) BreadcrumbList(items []BreadcrumbItem) map[string]any {
	el := make([]map[string]any, 0, len(items))
	for i, it := range items {
		li := map[string]any{
			"@type":    "ListItem",
			"position": i + 1,
			"name":     it.Name,
		}
		if it.Item != "" {
			li["item"] = id.Abs(it.Item)
		}
		el = append(el, li)
	}
	last := id.URL
	if n := len(items); n > 0 && items[n-1].Item != "" {
		last = id.Abs(items[n-1].Item)
	}
	return map[string]any{
		"@type":           "BreadcrumbList",
		"@id":             last + "#breadcrumb",
		"itemListElement": el,
		"numberOfItems":   len(items),
	}
}

// FAQPage builds a FAQPage node, nil when there are no questions.
func (id Identity) FAQPage(pageURL string, faqs []catalog.FAQ) map[string]any {
	if len(faqs) == 0 {
		return nil
	}
	base := pageURL + "#faq"
	questions := make([]map[string]any, 0, len(faqs))
	for i, f := range faqs {
		questions = append(questions, map[string]any{
			"@type": "Question",
			"@id":   fmt.Sprintf("%s-q%d", base, i+1),
			"name":  f.Question,
			"acceptedAnswer": map[string]any{
				"@type": "Answer",
				"text":  f.Answer,
			},
		})
	}
	return map[string]any{
		"@type":      "FAQPage",
		"@id":        base,
		"mainEntity": questions,
		"isPartOf":   map[string]any{"@id": id.WebSiteID()},
	}
}

// Service describes a service offered by the agency.
func (id Identity) Service(name, description, serviceType, pageURL string) map[string]any {
	return map[string]any{
		"@type":       "Service",
		"@id":         id.URL + "/#service-" + catalog.Slugify(serviceType),
		"name":        name,
		"description": description,
		"serviceType": serviceType,
		"provider":    id.orgRef(),
		"areaServed":  areaServed(),
		"availableChannel": []map[string]any{{
			"@type":             "ServiceChannel",
			"serviceUrl":        id.Abs(pageURL),
			"servicePhone":      id.Phone,
			"availableLanguage": []string{"English", "Spanish"},
		}},
	}
}

// ArticleInput carries the fields of an Article node.
type ArticleInput struct {
	Headline      string
	Description   string
	URL           string
	Image         string
	Author        string
	DatePublished string
	DateModified  string
	Keywords      []string
	WordCount     int
	Section       string
}

// Article returns an Article node published by the agency.
func (id Identity) Article(in ArticleInput) map[string]any {
	url := id.Abs(in.URL)
	m := map[string]any{
		"@type":            "Article",
		"@id":              url + "#article",
		"headline":         in.Headline,
		"url":              url,
		"mainEntityOfPage": map[string]any{"@type": "WebPage", "@id": url},
		"publisher": map[string]any{
			"@type": "Organization",
			"@id":   id.OrganizationID(),
			"name":  id.Name,
			"logo":  map[string]any{"@type": "ImageObject", "url": id.Logo},
		},
	}
	if in.Description != "" {
		m["description"] = in.Description
	}
	if in.Image != "" {
		m["image"] = id.Abs(in.Image)
	}
	author := in.Author
	if author == "" {
		m["author"] = id.orgRef()
	} else {
		m["author"] = map[string]any{"@type": "Person", "name": author}
	}
	if in.DatePublished != "" {
		m["datePublished"] = in.DatePublished
	}
	if in.DateModified != "" {
		m["dateModified"] = in.DateModified
	} else if in.DatePublished != "" {
		m["dateModified"] = in.DatePublished
	}
	if len(in.Keywords) > 0 {
		m["keywords"] = strings.Join(in.Keywords, ", ")
	}
	if in.WordCount > 0 {
		m["wordCount"] = in.WordCount
	}
	if in.Section != "" {
		m["articleSection"] = in.Section
	}
	return m
}

// CruiseTrip maps a cruise destination page to a TouristTrip with a starting offer.
func (id Identity) CruiseTrip(cd catalog.CruiseDestination) map[string]any {
	url := id.Abs("/cruises/" + cd.Slug)
	m := map[string]any{
		"@type":       "TouristTrip",
		"@id":         url + "#trip",
		"name":        cd.Title,
		"description": firstNonEmpty(cd.MetaDescription, cd.Description),
		"url":         url,
		"provider":    id.orgRef(),
	}
	if len(cd.Highlights) > 0 {
		m["touristType"] = cd.Highlights
	}
	if cd.StartingPrice > 0 {
		m["offers"] = map[string]any{
			"@type":         "AggregateOffer",
			"lowPrice":      cd.StartingPrice,
			"priceCurrency": "USD",
			"availability":  "https://schema.org/InStock",
			"url":           url,
		}
	}
	if cd.PortInfo != nil {
		m["itinerary"] = map[string]any{
			"@type":   "Place",
			"name":    cd.PortInfo.Name,
			"address": cd.PortInfo.Address,
		}
	}
	return m
}

// CruiseLine describes a cruise brand page as a Brand node.
func (id Identity) CruiseLine(cl catalog.CruiseLine) map[string]any {
	url := id.Abs("/cruises/" + cl.Slug)
	m := map[string]any{
		"@type":       "Brand",
		"@id":         url + "#brand",
		"name":        cl.Name,
		"slogan":      cl.Tagline,
		"description": cl.Description,
		"url":         url,
	}
	return m
}

// DealOffer maps a deal to a Product with a single Offer.
func (id Identity) DealOffer(d catalog.Deal) map[string]any {
	url := id.Abs("/deals/" + d.Slug)
	offer := map[string]any{
		"@type":         "Offer",
		"price":         d.StartingPrice,
		"priceCurrency": "USD",
		"availability":  availabilityURL(d.Availability),
		"url":           url,
		"seller":        id.orgRef(),
	}
	if !d.BookingDeadline.IsZero() {
		offer["priceValidUntil"] = d.BookingDeadline.ISO()
	}
	if !d.DepartureDate.IsZero() {
		offer["validThrough"] = d.DepartureDate.ISO()
	}
	m := map[string]any{
		"@type":       "Product",
		"@id":         url + "#product",
		"name":        d.Title,
		"description": firstNonEmpty(d.Summary, d.Title),
		"brand":       map[string]any{"@type": "Brand", "name": d.CruiseLine},
		"category":    d.Category,
		"offers":      offer,
	}
	if len(d.Perks) > 0 {
		m["additionalProperty"] = propertyValues("perk", d.Perks)
	}
	return m
}

// PackageTrip maps a vacation package to a TouristTrip. The offer's high
// price is the starting price before the advertised savings.
func (id Identity) PackageTrip(p catalog.Package) map[string]any {
	url := id.Abs("/packages/" + p.Slug)
	m := map[string]any{
		"@type":       "TouristTrip",
		"@id":         url + "#trip",
		"name":        p.Title,
		"description": firstNonEmpty(p.MetaDescription, p.Description),
		"url":         url,
		"provider":    id.orgRef(),
	}
	if p.PackageType != "" {
		m["touristType"] = p.PackageType
	}
	if len(p.Destinations) > 0 {
		places := make([]map[string]any, 0, len(p.Destinations))
		for _, d := range p.Destinations {
			places = append(places, map[string]any{"@type": "Place", "name": d})
		}
		m["itinerary"] = map[string]any{"@type": "ItemList", "itemListElement": places}
	}
	if p.StartingPrice > 0 {
		offer := map[string]any{
			"@type":         "AggregateOffer",
			"lowPrice":      p.StartingPrice,
			"priceCurrency": "USD",
			"availability":  "https://schema.org/InStock",
			"url":           url,
		}
		if p.SavingsAmount > 0 {
			offer["highPrice"] = p.StartingPrice + p.SavingsAmount
		}
		m["offers"] = offer
	}
	if len(p.IncludedFeatures) > 0 {
		m["additionalProperty"] = propertyValues("included", p.IncludedFeatures)
	}
	return m
}

// FlightService is the flight booking Service with the origin cities the
// agency books from as its served area.
func (id Identity) FlightService(origins []string) map[string]any {
	m := id.Service(
		"Flight Booking Services",
		"Flight booking with unpublished fares and multi-city itineraries from Newark and every major US airport.",
		"Flight Booking",
		"/flights",
	)
	area := areaServed()
	for _, city := range origins {
		area = append(area, map[string]any{"@type": "City", "name": city})
	}
	m["areaServed"] = area
	offers := make([]map[string]any, 0, len(flightOffers))
	for _, o := range flightOffers {
		offers = append(offers, map[string]any{"@type": "Offer", "name": o[0], "description": o[1]})
	}
	m["hasOfferCatalog"] = map[string]any{
		"@type":           "OfferCatalog",
		"name":            "Flight Deals",
		"itemListElement": offers,
	}
	return m
}

var flightOffers = [][2]string{
	{"Domestic Flights", "Discounted domestic flights within the United States"},
	{"International Flights", "Consolidator fares on international routes"},
	{"Business Class Deals", "Premium cabin sales and upgrades"},
	{"Last Minute Flights", "Short-notice fares for urgent trips"},
}

// DestinationPlace maps a destination to a TouristDestination.
func (id Identity) DestinationPlace(d catalog.Destination) map[string]any {
	url := id.Abs("/destinations/" + d.Slug)
	m := map[string]any{
		"@type":       "TouristDestination",
		"@id":         url + "#destination",
		"name":        d.Name,
		"description": firstNonEmpty(d.Summary, d.Description),
		"url":         url,
	}
	if d.Country != "" {
		m["containedInPlace"] = map[string]any{"@type": "Country", "name": d.Country}
	}
	if d.Latitude != 0 || d.Longitude != 0 {
		m["geo"] = geo(d.Latitude, d.Longitude)
	}
	if len(d.Tags) > 0 {
		m["touristType"] = d.Tags
	}
	if d.Image != "" {
		m["image"] = id.Abs(d.Image)
	}
	return m
}

// LocalBusiness returns the TravelAgency node for a town page, or for the
// whole county when city is nil.
func (id Identity) LocalBusiness(city *catalog.City) map[string]any {
	description := "Premier travel agency serving Essex County, New Jersey"
	var served any = map[string]any{"@type": "AdministrativeArea", "name": "Essex County"}
	anchor := id.URL + "/essex-county#localbusiness"
	if city != nil {
		description = fmt.Sprintf("Premier travel agency serving %s and Essex County, NJ", city.Name)
		served = []map[string]any{
			{"@type": "City", "name": city.Name},
			{"@type": "AdministrativeArea", "name": "Essex County"},
		}
		anchor = id.URL + "/travel-from-" + city.ID + "#localbusiness"
	}
	phone := firstNonEmpty(id.LocalPhone, id.Phone)
	return map[string]any{
		"@type":       "TravelAgency",
		"@id":         anchor,
		"name":        id.Name,
		"description": description,
		"url":         id.URL,
		"telephone":   phone,
		"address": map[string]any{
			"@type":           "PostalAddress",
			"addressLocality": "Essex County",
			"addressRegion":   "NJ",
			"addressCountry":  "US",
		},
		"geo":                       geo(40.7831, -74.2227),
		"areaServed":                served,
		"priceRange":                "$$",
		"openingHoursSpecification": openingHours(),
		"sameAs":                    id.SameAs,
		"parentOrganization":        map[string]any{"@id": id.OrganizationID()},
	}
}

func (id Identity) aggregateRating() map[string]any {
	return map[string]any{
		"@type":       "AggregateRating",
		"ratingValue": id.RatingValue,
		"reviewCount": id.ReviewCount,
		"bestRating":  5,
		"worstRating": 1,
	}
}

func availabilityURL(a catalog.Availability) string {
	switch a {
	case catalog.SoldOut:
		return "https://schema.org/SoldOut"
	case catalog.Limited:
		return "https://schema.org/LimitedAvailability"
	default:
		return "https://schema.org/InStock"
	}
}

func geo(lat, lng float64) map[string]any {
	return map[string]any{"@type": "GeoCoordinates", "latitude": lat, "longitude": lng}
}

func areaServed() []map[string]any {
	return []map[string]any{
		{"@type": "AdministrativeArea", "name": "Essex County, New Jersey"},
		{"@type": "AdministrativeArea", "name": "New Jersey"},
		{"@type": "AdministrativeArea", "name": "New York Metropolitan Area"},
	}
}

func openingHours() []map[string]any {
	return []map[string]any{
		{
			"@type":     "OpeningHoursSpecification",
			"dayOfWeek": []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"},
			"opens":     "09:00",
			"closes":    "18:00",
		},
		{
			"@type":     "OpeningHoursSpecification",
			"dayOfWeek": "Saturday",
			"opens":     "10:00",
			"closes":    "16:00",
		},
	}
}

func propertyValues(name string, values []string) []map[string]any {
	out := make([]map[string]any, 0, len(values))
	for _, v := range values {
		out = append(out, map[string]any{"@type": "PropertyValue", "name": name, "value": v})
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// ListItem is one entry of an ItemList.
type ListItem struct {
	Name string
	URL  string
}

// ItemList lists the detail pages linked from an index page.
func (id Identity) ItemList(pageURL, name string, items []ListItem) map[string]any {
	if len(items) == 0 {
		return nil
	}
	url := id.Abs(pageURL)
	el := make([]map[string]any, 0, len(items))
	for i, it := range items {
		el = append(el, map[string]any{
			"@type":    "ListItem",
			"position": i + 1,
			"name":     it.Name,
			"url":      id.Abs(it.URL),
		})
	}
	return map[string]any{
		"@type":           "ItemList",
		"@id":             url + "#itemlist",
		"name":            name,
		"numberOfItems":   len(items),
		"itemListElement": el,
	}
}
