package catalog

import (
	"sort"
	"strings"
	"time"
)

// City returns the city with the given id.
func (c *Catalog) City(id string) (City, bool) {
	i, ok := c.cities[id]
	if !ok {
		return City{}, false
	}
	return c.Cities[i], true
}

// Service returns the service with the given id.
func (c *Catalog) Service(id string) (Service, bool) {
	i, ok := c.services[id]
	if !ok {
		return Service{}, false
	}
	return c.Services[i], true
}

// CruiseLine returns the cruise line with the given slug.
func (c *Catalog) CruiseLine(slug string) (CruiseLine, bool) {
	i, ok := c.cruiseLines[slug]
	if !ok {
		return CruiseLine{}, false
	}
	return c.CruiseLines[i], true
}

// Cruise returns the cruise destination page with the given slug.
func (c *Catalog) Cruise(slug string) (CruiseDestination, bool) {
	i, ok := c.cruises[slug]
	if !ok {
		return CruiseDestination{}, false
	}
	return c.Cruises[i], true
}

// Destination returns the destination with the given slug.
func (c *Catalog) Destination(slug string) (Destination, bool) {
	i, ok := c.destinations[slug]
	if !ok {
		return Destination{}, false
	}
	return c.Destinations[i], true
}

// Deal returns the deal with the given slug.
func (c *Catalog) Deal(slug string) (Deal, bool) {
	i, ok := c.deals[slug]
	if !ok {
		return Deal{}, false
	}
	return c.Deals[i], true
}

// Guide returns the guide with the given slug.
func (c *Catalog) Guide(slug string) (Guide, bool) {
	i, ok := c.guides[slug]
	if !ok {
		return Guide{}, false
	}
	return c.Guides[i], true
}

// NationalLocation returns the /from/<slug> origin.
func (c *Catalog) NationalLocation(slug string) (NationalLocation, bool) {
	i, ok := c.locations[slug]
	if !ok {
		return NationalLocation{}, false
	}
	return c.Locations[i], true
}

// Package returns the vacation package with the given slug.
func (c *Catalog) Package(slug string) (Package, bool) {
	i, ok := c.packages[slug]
	if !ok {
		return Package{}, false
	}
	return c.Packages[i], true
}

// PackagesByPriority returns packages in HIGH, MEDIUM, LOW order, stable within a tier.
func (c *Catalog) PackagesByPriority() []Package {
	out := append([]Package(nil), c.Packages...)
	sort.SliceStable(out, func(i, j int) bool { return priorityRank(out[i].Priority) < priorityRank(out[j].Priority) })
	return out
}

// CityIDs lists city ids in file order.
func (c *Catalog) CityIDs() []string {
	ids := make([]string, 0, len(c.Cities))
	for _, city := range c.Cities {
		ids = append(ids, city.ID)
	}
	return ids
}

// CitiesByPopulation returns cities whose population falls in [min, max].
// A max of zero means no upper bound.
func (c *Catalog) CitiesByPopulation(min, max int) []City {
	var out []City
	for _, city := range c.Cities {
		if city.Population < min {
			continue
		}
		if max > 0 && city.Population > max {
			continue
		}
		out = append(out, city)
	}
	return out
}

// NearbyCities resolves the neighboring towns of id that exist in the catalog.
func (c *Catalog) NearbyCities(id string) []City {
	city, ok := c.City(id)
	if !ok {
		return nil
	}
	var out []City
	for _, name := range city.NeighboringTowns {
		key := Slugify(name)
		if n, ok := c.City(key); ok {
			out = append(out, n)
		}
	}
	return out
}

// ServiceKeywords returns the keyword list of a service, nil when unknown.
func (c *Catalog) ServiceKeywords(id string) []string {
	svc, ok := c.Service(id)
	if !ok {
		return nil
	}
	return svc.Keywords
}

// HighPriorityCruises returns cruise pages with HIGH priority.
func (c *Catalog) HighPriorityCruises() []CruiseDestination {
	var out []CruiseDestination
	for _, cd := range c.Cruises {
		if cd.Priority == PriorityHigh {
			out = append(out, cd)
		}
	}
	return out
}

// CruisesByDifficulty returns cruise pages at or below the keyword difficulty max.
func (c *Catalog) CruisesByDifficulty(max int) []CruiseDestination {
	var out []CruiseDestination
	for _, cd := range c.Cruises {
		if cd.Difficulty <= max {
			out = append(out, cd)
		}
	}
	return out
}

// DestinationsByRegion filters destinations by region (case-insensitive).
func (c *Catalog) DestinationsByRegion(region string) []Destination {
	return c.filterDestinations(func(d Destination) bool { return strings.EqualFold(d.Region, region) })
}

// DestinationsByCategory filters destinations by category (case-insensitive).
func (c *Catalog) DestinationsByCategory(category string) []Destination {
	return c.filterDestinations(func(d Destination) bool { return strings.EqualFold(d.Category, category) })
}

// FeaturedDestinations returns featured destinations, most popular first.
func (c *Catalog) FeaturedDestinations(limit int) []Destination {
	out := c.filterDestinations(func(d Destination) bool { return d.Featured })
	sort.SliceStable(out, func(i, j int) bool { return out[i].Popularity > out[j].Popularity })
	return truncate(out, limit)
}

// SearchDestinations matches q against name, country, region, summary and tags.
func (c *Catalog) SearchDestinations(q string) []Destination {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return nil
	}
	return c.filterDestinations(func(d Destination) bool {
		fields := []string{d.Name, d.Country, d.Region, d.Summary}
		fields = append(fields, d.Tags...)
		for _, f := range fields {
			if strings.Contains(strings.ToLower(f), q) {
				return true
			}
		}
		return false
	})
}

// RelatedDestinations returns destinations sharing a region or category with d,
// same region first, excluding d itself.
func (c *Catalog) RelatedDestinations(d Destination, limit int) []Destination {
	var region, category []Destination
	for _, other := range c.Destinations {
		if other.Slug == d.Slug {
			continue
		}
		switch {
		case d.Region != "" && strings.EqualFold(other.Region, d.Region):
			region = append(region, other)
		case d.Category != "" && strings.EqualFold(other.Category, d.Category):
			category = append(category, other)
		}
	}
	return truncate(append(region, category...), limit)
}

// ActiveDeals returns deals that are not sold out and whose booking deadline
// has not passed. Deals without a deadline stay active.
func (c *Catalog) ActiveDeals(now time.Time) []Deal {
	return c.filterDeals(func(d Deal) bool {
		if d.Availability == SoldOut {
			return false
		}
		if d.BookingDeadline.IsZero() {
			return true
		}
		return !now.After(endOfDay(d.BookingDeadline.Time))
	})
}

// LastMinuteDeals returns deals flagged last-minute.
func (c *Catalog) LastMinuteDeals() []Deal {
	return c.filterDeals(func(d Deal) bool { return d.LastMinute })
}

// ValueDeals returns deals flagged as value picks.
func (c *Catalog) ValueDeals() []Deal {
	return c.filterDeals(func(d Deal) bool { return d.Value })
}

// FeaturedDeals returns featured deals.
func (c *Catalog) FeaturedDeals() []Deal {
	return c.filterDeals(func(d Deal) bool { return d.Featured })
}

// DealsByCruiseLine matches the deal's cruise line against a slug or display name.
func (c *Catalog) DealsByCruiseLine(line string) []Deal {
	name := line
	if cl, ok := c.CruiseLine(line); ok {
		name = cl.Name
	}
	return c.filterDeals(func(d Deal) bool {
		return strings.EqualFold(d.CruiseLine, name) || strings.EqualFold(Slugify(d.CruiseLine), line)
	})
}

// DealsByPort filters deals whose departure port contains port.
func (c *Catalog) DealsByPort(port string) []Deal {
	port = strings.ToLower(strings.TrimSpace(port))
	return c.filterDeals(func(d Deal) bool {
		return port != "" && strings.Contains(strings.ToLower(d.DeparturePort), port)
	})
}

// DealsByDuration filters deals by length in days, inclusive. max zero means unbounded.
func (c *Catalog) DealsByDuration(min, max int) []Deal {
	return c.filterDeals(func(d Deal) bool {
		return d.DurationDays >= min && (max == 0 || d.DurationDays <= max)
	})
}

// DealsByCategory filters deals by category (case-insensitive).
func (c *Catalog) DealsByCategory(category string) []Deal {
	return c.filterDeals(func(d Deal) bool { return strings.EqualFold(d.Category, category) })
}

// CityServicePair is one /locations/essex-county/<city>/<service> page.
type CityServicePair struct {
	City    City
	Service Service
}

// CityServicePairs returns every city crossed with every service.
func (c *Catalog) CityServicePairs() []CityServicePair {
	out := make([]CityServicePair, 0, len(c.Cities)*len(c.Services))
	for _, city := range c.Cities {
		for _, svc := range c.Services {
			out = append(out, CityServicePair{City: city, Service: svc})
		}
	}
	return out
}

// GuidesByPriority returns guides in HIGH, MEDIUM, LOW order, stable within a tier.
func (c *Catalog) GuidesByPriority() []Guide {
	out := append([]Guide(nil), c.Guides...)
	sort.SliceStable(out, func(i, j int) bool { return priorityRank(out[i].Priority) < priorityRank(out[j].Priority) })
	return out
}

// Slugify lowercases s and joins word runs with hyphens.
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func priorityRank(p Priority) int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	default:
		return 2
	}
}

func (c *Catalog) filterDestinations(keep func(Destination) bool) []Destination {
	var out []Destination
	for _, d := range c.Destinations {
		if keep(d) {
			out = append(out, d)
		}
	}
	return out
}

func (c *Catalog) filterDeals(keep func(Deal) bool) []Deal {
	var out []Deal
	for _, d := range c.Deals {
		if keep(d) {
			out = append(out, d)
		}
	}
	return out
}

func truncate[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, 0, t.Location())
}
