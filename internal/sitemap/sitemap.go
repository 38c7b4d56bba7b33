package sitemap

import (
	"strconv"
	"strings"
	"time"

	"nexttripanywhere.com/web/internal/catalog"
)

// Change frequencies from the sitemaps.org protocol.
const (
	Daily   = "daily"
	Weekly  = "weekly"
	Monthly = "monthly"
	Yearly  = "yearly"
)

// Sitemap file paths served by the site.
const (
	IndexPath   = "/sitemap.xml"
	MainPath    = "/sitemap-main.xml"
	CruisesPath = "/sitemap-cruises.xml"
)

// lineDealsFactor scales a cruise line's priority for its /deals sub-page.
const lineDealsFactor = 0.8

// Entry is one <url> element.
type Entry struct {
	Loc        string
	LastMod    time.Time
	ChangeFreq string
	Priority   float64
}

// PriorityString formats the priority with at most two decimals.
func (e Entry) PriorityString() string {
	return strconv.FormatFloat(round2(e.Priority), 'f', -1, 64)
}

// Builder collects entries and drops any URL already added.
type Builder struct {
	base    string
	entries []Entry
	seen    map[string]struct{}
}

// NewBuilder returns a builder that resolves paths against baseURL.
func NewBuilder(baseURL string) *Builder {
	return &Builder{base: strings.TrimRight(baseURL, "/"), seen: make(map[string]struct{})}
}

// Add appends path unless its absolute URL is already present. It reports whether the entry was added.
func (b *Builder) Add(path string, lastMod time.Time, freq string, priority float64) bool {
	loc := b.abs(path)
	if _, dup := b.seen[loc]; dup {
		return false
	}
	b.seen[loc] = struct{}{}
	b.entries = append(b.entries, Entry{Loc: loc, LastMod: lastMod, ChangeFreq: freq, Priority: clamp(priority)})
	return true
}

// Entries returns the collected entries in insertion order.
func (b *Builder) Entries() []Entry {
	out := make([]Entry, len(b.entries))
	copy(out, b.entries)
	return out
}

// Len is the number of collected entries.
func (b *Builder) Len() int { return len(b.entries) }

func (b *Builder) abs(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if path == "" || path == "/" {
		return b.base
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return b.base + path
}

// Post is a blog post reference for the main sitemap.
type Post struct {
	Slug    string
	Updated time.Time
}

// Source is the data the sitemaps are generated from.
type Source struct {
	Catalog *catalog.Catalog
	Posts   []Post
}

// Revision is the lastmod of pages without a date of their own: the day the
// catalog data last changed, or now when that is unknown.
func Revision(cat *catalog.Catalog, now time.Time) time.Time {
	if cat != nil && !cat.Modified.IsZero() {
		return cat.Modified
	}
	return now
}

// Main lists the core, local, service, blog, destination, package, tool,
// company and legal pages.
func Main(baseURL string, src Source, now time.Time) []Entry {
	b := NewBuilder(baseURL)
	cat := src.Catalog
	if cat == nil {
		cat = &catalog.Catalog{}
	}
	rev := Revision(cat, now)

	b.Add("/", rev, Daily, 1.0)
	b.Add("/cruises", rev, Weekly, 0.9)
	b.Add("/deals", rev, Daily, 0.9)
	b.Add("/destinations", rev, Weekly, 0.85)
	b.Add("/guides", rev, Weekly, 0.8)
	b.Add("/packages", rev, Weekly, 0.9)
	b.Add("/flights", rev, Weekly, 0.9)

	for _, loc := range cat.Locations {
		b.Add("/from/"+loc.Slug, rev, Weekly, 0.8)
	}

	b.Add("/essex-county", rev, Weekly, 0.9)
	for _, city := range cat.Cities {
		b.Add("/travel-from-"+city.ID, rev, Weekly, 0.85)
	}
	b.Add("/services", rev, Weekly, 0.8)
	for _, svc := range cat.Services {
		b.Add("/services/"+svc.ID, rev, Weekly, 0.8)
	}
	for _, pair := range cat.CityServicePairs() {
		b.Add("/locations/essex-county/"+pair.City.ID+"/"+pair.Service.ID, rev, Monthly, 0.75)
	}

	b.Add("/blog", rev, Weekly, 0.7)
	for _, p := range src.Posts {
		mod := p.Updated
		if mod.IsZero() {
			mod = rev
		}
		b.Add("/blog/"+p.Slug, mod, Monthly, 0.65)
	}

	for _, d := range cat.Destinations {
		b.Add("/destinations/"+d.Slug, rev, Monthly, 0.7)
	}
	for _, g := range cat.Guides {
		b.Add("/guides/"+g.Slug, dateOr(g.LastUpdated, rev), Monthly, guidePriority(g.Priority))
	}
	for _, p := range cat.Packages {
		b.Add("/packages/"+p.Slug, dateOr(p.LastUpdated, rev), Weekly, CruisePriority(p.Priority))
	}

	b.Add("/tools", rev, Monthly, 0.5)
	b.Add("/tools/cruise-price-calculator", rev, Monthly, 0.7)

	b.Add("/about", rev, Monthly, 0.7)
	b.Add("/contact", rev, Monthly, 0.8)
	b.Add("/quote", rev, Monthly, 0.8)

	b.Add("/privacy", rev, Yearly, 0.3)
	b.Add("/terms", rev, Yearly, 0.3)

	return b.Entries()
}

// Cruises lists the cruise hub, cruise lines with their deal pages, cruise
// destination pages and bookable deals.
func Cruises(baseURL string, cat *catalog.Catalog, now time.Time) []Entry {
	b := NewBuilder(baseURL)
	if cat == nil {
		cat = &catalog.Catalog{}
	}
	rev := Revision(cat, now)

	b.Add("/cruises", rev, Weekly, 0.9)

	for _, line := range cat.CruiseLines {
		p := line.SitemapWeight
		if p <= 0 {
			p = 0.8
		}
		b.Add("/cruises/"+line.Slug, rev, Weekly, p)
		b.Add("/cruises/"+line.Slug+"/deals", rev, Daily, p*lineDealsFactor)
	}

	for _, cd := range cat.Cruises {
		b.Add("/cruises/"+cd.Slug, dateOr(cd.LastUpdated, rev), Weekly, CruisePriority(cd.Priority))
	}

	b.Add("/deals", rev, Daily, 0.9)
	for _, d := range cat.ActiveDeals(now) {
		b.Add("/deals/"+d.Slug, rev, Daily, 0.8)
	}

	return b.Entries()
}

// CruisePriority maps a cruise or package page priority tier to a sitemap priority.
func CruisePriority(p catalog.Priority) float64 {
	switch p {
	case catalog.PriorityHigh:
		return 0.95
	case catalog.PriorityMedium:
		return 0.85
	default:
		return 0.75
	}
}

func guidePriority(p catalog.Priority) float64 {
	switch p {
	case catalog.PriorityHigh:
		return 0.8
	case catalog.PriorityMedium:
		return 0.7
	default:
		return 0.6
	}
}

// IndexEntry is one <sitemap> element of a sitemap index.
type IndexEntry struct {
	Loc     string
	LastMod time.Time
}

// Index lists the main and cruise sitemaps.
func Index(baseURL string, lastMod time.Time) []IndexEntry {
	base := strings.TrimRight(baseURL, "/")
	return []IndexEntry{
		{Loc: base + MainPath, LastMod: lastMod},
		{Loc: base + CruisesPath, LastMod: lastMod},
	}
}

// Robots renders robots.txt pointing crawlers at the sitemap index.
func Robots(baseURL string) string {
	base := strings.TrimRight(baseURL, "/")
	var b strings.Builder
	b.WriteString("User-agent: *\n")
	b.WriteString("Allow: /\n")
	b.WriteString("Disallow: /quote/redirect\n")
	b.WriteString("Disallow: /leads\n")
	b.WriteString("Disallow: /consent\n")
	b.WriteString("Disallow: /healthz\n")
	b.WriteString("Disallow: /metrics\n")
	b.WriteString("\n")
	b.WriteString("Sitemap: " + base + IndexPath + "\n")
	return b.String()
}

func dateOr(d catalog.Date, fallback time.Time) time.Time {
	if d.IsZero() {
		return fallback
	}
	return d.Time
}

func clamp(p float64) float64 {
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	default:
		return p
	}
}

func round2(p float64) float64 {
	return float64(int64(p*100+0.5)) / 100
}
