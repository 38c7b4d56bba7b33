package catalog

import "time"

// Priority ranks pages by search volume. It drives sitemap priority.
type Priority string

const (
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
)

// FAQ is a question/answer pair rendered on page and in FAQPage markup.
type FAQ struct {
	Question string `yaml:"question"`
	Answer   string `yaml:"answer"`
}

// Landmark is a notable place in a city.
type Landmark struct {
	Name        string `yaml:"name"`
	Type        string `yaml:"type"`
	Description string `yaml:"description"`
	Address     string `yaml:"address"`
}

// Airport is a nearby airport with a human distance.
type Airport struct {
	Name     string `yaml:"name"`
	Code     string `yaml:"code"`
	Distance string `yaml:"distance"`
}

// Demographics summarises a city's market.
type Demographics struct {
	MedianIncome      int      `yaml:"median_income"`
	MedianHomeValue   int      `yaml:"median_home_value"`
	PrimaryIndustries []string `yaml:"primary_industries"`
}

// City is an Essex County town served by a /travel-from-<id> page.
type City struct {
	ID                  string       `yaml:"id"`
	Name                string       `yaml:"name"`
	County              string       `yaml:"county"`
	State               string       `yaml:"state"`
	Population          int          `yaml:"population"`
	SquareMiles         float64      `yaml:"square_miles"`
	EstablishedYear     int          `yaml:"established_year"`
	ZipCodes            []string     `yaml:"zip_codes"`
	Description         string       `yaml:"description"`
	Landmarks           []Landmark   `yaml:"landmarks"`
	NearbyAirports      []Airport    `yaml:"nearby_airports"`
	MajorHighways       []string     `yaml:"major_highways"`
	NeighboringTowns    []string     `yaml:"neighboring_towns"`
	LocalAttractions    []string     `yaml:"local_attractions"`
	BusinessDistricts   []string     `yaml:"business_districts"`
	Demographics        Demographics `yaml:"demographics"`
	TransportationNeeds []string     `yaml:"transportation_needs"`
}

// PriceRange is a dollar range with a unit label ("per trip").
type PriceRange struct {
	Min  int    `yaml:"min"`
	Max  int    `yaml:"max"`
	Unit string `yaml:"unit"`
}

// Service is a local service offered across Essex County.
type Service struct {
	ID                  string     `yaml:"id"`
	Name                string     `yaml:"name"`
	ShortDescription    string     `yaml:"short_description"`
	LongDescription     string     `yaml:"long_description"`
	Keywords            []string   `yaml:"keywords"`
	Benefits            []string   `yaml:"benefits"`
	Vehicles            []string   `yaml:"vehicles"`
	PriceRange          PriceRange `yaml:"price_range"`
	PopularDestinations []string   `yaml:"popular_destinations"`
	ServiceFeatures     []string   `yaml:"service_features"`
	IdealFor            []string   `yaml:"ideal_for"`
}

// CruiseLine is a brand page under /cruises/<slug>.
type CruiseLine struct {
	Slug          string   `yaml:"slug"`
	Name          string   `yaml:"name"`
	Tagline       string   `yaml:"tagline"`
	Description   string   `yaml:"description"`
	Ships         []string `yaml:"ships"`
	HomePorts     []string `yaml:"home_ports"`
	Highlights    []string `yaml:"highlights"`
	StartingPrice int      `yaml:"starting_price"`
	SitemapWeight float64  `yaml:"sitemap_priority"`
	FAQ           []FAQ    `yaml:"faq"`
}

// Hero is the page headline block.
type Hero struct {
	Headline    string `yaml:"headline"`
	Subheadline string `yaml:"subheadline"`
}

// PortInfo describes a departure port for port pages.
type PortInfo struct {
	Name        string `yaml:"name"`
	Address     string `yaml:"address"`
	Distance    string `yaml:"distance"`
	ParkingInfo string `yaml:"parking_info"`
	Directions  string `yaml:"directions"`
}

// CruiseDestination is an SEO landing page under /cruises/<slug>.
type CruiseDestination struct {
	Slug               string    `yaml:"slug"`
	Title              string    `yaml:"title"`
	MetaTitle          string    `yaml:"meta_title"`
	MetaDescription    string    `yaml:"meta_description"`
	Keywords           []string  `yaml:"keywords"`
	SearchVolume       int       `yaml:"search_volume"`
	Difficulty         int       `yaml:"difficulty"`
	Priority           Priority  `yaml:"priority"`
	Hero               Hero      `yaml:"hero"`
	Description        string    `yaml:"description"`
	Highlights         []string  `yaml:"highlights"`
	PortInfo           *PortInfo `yaml:"port_info"`
	PopularCruiseLines []string  `yaml:"popular_cruise_lines"`
	BestTimeToVisit    string    `yaml:"best_time_to_visit"`
	AverageDuration    string    `yaml:"average_duration"`
	StartingPrice      int       `yaml:"starting_price"`
	LocalTips          []string  `yaml:"local_tips"`
	FAQ                []FAQ     `yaml:"faq"`
	InternalLinks      []string  `yaml:"internal_links"`
	LastUpdated        Date      `yaml:"last_updated"`
}

// Destination is a destination guide under /destinations/<slug>.
type Destination struct {
	Slug          string   `yaml:"slug"`
	Name          string   `yaml:"name"`
	Country       string   `yaml:"country"`
	Region        string   `yaml:"region"`
	Category      string   `yaml:"category"`
	Summary       string   `yaml:"summary"`
	Description   string   `yaml:"description"`
	Highlights    []string `yaml:"highlights"`
	BestTime      string   `yaml:"best_time"`
	StartingPrice int      `yaml:"starting_price"`
	FlightTime    string   `yaml:"flight_time"`
	Featured      bool     `yaml:"featured"`
	Popularity    int      `yaml:"popularity"`
	Tags          []string `yaml:"tags"`
	Image         string   `yaml:"image"`
	Latitude      float64  `yaml:"latitude"`
	Longitude     float64  `yaml:"longitude"`
	FAQ           []FAQ    `yaml:"faq"`
}

// Availability of a deal.
type Availability string

const (
	Available Availability = "available"
	Limited   Availability = "limited"
	SoldOut   Availability = "sold-out"
)

// Deal is a promotional offer under /deals/<slug>.
type Deal struct {
	Slug            string       `yaml:"slug"`
	Title           string       `yaml:"title"`
	Category        string       `yaml:"category"`
	Summary         string       `yaml:"summary"`
	CruiseLine      string       `yaml:"cruise_line"`
	Ship            string       `yaml:"ship"`
	DurationDays    int          `yaml:"duration_days"`
	DeparturePort   string       `yaml:"departure_port"`
	Destinations    []string     `yaml:"destinations"`
	OfferType       string       `yaml:"offer_type"`
	Badge           string       `yaml:"badge"`
	DepartureDate   Date         `yaml:"departure_date"`
	ReturnDate      Date         `yaml:"return_date"`
	CabinType       string       `yaml:"cabin_type"`
	Perks           []string     `yaml:"perks"`
	Terms           []string     `yaml:"terms"`
	LastMinute      bool         `yaml:"last_minute"`
	Value           bool         `yaml:"value"`
	Featured        bool         `yaml:"featured"`
	Availability    Availability `yaml:"availability"`
	BookingDeadline Date         `yaml:"booking_deadline"`
	StartingPrice   int          `yaml:"starting_price"`
}

// Section is a titled block of guide copy.
type Section struct {
	Title   string `yaml:"title"`
	Content string `yaml:"content"`
}

// InsurancePlan is a tier compared on the travel insurance guide.
type InsurancePlan struct {
	Name        string   `yaml:"name"`
	PriceFrom   int      `yaml:"price_from"`
	PriceTo     int      `yaml:"price_to"`
	Coverage    []string `yaml:"coverage"`
	BestFor     string   `yaml:"best_for"`
	Description string   `yaml:"description"`
}

// Step is one numbered instruction in a how-to guide.
type Step struct {
	Name string `yaml:"name"`
	Text string `yaml:"text"`
}

// Guide kinds.
const (
	GuideKindGuide     = "guide"
	GuideKindInsurance = "insurance"
)

// Guide is a long-form travel guide under /guides/<slug>.
type Guide struct {
	Slug            string          `yaml:"slug"`
	Kind            string          `yaml:"kind"`
	Title           string          `yaml:"title"`
	MetaTitle       string          `yaml:"meta_title"`
	MetaDescription string          `yaml:"meta_description"`
	Keywords        []string        `yaml:"keywords"`
	SearchVolume    int             `yaml:"search_volume"`
	Priority        Priority        `yaml:"priority"`
	Introduction    string          `yaml:"introduction"`
	Sections        []Section       `yaml:"sections"`
	LocalTips       string          `yaml:"local_tips"`
	Conclusion      string          `yaml:"conclusion"`
	FAQ             []FAQ           `yaml:"faq"`
	InternalLinks   []string        `yaml:"internal_links"`
	LastUpdated     Date            `yaml:"last_updated"`
	Plans           []InsurancePlan `yaml:"plans"`
	Steps           []Step          `yaml:"steps"`
}

// NationalLocation is an out-of-state origin page under /from/<slug>.
type NationalLocation struct {
	Slug       string   `yaml:"slug"`
	City       string   `yaml:"city"`
	State      string   `yaml:"state"`
	Headline   string   `yaml:"headline"`
	Summary    string   `yaml:"summary"`
	Airports   []string `yaml:"airports"`
	CruisePort string   `yaml:"cruise_port"`
}

// Resort is a property featured on a vacation package page.
type Resort struct {
	Name     string   `yaml:"name"`
	Location string   `yaml:"location"`
	Rating   float64  `yaml:"rating"`
	Features []string `yaml:"features"`
}

// Package is a vacation package landing page under /packages/<slug>.
type Package struct {
	Slug             string   `yaml:"slug"`
	Title            string   `yaml:"title"`
	MetaTitle        string   `yaml:"meta_title"`
	MetaDescription  string   `yaml:"meta_description"`
	Keywords         []string `yaml:"keywords"`
	SearchVolume     int      `yaml:"search_volume"`
	Priority         Priority `yaml:"priority"`
	PackageType      string   `yaml:"package_type"`
	Hero             Hero     `yaml:"hero"`
	Description      string   `yaml:"description"`
	Highlights       []string `yaml:"highlights"`
	IncludedFeatures []string `yaml:"included_features"`
	Destinations     []string `yaml:"destinations"`
	Resorts          []Resort `yaml:"resorts"`
	BestTimeToVisit  string   `yaml:"best_time_to_visit"`
	AverageDuration  string   `yaml:"average_duration"`
	StartingPrice    int      `yaml:"starting_price"`
	SavingsAmount    int      `yaml:"savings_amount"`
	LocalAdvantages  []string `yaml:"local_advantages"`
	FAQ              []FAQ    `yaml:"faq"`
	InternalLinks    []string `yaml:"internal_links"`
	LastUpdated      Date     `yaml:"last_updated"`
}

// Redirect maps a retired or misspelled path onto a live page. From and To
// may carry ":name" parameters; a segment may also be a literal prefix
// followed by one parameter ("from-:city").
type Redirect struct {
	From      string `yaml:"from"`
	To        string `yaml:"to"`
	Permanent *bool  `yaml:"permanent"`
}

// IsPermanent reports whether the redirect answers 301. Unset means permanent.
func (r Redirect) IsPermanent() bool {
	return r.Permanent == nil || *r.Permanent
}

// Date is a calendar day decoded from "2006-01-02" YAML scalars.
type Date struct {
	time.Time
}

// UnmarshalYAML accepts "2006-01-02", RFC3339, or an empty value.
func (d *Date) UnmarshalYAML(unmarshal func(any) error) error {
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}
	t, err := parseDate(raw)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// ISO returns the date as YYYY-MM-DD or "" when unset.
func (d Date) ISO() string {
	if d.IsZero() {
		return ""
	}
	return d.Format("2006-01-02")
}
