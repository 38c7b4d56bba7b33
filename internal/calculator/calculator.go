// Package calculator estimates cruise fares for the price calculator tool.
// Figures are planning estimates, not quotes.
package calculator

import (
	"math"
	"net/url"
	"strconv"
	"strings"
)

const (
	MinDays      = 3
	MaxDays      = 14
	MinTravelers = 1
	MaxTravelers = 4

	taxRate       = 0.175
	essexDiscount = 0.05
)

// Cabin is a stateroom category priced as a base fare plus a nightly rate.
type Cabin struct {
	Key      string
	LabelKey string
	Base     int
	PerDay   int
}

// AddOn is an optional extra. PerDay add-ons are charged per traveler per day;
// the rest are a flat charge for the booking.
type AddOn struct {
	Key      string
	LabelKey string
	Price    int
	PerDay   bool
}

// Line scales the fare for a cruise line's price level. Slug matches the
// cruise line pages where one exists.
type Line struct {
	Slug       string
	Name       string
	Multiplier float64
}

var Cabins = []Cabin{
	{Key: "interior", LabelKey: "calc.cabin.interior", Base: 599, PerDay: 85},
	{Key: "oceanview", LabelKey: "calc.cabin.oceanview", Base: 799, PerDay: 115},
	{Key: "balcony", LabelKey: "calc.cabin.balcony", Base: 999, PerDay: 145},
	{Key: "suite", LabelKey: "calc.cabin.suite", Base: 1599, PerDay: 225},
}

var AddOns = []AddOn{
	{Key: "drinks", LabelKey: "calc.addon.drinks", Price: 59, PerDay: true},
	{Key: "wifi", LabelKey: "calc.addon.wifi", Price: 19, PerDay: true},
	{Key: "gratuities", LabelKey: "calc.addon.gratuities", Price: 15, PerDay: true},
	{Key: "specialty", LabelKey: "calc.addon.specialty", Price: 35, PerDay: true},
	{Key: "spa", LabelKey: "calc.addon.spa", Price: 199},
	{Key: "photos", LabelKey: "calc.addon.photos", Price: 149},
}

var Lines = []Line{
	{Slug: "royal-caribbean", Name: "Royal Caribbean", Multiplier: 1.0},
	{Slug: "carnival", Name: "Carnival", Multiplier: 0.9},
	{Slug: "norwegian", Name: "Norwegian", Multiplier: 1.05},
	{Slug: "celebrity", Name: "Celebrity", Multiplier: 1.15},
	{Slug: "princess", Name: "Princess", Multiplier: 1.1},
	{Slug: "msc", Name: "MSC", Multiplier: 0.85},
}

// Input is one calculator request.
type Input struct {
	Days      int
	Cabin     string
	Travelers int
	Line      string
	AddOns    []string
	Essex     bool
}

// Defaults is a week in a balcony cabin for two on Royal Caribbean, with the
// Essex County discount applied.
func Defaults() Input {
	return Input{Days: 7, Cabin: "balcony", Travelers: 2, Line: "royal-caribbean", Essex: true}
}

// Parse reads an Input from a GET form. An empty query yields Defaults.
// Numbers are clamped into range; unknown cabins and lines fall back to the
// defaults and unknown add-ons are dropped.
func Parse(q url.Values) Input {
	in := Defaults()
	if len(q) == 0 {
		return in
	}
	in.Days = clampInt(q.Get("days"), in.Days, MinDays, MaxDays)
	in.Travelers = clampInt(q.Get("travelers"), in.Travelers, MinTravelers, MaxTravelers)
	if _, ok := cabin(q.Get("cabin")); ok {
		in.Cabin = q.Get("cabin")
	}
	if _, ok := line(q.Get("line")); ok {
		in.Line = q.Get("line")
	}
	seen := map[string]bool{}
	for _, key := range q["addon"] {
		if _, ok := addOn(key); ok && !seen[key] {
			seen[key] = true
			in.AddOns = append(in.AddOns, key)
		}
	}
	// an unchecked box is absent from the query
	in.Essex = q.Get("essex") == "on"
	return in
}

// Query encodes in so the estimate can be linked or bookmarked.
func (in Input) Query() url.Values {
	q := url.Values{}
	q.Set("days", strconv.Itoa(in.Days))
	q.Set("cabin", in.Cabin)
	q.Set("travelers", strconv.Itoa(in.Travelers))
	q.Set("line", in.Line)
	for _, a := range in.AddOns {
		q.Add("addon", a)
	}
	if in.Essex {
		q.Set("essex", "on")
	}
	return q
}

// Has reports whether add-on key is selected.
func (in Input) Has(key string) bool {
	for _, a := range in.AddOns {
		if a == key {
			return true
		}
	}
	return false
}

// Estimate is a fare breakdown in whole dollars.
type Estimate struct {
	BaseFare  int
	Taxes     int
	AddOns    int
	Total     int
	Discount  int
	Final     int
	PerPerson int
}

// Calculate prices in. Taxes and port fees are a fixed share of the fare and
// the Essex County discount comes off the full total.
func Calculate(in Input) Estimate {
	c, ok := cabin(in.Cabin)
	if !ok {
		c, _ = cabin(Defaults().Cabin)
	}
	l, ok := line(in.Line)
	if !ok {
		l, _ = line(Defaults().Line)
	}
	days := min(max(in.Days, MinDays), MaxDays)
	travelers := min(max(in.Travelers, MinTravelers), MaxTravelers)

	base := float64(c.Base+c.PerDay*days) * float64(travelers) * l.Multiplier
	taxes := base * taxRate
	var extras float64
	for _, key := range in.AddOns {
		a, ok := addOn(key)
		if !ok {
			continue
		}
		if a.PerDay {
			extras += float64(a.Price * days * travelers)
		} else {
			extras += float64(a.Price)
		}
	}
	total := base + taxes + extras
	final := total
	if in.Essex {
		final = total * (1 - essexDiscount)
	}
	return Estimate{
		BaseFare:  dollars(base),
		Taxes:     dollars(taxes),
		AddOns:    dollars(extras),
		Total:     dollars(total),
		Discount:  dollars(total) - dollars(final),
		Final:     dollars(final),
		PerPerson: dollars(final / float64(travelers)),
	}
}

// LineName returns the display name of the cruise line slug.
func LineName(slug string) string {
	if l, ok := line(slug); ok {
		return l.Name
	}
	return ""
}

func cabin(key string) (Cabin, bool) {
	for _, c := range Cabins {
		if c.Key == key {
			return c, true
		}
	}
	return Cabin{}, false
}

func line(slug string) (Line, bool) {
	for _, l := range Lines {
		if l.Slug == slug {
			return l, true
		}
	}
	return Line{}, false
}

func addOn(key string) (AddOn, bool) {
	for _, a := range AddOns {
		if a.Key == key {
			return a, true
		}
	}
	return AddOn{}, false
}

func clampInt(raw string, def, lo, hi int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return def
	}
	return min(max(n, lo), hi)
}

func dollars(v float64) int {
	return int(math.Round(v))
}
