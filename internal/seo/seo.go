package seo

import (
	"strings"
	"unicode/utf8"
)

const (
	twitterTitleMax       = 70
	twitterDescriptionMax = 200
	ellipsis              = "..."
)

type OpenGraph struct {
	Title       string
	Description string
	URL         string
	Image       string
	ImageAlt    string
	Type        string
	SiteName    string
	Locale      string
}

type Twitter struct {
	Card        string
	Site        string
	Title       string
	Description string
	Image       string
}

// Alternate is an hreflang link.
type Alternate struct {
	Lang string
	Href string
}

// Meta is everything the base layout renders into <head>.
type Meta struct {
	Title        string
	Description  string
	Keywords     []string
	Canonical    string
	Robots       string
	OG           OpenGraph
	Twitter      Twitter
	Alternates   []Alternate
	Verification string
	JSONLD       map[string]any
}

// Robots directives.
const (
	RobotsIndex   = "index, follow, max-image-preview:large, max-snippet:-1"
	RobotsNoIndex = "noindex, follow"
)

// KeywordList joins keywords for the meta tag.
func (m Meta) KeywordList() string { return strings.Join(m.Keywords, ", ") }

// NoIndex reports whether the page must stay out of search results.
func (m Meta) NoIndex() bool { return strings.HasPrefix(m.Robots, "noindex") }

// Truncate cuts s to max runes, replacing the tail with "..." when it overflows.
func Truncate(s string, max int) string {
	if max <= len(ellipsis) || utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max-len(ellipsis)]) + ellipsis
}

// TwitterTitle caps a title at 70 characters.
func TwitterTitle(s string) string { return Truncate(s, twitterTitleMax) }

// TwitterDescription caps a description at 200 characters.
func TwitterDescription(s string) string { return Truncate(s, twitterDescriptionMax) }
