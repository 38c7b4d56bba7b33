package nav

import (
	"path"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Item represents a top-level navigation item.
type Item struct {
	Path     string // e.g. "/cruises"
	LabelKey string // i18n key, e.g. "nav.cruises"
}

// RenderedItem is a view model for templates.
type RenderedItem struct {
	Href     string
	LabelKey string
	Active   bool
}

// Crumb represents a breadcrumb entry. If LabelKey is empty, use Label.
type Crumb struct {
	Href     string
	LabelKey string
	Label    string
	Active   bool
}

// Main is the primary navigation definition.
var Main = []Item{
	{Path: "/cruises", LabelKey: "nav.cruises"},
	{Path: "/destinations", LabelKey: "nav.destinations"},
	{Path: "/deals", LabelKey: "nav.deals"},
	{Path: "/essex-county", LabelKey: "nav.essex_county"},
	{Path: "/services", LabelKey: "nav.services"},
	{Path: "/guides", LabelKey: "nav.guides"},
	{Path: "/blog", LabelKey: "nav.blog"},
	{Path: "/contact", LabelKey: "nav.contact"},
}

// Build renders navigation items with active state given the current path.
func Build(currentPath string) []RenderedItem {
	if currentPath == "" {
		currentPath = "/"
	}
	items := make([]RenderedItem, 0, len(Main))
	for _, it := range Main {
		items = append(items, RenderedItem{
			Href:     it.Path,
			LabelKey: it.LabelKey,
			Active:   isActive(it.Path, currentPath),
		})
	}
	return items
}

func isActive(itemPath, currentPath string) bool {
	if itemPath == "/" {
		return currentPath == "/"
	}
	// match exact or prefix boundary: "/cruises" or "/cruises/..."
	if currentPath == itemPath {
		return true
	}
	return strings.HasPrefix(currentPath, itemPath+"/")
}

// LabelFunc resolves a display label for the crumb at href. Returning false
// falls back to a title-cased segment.
type LabelFunc func(href, segment string) (string, bool)

// Breadcrumbs builds breadcrumb entries from the current path.
// Rules:
// - Always start with Home
// - For known top-level sections, use nav label keys
// - For deeper segments, ask label, then prettify the segment
func Breadcrumbs(currentPath string, label LabelFunc) []Crumb {
	if currentPath == "" {
		currentPath = "/"
	}
	crumbs := []Crumb{{Href: "/", LabelKey: "nav.home", Label: "Home", Active: currentPath == "/"}}
	if currentPath == "/" {
		return crumbs
	}

	clean := path.Clean("/" + strings.Trim(currentPath, "/"))
	parts := strings.Split(strings.TrimPrefix(clean, "/"), "/")

	href := ""
	for i, seg := range parts {
		if seg == "" {
			continue
		}
		href += "/" + seg
		c := Crumb{Href: href, Label: TitleFromSegment(seg), Active: i == len(parts)-1}
		if i == 0 {
			for _, it := range Main {
				if it.Path == href {
					c.LabelKey = it.LabelKey
					break
				}
			}
		}
		if label != nil {
			if l, ok := label(href, seg); ok && l != "" {
				c.Label = l
				c.LabelKey = ""
			}
		}
		crumbs = append(crumbs, c)
	}
	return crumbs
}

// Trail builds a breadcrumb list from explicit entries, prefixed with Home.
// The last entry is marked active.
func Trail(entries ...Crumb) []Crumb {
	crumbs := make([]Crumb, 0, len(entries)+1)
	crumbs = append(crumbs, Crumb{Href: "/", LabelKey: "nav.home", Label: "Home"})
	crumbs = append(crumbs, entries...)
	for i := range crumbs {
		crumbs[i].Active = i == len(crumbs)-1
	}
	return crumbs
}

// TitleFromSegment turns "cruise-transfers" into "Cruise Transfers".
func TitleFromSegment(seg string) string {
	if seg == "" {
		return seg
	}
	s := strings.NewReplacer("-", " ", "_", " ").Replace(seg)
	// Casers keep state, so each call gets its own.
	return cases.Title(language.English).String(s)
}
