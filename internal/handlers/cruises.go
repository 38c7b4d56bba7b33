package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"nexttripanywhere.com/web/internal/catalog"
	mw "nexttripanywhere.com/web/internal/middleware"
	"nexttripanywhere.com/web/internal/nav"
	"nexttripanywhere.com/web/internal/seo"
)

// CruisesView is the /cruises hub.
type CruisesView struct {
	Lines    []catalog.CruiseLine
	Featured []catalog.CruiseDestination
	Cruises  []catalog.CruiseDestination
	Deals    []catalog.Deal
}

// CruiseLineView is /cruises/<line> and /cruises/<line>/deals.
type CruiseLineView struct {
	Line  catalog.CruiseLine
	Deals []catalog.Deal
}

// CruiseView is a cruise destination landing page.
type CruiseView struct {
	Cruise catalog.CruiseDestination
	Lines  []Link
	Deals  []catalog.Deal
	Links  []Link
}

// Link is a resolved internal link.
type Link struct {
	Href  string
	Label string
}

// Cruises renders the cruise hub.
func (a *App) Cruises(w http.ResponseWriter, r *http.Request) {
	cat := a.Catalog()
	view := CruisesView{
		Lines:    cat.CruiseLines,
		Featured: cat.HighPriorityCruises(),
		Cruises:  cat.Cruises,
		Deals:    truncate(cat.ActiveDeals(a.now()), 3),
	}
	meta := a.identity.Page(
		"Cruises from NJ & NYC Ports | "+a.identity.Name,
		"Cruises from Cape Liberty, Manhattan and Brooklyn for Essex County travelers. Compare cruise lines, itineraries and current cruise deals.",
		"/cruises",
		"cruises from new jersey", "cape liberty cruises", "cruise deals",
	)
	lines := listItems(cat.CruiseLines, func(l catalog.CruiseLine) seo.ListItem {
		return seo.ListItem{Name: l.Name, URL: "/cruises/" + l.Slug}
	})
	vm := a.page(r, meta, a.crumbs(r),
		a.identity.ItemList("/cruises", "Cruise lines", lines),
		a.identity.Service("Cruise Booking", "Cruise planning and booking from New Jersey and New York ports", "Cruise Booking", "/cruises"),
	)
	vm.Page = view
	a.renderPage(w, r, http.StatusOK, "cruises", vm)
}

// Cruise renders /cruises/<slug>, which is either a cruise line or a cruise destination page.
func (a *App) Cruise(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	cat := a.Catalog()
	if line, ok := cat.CruiseLine(slug); ok {
		view := CruiseLineView{Line: line, Deals: a.activeOnly(cat, cat.DealsByCruiseLine(line.Slug))}
		pageURL := a.identity.Abs("/cruises/" + line.Slug)
		vm := a.page(r, a.identity.CruiseLineMeta(line), a.crumbs(r),
			a.identity.CruiseLine(line),
			a.identity.FAQPage(pageURL, line.FAQ),
		)
		vm.Page = view
		a.renderPage(w, r, http.StatusOK, "cruise_line", vm)
		return
	}

	cd, ok := cat.Cruise(slug)
	if !ok {
		a.NotFound(w, r)
		return
	}
	view := CruiseView{Cruise: cd, Links: a.resolveLinks(mw.Lang(r), cat, cd.InternalLinks)}
	for _, name := range cd.PopularCruiseLines {
		if line, ok := cat.CruiseLine(catalog.Slugify(name)); ok {
			view.Lines = append(view.Lines, Link{Href: "/cruises/" + line.Slug, Label: line.Name})
			continue
		}
		if line, ok := lineByName(cat, name); ok {
			view.Lines = append(view.Lines, Link{Href: "/cruises/" + line.Slug, Label: line.Name})
			continue
		}
		view.Lines = append(view.Lines, Link{Label: name})
	}
	if cd.PortInfo != nil {
		port, _, _ := strings.Cut(cd.PortInfo.Name, " Cruise")
		view.Deals = truncate(a.activeOnly(cat, cat.DealsByPort(port)), 3)
	}
	pageURL := a.identity.Abs("/cruises/" + cd.Slug)
	vm := a.page(r, a.identity.CruiseMeta(cd), a.crumbs(r),
		a.identity.CruiseTrip(cd),
		a.identity.FAQPage(pageURL, cd.FAQ),
	)
	vm.Page = view
	a.renderPage(w, r, http.StatusOK, "cruise", vm)
}

// CruiseLineDeals renders /cruises/<line>/deals.
func (a *App) CruiseLineDeals(w http.ResponseWriter, r *http.Request) {
	cat := a.Catalog()
	line, ok := cat.CruiseLine(chi.URLParam(r, "slug"))
	if !ok {
		a.NotFound(w, r)
		return
	}
	deals := a.activeOnly(cat, cat.DealsByCruiseLine(line.Slug))
	meta := a.identity.Page(
		line.Name+" Cruise Deals | "+a.identity.Name,
		"Current "+line.Name+" cruise deals for Essex County travelers, with onboard credit and perks booked by local cruise experts.",
		"/cruises/"+line.Slug+"/deals",
		strings.ToLower(line.Name)+" deals", strings.ToLower(line.Name)+" cruise sale",
	)
	items := listItems(deals, func(d catalog.Deal) seo.ListItem {
		return seo.ListItem{Name: d.Title, URL: "/deals/" + d.Slug}
	})
	vm := a.page(r, meta, a.crumbs(r), a.identity.ItemList(meta.Canonical, line.Name+" deals", items))
	vm.Page = CruiseLineView{Line: line, Deals: deals}
	a.renderPage(w, r, http.StatusOK, "cruise_line_deals", vm)
}

func lineByName(cat *catalog.Catalog, name string) (catalog.CruiseLine, bool) {
	for _, l := range cat.CruiseLines {
		if strings.EqualFold(l.Name, name) || strings.HasPrefix(strings.ToLower(l.Name), strings.ToLower(name)) {
			return l, true
		}
	}
	return catalog.CruiseLine{}, false
}

// activeOnly keeps the deals of subset that are still bookable.
func (a *App) activeOnly(cat *catalog.Catalog, subset []catalog.Deal) []catalog.Deal {
	active := map[string]bool{}
	for _, d := range cat.ActiveDeals(a.now()) {
		active[d.Slug] = true
	}
	out := subset[:0:0]
	for _, d := range subset {
		if active[d.Slug] {
			out = append(out, d)
		}
	}
	return out
}

// crumbs builds breadcrumbs from the request path, naming catalog records.
func (a *App) crumbs(r *http.Request) []nav.Crumb {
	return nav.Breadcrumbs(r.URL.Path, a.labelResolver(a.Catalog()))
}

func (a *App) labelResolver(cat *catalog.Catalog) nav.LabelFunc {
	return func(href, seg string) (string, bool) {
		section, rest, nested := strings.Cut(strings.TrimPrefix(href, "/"), "/")
		if !nested || strings.Contains(rest, "/") {
			return "", false
		}
		switch section {
		case "cruises":
			if l, ok := cat.CruiseLine(seg); ok {
				return l.Name, true
			}
			if c, ok := cat.Cruise(seg); ok {
				return c.Title, true
			}
		case "destinations":
			if d, ok := cat.Destination(seg); ok {
				return d.Name, true
			}
		case "deals":
			if d, ok := cat.Deal(seg); ok {
				return d.Title, true
			}
		case "guides":
			if g, ok := cat.Guide(seg); ok {
				return g.Title, true
			}
		case "services":
			if s, ok := cat.Service(seg); ok {
				return s.Name, true
			}
		case "packages":
			if p, ok := cat.Package(seg); ok {
				return p.Title, true
			}
		}
		return "", false
	}
}

// resolveLinks labels internal link paths with nav labels or record names.
func (a *App) resolveLinks(lang string, cat *catalog.Catalog, paths []string) []Link {
	resolve := a.labelResolver(cat)
	out := make([]Link, 0, len(paths))
	for _, p := range paths {
		p = "/" + strings.Trim(p, "/")
		label := ""
		for _, it := range nav.Main {
			if it.Path == p {
				label = a.i18nOrDefault(lang, it.LabelKey, nav.TitleFromSegment(strings.TrimPrefix(p, "/")))
			}
		}
		if label == "" {
			seg := p[strings.LastIndex(p, "/")+1:]
			if l, ok := resolve(p, seg); ok {
				label = l
			} else {
				label = nav.TitleFromSegment(seg)
			}
		}
		out = append(out, Link{Href: p, Label: label})
	}
	return out
}
