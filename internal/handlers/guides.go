package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"nexttripanywhere.com/web/internal/catalog"
	mw "nexttripanywhere.com/web/internal/middleware"
	"nexttripanywhere.com/web/internal/seo"
)

const guideWordsPerMinute = 200

// GuidesView is /guides.
type GuidesView struct {
	Guides []catalog.Guide
}

// GuideView is /guides/<slug>.
type GuideView struct {
	Guide          catalog.Guide
	Insurance      bool
	WordCount      int
	ReadingMinutes int
	Links          []Link
}

// Guides lists guides, highest search priority first.
func (a *App) Guides(w http.ResponseWriter, r *http.Request) {
	cat := a.Catalog()
	guides := cat.GuidesByPriority()
	meta := a.identity.Page(
		"Travel Guides for NJ Travelers | "+a.identity.Name,
		"Packing lists, passport rules, first cruise tips and travel insurance advice from Essex County travel agents.",
		"/guides",
		"travel guides", "cruise tips", "passport requirements nj",
	)
	items := listItems(guides, func(g catalog.Guide) seo.ListItem {
		return seo.ListItem{Name: g.Title, URL: "/guides/" + g.Slug}
	})
	vm := a.page(r, meta, a.crumbs(r), a.identity.ItemList("/guides", "Travel guides", items))
	vm.Page = GuidesView{Guides: guides}
	a.renderPage(w, r, http.StatusOK, "guides", vm)
}

// Guide renders one guide. Insurance guides carry the plan comparison graph.
func (a *App) Guide(w http.ResponseWriter, r *http.Request) {
	cat := a.Catalog()
	g, ok := cat.Guide(chi.URLParam(r, "slug"))
	if !ok {
		a.NotFound(w, r)
		return
	}
	words := guideWordCount(g)
	stats := seo.GuideStats{
		WordCount:      words,
		ReadingMinutes: (words + guideWordsPerMinute - 1) / guideWordsPerMinute,
		Modified:       g.LastUpdated.ISO(),
	}
	pageURL := a.identity.Abs("/guides/" + g.Slug)

	var nodes []map[string]any
	if g.Kind == catalog.GuideKindInsurance {
		nodes = a.identity.InsuranceGuideGraph(g, stats)
	} else {
		nodes = append(nodes, a.identity.Article(seo.ArticleInput{
			Headline:      g.Title,
			Description:   g.MetaDescription,
			URL:           pageURL,
			DatePublished: g.LastUpdated.ISO(),
			Keywords:      g.Keywords,
			WordCount:     words,
			Section:       "Travel Guides",
		}), a.identity.FAQPage(pageURL, g.FAQ))
	}

	vm := a.page(r, a.identity.GuideMeta(g), a.crumbs(r), nodes...)
	vm.Page = GuideView{
		Guide:          g,
		Insurance:      g.Kind == catalog.GuideKindInsurance,
		WordCount:      stats.WordCount,
		ReadingMinutes: stats.ReadingMinutes,
		Links:          a.resolveLinks(mw.Lang(r), cat, g.InternalLinks),
	}
	a.renderPage(w, r, http.StatusOK, "guide", vm)
}

func guideWordCount(g catalog.Guide) int {
	n := len(strings.Fields(g.Introduction)) + len(strings.Fields(g.LocalTips)) + len(strings.Fields(g.Conclusion))
	for _, s := range g.Sections {
		n += len(strings.Fields(s.Title)) + len(strings.Fields(s.Content))
	}
	for _, f := range g.FAQ {
		n += len(strings.Fields(f.Question)) + len(strings.Fields(f.Answer))
	}
	for _, s := range g.Steps {
		n += len(strings.Fields(s.Name)) + len(strings.Fields(s.Text))
	}
	return n
}
