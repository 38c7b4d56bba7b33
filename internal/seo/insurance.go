package seo

import (
	"fmt"
	"strings"

	"nexttripanywhere.com/web/internal/catalog"
)

// GuideStats are measured from the rendered guide body.
type GuideStats struct {
	WordCount      int
	ReadingMinutes int
	Modified       string
}

// InsuranceGuideGraph returns the Article, FAQPage, HowTo, Product and Service
// nodes for an insurance guide. Plans become Product offers and steps become
// HowTo steps. Empty sections are left out.
func (id Identity) InsuranceGuideGraph(g catalog.Guide, stats GuideStats) []map[string]any {
	pageURL := id.Abs("/guides/" + g.Slug)

	article := id.Article(ArticleInput{
		Headline:      firstNonEmpty(g.MetaTitle, g.Title),
		Description:   g.MetaDescription,
		URL:           pageURL,
		DatePublished: g.LastUpdated.ISO(),
		DateModified:  stats.Modified,
		Keywords:      g.Keywords,
		WordCount:     stats.WordCount,
		Section:       "Travel Insurance",
	})
	article["alternativeHeadline"] = g.Title
	if stats.ReadingMinutes > 0 {
		article["timeRequired"] = fmt.Sprintf("PT%dM", stats.ReadingMinutes)
	}
	nodes := []map[string]any{article}

	if faq := id.FAQPage(pageURL, g.FAQ); faq != nil {
		nodes = append(nodes, faq)
	}

	if len(g.Steps) > 0 {
		steps := make([]map[string]any, 0, len(g.Steps))
		for i, s := range g.Steps {
			steps = append(steps, map[string]any{
				"@type":    "HowToStep",
				"position": i + 1,
				"name":     s.Name,
				"text":     s.Text,
				"url":      fmt.Sprintf("%s#step-%d", pageURL, i+1),
			})
		}
		nodes = append(nodes, map[string]any{
			"@type":       "HowTo",
			"@id":         pageURL + "#howto",
			"name":        "How to Purchase " + strings.TrimSuffix(g.Title, " Guide"),
			"description": g.Introduction,
			"step":        steps,
		})
	}

	if len(g.Plans) > 0 {
		offers := make([]map[string]any, 0, len(g.Plans))
		low := g.Plans[0].PriceFrom
		for _, p := range g.Plans {
			if p.PriceFrom < low {
				low = p.PriceFrom
			}
			offers = append(offers, map[string]any{
				"@type":         "Offer",
				"name":          p.Name,
				"description":   p.Description,
				"price":         p.PriceFrom,
				"priceCurrency": "USD",
				"priceSpecification": map[string]any{
					"@type":         "PriceSpecification",
					"minPrice":      p.PriceFrom,
					"maxPrice":      p.PriceTo,
					"priceCurrency": "USD",
				},
				"availability": "https://schema.org/InStock",
				"seller":       map[string]any{"@id": id.OrganizationID()},
			})
		}
		product := map[string]any{
			"@type":       "Product",
			"@id":         pageURL + "#product",
			"name":        "Travel Insurance Plans",
			"description": "Travel insurance plans for Essex County travelers",
			"category":    "Travel Insurance",
			"brand":       map[string]any{"@type": "Brand", "name": id.Name + " Insurance Partners"},
			"audience": map[string]any{
				"@type":          "PeopleAudience",
				"geographicArea": map[string]any{"@type": "AdministrativeArea", "name": "Essex County, New Jersey"},
			},
			"offers": offers,
		}
		if id.ReviewCount > 0 {
			product["aggregateRating"] = id.aggregateRating()
		}
		nodes = append(nodes, product)
	}

	service := id.Service("Travel Insurance Consulting",
		"Expert travel insurance guidance for Essex County residents",
		"Travel Insurance Consulting", pageURL)
	service["@id"] = pageURL + "#service"
	nodes = append(nodes, service)

	return nodes
}
