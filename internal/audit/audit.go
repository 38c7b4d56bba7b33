// Package audit renders site pages in-process and checks their SEO essentials.
package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"nexttripanywhere.com/web/internal/seo"
)

const (
	MaxTitleLength       = 60
	MaxDescriptionLength = 160
)

// Severity ranks an Issue.
type Severity string

const (
	SeverityWarn  Severity = "warn"
	SeverityError Severity = "error"
)

// Rule names.
const (
	RuleStatus      = "status"
	RuleTitle       = "title"
	RuleTitleLength = "title-length"
	RuleDescription = "description"
	RuleDescLength  = "description-length"
	RuleH1          = "single-h1"
	RuleCanonical   = "canonical"
	RuleJSONLD      = "json-ld"
)

var ErrNoJSONLD = errors.New("audit: no JSON-LD script")

// Issue is one failed check on one page.
type Issue struct {
	Path     string   `json:"path"`
	Rule     string   `json:"rule"`
	Severity Severity `json:"severity"`
	Detail   string   `json:"detail"`
}

func (i Issue) String() string {
	return fmt.Sprintf("%-5s %s [%s] %s", i.Severity, i.Path, i.Rule, i.Detail)
}

// Report collects the issues of a crawl.
type Report struct {
	Pages  int     `json:"pages"`
	Issues []Issue `json:"issues"`
}

// Errors counts issues of error severity.
func (r Report) Errors() int {
	n := 0
	for _, i := range r.Issues {
		if i.Severity == SeverityError {
			n++
		}
	}
	return n
}

// Check parses an HTML page and runs every rule against it.
func Check(path string, body io.Reader) ([]Issue, error) {
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("audit: parse %s: %w", path, err)
	}
	var out []Issue
	add := func(rule string, sev Severity, format string, args ...any) {
		out = append(out, Issue{Path: path, Rule: rule, Severity: sev, Detail: fmt.Sprintf(format, args...)})
	}

	title := strings.TrimSpace(doc.Find("head title").First().Text())
	switch n := utf8.RuneCountInString(title); {
	case n == 0:
		add(RuleTitle, SeverityError, "missing <title>")
	case n > MaxTitleLength:
		add(RuleTitleLength, SeverityWarn, "title is %d characters (max %d)", n, MaxTitleLength)
	}

	desc, _ := doc.Find(`meta[name="description"]`).Attr("content")
	switch n := utf8.RuneCountInString(strings.TrimSpace(desc)); {
	case n == 0:
		add(RuleDescription, SeverityError, "missing meta description")
	case n > MaxDescriptionLength:
		add(RuleDescLength, SeverityWarn, "description is %d characters (max %d)", n, MaxDescriptionLength)
	}

	if n := doc.Find("h1").Length(); n != 1 {
		add(RuleH1, SeverityError, "found %d <h1> elements", n)
	}

	canonical, ok := doc.Find(`link[rel="canonical"]`).Attr("href")
	if !ok || !strings.HasPrefix(canonical, "http") {
		add(RuleCanonical, SeverityError, "missing absolute canonical link")
	}

	docs, err := JSONLD(doc)
	if err != nil {
		add(RuleJSONLD, SeverityError, "%v", err)
	}
	for _, d := range docs {
		for _, verr := range seo.Validate(d) {
			add(RuleJSONLD, SeverityError, "%v", verr)
		}
	}
	return out, nil
}

// JSONLD decodes every application/ld+json script of doc.
func JSONLD(doc *goquery.Document) ([]map[string]any, error) {
	var out []map[string]any
	var firstErr error
	doc.Find(`script[type="application/ld+json"]`).Each(func(i int, s *goquery.Selection) {
		var m map[string]any
		if err := json.Unmarshal([]byte(s.Text()), &m); err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("audit: json-ld script %d: %w", i, err)
			}
			return
		}
		out = append(out, m)
	})
	if firstErr != nil {
		return out, firstErr
	}
	if len(out) == 0 {
		return nil, ErrNoJSONLD
	}
	return out, nil
}

// Fetch renders path through h and returns the recorded response.
func Fetch(ctx context.Context, h http.Handler, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// Crawl renders each path through h and checks the pages that answer 200.
func Crawl(ctx context.Context, h http.Handler, paths []string) (Report, error) {
	var rep Report
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		rec := Fetch(ctx, h, p)
		rep.Pages++
		if rec.Code != http.StatusOK {
			rep.Issues = append(rep.Issues, Issue{Path: p, Rule: RuleStatus, Severity: SeverityError, Detail: fmt.Sprintf("status %d", rec.Code)})
			continue
		}
		issues, err := Check(p, rec.Body)
		if err != nil {
			return rep, err
		}
		rep.Issues = append(rep.Issues, issues...)
	}
	sort.SliceStable(rep.Issues, func(i, j int) bool {
		if rep.Issues[i].Severity != rep.Issues[j].Severity {
			return rep.Issues[i].Severity == SeverityError
		}
		return rep.Issues[i].Path < rep.Issues[j].Path
	})
	return rep, nil
}
