package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"nexttripanywhere.com/web/internal/catalog"
	"nexttripanywhere.com/web/internal/config"
	"nexttripanywhere.com/web/internal/i18n"
	"nexttripanywhere.com/web/internal/leadform"
	mw "nexttripanywhere.com/web/internal/middleware"
	"nexttripanywhere.com/web/internal/nav"
	"nexttripanywhere.com/web/internal/seo"
)

// After the Bermuda deadline: Bermuda and the long weekend are expired, MSC is sold out.
var testNow = time.Date(2026, 10, 27, 15, 0, 0, 0, time.UTC)

type stubNotifier struct {
	err   error
	leads []leadform.Lead
}

func (n *stubNotifier) Name() string { return "stub" }

func (n *stubNotifier) Notify(_ context.Context, lead leadform.Lead) error {
	if n.err != nil {
		return n.err
	}
	n.leads = append(n.leads, lead)
	return nil
}

func newTestApp(t *testing.T, notifier leadform.Notifier) *App {
	t.Helper()
	cfg := config.Default()
	cfg.Paths = config.PathConfig{
		Templates: "../../templates",
		Public:    "../../public",
		Data:      "../../data",
		Content:   "../../content",
		Locales:   "../../locales",
	}
	cfg.Analytics.GA4MeasurementID = "G-TEST123"
	bundle, err := i18n.Load(cfg.Paths.Locales, "en", []string{"en", "es"})
	require.NoError(t, err)
	store, err := catalog.NewStore(cfg.Paths.Data, zap.NewNop())
	require.NoError(t, err)
	if notifier == nil {
		notifier = &stubNotifier{}
	}
	app, err := New(Options{
		Config:   cfg,
		Logger:   zap.NewNop(),
		Catalog:  store,
		I18n:     bundle,
		Notifier: notifier,
		Now:      func() time.Time { return testNow },
	})
	require.NoError(t, err)
	return app
}

func get(t *testing.T, h http.Handler, target string) (*httptest.ResponseRecorder, *goquery.Document) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rec.Body.String()))
	require.NoError(t, err)
	return rec, doc
}

func robots(doc *goquery.Document) string {
	v, _ := doc.Find(`meta[name="robots"]`).Attr("content")
	return v
}

func jsonLD(doc *goquery.Document) string {
	return doc.Find(`script[type="application/ld+json"]`).Text()
}

func TestNewRequiresCatalogAndBundle(t *testing.T) {
	_, err := New(Options{})
	require.Error(t, err)

	store := catalog.StaticStore(&catalog.Catalog{})
	_, err = New(Options{Catalog: store})
	require.Error(t, err)
}

func TestDealsHideExpiredAndSoldOut(t *testing.T) {
	h := newTestApp(t, nil).Routes()

	rec, doc := get(t, h, "/deals")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, "7-Night Caribbean Adventure")
	require.NotContains(t, body, "5-Night Bermuda from Manhattan")
	require.NotContains(t, body, "7-Night Bahamas from Brooklyn")
	require.NotContains(t, body, "4-Night Long Weekend Getaway")
	require.Contains(t, robots(doc), "index")
	require.NotContains(t, robots(doc), "noindex")

	_, doc = get(t, h, "/deals?category=bahamas")
	require.Contains(t, robots(doc), "noindex")
	require.Contains(t, doc.Text(), "8-Night Bahamas and Perfect Day from Bayonne")
	require.NotContains(t, doc.Text(), "7-Night Caribbean Adventure")

	_, doc = get(t, h, "/deals?filter=nonsense")
	require.NotContains(t, robots(doc), "noindex")
}

func TestDealPageLinksToPrefilledQuote(t *testing.T) {
	h := newTestApp(t, nil).Routes()

	rec, doc := get(t, h, "/deals/caribbean-7day-royal")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, jsonLD(doc), `"Offer"`)

	var quote string
	doc.Find(`a[href^="/quote?"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		quote, _ = s.Attr("href")
		return false
	})
	require.NotEmpty(t, quote)
	u, err := url.Parse(quote)
	require.NoError(t, err)
	require.Equal(t, "cruise", u.Query().Get("trip_type"))
	require.Equal(t, "2027-02-13", u.Query().Get("departure_date"))
	require.Equal(t, "deal-caribbean-7day-royal", u.Query().Get("source"))
}

func TestPageGraphCarriesSiteNodes(t *testing.T) {
	h := newTestApp(t, nil).Routes()

	_, doc := get(t, h, "/cruises/royal-caribbean")
	ld := jsonLD(doc)
	for _, want := range []string{`"TravelAgency"`, `"WebSite"`, `"BreadcrumbList"`, `"FAQPage"`} {
		require.Contains(t, ld, want)
	}
	require.Contains(t, ld, "Royal Caribbean")

	require.Equal(t, 3, doc.Find("nav.breadcrumbs li").Length())
}

func TestGuidePages(t *testing.T) {
	h := newTestApp(t, nil).Routes()

	_, doc := get(t, h, "/guides/travel-insurance")
	require.Contains(t, jsonLD(doc), `"HowTo"`)

	_, doc = get(t, h, "/guides/cruise-packing-list")
	ld := jsonLD(doc)
	require.Contains(t, ld, `"Article"`)
	require.Contains(t, ld, `"wordCount"`)

	rec, _ := get(t, h, "/guides/not-a-guide")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBlogFiltersAndPosts(t *testing.T) {
	h := newTestApp(t, nil).Routes()

	rec, doc := get(t, h, "/blog")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotContains(t, robots(doc), "noindex")
	require.Contains(t, doc.Text(), "Newark Airport Travel Tips from Local Experts")

	_, doc = get(t, h, "/blog?category=business-travel")
	require.Contains(t, robots(doc), "noindex")
	require.Contains(t, doc.Text(), "Essex County Corporate Travel Solutions")
	require.NotContains(t, doc.Text(), "Newark Airport Travel Tips from Local Experts")

	rec, doc = get(t, h, "/blog/best-time-book-flights-newark-airport")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Best Time to Book Flights from Newark Airport | Booking Guide", doc.Find("title").Text())
	og, _ := doc.Find(`meta[property="og:type"]`).Attr("content")
	require.Equal(t, "article", og)
	require.Contains(t, jsonLD(doc), `"Article"`)

	rec, _ = get(t, h, "/blog/missing-post")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAboutCarriesLocalBusiness(t *testing.T) {
	h := newTestApp(t, nil).Routes()
	rec, doc := get(t, h, "/about")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, jsonLD(doc), `"LocalBusiness"`)
}

func TestSpanishAlternates(t *testing.T) {
	h := newTestApp(t, nil).Routes()
	_, doc := get(t, h, "/services/airport-transfers?hl=es")
	es, _ := doc.Find(`link[hreflang="es"]`).Attr("href")
	require.Equal(t, "https://nexttripanywhere.com/services/airport-transfers?hl=es", es)
	lang, _ := doc.Find("html").Attr("lang")
	require.Equal(t, "es", lang)
	loc, _ := doc.Find(`meta[property="og:locale"]`).Attr("content")
	require.Equal(t, "es_US", loc)

	canonical, _ := doc.Find(`link[rel="canonical"]`).Attr("href")
	require.Equal(t, es, canonical, "the Spanish page is canonical at its hreflang URL")
	ogURL, _ := doc.Find(`meta[property="og:url"]`).Attr("content")
	require.Equal(t, es, ogURL)
	def, _ := doc.Find(`link[hreflang="x-default"]`).Attr("href")
	require.Equal(t, "https://nexttripanywhere.com/services/airport-transfers", def)

	_, doc = get(t, h, "/services/airport-transfers")
	canonical, _ = doc.Find(`link[rel="canonical"]`).Attr("href")
	require.Equal(t, "https://nexttripanywhere.com/services/airport-transfers", canonical)
}

func TestAnalyticsRenderedWithConsentDefaults(t *testing.T) {
	h := newTestApp(t, nil).Routes()
	rec, _ := get(t, h, "/")
	body := rec.Body.String()
	require.Contains(t, body, "G-TEST123")
	require.Contains(t, body, `"analytics_storage":"denied"`)
}

func TestSubmitLeadRelayFailure(t *testing.T) {
	notifier := &stubNotifier{err: errors.New("relay down")}
	app := newTestApp(t, notifier)
	h := mw.HTMX(http.HandlerFunc(app.SubmitLead))

	form := url.Values{
		"name":      {"Jane Traveler"},
		"email":     {"jane@example.com"},
		"phone":     {"973-555-0100"},
		"trip_type": {"package"},
	}
	req := httptest.NewRequest(http.MethodPost, "/leads", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadGateway, rec.Code)
	doc, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)
	require.Equal(t, 1, doc.Find("#lead-form").Length())
	name, _ := doc.Find(`input[name="name"]`).Attr("value")
	require.Equal(t, "Jane Traveler", name)
}

func TestSubmitLeadInvalid(t *testing.T) {
	notifier := &stubNotifier{}
	app := newTestApp(t, notifier)
	h := mw.HTMX(http.HandlerFunc(app.SubmitLead))

	req := httptest.NewRequest(http.MethodPost, "/leads", strings.NewReader("name=J&email=nope&phone=123&trip_type=spaceflight"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Empty(t, notifier.leads)
}

func TestSubmitLeadRelaysWithReference(t *testing.T) {
	notifier := &stubNotifier{}
	app := newTestApp(t, notifier)
	h := mw.HTMX(http.HandlerFunc(app.SubmitLead))

	req := httptest.NewRequest(http.MethodPost, "/leads", strings.NewReader("name=Jane+Traveler&email=jane%40example.com&phone=9735550100&trip_type=cruise&source=essex-county"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, notifier.leads, 1)
	require.Equal(t, "essex-county", notifier.leads[0].Source)
	require.Contains(t, rec.Body.String(), notifier.leads[0].Reference)
}

func TestMainSitemapIncludesPostsAndTowns(t *testing.T) {
	app := newTestApp(t, nil)
	entries, err := app.MainSitemap(context.Background())
	require.NoError(t, err)

	locs := map[string]bool{}
	for _, e := range entries {
		locs[e.Loc] = true
	}
	require.True(t, locs["https://nexttripanywhere.com/travel-from-belleville"])
	require.True(t, locs["https://nexttripanywhere.com/blog/essex-county-corporate-travel-solutions"])
	require.True(t, locs["https://nexttripanywhere.com/locations/essex-county/nutley/airport-transfers"])
	require.False(t, locs["https://nexttripanywhere.com/quote/redirect"])
}

func TestConsentRedirectsBackToSameHost(t *testing.T) {
	app := newTestApp(t, nil)
	h := mw.HTMX(http.HandlerFunc(app.Consent))

	req := httptest.NewRequest(http.MethodPost, "/consent", strings.NewReader("action=reject_all"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Referer", "http://example.com/deals?filter=value")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/deals?filter=value", rec.Header().Get("Location"))

	req = httptest.NewRequest(http.MethodPost, "/consent", strings.NewReader("action=reject_all"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Referer", "https://evil.test/phish")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, "/", rec.Header().Get("Location"))
}

func TestAlternatesAndCrumbLabels(t *testing.T) {
	app := newTestApp(t, nil)
	alts := app.alternates("https://nexttripanywhere.com/deals")
	require.Equal(t, []seo.Alternate{
		{Lang: "x-default", Href: "https://nexttripanywhere.com/deals"},
		{Lang: "en", Href: "https://nexttripanywhere.com/deals"},
		{Lang: "es", Href: "https://nexttripanywhere.com/deals?hl=es"},
	}, alts)
	require.Equal(t, "https://nexttripanywhere.com/blog?category=cruises&hl=es", localizedURL("https://nexttripanywhere.com/blog?category=cruises", "es"))

	c := nav.Crumb{Href: "/quote", LabelKey: "nav.quote", Label: "Get a Quote"}
	require.NotEmpty(t, app.crumbLabel("es", c))
	require.Equal(t, "Fallback", app.crumbLabel("en", nav.Crumb{LabelKey: "no.such.key", Label: "Fallback"}))
}

func TestReloadPicksUpLocaleEdits(t *testing.T) {
	dir := t.TempDir()
	for _, lang := range []string{"en", "es"} {
		raw, err := os.ReadFile(filepath.Join("../../locales", lang+".json"))
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, lang+".json"), raw, 0o600))
	}
	bundle, err := i18n.Load(dir, "en", []string{"en", "es"})
	require.NoError(t, err)

	app := newTestApp(t, nil)
	app.bundle = bundle
	h := app.Routes()
	_, doc := get(t, h, "/?hl=es")
	require.Contains(t, doc.Find("nav").Text(), "Cruceros")

	path := filepath.Join(dir, "es.json")
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	edited := strings.Replace(string(raw), `"nav.cruises": "Cruceros"`, `"nav.cruises": "Cruceros y Navieras"`, 1)
	require.NotEqual(t, string(raw), edited)
	require.NoError(t, os.WriteFile(path, []byte(edited), 0o600))

	require.NoError(t, app.Reload())
	_, doc = get(t, h, "/?hl=es")
	require.Contains(t, doc.Find("nav").Text(), "Cruceros y Navieras")
}
