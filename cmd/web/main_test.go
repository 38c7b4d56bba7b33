package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"nexttripanywhere.com/web/internal/catalog"
	"nexttripanywhere.com/web/internal/cms"
	"nexttripanywhere.com/web/internal/config"
	"nexttripanywhere.com/web/internal/consent"
	"nexttripanywhere.com/web/internal/handlers"
	"nexttripanywhere.com/web/internal/i18n"
	"nexttripanywhere.com/web/internal/leadform"
	mw "nexttripanywhere.com/web/internal/middleware"
)

type recordingNotifier struct {
	mu    sync.Mutex
	leads []leadform.Lead
}

func (n *recordingNotifier) Name() string { return "test" }

func (n *recordingNotifier) Notify(_ context.Context, lead leadform.Lead) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.leads = append(n.leads, lead)
	return nil
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.leads)
}

// newTestRouter builds the handler main() serves, reading the repository's data.
func newTestRouter(t *testing.T, notifier leadform.Notifier) http.Handler {
	t.Helper()
	cfg := config.Default()
	cfg.Paths = config.PathConfig{
		Templates: "../../templates",
		Public:    "../../public",
		Data:      "../../data",
		Content:   "../../content",
		Locales:   "../../locales",
	}
	cfg.Leads.PerMinute = 1000
	mw.ConfigureSession("test-signing-key", false)

	bundle, err := i18n.Load(cfg.Paths.Locales, "en", []string{"en", "es"})
	require.NoError(t, err)
	store, err := catalog.NewStore(cfg.Paths.Data, zap.NewNop())
	require.NoError(t, err)
	app, err := handlers.New(handlers.Options{
		Config:   cfg,
		Logger:   zap.NewNop(),
		Catalog:  store,
		Content:  cms.NewClient(cfg.Paths.Content),
		I18n:     bundle,
		Notifier: notifier,
		Now:      func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) },
	})
	require.NoError(t, err)
	return app.Routes()
}

// browser keeps cookies between requests.
type browser struct {
	t       *testing.T
	h       http.Handler
	cookies map[string]*http.Cookie
}

func newBrowser(t *testing.T, h http.Handler) *browser {
	return &browser{t: t, h: h, cookies: map[string]*http.Cookie{}}
}

func (b *browser) do(req *http.Request) *httptest.ResponseRecorder {
	for _, c := range b.cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	b.h.ServeHTTP(rec, req)
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 {
			delete(b.cookies, c.Name)
			continue
		}
		b.cookies[c.Name] = c
	}
	return rec
}

func (b *browser) get(path string) *httptest.ResponseRecorder {
	return b.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (b *browser) post(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

func parseDoc(t *testing.T, rec *httptest.ResponseRecorder) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rec.Body.String()))
	require.NoError(t, err)
	return doc
}

func csrfFrom(t *testing.T, doc *goquery.Document) string {
	t.Helper()
	token, ok := doc.Find(`input[name="csrf_token"]`).First().Attr("value")
	require.True(t, ok, "csrf_token input missing")
	require.NotEmpty(t, token)
	return token
}

func TestHealthzOK(t *testing.T) {
	srv := newTestRouter(t, nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d; body=%s", rec.Code, rec.Body.String())
	}
	if got := strings.TrimSpace(rec.Body.String()); got != "ok" {
		t.Fatalf("expected body 'ok', got %q", got)
	}
}

func TestHomeRendersHeadAndLocalizedNav(t *testing.T) {
	srv := newTestRouter(t, nil)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "text/html")

	doc := parseDoc(t, rec)
	require.Equal(t, 1, doc.Find("h1").Length())
	canonical, _ := doc.Find(`link[rel="canonical"]`).Attr("href")
	require.Equal(t, "https://nexttripanywhere.com", canonical)
	ld := doc.Find(`script[type="application/ld+json"]`).Text()
	require.Contains(t, ld, `"@graph"`)
	require.Contains(t, ld, `"TravelAgency"`)
	require.Equal(t, 3, doc.Find(`link[rel="alternate"][hreflang]`).Length())
	require.Contains(t, doc.Find("nav").Text(), "Cruises")

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?hl=es", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "es", rec.Header().Get("Content-Language"))
	require.Contains(t, parseDoc(t, rec).Find("nav").Text(), "Cruceros")
}

func TestLandingPagesRender(t *testing.T) {
	srv := newTestRouter(t, nil)
	paths := []string{
		"/cruises",
		"/cruises/royal-caribbean",
		"/cruises/royal-caribbean/deals",
		"/cruises/cruises-from-cape-liberty",
		"/destinations",
		"/destinations/bahamas-from-newark",
		"/deals",
		"/packages",
		"/packages/all-inclusive-caribbean",
		"/flights",
		"/tools",
		"/tools/cruise-price-calculator",
		"/essex-county",
		"/travel-from-nutley",
		"/services",
		"/services/airport-transfers",
		"/locations/essex-county/verona/airport-transfers",
		"/from/boston",
		"/guides",
		"/guides/travel-insurance",
		"/blog",
		"/about",
		"/privacy",
		"/terms",
	}
	for _, p := range paths {
		t.Run(p, func(t *testing.T) {
			rec := httptest.NewRecorder()
			srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, p, nil))
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			doc := parseDoc(t, rec)
			require.Equal(t, 1, doc.Find("h1").Length())
			require.NotEmpty(t, strings.TrimSpace(doc.Find("title").Text()))
			require.Equal(t, 1, doc.Find(`link[rel="canonical"]`).Length())
		})
	}
}

func TestUnknownSlugIsNoIndex404(t *testing.T) {
	srv := newTestRouter(t, nil)
	for _, p := range []string{"/cruises/atlantis", "/travel-from-gotham", "/no-such-page"} {
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, p, nil))
		require.Equal(t, http.StatusNotFound, rec.Code, p)
		robots, _ := parseDoc(t, rec).Find(`meta[name="robots"]`).Attr("content")
		require.Contains(t, robots, "noindex", p)
	}
}

func TestSitemapAndRobots(t *testing.T) {
	srv := newTestRouter(t, nil)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sitemap.xml", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "application/xml")
	require.Contains(t, rec.Body.String(), "<sitemapindex")

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/robots.txt", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Sitemap: https://nexttripanywhere.com/sitemap.xml")
}

func TestLeadPostWithoutCSRFIsRejected(t *testing.T) {
	notifier := &recordingNotifier{}
	b := newBrowser(t, newTestRouter(t, notifier))
	rec := b.post("/leads", url.Values{
		"name":      {"Jane Traveler"},
		"email":     {"jane@example.com"},
		"phone":     {"973-555-0100"},
		"trip_type": {"cruise"},
	})
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Zero(t, notifier.count())
}

func TestQuickLeadIsRelayed(t *testing.T) {
	notifier := &recordingNotifier{}
	b := newBrowser(t, newTestRouter(t, notifier))

	rec := b.get("/contact")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Cache-Control"), "no-store")
	token := csrfFrom(t, parseDoc(t, rec))

	rec = b.post("/leads", url.Values{
		"csrf_token": {token},
		"name":       {"Jane Traveler"},
		"email":      {"jane@example.com"},
		"phone":      {"973-555-0100"},
		"trip_type":  {"cruise"},
		"source":     {"contact"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	require.Equal(t, "/contact?sent=1", rec.Header().Get("Location"))
	require.Equal(t, 1, notifier.count())

	rec = b.get("/contact?sent=1")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), notifier.leads[0].Reference)
}

func TestQuoteStepsRedirectToHostedForm(t *testing.T) {
	notifier := &recordingNotifier{}
	b := newBrowser(t, newTestRouter(t, notifier))

	rec := b.get("/quote?source=Cruise%20Deals&trip_type=cruise")
	require.Equal(t, http.StatusOK, rec.Code)
	doc := parseDoc(t, rec)
	token := csrfFrom(t, doc)
	selected, _ := doc.Find(`select[name="trip_type"] option[selected]`).Attr("value")
	require.Equal(t, "cruise", selected)

	// step 1 fails without a trip type
	rec = b.post("/quote", url.Values{"csrf_token": {token}, "action": {"next"}})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = b.post("/quote", url.Values{"csrf_token": {token}, "action": {"next"}, "trip_type": {"cruise"}, "departure_date": {"2026-06-01"}, "return_date": {"2026-06-08"}})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, parseDoc(t, rec).Find(`input[name="adults"]`).Length())

	rec = b.post("/quote", url.Values{"csrf_token": {token}, "action": {"next"}, "adults": {"2"}, "children": {"1"}})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, parseDoc(t, rec).Find(`input[name="email"]`).Length())

	// back keeps the values
	rec = b.post("/quote", url.Values{"csrf_token": {token}, "action": {"back"}, "name": {"Jane Traveler"}})
	require.Equal(t, http.StatusOK, rec.Code)
	adults, _ := parseDoc(t, rec).Find(`input[name="adults"]`).Attr("value")
	require.Equal(t, "2", adults)

	rec = b.post("/quote", url.Values{"csrf_token": {token}, "action": {"next"}, "adults": {"2"}, "children": {"1"}})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = b.post("/quote", url.Values{
		"csrf_token": {token},
		"action":     {"submit"},
		"name":       {"Jane Traveler"},
		"email":      {"jane@example.com"},
		"phone":      {"(973) 555-0100"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	require.Equal(t, "docs.google.com", loc.Host)
	require.Equal(t, "cruise-deals", loc.Query().Get("utm_campaign"))
	require.Zero(t, notifier.count(), "the hosted form captures booking leads")

	// the form is cleared after the redirect
	rec = b.get("/quote/redirect")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/quote", rec.Header().Get("Location"))
}

// TestQuoteCookieFitsBrowserLimit fills every field with the longest value
// the form accepts and checks the session cookie stays readable.
func TestQuoteCookieFitsBrowserLimit(t *testing.T) {
	b := newBrowser(t, newTestRouter(t, nil))
	longest := func(field, unit string) string {
		return strings.Repeat(unit, leadform.MaxStored(field))
	}
	source := strings.Repeat("campaign-", 20)

	rec := b.get("/quote?source=" + url.QueryEscape(source) + "&destination=" + strings.Repeat("x", 5000))
	require.Equal(t, http.StatusOK, rec.Code)
	dest, _ := parseDoc(t, rec).Find(`input[name="destination"]`).Attr("value")
	require.Empty(t, dest, "oversized prefill is ignored")
	token := csrfFrom(t, parseDoc(t, rec))
	require.Less(t, len(b.cookies["NEXTTRIP_WEB_SESSION"].Value), 1000)

	padded := strings.Repeat("0", leadform.MaxStored(leadform.FieldAdults)-1) + "2"
	steps := []url.Values{
		{"trip_type": {"allinclusive"}, "destination": {longest("destination", "x")}, "departure_date": {"2026-06-01"}, "return_date": {"2026-06-08"}},
		{"adults": {padded}, "children": {padded}, "budget": {"5000-10000"}, "flexibility": {"few-days"}},
		{
			"name":           {longest("name", "n")},
			"email":          {strings.Repeat("j", leadform.MaxStored("email")-len("@example.com")) + "@example.com"},
			"phone":          {longest("phone", "9")},
			"contact_method": {"email"},
			"message":        {strings.Repeat(`"`, leadform.MaxStored("message")/2)},
		},
	}
	for i, values := range steps {
		values.Set("csrf_token", token)
		values.Set("action", "next")
		rec = b.post("/quote", values)
		require.Equal(t, http.StatusOK, rec.Code, "step %d: %s", i+1, rec.Body.String())
	}
	msg := parseDoc(t, rec).Find(`textarea[name="message"]`).Text()
	require.Len(t, msg, leadform.MaxStored("message")/2, "the message is kept in the session")

	c := b.cookies["NEXTTRIP_WEB_SESSION"]
	require.NotNil(t, c)
	require.LessOrEqual(t, len(c.Name)+1+len(c.Value), 4096)

	// the token still verifies after the largest form
	rec = b.post("/quote", url.Values{"csrf_token": {token}, "action": {"back"}})
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestQuoteHTMXReturnsFragment(t *testing.T) {
	b := newBrowser(t, newTestRouter(t, nil))
	token := csrfFrom(t, parseDoc(t, b.get("/quote")))

	req := httptest.NewRequest(http.MethodPost, "/quote", strings.NewReader(url.Values{"action": {"next"}, "trip_type": {"hotel"}}.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("HX-Request", "true")
	req.Header.Set(mw.CSRFHeader, token)
	rec := b.do(req)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.NotContains(t, body, "<html")
	require.Contains(t, body, `id="quote-form"`)
}

func TestConsentSetsCookies(t *testing.T) {
	b := newBrowser(t, newTestRouter(t, nil))

	home := parseDoc(t, b.get("/"))
	require.Equal(t, 1, home.Find(`form[action="/consent"]`).Length())

	req := httptest.NewRequest(http.MethodPost, "/consent", strings.NewReader("action=accept_all"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("HX-Request", "true")
	rec := b.do(req)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Contains(t, rec.Header().Get("HX-Trigger"), "cookieConsent")
	require.Equal(t, "true", b.cookies[consent.ConsentCookie].Value)
	require.Equal(t, "true", b.cookies[consent.MarketingCookie].Value)

	home = parseDoc(t, b.get("/"))
	require.Zero(t, home.Find(`form[action="/consent"]`).Length())

	rec = b.post("/consent", url.Values{"action": {"save"}, "analytics": {"on"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.NotContains(t, b.cookies, consent.MarketingCookie)
}
