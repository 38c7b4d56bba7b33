package handlers

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"nexttripanywhere.com/web/internal/catalog"
	"nexttripanywhere.com/web/internal/cms"
	"nexttripanywhere.com/web/internal/config"
	"nexttripanywhere.com/web/internal/consent"
	"nexttripanywhere.com/web/internal/format"
	"nexttripanywhere.com/web/internal/i18n"
	"nexttripanywhere.com/web/internal/leadform"
	"nexttripanywhere.com/web/internal/metrics"
	mw "nexttripanywhere.com/web/internal/middleware"
	"nexttripanywhere.com/web/internal/seo"
	"nexttripanywhere.com/web/internal/sitemap"
)

// Options wires the dependencies of the site handlers.
type Options struct {
	Config   config.Config
	Logger   *zap.Logger
	Catalog  *catalog.Store
	Content  *cms.Client
	I18n     *i18n.Bundle
	Notifier leadform.Notifier
	Now      func() time.Time
}

// App serves every page of the site.
type App struct {
	cfg       config.Config
	logger    *zap.Logger
	store     *catalog.Store
	content   *cms.Client
	bundle    *i18n.Bundle
	notifier  leadform.Notifier
	identity  seo.Identity
	site      Site
	analytics Analytics
	assets    *mw.Assets
	limiter   *mw.IPRateLimiter
	tmpl      *templateSet
	now       func() time.Time
}

// New validates opts and parses the templates.
func New(opts Options) (*App, error) {
	if opts.Catalog == nil {
		return nil, errors.New("handlers: catalog store is required")
	}
	if opts.I18n == nil {
		return nil, errors.New("handlers: i18n bundle is required")
	}
	cfg := opts.Config
	a := &App{
		cfg:       cfg,
		logger:    opts.Logger,
		store:     opts.Catalog,
		content:   opts.Content,
		bundle:    opts.I18n,
		notifier:  opts.Notifier,
		identity:  IdentityFromConfig(cfg.Site),
		analytics: AnalyticsFromConfig(cfg.Analytics),
		now:       opts.Now,
	}
	if a.logger == nil {
		a.logger = zap.NewNop()
	}
	if a.content == nil {
		a.content = cms.NewClient(cfg.Paths.Content)
	}
	if a.notifier == nil {
		a.notifier = leadform.NewNotifier(cfg.Leads, a.logger)
	}
	if a.now == nil {
		a.now = time.Now
	}
	a.site = Site{
		Name:         a.identity.Name,
		Phone:        a.identity.Phone,
		PhoneDisplay: cfg.Site.PhoneDisplay,
		LocalPhone:   cfg.Site.LocalPhone,
		Email:        a.identity.Email,
		Hours:        cfg.Site.Hours,
		SameAs:       a.identity.SameAs,
	}
	if a.site.PhoneDisplay == "" {
		a.site.PhoneDisplay = format.Phone(a.site.Phone)
	}
	a.assets = mw.AssetsWithCache(filepath.Join(cfg.Paths.Public, "assets"), "/assets")
	a.limiter = mw.NewIPRateLimiter(cfg.Leads.PerMinute)

	ts, err := newTemplateSet(cfg.Paths.Templates, a.funcs(), cfg.Dev)
	if err != nil {
		return nil, err
	}
	a.tmpl = ts
	a.recordCatalog(a.store.Current())
	return a, nil
}

// IdentityFromConfig overlays the configured site identity on the defaults.
func IdentityFromConfig(site config.SiteConfig) seo.Identity {
	id := seo.DefaultIdentity(site.BaseURL)
	if site.Name != "" {
		id.Name = site.Name
	}
	if site.Phone != "" {
		id.Phone = site.Phone
	}
	if site.LocalPhone != "" {
		id.LocalPhone = format.Tel(site.LocalPhone)
	}
	if site.Email != "" {
		id.Email = site.Email
	}
	if site.Logo != "" {
		id.Logo = site.Logo
	}
	if site.TwitterSite != "" {
		id.TwitterSite = site.TwitterSite
	}
	if len(site.SameAs) > 0 {
		id.SameAs = site.SameAs
	}
	return id
}

// Identity is the business identity pages are rendered with.
func (a *App) Identity() seo.Identity { return a.identity }

// Catalog returns the catalog currently served.
func (a *App) Catalog() *catalog.Catalog { return a.store.Current() }

// Content is the blog and static page client.
func (a *App) Content() *cms.Client { return a.content }

// Reload re-reads catalog data and locale files, drops cached content and
// reparses templates. A failing step keeps the previous state of that step.
func (a *App) Reload() error {
	var errs []error
	if err := a.store.Reload(); err != nil {
		metrics.CatalogReloads.WithLabelValues("error").Inc()
		errs = append(errs, err)
	} else {
		metrics.CatalogReloads.WithLabelValues("ok").Inc()
		a.recordCatalog(a.store.Current())
	}
	if err := a.bundle.Reload(); err != nil {
		a.logger.Warn("locale reload failed", zap.Error(err))
		errs = append(errs, err)
	}
	a.content.Flush()
	if err := a.tmpl.reload(); err != nil {
		a.logger.Warn("template reload failed", zap.Error(err))
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (a *App) recordCatalog(cat *catalog.Catalog) {
	if cat == nil {
		return
	}
	metrics.CatalogItems.WithLabelValues("cities").Set(float64(len(cat.Cities)))
	metrics.CatalogItems.WithLabelValues("services").Set(float64(len(cat.Services)))
	metrics.CatalogItems.WithLabelValues("cruise_lines").Set(float64(len(cat.CruiseLines)))
	metrics.CatalogItems.WithLabelValues("cruises").Set(float64(len(cat.Cruises)))
	metrics.CatalogItems.WithLabelValues("destinations").Set(float64(len(cat.Destinations)))
	metrics.CatalogItems.WithLabelValues("deals").Set(float64(len(cat.Deals)))
	metrics.CatalogItems.WithLabelValues("guides").Set(float64(len(cat.Guides)))
	metrics.CatalogItems.WithLabelValues("locations").Set(float64(len(cat.Locations)))
	metrics.CatalogItems.WithLabelValues("packages").Set(float64(len(cat.Packages)))
	metrics.CatalogItems.WithLabelValues("redirects").Set(float64(len(cat.Redirects)))
}

// Routes builds the router with the full middleware stack.
func (a *App) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	// If deployed behind a trusted reverse proxy/load balancer, RealIP will use
	// X-Forwarded-For to determine the client IP.
	r.Use(chimw.RealIP)
	r.Use(mw.Logger(a.logger))
	r.Use(mw.Metrics)
	r.Use(chimw.Recoverer)
	r.Use(mw.SecurityHeaders)
	r.Use(mw.CacheControl)
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(mw.HTMX)
	r.Use(mw.Locale(a.bundle))
	r.Use(mw.VaryLocale)
	r.Use(consent.Middleware)

	r.NotFound(a.NotFound)

	// Health check
	r.Get("/healthz", Healthz)
	r.Handle("/metrics", metrics.MetricsHandler())
	r.Handle("/assets/*", a.assets)

	r.Get(sitemap.IndexPath, a.SitemapIndex)
	r.Get(sitemap.MainPath, a.SitemapMain)
	r.Get(sitemap.CruisesPath, a.SitemapCruises)
	r.Get("/robots.txt", a.Robots)

	r.Get("/", a.Home)

	r.Get("/cruises", a.Cruises)
	r.Get("/cruises/{slug}", a.Cruise)
	r.Get("/cruises/{slug}/deals", a.CruiseLineDeals)
	r.Get("/destinations", a.Destinations)
	r.Get("/destinations/{slug}", a.Destination)
	r.Get("/deals", a.Deals)
	r.Get("/deals/{slug}", a.Deal)
	r.Get("/packages", a.Packages)
	r.Get("/packages/{slug}", a.Package)
	r.Get("/flights", a.Flights)

	r.Get("/essex-county", a.EssexCounty)
	r.Get("/travel-from-{city}", a.TravelFrom)
	r.Get("/services", a.Services)
	r.Get("/services/{service}", a.Service)
	r.Get("/locations/essex-county/{city}/{service}", a.CityService)
	r.Get("/from/{location}", a.FromLocation)

	r.Get("/guides", a.Guides)
	r.Get("/guides/{slug}", a.Guide)
	r.Get("/blog", a.Blog)
	r.Get("/blog/{slug}", a.BlogPost)
	r.Get("/about", a.StaticPage("about"))
	r.Get("/privacy", a.StaticPage("privacy"))
	r.Get("/terms", a.StaticPage("terms"))
	r.Get("/tools", a.Tools)
	r.Get("/tools/cruise-price-calculator", a.CruiseCalculator)

	r.Post("/consent", a.Consent)

	// Form pages carry session state and CSRF tokens, so they are never cached.
	r.Group(func(r chi.Router) {
		r.Use(mw.NoStore)
		r.Use(mw.Session)
		r.Use(mw.CSRF)
		r.Get("/contact", a.Contact)
		r.Get("/quote", a.Quote)
		r.Get("/quote/redirect", a.QuoteRedirect)
		r.With(a.limiter.Middleware).Post("/quote", a.QuoteStep)
		r.With(a.limiter.Middleware).Post("/leads", a.SubmitLead)
	})

	return r
}

// Healthz answers the load balancer health check.
func Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, "ok")
}
