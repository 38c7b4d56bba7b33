package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	envPrefix             = "NEXTTRIP_WEB_"
	defaultPort           = "8080"
	defaultBaseURL        = "https://nexttripanywhere.com"
	defaultReadTimeout    = 15 * time.Second
	defaultWriteTimeout   = 15 * time.Second
	defaultIdleTimeout    = 60 * time.Second
	defaultLeadsPerMinute = 6
	defaultBookingFormURL = "https://docs.google.com/forms/d/e/1FAIpQLSe5Wy5yxW42FXTyFDsBPK7A0eqqcP_XKYCf-PHhd9vmlfvVWQ/viewform"
)

// Config captures runtime configuration organised by concern.
type Config struct {
	Env       string          `yaml:"env"`
	Dev       bool            `yaml:"dev"`
	Server    ServerConfig    `yaml:"server"`
	Paths     PathConfig      `yaml:"paths"`
	Site      SiteConfig      `yaml:"site"`
	Booking   BookingConfig   `yaml:"booking"`
	Leads     LeadConfig      `yaml:"leads"`
	Analytics AnalyticsConfig `yaml:"analytics"`
	Session   SessionConfig   `yaml:"session"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
}

// PathConfig lists the on-disk directories the site reads from.
type PathConfig struct {
	Templates string `yaml:"templates"`
	Public    string `yaml:"public"`
	Data      string `yaml:"data"`
	Content   string `yaml:"content"`
	Locales   string `yaml:"locales"`
}

// SiteConfig is the public identity of the agency.
type SiteConfig struct {
	Name         string   `yaml:"name"`
	BaseURL      string   `yaml:"base_url"`
	Phone        string   `yaml:"phone"`
	PhoneDisplay string   `yaml:"phone_display"`
	LocalPhone   string   `yaml:"local_phone"`
	Email        string   `yaml:"email"`
	Logo         string   `yaml:"logo"`
	TwitterSite  string   `yaml:"twitter_site"`
	SameAs       []string `yaml:"same_as"`
	Hours        string   `yaml:"hours"`
}

// BookingConfig points the three-step form at the hosted booking form.
type BookingConfig struct {
	FormURL string `yaml:"form_url"`
	// Fields maps form field names (trip_type, name, ...) to hosted-form parameter names.
	Fields map[string]string `yaml:"fields"`
}

// LeadConfig selects how quick-form leads are relayed.
type LeadConfig struct {
	FormspreeID   string        `yaml:"formspree_id"`
	FormspreeURL  string        `yaml:"formspree_url"`
	SMTP          SMTPConfig    `yaml:"smtp"`
	PerMinute     int           `yaml:"per_minute"`
	NotifyAddress string        `yaml:"notify_address"`
	SubjectPrefix string        `yaml:"subject_prefix"`
	RelayTimeout  time.Duration `yaml:"relay_timeout"`
}

// SMTPConfig configures the optional mail relay.
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

// AnalyticsConfig holds client instrumentation identifiers surfaced to templates.
type AnalyticsConfig struct {
	GA4MeasurementID   string `yaml:"ga4_measurement_id"`
	GTMContainerID     string `yaml:"gtm_container_id"`
	SearchConsoleToken string `yaml:"search_console_token"`
	Debug              bool   `yaml:"debug"`
}

// SessionConfig configures the signed session cookie.
type SessionConfig struct {
	SigningKey string `yaml:"signing_key"`
	Secure     bool   `yaml:"secure"`
}

// ValidationError is returned when configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	file         string
	envMap       map[string]string
	useSystemEnv bool
}

// WithFile overlays a YAML file before environment variables are applied.
func WithFile(path string) Option {
	return func(o *loaderOptions) {
		o.file = path
	}
}

// WithEnvMap injects explicit environment values. They take precedence over the process environment.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv disables reading from the process environment.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Env: "dev",
		Server: ServerConfig{
			Addr:         ":" + defaultPort,
			ReadTimeout:  defaultReadTimeout,
			WriteTimeout: defaultWriteTimeout,
			IdleTimeout:  defaultIdleTimeout,
		},
		Paths: PathConfig{
			Templates: "templates",
			Public:    "public",
			Data:      "data",
			Content:   "content",
			Locales:   "locales",
		},
		Site: SiteConfig{
			Name:         "Next Trip Anywhere",
			BaseURL:      defaultBaseURL,
			Phone:        "+1-833-874-1019",
			PhoneDisplay: "(833) 874-1019",
			LocalPhone:   "+1-973-874-1019",
			Email:        "info@nexttripanywhere.com",
			Logo:         defaultBaseURL + "/assets/images/logo.png",
			TwitterSite:  "@nexttripanywhere",
			SameAs: []string{
				"https://www.facebook.com/nexttripanywhere",
				"https://www.instagram.com/nexttripanywhere",
				"https://www.linkedin.com/company/nexttripanywhere",
				"https://twitter.com/nexttripanywhere",
				"https://www.youtube.com/@nexttripanywhere",
			},
			Hours: "Monday-Friday 9AM-6PM EST, Saturday 10AM-4PM EST",
		},
		Booking: BookingConfig{
			FormURL: defaultBookingFormURL,
			Fields:  map[string]string{},
		},
		Leads: LeadConfig{
			PerMinute:     defaultLeadsPerMinute,
			SubjectPrefix: "New Travel Inquiry from",
			RelayTimeout:  8 * time.Second,
			SMTP:          SMTPConfig{Port: 587},
		},
	}
}

// Load assembles configuration from defaults, an optional YAML file and the environment.
// The file path may also come from NEXTTRIP_WEB_CONFIG.
func Load(opts ...Option) (Config, error) {
	options := loaderOptions{useSystemEnv: true}
	for _, opt := range opts {
		opt(&options)
	}

	lookup := func(key string) (string, bool) {
		if options.envMap != nil {
			if value, ok := options.envMap[key]; ok {
				return value, true
			}
		}
		if options.useSystemEnv {
			if value, ok := os.LookupEnv(key); ok {
				return value, true
			}
		}
		return "", false
	}

	cfg := Default()

	file := options.file
	if file == "" {
		file, _ = lookup(envPrefix + "CONFIG")
	}
	if strings.TrimSpace(file) != "" {
		if err := overlayFile(&cfg, file); err != nil {
			return Config{}, err
		}
	}

	key := func(name string) string { return envPrefix + name }

	cfg.Env = strings.ToLower(stringWithDefault(lookup, key("ENV"), cfg.Env))
	// DEV is honoured as a fallback, same as the original launcher scripts.
	cfg.Dev = boolWithDefault(lookup, key("DEV"), boolWithDefault(lookup, "DEV", cfg.Dev))

	port := stringWithDefault(lookup, key("PORT"), stringWithDefault(lookup, "PORT", ""))
	if port != "" {
		cfg.Server.Addr = ":" + port
	}
	cfg.Server.Addr = stringWithDefault(lookup, key("ADDR"), cfg.Server.Addr)
	cfg.Server.ReadTimeout = durationWithDefault(lookup, key("READ_TIMEOUT"), cfg.Server.ReadTimeout)
	cfg.Server.WriteTimeout = durationWithDefault(lookup, key("WRITE_TIMEOUT"), cfg.Server.WriteTimeout)
	cfg.Server.IdleTimeout = durationWithDefault(lookup, key("IDLE_TIMEOUT"), cfg.Server.IdleTimeout)

	cfg.Paths.Templates = stringWithDefault(lookup, key("TEMPLATES_DIR"), cfg.Paths.Templates)
	cfg.Paths.Public = stringWithDefault(lookup, key("PUBLIC_DIR"), cfg.Paths.Public)
	cfg.Paths.Data = stringWithDefault(lookup, key("DATA_DIR"), cfg.Paths.Data)
	cfg.Paths.Content = stringWithDefault(lookup, key("CONTENT_DIR"), cfg.Paths.Content)
	cfg.Paths.Locales = stringWithDefault(lookup, key("LOCALES_DIR"), cfg.Paths.Locales)

	cfg.Site.Name = stringWithDefault(lookup, key("SITE_NAME"), cfg.Site.Name)
	cfg.Site.BaseURL = strings.TrimRight(stringWithDefault(lookup, key("BASE_URL"), cfg.Site.BaseURL), "/")
	cfg.Site.Phone = stringWithDefault(lookup, key("PHONE"), cfg.Site.Phone)
	cfg.Site.PhoneDisplay = stringWithDefault(lookup, key("PHONE_DISPLAY"), cfg.Site.PhoneDisplay)
	cfg.Site.Email = stringWithDefault(lookup, key("EMAIL"), cfg.Site.Email)

	cfg.Booking.FormURL = stringWithDefault(lookup, key("BOOKING_FORM_URL"), cfg.Booking.FormURL)
	for name, param := range mapWithDefault(lookup, key("BOOKING_FORM_FIELDS")) {
		cfg.Booking.Fields[name] = param
	}

	cfg.Leads.FormspreeID = stringWithDefault(lookup, key("FORMSPREE_ID"), cfg.Leads.FormspreeID)
	cfg.Leads.FormspreeURL = stringWithDefault(lookup, key("FORMSPREE_URL"), cfg.Leads.FormspreeURL)
	cfg.Leads.PerMinute = intWithDefault(lookup, key("LEADS_PER_MINUTE"), cfg.Leads.PerMinute)
	cfg.Leads.NotifyAddress = stringWithDefault(lookup, key("LEADS_NOTIFY"), cfg.Leads.NotifyAddress)
	cfg.Leads.RelayTimeout = durationWithDefault(lookup, key("LEADS_RELAY_TIMEOUT"), cfg.Leads.RelayTimeout)
	cfg.Leads.SMTP.Host = stringWithDefault(lookup, key("SMTP_HOST"), cfg.Leads.SMTP.Host)
	cfg.Leads.SMTP.Port = intWithDefault(lookup, key("SMTP_PORT"), cfg.Leads.SMTP.Port)
	cfg.Leads.SMTP.Username = stringWithDefault(lookup, key("SMTP_USERNAME"), cfg.Leads.SMTP.Username)
	cfg.Leads.SMTP.Password = stringWithDefault(lookup, key("SMTP_PASSWORD"), cfg.Leads.SMTP.Password)
	cfg.Leads.SMTP.From = stringWithDefault(lookup, key("SMTP_FROM"), cfg.Leads.SMTP.From)

	cfg.Analytics.GA4MeasurementID = stringWithDefault(lookup, key("GA_MEASUREMENT_ID"), cfg.Analytics.GA4MeasurementID)
	cfg.Analytics.GTMContainerID = stringWithDefault(lookup, key("GTM_CONTAINER_ID"), cfg.Analytics.GTMContainerID)
	cfg.Analytics.SearchConsoleToken = stringWithDefault(lookup, key("GOOGLE_SITE_VERIFICATION"), cfg.Analytics.SearchConsoleToken)
	cfg.Analytics.Debug = boolWithDefault(lookup, key("ANALYTICS_DEBUG"), cfg.Analytics.Debug)

	cfg.Session.SigningKey = stringWithDefault(lookup, key("SESSION_SIGNING_KEY"), cfg.Session.SigningKey)
	cfg.Session.Secure = cfg.IsProd() || boolWithDefault(lookup, key("SESSION_SECURE"), cfg.Session.Secure)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// IsProd reports whether the site runs with production settings.
func (c Config) IsProd() bool { return c.Env == "prod" }

// Validate checks the fields every page depends on.
func (c Config) Validate() error {
	var invalid []string
	if strings.TrimSpace(c.Server.Addr) == "" {
		invalid = append(invalid, "Server.Addr")
	}
	if u, err := url.Parse(c.Site.BaseURL); err != nil || !u.IsAbs() || u.Host == "" {
		invalid = append(invalid, "Site.BaseURL")
	}
	if strings.TrimSpace(c.Site.Name) == "" {
		invalid = append(invalid, "Site.Name")
	}
	if c.Booking.FormURL != "" {
		if u, err := url.Parse(c.Booking.FormURL); err != nil || !u.IsAbs() {
			invalid = append(invalid, "Booking.FormURL")
		}
	}
	if c.Leads.PerMinute < 0 {
		invalid = append(invalid, "Leads.PerMinute")
	}
	if c.IsProd() && strings.TrimSpace(c.Session.SigningKey) == "" {
		invalid = append(invalid, "Session.SigningKey")
	}
	if len(invalid) > 0 {
		return &ValidationError{fields: invalid}
	}
	return nil
}

func overlayFile(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("config: file %s not found: %w", path, err)
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	if cfg.Booking.Fields == nil {
		cfg.Booking.Fields = map[string]string{}
	}
	return nil
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func durationWithDefault(lookup func(string) (string, bool), key string, fallback time.Duration) time.Duration {
	if value, ok := lookup(key); ok && value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func intWithDefault(lookup func(string) (string, bool), key string, fallback int) int {
	if value, ok := lookup(key); ok && value != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return parsed
		}
	}
	return fallback
}

func boolWithDefault(lookup func(string) (string, bool), key string, fallback bool) bool {
	if value, ok := lookup(key); ok && value != "" {
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	return fallback
}

// mapWithDefault parses "a=b,c=d" pairs.
func mapWithDefault(lookup func(string) (string, bool), key string) map[string]string {
	values := make(map[string]string)
	raw, ok := lookup(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return values
	}
	for _, entry := range strings.Split(raw, ",") {
		parts := strings.SplitN(strings.TrimSpace(entry), "=", 2)
		if len(parts) != 2 {
			continue
		}
		name := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if name == "" || value == "" {
			continue
		}
		values[name] = value
	}
	return values
}
