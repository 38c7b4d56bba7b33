package consent

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	ConsentCookie     = "nexttrip_cookie_consent"
	PreferencesCookie = "nexttrip_cookie_preferences"
	MarketingCookie   = "marketing_enabled"
	FunctionalCookie  = "functional_enabled"

	cookieMaxAge = 365 * 24 * time.Hour
)

// Preferences records which optional cookie categories the visitor allowed.
type Preferences struct {
	Necessary  bool `json:"necessary"`
	Analytics  bool `json:"analytics"`
	Marketing  bool `json:"marketing"`
	Functional bool `json:"functional"`
}

// Default is the state before the visitor decides: necessary cookies only.
func Default() Preferences {
	return Preferences{Necessary: true}
}

func AcceptAll() Preferences {
	return Preferences{Necessary: true, Analytics: true, Marketing: true, Functional: true}
}

func RejectAll() Preferences {
	return Default()
}

// FromForm reads the banner form. action is accept_all, reject_all or save;
// save reads the analytics, marketing and functional checkboxes.
func FromForm(values url.Values) Preferences {
	switch strings.ToLower(strings.TrimSpace(values.Get("action"))) {
	case "accept_all", "accept":
		return AcceptAll()
	case "reject_all", "reject":
		return RejectAll()
	}
	return Preferences{
		Necessary:  true,
		Analytics:  checked(values.Get("analytics")),
		Marketing:  checked(values.Get("marketing")),
		Functional: checked(values.Get("functional")),
	}
}

func checked(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}

// Read returns the stored preferences and whether the visitor has decided.
func Read(r *http.Request) (Preferences, bool) {
	c, err := r.Cookie(ConsentCookie)
	if err != nil || c.Value != "true" {
		return Default(), false
	}
	pc, err := r.Cookie(PreferencesCookie)
	if err != nil {
		return Default(), false
	}
	raw, err := base64.RawURLEncoding.DecodeString(pc.Value)
	if err != nil {
		return Default(), false
	}
	var prefs Preferences
	if err := json.Unmarshal(raw, &prefs); err != nil {
		return Default(), false
	}
	prefs.Necessary = true
	return prefs, true
}

type options struct {
	secure bool
	now    time.Time
}

// Option adjusts how consent cookies are written.
type Option func(*options)

// WithSecure marks the cookies Secure.
func WithSecure(secure bool) Option {
	return func(o *options) { o.secure = secure }
}

// WithNow fixes the clock used for cookie expiry.
func WithNow(now time.Time) Option {
	return func(o *options) { o.now = now }
}

// Apply stores prefs and sets or clears the marketing and functional flags.
// The flag cookies stay readable by scripts so tags can check them.
func Apply(w http.ResponseWriter, prefs Preferences, opts ...Option) {
	o := options{now: time.Now()}
	for _, opt := range opts {
		opt(&o)
	}
	prefs.Necessary = true
	b, _ := json.Marshal(prefs)

	set := func(name, value string) {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    value,
			Path:     "/",
			Secure:   o.secure,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   int(cookieMaxAge / time.Second),
			Expires:  o.now.Add(cookieMaxAge),
		})
	}
	unset := func(name string) {
		http.SetCookie(w, &http.Cookie{
			Name:    name,
			Value:   "",
			Path:    "/",
			MaxAge:  -1,
			Expires: time.Unix(0, 0),
		})
	}

	set(ConsentCookie, "true")
	set(PreferencesCookie, base64.RawURLEncoding.EncodeToString(b))
	if prefs.Marketing {
		set(MarketingCookie, "true")
	} else {
		unset(MarketingCookie)
	}
	if prefs.Functional {
		set(FunctionalCookie, "true")
	} else {
		unset(FunctionalCookie)
	}
}

// ConsentMode maps prefs onto the tag manager consent-mode fields.
// Ad storage is never granted without analytics consent.
func ConsentMode(prefs Preferences) map[string]string {
	mode := map[string]string{
		"analytics_storage":     "denied",
		"ad_storage":            "denied",
		"functionality_storage": grant(prefs.Functional),
	}
	if prefs.Analytics {
		mode["analytics_storage"] = "granted"
		mode["ad_storage"] = grant(prefs.Marketing)
	}
	return mode
}

// Event is the data layer push recording the visitor's choice.
func Event(prefs Preferences) map[string]any {
	return map[string]any{
		"event":              "cookie_consent",
		"consent_analytics":  prefs.Analytics,
		"consent_marketing":  prefs.Marketing,
		"consent_functional": prefs.Functional,
	}
}

func grant(ok bool) string {
	if ok {
		return "granted"
	}
	return "denied"
}

// State is the per-request consent view exposed to handlers and templates.
type State struct {
	Preferences Preferences
	Decided     bool
}

// ShowBanner reports whether the consent banner must be rendered.
func (s State) ShowBanner() bool { return !s.Decided }

// Mode returns the consent-mode map for the current preferences.
func (s State) Mode() map[string]string { return ConsentMode(s.Preferences) }

type ctxKey struct{}

// Middleware reads the consent cookies once per request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		prefs, decided := Read(r)
		ctx := context.WithValue(r.Context(), ctxKey{}, State{Preferences: prefs, Decided: decided})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// FromContext returns the request's consent state, or the undecided default.
func FromContext(ctx context.Context) State {
	if s, ok := ctx.Value(ctxKey{}).(State); ok {
		return s
	}
	return State{Preferences: Default()}
}
