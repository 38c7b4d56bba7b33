package consent

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func cookiesByName(rec *httptest.ResponseRecorder) map[string]*http.Cookie {
	out := map[string]*http.Cookie{}
	for _, c := range rec.Result().Cookies() {
		out[c.Name] = c
	}
	return out
}

func TestFromForm(t *testing.T) {
	t.Parallel()

	require.Equal(t, AcceptAll(), FromForm(url.Values{"action": {"accept_all"}}))
	require.Equal(t, RejectAll(), FromForm(url.Values{"action": {"reject_all"}, "marketing": {"on"}}))

	prefs := FromForm(url.Values{"action": {"save"}, "analytics": {"on"}, "functional": {"true"}})
	require.Equal(t, Preferences{Necessary: true, Analytics: true, Functional: true}, prefs)
}

func TestApplySetsAndClearsFlags(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)
	rec := httptest.NewRecorder()
	Apply(rec, Preferences{Analytics: true, Marketing: true}, WithSecure(true), WithNow(now))

	cookies := cookiesByName(rec)
	require.Equal(t, "true", cookies[ConsentCookie].Value)
	require.Equal(t, "true", cookies[MarketingCookie].Value)
	require.Equal(t, 31536000, cookies[MarketingCookie].MaxAge)
	require.Equal(t, http.SameSiteLaxMode, cookies[MarketingCookie].SameSite)
	require.True(t, cookies[MarketingCookie].Secure)
	require.False(t, cookies[MarketingCookie].HttpOnly)
	require.Equal(t, -1, cookies[FunctionalCookie].MaxAge)
	require.Empty(t, cookies[FunctionalCookie].Value)
}

func TestReadRoundTrip(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	Apply(rec, Preferences{Functional: true})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge >= 0 {
			req.AddCookie(c)
		}
	}
	prefs, decided := Read(req)
	require.True(t, decided)
	require.Equal(t, Preferences{Necessary: true, Functional: true}, prefs)

	bad := httptest.NewRequest(http.MethodGet, "/", nil)
	bad.AddCookie(&http.Cookie{Name: ConsentCookie, Value: "true"})
	bad.AddCookie(&http.Cookie{Name: PreferencesCookie, Value: "%%%"})
	prefs, decided = Read(bad)
	require.False(t, decided)
	require.Equal(t, Default(), prefs)
}

func TestConsentMode(t *testing.T) {
	t.Parallel()

	require.Equal(t, map[string]string{
		"analytics_storage":     "granted",
		"ad_storage":            "granted",
		"functionality_storage": "granted",
	}, ConsentMode(AcceptAll()))

	mode := ConsentMode(Preferences{Marketing: true, Functional: true})
	require.Equal(t, "denied", mode["analytics_storage"])
	require.Equal(t, "denied", mode["ad_storage"])
	require.Equal(t, "granted", mode["functionality_storage"])

	require.Equal(t, "denied", ConsentMode(Preferences{Analytics: true})["ad_storage"])
	require.Equal(t, "cookie_consent", Event(AcceptAll())["event"])
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	var got State
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = FromContext(r.Context())
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.True(t, got.ShowBanner())
	require.Equal(t, "denied", got.Mode()["analytics_storage"])

	rec := httptest.NewRecorder()
	Apply(rec, AcceptAll())
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	h.ServeHTTP(httptest.NewRecorder(), req)
	require.False(t, got.ShowBanner())
	require.True(t, got.Preferences.Marketing)

	require.Equal(t, Default(), FromContext(context.Background()).Preferences)
}
