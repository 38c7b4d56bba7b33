package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadWithDefaults(t *testing.T) {
	cfg, err := Load(WithEnvMap(map[string]string{}), WithoutSystemEnv())
	require.NoError(t, err)

	require.Equal(t, ":8080", cfg.Server.Addr)
	require.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	require.Equal(t, "https://nexttripanywhere.com", cfg.Site.BaseURL)
	require.Equal(t, "Next Trip Anywhere", cfg.Site.Name)
	require.Equal(t, defaultLeadsPerMinute, cfg.Leads.PerMinute)
	require.False(t, cfg.IsProd())
	require.False(t, cfg.Session.Secure)
}

func TestLoadEnvOverrides(t *testing.T) {
	env := map[string]string{
		"PORT":                             "9090",
		"NEXTTRIP_WEB_BASE_URL":            "https://staging.nexttripanywhere.com/",
		"NEXTTRIP_WEB_DEV":                 "1",
		"NEXTTRIP_WEB_LEADS_PER_MINUTE":    "12",
		"NEXTTRIP_WEB_BOOKING_FORM_FIELDS": "name=entry.1001, email=entry.1002",
		"NEXTTRIP_WEB_GA_MEASUREMENT_ID":   "G-TEST123",
	}
	cfg, err := Load(WithEnvMap(env), WithoutSystemEnv())
	require.NoError(t, err)

	require.Equal(t, ":9090", cfg.Server.Addr)
	require.Equal(t, "https://staging.nexttripanywhere.com", cfg.Site.BaseURL)
	require.True(t, cfg.Dev)
	require.Equal(t, 12, cfg.Leads.PerMinute)
	require.Equal(t, "entry.1001", cfg.Booking.Fields["name"])
	require.Equal(t, "entry.1002", cfg.Booking.Fields["email"])
	require.Equal(t, "G-TEST123", cfg.Analytics.GA4MeasurementID)
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "site.yaml")
	body := []byte(`
site:
  name: Next Trip Anywhere NJ
  phone_display: "(973) 874-1019"
booking:
  fields:
    trip_type: entry.2001
leads:
  formspree_id: xyzabc
`)
	require.NoError(t, os.WriteFile(path, body, 0o600))

	cfg, err := Load(WithFile(path), WithEnvMap(map[string]string{
		"NEXTTRIP_WEB_SITE_NAME": "Next Trip Anywhere Essex",
	}), WithoutSystemEnv())
	require.NoError(t, err)

	require.Equal(t, "Next Trip Anywhere Essex", cfg.Site.Name)
	require.Equal(t, "(973) 874-1019", cfg.Site.PhoneDisplay)
	require.Equal(t, "entry.2001", cfg.Booking.Fields["trip_type"])
	require.Equal(t, "xyzabc", cfg.Leads.FormspreeID)
	// untouched defaults survive the overlay
	require.Equal(t, "https://nexttripanywhere.com", cfg.Site.BaseURL)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(WithFile(filepath.Join(t.TempDir(), "missing.yaml")), WithoutSystemEnv())
	require.Error(t, err)
	require.True(t, errors.Is(err, os.ErrNotExist))
}

func TestValidateRejectsRelativeBaseURLAndProdWithoutKey(t *testing.T) {
	_, err := Load(WithEnvMap(map[string]string{
		"NEXTTRIP_WEB_BASE_URL": "/relative",
		"NEXTTRIP_WEB_ENV":      "prod",
	}), WithoutSystemEnv())
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	require.ElementsMatch(t, []string{"Site.BaseURL", "Session.SigningKey"}, verr.Fields())
}

func TestProdForcesSecureCookies(t *testing.T) {
	cfg, err := Load(WithEnvMap(map[string]string{
		"NEXTTRIP_WEB_ENV":                 "prod",
		"NEXTTRIP_WEB_SESSION_SIGNING_KEY": "0123456789abcdef0123456789abcdef",
	}), WithoutSystemEnv())
	require.NoError(t, err)
	require.True(t, cfg.IsProd())
	require.True(t, cfg.Session.Secure)
}
