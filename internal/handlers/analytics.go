package handlers

import "nexttripanywhere.com/web/internal/config"

// Analytics holds client instrumentation configuration surfaced to templates.
type Analytics struct {
	GA4MeasurementID   string // e.g. G-XXXXXXXXXX
	GTMContainerID     string // e.g. GTM-XXXXXXX
	SearchConsoleToken string
	Debug              bool
}

// AnalyticsFromConfig builds Analytics from the loaded configuration.
func AnalyticsFromConfig(cfg config.AnalyticsConfig) Analytics {
	return Analytics{
		GA4MeasurementID:   cfg.GA4MeasurementID,
		GTMContainerID:     cfg.GTMContainerID,
		SearchConsoleToken: cfg.SearchConsoleToken,
		Debug:              cfg.Debug,
	}
}

// Enabled reports whether any tag should be rendered.
func (a Analytics) Enabled() bool {
	return a.GA4MeasurementID != "" || a.GTMContainerID != ""
}
