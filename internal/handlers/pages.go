package handlers

import (
	"nexttripanywhere.com/web/internal/consent"
	"nexttripanywhere.com/web/internal/nav"
	"nexttripanywhere.com/web/internal/seo"
)

// PageData is the view model every page renders through the shared layout.
type PageData struct {
	Title     string
	Lang      string
	Meta      seo.Meta
	Analytics Analytics
	Consent   consent.State
	Site      Site

	Path        string
	Nav         []nav.RenderedItem
	Breadcrumbs []nav.Crumb
	CSRFToken   string
	Year        int

	// Page is the per-page view model.
	Page any
}

// Site is the contact block shown in the header, footer and call-to-action strips.
type Site struct {
	Name         string
	Phone        string
	PhoneDisplay string
	LocalPhone   string
	Email        string
	Hours        string
	SameAs       []string
}
