package seo

import "strings"

// Identity is the business data every schema node and meta tag draws from.
type Identity struct {
	Name        string
	URL         string
	Phone       string
	LocalPhone  string
	Email       string
	Logo        string
	Description string
	TwitterSite string
	SameAs      []string
	Images      []string

	Locality   string
	Region     string
	PostalCode string
	Country    string
	Latitude   float64
	Longitude  float64

	RatingValue float64
	ReviewCount int
}

// DefaultIdentity returns the production identity rooted at baseURL.
func DefaultIdentity(baseURL string) Identity {
	base := strings.TrimRight(baseURL, "/")
	if base == "" {
		base = "https://nexttripanywhere.com"
	}
	return Identity{
		Name:        "Next Trip Anywhere",
		URL:         base,
		Phone:       "+1-833-874-1019",
		LocalPhone:  "+19738741019",
		Email:       "info@nexttripanywhere.com",
		Logo:        base + "/assets/images/logo.png",
		Description: "Full-service travel agency specializing in cruises, vacation packages, and all-inclusive resorts for Essex County, New Jersey residents.",
		TwitterSite: "@nexttripanywhere",
		SameAs: []string{
			"https://www.facebook.com/nexttripanywhere",
			"https://www.instagram.com/nexttripanywhere",
			"https://www.linkedin.com/company/nexttripanywhere",
			"https://twitter.com/nexttripanywhere",
		},
		Images: []string{
			base + "/assets/images/office-1x1.jpg",
			base + "/assets/images/office-16x9.jpg",
		},
		Locality:    "Newark",
		Region:      "NJ",
		PostalCode:  "07102",
		Country:     "US",
		Latitude:    40.7357,
		Longitude:   -74.1724,
		RatingValue: 4.8,
		ReviewCount: 342,
	}
}

// Abs resolves a site path against the identity URL.
func (id Identity) Abs(path string) string {
	if path == "" || path == "/" {
		return id.URL
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return id.URL + path
}

// OrganizationID is the stable @id of the business node.
func (id Identity) OrganizationID() string { return id.URL + "/#organization" }

// WebSiteID is the stable @id of the website node.
func (id Identity) WebSiteID() string { return id.URL + "/#website" }

func (id Identity) orgRef() map[string]any {
	return map[string]any{"@type": "Organization", "@id": id.OrganizationID(), "name": id.Name}
}
