package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPackagePages(t *testing.T) {
	h := newTestApp(t, nil).Routes()

	rec, doc := get(t, h, "/packages")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 4, doc.Find(".package-card").Length())
	require.Equal(t, "All-Inclusive Caribbean Packages from NJ", strings.TrimSpace(doc.Find(".package-card h3").First().Text()))
	require.Contains(t, jsonLD(doc), `"ItemList"`)

	rec, doc = get(t, h, "/packages/sandals-resorts-deals")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, doc.Find("h1").Length())
	require.Contains(t, doc.Find(".hero .price").Text(), "$2,199")
	require.Contains(t, doc.Find(".hero .savings").Text(), "$1,000")
	require.Equal(t, 2, doc.Find(".resort-card").Length())
	ld := jsonLD(doc)
	require.Contains(t, ld, `"TouristTrip"`)
	require.Contains(t, ld, `"highPrice":3199`)
	require.Contains(t, ld, `"FAQPage"`)

	href, _ := doc.Find(".hero a.button").Attr("href")
	require.Equal(t, "/quote?trip_type=package&source=package-sandals-resorts-deals", href)

	crumbs := doc.Find("nav.breadcrumbs").Text()
	require.Contains(t, crumbs, "Sandals Resorts Deals from Newark")

	rec, _ = get(t, h, "/packages/no-such-package")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFlightsPage(t *testing.T) {
	h := newTestApp(t, nil).Routes()

	rec, doc := get(t, h, "/flights")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, doc.Find("h1").Length())
	ld := jsonLD(doc)
	require.Contains(t, ld, `"Flight Booking Services"`)
	require.Contains(t, ld, `"OfferCatalog"`)
	require.Contains(t, ld, `"Boston"`)
	require.Contains(t, ld, `"FAQPage"`)
	require.Equal(t, 3, doc.Find(".faq details").Length())
	_, ok := doc.Find(`a[href="/from/miami"]`).Attr("href")
	require.True(t, ok)
}

func TestCruiseCalculator(t *testing.T) {
	h := newTestApp(t, nil).Routes()

	rec, doc := get(t, h, "/tools/cruise-price-calculator")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "$4,496", strings.TrimSpace(doc.Find("#calculator-result .total").Text()))
	require.Equal(t, "$2,248", strings.TrimSpace(doc.Find("#calculator-result .per-person").Text()))
	_, checked := doc.Find(`input[name="cabin"][value="balcony"]`).Attr("checked")
	require.True(t, checked)

	rec, doc = get(t, h, "/tools/cruise-price-calculator?days=3&cabin=interior&travelers=1&line=royal-caribbean&addon=drinks&addon=spa")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "$1,379", strings.TrimSpace(doc.Find("#calculator-result .total").Text()))
	require.Equal(t, 0, doc.Find("#calculator-result .discount").Length())
	_, checked = doc.Find(`input[name="addon"][value="spa"]`).Attr("checked")
	require.True(t, checked)

	req := httptest.NewRequest(http.MethodGet, "/tools/cruise-price-calculator?days=7&cabin=balcony&travelers=2&line=royal-caribbean&essex=on", nil)
	req.Header.Set("HX-Request", "true")
	hx := httptest.NewRecorder()
	h.ServeHTTP(hx, req)
	require.Equal(t, http.StatusOK, hx.Code)
	require.True(t, strings.HasPrefix(strings.TrimSpace(hx.Body.String()), `<div id="calculator-result"`))
	require.NotContains(t, hx.Body.String(), "<html")

	rec, doc = get(t, h, "/tools")
	require.Equal(t, http.StatusOK, rec.Code)
	_, ok := doc.Find(`a[href="/tools/cruise-price-calculator"]`).Attr("href")
	require.True(t, ok)
}

func TestRetiredPathsRedirect(t *testing.T) {
	h := newTestApp(t, nil).Routes()

	tests := []struct {
		target   string
		code     int
		location string
	}{
		{"/sandals", http.StatusMovedPermanently, "/packages/sandals-resorts-deals"},
		{"/caribean-cruises/", http.StatusMovedPermanently, "/cruises/caribbean-cruises-from-nj"},
		{"/spring-break", http.StatusFound, "/packages/spring-break-deals"},
		{"/cruise-deals?utm_source=mail", http.StatusMovedPermanently, "/deals?utm_source=mail"},
		{"/blog/post/newark-airport-travel-tips-local-experts", http.StatusMovedPermanently, "/blog/newark-airport-travel-tips-local-experts"},
		{"/from-nutley/airport-transfers", http.StatusMovedPermanently, "/locations/essex-county/nutley/airport-transfers"},
		{"/canc%C3%BAn", http.StatusMovedPermanently, "/destinations/mexico-from-newark"},
	}
	for _, tt := range tests {
		rec, _ := get(t, h, tt.target)
		require.Equal(t, tt.code, rec.Code, tt.target)
		require.Equal(t, tt.location, rec.Header().Get("Location"), tt.target)
	}

	rec, _ := get(t, h, "/sandals")
	require.Contains(t, rec.Header().Get("Cache-Control"), "public")
	rec, _ = get(t, h, "/black-friday")
	require.Contains(t, rec.Header().Get("Cache-Control"), "no-store")

	// a live page is never shadowed and unknown paths still 404
	rec, _ = get(t, h, "/deals")
	require.Equal(t, http.StatusOK, rec.Code)
	rec, _ = get(t, h, "/no-such-page")
	require.Equal(t, http.StatusNotFound, rec.Code)

	post := httptest.NewRecorder()
	h.ServeHTTP(post, httptest.NewRequest(http.MethodPost, "/sandals", nil))
	require.NotEqual(t, http.StatusMovedPermanently, post.Code)
}
