package middleware

import (
	"net/http"
	"path"
	"strings"
)

var contentSecurityPolicy = strings.Join([]string{
	"default-src 'self'",
	"script-src 'self' 'unsafe-inline' https://www.googletagmanager.com https://www.google-analytics.com",
	"style-src 'self' 'unsafe-inline' https://fonts.googleapis.com",
	"img-src 'self' data: https: blob:",
	"font-src 'self' https://fonts.gstatic.com",
	"connect-src 'self' https://www.google-analytics.com https://*.google-analytics.com https://www.googletagmanager.com",
	"frame-src https://www.googletagmanager.com",
	"object-src 'none'",
	"base-uri 'self'",
	// the booking form redirects to the hosted form after a POST
	"form-action 'self' https://docs.google.com",
	"frame-ancestors 'none'",
	"upgrade-insecure-requests",
}, "; ")

// SecurityHeaders sets the browser hardening headers on every response.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-DNS-Prefetch-Control", "on")
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Referrer-Policy", "origin-when-cross-origin")
		h.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")
		h.Set("Content-Security-Policy", contentSecurityPolicy)
		if r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
			h.Set("Strict-Transport-Security", "max-age=63072000; includeSubDomains; preload")
		}
		next.ServeHTTP(w, r)
	})
}

const (
	CacheImmutable   = "public, max-age=31536000, immutable"
	CacheRevalidate  = "public, max-age=0, must-revalidate"
	CacheNoStore     = "no-store, no-cache, must-revalidate"
	CachePage        = "public, max-age=3600, stale-while-revalidate=86400"
	CachePrivatePage = "private, no-store"
)

// CacheControlFor picks the Cache-Control value for a request path.
func CacheControlFor(p string) string {
	switch ext := strings.ToLower(path.Ext(p)); ext {
	case ".ico", ".jpg", ".jpeg", ".png", ".gif", ".webp", ".avif", ".svg", ".woff", ".woff2", ".ttf", ".eot", ".otf", ".css", ".js":
		return CacheImmutable
	case ".html":
		return CacheRevalidate
	}
	switch {
	case p == "/":
		return CacheRevalidate
	case p == "/metrics" || p == "/healthz" || strings.HasPrefix(p, "/api/"):
		return CacheNoStore
	}
	return CachePage
}

// CacheControl sets a default Cache-Control by path. Handlers may override it,
// and form pages do via NoStore.
func CacheControl(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", CacheControlFor(r.URL.Path))
		next.ServeHTTP(w, r)
	})
}

// NoStore marks responses as private and uncacheable. Used on routes that carry
// session state or CSRF tokens.
func NoStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", CachePrivatePage)
		next.ServeHTTP(w, r)
	})
}
