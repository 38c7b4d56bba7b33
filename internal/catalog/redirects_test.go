package catalog

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
)

func redirectCatalog(t *testing.T, table ...Redirect) *Catalog {
	t.Helper()
	cat, err := New(Catalog{Redirects: table})
	require.NoError(t, err)
	return cat
}

func temporary() *bool {
	v := false
	return &v
}

func TestRedirectMatching(t *testing.T) {
	t.Parallel()

	cat := redirectCatalog(t,
		Redirect{From: "/sandals/", To: "/packages/sandals-resorts-deals"},
		Redirect{From: "/spring-break", To: "/packages/spring-break-deals", Permanent: temporary()},
		Redirect{From: "/blog/post/:slug", To: "/blog/:slug"},
		Redirect{From: "/from-:city/:service", To: "/locations/essex-county/:city/:service"},
		Redirect{From: "/cancún", To: "/destinations/mexico-from-newark"},
	)

	tests := []struct {
		path      string
		to        string
		permanent bool
		ok        bool
	}{
		{"/sandals", "/packages/sandals-resorts-deals", true, true},
		{"/sandals/", "/packages/sandals-resorts-deals", true, true},
		{"/spring-break", "/packages/spring-break-deals", false, true},
		{"/blog/post/newark-airport-tips", "/blog/newark-airport-tips", true, true},
		{"/from-nutley/airport-transfers", "/locations/essex-county/nutley/airport-transfers", true, true},
		{"/cancún", "/destinations/mexico-from-newark", true, true},
		{"/from-/airport-transfers", "", false, false},
		{"/blog/post", "", false, false},
		{"/blog/post/a/b", "", false, false},
		{"/Sandals", "", false, false},
		{"/", "", false, false},
	}
	for _, tt := range tests {
		to, permanent, ok := cat.Redirect(tt.path)
		require.Equal(t, tt.ok, ok, tt.path)
		require.Equal(t, tt.to, to, tt.path)
		require.Equal(t, tt.permanent, permanent, tt.path)
	}
}

func TestRedirectFirstEntryWins(t *testing.T) {
	t.Parallel()

	cat := redirectCatalog(t,
		Redirect{From: "/cruise-line/disney", To: "/cruises"},
		Redirect{From: "/cruise-line/:line", To: "/cruises/:line"},
	)
	to, _, ok := cat.Redirect("/cruise-line/disney")
	require.True(t, ok)
	require.Equal(t, "/cruises", to)
	to, _, _ = cat.Redirect("/cruise-line/msc")
	require.Equal(t, "/cruises/msc", to)
}

func TestRedirectTableValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		table []Redirect
	}{
		{"relative from", []Redirect{{From: "sandals", To: "/packages"}}},
		{"external target", []Redirect{{From: "/sandals", To: "https://example.com/"}}},
		{"protocol relative target", []Redirect{{From: "/sandals", To: "//example.com"}}},
		{"query in target", []Redirect{{From: "/sandals", To: "/packages?type=luxury"}}},
		{"self", []Redirect{{From: "/packages/", To: "/packages"}}},
		{"unknown parameter", []Redirect{{From: "/blog/post/:slug", To: "/blog/:id"}}},
		{"repeated parameter", []Redirect{{From: "/a/:x/:x", To: "/b/:x"}}},
		{"empty parameter", []Redirect{{From: "/a/:", To: "/b"}}},
		{"empty segment", []Redirect{{From: "/a//b", To: "/b"}}},
		{"chain", []Redirect{{From: "/a", To: "/b"}, {From: "/b", To: "/c"}}},
	}
	for _, tt := range tests {
		_, err := New(Catalog{Redirects: tt.table})
		require.Error(t, err, tt.name)
		var rerr *RedirectError
		if errors.As(err, &rerr) {
			require.NotEmpty(t, rerr.Reason, tt.name)
		}
	}

	_, err := New(Catalog{Redirects: []Redirect{{From: "/a", To: "/b"}, {From: "/a/", To: "/c"}}})
	var dup *DuplicateError
	require.ErrorAs(t, err, &dup)
	require.Equal(t, FileRedirects, dup.File)
}

func TestLoadRedirectsAndPackages(t *testing.T) {
	t.Parallel()

	cat, err := LoadFS(fstest.MapFS{
		FileRedirects: {Data: []byte("- {from: /black-friday, to: /deals, permanent: false}\n- {from: /all-inclusive, to: /packages/all-inclusive-caribbean}\n")},
		FilePackages:  {Data: []byte("- slug: all-inclusive-caribbean\n  title: All-Inclusive\n  priority: LOW\n- slug: family\n  priority: HIGH\n")},
	})
	require.NoError(t, err)
	require.Len(t, cat.Redirects, 2)
	require.False(t, cat.Redirects[0].IsPermanent())
	require.True(t, cat.Redirects[1].IsPermanent())

	p, ok := cat.Package("all-inclusive-caribbean")
	require.True(t, ok)
	require.Equal(t, "All-Inclusive", p.Title)
	require.Equal(t, "family", cat.PackagesByPriority()[0].Slug)

	_, err = LoadFS(fstest.MapFS{FilePackages: {Data: []byte("- slug: a\n- slug: a\n")}})
	var dup *DuplicateError
	require.ErrorAs(t, err, &dup)
}

func TestRepositoryRedirectsCompile(t *testing.T) {
	t.Parallel()
	cat := loadRepo(t)

	require.NotEmpty(t, cat.Redirects)
	to, permanent, ok := cat.Redirect("/essex/nutley/airport-transfers")
	require.True(t, ok)
	require.True(t, permanent)
	require.Equal(t, "/locations/essex-county/nutley/airport-transfers", to)

	for _, rd := range cat.Redirects {
		_, _, shadowed := cat.Redirect(rd.To)
		require.False(t, shadowed, "%s -> %s is redirected again", rd.From, rd.To)
	}

	p, ok := cat.Package("sandals-resorts-deals")
	require.True(t, ok)
	require.Equal(t, 2199, p.StartingPrice)
	require.Equal(t, "2026-08-28", p.LastUpdated.ISO())
	require.NotEmpty(t, p.Resorts)
}
