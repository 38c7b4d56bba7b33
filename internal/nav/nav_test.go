package nav

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildActiveState(t *testing.T) {
	t.Parallel()

	items := Build("/cruises/royal-caribbean")
	active := map[string]bool{}
	for _, it := range items {
		active[it.Href] = it.Active
	}
	require.True(t, active["/cruises"])
	require.False(t, active["/deals"])

	for _, it := range Build("/cruisesx") {
		require.False(t, it.Active, it.Href)
	}
	for _, it := range Build("") {
		require.False(t, it.Active, it.Href)
	}
}

func TestBreadcrumbsHome(t *testing.T) {
	t.Parallel()

	crumbs := Breadcrumbs("/", nil)
	require.Len(t, crumbs, 1)
	require.True(t, crumbs[0].Active)
	require.Equal(t, "nav.home", crumbs[0].LabelKey)
}

func TestBreadcrumbsUsesResolverThenSegment(t *testing.T) {
	t.Parallel()

	resolver := func(href, seg string) (string, bool) {
		if href == "/cruises/royal-caribbean" {
			return "Royal Caribbean", true
		}
		return "", false
	}
	crumbs := Breadcrumbs("/cruises/royal-caribbean/deals/", resolver)
	require.Len(t, crumbs, 4)

	require.Equal(t, "/cruises", crumbs[1].Href)
	require.Equal(t, "nav.cruises", crumbs[1].LabelKey)
	require.Equal(t, "Royal Caribbean", crumbs[2].Label)
	require.Empty(t, crumbs[2].LabelKey)
	require.Equal(t, "Deals", crumbs[3].Label)
	require.True(t, crumbs[3].Active)
	require.False(t, crumbs[2].Active)
}

func TestTrail(t *testing.T) {
	t.Parallel()

	crumbs := Trail(
		Crumb{Href: "/essex-county", LabelKey: "nav.essex_county"},
		Crumb{Href: "/travel-from-nutley", Label: "Nutley"},
	)
	require.Len(t, crumbs, 3)
	require.Equal(t, "/", crumbs[0].Href)
	require.False(t, crumbs[1].Active)
	require.True(t, crumbs[2].Active)
}

func TestTitleFromSegment(t *testing.T) {
	t.Parallel()

	require.Equal(t, "Cruise Transfers", TitleFromSegment("cruise-transfers"))
	require.Equal(t, "Glen Ridge", TitleFromSegment("glen_ridge"))
	require.Equal(t, "", TitleFromSegment(""))
}
