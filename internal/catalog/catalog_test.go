package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/require"
)

const repoData = "../../data"

func loadRepo(t *testing.T) *Catalog {
	t.Helper()
	cat, err := Load(repoData)
	require.NoError(t, err)
	return cat
}

func TestLoadRepositoryData(t *testing.T) {
	t.Parallel()
	cat := loadRepo(t)

	require.NotEmpty(t, cat.Cities)
	require.NotEmpty(t, cat.Services)
	require.NotEmpty(t, cat.CruiseLines)
	require.NotEmpty(t, cat.Cruises)
	require.NotEmpty(t, cat.Deals)

	city, ok := cat.City("belleville")
	require.True(t, ok)
	require.Equal(t, "Belleville", city.Name)
	require.Equal(t, []string{"07109"}, city.ZipCodes)

	cruise, ok := cat.Cruise("cruises-from-cape-liberty")
	require.True(t, ok)
	require.Equal(t, PriorityHigh, cruise.Priority)
	require.NotNil(t, cruise.PortInfo)
	require.Equal(t, "2026-09-01", cruise.LastUpdated.ISO())

	_, ok = cat.Deal("does-not-exist")
	require.False(t, ok)
}

func TestLoadMissingFilesYieldEmpty(t *testing.T) {
	t.Parallel()

	cat, err := LoadFS(fstest.MapFS{
		FileCities: {Data: []byte("- id: nutley\n  name: Nutley\n")},
	})
	require.NoError(t, err)
	require.Len(t, cat.Cities, 1)
	require.Empty(t, cat.Deals)
	require.Empty(t, cat.CityServicePairs())
}

func TestLoadTracksLatestDataChange(t *testing.T) {
	t.Parallel()

	older := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	newer := time.Date(2026, 9, 15, 8, 30, 0, 0, time.UTC)
	cat, err := LoadFS(fstest.MapFS{
		FileCities:   {Data: []byte("- id: verona\n  name: Verona\n"), ModTime: older},
		FileServices: {Data: []byte("- id: airport-transfers\n"), ModTime: newer},
	})
	require.NoError(t, err)
	require.Equal(t, newer, cat.Modified)

	empty, err := LoadFS(fstest.MapFS{})
	require.NoError(t, err)
	require.True(t, empty.Modified.IsZero())
}

func TestLoadRejectsDuplicateKeys(t *testing.T) {
	t.Parallel()

	_, err := LoadFS(fstest.MapFS{
		FileDeals: {Data: []byte("- slug: a\n  title: A\n- slug: a\n  title: Again\n")},
	})
	var dup *DuplicateError
	require.True(t, errors.As(err, &dup))
	require.Equal(t, FileDeals, dup.File)
	require.Equal(t, "a", dup.Key)
}

func TestLoadRejectsCruiseSlugCollision(t *testing.T) {
	t.Parallel()

	_, err := LoadFS(fstest.MapFS{
		FileCruiseLines: {Data: []byte("- slug: bermuda\n  name: Bermuda Line\n")},
		FileCruises:     {Data: []byte("- slug: bermuda\n  title: Bermuda Cruises\n")},
	})
	var dup *DuplicateError
	require.True(t, errors.As(err, &dup))
	require.Equal(t, "bermuda", dup.Key)
}

func TestLoadRejectsBadDate(t *testing.T) {
	t.Parallel()

	_, err := LoadFS(fstest.MapFS{
		FileDeals: {Data: []byte("- slug: a\n  booking_deadline: soon\n")},
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "deals.yaml")
}

func TestActiveDealsDropsSoldOutAndExpired(t *testing.T) {
	t.Parallel()
	cat := loadRepo(t)

	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	var slugs []string
	for _, d := range cat.ActiveDeals(now) {
		slugs = append(slugs, d.Slug)
	}
	require.Contains(t, slugs, "bermuda-5night-norwegian")
	require.Contains(t, slugs, "bahamas-cape-liberty-royal")
	require.NotContains(t, slugs, "msc-brooklyn-bahamas")
	require.NotContains(t, slugs, "carnival-long-weekend")

	// deadline day itself is still bookable
	deadline := time.Date(2026, 10, 25, 22, 0, 0, 0, time.UTC)
	found := false
	for _, d := range cat.ActiveDeals(deadline) {
		found = found || d.Slug == "bermuda-5night-norwegian"
	}
	require.True(t, found)
}

func TestDealFilters(t *testing.T) {
	t.Parallel()
	cat := loadRepo(t)

	require.Len(t, cat.DealsByCruiseLine("royal-caribbean"), 2)
	require.Len(t, cat.DealsByCruiseLine("Royal Caribbean"), 2)
	require.Len(t, cat.DealsByPort("bayonne"), 1)
	require.Len(t, cat.DealsByDuration(4, 5), 2)
	require.Len(t, cat.DealsByCategory("BAHAMAS"), 3)
	require.NotEmpty(t, cat.LastMinuteDeals())
	require.NotEmpty(t, cat.ValueDeals())
	require.NotEmpty(t, cat.FeaturedDeals())
	require.Empty(t, cat.DealsByPort(""))
}

func TestDestinationQueries(t *testing.T) {
	t.Parallel()
	cat := loadRepo(t)

	featured := cat.FeaturedDestinations(2)
	require.Len(t, featured, 2)
	require.Equal(t, "bahamas-from-newark", featured[0].Slug)

	require.NotEmpty(t, cat.DestinationsByRegion("caribbean"))
	require.NotEmpty(t, cat.DestinationsByCategory("Beach"))
	require.NotEmpty(t, cat.SearchDestinations("cancun"))
	require.Nil(t, cat.SearchDestinations("  "))

	bahamas, ok := cat.Destination("bahamas-from-newark")
	require.True(t, ok)
	related := cat.RelatedDestinations(bahamas, 3)
	require.LessOrEqual(t, len(related), 3)
	for _, d := range related {
		require.NotEqual(t, bahamas.Slug, d.Slug)
	}
	require.Equal(t, "Caribbean", related[0].Region)
}

func TestCityHelpers(t *testing.T) {
	t.Parallel()
	cat := loadRepo(t)

	nearby := cat.NearbyCities("belleville")
	var ids []string
	for _, c := range nearby {
		ids = append(ids, c.ID)
	}
	require.ElementsMatch(t, []string{"nutley", "bloomfield"}, ids)
	require.Nil(t, cat.NearbyCities("atlantis"))

	for _, c := range cat.CitiesByPopulation(20000, 0) {
		require.GreaterOrEqual(t, c.Population, 20000)
	}
	require.Len(t, cat.CityServicePairs(), len(cat.Cities)*len(cat.Services))
	require.Contains(t, cat.ServiceKeywords("airport-transfers"), "airport transfer")
	require.Nil(t, cat.ServiceKeywords("teleportation"))
	require.Equal(t, cat.CityIDs()[0], cat.Cities[0].ID)
}

func TestCruiseHelpers(t *testing.T) {
	t.Parallel()
	cat := loadRepo(t)

	for _, c := range cat.HighPriorityCruises() {
		require.Equal(t, PriorityHigh, c.Priority)
	}
	for _, c := range cat.CruisesByDifficulty(30) {
		require.LessOrEqual(t, c.Difficulty, 30)
	}
	guides := cat.GuidesByPriority()
	require.Equal(t, PriorityLow, guides[len(guides)-1].Priority)
}

func TestSlugify(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"Glen Ridge":             "glen-ridge",
		"  North   Caldwell ":    "north-caldwell",
		"Norwegian Cruise Line!": "norwegian-cruise-line",
		"":                       "",
	}
	for in, want := range cases {
		require.Equal(t, want, Slugify(in), in)
	}
}

func TestStoreReloadKeepsPreviousOnError(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, FileCities)
	require.NoError(t, os.WriteFile(path, []byte("- id: verona\n  name: Verona\n"), 0o600))

	store, err := NewStore(dir, nil)
	require.NoError(t, err)
	require.Len(t, store.Current().Cities, 1)

	require.NoError(t, os.WriteFile(path, []byte("- id: verona\n- id: nutley\n"), 0o600))
	require.NoError(t, store.Reload())
	require.Len(t, store.Current().Cities, 2)

	require.NoError(t, os.WriteFile(path, []byte("- id: verona\n- id: verona\n"), 0o600))
	require.Error(t, store.Reload())
	require.Len(t, store.Current().Cities, 2)
}
