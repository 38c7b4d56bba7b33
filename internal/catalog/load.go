package catalog

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Data file names under the catalog directory.
const (
	FileCities       = "cities.yaml"
	FileServices     = "services.yaml"
	FileCruiseLines  = "cruise_lines.yaml"
	FileCruises      = "cruises.yaml"
	FileDestinations = "destinations.yaml"
	FileDeals        = "deals.yaml"
	FileGuides       = "guides.yaml"
	FileLocations    = "locations.yaml"
	FilePackages     = "packages.yaml"
	FileRedirects    = "redirects.yaml"
)

var dataFiles = []string{
	FileCities, FileServices, FileCruiseLines, FileCruises,
	FileDestinations, FileDeals, FileGuides, FileLocations,
	FilePackages, FileRedirects,
}

// DuplicateError reports a record key that appears twice in one data file.
type DuplicateError struct {
	File string
	Key  string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("catalog: duplicate key %q in %s", e.Key, e.File)
}

// Catalog is the immutable set of data records behind every landing page.
type Catalog struct {
	Cities       []City
	Services     []Service
	CruiseLines  []CruiseLine
	Cruises      []CruiseDestination
	Destinations []Destination
	Deals        []Deal
	Guides       []Guide
	Locations    []NationalLocation
	Packages     []Package
	Redirects    []Redirect

	LoadedAt time.Time
	// Modified is the latest change time of the data files, zero when unknown.
	Modified time.Time

	cities       map[string]int
	services     map[string]int
	cruiseLines  map[string]int
	cruises      map[string]int
	destinations map[string]int
	deals        map[string]int
	guides       map[string]int
	locations    map[string]int
	packages     map[string]int
	redirects    []redirectRule
}

// Load reads every data file from dir. Missing files yield empty collections.
func Load(dir string) (*Catalog, error) {
	return LoadFS(os.DirFS(dir))
}

// LoadFS reads the data files from fsys.
func LoadFS(fsys fs.FS) (*Catalog, error) {
	c := &Catalog{LoadedAt: time.Now().UTC()}
	var err error

	if err = decodeFile(fsys, FileCities, &c.Cities); err != nil {
		return nil, err
	}
	if err = decodeFile(fsys, FileServices, &c.Services); err != nil {
		return nil, err
	}
	if err = decodeFile(fsys, FileCruiseLines, &c.CruiseLines); err != nil {
		return nil, err
	}
	if err = decodeFile(fsys, FileCruises, &c.Cruises); err != nil {
		return nil, err
	}
	if err = decodeFile(fsys, FileDestinations, &c.Destinations); err != nil {
		return nil, err
	}
	if err = decodeFile(fsys, FileDeals, &c.Deals); err != nil {
		return nil, err
	}
	if err = decodeFile(fsys, FileGuides, &c.Guides); err != nil {
		return nil, err
	}
	if err = decodeFile(fsys, FileLocations, &c.Locations); err != nil {
		return nil, err
	}
	if err = decodeFile(fsys, FilePackages, &c.Packages); err != nil {
		return nil, err
	}
	if err = decodeFile(fsys, FileRedirects, &c.Redirects); err != nil {
		return nil, err
	}

	for _, name := range dataFiles {
		info, err := fs.Stat(fsys, name)
		if err != nil {
			continue
		}
		if mod := info.ModTime().UTC(); mod.After(c.Modified) {
			c.Modified = mod
		}
	}

	if err := c.index(); err != nil {
		return nil, err
	}
	return c, nil
}

// New builds a catalog from in-memory records. Used by tests and tooling.
func New(c Catalog) (*Catalog, error) {
	out := c
	if out.LoadedAt.IsZero() {
		out.LoadedAt = time.Now().UTC()
	}
	if err := out.index(); err != nil {
		return nil, err
	}
	return &out, nil
}

func decodeFile[T any](fsys fs.FS, name string, dst *[]T) error {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			*dst = nil
			return nil
		}
		return fmt.Errorf("catalog: read %s: %w", name, err)
	}
	var items []T
	if err := yaml.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("catalog: decode %s: %w", name, err)
	}
	*dst = items
	return nil
}

func (c *Catalog) index() error {
	var err error
	if c.cities, err = buildIndex(FileCities, c.Cities, func(v City) string { return v.ID }); err != nil {
		return err
	}
	if c.services, err = buildIndex(FileServices, c.Services, func(v Service) string { return v.ID }); err != nil {
		return err
	}
	if c.cruiseLines, err = buildIndex(FileCruiseLines, c.CruiseLines, func(v CruiseLine) string { return v.Slug }); err != nil {
		return err
	}
	if c.cruises, err = buildIndex(FileCruises, c.Cruises, func(v CruiseDestination) string { return v.Slug }); err != nil {
		return err
	}
	if c.destinations, err = buildIndex(FileDestinations, c.Destinations, func(v Destination) string { return v.Slug }); err != nil {
		return err
	}
	if c.deals, err = buildIndex(FileDeals, c.Deals, func(v Deal) string { return v.Slug }); err != nil {
		return err
	}
	if c.guides, err = buildIndex(FileGuides, c.Guides, func(v Guide) string { return v.Slug }); err != nil {
		return err
	}
	if c.locations, err = buildIndex(FileLocations, c.Locations, func(v NationalLocation) string { return v.Slug }); err != nil {
		return err
	}
	if c.packages, err = buildIndex(FilePackages, c.Packages, func(v Package) string { return v.Slug }); err != nil {
		return err
	}
	if c.redirects, err = compileRedirects(c.Redirects); err != nil {
		return err
	}

	// cruise line and cruise destination pages share /cruises/<slug>
	for slug := range c.cruiseLines {
		if _, ok := c.cruises[slug]; ok {
			return &DuplicateError{File: FileCruiseLines + "+" + FileCruises, Key: slug}
		}
	}
	return nil
}

func buildIndex[T any](file string, items []T, key func(T) string) (map[string]int, error) {
	idx := make(map[string]int, len(items))
	for i, item := range items {
		k := strings.TrimSpace(key(item))
		if k == "" {
			return nil, fmt.Errorf("catalog: %s entry %d has no id", file, i)
		}
		if _, ok := idx[k]; ok {
			return nil, &DuplicateError{File: file, Key: k}
		}
		idx[k] = i
	}
	return idx, nil
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("catalog: invalid date %q", raw)
	}
	return t, nil
}
