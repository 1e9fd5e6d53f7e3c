// Package catalog loads the static location dataset and derives the
// known-city set. The catalog is read-only after load; every accessor
// returns copies so callers cannot mutate the backing records.
package catalog

import (
	"embed"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	"ghid/internal/model"
	"ghid/internal/utils"
)

//go:embed data/locations.json
var defaultData embed.FS

// Catalog is the immutable, ordered collection of location records
type Catalog struct {
	locations []model.Location
	cities    []string // deduplicated, sorted lexicographically
}

// Load builds a catalog from the file at path, or from the embedded
// dataset when path is empty. Malformed records are logged and skipped
// rather than failing the whole load.
func Load(path string) (*Catalog, error) {
	var raw []byte
	var err error
	if path != "" {
		raw, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog file: %w", err)
		}
	} else {
		raw, err = defaultData.ReadFile("data/locations.json")
		if err != nil {
			return nil, fmt.Errorf("failed to read embedded catalog: %w", err)
		}
	}

	var records []model.Location
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	return New(records)
}

// New builds a catalog from in-memory records, validating each one and
// assigning sequential IDs in input order.
func New(records []model.Location) (*Catalog, error) {
	locations := make([]model.Location, 0, len(records))
	for i, rec := range records {
		if err := rec.Validate(); err != nil {
			log.Printf("Warning: skipping catalog record %d: %v", i, err)
			continue
		}
		rec.ID = len(locations) + 1
		locations = append(locations, rec)
	}

	if len(locations) == 0 {
		return nil, fmt.Errorf("catalog contains no valid records")
	}

	return &Catalog{
		locations: locations,
		cities:    extractCities(locations),
	}, nil
}

// extractCities derives the known-city set from the trailing address
// segment of every record. Sorted output makes the first-match scan in
// the resolver deterministic.
func extractCities(locations []model.Location) []string {
	seen := make(map[string]struct{})
	cities := make([]string, 0)
	for i := range locations {
		city := locations[i].City()
		if _, ok := seen[city]; ok {
			continue
		}
		seen[city] = struct{}{}
		cities = append(cities, city)
	}
	sort.Strings(cities)
	return cities
}

// Len returns the number of records
func (c *Catalog) Len() int {
	return len(c.locations)
}

// All returns a copy of every record in catalog order
func (c *Catalog) All() []model.Location {
	out := make([]model.Location, len(c.locations))
	copy(out, c.locations)
	return out
}

// Get returns the record with the given ID, or nil
func (c *Catalog) Get(id int) *model.Location {
	if id < 1 || id > len(c.locations) {
		return nil
	}
	loc := c.locations[id-1]
	return &loc
}

// Cities returns the derived known-city set, sorted lexicographically
func (c *Catalog) Cities() []string {
	out := make([]string, len(c.cities))
	copy(out, c.cities)
	return out
}

// TopRated returns up to n records sorted by rating descending, with
// catalog order preserved between equal ratings.
func (c *Catalog) TopRated(n int) []model.Location {
	out := c.All()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Rating > out[j].Rating
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// ByCity returns every record whose address contains the city,
// case- and diacritic-insensitively. Empty city returns everything.
func (c *Catalog) ByCity(city string) []model.Location {
	if city == "" {
		return c.All()
	}
	needle := utils.Normalize(city)
	out := make([]model.Location, 0)
	for _, loc := range c.locations {
		if strings.Contains(utils.Normalize(loc.Address), needle) {
			out = append(out, loc)
		}
	}
	return out
}

// DefaultCity returns the city of the top-rated record, the fallback
// geographic focus when neither the query nor the conversation history
// names one.
func (c *Catalog) DefaultCity() string {
	top := c.TopRated(1)
	if len(top) == 0 {
		return ""
	}
	return top[0].City()
}
