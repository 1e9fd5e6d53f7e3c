package service

import (
	"sort"
	"strings"

	"ghid/internal/catalog"
	"ghid/internal/model"
	"ghid/internal/utils"
)

// LocalSearch filters the location catalog by city and expanded
// category terms. It is fully deterministic; the external generation
// API never influences which records it returns.
type LocalSearch struct {
	catalog    *catalog.Catalog
	maxResults int
}

// NewLocalSearch creates a new local search engine
func NewLocalSearch(cat *catalog.Catalog, maxResults int) *LocalSearch {
	if maxResults <= 0 {
		maxResults = 3
	}
	return &LocalSearch{
		catalog:    cat,
		maxResults: maxResults,
	}
}

// FindLocations returns the best-rated records matching the keyword
// phrase, optionally scoped to a city. A phrase without any known
// location keyword returns nothing. Results are sorted by rating
// descending with catalog order preserved between equal ratings, and
// capped at the configured maximum.
func (s *LocalSearch) FindLocations(keywordPhrase, city string) []model.Location {
	terms := expandKeywords(keywordPhrase)
	if len(terms) == 0 {
		return nil
	}

	normalizedCity := utils.Normalize(city)

	matches := make([]model.Location, 0)
	for _, loc := range s.catalog.All() {
		if normalizedCity != "" && !strings.Contains(utils.Normalize(loc.Address), normalizedCity) {
			continue
		}
		if !categoryMatches(loc.Category, terms) {
			continue
		}
		matches = append(matches, loc)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Rating > matches[j].Rating
	})

	if len(matches) > s.maxResults {
		matches = matches[:s.maxResults]
	}
	return matches
}

// categoryMatches reports whether the record's normalized category
// contains at least one expanded search term.
func categoryMatches(category string, terms []string) bool {
	normalized := utils.Normalize(category)
	for _, term := range terms {
		if strings.Contains(normalized, term) {
			return true
		}
	}
	return false
}
