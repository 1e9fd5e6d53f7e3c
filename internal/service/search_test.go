package service

import (
	"testing"

	"ghid/internal/catalog"
	"ghid/internal/model"
)

func searchCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New([]model.Location{
		{Name: "Cafe Central", Address: "Str. X, Cluj-Napoca", Category: "cafenea", Rating: 4.7},
		{Name: "Meron", Address: "Piața Muzeului 3, Cluj-Napoca", Category: "cafenea de specialitate", Rating: 4.5},
		{Name: "Sisters", Address: "Str. Potaissa 1, Cluj-Napoca", Category: "cafenea / bistro", Rating: 4.5},
		{Name: "Narcoffee", Address: "Str. Regele Ferdinand 22, Cluj-Napoca", Category: "cafenea", Rating: 4.3},
		{Name: "Cafe La Rotonda", Address: "Bd. Revoluției 3, Timișoara", Category: "cafenea / ceainărie", Rating: 4.8},
		{Name: "Pizzeria Incontro", Address: "Str. Mercy 2, Timișoara", Category: "pizzerie", Rating: 4.6},
		{Name: "Muzeul de Artă", Address: "Piața Unirii 30, Timișoara", Category: "muzeu", Rating: 4.4},
	})
	if err != nil {
		t.Fatalf("failed to build test catalog: %v", err)
	}
	return cat
}

func TestFindLocations_CityScopedAndSorted(t *testing.T) {
	s := NewLocalSearch(searchCatalog(t), 3)

	results := s.FindLocations("vreau o cafea", "Cluj-Napoca")

	if len(results) != 3 {
		t.Fatalf("got %d results, want 3 (capped)", len(results))
	}
	// Rating descending; Meron and Sisters tie at 4.5 and must keep
	// catalog order.
	wantNames := []string{"Cafe Central", "Meron", "Sisters"}
	for i, want := range wantNames {
		if results[i].Name != want {
			t.Errorf("results[%d] = %q, want %q", i, results[i].Name, want)
		}
	}
	// La Rotonda (4.8, Timișoara) outranks everything but is out of scope
	for _, loc := range results {
		if loc.City() != "Cluj-Napoca" {
			t.Errorf("result %q from wrong city %q", loc.Name, loc.City())
		}
	}
}

func TestFindLocations_DiacriticInsensitiveCity(t *testing.T) {
	s := NewLocalSearch(searchCatalog(t), 3)

	results := s.FindLocations("o cafea buna", "timisoara")
	if len(results) != 1 || results[0].Name != "Cafe La Rotonda" {
		t.Fatalf("got %v, want only Cafe La Rotonda", names(results))
	}
}

func TestFindLocations_SynonymExpansion(t *testing.T) {
	s := NewLocalSearch(searchCatalog(t), 3)

	// "ceai" expands to ceainărie, which only La Rotonda carries
	results := s.FindLocations("un ceai", "Timișoara")
	if len(results) != 1 || results[0].Name != "Cafe La Rotonda" {
		t.Fatalf("got %v, want Cafe La Rotonda via ceainarie synonym", names(results))
	}

	// "pizza" expands to pizzerie
	results = s.FindLocations("vreau pizza", "Timișoara")
	if len(results) != 1 || results[0].Name != "Pizzeria Incontro" {
		t.Fatalf("got %v, want Pizzeria Incontro", names(results))
	}
}

func TestFindLocations_NoKeyword(t *testing.T) {
	s := NewLocalSearch(searchCatalog(t), 3)

	if results := s.FindLocations("ceva frumos de vazut", "Timișoara"); len(results) != 0 {
		t.Errorf("keyword-free phrase returned %v", names(results))
	}
	if results := s.FindLocations("", "Timișoara"); len(results) != 0 {
		t.Errorf("empty phrase returned %v", names(results))
	}
}

func TestFindLocations_EmptyCitySearchesEverywhere(t *testing.T) {
	s := NewLocalSearch(searchCatalog(t), 10)

	results := s.FindLocations("cafenea", "")
	if len(results) != 5 {
		t.Fatalf("got %d results, want 5 across all cities", len(results))
	}
	if results[0].Name != "Cafe La Rotonda" {
		t.Errorf("results[0] = %q, want best-rated Cafe La Rotonda", results[0].Name)
	}
}

func TestFindLocations_UnknownCity(t *testing.T) {
	s := NewLocalSearch(searchCatalog(t), 3)

	if results := s.FindLocations("cafenea", "Oradea"); len(results) != 0 {
		t.Errorf("unknown city returned %v", names(results))
	}
}

func names(locs []model.Location) []string {
	out := make([]string, len(locs))
	for i, loc := range locs {
		out[i] = loc.Name
	}
	return out
}
