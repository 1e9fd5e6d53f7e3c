package model

import (
	"fmt"

	"ghid/internal/utils"
)

// Coordinates is a latitude/longitude pair. Display-only; the query
// pipeline never touches it.
type Coordinates struct {
	Lat  float64 `json:"lat"`
	Long float64 `json:"long"`
}

// Location represents a single tourist location record. Records are
// immutable after catalog load; IDs are assigned sequentially in
// catalog order.
type Location struct {
	ID               int         `json:"id"`
	Name             string      `json:"name"`
	Address          string      `json:"address"`
	Coordinates      Coordinates `json:"coordinates"`
	ImageURL         string      `json:"image_url,omitempty"`
	Category         string      `json:"category"`
	Rating           float64     `json:"rating"`
	ShortDescription string      `json:"short_description,omitempty"`
}

// City returns the trailing comma-separated segment of the address.
func (l *Location) City() string {
	return utils.CityOf(l.Address)
}

// Validate checks the fields the query pipeline depends on. Malformed
// records are rejected at catalog load, never at query time.
func (l *Location) Validate() error {
	if l.Name == "" {
		return fmt.Errorf("location has empty name")
	}
	if l.Address == "" {
		return fmt.Errorf("location %q has empty address", l.Name)
	}
	if l.Category == "" {
		return fmt.Errorf("location %q has empty category", l.Name)
	}
	if l.Rating < 0 {
		return fmt.Errorf("location %q has negative rating %.2f", l.Name, l.Rating)
	}
	return nil
}
