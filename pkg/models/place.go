package models

import (
	"time"

	"github.com/google/uuid"
)

// Country is created on first reference and never updated afterwards; rows
// with the same name are treated as the same country.
type Country struct {
	ID        uuid.UUID
	Name      string
	Code      *string // optional ISO code, unique when present
	CreatedAt time.Time
}

// City identity is the (name, country) pair — the same city name may exist in
// multiple countries.
type City struct {
	ID        uuid.UUID
	Name      string
	CountryID uuid.UUID
	Latitude  *float64
	Longitude *float64
	CreatedAt time.Time
}

// Museum scrape status values.
const (
	ScrapeStatusPending = "pending"
	ScrapeStatusSuccess = "success"
	ScrapeStatusError   = "error"
)

// Museum identity is the (name, city) pair. The bookkeeping fields are
// refreshed on every ingestion run; the engine never deletes museums.
type Museum struct {
	ID              uuid.UUID
	Name            string
	CityID          uuid.UUID
	URL             string
	LastScraped     *time.Time
	ScrapeStatus    string
	ExhibitionCount int
	ErrorMessage    *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Coordinates is an optional lat/lon pair supplied at seed time; the engine
// stores it as-is and does no geocoding.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// MuseumListing is a museum joined to its city and country names, as shown
// in operator-facing listings.
type MuseumListing struct {
	ID              uuid.UUID
	Name            string
	URL             string
	LastScraped     *time.Time
	ScrapeStatus    string
	ExhibitionCount int
	ErrorMessage    *string
	CityName        string
	CountryName     string
}
