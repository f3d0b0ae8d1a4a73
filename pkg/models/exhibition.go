package models

import (
	"time"

	"github.com/google/uuid"
)

// Artist roles on an exhibition.
const (
	RoleMain          = "main"
	RoleFeatured      = "featured"
	RoleCollaborative = "collaborative"
)

// Exhibition identity is (Title, MuseumID, StartDate). A nil StartDate
// participates in uniqueness as a single "no date" bucket: two same-titled,
// undated exhibitions at one museum collapse into one row. That is a
// documented limitation of the key, kept deliberately.
type Exhibition struct {
	ID            uuid.UUID
	MuseumID      uuid.UUID
	Title         string
	StartDate     *time.Time // parsed, nil when the text never parsed
	StartDateText string     // original scraped text, always preserved
	EndDate       *time.Time
	EndDateText   string
	Details       *string
	URL           *string
	ScrapedAt     time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ArtistLink pairs a resolved artist with the role it plays on an
// exhibition.
type ArtistLink struct {
	ArtistID uuid.UUID
	Role     string
}

// ExhibitionRow is a search result: an exhibition joined to its museum,
// city, country, and artist display names.
type ExhibitionRow struct {
	Exhibition
	MuseumName  string
	CityName    string
	CountryName string
	Artists     []ExhibitionArtist
}

// ExhibitionArtist is an artist as attached to one exhibition.
type ExhibitionArtist struct {
	ArtistID uuid.UUID
	Name     string
	Role     string
}

// SearchFilters narrows exhibition searches. Zero values mean "no filter";
// CurrentOnly keeps exhibitions whose end date is unknown or still ahead.
type SearchFilters struct {
	City        string
	Country     string
	Artist      string
	CurrentOnly bool
}

// CitySummary aggregates current exhibition activity for one city.
type CitySummary struct {
	City            string
	Country         string
	ExhibitionCount int
	MuseumCount     int
}
