package models

import (
	"time"

	"github.com/google/uuid"
)

// Artist identity is NormalizedName. Name keeps the first-seen display
// casing and is never overwritten by later variant spellings; the optional
// attributes may be filled in later when previously null, but a populated
// value is never clobbered by scraped data.
type Artist struct {
	ID             uuid.UUID
	Name           string
	NormalizedName string
	BirthYear      *int
	DeathYear      *int
	Nationality    *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ArtistAttrs carries optional enrichment attributes seen alongside a raw
// artist name.
type ArtistAttrs struct {
	BirthYear   *int
	DeathYear   *int
	Nationality *string
}

// Empty reports whether there is nothing to enrich with.
func (a ArtistAttrs) Empty() bool {
	return a.BirthYear == nil && a.DeathYear == nil && a.Nationality == nil
}
