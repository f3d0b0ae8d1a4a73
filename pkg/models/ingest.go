package models

import (
	"encoding/json"
	"time"

	"github.com/museumhop/exhibition-engine/pkg/jsonutil"
)

// RawExhibition is the engine's input contract: one loosely structured
// record as produced by the external scraping agent. All fields are free
// text; the engine owns turning them into rows.
type RawExhibition struct {
	Title       string `json:"title"`
	Artists     string `json:"artists"` // comma-separated, possibly empty
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	MuseumName  string `json:"museum_name"`
	CityName    string `json:"city_name"`
	CountryName string `json:"country_name"`
	Details     string `json:"details,omitempty"`
	URL         string `json:"url,omitempty"`
}

// UnmarshalJSON tolerates non-string scalars from scrapers: a date field
// holding a bare year number, a details field holding a boolean. Everything
// coerces to the string the normalizers expect.
func (r *RawExhibition) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	r.Title = jsonutil.FlexibleString(fields["title"])
	r.Artists = jsonutil.FlexibleString(fields["artists"])
	r.StartDate = jsonutil.FlexibleString(fields["start_date"])
	r.EndDate = jsonutil.FlexibleString(fields["end_date"])
	r.MuseumName = jsonutil.FlexibleString(fields["museum_name"])
	r.CityName = jsonutil.FlexibleString(fields["city_name"])
	r.CountryName = jsonutil.FlexibleString(fields["country_name"])
	r.Details = jsonutil.FlexibleString(fields["details"])
	r.URL = jsonutil.FlexibleString(fields["url"])
	return nil
}

// MuseumRef identifies the museum a batch belongs to, as named by the
// scraper.
type MuseumRef struct {
	Name    string `json:"museum_name" yaml:"museum"`
	City    string `json:"city_name" yaml:"city"`
	Country string `json:"country_name" yaml:"country"`
	URL     string `json:"url,omitempty" yaml:"url,omitempty"`
}

// RecordError captures a single failed record with enough context for
// operators to find it again.
type RecordError struct {
	Title string
	URL   string
	Err   error
}

func (e RecordError) Error() string {
	if e.URL != "" {
		return e.Title + " (" + e.URL + "): " + e.Err.Error()
	}
	return e.Title + ": " + e.Err.Error()
}

// IngestionReport summarizes one museum batch. Per-record failures land in
// Errors without aborting the batch, so operators see partial success
// rather than an opaque pass/fail.
type IngestionReport struct {
	Museum     string
	Created    int
	Updated    int
	Skipped    int
	Errors     []RecordError
	StartedAt  time.Time
	FinishedAt time.Time
}

// Failed reports whether any record in the batch errored.
func (r *IngestionReport) Failed() bool { return len(r.Errors) > 0 }

// Processed is the number of records that made it into the store.
func (r *IngestionReport) Processed() int { return r.Created + r.Updated }
