package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/museumhop/exhibition-engine/pkg/database"
	"github.com/museumhop/exhibition-engine/pkg/models"
)

// PlaceRepository provides find-or-create access to the Country → City →
// Museum hierarchy plus museum scrape bookkeeping.
//
// Every find-or-create is INSERT … ON CONFLICT DO NOTHING followed by a
// re-select. Under concurrent ingestion of the same hierarchy one caller's
// insert wins and the others read the existing row; there is no
// read-then-write race and no application-level lock.
type PlaceRepository interface {
	FindOrCreateCountry(ctx context.Context, q database.Querier, name string, code *string) (uuid.UUID, error)
	FindOrCreateCity(ctx context.Context, q database.Querier, name string, countryID uuid.UUID, coords *models.Coordinates) (uuid.UUID, error)
	FindOrCreateMuseum(ctx context.Context, q database.Querier, name string, cityID uuid.UUID, url string) (uuid.UUID, error)
	UpdateScrapeResult(ctx context.Context, q database.Querier, museumID uuid.UUID, status string, exhibitionCount int, errorMessage *string) error
	MuseumsDue(ctx context.Context, q database.Querier, olderThan time.Time) ([]*models.MuseumListing, error)
	ListMuseums(ctx context.Context, q database.Querier) ([]*models.MuseumListing, error)
}

type placeRepository struct{}

// NewPlaceRepository creates a new PlaceRepository.
func NewPlaceRepository() PlaceRepository {
	return &placeRepository{}
}

var _ PlaceRepository = (*placeRepository)(nil)

func (r *placeRepository) FindOrCreateCountry(ctx context.Context, q database.Querier, name string, code *string) (uuid.UUID, error) {
	var id uuid.UUID

	query := `
		INSERT INTO countries (name, code)
		VALUES ($1, $2)
		ON CONFLICT (name) DO NOTHING
		RETURNING id`

	err := q.QueryRow(ctx, query, name, code).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != pgx.ErrNoRows {
		return uuid.Nil, fmt.Errorf("failed to create country %q: %w", name, err)
	}

	// Insert hit the unique constraint: another caller owns the row.
	err = q.QueryRow(ctx, `SELECT id FROM countries WHERE name = $1`, name).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to re-select country %q: %w", name, err)
	}
	return id, nil
}

func (r *placeRepository) FindOrCreateCity(ctx context.Context, q database.Querier, name string, countryID uuid.UUID, coords *models.Coordinates) (uuid.UUID, error) {
	var id uuid.UUID
	var lat, lon *float64
	if coords != nil {
		lat, lon = &coords.Latitude, &coords.Longitude
	}

	query := `
		INSERT INTO cities (name, country_id, latitude, longitude)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (name, country_id) DO NOTHING
		RETURNING id`

	err := q.QueryRow(ctx, query, name, countryID, lat, lon).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != pgx.ErrNoRows {
		return uuid.Nil, fmt.Errorf("failed to create city %q: %w", name, err)
	}

	err = q.QueryRow(ctx,
		`SELECT id FROM cities WHERE name = $1 AND country_id = $2`,
		name, countryID).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to re-select city %q: %w", name, err)
	}
	return id, nil
}

func (r *placeRepository) FindOrCreateMuseum(ctx context.Context, q database.Querier, name string, cityID uuid.UUID, url string) (uuid.UUID, error) {
	var id uuid.UUID

	query := `
		INSERT INTO museums (name, city_id, url)
		VALUES ($1, $2, $3)
		ON CONFLICT (name, city_id) DO NOTHING
		RETURNING id`

	err := q.QueryRow(ctx, query, name, cityID, url).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != pgx.ErrNoRows {
		return uuid.Nil, fmt.Errorf("failed to create museum %q: %w", name, err)
	}

	err = q.QueryRow(ctx,
		`SELECT id FROM museums WHERE name = $1 AND city_id = $2`,
		name, cityID).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to re-select museum %q: %w", name, err)
	}
	return id, nil
}

func (r *placeRepository) UpdateScrapeResult(ctx context.Context, q database.Querier, museumID uuid.UUID, status string, exhibitionCount int, errorMessage *string) error {
	query := `
		UPDATE museums
		SET last_scraped = now(),
		    scrape_status = $2,
		    exhibition_count = $3,
		    error_message = $4,
		    updated_at = now()
		WHERE id = $1`

	tag, err := q.Exec(ctx, query, museumID, status, exhibitionCount, errorMessage)
	if err != nil {
		return fmt.Errorf("failed to update museum scrape result: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("museum %s not found", museumID)
	}
	return nil
}

const museumListingQuery = `
	SELECT m.id, m.name, m.url, m.last_scraped, m.scrape_status,
	       m.exhibition_count, m.error_message, c.name, co.name
	FROM museums m
	JOIN cities c ON c.id = m.city_id
	JOIN countries co ON co.id = c.country_id`

func (r *placeRepository) MuseumsDue(ctx context.Context, q database.Querier, olderThan time.Time) ([]*models.MuseumListing, error) {
	query := museumListingQuery + `
	WHERE m.last_scraped IS NULL OR m.last_scraped < $1
	ORDER BY m.last_scraped ASC NULLS FIRST`

	rows, err := q.Query(ctx, query, olderThan)
	if err != nil {
		return nil, fmt.Errorf("failed to query museums due: %w", err)
	}
	defer rows.Close()
	return scanMuseumListings(rows)
}

func (r *placeRepository) ListMuseums(ctx context.Context, q database.Querier) ([]*models.MuseumListing, error) {
	query := museumListingQuery + `
	ORDER BY co.name, c.name, m.name`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list museums: %w", err)
	}
	defer rows.Close()
	return scanMuseumListings(rows)
}

func scanMuseumListings(rows pgx.Rows) ([]*models.MuseumListing, error) {
	var listings []*models.MuseumListing
	for rows.Next() {
		var m models.MuseumListing
		err := rows.Scan(
			&m.ID,
			&m.Name,
			&m.URL,
			&m.LastScraped,
			&m.ScrapeStatus,
			&m.ExhibitionCount,
			&m.ErrorMessage,
			&m.CityName,
			&m.CountryName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan museum listing: %w", err)
		}
		listings = append(listings, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating museums: %w", err)
	}
	return listings, nil
}
