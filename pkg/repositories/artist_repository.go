package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/museumhop/exhibition-engine/pkg/database"
	"github.com/museumhop/exhibition-engine/pkg/models"
)

// ArtistRepository provides dedup-keyed access to artists.
type ArtistRepository interface {
	// FindOrCreate resolves a normalized key to an artist id, creating the
	// row with the first-seen display name when absent. An existing row's
	// display name is never touched.
	FindOrCreate(ctx context.Context, q database.Querier, displayName, normalizedName string) (uuid.UUID, error)
	// Enrich fills birth_year, death_year, and nationality where they are
	// currently NULL. Populated values are never overwritten: scraped data
	// must not clobber curated data.
	Enrich(ctx context.Context, q database.Querier, artistID uuid.UUID, attrs models.ArtistAttrs) error
	GetByNormalizedName(ctx context.Context, q database.Querier, normalizedName string) (*models.Artist, error)
}

type artistRepository struct{}

// NewArtistRepository creates a new ArtistRepository.
func NewArtistRepository() ArtistRepository {
	return &artistRepository{}
}

var _ ArtistRepository = (*artistRepository)(nil)

func (r *artistRepository) FindOrCreate(ctx context.Context, q database.Querier, displayName, normalizedName string) (uuid.UUID, error) {
	var id uuid.UUID

	query := `
		INSERT INTO artists (name, normalized_name)
		VALUES ($1, $2)
		ON CONFLICT (normalized_name) DO NOTHING
		RETURNING id`

	err := q.QueryRow(ctx, query, displayName, normalizedName).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != pgx.ErrNoRows {
		return uuid.Nil, fmt.Errorf("failed to create artist %q: %w", displayName, err)
	}

	err = q.QueryRow(ctx,
		`SELECT id FROM artists WHERE normalized_name = $1`,
		normalizedName).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to re-select artist %q: %w", normalizedName, err)
	}
	return id, nil
}

func (r *artistRepository) Enrich(ctx context.Context, q database.Querier, artistID uuid.UUID, attrs models.ArtistAttrs) error {
	if attrs.Empty() {
		return nil
	}

	// COALESCE keeps whichever side is already populated; the incoming value
	// only lands in NULL columns.
	query := `
		UPDATE artists
		SET birth_year = COALESCE(birth_year, $2),
		    death_year = COALESCE(death_year, $3),
		    nationality = COALESCE(nationality, $4),
		    updated_at = now()
		WHERE id = $1`

	if _, err := q.Exec(ctx, query, artistID, attrs.BirthYear, attrs.DeathYear, attrs.Nationality); err != nil {
		return fmt.Errorf("failed to enrich artist %s: %w", artistID, err)
	}
	return nil
}

func (r *artistRepository) GetByNormalizedName(ctx context.Context, q database.Querier, normalizedName string) (*models.Artist, error) {
	query := `
		SELECT id, name, normalized_name, birth_year, death_year, nationality,
		       created_at, updated_at
		FROM artists
		WHERE normalized_name = $1`

	var a models.Artist
	err := q.QueryRow(ctx, query, normalizedName).Scan(
		&a.ID,
		&a.Name,
		&a.NormalizedName,
		&a.BirthYear,
		&a.DeathYear,
		&a.Nationality,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get artist %q: %w", normalizedName, err)
	}
	return &a, nil
}
