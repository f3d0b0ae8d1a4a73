package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/museumhop/exhibition-engine/pkg/database"
	"github.com/museumhop/exhibition-engine/pkg/models"
)

// ExhibitionRepository persists exhibitions and their artist associations.
type ExhibitionRepository interface {
	// Upsert inserts the exhibition or, when its identity key (title,
	// museum, start date) already exists, refreshes the freshness fields in
	// place. Returns true when a new row was created. ex.ID, CreatedAt, and
	// UpdatedAt are filled from the database.
	Upsert(ctx context.Context, q database.Querier, ex *models.Exhibition) (bool, error)
	// ReplaceArtists reconciles the association set to exactly links:
	// missing pairs are inserted, stale pairs deleted, surviving pairs keep
	// their row with the role refreshed.
	ReplaceArtists(ctx context.Context, q database.Querier, exhibitionID uuid.UUID, links []models.ArtistLink) error
	ArtistsFor(ctx context.Context, q database.Querier, exhibitionID uuid.UUID) ([]models.ExhibitionArtist, error)
	Search(ctx context.Context, q database.Querier, filters models.SearchFilters) ([]*models.ExhibitionRow, error)
	CitySummaries(ctx context.Context, q database.Querier) ([]models.CitySummary, error)
}

type exhibitionRepository struct{}

// NewExhibitionRepository creates a new ExhibitionRepository.
func NewExhibitionRepository() ExhibitionRepository {
	return &exhibitionRepository{}
}

var _ ExhibitionRepository = (*exhibitionRepository)(nil)

func (r *exhibitionRepository) Upsert(ctx context.Context, q database.Querier, ex *models.Exhibition) (bool, error) {
	// xmax = 0 only holds for a freshly inserted tuple, which is how the
	// caller learns created-vs-updated from a single statement.
	query := `
		INSERT INTO exhibitions (
			title, museum_id, start_date, start_date_text,
			end_date, end_date_text, details, url, scraped_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT ON CONSTRAINT exhibitions_identity_key DO UPDATE
		SET end_date = EXCLUDED.end_date,
		    end_date_text = EXCLUDED.end_date_text,
		    details = EXCLUDED.details,
		    url = EXCLUDED.url,
		    scraped_at = EXCLUDED.scraped_at,
		    updated_at = now()
		RETURNING id, created_at, updated_at, (xmax = 0)`

	var created bool
	err := q.QueryRow(ctx, query,
		ex.Title,
		ex.MuseumID,
		ex.StartDate,
		ex.StartDateText,
		ex.EndDate,
		ex.EndDateText,
		ex.Details,
		ex.URL,
		ex.ScrapedAt,
	).Scan(&ex.ID, &ex.CreatedAt, &ex.UpdatedAt, &created)
	if err != nil {
		return false, fmt.Errorf("failed to upsert exhibition %q: %w", ex.Title, err)
	}
	return created, nil
}

func (r *exhibitionRepository) ReplaceArtists(ctx context.Context, q database.Querier, exhibitionID uuid.UUID, links []models.ArtistLink) error {
	keep := make([]string, 0, len(links))
	for _, l := range links {
		keep = append(keep, l.ArtistID.String())
	}

	// Drop associations absent from the new scrape. Pairs that survive are
	// left alone so their rows are preserved, not recreated.
	query := `
		DELETE FROM exhibition_artists
		WHERE exhibition_id = $1 AND artist_id <> ALL($2::uuid[])`
	if _, err := q.Exec(ctx, query, exhibitionID, keep); err != nil {
		return fmt.Errorf("failed to prune artist associations: %w", err)
	}

	for _, l := range links {
		query := `
			INSERT INTO exhibition_artists (exhibition_id, artist_id, role)
			VALUES ($1, $2, $3)
			ON CONFLICT (exhibition_id, artist_id) DO UPDATE
			SET role = EXCLUDED.role`
		if _, err := q.Exec(ctx, query, exhibitionID, l.ArtistID, l.Role); err != nil {
			return fmt.Errorf("failed to link artist %s: %w", l.ArtistID, err)
		}
	}
	return nil
}

func (r *exhibitionRepository) ArtistsFor(ctx context.Context, q database.Querier, exhibitionID uuid.UUID) ([]models.ExhibitionArtist, error) {
	query := `
		SELECT a.id, a.name, ea.role
		FROM exhibition_artists ea
		JOIN artists a ON a.id = ea.artist_id
		WHERE ea.exhibition_id = $1
		ORDER BY ea.role = 'main' DESC, a.name`

	rows, err := q.Query(ctx, query, exhibitionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query exhibition artists: %w", err)
	}
	defer rows.Close()

	var artists []models.ExhibitionArtist
	for rows.Next() {
		var a models.ExhibitionArtist
		if err := rows.Scan(&a.ArtistID, &a.Name, &a.Role); err != nil {
			return nil, fmt.Errorf("failed to scan exhibition artist: %w", err)
		}
		artists = append(artists, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating exhibition artists: %w", err)
	}
	return artists, nil
}

func (r *exhibitionRepository) Search(ctx context.Context, q database.Querier, filters models.SearchFilters) ([]*models.ExhibitionRow, error) {
	var sb strings.Builder
	sb.WriteString(`
		SELECT DISTINCT e.id, e.title, e.museum_id, e.start_date, e.start_date_text,
		       e.end_date, e.end_date_text, e.details, e.url, e.scraped_at,
		       e.created_at, e.updated_at, m.name, c.name, co.name
		FROM exhibitions e
		JOIN museums m ON m.id = e.museum_id
		JOIN cities c ON c.id = m.city_id
		JOIN countries co ON co.id = c.country_id`)

	var args []any
	var conds []string
	if filters.Artist != "" {
		sb.WriteString(`
		JOIN exhibition_artists ea ON ea.exhibition_id = e.id
		JOIN artists a ON a.id = ea.artist_id`)
		args = append(args, "%"+strings.ToLower(filters.Artist)+"%")
		conds = append(conds, fmt.Sprintf("a.normalized_name LIKE $%d", len(args)))
	}
	if filters.City != "" {
		args = append(args, filters.City)
		conds = append(conds, fmt.Sprintf("lower(c.name) = lower($%d)", len(args)))
	}
	if filters.Country != "" {
		args = append(args, filters.Country)
		conds = append(conds, fmt.Sprintf("lower(co.name) = lower($%d)", len(args)))
	}
	if filters.CurrentOnly {
		conds = append(conds, "(e.end_date IS NULL OR e.end_date >= CURRENT_DATE)")
	}
	if len(conds) > 0 {
		sb.WriteString("\n\t\tWHERE " + strings.Join(conds, " AND "))
	}
	sb.WriteString("\n\t\tORDER BY e.start_date NULLS LAST, c.name, m.name, e.title")

	rows, err := q.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search exhibitions: %w", err)
	}
	defer rows.Close()

	var results []*models.ExhibitionRow
	for rows.Next() {
		var e models.ExhibitionRow
		err := rows.Scan(
			&e.ID, &e.Title, &e.MuseumID, &e.StartDate, &e.StartDateText,
			&e.EndDate, &e.EndDateText, &e.Details, &e.URL, &e.ScrapedAt,
			&e.CreatedAt, &e.UpdatedAt, &e.MuseumName, &e.CityName, &e.CountryName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan exhibition row: %w", err)
		}
		results = append(results, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating exhibitions: %w", err)
	}

	for _, e := range results {
		artists, err := r.ArtistsFor(ctx, q, e.ID)
		if err != nil {
			return nil, err
		}
		e.Artists = artists
	}
	return results, nil
}

func (r *exhibitionRepository) CitySummaries(ctx context.Context, q database.Querier) ([]models.CitySummary, error) {
	query := `
		SELECT c.name, co.name, COUNT(*), COUNT(DISTINCT m.id)
		FROM exhibitions e
		JOIN museums m ON m.id = e.museum_id
		JOIN cities c ON c.id = m.city_id
		JOIN countries co ON co.id = c.country_id
		WHERE e.end_date IS NULL OR e.end_date >= CURRENT_DATE
		GROUP BY c.name, co.name
		ORDER BY COUNT(*) DESC`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query city summaries: %w", err)
	}
	defer rows.Close()

	var summaries []models.CitySummary
	for rows.Next() {
		var s models.CitySummary
		if err := rows.Scan(&s.City, &s.Country, &s.ExhibitionCount, &s.MuseumCount); err != nil {
			return nil, fmt.Errorf("failed to scan city summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating city summaries: %w", err)
	}
	return summaries, nil
}
