package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/museumhop/exhibition-engine/pkg/apperrors"
	"github.com/museumhop/exhibition-engine/pkg/database"
	"github.com/museumhop/exhibition-engine/pkg/models"
	"github.com/museumhop/exhibition-engine/pkg/normalize"
	"github.com/museumhop/exhibition-engine/pkg/repositories"
)

// ExhibitionUpserter persists one scraped exhibition record atomically:
// the exhibition row and its full artist association set commit together or
// not at all.
type ExhibitionUpserter interface {
	// Upsert inserts or refreshes the exhibition identified by (title,
	// museum, parsed start date) and set-replaces its artist associations
	// from the record's comma-separated artist field. Returns the
	// exhibition id and whether a new row was created.
	Upsert(ctx context.Context, museumID uuid.UUID, rec models.RawExhibition, scrapedAt time.Time) (uuid.UUID, bool, error)
	// UpsertWithRoles is Upsert with explicit per-artist roles, keyed by
	// normalized artist name. Names absent from roles fall back to the
	// positional policy (first listed = main when enabled).
	UpsertWithRoles(ctx context.Context, museumID uuid.UUID, rec models.RawExhibition, scrapedAt time.Time, roles map[string]string) (uuid.UUID, bool, error)
}

type exhibitionUpserter struct {
	db          database.TxBeginner
	resolver    EntityResolver
	exhibitions repositories.ExhibitionRepository
	leadMain    bool
	logger      *zap.Logger
}

// NewExhibitionUpserter creates an ExhibitionUpserter. leadMain controls the
// role policy: when true the first-listed artist of a record gets role
// "main", the remainder "featured".
func NewExhibitionUpserter(db database.TxBeginner, resolver EntityResolver, exhibitions repositories.ExhibitionRepository, leadMain bool, logger *zap.Logger) ExhibitionUpserter {
	return &exhibitionUpserter{
		db:          db,
		resolver:    resolver,
		exhibitions: exhibitions,
		leadMain:    leadMain,
		logger:      logger.Named("upserter"),
	}
}

var _ ExhibitionUpserter = (*exhibitionUpserter)(nil)

func (u *exhibitionUpserter) Upsert(ctx context.Context, museumID uuid.UUID, rec models.RawExhibition, scrapedAt time.Time) (uuid.UUID, bool, error) {
	return u.UpsertWithRoles(ctx, museumID, rec, scrapedAt, nil)
}

func (u *exhibitionUpserter) UpsertWithRoles(ctx context.Context, museumID uuid.UUID, rec models.RawExhibition, scrapedAt time.Time, roles map[string]string) (uuid.UUID, bool, error) {
	title := normalize.CollapseSpace(rec.Title)
	if title == "" {
		return uuid.Nil, false, apperrors.ErrEmptyTitle
	}
	if museumID == uuid.Nil {
		return uuid.Nil, false, apperrors.ErrNoMuseum
	}

	startText, endText := normalize.SplitDateRange(rec.StartDate, rec.EndDate)
	startDate, startText := normalize.ParseDate(startText)
	endDate, endText := normalize.ParseDate(endText)
	if startDate == nil && startText != "" {
		// Parse failure is a warning, never fatal: the text is preserved.
		u.logger.Warn("Unparseable start date",
			zap.String("title", title),
			zap.String("start_date", startText))
	}

	ex := &models.Exhibition{
		MuseumID:      museumID,
		Title:         title,
		StartDate:     startDate,
		StartDateText: startText,
		EndDate:       endDate,
		EndDateText:   endText,
		Details:       optional(normalize.CollapseSpace(rec.Details)),
		URL:           optional(normalize.NormalizeURL(rec.URL)),
		ScrapedAt:     scrapedAt,
	}

	tx, err := u.db.Begin(ctx)
	if err != nil {
		return uuid.Nil, false, &apperrors.PersistenceError{Op: "begin transaction", Err: err}
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	created, err := u.exhibitions.Upsert(ctx, tx, ex)
	if err != nil {
		return uuid.Nil, false, &apperrors.PersistenceError{Op: "upsert exhibition", Err: err}
	}

	links, err := u.resolveLinks(ctx, tx, rec.Artists, roles)
	if err != nil {
		// Bubbles ResolutionError untouched; the rollback above guarantees
		// no partial exhibition with half its associations.
		return uuid.Nil, false, err
	}

	if err := u.exhibitions.ReplaceArtists(ctx, tx, ex.ID, links); err != nil {
		return uuid.Nil, false, &apperrors.PersistenceError{Op: "replace artist links", Err: err}
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, false, &apperrors.PersistenceError{Op: "commit transaction", Err: err}
	}
	return ex.ID, created, nil
}

// resolveLinks resolves each raw artist name in scrape order, skipping the
// empty sentinel, and assigns roles: an explicit role per name wins,
// otherwise the first resolved artist is "main" (when the policy is on) and
// the rest "featured". The same artist appearing twice keeps its first role.
func (u *exhibitionUpserter) resolveLinks(ctx context.Context, q database.Querier, rawArtists string, roles map[string]string) ([]models.ArtistLink, error) {
	var links []models.ArtistLink
	seen := make(map[uuid.UUID]bool)

	for _, name := range normalize.SplitArtists(rawArtists) {
		id, ok, err := u.resolver.ResolveArtist(ctx, q, name, models.ArtistAttrs{})
		if err != nil {
			return nil, err
		}
		if !ok || seen[id] {
			continue
		}
		seen[id] = true

		role := models.RoleFeatured
		if u.leadMain && len(links) == 0 {
			role = models.RoleMain
		}
		if explicit, found := roles[normalize.ArtistKey(name)]; found {
			role = explicit
		}
		links = append(links, models.ArtistLink{ArtistID: id, Role: role})
	}
	return links, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
