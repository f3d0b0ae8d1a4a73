package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/museumhop/exhibition-engine/pkg/apperrors"
	"github.com/museumhop/exhibition-engine/pkg/database"
	"github.com/museumhop/exhibition-engine/pkg/models"
	"github.com/museumhop/exhibition-engine/pkg/normalize"
	"github.com/museumhop/exhibition-engine/pkg/repositories"
)

// EntityResolver turns scraped names into stable row ids, creating the
// Country → City → Museum hierarchy and artists as needed. All operations
// are idempotent: re-resolving the same names returns the same ids.
type EntityResolver interface {
	// ResolveMuseum resolves the full hierarchy for a museum reference.
	// Country matching is case-sensitive exact by design; callers normalize
	// casing upstream if they want folding. Blank names are a
	// ResolutionError — the hierarchy never contains a blank row.
	ResolveMuseum(ctx context.Context, q database.Querier, ref models.MuseumRef, coords *models.Coordinates) (uuid.UUID, error)
	// ResolveArtist resolves a raw artist name. The empty/whitespace-only
	// sentinel yields ok=false and no row: the caller must create no
	// association. Attributes enrich only previously-null fields.
	ResolveArtist(ctx context.Context, q database.Querier, rawName string, attrs models.ArtistAttrs) (uuid.UUID, bool, error)
}

type entityResolver struct {
	places  repositories.PlaceRepository
	artists repositories.ArtistRepository
	logger  *zap.Logger
}

// NewEntityResolver creates an EntityResolver.
func NewEntityResolver(places repositories.PlaceRepository, artists repositories.ArtistRepository, logger *zap.Logger) EntityResolver {
	return &entityResolver{
		places:  places,
		artists: artists,
		logger:  logger.Named("resolver"),
	}
}

var _ EntityResolver = (*entityResolver)(nil)

func (r *entityResolver) ResolveMuseum(ctx context.Context, q database.Querier, ref models.MuseumRef, coords *models.Coordinates) (uuid.UUID, error) {
	country := normalize.CollapseSpace(ref.Country)
	city := normalize.CollapseSpace(ref.City)
	museum := normalize.CollapseSpace(ref.Name)

	if country == "" {
		return uuid.Nil, apperrors.NewResolutionError("country", ref.Country)
	}
	if city == "" {
		return uuid.Nil, apperrors.NewResolutionError("city", ref.City)
	}
	if museum == "" {
		return uuid.Nil, apperrors.NewResolutionError("museum", ref.Name)
	}

	countryID, err := r.places.FindOrCreateCountry(ctx, q, country, nil)
	if err != nil {
		return uuid.Nil, err
	}
	cityID, err := r.places.FindOrCreateCity(ctx, q, city, countryID, coords)
	if err != nil {
		return uuid.Nil, err
	}
	museumID, err := r.places.FindOrCreateMuseum(ctx, q, museum, cityID, normalize.NormalizeURL(ref.URL))
	if err != nil {
		return uuid.Nil, err
	}

	r.logger.Debug("Resolved museum",
		zap.String("museum", museum),
		zap.String("city", city),
		zap.String("country", country),
		zap.String("museum_id", museumID.String()))
	return museumID, nil
}

func (r *entityResolver) ResolveArtist(ctx context.Context, q database.Querier, rawName string, attrs models.ArtistAttrs) (uuid.UUID, bool, error) {
	key := normalize.ArtistKey(rawName)
	if key == "" {
		return uuid.Nil, false, nil
	}

	display := normalize.CollapseSpace(rawName)
	id, err := r.artists.FindOrCreate(ctx, q, display, key)
	if err != nil {
		return uuid.Nil, false, err
	}

	if !attrs.Empty() {
		if err := r.artists.Enrich(ctx, q, id, attrs); err != nil {
			return uuid.Nil, false, err
		}
	}
	return id, true, nil
}
