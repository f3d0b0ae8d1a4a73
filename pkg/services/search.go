package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/museumhop/exhibition-engine/pkg/database"
	"github.com/museumhop/exhibition-engine/pkg/models"
	"github.com/museumhop/exhibition-engine/pkg/repositories"
)

// SearchService answers travel-planning queries over the persisted schema.
type SearchService interface {
	Search(ctx context.Context, filters models.SearchFilters) ([]*models.ExhibitionRow, error)
	CitySummaries(ctx context.Context) ([]models.CitySummary, error)
	ListMuseums(ctx context.Context) ([]*models.MuseumListing, error)
	// MuseumsDue lists museums never scraped, or last scraped more than
	// staleAfter ago.
	MuseumsDue(ctx context.Context, staleAfter time.Duration) ([]*models.MuseumListing, error)
}

type searchService struct {
	q           database.Querier
	exhibitions repositories.ExhibitionRepository
	places      repositories.PlaceRepository
	logger      *zap.Logger
}

// NewSearchService creates a SearchService.
func NewSearchService(q database.Querier, exhibitions repositories.ExhibitionRepository, places repositories.PlaceRepository, logger *zap.Logger) SearchService {
	return &searchService{
		q:           q,
		exhibitions: exhibitions,
		places:      places,
		logger:      logger.Named("search"),
	}
}

var _ SearchService = (*searchService)(nil)

func (s *searchService) Search(ctx context.Context, filters models.SearchFilters) ([]*models.ExhibitionRow, error) {
	rows, err := s.exhibitions.Search(ctx, s.q, filters)
	if err != nil {
		s.logger.Error("Search failed", zap.Error(err))
		return nil, err
	}
	return rows, nil
}

func (s *searchService) CitySummaries(ctx context.Context) ([]models.CitySummary, error) {
	summaries, err := s.exhibitions.CitySummaries(ctx, s.q)
	if err != nil {
		s.logger.Error("City summary query failed", zap.Error(err))
		return nil, err
	}
	return summaries, nil
}

func (s *searchService) ListMuseums(ctx context.Context) ([]*models.MuseumListing, error) {
	return s.places.ListMuseums(ctx, s.q)
}

func (s *searchService) MuseumsDue(ctx context.Context, staleAfter time.Duration) ([]*models.MuseumListing, error) {
	return s.places.MuseumsDue(ctx, s.q, time.Now().Add(-staleAfter))
}
