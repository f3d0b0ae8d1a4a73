package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/museumhop/exhibition-engine/pkg/database"
	"github.com/museumhop/exhibition-engine/pkg/models"
	"github.com/museumhop/exhibition-engine/pkg/repositories"
	"github.com/museumhop/exhibition-engine/pkg/services/workpool"
)

// MuseumBatch is one museum's worth of raw records in scrape order.
type MuseumBatch struct {
	Ref     models.MuseumRef
	Records []models.RawExhibition
}

// IngestionCoordinator drives ingestion: one museum's records strictly in
// order (later records for the same upsert key are corrections of earlier
// ones), different museums concurrently under a bounded worker pool.
type IngestionCoordinator interface {
	// Ingest processes one museum's batch. Per-record failures are recorded
	// and the batch continues; the report is never nil.
	Ingest(ctx context.Context, ref models.MuseumRef, records []models.RawExhibition) *models.IngestionReport
	// IngestAll runs one worker per museum, bounded by the configured pool
	// size. A museum's failure never aborts its siblings.
	IngestAll(ctx context.Context, batches []MuseumBatch) []*models.IngestionReport
}

type ingestionCoordinator struct {
	q        database.Querier
	resolver EntityResolver
	upserter ExhibitionUpserter
	places   repositories.PlaceRepository
	pool     *workpool.Pool
	logger   *zap.Logger
}

// NewIngestionCoordinator creates an IngestionCoordinator.
func NewIngestionCoordinator(q database.Querier, resolver EntityResolver, upserter ExhibitionUpserter, places repositories.PlaceRepository, pool *workpool.Pool, logger *zap.Logger) IngestionCoordinator {
	return &ingestionCoordinator{
		q:        q,
		resolver: resolver,
		upserter: upserter,
		places:   places,
		pool:     pool,
		logger:   logger.Named("coordinator"),
	}
}

var _ IngestionCoordinator = (*ingestionCoordinator)(nil)

func (c *ingestionCoordinator) Ingest(ctx context.Context, ref models.MuseumRef, records []models.RawExhibition) *models.IngestionReport {
	report := &models.IngestionReport{
		Museum:    ref.Name,
		StartedAt: time.Now(),
	}
	defer func() { report.FinishedAt = time.Now() }()

	museumID, err := c.resolver.ResolveMuseum(ctx, c.q, ref, nil)
	if err != nil {
		// Without a museum row there is nothing to attach records or
		// bookkeeping to.
		report.Errors = append(report.Errors, models.RecordError{Title: ref.Name, Err: err})
		c.logger.Error("Museum resolution failed",
			zap.String("museum", ref.Name),
			zap.Error(err))
		return report
	}

	scrapedAt := time.Now()
	for i, rec := range records {
		// Cooperative cancellation between records: a record already inside
		// its transaction completes or rolls back, never half-lands.
		if ctx.Err() != nil {
			report.Skipped += len(records) - i
			break
		}

		_, created, err := c.upserter.Upsert(ctx, museumID, rec, scrapedAt)
		if err != nil {
			report.Errors = append(report.Errors, models.RecordError{
				Title: rec.Title,
				URL:   rec.URL,
				Err:   err,
			})
			c.logger.Warn("Record failed",
				zap.String("museum", ref.Name),
				zap.String("title", rec.Title),
				zap.Error(err))
			continue
		}
		if created {
			report.Created++
		} else {
			report.Updated++
		}
	}

	status := models.ScrapeStatusSuccess
	var errMsg *string
	if report.Failed() {
		status = models.ScrapeStatusError
		msg := report.Errors[0].Error()
		errMsg = &msg
	}
	if err := c.places.UpdateScrapeResult(ctx, c.q, museumID, status, report.Processed(), errMsg); err != nil {
		report.Errors = append(report.Errors, models.RecordError{Title: ref.Name, Err: err})
		c.logger.Error("Bookkeeping update failed",
			zap.String("museum", ref.Name),
			zap.Error(err))
	}

	c.logger.Info("Batch finished",
		zap.String("museum", ref.Name),
		zap.Int("created", report.Created),
		zap.Int("updated", report.Updated),
		zap.Int("skipped", report.Skipped),
		zap.Int("errors", len(report.Errors)))
	return report
}

func (c *ingestionCoordinator) IngestAll(ctx context.Context, batches []MuseumBatch) []*models.IngestionReport {
	items := make([]workpool.Item[*models.IngestionReport], 0, len(batches))
	for _, batch := range batches {
		items = append(items, workpool.Item[*models.IngestionReport]{
			ID: batch.Ref.Name,
			Execute: func(ctx context.Context) (*models.IngestionReport, error) {
				return c.Ingest(ctx, batch.Ref, batch.Records), nil
			},
		})
	}

	results := workpool.Process(ctx, c.pool, items)
	reports := make([]*models.IngestionReport, 0, len(results))
	for _, res := range results {
		if res.Value != nil {
			reports = append(reports, res.Value)
			continue
		}
		// The pool was cancelled before this museum started.
		reports = append(reports, &models.IngestionReport{
			Museum: res.ID,
			Errors: []models.RecordError{{Title: res.ID, Err: res.Err}},
		})
	}
	return reports
}
