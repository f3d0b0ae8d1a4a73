// Package cli wires the engine into an operator-facing command line. The
// scraping agent itself lives outside this repository: these commands
// consume its JSON output and query the schema it feeds.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/museumhop/exhibition-engine/pkg/config"
	"github.com/museumhop/exhibition-engine/pkg/database"
	"github.com/museumhop/exhibition-engine/pkg/logging"
	"github.com/museumhop/exhibition-engine/pkg/repositories"
	"github.com/museumhop/exhibition-engine/pkg/services"
	"github.com/museumhop/exhibition-engine/pkg/services/workpool"
)

// app holds everything a command needs, built once per invocation.
type app struct {
	cfg         *config.Config
	logger      *zap.Logger
	db          *database.DB
	resolver    services.EntityResolver
	upserter    services.ExhibitionUpserter
	coordinator services.IngestionCoordinator
	search      services.SearchService
	seed        services.SeedService
}

func newApp(ctx context.Context, version string) (*app, error) {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load(version)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	db, err := database.NewConnection(ctx, &database.Config{
		URL:            cfg.Database.ConnectionString(),
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		return nil, err
	}

	places := repositories.NewPlaceRepository()
	artists := repositories.NewArtistRepository()
	exhibitions := repositories.NewExhibitionRepository()

	resolver := services.NewEntityResolver(places, artists, logger)
	upserter := services.NewExhibitionUpserter(db, resolver, exhibitions, cfg.Ingest.LeadArtistMain, logger)
	pool := workpool.New(workpool.Config{MaxConcurrent: cfg.Ingest.Workers}, logger)

	return &app{
		cfg:         cfg,
		logger:      logger,
		db:          db,
		resolver:    resolver,
		upserter:    upserter,
		coordinator: services.NewIngestionCoordinator(db, resolver, upserter, places, pool, logger),
		search:      services.NewSearchService(db, exhibitions, places, logger),
		seed:        services.NewSeedService(db, resolver, logger),
	}, nil
}

func (a *app) Close() {
	a.db.Close()
	_ = a.logger.Sync()
}

// Execute builds the root command and runs it.
func Execute(version string) {
	rootCmd := &cobra.Command{
		Use:     "exhibitd",
		Short:   "Exhibition ingestion engine",
		Version: version,
		Long: `exhibitd normalizes scraped museum exhibition listings into a
deduplicated relational store and answers travel-planning queries over it.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(ingestCmd())
	rootCmd.AddCommand(searchCmd())
	rootCmd.AddCommand(citiesCmd())
	rootCmd.AddCommand(museumsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
