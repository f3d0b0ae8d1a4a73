package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/museumhop/exhibition-engine/pkg/database"
	"github.com/museumhop/exhibition-engine/pkg/models"
)

// SeedService loads museum seed lists into the hierarchy. CSV files use the
// columns city,country,museum,url (header row required); YAML files hold a
// list of {museum, city, country, url} entries. Seeding is idempotent: rows
// resolve through the same find-or-create path ingestion uses.
type SeedService interface {
	SyncFromFile(ctx context.Context, path string) (int, error)
}

type seedService struct {
	q        database.Querier
	resolver EntityResolver
	logger   *zap.Logger
}

// NewSeedService creates a SeedService.
func NewSeedService(q database.Querier, resolver EntityResolver, logger *zap.Logger) SeedService {
	return &seedService{
		q:        q,
		resolver: resolver,
		logger:   logger.Named("seed"),
	}
}

var _ SeedService = (*seedService)(nil)

func (s *seedService) SyncFromFile(ctx context.Context, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open seed file: %w", err)
	}
	defer f.Close()

	var refs []models.MuseumRef
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		refs, err = readCSV(f)
	case ".yaml", ".yml":
		refs, err = readYAML(f)
	default:
		return 0, fmt.Errorf("unsupported seed file extension %q", ext)
	}
	if err != nil {
		return 0, err
	}

	count := 0
	for _, ref := range refs {
		if ctx.Err() != nil {
			return count, ctx.Err()
		}
		if _, err := s.resolver.ResolveMuseum(ctx, s.q, ref, nil); err != nil {
			s.logger.Warn("Skipping seed entry",
				zap.String("museum", ref.Name),
				zap.Error(err))
			continue
		}
		count++
	}

	s.logger.Info("Seed sync finished",
		zap.String("file", path),
		zap.Int("museums", count))
	return count, nil
}

func readCSV(r io.Reader) ([]models.MuseumRef, error) {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"city", "country", "museum"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("seed CSV is missing column %q", required)
		}
	}

	var refs []models.MuseumRef
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row: %w", err)
		}
		ref := models.MuseumRef{
			Name:    row[col["museum"]],
			City:    row[col["city"]],
			Country: row[col["country"]],
		}
		if i, ok := col["url"]; ok && i < len(row) {
			ref.URL = row[i]
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

func readYAML(r io.Reader) ([]models.MuseumRef, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	var refs []models.MuseumRef
	if err := yaml.Unmarshal(data, &refs); err != nil {
		return nil, fmt.Errorf("failed to parse seed YAML: %w", err)
	}
	return refs, nil
}
