package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/museumhop/exhibition-engine/pkg/models"
	"github.com/museumhop/exhibition-engine/pkg/services"
)

func ingestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <records.json>",
		Short: "Ingest scraped exhibition records",
		Long: `Reads a JSON array of raw exhibition records (the scraper's output
format), groups them by museum, and ingests each museum's batch. Batches for
different museums run concurrently; records within a batch stay in scrape
order.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, cmd.Root().Version)
			if err != nil {
				return err
			}
			defer a.Close()

			records, err := readRecords(args[0])
			if err != nil {
				return err
			}
			batches := groupByMuseum(records)
			if len(batches) == 0 {
				fmt.Println("No records to ingest.")
				return nil
			}

			reports := a.coordinator.IngestAll(ctx, batches)
			renderReports(os.Stdout, reports)

			for _, r := range reports {
				if r.Failed() {
					return fmt.Errorf("%d museum batch(es) had errors", countFailed(reports))
				}
			}
			return nil
		},
	}
}

func readRecords(path string) ([]models.RawExhibition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read records file: %w", err)
	}
	var records []models.RawExhibition
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse records file: %w", err)
	}
	return records, nil
}

// groupByMuseum buckets records by (museum, city, country), preserving the
// scrape order within each bucket and the order museums first appear.
func groupByMuseum(records []models.RawExhibition) []services.MuseumBatch {
	index := make(map[models.MuseumRef]int)
	var batches []services.MuseumBatch
	for _, rec := range records {
		ref := models.MuseumRef{
			Name:    rec.MuseumName,
			City:    rec.CityName,
			Country: rec.CountryName,
		}
		i, ok := index[ref]
		if !ok {
			i = len(batches)
			index[ref] = i
			batches = append(batches, services.MuseumBatch{Ref: ref})
		}
		batches[i].Records = append(batches[i].Records, rec)
	}
	return batches
}

func countFailed(reports []*models.IngestionReport) int {
	n := 0
	for _, r := range reports {
		if r.Failed() {
			n++
		}
	}
	return n
}
