package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/museumhop/exhibition-engine/pkg/models"
)

func searchCmd() *cobra.Command {
	var city, country, artist string
	var includePast bool

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search exhibitions",
		Long: `Search exhibitions by city, country, or artist. By default only
current and upcoming exhibitions are shown; --all includes finished ones.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), cmd.Root().Version)
			if err != nil {
				return err
			}
			defer a.Close()

			rows, err := a.search.Search(cmd.Context(), models.SearchFilters{
				City:        city,
				Country:     country,
				Artist:      artist,
				CurrentOnly: !includePast,
			})
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				fmt.Println("No exhibitions found.")
				return nil
			}
			renderExhibitions(os.Stdout, rows)
			return nil
		},
	}

	cmd.Flags().StringVar(&city, "city", "", "filter by city name")
	cmd.Flags().StringVar(&country, "country", "", "filter by country name")
	cmd.Flags().StringVar(&artist, "artist", "", "filter by artist name (substring)")
	cmd.Flags().BoolVar(&includePast, "all", false, "include exhibitions that already ended")
	return cmd
}

func citiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cities",
		Short: "List cities with current exhibitions",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), cmd.Root().Version)
			if err != nil {
				return err
			}
			defer a.Close()

			summaries, err := a.search.CitySummaries(cmd.Context())
			if err != nil {
				return err
			}
			if len(summaries) == 0 {
				fmt.Println("No current exhibitions.")
				return nil
			}
			renderCities(os.Stdout, summaries)
			return nil
		},
	}
}

func museumsCmd() *cobra.Command {
	var due bool

	cmd := &cobra.Command{
		Use:   "museums",
		Short: "List museums and their scrape status",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), cmd.Root().Version)
			if err != nil {
				return err
			}
			defer a.Close()

			var listings []*models.MuseumListing
			var err2 error
			if due {
				listings, err2 = a.search.MuseumsDue(cmd.Context(), a.cfg.Ingest.RescrapeWindow())
			} else {
				listings, err2 = a.search.ListMuseums(cmd.Context())
			}
			if err2 != nil {
				return err2
			}
			if len(listings) == 0 {
				fmt.Println("No museums.")
				return nil
			}
			renderMuseums(os.Stdout, listings)
			return nil
		},
	}

	cmd.Flags().BoolVar(&due, "due", false, "only museums due for a rescrape")
	return cmd
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed <museums.csv|museums.yaml>",
		Short: "Sync the museum list from a seed file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), cmd.Root().Version)
			if err != nil {
				return err
			}
			defer a.Close()

			count, err := a.seed.SyncFromFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Synced %d museums from %s\n", count, args[0])
			return nil
		},
	}
}
