package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/museumhop/exhibition-engine/pkg/models"
)

func renderReports(w io.Writer, reports []*models.IngestionReport) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Museum", "Created", "Updated", "Skipped", "Errors"})

	for _, r := range reports {
		table.Append([]string{
			r.Museum,
			strconv.Itoa(r.Created),
			strconv.Itoa(r.Updated),
			strconv.Itoa(r.Skipped),
			strconv.Itoa(len(r.Errors)),
		})
	}
	table.Render()

	for _, r := range reports {
		if !r.Failed() {
			continue
		}
		color.Red("%s:", r.Museum)
		for _, e := range r.Errors {
			color.Red("  - %s", e.Error())
		}
	}
}

func renderExhibitions(w io.Writer, rows []*models.ExhibitionRow) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Title", "Artists", "Museum", "City", "Country", "Start", "End"})

	for _, e := range rows {
		var names []string
		for _, a := range e.Artists {
			if a.Role == models.RoleMain {
				names = append(names, a.Name+" *")
			} else {
				names = append(names, a.Name)
			}
		}
		table.Append([]string{
			e.Title,
			strings.Join(names, ", "),
			e.MuseumName,
			e.CityName,
			e.CountryName,
			dateOrText(e.StartDate, e.StartDateText),
			dateOrText(e.EndDate, e.EndDateText),
		})
	}
	table.Render()
	fmt.Fprintf(w, "%d exhibitions (* = main artist)\n", len(rows))
}

func renderCities(w io.Writer, summaries []models.CitySummary) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"City", "Country", "Exhibitions", "Museums"})

	for _, s := range summaries {
		table.Append([]string{
			s.City,
			s.Country,
			strconv.Itoa(s.ExhibitionCount),
			strconv.Itoa(s.MuseumCount),
		})
	}
	table.Render()
}

func renderMuseums(w io.Writer, listings []*models.MuseumListing) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Museum", "City", "Country", "Status", "Exhibitions", "Last Scraped"})

	for _, m := range listings {
		last := "never"
		if m.LastScraped != nil {
			last = m.LastScraped.Format(time.DateOnly)
		}
		table.Append([]string{
			m.Name,
			m.CityName,
			m.CountryName,
			statusColor(m.ScrapeStatus),
			strconv.Itoa(m.ExhibitionCount),
			last,
		})
	}
	table.Render()
}

// dateOrText prefers the parsed date but falls back to the scraped text, so
// "TBD" and friends stay visible.
func dateOrText(d *time.Time, text string) string {
	if d != nil {
		return d.Format(time.DateOnly)
	}
	return text
}

func statusColor(status string) string {
	switch status {
	case models.ScrapeStatusSuccess:
		return color.GreenString(status)
	case models.ScrapeStatusError:
		return color.RedString(status)
	default:
		return color.YellowString(status)
	}
}
