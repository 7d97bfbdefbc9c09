package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mkessler/ttr/internal/report"
	"github.com/mkessler/ttr/internal/timecalc"
)

var (
	reportFilters filterFlags
	reportBy      string
	reportFormat  string
)

var reportCmd = &cobra.Command{
	Use:   "report [board]",
	Short: "Show aggregated time totals for a board",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runReport,
}

func init() {
	reportFilters.register(reportCmd)
	reportCmd.Flags().StringVar(&reportBy, "by", "list", "Grouping: list, card, or member")
	reportCmd.Flags().StringVar(&reportFormat, "format", "md", "Output format: md, csv, json")
}

func runReport(cmd *cobra.Command, args []string) error {
	client, cfg, err := newClient()
	if err != nil {
		return err
	}
	boardID, err := resolveBoard(args, cfg)
	if err != nil {
		return err
	}

	snap, err := client.Snapshot(cmd.Context(), boardID)
	if err != nil {
		return fmt.Errorf("could not fetch board data: %w", err)
	}

	spec, err := reportFilters.spec(cmd, cfg, snap)
	if err != nil {
		return err
	}

	processed := report.BuildProcessedCards(snap.Cards, logger)
	filtered := report.Filter(processed, spec)
	totals := report.Aggregate(filtered, snap)

	var rows []report.Total
	switch reportBy {
	case "list":
		rows = totals.PerList
	case "card":
		rows = totals.PerCard
	case "member":
		rows = totals.PerMember
	default:
		return fmt.Errorf("unknown grouping %q (want list, card, or member)", reportBy)
	}

	switch reportFormat {
	case "csv":
		fmt.Printf("%s,hours\n", reportBy)
		for _, row := range rows {
			fmt.Printf("%s,%.2f\n", csvEscape(row.Name), row.Hours)
		}
	case "json":
		type jsonRow struct {
			Name  string  `json:"name"`
			Hours float64 `json:"hours"`
		}
		out := struct {
			Board string    `json:"board"`
			By    string    `json:"by"`
			Rows  []jsonRow `json:"rows"`
			Total float64   `json:"total_hours"`
		}{Board: snap.Board.Name, By: reportBy, Rows: []jsonRow{}, Total: totals.GrandTotal()}
		for _, row := range rows {
			out.Rows = append(out.Rows, jsonRow{Name: row.Name, Hours: row.Hours})
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding JSON: %w", err)
		}
		fmt.Println(string(data))
	default: // md
		header := fmt.Sprintf("%s — hours by %s", snap.Board.Name, reportBy)
		if reportFilters.week {
			header += ", week " + timecalc.ISOWeekLabel(time.Now().UTC())
		}
		fmt.Println(header)
		fmt.Println("--------------------------------------------")
		if len(rows) == 0 {
			fmt.Println("No matching time entries.")
			return nil
		}
		for _, row := range rows {
			suffix := ""
			if reportBy == "card" && row.Estimated > 0 {
				suffix = fmt.Sprintf("  (est %s)", timecalc.FormatHours(row.Estimated))
			}
			fmt.Printf("%-32s%s%s\n", row.Name, timecalc.FormatHours(row.Hours), suffix)
		}
		fmt.Println("--------------------------------------------")
		fmt.Printf("%-32s%s\n", "Total", timecalc.FormatHours(totals.GrandTotal()))
	}

	return nil
}

// csvEscape wraps a field in quotes if it contains a comma, quote, or newline.
func csvEscape(s string) string {
	needsQuote := false
	for _, c := range s {
		if c == ',' || c == '"' || c == '\n' || c == '\r' {
			needsQuote = true
			break
		}
	}
	if !needsQuote {
		return s
	}
	// Escape internal double quotes by doubling them.
	escaped := ""
	for _, c := range s {
		if c == '"' {
			escaped += "\""
		}
		escaped += string(c)
	}
	return `"` + escaped + `"`
}
