package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mkessler/ttr/internal/export"
	"github.com/mkessler/ttr/internal/report"
)

var (
	exportFilters filterFlags
	exportFormat  string
	exportOut     string
)

var exportCmd = &cobra.Command{
	Use:   "export [board]",
	Short: "Export filtered time entries",
	Long: `Export writes one row per filtered time entry. Formats: ` +
		strings.Join(export.Formats, ", ") + `.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

func init() {
	exportFilters.register(exportCmd)
	exportCmd.Flags().StringVar(&exportFormat, "format", export.FormatCSV, "Output format")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "Write to a file instead of stdout")
}

func runExport(cmd *cobra.Command, args []string) error {
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

	spec, err := exportFilters.spec(cmd, cfg, snap)
	if err != nil {
		return err
	}

	processed := report.BuildProcessedCards(snap.Cards, logger)
	filtered := report.Filter(processed, spec)
	rows := export.Rows(filtered, snap)

	out := os.Stdout
	if exportOut != "" {
		f, err := os.Create(exportOut)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	if err := export.Write(out, exportFormat, rows); err != nil {
		return err
	}
	if exportOut != "" {
		fmt.Fprintf(os.Stderr, "Wrote %d entries to %s\n", len(rows), exportOut)
	}
	return nil
}
