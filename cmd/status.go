package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mkessler/ttr/internal/config"
	"github.com/mkessler/ttr/internal/storage"
	"github.com/mkessler/ttr/internal/timecalc"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the running timer, if any",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	base, err := config.BaseDir()
	if err != nil {
		return err
	}

	timer, err := storage.LoadTimer(base)
	if err != nil {
		return err
	}
	if timer == nil {
		fmt.Println("No timer running.")
		return nil
	}

	elapsed := int64(time.Since(timer.Start).Seconds())
	fmt.Printf("Timer running on %q since %s (%s)\n",
		timer.CardName,
		timer.Start.Format("15:04:05"),
		timecalc.FormatDuration(elapsed))
	return nil
}
