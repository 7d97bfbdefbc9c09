package cmd

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mkessler/ttr/internal/config"
	"github.com/mkessler/ttr/internal/model"
	"github.com/mkessler/ttr/internal/storage"
	"github.com/mkessler/ttr/internal/timecalc"
	"github.com/mkessler/ttr/internal/trello"
)

var stopComment string

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running timer and log the elapsed time",
	Args:  cobra.NoArgs,
	RunE:  runStop,
}

func init() {
	stopCmd.Flags().StringVar(&stopComment, "comment", "", "Append a comment to the logged entry")
}

func runStop(cmd *cobra.Command, args []string) error {
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

	client, _, err := newClient()
	if err != nil {
		return err
	}
	return stopTimer(cmd.Context(), client, base, *timer, stopComment, time.Now())
}

// stopTimer converts the timer's elapsed time into a logged entry on its
// card (rounded up to a whole minute) and clears the local state.
func stopTimer(ctx context.Context, client *trello.Client, base string, timer model.ActiveTimer, comment string, stopTime time.Time) error {
	elapsed := stopTime.Sub(timer.Start)
	totalMinutes := int(math.Ceil(elapsed.Minutes()))
	if totalMinutes < 1 {
		totalMinutes = 1
	}

	if comment == "" {
		comment = timer.Comment
	} else if timer.Comment != "" {
		comment = timer.Comment + "\n" + comment
	}

	entry := model.TimeEntry{
		ID:          uuid.NewString(),
		Date:        timer.Start.Format(time.RFC3339),
		Hours:       totalMinutes / 60,
		Minutes:     totalMinutes % 60,
		Description: comment,
		MemberID:    timer.MemberID,
	}

	card, err := appendEntry(ctx, client, timer.CardID, entry)
	if err != nil {
		return err
	}
	if err := storage.ClearTimer(base); err != nil {
		return err
	}

	fmt.Printf("Stopped timer on %q, logged %s\n",
		card.Name, timecalc.FormatHours(timecalc.DecimalHours(entry.Hours, entry.Minutes)))
	return nil
}
