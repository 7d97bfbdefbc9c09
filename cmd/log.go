package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mkessler/ttr/internal/model"
	"github.com/mkessler/ttr/internal/payload"
	"github.com/mkessler/ttr/internal/timecalc"
	"github.com/mkessler/ttr/internal/trello"
)

var (
	logHours   int
	logMinutes int
	logDate    string
	logComment string
	logMember  string
)

var logCmd = &cobra.Command{
	Use:   "log <card-id>",
	Short: "Log a time entry on a card",
	Args:  cobra.ExactArgs(1),
	RunE:  runLog,
}

func init() {
	logCmd.Flags().IntVar(&logHours, "hours", 0, "Hours worked")
	logCmd.Flags().IntVar(&logMinutes, "minutes", 0, "Minutes worked (0-59)")
	logCmd.Flags().StringVar(&logDate, "date", "", "Entry date (YYYY-MM-DD, default today)")
	logCmd.Flags().StringVar(&logComment, "comment", "", "What the time was spent on")
	logCmd.Flags().StringVar(&logMember, "member", "", "Member id to log for (default: you)")
}

func runLog(cmd *cobra.Command, args []string) error {
	cardID := args[0]

	if logHours < 0 {
		return fmt.Errorf("hours must not be negative")
	}
	if logMinutes < 0 || logMinutes > 59 {
		return fmt.Errorf("minutes must be between 0 and 59")
	}
	if logHours == 0 && logMinutes == 0 {
		return fmt.Errorf("nothing to log: set --hours and/or --minutes")
	}

	date := time.Now().Format(timecalc.DayLayout)
	if logDate != "" {
		parsed, err := timecalc.ParseDay(logDate)
		if err != nil {
			return err
		}
		date = parsed.Format(timecalc.DayLayout)
	}

	client, _, err := newClient()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	memberID := logMember
	if memberID == "" {
		me, err := client.Me(ctx)
		if err != nil {
			return fmt.Errorf("could not determine your member id: %w", err)
		}
		memberID = me.ID
	}

	entry := model.TimeEntry{
		ID:          uuid.NewString(),
		Date:        date,
		Hours:       logHours,
		Minutes:     logMinutes,
		Description: logComment,
		MemberID:    memberID,
	}

	card, err := appendEntry(ctx, client, cardID, entry)
	if err != nil {
		return err
	}

	fmt.Printf("Logged %s on %q (%s)\n",
		timecalc.FormatHours(timecalc.DecimalHours(logHours, logMinutes)), card.Name, date)
	return nil
}

// appendEntry runs the read-modify-write cycle against a card's time
// payload. Concurrent writers are not coordinated; the last write wins.
func appendEntry(ctx context.Context, client *trello.Client, cardID string, entry model.TimeEntry) (model.Card, error) {
	card, err := client.Card(ctx, cardID)
	if err != nil {
		return model.Card{}, fmt.Errorf("could not fetch card: %w", err)
	}

	p, err := payload.FromCard(card)
	if err != nil {
		// The card's stored value is unreadable; appending rebuilds it
		// from scratch, so warn before the old value is replaced.
		logger.Warn("replacing malformed card time payload",
			zap.String("card_id", card.ID),
			zap.String("raw", payload.RawValue(card)),
			zap.Error(err))
	}

	value, err := payload.Encode(payload.AppendEntry(p, entry))
	if err != nil {
		return model.Card{}, err
	}
	if err := client.PutCardData(ctx, cardID, value); err != nil {
		return model.Card{}, err
	}
	return card, nil
}
