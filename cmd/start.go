package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mkessler/ttr/internal/config"
	"github.com/mkessler/ttr/internal/model"
	"github.com/mkessler/ttr/internal/storage"
)

var (
	startComment string
	startMember  string
)

var startCmd = &cobra.Command{
	Use:   "start <card-id>",
	Short: "Start a timer on a card",
	Args:  cobra.ExactArgs(1),
	RunE:  runStart,
}

func init() {
	startCmd.Flags().StringVar(&startComment, "comment", "", "Comment for the logged entry")
	startCmd.Flags().StringVar(&startMember, "member", "", "Member id to log for (default: you)")
}

func runStart(cmd *cobra.Command, args []string) error {
	cardID := args[0]
	now := time.Now()

	base, err := config.BaseDir()
	if err != nil {
		return err
	}
	client, _, err := newClient()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	// Check for an existing active timer and auto-stop it.
	active, err := storage.LoadTimer(base)
	if err != nil {
		return err
	}
	if active != nil {
		fmt.Fprintf(os.Stderr, "Warning: auto-stopping active timer on card %q\n", active.CardName)
		if err := stopTimer(ctx, client, base, *active, "", now); err != nil {
			return err
		}
	}

	card, err := client.Card(ctx, cardID)
	if err != nil {
		return fmt.Errorf("could not fetch card: %w", err)
	}

	memberID := startMember
	if memberID == "" {
		me, err := client.Me(ctx)
		if err != nil {
			return fmt.Errorf("could not determine your member id: %w", err)
		}
		memberID = me.ID
	}

	timer := model.ActiveTimer{
		CardID:   card.ID,
		CardName: card.Name,
		BoardID:  card.BoardID,
		MemberID: memberID,
		Comment:  startComment,
		Start:    now,
	}
	if err := storage.SaveTimer(base, timer); err != nil {
		return err
	}

	fmt.Printf("Started timer on %q at %s\n", card.Name, now.Format("15:04:05"))
	return nil
}
