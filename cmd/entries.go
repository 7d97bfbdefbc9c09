package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mkessler/ttr/internal/payload"
	"github.com/mkessler/ttr/internal/timecalc"
)

var entriesDelete int

var entriesCmd = &cobra.Command{
	Use:   "entries <card-id>",
	Short: "Show a card's logged time entries",
	Args:  cobra.ExactArgs(1),
	RunE:  runEntries,
}

func init() {
	entriesCmd.Flags().IntVar(&entriesDelete, "delete", 0, "Delete the n-th entry (1-based, as listed)")
}

func runEntries(cmd *cobra.Command, args []string) error {
	cardID := args[0]

	client, _, err := newClient()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	card, err := client.Card(ctx, cardID)
	if err != nil {
		return fmt.Errorf("could not fetch card: %w", err)
	}

	p, err := payload.FromCard(card)
	if err != nil {
		logger.Warn("card has a malformed time payload",
			zap.String("card_id", card.ID),
			zap.String("raw", payload.RawValue(card)),
			zap.Error(err))
	}

	if entriesDelete > 0 {
		updated, err := payload.RemoveEntry(p, entriesDelete-1)
		if err != nil {
			return err
		}
		value, err := payload.Encode(updated)
		if err != nil {
			return err
		}
		if err := client.PutCardData(ctx, cardID, value); err != nil {
			return err
		}
		fmt.Printf("Deleted entry %d from %q\n", entriesDelete, card.Name)
		return nil
	}

	fmt.Printf("%s\n", card.Name)
	if p.EstimatedTime > 0 {
		fmt.Printf("Estimated: %s\n", timecalc.FormatHours(float64(p.EstimatedTime)/60))
	}
	if len(p.TimeEntries) == 0 {
		fmt.Println("No time entries.")
		return nil
	}

	for i, e := range p.TimeEntries {
		who := e.MemberID
		if e.Username != "" {
			who = e.Username
		}
		if who == "" {
			who = "unassigned"
		}
		line := fmt.Sprintf("%2d. %-12s %-20s %s",
			i+1, e.Date, who, timecalc.FormatHours(timecalc.DecimalHours(e.Hours, e.Minutes)))
		if e.Description != "" {
			line += "  " + e.Description
		}
		fmt.Println(line)
	}
	return nil
}
