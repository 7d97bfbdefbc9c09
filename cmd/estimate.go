package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mkessler/ttr/internal/payload"
	"github.com/mkessler/ttr/internal/timecalc"
)

var estimateClear bool

var estimateCmd = &cobra.Command{
	Use:   "estimate <card-id> [minutes]",
	Short: "Set or clear a card's estimated time",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runEstimate,
}

func init() {
	estimateCmd.Flags().BoolVar(&estimateClear, "clear", false, "Remove the estimate")
}

func runEstimate(cmd *cobra.Command, args []string) error {
	cardID := args[0]

	var minutes int
	if !estimateClear {
		if len(args) < 2 {
			return fmt.Errorf("missing minutes (or pass --clear)")
		}
		var err error
		minutes, err = strconv.Atoi(args[1])
		if err != nil || minutes <= 0 {
			return fmt.Errorf("minutes must be a positive integer, got %q", args[1])
		}
	}

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
		logger.Warn("replacing malformed card time payload",
			zap.String("card_id", card.ID),
			zap.String("raw", payload.RawValue(card)),
			zap.Error(err))
	}

	if estimateClear {
		p = payload.ClearEstimate(p)
	} else {
		// The estimate is a single value, overwritten wholesale.
		p = payload.SetEstimate(p, minutes)
	}

	value, err := payload.Encode(p)
	if err != nil {
		return err
	}
	if err := client.PutCardData(ctx, cardID, value); err != nil {
		return err
	}

	if estimateClear {
		fmt.Printf("Cleared estimate on %q\n", card.Name)
	} else {
		fmt.Printf("Estimated %s for %q\n",
			timecalc.FormatHours(float64(minutes)/60), card.Name)
	}
	return nil
}
