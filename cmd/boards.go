package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var boardsCmd = &cobra.Command{
	Use:   "boards",
	Short: "List your open Trello boards",
	Args:  cobra.NoArgs,
	RunE:  runBoards,
}

func runBoards(cmd *cobra.Command, args []string) error {
	client, _, err := newClient()
	if err != nil {
		return err
	}

	boards, err := client.Boards(cmd.Context())
	if err != nil {
		return fmt.Errorf("could not reach Trello: %w", err)
	}
	if len(boards) == 0 {
		fmt.Println("No open boards found.")
		return nil
	}

	for _, b := range boards {
		fmt.Printf("%-26s%s\n", b.ID, b.Name)
	}
	return nil
}
