package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rlstats/go-rl-metrics/internal/storage"
)

var showCmd = &cobra.Command{
	Use:   "show <hash-prefix>",
	Short: "Show stored metrics for a replay",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	showCmd.Flags().StringVar(&focusPlayerID, "player", "", "focus player id (marks the player's rows)")
}

func runShow(cmd *cobra.Command, args []string) error {
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	return showByHash(db, args[0])
}
