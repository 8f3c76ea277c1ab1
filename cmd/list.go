package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rlstats/go-rl-metrics/internal/storage"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all stored replays",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	replays, err := db.ListReplays()
	if err != nil {
		return fmt.Errorf("list replays: %w", err)
	}
	if len(replays) == 0 {
		fmt.Fprintln(os.Stdout, "No replays stored yet. Run 'rlmetrics analyze <frames.json>' to add one.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-14s  %-16s  %-20s  %5s  %6s  %8s\n",
		"HASH", "MAP", "ANALYZED", "MODE", "SCORE", "LENGTH")
	fmt.Fprintf(os.Stdout, "%-14s  %-16s  %-20s  %5s  %6s  %8s\n",
		"──────────────", "────────────────", "────────────────────", "─────", "──────", "────────")
	for _, r := range replays {
		score := fmt.Sprintf("%d-%d", r.BlueScore, r.OrangeScore)
		mode := fmt.Sprintf("%dv%d", r.TeamSize, r.TeamSize)
		fmt.Fprintf(os.Stdout, "%-14s  %-16s  %-20s  %5s  %6s  %7.0fs\n",
			r.ReplayHash[:12], r.MapName, r.AnalyzedAt, mode, score, r.MatchLengthS)
	}
	return nil
}
