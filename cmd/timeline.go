package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rlstats/go-rl-metrics/internal/report"
	"github.com/rlstats/go-rl-metrics/internal/storage"
)

var timelineType string

var timelineCmd = &cobra.Command{
	Use:   "timeline <hash-prefix>",
	Short: "Print the merged event timeline for a replay",
	Args:  cobra.ExactArgs(1),
	RunE:  runTimeline,
}

func init() {
	timelineCmd.Flags().StringVar(&timelineType, "type", "", "only show events of this type (e.g. GOAL, DEMO)")
}

func runTimeline(cmd *cobra.Command, args []string) error {
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	replay, err := db.GetReplayByPrefix(args[0])
	if err != nil {
		return err
	}
	if replay == nil {
		return fmt.Errorf("replay not found: %s", args[0])
	}

	timeline, err := db.GetTimeline(replay.ReplayHash)
	if err != nil {
		return err
	}
	if timelineType != "" {
		filtered := timeline[:0]
		for _, e := range timeline {
			if string(e.Type) == timelineType {
				filtered = append(filtered, e)
			}
		}
		timeline = filtered
	}
	if len(timeline) == 0 {
		fmt.Fprintln(os.Stdout, "(no events)")
		return nil
	}

	players, err := db.GetPlayerStats(replay.ReplayHash)
	if err != nil {
		return err
	}
	report.PrintMatchSummary(os.Stdout, *replay)
	report.PrintTimeline(os.Stdout, timeline, players)
	return nil
}
