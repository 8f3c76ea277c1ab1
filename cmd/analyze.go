package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/rlstats/go-rl-metrics/internal/analysis"
	"github.com/rlstats/go-rl-metrics/internal/detect"
	"github.com/rlstats/go-rl-metrics/internal/ingest"
	"github.com/rlstats/go-rl-metrics/internal/model"
	"github.com/rlstats/go-rl-metrics/internal/normalize"
	"github.com/rlstats/go-rl-metrics/internal/report"
	"github.com/rlstats/go-rl-metrics/internal/storage"
)

var (
	focusPlayerID string
	analyzeForce  bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <frames.json>",
	Short: "Analyze a decoded replay frame dump and store metrics",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&focusPlayerID, "player", "", "focus player id (marks the player's rows)")
	analyzeCmd.Flags().BoolVar(&analyzeForce, "force", false, "re-analyze even if the replay is already stored")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	dumpPath := args[0]
	ctx := cmd.Context()

	thr, err := loadThresholds()
	if err != nil {
		return fmt.Errorf("load thresholds: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return fmt.Errorf("create db dir: %w", err)
	}
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	fmt.Fprintf(os.Stdout, "Loading %s...\n", dumpPath)
	raw, err := ingest.Load(dumpPath)
	if err != nil {
		return fmt.Errorf("load dump: %w", err)
	}

	if !analyzeForce {
		exists, err := db.ReplayExists(raw.Hash)
		if err != nil {
			return fmt.Errorf("check replay: %w", err)
		}
		if exists {
			fmt.Fprintf(os.Stdout, "Replay %s already stored — showing cached results.\n\n", raw.Hash[:12])
			return showByHash(db, raw.Hash)
		}
	}

	m := normalize.Normalize(log, thr, raw)

	reg := detect.NewRegistry(log, thr)
	ev, err := reg.Run(ctx, m)
	if err != nil {
		return fmt.Errorf("detect events: %w", err)
	}
	timeline := detect.AssembleTimeline(ev)

	an := analysis.New(log, thr)
	rep, err := an.BuildReport(ctx, m, ev, timeline)
	if err != nil {
		return fmt.Errorf("build report: %w", err)
	}

	summary := buildSummary(m, ev)
	if err := db.InsertReplay(summary); err != nil {
		return fmt.Errorf("insert replay: %w", err)
	}
	if err := db.InsertPlayerStats(m.ReplayHash, rep.Players); err != nil {
		return fmt.Errorf("insert player stats: %w", err)
	}
	if err := db.InsertTeamStats(m.ReplayHash, rep.Teams); err != nil {
		return fmt.Errorf("insert team stats: %w", err)
	}
	if err := db.InsertTimeline(m.ReplayHash, timeline); err != nil {
		return fmt.Errorf("insert timeline: %w", err)
	}

	report.PrintMatchSummary(os.Stdout, summary)
	report.PrintCoreTable(rep.Players, focusPlayerID)
	report.PrintBoostTable(os.Stdout, rep.Players, focusPlayerID)
	report.PrintMovementTable(os.Stdout, rep.Players, focusPlayerID)
	report.PrintPositioningTable(os.Stdout, rep.Players, focusPlayerID)
	report.PrintKickoffTable(os.Stdout, rep.Players, focusPlayerID)
	report.PrintTeamTable(os.Stdout, rep.Teams)
	return nil
}

// buildSummary derives the stored replay record. Header scores win over
// counted goal events when present.
func buildSummary(m *model.Match, ev *model.EventSet) model.MatchSummary {
	blue, orange := m.Header.BlueScore, m.Header.OrangeScore
	if blue == 0 && orange == 0 {
		for _, g := range ev.Goals {
			switch g.Team {
			case model.TeamBlue:
				blue++
			case model.TeamOrange:
				orange++
			}
		}
	}
	return model.MatchSummary{
		ReplayHash:   m.ReplayHash,
		RunID:        uuid.NewString(),
		MapName:      m.Header.MapName,
		AnalyzedAt:   time.Now().UTC().Format(time.RFC3339),
		PlaylistID:   m.Header.PlaylistID,
		TeamSize:     m.Header.TeamSize,
		BlueScore:    blue,
		OrangeScore:  orange,
		MatchLengthS: m.DurationS(),
		FPS:          m.FPS,
	}
}

func showByHash(db *storage.DB, hash string) error {
	replay, err := db.GetReplayByPrefix(hash)
	if err != nil {
		return err
	}
	if replay == nil {
		return fmt.Errorf("replay not found: %s", hash)
	}
	players, err := db.GetPlayerStats(replay.ReplayHash)
	if err != nil {
		return err
	}
	teams, err := db.GetTeamStats(replay.ReplayHash)
	if err != nil {
		return err
	}
	report.PrintMatchSummary(os.Stdout, *replay)
	report.PrintCoreTable(players, focusPlayerID)
	report.PrintBoostTable(os.Stdout, players, focusPlayerID)
	report.PrintMovementTable(os.Stdout, players, focusPlayerID)
	report.PrintPositioningTable(os.Stdout, players, focusPlayerID)
	report.PrintKickoffTable(os.Stdout, players, focusPlayerID)
	report.PrintTeamTable(os.Stdout, teams)
	return nil
}
