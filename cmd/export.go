package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rlstats/go-rl-metrics/internal/analysis"
	"github.com/rlstats/go-rl-metrics/internal/detect"
	"github.com/rlstats/go-rl-metrics/internal/ingest"
	"github.com/rlstats/go-rl-metrics/internal/normalize"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export <frames.json>",
	Short: "Export the full analysis report as JSON",
	Long: `Runs the full analysis pipeline on a decoded replay frame dump and emits
the complete report as JSON: per-category event lists, the merged timeline,
and per-player/per-team statistics including heatmap grids.

The export runs from the dump rather than the database so it carries the
full fixed-schema report; the database stores the tabular subset only.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output file path (default: stdout)")
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	thr, err := loadThresholds()
	if err != nil {
		return fmt.Errorf("load thresholds: %w", err)
	}

	raw, err := ingest.Load(args[0])
	if err != nil {
		return fmt.Errorf("load dump: %w", err)
	}
	m := normalize.Normalize(log, thr, raw)

	ev, err := detect.NewRegistry(log, thr).Run(ctx, m)
	if err != nil {
		return fmt.Errorf("detect events: %w", err)
	}
	timeline := detect.AssembleTimeline(ev)

	rep, err := analysis.New(log, thr).BuildReport(ctx, m, ev, timeline)
	if err != nil {
		return fmt.Errorf("build report: %w", err)
	}

	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}

	if exportOut == "" {
		fmt.Println(string(data))
		return nil
	}
	if err := os.WriteFile(exportOut, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write %s: %w", exportOut, err)
	}
	fmt.Fprintf(os.Stderr, "Wrote %s\n", exportOut)
	return nil
}
