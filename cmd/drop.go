package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rlstats/go-rl-metrics/internal/storage"
)

var dropForce bool

// dropCmd deletes one stored replay, or the whole database file.
var dropCmd = &cobra.Command{
	Use:   "drop [hash-prefix]",
	Short: "Delete a stored replay, or the whole database",
	Long: `With a hash prefix, deletes that replay and its stats from the database.
Without arguments, permanently deletes the SQLite database file. All stored
replay data will be lost. Re-analyze your dumps afterwards to rebuild.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDrop,
}

func init() {
	dropCmd.Flags().BoolVarP(&dropForce, "force", "f", false, "skip confirmation prompt")
}

func runDrop(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		return dropOne(args[0])
	}

	if !dropForce {
		fmt.Fprintf(os.Stderr, "This will permanently delete: %s\n", dbPath)
		fmt.Fprintf(os.Stderr, "Re-run with --force to confirm.\n")
		return nil
	}
	if err := os.Remove(dbPath); err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintln(os.Stdout, "Database does not exist, nothing to drop.")
			return nil
		}
		return fmt.Errorf("remove database: %w", err)
	}
	fmt.Fprintf(os.Stdout, "Deleted: %s\n", dbPath)
	return nil
}

func dropOne(prefix string) error {
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	replay, err := db.GetReplayByPrefix(prefix)
	if err != nil {
		return err
	}
	if replay == nil {
		return fmt.Errorf("replay not found: %s", prefix)
	}
	if err := db.DropReplay(replay.ReplayHash); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Dropped replay %s\n", replay.ReplayHash[:12])
	return nil
}
