package cmd

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/navstrip/internal/engine"
	"github.com/papapumpkin/navstrip/internal/ledger"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past runs, or the changes of one run",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().String("run", "", "show the per-file changes of this run ID")
	historyCmd.Flags().Int("limit", 20, "maximum number of runs to list")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	printer := newPrinter(cmd, cfg)

	path := filepath.Join(engine.New(cfg, nil).StateDir(), ledger.FileName)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		printer.History(nil)
		return nil
	}

	ctx := cmd.Context()
	l, err := ledger.Open(ctx, path)
	if err != nil {
		return err
	}
	defer l.Close()

	if id, _ := cmd.Flags().GetString("run"); id != "" {
		run, err := l.Run(ctx, id)
		if err != nil {
			return err
		}
		changes, err := l.Changes(ctx, id)
		if err != nil {
			return err
		}
		printer.RunChanges(run, changes)
		return nil
	}

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := l.Runs(ctx, limit)
	if err != nil {
		return err
	}
	printer.History(runs)
	return nil
}
