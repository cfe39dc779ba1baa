package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/navstrip/internal/engine"
	"github.com/papapumpkin/navstrip/internal/journal"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the journal of the last run",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		printer := newPrinter(cmd, cfg)

		j, err := journal.Load(engine.New(cfg, nil).StateDir())
		if errors.Is(err, journal.ErrNoJournal) {
			printer.Info("no run recorded yet")
			return nil
		}
		if err != nil {
			return err
		}
		printer.JournalStatus(j)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
