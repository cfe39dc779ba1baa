package cmd

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/navstrip/internal/config"
	"github.com/papapumpkin/navstrip/internal/engine"
	"github.com/papapumpkin/navstrip/internal/relocate"
	"github.com/papapumpkin/navstrip/internal/ui"
	"github.com/papapumpkin/navstrip/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rerun whenever the manifest changes",
	Long: `watch runs once, then reruns every time the manifest is written.
Runs that find no identifiers change nothing, so navstrip's own manifest
write causes a single no-op rerun.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().Duration("debounce", watch.DefaultDebounce, "quiet period before a change triggers a run")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	cfg.DryRun = false
	printer := newPrinter(cmd, cfg)

	debounce, _ := cmd.Flags().GetDuration("debounce")
	w, err := watch.New(cfg.Manifest, debounce)
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		return err
	}
	defer w.Stop()

	ctx, cancel := setupSignalContext(printer)
	defer cancel()

	if err := watchOnce(ctx, cfg, printer); err != nil {
		return err
	}
	printer.Info("watching " + w.Path)

	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-w.Changes:
			if !ok {
				return nil
			}
			if err := watchOnce(ctx, cfg, printer); err != nil {
				return err
			}
		}
	}
}

// watchOnce runs the pipeline. Manifest and conflict errors are reported
// and the watch continues, since the next edit may fix them.
func watchOnce(ctx context.Context, cfg config.Config, printer *ui.Printer) error {
	res, err := engine.New(cfg, printer).Run(ctx)
	switch {
	case err == nil:
		printer.RunDone(false, len(res.Relocation.Moved), len(res.Relocation.Skipped), len(res.Applied), res.Elapsed)
		return nil
	case errors.Is(err, context.Canceled):
		return nil
	case errors.Is(err, relocate.ErrConflict), isManifestError(err):
		reportRunError(printer, res, err)
		printer.Error(err.Error())
		return nil
	default:
		return err
	}
}
