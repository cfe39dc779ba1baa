package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/papapumpkin/navstrip/internal/engine"
	"github.com/papapumpkin/navstrip/internal/manifest"
	"github.com/papapumpkin/navstrip/internal/relocate"
	"github.com/papapumpkin/navstrip/internal/rename"
	"github.com/papapumpkin/navstrip/internal/ui"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Move content files, rewrite the manifest and write the report",
	Args:  cobra.NoArgs,
	RunE:  runRun,
}

func init() {
	for _, c := range []*cobra.Command{rootCmd, runCmd} {
		c.Flags().Bool("dry-run", false, "show what would change without touching anything")
		c.Flags().Bool("json", false, "print the change report as JSON on stdout")
	}
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("unknown command %q for %q", args[0], cmd.CommandPath())
	}
	_ = viper.BindPFlag("dry_run", cmd.Flags().Lookup("dry-run"))

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	printer := newPrinter(cmd, cfg)

	ctx, cancel := setupSignalContext(printer)
	defer cancel()

	res, err := engine.New(cfg, printer).Run(ctx)
	if err != nil {
		reportRunError(printer, res, err)
		return err
	}

	if cfg.DryRun {
		printer.PlanRender(res.Plan)
	}
	printer.RunDone(cfg.DryRun, len(res.Relocation.Moved), len(res.Relocation.Skipped), len(res.Applied), res.Elapsed)

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return writeReportJSON(cmd, res.Report)
	}
	return nil
}

// reportRunError renders the plan when the run was refused because of
// conflicts, so every offending path is visible at once.
func reportRunError(printer *ui.Printer, res *engine.Result, err error) {
	var pe *relocate.PlanError
	if errors.As(err, &pe) && res != nil && res.Plan != nil {
		printer.PlanRender(res.Plan)
		printer.Error(fmt.Sprintf("%d conflicting move(s); nothing was changed", len(pe.Conflicts)))
	}
}

func writeReportJSON(cmd *cobra.Command, report rename.Report) error {
	data, err := report.Marshal()
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

// setupSignalContext returns a context cancelled on SIGINT or SIGTERM.
func setupSignalContext(printer *ui.Printer) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			printer.Info("\nshutting down...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()
	return ctx, cancel
}

func isManifestError(err error) bool {
	return errors.Is(err, manifest.ErrMalformedManifest) || errors.Is(err, os.ErrNotExist)
}
