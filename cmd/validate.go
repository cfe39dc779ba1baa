package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/navstrip/internal/engine"
	"github.com/papapumpkin/navstrip/internal/ident"
	"github.com/papapumpkin/navstrip/internal/manifest"
	"github.com/papapumpkin/navstrip/internal/relocate"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check that the manifest parses and every page has a backing file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		out := cmd.ErrOrStderr()
		ok := true

		doc, err := manifest.Load(cfg.Manifest)
		if err != nil {
			fmt.Fprintf(out, "✗ manifest: %v\n", err)
			return errValidation
		}
		leaves := manifest.CollectLeaves(doc.Navigation())
		fmt.Fprintf(out, "✓ manifest parsed (%d pages)\n", len(leaves))

		missing := missingPages(cfg.Root, cfg.Extension, leaves)
		if len(missing) > 0 {
			ok = false
			for _, page := range missing {
				fmt.Fprintf(out, "✗ %s: no %s file\n", page, cfg.Extension)
			}
		} else {
			fmt.Fprintln(out, "✓ every page has a backing file")
		}

		res, _, err := engine.New(cfg, nil).Plan(cmd.Context())
		var pe *relocate.PlanError
		switch {
		case errors.As(err, &pe):
			ok = false
			for _, a := range pe.Conflicts {
				fmt.Fprintf(out, "✗ %s -> %s: %s\n", a.Pair.Old, a.Pair.New, a.Reason)
			}
		case err != nil:
			return err
		default:
			fmt.Fprintf(out, "✓ %d rename(s) planned without conflicts\n", len(res.Mapping))
		}

		if !ok {
			return errValidation
		}
		return nil
	},
}

var errValidation = errors.New("validation failed")

func init() {
	rootCmd.AddCommand(validateCmd)
}

// missingPages returns the pages whose content file exists neither at its
// current nor at its canonical location.
func missingPages(root, ext string, pages []string) []string {
	var missing []string
	seen := make(map[string]bool)
	for _, page := range pages {
		if seen[page] {
			continue
		}
		seen[page] = true
		p, err := relocate.SafeJoin(root, page+ext)
		if err != nil {
			missing = append(missing, page)
			continue
		}
		if _, err := os.Stat(p); err == nil {
			continue
		}
		if canonical, err := relocate.SafeJoin(root, ident.Canonicalize(page)+ext); err == nil {
			if _, err := os.Stat(canonical); err == nil {
				continue
			}
		}
		missing = append(missing, page)
	}
	return missing
}
