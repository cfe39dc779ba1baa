package cmd

import (
	"encoding/json"
	"errors"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/navstrip/internal/engine"
	"github.com/papapumpkin/navstrip/internal/relocate"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show the rename mapping and planned moves without changing anything",
	Args:  cobra.NoArgs,
	RunE:  runPlan,
}

func init() {
	planCmd.Flags().Bool("json", false, "print the plan as JSON on stdout")
	rootCmd.AddCommand(planCmd)
}

type planEntry struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
	Action      string `json:"action"`
	Reason      string `json:"reason,omitempty"`
}

type planOutput struct {
	Root    string      `json:"root"`
	Leaves  int         `json:"leaves"`
	Dropped []string    `json:"dropped,omitempty"`
	Actions []planEntry `json:"actions"`
}

func runPlan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	printer := newPrinter(cmd, cfg)

	res, _, err := engine.New(cfg, printer).Plan(cmd.Context())
	if err != nil && !errors.Is(err, relocate.ErrConflict) {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		out := planOutput{Root: res.Plan.Root, Leaves: res.Leaves, Dropped: res.Dropped, Actions: []planEntry{}}
		for _, a := range res.Plan.Actions {
			out.Actions = append(out.Actions, planEntry{
				Source:      a.Pair.Old,
				Destination: a.Pair.New,
				Action:      string(a.Type),
				Reason:      a.Reason,
			})
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if jerr := enc.Encode(out); jerr != nil {
			return jerr
		}
	} else {
		printer.PlanRender(res.Plan)
	}
	// A conflicting plan is still printed, then reported as a failure.
	return err
}
