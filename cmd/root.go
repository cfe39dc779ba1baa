package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/papapumpkin/navstrip/internal/config"
	"github.com/papapumpkin/navstrip/internal/ui"
)

var rootCmd = &cobra.Command{
	Use:   "navstrip",
	Short: "Strip opaque identifier segments from a docs site",
	Long: `navstrip removes generated identifier segments (20+ alphanumeric characters)
from the page paths of a documentation site. It moves the content files to
their canonical locations, rewrites the navigation manifest and writes a
report mapping every old path to its new one.`,
	SilenceUsage: true,
	RunE:         runRun,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default .navstrip.yaml)")
	pf.String("root", "", "content root directory (default .)")
	pf.String("manifest", "", "navigation manifest (default docs.json)")
	pf.String("extension", "", "content file extension (default .mdx)")
	pf.String("report", "", "report file, relative to the manifest (default id_removal_report.json)")
	pf.String("state-dir", "", "journal and history directory, relative to the manifest (default .navstrip)")
	pf.String("rewrite-policy", "", "rewrite entries without a moved file: always or synced")
	pf.String("empty-destination", "", "paths made only of identifiers: skip or allow")
	pf.String("events", "", "append JSONL run events to this file")
	pf.Bool("no-ledger", false, "do not record the run in the history database")
	pf.BoolP("verbose", "v", false, "verbose output")
	pf.BoolP("quiet", "q", false, "only print warnings and errors")
	pf.Bool("no-color", false, "disable colored output")

	for key, flag := range map[string]string{
		"root":              "root",
		"manifest":          "manifest",
		"extension":         "extension",
		"report":            "report",
		"state_dir":         "state-dir",
		"rewrite_policy":    "rewrite-policy",
		"empty_destination": "empty-destination",
		"events":            "events",
		"verbose":           "verbose",
		"quiet":             "quiet",
	} {
		_ = viper.BindPFlag(key, pf.Lookup(flag))
	}
}

func initConfig() {
	if cfgFile, _ := rootCmd.Flags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".navstrip")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
	}

	viper.SetEnvPrefix("NAVSTRIP")
	viper.AutomaticEnv()

	// It's fine if no config file is found; we use defaults.
	_ = viper.ReadInConfig()
}

// loadConfig reads the merged configuration and applies flags that have no
// viper key of their own.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	if v, _ := cmd.Flags().GetBool("no-ledger"); v {
		cfg.Ledger = false
	}
	return cfg, nil
}

func newPrinter(cmd *cobra.Command, cfg config.Config) *ui.Printer {
	noColor, _ := cmd.Flags().GetBool("no-color")
	p := ui.NewWriter(cmd.ErrOrStderr(), noColor || os.Getenv("NO_COLOR") != "")
	p.Verbose = cfg.Verbose
	p.Quiet = cfg.Quiet
	return p
}
