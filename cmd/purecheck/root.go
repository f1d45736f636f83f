package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/bububa/purecheck/config"
)

var (
	version = "dev"

	cfgFile string
	verbose bool

	// set by the persistent pre-run of every command but version
	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "purecheck",
	Short: "Food label analysis with INR scoring and FSSAI guideline chat",
	Long: `purecheck reads packaged-food label photos with a vision model, rates the product
with the Indian Nutrition Rating (INR) and answers questions about the product or about
FSSAI guidelines.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "YAML configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log at debug level")
}

func loadConfig(cmd *cobra.Command, _ []string) error {
	if cmd == versionCmd {
		return nil
	}
	c, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	if verbose {
		c.Log.Level = "debug"
	}
	cfg = c
	logger = c.Log.NewLogger(cmd.ErrOrStderr())
	slog.SetDefault(logger)
	return nil
}
