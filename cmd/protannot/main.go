// Command protannot builds per-protein annotation reports from a species
// proteome and its reference datasets.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"protannot/internal/config"
)

var (
	configPath string
	species    string
	output     string
	dataDir    string
	verbose    bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "protannot",
	Short: "Per-protein annotation report builder",
	Long: `protannot combines a species proteome with complex membership,
family classification, and pathway reference datasets into one
isoform-keyed tab-separated annotation report.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := zap.NewProductionConfig()
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = cfg.Build()
		if err != nil {
			return fmt.Errorf("initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config file")
	rootCmd.PersistentFlags().StringVar(&species, "species", "", "species name (human, mouse, rat, pig, rabbit, zebrafish, ecoli)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "directory for downloaded reference datasets")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.AddCommand(fetchCmd, buildCmd)
}

// loadConfig layers flag values over the file and environment configuration.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, err
	}
	if cmd.Flags().Changed("species") || rootCmd.PersistentFlags().Changed("species") {
		cfg.Species = species
	}
	if cmd.Flags().Changed("output") {
		cfg.Output = output
	}
	if cmd.Flags().Changed("data-dir") || rootCmd.PersistentFlags().Changed("data-dir") {
		cfg.DataDir = dataDir
	}
	if cmd.Flags().Changed("dedup") {
		cfg.Datasets.DedupFASTA = dedup
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
