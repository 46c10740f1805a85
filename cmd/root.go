package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/fieldobs-cli/internal/config"
	"github.com/sells-group/fieldobs-cli/internal/metrics"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:          "fieldobs",
	Short:        "Read-only client for the Field Observatory data bucket",
	Long:         "Lists bucket objects, projects per-field management event histories, stacks timeseries CSVs, and looks up field and site metadata from the shared GeoJSON documents.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := c.Validate(); err != nil {
			return err
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		metrics.Init()

		return validateOutput()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if cfg != nil && cfg.Metrics.Enabled {
			if err := metrics.Dump(cmd.ErrOrStderr()); err != nil {
				zap.L().Warn("metrics dump failed", zap.Error(err))
			}
		}
		_ = zap.L().Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", formatJSON, "output format: json, yaml or text")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
