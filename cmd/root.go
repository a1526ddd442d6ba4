package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/transship/app"
	"github.com/kilianp07/transship/config"
	"github.com/kilianp07/transship/infra/logger"
)

var (
	cfgPath string
	periods int
	workers int
	outDir  string
	format  string
)

var rootCmd = &cobra.Command{
	Use:          "transship",
	Short:        "Two-echelon inventory and transshipment solver",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "configuration file (YAML or JSON)")
	rootCmd.PersistentFlags().IntVarP(&periods, "periods", "p", 0, "planning horizon, overrides solver.periods")
	rootCmd.PersistentFlags().IntVarP(&workers, "workers", "w", 0, "worker goroutines, overrides solver.workers")
	rootCmd.PersistentFlags().StringVarP(&outDir, "out", "o", "", "output directory, overrides output.dir")
	rootCmd.PersistentFlags().StringVar(&format, "format", "", "output format json|csv, overrides output.format")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

// loadConfig reads the configuration and applies the command line overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	flags := cmd.Flags()
	if flags.Changed("periods") {
		cfg.Solver.Periods = periods
	}
	if flags.Changed("workers") {
		cfg.Solver.Workers = workers
	}
	if flags.Changed("out") {
		cfg.Output.Dir = outDir
	}
	if flags.Changed("format") {
		cfg.Output.Format = format
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// withRunner builds a Runner from the configuration and runs fn with a
// context canceled on SIGINT or SIGTERM.
func withRunner(cmd *cobra.Command, tweak func(*config.Config), fn func(context.Context, *app.Runner) error) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if tweak != nil {
		tweak(cfg)
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("config: %w", err)
		}
	}
	r, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := r.Close(); err != nil {
			logger.New("main").Errorf("runner close: %v", err)
		}
	}()
	return fn(ctx, r)
}
