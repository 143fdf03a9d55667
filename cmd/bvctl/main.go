// Command bvctl resolves equipment ids, values MegaMek unit files and
// maintains equipment catalogs in SQLite or Postgres.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JustinWhittecar/bvcore/internal/config"
	"github.com/JustinWhittecar/bvcore/internal/logging"
	"github.com/JustinWhittecar/bvcore/internal/setup"
)

var (
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "bvctl",
	Short: "BattleMech Battle Value tooling",
	Long: `bvctl computes BV 2.0 for BattleMechs from MegaMek .mtf files and
manages the equipment catalog the calculator reads.

The catalog source (embedded, sqlite, postgres) comes from the config file
or BV_CATALOG_SOURCE.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return err
		}
		lc := cfg.Logging
		lc.Format = "console"
		if verbose {
			lc.Level = "debug"
		}
		if logger, err = logging.New(lc); err != nil {
			return err
		}
		return cfg.Validate()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "bv.yaml", "path to config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(resolveCmd, calcCmd, verifyCmd, seedCmd, formulaCmd)
}

// openEnv builds the valuation stack for the configured catalog.
func openEnv(ctx context.Context) (*setup.Env, error) {
	return setup.Open(ctx, cfg, logger)
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
