// Command bondcalc keeps a local copy of the Moscow Exchange bond list and
// computes the expected return of holding a bond.
package main

import (
	"fmt"
	"os"

	"github.com/ndewijer/bondcalc/internal/config"
	"github.com/ndewijer/bondcalc/internal/logger"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// cli is the state shared by all subcommands once the root command has
// loaded the configuration.
type cli struct {
	cfg *config.Config
	log zerolog.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:           "bondcalc",
		Short:         "MOEX bond search and yield calculator",
		Version:       version + " (" + commit + ")",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if dbPath, _ := cmd.Flags().GetString("db"); dbPath != "" {
				cfg.Database.Path = dbPath
			}
			if level, _ := cmd.Flags().GetString("log-level"); level != "" {
				cfg.Log.Level = level
			}

			c.cfg = cfg
			c.log = logger.New(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})
			return nil
		},
	}

	root.PersistentFlags().String("db", "", "database file (overrides DB_PATH)")
	root.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	root.AddCommand(
		c.serveCmd(),
		c.refreshCmd(),
		c.searchCmd(),
		c.getCmd(),
		c.calcCmd(),
		c.statusCmd(),
	)
	return root
}
