package main

import (
	"context"
	"fmt"

	"github.com/ndewijer/bondcalc/internal/model"
	"github.com/spf13/cobra"
)

func (c *cli) refreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "refresh [securities|marketdata|all]",
		Short:     "Fetch a fresh snapshot from MOEX into the local store",
		ValidArgs: []string{"securities", "marketdata", "all"},
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			what := "all"
			if len(args) == 1 {
				what = args[0]
			}

			ctx := cmd.Context()
			a, err := c.openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			refreshers := map[string]func(context.Context) (model.Snapshot, error){
				"securities": a.bonds.RefreshSecurities,
				"marketdata": a.bonds.RefreshMarketData,
			}
			order := []string{"securities", "marketdata"}
			if what != "all" {
				order = []string{what}
			}

			for _, name := range order {
				snap, err := refreshers[name](ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d rows stored, %d rejected (run %s)\n",
					snap.Kind, snap.Rows, snap.Rejected, snap.RunID)
			}
			return nil
		},
	}
}
