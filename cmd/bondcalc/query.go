package main

import (
	"errors"
	"fmt"

	"github.com/ndewijer/bondcalc/internal/apperrors"
	"github.com/ndewijer/bondcalc/internal/validation"
	"github.com/spf13/cobra"
)

func (c *cli) searchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search bonds by name, ISIN or secid",
		Example: `  bondcalc search "офз 26"
  bondcalc search RU000A0JX0J2 --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := args[0]
			if err := validation.ValidateSearchQuery(query); err != nil {
				return err
			}
			limit, _ := cmd.Flags().GetInt("limit")
			asJSON, _ := cmd.Flags().GetBool("json")

			a, err := c.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			bonds, err := a.bonds.Search(cmd.Context(), query, limit)
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), bonds)
			}
			if len(bonds) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No bonds found")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderBondList(bonds))
			return nil
		},
	}
	cmd.Flags().Int("limit", 0, "maximum number of results (default SEARCH_LIMIT)")
	cmd.Flags().Bool("json", false, "print results as JSON")
	return cmd
}

func (c *cli) getCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <secid>",
		Short: "Show one bond by its exchange secid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validation.ValidateSecID(args[0]); err != nil {
				return err
			}
			asJSON, _ := cmd.Flags().GetBool("json")

			a, err := c.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			bond, err := a.bonds.Get(cmd.Context(), args[0])
			if errors.Is(err, apperrors.ErrBondNotFound) {
				return fmt.Errorf("%w: %s", err, args[0])
			}
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), bond)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderBond(*bond))
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "print the bond as JSON")
	return cmd
}

func (c *cli) statusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the store's schema version and when each table was last refreshed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			asJSON, _ := cmd.Flags().GetBool("json")

			a, err := c.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			info, err := a.system.Info(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), info)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "bondcalc %s, schema v%d, %s\n", info.AppVersion, info.SchemaVersion, info.DatabasePath)
			if len(info.Snapshots) == 0 {
				fmt.Fprintln(out, "Store is empty, run `bondcalc refresh`")
				return nil
			}
			fmt.Fprintf(out, "%d bonds, %d live prices stored\n", info.StoredBonds, info.StoredPrices)
			fmt.Fprintln(out, renderSnapshots(info.Snapshots))
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "print status as JSON")
	return cmd
}
