package main

import (
	"fmt"
	"time"

	"github.com/ndewijer/bondcalc/internal/calc"
	"github.com/ndewijer/bondcalc/internal/validation"
	"github.com/spf13/cobra"
)

// calcFlags maps each calculator flag to the input field it sets.
var calcFlags = []struct {
	name  string
	usage string
	date  bool
	field func(*calc.Input) *calc.Value
}{
	{"commission", "broker commission per trade, %", false, func(in *calc.Input) *calc.Value { return &in.Commission }},
	{"tax", "tax on income, %", false, func(in *calc.Input) *calc.Value { return &in.Tax }},
	{"coupon", "annual coupon, % of par", false, func(in *calc.Input) *calc.Value { return &in.Coupon }},
	{"par", "par value", false, func(in *calc.Input) *calc.Value { return &in.ParValue }},
	{"buy-date", "purchase date (YYYY-MM-DD or DD.MM.YYYY)", true, func(in *calc.Input) *calc.Value { return &in.BuyDate }},
	{"buy-price", "purchase price, % of par", false, func(in *calc.Input) *calc.Value { return &in.BuyPrice }},
	{"sell-date", "sale or redemption date", true, func(in *calc.Input) *calc.Value { return &in.SellDate }},
	{"sell-price", "sale price, % of par", false, func(in *calc.Input) *calc.Value { return &in.SellPrice }},
}

func (c *cli) calcCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Compute the return of buying a bond and holding it to a sale date",
		Long: `Compute annualised profitability, current yield, income and holding days.

With --secid the input is pre-filled from the stored bond: bought today at
its current price and held to the offer date if it has one, else to
maturity. Any flag given explicitly overrides the pre-filled value.`,
		Example: `  bondcalc calc --secid RU000A0JX0J2
  bondcalc calc --secid RU000A0JX0J2 --mode sell --sell-date 2025-06-01 --sell-price 101
  bondcalc calc --coupon 8 --par 1000 --buy-date 2024-01-01 --buy-price 98 \
      --sell-date 2024-07-01 --sell-price 100 --mode sell`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in := calc.Input{
				Commission: calc.Number(c.cfg.Calculator.Commission),
				Tax:        calc.Number(c.cfg.Calculator.Tax),
				Mode:       calc.ModeSell,
			}
			currency := "SUR"

			modeFlag, _ := cmd.Flags().GetString("mode")
			mode, ok := calc.ParseMode(modeFlag)
			if modeFlag != "" && !ok {
				return fmt.Errorf("unknown mode %q (want maturity, offer or sell)", modeFlag)
			}
			if ok {
				in.Mode = mode
			}

			if secID, _ := cmd.Flags().GetString("secid"); secID != "" {
				if err := validation.ValidateSecID(secID); err != nil {
					return err
				}
				a, err := c.openApp(cmd.Context())
				if err != nil {
					return err
				}
				defer a.Close()

				bond, err := a.bonds.Get(cmd.Context(), secID)
				if err != nil {
					return fmt.Errorf("%w: %s", err, secID)
				}
				currency = bond.FaceUnit

				in = calc.Prefill(*bond, time.Now(), calc.Defaults{
					Commission: c.cfg.Calculator.Commission,
					Tax:        c.cfg.Calculator.Tax,
				})
				if ok {
					in = in.WithSaleMode(*bond, mode)
				}
			}

			var verr validation.Error
			for _, f := range calcFlags {
				if !cmd.Flags().Changed(f.name) {
					continue
				}
				v, _ := cmd.Flags().GetString(f.name)
				if f.date {
					verr.CheckDate(f.name, v)
				} else {
					verr.CheckNumber(f.name, v)
				}
				*f.field(&in) = calc.Text(v)
			}
			if err := verr.Err(); err != nil {
				return err
			}

			res, err := calc.Evaluate(in)
			if err != nil {
				return fmt.Errorf("cannot calculate: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderResult(in, res.Rounded(), currency))
			return nil
		},
	}

	cmd.Flags().String("secid", "", "pre-fill from the stored bond with this secid")
	cmd.Flags().String("mode", "", "how the position is closed: maturity, offer or sell")
	for _, f := range calcFlags {
		cmd.Flags().String(f.name, "", f.usage)
	}
	return cmd
}
