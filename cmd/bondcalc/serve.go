package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/ndewijer/bondcalc/internal/apperrors"
	"github.com/ndewijer/bondcalc/internal/model"
	"github.com/ndewijer/bondcalc/internal/scheduler"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func (c *cli) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Keep the local bond store refreshed on a schedule",
		Long: `Refresh the bond list and market prices once, then keep refreshing them
on the SECURITIES_SCHEDULE and MARKETDATA_SCHEDULE cron specs until
interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := c.openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			sched := scheduler.New(c.log)
			securities := scheduler.NewSecuritiesJob(a.bonds, c.log)
			marketData := scheduler.NewMarketDataJob(a.bonds, c.log)

			if skip, _ := cmd.Flags().GetBool("skip-initial"); skip {
				c.warnIfEmpty(ctx, a)
			} else if err := runInitial(ctx, sched, securities, marketData); err != nil {
				// Serve whatever the store already holds; the schedule retries.
				c.log.Warn().Err(err).Msg("Initial refresh failed")
			}

			if err := sched.AddJob(c.cfg.Schedule.Securities, securities); err != nil {
				return err
			}
			if err := sched.AddJob(c.cfg.Schedule.MarketData, marketData); err != nil {
				return err
			}

			sched.Start(ctx)
			<-ctx.Done()

			c.log.Info().Msg("Shutting down...")
			sched.Stop()
			return nil
		},
	}
	cmd.Flags().Bool("skip-initial", false, "do not refresh before the first scheduled run")
	return cmd
}

// runInitial runs every job once, concurrently, and returns the first error
// after all of them have finished.
func runInitial(ctx context.Context, sched *scheduler.Scheduler, jobs ...scheduler.Job) error {
	var g errgroup.Group
	for _, job := range jobs {
		g.Go(func() error {
			return sched.RunNow(ctx, job)
		})
	}
	return g.Wait()
}

// warnIfEmpty logs when serving starts without any securities snapshot.
func (c *cli) warnIfEmpty(ctx context.Context, a *app) {
	snap, err := a.bonds.LastRefresh(ctx, model.SnapshotSecurities)
	switch {
	case errors.Is(err, apperrors.ErrSnapshotNotFound):
		c.log.Warn().Msg("Store has no bonds yet, searches return nothing until the first scheduled refresh")
	case err != nil:
		c.log.Warn().Err(err).Msg("Could not read last securities refresh")
	default:
		c.log.Info().Time("refreshed_at", snap.RefreshedAt).Int("bonds", snap.Rows).Msg("Serving stored snapshot")
	}
}
