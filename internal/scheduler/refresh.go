package scheduler

import (
	"context"

	"github.com/ndewijer/bondcalc/internal/model"
	"github.com/rs/zerolog"
)

// SnapshotRefresher is the part of the bond service the refresh jobs drive.
type SnapshotRefresher interface {
	RefreshSecurities(ctx context.Context) (model.Snapshot, error)
	RefreshMarketData(ctx context.Context) (model.Snapshot, error)
}

// RefreshJob installs a fresh snapshot of one table.
type RefreshJob struct {
	name    string
	refresh func(ctx context.Context) (model.Snapshot, error)
	log     zerolog.Logger
}

// NewSecuritiesJob creates the job refreshing the bond list.
func NewSecuritiesJob(r SnapshotRefresher, log zerolog.Logger) *RefreshJob {
	return newRefreshJob("refresh_securities", r.RefreshSecurities, log)
}

// NewMarketDataJob creates the job refreshing last trade prices.
func NewMarketDataJob(r SnapshotRefresher, log zerolog.Logger) *RefreshJob {
	return newRefreshJob("refresh_marketdata", r.RefreshMarketData, log)
}

func newRefreshJob(name string, refresh func(context.Context) (model.Snapshot, error), log zerolog.Logger) *RefreshJob {
	return &RefreshJob{
		name:    name,
		refresh: refresh,
		log:     log.With().Str("job", name).Logger(),
	}
}

// Name returns the job name
func (j *RefreshJob) Name() string {
	return j.name
}

// Run performs one refresh. A failed refresh leaves the previous snapshot
// in place and is retried on the next tick.
func (j *RefreshJob) Run(ctx context.Context) error {
	snap, err := j.refresh(ctx)
	if err != nil {
		return err
	}
	j.log.Debug().
		Str("run_id", snap.RunID).
		Int("rows", snap.Rows).
		Int("rejected", snap.Rejected).
		Msg("Snapshot installed")
	return nil
}
