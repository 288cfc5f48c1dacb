package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/ndewijer/bondcalc/internal/apperrors"
	"github.com/ndewijer/bondcalc/internal/model"
	"github.com/ndewijer/bondcalc/internal/repository"
	"github.com/ndewijer/bondcalc/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("missing snapshot", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewSnapshotRepository(db)

		_, err := repo.GetSnapshot(ctx, model.SnapshotSecurities)
		assert.ErrorIs(t, err, apperrors.ErrSnapshotNotFound)

		all, err := repo.GetSnapshots(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("save overwrites the row of the same kind", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewSnapshotRepository(db)
		at := time.Date(2024, time.May, 2, 10, 30, 15, 123456789, time.UTC)

		require.NoError(t, repo.SaveSnapshot(ctx, model.Snapshot{
			Kind: model.SnapshotSecurities, RunID: "first", Rows: 10, RefreshedAt: at,
		}))
		require.NoError(t, repo.SaveSnapshot(ctx, model.Snapshot{
			Kind: model.SnapshotSecurities, RunID: "second", Rows: 12, Rejected: 1, RefreshedAt: at.Add(time.Hour),
		}))
		require.NoError(t, repo.SaveSnapshot(ctx, model.Snapshot{
			Kind: model.SnapshotMarketData, RunID: "prices", Rows: 3, RefreshedAt: at,
		}))

		got, err := repo.GetSnapshot(ctx, model.SnapshotSecurities)
		require.NoError(t, err)
		assert.Equal(t, "second", got.RunID)
		assert.Equal(t, 12, got.Rows)
		assert.Equal(t, 1, got.Rejected)
		assert.True(t, at.Add(time.Hour).Equal(got.RefreshedAt))

		all, err := repo.GetSnapshots(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, model.SnapshotMarketData, all[0].Kind)
		assert.Equal(t, model.SnapshotSecurities, all[1].Kind)
	})
}

func TestMarketDataRepository(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	repo := repository.NewMarketDataRepository(db)

	testutil.InsertMarketData(t, db,
		model.MarketData{SecID: "A", LastPrice: 99},
		model.MarketData{SecID: "B", LastPrice: 101},
		model.MarketData{SecID: "A", LastPrice: 100},
	)

	n, err := repo.CountMarketData(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	testutil.InsertBonds(t, db, testutil.NewBond().WithSecID("A").WithPrevPrice(98).Build())
	bonds, err := repository.NewBondRepository(db).GetBondsBySecID(ctx, "A", 1)
	require.NoError(t, err)
	require.Len(t, bonds, 1)
	require.NotNil(t, bonds[0].Price)
	assert.InDelta(t, 100.0, *bonds[0].Price, 1e-9)
}
