package main

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/ndewijer/bondcalc/internal/apperrors"
	"github.com/ndewijer/bondcalc/internal/calc"
	"github.com/ndewijer/bondcalc/internal/scheduler"
	"github.com/ndewijer/bondcalc/internal/testutil"
	"github.com/ndewijer/bondcalc/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the CLI against a fresh database and fake ISS server.
func execute(t *testing.T, iss *testutil.ISSServer, args ...string) (string, error) {
	t.Helper()
	return executeIn(t, filepath.Join(t.TempDir(), "bonds.db"), iss, args...)
}

// executeIn runs the CLI against the database at dbPath.
func executeIn(t *testing.T, dbPath string, iss *testutil.ISSServer, args ...string) (string, error) {
	t.Helper()
	t.Setenv("DB_PATH", dbPath)
	t.Setenv("LOG_LEVEL", "error")
	if iss != nil {
		t.Setenv("MOEX_BASE_URL", iss.URL())
	}

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestCalcCommand(t *testing.T) {
	t.Run("computes from flags", func(t *testing.T) {
		out, err := execute(t, nil, "calc",
			"--coupon", "8", "--par", "1000",
			"--buy-date", "2024-01-01", "--buy-price", "98",
			"--sell-date", "01.07.2024", "--sell-price", "100",
			"--mode", "sell")
		require.NoError(t, err)

		assert.Contains(t, out, "10.48")
		assert.Contains(t, out, "7.1")
		assert.Contains(t, out, "51.24 ₽")
		assert.Contains(t, out, "182")
	})

	t.Run("reports the missing field", func(t *testing.T) {
		_, err := execute(t, nil, "calc", "--coupon", "8", "--par", "1000")
		require.ErrorIs(t, err, calc.ErrIncompleteInput)
		assert.Contains(t, err.Error(), "buy price")
	})

	t.Run("rejects unknown mode", func(t *testing.T) {
		_, err := execute(t, nil, "calc", "--mode", "forever")
		assert.ErrorContains(t, err, "unknown mode")
	})

	t.Run("prefills from a stored bond", func(t *testing.T) {
		iss := testutil.NewISSServer(t).WithSecurities(
			testutil.SecurityRow("RU000A0JX0J2", map[string]any{"OFFERDATE": "2099-03-01"}),
		)

		dbPath := filepath.Join(t.TempDir(), "bonds.db")
		_, err := execute(t, iss, "--db", dbPath, "refresh", "securities")
		require.NoError(t, err)

		out, err := execute(t, iss, "--db", dbPath, "calc", "--secid", "RU000A0JX0J2")
		require.NoError(t, err)
		assert.Contains(t, out, "offer")
		assert.Contains(t, out, "2099-03-01")
	})
}

func TestSearchCommand(t *testing.T) {
	t.Run("refuses short queries", func(t *testing.T) {
		_, err := execute(t, nil, "search", "ru")
		assert.ErrorIs(t, err, apperrors.ErrQueryTooShort)
	})

	t.Run("finds refreshed bonds", func(t *testing.T) {
		iss := testutil.NewISSServer(t).WithSecurities(
			testutil.SecurityRow("RU000A0JX0J2", map[string]any{"SHORTNAME": "Газпром 1P"}),
		)
		dbPath := filepath.Join(t.TempDir(), "bonds.db")

		out, err := execute(t, iss, "--db", dbPath, "refresh", "securities")
		require.NoError(t, err)
		assert.Contains(t, out, "1 rows stored")

		out, err = execute(t, iss, "--db", dbPath, "search", "газпром")
		require.NoError(t, err)
		assert.Contains(t, out, "RU000A0JX0J2")
	})
}

func TestGetCommand(t *testing.T) {
	_, err := execute(t, nil, "get", "NOPE0001")
	assert.ErrorIs(t, err, apperrors.ErrBondNotFound)
}

func TestFormatDays(t *testing.T) {
	assert.Equal(t, "182", formatDays(182))
	assert.Equal(t, "1 096", formatDays(1096))
	assert.Equal(t, "-12 345", formatDays(-12345))
}

func TestCalcCommand_InvalidFlags(t *testing.T) {
	_, err := execute(t, nil, "calc", "--tax", "13%", "--buy-date", "2024/01/01")

	var verr *validation.Error
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "tax")
	assert.Contains(t, verr.Fields, "buy-date")
}

func TestCalcCommand_NonFiniteNumber(t *testing.T) {
	_, err := execute(t, nil, "calc", "--coupon", "NaN", "--par", "Inf")

	var verr *validation.Error
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "coupon")
	assert.Contains(t, verr.Fields, "par")
}

func TestStatusCommand(t *testing.T) {
	t.Run("empty store", func(t *testing.T) {
		out, err := execute(t, nil, "status")
		require.NoError(t, err)
		assert.Contains(t, out, "bondcalc dev, schema v1")
		assert.Contains(t, out, "Store is empty")
	})

	// WHY: status reads the binary version, not the schema version, and
	// counts what is stored now rather than what the last refresh reported.
	t.Run("after a refresh", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "bonds.db")
		iss := testutil.NewISSServer(t).WithSecurities(
			testutil.SecurityRow("RU000A0JX0J2", nil),
			testutil.SecurityRow("RU000A0ZYU88", nil),
		)

		_, err := executeIn(t, dbPath, iss, "refresh", "securities")
		require.NoError(t, err)

		out, err := executeIn(t, dbPath, iss, "status")
		require.NoError(t, err)
		assert.Contains(t, out, "bondcalc dev, schema v1")
		assert.Contains(t, out, "2 bonds, 0 live prices stored")
		assert.Contains(t, out, "securities")
	})
}

type countingJob struct {
	name  string
	runs  atomic.Int32
	fails bool
}

func (j *countingJob) Name() string { return j.name }

func (j *countingJob) Run(context.Context) error {
	j.runs.Add(1)
	if j.fails {
		return errors.New(j.name + " failed")
	}
	return nil
}

func TestRunInitial(t *testing.T) {
	sched := scheduler.New(testutil.NewTestLogger())

	t.Run("runs every job once", func(t *testing.T) {
		a, b := &countingJob{name: "a"}, &countingJob{name: "b"}
		require.NoError(t, runInitial(context.Background(), sched, a, b))
		assert.Equal(t, int32(1), a.runs.Load())
		assert.Equal(t, int32(1), b.runs.Load())
	})

	t.Run("failure does not stop the other job", func(t *testing.T) {
		a, b := &countingJob{name: "a", fails: true}, &countingJob{name: "b"}
		err := runInitial(context.Background(), sched, a, b)
		assert.EqualError(t, err, "a failed")
		assert.Equal(t, int32(1), b.runs.Load())
	})
}
