package testutil

import (
	"database/sql"
	"io"
	"math/rand"
	"testing"
	"time"

	"github.com/ndewijer/bondcalc/internal/config"
	"github.com/ndewijer/bondcalc/internal/logger"
	"github.com/ndewijer/bondcalc/internal/moex"
	"github.com/ndewijer/bondcalc/internal/repository"
	"github.com/ndewijer/bondcalc/internal/service"
	"github.com/rs/zerolog"
)

// NewTestLogger returns a logger that discards output.
func NewTestLogger() zerolog.Logger {
	return logger.NewWithWriter(logger.Config{Level: "error"}, io.Discard)
}

// NewTestBondService creates a BondService backed by db and fetching from
// the given fake ISS server.
//
// Example usage:
//
//	db := testutil.SetupTestDB(t)
//	iss := testutil.NewISSServer(t)
//	svc := testutil.NewTestBondService(t, db, iss)
func NewTestBondService(t *testing.T, db *sql.DB, iss *ISSServer) *service.BondService {
	t.Helper()
	return NewTestBondServiceWithClient(t, db, moex.NewISSClient(iss.URL(), 5*time.Second, NewTestLogger()))
}

// NewTestBondServiceWithClient creates a BondService with a custom upstream client.
func NewTestBondServiceWithClient(t *testing.T, db *sql.DB, client moex.Client) *service.BondService {
	t.Helper()
	return service.NewBondService(
		db,
		repository.NewBondRepository(db),
		repository.NewMarketDataRepository(db),
		repository.NewSnapshotRepository(db),
		client,
		TestConfig(),
		NewTestLogger(),
	)
}

// TestConfig returns the configuration used by test services.
func TestConfig() *config.Config {
	return &config.Config{
		MOEX:       config.MOEXConfig{ExcludedBoard: "SPOB", Timeout: 5 * time.Second},
		Schedule:   config.ScheduleConfig{Securities: "@hourly", MarketData: "@every 1m"},
		Search:     config.SearchConfig{Limit: 100},
		Calculator: config.CalculatorConfig{Commission: 0.05, Tax: 13},
		Log:        config.LogConfig{Level: "error"},
	}
}

// MakeSecID generates a MOEX-style secid for testing.
//
// Example usage:
//
//	secid := testutil.MakeSecID()
//	// Returns: "RU000A1B2C3D"
func MakeSecID() string {
	return "RU000A" + randomAlphanumeric(6)
}

// MakeISIN generates a realistic ISIN code for testing.
func MakeISIN(prefix string) string {
	if prefix == "" {
		prefix = "RU"
	}
	return prefix + randomAlphanumeric(10)
}

// randomAlphanumeric generates a random alphanumeric string of specified length.
func randomAlphanumeric(length int) string {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	result := make([]byte, length)
	for i := range result {
		//nolint:gosec // G404: Using math/rand for test data generation is acceptable
		result[i] = charset[rand.Intn(len(charset))]
	}
	return string(result)
}

// Date returns midnight UTC of the given day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DatePtr is Date returning a pointer, for optional bond dates.
func DatePtr(year int, month time.Month, day int) *time.Time {
	d := Date(year, month, day)
	return &d
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}

// String returns a pointer to v.
func String(v string) *string {
	return &v
}
