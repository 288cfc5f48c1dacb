package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ndewijer/bondcalc/internal/database"
	"github.com/ndewijer/bondcalc/internal/model"
)

// SystemService handles system-related operations
type SystemService struct {
	db      *sql.DB
	dbPath  string
	version string
	bonds   *BondService
}

// NewSystemService creates a new SystemService
func NewSystemService(db *sql.DB, dbPath, version string, bonds *BondService) *SystemService {
	return &SystemService{
		db:      db,
		dbPath:  dbPath,
		version: version,
		bonds:   bonds,
	}
}

// CheckHealth checks the health of the system
func (s *SystemService) CheckHealth(ctx context.Context) error {
	return database.HealthCheck(ctx, s.db)
}

// Info reports the binary version, schema version, live row counts and the
// last snapshot of each table.
func (s *SystemService) Info(ctx context.Context) (model.SystemInfo, error) {
	if err := s.CheckHealth(ctx); err != nil {
		return model.SystemInfo{}, fmt.Errorf("database unavailable: %w", err)
	}

	schema, err := database.SchemaVersion(ctx, s.db)
	if err != nil {
		return model.SystemInfo{}, err
	}
	snaps, err := s.bonds.Status(ctx)
	if err != nil {
		return model.SystemInfo{}, err
	}
	bonds, prices, err := s.bonds.Counts(ctx)
	if err != nil {
		return model.SystemInfo{}, err
	}

	return model.SystemInfo{
		AppVersion:    s.version,
		SchemaVersion: schema,
		DatabasePath:  s.dbPath,
		StoredBonds:   bonds,
		StoredPrices:  prices,
		Snapshots:     snaps,
	}, nil
}
