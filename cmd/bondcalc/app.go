package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ndewijer/bondcalc/internal/database"
	"github.com/ndewijer/bondcalc/internal/moex"
	"github.com/ndewijer/bondcalc/internal/repository"
	"github.com/ndewijer/bondcalc/internal/service"
	"github.com/rs/zerolog"
)

// app is the wired store: database, upstream client and bond service.
type app struct {
	db     *sql.DB
	bonds  *service.BondService
	system *service.SystemService
	log    zerolog.Logger
}

// openApp opens and migrates the database and wires the bond service.
func (c *cli) openApp(ctx context.Context) (*app, error) {
	db, err := database.Open(c.cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	schemaVersion, err := database.Migrate(ctx, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	c.log.Debug().
		Str("path", c.cfg.Database.Path).
		Int64("schema_version", schemaVersion).
		Msg("Connected to database")

	client := moex.NewISSClient(c.cfg.MOEX.BaseURL, c.cfg.MOEX.Timeout, c.log)

	// Create repositories
	bondRepo := repository.NewBondRepository(db)
	marketDataRepo := repository.NewMarketDataRepository(db)
	snapshotRepo := repository.NewSnapshotRepository(db)

	bonds := service.NewBondService(
		db,
		bondRepo,
		marketDataRepo,
		snapshotRepo,
		client,
		c.cfg,
		c.log,
	)

	system := service.NewSystemService(db, c.cfg.Database.Path, version, bonds)

	return &app{db: db, bonds: bonds, system: system, log: c.log}, nil
}

func (a *app) Close() error {
	return a.db.Close()
}
