package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ndewijer/bondcalc/internal/model"
)

// MarketDataRepository provides data access methods for the market_data table.
type MarketDataRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewMarketDataRepository creates a new MarketDataRepository.
func NewMarketDataRepository(db *sql.DB) *MarketDataRepository {
	return &MarketDataRepository{db: db}
}

// WithTx returns a new MarketDataRepository scoped to the provided transaction.
func (r *MarketDataRepository) WithTx(tx *sql.Tx) *MarketDataRepository {
	return &MarketDataRepository{
		db: r.db,
		tx: tx,
	}
}

func (r *MarketDataRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// ReplaceMarketData swaps the whole table for rows. A repeated secid keeps
// the last row.
func (r *MarketDataRepository) ReplaceMarketData(ctx context.Context, rows []model.MarketData) error {
	q := r.getQuerier()

	if _, err := q.ExecContext(ctx, `DELETE FROM market_data`); err != nil {
		return fmt.Errorf("failed to clear market_data table: %w", err)
	}

	stmt, err := q.PrepareContext(ctx, `INSERT OR REPLACE INTO market_data (secid, last_price) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare market_data insert: %w", err)
	}
	defer stmt.Close()

	for _, md := range rows {
		if _, err := stmt.ExecContext(ctx, md.SecID, md.LastPrice); err != nil {
			return fmt.Errorf("failed to insert market data for %s: %w", md.SecID, err)
		}
	}

	return nil
}

// CountMarketData returns the number of stored price rows.
func (r *MarketDataRepository) CountMarketData(ctx context.Context) (int, error) {
	var n int
	if err := r.getQuerier().QueryRowContext(ctx, `SELECT COUNT(*) FROM market_data`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count market data: %w", err)
	}
	return n, nil
}
