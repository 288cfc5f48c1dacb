package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/ndewijer/bondcalc/internal/model"
)

// BondRepository provides data access methods for the bond table joined
// with market_data.
type BondRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewBondRepository creates a new BondRepository with the provided database connection.
func NewBondRepository(db *sql.DB) *BondRepository {
	return &BondRepository{db: db}
}

// WithTx returns a new BondRepository scoped to the provided transaction.
func (r *BondRepository) WithTx(tx *sql.Tx) *BondRepository {
	return &BondRepository{
		db: r.db,
		tx: tx,
	}
}

func (r *BondRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

const bondColumns = `
	b.shortname, b.secid, b.isin, b.mat_date, b.coupon_percent, b.list_level,
	b.coupon_value, b.coupon_date, b.accrued_interest, b.currency_id,
	b.face_unit, b.face_value, b.coupon_period, b.issue_size, b.offer_date,
	b.prev_price, b.reg_number, COALESCE(m.last_price, b.prev_price)`

// ReplaceBonds deletes every stored bond and inserts bonds in their place.
// It must run inside a transaction (see WithTx) for readers to never see
// the table empty.
func (r *BondRepository) ReplaceBonds(ctx context.Context, bonds []model.Bond) error {
	q := r.getQuerier()

	if _, err := q.ExecContext(ctx, `DELETE FROM bond`); err != nil {
		return fmt.Errorf("failed to clear bond table: %w", err)
	}

	stmt, err := q.PrepareContext(ctx, `
		INSERT INTO bond (
			shortname_lc, shortname, secid, isin, mat_date, coupon_percent,
			list_level, coupon_value, coupon_date, accrued_interest, currency_id,
			face_unit, face_value, coupon_period, issue_size, offer_date,
			prev_price, reg_number
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare bond insert: %w", err)
	}
	defer stmt.Close()

	for _, b := range bonds {
		_, err := stmt.ExecContext(ctx,
			strings.ToLower(b.ShortName),
			b.ShortName,
			b.SecID,
			b.ISIN,
			formatOptionalDate(b.MatDate),
			b.CouponPercent,
			b.ListLevel,
			b.CouponValue,
			b.CouponDate.Format(dateLayout),
			b.AccruedInterest,
			b.CurrencyID,
			b.FaceUnit,
			b.FaceValue,
			b.CouponPeriod,
			b.IssueSize,
			formatOptionalDate(b.OfferDate),
			b.PrevPrice,
			b.RegNumber,
		)
		if err != nil {
			return fmt.Errorf("failed to insert bond %s: %w", b.SecID, err)
		}
	}

	return nil
}

// SearchBonds returns bonds whose lowercased short name contains the
// lowercased query, whose ISIN contains the uppercased query, or whose secid
// equals the query. Results are ordered by lowercased short name and capped
// at limit. Returns an empty slice if nothing matches.
func (r *BondRepository) SearchBonds(ctx context.Context, query string, limit int) ([]model.Bond, error) {
	//#nosec G202 -- Safe: only the constant column list is concatenated
	sqlQuery := `
		SELECT ` + bondColumns + `
		FROM bond b
		LEFT JOIN market_data m ON m.secid = b.secid
		WHERE b.shortname_lc LIKE ? ESCAPE '\'
		   OR upper(b.isin) LIKE ? ESCAPE '\'
		   OR b.secid = ?
		ORDER BY b.shortname_lc, b.secid
		LIMIT ?
	`

	return r.queryBonds(ctx, sqlQuery,
		"%"+escapeLike(strings.ToLower(query))+"%",
		"%"+escapeLike(strings.ToUpper(query))+"%",
		query,
		limit,
	)
}

// GetBondsBySecID returns up to limit bonds stored under exactly secid.
func (r *BondRepository) GetBondsBySecID(ctx context.Context, secID string, limit int) ([]model.Bond, error) {
	//#nosec G202 -- Safe: only the constant column list is concatenated
	sqlQuery := `
		SELECT ` + bondColumns + `
		FROM bond b
		LEFT JOIN market_data m ON m.secid = b.secid
		WHERE b.secid = ?
		LIMIT ?
	`

	return r.queryBonds(ctx, sqlQuery, secID, limit)
}

// CountBonds returns the number of stored bonds.
func (r *BondRepository) CountBonds(ctx context.Context) (int, error) {
	var n int
	if err := r.getQuerier().QueryRowContext(ctx, `SELECT COUNT(*) FROM bond`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count bonds: %w", err)
	}
	return n, nil
}

func (r *BondRepository) queryBonds(ctx context.Context, query string, args ...any) ([]model.Bond, error) {
	rows, err := r.getQuerier().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bond table: %w", err)
	}
	defer rows.Close()

	bonds := []model.Bond{}
	for rows.Next() {
		b, err := scanBond(rows)
		if err != nil {
			return nil, err
		}
		bonds = append(bonds, b)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bond table: %w", err)
	}

	return bonds, nil
}

func scanBond(rows *sql.Rows) (model.Bond, error) {
	var (
		b                             model.Bond
		matDate, offerDate, regNumber sql.NullString
		couponDate                    string
		couponPercent, couponValue    sql.NullFloat64
		prevPrice, price              sql.NullFloat64
	)

	err := rows.Scan(
		&b.ShortName,
		&b.SecID,
		&b.ISIN,
		&matDate,
		&couponPercent,
		&b.ListLevel,
		&couponValue,
		&couponDate,
		&b.AccruedInterest,
		&b.CurrencyID,
		&b.FaceUnit,
		&b.FaceValue,
		&b.CouponPeriod,
		&b.IssueSize,
		&offerDate,
		&prevPrice,
		&regNumber,
		&price,
	)
	if err != nil {
		return model.Bond{}, fmt.Errorf("failed to scan bond table results: %w", err)
	}

	if b.MatDate, err = parseOptionalDate(matDate); err != nil {
		return model.Bond{}, fmt.Errorf("bond %s mat_date: %w", b.SecID, err)
	}
	if b.CouponDate, err = ParseDate(couponDate); err != nil {
		return model.Bond{}, fmt.Errorf("bond %s coupon_date: %w", b.SecID, err)
	}
	if b.OfferDate, err = parseOptionalDate(offerDate); err != nil {
		return model.Bond{}, fmt.Errorf("bond %s offer_date: %w", b.SecID, err)
	}
	b.CouponPercent = nullFloat(couponPercent)
	b.CouponValue = nullFloat(couponValue)
	b.PrevPrice = nullFloat(prevPrice)
	b.Price = nullFloat(price)
	b.RegNumber = nullString(regNumber)

	return b, nil
}
