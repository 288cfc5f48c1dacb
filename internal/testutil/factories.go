package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/ndewijer/bondcalc/internal/model"
	"github.com/ndewijer/bondcalc/internal/repository"
)

// BondBuilder provides a fluent interface for creating test bonds.
//
// Example usage:
//
//	// Simple creation with defaults
//	bond := testutil.NewBond().Build()
//
//	// Customized bond
//	bond := testutil.NewBond().
//	    WithShortName("ОФЗ 26238").
//	    Perpetual().
//	    WithPrevPrice(98.5).
//	    Build()
type BondBuilder struct {
	bond model.Bond
}

// NewBond creates a BondBuilder with sensible defaults: a 1000 RUB bond
// paying 8% semi-annually, maturing 2030-06-01, last traded at 98%.
func NewBond() *BondBuilder {
	secID := MakeSecID()
	return &BondBuilder{bond: model.Bond{
		ShortName:       "Test Bond " + randomAlphanumeric(4),
		SecID:           secID,
		ISIN:            secID,
		MatDate:         DatePtr(2030, time.June, 1),
		CouponPercent:   Float(8),
		ListLevel:       1,
		CouponValue:     Float(39.89),
		CouponDate:      Date(2024, time.December, 1),
		AccruedInterest: 12.5,
		CurrencyID:      "SUR",
		FaceUnit:        "SUR",
		FaceValue:       1000,
		CouponPeriod:    182,
		IssueSize:       1_000_000,
		PrevPrice:       Float(98),
		RegNumber:       String("4B02-01-00000-A"),
	}}
}

// WithSecID sets the secid and ISIN.
func (b *BondBuilder) WithSecID(secID string) *BondBuilder {
	b.bond.SecID = secID
	b.bond.ISIN = secID
	return b
}

// WithISIN sets a custom ISIN.
func (b *BondBuilder) WithISIN(isin string) *BondBuilder {
	b.bond.ISIN = isin
	return b
}

// WithShortName sets the display name.
func (b *BondBuilder) WithShortName(name string) *BondBuilder {
	b.bond.ShortName = name
	return b
}

// WithMatDate sets the maturity date.
func (b *BondBuilder) WithMatDate(d time.Time) *BondBuilder {
	b.bond.MatDate = &d
	return b
}

// Perpetual clears the maturity date.
func (b *BondBuilder) Perpetual() *BondBuilder {
	b.bond.MatDate = nil
	return b
}

// WithOfferDate sets the early-redemption date.
func (b *BondBuilder) WithOfferDate(d time.Time) *BondBuilder {
	b.bond.OfferDate = &d
	return b
}

// WithCouponPercent sets the coupon rate; nil marks it unknown.
func (b *BondBuilder) WithCouponPercent(p *float64) *BondBuilder {
	b.bond.CouponPercent = p
	return b
}

// WithCouponValue sets the coupon amount; nil marks it unknown.
func (b *BondBuilder) WithCouponValue(v *float64) *BondBuilder {
	b.bond.CouponValue = v
	return b
}

// WithPrevPrice sets the previous close in percent of par.
func (b *BondBuilder) WithPrevPrice(p float64) *BondBuilder {
	b.bond.PrevPrice = &p
	return b
}

// WithoutPrevPrice clears the previous close.
func (b *BondBuilder) WithoutPrevPrice() *BondBuilder {
	b.bond.PrevPrice = nil
	return b
}

// WithListLevel sets the listing tier.
func (b *BondBuilder) WithListLevel(level int) *BondBuilder {
	b.bond.ListLevel = level
	return b
}

// WithoutRegNumber clears the registration number.
func (b *BondBuilder) WithoutRegNumber() *BondBuilder {
	b.bond.RegNumber = nil
	return b
}

// Build returns the bond.
func (b *BondBuilder) Build() model.Bond {
	return b.bond
}

// InsertBonds replaces the bond table with bonds.
func InsertBonds(t *testing.T, db *sql.DB, bonds ...model.Bond) {
	t.Helper()

	ctx := context.Background()
	err := repository.RunInTx(ctx, db, func(tx *sql.Tx) error {
		return repository.NewBondRepository(db).WithTx(tx).ReplaceBonds(ctx, bonds)
	})
	if err != nil {
		t.Fatalf("Failed to insert bonds: %v", err)
	}
}

// InsertMarketData replaces the market_data table with rows.
func InsertMarketData(t *testing.T, db *sql.DB, rows ...model.MarketData) {
	t.Helper()

	ctx := context.Background()
	err := repository.RunInTx(ctx, db, func(tx *sql.Tx) error {
		return repository.NewMarketDataRepository(db).WithTx(tx).ReplaceMarketData(ctx, rows)
	})
	if err != nil {
		t.Fatalf("Failed to insert market data: %v", err)
	}
}
