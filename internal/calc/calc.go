// Package calc computes the expected return of buying a bond and holding it
// to a sale, offer or maturity date.
package calc

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

var (
	// ErrIncompleteInput means a required field is missing or unparseable.
	ErrIncompleteInput = errors.New("incomplete calculation input")

	// ErrIncalculable means the inputs are complete but yield a non-finite
	// result, e.g. zero holding days or a zero buy price.
	ErrIncalculable = errors.New("result is not a finite number")
)

// Mode is how the position is closed.
type Mode string

const (
	// ModeMaturity holds to redemption; only the buy side pays commission.
	ModeMaturity Mode = "maturity"
	// ModeOffer sells back to the issuer on the offer date.
	ModeOffer Mode = "offer"
	// ModeSell sells on the market.
	ModeSell Mode = "sell"
)

// ParseMode returns the mode named s. Unknown names are not valid and make
// the input incomplete, rather than falling back to a market sale as older
// versions of the calculator did for anything other than "maturity".
func ParseMode(s string) (Mode, bool) {
	switch m := Mode(s); m {
	case ModeMaturity, ModeOffer, ModeSell:
		return m, true
	default:
		return "", false
	}
}

// Valid reports whether m is one of the known modes.
func (m Mode) Valid() bool {
	_, ok := ParseMode(string(m))
	return ok
}

// Input is the set of transaction parameters. Commission, Tax, Coupon,
// BuyPrice and SellPrice are in percent (of par for prices); ParValue is in
// the bond's face currency.
type Input struct {
	Commission Value
	Tax        Value
	Coupon     Value
	ParValue   Value
	BuyDate    Value
	BuyPrice   Value
	SellDate   Value
	SellPrice  Value
	Mode       Mode
}

// Result is the outcome of a calculation. The zero Result means there is
// nothing to show yet.
type Result struct {
	Profitability float64 `json:"profitability"` // annualised, percent
	CurrentYield  float64 `json:"current_yield"` // percent
	Income        float64 `json:"income"`        // in par currency, after tax
	Days          int     `json:"days"`
}

// Empty reports whether r is the empty result. A computed result always has
// a non-zero holding period.
func (r Result) Empty() bool {
	return r == Result{}
}

// Rounded returns r with the monetary and percent figures rounded half away
// from zero to two decimals, as shown to users.
func (r Result) Rounded() Result {
	round := func(f float64) float64 {
		return decimal.NewFromFloat(f).Round(2).InexactFloat64()
	}
	return Result{
		Profitability: round(r.Profitability),
		CurrentYield:  round(r.CurrentYield),
		Income:        round(r.Income),
		Days:          r.Days,
	}
}

// Calculate returns the result for in, or the empty Result when in is
// incomplete or cannot produce finite figures.
func Calculate(in Input) Result {
	res, err := Evaluate(in)
	if err != nil {
		return Result{}
	}
	return res
}

// Evaluate is Calculate reporting why the result is empty. The returned
// error wraps ErrIncompleteInput (naming the first bad field) or
// ErrIncalculable.
func Evaluate(in Input) (Result, error) {
	var (
		commission, tax, coupon, par, buyPrice, sellPrice float64
		ok                                                bool
	)

	percents := []struct {
		name string
		v    Value
		dst  *float64
	}{
		{"commission", in.Commission, &commission},
		{"tax", in.Tax, &tax},
		{"coupon", in.Coupon, &coupon},
		{"buy price", in.BuyPrice, &buyPrice},
		{"sell price", in.SellPrice, &sellPrice},
	}
	for _, p := range percents {
		if *p.dst, ok = p.v.percent(); !ok {
			return Result{}, incomplete(p.name)
		}
	}
	if par, ok = in.ParValue.float(); !ok {
		return Result{}, incomplete("par value")
	}
	buyDate, ok := in.BuyDate.day()
	if !ok {
		return Result{}, incomplete("buy date")
	}
	sellDate, ok := in.SellDate.day()
	if !ok {
		return Result{}, incomplete("sell date")
	}
	if !in.Mode.Valid() {
		return Result{}, incomplete("mode")
	}

	days := daysBetween(buyDate, sellDate)
	c := commission
	if in.Mode == ModeMaturity {
		c = commission / 2
	}

	fdays := float64(days)
	income := ((sellPrice*par - buyPrice*par) +
		par*coupon/365*fdays -
		(sellPrice*par+buyPrice*par)*c) * (1 - tax)
	profitability := (income * 365 / fdays) /
		(buyPrice*par + (sellPrice+buyPrice)*par*c) * 100
	currentYield := coupon / buyPrice * 100 * (1 - tax)

	for _, f := range []float64{income, profitability, currentYield} {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return Result{}, ErrIncalculable
		}
	}

	return Result{
		Profitability: profitability,
		CurrentYield:  currentYield,
		Income:        income,
		Days:          days,
	}, nil
}

func incomplete(field string) error {
	return fmt.Errorf("%w: %s", ErrIncompleteInput, field)
}
