package model

import "time"

// Bond represents one exchange-listed bond as stored in the local snapshot.
// Optional upstream values are pointers; nil means the exchange reported
// nothing usable (perpetual bond, unknown coupon, no offer, no trades).
type Bond struct {
	ShortName       string     `json:"shortName"`
	SecID           string     `json:"secId"`
	ISIN            string     `json:"isin"`
	MatDate         *time.Time `json:"matDate,omitempty"`       // nil for perpetual bonds
	CouponPercent   *float64   `json:"couponPercent,omitempty"` // annual coupon rate, percent
	ListLevel       int        `json:"listLevel"`               // 1, 2 or 3
	CouponValue     *float64   `json:"couponValue,omitempty"`   // coupon cash amount per period
	CouponDate      time.Time  `json:"couponDate"`              // next coupon payment
	AccruedInterest float64    `json:"accruedInterest"`         // in settlement currency
	CurrencyID      string     `json:"currencyId"`              // settlement currency
	FaceUnit        string     `json:"faceUnit"`                // face value currency
	FaceValue       float64    `json:"faceValue"`
	CouponPeriod    int        `json:"couponPeriod"` // days
	IssueSize       int64      `json:"issueSize"`    // units
	OfferDate       *time.Time `json:"offerDate,omitempty"`
	PrevPrice       *float64   `json:"prevPrice,omitempty"` // percent of par
	RegNumber       *string    `json:"regNumber,omitempty"`

	// Price is filled on reads: the live last trade when market data has
	// one, else PrevPrice.
	Price *float64 `json:"price,omitempty"`
}

// Perpetual reports whether the bond has no maturity date.
func (b Bond) Perpetual() bool {
	return b.MatDate == nil
}

// QuotedPrice returns Price, falling back to PrevPrice for bonds that were
// not read through the market data join.
func (b Bond) QuotedPrice() *float64 {
	if b.Price != nil {
		return b.Price
	}
	return b.PrevPrice
}

// CurrentYield returns the coupon rate relative to the quoted price, in
// percent. The second value is false when either the coupon or the price is
// unknown or the price is zero.
func (b Bond) CurrentYield() (float64, bool) {
	price := b.QuotedPrice()
	if b.CouponPercent == nil || price == nil || *price == 0 {
		return 0, false
	}
	return *b.CouponPercent / *price * 100, true
}

// MarketData is the latest traded price of a security, in percent of par.
type MarketData struct {
	SecID     string  `json:"secId"`
	LastPrice float64 `json:"lastPrice"`
}

// SnapshotKind identifies one of the independently refreshed tables.
type SnapshotKind string

const (
	SnapshotSecurities SnapshotKind = "securities"
	SnapshotMarketData SnapshotKind = "marketdata"
)

// Snapshot describes the last successfully installed refresh of one table.
type Snapshot struct {
	Kind        SnapshotKind `json:"kind"`
	RunID       string       `json:"runId"`
	Rows        int          `json:"rows"`
	Rejected    int          `json:"rejected"` // upstream rows dropped as malformed
	RefreshedAt time.Time    `json:"refreshedAt"`
}

var currencySymbols = map[string]string{
	"SUR": "₽",
	"RUB": "₽",
	"USD": "$",
	"EUR": "€",
	"CNY": "¥",
}

// CurrencySymbol maps an exchange currency code to its display symbol,
// returning the code itself when no symbol is known.
func CurrencySymbol(code string) string {
	if s, ok := currencySymbols[code]; ok {
		return s
	}
	return code
}
