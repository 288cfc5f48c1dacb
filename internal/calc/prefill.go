package calc

import (
	"time"

	"github.com/ndewijer/bondcalc/internal/model"
)

// Defaults are the user-level parameters a bond does not carry.
type Defaults struct {
	Commission float64 // percent per trade
	Tax        float64 // percent of income
}

// SaleModes lists the ways a position in b can be closed, the preferred one
// first: the offer when b has one, then maturity, then a market sale.
func SaleModes(b model.Bond) []Mode {
	modes := make([]Mode, 0, 3)
	if b.OfferDate != nil {
		modes = append(modes, ModeOffer)
	}
	return append(modes, ModeMaturity, ModeSell)
}

// Prefill builds the calculator input for buying b today at its current
// price, closed in the preferred sale mode. Fields b does not know (coupon
// of a floater, price of an untraded bond) stay absent.
func Prefill(b model.Bond, today time.Time, d Defaults) Input {
	in := Input{
		Commission: Number(d.Commission),
		Tax:        Number(d.Tax),
		Coupon:     OptNumber(b.CouponPercent),
		ParValue:   Number(b.FaceValue),
		BuyDate:    Date(calendarDay(today)),
		BuyPrice:   OptNumber(b.QuotedPrice()),
		SellPrice:  Number(100),
	}
	return in.WithSaleMode(b, SaleModes(b)[0])
}

// WithSaleMode switches in to mode m and moves the sale date accordingly:
// the offer or maturity date of b (redeemed at par), or the day after the
// buy date for a market sale, which keeps the entered sale price.
func (in Input) WithSaleMode(b model.Bond, m Mode) Input {
	in.Mode = m
	switch m {
	case ModeOffer:
		in.SellDate = OptDate(b.OfferDate)
		in.SellPrice = Number(100)
	case ModeMaturity:
		in.SellDate = OptDate(b.MatDate)
		in.SellPrice = Number(100)
	case ModeSell:
		in.SellDate = Value{}
		if buy, ok := in.BuyDate.day(); ok {
			in.SellDate = Date(buy.AddDate(0, 0, 1))
		}
	}
	return in
}
