package moex

import (
	"errors"

	"github.com/ndewijer/bondcalc/internal/model"
)

// Securities is the outcome of mapping an ISS securities table.
type Securities struct {
	Bonds    []model.Bond
	Skipped  int         // rows filtered out by board or coupon-date rules
	Rejected []*RowError // malformed rows
}

// MarketData is the outcome of mapping an ISS marketdata table.
type MarketData struct {
	Rows     []model.MarketData
	Skipped  int
	Rejected []*RowError
}

// ParseSecurities maps the securities block into bonds.
//
// Rows traded on excludedBoard and rows whose next coupon date is the
// 0000-00-00 placeholder are skipped. Rows that fail typed validation are
// collected in Rejected instead of being stored. A missing column fails the
// whole table.
func ParseSecurities(t Table, excludedBoard string) (Securities, error) {
	idx, err := t.index(SecuritiesColumns)
	if err != nil {
		return Securities{}, err
	}

	var out Securities
	for i, values := range t.Data {
		r, err := newRow(i, values, idx, len(t.Columns))
		if err != nil {
			out.Rejected = append(out.Rejected, &RowError{Row: i, Err: err})
			continue
		}
		if skipRow(r, excludedBoard, ColNextCoupon) {
			out.Skipped++
			continue
		}
		bond, rerr := mapBond(r)
		if rerr != nil {
			out.Rejected = append(out.Rejected, rerr)
			continue
		}
		out.Bonds = append(out.Bonds, bond)
	}
	return out, nil
}

// ParseMarketData maps the marketdata block into price rows. Rows on the
// excluded board and rows without a last price are skipped; when a secid
// repeats, the later row wins.
func ParseMarketData(t Table, excludedBoard string) (MarketData, error) {
	idx, err := t.index(MarketDataColumns)
	if err != nil {
		return MarketData{}, err
	}

	var out MarketData
	pos := make(map[string]int)
	for i, values := range t.Data {
		r, err := newRow(i, values, idx, len(t.Columns))
		if err != nil {
			out.Rejected = append(out.Rejected, &RowError{Row: i, Err: err})
			continue
		}
		if skipRow(r, excludedBoard, "") || r.raw(ColLast) == nil {
			out.Skipped++
			continue
		}
		secID, err := r.text(ColSecID)
		if err != nil || secID == "" {
			out.Rejected = append(out.Rejected, rowError(r, "", ColSecID, orEmpty(err)))
			continue
		}
		last, err := r.number(ColLast)
		if err != nil {
			out.Rejected = append(out.Rejected, rowError(r, secID, ColLast, err))
			continue
		}

		md := model.MarketData{SecID: secID, LastPrice: last}
		if p, ok := pos[secID]; ok {
			out.Rows[p] = md
			continue
		}
		pos[secID] = len(out.Rows)
		out.Rows = append(out.Rows, md)
	}
	return out, nil
}

var errEmpty = errors.New("value is empty")

func orEmpty(err error) error {
	if err != nil {
		return err
	}
	return errEmpty
}

// skipRow applies the board exclusion and, when dateCol is set, the
// placeholder coupon date filter.
func skipRow(r row, excludedBoard, dateCol string) bool {
	if board, _ := r.raw(ColBoardID).(string); board == excludedBoard && excludedBoard != "" {
		return true
	}
	if dateCol != "" {
		if d, _ := r.raw(dateCol).(string); d == NoDate {
			return true
		}
	}
	return false
}

func rowError(r row, secID, col string, err error) *RowError {
	return &RowError{Row: r.n, SecID: secID, Column: col, Err: err}
}

func mapBond(r row) (model.Bond, *RowError) {
	var (
		b   model.Bond
		err error
	)

	b.SecID, err = r.text(ColSecID)
	if err != nil || b.SecID == "" {
		return b, rowError(r, "", ColSecID, orEmpty(err))
	}
	fail := func(col string, err error) (model.Bond, *RowError) {
		return model.Bond{}, rowError(r, b.SecID, col, err)
	}

	if b.ShortName, err = r.text(ColShortName); err != nil {
		return fail(ColShortName, err)
	}
	if b.ISIN, err = r.text(ColISIN); err != nil {
		return fail(ColISIN, err)
	}
	if b.MatDate, err = r.optDate(ColMatDate); err != nil {
		return fail(ColMatDate, err)
	}
	if b.CouponPercent, err = r.optNumber(ColCouponPercent); err != nil {
		return fail(ColCouponPercent, err)
	}
	level, err := r.integer(ColListLevel)
	if err != nil {
		return fail(ColListLevel, err)
	}
	b.ListLevel = int(level)

	// ISS reports 0 when the next coupon amount is not yet known.
	if b.CouponValue, err = r.optNumber(ColCouponValue); err != nil {
		return fail(ColCouponValue, err)
	}
	if b.CouponValue != nil && *b.CouponValue == 0 {
		b.CouponValue = nil
	}

	if b.CouponDate, err = r.date(ColNextCoupon); err != nil {
		return fail(ColNextCoupon, err)
	}
	if b.AccruedInterest, err = r.number(ColAccruedInt); err != nil {
		return fail(ColAccruedInt, err)
	}
	if b.CurrencyID, err = r.text(ColCurrencyID); err != nil {
		return fail(ColCurrencyID, err)
	}
	if b.FaceUnit, err = r.text(ColFaceUnit); err != nil {
		return fail(ColFaceUnit, err)
	}
	if b.FaceValue, err = r.number(ColFaceValue); err != nil {
		return fail(ColFaceValue, err)
	}
	period, err := r.integer(ColCouponPeriod)
	if err != nil {
		return fail(ColCouponPeriod, err)
	}
	b.CouponPeriod = int(period)
	if b.IssueSize, err = r.integer(ColIssueSize); err != nil {
		return fail(ColIssueSize, err)
	}
	if b.OfferDate, err = r.optDate(ColOfferDate); err != nil {
		return fail(ColOfferDate, err)
	}
	if b.PrevPrice, err = r.optNumber(ColPrevPrice); err != nil {
		return fail(ColPrevPrice, err)
	}
	if b.RegNumber, err = r.optText(ColRegNumber); err != nil {
		return fail(ColRegNumber, err)
	}
	return b, nil
}
