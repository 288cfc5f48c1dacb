package main

import (
	"encoding/json"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/ndewijer/bondcalc/internal/calc"
	"github.com/ndewijer/bondcalc/internal/model"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	numberStyle = cellStyle.Align(lipgloss.Right)
	labelStyle  = cellStyle.Foreground(lipgloss.Color("244"))
)

func newTable() *table.Table {
	return table.New().Border(lipgloss.NormalBorder())
}

// renderBondList renders search results, one bond per row.
func renderBondList(bonds []model.Bond) string {
	rows := make([][]string, 0, len(bonds))
	for _, b := range bonds {
		yield := "-"
		if y, ok := b.CurrentYield(); ok {
			yield = formatFloat(y)
		}
		rows = append(rows, []string{
			b.SecID,
			b.ShortName,
			formatOptFloat(b.CouponPercent),
			formatOptFloat(b.Price),
			yield,
			formatOptDate(b.MatDate),
			formatOptDate(b.OfferDate),
			model.CurrencySymbol(b.FaceUnit),
		})
	}

	numeric := map[int]bool{2: true, 3: true, 4: true}
	return newTable().
		Headers("SECID", "NAME", "COUPON %", "PRICE %", "YIELD %", "MATURITY", "OFFER", "CCY").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case numeric[col]:
				return numberStyle
			default:
				return cellStyle
			}
		}).
		String()
}

// renderBond renders every field of one bond as label/value pairs.
func renderBond(b model.Bond) string {
	ccy := model.CurrencySymbol(b.FaceUnit)
	maturity := formatOptDate(b.MatDate)
	if b.Perpetual() {
		maturity = "perpetual"
	}
	coupon := "-"
	if b.CouponValue != nil {
		coupon = formatFloat(*b.CouponValue) + " " + ccy
	}
	regNumber := "-"
	if b.RegNumber != nil {
		regNumber = *b.RegNumber
	}

	return labelled([][2]string{
		{"Name", b.ShortName},
		{"SECID", b.SecID},
		{"ISIN", b.ISIN},
		{"Registration", regNumber},
		{"List level", strconv.Itoa(b.ListLevel)},
		{"Face value", formatFloat(b.FaceValue) + " " + ccy},
		{"Currency", b.CurrencyID},
		{"Issue size", strconv.FormatInt(b.IssueSize, 10)},
		{"Maturity", maturity},
		{"Offer", formatOptDate(b.OfferDate)},
		{"Coupon rate %", formatOptFloat(b.CouponPercent)},
		{"Next coupon", b.CouponDate.Format(time.DateOnly)},
		{"Coupon amount", coupon},
		{"Coupon period, days", strconv.Itoa(b.CouponPeriod)},
		{"Accrued interest", formatFloat(b.AccruedInterest) + " " + ccy},
		{"Price %", formatOptFloat(b.Price)},
		{"Previous close %", formatOptFloat(b.PrevPrice)},
	})
}

// renderResult renders the calculator input next to its rounded result.
func renderResult(in calc.Input, res calc.Result, currency string) string {
	return labelled([][2]string{
		{"Mode", string(in.Mode)},
		{"Buy", in.BuyDate.String() + " at " + in.BuyPrice.String() + "%"},
		{"Sell", in.SellDate.String() + " at " + in.SellPrice.String() + "%"},
		{"Coupon %", in.Coupon.String()},
		{"Par value", in.ParValue.String()},
		{"Commission %", in.Commission.String()},
		{"Tax %", in.Tax.String()},
		{"Profitability, year %", formatFloat(res.Profitability)},
		{"Current yield %", formatFloat(res.CurrentYield)},
		{"Income", formatFloat(res.Income) + " " + model.CurrencySymbol(currency)},
		{"Days", formatDays(res.Days)},
	})
}

func renderSnapshots(snaps []model.Snapshot) string {
	rows := make([][]string, 0, len(snaps))
	for _, s := range snaps {
		rows = append(rows, []string{
			string(s.Kind),
			strconv.Itoa(s.Rows),
			strconv.Itoa(s.Rejected),
			s.RefreshedAt.Local().Format(time.DateTime),
			s.RunID,
		})
	}
	return newTable().
		Headers("TABLE", "ROWS", "REJECTED", "REFRESHED", "RUN").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		String()
}

func labelled(pairs [][2]string) string {
	rows := make([][]string, len(pairs))
	for i, p := range pairs {
		rows[i] = []string{p[0], p[1]}
	}
	return newTable().
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if col == 0 {
				return labelStyle
			}
			return cellStyle
		}).
		String()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatOptFloat(f *float64) string {
	if f == nil {
		return "-"
	}
	return formatFloat(*f)
}

func formatOptDate(d *time.Time) string {
	if d == nil {
		return "-"
	}
	return d.Format(time.DateOnly)
}

// formatDays groups thousands with a space: 1 096.
func formatDays(days int) string {
	s := strconv.Itoa(days)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
