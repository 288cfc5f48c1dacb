package moex_test

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/ndewijer/bondcalc/internal/moex"
	"github.com/ndewijer/bondcalc/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wireTable builds a Table the way the client decodes one off the wire, so
// numbers arrive as json.Number.
func wireTable(t *testing.T, columns []string, rows ...map[string]any) moex.Table {
	t.Helper()

	data := make([][]any, 0, len(rows))
	for _, r := range rows {
		values := make([]any, len(columns))
		for i, c := range columns {
			values[i] = r[c]
		}
		data = append(data, values)
	}
	raw, err := json.Marshal(map[string]any{"columns": columns, "data": data})
	require.NoError(t, err)

	var table moex.Table
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	require.NoError(t, dec.Decode(&table))
	return table
}

func securities(t *testing.T, rows ...map[string]any) moex.Table {
	return wireTable(t, moex.SecuritiesColumns, rows...)
}

func TestParseSecurities(t *testing.T) {
	t.Run("maps every column", func(t *testing.T) {
		res, err := moex.ParseSecurities(securities(t,
			testutil.SecurityRow("RU000A0JX0J2", map[string]any{
				"SHORTNAME": "ГазпромК 1",
				"ISIN":      "RU000A0JX0J2",
				"OFFERDATE": "2026-03-01",
			}),
		), "SPOB")
		require.NoError(t, err)
		require.Len(t, res.Bonds, 1)
		assert.Empty(t, res.Rejected)

		b := res.Bonds[0]
		assert.Equal(t, "RU000A0JX0J2", b.SecID)
		assert.Equal(t, "ГазпромК 1", b.ShortName)
		assert.Equal(t, testutil.DatePtr(2030, time.June, 1), b.MatDate)
		assert.Equal(t, testutil.Float(8), b.CouponPercent)
		assert.Equal(t, 1, b.ListLevel)
		assert.Equal(t, testutil.Float(39.89), b.CouponValue)
		assert.Equal(t, testutil.Date(2024, time.December, 1), b.CouponDate)
		assert.InDelta(t, 12.5, b.AccruedInterest, 1e-9)
		assert.Equal(t, "SUR", b.CurrencyID)
		assert.Equal(t, "SUR", b.FaceUnit)
		assert.InDelta(t, 1000.0, b.FaceValue, 1e-9)
		assert.Equal(t, 182, b.CouponPeriod)
		assert.Equal(t, int64(1_000_000), b.IssueSize)
		assert.Equal(t, testutil.DatePtr(2026, time.March, 1), b.OfferDate)
		assert.Equal(t, testutil.Float(98), b.PrevPrice)
		assert.Equal(t, testutil.String("4B02-01-00000-A"), b.RegNumber)
		assert.Nil(t, b.Price)
	})

	t.Run("normalises upstream placeholders to absent", func(t *testing.T) {
		res, err := moex.ParseSecurities(securities(t,
			testutil.SecurityRow("NODATES1", map[string]any{
				"MATDATE":       moex.NoDate,
				"OFFERDATE":     "",
				"COUPONVALUE":   0,
				"COUPONPERCENT": nil,
				"PREVPRICE":     nil,
				"REGNUMBER":     nil,
			}),
			testutil.SecurityRow("NODATES2", map[string]any{"MATDATE": "", "OFFERDATE": moex.NoDate}),
		), "SPOB")
		require.NoError(t, err)
		require.Len(t, res.Bonds, 2)

		b := res.Bonds[0]
		assert.Nil(t, b.MatDate)
		assert.True(t, b.Perpetual())
		assert.Nil(t, b.OfferDate)
		assert.Nil(t, b.CouponValue)
		assert.Nil(t, b.CouponPercent)
		assert.Nil(t, b.PrevPrice)
		assert.Nil(t, b.RegNumber)

		assert.Nil(t, res.Bonds[1].MatDate)
		assert.Nil(t, res.Bonds[1].OfferDate)
	})

	t.Run("skips excluded board and placeholder coupon date", func(t *testing.T) {
		res, err := moex.ParseSecurities(securities(t,
			testutil.SecurityRow("KEEP0001", nil),
			testutil.SecurityRow("SPOB0001", map[string]any{"BOARDID": "SPOB"}),
			testutil.SecurityRow("NODATE01", map[string]any{"NEXTCOUPON": moex.NoDate}),
		), "SPOB")
		require.NoError(t, err)

		require.Len(t, res.Bonds, 1)
		assert.Equal(t, "KEEP0001", res.Bonds[0].SecID)
		assert.Equal(t, 2, res.Skipped)
		assert.Empty(t, res.Rejected)
	})

	t.Run("no excluded board keeps every board", func(t *testing.T) {
		res, err := moex.ParseSecurities(securities(t,
			testutil.SecurityRow("SPOB0001", map[string]any{"BOARDID": "SPOB"}),
		), "")
		require.NoError(t, err)
		assert.Len(t, res.Bonds, 1)
	})

	t.Run("rejects malformed rows", func(t *testing.T) {
		cases := map[string]map[string]any{
			moex.ColSecID:       {"SECID": nil},
			moex.ColListLevel:   {"LISTLEVEL": 1.5},
			moex.ColFaceValue:   {"FACEVALUE": "lots"},
			moex.ColNextCoupon:  {"NEXTCOUPON": nil},
			moex.ColMatDate:     {"MATDATE": "2030-13-01"},
			moex.ColShortName:   {"SHORTNAME": 42},
			moex.ColIssueSize:   {"ISSUESIZE": nil},
			moex.ColCouponValue: {"COUPONVALUE": "n/a"},
		}

		for column, override := range cases {
			t.Run(column, func(t *testing.T) {
				res, err := moex.ParseSecurities(securities(t,
					testutil.SecurityRow("GOOD0001", nil),
					testutil.SecurityRow("BAD00001", override),
				), "SPOB")
				require.NoError(t, err)

				require.Len(t, res.Bonds, 1)
				require.Len(t, res.Rejected, 1)
				assert.Equal(t, column, res.Rejected[0].Column)
				assert.Equal(t, 1, res.Rejected[0].Row)
			})
		}
	})

	t.Run("rejects rows of the wrong width", func(t *testing.T) {
		table := securities(t, testutil.SecurityRow("GOOD0001", nil))
		table.Data = append(table.Data, []any{"SHORT"})

		res, err := moex.ParseSecurities(table, "SPOB")
		require.NoError(t, err)
		assert.Len(t, res.Bonds, 1)
		assert.Len(t, res.Rejected, 1)
	})

	t.Run("missing column fails the table", func(t *testing.T) {
		table := wireTable(t, []string{moex.ColSecID, moex.ColBoardID},
			map[string]any{"SECID": "X", "BOARDID": "TQCB"})

		_, err := moex.ParseSecurities(table, "SPOB")
		assert.ErrorContains(t, err, "MATDATE")
	})
}

func TestParseMarketData(t *testing.T) {
	marketData := func(rows ...map[string]any) moex.Table {
		return wireTable(t, moex.MarketDataColumns, rows...)
	}

	t.Run("keeps traded rows and the last duplicate", func(t *testing.T) {
		res, err := moex.ParseMarketData(marketData(
			testutil.MarketDataRow("TQCB", "A", 99.5),
			testutil.MarketDataRow("TQCB", "B", nil),
			testutil.MarketDataRow("SPOB", "C", 50),
			testutil.MarketDataRow("TQOB", "A", 100.25),
		), "SPOB")
		require.NoError(t, err)

		require.Len(t, res.Rows, 1)
		assert.Equal(t, "A", res.Rows[0].SecID)
		assert.InDelta(t, 100.25, res.Rows[0].LastPrice, 1e-9)
		assert.Equal(t, 2, res.Skipped)
	})

	t.Run("rejects non-numeric prices", func(t *testing.T) {
		res, err := moex.ParseMarketData(marketData(
			testutil.MarketDataRow("TQCB", "A", "cheap"),
			map[string]any{"BOARDID": "TQCB", "SECID": nil, "LAST": 99},
		), "SPOB")
		require.NoError(t, err)

		assert.Empty(t, res.Rows)
		require.Len(t, res.Rejected, 2)
		assert.Equal(t, moex.ColLast, res.Rejected[0].Column)
		assert.Equal(t, moex.ColSecID, res.Rejected[1].Column)
	})
}
