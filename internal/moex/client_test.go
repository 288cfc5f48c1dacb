package moex_test

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/ndewijer/bondcalc/internal/moex"
	"github.com/ndewijer/bondcalc/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(iss *testutil.ISSServer) *moex.ISSClient {
	return moex.NewISSClient(iss.URL()+"/", 5*time.Second, testutil.NewTestLogger())
}

func TestISSClient_BlockURL(t *testing.T) {
	c := moex.NewISSClient("https://iss.moex.com/", time.Second, testutil.NewTestLogger())

	u, err := url.Parse(c.BlockURL("marketdata", moex.MarketDataColumns))
	require.NoError(t, err)

	assert.Equal(t, "iss.moex.com", u.Host)
	assert.Equal(t, "/iss/engines/stock/markets/bonds/securities.json", u.Path)

	q := u.Query()
	assert.Equal(t, "compact", q.Get("iss.json"))
	assert.Equal(t, "off", q.Get("iss.meta"))
	assert.Equal(t, "dot", q.Get("iss.dp"))
	assert.Equal(t, "marketdata", q.Get("iss.only"))
	assert.Equal(t, "BOARDID,SECID,LAST", q.Get("marketdata.columns"))
}

func TestISSClient_Fetch(t *testing.T) {
	ctx := context.Background()

	t.Run("securities in requested column order", func(t *testing.T) {
		iss := testutil.NewISSServer(t).WithSecurities(
			testutil.SecurityRow("RU000A0JX0J2", nil),
			testutil.SecurityRow("RU000A0ZYU88", nil),
		)

		table, err := newClient(iss).FetchSecurities(ctx)
		require.NoError(t, err)

		assert.Equal(t, moex.SecuritiesColumns, table.Columns)
		assert.Len(t, table.Data, 2)
		assert.Equal(t, 1, iss.Requests("securities"))

		res, err := moex.ParseSecurities(table, "SPOB")
		require.NoError(t, err)
		assert.Len(t, res.Bonds, 2)
	})

	t.Run("market data", func(t *testing.T) {
		iss := testutil.NewISSServer(t).WithMarketData(testutil.MarketDataRow("TQCB", "A", 99.5))

		table, err := newClient(iss).FetchMarketData(ctx)
		require.NoError(t, err)
		assert.Equal(t, moex.MarketDataColumns, table.Columns)
		assert.Equal(t, 1, iss.Requests("marketdata"))
	})

	t.Run("non-200 status", func(t *testing.T) {
		iss := testutil.NewISSServer(t).WithStatus(http.StatusTooManyRequests)

		_, err := newClient(iss).FetchSecurities(ctx)
		var statusErr *moex.StatusError
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, http.StatusTooManyRequests, statusErr.StatusCode)
	})

	t.Run("malformed payload", func(t *testing.T) {
		iss := testutil.NewISSServer(t).WithBody(`<html>maintenance</html>`)

		_, err := newClient(iss).FetchSecurities(ctx)
		assert.ErrorContains(t, err, "failed to parse iss response")
	})

	t.Run("payload without the block", func(t *testing.T) {
		iss := testutil.NewISSServer(t).WithBody(`{"history": {"columns": [], "data": []}}`)

		_, err := newClient(iss).FetchMarketData(ctx)
		assert.ErrorContains(t, err, `no "marketdata" block`)
	})

	t.Run("cancelled context", func(t *testing.T) {
		iss := testutil.NewISSServer(t)
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := newClient(iss).FetchSecurities(cctx)
		assert.True(t, errors.Is(err, context.Canceled))
	})
}
