package testutil

import (
	"encoding/json"
	"maps"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// ISSServer is a fake of the ISS bonds endpoint. It serves the securities
// and marketdata blocks in compact form, honouring the requested column
// list, and can be told to fail.
type ISSServer struct {
	server *httptest.Server

	mu         sync.Mutex
	securities []map[string]any
	marketData []map[string]any
	status     int
	body       string
	requests   map[string]int
}

// NewISSServer starts a fake ISS server that is closed when the test ends.
// It starts with no rows.
func NewISSServer(t *testing.T) *ISSServer {
	t.Helper()

	s := &ISSServer{status: http.StatusOK, requests: map[string]int{}}
	s.server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.server.Close)
	return s
}

// URL returns the base URL to configure the client with.
func (s *ISSServer) URL() string {
	return s.server.URL
}

// WithSecurities sets the rows of the securities block.
func (s *ISSServer) WithSecurities(rows ...map[string]any) *ISSServer {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.securities = rows
	return s
}

// WithMarketData sets the rows of the marketdata block.
func (s *ISSServer) WithMarketData(rows ...map[string]any) *ISSServer {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.marketData = rows
	return s
}

// WithStatus makes every following request answer with status.
func (s *ISSServer) WithStatus(status int) *ISSServer {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
	return s
}

// WithBody makes every following request answer with a raw body.
func (s *ISSServer) WithBody(body string) *ISSServer {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.body = body
	return s
}

// Requests returns how many times block was requested.
func (s *ISSServer) Requests(block string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[block]
}

func (s *ISSServer) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	block := r.URL.Query().Get("iss.only")
	s.requests[block]++

	if s.status != http.StatusOK {
		http.Error(w, "unavailable", s.status)
		return
	}
	if s.body != "" {
		_, _ = w.Write([]byte(s.body))
		return
	}

	var rows []map[string]any
	switch block {
	case "securities":
		rows = s.securities
	case "marketdata":
		rows = s.marketData
	default:
		http.Error(w, "unknown block", http.StatusBadRequest)
		return
	}

	columns := strings.Split(r.URL.Query().Get(block+".columns"), ",")
	data := make([][]any, 0, len(rows))
	for _, row := range rows {
		values := make([]any, len(columns))
		for i, c := range columns {
			values[i] = row[c]
		}
		data = append(data, values)
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		block: map[string]any{"columns": columns, "data": data},
	})
}

// SecurityRow returns a well-formed ISS securities row for secID with
// overrides applied on top.
func SecurityRow(secID string, overrides map[string]any) map[string]any {
	row := map[string]any{
		"SECID":         secID,
		"ISIN":          secID,
		"SHORTNAME":     "Bond " + secID,
		"STATUS":        "A",
		"BOARDID":       "TQCB",
		"MATDATE":       "2030-06-01",
		"COUPONPERCENT": 8.0,
		"LISTLEVEL":     1,
		"COUPONVALUE":   39.89,
		"NEXTCOUPON":    "2024-12-01",
		"ACCRUEDINT":    12.5,
		"CURRENCYID":    "SUR",
		"FACEUNIT":      "SUR",
		"FACEVALUE":     1000,
		"COUPONPERIOD":  182,
		"ISSUESIZE":     1000000,
		"OFFERDATE":     nil,
		"PREVPRICE":     98.0,
		"REGNUMBER":     "4B02-01-00000-A",
	}
	maps.Copy(row, overrides)
	return row
}

// MarketDataRow returns an ISS marketdata row.
func MarketDataRow(board, secID string, last any) map[string]any {
	return map[string]any{"BOARDID": board, "SECID": secID, "LAST": last}
}
