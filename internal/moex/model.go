package moex

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Column names of the ISS bond securities table.
const (
	ColSecID         = "SECID"
	ColISIN          = "ISIN"
	ColShortName     = "SHORTNAME"
	ColStatus        = "STATUS"
	ColBoardID       = "BOARDID"
	ColMatDate       = "MATDATE"
	ColCouponPercent = "COUPONPERCENT"
	ColListLevel     = "LISTLEVEL"
	ColCouponValue   = "COUPONVALUE"
	ColNextCoupon    = "NEXTCOUPON"
	ColAccruedInt    = "ACCRUEDINT"
	ColCurrencyID    = "CURRENCYID"
	ColFaceUnit      = "FACEUNIT"
	ColFaceValue     = "FACEVALUE"
	ColCouponPeriod  = "COUPONPERIOD"
	ColIssueSize     = "ISSUESIZE"
	ColOfferDate     = "OFFERDATE"
	ColPrevPrice     = "PREVPRICE"
	ColRegNumber     = "REGNUMBER"
	ColLast          = "LAST"
)

// SecuritiesColumns is the column set requested from the securities block.
var SecuritiesColumns = []string{
	ColSecID, ColISIN, ColShortName, ColStatus, ColBoardID, ColMatDate,
	ColCouponPercent, ColListLevel, ColCouponValue, ColNextCoupon,
	ColAccruedInt, ColCurrencyID, ColFaceUnit, ColFaceValue, ColCouponPeriod,
	ColIssueSize, ColOfferDate, ColPrevPrice, ColRegNumber,
}

// MarketDataColumns is the column set requested from the marketdata block.
var MarketDataColumns = []string{ColBoardID, ColSecID, ColLast}

// Response is the raw compact ISS payload: one table per requested block,
// e.g. {"securities": {"columns": [...], "data": [[...], ...]}}.
type Response map[string]Table

// Table is one ISS block in compact form. Values in Data are positional and
// must be resolved through Columns; numbers are kept as json.Number.
type Table struct {
	Columns []string `json:"columns"`
	Data    [][]any  `json:"data"`
}

// Block returns the named table or an error when the payload lacks it.
func (r Response) Block(name string) (Table, error) {
	t, ok := r[name]
	if !ok {
		return Table{}, fmt.Errorf("iss response has no %q block", name)
	}
	return t, nil
}

// index maps column names to positions and verifies that every required
// column is present.
func (t Table) index(required []string) (map[string]int, error) {
	idx := make(map[string]int, len(t.Columns))
	for i, c := range t.Columns {
		idx[c] = i
	}
	var missing []string
	for _, c := range required {
		if _, ok := idx[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("iss table is missing columns: %s", strings.Join(missing, ","))
	}
	return idx, nil
}

// RowError describes an upstream row rejected at the ingestion boundary.
type RowError struct {
	Row    int
	SecID  string // empty when the secid itself could not be read
	Column string
	Err    error
}

func (e *RowError) Error() string {
	if e.SecID != "" {
		return fmt.Sprintf("row %d (%s): column %s: %v", e.Row, e.SecID, e.Column, e.Err)
	}
	return fmt.Sprintf("row %d: column %s: %v", e.Row, e.Column, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// StatusError is returned when ISS answers with a non-200 status.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("iss returned status %d for %s", e.StatusCode, e.URL)
}

// decodeResponse parses a compact ISS payload keeping numbers exact.
func decodeResponse(data []byte) (Response, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var resp Response
	if err := dec.Decode(&resp); err != nil {
		return nil, err
	}
	return resp, nil
}
