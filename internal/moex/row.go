package moex

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"
)

// NoDate is the ISS placeholder for "not applicable" dates.
const NoDate = "0000-00-00"

const dateLayout = "2006-01-02"

var (
	errNull     = errors.New("value is null")
	errNotText  = errors.New("value is not a string")
	errNotNum   = errors.New("value is not a number")
	errNotInt   = errors.New("value is not an integer")
	errNoDate   = errors.New("value is the " + NoDate + " placeholder")
	errBadWidth = errors.New("row width does not match columns")
)

// row gives typed, name-based access to one positional ISS data row.
type row struct {
	n      int
	values []any
	idx    map[string]int
}

func newRow(n int, values []any, idx map[string]int, width int) (row, error) {
	if len(values) != width {
		return row{}, errBadWidth
	}
	return row{n: n, values: values, idx: idx}, nil
}

func (r row) raw(col string) any {
	return r.values[r.idx[col]]
}

func (r row) text(col string) (string, error) {
	switch v := r.raw(col).(type) {
	case nil:
		return "", errNull
	case string:
		return v, nil
	default:
		return "", errNotText
	}
}

// optText returns nil for null and empty values.
func (r row) optText(col string) (*string, error) {
	if r.raw(col) == nil {
		return nil, nil
	}
	s, err := r.text(col)
	if err != nil || s == "" {
		return nil, err
	}
	return &s, nil
}

func (r row) number(col string) (float64, error) {
	switch v := r.raw(col).(type) {
	case nil:
		return 0, errNull
	case json.Number:
		return v.Float64()
	case float64:
		return v, nil
	default:
		return 0, errNotNum
	}
}

func (r row) optNumber(col string) (*float64, error) {
	if r.raw(col) == nil {
		return nil, nil
	}
	f, err := r.number(col)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// integer accepts integral numbers written either as 5 or 5.0.
func (r row) integer(col string) (int64, error) {
	if n, ok := r.raw(col).(json.Number); ok {
		if i, err := n.Int64(); err == nil {
			return i, nil
		}
	}
	f, err := r.number(col)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || math.Abs(f) > math.MaxInt64 {
		return 0, errNotInt
	}
	return int64(f), nil
}

func (r row) date(col string) (time.Time, error) {
	s, err := r.text(col)
	if err != nil {
		return time.Time{}, err
	}
	if s == NoDate {
		return time.Time{}, errNoDate
	}
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	return d, nil
}

// optDate returns nil for null, empty and placeholder dates.
func (r row) optDate(col string) (*time.Time, error) {
	s, err := r.optText(col)
	if err != nil || s == nil || *s == NoDate {
		return nil, err
	}
	d, err := time.Parse(dateLayout, *s)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q", *s)
	}
	return &d, nil
}
