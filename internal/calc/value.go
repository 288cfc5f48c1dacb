package calc

import (
	"math"
	"strconv"
	"strings"
	"time"
)

type valueKind int

const (
	kindAbsent valueKind = iota
	kindText
	kindNumber
	kindDate
)

// Value is one calculator input as it arrives from a form, a flag or a
// stored bond: free text, a number or a date. The zero Value is absent.
type Value struct {
	kind valueKind
	text string
	num  float64
	date time.Time
}

// Text wraps user-entered text. Surrounding whitespace is ignored and empty
// text is absent.
func Text(s string) Value {
	return Value{kind: kindText, text: strings.TrimSpace(s)}
}

// Number wraps a numeric value. Zero is a present value, so a zero
// commission or tax still calculates; older versions of the calculator
// treated a zero field as missing.
func Number(f float64) Value {
	return Value{kind: kindNumber, num: f}
}

// Date wraps a calendar date; the time of day is ignored.
func Date(t time.Time) Value {
	return Value{kind: kindDate, date: t}
}

// OptNumber is Number for an optional value; nil is absent.
func OptNumber(f *float64) Value {
	if f == nil {
		return Value{}
	}
	return Number(*f)
}

// OptDate is Date for an optional value; nil is absent.
func OptDate(t *time.Time) Value {
	if t == nil {
		return Value{}
	}
	return Date(*t)
}

// Date layouts accepted for text input: ISO and the dd.mm.yyyy display form.
const (
	isoLayout     = "2006-01-02"
	displayLayout = "02.01.2006"
)

// IsAbsent reports whether v carries no value at all.
func (v Value) IsAbsent() bool {
	return v.kind == kindAbsent || (v.kind == kindText && v.text == "")
}

// String renders v for display; absent values render empty.
func (v Value) String() string {
	switch v.kind {
	case kindText:
		return v.text
	case kindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case kindDate:
		return v.date.Format(isoLayout)
	default:
		return ""
	}
}

// float resolves v as a finite number.
func (v Value) float() (float64, bool) {
	var f float64
	switch v.kind {
	case kindNumber:
		f = v.num
	case kindText:
		if v.text == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(v.text, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// percent resolves v as "that many percent" and returns the fraction.
func (v Value) percent() (float64, bool) {
	f, ok := v.float()
	if !ok {
		return 0, false
	}
	return f / 100, true
}

// day resolves v as a calendar date at midnight UTC.
func (v Value) day() (time.Time, bool) {
	switch v.kind {
	case kindDate:
		return calendarDay(v.date), true
	case kindText:
		for _, layout := range []string{isoLayout, displayLayout} {
			if len(v.text) != len(layout) {
				continue
			}
			if d, err := time.Parse(layout, v.text); err == nil {
				return d, true
			}
		}
	}
	return time.Time{}, false
}

func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// daysBetween counts calendar days from start to end; negative when end is
// before start.
func daysBetween(start, end time.Time) int {
	return int(math.Round(end.Sub(start).Hours() / 24))
}
