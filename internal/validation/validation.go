// Package validation checks user-supplied command input before it reaches
// the services.
package validation

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/ndewijer/bondcalc/internal/apperrors"
)

// MinQueryLength is the shortest search query worth running against the
// full bond list.
const MinQueryLength = 3

// maxSecIDLength bounds exchange security codes.
const maxSecIDLength = 51

// ValidateSearchQuery checks that query is long enough to search for.
func ValidateSearchQuery(query string) error {
	if utf8.RuneCountInString(strings.TrimSpace(query)) < MinQueryLength {
		return fmt.Errorf("%w: need at least %d characters", apperrors.ErrQueryTooShort, MinQueryLength)
	}
	return nil
}

// ValidateSecID checks that secID looks like an exchange security code.
func ValidateSecID(secID string) error {
	if secID == "" {
		return apperrors.ErrInvalidSecID
	}
	if len(secID) > maxSecIDLength || strings.IndexFunc(secID, unicode.IsSpace) >= 0 {
		return fmt.Errorf("%w: %q", apperrors.ErrInvalidSecID, secID)
	}
	return nil
}

// CheckNumber records a field error when s is not a finite number.
// strconv accepts "NaN" and "Inf", so those are rejected separately.
func (e *Error) CheckNumber(field, s string) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		e.Add(field, "must be a number")
	}
}

// CheckDate records a field error when s is not a YYYY-MM-DD or DD.MM.YYYY
// calendar date.
func (e *Error) CheckDate(field, s string) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.DateOnly, "02.01.2006"} {
		if len(s) == len(layout) {
			if _, err := time.Parse(layout, s); err == nil {
				return
			}
		}
	}
	e.Add(field, "must be a date (YYYY-MM-DD or DD.MM.YYYY)")
}
