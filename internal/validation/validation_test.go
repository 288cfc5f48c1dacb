package validation

import (
	"errors"
	"testing"

	"github.com/ndewijer/bondcalc/internal/apperrors"
	"github.com/stretchr/testify/assert"
)

func TestValidateSearchQuery(t *testing.T) {
	tests := []struct {
		query string
		ok    bool
	}{
		{"офз", true},
		{"RU0", true},
		{"ru", false},
		{"  ab  ", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			err := ValidateSearchQuery(tt.query)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, apperrors.ErrQueryTooShort)
		})
	}
}

func TestValidateSecID(t *testing.T) {
	assert.NoError(t, ValidateSecID("SU26238RMFS4"))
	assert.ErrorIs(t, ValidateSecID(""), apperrors.ErrInvalidSecID)
	assert.ErrorIs(t, ValidateSecID("RU 000"), apperrors.ErrInvalidSecID)
}

func TestError(t *testing.T) {
	t.Run("no failures is nil", func(t *testing.T) {
		var verr Error
		verr.CheckNumber("par", "1000")
		verr.CheckDate("buy-date", "2024-01-01")
		verr.CheckDate("sell-date", "01.07.2024")
		assert.NoError(t, verr.Err())
	})

	t.Run("collects every failing field", func(t *testing.T) {
		var verr Error
		verr.CheckNumber("tax", "thirteen")
		verr.CheckDate("buy-date", "2024-02-30")
		verr.CheckDate("sell-date", "1.7.2024")

		err := verr.Err()
		var target *Error
		assert.True(t, errors.As(err, &target))
		assert.Len(t, target.Fields, 3)
		assert.Equal(t,
			"buy-date: must be a date (YYYY-MM-DD or DD.MM.YYYY); sell-date: must be a date (YYYY-MM-DD or DD.MM.YYYY); tax: must be a number",
			err.Error())
	})

	// WHY: strconv.ParseFloat accepts these spellings; letting them through
	// would surface later as a missing field instead of naming the flag.
	t.Run("non-finite numbers are rejected", func(t *testing.T) {
		for _, s := range []string{"NaN", "nan", "Inf", "+Inf", "-inf", "infinity"} {
			var verr Error
			verr.CheckNumber("coupon", s)
			assert.EqualError(t, verr.Err(), "coupon: must be a number", s)
		}
	})
}
