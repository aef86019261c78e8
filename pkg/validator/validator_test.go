package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	assert.True(t, ValidateEmail("anna@example.com"))
	assert.True(t, ValidateEmail("a.b+c@mail.ru"))
	assert.False(t, ValidateEmail("anna@"))
	assert.False(t, ValidateEmail("не почта"))
}

func TestValidatePhone(t *testing.T) {
	assert.True(t, ValidatePhone("+79991234567"))
	assert.True(t, ValidatePhone("8 (999) 123-45-67"))
	assert.False(t, ValidatePhone("12345"))
	assert.False(t, ValidatePhone("абв"))
}

func TestValidateDateAndClock(t *testing.T) {
	assert.True(t, ValidateDate("2026-09-10"))
	assert.False(t, ValidateDate("10.09.2026"))
	assert.False(t, ValidateDate("2026-13-01"))

	assert.True(t, ValidateClock("09:30"))
	assert.False(t, ValidateClock("24:00"))
	assert.False(t, ValidateClock("9:30"))
}

func TestFormatPhone(t *testing.T) {
	assert.Equal(t, "+79991234567", FormatPhone("8 (999) 123-45-67"))
	assert.Equal(t, "+79991234567", FormatPhone("79991234567"))
	assert.Equal(t, "+79991234567", FormatPhone("+79991234567"))
}
