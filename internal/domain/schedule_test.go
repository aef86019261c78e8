package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDayOfWeekOf(t *testing.T) {
	// 2026-09-06 — воскресенье, дальше неделя по порядку.
	cases := []struct {
		date string
		want DayOfWeek
	}{
		{"2026-09-06", DaySunday},
		{"2026-09-07", DayMonday},
		{"2026-09-08", DayTuesday},
		{"2026-09-09", DayWednesday},
		{"2026-09-10", DayThursday},
		{"2026-09-11", DayFriday},
		{"2026-09-12", DaySaturday},
	}

	for _, tc := range cases {
		date, err := time.Parse("2006-01-02", tc.date)
		assert.NoError(t, err)
		assert.Equal(t, tc.want, DayOfWeekOf(date), tc.date)
	}
}

func TestDayOfWeekIsValid(t *testing.T) {
	for day := DaySunday; day <= DaySaturday; day++ {
		assert.True(t, day.IsValid())
	}
	assert.False(t, DayOfWeek(-1).IsValid())
	assert.False(t, DayOfWeek(7).IsValid())
}

func TestBookingStatusIsTerminal(t *testing.T) {
	assert.False(t, BookingStatusPending.IsTerminal())
	assert.False(t, BookingStatusConfirmed.IsTerminal())
	assert.True(t, BookingStatusCancelled.IsTerminal())
	assert.True(t, BookingStatusCompleted.IsTerminal())
}
