package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClockToMinutes(t *testing.T) {
	cases := []struct {
		clock   string
		minutes int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"09:30", 570, false},
		{"17:00", 1020, false},
		{"23:59", 1439, false},
		{"24:00", 0, true},
		{"9:30", 0, true},
		{"09:60", 0, true},
		{"пол десятого", 0, true},
		{"", 0, true},
	}

	for _, tc := range cases {
		minutes, err := ClockToMinutes(tc.clock)
		if tc.wantErr {
			assert.Error(t, err, tc.clock)
			continue
		}
		require.NoError(t, err, tc.clock)
		assert.Equal(t, tc.minutes, minutes, tc.clock)
	}
}

func TestMinutesToClockRoundTrip(t *testing.T) {
	for _, clock := range []string{"00:00", "09:05", "12:45", "23:59"} {
		minutes, err := ClockToMinutes(clock)
		require.NoError(t, err)
		assert.Equal(t, clock, MinutesToClock(minutes))
	}
}

func TestIntervalsOverlap(t *testing.T) {
	cases := []struct {
		name                       string
		start1, end1, start2, end2 int
		want                       bool
	}{
		{"полное совпадение", 600, 630, 600, 630, true},
		{"частичное пересечение", 600, 645, 630, 660, true},
		{"вложенный интервал", 600, 660, 615, 630, true},
		{"касание границ не пересечение", 600, 630, 630, 660, false},
		{"касание в обратном порядке", 630, 660, 600, 630, false},
		{"раздельные интервалы", 600, 630, 700, 730, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IntervalsOverlap(tc.start1, tc.end1, tc.start2, tc.end2))
			// Симметричность.
			assert.Equal(t, tc.want, IntervalsOverlap(tc.start2, tc.end2, tc.start1, tc.end1))
		})
	}
}
