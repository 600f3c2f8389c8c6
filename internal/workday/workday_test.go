package workday

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestChargeableDays(t *testing.T) {
	// 2026-01-05 is a Monday
	monday := day(2026, 1, 5)

	cases := []struct {
		name  string
		start time.Time
		end   time.Time
		want  int
	}{
		{"single weekday", monday, monday, 1},
		{"monday to friday", monday, day(2026, 1, 9), 5},
		{"monday to next monday", monday, day(2026, 1, 12), 6},
		{"weekend only", day(2026, 1, 10), day(2026, 1, 11), 0},
		{"two full weeks", monday, day(2026, 1, 18), 10},
		{"end before start", day(2026, 1, 9), monday, 0},
		{"across month end", day(2026, 1, 29), day(2026, 2, 3), 4},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ChargeableDays(tc.start, tc.end, DefaultWeekend()))
		})
	}
}

func TestChargeableDays_IgnoresTimeOfDay(t *testing.T) {
	start := time.Date(2026, 1, 5, 23, 30, 0, 0, time.UTC)
	end := time.Date(2026, 1, 9, 0, 15, 0, 0, time.UTC)

	assert.Equal(t, 5, ChargeableDays(start, end, nil))
}

func TestChargeableDays_CustomPolicy(t *testing.T) {
	policy, err := ParseWeekendPolicy([]string{"Fri", "saturday"})
	assert.NoError(t, err)

	// Mon 5 .. Sun 11: Friday and Saturday excluded
	assert.Equal(t, 5, ChargeableDays(day(2026, 1, 5), day(2026, 1, 11), policy))

	none, err := ParseWeekendPolicy(nil)
	assert.NoError(t, err)
	assert.Equal(t, 7, ChargeableDays(day(2026, 1, 5), day(2026, 1, 11), none))
}

func TestParseWeekendPolicy_Unknown(t *testing.T) {
	_, err := ParseWeekendPolicy([]string{"caturday"})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "caturday")
}
