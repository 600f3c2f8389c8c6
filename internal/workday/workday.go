// Package workday counts the days of a leave range that are charged against
// an employee's quota.
package workday

import (
	"fmt"
	"strings"
	"time"
)

// WeekendPolicy is the set of weekdays that are never charged.
type WeekendPolicy map[time.Weekday]bool

// DefaultWeekend excludes Saturday and Sunday.
func DefaultWeekend() WeekendPolicy {
	return WeekendPolicy{time.Saturday: true, time.Sunday: true}
}

func (p WeekendPolicy) IsWeekend(d time.Time) bool {
	return p[d.Weekday()]
}

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday, "sunday": time.Sunday,
	"mon": time.Monday, "monday": time.Monday,
	"tue": time.Tuesday, "tuesday": time.Tuesday,
	"wed": time.Wednesday, "wednesday": time.Wednesday,
	"thu": time.Thursday, "thursday": time.Thursday,
	"fri": time.Friday, "friday": time.Friday,
	"sat": time.Saturday, "saturday": time.Saturday,
}

// ParseWeekendPolicy builds a policy from day names such as "sat" or
// "Sunday". An empty list means every day is chargeable.
func ParseWeekendPolicy(days []string) (WeekendPolicy, error) {
	p := WeekendPolicy{}
	for _, raw := range days {
		wd, ok := weekdayNames[strings.ToLower(strings.TrimSpace(raw))]
		if !ok {
			return nil, fmt.Errorf("workday: unknown weekday %q", raw)
		}
		p[wd] = true
	}
	return p, nil
}

// ChargeableDays counts the days in the inclusive range [start, end] that are
// not weekend days under policy. Only the calendar date of each argument is
// considered. A nil policy falls back to DefaultWeekend; end before start
// yields 0.
func ChargeableDays(start, end time.Time, policy WeekendPolicy) int {
	if policy == nil {
		policy = DefaultWeekend()
	}
	from, to := Date(start), Date(end)
	if to.Before(from) {
		return 0
	}

	days := 0
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if !policy.IsWeekend(d) {
			days++
		}
	}
	return days
}

// Date truncates t to midnight UTC of its own calendar date.
func Date(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
