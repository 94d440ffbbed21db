// Package workday counts chargeable working days in an inclusive date range.
package workday

import (
	"errors"
	"strings"
	"time"
)

var ErrInvalidRange = errors.New("end date is before start date")

const dateLayout = "2006-01-02"

// Calendar is an optional set of company holidays. The zero value excludes
// weekends only.
type Calendar struct {
	holidays map[string]struct{}
}

func NewCalendar(days ...time.Time) Calendar {
	cal := Calendar{holidays: make(map[string]struct{}, len(days))}
	for _, d := range days {
		cal.holidays[d.Format(dateLayout)] = struct{}{}
	}
	return cal
}

// ParseCalendar builds a Calendar from a comma-separated list of YYYY-MM-DD
// dates, as configured through the HOLIDAYS environment variable. An empty
// string yields the weekends-only calendar.
func ParseCalendar(csv string) (Calendar, error) {
	csv = strings.TrimSpace(csv)
	if csv == "" {
		return Calendar{}, nil
	}

	var days []time.Time
	for _, part := range strings.Split(csv, ",") {
		d, err := time.Parse(dateLayout, strings.TrimSpace(part))
		if err != nil {
			return Calendar{}, err
		}
		days = append(days, d)
	}
	return NewCalendar(days...), nil
}

func (c Calendar) IsHoliday(t time.Time) bool {
	if c.holidays == nil {
		return false
	}
	_, ok := c.holidays[t.Format(dateLayout)]
	return ok
}

// Count returns the number of working days between start and end inclusive:
// days that are neither Saturday, Sunday, nor a calendar holiday. A span that
// contains no working day at all still charges one day, so every accepted
// request debits at least one day.
func Count(start, end time.Time, cal Calendar) (int, error) {
	start = truncateToDate(start)
	end = truncateToDate(end)
	if end.Before(start) {
		return 0, ErrInvalidRange
	}

	count := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		if cal.IsHoliday(d) {
			continue
		}
		count++
	}

	if count == 0 {
		return 1, nil
	}
	return count, nil
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
