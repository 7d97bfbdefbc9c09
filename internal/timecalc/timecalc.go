package timecalc

import (
	"fmt"
	"time"
)

// DayLayout is the calendar-day format used on the command line and in
// stored entry dates.
const DayLayout = "2006-01-02"

// ParseDay parses a YYYY-MM-DD string into a UTC midnight time.
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(DayLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", s, err)
	}
	return t, nil
}

// ParseEntryDate parses a stored entry date. Entries written by different
// Power-Up client versions carry either a bare day or a full RFC 3339
// timestamp. The result is re-anchored at the writer's wall-clock reading
// in UTC: an entry logged Monday 20:00 in any zone stays on Monday when
// compared against day bounds.
func ParseEntryDate(s string) (time.Time, error) {
	for _, layout := range []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05",
		DayLayout,
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return asUTCWallClock(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse entry date %q", s)
}

// asUTCWallClock rebuilds t's wall-clock reading in UTC, discarding the
// original offset. Entry dates are calendar data; all day bounds are
// computed in UTC, so entries must land on their writer's calendar day.
func asUTCWallClock(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// DecimalHours folds an hours/minutes pair into one decimal value.
// Negative components are treated as zero before combination.
func DecimalHours(hours, minutes int) float64 {
	if hours < 0 {
		hours = 0
	}
	if minutes < 0 {
		minutes = 0
	}
	return float64(hours) + float64(minutes)/60
}

// FormatHours formats a decimal hour value like "2.50h".
func FormatHours(h float64) string {
	return fmt.Sprintf("%.2fh", h)
}

// FormatDuration formats seconds as a human-readable string like "1h 40m" or "45m" or "30s".
func FormatDuration(seconds int64) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	if m > 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%ds", s)
}

// WeekRange returns the Monday and Sunday of the ISO week containing t.
func WeekRange(t time.Time) (time.Time, time.Time) {
	// Go's weekday: Sunday=0, Monday=1, …, Saturday=6
	wd := int(t.Weekday())
	if wd == 0 {
		wd = 7 // treat Sunday as 7 (ISO)
	}
	monday := t.AddDate(0, 0, -(wd - 1))
	monday = time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, t.Location())
	sunday := monday.AddDate(0, 0, 6)
	return monday, EndOfDay(sunday)
}

// ISOWeekLabel returns a label like "2026-W09".
func ISOWeekLabel(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// StartOfDay returns 00:00:00 of the same day.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay returns 23:59:59.999 of the same day, the inclusive upper
// bound used by date-range filters.
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(999*time.Millisecond), t.Location())
}
