package worktime

import (
	"fmt"
	"time"
)

const (
	MonthKeyLayout = "2006-01"
	DateLayout     = "2006-01-02"
)

// Month identifies a calendar month.
type Month struct {
	Year  int
	Month time.Month
}

func ParseMonth(key string) (Month, error) {
	t, err := time.Parse(MonthKeyLayout, key)
	if err != nil {
		return Month{}, fmt.Errorf("%w: %q is not YYYY-MM", ErrInvalidPeriod, key)
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

func (m Month) Key() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

func (m Month) FirstDay() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

func (m Month) LastDay() time.Time {
	return m.FirstDay().AddDate(0, 1, -1)
}

// Days returns the number of calendar days in the month.
func (m Month) Days() int {
	return m.LastDay().Day()
}

// Dates returns every calendar date of the month in order.
func (m Month) Dates() []time.Time {
	n := m.Days()
	dates := make([]time.Time, 0, n)
	first := m.FirstDay()
	for i := 0; i < n; i++ {
		dates = append(dates, first.AddDate(0, 0, i))
	}
	return dates
}

// MonthsOfYear returns January..December of year.
func MonthsOfYear(year int) []Month {
	months := make([]Month, 0, 12)
	for m := time.January; m <= time.December; m++ {
		months = append(months, Month{Year: year, Month: m})
	}
	return months
}

// DaysInYear returns 365 or 366.
func DaysInYear(year int) int {
	return time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC).YearDay()
}

// DateOnly truncates t to its calendar date in UTC, keeping the wall-clock day.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
