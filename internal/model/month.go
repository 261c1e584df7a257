package model

import (
	"fmt"
	"strings"
	"time"
)

const MonthLayout = "2006-01"

// Month is a calendar month addressed as "YYYY-MM".
type Month struct {
	Year  int
	Month time.Month
}

func ParseMonth(raw string) (Month, error) {
	raw = strings.TrimSpace(raw)
	if len(raw) != len(MonthLayout) {
		return Month{}, fmt.Errorf("month must be in YYYY-MM format, got %q", raw)
	}
	t, err := time.Parse(MonthLayout, raw)
	if err != nil {
		return Month{}, fmt.Errorf("month must be in YYYY-MM format, got %q", raw)
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

func MonthOf(d Date) Month {
	t := d.Time()
	return Month{Year: t.Year(), Month: t.Month()}
}

// Start is the first day of the month.
func (m Month) Start() Date {
	return NewDate(m.Year, m.Month, 1)
}

// End is the first day of the following month, exclusive.
func (m Month) End() Date {
	return Date(m.Start().Time().AddDate(0, 1, 0))
}

func (m Month) Contains(d Date) bool {
	return !d.Before(m.Start()) && d.Before(m.End())
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}
