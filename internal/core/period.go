package core

import (
	"fmt"
	"time"
)

// Period identifies a calendar month, the primary grouping unit of the
// ledger and every settlement query.
type Period struct {
	Year  int
	Month int // 1-12
}

func (p Period) Validate() error {
	if p.Month < 1 || p.Month > 12 {
		return ValidationError{Field: "month", Reason: "must be between 1 and 12"}
	}
	if p.Year < 1000 || p.Year > 9999 {
		return ValidationError{Field: "year", Reason: "must be a 4-digit year"}
	}
	return nil
}

// Prev returns the preceding month, rolling over year boundaries.
func (p Period) Prev() Period {
	if p.Month == 1 {
		return Period{Year: p.Year - 1, Month: 12}
	}
	return Period{Year: p.Year, Month: p.Month - 1}
}

// Next returns the following month, rolling over year boundaries.
func (p Period) Next() Period {
	if p.Month == 12 {
		return Period{Year: p.Year + 1, Month: 1}
	}
	return Period{Year: p.Year, Month: p.Month + 1}
}

// FirstDay returns the first calendar day of the month.
func (p Period) FirstDay() Date {
	return NewDate(p.Year, p.Month, 1)
}

// LastDay returns the last calendar day of the month.
func (p Period) LastDay() Date {
	return Date{Time: time.Date(p.Year, time.Month(p.Month)+1, 0, 0, 0, 0, 0, time.UTC)}
}

// Before reports whether p precedes other.
func (p Period) Before(other Period) bool {
	if p.Year != other.Year {
		return p.Year < other.Year
	}
	return p.Month < other.Month
}

// BusinessDays counts the Monday-to-Friday days in the month.
func (p Period) BusinessDays() int {
	count := 0
	last := p.LastDay().Day()
	for day := 1; day <= last; day++ {
		switch time.Date(p.Year, time.Month(p.Month), day, 0, 0, 0, 0, time.UTC).Weekday() {
		case time.Saturday, time.Sunday:
		default:
			count++
		}
	}
	return count
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

// PeriodsTouching returns every month touched by the inclusive [start, end]
// date range, partial first and last months included. A range contained in
// a single month yields exactly one period.
func PeriodsTouching(start, end Date) []Period {
	if start.After(end.Time) {
		return nil
	}
	var periods []Period
	p := start.Period()
	stop := end.Period()
	for {
		periods = append(periods, p)
		if p == stop {
			return periods
		}
		p = p.Next()
	}
}
