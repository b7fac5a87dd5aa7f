package tax

import (
	"fmt"
	"time"
)

// FinancialYear is the Indian accounting year, April 1 through March 31
type FinancialYear struct {
	StartYear int
}

// FinancialYearOf returns the financial year a date falls in
func FinancialYearOf(t time.Time) FinancialYear {
	if t.Month() >= time.April {
		return FinancialYear{StartYear: t.Year()}
	}
	return FinancialYear{StartYear: t.Year() - 1}
}

// String formats the year as "2025-26"
func (fy FinancialYear) String() string {
	return fmt.Sprintf("%d-%02d", fy.StartYear, (fy.StartYear+1)%100)
}

// Start returns April 1 of the start year
func (fy FinancialYear) Start() time.Time {
	return time.Date(fy.StartYear, time.April, 1, 0, 0, 0, 0, time.UTC)
}

// End returns March 31 of the following year
func (fy FinancialYear) End() time.Time {
	return time.Date(fy.StartYear+1, time.March, 31, 0, 0, 0, 0, time.UTC)
}

// QuarterOf returns the financial-year quarter of a date:
// Q1 Apr-Jun, Q2 Jul-Sep, Q3 Oct-Dec, Q4 Jan-Mar
func QuarterOf(t time.Time) int {
	switch {
	case t.Month() >= time.April && t.Month() <= time.June:
		return 1
	case t.Month() >= time.July && t.Month() <= time.September:
		return 2
	case t.Month() >= time.October && t.Month() <= time.December:
		return 3
	default:
		return 4
	}
}
