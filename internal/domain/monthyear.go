package domain

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"
)

// MonthYearOf returns the "YYYY-MM" key for the month containing d.
func MonthYearOf(d civil.Date) string {
	return fmt.Sprintf("%04d-%02d", d.Year, int(d.Month))
}

// CurrentMonthYear returns the "YYYY-MM" key for the current month.
func CurrentMonthYear() string {
	return MonthYearOf(civil.DateOf(time.Now()))
}
