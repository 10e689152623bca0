package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Summary aggregates a ledger window. It is derived on demand and never persisted.
type Summary struct {
	StartDate                    time.Time
	EndDate                      time.Time
	TotalTransactions            int
	SuccessfulTransactions       int
	FailedTransactions           int // FAILED and INSUFFICIENT_FUND
	InsufficientFundTransactions int
	TotalAmount                  decimal.Decimal
	TotalCommission              decimal.Decimal
}

// DayWindow returns the inclusive bounds of the calendar day containing t in loc
func DayWindow(t time.Time, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1).Add(-time.Nanosecond)
	return start, end
}
