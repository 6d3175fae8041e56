package services

import "time"

// Bill is the result of CalculateBill.
type Bill struct {
	DurationMinutes int64 `json:"duration_minutes"`
	TotalCost       int64 `json:"total_cost"`
}

// CalculateBill derives elapsed whole minutes and cost for a session.
//
//	minutes = floor((now - start) / 1m), never negative
//	cost    = ceil(minutes / 60 * hourlyRate)
//
// The cost is computed in integers so it always rounds up to the next whole
// currency unit and is monotone in elapsed time.
func CalculateBill(start, now time.Time, hourlyRate int64) Bill {
	minutes := int64(now.Sub(start) / time.Minute)
	if minutes < 0 {
		minutes = 0
	}
	if hourlyRate < 0 {
		hourlyRate = 0
	}
	cost := (minutes*hourlyRate + 59) / 60
	return Bill{DurationMinutes: minutes, TotalCost: cost}
}
