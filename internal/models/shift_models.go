package models

import "time"

// ShiftReport is one staff member's cash drawer period. ClosedAt nil marks the open shift.
type ShiftReport struct {
	ID             int64      `json:"id" db:"id"`
	StaffID        int64      `json:"staff_id" db:"staff_id"`
	OpenedAt       time.Time  `json:"opened_at" db:"opened_at"`
	ClosedAt       *time.Time `json:"closed_at,omitempty" db:"closed_at"`
	OpeningCash    int64      `json:"opening_cash" db:"opening_cash"`
	SystemCash     *int64     `json:"system_cash,omitempty" db:"system_cash"`
	ActualCash     *int64     `json:"actual_cash,omitempty" db:"actual_cash"`
	Variance       *int64     `json:"variance,omitempty" db:"variance"`
	VarianceReason *string    `json:"variance_reason,omitempty" db:"variance_reason"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`

	StaffName *string `json:"staff_name,omitempty"`
}

// IsOpen reports whether the shift has not been closed yet.
func (s *ShiftReport) IsOpen() bool {
	return s.ClosedAt == nil
}

// ShiftFilters narrows shift listings.
type ShiftFilters struct {
	StaffID  *int64  `form:"staff_id"`
	From     *string `form:"from"`
	To       *string `form:"to"`
	OpenOnly bool    `form:"open_only"`
	Page     int     `form:"page"`
	PageSize int     `form:"page_size"`
}
