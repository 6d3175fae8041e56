package models

import "time"

// TableType distinguishes pricing classes of tables.
type TableType string

const (
	TableTypeRegular TableType = "REGULAR"
	TableTypeVIP     TableType = "VIP"
)

// IsValid reports whether t is a known table type.
func (t TableType) IsValid() bool {
	return t == TableTypeRegular || t == TableTypeVIP
}

// TableStatus mirrors whether a session is running on the table.
// BOOKED is used while the table's session is paused.
type TableStatus string

const (
	TableStatusAvailable TableStatus = "AVAILABLE"
	TableStatusActive    TableStatus = "ACTIVE"
	TableStatusBooked    TableStatus = "BOOKED"
	TableStatusCleaning  TableStatus = "CLEANING"
)

// SessionStatus is the lifecycle state of a table session.
type SessionStatus string

const (
	SessionStatusOpen   SessionStatus = "OPEN"
	SessionStatusPaused SessionStatus = "PAUSED"
	SessionStatusClosed SessionStatus = "CLOSED"
)

// PoolTable is a physical billiard table.
type PoolTable struct {
	ID         int64       `json:"id" db:"id"`
	Name       string      `json:"name" db:"name"`
	Type       TableType   `json:"type" db:"type"`
	HourlyRate int64       `json:"hourly_rate" db:"hourly_rate"`
	Status     TableStatus `json:"status" db:"status"`
	CreatedAt  time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at" db:"updated_at"`

	CurrentSession *Session `json:"current_session,omitempty"`
}

// Session is one customer's timed occupancy of a table.
// EndTime is preset for fixed packages and set at stop otherwise.
type Session struct {
	ID              int64         `json:"id" db:"id"`
	TableID         int64         `json:"table_id" db:"table_id"`
	CustomerName    *string       `json:"customer_name,omitempty" db:"customer_name"`
	MemberID        *int64        `json:"member_id,omitempty" db:"member_id"`
	Status          SessionStatus `json:"status" db:"status"`
	StartTime       time.Time     `json:"start_time" db:"start_time"`
	EndTime         *time.Time    `json:"end_time,omitempty" db:"end_time"`
	PackageHours    *int          `json:"package_hours,omitempty" db:"package_hours"`
	DurationMinutes int64         `json:"duration_minutes" db:"duration_minutes"`
	TotalCost       int64         `json:"total_cost" db:"total_cost"`
	StartedBy       *int64        `json:"started_by,omitempty" db:"started_by"`
	CreatedAt       time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at" db:"updated_at"`

	TableName *string `json:"table_name,omitempty"`
}

// IsFixedPackage reports whether the session was pre-committed to N hours.
func (s *Session) IsFixedPackage() bool {
	return s.PackageHours != nil && *s.PackageHours > 0
}

// SessionFilters defines the available filters for session history.
type SessionFilters struct {
	TableID  *int64  `form:"table_id"`
	MemberID *int64  `form:"member_id"`
	Status   *string `form:"status"`
	Date     *string `form:"date"` // YYYY-MM-DD
	Page     int     `form:"page"`
	PageSize int     `form:"page_size"`
}

// ReservationStatus is the lifecycle of a booking.
type ReservationStatus string

const (
	ReservationStatusPending   ReservationStatus = "PENDING"
	ReservationStatusConfirmed ReservationStatus = "CONFIRMED"
	ReservationStatusCancelled ReservationStatus = "CANCELLED"
	ReservationStatusCompleted ReservationStatus = "COMPLETED"
)

// IsValid checks if the provided status is a known reservation status.
func (s ReservationStatus) IsValid() bool {
	switch s {
	case ReservationStatusPending, ReservationStatusConfirmed, ReservationStatusCancelled, ReservationStatusCompleted:
		return true
	default:
		return false
	}
}

// IsFinal reports whether no further transitions are allowed.
func (s ReservationStatus) IsFinal() bool {
	return s == ReservationStatusCancelled || s == ReservationStatusCompleted
}

// Reservation is a booking for a date and time slot.
type Reservation struct {
	ID            int64             `json:"id" db:"id"`
	CustomerName  string            `json:"customer_name" db:"customer_name"`
	Phone         *string           `json:"phone,omitempty" db:"phone"`
	MemberID      *int64            `json:"member_id,omitempty" db:"member_id"`
	TableID       *int64            `json:"table_id,omitempty" db:"table_id"`
	BookingDate   string            `json:"booking_date" db:"booking_date"` // YYYY-MM-DD
	BookingTime   string            `json:"booking_time" db:"booking_time"` // HH:MM
	DurationHours int               `json:"duration_hours" db:"duration_hours"`
	PartySize     *int              `json:"party_size,omitempty" db:"party_size"`
	Notes         *string           `json:"notes,omitempty" db:"notes"`
	Status        ReservationStatus `json:"status" db:"status"`
	CreatedBy     *int64            `json:"created_by,omitempty" db:"created_by"`
	CreatedAt     time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at" db:"updated_at"`
}

// ReservationFilters defines the available filters for querying reservations.
type ReservationFilters struct {
	Date     *string `form:"date"`
	Status   *string `form:"status"`
	TableID  *int64  `form:"table_id"`
	MemberID *int64  `form:"member_id"`
	Page     int     `form:"page"`
	PageSize int     `form:"page_size"`
}
