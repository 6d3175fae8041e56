package services

import (
	"errors"
	"fmt"
)

// Error taxonomy. Every error a service returns to a handler wraps one of these
// (or is unclassified, which handlers report as 500).
var (
	ErrValidation   = errors.New("validation error")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
)

// ValidationError carries the offending field for field-level responses.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrValidation, e.Message)
	}
	return fmt.Sprintf("%s: %s %s", ErrValidation, e.Field, e.Message)
}

// Unwrap lets errors.Is(err, ErrValidation) match.
func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError builds a field-level validation failure.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// Domain errors.
var (
	ErrTableNotFound       = fmt.Errorf("%w: table not found", ErrNotFound)
	ErrTableNotAvailable   = fmt.Errorf("%w: table is not available", ErrConflict)
	ErrTableHasSession     = fmt.Errorf("%w: table has a running session", ErrConflict)
	ErrTableNameExists     = fmt.Errorf("%w: table name already exists", ErrConflict)
	ErrNoRunningSession    = fmt.Errorf("%w: no running session on table", ErrNotFound)
	ErrNoOpenSession       = fmt.Errorf("%w: no open session on table", ErrNotFound)
	ErrSessionNotFound     = fmt.Errorf("%w: session not found", ErrNotFound)
	ErrSessionNotRunning   = fmt.Errorf("%w: session is not running", ErrConflict)
	ErrTableNotCleaning    = fmt.Errorf("%w: table is not being cleaned", ErrConflict)
	ErrSameTableTransfer   = fmt.Errorf("%w: source and destination table are the same", ErrConflict)
	ErrMemberNotFound      = fmt.Errorf("%w: member not found", ErrNotFound)
	ErrMemberInactive      = fmt.Errorf("%w: member is not active", ErrConflict)
	ErrMemberPhoneExists   = fmt.Errorf("%w: phone number already registered", ErrConflict)
	ErrMemberInUse         = fmt.Errorf("%w: member is referenced by other records", ErrConflict)
	ErrInsufficientBalance = fmt.Errorf("%w: insufficient wallet balance", ErrConflict)
	ErrInsufficientPoints  = fmt.Errorf("%w: insufficient points", ErrConflict)
	ErrOrderNotFound       = fmt.Errorf("%w: order not found", ErrNotFound)
	ErrOrderNotPending     = fmt.Errorf("%w: order is not pending", ErrConflict)
	ErrProductNotFound     = fmt.Errorf("%w: product not found", ErrNotFound)
	ErrProductInactive     = fmt.Errorf("%w: product is not available", ErrConflict)
	ErrProductNameExists   = fmt.Errorf("%w: product name already exists", ErrConflict)
	ErrProductInUse        = fmt.Errorf("%w: product is referenced by other records", ErrConflict)
	ErrInsufficientStock   = fmt.Errorf("%w: insufficient stock", ErrConflict)
	ErrPromoNotFound       = fmt.Errorf("%w: promo not found", ErrNotFound)
	ErrPromoCodeExists     = fmt.Errorf("%w: promo code already exists", ErrConflict)
	ErrPromoNotApplicable  = fmt.Errorf("%w: promo cannot be applied", ErrConflict)
	ErrReservationNotFound = fmt.Errorf("%w: reservation not found", ErrNotFound)
	ErrReservationFinal    = fmt.Errorf("%w: reservation is already cancelled or completed", ErrConflict)
	ErrReservationConflict = fmt.Errorf("%w: table already reserved for that slot", ErrConflict)
	ErrInvalidTransition   = fmt.Errorf("%w: status transition not allowed", ErrConflict)
	ErrShiftNotFound       = fmt.Errorf("%w: shift not found", ErrNotFound)
	ErrShiftAlreadyOpen    = fmt.Errorf("%w: staff already has an open shift", ErrConflict)
	ErrShiftAlreadyClosed  = fmt.Errorf("%w: shift is already closed", ErrConflict)
	ErrShiftNotOwned       = fmt.Errorf("%w: shift belongs to another staff member", ErrForbidden)
	ErrUserNotFound        = fmt.Errorf("%w: user not found", ErrNotFound)
	ErrUsernameExists      = fmt.Errorf("%w: username already exists", ErrConflict)
	ErrInvalidCredentials  = fmt.Errorf("%w: invalid username or password", ErrUnauthorized)
	ErrUserInactive        = fmt.Errorf("%w: account is disabled", ErrUnauthorized)
	ErrSettingNotFound     = fmt.Errorf("%w: setting not found", ErrNotFound)
)
