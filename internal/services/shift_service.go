package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"billiard_pos_backend/internal/models"
	"billiard_pos_backend/internal/repositories"
)

// --- Shift DTOs ---
type OpenShiftRequest struct {
	OpeningCash int64 `json:"opening_cash" binding:"min=0"`
}

// CloseShiftRequest carries only the counted drawer. The system figure is always recomputed.
type CloseShiftRequest struct {
	ActualCash     *int64  `json:"actual_cash" binding:"required,min=0"`
	VarianceReason *string `json:"variance_reason"`
}

// ShiftPreview is the caller's open shift with the cash the drawer should hold right now.
type ShiftPreview struct {
	Shift        *models.ShiftReport `json:"shift"`
	CashSales    int64               `json:"cash_sales"`
	ExpectedCash int64               `json:"expected_cash"`
}

// --- ShiftService Interface ---
type ShiftService interface {
	OpenShift(staffID int64, req OpenShiftRequest) (*models.ShiftReport, error)
	CloseShift(shiftID int64, req CloseShiftRequest, callerID int64, callerRole models.Role) (*models.ShiftReport, error)
	GetCurrentShift(staffID int64) (*ShiftPreview, error)
	ListShifts(filters models.ShiftFilters) ([]models.ShiftReport, int, error)
}

type shiftService struct {
	shiftRepo repositories.ShiftRepository
	orderRepo repositories.OrderRepository
	db        *sql.DB
	loc       *time.Location
	now       Clock
}

// NewShiftService creates a new instance of ShiftService.
func NewShiftService(sr repositories.ShiftRepository, or repositories.OrderRepository, db *sql.DB, loc *time.Location, clock Clock) ShiftService {
	if loc == nil {
		loc = time.UTC
	}
	return &shiftService{shiftRepo: sr, orderRepo: or, db: db, loc: loc, now: defaultClock(clock)}
}

// OpenShift starts a drawer period. A staff member holds at most one open shift;
// the partial unique index on shift_reports backs up the pre-check.
func (s *shiftService) OpenShift(staffID int64, req OpenShiftRequest) (*models.ShiftReport, error) {
	if req.OpeningCash < 0 {
		return nil, NewValidationError("opening_cash", "cannot be negative")
	}
	_, err := s.shiftRepo.GetOpenShiftByStaff(nil, staffID)
	if err == nil {
		return nil, ErrShiftAlreadyOpen
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to check open shift: %w", err)
	}

	shift := &models.ShiftReport{
		StaffID:     staffID,
		OpenedAt:    s.now(),
		OpeningCash: req.OpeningCash,
	}
	if err := s.shiftRepo.CreateShift(s.db, shift); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrShiftAlreadyOpen
		}
		return nil, fmt.Errorf("failed to open shift: %w", err)
	}
	return shift, nil
}

// CloseShift reconciles the drawer: system = opening + cash sales since open,
// variance = actual - system. STAFF may only close their own shift.
func (s *shiftService) CloseShift(shiftID int64, req CloseShiftRequest, callerID int64, callerRole models.Role) (*models.ShiftReport, error) {
	if req.ActualCash == nil {
		return nil, NewValidationError("actual_cash", "is required")
	}
	if *req.ActualCash < 0 {
		return nil, NewValidationError("actual_cash", "cannot be negative")
	}
	now := s.now()

	var shift *models.ShiftReport
	err := withTx(s.db, func(tx *sql.Tx) error {
		var err error
		shift, err = s.shiftRepo.GetShiftForUpdate(tx, shiftID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrShiftNotFound
			}
			return fmt.Errorf("failed to lock shift %d: %w", shiftID, err)
		}
		if callerRole == models.RoleStaff && shift.StaffID != callerID {
			return ErrShiftNotOwned
		}
		if !shift.IsOpen() {
			return ErrShiftAlreadyClosed
		}

		cashSales, err := s.orderRepo.SumPaidCashSince(tx, shift.OpenedAt)
		if err != nil {
			return fmt.Errorf("failed to total cash sales: %w", err)
		}
		system := shift.OpeningCash + cashSales
		variance := *req.ActualCash - system

		shift.ClosedAt = &now
		shift.SystemCash = &system
		shift.ActualCash = req.ActualCash
		shift.Variance = &variance
		shift.VarianceReason = trimmedOrNil(req.VarianceReason)
		if err := s.shiftRepo.CloseShift(tx, shift); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrShiftAlreadyClosed
			}
			return fmt.Errorf("failed to close shift %d: %w", shiftID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return shift, nil
}

func (s *shiftService) GetCurrentShift(staffID int64) (*ShiftPreview, error) {
	shift, err := s.shiftRepo.GetOpenShiftByStaff(nil, staffID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: no open shift", ErrShiftNotFound)
		}
		return nil, fmt.Errorf("failed to get open shift: %w", err)
	}
	cashSales, err := s.orderRepo.SumPaidCashSince(nil, shift.OpenedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to total cash sales: %w", err)
	}
	return &ShiftPreview{Shift: shift, CashSales: cashSales, ExpectedCash: shift.OpeningCash + cashSales}, nil
}

func (s *shiftService) ListShifts(filters models.ShiftFilters) ([]models.ShiftReport, int, error) {
	for field, v := range map[string]*string{"from": filters.From, "to": filters.To} {
		if v != nil && *v != "" {
			if _, err := time.Parse(dateLayout, *v); err != nil {
				return nil, 0, NewValidationError(field, "must be YYYY-MM-DD")
			}
		}
	}
	shifts, total, err := s.shiftRepo.GetShifts(filters, s.loc)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list shifts: %w", err)
	}
	return shifts, total, nil
}
