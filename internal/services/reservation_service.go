package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"billiard_pos_backend/internal/models"
	"billiard_pos_backend/internal/repositories"
	"billiard_pos_backend/pkg/utils"
)

// Watchdog bands, relative to the booking instant.
const (
	UpcomingWindow    = 5 * time.Minute
	NoShowGracePeriod = 15 * time.Minute
)

const (
	maxReservationHours = 12
	timeLayout          = "15:04"
)

// --- Reservation DTOs ---
type CreateReservationRequest struct {
	CustomerName  string  `json:"customer_name" binding:"required,max=128"`
	Phone         *string `json:"phone" binding:"omitempty,max=32"`
	MemberID      *int64  `json:"member_id"`
	TableID       *int64  `json:"table_id"`
	BookingDate   string  `json:"booking_date" binding:"required"` // YYYY-MM-DD
	BookingTime   string  `json:"booking_time" binding:"required"` // HH:MM
	DurationHours int     `json:"duration_hours" binding:"omitempty,min=1"`
	PartySize     *int    `json:"party_size" binding:"omitempty,min=1"`
	Notes         *string `json:"notes"`
}

type UpdateReservationRequest struct {
	CustomerName  *string `json:"customer_name" binding:"omitempty,max=128"`
	Phone         *string `json:"phone" binding:"omitempty,max=32"`
	TableID       *int64  `json:"table_id"`
	BookingDate   *string `json:"booking_date"`
	BookingTime   *string `json:"booking_time"`
	DurationHours *int    `json:"duration_hours" binding:"omitempty,min=1"`
	PartySize     *int    `json:"party_size" binding:"omitempty,min=1"`
	Notes         *string `json:"notes"`
}

type UpdateReservationStatusRequest struct {
	Status models.ReservationStatus `json:"status" binding:"required"`
}

// ReservationAlert is one watchdog finding. MinutesUntil is negative once the slot has started.
type ReservationAlert struct {
	Reservation  models.Reservation `json:"reservation"`
	MinutesUntil int64              `json:"minutes_until"`
}

// WatchdogReport is the result of one CheckReservations pass.
type WatchdogReport struct {
	CheckedAt            time.Time          `json:"checked_at"`
	Upcoming             []ReservationAlert `json:"upcoming"`
	AwaitingConfirmation []ReservationAlert `json:"awaiting_confirmation"`
	AutoCancelled        []ReservationAlert `json:"auto_cancelled"`
}

type watchdogBand int

const (
	bandNone watchdogBand = iota
	bandUpcoming
	bandAwaiting
	bandNoShow
)

// classifyReservation places diff (booking instant minus now) in exactly one band.
func classifyReservation(diff time.Duration) watchdogBand {
	switch {
	case diff > UpcomingWindow:
		return bandNone
	case diff > 0:
		return bandUpcoming
	case diff > -NoShowGracePeriod:
		return bandAwaiting
	default:
		return bandNoShow
	}
}

// --- ReservationService Interface ---
type ReservationService interface {
	CreateReservation(req CreateReservationRequest, userID int64) (*models.Reservation, error)
	GetReservationByID(id int64) (*models.Reservation, error)
	GetReservations(filters models.ReservationFilters) ([]models.Reservation, int, error)
	UpdateReservation(id int64, req UpdateReservationRequest) (*models.Reservation, error)
	UpdateReservationStatus(id int64, status models.ReservationStatus) (*models.Reservation, error)
	DeleteReservation(id int64) error
	CheckIn(id int64, userID int64) (*models.Session, error)
	CheckReservations() (*WatchdogReport, error)
}

type reservationService struct {
	reservationRepo repositories.ReservationRepository
	tableRepo       repositories.TableRepository
	memberRepo      repositories.MemberRepository
	tables          *tableService
	db              *sql.DB
	loc             *time.Location
	now             Clock
}

// NewReservationService creates a new instance of ReservationService.
func NewReservationService(
	rr repositories.ReservationRepository,
	tr repositories.TableRepository,
	sr repositories.SessionRepository,
	or repositories.OrderRepository,
	mr repositories.MemberRepository,
	db *sql.DB,
	loc *time.Location,
	clock Clock,
) ReservationService {
	if loc == nil {
		loc = time.UTC
	}
	clock = defaultClock(clock)
	return &reservationService{
		reservationRepo: rr,
		tableRepo:       tr,
		memberRepo:      mr,
		tables:          newTableService(tr, sr, or, mr, db, loc, clock),
		db:              db,
		loc:             loc,
		now:             clock,
	}
}

func (s *reservationService) parseSlot(date, hhmm string) (string, string, error) {
	day, err := time.ParseInLocation(dateLayout, strings.TrimSpace(date), s.loc)
	if err != nil {
		return "", "", NewValidationError("booking_date", "must be YYYY-MM-DD")
	}
	t, err := time.Parse(timeLayout, strings.TrimSpace(hhmm))
	if err != nil {
		return "", "", NewValidationError("booking_time", "must be HH:MM")
	}
	return day.Format(dateLayout), t.Format(timeLayout), nil
}

// bookingInstant resolves a reservation's date and time in the business timezone.
func (s *reservationService) bookingInstant(r *models.Reservation) (time.Time, error) {
	return time.ParseInLocation(dateLayout+" "+timeLayout, r.BookingDate+" "+r.BookingTime, s.loc)
}

func (s *reservationService) checkRefs(res *models.Reservation) error {
	if res.TableID != nil {
		if _, err := s.tableRepo.GetTableByID(nil, *res.TableID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrTableNotFound
			}
			return fmt.Errorf("failed to get table %d: %w", *res.TableID, err)
		}
	}
	if res.MemberID != nil {
		if _, err := s.memberRepo.GetMemberByID(nil, *res.MemberID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrMemberNotFound
			}
			return fmt.Errorf("failed to get member %d: %w", *res.MemberID, err)
		}
	}
	return nil
}

func (s *reservationService) checkConflict(res *models.Reservation, excludeID *int64) error {
	if res.TableID == nil {
		return nil
	}
	n, err := s.reservationRepo.CountTableConflicts(*res.TableID, res.BookingDate, res.BookingTime, res.DurationHours, excludeID)
	if err != nil {
		return fmt.Errorf("failed to check reservation conflicts: %w", err)
	}
	if n > 0 {
		return ErrReservationConflict
	}
	return nil
}

func (s *reservationService) CreateReservation(req CreateReservationRequest, userID int64) (*models.Reservation, error) {
	name := strings.TrimSpace(req.CustomerName)
	if name == "" {
		return nil, NewValidationError("customer_name", "is required")
	}
	date, hhmm, err := s.parseSlot(req.BookingDate, req.BookingTime)
	if err != nil {
		return nil, err
	}
	hours := req.DurationHours
	if hours == 0 {
		hours = 1
	}
	if hours < 1 || hours > maxReservationHours {
		return nil, NewValidationError("duration_hours", fmt.Sprintf("must be between 1 and %d", maxReservationHours))
	}

	res := &models.Reservation{
		CustomerName:  name,
		Phone:         trimmedOrNil(req.Phone),
		MemberID:      req.MemberID,
		TableID:       req.TableID,
		BookingDate:   date,
		BookingTime:   hhmm,
		DurationHours: hours,
		PartySize:     req.PartySize,
		Notes:         trimmedOrNil(req.Notes),
		Status:        models.ReservationStatusPending,
		CreatedBy:     int64Ptr(userID),
	}
	instant, err := s.bookingInstant(res)
	if err != nil {
		return nil, NewValidationError("booking_time", "must be HH:MM")
	}
	if instant.Before(s.now().Add(-NoShowGracePeriod)) {
		return nil, NewValidationError("booking_time", "cannot be in the past")
	}
	if err := s.checkRefs(res); err != nil {
		return nil, err
	}
	if err := s.checkConflict(res, nil); err != nil {
		return nil, err
	}
	if err := s.reservationRepo.CreateReservation(s.db, res); err != nil {
		return nil, fmt.Errorf("failed to create reservation: %w", err)
	}
	return res, nil
}

func (s *reservationService) GetReservationByID(id int64) (*models.Reservation, error) {
	res, err := s.reservationRepo.GetReservationByID(nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, fmt.Errorf("failed to get reservation %d: %w", id, err)
	}
	return res, nil
}

func (s *reservationService) GetReservations(filters models.ReservationFilters) ([]models.Reservation, int, error) {
	if filters.Date != nil && *filters.Date != "" {
		if _, err := time.Parse(dateLayout, *filters.Date); err != nil {
			return nil, 0, NewValidationError("date", "must be YYYY-MM-DD")
		}
	}
	if filters.Status != nil && *filters.Status != "" {
		st := models.ReservationStatus(strings.ToUpper(*filters.Status))
		if !st.IsValid() {
			return nil, 0, NewValidationError("status", "unknown reservation status")
		}
		upper := string(st)
		filters.Status = &upper
	}
	list, total, err := s.reservationRepo.GetReservations(filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list reservations: %w", err)
	}
	return list, total, nil
}

func (s *reservationService) UpdateReservation(id int64, req UpdateReservationRequest) (*models.Reservation, error) {
	res, err := s.GetReservationByID(id)
	if err != nil {
		return nil, err
	}
	if res.Status.IsFinal() {
		return nil, ErrReservationFinal
	}
	if req.CustomerName != nil {
		name := strings.TrimSpace(*req.CustomerName)
		if name == "" {
			return nil, NewValidationError("customer_name", "cannot be empty")
		}
		res.CustomerName = name
	}
	if req.Phone != nil {
		res.Phone = trimmedOrNil(req.Phone)
	}
	if req.TableID != nil {
		res.TableID = req.TableID
	}
	date, hhmm := res.BookingDate, res.BookingTime
	if req.BookingDate != nil {
		date = *req.BookingDate
	}
	if req.BookingTime != nil {
		hhmm = *req.BookingTime
	}
	if res.BookingDate, res.BookingTime, err = s.parseSlot(date, hhmm); err != nil {
		return nil, err
	}
	if req.DurationHours != nil {
		if *req.DurationHours < 1 || *req.DurationHours > maxReservationHours {
			return nil, NewValidationError("duration_hours", fmt.Sprintf("must be between 1 and %d", maxReservationHours))
		}
		res.DurationHours = *req.DurationHours
	}
	if req.PartySize != nil {
		res.PartySize = req.PartySize
	}
	if req.Notes != nil {
		res.Notes = trimmedOrNil(req.Notes)
	}

	if err := s.checkRefs(res); err != nil {
		return nil, err
	}
	if err := s.checkConflict(res, &res.ID); err != nil {
		return nil, err
	}
	if err := s.reservationRepo.UpdateReservation(s.db, res); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, fmt.Errorf("failed to update reservation %d: %w", id, err)
	}
	return res, nil
}

// canTransition allows PENDING -> CONFIRMED -> COMPLETED and any non-final -> CANCELLED.
func canTransition(from, to models.ReservationStatus) bool {
	if from.IsFinal() || from == to {
		return false
	}
	switch to {
	case models.ReservationStatusCancelled:
		return true
	case models.ReservationStatusConfirmed:
		return from == models.ReservationStatusPending
	case models.ReservationStatusCompleted:
		return from == models.ReservationStatusConfirmed
	}
	return false
}

func (s *reservationService) UpdateReservationStatus(id int64, status models.ReservationStatus) (*models.Reservation, error) {
	status = models.ReservationStatus(strings.ToUpper(string(status)))
	if !status.IsValid() {
		return nil, NewValidationError("status", "unknown reservation status")
	}

	var res *models.Reservation
	err := withTx(s.db, func(tx *sql.Tx) error {
		var err error
		res, err = s.reservationRepo.GetReservationForUpdate(tx, id)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrReservationNotFound
			}
			return fmt.Errorf("failed to lock reservation %d: %w", id, err)
		}
		if res.Status.IsFinal() {
			return ErrReservationFinal
		}
		if !canTransition(res.Status, status) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, res.Status, status)
		}
		if err := s.reservationRepo.UpdateReservationStatus(tx, id, status); err != nil {
			return fmt.Errorf("failed to update reservation %d: %w", id, err)
		}
		res.Status = status
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *reservationService) DeleteReservation(id int64) error {
	if err := s.reservationRepo.DeleteReservation(s.db, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrReservationNotFound
		}
		return fmt.Errorf("failed to delete reservation %d: %w", id, err)
	}
	return nil
}

// CheckIn completes a CONFIRMED reservation and starts its table in the same transaction.
func (s *reservationService) CheckIn(id int64, userID int64) (*models.Session, error) {
	var session *models.Session
	err := withTx(s.db, func(tx *sql.Tx) error {
		res, err := s.reservationRepo.GetReservationForUpdate(tx, id)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrReservationNotFound
			}
			return fmt.Errorf("failed to lock reservation %d: %w", id, err)
		}
		if res.Status != models.ReservationStatusConfirmed {
			return fmt.Errorf("%w: only CONFIRMED reservations can check in", ErrInvalidTransition)
		}
		if res.TableID == nil {
			return NewValidationError("table_id", "reservation has no table assigned")
		}
		name := res.CustomerName
		session, err = s.tables.startSession(tx, *res.TableID, StartTableRequest{
			CustomerName: &name,
			MemberID:     res.MemberID,
		}, userID)
		if err != nil {
			return err
		}
		if err := s.reservationRepo.UpdateReservationStatus(tx, id, models.ReservationStatusCompleted); err != nil {
			return fmt.Errorf("failed to complete reservation %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

// CheckReservations classifies today's CONFIRMED reservations against now and
// cancels every no-show in a single bulk update.
func (s *reservationService) CheckReservations() (*WatchdogReport, error) {
	now := s.now().In(s.loc)
	today := now.Format(dateLayout)

	list, err := s.reservationRepo.GetReservationsByDateAndStatus(today, models.ReservationStatusConfirmed)
	if err != nil {
		return nil, fmt.Errorf("failed to load today's reservations: %w", err)
	}

	report := &WatchdogReport{
		CheckedAt:            now,
		Upcoming:             []ReservationAlert{},
		AwaitingConfirmation: []ReservationAlert{},
		AutoCancelled:        []ReservationAlert{},
	}
	var noShowIDs []int64
	for _, res := range list {
		instant, err := s.bookingInstant(&res)
		if err != nil {
			utils.LogWarn(fmt.Sprintf("reservation %d has unparseable slot %s %s", res.ID, res.BookingDate, res.BookingTime))
			continue
		}
		diff := instant.Sub(now)
		alert := ReservationAlert{Reservation: res, MinutesUntil: int64(diff / time.Minute)}
		switch classifyReservation(diff) {
		case bandUpcoming:
			report.Upcoming = append(report.Upcoming, alert)
		case bandAwaiting:
			report.AwaitingConfirmation = append(report.AwaitingConfirmation, alert)
		case bandNoShow:
			alert.Reservation.Status = models.ReservationStatusCancelled
			report.AutoCancelled = append(report.AutoCancelled, alert)
			noShowIDs = append(noShowIDs, res.ID)
		}
	}

	if len(noShowIDs) > 0 {
		n, err := s.reservationRepo.CancelReservations(s.db, noShowIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to auto-cancel no-show reservations: %w", err)
		}
		utils.LogInfo(fmt.Sprintf("auto-cancelled %d no-show reservations", n), map[string]interface{}{"ids": noShowIDs})
	}
	return report, nil
}
