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

const maxPackageHours = 24

// maxHourlyRate keeps minutes*rate well inside int64 for any realistic session.
const maxHourlyRate = 10_000_000

// --- Table DTOs ---
type CreateTableRequest struct {
	Name       string           `json:"name" binding:"required,max=50"`
	Type       models.TableType `json:"type" binding:"required"`
	HourlyRate int64            `json:"hourly_rate" binding:"required,gt=0,max=10000000"`
}

type UpdateTableRequest struct {
	Name       *string             `json:"name" binding:"omitempty,max=50"`
	Type       *models.TableType   `json:"type"`
	HourlyRate *int64              `json:"hourly_rate" binding:"omitempty,gt=0,max=10000000"`
	Status     *models.TableStatus `json:"status"`
}

// StartTableRequest starts billing. PackageHours nil or 0 means open billing.
type StartTableRequest struct {
	CustomerName *string `json:"customer_name" binding:"omitempty,max=100"`
	MemberID     *int64  `json:"member_id"`
	PackageHours *int    `json:"package_hours" binding:"omitempty,min=0"`
}

type TransferTableRequest struct {
	ToTableID int64 `json:"to_table_id" binding:"required,gt=0"`
}

// StopTableResult is the closed session and the pending charge created for it.
type StopTableResult struct {
	Session *models.Session `json:"session"`
	Order   *models.Order   `json:"order"`
}

// LiveBill is the running cost of a table's current session.
type LiveBill struct {
	TableID         int64           `json:"table_id"`
	TableName       string          `json:"table_name"`
	HourlyRate      int64           `json:"hourly_rate"`
	Session         *models.Session `json:"session"`
	DurationMinutes int64           `json:"duration_minutes"`
	TotalCost       int64           `json:"total_cost"`
	AsOf            time.Time       `json:"as_of"`
}

// --- TableService Interface ---
type TableService interface {
	CreateTable(req CreateTableRequest) (*models.PoolTable, error)
	GetTable(tableID int64) (*models.PoolTable, error)
	ListTables(status *string) ([]models.PoolTable, error)
	UpdateTable(tableID int64, req UpdateTableRequest) (*models.PoolTable, error)
	DeleteTable(tableID int64) error

	StartTable(tableID int64, req StartTableRequest, userID int64) (*models.Session, error)
	TogglePause(tableID int64) (*models.Session, error)
	StopTable(tableID int64, userID int64) (*StopTableResult, error)
	TransferTable(fromTableID, toTableID int64) (*models.Session, error)
	MarkTableReady(tableID int64) (*models.PoolTable, error)
	GetLiveBill(tableID int64) (*LiveBill, error)
	ListSessions(filters models.SessionFilters) ([]models.Session, int, error)
}

type tableService struct {
	tableRepo   repositories.TableRepository
	sessionRepo repositories.SessionRepository
	orderRepo   repositories.OrderRepository
	memberRepo  repositories.MemberRepository
	db          *sql.DB
	loc         *time.Location
	now         Clock
}

// NewTableService creates a new instance of TableService.
func NewTableService(
	tr repositories.TableRepository,
	sr repositories.SessionRepository,
	or repositories.OrderRepository,
	mr repositories.MemberRepository,
	db *sql.DB,
	loc *time.Location,
	clock Clock,
) TableService {
	return newTableService(tr, sr, or, mr, db, loc, clock)
}

func newTableService(
	tr repositories.TableRepository,
	sr repositories.SessionRepository,
	or repositories.OrderRepository,
	mr repositories.MemberRepository,
	db *sql.DB,
	loc *time.Location,
	clock Clock,
) *tableService {
	if loc == nil {
		loc = time.UTC
	}
	return &tableService{
		tableRepo:   tr,
		sessionRepo: sr,
		orderRepo:   or,
		memberRepo:  mr,
		db:          db,
		loc:         loc,
		now:         defaultClock(clock),
	}
}

func (s *tableService) CreateTable(req CreateTableRequest) (*models.PoolTable, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, NewValidationError("name", "is required")
	}
	if !req.Type.IsValid() {
		return nil, NewValidationError("type", "must be REGULAR or VIP")
	}
	if req.HourlyRate <= 0 || req.HourlyRate > maxHourlyRate {
		return nil, NewValidationError("hourly_rate", fmt.Sprintf("must be between 1 and %d", maxHourlyRate))
	}
	table := &models.PoolTable{
		Name:       name,
		Type:       req.Type,
		HourlyRate: req.HourlyRate,
		Status:     models.TableStatusAvailable,
	}
	if err := s.tableRepo.CreateTable(s.db, table); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrTableNameExists
		}
		return nil, fmt.Errorf("failed to create table: %w", err)
	}
	return table, nil
}

func (s *tableService) GetTable(tableID int64) (*models.PoolTable, error) {
	table, err := s.tableRepo.GetTableByID(nil, tableID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTableNotFound
		}
		return nil, fmt.Errorf("failed to get table %d: %w", tableID, err)
	}
	sessions, err := s.sessionRepo.ListRunningSessions()
	if err != nil {
		return nil, fmt.Errorf("failed to load running sessions: %w", err)
	}
	for i := range sessions {
		if sessions[i].TableID == table.ID {
			table.CurrentSession = &sessions[i]
			break
		}
	}
	return table, nil
}

// ListTables returns tables with their OPEN/PAUSED session attached.
func (s *tableService) ListTables(status *string) ([]models.PoolTable, error) {
	if status != nil {
		upper := strings.ToUpper(strings.TrimSpace(*status))
		status = &upper
	}
	tables, err := s.tableRepo.ListTables(status)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	sessions, err := s.sessionRepo.ListRunningSessions()
	if err != nil {
		return nil, fmt.Errorf("failed to load running sessions: %w", err)
	}
	byTable := make(map[int64]*models.Session, len(sessions))
	for i := range sessions {
		byTable[sessions[i].TableID] = &sessions[i]
	}
	for i := range tables {
		tables[i].CurrentSession = byTable[tables[i].ID]
	}
	return tables, nil
}

func (s *tableService) UpdateTable(tableID int64, req UpdateTableRequest) (*models.PoolTable, error) {
	var table *models.PoolTable
	err := withTx(s.db, func(tx *sql.Tx) error {
		var err error
		table, err = s.tableRepo.GetTableForUpdate(tx, tableID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrTableNotFound
			}
			return fmt.Errorf("failed to get table %d: %w", tableID, err)
		}

		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				return NewValidationError("name", "cannot be empty")
			}
			table.Name = name
		}
		if req.Type != nil {
			if !req.Type.IsValid() {
				return NewValidationError("type", "must be REGULAR or VIP")
			}
			table.Type = *req.Type
		}
		if req.HourlyRate != nil {
			if *req.HourlyRate <= 0 || *req.HourlyRate > maxHourlyRate {
				return NewValidationError("hourly_rate", fmt.Sprintf("must be between 1 and %d", maxHourlyRate))
			}
			table.HourlyRate = *req.HourlyRate
		}
		if req.Status != nil && *req.Status != table.Status {
			// Only housekeeping moves are allowed by hand; ACTIVE/BOOKED follow sessions.
			next := *req.Status
			if next != models.TableStatusAvailable && next != models.TableStatusCleaning {
				return NewValidationError("status", "can only be set to AVAILABLE or CLEANING")
			}
			if table.Status != models.TableStatusAvailable && table.Status != models.TableStatusCleaning {
				return ErrTableHasSession
			}
			table.Status = next
		}

		if err := s.tableRepo.UpdateTable(tx, table); err != nil {
			if errors.Is(err, repositories.ErrDuplicateKey) {
				return ErrTableNameExists
			}
			return fmt.Errorf("failed to update table %d: %w", tableID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return table, nil
}

func (s *tableService) DeleteTable(tableID int64) error {
	return withTx(s.db, func(tx *sql.Tx) error {
		if _, err := s.tableRepo.GetTableForUpdate(tx, tableID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrTableNotFound
			}
			return fmt.Errorf("failed to get table %d: %w", tableID, err)
		}
		_, err := s.sessionRepo.GetRunningSession(tx, tableID)
		if err == nil {
			return ErrTableHasSession
		}
		if !errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("failed to check running session: %w", err)
		}
		if err := s.tableRepo.DeleteTable(tx, tableID); err != nil {
			if errors.Is(err, repositories.ErrForeignKey) {
				return fmt.Errorf("%w: table has session history", ErrConflict)
			}
			return fmt.Errorf("failed to delete table %d: %w", tableID, err)
		}
		return nil
	})
}

// StartTable opens a session. The conditional AVAILABLE -> ACTIVE update is the
// lock; the partial unique index on running sessions is the backstop.
func (s *tableService) StartTable(tableID int64, req StartTableRequest, userID int64) (*models.Session, error) {
	if req.PackageHours != nil && (*req.PackageHours < 0 || *req.PackageHours > maxPackageHours) {
		return nil, NewValidationError("package_hours", fmt.Sprintf("must be between 0 and %d", maxPackageHours))
	}
	var session *models.Session
	err := withTx(s.db, func(tx *sql.Tx) error {
		var err error
		session, err = s.startSession(tx, tableID, req, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

func (s *tableService) startSession(tx *sql.Tx, tableID int64, req StartTableRequest, userID int64) (*models.Session, error) {
	now := s.now()
	if req.MemberID != nil {
		member, err := s.memberRepo.GetMemberByID(tx, *req.MemberID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, ErrMemberNotFound
			}
			return nil, fmt.Errorf("failed to get member %d: %w", *req.MemberID, err)
		}
		if member.Status != models.MemberStatusActive {
			return nil, ErrMemberInactive
		}
	}

	ok, err := s.tableRepo.UpdateTableStatus(tx, tableID, models.TableStatusAvailable, models.TableStatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to claim table %d: %w", tableID, err)
	}
	table, err := s.tableRepo.GetTableByID(tx, tableID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTableNotFound
		}
		return nil, fmt.Errorf("failed to get table %d: %w", tableID, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w (status %s)", ErrTableNotAvailable, table.Status)
	}

	session := &models.Session{
		TableID:      tableID,
		CustomerName: trimmedOrNil(req.CustomerName),
		MemberID:     req.MemberID,
		Status:       models.SessionStatusOpen,
		StartTime:    now,
		StartedBy:    int64Ptr(userID),
		TableName:    stringPtr(table.Name),
	}
	if req.PackageHours != nil && *req.PackageHours > 0 {
		hours := *req.PackageHours
		end := now.Add(time.Duration(hours) * time.Hour)
		session.PackageHours = &hours
		session.EndTime = &end
	}
	if err := s.sessionRepo.CreateSession(tx, session); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrTableHasSession
		}
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil
}

// TogglePause flips OPEN <-> PAUSED and ACTIVE <-> BOOKED. Elapsed time keeps accruing while paused.
func (s *tableService) TogglePause(tableID int64) (*models.Session, error) {
	var session *models.Session
	err := withTx(s.db, func(tx *sql.Tx) error {
		var err error
		session, err = s.sessionRepo.GetRunningSession(tx, tableID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrNoRunningSession
			}
			return fmt.Errorf("failed to get running session: %w", err)
		}

		nextSession, fromTable, toTable := models.SessionStatusPaused, models.TableStatusActive, models.TableStatusBooked
		if session.Status == models.SessionStatusPaused {
			nextSession, fromTable, toTable = models.SessionStatusOpen, models.TableStatusBooked, models.TableStatusActive
		}
		if err := s.sessionRepo.UpdateSessionStatus(tx, session.ID, nextSession); err != nil {
			return fmt.Errorf("failed to update session %d: %w", session.ID, err)
		}
		ok, err := s.tableRepo.UpdateTableStatus(tx, tableID, fromTable, toTable)
		if err != nil {
			return fmt.Errorf("failed to update table %d: %w", tableID, err)
		}
		if !ok {
			return fmt.Errorf("%w: table %d is not %s", ErrInvalidTransition, tableID, fromTable)
		}
		session.Status = nextSession
		return nil
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

// StopTable closes the OPEN session, frees the table and raises a PENDING charge for the bill.
func (s *tableService) StopTable(tableID int64, userID int64) (*StopTableResult, error) {
	now := s.now()

	var result StopTableResult
	err := withTx(s.db, func(tx *sql.Tx) error {
		session, err := s.sessionRepo.GetRunningSession(tx, tableID, models.SessionStatusOpen)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrNoOpenSession
			}
			return fmt.Errorf("failed to get open session: %w", err)
		}
		table, err := s.tableRepo.GetTableForUpdate(tx, tableID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrTableNotFound
			}
			return fmt.Errorf("failed to lock table %d: %w", tableID, err)
		}

		bill := CalculateBill(session.StartTime, now, table.HourlyRate)
		session.Status = models.SessionStatusClosed
		session.EndTime = &now
		session.DurationMinutes = bill.DurationMinutes
		session.TotalCost = bill.TotalCost
		session.TableName = stringPtr(table.Name)
		if err := s.sessionRepo.CloseSession(tx, session); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrSessionNotRunning
			}
			return fmt.Errorf("failed to close session %d: %w", session.ID, err)
		}
		if _, err := s.tableRepo.UpdateTableStatus(tx, tableID, models.TableStatusActive, models.TableStatusAvailable); err != nil {
			return fmt.Errorf("failed to release table %d: %w", tableID, err)
		}

		order := &models.Order{
			SessionID:    int64Ptr(session.ID),
			MemberID:     session.MemberID,
			CustomerName: session.CustomerName,
			Subtotal:     bill.TotalCost,
			Total:        bill.TotalCost,
			Status:       models.OrderStatusPending,
			CreatedBy:    int64Ptr(userID),
		}
		if err := s.orderRepo.CreateOrder(tx, order); err != nil {
			return fmt.Errorf("failed to create table charge: %w", err)
		}
		item := models.OrderItem{
			OrderID:     order.ID,
			ProductName: fmt.Sprintf("Table %s (%d min)", table.Name, bill.DurationMinutes),
			UnitPrice:   bill.TotalCost,
			Quantity:    1,
			LineTotal:   bill.TotalCost,
		}
		if err := s.orderRepo.CreateOrderItem(tx, &item); err != nil {
			return fmt.Errorf("failed to create table charge item: %w", err)
		}
		order.Items = []models.OrderItem{item}

		result.Session = session
		result.Order = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// TransferTable moves the OPEN session to an AVAILABLE table. The source goes to CLEANING.
func (s *tableService) TransferTable(fromTableID, toTableID int64) (*models.Session, error) {
	if fromTableID == toTableID {
		return nil, ErrSameTableTransfer
	}

	var session *models.Session
	err := withTx(s.db, func(tx *sql.Tx) error {
		// Lock in id order so two opposite transfers cannot deadlock.
		first, second := fromTableID, toTableID
		if first > second {
			first, second = second, first
		}
		tables := make(map[int64]*models.PoolTable, 2)
		for _, id := range []int64{first, second} {
			t, err := s.tableRepo.GetTableForUpdate(tx, id)
			if err != nil {
				if errors.Is(err, repositories.ErrNotFound) {
					return fmt.Errorf("%w: id %d", ErrTableNotFound, id)
				}
				return fmt.Errorf("failed to lock table %d: %w", id, err)
			}
			tables[id] = t
		}
		from, to := tables[fromTableID], tables[toTableID]

		var err error
		session, err = s.sessionRepo.GetRunningSession(tx, fromTableID, models.SessionStatusOpen)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrNoOpenSession
			}
			return fmt.Errorf("failed to get open session: %w", err)
		}
		if from.Status != models.TableStatusActive {
			return fmt.Errorf("%w: source table is %s", ErrInvalidTransition, from.Status)
		}
		if to.Status != models.TableStatusAvailable {
			return fmt.Errorf("%w (destination is %s)", ErrTableNotAvailable, to.Status)
		}

		if err := s.sessionRepo.MoveSession(tx, session.ID, toTableID); err != nil {
			return fmt.Errorf("failed to move session %d: %w", session.ID, err)
		}
		if _, err := s.tableRepo.UpdateTableStatus(tx, fromTableID, models.TableStatusActive, models.TableStatusCleaning); err != nil {
			return fmt.Errorf("failed to update source table: %w", err)
		}
		if _, err := s.tableRepo.UpdateTableStatus(tx, toTableID, models.TableStatusAvailable, models.TableStatusActive); err != nil {
			return fmt.Errorf("failed to update destination table: %w", err)
		}
		session.TableID = toTableID
		session.TableName = stringPtr(to.Name)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

func (s *tableService) MarkTableReady(tableID int64) (*models.PoolTable, error) {
	ok, err := s.tableRepo.UpdateTableStatus(s.db, tableID, models.TableStatusCleaning, models.TableStatusAvailable)
	if err != nil {
		return nil, fmt.Errorf("failed to update table %d: %w", tableID, err)
	}
	table, err := s.tableRepo.GetTableByID(nil, tableID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTableNotFound
		}
		return nil, fmt.Errorf("failed to get table %d: %w", tableID, err)
	}
	if !ok {
		return nil, ErrTableNotCleaning
	}
	return table, nil
}

// GetLiveBill prices the running session as of now. Fixed packages are priced by elapsed time too.
func (s *tableService) GetLiveBill(tableID int64) (*LiveBill, error) {
	table, err := s.tableRepo.GetTableByID(nil, tableID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTableNotFound
		}
		return nil, fmt.Errorf("failed to get table %d: %w", tableID, err)
	}
	session, err := s.sessionRepo.GetRunningSession(s.db, tableID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNoRunningSession
		}
		return nil, fmt.Errorf("failed to get running session: %w", err)
	}
	now := s.now()
	bill := CalculateBill(session.StartTime, now, table.HourlyRate)
	session.TableName = stringPtr(table.Name)
	return &LiveBill{
		TableID:         table.ID,
		TableName:       table.Name,
		HourlyRate:      table.HourlyRate,
		Session:         session,
		DurationMinutes: bill.DurationMinutes,
		TotalCost:       bill.TotalCost,
		AsOf:            now,
	}, nil
}

func (s *tableService) ListSessions(filters models.SessionFilters) ([]models.Session, int, error) {
	if filters.Date != nil && *filters.Date != "" {
		if _, err := time.Parse(dateLayout, *filters.Date); err != nil {
			return nil, 0, NewValidationError("date", "must be YYYY-MM-DD")
		}
	}
	sessions, total, err := s.sessionRepo.ListSessions(filters, s.loc)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, total, nil
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	return utils.NewNullString(*s)
}
