package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"billiard_pos_backend/internal/models"
)

// ShiftRepository defines the database operations on shift reports.
type ShiftRepository interface {
	CreateShift(executor SQLExecutor, shift *models.ShiftReport) error
	GetShiftByID(executor SQLExecutor, id int64) (*models.ShiftReport, error)
	GetShiftForUpdate(executor SQLExecutor, id int64) (*models.ShiftReport, error)
	GetOpenShiftByStaff(executor SQLExecutor, staffID int64) (*models.ShiftReport, error)
	GetShifts(filters models.ShiftFilters, loc *time.Location) ([]models.ShiftReport, int, error)
	CloseShift(executor SQLExecutor, shift *models.ShiftReport) error
}

type shiftRepository struct {
	db *sql.DB
}

// NewShiftRepository creates a new instance of ShiftRepository.
func NewShiftRepository(db *sql.DB) ShiftRepository {
	return &shiftRepository{db: db}
}

const shiftColumns = `sr.id, sr.staff_id, sr.opened_at, sr.closed_at, sr.opening_cash, sr.system_cash, sr.actual_cash,
	sr.variance, sr.variance_reason, sr.created_at, sr.updated_at`

func scanShift(row scanner, extra ...interface{}) (*models.ShiftReport, error) {
	var s models.ShiftReport
	dest := []interface{}{
		&s.ID, &s.StaffID, &s.OpenedAt, &s.ClosedAt, &s.OpeningCash, &s.SystemCash, &s.ActualCash,
		&s.Variance, &s.VarianceReason, &s.CreatedAt, &s.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *shiftRepository) CreateShift(executor SQLExecutor, shift *models.ShiftReport) error {
	query := `INSERT INTO shift_reports (staff_id, opened_at, opening_cash)
	          VALUES ($1, $2, $3)
	          RETURNING id, created_at, updated_at`
	err := executor.QueryRow(query, shift.StaffID, shift.OpenedAt, shift.OpeningCash).
		Scan(&shift.ID, &shift.CreatedAt, &shift.UpdatedAt)
	return wrapDBError(err, "opening shift")
}

func (r *shiftRepository) GetShiftByID(executor SQLExecutor, id int64) (*models.ShiftReport, error) {
	if executor == nil {
		executor = r.db
	}
	s, err := scanShift(executor.QueryRow(`SELECT `+shiftColumns+` FROM shift_reports sr WHERE sr.id = $1`, id))
	if err != nil {
		return nil, wrapDBError(err, "getting shift")
	}
	return s, nil
}

func (r *shiftRepository) GetShiftForUpdate(executor SQLExecutor, id int64) (*models.ShiftReport, error) {
	s, err := scanShift(executor.QueryRow(`SELECT `+shiftColumns+` FROM shift_reports sr WHERE sr.id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, wrapDBError(err, "locking shift")
	}
	return s, nil
}

func (r *shiftRepository) GetOpenShiftByStaff(executor SQLExecutor, staffID int64) (*models.ShiftReport, error) {
	if executor == nil {
		executor = r.db
	}
	s, err := scanShift(executor.QueryRow(
		`SELECT `+shiftColumns+` FROM shift_reports sr WHERE sr.staff_id = $1 AND sr.closed_at IS NULL`, staffID))
	if err != nil {
		return nil, wrapDBError(err, "getting open shift")
	}
	return s, nil
}

func (r *shiftRepository) GetShifts(filters models.ShiftFilters, loc *time.Location) ([]models.ShiftReport, int, error) {
	var conditions []string
	var args []interface{}
	argCount := 1

	if filters.StaffID != nil {
		conditions = append(conditions, fmt.Sprintf("sr.staff_id = $%d", argCount))
		args = append(args, *filters.StaffID)
		argCount++
	}
	if filters.From != nil && *filters.From != "" {
		from, err := time.ParseInLocation("2006-01-02", *filters.From, loc)
		if err != nil {
			return nil, 0, fmt.Errorf("invalid from filter: %w", err)
		}
		conditions = append(conditions, fmt.Sprintf("sr.opened_at >= $%d", argCount))
		args = append(args, from)
		argCount++
	}
	if filters.To != nil && *filters.To != "" {
		to, err := time.ParseInLocation("2006-01-02", *filters.To, loc)
		if err != nil {
			return nil, 0, fmt.Errorf("invalid to filter: %w", err)
		}
		conditions = append(conditions, fmt.Sprintf("sr.opened_at < $%d", argCount))
		args = append(args, to.AddDate(0, 0, 1))
		argCount++
	}
	if filters.OpenOnly {
		conditions = append(conditions, "sr.closed_at IS NULL")
	}

	var qb strings.Builder
	qb.WriteString(`SELECT ` + shiftColumns + `, u.full_name, COUNT(*) OVER() AS total_count
	  FROM shift_reports sr JOIN users u ON u.id = sr.staff_id`)
	if len(conditions) > 0 {
		qb.WriteString(" WHERE ")
		qb.WriteString(strings.Join(conditions, " AND "))
	}
	limit, offset := normalizePage(filters.Page, filters.PageSize)
	qb.WriteString(fmt.Sprintf(" ORDER BY sr.opened_at DESC LIMIT $%d OFFSET $%d", argCount, argCount+1))
	args = append(args, limit, offset)

	rows, err := r.db.Query(qb.String(), args...)
	if err != nil {
		return nil, 0, wrapDBError(err, "listing shifts")
	}
	defer rows.Close()

	shifts := []models.ShiftReport{}
	total := 0
	for rows.Next() {
		var staffName string
		s, err := scanShift(rows, &staffName, &total)
		if err != nil {
			return nil, 0, wrapDBError(err, "scanning shift")
		}
		s.StaffName = &staffName
		shifts = append(shifts, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, wrapDBError(err, "iterating shifts")
	}
	return shifts, total, nil
}

func (r *shiftRepository) CloseShift(executor SQLExecutor, shift *models.ShiftReport) error {
	res, err := executor.Exec(
		`UPDATE shift_reports
		 SET closed_at = $1, system_cash = $2, actual_cash = $3, variance = $4, variance_reason = $5, updated_at = NOW()
		 WHERE id = $6 AND closed_at IS NULL`,
		shift.ClosedAt, shift.SystemCash, shift.ActualCash, shift.Variance, shift.VarianceReason, shift.ID,
	)
	if err != nil {
		return wrapDBError(err, "closing shift")
	}
	return expectOneRow(res, "closing shift")
}
