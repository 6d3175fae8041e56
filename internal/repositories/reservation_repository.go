package repositories

import (
	"database/sql"
	"fmt"
	"strings"

	"billiard_pos_backend/internal/models"

	"github.com/lib/pq"
)

// ReservationRepository defines the database operations on reservations.
type ReservationRepository interface {
	CreateReservation(executor SQLExecutor, res *models.Reservation) error
	GetReservationByID(executor SQLExecutor, id int64) (*models.Reservation, error)
	GetReservationForUpdate(executor SQLExecutor, id int64) (*models.Reservation, error)
	GetReservations(filters models.ReservationFilters) ([]models.Reservation, int, error)
	GetReservationsByDateAndStatus(date string, status models.ReservationStatus) ([]models.Reservation, error)
	UpdateReservation(executor SQLExecutor, res *models.Reservation) error
	UpdateReservationStatus(executor SQLExecutor, id int64, status models.ReservationStatus) error
	// CancelReservations bulk-cancels the given ids that are still CONFIRMED and returns how many changed.
	CancelReservations(executor SQLExecutor, ids []int64) (int64, error)
	DeleteReservation(executor SQLExecutor, id int64) error
	// CountTableConflicts counts active reservations of tableID whose slot overlaps [date start, +hours).
	CountTableConflicts(tableID int64, date, startHHMM string, hours int, excludeID *int64) (int, error)
}

type reservationRepository struct {
	db *sql.DB
}

// NewReservationRepository creates a new instance of ReservationRepository.
func NewReservationRepository(db *sql.DB) ReservationRepository {
	return &reservationRepository{db: db}
}

const reservationColumns = `id, customer_name, phone, member_id, table_id, to_char(booking_date, 'YYYY-MM-DD'),
	booking_time, duration_hours, party_size, notes, status, created_by, created_at, updated_at`

func scanReservation(row scanner, extra ...interface{}) (*models.Reservation, error) {
	var r models.Reservation
	dest := []interface{}{
		&r.ID, &r.CustomerName, &r.Phone, &r.MemberID, &r.TableID, &r.BookingDate,
		&r.BookingTime, &r.DurationHours, &r.PartySize, &r.Notes, &r.Status, &r.CreatedBy, &r.CreatedAt, &r.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &r, nil
}

func (r *reservationRepository) CreateReservation(executor SQLExecutor, res *models.Reservation) error {
	query := `INSERT INTO reservations
	            (customer_name, phone, member_id, table_id, booking_date, booking_time, duration_hours,
	             party_size, notes, status, created_by)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	          RETURNING id, created_at, updated_at`
	err := executor.QueryRow(query,
		res.CustomerName, res.Phone, res.MemberID, res.TableID, res.BookingDate, res.BookingTime, res.DurationHours,
		res.PartySize, res.Notes, res.Status, res.CreatedBy,
	).Scan(&res.ID, &res.CreatedAt, &res.UpdatedAt)
	return wrapDBError(err, "creating reservation")
}

func (r *reservationRepository) GetReservationByID(executor SQLExecutor, id int64) (*models.Reservation, error) {
	if executor == nil {
		executor = r.db
	}
	res, err := scanReservation(executor.QueryRow(`SELECT `+reservationColumns+` FROM reservations WHERE id = $1`, id))
	if err != nil {
		return nil, wrapDBError(err, "getting reservation")
	}
	return res, nil
}

func (r *reservationRepository) GetReservationForUpdate(executor SQLExecutor, id int64) (*models.Reservation, error) {
	res, err := scanReservation(executor.QueryRow(`SELECT `+reservationColumns+` FROM reservations WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, wrapDBError(err, "locking reservation")
	}
	return res, nil
}

func (r *reservationRepository) GetReservations(filters models.ReservationFilters) ([]models.Reservation, int, error) {
	var conditions []string
	var args []interface{}
	argCount := 1

	if filters.Date != nil && *filters.Date != "" {
		conditions = append(conditions, fmt.Sprintf("booking_date = $%d", argCount))
		args = append(args, *filters.Date)
		argCount++
	}
	if filters.Status != nil && *filters.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argCount))
		args = append(args, strings.ToUpper(*filters.Status))
		argCount++
	}
	if filters.TableID != nil {
		conditions = append(conditions, fmt.Sprintf("table_id = $%d", argCount))
		args = append(args, *filters.TableID)
		argCount++
	}
	if filters.MemberID != nil {
		conditions = append(conditions, fmt.Sprintf("member_id = $%d", argCount))
		args = append(args, *filters.MemberID)
		argCount++
	}

	var qb strings.Builder
	qb.WriteString(`SELECT ` + reservationColumns + `, COUNT(*) OVER() AS total_count FROM reservations`)
	if len(conditions) > 0 {
		qb.WriteString(" WHERE ")
		qb.WriteString(strings.Join(conditions, " AND "))
	}
	limit, offset := normalizePage(filters.Page, filters.PageSize)
	qb.WriteString(fmt.Sprintf(" ORDER BY booking_date DESC, booking_time LIMIT $%d OFFSET $%d", argCount, argCount+1))
	args = append(args, limit, offset)

	rows, err := r.db.Query(qb.String(), args...)
	if err != nil {
		return nil, 0, wrapDBError(err, "listing reservations")
	}
	defer rows.Close()

	reservations := []models.Reservation{}
	total := 0
	for rows.Next() {
		res, err := scanReservation(rows, &total)
		if err != nil {
			return nil, 0, wrapDBError(err, "scanning reservation")
		}
		reservations = append(reservations, *res)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, wrapDBError(err, "iterating reservations")
	}
	return reservations, total, nil
}

func (r *reservationRepository) GetReservationsByDateAndStatus(date string, status models.ReservationStatus) ([]models.Reservation, error) {
	rows, err := r.db.Query(
		`SELECT `+reservationColumns+` FROM reservations
		 WHERE booking_date = $1 AND status = $2 ORDER BY booking_time`, date, status)
	if err != nil {
		return nil, wrapDBError(err, "listing reservations for day")
	}
	defer rows.Close()

	reservations := []models.Reservation{}
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, wrapDBError(err, "scanning reservation")
		}
		reservations = append(reservations, *res)
	}
	return reservations, wrapDBError(rows.Err(), "iterating reservations")
}

func (r *reservationRepository) UpdateReservation(executor SQLExecutor, res *models.Reservation) error {
	query := `UPDATE reservations SET customer_name = $1, phone = $2, member_id = $3, table_id = $4,
	            booking_date = $5, booking_time = $6, duration_hours = $7, party_size = $8, notes = $9,
	            updated_at = NOW()
	          WHERE id = $10
	          RETURNING updated_at`
	err := executor.QueryRow(query,
		res.CustomerName, res.Phone, res.MemberID, res.TableID, res.BookingDate, res.BookingTime,
		res.DurationHours, res.PartySize, res.Notes, res.ID,
	).Scan(&res.UpdatedAt)
	return wrapDBError(err, "updating reservation")
}

func (r *reservationRepository) UpdateReservationStatus(executor SQLExecutor, id int64, status models.ReservationStatus) error {
	result, err := executor.Exec(`UPDATE reservations SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return wrapDBError(err, "updating reservation status")
	}
	return expectOneRow(result, "updating reservation status")
}

func (r *reservationRepository) CancelReservations(executor SQLExecutor, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result, err := executor.Exec(
		`UPDATE reservations SET status = $1, updated_at = NOW() WHERE id = ANY($2) AND status = $3`,
		models.ReservationStatusCancelled, pq.Array(ids), models.ReservationStatusConfirmed,
	)
	if err != nil {
		return 0, wrapDBError(err, "cancelling reservations")
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, wrapDBError(err, "cancelling reservations")
	}
	return n, nil
}

func (r *reservationRepository) DeleteReservation(executor SQLExecutor, id int64) error {
	result, err := executor.Exec(`DELETE FROM reservations WHERE id = $1`, id)
	if err != nil {
		return wrapDBError(err, "deleting reservation")
	}
	return expectOneRow(result, "deleting reservation")
}

func (r *reservationRepository) CountTableConflicts(tableID int64, date, startHHMM string, hours int, excludeID *int64) (int, error) {
	// Slots are compared as instants so a booking running past midnight still
	// collides with the next day's early slots.
	query := `SELECT COUNT(*) FROM reservations
	          WHERE table_id = $1 AND status IN ('PENDING', 'CONFIRMED')
	            AND booking_date BETWEEN $2::date - 1 AND $2::date + 1
	            AND (booking_date + booking_time::time) < ($2::date + $3::time + make_interval(hours => $4))
	            AND ($2::date + $3::time) < (booking_date + booking_time::time + make_interval(hours => duration_hours))`
	args := []interface{}{tableID, date, startHHMM, hours}
	if excludeID != nil {
		query += ` AND id <> $5`
		args = append(args, *excludeID)
	}
	var n int
	if err := r.db.QueryRow(query, args...).Scan(&n); err != nil {
		return 0, wrapDBError(err, "checking reservation conflicts")
	}
	return n, nil
}
