package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"billiard_pos_backend/internal/models"

	"github.com/lib/pq"
)

// SessionRepository defines the database operations on table sessions.
type SessionRepository interface {
	CreateSession(executor SQLExecutor, session *models.Session) error
	GetSessionByID(id int64) (*models.Session, error)
	// GetRunningSession locks and returns the table's session whose status is one of statuses.
	GetRunningSession(executor SQLExecutor, tableID int64, statuses ...models.SessionStatus) (*models.Session, error)
	ListRunningSessions() ([]models.Session, error)
	ListSessions(filters models.SessionFilters, loc *time.Location) ([]models.Session, int, error)
	UpdateSessionStatus(executor SQLExecutor, id int64, status models.SessionStatus) error
	CloseSession(executor SQLExecutor, session *models.Session) error
	MoveSession(executor SQLExecutor, id, toTableID int64) error
}

type sessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new instance of SessionRepository.
func NewSessionRepository(db *sql.DB) SessionRepository {
	return &sessionRepository{db: db}
}

const sessionColumns = `s.id, s.table_id, s.customer_name, s.member_id, s.status, s.start_time, s.end_time,
	s.package_hours, s.duration_minutes, s.total_cost, s.started_by, s.created_at, s.updated_at`

func scanSession(row scanner, extra ...interface{}) (*models.Session, error) {
	var s models.Session
	dest := []interface{}{
		&s.ID, &s.TableID, &s.CustomerName, &s.MemberID, &s.Status, &s.StartTime, &s.EndTime,
		&s.PackageHours, &s.DurationMinutes, &s.TotalCost, &s.StartedBy, &s.CreatedAt, &s.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &s, nil
}

func statusStrings(statuses []models.SessionStatus) []string {
	out := make([]string, len(statuses))
	for i, st := range statuses {
		out[i] = string(st)
	}
	return out
}

func (r *sessionRepository) CreateSession(executor SQLExecutor, session *models.Session) error {
	query := `INSERT INTO table_sessions
	            (table_id, customer_name, member_id, status, start_time, end_time, package_hours, started_by)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	          RETURNING id, created_at, updated_at`
	err := executor.QueryRow(query,
		session.TableID, session.CustomerName, session.MemberID, session.Status,
		session.StartTime, session.EndTime, session.PackageHours, session.StartedBy,
	).Scan(&session.ID, &session.CreatedAt, &session.UpdatedAt)
	return wrapDBError(err, "creating session")
}

func (r *sessionRepository) GetSessionByID(id int64) (*models.Session, error) {
	var tableName string
	s, err := scanSession(r.db.QueryRow(
		`SELECT `+sessionColumns+`, t.name FROM table_sessions s JOIN pool_tables t ON t.id = s.table_id WHERE s.id = $1`, id,
	), &tableName)
	if err != nil {
		return nil, wrapDBError(err, "getting session")
	}
	s.TableName = &tableName
	return s, nil
}

func (r *sessionRepository) GetRunningSession(executor SQLExecutor, tableID int64, statuses ...models.SessionStatus) (*models.Session, error) {
	if len(statuses) == 0 {
		statuses = []models.SessionStatus{models.SessionStatusOpen, models.SessionStatusPaused}
	}
	s, err := scanSession(executor.QueryRow(
		`SELECT `+sessionColumns+` FROM table_sessions s
		 WHERE s.table_id = $1 AND s.status = ANY($2)
		 ORDER BY s.start_time DESC LIMIT 1 FOR UPDATE`,
		tableID, pq.Array(statusStrings(statuses)),
	))
	if err != nil {
		return nil, wrapDBError(err, "getting running session")
	}
	return s, nil
}

func (r *sessionRepository) ListRunningSessions() ([]models.Session, error) {
	rows, err := r.db.Query(`SELECT ` + sessionColumns + ` FROM table_sessions s WHERE s.status IN ('OPEN', 'PAUSED')`)
	if err != nil {
		return nil, wrapDBError(err, "listing running sessions")
	}
	defer rows.Close()

	sessions := []models.Session{}
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, wrapDBError(err, "scanning session")
		}
		sessions = append(sessions, *s)
	}
	return sessions, wrapDBError(rows.Err(), "iterating sessions")
}

func (r *sessionRepository) ListSessions(filters models.SessionFilters, loc *time.Location) ([]models.Session, int, error) {
	var conditions []string
	var args []interface{}
	argCount := 1

	if filters.TableID != nil {
		conditions = append(conditions, fmt.Sprintf("s.table_id = $%d", argCount))
		args = append(args, *filters.TableID)
		argCount++
	}
	if filters.MemberID != nil {
		conditions = append(conditions, fmt.Sprintf("s.member_id = $%d", argCount))
		args = append(args, *filters.MemberID)
		argCount++
	}
	if filters.Status != nil && *filters.Status != "" {
		conditions = append(conditions, fmt.Sprintf("s.status = $%d", argCount))
		args = append(args, strings.ToUpper(*filters.Status))
		argCount++
	}
	if filters.Date != nil && *filters.Date != "" {
		day, err := time.ParseInLocation("2006-01-02", *filters.Date, loc)
		if err != nil {
			return nil, 0, fmt.Errorf("invalid date filter: %w", err)
		}
		conditions = append(conditions, fmt.Sprintf("s.start_time >= $%d AND s.start_time < $%d", argCount, argCount+1))
		args = append(args, day, day.AddDate(0, 0, 1))
		argCount += 2
	}

	var qb strings.Builder
	qb.WriteString(`SELECT ` + sessionColumns + `, t.name, COUNT(*) OVER() AS total_count
	  FROM table_sessions s JOIN pool_tables t ON t.id = s.table_id`)
	if len(conditions) > 0 {
		qb.WriteString(" WHERE ")
		qb.WriteString(strings.Join(conditions, " AND "))
	}
	limit, offset := normalizePage(filters.Page, filters.PageSize)
	qb.WriteString(fmt.Sprintf(" ORDER BY s.start_time DESC LIMIT $%d OFFSET $%d", argCount, argCount+1))
	args = append(args, limit, offset)

	rows, err := r.db.Query(qb.String(), args...)
	if err != nil {
		return nil, 0, wrapDBError(err, "listing sessions")
	}
	defer rows.Close()

	sessions := []models.Session{}
	total := 0
	for rows.Next() {
		var tableName string
		s, err := scanSession(rows, &tableName, &total)
		if err != nil {
			return nil, 0, wrapDBError(err, "scanning session")
		}
		s.TableName = &tableName
		sessions = append(sessions, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, wrapDBError(err, "iterating sessions")
	}
	return sessions, total, nil
}

func (r *sessionRepository) UpdateSessionStatus(executor SQLExecutor, id int64, status models.SessionStatus) error {
	res, err := executor.Exec(`UPDATE table_sessions SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return wrapDBError(err, "updating session status")
	}
	return expectOneRow(res, "updating session status")
}

func (r *sessionRepository) CloseSession(executor SQLExecutor, session *models.Session) error {
	res, err := executor.Exec(
		`UPDATE table_sessions
		 SET status = $1, end_time = $2, duration_minutes = $3, total_cost = $4, updated_at = NOW()
		 WHERE id = $5 AND status <> 'CLOSED'`,
		models.SessionStatusClosed, session.EndTime, session.DurationMinutes, session.TotalCost, session.ID,
	)
	if err != nil {
		return wrapDBError(err, "closing session")
	}
	return expectOneRow(res, "closing session")
}

func (r *sessionRepository) MoveSession(executor SQLExecutor, id, toTableID int64) error {
	res, err := executor.Exec(`UPDATE table_sessions SET table_id = $1, updated_at = NOW() WHERE id = $2`, toTableID, id)
	if err != nil {
		return wrapDBError(err, "moving session")
	}
	return expectOneRow(res, "moving session")
}
