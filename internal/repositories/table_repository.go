package repositories

import (
	"database/sql"

	"billiard_pos_backend/internal/models"
)

// TableRepository defines the database operations on pool tables.
type TableRepository interface {
	CreateTable(executor SQLExecutor, table *models.PoolTable) error
	GetTableByID(executor SQLExecutor, id int64) (*models.PoolTable, error)
	GetTableForUpdate(executor SQLExecutor, id int64) (*models.PoolTable, error)
	ListTables(status *string) ([]models.PoolTable, error)
	UpdateTable(executor SQLExecutor, table *models.PoolTable) error
	DeleteTable(executor SQLExecutor, id int64) error
	// UpdateTableStatus moves the table to `to` only if it is currently `from`.
	// It reports whether a row changed.
	UpdateTableStatus(executor SQLExecutor, id int64, from, to models.TableStatus) (bool, error)
}

type tableRepository struct {
	db *sql.DB
}

// NewTableRepository creates a new instance of TableRepository.
func NewTableRepository(db *sql.DB) TableRepository {
	return &tableRepository{db: db}
}

const tableColumns = `id, name, type, hourly_rate, status, created_at, updated_at`

func scanTable(row scanner) (*models.PoolTable, error) {
	var t models.PoolTable
	if err := row.Scan(&t.ID, &t.Name, &t.Type, &t.HourlyRate, &t.Status, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *tableRepository) CreateTable(executor SQLExecutor, table *models.PoolTable) error {
	query := `INSERT INTO pool_tables (name, type, hourly_rate, status)
	          VALUES ($1, $2, $3, $4)
	          RETURNING id, created_at, updated_at`
	err := executor.QueryRow(query, table.Name, table.Type, table.HourlyRate, table.Status).
		Scan(&table.ID, &table.CreatedAt, &table.UpdatedAt)
	return wrapDBError(err, "creating table")
}

func (r *tableRepository) GetTableByID(executor SQLExecutor, id int64) (*models.PoolTable, error) {
	if executor == nil {
		executor = r.db
	}
	t, err := scanTable(executor.QueryRow(`SELECT `+tableColumns+` FROM pool_tables WHERE id = $1`, id))
	if err != nil {
		return nil, wrapDBError(err, "getting table")
	}
	return t, nil
}

func (r *tableRepository) GetTableForUpdate(executor SQLExecutor, id int64) (*models.PoolTable, error) {
	t, err := scanTable(executor.QueryRow(`SELECT `+tableColumns+` FROM pool_tables WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, wrapDBError(err, "locking table")
	}
	return t, nil
}

func (r *tableRepository) ListTables(status *string) ([]models.PoolTable, error) {
	query := `SELECT ` + tableColumns + ` FROM pool_tables`
	var args []interface{}
	if status != nil && *status != "" {
		query += ` WHERE status = $1`
		args = append(args, *status)
	}
	query += ` ORDER BY name`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, wrapDBError(err, "listing tables")
	}
	defer rows.Close()

	tables := []models.PoolTable{}
	for rows.Next() {
		t, err := scanTable(rows)
		if err != nil {
			return nil, wrapDBError(err, "scanning table")
		}
		tables = append(tables, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBError(err, "iterating tables")
	}
	return tables, nil
}

func (r *tableRepository) UpdateTable(executor SQLExecutor, table *models.PoolTable) error {
	query := `UPDATE pool_tables
	          SET name = $1, type = $2, hourly_rate = $3, status = $4, updated_at = NOW()
	          WHERE id = $5
	          RETURNING updated_at`
	err := executor.QueryRow(query, table.Name, table.Type, table.HourlyRate, table.Status, table.ID).
		Scan(&table.UpdatedAt)
	return wrapDBError(err, "updating table")
}

func (r *tableRepository) DeleteTable(executor SQLExecutor, id int64) error {
	res, err := executor.Exec(`DELETE FROM pool_tables WHERE id = $1`, id)
	if err != nil {
		return wrapDBError(err, "deleting table")
	}
	return expectOneRow(res, "deleting table")
}

func (r *tableRepository) UpdateTableStatus(executor SQLExecutor, id int64, from, to models.TableStatus) (bool, error) {
	res, err := executor.Exec(
		`UPDATE pool_tables SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`,
		to, id, from,
	)
	if err != nil {
		return false, wrapDBError(err, "updating table status")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, wrapDBError(err, "updating table status")
	}
	return n == 1, nil
}
