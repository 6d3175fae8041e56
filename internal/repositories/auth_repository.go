package repositories

import (
	"database/sql"

	"billiard_pos_backend/internal/models"
)

// UserRepository defines the database operations on staff logins.
type UserRepository interface {
	CreateUser(executor SQLExecutor, user *models.User) error
	GetUserByID(id int64) (*models.User, error)
	GetUserByUsername(username string) (*models.User, error)
	GetUsers() ([]models.User, error)
	UpdateUser(executor SQLExecutor, user *models.User) error
	UpdatePassword(executor SQLExecutor, id int64, passwordHash string) error
	DeleteUser(executor SQLExecutor, id int64) error
	CountUsers() (int, error)
}

type userRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, username, password_hash, full_name, role, is_active, created_at, updated_at`

func scanUser(row scanner) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.FullName, &u.Role, &u.IsActive,
		&u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) CreateUser(executor SQLExecutor, user *models.User) error {
	query := `INSERT INTO users (username, password_hash, full_name, role, is_active)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING id, created_at, updated_at`
	err := executor.QueryRow(query, user.Username, user.PasswordHash, user.FullName, user.Role, user.IsActive).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	return wrapDBError(err, "creating user")
}

func (r *userRepository) GetUserByID(id int64) (*models.User, error) {
	u, err := scanUser(r.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, wrapDBError(err, "getting user")
	}
	return u, nil
}

func (r *userRepository) GetUserByUsername(username string) (*models.User, error) {
	u, err := scanUser(r.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE username = $1`, username))
	if err != nil {
		return nil, wrapDBError(err, "getting user by username")
	}
	return u, nil
}

func (r *userRepository) GetUsers() ([]models.User, error) {
	rows, err := r.db.Query(`SELECT ` + userColumns + ` FROM users ORDER BY username`)
	if err != nil {
		return nil, wrapDBError(err, "listing users")
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, wrapDBError(err, "scanning user")
		}
		users = append(users, *u)
	}
	return users, wrapDBError(rows.Err(), "iterating users")
}

func (r *userRepository) UpdateUser(executor SQLExecutor, user *models.User) error {
	query := `UPDATE users SET full_name = $1, role = $2, is_active = $3, updated_at = NOW()
	          WHERE id = $4
	          RETURNING updated_at`
	err := executor.QueryRow(query, user.FullName, user.Role, user.IsActive, user.ID).Scan(&user.UpdatedAt)
	return wrapDBError(err, "updating user")
}

func (r *userRepository) UpdatePassword(executor SQLExecutor, id int64, passwordHash string) error {
	res, err := executor.Exec(`UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2`, passwordHash, id)
	if err != nil {
		return wrapDBError(err, "updating password")
	}
	return expectOneRow(res, "updating password")
}

func (r *userRepository) DeleteUser(executor SQLExecutor, id int64) error {
	res, err := executor.Exec(`DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return wrapDBError(err, "deleting user")
	}
	return expectOneRow(res, "deleting user")
}

func (r *userRepository) CountUsers() (int, error) {
	var n int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, wrapDBError(err, "counting users")
	}
	return n, nil
}
