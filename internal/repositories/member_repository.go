package repositories

import (
	"database/sql"
	"fmt"
	"strings"

	"billiard_pos_backend/internal/models"
)

// MemberRepository defines the database operations on members and their ledgers.
type MemberRepository interface {
	NextMemberCode(executor SQLExecutor) (string, error)
	CreateMember(executor SQLExecutor, member *models.Member) error
	GetMemberByID(executor SQLExecutor, id int64) (*models.Member, error)
	GetMemberForUpdate(executor SQLExecutor, id int64) (*models.Member, error)
	GetMembers(page, pageSize int, searchTerm *string) ([]models.Member, int, error)
	UpdateMember(executor SQLExecutor, member *models.Member) error
	DeleteMember(executor SQLExecutor, id int64) error

	// AddWalletBalance applies delta and returns the new balance. It never lets the balance go negative.
	AddWalletBalance(executor SQLExecutor, id int64, delta int64) (int64, error)
	AddPointsBalance(executor SQLExecutor, id int64, delta int64) (int64, error)
	CreateWalletTransaction(executor SQLExecutor, tx *models.WalletTransaction) error
	CreatePointTransaction(executor SQLExecutor, tx *models.PointTransaction) error
	GetWalletTransactions(memberID int64, page, pageSize int) ([]models.WalletTransaction, int, error)
	GetPointTransactions(memberID int64, page, pageSize int) ([]models.PointTransaction, int, error)
}

type memberRepository struct {
	db *sql.DB
}

// NewMemberRepository creates a new instance of MemberRepository.
func NewMemberRepository(db *sql.DB) MemberRepository {
	return &memberRepository{db: db}
}

const memberColumns = `id, member_code, name, phone, email, tier, status, wallet_balance, points_balance,
	expires_at, created_at, updated_at`

func scanMember(row scanner, extra ...interface{}) (*models.Member, error) {
	var m models.Member
	dest := []interface{}{
		&m.ID, &m.MemberCode, &m.Name, &m.Phone, &m.Email, &m.Tier, &m.Status, &m.WalletBalance, &m.PointsBalance,
		&m.ExpiresAt, &m.CreatedAt, &m.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &m, nil
}

// NextMemberCode draws the next MEM-NNN code from member_code_seq.
func (r *memberRepository) NextMemberCode(executor SQLExecutor) (string, error) {
	var n int64
	if err := executor.QueryRow(`SELECT nextval('member_code_seq')`).Scan(&n); err != nil {
		return "", wrapDBError(err, "drawing member code")
	}
	return fmt.Sprintf("MEM-%03d", n), nil
}

func (r *memberRepository) CreateMember(executor SQLExecutor, member *models.Member) error {
	query := `INSERT INTO members (member_code, name, phone, email, tier, status, expires_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING id, wallet_balance, points_balance, created_at, updated_at`
	err := executor.QueryRow(query,
		member.MemberCode, member.Name, member.Phone, member.Email, member.Tier, member.Status, member.ExpiresAt,
	).Scan(&member.ID, &member.WalletBalance, &member.PointsBalance, &member.CreatedAt, &member.UpdatedAt)
	return wrapDBError(err, "creating member")
}

func (r *memberRepository) GetMemberByID(executor SQLExecutor, id int64) (*models.Member, error) {
	if executor == nil {
		executor = r.db
	}
	m, err := scanMember(executor.QueryRow(`SELECT `+memberColumns+` FROM members WHERE id = $1`, id))
	if err != nil {
		return nil, wrapDBError(err, "getting member")
	}
	return m, nil
}

func (r *memberRepository) GetMemberForUpdate(executor SQLExecutor, id int64) (*models.Member, error) {
	m, err := scanMember(executor.QueryRow(`SELECT `+memberColumns+` FROM members WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, wrapDBError(err, "locking member")
	}
	return m, nil
}

func (r *memberRepository) GetMembers(page, pageSize int, searchTerm *string) ([]models.Member, int, error) {
	var args []interface{}
	query := `SELECT ` + memberColumns + `, COUNT(*) OVER() AS total_count FROM members`
	argCount := 1
	if searchTerm != nil && strings.TrimSpace(*searchTerm) != "" {
		query += fmt.Sprintf(` WHERE name ILIKE $%d OR phone ILIKE $%d OR member_code ILIKE $%d`, argCount, argCount, argCount)
		args = append(args, "%"+strings.TrimSpace(*searchTerm)+"%")
		argCount++
	}
	limit, offset := normalizePage(page, pageSize)
	query += fmt.Sprintf(` ORDER BY id LIMIT $%d OFFSET $%d`, argCount, argCount+1)
	args = append(args, limit, offset)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, 0, wrapDBError(err, "listing members")
	}
	defer rows.Close()

	members := []models.Member{}
	total := 0
	for rows.Next() {
		m, err := scanMember(rows, &total)
		if err != nil {
			return nil, 0, wrapDBError(err, "scanning member")
		}
		members = append(members, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, wrapDBError(err, "iterating members")
	}
	return members, total, nil
}

// UpdateMember writes profile fields only; balances change through the ledger methods.
func (r *memberRepository) UpdateMember(executor SQLExecutor, member *models.Member) error {
	query := `UPDATE members SET name = $1, phone = $2, email = $3, tier = $4, status = $5, expires_at = $6,
	            updated_at = NOW()
	          WHERE id = $7
	          RETURNING updated_at`
	err := executor.QueryRow(query,
		member.Name, member.Phone, member.Email, member.Tier, member.Status, member.ExpiresAt, member.ID,
	).Scan(&member.UpdatedAt)
	return wrapDBError(err, "updating member")
}

func (r *memberRepository) DeleteMember(executor SQLExecutor, id int64) error {
	res, err := executor.Exec(`DELETE FROM members WHERE id = $1`, id)
	if err != nil {
		return wrapDBError(err, "deleting member")
	}
	return expectOneRow(res, "deleting member")
}

func (r *memberRepository) AddWalletBalance(executor SQLExecutor, id int64, delta int64) (int64, error) {
	var balance int64
	err := executor.QueryRow(
		`UPDATE members SET wallet_balance = wallet_balance + $1, updated_at = NOW()
		 WHERE id = $2 AND wallet_balance + $1 >= 0
		 RETURNING wallet_balance`, delta, id,
	).Scan(&balance)
	if err != nil {
		return 0, wrapDBError(err, "updating wallet balance")
	}
	return balance, nil
}

func (r *memberRepository) AddPointsBalance(executor SQLExecutor, id int64, delta int64) (int64, error) {
	var balance int64
	err := executor.QueryRow(
		`UPDATE members SET points_balance = points_balance + $1, updated_at = NOW()
		 WHERE id = $2 AND points_balance + $1 >= 0
		 RETURNING points_balance`, delta, id,
	).Scan(&balance)
	if err != nil {
		return 0, wrapDBError(err, "updating points balance")
	}
	return balance, nil
}

func (r *memberRepository) CreateWalletTransaction(executor SQLExecutor, tx *models.WalletTransaction) error {
	query := `INSERT INTO wallet_transactions
	            (member_id, type, amount, balance_after, payment_method, order_id, description, created_by)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	          RETURNING id, created_at`
	err := executor.QueryRow(query,
		tx.MemberID, tx.Type, tx.Amount, tx.BalanceAfter, tx.PaymentMethod, tx.OrderID, tx.Description, tx.CreatedBy,
	).Scan(&tx.ID, &tx.CreatedAt)
	return wrapDBError(err, "creating wallet transaction")
}

func (r *memberRepository) CreatePointTransaction(executor SQLExecutor, tx *models.PointTransaction) error {
	query := `INSERT INTO point_transactions
	            (member_id, type, points, balance_after, order_id, description, created_by)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING id, created_at`
	err := executor.QueryRow(query,
		tx.MemberID, tx.Type, tx.Points, tx.BalanceAfter, tx.OrderID, tx.Description, tx.CreatedBy,
	).Scan(&tx.ID, &tx.CreatedAt)
	return wrapDBError(err, "creating point transaction")
}

func (r *memberRepository) GetWalletTransactions(memberID int64, page, pageSize int) ([]models.WalletTransaction, int, error) {
	limit, offset := normalizePage(page, pageSize)
	rows, err := r.db.Query(
		`SELECT id, member_id, type, amount, balance_after, payment_method, order_id, description, created_by, created_at,
		        COUNT(*) OVER() AS total_count
		 FROM wallet_transactions WHERE member_id = $1
		 ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`, memberID, limit, offset)
	if err != nil {
		return nil, 0, wrapDBError(err, "listing wallet transactions")
	}
	defer rows.Close()

	txs := []models.WalletTransaction{}
	total := 0
	for rows.Next() {
		var t models.WalletTransaction
		if err := rows.Scan(&t.ID, &t.MemberID, &t.Type, &t.Amount, &t.BalanceAfter, &t.PaymentMethod,
			&t.OrderID, &t.Description, &t.CreatedBy, &t.CreatedAt, &total); err != nil {
			return nil, 0, wrapDBError(err, "scanning wallet transaction")
		}
		txs = append(txs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, wrapDBError(err, "iterating wallet transactions")
	}
	return txs, total, nil
}

func (r *memberRepository) GetPointTransactions(memberID int64, page, pageSize int) ([]models.PointTransaction, int, error) {
	limit, offset := normalizePage(page, pageSize)
	rows, err := r.db.Query(
		`SELECT id, member_id, type, points, balance_after, order_id, description, created_by, created_at,
		        COUNT(*) OVER() AS total_count
		 FROM point_transactions WHERE member_id = $1
		 ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`, memberID, limit, offset)
	if err != nil {
		return nil, 0, wrapDBError(err, "listing point transactions")
	}
	defer rows.Close()

	txs := []models.PointTransaction{}
	total := 0
	for rows.Next() {
		var t models.PointTransaction
		if err := rows.Scan(&t.ID, &t.MemberID, &t.Type, &t.Points, &t.BalanceAfter,
			&t.OrderID, &t.Description, &t.CreatedBy, &t.CreatedAt, &total); err != nil {
			return nil, 0, wrapDBError(err, "scanning point transaction")
		}
		txs = append(txs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, wrapDBError(err, "iterating point transactions")
	}
	return txs, total, nil
}
