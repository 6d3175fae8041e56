package repositories

import (
	"database/sql"
	"strings"

	"billiard_pos_backend/internal/models"
)

// PromoRepository defines the database operations on promo codes.
type PromoRepository interface {
	CreatePromo(executor SQLExecutor, promo *models.Promo) error
	GetPromoByID(id int64) (*models.Promo, error)
	GetPromoByCode(executor SQLExecutor, code string) (*models.Promo, error)
	GetPromos(activeOnly bool) ([]models.Promo, error)
	UpdatePromo(executor SQLExecutor, promo *models.Promo) error
	DeletePromo(executor SQLExecutor, id int64) error
}

type promoRepository struct {
	db *sql.DB
}

// NewPromoRepository creates a new instance of PromoRepository.
func NewPromoRepository(db *sql.DB) PromoRepository {
	return &promoRepository{db: db}
}

const promoColumns = `id, code, description, discount_type, discount_value, min_spend, max_discount,
	valid_from, valid_until, is_active, created_at, updated_at`

func scanPromo(row scanner) (*models.Promo, error) {
	var p models.Promo
	if err := row.Scan(&p.ID, &p.Code, &p.Description, &p.DiscountType, &p.DiscountValue, &p.MinSpend,
		&p.MaxDiscount, &p.ValidFrom, &p.ValidUntil, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *promoRepository) CreatePromo(executor SQLExecutor, promo *models.Promo) error {
	query := `INSERT INTO promos
	            (code, description, discount_type, discount_value, min_spend, max_discount, valid_from, valid_until, is_active)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	          RETURNING id, created_at, updated_at`
	err := executor.QueryRow(query,
		promo.Code, promo.Description, promo.DiscountType, promo.DiscountValue, promo.MinSpend,
		promo.MaxDiscount, promo.ValidFrom, promo.ValidUntil, promo.IsActive,
	).Scan(&promo.ID, &promo.CreatedAt, &promo.UpdatedAt)
	return wrapDBError(err, "creating promo")
}

func (r *promoRepository) GetPromoByID(id int64) (*models.Promo, error) {
	p, err := scanPromo(r.db.QueryRow(`SELECT `+promoColumns+` FROM promos WHERE id = $1`, id))
	if err != nil {
		return nil, wrapDBError(err, "getting promo")
	}
	return p, nil
}

func (r *promoRepository) GetPromoByCode(executor SQLExecutor, code string) (*models.Promo, error) {
	if executor == nil {
		executor = r.db
	}
	p, err := scanPromo(executor.QueryRow(`SELECT `+promoColumns+` FROM promos WHERE UPPER(code) = $1`,
		strings.ToUpper(strings.TrimSpace(code))))
	if err != nil {
		return nil, wrapDBError(err, "getting promo by code")
	}
	return p, nil
}

func (r *promoRepository) GetPromos(activeOnly bool) ([]models.Promo, error) {
	query := `SELECT ` + promoColumns + ` FROM promos`
	if activeOnly {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, wrapDBError(err, "listing promos")
	}
	defer rows.Close()

	promos := []models.Promo{}
	for rows.Next() {
		p, err := scanPromo(rows)
		if err != nil {
			return nil, wrapDBError(err, "scanning promo")
		}
		promos = append(promos, *p)
	}
	return promos, wrapDBError(rows.Err(), "iterating promos")
}

func (r *promoRepository) UpdatePromo(executor SQLExecutor, promo *models.Promo) error {
	query := `UPDATE promos SET code = $1, description = $2, discount_type = $3, discount_value = $4, min_spend = $5,
	            max_discount = $6, valid_from = $7, valid_until = $8, is_active = $9, updated_at = NOW()
	          WHERE id = $10
	          RETURNING updated_at`
	err := executor.QueryRow(query,
		promo.Code, promo.Description, promo.DiscountType, promo.DiscountValue, promo.MinSpend,
		promo.MaxDiscount, promo.ValidFrom, promo.ValidUntil, promo.IsActive, promo.ID,
	).Scan(&promo.UpdatedAt)
	return wrapDBError(err, "updating promo")
}

func (r *promoRepository) DeletePromo(executor SQLExecutor, id int64) error {
	res, err := executor.Exec(`DELETE FROM promos WHERE id = $1`, id)
	if err != nil {
		return wrapDBError(err, "deleting promo")
	}
	return expectOneRow(res, "deleting promo")
}
