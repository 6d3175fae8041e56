package repositories

import (
	"database/sql"
	"fmt"
	"strings"

	"billiard_pos_backend/internal/models"
)

// ProductRepository defines the database operations on products and the stock ledger.
type ProductRepository interface {
	CreateProduct(executor SQLExecutor, product *models.Product) error
	GetProductByID(executor SQLExecutor, id int64) (*models.Product, error)
	GetProductForUpdate(executor SQLExecutor, id int64) (*models.Product, error)
	GetProducts(category *string, activeOnly bool) ([]models.Product, error)
	GetLowStockProducts() ([]models.Product, error)
	UpdateProduct(executor SQLExecutor, product *models.Product) error
	DeleteProduct(executor SQLExecutor, id int64) error

	// AddStock applies delta to stock_qty and returns the new quantity.
	// It returns ErrNotFound if the product is missing or the result would be negative.
	AddStock(executor SQLExecutor, id int64, delta int) (int, error)
	CreateStockAdjustment(executor SQLExecutor, adj *models.StockAdjustment) error
	GetStockAdjustments(filters models.StockAdjustmentFilters) ([]models.StockAdjustment, int, error)
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository.
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

const productColumns = `id, name, category, price, stock_qty, low_stock_threshold, is_active, created_at, updated_at`

func scanProduct(row scanner) (*models.Product, error) {
	var p models.Product
	if err := row.Scan(&p.ID, &p.Name, &p.Category, &p.Price, &p.StockQty, &p.LowStockThreshold,
		&p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepository) queryProducts(query string, args ...interface{}) ([]models.Product, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, wrapDBError(err, "listing products")
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, wrapDBError(err, "scanning product")
		}
		products = append(products, *p)
	}
	return products, wrapDBError(rows.Err(), "iterating products")
}

func (r *productRepository) CreateProduct(executor SQLExecutor, product *models.Product) error {
	query := `INSERT INTO products (name, category, price, stock_qty, low_stock_threshold, is_active)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING id, created_at, updated_at`
	err := executor.QueryRow(query,
		product.Name, product.Category, product.Price, product.StockQty, product.LowStockThreshold, product.IsActive,
	).Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)
	return wrapDBError(err, "creating product")
}

func (r *productRepository) GetProductByID(executor SQLExecutor, id int64) (*models.Product, error) {
	if executor == nil {
		executor = r.db
	}
	p, err := scanProduct(executor.QueryRow(`SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		return nil, wrapDBError(err, "getting product")
	}
	return p, nil
}

func (r *productRepository) GetProductForUpdate(executor SQLExecutor, id int64) (*models.Product, error) {
	p, err := scanProduct(executor.QueryRow(`SELECT `+productColumns+` FROM products WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, wrapDBError(err, "locking product")
	}
	return p, nil
}

func (r *productRepository) GetProducts(category *string, activeOnly bool) ([]models.Product, error) {
	var conditions []string
	var args []interface{}
	if category != nil && *category != "" {
		args = append(args, strings.ToUpper(*category))
		conditions = append(conditions, fmt.Sprintf("category = $%d", len(args)))
	}
	if activeOnly {
		conditions = append(conditions, "is_active = TRUE")
	}
	query := `SELECT ` + productColumns + ` FROM products`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY category, name"
	return r.queryProducts(query, args...)
}

func (r *productRepository) GetLowStockProducts() ([]models.Product, error) {
	return r.queryProducts(`SELECT ` + productColumns + ` FROM products
		WHERE is_active = TRUE AND stock_qty <= low_stock_threshold ORDER BY stock_qty, name`)
}

// UpdateProduct does not touch stock_qty; stock only moves through AddStock.
func (r *productRepository) UpdateProduct(executor SQLExecutor, product *models.Product) error {
	query := `UPDATE products SET name = $1, category = $2, price = $3, low_stock_threshold = $4, is_active = $5,
	            updated_at = NOW()
	          WHERE id = $6
	          RETURNING stock_qty, updated_at`
	err := executor.QueryRow(query,
		product.Name, product.Category, product.Price, product.LowStockThreshold, product.IsActive, product.ID,
	).Scan(&product.StockQty, &product.UpdatedAt)
	return wrapDBError(err, "updating product")
}

func (r *productRepository) DeleteProduct(executor SQLExecutor, id int64) error {
	res, err := executor.Exec(`DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return wrapDBError(err, "deleting product")
	}
	return expectOneRow(res, "deleting product")
}

func (r *productRepository) AddStock(executor SQLExecutor, id int64, delta int) (int, error) {
	var qty int
	err := executor.QueryRow(
		`UPDATE products SET stock_qty = stock_qty + $1, updated_at = NOW()
		 WHERE id = $2 AND stock_qty + $1 >= 0
		 RETURNING stock_qty`, delta, id,
	).Scan(&qty)
	if err != nil {
		return 0, wrapDBError(err, "updating stock")
	}
	return qty, nil
}

func (r *productRepository) CreateStockAdjustment(executor SQLExecutor, adj *models.StockAdjustment) error {
	query := `INSERT INTO stock_adjustments
	            (product_id, type, quantity_change, previous_qty, new_qty, reason, user_id, order_id)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	          RETURNING id, created_at`
	err := executor.QueryRow(query,
		adj.ProductID, adj.Type, adj.QuantityChange, adj.PreviousQty, adj.NewQty, adj.Reason, adj.UserID, adj.OrderID,
	).Scan(&adj.ID, &adj.CreatedAt)
	return wrapDBError(err, "creating stock adjustment")
}

func (r *productRepository) GetStockAdjustments(filters models.StockAdjustmentFilters) ([]models.StockAdjustment, int, error) {
	var qb strings.Builder
	qb.WriteString(`SELECT
	    sa.id, sa.product_id, sa.type, sa.quantity_change, sa.previous_qty, sa.new_qty,
	    sa.reason, sa.user_id, sa.order_id, sa.created_at,
	    p.name AS product_name, u.full_name AS user_name,
	    COUNT(*) OVER() AS total_count
	  FROM stock_adjustments sa
	  JOIN products p ON p.id = sa.product_id
	  LEFT JOIN users u ON u.id = sa.user_id`)

	var conditions []string
	var args []interface{}
	argCount := 1

	if filters.ProductID != nil {
		conditions = append(conditions, fmt.Sprintf("sa.product_id = $%d", argCount))
		args = append(args, *filters.ProductID)
		argCount++
	}
	if filters.Type != nil && *filters.Type != "" {
		conditions = append(conditions, fmt.Sprintf("sa.type = $%d", argCount))
		args = append(args, strings.ToUpper(*filters.Type))
		argCount++
	}
	if len(conditions) > 0 {
		qb.WriteString(" WHERE ")
		qb.WriteString(strings.Join(conditions, " AND "))
	}

	limit, offset := normalizePage(filters.Page, filters.PageSize)
	qb.WriteString(fmt.Sprintf(" ORDER BY sa.created_at DESC, sa.id DESC LIMIT $%d OFFSET $%d", argCount, argCount+1))
	args = append(args, limit, offset)

	rows, err := r.db.Query(qb.String(), args...)
	if err != nil {
		return nil, 0, wrapDBError(err, "listing stock adjustments")
	}
	defer rows.Close()

	adjustments := []models.StockAdjustment{}
	total := 0
	for rows.Next() {
		var a models.StockAdjustment
		var productName string
		var userName sql.NullString
		if err := rows.Scan(&a.ID, &a.ProductID, &a.Type, &a.QuantityChange, &a.PreviousQty, &a.NewQty,
			&a.Reason, &a.UserID, &a.OrderID, &a.CreatedAt, &productName, &userName, &total); err != nil {
			return nil, 0, wrapDBError(err, "scanning stock adjustment")
		}
		a.ProductName = &productName
		if userName.Valid {
			name := userName.String
			a.UserName = &name
		}
		adjustments = append(adjustments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, wrapDBError(err, "iterating stock adjustments")
	}
	return adjustments, total, nil
}
