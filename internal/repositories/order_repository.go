package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"billiard_pos_backend/internal/models"
)

// OrderRepository defines the interface for order-related database operations.
type OrderRepository interface {
	CreateOrder(executor SQLExecutor, order *models.Order) error
	CreateOrderItem(executor SQLExecutor, item *models.OrderItem) error
	GetOrderByID(executor SQLExecutor, orderID int64) (*models.Order, error)
	GetOrderForUpdate(executor SQLExecutor, orderID int64) (*models.Order, error)
	GetOrderItemsByOrderID(executor SQLExecutor, orderID int64) ([]models.OrderItem, error)
	GetOrders(filters models.OrderFilters, loc *time.Location) ([]models.Order, int, error)
	MarkOrderPaid(executor SQLExecutor, orderID int64, method models.PaymentMethod, paidAt time.Time) error
	// UpdateOrderStatus changes status only when the order currently has status from.
	UpdateOrderStatus(executor SQLExecutor, orderID int64, from, to models.OrderStatus) error
	// SumPaidCashSince totals PAID CASH orders created at or after since.
	SumPaidCashSince(executor SQLExecutor, since time.Time) (int64, error)
}

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new instance of OrderRepository.
func NewOrderRepository(db *sql.DB) OrderRepository {
	return &orderRepository{db: db}
}

const orderColumns = `id, session_id, member_id, customer_name, promo_id, subtotal, discount, total,
	status, payment_method, paid_at, created_by, created_at, updated_at`

func scanOrder(row scanner, extra ...interface{}) (*models.Order, error) {
	var o models.Order
	dest := []interface{}{
		&o.ID, &o.SessionID, &o.MemberID, &o.CustomerName, &o.PromoID, &o.Subtotal, &o.Discount, &o.Total,
		&o.Status, &o.PaymentMethod, &o.PaidAt, &o.CreatedBy, &o.CreatedAt, &o.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepository) CreateOrder(executor SQLExecutor, order *models.Order) error {
	query := `INSERT INTO orders
	            (session_id, member_id, customer_name, promo_id, subtotal, discount, total, status, created_by)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	          RETURNING id, created_at, updated_at`
	err := executor.QueryRow(query,
		order.SessionID, order.MemberID, order.CustomerName, order.PromoID,
		order.Subtotal, order.Discount, order.Total, order.Status, order.CreatedBy,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	return wrapDBError(err, "creating order")
}

func (r *orderRepository) CreateOrderItem(executor SQLExecutor, item *models.OrderItem) error {
	query := `INSERT INTO order_items (order_id, product_id, product_name, unit_price, quantity, line_total, notes)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING id`
	err := executor.QueryRow(query,
		item.OrderID, item.ProductID, item.ProductName, item.UnitPrice, item.Quantity, item.LineTotal, item.Notes,
	).Scan(&item.ID)
	return wrapDBError(err, "creating order item")
}

func (r *orderRepository) GetOrderByID(executor SQLExecutor, orderID int64) (*models.Order, error) {
	if executor == nil {
		executor = r.db
	}
	o, err := scanOrder(executor.QueryRow(`SELECT `+orderColumns+` FROM orders WHERE id = $1`, orderID))
	if err != nil {
		return nil, wrapDBError(err, fmt.Sprintf("getting order %d", orderID))
	}
	return o, nil
}

func (r *orderRepository) GetOrderForUpdate(executor SQLExecutor, orderID int64) (*models.Order, error) {
	o, err := scanOrder(executor.QueryRow(`SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, orderID))
	if err != nil {
		return nil, wrapDBError(err, fmt.Sprintf("locking order %d", orderID))
	}
	return o, nil
}

func (r *orderRepository) GetOrderItemsByOrderID(executor SQLExecutor, orderID int64) ([]models.OrderItem, error) {
	if executor == nil {
		executor = r.db
	}
	rows, err := executor.Query(
		`SELECT id, order_id, product_id, product_name, unit_price, quantity, line_total, notes
		 FROM order_items WHERE order_id = $1 ORDER BY id`, orderID)
	if err != nil {
		return nil, wrapDBError(err, "getting order items")
	}
	defer rows.Close()

	items := []models.OrderItem{}
	for rows.Next() {
		var it models.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.UnitPrice,
			&it.Quantity, &it.LineTotal, &it.Notes); err != nil {
			return nil, wrapDBError(err, "scanning order item")
		}
		items = append(items, it)
	}
	return items, wrapDBError(rows.Err(), "iterating order items")
}

func (r *orderRepository) GetOrders(filters models.OrderFilters, loc *time.Location) ([]models.Order, int, error) {
	var conditions []string
	var args []interface{}
	argCount := 1

	if filters.SessionID != nil {
		conditions = append(conditions, fmt.Sprintf("session_id = $%d", argCount))
		args = append(args, *filters.SessionID)
		argCount++
	}
	if filters.MemberID != nil {
		conditions = append(conditions, fmt.Sprintf("member_id = $%d", argCount))
		args = append(args, *filters.MemberID)
		argCount++
	}
	if filters.Status != nil && *filters.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argCount))
		args = append(args, strings.ToUpper(*filters.Status))
		argCount++
	}
	if filters.Date != nil && *filters.Date != "" {
		day, err := time.ParseInLocation("2006-01-02", *filters.Date, loc)
		if err != nil {
			return nil, 0, fmt.Errorf("invalid date filter: %w", err)
		}
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d AND created_at < $%d", argCount, argCount+1))
		args = append(args, day, day.AddDate(0, 0, 1))
		argCount += 2
	}

	var qb strings.Builder
	qb.WriteString(`SELECT ` + orderColumns + `, COUNT(*) OVER() AS total_count FROM orders`)
	if len(conditions) > 0 {
		qb.WriteString(" WHERE ")
		qb.WriteString(strings.Join(conditions, " AND "))
	}
	limit, offset := normalizePage(filters.Page, filters.PageSize)
	qb.WriteString(fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argCount, argCount+1))
	args = append(args, limit, offset)

	rows, err := r.db.Query(qb.String(), args...)
	if err != nil {
		return nil, 0, wrapDBError(err, "listing orders")
	}
	defer rows.Close()

	orders := []models.Order{}
	total := 0
	for rows.Next() {
		o, err := scanOrder(rows, &total)
		if err != nil {
			return nil, 0, wrapDBError(err, "scanning order")
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, wrapDBError(err, "iterating orders")
	}
	return orders, total, nil
}

func (r *orderRepository) MarkOrderPaid(executor SQLExecutor, orderID int64, method models.PaymentMethod, paidAt time.Time) error {
	res, err := executor.Exec(
		`UPDATE orders SET status = $1, payment_method = $2, paid_at = $3, updated_at = NOW()
		 WHERE id = $4 AND status = $5`,
		models.OrderStatusPaid, method, paidAt, orderID, models.OrderStatusPending,
	)
	if err != nil {
		return wrapDBError(err, "marking order paid")
	}
	return expectOneRow(res, "marking order paid")
}

func (r *orderRepository) UpdateOrderStatus(executor SQLExecutor, orderID int64, from, to models.OrderStatus) error {
	res, err := executor.Exec(
		`UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`,
		to, orderID, from,
	)
	if err != nil {
		return wrapDBError(err, "updating order status")
	}
	return expectOneRow(res, "updating order status")
}

func (r *orderRepository) SumPaidCashSince(executor SQLExecutor, since time.Time) (int64, error) {
	if executor == nil {
		executor = r.db
	}
	var total int64
	err := executor.QueryRow(
		`SELECT COALESCE(SUM(total), 0) FROM orders
		 WHERE status = $1 AND payment_method = $2 AND created_at >= $3`,
		models.OrderStatusPaid, models.PaymentCash, since,
	).Scan(&total)
	if err != nil {
		return 0, wrapDBError(err, "summing cash orders")
	}
	return total, nil
}
