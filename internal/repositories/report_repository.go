package repositories

import (
	"database/sql"
	"time"

	"billiard_pos_backend/internal/models"
)

// ReportRepository runs the aggregate queries behind the manager reports.
// Time ranges are half-open: [from, to).
type ReportRepository interface {
	GetRevenueTotals(from, to time.Time) (*models.DailySummary, error)
	GetSessionTotals(from, to time.Time) (closed int, minutes int64, err error)
	CountActiveTables() (int, error)
	CountNewMembers(from, to time.Time) (int, error)
	GetHourlyRevenue(from, to time.Time, loc *time.Location) ([]models.HourlyRevenue, error)
	GetTopProducts(from, to time.Time, limit int) ([]models.ProductSales, error)
	GetTableUtilization(from, to time.Time) ([]models.TableUtilization, error)
}

type reportRepository struct {
	db *sql.DB
}

// NewReportRepository creates a new instance of ReportRepository.
func NewReportRepository(db *sql.DB) ReportRepository {
	return &reportRepository{db: db}
}

// GetRevenueTotals fills the revenue fields of a DailySummary from PAID orders.
// Table revenue is the part of order totals coming from table-charge lines (no product).
func (r *reportRepository) GetRevenueTotals(from, to time.Time) (*models.DailySummary, error) {
	var s models.DailySummary
	err := r.db.QueryRow(
		`SELECT COALESCE(SUM(total), 0), COALESCE(SUM(discount), 0), COUNT(*)
		 FROM orders WHERE status = 'PAID' AND paid_at >= $1 AND paid_at < $2`, from, to,
	).Scan(&s.Revenue, &s.DiscountTotal, &s.PaidOrders)
	if err != nil {
		return nil, wrapDBError(err, "summing revenue")
	}

	err = r.db.QueryRow(
		`SELECT COALESCE(SUM(oi.line_total) FILTER (WHERE oi.product_id IS NULL), 0),
		        COALESCE(SUM(oi.line_total) FILTER (WHERE oi.product_id IS NOT NULL), 0)
		 FROM order_items oi JOIN orders o ON o.id = oi.order_id
		 WHERE o.status = 'PAID' AND o.paid_at >= $1 AND o.paid_at < $2`, from, to,
	).Scan(&s.TableRevenue, &s.ProductRevenue)
	if err != nil {
		return nil, wrapDBError(err, "splitting revenue")
	}
	return &s, nil
}

func (r *reportRepository) GetSessionTotals(from, to time.Time) (int, int64, error) {
	var closed int
	var minutes int64
	err := r.db.QueryRow(
		`SELECT COUNT(*), COALESCE(SUM(duration_minutes), 0)
		 FROM table_sessions WHERE status = 'CLOSED' AND end_time >= $1 AND end_time < $2`, from, to,
	).Scan(&closed, &minutes)
	if err != nil {
		return 0, 0, wrapDBError(err, "summing sessions")
	}
	return closed, minutes, nil
}

func (r *reportRepository) CountActiveTables() (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM pool_tables WHERE status IN ('ACTIVE', 'BOOKED')`).Scan(&n)
	if err != nil {
		return 0, wrapDBError(err, "counting active tables")
	}
	return n, nil
}

func (r *reportRepository) CountNewMembers(from, to time.Time) (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM members WHERE created_at >= $1 AND created_at < $2`, from, to).Scan(&n)
	if err != nil {
		return 0, wrapDBError(err, "counting new members")
	}
	return n, nil
}

// GetHourlyRevenue returns only the hours that had sales, in the business timezone.
func (r *reportRepository) GetHourlyRevenue(from, to time.Time, loc *time.Location) ([]models.HourlyRevenue, error) {
	rows, err := r.db.Query(
		`SELECT EXTRACT(HOUR FROM paid_at AT TIME ZONE $3)::int AS hour, COALESCE(SUM(total), 0), COUNT(*)
		 FROM orders WHERE status = 'PAID' AND paid_at >= $1 AND paid_at < $2
		 GROUP BY hour ORDER BY hour`, from, to, loc.String(),
	)
	if err != nil {
		return nil, wrapDBError(err, "bucketing revenue by hour")
	}
	defer rows.Close()

	buckets := []models.HourlyRevenue{}
	for rows.Next() {
		var b models.HourlyRevenue
		if err := rows.Scan(&b.Hour, &b.Revenue, &b.Orders); err != nil {
			return nil, wrapDBError(err, "scanning hourly bucket")
		}
		buckets = append(buckets, b)
	}
	return buckets, wrapDBError(rows.Err(), "iterating hourly buckets")
}

func (r *reportRepository) GetTopProducts(from, to time.Time, limit int) ([]models.ProductSales, error) {
	rows, err := r.db.Query(
		`SELECT oi.product_id, MAX(oi.product_name), SUM(oi.quantity), SUM(oi.line_total)
		 FROM order_items oi JOIN orders o ON o.id = oi.order_id
		 WHERE o.status = 'PAID' AND o.paid_at >= $1 AND o.paid_at < $2 AND oi.product_id IS NOT NULL
		 GROUP BY oi.product_id
		 ORDER BY SUM(oi.quantity) DESC, SUM(oi.line_total) DESC
		 LIMIT $3`, from, to, limit,
	)
	if err != nil {
		return nil, wrapDBError(err, "ranking products")
	}
	defer rows.Close()

	out := []models.ProductSales{}
	for rows.Next() {
		var p models.ProductSales
		if err := rows.Scan(&p.ProductID, &p.ProductName, &p.Quantity, &p.Revenue); err != nil {
			return nil, wrapDBError(err, "scanning product sales")
		}
		out = append(out, p)
	}
	return out, wrapDBError(rows.Err(), "iterating product sales")
}

func (r *reportRepository) GetTableUtilization(from, to time.Time) ([]models.TableUtilization, error) {
	rows, err := r.db.Query(
		`SELECT t.id, t.name, COUNT(s.id), COALESCE(SUM(s.duration_minutes), 0), COALESCE(SUM(s.total_cost), 0)
		 FROM pool_tables t
		 LEFT JOIN table_sessions s
		   ON s.table_id = t.id AND s.status = 'CLOSED' AND s.end_time >= $1 AND s.end_time < $2
		 GROUP BY t.id, t.name
		 ORDER BY t.name`, from, to,
	)
	if err != nil {
		return nil, wrapDBError(err, "aggregating table utilization")
	}
	defer rows.Close()

	out := []models.TableUtilization{}
	for rows.Next() {
		var u models.TableUtilization
		if err := rows.Scan(&u.TableID, &u.TableName, &u.Sessions, &u.TotalMinutes, &u.Revenue); err != nil {
			return nil, wrapDBError(err, "scanning table utilization")
		}
		if u.Sessions > 0 {
			u.AvgMinutes = float64(u.TotalMinutes) / float64(u.Sessions)
		}
		out = append(out, u)
	}
	return out, wrapDBError(rows.Err(), "iterating table utilization")
}
