package models

// DailySummary is the manager dashboard headline for one business day.
type DailySummary struct {
	Date                  string  `json:"date"`
	Revenue               int64   `json:"revenue"`
	TableRevenue          int64   `json:"table_revenue"`
	ProductRevenue        int64   `json:"product_revenue"`
	DiscountTotal         int64   `json:"discount_total"`
	PaidOrders            int     `json:"paid_orders"`
	ClosedSessions        int     `json:"closed_sessions"`
	TableMinutes          int64   `json:"table_minutes"`
	AverageSessionMinutes float64 `json:"average_session_minutes"`
	ActiveTables          int     `json:"active_tables"`
	NewMembers            int     `json:"new_members"`
}

// HourlyRevenue is one bucket of the bucket-by-hour report.
type HourlyRevenue struct {
	Hour    int   `json:"hour"`
	Revenue int64 `json:"revenue"`
	Orders  int   `json:"orders"`
}

// ProductSales aggregates sold quantity per product.
type ProductSales struct {
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	Revenue     int64  `json:"revenue"`
}

// TableUtilization aggregates closed sessions per table.
type TableUtilization struct {
	TableID      int64   `json:"table_id"`
	TableName    string  `json:"table_name"`
	Sessions     int     `json:"sessions"`
	TotalMinutes int64   `json:"total_minutes"`
	Revenue      int64   `json:"revenue"`
	AvgMinutes   float64 `json:"avg_minutes"`
}

// ShiftVarianceReport lists closed shifts with their variance totals.
type ShiftVarianceReport struct {
	Shifts        []ShiftReport `json:"shifts"`
	TotalVariance int64         `json:"total_variance"`
	ShortCount    int           `json:"short_count"`
	OverCount     int           `json:"over_count"`
}

// ReportRequestParams holds common parameters for requesting reports.
type ReportRequestParams struct {
	Date  string `form:"date"`  // YYYY-MM-DD
	From  string `form:"from"`  // YYYY-MM-DD
	To    string `form:"to"`    // YYYY-MM-DD
	Limit int    `form:"limit"`
}
