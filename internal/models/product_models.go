package models

import "time"

// ProductCategory groups menu items.
type ProductCategory string

const (
	ProductCategoryFood     ProductCategory = "FOOD"
	ProductCategoryBeverage ProductCategory = "BEVERAGE"
	ProductCategorySnack    ProductCategory = "SNACK"
	ProductCategoryOther    ProductCategory = "OTHER"
)

// IsValid reports whether c is a known category.
func (c ProductCategory) IsValid() bool {
	switch c {
	case ProductCategoryFood, ProductCategoryBeverage, ProductCategorySnack, ProductCategoryOther:
		return true
	}
	return false
}

// Product is a sellable food & beverage item. StockQty is kept in sync with stock_adjustments.
type Product struct {
	ID                int64           `json:"id" db:"id"`
	Name              string          `json:"name" db:"name"`
	Category          ProductCategory `json:"category" db:"category"`
	Price             int64           `json:"price" db:"price"`
	StockQty          int             `json:"stock_qty" db:"stock_qty"`
	LowStockThreshold int             `json:"low_stock_threshold" db:"low_stock_threshold"`
	IsActive          bool            `json:"is_active" db:"is_active"`
	CreatedAt         time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at" db:"updated_at"`
}

// StockAdjustmentType classifies stock ledger rows.
type StockAdjustmentType string

const (
	StockRestock    StockAdjustmentType = "RESTOCK"
	StockSale       StockAdjustmentType = "SALE"
	StockCorrection StockAdjustmentType = "CORRECTION"
	StockWaste      StockAdjustmentType = "WASTE"
	StockReturn     StockAdjustmentType = "RETURN"
)

// IsManual reports whether staff may record this type directly.
func (t StockAdjustmentType) IsManual() bool {
	switch t {
	case StockRestock, StockCorrection, StockWaste:
		return true
	}
	return false
}

// StockAdjustment is an append-only stock ledger row.
type StockAdjustment struct {
	ID             int64               `json:"id" db:"id"`
	ProductID      int64               `json:"product_id" db:"product_id"`
	Type           StockAdjustmentType `json:"type" db:"type"`
	QuantityChange int                 `json:"quantity_change" db:"quantity_change"`
	PreviousQty    int                 `json:"previous_qty" db:"previous_qty"`
	NewQty         int                 `json:"new_qty" db:"new_qty"`
	Reason         *string             `json:"reason,omitempty" db:"reason"`
	UserID         *int64              `json:"user_id,omitempty" db:"user_id"`
	OrderID        *int64              `json:"order_id,omitempty" db:"order_id"`
	CreatedAt      time.Time           `json:"created_at" db:"created_at"`

	ProductName *string `json:"product_name,omitempty"`
	UserName    *string `json:"user_name,omitempty"`
}

// StockAdjustmentFilters narrows the stock ledger listing.
type StockAdjustmentFilters struct {
	ProductID *int64  `form:"product_id"`
	Type      *string `form:"type"`
	Page      int     `form:"page"`
	PageSize  int     `form:"page_size"`
}

// DiscountType selects how a promo's value is applied.
type DiscountType string

const (
	DiscountPercent DiscountType = "PERCENT"
	DiscountFixed   DiscountType = "FIXED"
)

// Promo is a discount code.
type Promo struct {
	ID            int64        `json:"id" db:"id"`
	Code          string       `json:"code" db:"code"`
	Description   *string      `json:"description,omitempty" db:"description"`
	DiscountType  DiscountType `json:"discount_type" db:"discount_type"`
	DiscountValue int64        `json:"discount_value" db:"discount_value"`
	MinSpend      int64        `json:"min_spend" db:"min_spend"`
	MaxDiscount   *int64       `json:"max_discount,omitempty" db:"max_discount"`
	ValidFrom     *time.Time   `json:"valid_from,omitempty" db:"valid_from"`
	ValidUntil    *time.Time   `json:"valid_until,omitempty" db:"valid_until"`
	IsActive      bool         `json:"is_active" db:"is_active"`
	CreatedAt     time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at" db:"updated_at"`
}
