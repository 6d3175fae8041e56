package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"billiard_pos_backend/internal/models"
	"billiard_pos_backend/internal/repositories"
)

// --- Product DTOs ---
type CreateProductRequest struct {
	Name              string                 `json:"name" binding:"required,max=128"`
	Category          models.ProductCategory `json:"category" binding:"required"`
	Price             int64                  `json:"price" binding:"min=0"`
	StockQty          int                    `json:"stock_qty" binding:"min=0"`
	LowStockThreshold int                    `json:"low_stock_threshold" binding:"min=0"`
	IsActive          *bool                  `json:"is_active"`
}

type UpdateProductRequest struct {
	Name              *string                 `json:"name" binding:"omitempty,max=128"`
	Category          *models.ProductCategory `json:"category"`
	Price             *int64                  `json:"price" binding:"omitempty,min=0"`
	LowStockThreshold *int                    `json:"low_stock_threshold" binding:"omitempty,min=0"`
	IsActive          *bool                   `json:"is_active"`
}

type StockAdjustmentRequest struct {
	ProductID      int64                      `json:"product_id" binding:"required,gt=0"`
	Type           models.StockAdjustmentType `json:"type" binding:"required"`
	QuantityChange int                        `json:"quantity_change" binding:"required"`
	Reason         *string                    `json:"reason"`
}

// --- ProductService Interface ---
type ProductService interface {
	CreateProduct(req CreateProductRequest, userID int64) (*models.Product, error)
	GetProductByID(productID int64) (*models.Product, error)
	GetProducts(category *string, activeOnly bool) ([]models.Product, error)
	GetLowStockProducts() ([]models.Product, error)
	UpdateProduct(productID int64, req UpdateProductRequest) (*models.Product, error)
	DeleteProduct(productID int64) error
	AdjustStock(req StockAdjustmentRequest, userID int64) (*models.StockAdjustment, error)
	GetStockAdjustments(filters models.StockAdjustmentFilters) ([]models.StockAdjustment, int, error)
}

type productService struct {
	productRepo repositories.ProductRepository
	stock       stockLedger
	db          *sql.DB
}

// NewProductService creates a new instance of ProductService.
func NewProductService(pr repositories.ProductRepository, db *sql.DB) ProductService {
	return &productService{productRepo: pr, stock: stockLedger{productRepo: pr}, db: db}
}

// CreateProduct records opening stock as a RESTOCK adjustment so the ledger sums to stock_qty.
func (s *productService) CreateProduct(req CreateProductRequest, userID int64) (*models.Product, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, NewValidationError("name", "is required")
	}
	category := models.ProductCategory(strings.ToUpper(string(req.Category)))
	if !category.IsValid() {
		return nil, NewValidationError("category", "must be FOOD, BEVERAGE, SNACK or OTHER")
	}
	product := &models.Product{
		Name:              name,
		Category:          category,
		Price:             req.Price,
		LowStockThreshold: req.LowStockThreshold,
		IsActive:          true,
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}

	err := withTx(s.db, func(tx *sql.Tx) error {
		if err := s.productRepo.CreateProduct(tx, product); err != nil {
			if errors.Is(err, repositories.ErrDuplicateKey) {
				return ErrProductNameExists
			}
			return fmt.Errorf("failed to create product: %w", err)
		}
		if req.StockQty > 0 {
			reason := "Opening stock"
			adj, err := s.stock.post(tx, stockEntry{
				ProductID: product.ID,
				Type:      models.StockRestock,
				Delta:     req.StockQty,
				Reason:    &reason,
				UserID:    int64Ptr(userID),
			})
			if err != nil {
				return err
			}
			product.StockQty = adj.NewQty
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

func (s *productService) GetProductByID(productID int64) (*models.Product, error) {
	product, err := s.productRepo.GetProductByID(nil, productID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product %d: %w", productID, err)
	}
	return product, nil
}

func (s *productService) GetProducts(category *string, activeOnly bool) ([]models.Product, error) {
	if category != nil && *category != "" && !models.ProductCategory(strings.ToUpper(*category)).IsValid() {
		return nil, NewValidationError("category", "unknown category")
	}
	products, err := s.productRepo.GetProducts(category, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

func (s *productService) GetLowStockProducts() ([]models.Product, error) {
	products, err := s.productRepo.GetLowStockProducts()
	if err != nil {
		return nil, fmt.Errorf("failed to list low stock products: %w", err)
	}
	return products, nil
}

// UpdateProduct edits catalogue fields. Stock only moves through AdjustStock and orders.
func (s *productService) UpdateProduct(productID int64, req UpdateProductRequest) (*models.Product, error) {
	product, err := s.GetProductByID(productID)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, NewValidationError("name", "cannot be empty")
		}
		product.Name = name
	}
	if req.Category != nil {
		category := models.ProductCategory(strings.ToUpper(string(*req.Category)))
		if !category.IsValid() {
			return nil, NewValidationError("category", "must be FOOD, BEVERAGE, SNACK or OTHER")
		}
		product.Category = category
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.LowStockThreshold != nil {
		product.LowStockThreshold = *req.LowStockThreshold
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}
	if err := s.productRepo.UpdateProduct(s.db, product); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrProductNameExists
		}
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to update product %d: %w", productID, err)
	}
	return product, nil
}

func (s *productService) DeleteProduct(productID int64) error {
	if err := s.productRepo.DeleteProduct(s.db, productID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrProductNotFound
		}
		if errors.Is(err, repositories.ErrForeignKey) {
			return ErrProductInUse
		}
		return fmt.Errorf("failed to delete product %d: %w", productID, err)
	}
	return nil
}

// AdjustStock applies a manual RESTOCK, CORRECTION or WASTE. Quantities never go negative.
func (s *productService) AdjustStock(req StockAdjustmentRequest, userID int64) (*models.StockAdjustment, error) {
	adjType := models.StockAdjustmentType(strings.ToUpper(string(req.Type)))
	if !adjType.IsManual() {
		return nil, NewValidationError("type", "must be RESTOCK, CORRECTION or WASTE")
	}
	delta := req.QuantityChange
	switch {
	case delta == 0:
		return nil, NewValidationError("quantity_change", "cannot be zero")
	case adjType == models.StockRestock && delta < 0:
		return nil, NewValidationError("quantity_change", "restock must be positive")
	case adjType == models.StockWaste && delta > 0:
		delta = -delta
	}

	var adj *models.StockAdjustment
	err := withTx(s.db, func(tx *sql.Tx) error {
		if _, err := s.productRepo.GetProductForUpdate(tx, req.ProductID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrProductNotFound
			}
			return fmt.Errorf("failed to lock product %d: %w", req.ProductID, err)
		}
		var err error
		adj, err = s.stock.post(tx, stockEntry{
			ProductID: req.ProductID,
			Type:      adjType,
			Delta:     delta,
			Reason:    trimmedOrNil(req.Reason),
			UserID:    int64Ptr(userID),
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return adj, nil
}

func (s *productService) GetStockAdjustments(filters models.StockAdjustmentFilters) ([]models.StockAdjustment, int, error) {
	if filters.Type != nil && *filters.Type != "" {
		upper := strings.ToUpper(*filters.Type)
		filters.Type = &upper
	}
	list, total, err := s.productRepo.GetStockAdjustments(filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list stock adjustments: %w", err)
	}
	return list, total, nil
}
