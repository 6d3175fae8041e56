package handlers

import (
	"strconv"

	"billiard_pos_backend/internal/models"
	"billiard_pos_backend/internal/services"
	"billiard_pos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// ProductHandler serves the F&B catalogue and the stock ledger.
type ProductHandler struct {
	productService services.ProductService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(ps services.ProductService) *ProductHandler {
	return &ProductHandler{productService: ps}
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req services.CreateProductRequest
	if !bindJSON(c, &req, "CreateProduct") {
		return
	}
	userID, _ := currentUser(c)
	product, err := h.productService.CreateProduct(req, userID)
	if err != nil {
		respondServiceError(c, err, "CreateProduct")
		return
	}
	utils.RespondCreated(c, product)
}

// GetProducts lists the catalogue; ?category= filters and ?active_only=false includes hidden items.
func (h *ProductHandler) GetProducts(c *gin.Context) {
	var category *string
	if cat := c.Query("category"); cat != "" {
		category = &cat
	}
	activeOnly, err := strconv.ParseBool(c.DefaultQuery("active_only", "true"))
	if err != nil {
		activeOnly = true
	}
	products, err := h.productService.GetProducts(category, activeOnly)
	if err != nil {
		respondServiceError(c, err, "GetProducts")
		return
	}
	utils.RespondOK(c, products)
}

func (h *ProductHandler) GetProductByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	product, err := h.productService.GetProductByID(id)
	if err != nil {
		respondServiceError(c, err, "GetProductByID")
		return
	}
	utils.RespondOK(c, product)
}

func (h *ProductHandler) GetLowStockProducts(c *gin.Context) {
	products, err := h.productService.GetLowStockProducts()
	if err != nil {
		respondServiceError(c, err, "GetLowStockProducts")
		return
	}
	utils.RespondOK(c, products)
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req services.UpdateProductRequest
	if !bindJSON(c, &req, "UpdateProduct") {
		return
	}
	product, err := h.productService.UpdateProduct(id, req)
	if err != nil {
		respondServiceError(c, err, "UpdateProduct")
		return
	}
	utils.RespondOK(c, product)
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.productService.DeleteProduct(id); err != nil {
		respondServiceError(c, err, "DeleteProduct")
		return
	}
	utils.RespondOK(c, gin.H{"message": "Product deleted successfully"})
}

func (h *ProductHandler) CreateStockAdjustment(c *gin.Context) {
	var req services.StockAdjustmentRequest
	if !bindJSON(c, &req, "CreateStockAdjustment") {
		return
	}
	userID, _ := currentUser(c)
	adj, err := h.productService.AdjustStock(req, userID)
	if err != nil {
		respondServiceError(c, err, "CreateStockAdjustment")
		return
	}
	utils.RespondCreated(c, adj)
}

func (h *ProductHandler) GetStockAdjustments(c *gin.Context) {
	var filters models.StockAdjustmentFilters
	if !bindQuery(c, &filters) {
		return
	}
	filters.Page, filters.PageSize = pagination(c)
	list, total, err := h.productService.GetStockAdjustments(filters)
	if err != nil {
		respondServiceError(c, err, "GetStockAdjustments")
		return
	}
	respondPage(c, list, total, filters.Page, filters.PageSize)
}
