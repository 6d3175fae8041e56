package handlers

import (
	"billiard_pos_backend/internal/models"
	"billiard_pos_backend/internal/services"
	"billiard_pos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// OrderHandler holds the order service.
type OrderHandler struct {
	orderService services.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(os services.OrderService) *OrderHandler {
	return &OrderHandler{orderService: os}
}

func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req services.CreateOrderRequest
	if !bindJSON(c, &req, "CreateOrder") {
		return
	}
	userID, _ := currentUser(c)
	order, err := h.orderService.CreateOrder(req, userID)
	if err != nil {
		respondServiceError(c, err, "CreateOrder")
		return
	}
	utils.RespondCreated(c, order)
}

func (h *OrderHandler) GetOrders(c *gin.Context) {
	var filters models.OrderFilters
	if !bindQuery(c, &filters) {
		return
	}
	filters.Page, filters.PageSize = pagination(c)
	orders, total, err := h.orderService.GetOrders(filters)
	if err != nil {
		respondServiceError(c, err, "GetOrders")
		return
	}
	respondPage(c, orders, total, filters.Page, filters.PageSize)
}

func (h *OrderHandler) GetOrderByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	order, err := h.orderService.GetOrderByID(id)
	if err != nil {
		respondServiceError(c, err, "GetOrderByID")
		return
	}
	utils.RespondOK(c, order)
}

func (h *OrderHandler) PayOrder(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req services.PayOrderRequest
	if !bindJSON(c, &req, "PayOrder") {
		return
	}
	userID, _ := currentUser(c)
	order, err := h.orderService.PayOrder(id, req, userID)
	if err != nil {
		respondServiceError(c, err, "PayOrder")
		return
	}
	utils.RespondOK(c, order)
}

func (h *OrderHandler) CancelOrder(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID, _ := currentUser(c)
	order, err := h.orderService.CancelOrder(id, userID)
	if err != nil {
		respondServiceError(c, err, "CancelOrder")
		return
	}
	utils.RespondOK(c, order)
}
