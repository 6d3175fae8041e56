package handlers

import (
	"strconv"

	"billiard_pos_backend/internal/services"
	"billiard_pos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// PromoHandler holds the promo service.
type PromoHandler struct {
	promoService services.PromoService
}

// NewPromoHandler creates a new PromoHandler.
func NewPromoHandler(ps services.PromoService) *PromoHandler {
	return &PromoHandler{promoService: ps}
}

func (h *PromoHandler) CreatePromo(c *gin.Context) {
	var req services.CreatePromoRequest
	if !bindJSON(c, &req, "CreatePromo") {
		return
	}
	promo, err := h.promoService.CreatePromo(req)
	if err != nil {
		respondServiceError(c, err, "CreatePromo")
		return
	}
	utils.RespondCreated(c, promo)
}

func (h *PromoHandler) GetPromos(c *gin.Context) {
	activeOnly, _ := strconv.ParseBool(c.DefaultQuery("active_only", "false"))
	promos, err := h.promoService.GetPromos(activeOnly)
	if err != nil {
		respondServiceError(c, err, "GetPromos")
		return
	}
	utils.RespondOK(c, promos)
}

func (h *PromoHandler) UpdatePromo(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req services.UpdatePromoRequest
	if !bindJSON(c, &req, "UpdatePromo") {
		return
	}
	promo, err := h.promoService.UpdatePromo(id, req)
	if err != nil {
		respondServiceError(c, err, "UpdatePromo")
		return
	}
	utils.RespondOK(c, promo)
}

func (h *PromoHandler) DeletePromo(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.promoService.DeletePromo(id); err != nil {
		respondServiceError(c, err, "DeletePromo")
		return
	}
	utils.RespondOK(c, gin.H{"message": "Promo deleted successfully"})
}

func (h *PromoHandler) ValidatePromo(c *gin.Context) {
	var req services.ValidatePromoRequest
	if !bindJSON(c, &req, "ValidatePromo") {
		return
	}
	quote, err := h.promoService.ValidatePromo(req.Code, req.Subtotal)
	if err != nil {
		respondServiceError(c, err, "ValidatePromo")
		return
	}
	utils.RespondOK(c, quote)
}
