package handlers

import (
	"billiard_pos_backend/internal/models"
	"billiard_pos_backend/internal/services"
	"billiard_pos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// ShiftHandler serves cash drawer shifts. Open and current are scoped to the caller.
type ShiftHandler struct {
	shiftService services.ShiftService
}

// NewShiftHandler creates a new ShiftHandler.
func NewShiftHandler(ss services.ShiftService) *ShiftHandler {
	return &ShiftHandler{shiftService: ss}
}

func (h *ShiftHandler) OpenShift(c *gin.Context) {
	var req services.OpenShiftRequest
	if !bindJSON(c, &req, "OpenShift") {
		return
	}
	userID, _ := currentUser(c)
	shift, err := h.shiftService.OpenShift(userID, req)
	if err != nil {
		respondServiceError(c, err, "OpenShift")
		return
	}
	utils.RespondCreated(c, shift)
}

func (h *ShiftHandler) CloseShift(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req services.CloseShiftRequest
	if !bindJSON(c, &req, "CloseShift") {
		return
	}
	userID, role := currentUser(c)
	shift, err := h.shiftService.CloseShift(id, req, userID, role)
	if err != nil {
		respondServiceError(c, err, "CloseShift")
		return
	}
	utils.RespondOK(c, shift)
}

func (h *ShiftHandler) GetCurrentShift(c *gin.Context) {
	userID, _ := currentUser(c)
	preview, err := h.shiftService.GetCurrentShift(userID)
	if err != nil {
		respondServiceError(c, err, "GetCurrentShift")
		return
	}
	utils.RespondOK(c, preview)
}

func (h *ShiftHandler) ListShifts(c *gin.Context) {
	var filters models.ShiftFilters
	if !bindQuery(c, &filters) {
		return
	}
	filters.Page, filters.PageSize = pagination(c)
	shifts, total, err := h.shiftService.ListShifts(filters)
	if err != nil {
		respondServiceError(c, err, "ListShifts")
		return
	}
	respondPage(c, shifts, total, filters.Page, filters.PageSize)
}
