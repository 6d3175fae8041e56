package handlers

import (
	"billiard_pos_backend/internal/models"
	"billiard_pos_backend/internal/services"
	"billiard_pos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// ReservationHandler holds the reservation service.
type ReservationHandler struct {
	reservationService services.ReservationService
}

// NewReservationHandler creates a new ReservationHandler.
func NewReservationHandler(rs services.ReservationService) *ReservationHandler {
	return &ReservationHandler{reservationService: rs}
}

func (h *ReservationHandler) CreateReservation(c *gin.Context) {
	var req services.CreateReservationRequest
	if !bindJSON(c, &req, "CreateReservation") {
		return
	}
	userID, _ := currentUser(c)
	res, err := h.reservationService.CreateReservation(req, userID)
	if err != nil {
		respondServiceError(c, err, "CreateReservation")
		return
	}
	utils.RespondCreated(c, res)
}

func (h *ReservationHandler) GetReservations(c *gin.Context) {
	var filters models.ReservationFilters
	if !bindQuery(c, &filters) {
		return
	}
	filters.Page, filters.PageSize = pagination(c)
	list, total, err := h.reservationService.GetReservations(filters)
	if err != nil {
		respondServiceError(c, err, "GetReservations")
		return
	}
	respondPage(c, list, total, filters.Page, filters.PageSize)
}

func (h *ReservationHandler) GetReservationByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	res, err := h.reservationService.GetReservationByID(id)
	if err != nil {
		respondServiceError(c, err, "GetReservationByID")
		return
	}
	utils.RespondOK(c, res)
}

func (h *ReservationHandler) UpdateReservation(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req services.UpdateReservationRequest
	if !bindJSON(c, &req, "UpdateReservation") {
		return
	}
	res, err := h.reservationService.UpdateReservation(id, req)
	if err != nil {
		respondServiceError(c, err, "UpdateReservation")
		return
	}
	utils.RespondOK(c, res)
}

func (h *ReservationHandler) UpdateReservationStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req services.UpdateReservationStatusRequest
	if !bindJSON(c, &req, "UpdateReservationStatus") {
		return
	}
	res, err := h.reservationService.UpdateReservationStatus(id, req.Status)
	if err != nil {
		respondServiceError(c, err, "UpdateReservationStatus")
		return
	}
	utils.RespondOK(c, res)
}

func (h *ReservationHandler) DeleteReservation(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.reservationService.DeleteReservation(id); err != nil {
		respondServiceError(c, err, "DeleteReservation")
		return
	}
	utils.RespondOK(c, gin.H{"message": "Reservation deleted successfully"})
}

func (h *ReservationHandler) CheckIn(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID, _ := currentUser(c)
	session, err := h.reservationService.CheckIn(id, userID)
	if err != nil {
		respondServiceError(c, err, "CheckIn")
		return
	}
	utils.RespondCreated(c, session)
}

// CheckReservations runs the no-show watchdog. The front desk polls it.
func (h *ReservationHandler) CheckReservations(c *gin.Context) {
	report, err := h.reservationService.CheckReservations()
	if err != nil {
		respondServiceError(c, err, "CheckReservations")
		return
	}
	utils.RespondOK(c, report)
}
