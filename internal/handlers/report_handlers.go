package handlers

import (
	"billiard_pos_backend/internal/models"
	"billiard_pos_backend/internal/services"
	"billiard_pos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// ReportHandler serves the manager analytics.
type ReportHandler struct {
	reportService services.ReportService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(rs services.ReportService) *ReportHandler {
	return &ReportHandler{reportService: rs}
}

// parseReportRequestParams reads date, from, to and limit.
func parseReportRequestParams(c *gin.Context) (models.ReportRequestParams, bool) {
	var params models.ReportRequestParams
	if !bindQuery(c, &params) {
		return params, false
	}
	return params, true
}

func (h *ReportHandler) GetSummary(c *gin.Context) {
	params, ok := parseReportRequestParams(c)
	if !ok {
		return
	}
	summary, err := h.reportService.GetDailySummary(params)
	if err != nil {
		respondServiceError(c, err, "GetSummary")
		return
	}
	utils.RespondOK(c, summary)
}

func (h *ReportHandler) GetHourly(c *gin.Context) {
	params, ok := parseReportRequestParams(c)
	if !ok {
		return
	}
	buckets, err := h.reportService.GetHourlyRevenue(params)
	if err != nil {
		respondServiceError(c, err, "GetHourly")
		return
	}
	utils.RespondOK(c, buckets)
}

func (h *ReportHandler) GetTopProducts(c *gin.Context) {
	params, ok := parseReportRequestParams(c)
	if !ok {
		return
	}
	products, err := h.reportService.GetTopProducts(params)
	if err != nil {
		respondServiceError(c, err, "GetTopProducts")
		return
	}
	utils.RespondOK(c, products)
}

func (h *ReportHandler) GetTables(c *gin.Context) {
	params, ok := parseReportRequestParams(c)
	if !ok {
		return
	}
	tables, err := h.reportService.GetTableUtilization(params)
	if err != nil {
		respondServiceError(c, err, "GetTables")
		return
	}
	utils.RespondOK(c, tables)
}

func (h *ReportHandler) GetShifts(c *gin.Context) {
	params, ok := parseReportRequestParams(c)
	if !ok {
		return
	}
	report, err := h.reportService.GetShiftVariance(params)
	if err != nil {
		respondServiceError(c, err, "GetShifts")
		return
	}
	utils.RespondOK(c, report)
}
