package handlers

import (
	"billiard_pos_backend/internal/models"
	"billiard_pos_backend/internal/services"
	"billiard_pos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// TableHandler serves table admin, the session lifecycle and session history.
type TableHandler struct {
	tableService services.TableService
}

// NewTableHandler creates a new TableHandler.
func NewTableHandler(ts services.TableService) *TableHandler {
	return &TableHandler{tableService: ts}
}

func (h *TableHandler) ListTables(c *gin.Context) {
	var status *string
	if s := c.Query("status"); s != "" {
		status = &s
	}
	tables, err := h.tableService.ListTables(status)
	if err != nil {
		respondServiceError(c, err, "ListTables")
		return
	}
	utils.RespondOK(c, tables)
}

func (h *TableHandler) GetTable(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	table, err := h.tableService.GetTable(id)
	if err != nil {
		respondServiceError(c, err, "GetTable")
		return
	}
	utils.RespondOK(c, table)
}

func (h *TableHandler) CreateTable(c *gin.Context) {
	var req services.CreateTableRequest
	if !bindJSON(c, &req, "CreateTable") {
		return
	}
	table, err := h.tableService.CreateTable(req)
	if err != nil {
		respondServiceError(c, err, "CreateTable")
		return
	}
	utils.RespondCreated(c, table)
}

func (h *TableHandler) UpdateTable(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req services.UpdateTableRequest
	if !bindJSON(c, &req, "UpdateTable") {
		return
	}
	table, err := h.tableService.UpdateTable(id, req)
	if err != nil {
		respondServiceError(c, err, "UpdateTable")
		return
	}
	utils.RespondOK(c, table)
}

func (h *TableHandler) DeleteTable(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.tableService.DeleteTable(id); err != nil {
		respondServiceError(c, err, "DeleteTable")
		return
	}
	utils.RespondOK(c, gin.H{"message": "Table deleted successfully"})
}

// StartTable accepts an empty body for open billing.
func (h *TableHandler) StartTable(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req services.StartTableRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req, "StartTable") {
		return
	}
	userID, _ := currentUser(c)
	session, err := h.tableService.StartTable(id, req, userID)
	if err != nil {
		respondServiceError(c, err, "StartTable")
		return
	}
	utils.RespondCreated(c, session)
}

func (h *TableHandler) TogglePause(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	session, err := h.tableService.TogglePause(id)
	if err != nil {
		respondServiceError(c, err, "TogglePause")
		return
	}
	utils.RespondOK(c, session)
}

func (h *TableHandler) StopTable(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID, _ := currentUser(c)
	result, err := h.tableService.StopTable(id, userID)
	if err != nil {
		respondServiceError(c, err, "StopTable")
		return
	}
	utils.RespondOK(c, result)
}

func (h *TableHandler) TransferTable(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req services.TransferTableRequest
	if !bindJSON(c, &req, "TransferTable") {
		return
	}
	session, err := h.tableService.TransferTable(id, req.ToTableID)
	if err != nil {
		respondServiceError(c, err, "TransferTable")
		return
	}
	utils.RespondOK(c, session)
}

func (h *TableHandler) MarkReady(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	table, err := h.tableService.MarkTableReady(id)
	if err != nil {
		respondServiceError(c, err, "MarkReady")
		return
	}
	utils.RespondOK(c, table)
}

func (h *TableHandler) GetLiveBill(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	bill, err := h.tableService.GetLiveBill(id)
	if err != nil {
		respondServiceError(c, err, "GetLiveBill")
		return
	}
	utils.RespondOK(c, bill)
}

func (h *TableHandler) ListSessions(c *gin.Context) {
	var filters models.SessionFilters
	if !bindQuery(c, &filters) {
		return
	}
	filters.Page, filters.PageSize = pagination(c)
	sessions, total, err := h.tableService.ListSessions(filters)
	if err != nil {
		respondServiceError(c, err, "ListSessions")
		return
	}
	respondPage(c, sessions, total, filters.Page, filters.PageSize)
}
