package handlers

import (
	"net/http"

	"billiard_pos_backend/internal/services"
	"billiard_pos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// MemberHandler holds the member service.
type MemberHandler struct {
	memberService services.MemberService
}

// NewMemberHandler creates a new MemberHandler.
func NewMemberHandler(ms services.MemberService) *MemberHandler {
	return &MemberHandler{memberService: ms}
}

func (h *MemberHandler) CreateMember(c *gin.Context) {
	var req services.CreateMemberRequest
	if !bindJSON(c, &req, "CreateMember") {
		return
	}
	member, err := h.memberService.CreateMember(req)
	if err != nil {
		respondServiceError(c, err, "CreateMember")
		return
	}
	utils.RespondCreated(c, member)
}

// GetMembers handles fetching members with pagination and search.
func (h *MemberHandler) GetMembers(c *gin.Context) {
	page, pageSize := pagination(c)
	var search *string
	if term := c.Query("search"); term != "" {
		search = &term
	}
	members, total, err := h.memberService.GetMembers(page, pageSize, search)
	if err != nil {
		respondServiceError(c, err, "GetMembers")
		return
	}
	respondPage(c, members, total, page, pageSize)
}

func (h *MemberHandler) GetMemberByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	member, err := h.memberService.GetMemberByID(id)
	if err != nil {
		respondServiceError(c, err, "GetMemberByID")
		return
	}
	utils.RespondOK(c, member)
}

func (h *MemberHandler) UpdateMember(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req services.UpdateMemberRequest
	if !bindJSON(c, &req, "UpdateMember") {
		return
	}
	member, err := h.memberService.UpdateMember(id, req)
	if err != nil {
		respondServiceError(c, err, "UpdateMember")
		return
	}
	utils.RespondOK(c, member)
}

func (h *MemberHandler) DeleteMember(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.memberService.DeleteMember(id); err != nil {
		respondServiceError(c, err, "DeleteMember")
		return
	}
	utils.RespondOK(c, gin.H{"message": "Member deleted successfully"})
}

func (h *MemberHandler) TopUp(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req services.TopUpRequest
	if !bindJSON(c, &req, "TopUp") {
		return
	}
	userID, _ := currentUser(c)
	result, err := h.memberService.TopUp(id, req, userID)
	if err != nil {
		respondServiceError(c, err, "TopUp")
		return
	}
	utils.RespondOK(c, result)
}

func (h *MemberHandler) RedeemPoints(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req services.RedeemPointsRequest
	if !bindJSON(c, &req, "RedeemPoints") {
		return
	}
	userID, _ := currentUser(c)
	result, err := h.memberService.RedeemPoints(id, req, userID)
	if err != nil {
		respondServiceError(c, err, "RedeemPoints")
		return
	}
	utils.RespondOK(c, result)
}

func (h *MemberHandler) GetWalletTransactions(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	page, pageSize := pagination(c)
	txs, total, err := h.memberService.GetWalletTransactions(id, page, pageSize)
	if err != nil {
		respondServiceError(c, err, "GetWalletTransactions")
		return
	}
	respondPage(c, txs, total, page, pageSize)
}

func (h *MemberHandler) GetPointTransactions(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	page, pageSize := pagination(c)
	txs, total, err := h.memberService.GetPointTransactions(id, page, pageSize)
	if err != nil {
		respondServiceError(c, err, "GetPointTransactions")
		return
	}
	respondPage(c, txs, total, page, pageSize)
}

// GetMemberQR writes the member card QR as image/png.
func (h *MemberHandler) GetMemberQR(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	png, err := h.memberService.GetMemberQR(id)
	if err != nil {
		respondServiceError(c, err, "GetMemberQR")
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}
