package handlers

import (
	"billiard_pos_backend/internal/services"
	"billiard_pos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// SettingHandler serves runtime business settings.
type SettingHandler struct {
	settingService services.SettingService
}

// NewSettingHandler creates a new SettingHandler.
func NewSettingHandler(ss services.SettingService) *SettingHandler {
	return &SettingHandler{settingService: ss}
}

func (h *SettingHandler) GetSettings(c *gin.Context) {
	settings, err := h.settingService.GetSettings()
	if err != nil {
		respondServiceError(c, err, "GetSettings")
		return
	}
	utils.RespondOK(c, settings)
}

func (h *SettingHandler) UpdateSetting(c *gin.Context) {
	var req services.UpdateSettingRequest
	if !bindJSON(c, &req, "UpdateSetting") {
		return
	}
	setting, err := h.settingService.UpdateSetting(c.Param("key"), req)
	if err != nil {
		respondServiceError(c, err, "UpdateSetting")
		return
	}
	utils.RespondOK(c, setting)
}
