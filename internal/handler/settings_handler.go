package handler

import (
	"errors"
	"net/http"

	"github.com/jfranmatheu/EverydayFODMAP-sub000/internal/service"
	"github.com/gin-gonic/gin"
)

type settingsPayload struct {
	DisplayName   string `json:"display_name"`
	Language      string `json:"language"`
	WaterTargetML int    `json:"water_target_ml"`
	DietPhase     string `json:"diet_phase"`
}

// GetSettings 返回应用设置
func (a *API) GetSettings(c *gin.Context) {
	settings, err := a.settings.GetSettings()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "读取应用设置失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"settings": settingsToPayload(settings)})
}

// UpdateSettings 保存应用设置
func (a *API) UpdateSettings(c *gin.Context) {
	var payload settingsPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	updated, err := a.settings.UpdateSettings(service.AppSettingsInput{
		DisplayName:   payload.DisplayName,
		Language:      payload.Language,
		WaterTargetML: payload.WaterTargetML,
		DietPhase:     payload.DietPhase,
	})
	if err != nil {
		if errors.Is(err, service.ErrSettingsInvalid) {
			respondError(c, http.StatusBadRequest, "设置取值不合法")
			return
		}
		respondError(c, http.StatusInternalServerError, "保存应用设置失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "设置保存成功", "settings": settingsToPayload(updated)})
}

func settingsToPayload(settings service.AppSettings) gin.H {
	return gin.H{
		"display_name":    settings.DisplayName,
		"language":        settings.Language,
		"water_target_ml": settings.WaterTargetML,
		"diet_phase":      settings.DietPhase,
	}
}
