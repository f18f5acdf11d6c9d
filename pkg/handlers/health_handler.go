package handlers

import (
	"net/http"

	"restaurant-demand-api/pkg/services"

	"github.com/gin-gonic/gin"
)

// HealthHandler は外部のヘルスチェッカー（例: ロードバランサー）からのリクエストに応答します。
type HealthHandler struct {
	artifacts *services.Artifacts
}

// NewHealthHandler は新しいHealthHandlerを生成します。
func NewHealthHandler(artifacts *services.Artifacts) *HealthHandler {
	return &HealthHandler{artifacts: artifacts}
}

// HealthCheck 成果物が読み込まれていれば200を返します。
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	if h.artifacts == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "message": "model artifacts are not loaded"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "model_id": h.artifacts.ModelID()})
}
