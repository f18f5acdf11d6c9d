package handlers

import (
	"net/http"

	"restaurant-demand-api/pkg/services"

	"github.com/gin-gonic/gin"
)

// MonitoringHandler はモニタリング関連の操作のハンドラです。
type MonitoringHandler struct {
	Service *services.MonitoringService
}

// NewMonitoringHandler は新しいMonitoringHandlerを生成します。
func NewMonitoringHandler(service *services.MonitoringService) *MonitoringHandler {
	return &MonitoringHandler{
		Service: service,
	}
}

// dashboardPeriods 期間指定とその時間数
var dashboardPeriods = map[string]int{
	"1h":  1,
	"24h": 24,
	"7d":  24 * 7,
}

// GetLogs は集計されたログデータを返します。未知の期間指定は24時間として扱います。
func (h *MonitoringHandler) GetLogs(c *gin.Context) {
	hours, ok := dashboardPeriods[c.DefaultQuery("period", "24h")]
	if !ok {
		hours = 24
	}
	c.JSON(http.StatusOK, h.Service.GetDashboardData(hours))
}

// Metrics はPrometheusのメトリクスを返します。
func (h *MonitoringHandler) Metrics(c *gin.Context) {
	h.Service.MetricsHandler().ServeHTTP(c.Writer, c.Request)
}
