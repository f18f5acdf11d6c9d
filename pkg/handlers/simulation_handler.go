package handlers

import (
	"net/http"

	"restaurant-demand-api/pkg/models"

	"github.com/gin-gonic/gin"
)

// SimulateDaily 入力の検証のみ行う。シミュレーション本体は未実装のため501を返す
func SimulateDaily(c *gin.Context) {
	var request models.SimulateDailyRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		abortWithError(c, http.StatusBadRequest, msgInvalidInput)
		return
	}

	if request.DayOfWeek == nil || !simulationWeathers[request.Weather] || request.DailyTarget <= 0 {
		abortWithError(c, http.StatusBadRequest, msgInvalidInput)
		return
	}

	abortWithError(c, http.StatusNotImplemented, "simulate-daily is not implemented")
}
