package handlers

import (
	"net/http"

	"restaurant-demand-api/pkg/models"

	"github.com/gin-gonic/gin"
)

const (
	msgMissingOrInvalidInput = "Missing or invalid input"
	msgInvalidInput          = "Invalid input"
)

// simulationWeathers simulate-dailyで受け付ける天気
var simulationWeathers = map[string]bool{
	"rain":  true,
	"cloud": true,
	"wind":  true,
	"sunny": true,
}

// abortWithError エラー内容をそのまま {"error": ...} で返す
func abortWithError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, models.ErrorResponse{Error: message})
}

// RecoveryHandler panicを500のJSONエラーに変換する
func RecoveryHandler(c *gin.Context, recovered any) {
	message := "internal server error"
	switch v := recovered.(type) {
	case error:
		message = v.Error()
	case string:
		message = v
	}
	abortWithError(c, http.StatusInternalServerError, message)
}
