package handlers

import (
	"restaurant-demand-api/pkg/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RouterDeps ルーター構築に必要な依存関係
type RouterDeps struct {
	Artifacts             *services.Artifacts
	Monitoring            *services.MonitoringService
	Logger                *zap.Logger
	StrictInputValidation bool
}

// NewRouter ミドルウェアとAPIルートを登録したGinエンジンを返す
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Monitoring == nil {
		deps.Monitoring = services.NewMonitoringService(deps.Logger)
	}

	r := gin.New()

	// ミドルウェアの登録
	// panicからの復帰はログ記録の内側で行い、500もモニタリングに残す
	r.Use(deps.Monitoring.RequestID())
	r.Use(deps.Monitoring.LoggingMiddleware())
	r.Use(gin.CustomRecovery(RecoveryHandler))
	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	r.Use(cors.New(config))

	// ハンドラーの初期化
	healthHandler := NewHealthHandler(deps.Artifacts)
	monitoringHandler := NewMonitoringHandler(deps.Monitoring)
	recommendationHandler := NewRecommendationHandler(
		services.NewRecommendationService(deps.Artifacts),
		deps.Monitoring,
		deps.Logger,
		deps.StrictInputValidation,
	)

	r.GET("/health", healthHandler.HealthCheck)
	r.GET("/metrics", monitoringHandler.Metrics)

	api := r.Group("/api")
	{
		api.POST("/recommend-categories", recommendationHandler.RecommendCategories)
		api.POST("/simulate-daily", SimulateDaily)
		api.GET("/model", recommendationHandler.GetModelInfo)
		api.GET("/monitoring/logs", monitoringHandler.GetLogs)
	}

	return r
}
