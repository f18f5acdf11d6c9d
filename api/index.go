package handler

import (
	"net/http"
	"sync"

	config "restaurant-demand-api/configs"
	"restaurant-demand-api/pkg/handlers"
	"restaurant-demand-api/pkg/logging"
	"restaurant-demand-api/pkg/models"
	"restaurant-demand-api/pkg/services"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

var (
	app     http.Handler
	once    sync.Once
	initErr error
)

// setupApp はGinアプリケーションを初期化します。
// サーバーレス環境では、リクエストごとに初期化が走らないようsync.Onceで一度だけ実行します。
func setupApp() (http.Handler, error) {
	once.Do(func() {
		// .envファイルはVercelの環境変数設定から読み込まれるため、ここではgodotenvを呼び出しません。
		cfg := config.LoadConfig()
		logger := logging.NewOrNop(cfg.Environment, cfg.LogLevel)
		gin.SetMode(gin.ReleaseMode)

		artifacts, err := services.LoadArtifacts(services.ArtifactPaths{
			Encoder:    cfg.EncoderPath(),
			Model:      cfg.ModelPath(),
			Categories: cfg.CategoriesPath(),
		})
		if err != nil {
			logger.Error("Failed to load model artifacts in serverless function", zap.Error(err))
			initErr = err
			return
		}

		app = handlers.NewRouter(handlers.RouterDeps{
			Artifacts:             artifacts,
			Monitoring:            services.NewMonitoringService(logger),
			Logger:                logger,
			StrictInputValidation: cfg.StrictInputValidation,
		})
	})
	return app, initErr
}

// Handler はVercelからのすべてのリクエストを処理するエントリーポイントです。
func Handler(w http.ResponseWriter, r *http.Request) {
	// Ginアプリケーションをセットアップ（初回のみ実行される）
	h, err := setupApp()
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		body, _ := jsonError(err.Error())
		w.Write(body)
		return
	}
	h.ServeHTTP(w, r)
}

func jsonError(message string) ([]byte, error) {
	return json.Marshal(models.ErrorResponse{Error: message})
}
