package logging

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New は環境に応じたzapロガーを生成します。
// production ではJSON、それ以外は開発者向けのコンソール出力になります。
func New(environment, level string) (*zap.Logger, error) {
	var cfg zap.Config
	if strings.EqualFold(environment, "production") {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	return cfg.Build()
}

// NewOrNop は New と同じですが、失敗した場合は何も出力しない zap.NewNop() を返します。
func NewOrNop(environment, level string) *zap.Logger {
	logger, err := New(environment, level)
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
