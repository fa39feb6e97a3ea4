package observability

import (
	"testing"

	"go.uber.org/zap/zapcore"

	"github.com/spec-kit/marketplace-gateway/internal/config"
)

func TestLoggerConfigPerEnvironment(t *testing.T) {
	app := config.AppConfig{Name: "marketplace-gateway", Version: "1.2.3", Env: "production"}

	prod := loggerConfig(config.LoggerConfig{Level: "WARN"}, app)
	if prod.Level.Level() != zapcore.WarnLevel {
		t.Fatalf("expected warn level, got %s", prod.Level.Level())
	}
	if prod.Development || prod.Sampling == nil {
		t.Fatalf("production logger must sample and not be in development mode")
	}
	if prod.InitialFields["service"] != "marketplace-gateway" || prod.InitialFields["version"] != "1.2.3" || prod.InitialFields["env"] != "production" {
		t.Fatalf("unexpected initial fields %v", prod.InitialFields)
	}

	app.Env = "development"
	dev := loggerConfig(config.LoggerConfig{Level: "loud"}, app)
	if dev.Level.Level() != zapcore.InfoLevel {
		t.Fatalf("unknown level should fall back to info, got %s", dev.Level.Level())
	}
	if !dev.Development || dev.Sampling != nil {
		t.Fatalf("development logger must not sample")
	}

	if _, err := NewLogger(config.LoggerConfig{Level: "debug"}, app); err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
}
