package handlers

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestReadyHidesDependencyErrors(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	h := NewHealthHandler("gateway", "test", "test", map[string]Pinger{
		"postgres": pingFunc(func(context.Context) error {
			return errors.New("dial tcp 10.0.0.5:5432: connect: connection refused")
		}),
		"redis": nil,
	}, zap.New(core))

	app := fiber.New()
	app.Get("/health/ready", h.Ready)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/health/ready", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != fiber.StatusServiceUnavailable {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if strings.Contains(string(body), "10.0.0.5") || strings.Contains(string(body), "refused") {
		t.Fatalf("ping error leaked to client: %s", body)
	}
	if !strings.Contains(string(body), `"postgres":"unavailable"`) || !strings.Contains(string(body), `"redis":"disabled"`) {
		t.Fatalf("unexpected body: %s", body)
	}
	if logs.Len() != 1 || !strings.Contains(logs.All()[0].ContextMap()["error"].(string), "10.0.0.5") {
		t.Fatalf("expected ping error in logs, got %v", logs.All())
	}
}

func TestReadyWithHealthyDependencies(t *testing.T) {
	h := NewHealthHandler("gateway", "test", "test", map[string]Pinger{
		"postgres": pingFunc(func(context.Context) error { return nil }),
	}, nil)

	app := fiber.New()
	app.Get("/health/ready", h.Ready)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/health/ready", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}
