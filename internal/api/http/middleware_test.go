package http

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

func TestFailedRequestLoggedWithTranslatedStatus(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	app := fiber.New()
	RegisterMiddlewares(app, zap.New(core), 0)
	app.Get("/boom", func(c *fiber.Ctx) error {
		return apperrors.NewValidationError("bad payload", nil)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
	if err != nil {
		t.Fatalf("app.Test returned error: %v", err)
	}
	if resp.StatusCode != 400 {
		t.Fatalf("response status = %d, want 400", resp.StatusCode)
	}

	entries := logs.FilterMessage("request").All()
	if len(entries) != 1 {
		t.Fatalf("got %d request log entries, want 1", len(entries))
	}
	if status, ok := entries[0].ContextMap()["status"].(int64); !ok || status != 400 {
		t.Errorf("logged status = %v, want 400", entries[0].ContextMap()["status"])
	}
}

func TestSuccessfulRequestLogged(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	app := fiber.New()
	RegisterMiddlewares(app, zap.New(core), 0)
	app.Get("/ok", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"data": "ok"})
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/ok", nil))
	if err != nil {
		t.Fatalf("app.Test returned error: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("response status = %d, want 200", resp.StatusCode)
	}

	entries := logs.FilterMessage("request").All()
	if len(entries) != 1 {
		t.Fatalf("got %d request log entries, want 1", len(entries))
	}
	if status, ok := entries[0].ContextMap()["status"].(int64); !ok || status != 200 {
		t.Errorf("logged status = %v, want 200", entries[0].ContextMap()["status"])
	}
}
