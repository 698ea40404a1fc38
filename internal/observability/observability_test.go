package observability

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Earth-Kumar-Roy/Waste-Reporting-and-Redressal-System/internal/config"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel(" DEBUG "))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warn"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("verbose"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel(""))
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(config.LoggerConfig{Level: "error"}, config.AppConfig{Name: "svc", Env: "production"})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.WarnLevel))
	assert.True(t, logger.Core().Enabled(zapcore.ErrorLevel))
}

func TestMetricsSnapshotIsACopy(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/tickets", "POST", 201, 3*time.Millisecond)
	m.RecordRequest("/tickets", "POST", 201, 2*time.Millisecond)
	m.RecordError("/tickets", "POST", "VALIDATION_FAILED")

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.Requests["/tickets|POST|201"])
	assert.Equal(t, 5*time.Millisecond, snap.Latency["/tickets|POST|201"])
	assert.Equal(t, int64(1), snap.Errors["/tickets|POST|VALIDATION_FAILED"])

	snap.Requests["/tickets|POST|201"] = 99
	assert.Equal(t, int64(2), m.Snapshot().Requests["/tickets|POST|201"])

	var nilMetrics *Metrics
	nilMetrics.RecordError("/x", "GET", "NOT_FOUND")
	assert.Empty(t, nilMetrics.Snapshot().Errors)
}

func TestRequestLoggerLevelsByStatus(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	metrics := NewMetrics()

	app := fiber.New()
	app.Use(RequestLogger(zap.New(core), metrics))
	app.Get("/tickets/:id", func(c *fiber.Ctx) error {
		if c.Params("id") == "missing" {
			return c.SendStatus(fiber.StatusNotFound)
		}
		return c.SendStatus(fiber.StatusOK)
	})

	for _, path := range []string{"/tickets/AB12CD34", "/tickets/missing"} {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil))
		require.NoError(t, err)
		resp.Body.Close()
	}

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)

	snap := metrics.Snapshot()
	assert.Equal(t, int64(1), snap.Requests["/tickets/:id|GET|200"])
	assert.Equal(t, int64(1), snap.Requests["/tickets/:id|GET|404"])
}
