package observability

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMetrics_Record(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordRequest("/messages", "GET", 200, 10*time.Millisecond)
	m.RecordRequest("/messages", "GET", 200, 5*time.Millisecond)
	m.RecordError("/messages", "POST", "VALIDATION_FAILED")
	m.RecordStoreOp("file", "save", "conflict")
	m.RecordConflictRetry("file")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("/messages", "GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.errors.WithLabelValues("/messages", "POST", "VALIDATION_FAILED")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.storeOps.WithLabelValues("file", "save", "conflict")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.conflictRetries.WithLabelValues("file")))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordRequest("/", "GET", 200, time.Millisecond)
		m.RecordError("/", "GET", "X")
		m.RecordStoreOp("memory", "load", "ok")
		m.RecordConflictRetry("memory")
	})
}

func TestRequestLogger_AssignsRequestID(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	app := fiber.New()
	app.Use(RequestLogger(zap.NewNop(), m))
	app.Get("/ping", func(c *fiber.Ctx) error {
		return c.SendString(RequestID(c))
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/ping", nil), -1)
	require.NoError(t, err)
	assert.Len(t, resp.Header.Get(HeaderRequestID), 36)

	req := httptest.NewRequest("GET", "/ping", nil)
	req.Header.Set(HeaderRequestID, "abc")
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, "abc", resp.Header.Get(HeaderRequestID))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("/ping", "GET", "200")))
}
