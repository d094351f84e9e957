package observability

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	m := NewMetrics()

	app := fiber.New()
	app.Use(RequestLogger(zap.New(core), m))
	app.Get("/issues/:id", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	app.Get("/broken", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusForbidden)
	})

	tests := []struct {
		path   string
		status int
		level  string
	}{
		{"/issues/42", fiber.StatusOK, "info"},
		{"/broken", fiber.StatusForbidden, "warn"},
	}
	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest("GET", tc.path, nil))
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)

			entries := logs.FilterField(zap.String("path", tc.path)).All()
			require.Len(t, entries, 1)
			assert.Equal(t, tc.level, entries[0].Level.String())
			assert.Equal(t, int64(tc.status), entries[0].ContextMap()["status"])
		})
	}

	assert.Equal(t, 2, testutil.CollectAndCount(m.requestsTotal))
}
