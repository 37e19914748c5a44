package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Facture-2/Facture5-V2/internal/application/auth"
	"github.com/Facture-2/Facture5-V2/internal/infrastructure/metrics"
)

func TestMiddleware_EtiquetaRutaRegistrada(t *testing.T) {
	m := metrics.New()
	app := fiber.New()
	app.Use(m.Middleware())
	app.Get("/api/items/:id", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })
	app.Get("/metrics", m.Handler())

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/items/42", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `facture_http_requests_total{method="GET",route="/api/items/:id",status="204"} 1`)
}

func TestObserver_CuentaIntentosYDegradaciones(t *testing.T) {
	m := metrics.New()
	m.LoginAttempt("managed", auth.OutcomeBlocked)
	m.LoginAttempt("managed", auth.OutcomeBlocked)
	m.SubscriptionDowngraded()
	m.SweepFinished(3, time.Second, nil)

	n, err := testutil.GatherAndCount(m.Registry(), "facture_login_attempts_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	out, err := m.Registry().Gather()
	require.NoError(t, err)
	values := map[string]float64{}
	for _, mf := range out {
		for _, metric := range mf.GetMetric() {
			if c := metric.GetCounter(); c != nil {
				values[mf.GetName()] += c.GetValue()
			}
		}
	}
	assert.Equal(t, 2.0, values["facture_login_attempts_total"])
	assert.Equal(t, 1.0, values["facture_subscription_downgrades_total"])
	assert.Equal(t, 3.0, values["facture_expiry_sweep_downgraded_total"])
}

func TestMetrics_NilNoFalla(t *testing.T) {
	var m *metrics.Metrics
	assert.NotPanics(t, func() {
		m.LoginAttempt("x", "y")
		m.SubscriptionDowngraded()
		m.SweepFinished(1, time.Millisecond, nil)
	})
}
