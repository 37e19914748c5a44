// Package metrics expone las métricas Prometheus de la API y del worker.
package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Facture-2/Facture5-V2/internal/application/auth"
)

const namespace = "facture"

var _ auth.Observer = (*Metrics)(nil)

// Metrics colectores de la aplicación sobre un registry propio.
type Metrics struct {
	registry        *prometheus.Registry
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	inFlight        prometheus.Gauge
	logins          *prometheus.CounterVec
	downgrades      prometheus.Counter
	sweepRuns       *prometheus.CounterVec
	sweepDowngraded prometheus.Counter
	sweepDuration   prometheus.Histogram
}

// New crea el registry y registra los colectores (incluidos los de proceso y runtime).
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Peticiones HTTP por método, ruta y estado.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Latencia de las peticiones HTTP por ruta.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_in_flight_requests",
			Help:      "Peticiones HTTP en curso.",
		}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "login_attempts_total",
			Help:      "Intentos de autenticación por método y resultado.",
		}, []string{"method", "outcome"}),
		downgrades: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "subscription_downgrades_total",
			Help:      "Empresas pasadas a free por expiración.",
		}),
		sweepRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "expiry_sweep_runs_total",
			Help:      "Ejecuciones del barrido de expiración por resultado.",
		}, []string{"status"}),
		sweepDowngraded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "expiry_sweep_downgraded_total",
			Help:      "Empresas degradadas por el barrido de expiración.",
		}),
		sweepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "expiry_sweep_duration_seconds",
			Help:      "Duración del barrido de expiración.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requestsTotal, m.requestDuration, m.inFlight,
		m.logins, m.downgrades,
		m.sweepRuns, m.sweepDowngraded, m.sweepDuration,
	)
	return m
}

// Registry devuelve el registry para tests o colectores adicionales.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ── auth.Observer ─────────────────────────────────────────────────────────────

// LoginAttempt cuenta un intento de autenticación.
func (m *Metrics) LoginAttempt(method, outcome string) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(method, outcome).Inc()
}

// SubscriptionDowngraded cuenta un paso a free.
func (m *Metrics) SubscriptionDowngraded() {
	if m == nil {
		return
	}
	m.downgrades.Inc()
}

// ── Barrido de expiración ─────────────────────────────────────────────────────

// SweepFinished registra una ejecución del barrido.
func (m *Metrics) SweepFinished(downgraded int, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failure"
	}
	m.sweepRuns.WithLabelValues(status).Inc()
	if downgraded > 0 {
		m.sweepDowngraded.Add(float64(downgraded))
	}
	m.sweepDuration.Observe(elapsed.Seconds())
}

// ── HTTP ──────────────────────────────────────────────────────────────────────

// Middleware mide cada petición. La etiqueta route es el patrón registrado, no la URL.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if m == nil {
			return c.Next()
		}
		m.inFlight.Inc()
		start := time.Now()
		err := c.Next()
		m.inFlight.Dec()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		route := "unknown"
		if r := c.Route(); r != nil && r.Path != "" {
			route = r.Path
		}
		method := c.Method()
		m.requestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
		m.requestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
		return err
	}
}

// Handler expone /metrics.
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}
