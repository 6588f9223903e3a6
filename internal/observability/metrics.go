// Package observability expone métricas Prometheus del ledger, el checkout y la API.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics agrupa los collectors de la aplicación. Un *Metrics nil es válido y no registra nada.
type Metrics struct {
	registry         *prometheus.Registry
	handler          http.Handler
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	checkoutsTotal   *prometheus.CounterVec
	checkoutDuration prometheus.Histogram
	movementsTotal   *prometheus.CounterVec
	dispatchTotal    *prometheus.CounterVec
	txRetriesTotal   prometheus.Counter
}

// NewMetrics inicializa un registry propio con todas las métricas.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stockmaster_http_requests_total",
			Help: "Peticiones HTTP por ruta y código.",
		}, []string{"route", "code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "stockmaster_http_request_duration_seconds",
			Help:    "Duración de peticiones HTTP por ruta.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		checkoutsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stockmaster_checkouts_total",
			Help: "Ventas intentadas por resultado.",
		}, []string{"outcome"}),
		checkoutDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "stockmaster_checkout_duration_seconds",
			Help:    "Duración del checkout, incluida la transacción.",
			Buckets: prometheus.DefBuckets,
		}),
		movementsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stockmaster_stock_movements_total",
			Help: "Movimientos de kardex confirmados por dirección.",
		}, []string{"direction"}),
		dispatchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stockmaster_invoice_dispatch_total",
			Help: "Envíos de factura por estado.",
		}, []string{"status"}),
		txRetriesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stockmaster_tx_retries_total",
			Help: "Reintentos de transacción por conflicto.",
		}),
	}
	registry.MustRegister(
		m.requestsTotal, m.requestDuration,
		m.checkoutsTotal, m.checkoutDuration,
		m.movementsTotal, m.dispatchTotal, m.txRetriesTotal,
	)
	m.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return m
}

// Handler devuelve el http.Handler para /metrics.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Registerer expone el registry para métricas adicionales.
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
}

// Middleware registra conteo y duración de cada petición de Fiber.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if m == nil {
			return c.Next()
		}
		start := time.Now()
		err := c.Next()
		route := "unknown"
		if r := c.Route(); r != nil && r.Path != "" {
			route = r.Path
		}
		status := c.Response().StatusCode()
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		}
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		return err
	}
}

// ObserveCheckout cuenta un checkout y su duración.
func (m *Metrics) ObserveCheckout(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.checkoutsTotal.WithLabelValues(outcome).Inc()
	m.checkoutDuration.Observe(elapsed.Seconds())
}

// IncMovement cuenta un movimiento de kardex confirmado.
func (m *Metrics) IncMovement(direction string) {
	if m == nil {
		return
	}
	m.movementsTotal.WithLabelValues(direction).Inc()
}

// IncDispatch cuenta un envío de factura (sent, failed, queued, skipped).
func (m *Metrics) IncDispatch(status string) {
	if m == nil {
		return
	}
	m.dispatchTotal.WithLabelValues(status).Inc()
}

// IncTxRetry cuenta un reintento de transacción.
func (m *Metrics) IncTxRetry() {
	if m == nil {
		return
	}
	m.txRetriesTotal.Inc()
}
