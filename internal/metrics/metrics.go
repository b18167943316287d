package metrics

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the client-side collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	apiRequestsTotal    *prometheus.CounterVec
	apiRequestsDuration *prometheus.HistogramVec
	apiRequestsInFlight prometheus.Gauge
	csrfFetchesTotal    *prometheus.CounterVec
	staleQueriesTotal   prometheus.Counter
	storeOpsTotal       *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()

	if err := reg.Register(collectors.NewGoCollector()); err != nil {
		slog.Debug("GoCollector registration skipped", slog.String("error", err.Error()))
	}

	if err := reg.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
		slog.Debug("ProcessCollector registration skipped", slog.String("error", err.Error()))
	}

	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		apiRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storefront_api_requests_total",
				Help: "Total number of requests sent to the storefront API.",
			},
			[]string{"code", "method"},
		),
		apiRequestsDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "storefront_api_request_duration_seconds",
				Help:    "Duration of storefront API requests in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		apiRequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "storefront_api_requests_in_flight",
				Help: "Current number of storefront API requests awaiting a response.",
			},
		),
		csrfFetchesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storefront_csrf_fetches_total",
				Help: "CSRF token fetches by result.",
			},
			[]string{"result"},
		),
		staleQueriesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "storefront_stale_product_queries_total",
				Help: "Product query responses dropped because a newer query was issued.",
			},
		),
		storeOpsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storefront_store_operations_total",
				Help: "Auth and cart state operations by outcome.",
			},
			[]string{"store", "op", "success"},
		),
	}
}

// InstrumentRoundTripper wraps next with request count, latency and in-flight collectors.
func (m *Metrics) InstrumentRoundTripper(next http.RoundTripper) http.RoundTripper {
	if m == nil {
		return next
	}

	return promhttp.InstrumentRoundTripperInFlight(m.apiRequestsInFlight,
		promhttp.InstrumentRoundTripperCounter(m.apiRequestsTotal,
			promhttp.InstrumentRoundTripperDuration(m.apiRequestsDuration, next),
		),
	)
}

func (m *Metrics) CSRFFetch(ok bool) {
	if m == nil {
		return
	}

	result := "success"
	if !ok {
		result = "failure"
	}

	m.csrfFetchesTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) StaleQueryDropped() {
	if m == nil {
		return
	}

	m.staleQueriesTotal.Inc()
}

func (m *Metrics) StoreOp(store, op string, success bool) {
	if m == nil {
		return
	}

	m.storeOpsTotal.WithLabelValues(store, op, strconv.FormatBool(success)).Inc()
}

// WriteTextfile dumps the registry in the node_exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}

	return prometheus.WriteToTextfile(path, m.Registry)
}

// Handler exposes the registry for a long-running process.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
