package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

// RouteUnmatched labels requests that hit no registered route, so scanners
// probing random paths cannot grow the label set.
const RouteUnmatched = "unmatched"

// Chart render outcomes.
const (
	ChartRendered = "rendered"
	ChartNoData   = "no_data"
	ChartFailed   = "error"
)

// HTTPMetrics tracks board page, chart and API traffic.
type HTTPMetrics struct {
	RequestDuration     *prometheus.HistogramVec
	RequestsTotal       *prometheus.CounterVec
	InFlightGauge       prometheus.Gauge
	ChartRenders        *prometheus.CounterVec
	ChartRenderDuration *prometheus.HistogramVec
}

func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	m := &HTTPMetrics{
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds, by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status_code"}),
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests, by route.",
		}, []string{"method", "route", "status_code"}),
		InFlightGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of HTTP requests currently being processed.",
		}),
		ChartRenders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "chart",
			Name:      "renders_total",
			Help:      "Tone chart requests, by chart kind and outcome.",
		}, []string{"chart", "outcome"}),
		ChartRenderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "chart",
			Name:      "render_duration_seconds",
			Help:      "Time spent rendering a tone chart to SVG.",
			Buckets:   []float64{.001, .0025, .005, .01, .025, .05, .1, .25},
		}, []string{"chart"}),
	}

	reg.MustRegister(m.RequestDuration, m.RequestsTotal, m.InFlightGauge, m.ChartRenders, m.ChartRenderDuration)
	return m
}

// ObserveChart records one chart request. Only successful renders feed the
// duration histogram.
func (m *HTTPMetrics) ObserveChart(chart, outcome string, took time.Duration) {
	m.ChartRenders.WithLabelValues(chart, outcome).Inc()
	if outcome == ChartRendered {
		m.ChartRenderDuration.WithLabelValues(chart).Observe(took.Seconds())
	}
}

// Middleware records request metrics labelled by registered route. Probes,
// /version and /metrics itself are skipped.
func (m *HTTPMetrics) Middleware() echo.MiddlewareFunc {
	var (
		once   sync.Once
		routes map[string]struct{}
	)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Path()
			if path == "/metrics" || path == "/version" || strings.HasPrefix(path, "/health/") {
				return next(c)
			}

			once.Do(func() {
				routes = make(map[string]struct{})
				for _, r := range c.Echo().Routes() {
					routes[r.Method+" "+r.Path] = struct{}{}
				}
			})

			method := c.Request().Method
			route := path
			if _, ok := routes[method+" "+path]; !ok {
				route = RouteUnmatched
			}

			m.InFlightGauge.Inc()
			defer m.InFlightGauge.Dec()

			start := time.Now()
			err := next(c)

			status := strconv.Itoa(responseStatus(c, err))
			m.RequestDuration.WithLabelValues(method, route, status).Observe(time.Since(start).Seconds())
			m.RequestsTotal.WithLabelValues(method, route, status).Inc()
			return err
		}
	}
}

// responseStatus is the status the client will see. Errors that are still
// travelling up to echo's error handler have not been written yet.
func responseStatus(c echo.Context, err error) int {
	if err == nil || c.Response().Committed {
		return c.Response().Status
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	return http.StatusInternalServerError
}
