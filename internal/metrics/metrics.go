package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

// Metrics holds all Prometheus collectors for the EduMate backend.
var Metrics = struct {
	QuestionsTotal   *prometheus.CounterVec
	TranscriptSource *prometheus.CounterVec
	ModelAttempts    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	DBPoolActive     prometheus.GaugeFunc
	DBPoolIdle       prometheus.GaugeFunc
	RequestsInFlight prometheus.Gauge
	CacheHits        prometheus.Counter
	CacheMisses      prometheus.Counter
	ResolveDuration  prometheus.Histogram
}{}

var initOnce sync.Once

// Init registers all Prometheus metrics. Safe to call more than once; only
// the first call registers.
func Init(pool *pgxpool.Pool) {
	initOnce.Do(func() { initMetrics(pool) })
}

func initMetrics(pool *pgxpool.Pool) {
	Metrics.QuestionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edumate_questions_total",
			Help: "Questions resolved, by outcome (cached, answered, degraded).",
		},
		[]string{"outcome"},
	)

	Metrics.TranscriptSource = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edumate_transcript_source_total",
			Help: "Transcript resolutions, by provenance.",
		},
		[]string{"provenance"},
	)

	Metrics.ModelAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edumate_model_attempts_total",
			Help: "Generative model call attempts, by model and result.",
		},
		[]string{"model", "result"},
	)

	Metrics.RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "edumate_api_request_duration_seconds",
			Help:    "HTTP request duration in seconds, by endpoint and method.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	Metrics.RequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "edumate_requests_in_flight",
			Help: "Number of HTTP requests currently being served.",
		},
	)

	Metrics.CacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "edumate_cache_hits_total",
			Help: "Total answer cache hits (Redis and database combined).",
		},
	)

	Metrics.CacheMisses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "edumate_cache_misses_total",
			Help: "Total answer cache misses.",
		},
	)

	Metrics.ResolveDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "edumate_resolve_duration_seconds",
			Help:    "End-to-end duration of uncached question resolutions.",
			Buckets: []float64{.5, 1, 2.5, 5, 10, 30, 60, 120, 240},
		},
	)

	// DB pool gauges read live stats from pgxpool.
	if pool != nil {
		Metrics.DBPoolActive = prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "edumate_db_connection_pool_active",
				Help: "Number of active database connections.",
			},
			func() float64 {
				return float64(pool.Stat().AcquiredConns())
			},
		)

		Metrics.DBPoolIdle = prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "edumate_db_connection_pool_idle",
				Help: "Number of idle database connections.",
			},
			func() float64 {
				return float64(pool.Stat().IdleConns())
			},
		)

		prometheus.MustRegister(Metrics.DBPoolActive)
		prometheus.MustRegister(Metrics.DBPoolIdle)
	}

	prometheus.MustRegister(
		Metrics.QuestionsTotal,
		Metrics.TranscriptSource,
		Metrics.ModelAttempts,
		Metrics.RequestDuration,
		Metrics.RequestsInFlight,
		Metrics.CacheHits,
		Metrics.CacheMisses,
		Metrics.ResolveDuration,
	)
}

// Middleware records request duration and in-flight count for Prometheus.
func Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		// Don't instrument the /metrics endpoint itself
		if c.Path() == "/metrics" {
			return c.Next()
		}

		// Copy path and method into owned strings BEFORE c.Next(); Fiber
		// returns slices backed by the fasthttp buffer which can be reused
		// or overwritten by handlers (especially fasthttpadaptor).
		path := string([]byte(c.Path()))
		method := string([]byte(c.Method()))
		endpoint := sanitizeEndpoint(path)

		Metrics.RequestsInFlight.Inc()
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())

		Metrics.RequestDuration.WithLabelValues(endpoint, method, status).Observe(duration)
		Metrics.RequestsInFlight.Dec()

		return err
	}
}

// sanitizeEndpoint normalizes paths to avoid cardinality explosion.
func sanitizeEndpoint(path string) string {
	switch {
	case len(path) > 21 && path[:21] == "/api/questions/video/":
		return "/api/questions/video/:videoId"
	default:
		return path
	}
}

// Handler serves the Prometheus /metrics endpoint via Fiber.
func Handler() fiber.Handler {
	httpHandler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	return func(c fiber.Ctx) error {
		httpHandler(c.RequestCtx())
		return nil
	}
}
