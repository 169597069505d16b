package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 解析結果標籤
const (
	OutcomeSuccess = "success"
	OutcomeNoName  = "no_name"
	OutcomeEmpty   = "empty"
	OutcomeError   = "error"
)

var (
	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipe_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recipe_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Parsing metrics
	parseTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipe_parse_total",
			Help: "Total number of recipe parses by producer and outcome",
		},
		[]string{"producer", "outcome"},
	)

	parseDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recipe_parse_duration_seconds",
			Help:    "Recipe parse latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"producer"},
	)

	ingredientFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipe_ingredient_fallback_total",
			Help: "Ingredient lines that fell back to name-only (to taste)",
		},
		[]string{"producer"},
	)

	recipesSaved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recipe_saved_total",
			Help: "Total number of recipes persisted",
		},
	)

	rateLimitRejects = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recipe_rate_limit_rejects_total",
			Help: "Total number of requests rejected due to rate limiting",
		},
	)
)

// ObserveRequest 記錄 HTTP 請求
func ObserveRequest(method, path string, status int, elapsed time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

// ObserveParse 記錄一次解析
func ObserveParse(producer, outcome string, elapsed time.Duration) {
	parseTotal.WithLabelValues(producer, outcome).Inc()
	parseDuration.WithLabelValues(producer).Observe(elapsed.Seconds())
}

// AddIngredientFallbacks 記錄以「適量」回退的食材行數
func AddIngredientFallbacks(producer string, n int) {
	if n > 0 {
		ingredientFallbacks.WithLabelValues(producer).Add(float64(n))
	}
}

// IncRecipesSaved 記錄已儲存的食譜
func IncRecipesSaved() {
	recipesSaved.Inc()
}

// IncRateLimitRejects 記錄被限流的請求
func IncRateLimitRejects() {
	rateLimitRejects.Inc()
}

// Handler Prometheus 指標端點
func Handler() http.Handler {
	return promhttp.Handler()
}
