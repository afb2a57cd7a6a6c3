package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	APIRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "homestay", Name: "api_requests_total", Help: "Outbound API requests."},
		[]string{"method", "endpoint", "status"},
	)
	APILatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "homestay", Name: "api_request_duration_seconds",
			Help:    "Outbound API request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)
	TokenRefreshes = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "homestay", Name: "token_refresh_total", Help: "Access token refresh attempts."},
		[]string{"result"}, // ok|failed|exhausted
	)
	SocketEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "homestay", Name: "socket_events_total", Help: "Notification socket events."},
		[]string{"event"}, // connect|reconnect|lost|disconnect|message|dropped
	)
	StoreEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "homestay", Name: "local_store_events_total", Help: "Local store hits/misses/sets/dels."},
		[]string{"backend", "event"},
	)
)

// InitRegistry registers every collector on a fresh registry.
func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(APIRequests, APILatency, TokenRefreshes, SocketEvents, StoreEvents)
	return reg
}

// Router exposes /metrics and /healthz.
func Router(reg *prometheus.Registry) http.Handler {
	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

func ObserveAPI(method, endpoint string, status int, dur time.Duration) {
	APIRequests.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	APILatency.WithLabelValues(method, endpoint).Observe(dur.Seconds())
}

func ObserveRefresh(result string) {
	TokenRefreshes.WithLabelValues(result).Inc()
}

func ObserveSocket(event string) {
	SocketEvents.WithLabelValues(event).Inc()
}

func ObserveStore(backend, event string) { // event: hit|miss|set|del
	StoreEvents.WithLabelValues(backend, event).Inc()
}
