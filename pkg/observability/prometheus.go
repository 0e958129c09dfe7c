package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "repostats"

// Prometheus implements every hook interface on top of Prometheus collectors.
type Prometheus struct {
	upstreamRequests *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec
	upstreamErrors   *prometheus.CounterVec
	cacheEvents      *prometheus.CounterVec
	cacheBytes       *prometheus.CounterVec
	fetchDuration    prometheus.Histogram
	fetchFailed      prometheus.Counter
}

// NewPrometheus creates the collectors and registers them with reg.
// It panics if a collector with the same name is already registered, as
// prometheus.MustRegister does.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	p := &Prometheus{
		upstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_responses_total",
			Help:      "Upstream API responses by host and status code.",
		}, []string{"host", "status"}),
		upstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Upstream API request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"host"}),
		upstreamErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_errors_total",
			Help:      "Upstream API requests that produced no response.",
		}, []string{"host"}),
		cacheEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_events_total",
			Help:      "Cache hits, misses, writes and recovered errors by tier.",
		}, []string{"tier", "event"}),
		cacheBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_written_bytes_total",
			Help:      "Bytes written to the cache by tier.",
		}, []string{"tier"}),
		fetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Wall time of a full sub-resource fan-out.",
			Buckets:   prometheus.DefBuckets,
		}),
		fetchFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_degraded_subresources_total",
			Help:      "Sub-resources that degraded to defaults.",
		}),
	}
	reg.MustRegister(
		p.upstreamRequests, p.upstreamDuration, p.upstreamErrors,
		p.cacheEvents, p.cacheBytes, p.fetchDuration, p.fetchFailed,
	)
	return p
}

func (p *Prometheus) OnFetchStart(context.Context, string, string) {}

func (p *Prometheus) OnFetchComplete(_ context.Context, _, _ string, failed int, d time.Duration) {
	p.fetchDuration.Observe(d.Seconds())
	p.fetchFailed.Add(float64(failed))
}

func (p *Prometheus) OnCacheHit(_ context.Context, tier string) {
	p.cacheEvents.WithLabelValues(tier, "hit").Inc()
}

func (p *Prometheus) OnCacheMiss(_ context.Context, tier string) {
	p.cacheEvents.WithLabelValues(tier, "miss").Inc()
}

func (p *Prometheus) OnCacheSet(_ context.Context, tier string, size int) {
	p.cacheEvents.WithLabelValues(tier, "set").Inc()
	p.cacheBytes.WithLabelValues(tier).Add(float64(size))
}

func (p *Prometheus) OnCacheError(_ context.Context, tier, _ string, _ error) {
	p.cacheEvents.WithLabelValues(tier, "error").Inc()
}

func (p *Prometheus) OnRequest(context.Context, string, string, string) {}

func (p *Prometheus) OnResponse(_ context.Context, _, host, _ string, status int, d time.Duration) {
	p.upstreamRequests.WithLabelValues(host, strconv.Itoa(status)).Inc()
	p.upstreamDuration.WithLabelValues(host).Observe(d.Seconds())
}

func (p *Prometheus) OnError(_ context.Context, _, host, _ string, _ error) {
	p.upstreamErrors.WithLabelValues(host).Inc()
}

var (
	_ FetchHooks = (*Prometheus)(nil)
	_ CacheHooks = (*Prometheus)(nil)
	_ HTTPHooks  = (*Prometheus)(nil)
)
