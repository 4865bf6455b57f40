package repository

import (
	"context"
	"time"

	"github.com/foxseedlab/modconsole/internal/channel"
	"github.com/foxseedlab/modconsole/internal/remote"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	skipped  *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "modconsole",
			Name:      "channel_service_requests_total",
			Help:      "Channel service calls by method, kind and outcome.",
		}, []string{"method", "kind", "outcome"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "modconsole",
			Name:      "channel_service_request_duration_seconds",
			Help:      "Channel service call latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "kind"}),
		skipped: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "modconsole",
			Name:      "channel_rows_skipped_total",
			Help:      "Stored channel rows that matched neither or both channel kinds.",
		}, []string{"kind"}),
	}
}

func (m *Metrics) rowSkipped(kind channel.Kind) {
	if m == nil {
		return
	}
	m.skipped.WithLabelValues(string(kind)).Inc()
}

func (m *Metrics) observe(method string, kind channel.Kind, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.requests.WithLabelValues(method, string(kind), outcome).Inc()
	m.duration.WithLabelValues(method, string(kind)).Observe(time.Since(start).Seconds())
}

type instrumentedService struct {
	next    remote.ChannelService
	metrics *Metrics
}

// Instrument records count and latency of every call made through next.
func Instrument(next remote.ChannelService, m *Metrics) remote.ChannelService {
	return &instrumentedService{next: next, metrics: m}
}

func (s *instrumentedService) FetchFirstPage(ctx context.Context, kind channel.Kind) (page remote.Page, err error) {
	start := time.Now()
	defer func() { s.metrics.observe("fetch_first_page", kind, start, err) }()
	return s.next.FetchFirstPage(ctx, kind)
}

func (s *instrumentedService) FetchNextPage(ctx context.Context, kind channel.Kind, cursor string) (page remote.Page, err error) {
	start := time.Now()
	defer func() { s.metrics.observe("fetch_next_page", kind, start, err) }()
	return s.next.FetchNextPage(ctx, kind, cursor)
}

func (s *instrumentedService) Search(ctx context.Context, req remote.SearchRequest) (page remote.Page, err error) {
	start := time.Now()
	defer func() { s.metrics.observe("search", req.Kind, start, err) }()
	return s.next.Search(ctx, req)
}

func (s *instrumentedService) DeleteChannels(ctx context.Context, kind channel.Kind, urls []string) (err error) {
	start := time.Now()
	defer func() { s.metrics.observe("delete_channels", kind, start, err) }()
	return s.next.DeleteChannels(ctx, kind, urls)
}

func (s *instrumentedService) ResetSession(kind channel.Kind) {
	s.next.ResetSession(kind)
}
