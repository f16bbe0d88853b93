package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics はアプリケーションのメトリクスを管理する
type Metrics struct {
	// HTTPリクエストの総数（method, path, status_code）
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPリクエストのレイテンシ（method, path）
	HTTPRequestDuration *prometheus.HistogramVec

	// 座席ロック操作の総数（operation: acquire/refresh/release, status: success/conflict/error）
	SeatLocksTotal *prometheus.CounterVec

	// 予約確定の総数（status: success, not_held, already_booked, error）
	BookingsTotal *prometheus.CounterVec

	// 確定処理のレイテンシ
	BookingConfirmDuration prometheus.Histogram

	// 上映回ごとの購読者数
	AvailabilityWatchers prometheus.Gauge

	// 掃除ワーカーが削除した期限切れロック数
	ExpiredLocksSwept prometheus.Counter
}

// New は新しいMetricsインスタンスを作成し、デフォルトレジストリに登録する
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry は指定したレジストリにメトリクスを登録する
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		SeatLocksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "seat_locks_total",
				Help: "Total number of seat lock operations",
			},
			[]string{"operation", "status"},
		),
		BookingsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bookings_total",
				Help: "Total number of booking confirmation attempts",
			},
			[]string{"status"},
		),
		BookingConfirmDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "booking_confirm_duration_seconds",
				Help:    "Time spent confirming bookings",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
		),
		AvailabilityWatchers: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "availability_watchers",
				Help: "Current number of availability feed subscriptions",
			},
		),
		ExpiredLocksSwept: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "expired_locks_swept_total",
				Help: "Total number of expired seat locks removed by the sweeper",
			},
		),
	}

	// レジストリに登録
	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.SeatLocksTotal,
		m.BookingsTotal,
		m.BookingConfirmDuration,
		m.AvailabilityWatchers,
		m.ExpiredLocksSwept,
	)

	return m
}

// デフォルトのメトリクスインスタンス
var defaultMetrics *Metrics

// Init はデフォルトのメトリクスインスタンスを初期化する
func Init() *Metrics {
	defaultMetrics = New()
	return defaultMetrics
}

// Get はデフォルトのメトリクスインスタンスを返す
func Get() *Metrics {
	return defaultMetrics
}
