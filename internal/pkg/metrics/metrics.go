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

	// 購入の総数（status: initiated, confirmed, cancelled, seat_conflict, error）
	PurchasesTotal *prometheus.CounterVec

	// 入場スキャンの総数（result: validated, duplicate, rejected）
	TicketScansTotal *prometheus.CounterVec

	// 期限切れに遷移したチケットの総数
	ExpiredTicketsTotal prometheus.Counter

	// 分散ロックの操作時間（operation: acquire/release, status: success/failed）
	DistributedLockDuration *prometheus.HistogramVec

	// 状態ごとの購入数（status: pending, confirmed）
	ActivePurchases *prometheus.GaugeVec
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
		PurchasesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "purchases_total",
				Help: "Total number of purchase operations",
			},
			[]string{"status"},
		),
		TicketScansTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ticket_scans_total",
				Help: "Total number of entry gate ticket scans",
			},
			[]string{"result"},
		),
		ExpiredTicketsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "expired_tickets_total",
				Help: "Total number of tickets swept to expired",
			},
		),
		DistributedLockDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "distributed_lock_duration_seconds",
				Help:    "Time spent on distributed lock operations",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"operation", "status"},
		),
		ActivePurchases: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "active_purchases",
				Help: "Current number of purchases by status",
			},
			[]string{"status"},
		),
	}

	// レジストリに登録
	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.PurchasesTotal,
		m.TicketScansTotal,
		m.ExpiredTicketsTotal,
		m.DistributedLockDuration,
		m.ActivePurchases,
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

// InitWithRegistry は指定レジストリでデフォルトインスタンスを初期化する（テスト用）
func InitWithRegistry(reg prometheus.Registerer) *Metrics {
	defaultMetrics = NewWithRegistry(reg)
	return defaultMetrics
}

// Get はデフォルトのメトリクスインスタンスを返す
func Get() *Metrics {
	return defaultMetrics
}

// 以下はデフォルトインスタンスへの記録ヘルパー
// Init 前（未初期化のテストなど）は何もしない

// RecordPurchase は購入操作の結果を記録する
func RecordPurchase(status string) {
	if defaultMetrics == nil {
		return
	}
	defaultMetrics.PurchasesTotal.WithLabelValues(status).Inc()
}

// RecordTicketScan は入場スキャンの結果を記録する
func RecordTicketScan(result string) {
	if defaultMetrics == nil {
		return
	}
	defaultMetrics.TicketScansTotal.WithLabelValues(result).Inc()
}

// AddExpiredTickets は期限切れに遷移したチケット数を加算する
func AddExpiredTickets(count int) {
	if defaultMetrics == nil || count <= 0 {
		return
	}
	defaultMetrics.ExpiredTicketsTotal.Add(float64(count))
}

// ObserveLockDuration は分散ロック操作の所要時間を記録する
func ObserveLockDuration(operation, status string, seconds float64) {
	if defaultMetrics == nil {
		return
	}
	defaultMetrics.DistributedLockDuration.WithLabelValues(operation, status).Observe(seconds)
}

// IncActivePurchases は状態ごとの購入数ゲージを増やす
func IncActivePurchases(status string) {
	if defaultMetrics == nil {
		return
	}
	defaultMetrics.ActivePurchases.WithLabelValues(status).Inc()
}

// DecActivePurchases は状態ごとの購入数ゲージを減らす
func DecActivePurchases(status string) {
	if defaultMetrics == nil {
		return
	}
	defaultMetrics.ActivePurchases.WithLabelValues(status).Dec()
}
