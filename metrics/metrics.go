package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SyncedHeight = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sentinel_synced_height",
			Help: "Last synced block height of a log based chain",
		},
		[]string{"chain"},
	)

	SyncErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_sync_errors_total",
			Help: "Total number of failed sync passes",
		},
		[]string{"chain"},
	)

	TransfersSynced = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_transfers_synced_total",
			Help: "Total number of new transfers stored by the chain syncers",
		},
		[]string{"chain"},
	)

	DecodeFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_decode_failures_total",
			Help: "Total number of chain events that could not be decoded",
		},
		[]string{"chain"},
	)

	Submissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_submissions_total",
			Help: "Total number of signing network queries by resulting status",
		},
		[]string{"status"},
	)

	Escalations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_escalations_total",
			Help: "Total number of alerts raised",
		},
		[]string{"kind"},
	)

	VerificationOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_verification_outcomes_total",
			Help: "Total number of burn verifications by outcome",
		},
		[]string{"outcome"},
	)

	PendingTransfers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sentinel_pending_transfers",
		Help: "Number of transfers that are neither done nor ignored",
	})

	TickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sentinel_tick_duration_seconds",
		Help:    "Duration of one scheduler tick",
		Buckets: prometheus.DefBuckets,
	})
)
