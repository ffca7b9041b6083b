package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	mSamples = promauto.NewCounter(prometheus.CounterOpts{
		Name: "thermserver_samples_total", Help: "Readings stored",
	})
	mSensorErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "thermserver_sensor_errors_total", Help: "Ticks without a usable sensor reading",
	})
	mStorageErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "thermserver_storage_errors_total", Help: "Ticks aborted by a storage failure",
	})
	mOutOfRange = promauto.NewCounter(prometheus.CounterOpts{
		Name: "thermserver_out_of_range_total", Help: "Readings outside the configured range",
	})
	mDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "thermserver_alerts_total", Help: "Alerts raised by kind",
	}, []string{"kind"})
	mLastCelsius = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "thermserver_last_celsius", Help: "Most recent stored reading",
	})
	mLoopDur = promauto.NewHistogram(prometheus.HistogramOpts{
		Name: "thermserver_tick_duration_seconds", Help: "Sampling tick duration",
		Buckets: prometheus.DefBuckets,
	})
)
