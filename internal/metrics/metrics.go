// Package metrics registers the crawler's Prometheus collectors on the
// default registry. Nothing here serves them: the long-running crawler that
// embeds these packages is expected to mount promhttp.Handler() at /metrics.
// Short CLI runs record into the registry and exit without exposing it.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "logo_crawler"

// Cache lookup outcomes.
const (
	LookupHit     = "hit"
	LookupMiss    = "miss"
	LookupExpired = "expired"
)

// Upload outcomes.
const (
	UploadSuccess = "success"
	UploadFailure = "failure"
	UploadSkipped = "skipped"
)

var (
	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Result cache lookups by outcome",
		},
		[]string{"outcome"},
	)

	CacheRemovalsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_removals_total",
			Help:      "Entries removed from the result cache by reason",
		},
		[]string{"reason"},
	)

	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "Image uploads to object storage by bucket and outcome",
		},
		[]string{"bucket", "outcome"},
	)

	UploadDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upload_duration_seconds",
			Help:      "Duration of image uploads including retries",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"bucket"},
	)

	ClassificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "classifications_total",
			Help:      "Classifier invocations by outcome",
		},
		[]string{"outcome"},
	)
)

func RecordCacheLookup(outcome string) {
	CacheLookupsTotal.WithLabelValues(outcome).Inc()
}

func RecordCacheRemoval(reason string, count int) {
	if count <= 0 {
		return
	}
	CacheRemovalsTotal.WithLabelValues(reason).Add(float64(count))
}

// RecordUpload counts an upload attempt. Skipped uploads carry no duration.
func RecordUpload(bucket string, outcome string, duration time.Duration) {
	UploadsTotal.WithLabelValues(bucket, outcome).Inc()
	if outcome == UploadSkipped {
		return
	}
	UploadDuration.WithLabelValues(bucket).Observe(duration.Seconds())
}

func RecordClassification(success bool) {
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	ClassificationsTotal.WithLabelValues(outcome).Inc()
}
