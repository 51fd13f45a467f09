// Package metrics exposes Prometheus instrumentation for the checkin domain.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the checkin domain's Prometheus collectors.
type Metrics struct {
	CheckinsCommitted   *prometheus.CounterVec
	SubmissionsRejected *prometheus.CounterVec
	ProofUploadsFailed  prometheus.Counter
	ProofsOrphaned      prometheus.Counter
	GeofenceEvaluations *prometheus.CounterVec
	SubmitDuration      prometheus.Histogram
}

// New creates and registers all checkin metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		CheckinsCommitted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ponto_checkins_committed_total",
			Help: "Ledger entries committed, by boundary kind.",
		}, []string{"kind"}),
		SubmissionsRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ponto_submissions_rejected_total",
			Help: "Submissions rejected before commit, by reason.",
		}, []string{"reason"}),
		ProofUploadsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ponto_proof_uploads_failed_total",
			Help: "Proof artifact uploads that failed; no ledger write occurs for these.",
		}),
		ProofsOrphaned: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ponto_proofs_orphaned_total",
			Help: "Uploaded artifacts left unreferenced by a failed ledger commit.",
		}),
		GeofenceEvaluations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ponto_geofence_evaluations_total",
			Help: "Geofence admissibility evaluations, by outcome.",
		}, []string{"outcome"}),
		SubmitDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "ponto_submit_duration_seconds",
			Help:    "End-to-end duration of the commit protocol.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}
