// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ArtifactsGenerated = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "courier_sign", Name: "artifacts_total", Help: "Number of artifacts generated by kind."},
		[]string{"kind"},
	)
	ArtifactFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "courier_sign", Name: "artifact_failures_total", Help: "Number of artifact generations that failed by kind."},
		[]string{"kind"},
	)
	DegradedItems = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "courier_sign", Name: "artifact_degraded_items_total", Help: "Number of items skipped while decorating an artifact."},
		[]string{"kind", "scope"},
	)
	SignaturesRecorded = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "courier_sign", Name: "signatures_total", Help: "Number of signatures recorded by document kind."},
		[]string{"kind"},
	)
	SourceFetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "courier_sign", Name: "source_fetches_total", Help: "Number of source document fetches by result."},
		[]string{"result"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(ArtifactsGenerated)
	reg.MustRegister(ArtifactFailures)
	reg.MustRegister(DegradedItems)
	reg.MustRegister(SignaturesRecorded)
	reg.MustRegister(SourceFetches)
}
