// Package metrics holds the process-wide prometheus collectors.
package metrics

import (
	"io"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/rotisserie/eris"
)

const namespace = "fieldobs"

var (
	// BlobRequests counts object store calls by operation (list, get) and outcome (ok, not_found, error).
	BlobRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "blobstore",
		Name:      "requests_total",
		Help:      "Total object store requests by operation and outcome.",
	}, []string{"op", "outcome"})

	// MissingEventFiles counts event lookups for fields without an events document.
	MissingEventFiles = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "events",
		Name:      "missing_files_total",
		Help:      "Total event lookups that found no events document.",
	})

	// Registry is the registry the collectors above are registered on by Init.
	Registry = prometheus.NewRegistry()

	initOnce sync.Once
)

// Outcome labels.
const (
	OutcomeOK       = "ok"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// Init registers collectors on Registry; safe to call more than once.
func Init() {
	initOnce.Do(func() {
		Registry.MustRegister(BlobRequests, MissingEventFiles)
	})
}

// ObserveBlob records one object store call.
func ObserveBlob(op, outcome string) {
	BlobRequests.WithLabelValues(op, outcome).Inc()
}

// Dump writes every gathered metric family to w in the text exposition format.
func Dump(w io.Writer) error {
	families, err := Registry.Gather()
	if err != nil {
		return eris.Wrap(err, "metrics: gather")
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return eris.Wrap(err, "metrics: write")
		}
	}
	return nil
}
