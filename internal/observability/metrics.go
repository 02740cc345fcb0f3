package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects the counters reported by the recipe repository.
type Metrics struct {
	operations   *prometheus.CounterVec
	readFailures *prometheus.CounterVec
	uploads      *prometheus.CounterVec
}

func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "recipes_operations_total",
		Help: "Total repository operations by outcome.",
	}, []string{"op", "outcome"})
	readFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "recipes_read_failures_total",
		Help: "Reads that failed and were answered with an empty list.",
	}, []string{"op"})
	uploads := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "recipes_image_uploads_total",
		Help: "Recipe photo uploads by outcome.",
	}, []string{"outcome"})

	return &Metrics{
		operations:   registerCounterVec(registerer, operations),
		readFailures: registerCounterVec(registerer, readFailures),
		uploads:      registerCounterVec(registerer, uploads),
	}
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

func (m *Metrics) IncOperation(op string, ok bool) {
	if m == nil || m.operations == nil {
		return
	}
	m.operations.WithLabelValues(op, outcome(ok)).Inc()
}

func (m *Metrics) IncReadFailure(op string) {
	if m == nil || m.readFailures == nil {
		return
	}
	m.readFailures.WithLabelValues(op).Inc()
}

func (m *Metrics) IncUpload(ok bool) {
	if m == nil || m.uploads == nil {
		return
	}
	m.uploads.WithLabelValues(outcome(ok)).Inc()
}

func outcome(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}

func registerCounterVec(registerer prometheus.Registerer, counter *prometheus.CounterVec) *prometheus.CounterVec {
	if err := registerer.Register(counter); err != nil {
		if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := already.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing
			}
		}
	}
	return counter
}
