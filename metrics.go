package main

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the service's prometheus instruments on a private registry so
// multiple server instances (tests) never collide on registration.
type Metrics struct {
	registry *prometheus.Registry

	predictions  *prometheus.CounterVec
	predictErrs  prometheus.Counter
	inferDur     prometheus.Summary
	artifactTS   prometheus.Gauge
	httpRequests *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.predictions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ohca",
		Name:      "predictions_total",
		Help:      "Predictions served, by recommendation bucket.",
	}, []string{"recommendation"})

	m.predictErrs = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "ohca",
		Name:      "prediction_errors_total",
		Help:      "Prediction requests that failed during imputation or inference.",
	})

	m.inferDur = prometheus.NewSummary(prometheus.SummaryOpts{
		Namespace:  "ohca",
		Name:       "inference_duration_seconds",
		Help:       "Time spent in imputer transform plus forest inference.",
		Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
	})

	m.artifactTS = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "ohca",
		Name:      "artifact_load_timestamp_seconds",
		Help:      "Unix time when the model artifacts were loaded.",
	})

	m.httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ohca",
		Name:      "http_requests_total",
		Help:      "HTTP requests, by path and status code.",
	}, []string{"path", "code"})

	m.registry.MustRegister(m.predictions, m.predictErrs, m.inferDur, m.artifactTS, m.httpRequests)
	return m
}

func (m *Metrics) ObservePrediction(rec Recommendation, dur time.Duration) {
	m.predictions.WithLabelValues(string(rec)).Inc()
	m.inferDur.Observe(dur.Seconds())
}

func (m *Metrics) ObservePredictionError() {
	m.predictErrs.Inc()
}

func (m *Metrics) MarkArtifactsLoaded(at time.Time) {
	m.artifactTS.Set(float64(at.Unix()))
}
