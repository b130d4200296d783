package metrics

import "strconv"

// MetricsWrapper adapts Metrics to the narrow interfaces the engine, the
// HTTP server and the dashboard depend on, so those packages do not import
// Prometheus.
type MetricsWrapper struct {
	m *Metrics
}

func NewWrapper(m *Metrics) *MetricsWrapper {
	return &MetricsWrapper{m: m}
}

func (w *MetricsWrapper) PredictionsInc(model string) {
	w.m.Predictions.WithLabelValues(model).Inc()
}

func (w *MetricsWrapper) PredictionLatencyObserve(seconds float64) {
	w.m.PredictionLatency.Observe(seconds)
}

func (w *MetricsWrapper) RiskScoreObserve(model string, score float64) {
	w.m.RiskScores.WithLabelValues(model).Observe(score)
}

func (w *MetricsWrapper) PositiveStatusInc(model string) {
	w.m.PositiveStatus.WithLabelValues(model).Inc()
}

func (w *MetricsWrapper) StorageErrorsInc() {
	w.m.StorageErrors.Inc()
}

func (w *MetricsWrapper) HTTPRequestInc(route string, code int) {
	w.m.HTTPRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}

func (w *MetricsWrapper) RateLimitedInc() {
	w.m.RateLimited.Inc()
}

func (w *MetricsWrapper) WSClientsSet(n int) {
	w.m.WSClients.Set(float64(n))
}
