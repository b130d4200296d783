package ml

import "sync"

// MockMetrics implements MetricsInterface for testing
type MockMetrics struct {
	mu          sync.Mutex
	predictions map[string]int
	positives   map[string]int
	latencies   int
	riskScores  []float64
}

func NewMockMetrics() *MockMetrics {
	return &MockMetrics{
		predictions: make(map[string]int),
		positives:   make(map[string]int),
	}
}

func (m *MockMetrics) PredictionsInc(model string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.predictions[model]++
}

func (m *MockMetrics) PredictionLatencyObserve(float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latencies++
}

func (m *MockMetrics) RiskScoreObserve(_ string, score float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.riskScores = append(m.riskScores, score)
}

func (m *MockMetrics) PositiveStatusInc(model string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.positives[model]++
}

func (m *MockMetrics) GetPredictions(model string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.predictions[model]
}

func (m *MockMetrics) GetPositives(model string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.positives[model]
}

func (m *MockMetrics) GetLatencyCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.latencies
}

func (m *MockMetrics) GetRiskScoresCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.riskScores)
}
