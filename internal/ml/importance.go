package ml

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// emaAlpha is the weight of the newest observation in the running averages.
const emaAlpha = 0.1

// ImportanceTracker accumulates statistics about the clinical inputs seen
// by the service and the importance the ensemble attributed to them.
type ImportanceTracker struct {
	mu       sync.RWMutex
	stats    map[Feature]*FeatureStats
	savePath string
}

// FeatureStats contains statistics for a single clinical feature. Min and
// max are only meaningful once UsageCount is positive.
type FeatureStats struct {
	Name            Feature   `json:"name"`
	ImportanceScore float64   `json:"importance_score"`
	UsageCount      int64     `json:"usage_count"`
	AverageValue    float64   `json:"average_value"`
	MinValue        float64   `json:"min_value"`
	MaxValue        float64   `json:"max_value"`
	LastUpdated     time.Time `json:"last_updated"`
}

// NewImportanceTracker creates a tracker. When savePath is set, previously
// saved statistics are loaded from it.
func NewImportanceTracker(savePath string) *ImportanceTracker {
	t := &ImportanceTracker{
		stats:    make(map[Feature]*FeatureStats, len(ClinicalFeatures)),
		savePath: savePath,
	}
	t.resetLocked()

	if savePath != "" {
		if err := t.Load(); err != nil {
			log.Warn().Err(err).Str("path", savePath).Msg("Failed to load feature importance data")
		}
	}

	return t
}

func newFeatureStats(f Feature) *FeatureStats {
	return &FeatureStats{
		Name:        f,
		LastUpdated: time.Now(),
	}
}

// Observe records one scored feature vector and the importance the
// ensemble attributed to each feature.
func (t *ImportanceTracker) Observe(fv FeatureVector, importance Importance) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	for _, f := range ClinicalFeatures {
		stats := t.stats[f]
		value := fv.Clinical(f)

		stats.UsageCount++
		if stats.UsageCount == 1 {
			stats.AverageValue = value
			stats.ImportanceScore = importance[f]
			stats.MinValue = value
			stats.MaxValue = value
		} else {
			stats.AverageValue = emaAlpha*value + (1-emaAlpha)*stats.AverageValue
			stats.ImportanceScore = emaAlpha*importance[f] + (1-emaAlpha)*stats.ImportanceScore
		}

		if value < stats.MinValue {
			stats.MinValue = value
		}
		if value > stats.MaxValue {
			stats.MaxValue = value
		}
		stats.LastUpdated = now
	}
}

// Snapshot returns a copy of the current statistics.
func (t *ImportanceTracker) Snapshot() map[Feature]FeatureStats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make(map[Feature]FeatureStats, len(t.stats))
	for f, stats := range t.stats {
		out[f] = *stats
	}
	return out
}

// TopFeatures returns the n features with the highest importance score.
// Ties are broken by canonical feature order.
func (t *ImportanceTracker) TopFeatures(n int) []Feature {
	t.mu.RLock()
	defer t.mu.RUnlock()

	features := append([]Feature(nil), ClinicalFeatures...)
	sort.SliceStable(features, func(i, j int) bool {
		return t.stats[features[i]].ImportanceScore > t.stats[features[j]].ImportanceScore
	})

	if n < 0 {
		n = 0
	}
	if n > len(features) {
		n = len(features)
	}
	return features[:n]
}

// Save writes the statistics to disk as JSON.
func (t *ImportanceTracker) Save() error {
	if t.savePath == "" {
		return nil
	}

	t.mu.RLock()
	data, err := json.MarshalIndent(t.stats, "", "  ")
	t.mu.RUnlock()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(t.savePath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(t.savePath, data, 0o600)
}

// Load replaces the statistics with those saved on disk. A missing file is
// not an error. Unknown features in the file are ignored.
func (t *ImportanceTracker) Load() error {
	if t.savePath == "" {
		return nil
	}

	data, err := os.ReadFile(t.savePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var loaded map[Feature]*FeatureStats
	if err := json.Unmarshal(data, &loaded); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	for _, f := range ClinicalFeatures {
		if stats, ok := loaded[f]; ok && stats != nil {
			stats.Name = f
			t.stats[f] = stats
		}
	}
	return nil
}

// Reset clears all statistics.
func (t *ImportanceTracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resetLocked()
}

func (t *ImportanceTracker) resetLocked() {
	for _, f := range ClinicalFeatures {
		t.stats[f] = newFeatureStats(f)
	}
}
