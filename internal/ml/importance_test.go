package ml

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportanceTracker_Observe(t *testing.T) {
	tracker := NewImportanceTracker("")

	tracker.Observe(FeatureVector{Tremor: 2}, Importance{FeatureTremor: 0.2})
	tracker.Observe(FeatureVector{Tremor: 8}, Importance{FeatureTremor: 0.4})

	stats := tracker.Snapshot()[FeatureTremor]
	assert.Equal(t, int64(2), stats.UsageCount)
	assert.InDelta(t, 0.1*8+0.9*2, stats.AverageValue, 1e-12)
	assert.InDelta(t, 0.1*0.4+0.9*0.2, stats.ImportanceScore, 1e-12)
	assert.Equal(t, 2.0, stats.MinValue)
	assert.Equal(t, 8.0, stats.MaxValue)

	// Features missing from the importance map count as zero.
	assert.Equal(t, 0.0, tracker.Snapshot()[FeatureRigidity].ImportanceScore)
	assert.Equal(t, int64(2), tracker.Snapshot()[FeatureRigidity].UsageCount)
}

func TestImportanceTracker_TopFeatures(t *testing.T) {
	tracker := NewImportanceTracker("")
	tracker.Observe(FeatureVector{}, Importance{
		FeatureTremor:       0.1,
		FeatureRigidity:     0.5,
		FeatureBradykinesia: 0.3,
	})

	assert.Equal(t, []Feature{FeatureRigidity, FeatureBradykinesia}, tracker.TopFeatures(2))
	assert.Empty(t, tracker.TopFeatures(0))
	assert.Empty(t, tracker.TopFeatures(-1))
	assert.Len(t, tracker.TopFeatures(10), len(ClinicalFeatures))
}

func TestImportanceTracker_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "insights", "importance.json")

	tracker := NewImportanceTracker(path)
	fv := uniformClinical(4, 60)
	tracker.Observe(fv, Ensemble(fv).FeatureImportance)
	require.NoError(t, tracker.Save())

	_, err := os.Stat(path)
	require.NoError(t, err)

	loaded := NewImportanceTracker(path)
	want := tracker.Snapshot()
	got := loaded.Snapshot()
	for _, f := range ClinicalFeatures {
		assert.Equal(t, want[f].UsageCount, got[f].UsageCount, string(f))
		assert.InDelta(t, want[f].ImportanceScore, got[f].ImportanceScore, 1e-12, string(f))
		assert.InDelta(t, want[f].AverageValue, got[f].AverageValue, 1e-12, string(f))
	}
}

func TestImportanceTracker_SaveFreshTracker(t *testing.T) {
	path := filepath.Join(t.TempDir(), "importance.json")
	require.NoError(t, NewImportanceTracker(path).Save())
}

func TestImportanceTracker_LoadMissingFile(t *testing.T) {
	tracker := NewImportanceTracker(filepath.Join(t.TempDir(), "missing.json"))
	assert.NoError(t, tracker.Load())
}

func TestImportanceTracker_LoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "importance.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	tracker := NewImportanceTracker(path)
	assert.Error(t, tracker.Load())
	assert.Len(t, tracker.Snapshot(), len(ClinicalFeatures))
}

func TestImportanceTracker_Reset(t *testing.T) {
	tracker := NewImportanceTracker("")
	tracker.Observe(uniformClinical(5, 60), Importance{FeatureTremor: 1})
	tracker.Reset()

	for _, stats := range tracker.Snapshot() {
		assert.Zero(t, stats.UsageCount)
		assert.Zero(t, stats.ImportanceScore)
	}
}

func TestImportanceTracker_Concurrent(t *testing.T) {
	tracker := NewImportanceTracker("")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tracker.Observe(uniformClinical(3, 60), Importance{FeatureTremor: 0.2})
			tracker.TopFeatures(3)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(20), tracker.Snapshot()[FeatureTremor].UsageCount)
}
