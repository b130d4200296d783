package evaluation

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"parkinson-insight/internal/ml"
	"parkinson-insight/internal/sample"
)

// requiredColumns must be present in a CSV header.
var requiredColumns = []string{
	"label", "tremor", "rigidity", "bradykinesia",
	"posturalInstability", "voiceChanges", "handwriting", "age",
}

// DataLoader holds the labelled samples an evaluation runs over.
type DataLoader struct {
	samples []sample.Sample
	skipped int
}

// NewDataLoader creates an empty loader.
func NewDataLoader() *DataLoader {
	return &DataLoader{}
}

// LoadSamples appends already-built samples, e.g. from the generator.
func (dl *DataLoader) LoadSamples(samples []sample.Sample) {
	dl.samples = append(dl.samples, samples...)
}

// LoadFromCSV loads samples from a CSV file with a header row. Acoustic
// columns are optional and an empty cell leaves the field unset. Rows that
// fail to parse are skipped.
func (dl *DataLoader) LoadFromCSV(filePath string) error {
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("failed to read CSV header: %w", err)
	}

	indices := make(map[string]int, len(header))
	for i, col := range header {
		indices[strings.TrimSpace(col)] = i
	}
	for _, col := range requiredColumns {
		if _, ok := indices[col]; !ok {
			return fmt.Errorf("CSV header is missing column %q", col)
		}
	}

	before := len(dl.samples)
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			log.Warn().Err(err).Int("line", line).Msg("Skipping unreadable CSV row")
			dl.skipped++
			continue
		}

		s, err := parseRow(record, indices)
		if err != nil {
			log.Warn().Err(err).Int("line", line).Msg("Skipping invalid CSV row")
			dl.skipped++
			continue
		}
		if s.ID == "" {
			s.ID = fmt.Sprintf("row-%d", line)
		}
		dl.samples = append(dl.samples, s)
	}

	log.Info().
		Str("file", filePath).
		Int("samples", len(dl.samples)-before).
		Int("skipped", dl.skipped).
		Msg("CSV data loaded successfully")

	return nil
}

func parseRow(record []string, indices map[string]int) (sample.Sample, error) {
	cell := func(col string) (string, bool) {
		idx, ok := indices[col]
		if !ok || idx >= len(record) {
			return "", false
		}
		v := strings.TrimSpace(record[idx])
		return v, v != ""
	}
	number := func(col string) (float64, error) {
		v, ok := cell(col)
		if !ok {
			return 0, fmt.Errorf("%s is empty", col)
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", col, err)
		}
		return f, nil
	}

	var s sample.Sample
	s.ID, _ = cell("id")

	label, err := number("label")
	if err != nil {
		return s, err
	}
	if label != 0 && label != 1 {
		return s, fmt.Errorf("label must be 0 or 1, got %v", label)
	}
	s.Label = int(label)

	fv := &s.Features
	for col, dst := range map[string]*float64{
		"tremor":              &fv.Tremor,
		"rigidity":            &fv.Rigidity,
		"bradykinesia":        &fv.Bradykinesia,
		"posturalInstability": &fv.PosturalInstability,
		"voiceChanges":        &fv.VoiceChanges,
		"handwriting":         &fv.Handwriting,
		"age":                 &fv.Age,
	} {
		if *dst, err = number(col); err != nil {
			return s, err
		}
	}

	for col, dst := range acousticColumns(&fv.AcousticFeatures) {
		if _, ok := cell(col); !ok {
			continue
		}
		v, err := number(col)
		if err != nil {
			return s, err
		}
		*dst = ml.Float(v)
	}

	return s, nil
}

// acousticColumns maps each acoustic wire name to its field in a.
func acousticColumns(a *ml.AcousticFeatures) map[string]**float64 {
	return map[string]**float64{
		"mdvpFo":      &a.MDVPFo,
		"mdvpFhi":     &a.MDVPFhi,
		"mdvpFlo":     &a.MDVPFlo,
		"mdvpJitter":  &a.MDVPJitter,
		"mdvpShimmer": &a.MDVPShimmer,
		"nhr":         &a.NHR,
		"hnr":         &a.HNR,
		"rpde":        &a.RPDE,
		"dfa":         &a.DFA,
		"spread1":     &a.Spread1,
		"spread2":     &a.Spread2,
		"d2":          &a.D2,
		"ppe":         &a.PPE,
	}
}

// LoadFromJSON loads samples from a JSON array or from a stream of
// concatenated sample objects.
func (dl *DataLoader) LoadFromJSON(filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to open JSON file: %w", err)
	}

	var samples []sample.Sample
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &samples); err != nil {
			return fmt.Errorf("failed to decode JSON array: %w", err)
		}
	} else {
		decoder := json.NewDecoder(bytes.NewReader(trimmed))
		for decoder.More() {
			var s sample.Sample
			if err := decoder.Decode(&s); err != nil {
				return fmt.Errorf("failed to decode JSON record %d: %w", len(samples)+1, err)
			}
			samples = append(samples, s)
		}
	}

	for i := range samples {
		if samples[i].Label != 0 && samples[i].Label != 1 {
			log.Warn().Str("id", samples[i].ID).Int("label", samples[i].Label).Msg("Skipping sample with invalid label")
			dl.skipped++
			continue
		}
		if samples[i].ID == "" {
			samples[i].ID = fmt.Sprintf("record-%d", i+1)
		}
		dl.samples = append(dl.samples, samples[i])
	}

	log.Info().
		Str("file", filePath).
		Int("samples", len(samples)).
		Msg("JSON data loaded successfully")

	return nil
}

// Samples returns the loaded samples.
func (dl *DataLoader) Samples() []sample.Sample {
	return dl.samples
}

// Count returns the number of loaded samples.
func (dl *DataLoader) Count() int {
	return len(dl.samples)
}

// Skipped returns how many input rows were rejected.
func (dl *DataLoader) Skipped() int {
	return dl.skipped
}
