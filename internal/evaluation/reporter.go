package evaluation

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

// Report file names written into the output directory.
const (
	SummaryFile     = "evaluation_summary.txt"
	JSONFile        = "evaluation.json"
	PredictionsFile = "predictions.csv"
)

// Reporter writes evaluation reports.
type Reporter struct {
	results    *Results
	outputPath string
}

// NewReporter creates a new reporter
func NewReporter(results *Results, outputPath string) *Reporter {
	return &Reporter{
		results:    results,
		outputPath: outputPath,
	}
}

// GenerateReport writes every report format.
func (r *Reporter) GenerateReport() error {
	if err := os.MkdirAll(r.outputPath, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := r.generateSummary(); err != nil {
		return err
	}
	if err := r.generateJSONReport(); err != nil {
		return err
	}
	return r.generatePredictionLog()
}

func (r *Reporter) generateSummary() error {
	summaryPath := filepath.Join(r.outputPath, SummaryFile)
	file, err := os.Create(summaryPath)
	if err != nil {
		return fmt.Errorf("failed to create summary file: %w", err)
	}
	defer file.Close()

	r.writeSummary(file)

	log.Info().Str("file", summaryPath).Msg("Summary report generated")
	return nil
}

func (r *Reporter) writeSummary(w io.Writer) {
	res := r.results

	fmt.Fprintf(w, "MODEL EVALUATION SUMMARY\n")
	fmt.Fprintf(w, "========================\n\n")
	fmt.Fprintf(w, "Samples: %d (%d positive, %d negative)\n",
		res.Samples, res.Positives, res.Samples-res.Positives)
	if res.Failed > 0 {
		fmt.Fprintf(w, "Failed: %d\n", res.Failed)
	}
	fmt.Fprintf(w, "Duration: %s\n\n", res.EndTime.Sub(res.StartTime).Round(time.Millisecond))

	fmt.Fprintf(w, "%-20s %9s %10s %8s %8s %9s %9s\n",
		"MODEL", "ACCURACY", "PRECISION", "RECALL", "F1", "APPROVAL", "MEANRISK")
	for _, s := range res.Models {
		fmt.Fprintf(w, "%-20s %8.2f%% %9.2f%% %7.2f%% %8.3f %8.2f%% %9.1f\n",
			s.Model, s.Accuracy*100, s.Precision*100, s.Recall*100,
			s.F1, s.ApprovalRate*100, s.MeanRiskScore)
	}

	if best, ok := res.Best(); ok {
		fmt.Fprintf(w, "\nBest F1: %s (%.3f)\n", best.Model, best.F1)
	}
}

func (r *Reporter) generateJSONReport() error {
	jsonPath := filepath.Join(r.outputPath, JSONFile)

	report := map[string]interface{}{
		"summary":      r.results,
		"generated_at": time.Now(),
	}
	if best, ok := r.results.Best(); ok {
		report["best_model"] = best.Model
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if err := os.WriteFile(jsonPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write JSON report: %w", err)
	}

	log.Info().Str("file", jsonPath).Msg("JSON report generated")
	return nil
}

func (r *Reporter) generatePredictionLog() error {
	csvPath := filepath.Join(r.outputPath, PredictionsFile)
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create prediction log: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	header := []string{"sample_id", "label", "model", "status", "risk_score", "probability"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, p := range r.results.Predictions {
		record := []string{
			p.SampleID,
			strconv.Itoa(p.Label),
			string(p.Model),
			strconv.Itoa(p.Status),
			strconv.Itoa(p.RiskScore),
			strconv.FormatFloat(p.Probability, 'f', 4, 64),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to write prediction log: %w", err)
	}

	log.Info().Str("file", csvPath).Msg("Prediction log generated")
	return nil
}

// PrintSummary prints the summary table to stdout.
func (r *Reporter) PrintSummary() {
	fmt.Println()
	r.writeSummary(os.Stdout)
}
