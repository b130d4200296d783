package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"parkinson-insight/internal/client"
	"parkinson-insight/internal/common"
	"parkinson-insight/internal/evaluation"
	"parkinson-insight/internal/ml"
	"parkinson-insight/internal/sample"
)

func main() {
	var (
		input      = flag.String("input", "", "Labelled samples file (CSV or JSON)")
		format     = flag.String("format", "auto", "Input format: auto, csv, json")
		synthetic  = flag.Int("synthetic", 0, "Generate this many synthetic samples instead of reading -input")
		seed       = flag.Int64("seed", 1, "Seed for synthetic samples")
		outputPath = flag.String("output", "evaluation", "Output directory for reports")
		remote     = flag.String("remote", "", "Score against a running service at this URL instead of in-process")
		apiKey     = flag.String("api-key", os.Getenv(common.EnvAPIKey), "API key for -remote")
		logLevel   = flag.String("log-level", "info", "Log level: debug, info, warn, error")
	)
	flag.Parse()

	level, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	fmt.Println("=== Evaluation Configuration ===")
	if *synthetic > 0 {
		fmt.Printf("Synthetic Samples: %d (seed %d)\n", *synthetic, *seed)
	} else {
		fmt.Printf("Input: %s (%s)\n", *input, *format)
	}
	if *remote != "" {
		fmt.Printf("Remote: %s\n", *remote)
	}
	fmt.Printf("Output Directory: %s\n", *outputPath)
	fmt.Println("================================")

	loader := evaluation.NewDataLoader()
	if *synthetic > 0 {
		loader.LoadSamples(sample.NewGenerator(*seed).Generate(*synthetic))
	} else if err := loadData(loader, *input, *format); err != nil {
		log.Fatal().Err(err).Msg("Failed to load data")
	}

	var scorer evaluation.Scorer
	if *remote != "" {
		c := client.New(*remote, *apiKey, 10*time.Second)
		if _, err := c.Health(); err != nil {
			log.Fatal().Err(err).Str("remote", *remote).Msg("Service is not reachable")
		}
		scorer = evaluation.ScorerFunc(func(fv ml.FeatureVector) (ml.EnsembleResult, error) {
			return c.PredictEnsemble(fv, "")
		})
	} else {
		scorer = evaluation.LocalScorer(ml.NewEngine(nil, nil))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	results, err := evaluation.NewEvaluator(scorer, loader).Run(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Evaluation failed")
	}

	reporter := evaluation.NewReporter(results, *outputPath)
	if err := reporter.GenerateReport(); err != nil {
		log.Error().Err(err).Msg("Failed to generate reports")
	}

	reporter.PrintSummary()

	log.Info().
		Str("output", *outputPath).
		Msg("Evaluation completed successfully")
}

// loadData reads path in the given format, detecting it from the file
// extension when format is auto.
func loadData(loader *evaluation.DataLoader, path, format string) error {
	if path == "" {
		return fmt.Errorf("either -input or -synthetic is required")
	}

	if format == "auto" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".csv":
			format = "csv"
		case ".json", ".jsonl", ".ndjson":
			format = "json"
		default:
			return fmt.Errorf("cannot determine file format for: %s", path)
		}
	}

	switch format {
	case "csv":
		return loader.LoadFromCSV(path)
	case "json":
		return loader.LoadFromJSON(path)
	default:
		return fmt.Errorf("unknown data format %q", format)
	}
}
