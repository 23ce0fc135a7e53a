package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/policyops/pgov/internal/artifact"
	"github.com/policyops/pgov/internal/config"
	"github.com/policyops/pgov/internal/drift"
	"github.com/policyops/pgov/internal/federate"
	"github.com/policyops/pgov/internal/futures"
	"github.com/policyops/pgov/internal/inference"
	"github.com/policyops/pgov/internal/review"
	"github.com/policyops/pgov/internal/trace"
)

// openStore opens the artifact directory as a store, wiring skip warnings to
// stderr.
func openStore(cfg *config.Config) (*artifact.FileStore, error) {
	store, err := artifact.NewFileStore(cfg.ArtifactDir)
	if err != nil {
		return nil, err
	}
	store.Warnf = func(format string, args ...any) {
		fmt.Fprintf(os.Stderr, "warning: "+format+"\n", args...)
	}
	return store, nil
}

// emit writes the result to --output when set, otherwise pretty-prints it to
// stdout.
func emit(result any) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	data = append(data, '\n')

	if outputPath != "" {
		if err := os.WriteFile(outputPath, data, 0644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		VerbosePrintf("result written to %s\n", outputPath)
		return nil
	}
	_, err = os.Stdout.Write(data)
	return err
}

// loadTraces reads the full trace history, oldest first.
func loadTraces(store artifact.Store) ([]trace.PolicyTrace, error) {
	var traces []trace.PolicyTrace
	if err := store.List(artifact.CategoryTrace, &traces); err != nil {
		return nil, fmt.Errorf("load traces: %w", err)
	}
	return traces, nil
}

// loadRecommendations flattens every inference artifact into one
// recommendation history.
func loadRecommendations(store artifact.Store) ([]inference.Recommendation, error) {
	var results []inference.Result
	if err := store.List(artifact.CategoryRecommendation, &results); err != nil {
		return nil, fmt.Errorf("load recommendations: %w", err)
	}
	var recs []inference.Recommendation
	for _, r := range results {
		recs = append(recs, r.Recommendations...)
	}
	return recs, nil
}

// loadVerdicts flattens every review artifact into one verdict history.
func loadVerdicts(store artifact.Store) ([]review.Verdict, error) {
	var results []review.Result
	if err := store.List(artifact.CategoryReview, &results); err != nil {
		return nil, fmt.Errorf("load verdicts: %w", err)
	}
	var verdicts []review.Verdict
	for _, r := range results {
		verdicts = append(verdicts, r.Verdicts...)
	}
	return verdicts, nil
}

// loadDriftHistory reads every drift analysis, oldest first.
func loadDriftHistory(store artifact.Store) ([]drift.Analysis, error) {
	var history []drift.Analysis
	if err := store.List(artifact.CategoryDrift, &history); err != nil {
		return nil, fmt.Errorf("load drift history: %w", err)
	}
	return history, nil
}

// latestDrift returns the newest drift analysis, or nil when none exists.
func latestDrift(store artifact.Store) (*drift.Analysis, error) {
	var a drift.Analysis
	err := store.FindLatest(artifact.CategoryDrift, &a)
	if errors.Is(err, artifact.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load drift analysis: %w", err)
	}
	return &a, nil
}

// latestForecast returns the newest futures result, or nil when none exists.
func latestForecast(store artifact.Store) (*futures.Result, error) {
	var f futures.Result
	err := store.FindLatest(artifact.CategoryFutures, &f)
	if errors.Is(err, artifact.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load forecast: %w", err)
	}
	return &f, nil
}

// latestFederation returns the newest federation health, or nil when none
// exists.
func latestFederation(store artifact.Store) (*federate.Health, error) {
	var h federate.Health
	err := store.FindLatest(artifact.CategoryFederated, &h)
	if errors.Is(err, artifact.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load federation health: %w", err)
	}
	return &h, nil
}
