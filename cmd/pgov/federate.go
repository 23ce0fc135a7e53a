package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/policyops/pgov/internal/artifact"
	"github.com/policyops/pgov/internal/federate"
	"github.com/policyops/pgov/internal/policy"
)

var federateProjectID string

var federateCmd = &cobra.Command{
	Use:   "federate-policy <policy-file>...",
	Short: "Compare policies across projects and build consensus",
	Long: `Run one federation pass over this project's policy plus the given
peer policy documents: pairwise similarity, clustering, outliers, the three
consensus rule sets, and the influence graph.

Each argument is a peer project's policy document (JSON or YAML); the peer's
project ID is taken from the document, falling back to the file name. This
project's own snapshot comes from the artifact directory.

Exit codes:
  0  converged (one cluster, no outliers)
  1  diverged
  2  federation failure

Examples:
  pgov federate-policy ../svc-b/.pgov/policy.yaml ../svc-c/.pgov/policy.yaml`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFederate,
}

func init() {
	rootCmd.AddCommand(federateCmd)
	federateCmd.Flags().StringVar(&federateProjectID, "project-id", "local", "This project's ID in the federation")
}

func runFederate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return failExit(2, err)
	}
	store, err := openStore(cfg)
	if err != nil {
		return failExit(2, err)
	}

	snapshots, err := localSnapshot(cfg.ArtifactDir, store)
	if err != nil {
		return failExit(2, err)
	}
	for _, path := range args {
		doc, err := policy.Load(path)
		if err != nil {
			return failExit(2, fmt.Errorf("load peer policy %s: %w", path, err))
		}
		id := doc.ProjectID
		if id == "" {
			id = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		}
		snapshots = append(snapshots, federate.ProjectSnapshot{ProjectID: id, Policy: doc})
	}

	health, err := federate.Analyze(snapshots, federate.Options{
		ClusterThreshold: cfg.Thresholds.Cluster,
		OutlierThreshold: cfg.Thresholds.Outlier,
	})
	if err != nil {
		return failExit(2, err)
	}

	if _, err := store.Write(artifact.CategoryFederated, health); err != nil {
		return failExit(2, err)
	}
	if err := emit(health); err != nil {
		return failExit(2, err)
	}

	if len(health.Clusters) > 1 || len(health.Outliers) > 0 {
		return severityExit(1)
	}
	return nil
}

// localSnapshot builds this project's snapshot from the artifact directory.
// A missing local policy just means the federation runs over the peers.
func localSnapshot(dir string, store artifact.Store) ([]federate.ProjectSnapshot, error) {
	doc, err := policy.Find(dir)
	if errors.Is(err, policy.ErrNoPolicy) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	snap := federate.ProjectSnapshot{ProjectID: federateProjectID, Policy: doc}
	if doc.ProjectID != "" {
		snap.ProjectID = doc.ProjectID
	}

	if analysis, err := latestDrift(store); err != nil {
		return nil, err
	} else if analysis != nil {
		snap.DriftScore = analysis.OverallDriftScore
	}
	if verdicts, err := loadVerdicts(store); err != nil {
		return nil, err
	} else {
		snap.ReviewHistory = verdicts
	}
	if recs, err := loadRecommendations(store); err != nil {
		return nil, err
	} else {
		snap.InferenceHistory = recs
	}
	return []federate.ProjectSnapshot{snap}, nil
}
