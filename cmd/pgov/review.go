package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/policyops/pgov/internal/artifact"
	"github.com/policyops/pgov/internal/inference"
	"github.com/policyops/pgov/internal/review"
)

var (
	reviewModel       string
	reviewInteractive bool
)

var reviewCmd = &cobra.Command{
	Use:   "review-policy",
	Short: "Assign verdicts to the latest policy recommendations",
	Long: `Review the newest inference result and record an approve, reject, or
revise verdict for each recommendation. By default the built-in heuristic
reviewer decides; with --interactive on a terminal, a human is prompted for
each verdict.

Exit codes:
  0  verdicts produced
  1  governance flag raised (decisive rejection of the recommendations)

Examples:
  pgov review-policy
  pgov review-policy --model ops-team --interactive`,
	RunE: runReview,
}

func init() {
	rootCmd.AddCommand(reviewCmd)
	reviewCmd.Flags().StringVar(&reviewModel, "model", "", "Reviewer identity recorded on each verdict")
	reviewCmd.Flags().BoolVar(&reviewInteractive, "interactive", false, "Prompt for each verdict on the terminal")
}

func runReview(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}

	var latest inference.Result
	if err := store.FindLatest(artifact.CategoryRecommendation, &latest); err != nil {
		if errors.Is(err, artifact.ErrNotFound) {
			return fmt.Errorf("no inference result to review; run infer-policy first")
		}
		return err
	}

	reviewer := cfg.Review.Reviewer
	if reviewModel != "" {
		reviewer = reviewModel
	}

	var res *review.Result
	if reviewInteractive && review.IsInteractive() {
		res = review.NewSession(reviewer).Run(latest.Recommendations)
	} else {
		res = review.Review(latest.Recommendations, reviewer, time.Now())
	}

	if _, err := store.Write(artifact.CategoryReview, res); err != nil {
		return err
	}
	if err := emit(res); err != nil {
		return err
	}
	if res.Flagged {
		return severityExit(1)
	}
	return nil
}
