package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/policyops/pgov/internal/config"
)

var (
	// Global flags
	verbose     bool
	artifactDir string
	outputPath  string
	cfgFile     string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "pgov",
	Short: "Policy governance analytics for autonomous coding agents",
	Long: `pgov analyzes the decision traces of an autonomous coding agent's
policy evaluator and turns them into governance signals.

Pipeline commands (each reads earlier stages' artifacts and writes its own):
  infer-policy     Mine traces for recommended policy changes
  review-policy    Assign approve/reject/revise verdicts to recommendations
  detect-drift     Score policy behavior instability over a time window
  federate-policy  Compare policies across projects and build consensus
  forecast-policy  Monte-Carlo forecast of near-term policy risk
  simulate-policy  Replay traces against an alternate policy
  autopilot-cycle  Fuse all signals into one risk verdict
  make-runbook     Turn the risk verdict into a remediation plan

Exit codes carry severity so calling automation can branch on them; see each
command's help for its contract.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		syncConfigFlagToEnv()
	},
}

// exitError carries a specific process exit code up to Execute. A nil
// wrapped error means the result was already printed and only the code
// matters.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err != nil {
		return e.err.Error()
	}
	return fmt.Sprintf("exit code %d", e.code)
}

func (e *exitError) Unwrap() error {
	return e.err
}

// severityExit signals a non-zero severity exit after a successful run.
func severityExit(code int) error {
	return &exitError{code: code}
}

// failExit wraps a real failure with the command's failure exit code.
func failExit(code int, err error) error {
	return &exitError{code: code, err: err}
}

// Execute runs the root command and maps errors to process exit codes.
func Execute() {
	err := rootCmd.Execute()
	if err == nil {
		return
	}
	var ee *exitError
	if errors.As(err, &ee) {
		if ee.err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", ee.err)
		}
		os.Exit(ee.code)
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func init() {
	// Global flags available to all commands
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&artifactDir, "artifact-dir", "", "Governance artifact directory (default: .pgov)")
	rootCmd.PersistentFlags().StringVarP(&outputPath, "output", "o", "", "Write the result to a file instead of stdout")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: ~/.pgov/config.yaml)")
}

// loadConfig resolves configuration with the global flags applied on top.
func loadConfig() (*config.Config, error) {
	overrides := &config.Config{
		ArtifactDir: artifactDir,
		Verbose:     verbose,
	}
	cfg, err := config.Load(overrides)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// VerbosePrintf prints only when verbose mode is enabled.
func VerbosePrintf(format string, args ...interface{}) {
	if verbose {
		fmt.Printf(format, args...)
	}
}

func syncConfigFlagToEnv() {
	path := strings.TrimSpace(cfgFile)
	if path == "" {
		return
	}
	_ = os.Setenv("PGOV_CONFIG", path)
}
