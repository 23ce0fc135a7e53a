// Package config provides configuration management for pgov.
// Configuration is loaded from (highest to lowest priority):
// 1. Command-line flags
// 2. Environment variables (PGOV_*)
// 3. Project config (.pgov/config.yaml in cwd)
// 4. Home config (~/.pgov/config.yaml)
// 5. Defaults
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all pgov configuration.
type Config struct {
	// ArtifactDir is the governance artifact directory (default: .pgov).
	ArtifactDir string `yaml:"artifact_dir" json:"artifact_dir"`

	// Verbose enables verbose output.
	Verbose bool `yaml:"verbose" json:"verbose"`

	// Thresholds for the analytical engines.
	Thresholds ThresholdConfig `yaml:"thresholds" json:"thresholds"`

	// Futures settings for the Monte-Carlo forecaster.
	Futures FuturesConfig `yaml:"futures" json:"futures"`

	// Review settings.
	Review ReviewConfig `yaml:"review" json:"review"`
}

// ThresholdConfig holds the trip points the engines compare against.
type ThresholdConfig struct {
	// Cluster is the minimum merge similarity for federation clustering.
	Cluster float64 `yaml:"cluster" json:"cluster"`

	// Outlier marks projects below this mean similarity as outliers.
	Outlier float64 `yaml:"outlier" json:"outlier"`

	// Volatility trips an autopilot reason above this forecast index.
	Volatility float64 `yaml:"volatility" json:"volatility"`

	// Drift trips an autopilot reason above this drift score.
	Drift float64 `yaml:"drift" json:"drift"`

	// Divergence trips an autopilot reason above 1 - system stability.
	Divergence float64 `yaml:"divergence" json:"divergence"`
}

// FuturesConfig holds forecaster settings.
type FuturesConfig struct {
	// Iterations is the Monte-Carlo sample count.
	Iterations int `yaml:"iterations" json:"iterations"`

	// WindowHours is the forecast horizon.
	WindowHours int `yaml:"window_hours" json:"window_hours"`

	// Seed drives the forecaster's PRNG; 0 means derive from the clock.
	Seed int64 `yaml:"seed" json:"seed"`
}

// ReviewConfig holds review settings.
type ReviewConfig struct {
	// Reviewer names the verdict author (a model tag or a person).
	Reviewer string `yaml:"reviewer" json:"reviewer"`
}

// Default config values (used in resolution and validation).
const (
	defaultArtifactDir = ".pgov"
	defaultReviewer    = "heuristic"
)

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		ArtifactDir: defaultArtifactDir,
		Verbose:     false,
		Thresholds: ThresholdConfig{
			Cluster:    0.5,
			Outlier:    0.3,
			Volatility: 0.6,
			Drift:      0.5,
			Divergence: 0.5,
		},
		Futures: FuturesConfig{
			Iterations:  500,
			WindowHours: 4,
		},
		Review: ReviewConfig{
			Reviewer: defaultReviewer,
		},
	}
}

// Load loads configuration with proper precedence.
// Priority: flags > env > project > home > defaults
func Load(flagOverrides *Config) (*Config, error) {
	cfg := Default()

	// Load home config
	homeConfig, _ := loadFromPath(homeConfigPath())
	if homeConfig != nil {
		cfg = merge(cfg, homeConfig)
	}

	// Load project config
	projectConfig, _ := loadFromPath(projectConfigPath())
	if projectConfig != nil {
		cfg = merge(cfg, projectConfig)
	}

	// Apply environment variables
	cfg = applyEnv(cfg)

	// Apply flag overrides
	if flagOverrides != nil {
		cfg = merge(cfg, flagOverrides)
	}

	return cfg, nil
}

// homeConfigPath returns the home config path.
func homeConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".pgov", "config.yaml")
}

// projectConfigPath returns the project config path.
func projectConfigPath() string {
	if override := strings.TrimSpace(os.Getenv("PGOV_CONFIG")); override != "" {
		return override
	}
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return filepath.Join(cwd, ".pgov", "config.yaml")
}

// loadFromPath loads config from a YAML file.
func loadFromPath(path string) (*Config, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyEnv applies environment variable overrides.
func applyEnv(cfg *Config) *Config {
	if v := os.Getenv("PGOV_ARTIFACT_DIR"); v != "" {
		cfg.ArtifactDir = v
	}
	if os.Getenv("PGOV_VERBOSE") == "true" || os.Getenv("PGOV_VERBOSE") == "1" {
		cfg.Verbose = true
	}
	if v := envFloat("PGOV_CLUSTER_THRESHOLD"); v != 0 {
		cfg.Thresholds.Cluster = v
	}
	if v := envFloat("PGOV_OUTLIER_THRESHOLD"); v != 0 {
		cfg.Thresholds.Outlier = v
	}
	if v := envFloat("PGOV_VOLATILITY_THRESHOLD"); v != 0 {
		cfg.Thresholds.Volatility = v
	}
	if v := envFloat("PGOV_DRIFT_THRESHOLD"); v != 0 {
		cfg.Thresholds.Drift = v
	}
	if v := envFloat("PGOV_DIVERGENCE_THRESHOLD"); v != 0 {
		cfg.Thresholds.Divergence = v
	}
	if v := envInt("PGOV_FUTURES_ITERATIONS"); v != 0 {
		cfg.Futures.Iterations = v
	}
	if v := envInt("PGOV_FUTURES_WINDOW_HOURS"); v != 0 {
		cfg.Futures.WindowHours = v
	}
	if v := os.Getenv("PGOV_FUTURES_SEED"); v != "" {
		if seed, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Futures.Seed = seed
		}
	}
	if v := os.Getenv("PGOV_REVIEWER"); v != "" {
		cfg.Review.Reviewer = v
	}
	return cfg
}

func envFloat(key string) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return 0
	}
	return v
}

func envInt(key string) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return 0
	}
	return v
}

// mergeStr overwrites dst with src when src is non-empty.
func mergeStr(dst *string, src string) {
	if src != "" {
		*dst = src
	}
}

// mergeInt overwrites dst with src when src is non-zero.
func mergeInt(dst *int, src int) {
	if src != 0 {
		*dst = src
	}
}

// mergeFloat overwrites dst with src when src is non-zero.
func mergeFloat(dst *float64, src float64) {
	if src != 0 {
		*dst = src
	}
}

// merge merges src into dst, with src values taking precedence.
func merge(dst, src *Config) *Config {
	mergeStr(&dst.ArtifactDir, src.ArtifactDir)
	if src.Verbose {
		dst.Verbose = true
	}

	mergeThresholds(&dst.Thresholds, &src.Thresholds)
	mergeFutures(&dst.Futures, &src.Futures)
	mergeStr(&dst.Review.Reviewer, src.Review.Reviewer)

	return dst
}

// mergeThresholds merges threshold config fields.
func mergeThresholds(dst, src *ThresholdConfig) {
	mergeFloat(&dst.Cluster, src.Cluster)
	mergeFloat(&dst.Outlier, src.Outlier)
	mergeFloat(&dst.Volatility, src.Volatility)
	mergeFloat(&dst.Drift, src.Drift)
	mergeFloat(&dst.Divergence, src.Divergence)
}

// mergeFutures merges forecaster config fields.
func mergeFutures(dst, src *FuturesConfig) {
	mergeInt(&dst.Iterations, src.Iterations)
	mergeInt(&dst.WindowHours, src.WindowHours)
	if src.Seed != 0 {
		dst.Seed = src.Seed
	}
}
