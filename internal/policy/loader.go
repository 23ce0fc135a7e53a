package policy

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// candidateNames are the policy document filenames probed in the artifact
// root, in priority order. The first existing file wins.
var candidateNames = []string{
	"policy.json",
	"policy.yaml",
	"policies.json",
}

// snapshotGlob matches timestamped policy snapshot files, used when none of
// the fixed names exist. The lexically last (newest) snapshot wins.
const snapshotGlob = "policy-snapshot*.json"

// Find locates the policy document in the artifact root and loads it.
func Find(artifactDir string) (*Document, error) {
	for _, name := range candidateNames {
		path := filepath.Join(artifactDir, name)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}

	matches, err := filepath.Glob(filepath.Join(artifactDir, snapshotGlob))
	if err == nil && len(matches) > 0 {
		sort.Strings(matches)
		return Load(matches[len(matches)-1])
	}

	return nil, fmt.Errorf("%w: no policy document in %s", ErrNoPolicy, artifactDir)
}

// Load reads a policy document from a JSON or YAML file, keyed on extension.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy %s: %w", path, err)
	}

	var doc Document
	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse policy %s: %w", path, err)
		}
	} else {
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse policy %s: %w", path, err)
		}
	}

	return &doc, nil
}
