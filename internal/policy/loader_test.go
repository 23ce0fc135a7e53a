package policy

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/policyops/pgov/internal/trace"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestFindPriorityOrder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "policy.yaml", "rules:\n  - id: from-yaml\n    effect: deny\n")
	writeFile(t, dir, "policy.json", `{"rules":[{"id":"from-json","effect":"allow"}]}`)

	doc, err := Find(dir)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(doc.Rules) != 1 || doc.Rules[0].ID != "from-json" {
		t.Errorf("policy.json must win over policy.yaml, got %+v", doc.Rules)
	}
}

func TestFindSnapshotFallback(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "policy-snapshot-2026-01-01.json", `{"rules":[{"id":"old","effect":"allow"}]}`)
	writeFile(t, dir, "policy-snapshot-2026-02-01.json", `{"rules":[{"id":"new","effect":"allow"}]}`)

	doc, err := Find(dir)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if doc.Rules[0].ID != "new" {
		t.Errorf("newest snapshot must win, got %s", doc.Rules[0].ID)
	}
}

func TestFindMissing(t *testing.T) {
	_, err := Find(t.TempDir())
	if !errors.Is(err, ErrNoPolicy) {
		t.Errorf("expected ErrNoPolicy, got %v", err)
	}
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "policy.yaml", `
version: "2"
default_decision: review
rules:
  - id: allow-workspace
    effect: allow
    priority: 3
    actions: [write-file]
    match:
      path_prefixes: ["/workspace/"]
`)
	doc, err := Load(filepath.Join(dir, "policy.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if doc.Default() != trace.DecisionReview {
		t.Errorf("expected review default, got %s", doc.Default())
	}
	if doc.Rules[0].Match.PathPrefixes[0] != "/workspace/" {
		t.Errorf("match block not parsed: %+v", doc.Rules[0].Match)
	}
}
