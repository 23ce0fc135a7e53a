package artifact

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/policyops/pgov/internal/trace"
)

func fileStore(t *testing.T) *FileStore {
	t.Helper()
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	return s
}

func sampleTrace(id string) trace.PolicyTrace {
	return trace.PolicyTrace{
		ActionID:      id,
		ActionType:    trace.ActionWriteFile,
		Timestamp:     time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		FinalDecision: trace.DecisionDeny,
		FinalRuleID:   "no-write-outside-sandbox",
		Summary:       "write file /etc/passwd",
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	s := fileStore(t)

	path, err := s.Write(CategoryTrace, sampleTrace("a1"))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !strings.HasSuffix(path, ".json") || !strings.Contains(path, "policy-trace") {
		t.Errorf("unexpected artifact path: %s", path)
	}
	base := filepath.Base(path)
	if !strings.HasPrefix(base, "trace-") {
		t.Errorf("filename must carry category prefix: %s", base)
	}

	var traces []trace.PolicyTrace
	if err := s.List(CategoryTrace, &traces); err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(traces) != 1 || traces[0].ActionID != "a1" {
		t.Fatalf("round trip lost data: %+v", traces)
	}
	if traces[0].FinalDecision != trace.DecisionDeny {
		t.Errorf("decision not preserved: %s", traces[0].FinalDecision)
	}
}

func TestFileStoreListOrderAndLatest(t *testing.T) {
	s := fileStore(t)
	clock := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	s.Now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	for _, id := range []string{"a1", "a2", "a3"} {
		if _, err := s.Write(CategoryTrace, sampleTrace(id)); err != nil {
			t.Fatalf("Write %s: %v", id, err)
		}
	}

	var traces []trace.PolicyTrace
	if err := s.List(CategoryTrace, &traces); err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(traces) != 3 {
		t.Fatalf("expected 3 traces, got %d", len(traces))
	}
	if traces[0].ActionID != "a1" || traces[2].ActionID != "a3" {
		t.Errorf("list must be oldest first: %v", []string{traces[0].ActionID, traces[1].ActionID, traces[2].ActionID})
	}

	var latest trace.PolicyTrace
	if err := s.FindLatest(CategoryTrace, &latest); err != nil {
		t.Fatalf("FindLatest: %v", err)
	}
	if latest.ActionID != "a3" {
		t.Errorf("expected newest trace a3, got %s", latest.ActionID)
	}
}

func TestFileStoreSkipsMalformed(t *testing.T) {
	s := fileStore(t)
	var warnings []string
	s.Warnf = func(format string, args ...any) {
		warnings = append(warnings, format)
	}

	if _, err := s.Write(CategoryTrace, sampleTrace("good")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	bad := filepath.Join(s.Root, CategoryTrace.Dir, "trace-zzz-malformed.json")
	if err := os.WriteFile(bad, []byte("{not json"), 0600); err != nil {
		t.Fatalf("plant malformed file: %v", err)
	}

	var traces []trace.PolicyTrace
	if err := s.List(CategoryTrace, &traces); err != nil {
		t.Fatalf("List must not fail on malformed files: %v", err)
	}
	if len(traces) != 1 || traces[0].ActionID != "good" {
		t.Errorf("expected only the valid trace, got %+v", traces)
	}
	if len(warnings) == 0 {
		t.Error("expected a skip warning for the malformed file")
	}

	// FindLatest must fall through the malformed newest file.
	var latest trace.PolicyTrace
	if err := s.FindLatest(CategoryTrace, &latest); err != nil {
		t.Fatalf("FindLatest: %v", err)
	}
	if latest.ActionID != "good" {
		t.Errorf("expected fallthrough to valid artifact, got %s", latest.ActionID)
	}
}

func TestFileStoreMissingCategory(t *testing.T) {
	s := fileStore(t)

	var traces []trace.PolicyTrace
	if err := s.List(CategoryDrift, &traces); err != nil {
		t.Fatalf("List on empty category: %v", err)
	}
	if len(traces) != 0 {
		t.Errorf("expected no artifacts, got %d", len(traces))
	}

	var latest trace.PolicyTrace
	if err := s.FindLatest(CategoryDrift, &latest); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestNewFileStoreBadDir(t *testing.T) {
	if _, err := NewFileStore(filepath.Join(t.TempDir(), "missing")); !errors.Is(err, ErrBadDir) {
		t.Errorf("expected ErrBadDir, got %v", err)
	}
}

func TestMemStoreMatchesFileStore(t *testing.T) {
	mem := NewMemStore()

	if _, err := mem.Write(CategoryTrace, sampleTrace("a1")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := mem.Write(CategoryTrace, sampleTrace("a2")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	var traces []trace.PolicyTrace
	if err := mem.List(CategoryTrace, &traces); err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(traces) != 2 || traces[1].ActionID != "a2" {
		t.Errorf("unexpected list: %+v", traces)
	}

	var latest trace.PolicyTrace
	if err := mem.FindLatest(CategoryTrace, &latest); err != nil {
		t.Fatalf("FindLatest: %v", err)
	}
	if latest.ActionID != "a2" {
		t.Errorf("expected a2, got %s", latest.ActionID)
	}

	var none trace.PolicyTrace
	if err := mem.FindLatest(CategoryRunbook, &none); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
