package worker

import (
	"errors"
	"strings"
	"sync/atomic"
	"testing"
)

func TestMapPreservesInputOrder(t *testing.T) {
	paths := []string{"c.json", "a.json", "b.json", "d.json"}
	results := Map(paths, 2, func(p string) (string, error) {
		return strings.ToUpper(p), nil
	})

	if len(results) != len(paths) {
		t.Fatalf("got %d results, want %d", len(results), len(paths))
	}
	for i, r := range results {
		if r.Path != paths[i] {
			t.Errorf("result %d has path %q, want %q", i, r.Path, paths[i])
		}
		if r.Value != strings.ToUpper(paths[i]) {
			t.Errorf("result %d has value %q, want %q", i, r.Value, strings.ToUpper(paths[i]))
		}
	}
}

func TestMapEmptyInput(t *testing.T) {
	results := Map(nil, 4, func(p string) (int, error) { return 0, nil })
	if results != nil {
		t.Errorf("empty input must yield nil results, got %v", results)
	}
}

func TestMapCapturesPerPathErrors(t *testing.T) {
	boom := errors.New("unreadable")
	results := Map([]string{"ok", "bad", "ok"}, 3, func(p string) (string, error) {
		if p == "bad" {
			return "", boom
		}
		return p, nil
	})

	if results[0].Err != nil || results[2].Err != nil {
		t.Errorf("healthy paths must not carry errors: %v, %v", results[0].Err, results[2].Err)
	}
	if !errors.Is(results[1].Err, boom) {
		t.Errorf("failing path must carry its error, got %v", results[1].Err)
	}
}

func TestMapDefaultsConcurrency(t *testing.T) {
	var calls int64
	paths := make([]string, 50)
	for i := range paths {
		paths[i] = "p"
	}
	results := Map(paths, 0, func(p string) (int64, error) {
		return atomic.AddInt64(&calls, 1), nil
	})

	if len(results) != 50 {
		t.Fatalf("got %d results, want 50", len(results))
	}
	if calls != 50 {
		t.Errorf("fn ran %d times, want 50", calls)
	}
}
