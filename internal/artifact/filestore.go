package artifact

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rs/xid"

	"github.com/policyops/pgov/internal/worker"
)

// timestampLayout is ISO 8601 with colons replaced by dashes so the stamp is
// filename-safe on every platform.
const timestampLayout = "2006-01-02T15-04-05.000Z"

// FileStore implements Store on a local artifact directory.
type FileStore struct {
	// Root is the artifact directory (e.g. .pgov).
	Root string

	// Now is the clock used for artifact timestamps; nil means time.Now.
	Now func() time.Time

	// Warnf receives skip warnings for malformed artifacts; nil discards.
	Warnf func(format string, args ...any)
}

// NewFileStore creates a store rooted at dir. The directory must exist.
func NewFileStore(dir string) (*FileStore, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrBadDir, dir)
	}
	return &FileStore{Root: dir}, nil
}

func (s *FileStore) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *FileStore) warnf(format string, args ...any) {
	if s.Warnf != nil {
		s.Warnf(format, args...)
	}
}

// Write persists payload as {prefix}-{timestamp}-{xid}.json under the
// category directory. The xid suffix keeps two same-tick invocations for the
// same project from colliding, and still sorts by creation time.
func (s *FileStore) Write(cat Category, payload any) (string, error) {
	data, err := encode(payload)
	if err != nil {
		return "", err
	}

	dir := filepath.Join(s.Root, cat.Dir)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("create category dir %s: %w", dir, err)
	}

	stamp := s.now().UTC().Format(timestampLayout)
	name := fmt.Sprintf("%s-%s-%s.json", cat.Prefix, stamp, xid.New().String())
	path := filepath.Join(dir, name)

	if err := atomicWrite(path, data); err != nil {
		return "", fmt.Errorf("write artifact %s: %w", path, err)
	}
	return path, nil
}

// List decodes every artifact of the category into out, oldest first.
// Malformed files are skipped with a warning; a missing category directory
// yields an empty result, not an error. Reads fan out across goroutines;
// decoding stays in path order so histories append chronologically.
func (s *FileStore) List(cat Category, out any) error {
	paths, err := s.paths(cat)
	if err != nil {
		return err
	}
	for _, r := range worker.Map(paths, 0, os.ReadFile) {
		if r.Err != nil {
			s.warnf("skipping unreadable artifact %s: %v", r.Path, r.Err)
			continue
		}
		if err := decodeInto(out, r.Value); err != nil {
			s.warnf("skipping malformed artifact %s: %v", r.Path, err)
		}
	}
	return nil
}

// FindLatest decodes the newest artifact of the category into out.
func (s *FileStore) FindLatest(cat Category, out any) error {
	paths, err := s.paths(cat)
	if err != nil {
		return err
	}
	// Walk backwards so a malformed newest file falls through to the next.
	for i := len(paths) - 1; i >= 0; i-- {
		data, err := os.ReadFile(paths[i])
		if err != nil {
			s.warnf("skipping unreadable artifact %s: %v", paths[i], err)
			continue
		}
		if err := decodeIntoSingle(out, data); err != nil {
			s.warnf("skipping malformed artifact %s: %v", paths[i], err)
			continue
		}
		return nil
	}
	return fmt.Errorf("%w: %s", ErrNotFound, cat.Dir)
}

// paths lists the category's artifact files in lexical (creation) order.
func (s *FileStore) paths(cat Category) ([]string, error) {
	pattern := filepath.Join(s.Root, cat.Dir, cat.Prefix+"-*.json")
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", pattern, err)
	}
	sort.Strings(matches)
	return matches, nil
}

// atomicWrite writes data to a temp file in the target directory and renames
// it into place, so readers never observe a partial artifact.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write content: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename to final: %w", err)
	}

	success = true
	return nil
}
