package artifact

import (
	"fmt"
	"sync"
)

// MemStore is an in-memory Store for tests. Payloads go through the same
// JSON codec as FileStore so round-trip behavior matches disk exactly.
type MemStore struct {
	mu    sync.Mutex
	items map[string][][]byte
	seq   int
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{items: make(map[string][][]byte)}
}

// Write encodes payload and appends it to the category's item list.
func (s *MemStore) Write(cat Category, payload any) (string, error) {
	data, err := encode(payload)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[cat.Dir] = append(s.items[cat.Dir], data)
	s.seq++
	return fmt.Sprintf("mem://%s/%s-%06d.json", cat.Dir, cat.Prefix, s.seq), nil
}

// List decodes every stored item of the category into out, oldest first.
func (s *MemStore) List(cat Category, out any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, data := range s.items[cat.Dir] {
		if err := decodeInto(out, data); err != nil {
			return err
		}
	}
	return nil
}

// FindLatest decodes the newest stored item of the category into out.
func (s *MemStore) FindLatest(cat Category, out any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := s.items[cat.Dir]
	if len(items) == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, cat.Dir)
	}
	return decodeIntoSingle(out, items[len(items)-1])
}

// Len reports how many artifacts the category holds.
func (s *MemStore) Len(cat Category) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items[cat.Dir])
}
