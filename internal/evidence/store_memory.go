package evidence

import (
	"context"
	"io"
	"sync"

	"github.com/google/uuid"
)

// InMemoryStore keeps uploads in memory. Used in tests.
type InMemoryStore struct {
	mu    sync.Mutex
	files map[string][]byte

	// FailNext forces the next Save to fail, for exercising abort paths.
	FailNext error
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{files: make(map[string][]byte)}
}

func (s *InMemoryStore) Save(ctx context.Context, r io.Reader, originalFilename string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailNext != nil {
		err := s.FailNext
		s.FailNext = nil
		return "", err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}

	path := "/uploads/" + uuid.NewString() + "-" + sanitizeFilename(originalFilename)
	s.files[path] = data
	return path, nil
}

// Get returns the stored bytes for a path, for test assertions.
func (s *InMemoryStore) Get(path string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.files[path]
	return data, ok
}

// Len reports how many files have been stored.
func (s *InMemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.files)
}
