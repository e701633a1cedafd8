package docs

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/firebase/genkit/go/ai"
	"github.com/gofrs/flock"
)

// ErrIndexNotFound indicates no serialized index exists at the path.
var ErrIndexNotFound = errors.New("index not found")

// fileIndex is the on-disk representation of one index.
type fileIndex struct {
	EmbedderModel string      `json:"embedder_model,omitempty"`
	Passages      []fileEntry `json:"passages"`
}

type fileEntry struct {
	Passage
	Embedding []float32 `json:"embedding"`
}

// FileStore is a Store persisted as a single JSON file. Embeddings are
// computed at build time and loaded fully into memory, so Search never
// touches the embedder for stored passages (only for the query).
//
// Writes are guarded by a sidecar flock so concurrent builders on the
// same index exclude each other. Readers are not locked; Save replaces
// the file atomically via rename.
type FileStore struct {
	*MemoryStore
	path          string
	embedderModel string
}

// OpenFileStore loads the index at path. Returns ErrIndexNotFound when
// the file does not exist.
func OpenFileStore(path string, embedder ai.Embedder) (*FileStore, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from config
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrIndexNotFound, path)
		}
		return nil, fmt.Errorf("reading index %s: %w", path, err)
	}

	var idx fileIndex
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("parsing index %s: %w", path, err)
	}

	s := &FileStore{
		MemoryStore:   NewMemoryStore(embedder),
		path:          path,
		embedderModel: idx.EmbedderModel,
	}
	for _, e := range idx.Passages {
		s.entries = append(s.entries, memoryEntry{passage: e.Passage, embedding: e.Embedding})
	}
	return s, nil
}

// NewFileStore creates an empty file store that will persist to path.
func NewFileStore(path string, embedder ai.Embedder, embedderModel string) *FileStore {
	return &FileStore{
		MemoryStore:   NewMemoryStore(embedder),
		path:          path,
		embedderModel: embedderModel,
	}
}

// Save serializes the index to its path. The parent directory is
// created if missing. A sidecar .lock file excludes concurrent savers.
func (s *FileStore) Save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return fmt.Errorf("creating index directory: %w", err)
	}

	lock := flock.New(s.path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("locking index %s: %w", s.path, err)
	}
	defer func() {
		_ = lock.Unlock()
	}()

	s.mu.RLock()
	idx := fileIndex{
		EmbedderModel: s.embedderModel,
		Passages:      make([]fileEntry, len(s.entries)),
	}
	for i, e := range s.entries {
		idx.Passages[i] = fileEntry{Passage: e.passage, Embedding: e.embedding}
	}
	s.mu.RUnlock()

	data, err := json.Marshal(idx)
	if err != nil {
		return fmt.Errorf("serializing index: %w", err)
	}

	// Write to a temp file then rename so readers never observe a
	// partially written index.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("writing index: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replacing index: %w", err)
	}
	return nil
}
