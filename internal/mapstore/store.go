// Package mapstore is the sole mutator of persisted map configurations.
//
// It keeps a per-path in-memory cache and serializes disk writes per path:
// every mutation lands in the cache immediately (optimistic) and the
// corresponding write is appended to that path's FIFO chain. The cache is
// the source of truth for "current config"; consumers must re-read it rather
// than hold on to a previously returned snapshot across suspension points.
package mapstore

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"vault-atlas/internal/mapdoc"
)

// ErrNotFound is returned by Update when the path has no cached
// configuration and none can be loaded.
var ErrNotFound = errors.New("map config not found")

// FileIO abstracts the read/write file primitive so the store can be driven
// by the application's page-content collaborator, and by fakes in tests.
type FileIO interface {
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte) error
}

// OSFileIO is the default FileIO backed by the local filesystem.
type OSFileIO struct{}

func (OSFileIO) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func (OSFileIO) WriteFile(path string, data []byte) error {
	return os.WriteFile(path, data, 0644)
}

// Transform is a pure config mutation: it receives a private clone and
// returns the config to install. Returning the argument is allowed.
type Transform func(*mapdoc.MapConfig) *mapdoc.MapConfig

// UpdateResult reports an accepted update. Config is the new cached value;
// Done settles with the outcome of this update's disk write and nothing
// else's.
type UpdateResult struct {
	Config *mapdoc.MapConfig
	Done   <-chan error
}

// Store is the map configuration cache and write queue.
type Store struct {
	mu    sync.Mutex
	fio   FileIO
	cache map[string]*mapdoc.MapConfig

	// tails holds, per path, the completion signal of the most recently
	// queued write. A new write waits on the previous tail before touching
	// disk, which keeps writes for one path ordered without blocking any
	// other path.
	tails map[string]chan struct{}
}

// NewStore creates a store over the given file collaborator.
func NewStore(fio FileIO) *Store {
	return &Store{
		fio:   fio,
		cache: make(map[string]*mapdoc.MapConfig),
		tails: make(map[string]chan struct{}),
	}
}

// Normalize converts a path to the canonical cache key: absolute and cleaned.
func Normalize(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}

// Get returns the cached configuration for the path, if present.
func (s *Store) Get(path string) (*mapdoc.MapConfig, bool) {
	key := Normalize(path)
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg, ok := s.cache[key]
	return cfg, ok
}

// Load returns the cached configuration, reading and parsing the file on
// first access. A load failure is logged and returned; nothing is cached.
func (s *Store) Load(path string) (*mapdoc.MapConfig, error) {
	key := Normalize(path)

	s.mu.Lock()
	if cfg, ok := s.cache[key]; ok {
		s.mu.Unlock()
		return cfg, nil
	}
	s.mu.Unlock()

	data, err := s.fio.ReadFile(key)
	if err != nil {
		log.Printf("mapstore: read %s: %v", key, err)
		return nil, fmt.Errorf("load map %s: %w", key, err)
	}
	cfg, err := mapdoc.Decode(data)
	if err != nil {
		log.Printf("mapstore: parse %s: %v", key, err)
		return nil, fmt.Errorf("load map %s: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// A concurrent Load or Register may have won; the cache stays
	// authoritative over this load's result.
	if existing, ok := s.cache[key]; ok {
		return existing, nil
	}
	s.cache[key] = cfg
	return cfg, nil
}

// Register installs a configuration into the cache without a round-trip
// read. Used right after creating a new map, whose content is already known.
func (s *Store) Register(path string, cfg *mapdoc.MapConfig) {
	key := Normalize(path)
	s.mu.Lock()
	s.cache[key] = cfg
	s.mu.Unlock()
}

// Update applies a pure transform to the latest cached configuration
// (loading it first if needed), installs the result in the cache, and
// queues the disk write behind any pending writes for the same path.
//
// The returned Done channel receives exactly one value: the outcome of this
// update's write. A write failure does not roll the cache back and does not
// disturb other queued writes, on this path or any other.
func (s *Store) Update(path string, transform Transform) (*UpdateResult, error) {
	key := Normalize(path)

	s.mu.Lock()
	cfg, ok := s.cache[key]
	s.mu.Unlock()
	if !ok {
		var err error
		cfg, err = s.Load(key)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
	}

	s.mu.Lock()
	// Re-read under the lock: another update may have landed since.
	if latest, ok := s.cache[key]; ok {
		cfg = latest
	}
	next := transform(cfg.Clone())
	if next == nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("update %s: transform returned nil", key)
	}
	s.cache[key] = next

	// Snapshot the bytes now so the queued write persists exactly this
	// state, whatever later updates do to the cache.
	data, err := mapdoc.Encode(next)
	if err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("update %s: %w", key, err)
	}

	prev := s.tails[key]
	done := make(chan struct{})
	s.tails[key] = done
	s.mu.Unlock()

	result := make(chan error, 1)
	go func() {
		defer close(done)
		if prev != nil {
			<-prev
		}
		if err := s.fio.WriteFile(key, data); err != nil {
			log.Printf("mapstore: write %s: %v", key, err)
			result <- fmt.Errorf("write map %s: %w", key, err)
			return
		}
		result <- nil
	}()

	return &UpdateResult{Config: next, Done: result}, nil
}

// Evict drops a path from the cache, e.g. after the file is deleted from
// the vault. Pending writes are unaffected.
func (s *Store) Evict(path string) {
	key := Normalize(path)
	s.mu.Lock()
	delete(s.cache, key)
	s.mu.Unlock()
}
