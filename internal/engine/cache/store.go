package cache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
)

const cacheFileExtension = ".json"

type constError string

func (e constError) Error() string { return string(e) }

const (
	ErrCacheNotFound   = constError("cache entry not found")
	ErrCacheExpired    = constError("cache entry expired")
	ErrInvalidCacheKey = constError("cache key cannot be empty")
	ErrCacheDisabled   = constError("cache is disabled")
)

// FileStore is a directory of JSON cache entries. Safe for concurrent use.
type FileStore struct {
	directory  string
	enabled    bool
	ttlSeconds int
	maxSizeMB  int

	mu sync.RWMutex
}

// NewFileStore opens (creating if needed) a cache directory.
// A disabled store answers every call with ErrCacheDisabled.
func NewFileStore(directory string, enabled bool, ttlSeconds, maxSizeMB int) (*FileStore, error) {
	if !enabled {
		return &FileStore{enabled: false}, nil
	}
	if directory == "" {
		return nil, errors.New("cache directory cannot be empty")
	}
	if err := os.MkdirAll(directory, 0o750); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	return &FileStore{
		directory:  directory,
		enabled:    true,
		ttlSeconds: ttlSeconds,
		maxSizeMB:  maxSizeMB,
	}, nil
}

// Get returns the live entry for key.
func (s *FileStore) Get(key string) (*Entry, error) {
	if !s.enabled {
		return nil, ErrCacheDisabled
	}
	if key == "" {
		return nil, ErrInvalidCacheKey
	}

	s.mu.RLock()
	path := s.keyToFilePath(key)
	entry, err := readEntry(path)
	s.mu.RUnlock()
	if err != nil {
		return nil, err
	}

	if entry.IsExpired() {
		s.mu.Lock()
		_ = os.Remove(path)
		s.mu.Unlock()
		return nil, ErrCacheExpired
	}
	return entry, nil
}

// Load decodes the cached payload for key into v.
func (s *FileStore) Load(key string, v any) error {
	entry, err := s.Get(key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(entry.Data, v); err != nil {
		return fmt.Errorf("decoding cached payload: %w", err)
	}
	return nil
}

// Set writes data under key, replacing any existing entry.
func (s *FileStore) Set(key string, data json.RawMessage) error {
	if !s.enabled {
		return ErrCacheDisabled
	}
	if key == "" {
		return ErrInvalidCacheKey
	}

	entryData, err := json.MarshalIndent(NewEntry(key, data, s.ttlSeconds), "", "  ")
	if err != nil {
		return fmt.Errorf("encoding cache entry: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.keyToFilePath(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, entryData, 0o600); err != nil {
		return fmt.Errorf("writing cache file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("renaming cache file: %w", err)
	}
	return s.evictLocked()
}

// Store encodes v and writes it under key.
func (s *FileStore) Store(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding payload: %w", err)
	}
	return s.Set(key, data)
}

// Delete removes key. Deleting a missing key is not an error.
func (s *FileStore) Delete(key string) error {
	if !s.enabled {
		return ErrCacheDisabled
	}
	if key == "" {
		return ErrInvalidCacheKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.keyToFilePath(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting cache file: %w", err)
	}
	return nil
}

// Clear removes every entry and returns how many were removed.
func (s *FileStore) Clear() (int, error) {
	if !s.enabled {
		return 0, ErrCacheDisabled
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	files, err := s.listLocked()
	if err != nil {
		return 0, err
	}
	for _, f := range files {
		if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
			return 0, fmt.Errorf("removing %s: %w", filepath.Base(f.path), err)
		}
	}
	return len(files), nil
}

// CleanupExpired removes expired or unreadable entries and returns how many were removed.
func (s *FileStore) CleanupExpired() (int, error) {
	if !s.enabled {
		return 0, ErrCacheDisabled
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	files, err := s.listLocked()
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, f := range files {
		entry, readErr := readEntry(f.path)
		if readErr == nil && !entry.IsExpired() {
			continue
		}
		if os.Remove(f.path) == nil {
			removed++
		}
	}
	return removed, nil
}

// Size returns the total size of all entries in bytes.
func (s *FileStore) Size() (int64, error) {
	if !s.enabled {
		return 0, ErrCacheDisabled
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	files, err := s.listLocked()
	if err != nil {
		return 0, err
	}
	var total int64
	for _, f := range files {
		total += f.size
	}
	return total, nil
}

// Count returns the number of entries, expired ones included.
func (s *FileStore) Count() (int, error) {
	if !s.enabled {
		return 0, ErrCacheDisabled
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	files, err := s.listLocked()
	return len(files), err
}

// IsEnabled reports whether the store is active.
func (s *FileStore) IsEnabled() bool { return s.enabled }

// Directory returns the cache directory.
func (s *FileStore) Directory() string { return s.directory }

// TTL returns the entry lifetime in seconds.
func (s *FileStore) TTL() int { return s.ttlSeconds }

type cacheFile struct {
	path    string
	size    int64
	modTime time.Time
}

func (s *FileStore) listLocked() ([]cacheFile, error) {
	entries, err := os.ReadDir(s.directory)
	if err != nil {
		return nil, fmt.Errorf("reading cache directory: %w", err)
	}
	var files []cacheFile
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != cacheFileExtension {
			continue
		}
		info, infoErr := e.Info()
		if infoErr != nil {
			continue
		}
		files = append(files, cacheFile{
			path:    filepath.Join(s.directory, e.Name()),
			size:    info.Size(),
			modTime: info.ModTime(),
		})
	}
	return files, nil
}

// evictLocked drops the oldest entries until the store fits in maxSizeMB.
func (s *FileStore) evictLocked() error {
	if s.maxSizeMB <= 0 {
		return nil
	}
	files, err := s.listLocked()
	if err != nil {
		return err
	}

	limit := int64(s.maxSizeMB) << 20
	var total int64
	for _, f := range files {
		total += f.size
	}
	if total <= limit {
		return nil
	}

	slices.SortFunc(files, func(a, b cacheFile) int { return a.modTime.Compare(b.modTime) })
	for _, f := range files {
		if total <= limit {
			break
		}
		if os.Remove(f.path) == nil {
			total -= f.size
		}
	}
	return nil
}

func readEntry(path string) (*Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrCacheNotFound
		}
		return nil, fmt.Errorf("reading cache file: %w", err)
	}
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("decoding cache entry: %w", err)
	}
	return &entry, nil
}

func (s *FileStore) keyToFilePath(key string) string {
	safe := strings.NewReplacer("/", "_", "\\", "_", ":", "_").Replace(key)
	return filepath.Join(s.directory, safe+cacheFileExtension)
}
