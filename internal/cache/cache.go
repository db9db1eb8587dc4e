package cache

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Snapshot wraps cached payloads with provenance metadata.
type Snapshot struct {
	Source      string          `json:"source"`
	LastUpdated string          `json:"last_updated"` // RFC 3339
	FetchID     uuid.UUID       `json:"fetch_id"`
	Data        json.RawMessage `json:"data"`
}

// Store reads and writes JSON snapshots under a single directory.
type Store struct {
	dir    string
	logger *slog.Logger
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) { s.logger = logger }
}

// NewStore creates a cache store rooted at dir, creating it if needed.
func NewStore(dir string, opts ...StoreOption) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	s := &Store{
		dir:    dir,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Dir returns the cache directory.
func (s *Store) Dir() string { return s.dir }

// Path returns the on-disk path for a cache entry name.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name+".json")
}

// Save writes v as an indented JSON snapshot. The write is atomic: data
// goes to a temp file in the same directory and is renamed into place.
func (s *Store) Save(name, source string, fetchID uuid.UUID, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}

	snap := Snapshot{
		Source:      source,
		LastUpdated: time.Now().UTC().Format(time.RFC3339),
		FetchID:     fetchID,
		Data:        data,
	}

	out, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot %s: %w", name, err)
	}

	path := s.Path(name)
	tmp, err := os.CreateTemp(s.dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(out); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename %s: %w", tmpName, err)
	}

	s.logger.Debug("cache saved",
		"name", name,
		"source", source,
		"bytes", len(out),
	)
	return nil
}

// Load reads the named snapshot and unmarshals its payload into v. A
// missing entry returns an error wrapping fs.ErrNotExist, so callers can
// fall back to fetching.
func (s *Store) Load(name string, v any) (*Snapshot, error) {
	data, err := os.ReadFile(s.Path(name))
	if err != nil {
		return nil, fmt.Errorf("read cache %s: %w", name, err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot %s: %w", name, err)
	}
	if err := json.Unmarshal(snap.Data, v); err != nil {
		return nil, fmt.Errorf("unmarshal cache %s: %w", name, err)
	}
	return &snap, nil
}

// Age returns how long ago the named snapshot was written. Missing or
// unparseable entries report ok=false.
func (s *Store) Age(name string) (age time.Duration, ok bool) {
	var discard json.RawMessage
	snap, err := s.Load(name, &discard)
	if err != nil {
		return 0, false
	}
	t, err := time.Parse(time.RFC3339, snap.LastUpdated)
	if err != nil {
		return 0, false
	}
	return time.Since(t), true
}
