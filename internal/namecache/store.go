package namecache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
)

// Snapshot is a name list and the time it was fetched.
type Snapshot struct {
	RefreshedAt time.Time `json:"refreshed_at"`
	Names       []string  `json:"names"`
}

// Store persists snapshots.
type Store interface {
	Load() (Snapshot, error)
	Save(Snapshot) error
}

// FileStore keeps a snapshot in a JSON file. Access from concurrent brewq
// processes is serialized with a lock file next to it.
type FileStore struct {
	path        string
	lockTimeout time.Duration
}

// NewFileStore returns a store writing to path (e.g. ~/.brewq/names.json).
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, lockTimeout: 2 * time.Second}
}

// Path returns the snapshot file location.
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) lockPath() string {
	return strings.TrimSuffix(s.path, filepath.Ext(s.path)) + ".lock"
}

// acquire takes the lock file, shared for readers, retrying until lockTimeout.
func (s *FileStore) acquire(shared bool) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return nil, fmt.Errorf("cannot create %s: %w", filepath.Dir(s.path), err)
	}
	l := flock.New(s.lockPath())
	ctx, cancel := context.WithTimeout(context.Background(), s.lockTimeout)
	defer cancel()

	var (
		locked bool
		err    error
	)
	if shared {
		locked, err = l.TryRLockContext(ctx, 50*time.Millisecond)
	} else {
		locked, err = l.TryLockContext(ctx, 50*time.Millisecond)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot acquire name cache lock %s: %w", s.lockPath(), err)
	}
	if !locked {
		return nil, fmt.Errorf("name cache lock is busy (lock: %s)", s.lockPath())
	}
	return func() { _ = l.Unlock() }, nil
}

// Load reads the snapshot. A missing file yields an error wrapping os.ErrNotExist.
func (s *FileStore) Load() (Snapshot, error) {
	if _, err := os.Stat(s.path); err != nil {
		return Snapshot{}, err
	}
	unlock, err := s.acquire(true)
	if err != nil {
		return Snapshot{}, err
	}
	defer unlock()

	b, err := os.ReadFile(s.path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("cannot read name cache %s: %w", s.path, err)
	}
	var snap Snapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("invalid name cache JSON %s: %w", s.path, err)
	}
	return snap, nil
}

// Save writes snap to a temp file and renames it over the snapshot.
func (s *FileStore) Save(snap Snapshot) error {
	unlock, err := s.acquire(false)
	if err != nil {
		return err
	}
	defer unlock()

	b, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".names-*.json")
	if err != nil {
		return fmt.Errorf("cannot create temp name cache: %w", err)
	}
	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("cannot write temp name cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("cannot install name cache %s: %w", s.path, err)
	}
	return nil
}
