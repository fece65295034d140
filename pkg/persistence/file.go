package persistence

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// SnapshotVersion is the current version of the snapshot file format.
const SnapshotVersion = 1

// ErrUnsupportedVersion is returned when a snapshot file was written by a
// newer format version.
var ErrUnsupportedVersion = errors.New("unsupported snapshot version")

// snapshot is the on-disk form of a FileStore.
type snapshot struct {
	// Version is the snapshot file format version.
	Version int `cbor:"1,keyasint"`

	// SavedAt is when the snapshot was written.
	SavedAt time.Time `cbor:"2,keyasint"`

	// Values holds every stored record by key.
	Values map[string]value `cbor:"3,keyasint"`
}

// FileStore keeps the whole store in memory and rewrites a CBOR snapshot
// file on every commit. The file is replaced atomically so a crash leaves
// either the previous or the new snapshot on disk.
type FileStore struct {
	mu     sync.RWMutex
	path   string
	values map[string]value
	closed bool
	now    func() time.Time
}

// OpenFileStore loads the snapshot at path. A missing file yields an empty
// store.
func OpenFileStore(path string) (*FileStore, error) {
	s := &FileStore{
		path:   path,
		values: make(map[string]value),
		now:    time.Now,
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snap snapshot
	if err := storeDecMode.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", path, err)
	}
	if snap.Version > SnapshotVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, snap.Version)
	}
	if snap.Values != nil {
		s.values = snap.Values
	}
	return s, nil
}

// Path returns the snapshot file path.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) get(key string) (value, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *FileStore) Int64(key string, def int64) int64 {
	v, ok := s.get(key)
	return asInt64(v, ok, def)
}

func (s *FileStore) String(key string, def string) string {
	v, ok := s.get(key)
	return asString(v, ok, def)
}

func (s *FileStore) Bool(key string, def bool) bool {
	v, ok := s.get(key)
	return asBool(v, ok, def)
}

func (s *FileStore) IDs(key string) []int {
	v, ok := s.get(key)
	return asIDs(v, ok)
}

func (s *FileStore) Edit() Editor {
	return newBatch(s.commit)
}

// commit writes the updated snapshot before publishing it in memory, so a
// failed write leaves both the file and the readers on the old state.
func (s *FileStore) commit(ops []op) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	next := apply(s.values, ops)
	snap := snapshot{
		Version: SnapshotVersion,
		SavedAt: s.now(),
		Values:  next,
	}
	data, err := storeEncMode.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := writeFileSync(s.path, data); err != nil {
		return err
	}

	s.values = next
	return nil
}

func (s *FileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// writeFileSync writes data to a temporary file next to path, syncs it and
// renames it over path.
func writeFileSync(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create store directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

var _ Store = (*FileStore)(nil)
