// Package store persists the last-known wallet address between sessions.
//
// The cached address only seeds optimistic reconnection at startup; it is
// written on explicit connect, cleared on explicit disconnect, and never
// touched by any background writer.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/the-recircle-app/veconnect/internal/fileutil"
	vcerr "github.com/the-recircle-app/veconnect/pkg/errors"
)

const (
	// storeFilePermissions is the permission mode for the store file.
	storeFilePermissions = 0o600

	// storeDirPermissions is the permission mode for store directories.
	storeDirPermissions = 0o750
)

// Connection is the persisted connection record.
type Connection struct {
	Address string    `json:"address"`
	SavedAt time.Time `json:"saved_at"`
}

// AddressStore reads and writes the persisted connection record.
type AddressStore interface {
	// Load returns the saved connection, or ok=false if none is saved.
	Load() (conn Connection, ok bool, err error)

	// Save writes the connection record.
	Save(conn Connection) error

	// Clear removes the saved record. Clearing an empty store is a no-op.
	Clear() error
}

// FileStore implements AddressStore on the filesystem.
type FileStore struct {
	path string
}

// NewFileStore creates a store backed by the given file path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Compile-time interface check
var _ AddressStore = (*FileStore)(nil)

// Load reads the saved connection record.
// A corrupted file is quarantined with a .corrupt suffix rather than
// deleted, and reported as ErrStoreCorrupted with no record returned.
func (s *FileStore) Load() (Connection, bool, error) {
	var conn Connection

	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return conn, false, nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return conn, false, fmt.Errorf("reading address store: %w", err)
	}

	if err := json.Unmarshal(data, &conn); err != nil {
		corruptPath := fmt.Sprintf("%s.corrupt.%d", s.path, time.Now().UTC().UnixNano())
		if renameErr := os.Rename(s.path, corruptPath); renameErr != nil {
			return Connection{}, false, fmt.Errorf("%w: %w (also failed to move file: %w)",
				vcerr.ErrStoreCorrupted, err, renameErr)
		}
		return Connection{}, false, fmt.Errorf("%w: %w (moved to %s)",
			vcerr.ErrStoreCorrupted, err, corruptPath)
	}

	if conn.Address == "" {
		return Connection{}, false, nil
	}
	return conn, true, nil
}

// Save writes the connection record.
func (s *FileStore) Save(conn Connection) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, storeDirPermissions); err != nil {
		return fmt.Errorf("creating store directory: %w", err)
	}

	data, err := json.MarshalIndent(conn, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling connection record: %w", err)
	}

	if err := fileutil.WriteAtomic(s.path, data, storeFilePermissions); err != nil {
		return fmt.Errorf("writing address store: %w", err)
	}
	return nil
}

// Clear removes the saved record.
func (s *FileStore) Clear() error {
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return nil
	}
	if err := os.Remove(s.path); err != nil {
		return fmt.Errorf("removing address store: %w", err)
	}
	return nil
}

// Path returns the store file path.
func (s *FileStore) Path() string {
	return s.path
}

// MemoryStore is an in-memory AddressStore for tests and dev mode.
type MemoryStore struct {
	conn Connection
	ok   bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Compile-time interface check
var _ AddressStore = (*MemoryStore)(nil)

// Load implements AddressStore.
func (s *MemoryStore) Load() (Connection, bool, error) {
	return s.conn, s.ok, nil
}

// Save implements AddressStore.
func (s *MemoryStore) Save(conn Connection) error {
	s.conn, s.ok = conn, true
	return nil
}

// Clear implements AddressStore.
func (s *MemoryStore) Clear() error {
	s.conn, s.ok = Connection{}, false
	return nil
}
