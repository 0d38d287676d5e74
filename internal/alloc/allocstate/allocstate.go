// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package allocstate provides best-effort persistence of allocctl state.
//
// State is a set of JSON documents, one per fixed key, stored as
// <dir>/<key>.json. Reads that fail for any reason return the caller's
// default. Writes that fail are logged and the value is kept in memory for
// the rest of the process.
package allocstate

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

const (
	// KeyAccessToken is the key for the OAuth access token.
	KeyAccessToken = "access_token"
	// KeyAPIServer is the key for the API server URL returned with the token.
	KeyAPIServer = "api_server"
	// KeySnapshot is the key for the last fetched portfolio and when it was
	// fetched. The whole snapshot is one document so that it is replaced atomically.
	KeySnapshot = "snapshot"
	// KeyPostTax is the key for the post-tax view toggle.
	KeyPostTax = "post_tax"
	// KeyRedact is the key for the redacted display toggle.
	KeyRedact = "redact"
	// KeyCollapsed is the key for the set of account numbers whose positions are hidden.
	KeyCollapsed = "collapsed"
)

// Store is a key to JSON document store.
//
// A Store is safe for concurrent use.
type Store struct {
	logger  *slog.Logger
	dirPath string

	lock sync.Mutex
	// memory holds every value written during this process, including
	// values whose write to disk failed.
	memory map[string][]byte
}

// NewStore returns a new Store persisting to the given directory.
// The directory is created on first write.
func NewStore(logger *slog.Logger, dirPath string) *Store {
	return &Store{
		logger:  logger,
		dirPath: dirPath,
		memory:  make(map[string][]byte),
	}
}

// Get unmarshals the value stored under key into value.
//
// Returns false if nothing is stored or the stored data cannot be parsed, in
// which case value should be discarded.
func (s *Store) Get(key string, value any) bool {
	data, ok := s.read(key)
	if !ok {
		return false
	}
	if err := json.Unmarshal(data, value); err != nil {
		s.logger.Debug("ignoring unparseable state", "key", key, "error", err)
		return false
	}
	return true
}

// Set stores value under key.
//
// Persistence failures are logged and otherwise ignored.
func (s *Store) Set(key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		s.logger.Warn("could not encode state", "key", key, "error", err)
		return
	}
	s.lock.Lock()
	s.memory[key] = data
	s.lock.Unlock()
	if err := s.writeFile(key, data); err != nil {
		s.logger.Warn("could not persist state, keeping in memory", "key", key, "error", err)
	}
}

// Delete removes the value stored under key.
func (s *Store) Delete(key string) {
	s.lock.Lock()
	delete(s.memory, key)
	s.lock.Unlock()
	if err := os.Remove(s.filePath(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Warn("could not remove state", "key", key, "error", err)
	}
}

// DirPath returns the directory the store persists to.
func (s *Store) DirPath() string {
	return s.dirPath
}

// GetOr returns the value stored under key, or defaultValue if nothing
// parseable is stored.
func GetOr[T any](store *Store, key string, defaultValue T) T {
	var value T
	if !store.Get(key, &value) {
		return defaultValue
	}
	return value
}

// *** PRIVATE ***

func (s *Store) read(key string) ([]byte, bool) {
	s.lock.Lock()
	data, ok := s.memory[key]
	s.lock.Unlock()
	if ok {
		return data, true
	}
	data, err := os.ReadFile(s.filePath(key))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Debug("could not read state", "key", key, "error", err)
		}
		return nil, false
	}
	return data, true
}

// writeFile writes data atomically via a temporary file and rename.
func (s *Store) writeFile(key string, data []byte) (retErr error) {
	if err := os.MkdirAll(s.dirPath, 0o700); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}
	file, err := os.CreateTemp(s.dirPath, "."+key+".*.tmp")
	if err != nil {
		return err
	}
	tempPath := file.Name()
	defer func() {
		if retErr != nil {
			retErr = errors.Join(retErr, os.Remove(tempPath))
		}
	}()
	if _, err := file.Write(append(data, '\n')); err != nil {
		return errors.Join(err, file.Close())
	}
	if err := file.Close(); err != nil {
		return err
	}
	return os.Rename(tempPath, s.filePath(key))
}

func (s *Store) filePath(key string) string {
	return filepath.Join(s.dirPath, key+".json")
}
