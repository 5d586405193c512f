package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	apperrors "github.com/julianstephens/habitquest/internal/errors"
	"github.com/julianstephens/habitquest/internal/logger"
)

// document is the on-disk layout of a JSONStore. Values are kept as strings so
// one malformed snapshot cannot make the whole file unreadable.
type document struct {
	Version int               `json:"version"`
	Entries map[string]string `json:"entries"`
}

// JSONStore keeps every key in a single JSON file, rewritten on each Put.
type JSONStore struct {
	path string
	doc  *document
}

func NewJSONStore(path string) *JSONStore {
	return &JSONStore{
		path: path,
	}
}

func (s *JSONStore) Init() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(s.path); err == nil {
		return s.Load()
	}

	s.doc = &document{Version: 1, Entries: make(map[string]string)}
	return s.save()
}

func (s *JSONStore) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("storage not initialized, run 'habitquest init' first")
		}
		return fmt.Errorf("failed to read storage: %w", err)
	}

	doc := &document{}
	if err := json.Unmarshal(data, doc); err != nil {
		return s.recoverCorrupt(err)
	}
	if doc.Entries == nil {
		doc.Entries = make(map[string]string)
	}
	s.doc = doc
	return nil
}

// recoverCorrupt moves an unparseable file aside and starts over from an
// empty document.
func (s *JSONStore) recoverCorrupt(parseErr error) error {
	aside := fmt.Sprintf("%s.corrupt-%s", s.path, time.Now().Format("20060102-150405"))
	logger.Warn("Storage file unreadable, starting from defaults",
		"error", &apperrors.PersistenceError{Op: "load", Key: filepath.Base(s.path), Err: parseErr},
		"moved_to", aside)
	if err := os.Rename(s.path, aside); err != nil {
		return fmt.Errorf("failed to move corrupt storage aside: %w", err)
	}

	s.doc = &document{Version: 1, Entries: make(map[string]string)}
	return s.save()
}

func (s *JSONStore) Close() error {
	return nil
}

// save writes to a temp file and renames it over the original.
func (s *JSONStore) save() error {
	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize storage: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace storage: %w", err)
	}
	return nil
}

func (s *JSONStore) Get(key string) ([]byte, error) {
	if s.doc == nil {
		return nil, fmt.Errorf("storage not loaded")
	}
	v, ok := s.doc.Entries[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return []byte(v), nil
}

func (s *JSONStore) Put(key string, value []byte) error {
	if s.doc == nil {
		return fmt.Errorf("storage not loaded")
	}
	s.doc.Entries[key] = string(value)
	return s.save()
}

func (s *JSONStore) Delete(key string) error {
	if s.doc == nil {
		return fmt.Errorf("storage not loaded")
	}
	if _, ok := s.doc.Entries[key]; !ok {
		return nil
	}
	delete(s.doc.Entries, key)
	return s.save()
}

func (s *JSONStore) GetConfigPath() string {
	return s.path
}
