package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

const (
	createIndent = "    "
	saveIndent   = "  "
)

// FileStore keeps the record in a single JSON file
// Writes go through a temp file and rename so readers never see a partial record
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a store at path; the file is created lazily by Load or Save
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the record file path
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the record, creating an empty one when the file does not exist
func (s *FileStore) Load(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		if err := s.write(newRecord(nil), createIndent); err != nil {
			return nil, fmt.Errorf("create achievement record: %w", err)
		}
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read achievement record: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parse achievement record %s: %w", s.path, err)
	}
	if rec.Names == nil {
		return nil, fmt.Errorf("achievement record %s: missing key %q", s.path, RecordKey)
	}
	return *rec.Names, nil
}

// Save overwrites the record with names
func (s *FileStore) Save(ctx context.Context, names []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.write(newRecord(names), saveIndent); err != nil {
		return fmt.Errorf("write achievement record: %w", err)
	}
	return nil
}

func (s *FileStore) write(rec Record, indent string) error {
	data, err := json.MarshalIndent(rec, "", indent)
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
