// Package storage provides flat-file persistence for record collections.
package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ErrMalformed is returned by Load when the file exists but does not hold a
// JSON array of records.
var ErrMalformed = errors.New("malformed data file")

// JSONStore keeps an ordered collection of records in a single JSON file.
// Every Save rewrites the whole file.
type JSONStore[T any] struct {
	filepath string
	now      func() time.Time
}

// NewJSONStore creates a new JSON store at the specified file path.
func NewJSONStore[T any](filepath string) *JSONStore[T] {
	return &JSONStore[T]{filepath: filepath, now: time.Now}
}

// Path returns the file backing the store.
func (s *JSONStore[T]) Path() string {
	return s.filepath
}

// Load reads the records from the JSON file.
//
// A missing file is initialised with an empty array. If the file cannot be
// parsed it is copied aside (see Quarantine) and an error wrapping
// ErrMalformed is returned.
func (s *JSONStore[T]) Load() ([]T, error) {
	data, err := os.ReadFile(s.filepath)
	if err != nil {
		if os.IsNotExist(err) {
			if err := s.Save(nil); err != nil {
				return []T{}, fmt.Errorf("failed to initialise %s: %w", s.filepath, err)
			}
			return []T{}, nil
		}
		return []T{}, err
	}

	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		malformed := fmt.Errorf("%w %s: %w", ErrMalformed, s.filepath, err)
		if backup, qerr := s.Quarantine(data); qerr == nil {
			malformed = fmt.Errorf("%w (copied to %s)", malformed, backup)
		}
		return []T{}, malformed
	}
	if records == nil {
		records = []T{}
	}

	return records, nil
}

// Save writes the records to the JSON file, pretty-printed with two-space
// indentation. The file is replaced atomically via a rename.
func (s *JSONStore[T]) Save(records []T) error {
	if records == nil {
		records = []T{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return err
	}

	return writeFileAtomic(s.filepath, buf.Bytes())
}

// Quarantine copies unreadable file contents next to the original so that
// the next Save does not destroy them. It returns the backup path.
func (s *JSONStore[T]) Quarantine(data []byte) (string, error) {
	backup := fmt.Sprintf("%s.corrupt-%d", s.filepath, s.now().UnixMilli())
	if err := os.WriteFile(backup, data, 0600); err != nil {
		return "", err
	}
	return backup, nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
