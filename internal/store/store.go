// Package store persists the contact collection as a single flat file.
package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/smileynet/contactbook/internal/contact"
)

// StorageError reports a failed load or save of the backing file.
type StorageError struct {
	Op   string // "load" or "save"
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("store: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// FileStore reads and rewrites the whole contact file on every call.
// There is no locking: concurrent writers race and the last one wins.
type FileStore struct {
	path  string
	codec Codec
}

// NewFileStore creates a FileStore for path using codec.
func NewFileStore(path string, codec Codec) *FileStore {
	return &FileStore{path: path, codec: codec}
}

// Open creates a FileStore for path, choosing the codec by format name, or
// by the file extension when format is empty.
func Open(path, format string) (*FileStore, error) {
	reg := DefaultRegistry()
	var (
		c   Codec
		err error
	)
	if format == "" {
		c, err = reg.ForPath(path)
	} else {
		c, err = reg.Codec(format)
	}
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	return NewFileStore(path, c), nil
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

// Format returns the codec name.
func (s *FileStore) Format() string {
	return s.codec.Name()
}

// Load reads every contact from the backing file. A missing file is an
// empty store, not an error. Records are returned as stored, without
// revalidation.
func (s *FileStore) Load(ctx context.Context) ([]contact.Contact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []contact.Contact{}, nil
		}
		return nil, &StorageError{Op: "load", Path: s.path, Err: err}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []contact.Contact{}, nil
	}

	records, err := s.codec.Decode(data)
	if err != nil {
		return nil, &StorageError{Op: "load", Path: s.path, Err: err}
	}
	return records, nil
}

// Save rewrites the backing file with records ordered by name,
// case-insensitively. The caller's slice is not reordered. The write is
// atomic: on failure the previous file is left untouched.
func (s *FileStore) Save(ctx context.Context, records []contact.Contact) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	sorted := contact.Sort(records, contact.FieldName, contact.Ascending)

	var buf bytes.Buffer
	if err := s.codec.Encode(&buf, sorted); err != nil {
		return &StorageError{Op: "save", Path: s.path, Err: err}
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &StorageError{Op: "save", Path: s.path, Err: fmt.Errorf("creating directory: %w", err)}
		}
	}

	if err := writeFileAtomic(s.path, buf.Bytes(), 0o644); err != nil {
		return &StorageError{Op: "save", Path: s.path, Err: err}
	}
	return nil
}
