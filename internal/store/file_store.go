package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/benmeehan/fog-agent/internal/models"
	"github.com/benmeehan/fog-agent/pkg/file"
)

// FileStore keeps the set in <dir>/<key>.json.
type FileStore struct {
	path       string
	fileClient file.FileOperations
}

// NewFileStore creates a FileStore rooted at dir.
func NewFileStore(dir, key string, fileClient file.FileOperations) *FileStore {
	if key == "" {
		key = DefaultKey
	}
	return &FileStore{
		path:       filepath.Join(dir, key+".json"),
		fileClient: fileClient,
	}
}

// Path returns the file the set is written to.
func (f *FileStore) Path() string {
	return f.path
}

// Load reads and decodes the set file. A missing file is an empty set.
func (f *FileStore) Load(_ context.Context) (models.ExplorationSet, error) {
	data, err := f.fileClient.ReadFileRaw(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return models.ExplorationSet{}, nil
		}
		return models.ExplorationSet{}, fmt.Errorf("read %s: %w", f.path, err)
	}
	return Decode(data)
}

// Save atomically replaces the set file.
func (f *FileStore) Save(_ context.Context, set models.ExplorationSet) error {
	data, err := Encode(set)
	if err != nil {
		return err
	}
	if err := f.fileClient.WriteFileRaw(f.path, data); err != nil {
		return fmt.Errorf("write %s: %w", f.path, err)
	}
	return nil
}

// Close is a no-op.
func (f *FileStore) Close() error {
	return nil
}
