// Package jsonfile persists a vector collection as a flat JSON array.
package jsonfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"ragdocs/internal/domain"
	"ragdocs/internal/vectorstore"
	"ragdocs/internal/vectorstore/memory"
)

// ErrNotFound is returned by Load when the artifact does not exist.
var ErrNotFound = errors.New("vector store file not found")

// Save validates chunks and writes them to path, replacing any previous
// artifact. The file is written next to path first and renamed into place.
func Save(path string, chunks []domain.Chunk) error {
	if err := vectorstore.Validate(chunks); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	if chunks == nil {
		chunks = []domain.Chunk{}
	}
	data, err := json.MarshalIndent(chunks, "", "  ")
	if err != nil {
		return fmt.Errorf("encode collection: %w", err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Load reads and validates the artifact at path.
func Load(path string) ([]domain.Chunk, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, err
	}
	var chunks []domain.Chunk
	if err := json.Unmarshal(data, &chunks); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if err := vectorstore.Validate(chunks); err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return chunks, nil
}

// Storage is an in-memory, read-mostly view of a JSON artifact.
type Storage struct {
	*memory.Storage
	path string
}

// Open loads the artifact at path into memory. A missing artifact opens an
// empty collection.
func Open(path string) (*Storage, error) {
	chunks, err := Load(path)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	mem, err := memory.FromChunks(chunks)
	if err != nil {
		return nil, err
	}
	return &Storage{Storage: mem, path: path}, nil
}

// Path returns the artifact location.
func (s *Storage) Path() string { return s.path }

