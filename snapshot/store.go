// Package snapshot keeps inferred schemas on disk and reconciles them with
// fresh samples, reporting what was created, updated, or left behind.
package snapshot

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	gojson "github.com/goccy/go-json"
)

const suffix = ".schema.json"

// Store reads and writes named schemas under one directory.
type Store struct {
	dir string
}

func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name+suffix)
}

// Load returns the stored schema for name, or nil when none exists yet.
func (s *Store) Load(name string) (map[string]any, error) {
	data, err := os.ReadFile(s.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read schema %s: %w", name, err)
	}

	var schema map[string]any
	if err := gojson.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("decode schema %s: %w", name, err)
	}
	return schema, nil
}

func (s *Store) Save(name string, schema map[string]any) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create schema dir: %w", err)
	}

	data, err := gojson.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("encode schema %s: %w", name, err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(s.path(name), data, 0o644); err != nil {
		return fmt.Errorf("write schema %s: %w", name, err)
	}
	return nil
}

func (s *Store) Delete(name string) error {
	if err := os.Remove(s.path(name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete schema %s: %w", name, err)
	}
	return nil
}

// List returns the names of every stored schema, sorted.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list schemas: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), suffix) {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), suffix))
	}
	sort.Strings(names)
	return names, nil
}
