package filestore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/mesh-intelligence/larder/pkg/types"
)

// Compile-time interface check.
var _ types.Store = (*Dir)(nil)

// Dir stores each record in its own file:
// <root>/<collection>/<EncodeName(id)><ext>.
type Dir struct {
	mu     sync.RWMutex
	root   string
	ext    string
	closed bool
}

// NewDir creates root if needed and returns a store writing files with the
// given extension (".json", ".yaml").
func NewDir(root, ext string) (*Dir, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}
	return &Dir{root: root, ext: ext}, nil
}

// Root returns the directory the store writes under.
func (d *Dir) Root() string { return d.root }

// Path returns the file that holds id in collection.
func (d *Dir) Path(collection, id string) string {
	return filepath.Join(d.collectionDir(collection), EncodeName(id)+d.ext)
}

func (d *Dir) collectionDir(collection string) string {
	return filepath.Join(d.root, EncodeName(collection))
}

// Read returns the record file contents. Returns ErrNotFound if absent.
func (d *Dir) Read(collection, id string) ([]byte, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return nil, types.ErrStoreClosed
	}

	data, err := os.ReadFile(d.Path(collection, id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("reading %s/%s: %w", collection, id, err)
	}
	return data, nil
}

// Write replaces the record file atomically.
func (d *Dir) Write(collection, id string, body []byte) error {
	if id == "" {
		return types.ErrInvalidID
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return types.ErrStoreClosed
	}

	if err := os.MkdirAll(d.collectionDir(collection), 0o755); err != nil {
		return fmt.Errorf("creating collection dir: %w", err)
	}
	if err := writeFileAtomic(d.Path(collection, id), body); err != nil {
		return fmt.Errorf("writing %s/%s: %w", collection, id, err)
	}
	return nil
}

// Remove deletes the record file. Returns ErrNotFound if absent.
func (d *Dir) Remove(collection, id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return types.ErrStoreClosed
	}

	if err := os.Remove(d.Path(collection, id)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return types.ErrNotFound
		}
		return fmt.Errorf("removing %s/%s: %w", collection, id, err)
	}
	return nil
}

// Keys lists identifiers decoded from the file names in the collection
// directory. Temp files and files with other extensions are skipped.
func (d *Dir) Keys(collection string) ([]string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return nil, types.ErrStoreClosed
	}

	entries, err := os.ReadDir(d.collectionDir(collection))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("listing %s: %w", collection, err)
	}

	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, tempPrefix) || !strings.HasSuffix(name, d.ext) {
			continue
		}
		id, err := DecodeName(strings.TrimSuffix(name, d.ext))
		if err != nil {
			// Foreign file dropped into the directory; not one of ours.
			continue
		}
		keys = append(keys, id)
	}
	sort.Strings(keys)
	return keys, nil
}

// Close marks the store closed. Idempotent.
func (d *Dir) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}
