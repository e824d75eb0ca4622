// Package larder opens a store described by a types.Config and hands out
// typed repositories bound to it.
package larder

import (
	"fmt"
	"os"
	"slices"
	"sync"

	"github.com/mesh-intelligence/larder/internal/codec"
	"github.com/mesh-intelligence/larder/internal/filestore"
	"github.com/mesh-intelligence/larder/internal/sqlite"
	"github.com/mesh-intelligence/larder/pkg/repo"
	"github.com/mesh-intelligence/larder/pkg/schema"
	"github.com/mesh-intelligence/larder/pkg/types"
)

// Version is the larder release.
const Version = "0.3.0"

// Larder is an open store plus the codec its records use.
type Larder struct {
	mu     sync.Mutex
	config types.Config
	store  types.Store
	codec  types.Codec
	closed bool
}

// Open validates config, creates the data directory if needed and opens the
// selected backend. An empty DataDir means the working directory.
func Open(config types.Config) (*Larder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.DataDir == "" {
		config.DataDir = "."
	}
	if err := os.MkdirAll(config.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: creating data dir: %w", types.ErrIO, err)
	}

	c, err := codec.ForFormat(config.RecordFormat())
	if err != nil {
		return nil, err
	}

	var store types.Store
	switch config.Backend {
	case types.BackendFiles:
		store, err = filestore.NewDir(config.DataDir, c.Ext())
	case types.BackendJSONL:
		store, err = filestore.NewJSONL(config.DataDir)
	case types.BackendSQLite:
		store, err = sqlite.Open(config.DataDir)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s backend: %w", types.ErrIO, config.Backend, err)
	}

	return &Larder{config: config, store: store, codec: c}, nil
}

// Config returns the configuration the larder was opened with.
func (l *Larder) Config() types.Config { return l.config }

// Store returns the underlying store.
func (l *Larder) Store() types.Store { return l.store }

// Close releases the store. Idempotent.
func (l *Larder) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	return l.store.Close()
}

// Repo returns a repository for s bound to the larder's store and codec.
// The larder's codec always wins over a WithCodec option, since the store's
// file layout was fixed for it at Open.
func Repo[T schema.Entity](l *Larder, s *schema.Schema[T], opts ...repo.Option[T]) *repo.Repository[T] {
	all := append(slices.Clone(opts), repo.WithCodec[T](l.codec))
	return repo.New(l.store, s, all...)
}
