// Package loader imports catalog data from YAML files. Seed lists create
// users and products; configuration documents create product groups and
// patch existing entities by id.
package loader

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/larder/internal/logger"
	"github.com/mesh-intelligence/larder/pkg/catalog"
	"github.com/mesh-intelligence/larder/pkg/entities"
	"github.com/mesh-intelligence/larder/pkg/result"
	"github.com/mesh-intelligence/larder/pkg/types"
)

// Loader applies YAML files to a catalog.
type Loader struct {
	catalog *catalog.Catalog
	log     *slog.Logger
}

// New returns a loader writing to c. A nil logger discards output.
func New(c *catalog.Catalog, log *slog.Logger) *Loader {
	if log == nil {
		log = logger.Discard()
	}
	return &Loader{catalog: c, log: log}
}

// LoadUsers creates one user per item of the YAML list at path. The error is
// set only when the file cannot be read or parsed; per-item outcomes are in
// the results, in file order.
func (l *Loader) LoadUsers(path string) ([]result.Result[entities.User], error) {
	var items []map[string]any
	if err := readYAML(path, &items); err != nil {
		return nil, err
	}
	out := make([]result.Result[entities.User], 0, len(items))
	for _, item := range items {
		r := result.AndThen(result.From(entities.NewUser(item)), l.catalog.CreateUser)
		l.logItem("users", item, r.Error())
		out = append(out, r)
	}
	return out, nil
}

// LoadProducts creates one product per item of the YAML list at path.
func (l *Loader) LoadProducts(path string) ([]result.Result[entities.Product], error) {
	var items []map[string]any
	if err := readYAML(path, &items); err != nil {
		return nil, err
	}
	out := make([]result.Result[entities.Product], 0, len(items))
	for _, item := range items {
		r := result.AndThen(result.From(entities.NewProduct(item)), l.catalog.CreateProduct)
		l.logItem("products", item, r.Error())
		out = append(out, r)
	}
	return out, nil
}

func (l *Loader) logItem(collection string, item map[string]any, err error) {
	if err != nil {
		l.log.Warn("item rejected",
			slog.String("collection", collection),
			slog.Any("id", item["id"]),
			slog.String("error", err.Error()))
		return
	}
	l.log.Debug("item created", slog.String("collection", collection), slog.Any("id", item["id"]))
}

// readYAML decodes the file at path into v. An empty file leaves v unchanged.
func readYAML(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: reading %s: %w", types.ErrIO, path, err)
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: parsing %s: %w", types.ErrSerialization, path, err)
	}
	return nil
}
