package loader

import (
	"archive/tar"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/larder/pkg/entities"
	"github.com/mesh-intelligence/larder/pkg/result"
	"github.com/mesh-intelligence/larder/pkg/types"
)

// ManifestName is the product description every product archive carries.
const ManifestName = "product.yml"

// archiveVersion extracts the version from names like "falcon-core-1.2.0.tar.gz".
var archiveVersion = regexp.MustCompile(`-([\d.]+)\.tar\.gz$`)

var errNoManifest = errors.New("archive has no " + ManifestName)

// systemDocument is the layout of a system file. Product entries are paths
// to product archives, relative to the system file.
type systemDocument struct {
	ID       string   `yaml:"id"`
	Name     string   `yaml:"name"`
	Products []string `yaml:"products"`
}

// SystemLoad is the outcome of LoadSystem.
type SystemLoad struct {
	Products []result.Result[entities.Product]
	System   result.Result[entities.System]
}

// LoadSystem reads a system file, creates a product from the manifest of each
// archive it lists and then creates the system over those products. The
// product version comes from the archive name.
func (l *Loader) LoadSystem(path string) (SystemLoad, error) {
	var doc systemDocument
	if err := readYAML(path, &doc); err != nil {
		return SystemLoad{}, err
	}

	var load SystemLoad
	ids := []string{}
	for _, ref := range doc.Products {
		archive := filepath.Join(filepath.Dir(path), ref)
		fields, err := readManifest(archive)
		if err != nil {
			return SystemLoad{}, err
		}
		version := ""
		if m := archiveVersion.FindStringSubmatch(filepath.Base(archive)); m != nil {
			version = m[1]
		}
		fields["version"] = version

		p, err := entities.NewProduct(fields)
		var r result.Result[entities.Product]
		if err != nil {
			r = result.Err[entities.Product](err)
		} else {
			ids = append(ids, p.ID)
			r = l.catalog.CreateProduct(p)
		}
		l.logItem("products", fields, r.Error())
		load.Products = append(load.Products, r)
	}

	system := map[string]any{"id": doc.ID, "name": doc.Name, "product_ids": ids}
	load.System = result.AndThen(result.From(entities.NewSystem(system)), l.catalog.CreateSystem)
	l.logItem("systems", system, load.System.Error())
	return load, nil
}

// readManifest returns the decoded product manifest inside a .tar.gz archive.
func readManifest(archive string) (map[string]any, error) {
	f, err := os.Open(archive)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %w", types.ErrIO, archive, err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", types.ErrSerialization, archive, err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil, fmt.Errorf("%w: %s: %w", types.ErrSerialization, archive, errNoManifest)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", types.ErrSerialization, archive, err)
		}
		if filepath.Clean(hdr.Name) != ManifestName {
			continue
		}
		var fields map[string]any
		if err := yaml.NewDecoder(tr).Decode(&fields); err != nil && err != io.EOF {
			return nil, fmt.Errorf("%w: %s: %w", types.ErrSerialization, archive, err)
		}
		if fields == nil {
			fields = map[string]any{}
		}
		return fields, nil
	}
}
