package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/larder/internal/loader"
	"github.com/mesh-intelligence/larder/pkg/catalog"
	"github.com/mesh-intelligence/larder/pkg/entities"
	"github.com/mesh-intelligence/larder/pkg/larder"
	"github.com/mesh-intelligence/larder/pkg/result"
	"github.com/mesh-intelligence/larder/pkg/types"
)

// summary is what import and apply print for one section.
type summary struct {
	Section string   `json:"section" yaml:"section"`
	Applied int      `json:"applied" yaml:"applied"`
	Failed  []string `json:"failed,omitempty" yaml:"failed,omitempty"`
}

func summarize[T any](section string, rs []result.Result[T]) summary {
	s := summary{Section: section}
	for _, r := range rs {
		if err := r.Error(); err != nil {
			s.Failed = append(s.Failed, err.Error())
			continue
		}
		s.Applied++
	}
	return s
}

// report prints the summaries and fails with a user error when any item was
// rejected.
func (a *app) report(cmd *cobra.Command, sums ...summary) error {
	if err := a.print(cmd, sums); err != nil {
		return err
	}
	failed := 0
	for _, s := range sums {
		failed += len(s.Failed)
	}
	if failed > 0 {
		return userError(fmt.Errorf("%d item(s) rejected", failed))
	}
	return nil
}

// loadFailure classifies a loader error: unreadable files are user errors
// here since the path came from the command line.
func loadFailure(err error) error {
	if errors.Is(err, types.ErrIO) || errors.Is(err, types.ErrSerialization) {
		return userError(err)
	}
	return failure(err)
}

func (a *app) newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <users|products|system> <file>",
		Short: "Create entities from a YAML file",
		Long: "Import reads a YAML list of users or products and creates each one.\n" +
			"A system file names a system and lists product archives (.tar.gz with a\n" +
			"product.yml inside) relative to the file; the products are created\n" +
			"first, then the system.",
		Example: "  larder import users users.yaml\n  larder import system falcon.yaml",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, path := args[0], args[1]
			return a.openCatalog(func(l *larder.Larder) error {
				ld := loader.New(catalog.New(l), a.log)
				switch kind {
				case "users":
					rs, err := ld.LoadUsers(path)
					if err != nil {
						return loadFailure(err)
					}
					return a.report(cmd, summarize("users", rs))
				case "products":
					rs, err := ld.LoadProducts(path)
					if err != nil {
						return loadFailure(err)
					}
					return a.report(cmd, summarize("products", rs))
				case "system":
					load, err := ld.LoadSystem(path)
					if err != nil {
						return loadFailure(err)
					}
					return a.report(cmd,
						summarize("products", load.Products),
						summarize("systems", []result.Result[entities.System]{load.System}))
				}
				return userError(fmt.Errorf("cannot import %q (valid: users, products, system)", kind))
			})
		},
	}
}

func (a *app) newApplyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "apply <file>",
		Short: "Apply a YAML configuration document",
		Long: "Apply creates the product_groups listed in the document and patches the\n" +
			"products, users and systems it lists by id with the other fields given.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.openCatalog(func(l *larder.Larder) error {
				applied, err := loader.New(catalog.New(l), a.log).ApplyConfig(args[0])
				if err != nil {
					return loadFailure(err)
				}
				return a.report(cmd,
					summarize("product_groups", applied.ProductGroups),
					summarize("products", applied.Products),
					summarize("users", applied.Users),
					summarize("systems", applied.Systems))
			})
		},
	}
}
