package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/larder/internal/codec"
	"github.com/mesh-intelligence/larder/pkg/larder"
)

// withCollection opens the store, looks up the named collection and runs fn.
func (a *app) withCollection(name string, fn func(c collection) error) error {
	l, err := a.open()
	if err != nil {
		return err
	}
	defer l.Close()

	c, err := lookup(l, name)
	if err != nil {
		return err
	}
	return fn(c)
}

func (a *app) newSaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "save <collection> <json>",
		Short: "Validate and store an entity, replacing any with the same id",
		Example: `  larder save books '{"id":"b1","title":"Dune","year":1965}'
  larder save product_groups '{"tag":"core","path":"/core"}'`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, err := codec.JSON{}.Unmarshal([]byte(args[1]))
			if err != nil {
				return userError(fmt.Errorf("parse JSON: %w", err))
			}
			return a.withCollection(args[0], func(c collection) error {
				saved, err := c.save(fields)
				if err != nil {
					return failure(err)
				}
				a.log.Info("entity saved", slog.String("collection", args[0]), slog.Any("id", saved["id"]))
				return a.print(cmd, saved)
			})
		},
	}
}

func (a *app) newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "get <collection> <id>",
		Short:   "Print the entity stored under an id",
		Example: "  larder get books b1",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withCollection(args[0], func(c collection) error {
				e, err := c.get(args[1])
				if err != nil {
					return failure(err)
				}
				return a.print(cmd, e)
			})
		},
	}
}

func (a *app) newListCmd() *cobra.Command {
	var skipInvalid bool
	cmd := &cobra.Command{
		Use:   "list <collection>",
		Short: "Print every entity of a collection, ordered by id",
		Long: "List fails if any stored record cannot be loaded. With --skip-invalid\n" +
			"such records are reported on stderr and the rest are printed.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withCollection(args[0], func(c collection) error {
				if !skipInvalid {
					all, err := c.list()
					if err != nil {
						return failure(err)
					}
					return a.print(cmd, all)
				}
				all, failures, err := c.scan()
				if err != nil {
					return failure(err)
				}
				for _, f := range failures {
					a.log.Warn("record skipped", slog.String("collection", args[0]), slog.String("id", f.ID), slog.String("error", f.Err.Error()))
					fmt.Fprintf(cmd.ErrOrStderr(), "skipped %s: %v\n", f.ID, f.Err)
				}
				return a.print(cmd, all)
			})
		},
	}
	cmd.Flags().BoolVar(&skipInvalid, "skip-invalid", false, "skip records that fail to load instead of failing")
	return cmd
}

func (a *app) newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <collection> <id>",
		Short:   "Remove the entity stored under an id",
		Example: "  larder delete books b1",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withCollection(args[0], func(c collection) error {
				if err := c.remove(args[1]); err != nil {
					return failure(err)
				}
				a.log.Info("entity deleted", slog.String("collection", args[0]), slog.String("id", args[1]))
				if a.jsonMode {
					return a.print(cmd, map[string]any{"deleted": args[1]})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s %s\n", args[0], args[1])
				return nil
			})
		},
	}
}

// openCatalog opens the store for commands that work across collections.
func (a *app) openCatalog(fn func(l *larder.Larder) error) error {
	l, err := a.open()
	if err != nil {
		return err
	}
	defer l.Close()
	return fn(l)
}

