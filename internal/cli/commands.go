package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/coregx/sqlgen/internal/core"
	"github.com/coregx/sqlgen/internal/schema"
)

// rowsFunc generates a statement from rows of one entity.
type rowsFunc func(g *core.Generator, rows []*schema.Row) (*core.Statement, error)

// single generates op for exactly one row.
func single(op string) rowsFunc {
	return func(g *core.Generator, rows []*schema.Row) (*core.Statement, error) {
		if len(rows) != 1 {
			return nil, fmt.Errorf("%s needs exactly one row, got %d", op, len(rows))
		}
		switch op {
		case core.OpInsert:
			return g.Insert(rows[0])
		case core.OpUpdate:
			return g.Update(rows[0])
		default:
			return g.Delete(rows[0])
		}
	}
}

// bulk generates op for every row.
func bulk(op string) rowsFunc {
	return func(g *core.Generator, rows []*schema.Row) (*core.Statement, error) {
		if op == core.OpBulkInsert {
			return g.BulkInsert(rows)
		}
		return g.BulkUpdate(rows)
	}
}

func newRowsCommand(opts *options, use, short string, generate rowsFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Example: fmt.Sprintf(`  sqlgen %s --entity product.yaml --rows rows.yaml
  cat rows.yaml | sqlgen %s --entity product.yaml --rows - --dialect postgres`, use, use),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := sessionFrom(cmd)
			if err != nil {
				return err
			}
			d, err := loadEntity(opts.entity)
			if err != nil {
				return err
			}
			rows, err := loadRows(cmd, opts.rows, d)
			if err != nil {
				return err
			}

			stmt, err := generate(sess.gen, rows)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), sess.cfg.Output, stmt)
		},
	}
}

func newSelectCommand(opts *options) *cobra.Command {
	var (
		includes []string
		keys     []string
		first    bool
	)

	cmd := &cobra.Command{
		Use:   "select",
		Short: "Generate a SELECT with optional joins",
		Long: `Generate a SELECT of every selectable column. --include adds the joins
declared for the named fields; --key filters by key values given in key
order; --first limits the result to one row.`,
		Example: `  sqlgen select --entity order.yaml --include Product
  sqlgen select --entity order.yaml --key 42 --dialect postgres --quote`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := sessionFrom(cmd)
			if err != nil {
				return err
			}
			d, err := loadEntity(opts.entity)
			if err != nil {
				return err
			}

			var stmt *core.Statement
			switch {
			case cmd.Flags().Changed("key"):
				values, err := parseKeys(keys)
				if err != nil {
					return err
				}
				stmt, err = sess.gen.SelectByKey(d, values, includes...)
				if err != nil {
					return err
				}
			case first:
				if stmt, err = sess.gen.SelectFirst(d, includes...); err != nil {
					return err
				}
			default:
				if stmt, err = sess.gen.Select(d, includes...); err != nil {
					return err
				}
			}
			return render(cmd.OutOrStdout(), sess.cfg.Output, stmt)
		},
	}

	cmd.Flags().StringSliceVarP(&includes, "include", "i", nil, "Navigation fields to join")
	cmd.Flags().StringSliceVarP(&keys, "key", "k", nil, "Key values in key order")
	cmd.Flags().BoolVar(&first, "first", false, "Select the first row only")
	cmd.MarkFlagsMutuallyExclusive("key", "first")

	return cmd
}

func newCountCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:     "count",
		Short:   "Generate a COUNT(*) excluding soft-deleted rows",
		Example: `  sqlgen count --entity order.yaml`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := sessionFrom(cmd)
			if err != nil {
				return err
			}
			d, err := loadEntity(opts.entity)
			if err != nil {
				return err
			}
			stmt, err := sess.gen.Count(d)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), sess.cfg.Output, stmt)
		},
	}
}

// loadEntity reads the YAML entity definition at path.
func loadEntity(path string) (*schema.Descriptor, error) {
	if path == "" {
		return nil, errors.New("--entity is required")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open entity definition: %w", err)
	}
	defer f.Close()

	d, err := schema.LoadDefinition(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// loadRows reads the YAML rows at path, or from stdin when path is "-".
func loadRows(cmd *cobra.Command, path string, d *schema.Descriptor) ([]*schema.Row, error) {
	var r io.Reader
	switch path {
	case "":
		return nil, errors.New("--rows is required")
	case "-":
		r = cmd.InOrStdin()
	default:
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open rows: %w", err)
		}
		defer f.Close()
		r = f
	}

	rows, err := schema.LoadRows(r, d)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

// parseKeys decodes each key as a YAML scalar, so "42" binds as an integer
// and "abc" as a string.
func parseKeys(raw []string) ([]any, error) {
	values := make([]any, len(raw))
	for i, s := range raw {
		if err := yaml.Unmarshal([]byte(s), &values[i]); err != nil {
			return nil, fmt.Errorf("key %d: %w", i, err)
		}
	}
	return values, nil
}
