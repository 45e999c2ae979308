package cli

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/coregx/sqlgen/internal/config"
	"github.com/coregx/sqlgen/internal/core"
)

// statementOutput is the YAML form of a statement.
type statementOutput struct {
	SQL    string        `yaml:"sql"`
	Params []paramOutput `yaml:"params,omitempty"`
}

type paramOutput struct {
	Name  string `yaml:"name"`
	Value any    `yaml:"value"`
}

// render writes stmt in the given format. Text output is the SQL followed by
// one "-- @Name = value" comment per parameter.
func render(w io.Writer, format string, stmt *core.Statement) error {
	if format == config.OutputYAML {
		out := statementOutput{SQL: stmt.SQL()}
		for _, name := range stmt.Names() {
			v, _ := stmt.Value(name)
			out.Params = append(out.Params, paramOutput{Name: name, Value: v})
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(out); err != nil {
			return err
		}
		return enc.Close()
	}

	if _, err := fmt.Fprintln(w, stmt.SQL()); err != nil {
		return err
	}
	for _, name := range stmt.Names() {
		v, _ := stmt.Value(name)
		if v == nil {
			v = "NULL"
		}
		if _, err := fmt.Fprintf(w, "-- @%s = %v\n", name, v); err != nil {
			return err
		}
	}
	return nil
}
