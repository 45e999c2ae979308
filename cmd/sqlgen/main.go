// Command sqlgen generates parameterized SQL statements from YAML entity
// definitions.
package main

import (
	"os"

	"github.com/coregx/sqlgen/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
