// Package cli provides the sqlgen command-line interface.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/coregx/sqlgen/internal/config"
	"github.com/coregx/sqlgen/internal/core"
	"github.com/coregx/sqlgen/internal/logger"
)

// Version is set at build time.
var Version = "0.1.0"

// sessionKey stores the *session in the command context.
type sessionKey struct{}

// session is the state shared by every subcommand after flags are parsed.
type session struct {
	cfg *config.Config
	gen *core.Generator
	log *logger.ZapAdapter
}

// options holds the flag values bound by the root command.
type options struct {
	cfgFile string
	entity  string
	rows    string
}

// NewRootCmd creates the root command and its subcommands.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "sqlgen",
		Short: "Generate parameterized SQL from entity definitions",
		Long: `sqlgen renders INSERT, UPDATE, DELETE, SELECT and COUNT statements with
named @parameters for SQL Server, MySQL, SQLite and PostgreSQL.

Entities are described by a YAML definition (--entity); row values for
insert, update and delete are read from a YAML list (--rows, "-" for stdin).`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.Load(opts.cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			sess, err := newSession(cfg, cmd)
			if err != nil {
				return err
			}
			if cfg.File != "" {
				sess.log.Debug("using config file", "path", cfg.File)
			}

			cmd.SetContext(context.WithValue(cmd.Context(), sessionKey{}, sess))
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			if sess, ok := cmd.Context().Value(sessionKey{}).(*session); ok {
				_ = sess.log.Sync()
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&opts.cfgFile, "config", "", "config file (default: ./sqlgen.yaml)")
	pf.String("dialect", "", "SQL dialect (mssql|mysql|sqlite|postgres)")
	pf.Bool("quote", false, "Quote identifiers with the dialect's quote characters")
	pf.String("log-level", "", "Log level (debug|info|warn|error)")
	pf.StringP("output", "o", "", "Output format (text|yaml)")
	pf.StringVarP(&opts.entity, "entity", "e", "", "Path to the YAML entity definition")
	pf.StringVarP(&opts.rows, "rows", "r", "", `Path to the YAML rows ("-" for stdin)`)

	_ = rootCmd.RegisterFlagCompletionFunc("dialect", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"mssql", "mysql", "sqlite", "postgres"}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{config.OutputText, config.OutputYAML}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(
		newRowsCommand(opts, "insert", "Generate an INSERT for one row", single(core.OpInsert)),
		newRowsCommand(opts, "bulk-insert", "Generate a multi-row INSERT", bulk(core.OpBulkInsert)),
		newRowsCommand(opts, "update", "Generate an UPDATE by key for one row", single(core.OpUpdate)),
		newRowsCommand(opts, "bulk-update", "Generate one UPDATE per row", bulk(core.OpBulkUpdate)),
		newRowsCommand(opts, "delete", "Generate a DELETE (or soft delete) for one row", single(core.OpDelete)),
		newSelectCommand(opts),
		newCountCommand(opts),
	)

	return rootCmd
}

// newSession builds the logger and generator described by cfg.
func newSession(cfg *config.Config, cmd *cobra.Command) (*session, error) {
	z, err := logger.NewZap(cfg.LogLevel, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	log := logger.NewZapAdapter(z)

	genOpts := []core.Option{
		core.WithQuote(cfg.Quote),
		core.WithLogger(log),
		core.WithTemplateCacheCapacity(cfg.CacheCapacity),
	}
	if len(cfg.SensitiveParams) > 0 {
		genOpts = append(genOpts, core.WithSensitiveParams(cfg.SensitiveParams...))
	}

	gen, err := core.New(cfg.Dialect, genOpts...)
	if err != nil {
		return nil, err
	}
	return &session{cfg: cfg, gen: gen.WithContext(cmd.Context()), log: log}, nil
}

// sessionFrom returns the session stored by the root command.
func sessionFrom(cmd *cobra.Command) (*session, error) {
	sess, ok := cmd.Context().Value(sessionKey{}).(*session)
	if !ok {
		return nil, fmt.Errorf("%s: configuration not loaded", cmd.Name())
	}
	return sess, nil
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
