// Package adminctl implements the mmadmin command line tool, which works on the
// store directly and needs no running server.
package adminctl

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/and161185/minuteminds/internal/app"
	"github.com/and161185/minuteminds/internal/config"
	"github.com/and161185/minuteminds/internal/migrate"
)

// opener opens the configured storage.
type opener func(ctx context.Context, cfg *config.Config, log *zap.Logger) (*app.Storage, error)

type rootOpts struct {
	configPath string
	dsn        string
	store      string
	verbose    bool
	open       opener
}

// NewRootCmd builds the mmadmin command tree.
func NewRootCmd(version, buildDate string) *cobra.Command {
	return newRootCmd(version, buildDate, app.OpenStorage)
}

func newRootCmd(version, buildDate string, open opener) *cobra.Command {
	o := &rootOpts{open: open}
	root := &cobra.Command{
		Use:           "mmadmin",
		Short:         "MinuteMinds administration",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&o.configPath, "config", "", "path to TOML config file")
	root.PersistentFlags().StringVar(&o.dsn, "dsn", "", "PostgreSQL DSN (overrides config and MM_DATABASE_DSN)")
	root.PersistentFlags().StringVar(&o.store, "store", "", "store type (postgres|memory)")
	root.PersistentFlags().BoolVarP(&o.verbose, "verbose", "v", false, "log to stderr")

	root.AddCommand(newVersionCmd(version, buildDate))
	root.AddCommand(newCreateAdminCmd(o))
	root.AddCommand(newMigrateCmd(o))
	return root
}

// config resolves defaults, file, environment and flags. The JWT secret is not
// needed offline, so the server-side validation is skipped.
func (o *rootOpts) config(getenv func(string) string) (*config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		if err := config.ReadFromFile(o.configPath, cfg); err != nil {
			return nil, err
		}
	}
	config.ApplyEnv(cfg, getenv)
	if o.dsn != "" {
		cfg.Store.DSN = o.dsn
	}
	if o.store != "" {
		cfg.Store.Type = o.store
	}
	return cfg, nil
}

func (o *rootOpts) logger() *zap.Logger {
	if !o.verbose {
		return zap.NewNop()
	}
	l, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return l
}

func newVersionCmd(version, buildDate string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version info",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "mmadmin %s (%s)\n", version, buildDate)
		},
	}
}

func newMigrateCmd(o *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := o.config(getenv)
			if err != nil {
				return err
			}
			if cfg.Store.Type != "postgres" {
				return fmt.Errorf("migrate needs the postgres store, got %q", cfg.Store.Type)
			}
			if err := migrate.Up(cmd.Context(), cfg.Store.DSN, o.logger()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}
