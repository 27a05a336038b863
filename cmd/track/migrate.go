package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/zulandar/track/internal/config"
	"github.com/zulandar/track/internal/migrate"
)

func newMigrateCmd() *cobra.Command {
	var (
		to   string
		path string
	)

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Rewrite the issue store in the current format",
		Long: `Loads the issue store, upgrading records written by older versions, and
writes it back in the current format.

With --to the issues are copied into another backend instead. The source
is left untouched; point storage.backend and storage.path at the new
store once you are happy with it.

Safe to run multiple times (idempotent).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd, to, path)
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "target backend (file or sqlite)")
	cmd.Flags().StringVar(&path, "path", "", "target path (default depends on --to)")
	return cmd
}

func runMigrate(cmd *cobra.Command, to, path string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()
	out := cmd.OutOrStdout()

	if to == "" {
		if path != "" {
			return fmt.Errorf("migrate: --path requires --to")
		}
		if err := a.store.Save(); err != nil {
			return err
		}
		reportMigrate(out, a.store.Len(), a.cfg.Storage.Backend, a.cfg.Storage.Path)
		return nil
	}

	if to != config.BackendFile && to != config.BackendSQLite {
		return fmt.Errorf("migrate: unknown backend %q (want %s or %s)", to, config.BackendFile, config.BackendSQLite)
	}
	if path == "" {
		path = config.DefaultStoragePath(to)
	}
	target := resolvePath(a.dir, path)
	if to == a.cfg.Storage.Backend && target == resolvePath(a.dir, a.cfg.Storage.Path) {
		return fmt.Errorf("migrate: %s is the current store", path)
	}

	backend, closeBackend, err := openBackend(to, target)
	if err != nil {
		return err
	}
	defer closeBackend()

	if err := backend.Save(migrate.Build(a.store.Issues(), a.store.MaxID())); err != nil {
		return fmt.Errorf("migrate: write %s: %w", path, err)
	}
	reportMigrate(out, a.store.Len(), to, path)
	fmt.Fprintf(out, "Set storage.backend: %s and storage.path: %s in %s to use it.\n", to, path, config.DefaultPath)
	return nil
}

func reportMigrate(out io.Writer, n int, backend, path string) {
	fmt.Fprintf(out, "Wrote %d issues (format version %d) to %s store %s\n", n, migrate.CurrentVersion, backend, path)
}
