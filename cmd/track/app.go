package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/zulandar/track/internal/config"
	"github.com/zulandar/track/internal/db"
	"github.com/zulandar/track/internal/editor"
	"github.com/zulandar/track/internal/git"
	"github.com/zulandar/track/internal/store"
)

const defaultConfigPath = config.DefaultPath

// stdinIsTerminal reports whether messages can be composed interactively.
var stdinIsTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// app is everything a store command needs, opened from the global flags.
type app struct {
	cfg   *config.Config
	dir   string
	repo  *git.Repo
	store *store.Store
	close func()
}

// openApp verifies the repository, loads config and opens the store.
func openApp(cmd *cobra.Command) (*app, error) {
	dir, _ := cmd.Flags().GetString("dir")
	configPath, _ := cmd.Flags().GetString("config")

	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", dir, err)
	}

	repo, err := git.Open(cmd.Context(), dir)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(resolvePath(dir, configPath))
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	backend, closeBackend, err := openBackend(cfg.Storage.Backend, resolvePath(dir, cfg.Storage.Path))
	if err != nil {
		return nil, err
	}
	s, err := store.Open(backend, repo)
	if err != nil {
		closeBackend()
		return nil, err
	}
	if n := s.Repaired(); n > 0 {
		log.Printf("track: repaired %d inconsistent parent/child links", n)
	}

	return &app{cfg: cfg, dir: dir, repo: repo, store: s, close: closeBackend}, nil
}

// openBackend returns the backend for kind at path and a func releasing it.
func openBackend(kind, path string) (store.Backend, func(), error) {
	switch kind {
	case config.BackendSQLite:
		gormDB, err := db.Open(path)
		if err != nil {
			return nil, nil, err
		}
		closeDB := func() {
			if err := db.Close(gormDB); err != nil {
				log.Printf("track: %v", err)
			}
		}
		b, err := db.NewBackend(gormDB)
		if err != nil {
			closeDB()
			return nil, nil, err
		}
		return b, closeDB, nil
	case config.BackendFile:
		return store.NewFileBackend(path), func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown storage backend %q", kind)
}

func resolvePath(dir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

// parseID converts a command-line issue id.
func parseID(s string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid issue id %q: %w", s, store.ErrInvalidInput)
	}
	return id, nil
}

// useColor decides whether output written to out gets ANSI colors.
func useColor(cmd *cobra.Command, cfg *config.Config) bool {
	if off, _ := cmd.Flags().GetBool("no-color"); off {
		return false
	}
	switch cfg.Color {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := cmd.OutOrStdout().(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// composeMessage returns the issue text: text when given is set, otherwise
// piped stdin, otherwise the editor seeded with initial.
func (a *app) composeMessage(cmd *cobra.Command, text string, given bool, initial string) (string, error) {
	if given {
		return strings.TrimSpace(text), nil
	}
	if !stdinIsTerminal() {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read message from stdin: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	}

	command, err := editor.Resolve(a.cfg.Editor)
	if err != nil {
		return "", err
	}
	ed := editor.New(command, a.dir, a.cfg.ScratchFile)
	ed.Stdout = cmd.OutOrStdout()
	ed.Stderr = cmd.ErrOrStderr()
	return ed.Compose(initial)
}
