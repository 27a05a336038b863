// Package editor collects free text by running the user's editor on a
// scratch file.
package editor

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// DefaultScratchFile is created in the working directory while editing.
const DefaultScratchFile = "__issue__.msg"

// ErrNoEditor means no editor was configured and none was found on PATH.
var ErrNoEditor = errors.New("no shell editor found; set $EDITOR")

// fallbacks are tried in order when neither config nor $EDITOR name one.
var fallbacks = []string{"nano", "vim", "vi", "emacs"}

// Resolve picks the editor command: configured, then the first entry of
// $EDITOR, then the first fallback on PATH.
func Resolve(configured string) (string, error) {
	if c := strings.TrimSpace(configured); c != "" {
		return c, nil
	}
	if env := os.Getenv("EDITOR"); env != "" {
		first, _, _ := strings.Cut(env, ":")
		if first = strings.TrimSpace(first); first != "" {
			return first, nil
		}
	}
	for _, name := range fallbacks {
		if _, err := exec.LookPath(name); err == nil {
			return name, nil
		}
	}
	return "", ErrNoEditor
}

// Editor runs Command on a scratch file in Dir.
type Editor struct {
	// Command may carry arguments, e.g. "code --wait".
	Command string
	Dir     string
	Scratch string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// New returns an Editor wired to the process's terminal.
func New(command, dir, scratch string) *Editor {
	if scratch == "" {
		scratch = DefaultScratchFile
	}
	return &Editor{
		Command: command,
		Dir:     dir,
		Scratch: scratch,
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
	}
}

// Path is the scratch file location.
func (e *Editor) Path() string {
	return filepath.Join(e.Dir, e.Scratch)
}

// Compose opens the editor on a scratch file seeded with initial and blocks
// until it exits. It returns the trimmed text, which is empty when the user
// saved nothing or removed the file. A scratch file that already exists is
// moved to a "~" backup first. The scratch file is always removed afterwards.
func (e *Editor) Compose(initial string) (string, error) {
	fields := strings.Fields(e.Command)
	if len(fields) == 0 {
		return "", ErrNoEditor
	}
	path := e.Path()

	if _, err := os.Stat(path); err == nil {
		backup := path + "~"
		if err := os.Rename(path, backup); err != nil {
			return "", fmt.Errorf("editor: back up %s: %w", path, err)
		}
		log.Printf("editor: moved existing %s to %s", path, backup)
	}
	defer e.cleanup(path)

	if initial != "" {
		if err := os.WriteFile(path, []byte(initial), 0o644); err != nil {
			return "", fmt.Errorf("editor: write %s: %w", path, err)
		}
	}

	cmd := exec.Command(fields[0], append(fields[1:], path)...)
	cmd.Dir = e.Dir
	cmd.Stdin = e.Stdin
	cmd.Stdout = e.Stdout
	cmd.Stderr = e.Stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("editor: %s exited with error: %w", fields[0], err)
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("editor: read %s: %w", path, err)
	}
	return strings.TrimSpace(string(data)), nil
}

func (e *Editor) cleanup(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("editor: remove %s: %v", path, err)
	}
}
