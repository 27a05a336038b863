// Package git reads revision information from the repository the issues
// live in. It shells out to the git CLI.
package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrRepositoryMissing means the directory is not inside a git work tree.
	ErrRepositoryMissing = errors.New("no git repository found")
	// ErrNoCommits means the repository has no HEAD commit yet.
	ErrNoCommits = errors.New("git repository has no commits")
)

// Commit is the subset of commit metadata shown next to an issue.
type Commit struct {
	Hash    string
	Author  string
	Date    time.Time
	Message string
}

// Repo runs git commands against one repository.
type Repo struct {
	gitPath string
	dir     string
}

// Open locates git and verifies that dir is inside a work tree with at least
// one commit.
func Open(ctx context.Context, dir string) (*Repo, error) {
	gitPath, err := exec.LookPath("git")
	if err != nil {
		return nil, fmt.Errorf("git: not found in PATH: %w", err)
	}
	r := &Repo{gitPath: gitPath, dir: dir}

	if _, err := r.run(ctx, "rev-parse", "--git-dir"); err != nil {
		return nil, fmt.Errorf("git: %s: %w", dir, ErrRepositoryMissing)
	}
	if _, err := r.Head(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

// Dir returns the directory git runs in.
func (r *Repo) Dir() string { return r.dir }

// Head returns the full hash of the HEAD commit.
func (r *Repo) Head(ctx context.Context) (string, error) {
	out, err := r.run(ctx, "rev-parse", "--verify", "--quiet", "HEAD^{commit}")
	if err != nil {
		return "", fmt.Errorf("git: %s: %w", r.dir, ErrNoCommits)
	}
	return out, nil
}

// commitFormat separates fields with NUL so messages may contain anything
// but NUL.
const commitFormat = "--format=%H%x00%an <%ae>%x00%ct%x00%B"

// Commit looks up a commit by any revision expression.
func (r *Repo) Commit(ctx context.Context, rev string) (*Commit, error) {
	if rev == "" {
		return nil, fmt.Errorf("git: revision is required")
	}
	out, err := r.run(ctx, "show", "-s", commitFormat, rev, "--")
	if err != nil {
		return nil, fmt.Errorf("git: show %s: %w", rev, err)
	}
	return parseCommit(out)
}

func parseCommit(out string) (*Commit, error) {
	fields := strings.SplitN(out, "\x00", 4)
	if len(fields) != 4 {
		return nil, fmt.Errorf("git: unexpected show output: %q", out)
	}
	secs, err := strconv.ParseInt(fields[2], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("git: parse commit time %q: %w", fields[2], err)
	}
	return &Commit{
		Hash:    fields[0],
		Author:  fields[1],
		Date:    time.Unix(secs, 0).UTC(),
		Message: strings.TrimRight(fields[3], "\n"),
	}, nil
}

// run executes git in the repo directory and returns trimmed stdout.
func (r *Repo) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, r.gitPath, append([]string{"-C", r.dir}, args...)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("%w: %s", err, msg)
		}
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}
