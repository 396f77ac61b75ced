package sync

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// DefaultGitBranch is used when no branch is configured.
const DefaultGitBranch = "main"

// GitDestination writes the snapshot to a file in a local clone, commits it
// when it changed and pushes to origin.
type GitDestination struct {
	repo   string
	file   string
	branch string
	author string
	now    func() time.Time
}

// GitOption configures a GitDestination.
type GitOption func(*GitDestination)

// WithGitAuthor sets the commit author ("Name <email>").
func WithGitAuthor(author string) GitOption {
	return func(d *GitDestination) { d.author = author }
}

// NewGitDestination creates a git destination. repo is the path to an
// existing local clone and file is relative to it.
func NewGitDestination(repo, file, branch string, opts ...GitOption) *GitDestination {
	if branch == "" {
		branch = DefaultGitBranch
	}
	d := &GitDestination{
		repo:   repo,
		file:   file,
		branch: branch,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// String describes the destination for logs.
func (d *GitDestination) String() string {
	return fmt.Sprintf("git:%s/%s@%s", d.repo, d.file, d.branch)
}

// Write writes data to the configured file, commits and pushes. An unchanged
// file produces no commit.
func (d *GitDestination) Write(ctx context.Context, data []byte) error {
	if _, err := d.git(ctx, "checkout", d.branch); err != nil {
		return err
	}
	// The remote may not have the branch yet.
	_, _ = d.git(ctx, "pull", "--ff-only", "origin", d.branch)

	path := filepath.Join(d.repo, d.file)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating export dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing export: %w", err)
	}

	if _, err := d.git(ctx, "add", d.file); err != nil {
		return err
	}
	if _, err := d.git(ctx, "diff", "--cached", "--quiet"); err == nil {
		return nil
	}

	args := []string{"commit", "-m", "sync: lead snapshot " + d.now().UTC().Format(time.RFC3339)}
	if d.author != "" {
		args = append(args, "--author", d.author)
	}
	if _, err := d.git(ctx, args...); err != nil {
		return err
	}
	if _, err := d.git(ctx, "push", "origin", d.branch); err != nil {
		return err
	}
	return nil
}

// git runs a git subcommand in the clone. Failures include the combined output.
func (d *GitDestination) git(ctx context.Context, args ...string) (string, error) {
	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = d.repo
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		return out.String(), fmt.Errorf("git %s: %w: %s", args[0], err, strings.TrimSpace(out.String()))
	}
	return out.String(), nil
}
