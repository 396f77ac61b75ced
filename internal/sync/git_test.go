package sync

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

// newGitRepo creates a bare remote and a clone of it with one commit on
// main, and returns the clone path.
func newGitRepo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not found in PATH")
	}

	remoteDir := t.TempDir()
	run(t, remoteDir, "git", "init", "--bare")

	workDir := t.TempDir()
	run(t, workDir, "git", "clone", remoteDir, "repo")
	repoDir := filepath.Join(workDir, "repo")

	run(t, repoDir, "git", "config", "user.email", "test@test.com")
	run(t, repoDir, "git", "config", "user.name", "Test")
	run(t, repoDir, "git", "symbolic-ref", "HEAD", "refs/heads/main")

	if err := os.WriteFile(filepath.Join(repoDir, ".gitkeep"), nil, 0o644); err != nil {
		t.Fatalf("write .gitkeep: %v", err)
	}
	run(t, repoDir, "git", "add", ".")
	run(t, repoDir, "git", "commit", "-m", "init")
	run(t, repoDir, "git", "push", "origin", "main")
	return repoDir
}

func commitCount(t *testing.T, repoDir string) int {
	t.Helper()
	out, err := exec.Command("git", "-C", repoDir, "rev-list", "--count", "HEAD").Output()
	if err != nil {
		t.Fatalf("rev-list: %v", err)
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(out)))
	if err != nil {
		t.Fatalf("rev-list output %q: %v", out, err)
	}
	return n
}

func TestGitDestination(t *testing.T) {
	repoDir := newGitRepo(t)
	dest := NewGitDestination(repoDir, "leads.jsonl", "main")

	data1 := []byte(`{"version":"1","type":"header"}` + "\n")
	if err := dest.Write(context.Background(), data1); err != nil {
		t.Fatalf("first write: %v", err)
	}
	got, err := os.ReadFile(filepath.Join(repoDir, "leads.jsonl"))
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	if string(got) != string(data1) {
		t.Fatalf("file content mismatch: got %q", string(got))
	}
	if n := commitCount(t, repoDir); n != 2 {
		t.Fatalf("expected 2 commits, got %d", n)
	}

	// Same data is a no-op.
	if err := dest.Write(context.Background(), data1); err != nil {
		t.Fatalf("second write (no-op): %v", err)
	}
	if n := commitCount(t, repoDir); n != 2 {
		t.Fatalf("unchanged export should not commit, got %d commits", n)
	}

	data2 := []byte(`{"version":"1","type":"header","lead_count":1}` + "\n")
	if err := dest.Write(context.Background(), data2); err != nil {
		t.Fatalf("third write: %v", err)
	}
	if n := commitCount(t, repoDir); n != 3 {
		t.Fatalf("expected 3 commits, got %d", n)
	}
}

func TestGitDestination_SubDirectoryAndAuthor(t *testing.T) {
	repoDir := newGitRepo(t)
	dest := NewGitDestination(repoDir, "data/leads.jsonl", "", WithGitAuthor("Sync Bot <sync@example.com>"))

	data := []byte(`{"type":"header"}` + "\n")
	if err := dest.Write(context.Background(), data); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := os.ReadFile(filepath.Join(repoDir, "data", "leads.jsonl"))
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	if string(got) != string(data) {
		t.Fatalf("content mismatch: got %q", string(got))
	}

	out, err := exec.Command("git", "-C", repoDir, "log", "-1", "--format=%an|%s").Output()
	if err != nil {
		t.Fatalf("git log: %v", err)
	}
	line := strings.TrimSpace(string(out))
	if !strings.HasPrefix(line, "Sync Bot|sync: lead snapshot ") {
		t.Errorf("unexpected commit: %q", line)
	}
}

func TestGitDestination_BadBranch(t *testing.T) {
	repoDir := newGitRepo(t)
	dest := NewGitDestination(repoDir, "leads.jsonl", "no-such-branch")
	err := dest.Write(context.Background(), []byte("x"))
	if err == nil || !strings.Contains(err.Error(), "git checkout") {
		t.Fatalf("expected checkout error, got %v", err)
	}
}

func run(t *testing.T, dir string, name string, args ...string) {
	t.Helper()
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		t.Fatalf("%s %v failed: %v", name, args, err)
	}
}
