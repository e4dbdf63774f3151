// Package gitops versions generated outputs in a git repository.
package gitops

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// ErrNothingToCommit is returned when the staged files match HEAD.
var ErrNothingToCommit = errors.New("nothing to commit")

// Author identifies who commits generated outputs.
type Author struct {
	Name  string
	Email string
}

// DefaultAuthor is used when the configuration names none.
var DefaultAuthor = Author{Name: "ledgerport", Email: "ledgerport@localhost"}

// Init initializes a new git repository at dir.
func Init(dir string) error {
	if out, err := git(dir, "init"); err != nil {
		return fmt.Errorf("git init: %s: %w", out, err)
	}
	return nil
}

// IsRepo reports whether dir is the root of a git repository.
func IsRepo(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil
}

// CommitMessage describes a pipeline run for one company and period.
func CommitMessage(command string, company int, start, end time.Time) string {
	return fmt.Sprintf("%s: company %d, %s to %s", command, company, start.Format("2006-01-02"), end.Format("2006-01-02"))
}

// CommitFiles stages files (absolute or relative to dir) and commits them.
// Returns the short commit hash, or ErrNothingToCommit when the files are
// unchanged.
func CommitFiles(dir string, files []string, message string, author Author) (string, error) {
	if author.Name == "" || author.Email == "" {
		author = DefaultAuthor
	}

	args := []string{"add", "--"}
	for _, f := range files {
		rel := f
		if filepath.IsAbs(f) {
			var err error
			if rel, err = filepath.Rel(dir, f); err != nil {
				return "", fmt.Errorf("resolving %s: %w", f, err)
			}
		}
		args = append(args, rel)
	}
	if out, err := git(dir, args...); err != nil {
		return "", fmt.Errorf("git add: %s: %w", out, err)
	}

	if _, err := git(dir, "diff", "--cached", "--quiet"); err == nil {
		return "", ErrNothingToCommit
	}

	identity := []string{"-c", "user.name=" + author.Name, "-c", "user.email=" + author.Email}
	commit := append(identity, "commit", "-m", message)
	if out, err := git(dir, commit...); err != nil {
		return "", fmt.Errorf("git commit: %s: %w", out, err)
	}

	out, err := git(dir, "rev-parse", "--short", "HEAD")
	if err != nil {
		return "", fmt.Errorf("git rev-parse: %w", err)
	}
	return strings.TrimSpace(out), nil
}

func git(dir string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	return string(out), err
}
