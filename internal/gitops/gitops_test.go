package gitops

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
}

func TestInit(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()
	require.NoError(t, Init(dir))

	_, err := os.Stat(filepath.Join(dir, ".git"))
	require.NoError(t, err, ".git directory should exist")
}

func TestIsRepo(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()
	assert.False(t, IsRepo(dir), "empty dir should not be a repo")

	require.NoError(t, Init(dir))
	assert.True(t, IsRepo(dir), "initialized dir should be a repo")
}

func TestCommitMessage(t *testing.T) {
	msg := CommitMessage("pipeline", 7, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "pipeline: company 7, 2024-01-01 to 2024-12-31", msg)
}

func TestCommitFiles(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()
	require.NoError(t, Init(dir))

	ledger := filepath.Join(dir, "livro.beancount")
	require.NoError(t, os.WriteFile(ledger, []byte("option \"title\" \"x\"\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scratch.txt"), []byte("ignore me"), 0o644))

	hash, err := CommitFiles(dir, []string{ledger}, "pipeline: company 1", Author{Name: "Test Author", Email: "test@example.com"})
	require.NoError(t, err)
	assert.NotEmpty(t, hash)

	log := exec.Command("git", "log", "--format=%s|%an <%ae>", "-1")
	log.Dir = dir
	out, err := log.Output()
	require.NoError(t, err)
	assert.Equal(t, "pipeline: company 1|Test Author <test@example.com>", strings.TrimSpace(string(out)))

	status := exec.Command("git", "status", "--porcelain")
	status.Dir = dir
	out, err = status.Output()
	require.NoError(t, err)
	assert.Contains(t, string(out), "?? scratch.txt", "only the named files are staged")
}

func TestCommitFiles_Unchanged(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()
	require.NoError(t, Init(dir))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.csv"), []byte("x"), 0o644))

	_, err := CommitFiles(dir, []string{"a.csv"}, "first", Author{})
	require.NoError(t, err)

	_, err = CommitFiles(dir, []string{"a.csv"}, "second", Author{})
	assert.True(t, errors.Is(err, ErrNothingToCommit))
}
