package gitops

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
)

// newOriginWithCommit creates a bare repository seeded with one commit on
// branch, standing in for a remote GitHub repository so tests never touch
// the network.
func newOriginWithCommit(t *testing.T, branch string) string {
	t.Helper()

	bareDir := t.TempDir()
	_, err := git.PlainInit(bareDir, true)
	require.NoError(t, err)

	seedDir := t.TempDir()
	seed, err := git.PlainInit(seedDir, false)
	require.NoError(t, err)
	wt, err := seed.Worktree()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(seedDir, "README.md"), []byte("seed\n"), 0o644))
	_, err = wt.Add("README.md")
	require.NoError(t, err)
	sig := &object.Signature{Name: "seed", Email: "seed@example.com", When: time.Now()}
	_, err = wt.Commit("seed", &git.CommitOptions{Author: sig, Committer: sig})
	require.NoError(t, err)

	head, err := seed.Head()
	require.NoError(t, err)
	require.NoError(t, seed.Storer.SetReference(plumbing.NewHashReference(plumbing.NewBranchReferenceName(branch), head.Hash())))

	_, err = seed.CreateRemote(&config.RemoteConfig{Name: "origin", URLs: []string{bareDir}})
	require.NoError(t, err)
	refSpec := config.RefSpec(fmt.Sprintf("refs/heads/%s:refs/heads/%s", branch, branch))
	require.NoError(t, seed.Push(&git.PushOptions{RemoteName: "origin", RefSpecs: []config.RefSpec{refSpec}}))

	return bareDir
}

func TestRepoOpenCloneWriteCommitPush(t *testing.T) {
	origin := newOriginWithCommit(t, "main")
	dir := filepath.Join(t.TempDir(), "work")

	repo, err := Open(context.Background(), dir, origin, "main", "")
	require.NoError(t, err)

	require.NoError(t, repo.WriteFile(filepath.Join("h1", "team", "w1", "d1", "deployment.yaml"), []byte("name: d1\n")))
	require.NoError(t, repo.StageAll())

	changed, err := repo.HasStagedChanges()
	require.NoError(t, err)
	require.True(t, changed)

	_, err = repo.Commit("reconcile: test", time.Now())
	require.NoError(t, err)

	require.NoError(t, repo.PushWithRetry(context.Background(), func() error { return nil }))
}

func TestRepoRemoveSubtreeIsIdempotent(t *testing.T) {
	origin := newOriginWithCommit(t, "main")
	dir := filepath.Join(t.TempDir(), "work")

	repo, err := Open(context.Background(), dir, origin, "main", "")
	require.NoError(t, err)

	require.NoError(t, repo.RemoveSubtree(filepath.Join("h1", "team", "w1", "d1")))
	require.NoError(t, repo.RemoveSubtree(filepath.Join("h1", "team", "w1", "d1")))
}
