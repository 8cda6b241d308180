// Package gitops materializes rendered Deployment bundles into a Git tree
// and pushes commits, using go-git/v5 worktree operations and an SSH-key
// credential callback for authentication.
package gitops

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"

	"github.com/orchestrator-core/controlplane/internal/apperr"
	"github.com/orchestrator-core/controlplane/internal/gitauth"
)

// maxPushAttempts bounds the fetch-rebase-retry loop on a push conflict.
const maxPushAttempts = 3

// CommitterName and CommitterEmail identify the GitOps writer's commits.
const (
	CommitterName  = "orchestrator-gitops"
	CommitterEmail = "gitops@orchestrator.local"
)

// Repo is the local working tree the GitOps writer owns exclusively, guarded
// by the caller's advisory file lock.
type Repo struct {
	dir        string
	branch     string
	auth       transport.AuthMethod
	repository *git.Repository
	worktree   *git.Worktree
}

// Open opens the working copy at dir, cloning url@branch into it if dir does
// not yet contain a repository.
func Open(ctx context.Context, dir, url, branch, sshKeyPath string) (*Repo, error) {
	auth, err := gitauth.Load(sshKeyPath)
	if err != nil {
		return nil, err
	}

	repository, err := git.PlainOpen(dir)
	if errors.Is(err, git.ErrRepositoryNotExists) {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, apperr.Wrap(apperr.Internal, err, "creating gitops working directory %s", dir)
		}
		repository, err = git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{
			URL:           url,
			Auth:          auth,
			ReferenceName: plumbing.NewBranchReferenceName(branch),
			SingleBranch:  true,
		})
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Unavailable, err, "opening gitops repository %s", dir)
	}

	worktree, err := repository.Worktree()
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "opening gitops worktree")
	}

	return &Repo{dir: dir, branch: branch, auth: auth, repository: repository, worktree: worktree}, nil
}

// Dir returns the local working tree root, used to build file paths for
// WriteFile/RemoveSubtree callers.
func (r *Repo) Dir() string { return r.dir }

// WriteFile writes data at rel (relative to the working tree root),
// creating parent directories as needed.
func (r *Repo) WriteFile(rel string, data []byte) error {
	full := filepath.Join(r.dir, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return apperr.Wrap(apperr.Internal, err, "creating directory for %s", rel)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return apperr.Wrap(apperr.Internal, err, "writing %s", rel)
	}
	return nil
}

// RemoveSubtree removes rel and everything under it. A missing path is not
// an error, matching the "already gone" case of a repeated Deleted event.
func (r *Repo) RemoveSubtree(rel string) error {
	full := filepath.Join(r.dir, rel)
	if err := os.RemoveAll(full); err != nil {
		return apperr.Wrap(apperr.Internal, err, "removing %s", rel)
	}
	return nil
}

// StageAll stages every new, modified, and deleted path in the working
// tree, equivalent to "git add -A .".
func (r *Repo) StageAll() error {
	if err := r.worktree.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return apperr.Wrap(apperr.Internal, err, "staging gitops working tree")
	}
	return nil
}

// HasStagedChanges reports whether the working tree has anything to commit.
func (r *Repo) HasStagedChanges() (bool, error) {
	status, err := r.worktree.Status()
	if err != nil {
		return false, apperr.Wrap(apperr.Internal, err, "reading gitops working tree status")
	}
	return !status.IsClean(), nil
}

// Commit commits the currently staged tree with message, using the given
// event timestamp as the commit time so commit metadata reflects when the
// change happened rather than when it was applied.
func (r *Repo) Commit(message string, when time.Time) (plumbing.Hash, error) {
	sig := &object.Signature{Name: CommitterName, Email: CommitterEmail, When: when}
	hash, err := r.worktree.Commit(message, &git.CommitOptions{Author: sig, Committer: sig})
	if err != nil {
		return plumbing.ZeroHash, apperr.Wrap(apperr.Internal, err, "committing gitops tree")
	}
	return hash, nil
}

// push issues a single push attempt to origin/branch.
func (r *Repo) push(ctx context.Context) error {
	err := r.repository.PushContext(ctx, &git.PushOptions{RemoteName: "origin", Auth: r.auth})
	if err == nil || errors.Is(err, git.NoErrAlreadyUpToDate) {
		return nil
	}
	return err
}

// fetchAndReset fetches origin and hard-resets the worktree to the updated
// remote branch tip, discarding the local commit so reapply can rebuild it
// on top of the new history.
func (r *Repo) fetchAndReset(ctx context.Context) error {
	err := r.repository.FetchContext(ctx, &git.FetchOptions{RemoteName: "origin", Auth: r.auth})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return apperr.Wrap(apperr.Unavailable, err, "fetching origin")
	}
	remoteRef, err := r.repository.Reference(plumbing.NewRemoteReferenceName("origin", r.branch), true)
	if err != nil {
		return apperr.Wrap(apperr.Unavailable, err, "resolving origin/%s", r.branch)
	}
	if err := r.worktree.Reset(&git.ResetOptions{Commit: remoteRef.Hash(), Mode: git.HardReset}); err != nil {
		return apperr.Wrap(apperr.Internal, err, "resetting worktree to origin/%s", r.branch)
	}
	return nil
}

// PushWithRetry pushes the current commit. On failure it fetches and resets
// to the new remote tip, calls reapply to rebuild the rendered tree and
// recommit on top of it, then retries, up to maxPushAttempts total pushes.
// Persistent failure is returned so the caller leaves its batch
// unacknowledged.
func (r *Repo) PushWithRetry(ctx context.Context, reapply func() error) error {
	var lastErr error
	for attempt := 1; attempt <= maxPushAttempts; attempt++ {
		if err := r.push(ctx); err == nil {
			return nil
		} else {
			lastErr = err
		}

		if attempt == maxPushAttempts {
			break
		}
		if err := r.fetchAndReset(ctx); err != nil {
			return err
		}
		if err := reapply(); err != nil {
			return err
		}
	}
	return apperr.Wrap(apperr.Unavailable, lastErr, "pushing gitops commit after %d attempts", maxPushAttempts)
}
