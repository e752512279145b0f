package vcs

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/oshokin/sunrise-deploy/internal/logger"
)

// SyncOptions names the repository and branch to bring up to date.
type SyncOptions struct {
	// Directory is the repository working tree on disk.
	Directory string
	// Remote is the remote pulled from, e.g. "origin".
	Remote string
	// Branch is the branch whose tip the working tree is synced to.
	Branch string
}

// SyncResult reports the outcome of a sync.
type SyncResult struct {
	// Head is the commit hash the working tree points at after the sync.
	Head string
	// Updated is false when the tree was already at the branch tip.
	Updated bool
}

// Sync fetches and merges the remote branch into the working tree.
// An already up-to-date tree is a successful sync; any other pull failure
// (network, non-fast-forward, conflicting local changes) is returned as-is
// for the caller to classify.
func Sync(ctx context.Context, opts SyncOptions) (*SyncResult, error) {
	repository, err := git.PlainOpen(opts.Directory)
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}

	worktree, err := repository.Worktree()
	if err != nil {
		return nil, fmt.Errorf("get worktree: %w", err)
	}

	pullOptions := &git.PullOptions{
		RemoteName:    opts.Remote,
		ReferenceName: plumbing.NewBranchReferenceName(opts.Branch),
		SingleBranch:  true,
	}

	err = worktree.PullContext(ctx, pullOptions)
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return nil, fmt.Errorf("pull %s/%s: %w", opts.Remote, opts.Branch, err)
	}

	result := &SyncResult{
		Updated: err == nil,
	}

	if ref, headErr := repository.Head(); headErr == nil {
		result.Head = ref.Hash().String()
	}

	if result.Updated {
		logger.InfoKV(ctx, "Working tree updated", "branch", opts.Branch, "head", shortHash(result.Head))
	} else {
		logger.InfoKV(ctx, "Working tree already up to date", "branch", opts.Branch, "head", shortHash(result.Head))
	}

	return result, nil
}

// shortHash abbreviates a commit hash for log lines.
func shortHash(hash string) string {
	const shortLen = 8
	if len(hash) < shortLen {
		return hash
	}

	return hash[:shortLen]
}
