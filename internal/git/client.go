// Package git keeps local working copies of remote repositories up to date.
package git

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
)

const remoteName = "origin"

// Client defines the interface for Git operations
type Client interface {
	// Clone clones url into dir, checked out at branch when it is not empty.
	Clone(ctx context.Context, url, dir, branch string) error

	// Pull fast-forwards the current branch of the working copy at dir.
	Pull(ctx context.Context, dir string) error

	// Checkout switches the working copy at dir to branch, creating the
	// local branch from its remote-tracking ref when needed.
	Checkout(ctx context.Context, dir, branch string) error
}

// defaultClient implements Client using go-git
type defaultClient struct{}

// NewClient creates a Client backed by go-git.
func NewClient() Client {
	return &defaultClient{}
}

func (*defaultClient) Clone(ctx context.Context, url, dir, branch string) error {
	opts := &git.CloneOptions{
		URL:        url,
		RemoteName: remoteName,
	}
	if branch != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(branch)
	}

	if _, err := git.PlainCloneContext(ctx, dir, false, opts); err != nil {
		// a half-written clone would be mistaken for a working copy next run
		_ = os.RemoveAll(dir)
		return fmt.Errorf("failed to clone repository: %w", err)
	}
	return nil
}

func (*defaultClient) Pull(ctx context.Context, dir string) error {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		return fmt.Errorf("failed to open repository: %w", err)
	}
	workTree, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}

	opts := &git.PullOptions{RemoteName: remoteName}
	head, err := repo.Head()
	if err != nil {
		return fmt.Errorf("failed to get HEAD reference: %w", err)
	}
	if head.Name().IsBranch() {
		opts.ReferenceName = head.Name()
	}

	err = workTree.PullContext(ctx, opts)
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("failed to pull: %w", err)
	}
	return nil
}

func (*defaultClient) Checkout(ctx context.Context, dir, branch string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	repo, err := git.PlainOpen(dir)
	if err != nil {
		return fmt.Errorf("failed to open repository: %w", err)
	}
	workTree, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}

	local := plumbing.NewBranchReferenceName(branch)
	opts := &git.CheckoutOptions{Branch: local}
	if _, err := repo.Reference(local, true); err != nil {
		remote, err := remoteBranch(ctx, repo, branch)
		if err != nil {
			return fmt.Errorf("branch %s not found: %w", branch, err)
		}
		opts.Hash = remote.Hash()
		opts.Create = true
	}

	if err := workTree.Checkout(opts); err != nil {
		return fmt.Errorf("failed to checkout %s: %w", branch, err)
	}
	return nil
}

// remoteBranch resolves origin/<branch>, fetching it first when the working
// copy does not track it yet (e.g. a single-branch clone).
func remoteBranch(ctx context.Context, repo *git.Repository, branch string) (*plumbing.Reference, error) {
	name := plumbing.NewRemoteReferenceName(remoteName, branch)
	if ref, err := repo.Reference(name, true); err == nil {
		return ref, nil
	}

	spec := gitconfig.RefSpec(fmt.Sprintf("+%s:%s", plumbing.NewBranchReferenceName(branch), name))
	err := repo.FetchContext(ctx, &git.FetchOptions{
		RemoteName: remoteName,
		RefSpecs:   []gitconfig.RefSpec{spec},
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return nil, err
	}
	return repo.Reference(name, true)
}
