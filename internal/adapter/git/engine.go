package git

import (
	"context"

	goGit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/bkyoung/issuegraph/internal/domain"
)

// Engine looks up commits in a local clone, backed by go-git. It sits between
// the cache and the API in the commit resolver chain: commits already fetched
// by the clone resolve without a network round trip.
type Engine struct {
	repoDir string
}

// NewEngine constructs a Git engine for the provided repository directory.
func NewEngine(repoDir string) *Engine {
	return &Engine{repoDir: repoDir}
}

// CommitByHash resolves a commit from the local clone. Abbreviated hashes
// are accepted. Any failure, including the directory not being a repository,
// reports not-found so the caller falls through to the next resolver.
func (e *Engine) CommitByHash(_ context.Context, hash string) (*domain.Commit, bool) {
	repo, err := goGit.PlainOpenWithOptions(e.repoDir, &goGit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, false
	}

	resolved, err := repo.ResolveRevision(plumbing.Revision(hash))
	if err != nil {
		return nil, false
	}

	commit, err := repo.CommitObject(*resolved)
	if err != nil {
		return nil, false
	}

	return mapCommit(commit), true
}

// CommitByURL is a miss for a local clone; commit urls only resolve
// against the API.
func (e *Engine) CommitByURL(context.Context, string, string) (*domain.Commit, bool) {
	return nil, false
}

func mapCommit(commit *object.Commit) *domain.Commit {
	authoredAt := commit.Author.When.UTC()
	committedAt := commit.Committer.When.UTC()

	return &domain.Commit{
		Hash: commit.Hash.String(),
		Author: domain.User{
			Name:  commit.Author.Name,
			Email: commit.Author.Email,
		},
		Committer: domain.User{
			Name:  commit.Committer.Name,
			Email: commit.Committer.Email,
		},
		AuthoredAt:  &authoredAt,
		CommittedAt: &committedAt,
		Message:     commit.Message,
	}
}
