package github

import (
	"context"

	"github.com/bkyoung/issuegraph/internal/domain"
)

// Resolver adapts the client to the domain commit resolver port, bound to
// one repository. Lookup failures of any kind report not-found; the typed
// error detail is not useful to resolution callers.
type Resolver struct {
	client *Client
	owner  string
	repo   string
}

// NewCommitResolver creates a resolver that fetches commits from the API.
func NewCommitResolver(client *Client, owner, repo string) *Resolver {
	return &Resolver{client: client, owner: owner, repo: repo}
}

// CommitByHash fetches a commit through the repos/commits endpoint.
func (r *Resolver) CommitByHash(ctx context.Context, hash string) (*domain.Commit, bool) {
	commit, err := r.client.GetCommit(ctx, r.owner, r.repo, hash)
	if err != nil {
		return nil, false
	}
	return commit, true
}

// CommitByURL fetches a commit through the url GitHub supplied for it. The
// url may point at another repository, which is why it can succeed after a
// hash lookup missed.
func (r *Resolver) CommitByURL(ctx context.Context, _ string, url string) (*domain.Commit, bool) {
	if url == "" {
		return nil, false
	}
	commit, err := r.client.GetCommitByURL(ctx, url)
	if err != nil {
		return nil, false
	}
	return commit, true
}
