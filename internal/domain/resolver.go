package domain

import "context"

// CommitResolver turns a commit identifier into the cached commit it denotes.
// Implementations may consult a local cache, the GitHub API, or a local
// clone; a miss is reported through the boolean, never through an error.
type CommitResolver interface {
	// CommitByHash looks a commit up by its full hash.
	CommitByHash(ctx context.Context, hash string) (*Commit, bool)

	// CommitByURL retries a lookup using the commit_url GitHub supplied
	// alongside the hash. Called only after CommitByHash has missed.
	CommitByURL(ctx context.Context, hash, url string) (*Commit, bool)
}

// IssueResolver turns an issue number into the cached issue it denotes.
type IssueResolver interface {
	IssueByNumber(ctx context.Context, number int) (*Issue, bool)
}
