package fetch

import (
	"context"
	"encoding/json"

	"github.com/bkyoung/issuegraph/internal/domain"
)

// APIClient defines the outbound port for the GitHub REST API.
type APIClient interface {
	GetIssue(ctx context.Context, owner, repo string, number int) (*domain.IssueBuilder, error)
	ListTimeline(ctx context.Context, owner, repo string, number int) ([]json.RawMessage, error)
	ListComments(ctx context.Context, owner, repo string, number int) ([]*domain.ReferencedLink[string], error)
	ListReviews(ctx context.Context, owner, repo string, number int) ([]*domain.Review, error)
	ListSubIssueNumbers(ctx context.Context, owner, repo string, number int) ([]int, error)
}

// EventMapper turns raw timeline entries into domain events.
type EventMapper interface {
	MapEvent(ctx context.Context, raw json.RawMessage) (*domain.Event, error)
}

// CommitCache defines the outbound port for the commit cache.
// Read methods follow the resolver port contract: misses and storage
// failures both report not-found.
type CommitCache interface {
	PutCommit(ctx context.Context, commit *domain.Commit) error
	CommitByHash(ctx context.Context, hash string) (*domain.Commit, bool)
	CommitByURL(ctx context.Context, hash, url string) (*domain.Commit, bool)
}

// IssueCache defines the outbound port for the issue snapshot cache.
type IssueCache interface {
	PutIssue(ctx context.Context, issue *domain.Issue) error
	IssueByNumber(ctx context.Context, number int) (*domain.Issue, bool)
}
