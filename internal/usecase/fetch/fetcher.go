package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/bkyoung/issuegraph/internal/domain"
)

// Fetcher assembles complete issues from the API, bound to one repository.
// A fetch walks the issue, its comments, its timeline, reviews for pull
// requests, and sub-issues, extracts cross references from the body texts,
// and freezes the result.
type Fetcher struct {
	client  APIClient
	mapper  EventMapper
	commits domain.CommitResolver
	cache   IssueCache
	logger  Logger
	owner   string
	repo    string
}

// Deps carries the fetcher's collaborators. Cache and Logger are optional.
type Deps struct {
	Client  APIClient
	Mapper  EventMapper
	Commits domain.CommitResolver
	Cache   IssueCache
	Logger  Logger
	Owner   string
	Repo    string
}

// NewFetcher creates a fetcher for one repository.
func NewFetcher(deps Deps) *Fetcher {
	return &Fetcher{
		client:  deps.Client,
		mapper:  deps.Mapper,
		commits: deps.Commits,
		cache:   deps.Cache,
		logger:  deps.Logger,
		owner:   deps.Owner,
		repo:    deps.Repo,
	}
}

// FetchIssue fetches one issue with everything collected around it and
// returns the frozen result. The snapshot is written through the issue
// cache so later cross references to it resolve locally.
func (f *Fetcher) FetchIssue(ctx context.Context, number int) (*domain.Issue, error) {
	builder, err := f.client.GetIssue(ctx, f.owner, f.repo, number)
	if err != nil {
		return nil, err
	}

	comments, err := f.client.ListComments(ctx, f.owner, f.repo, number)
	if err != nil {
		return nil, err
	}
	builder.SetComments(comments)

	if err := f.attachTimeline(ctx, builder, number); err != nil {
		return nil, err
	}

	if builder.PullRequest {
		reviews, err := f.client.ListReviews(ctx, f.owner, f.repo, number)
		if err != nil {
			return nil, err
		}
		builder.SetReviews(reviews)
	}

	subIssues, err := f.client.ListSubIssueNumbers(ctx, f.owner, f.repo, number)
	if err != nil {
		return nil, err
	}
	builder.SetSubIssues(subIssues)

	f.attachCrossReferences(ctx, builder, comments)

	issue := builder.Freeze()

	f.logInfo(ctx, "fetched issue", map[string]interface{}{
		"issue":    issue.Number(),
		"comments": len(issue.Comments()),
		"events":   len(issue.Events()),
	})

	if f.cache != nil {
		if err := f.cache.PutIssue(ctx, issue); err != nil {
			f.logWarning(ctx, "failed to cache issue", map[string]interface{}{
				"issue": issue.Number(),
				"error": err.Error(),
			})
		}
	}

	return issue, nil
}

// attachTimeline maps every timeline entry onto the builder. A single entry
// the mapper rejects fails the whole fetch: a structurally broken timeline
// would otherwise yield an issue that silently misses history.
func (f *Fetcher) attachTimeline(ctx context.Context, builder *domain.IssueBuilder, number int) error {
	entries, err := f.client.ListTimeline(ctx, f.owner, f.repo, number)
	if err != nil {
		return err
	}

	for _, raw := range entries {
		event, err := f.mapper.MapEvent(ctx, raw)
		if err != nil {
			return fmt.Errorf("issue %d: %w", number, err)
		}
		builder.AddEvent(event)

		// Commits attached to events join the related set.
		if event.Commit != nil {
			builder.AddRelatedCommit(&domain.ReferencedLink[*domain.Commit]{
				Target:       event.Commit,
				User:         event.Actor,
				ReferencedAt: event.CreatedAt,
			})
		}
	}
	return nil
}

// attachCrossReferences scans the issue body and comment bodies for issue
// numbers and commit hashes. Issue references stay raw numbers; commit
// references resolve immediately and are dropped when unresolvable, matching
// the freeze normalization.
func (f *Fetcher) attachCrossReferences(ctx context.Context, builder *domain.IssueBuilder, comments []*domain.ReferencedLink[string]) {
	f.scanText(ctx, builder, builder.Body, builder.User, builder.CreatedAt)
	for _, comment := range comments {
		if comment == nil {
			continue
		}
		f.scanText(ctx, builder, comment.Target, comment.User, comment.ReferencedAt)
	}
}

func (f *Fetcher) scanText(ctx context.Context, builder *domain.IssueBuilder, text string, user domain.User, at time.Time) {
	for _, number := range issueNumbers(text) {
		if number == builder.Number {
			continue
		}
		builder.AddRelatedIssue(&domain.ReferencedLink[int]{
			Target:       number,
			User:         user,
			ReferencedAt: at,
		})
	}

	for _, hash := range commitHashes(text) {
		commit, ok := f.commits.CommitByHash(ctx, hash)
		if !ok {
			f.logWarning(ctx, "could not resolve commit reference", map[string]interface{}{
				"commit": hash,
				"issue":  builder.Number,
			})
			continue
		}
		builder.AddRelatedCommit(&domain.ReferencedLink[*domain.Commit]{
			Target:       commit,
			User:         user,
			ReferencedAt: at,
		})
	}
}

// IssueByNumber implements the domain issue resolver: cache hits return the
// stored snapshot, misses fetch just the issue itself and cache it. Full
// collection is reserved for FetchIssue; resolution stays cheap.
func (f *Fetcher) IssueByNumber(ctx context.Context, number int) (*domain.Issue, bool) {
	if f.cache != nil {
		if issue, ok := f.cache.IssueByNumber(ctx, number); ok {
			return issue, true
		}
	}

	builder, err := f.client.GetIssue(ctx, f.owner, f.repo, number)
	if err != nil {
		f.logWarning(ctx, "could not resolve issue reference", map[string]interface{}{
			"issue": number,
			"error": err.Error(),
		})
		return nil, false
	}

	issue := builder.Freeze()
	if f.cache != nil {
		_ = f.cache.PutIssue(ctx, issue)
	}
	return issue, true
}

func (f *Fetcher) logWarning(ctx context.Context, message string, fields map[string]interface{}) {
	if f.logger == nil {
		return
	}
	f.logger.LogWarning(ctx, message, fields)
}

func (f *Fetcher) logInfo(ctx context.Context, message string, fields map[string]interface{}) {
	if f.logger == nil {
		return
	}
	f.logger.LogInfo(ctx, message, fields)
}
