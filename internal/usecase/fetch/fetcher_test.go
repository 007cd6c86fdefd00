package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bkyoung/issuegraph/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	builder       *domain.IssueBuilder
	issueErr      error
	timeline      []json.RawMessage
	comments      []*domain.ReferencedLink[string]
	reviews       []*domain.Review
	subIssues     []int
	issueCalls    int
	reviewsCalled bool
}

func (a *fakeAPI) GetIssue(_ context.Context, _, _ string, _ int) (*domain.IssueBuilder, error) {
	a.issueCalls++
	if a.issueErr != nil {
		return nil, a.issueErr
	}
	return a.builder, nil
}

func (a *fakeAPI) ListTimeline(_ context.Context, _, _ string, _ int) ([]json.RawMessage, error) {
	return a.timeline, nil
}

func (a *fakeAPI) ListComments(_ context.Context, _, _ string, _ int) ([]*domain.ReferencedLink[string], error) {
	return a.comments, nil
}

func (a *fakeAPI) ListReviews(_ context.Context, _, _ string, _ int) ([]*domain.Review, error) {
	a.reviewsCalled = true
	return a.reviews, nil
}

func (a *fakeAPI) ListSubIssueNumbers(_ context.Context, _, _ string, _ int) ([]int, error) {
	return a.subIssues, nil
}

// fakeMapper returns preset events in timeline order.
type fakeMapper struct {
	events []*domain.Event
	err    error
	calls  int
}

func (m *fakeMapper) MapEvent(_ context.Context, _ json.RawMessage) (*domain.Event, error) {
	if m.err != nil {
		return nil, m.err
	}
	event := m.events[m.calls]
	m.calls++
	return event, nil
}

type fakeIssueCache struct {
	issues map[int]*domain.Issue
	putErr error
	puts   int
}

func newFakeIssueCache() *fakeIssueCache {
	return &fakeIssueCache{issues: make(map[int]*domain.Issue)}
}

func (c *fakeIssueCache) PutIssue(_ context.Context, issue *domain.Issue) error {
	c.puts++
	if c.putErr != nil {
		return c.putErr
	}
	c.issues[issue.Number()] = issue
	return nil
}

func (c *fakeIssueCache) IssueByNumber(_ context.Context, number int) (*domain.Issue, bool) {
	issue, ok := c.issues[number]
	return issue, ok
}

type recordingLogger struct {
	warnings []string
	infos    []string
}

func (l *recordingLogger) LogWarning(_ context.Context, message string, _ map[string]interface{}) {
	l.warnings = append(l.warnings, message)
}

func (l *recordingLogger) LogInfo(_ context.Context, message string, _ map[string]interface{}) {
	l.infos = append(l.infos, message)
}

func at(hour int) time.Time {
	return time.Date(2024, 3, 1, hour, 0, 0, 0, time.UTC)
}

func baseBuilder() *domain.IssueBuilder {
	return &domain.IssueBuilder{
		Number:    1,
		Title:     "flaky test",
		User:      domain.User{Login: "alice"},
		State:     domain.StateOpen,
		CreatedAt: at(8),
		URL:       "https://api.github.com/repos/o/r/issues/1",
	}
}

func TestFetchIssue_AssemblesEverything(t *testing.T) {
	authoredAt := at(7)
	commit := &domain.Commit{Hash: "abc", AuthoredAt: &authoredAt}

	api := &fakeAPI{
		builder:  baseBuilder(),
		timeline: []json.RawMessage{[]byte(`{}`), []byte(`{}`)},
		comments: []*domain.ReferencedLink[string]{
			{Target: "looks related to #7", User: domain.User{Login: "bob"}, ReferencedAt: at(10)},
		},
		subIssues: []int{4, 5},
	}
	mapper := &fakeMapper{events: []*domain.Event{
		{Kind: domain.EventLabeled, Label: "bug", LabelAdded: true, CreatedAt: at(9)},
		{Kind: domain.EventReferenced, Commit: commit, Actor: domain.User{Login: "alice"}, CreatedAt: at(11)},
	}}
	cache := newFakeIssueCache()

	fetcher := NewFetcher(Deps{
		Client:  api,
		Mapper:  mapper,
		Commits: &fakeResolver{},
		Cache:   cache,
		Owner:   "o",
		Repo:    "r",
	})

	issue, err := fetcher.FetchIssue(context.Background(), 1)

	require.NoError(t, err)
	assert.Len(t, issue.Comments(), 1)
	assert.Len(t, issue.Events(), 2)
	assert.Equal(t, []int{4, 5}, issue.SubIssues())
	assert.False(t, api.reviewsCalled, "issues have no reviews")

	// The referenced event's commit joins the related set.
	commits := issue.RelatedCommits()
	require.Len(t, commits, 1)
	assert.Equal(t, "abc", commits[0].Target.Hash)

	// "#7" in the comment becomes a related-issue link.
	related := issue.RelatedIssueNumbers()
	require.Len(t, related, 1)
	assert.Equal(t, 7, related[0].Target)
	assert.Equal(t, "bob", related[0].User.Login)

	assert.Equal(t, 1, cache.puts)
}

func TestFetchIssue_PullRequestGetsReviews(t *testing.T) {
	builder := baseBuilder()
	builder.PullRequest = true
	api := &fakeAPI{
		builder: builder,
		reviews: []*domain.Review{
			{ID: 9, User: domain.User{Login: "carol"}, State: "APPROVED", SubmittedAt: at(12)},
		},
	}

	fetcher := NewFetcher(Deps{Client: api, Mapper: &fakeMapper{}, Commits: &fakeResolver{}, Owner: "o", Repo: "r"})
	issue, err := fetcher.FetchIssue(context.Background(), 1)

	require.NoError(t, err)
	assert.True(t, api.reviewsCalled)
	require.Len(t, issue.Reviews(), 1)
	assert.Equal(t, int64(9), issue.Reviews()[0].ID)
}

func TestFetchIssue_SelfReferenceIgnored(t *testing.T) {
	builder := baseBuilder()
	builder.Body = "relates to #1 and #2"
	api := &fakeAPI{builder: builder}

	fetcher := NewFetcher(Deps{Client: api, Mapper: &fakeMapper{}, Commits: &fakeResolver{}, Owner: "o", Repo: "r"})
	issue, err := fetcher.FetchIssue(context.Background(), 1)

	require.NoError(t, err)
	related := issue.RelatedIssueNumbers()
	require.Len(t, related, 1)
	assert.Equal(t, 2, related[0].Target)
}

func TestFetchIssue_BodyCommitReferenceResolved(t *testing.T) {
	hash := strings.Repeat("a", 40)
	authoredAt := at(6)
	builder := baseBuilder()
	builder.Body = "broken since " + hash

	api := &fakeAPI{builder: builder}
	commits := &fakeResolver{byHash: map[string]*domain.Commit{
		hash: {Hash: hash, AuthoredAt: &authoredAt},
	}}

	fetcher := NewFetcher(Deps{Client: api, Mapper: &fakeMapper{}, Commits: commits, Owner: "o", Repo: "r"})
	issue, err := fetcher.FetchIssue(context.Background(), 1)

	require.NoError(t, err)
	related := issue.RelatedCommits()
	require.Len(t, related, 1)
	assert.Equal(t, hash, related[0].Target.Hash)
	assert.Equal(t, "alice", related[0].User.Login, "issue author owns body references")
}

func TestFetchIssue_UnresolvableCommitReferenceWarnsAndSkips(t *testing.T) {
	builder := baseBuilder()
	builder.Body = "broken since " + strings.Repeat("b", 40)
	logger := &recordingLogger{}

	fetcher := NewFetcher(Deps{Client: &fakeAPI{builder: builder}, Mapper: &fakeMapper{}, Commits: &fakeResolver{}, Logger: logger, Owner: "o", Repo: "r"})
	issue, err := fetcher.FetchIssue(context.Background(), 1)

	require.NoError(t, err)
	assert.Empty(t, issue.RelatedCommits())
	require.Len(t, logger.warnings, 1)
	assert.Contains(t, logger.warnings[0], "commit reference")
}

func TestFetchIssue_MapperErrorFailsFetch(t *testing.T) {
	api := &fakeAPI{builder: baseBuilder(), timeline: []json.RawMessage{[]byte(`{}`)}}
	mapper := &fakeMapper{err: errors.New("decode timeline event: boom")}

	fetcher := NewFetcher(Deps{Client: api, Mapper: mapper, Commits: &fakeResolver{}, Owner: "o", Repo: "r"})
	_, err := fetcher.FetchIssue(context.Background(), 1)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "issue 1")
}

func TestFetchIssue_CacheWriteFailureOnlyWarns(t *testing.T) {
	cache := newFakeIssueCache()
	cache.putErr = errors.New("disk full")
	logger := &recordingLogger{}

	fetcher := NewFetcher(Deps{Client: &fakeAPI{builder: baseBuilder()}, Mapper: &fakeMapper{}, Commits: &fakeResolver{}, Cache: cache, Logger: logger, Owner: "o", Repo: "r"})
	_, err := fetcher.FetchIssue(context.Background(), 1)

	require.NoError(t, err)
	require.Len(t, logger.warnings, 1)
	assert.Contains(t, logger.warnings[0], "cache")
}

func TestIssueByNumber_CacheHitSkipsAPI(t *testing.T) {
	cache := newFakeIssueCache()
	cached := baseBuilder().Freeze()
	cache.issues[1] = cached
	api := &fakeAPI{}

	fetcher := NewFetcher(Deps{Client: api, Mapper: &fakeMapper{}, Commits: &fakeResolver{}, Cache: cache, Owner: "o", Repo: "r"})
	issue, ok := fetcher.IssueByNumber(context.Background(), 1)

	require.True(t, ok)
	assert.Same(t, cached, issue)
	assert.Equal(t, 0, api.issueCalls)
}

func TestIssueByNumber_MissFetchesAndCaches(t *testing.T) {
	cache := newFakeIssueCache()
	api := &fakeAPI{builder: baseBuilder()}

	fetcher := NewFetcher(Deps{Client: api, Mapper: &fakeMapper{}, Commits: &fakeResolver{}, Cache: cache, Owner: "o", Repo: "r"})
	issue, ok := fetcher.IssueByNumber(context.Background(), 1)

	require.True(t, ok)
	assert.Equal(t, 1, issue.Number())
	assert.Equal(t, 1, api.issueCalls)
	assert.Equal(t, 1, cache.puts)
}

func TestIssueByNumber_APIErrorReportsNotFound(t *testing.T) {
	api := &fakeAPI{issueErr: errors.New("404")}
	logger := &recordingLogger{}

	fetcher := NewFetcher(Deps{Client: api, Mapper: &fakeMapper{}, Commits: &fakeResolver{}, Logger: logger, Owner: "o", Repo: "r"})
	_, ok := fetcher.IssueByNumber(context.Background(), 404)

	assert.False(t, ok)
	assert.Len(t, logger.warnings, 1)
}
