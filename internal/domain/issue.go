package domain

import (
	"context"
	"strconv"
	"time"
)

// IssueBuilder accumulates an issue's data while it is being deserialized.
// The zero value is usable. Populate the scalar fields directly, attach the
// lists through the setters, then call Freeze exactly once; the builder is
// the only mutable form, so a frozen Issue cannot be altered afterwards.
//
// A builder is not safe for concurrent use. Confine it to one goroutine
// until Freeze has returned.
type IssueBuilder struct {
	Number      int
	Title       string
	Body        string
	User        User
	State       State
	StateReason StateReason
	Type        *IssueType
	CreatedAt   time.Time
	ClosedAt    *time.Time
	PullRequest bool
	URL         string

	comments       []*ReferencedLink[string]
	events         []*Event
	reviews        []*Review
	relatedCommits []*ReferencedLink[*Commit]
	relatedIssues  []*ReferencedLink[int]
	subIssues      []int

	frozen *Issue
}

// SetComments attaches the issue's comments as links to their bodies.
func (b *IssueBuilder) SetComments(comments []*ReferencedLink[string]) {
	b.comments = comments
}

// SetEvents attaches the issue's timeline events.
func (b *IssueBuilder) SetEvents(events []*Event) {
	b.events = events
}

// SetReviews attaches the pull request reviews.
func (b *IssueBuilder) SetReviews(reviews []*Review) {
	b.reviews = reviews
}

// SetRelatedCommits attaches links to commits referenced by the issue,
// its comments, and its events.
func (b *IssueBuilder) SetRelatedCommits(commits []*ReferencedLink[*Commit]) {
	b.relatedCommits = commits
}

// SetRelatedIssues attaches links to other issues by number.
func (b *IssueBuilder) SetRelatedIssues(issues []*ReferencedLink[int]) {
	b.relatedIssues = issues
}

// SetSubIssues attaches the numbers of the issue's sub-issues.
func (b *IssueBuilder) SetSubIssues(numbers []int) {
	b.subIssues = numbers
}

// AddEvent appends a single timeline event.
func (b *IssueBuilder) AddEvent(e *Event) {
	b.events = append(b.events, e)
}

// AddRelatedCommit appends a single related-commit link.
func (b *IssueBuilder) AddRelatedCommit(l *ReferencedLink[*Commit]) {
	b.relatedCommits = append(b.relatedCommits, l)
}

// AddRelatedIssue appends a single related-issue link.
func (b *IssueBuilder) AddRelatedIssue(l *ReferencedLink[int]) {
	b.relatedIssues = append(b.relatedIssues, l)
}

// Freeze normalizes the accumulated data and returns the immutable Issue.
// Nil list entries are dropped, related issues and commits are deduplicated
// by structural equality, every list is sorted ascending by its timestamp,
// and related-commit links whose target is missing or has no author time are
// discarded as unrecoverable references.
//
// Freeze is idempotent: repeated calls return the same Issue.
func (b *IssueBuilder) Freeze() *Issue {
	if b.frozen != nil {
		return b.frozen
	}

	issue := &Issue{
		number:      b.Number,
		title:       b.Title,
		body:        b.Body,
		user:        b.User,
		state:       b.State,
		stateReason: b.StateReason,
		issueType:   b.Type,
		createdAt:   b.CreatedAt,
		closedAt:    b.ClosedAt,
		pullRequest: b.PullRequest,
		url:         b.URL,
		subIssues:   append([]int(nil), b.subIssues...),
	}

	issue.events = freezeEvents(b.events)
	issue.comments = freezeLinks(b.comments)
	issue.reviews = freezeReviews(b.reviews)

	related := freezeLinks(b.relatedIssues)
	related = dedupLinks(related, strconv.Itoa)
	issue.relatedIssues = related

	commits := freezeLinks(b.relatedCommits)
	commits = dropInvalidCommits(commits)
	commits = dedupLinks(commits, func(c *Commit) string { return c.Hash })
	issue.relatedCommits = commits

	sortLinksByTime(issue.comments)
	sortLinksByTime(issue.relatedIssues)
	sortLinksByTime(issue.relatedCommits)

	b.frozen = issue
	return issue
}

// freezeLinks drops nil entries and flattens pointers into values.
func freezeLinks[T any](links []*ReferencedLink[T]) []ReferencedLink[T] {
	out := make([]ReferencedLink[T], 0, len(links))
	for _, l := range links {
		if l == nil {
			continue
		}
		out = append(out, *l)
	}
	return out
}

func freezeEvents(events []*Event) []Event {
	out := make([]Event, 0, len(events))
	for _, e := range events {
		if e == nil {
			continue
		}
		out = append(out, *e)
	}
	sortEventsByTime(out)
	return out
}

func freezeReviews(reviews []*Review) []Review {
	out := make([]Review, 0, len(reviews))
	for _, r := range reviews {
		if r == nil {
			continue
		}
		out = append(out, *r)
	}
	sortReviewsByTime(out)
	return out
}

// dropInvalidCommits removes links whose target commit is unknown or has no
// author time. Such references cannot be ordered and are unrecoverable.
func dropInvalidCommits(links []ReferencedLink[*Commit]) []ReferencedLink[*Commit] {
	out := links[:0]
	for _, l := range links {
		if l.Target == nil || l.Target.AuthoredAt == nil {
			continue
		}
		out = append(out, l)
	}
	return out
}

// Issue is a frozen, read-only view of one GitHub issue or pull request and
// everything collected around it. Instances come from IssueBuilder.Freeze
// and are safe for unsynchronized concurrent reads.
type Issue struct {
	number      int
	title       string
	body        string
	user        User
	state       State
	stateReason StateReason
	issueType   *IssueType
	createdAt   time.Time
	closedAt    *time.Time
	pullRequest bool
	url         string

	comments       []ReferencedLink[string]
	events         []Event
	reviews        []Review
	relatedCommits []ReferencedLink[*Commit]
	relatedIssues  []ReferencedLink[int]
	subIssues      []int
}

// Number returns the issue number. Numbers are only unique per repository;
// use URL for identity.
func (i *Issue) Number() int { return i.number }

// Title returns the issue title.
func (i *Issue) Title() string { return i.title }

// Body returns the issue body text.
func (i *Issue) Body() string { return i.body }

// User returns the account that opened the issue.
func (i *Issue) User() User { return i.user }

// State returns the open/closed state.
func (i *Issue) State() State { return i.state }

// StateReason returns the reason attached to the current state.
func (i *Issue) StateReason() StateReason { return i.stateReason }

// Type returns the issue type, or nil when none is assigned.
func (i *Issue) Type() *IssueType { return i.issueType }

// CreatedAt returns when the issue was opened.
func (i *Issue) CreatedAt() time.Time { return i.createdAt }

// ClosedAt returns when the issue was closed, or nil while it is open.
func (i *Issue) ClosedAt() *time.Time { return i.closedAt }

// IsPullRequest reports whether this issue is a pull request.
func (i *Issue) IsPullRequest() bool { return i.pullRequest }

// URL returns the issue's API or HTML URL. It is the issue's identity.
func (i *Issue) URL() string { return i.url }

// Comments returns the comment links sorted by reference time.
func (i *Issue) Comments() []ReferencedLink[string] {
	return copySlice(i.comments)
}

// Events returns the timeline events sorted by creation time.
func (i *Issue) Events() []Event {
	return copySlice(i.events)
}

// Reviews returns the reviews sorted by submission time.
func (i *Issue) Reviews() []Review {
	return copySlice(i.reviews)
}

// RelatedCommits returns the deduplicated commit links sorted by reference
// time. Every link's target is a known commit with an author time.
func (i *Issue) RelatedCommits() []ReferencedLink[*Commit] {
	return copySlice(i.relatedCommits)
}

// RelatedIssueNumbers returns the deduplicated related-issue links sorted by
// reference time, targets as raw issue numbers.
func (i *Issue) RelatedIssueNumbers() []ReferencedLink[int] {
	return copySlice(i.relatedIssues)
}

// SubIssues returns the numbers of the issue's sub-issues.
func (i *Issue) SubIssues() []int {
	return copySlice(i.subIssues)
}

// copySlice hands callers their own copy so the frozen lists stay immutable.
// The copy is never nil, even for empty lists.
func copySlice[T any](in []T) []T {
	out := make([]T, len(in))
	copy(out, in)
	return out
}

// RelatedIssues maps each related-issue number to the full issue via the
// resolver. Resolution happens on every call rather than being cached, so
// the result reflects the cache's current contents; a link whose number the
// resolver does not know keeps its user and timestamp with a nil target.
func (i *Issue) RelatedIssues(ctx context.Context, resolver IssueResolver) []ReferencedLink[*Issue] {
	out := make([]ReferencedLink[*Issue], 0, len(i.relatedIssues))
	for _, link := range i.relatedIssues {
		target, _ := resolver.IssueByNumber(ctx, link.Target)
		out = append(out, ReferencedLink[*Issue]{
			Target:       target,
			User:         link.User,
			ReferencedAt: link.ReferencedAt,
		})
	}
	return out
}

// Equal reports whether two issues denote the same GitHub object. Identity
// is the URL alone: numbers repeat across repositories.
func (i *Issue) Equal(other *Issue) bool {
	return other != nil && i.url == other.url
}

// Key returns the string to hash or index this issue by.
func (i *Issue) Key() string { return i.url }
