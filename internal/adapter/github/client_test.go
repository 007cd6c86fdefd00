package github_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bkyoung/issuegraph/internal/adapter/github"
	"github.com/bkyoung/issuegraph/internal/adapter/resthttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(server *httptest.Server) *github.Client {
	client := github.NewClient("test-token")
	client.SetBaseURL(server.URL)
	client.SetRetryConfig(resthttp.RetryConfig{
		MaxRetries:     2,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
		Multiplier:     2.0,
	})
	return client
}

func TestGetIssue(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/owner/repo/issues/42", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "application/vnd.github+json", r.Header.Get("Accept"))
		assert.Equal(t, "2022-11-28", r.Header.Get("X-GitHub-Api-Version"))

		fmt.Fprint(w, `{
			"number": 42,
			"title": "Crash on startup",
			"user": {"login": "alice"},
			"state": "open",
			"created_at": "2024-03-01T10:00:00Z",
			"url": "https://api.github.com/repos/owner/repo/issues/42"
		}`)
	}))
	defer server.Close()

	builder, err := newTestClient(server).GetIssue(context.Background(), "owner", "repo", 42)

	require.NoError(t, err)
	assert.Equal(t, 42, builder.Number)
	assert.Equal(t, "Crash on startup", builder.Title)
	assert.Equal(t, "alice", builder.User.Login)
}

func TestGetIssue_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message": "Not Found"}`)
	}))
	defer server.Close()

	_, err := newTestClient(server).GetIssue(context.Background(), "owner", "repo", 999)

	require.Error(t, err)
	var typed *resthttp.Error
	require.True(t, errors.As(err, &typed))
	assert.Equal(t, resthttp.ErrTypeNotFound, typed.Type)
}

func TestListTimeline_FollowsPagination(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("page") {
		case "", "1":
			w.Header().Set("Link", fmt.Sprintf(`<%s%s?per_page=100&page=2>; rel="next"`, server.URL, r.URL.Path))
			fmt.Fprint(w, `[{"event": "labeled", "created_at": "2024-03-01T10:00:00Z", "label": {"name": "bug"}}]`)
		case "2":
			fmt.Fprint(w, `[{"event": "closed", "created_at": "2024-03-02T10:00:00Z"}]`)
		default:
			t.Errorf("unexpected page %q", r.URL.Query().Get("page"))
		}
	}))
	defer server.Close()

	entries, err := newTestClient(server).ListTimeline(context.Background(), "owner", "repo", 1)

	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Contains(t, string(entries[0]), "labeled")
	assert.Contains(t, string(entries[1]), "closed")
}

func TestListComments(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/owner/repo/issues/1/comments", r.URL.Path)
		fmt.Fprint(w, `[
			{"body": "first", "user": {"login": "alice"}, "created_at": "2024-03-01T10:00:00Z"},
			{"body": "second", "user": {"login": "bob"}, "created_at": "2024-03-01T11:00:00Z"}
		]`)
	}))
	defer server.Close()

	comments, err := newTestClient(server).ListComments(context.Background(), "owner", "repo", 1)

	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "first", comments[0].Target)
	assert.Equal(t, "alice", comments[0].User.Login)
}

func TestListReviews(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/owner/repo/pulls/5/reviews", r.URL.Path)
		fmt.Fprint(w, `[
			{"id": 11, "user": {"login": "alice"}, "state": "APPROVED", "body": "lgtm", "submitted_at": "2024-03-01T10:00:00Z"}
		]`)
	}))
	defer server.Close()

	reviews, err := newTestClient(server).ListReviews(context.Background(), "owner", "repo", 5)

	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, int64(11), reviews[0].ID)
	assert.Equal(t, "APPROVED", reviews[0].State)
}

func TestListSubIssueNumbers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/owner/repo/issues/1/sub_issues", r.URL.Path)
		fmt.Fprint(w, `[{"number": 2, "state": "open", "created_at": "2024-03-01T10:00:00Z", "user": {"login": "a"}, "url": "u"},
			{"number": 3, "state": "open", "created_at": "2024-03-01T10:00:00Z", "user": {"login": "a"}, "url": "u"}]`)
	}))
	defer server.Close()

	numbers, err := newTestClient(server).ListSubIssueNumbers(context.Background(), "owner", "repo", 1)

	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, numbers)
}

func TestGetCommit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/owner/repo/commits/abc123", r.URL.Path)
		fmt.Fprint(w, `{
			"sha": "abc123",
			"html_url": "https://github.com/owner/repo/commit/abc123",
			"commit": {
				"message": "fix crash",
				"author": {"name": "Alice", "email": "alice@example.com", "date": "2024-03-01T09:00:00Z"},
				"committer": {"name": "Alice", "email": "alice@example.com", "date": "2024-03-01T09:30:00Z"}
			}
		}`)
	}))
	defer server.Close()

	commit, err := newTestClient(server).GetCommit(context.Background(), "owner", "repo", "abc123")

	require.NoError(t, err)
	assert.Equal(t, "abc123", commit.Hash)
	assert.Equal(t, "fix crash", commit.Message)
	assert.Equal(t, "Alice", commit.Author.Name)
	require.NotNil(t, commit.AuthoredAt)
	assert.Equal(t, time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC), *commit.AuthoredAt)
}

func TestGet_RetriesServerErrors(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, `{"number": 1, "user": {"login": "a"}, "state": "open", "created_at": "2024-03-01T10:00:00Z", "url": "u"}`)
	}))
	defer server.Close()

	_, err := newTestClient(server).GetIssue(context.Background(), "owner", "repo", 1)

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestGet_DoesNotRetryClientErrors(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"message": "Bad credentials"}`)
	}))
	defer server.Close()

	_, err := newTestClient(server).GetIssue(context.Background(), "owner", "repo", 1)

	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}
