package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/bkyoung/issuegraph/internal/domain"
	_ "github.com/mattn/go-sqlite3"
)

// Store is a SQLite cache for commits and issue snapshots fetched from the
// API. It backs the resolver ports so repeated references to the same commit
// or issue do not cost another round trip.
type Store struct {
	db *sql.DB
}

// NewStore creates a new SQLite store at the given path.
// Use ":memory:" for in-memory database (useful for testing).
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}

	if err := s.createSchema(); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return s, nil
}

// createSchema creates all tables and indexes if they don't exist.
func (s *Store) createSchema() error {
	schema := `
	-- Commits referenced from issue timelines
	CREATE TABLE IF NOT EXISTS commits (
		hash TEXT PRIMARY KEY,
		url TEXT NOT NULL DEFAULT '',
		author_name TEXT NOT NULL DEFAULT '',
		author_email TEXT NOT NULL DEFAULT '',
		committer_name TEXT NOT NULL DEFAULT '',
		committer_email TEXT NOT NULL DEFAULT '',
		authored_at INTEGER,
		committed_at INTEGER,
		message TEXT NOT NULL DEFAULT ''
	);

	-- Scalar snapshots of fetched issues, keyed by number within one repo
	CREATE TABLE IF NOT EXISTS issues (
		number INTEGER PRIMARY KEY,
		url TEXT NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		body TEXT NOT NULL DEFAULT '',
		user_login TEXT NOT NULL DEFAULT '',
		state TEXT NOT NULL,
		state_reason TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL,
		closed_at INTEGER,
		pull_request INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_commits_url ON commits(url);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_issues_url ON issues(url);
	`

	_, err := s.db.Exec(schema)
	return err
}

// PutCommit stores or replaces a commit.
func (s *Store) PutCommit(ctx context.Context, commit *domain.Commit) error {
	query := `
		INSERT OR REPLACE INTO commits (hash, url, author_name, author_email, committer_name, committer_email, authored_at, committed_at, message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		commit.Hash,
		commit.URL,
		commit.Author.Name,
		commit.Author.Email,
		commit.Committer.Name,
		commit.Committer.Email,
		unixOrNil(commit.AuthoredAt),
		unixOrNil(commit.CommittedAt),
		commit.Message,
	)

	if err != nil {
		return fmt.Errorf("failed to put commit: %w", err)
	}

	return nil
}

// CommitByHash looks up a cached commit. A cache miss or a query failure both
// report not-found; the caller falls through to the next resolver.
func (s *Store) CommitByHash(ctx context.Context, hash string) (*domain.Commit, bool) {
	return s.commitWhere(ctx, "hash = ?", hash)
}

// CommitByURL looks up a cached commit by the url GitHub supplied for it.
func (s *Store) CommitByURL(ctx context.Context, _ string, url string) (*domain.Commit, bool) {
	if url == "" {
		return nil, false
	}
	return s.commitWhere(ctx, "url = ?", url)
}

func (s *Store) commitWhere(ctx context.Context, where string, arg string) (*domain.Commit, bool) {
	query := `
		SELECT hash, url, author_name, author_email, committer_name, committer_email, authored_at, committed_at, message
		FROM commits
		WHERE ` + where

	var commit domain.Commit
	var authoredAt, committedAt sql.NullInt64

	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&commit.Hash,
		&commit.URL,
		&commit.Author.Name,
		&commit.Author.Email,
		&commit.Committer.Name,
		&commit.Committer.Email,
		&authoredAt,
		&committedAt,
		&commit.Message,
	)
	if err != nil {
		return nil, false
	}

	commit.AuthoredAt = timeOrNil(authoredAt)
	commit.CommittedAt = timeOrNil(committedAt)
	return &commit, true
}

// PutIssue stores or replaces an issue's scalar snapshot. Lists are not
// persisted; a cached hit carries identity and headline fields only.
func (s *Store) PutIssue(ctx context.Context, issue *domain.Issue) error {
	query := `
		INSERT OR REPLACE INTO issues (number, url, title, body, user_login, state, state_reason, created_at, closed_at, pull_request)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	pullRequest := 0
	if issue.IsPullRequest() {
		pullRequest = 1
	}

	_, err := s.db.ExecContext(ctx, query,
		issue.Number(),
		issue.URL(),
		issue.Title(),
		issue.Body(),
		issue.User().Login,
		string(issue.State()),
		string(issue.StateReason()),
		issue.CreatedAt().Unix(),
		unixOrNil(issue.ClosedAt()),
		pullRequest,
	)

	if err != nil {
		return fmt.Errorf("failed to put issue: %w", err)
	}

	return nil
}

// IssueByNumber looks up a cached issue snapshot and rebuilds it as a frozen
// issue. Misses and query failures both report not-found.
func (s *Store) IssueByNumber(ctx context.Context, number int) (*domain.Issue, bool) {
	query := `
		SELECT number, url, title, body, user_login, state, state_reason, created_at, closed_at, pull_request
		FROM issues
		WHERE number = ?
	`

	var builder domain.IssueBuilder
	var stateReason string
	var createdAt int64
	var closedAt sql.NullInt64
	var pullRequest int

	err := s.db.QueryRowContext(ctx, query, number).Scan(
		&builder.Number,
		&builder.URL,
		&builder.Title,
		&builder.Body,
		&builder.User.Login,
		&builder.State,
		&stateReason,
		&createdAt,
		&closedAt,
		&pullRequest,
	)
	if err != nil {
		return nil, false
	}

	builder.StateReason = domain.ParseStateReason(stateReason)
	builder.CreatedAt = time.Unix(createdAt, 0).UTC()
	builder.ClosedAt = timeOrNil(closedAt)
	builder.PullRequest = pullRequest == 1

	return builder.Freeze(), true
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func unixOrNil(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.Unix()
}

func timeOrNil(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := time.Unix(v.Int64, 0).UTC()
	return &t
}
