package github

import (
	"encoding/json"
	"fmt"

	"github.com/bkyoung/issuegraph/internal/domain"
)

// mapUser converts a wire user into the domain shape.
func mapUser(wire userJSON) domain.User {
	return domain.User{
		Login: wire.Login,
		Name:  wire.Name,
		Email: wire.Email,
	}
}

// MapIssue seeds an IssueBuilder from an issue payload. The caller attaches
// comments, events, reviews, and related links before freezing.
//
// The issue URL prefers the API url and falls back to html_url; one of the
// two is always present and serves as the issue's identity.
func MapIssue(wire issueJSON) *domain.IssueBuilder {
	url := wire.URL
	if url == "" {
		url = wire.HTMLURL
	}

	reason := ""
	if wire.StateReason != nil {
		reason = *wire.StateReason
	}

	builder := &domain.IssueBuilder{
		Number:      wire.Number,
		Title:       wire.Title,
		Body:        wire.Body,
		User:        mapUser(wire.User),
		State:       domain.State(wire.State),
		StateReason: domain.ParseStateReason(reason),
		CreatedAt:   wire.CreatedAt,
		ClosedAt:    wire.ClosedAt,
		PullRequest: wire.PullRequest != nil,
		URL:         url,
	}

	if wire.Type != nil {
		builder.Type = &domain.IssueType{
			Name:        wire.Type.Name,
			Description: wire.Type.Description,
		}
	}

	return builder
}

// MapIssueJSON decodes a raw issue payload and seeds a builder from it.
func MapIssueJSON(raw []byte) (*domain.IssueBuilder, error) {
	var wire issueJSON
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, fmt.Errorf("decode issue: %w", err)
	}
	return MapIssue(wire), nil
}

// mapComment converts a comment into a link carrying its body.
func mapComment(wire commentJSON) *domain.ReferencedLink[string] {
	return &domain.ReferencedLink[string]{
		Target:       wire.Body,
		User:         mapUser(wire.User),
		ReferencedAt: wire.CreatedAt,
	}
}

// mapReview converts a pulls/reviews entry.
func mapReview(wire reviewJSON) *domain.Review {
	return &domain.Review{
		ID:          wire.ID,
		User:        mapUser(wire.User),
		State:       wire.State,
		Body:        wire.Body,
		SubmittedAt: wire.SubmittedAt,
	}
}

// mapCommit converts a repos/commits response.
func mapCommit(wire commitJSON) *domain.Commit {
	return &domain.Commit{
		Hash: wire.SHA,
		Author: domain.User{
			Name:  wire.Commit.Author.Name,
			Email: wire.Commit.Author.Email,
		},
		Committer: domain.User{
			Name:  wire.Commit.Committer.Name,
			Email: wire.Commit.Committer.Email,
		},
		AuthoredAt:  wire.Commit.Author.Date,
		CommittedAt: wire.Commit.Committer.Date,
		Message:     wire.Commit.Message,
		URL:         wire.HTMLURL,
	}
}
