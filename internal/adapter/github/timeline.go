package github

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bkyoung/issuegraph/internal/domain"
)

// eventKinds maps wire event names onto event kinds. The empty-string entry
// is the designated fallback: any name not listed here classifies as the
// default variant instead of failing, so API additions never break parsing.
var eventKinds = map[string]domain.EventKind{
	"":                       domain.EventDefault,
	"labeled":                domain.EventLabeled,
	"unlabeled":              domain.EventLabeled,
	"referenced":             domain.EventReferenced,
	"merged":                 domain.EventReferenced,
	"closed":                 domain.EventStateChanged,
	"reopened":               domain.EventStateChanged,
	"connected":              domain.EventConnected,
	"issue_type_added":       domain.EventIssueTypeChanged,
	"issue_type_changed":     domain.EventIssueTypeChanged,
	"issue_type_removed":     domain.EventIssueTypeChanged,
	"parent_issue_added":     domain.EventParentIssueChanged,
	"parent_issue_removed":   domain.EventParentIssueChanged,
	"parent_issue_changed":   domain.EventParentIssueChanged,
	"sub_issue_added":        domain.EventSubIssueChanged,
	"sub_issue_removed":      domain.EventSubIssueChanged,
	"sub_issue_changed":      domain.EventSubIssueChanged,
	"review_requested":       domain.EventRequestedReview,
	"review_request_removed": domain.EventRequestedReview,
	"review_dismissed":       domain.EventDismissedReview,
	"assigned":               domain.EventAssigned,
	"unassigned":             domain.EventAssigned,
}

// ClassifyEvent returns the kind a wire event name dispatches to.
func ClassifyEvent(name string) domain.EventKind {
	if kind, ok := eventKinds[name]; ok {
		return kind
	}
	return eventKinds[""]
}

// Logger is the subset of logging the event mapper needs.
type Logger interface {
	LogWarning(ctx context.Context, message string, fields map[string]interface{})
}

// EventMapper turns raw timeline entries into domain events. Commit
// references are resolved through the resolver port; a resolution miss
// degrades to a nil commit plus a warning, never an error.
type EventMapper struct {
	commits domain.CommitResolver
	logger  Logger
}

// NewEventMapper creates an event mapper with the given collaborators.
// logger may be nil, in which case resolution misses go unlogged.
func NewEventMapper(commits domain.CommitResolver, logger Logger) *EventMapper {
	return &EventMapper{commits: commits, logger: logger}
}

// MapEvent decodes one timeline entry. Classification picks the variant from
// the `event` discriminator, structural decoding fills the shared fields, and
// the variant's post-processing derives the rest from the raw payload.
//
// A structurally malformed entry (undecodable JSON, or a variant's required
// nested fields missing) is an error; the caller decides whether to abort
// the whole issue.
func (m *EventMapper) MapEvent(ctx context.Context, raw json.RawMessage) (*domain.Event, error) {
	var wire eventJSON
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, fmt.Errorf("decode timeline event: %w", err)
	}

	event := &domain.Event{
		Kind:      ClassifyEvent(wire.Event),
		RawKind:   wire.Event,
		Actor:     mapUser(wire.Actor),
		CreatedAt: wire.CreatedAt,
	}

	switch event.Kind {
	case domain.EventReferenced:
		m.resolveCommitRef(ctx, event, wire)

	case domain.EventLabeled:
		// Added is derived from the raw event name, not the payload shape:
		// "labeled" and "unlabeled" share a structure.
		event.Label = wire.Label.Name
		event.LabelAdded = wire.Event == "labeled"

	case domain.EventStateChanged:
		reason := ""
		if wire.StateReason != nil {
			reason = *wire.StateReason
		}
		event.StateReason = domain.ParseStateReason(reason)

	case domain.EventIssueTypeChanged:
		event.TypeChange = domain.ParseIssueTypeChange(wire.Event)
		if wire.IssueType != nil {
			event.IssueType = &domain.IssueType{
				Name:        wire.IssueType.Name,
				Description: wire.IssueType.Description,
			}
		}

	case domain.EventDismissedReview:
		dismissed, err := mapDismissedReview(wire.DismissedReview)
		if err != nil {
			return nil, err
		}
		event.DismissedReview = dismissed
	}

	// Connected, parent/sub-issue, requested-review, assigned, and default
	// events carry nothing beyond the shared fields today.
	return event, nil
}

// resolveCommitRef fills the commit for referenced/merged events. A JSON
// null commit_id means GitHub has no commit for the event; no lookup is
// attempted. Otherwise the hash lookup runs first and the commit_url lookup
// is the fallback. Both missing leaves the reference empty.
func (m *EventMapper) resolveCommitRef(ctx context.Context, event *domain.Event, wire eventJSON) {
	if wire.CommitID == nil {
		return
	}
	hash := *wire.CommitID

	if commit, ok := m.commits.CommitByHash(ctx, hash); ok {
		event.Commit = commit
		return
	}

	m.logWarning(ctx, "commit unknown to GitHub and local clone, retrying by url", map[string]interface{}{
		"commit": hash,
		"event":  wire.Event,
	})

	if commit, ok := m.commits.CommitByURL(ctx, hash, wire.CommitURL); ok {
		event.Commit = commit
		return
	}

	m.logWarning(ctx, "could not resolve commit", map[string]interface{}{
		"commit": hash,
		"event":  wire.Event,
	})
}

// mapDismissedReview descends into the dismissed_review object. review_id
// and state are required; the dismissal message and commit id stay nil
// unless present and non-null.
func mapDismissedReview(raw json.RawMessage) (*domain.DismissedReview, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, fmt.Errorf("review_dismissed event without dismissed_review object")
	}

	var wire dismissedReviewJSON
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, fmt.Errorf("decode dismissed_review: %w", err)
	}
	if wire.ReviewID == nil {
		return nil, fmt.Errorf("dismissed_review missing review_id")
	}
	if wire.State == nil {
		return nil, fmt.Errorf("dismissed_review missing state")
	}

	return &domain.DismissedReview{
		ReviewID:          *wire.ReviewID,
		State:             *wire.State,
		DismissalMessage:  wire.DismissalMessage,
		DismissalCommitID: wire.DismissalCommitID,
	}, nil
}

func (m *EventMapper) logWarning(ctx context.Context, message string, fields map[string]interface{}) {
	if m.logger == nil {
		return
	}
	m.logger.LogWarning(ctx, message, fields)
}

// MarshalEvent serializes a domain event back into its wire shape. The
// output mirrors the deserialization 1:1 per variant, so a round trip
// preserves every field this package consumes.
func MarshalEvent(event *domain.Event) ([]byte, error) {
	out := map[string]interface{}{
		"event":      event.RawKind,
		"actor":      userJSON{Login: event.Actor.Login, Name: event.Actor.Name, Email: event.Actor.Email},
		"created_at": event.CreatedAt,
	}

	switch event.Kind {
	case domain.EventReferenced:
		if event.Commit != nil {
			out["commit_id"] = event.Commit.Hash
			out["commit_url"] = event.Commit.URL
		} else {
			out["commit_id"] = nil
		}

	case domain.EventLabeled:
		out["label"] = map[string]string{"name": event.Label}

	case domain.EventStateChanged:
		if event.StateReason != domain.StateReasonNone {
			out["state_reason"] = string(event.StateReason)
		}

	case domain.EventIssueTypeChanged:
		if event.IssueType != nil {
			out["issue_type"] = issueTypeJSON{Name: event.IssueType.Name, Description: event.IssueType.Description}
		}

	case domain.EventDismissedReview:
		if event.DismissedReview != nil {
			out["dismissed_review"] = dismissedReviewJSON{
				ReviewID:          &event.DismissedReview.ReviewID,
				State:             &event.DismissedReview.State,
				DismissalMessage:  event.DismissedReview.DismissalMessage,
				DismissalCommitID: event.DismissedReview.DismissalCommitID,
			}
		}
	}

	return json.Marshal(out)
}
