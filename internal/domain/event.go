package domain

import "time"

// EventKind discriminates the shape of a timeline event. GitHub tags events
// with a free-form string; the github adapter maps each wire name onto one of
// these kinds and any name it does not know onto EventDefault.
type EventKind int

const (
	// EventDefault is the fallback for event names with no dedicated shape.
	EventDefault EventKind = iota

	// EventLabeled covers "labeled" and "unlabeled".
	EventLabeled

	// EventReferenced covers "referenced" and "merged"; both point at a commit.
	EventReferenced

	// EventStateChanged covers "closed" and "reopened".
	EventStateChanged

	// EventConnected covers "connected".
	EventConnected

	// EventIssueTypeChanged covers the issue_type_* family.
	EventIssueTypeChanged

	// EventParentIssueChanged covers the parent_issue_* family.
	EventParentIssueChanged

	// EventSubIssueChanged covers the sub_issue_* family.
	EventSubIssueChanged

	// EventRequestedReview covers "review_requested" and "review_request_removed".
	EventRequestedReview

	// EventDismissedReview covers "review_dismissed".
	EventDismissedReview

	// EventAssigned covers "assigned" and "unassigned".
	EventAssigned
)

// String returns the kind's name for logs and rendering.
func (k EventKind) String() string {
	switch k {
	case EventLabeled:
		return "labeled"
	case EventReferenced:
		return "referenced"
	case EventStateChanged:
		return "state_changed"
	case EventConnected:
		return "connected"
	case EventIssueTypeChanged:
		return "issue_type_changed"
	case EventParentIssueChanged:
		return "parent_issue_changed"
	case EventSubIssueChanged:
		return "sub_issue_changed"
	case EventRequestedReview:
		return "requested_review"
	case EventDismissedReview:
		return "dismissed_review"
	case EventAssigned:
		return "assigned"
	default:
		return "default"
	}
}

// Event is one entry of an issue's timeline. Kind selects which of the
// variant fields are meaningful; the rest stay at their zero value.
type Event struct {
	Kind      EventKind
	RawKind   string
	Actor     User
	CreatedAt time.Time

	// EventReferenced: the resolved commit, nil when resolution failed or
	// the payload carried no commit id.
	Commit *Commit

	// EventLabeled: the label name and whether it was added ("labeled")
	// rather than removed ("unlabeled").
	Label      string
	LabelAdded bool

	// EventStateChanged: the reason supplied with the close or reopen.
	StateReason StateReason

	// EventIssueTypeChanged: which change happened and the type involved,
	// when GitHub supplied one.
	TypeChange IssueTypeChange
	IssueType  *IssueType

	// EventDismissedReview: the nested dismissal details.
	DismissedReview *DismissedReview
}
