package domain

import "strings"

// IssueType describes a repository-level issue type (e.g. "Bug", "Feature").
type IssueType struct {
	Name        string
	Description string
}

// IssueTypeChange identifies how an issue's type was altered by a timeline event.
type IssueTypeChange string

const (
	// IssueTypeAdded indicates a type was attached to the issue.
	IssueTypeAdded IssueTypeChange = "added"

	// IssueTypeChanged indicates the issue's type was replaced.
	IssueTypeChanged IssueTypeChange = "changed"

	// IssueTypeRemoved indicates the issue's type was detached.
	IssueTypeRemoved IssueTypeChange = "removed"

	// IssueTypeAnyChange is the catch-all for absent or unrecognized values.
	IssueTypeAnyChange IssueTypeChange = "any"
)

// ParseIssueTypeChange maps a raw issue-type event name to an IssueTypeChange.
// Both an empty string and an unrecognized value yield IssueTypeAnyChange,
// so the catch-all behaves uniformly. It never fails.
func ParseIssueTypeChange(raw string) IssueTypeChange {
	switch strings.ToLower(raw) {
	case "issue_type_added":
		return IssueTypeAdded
	case "issue_type_changed":
		return IssueTypeChanged
	case "issue_type_removed":
		return IssueTypeRemoved
	default:
		return IssueTypeAnyChange
	}
}
