package domain

import "time"

// State is the open/closed state of an issue or pull request.
type State string

const (
	StateOpen   State = "open"
	StateClosed State = "closed"
)

// User identifies the GitHub account behind an action.
type User struct {
	Login string
	Name  string
	Email string
}

// Commit is a git commit as known to GitHub or the local clone.
type Commit struct {
	Hash        string
	Author      User
	Committer   User
	AuthoredAt  *time.Time
	CommittedAt *time.Time
	Message     string
	URL         string
}

// Review is a pull request review as submitted through the Reviews API.
type Review struct {
	ID          int64
	User        User
	State       string
	Body        string
	SubmittedAt time.Time
}

// DismissedReview carries the details GitHub nests under a review_dismissed
// timeline event. DismissalMessage and DismissalCommitID are nil when the
// payload carried JSON null or omitted the field.
type DismissedReview struct {
	ReviewID          int64
	State             string
	DismissalMessage  *string
	DismissalCommitID *string
}
