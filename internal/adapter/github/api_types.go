package github

import (
	"encoding/json"
	"time"
)

// GitHub REST API wire types.
// Field names follow the issues, issues/events, issues/comments, and
// pulls/reviews endpoints. See: https://docs.github.com/en/rest

// userJSON is a GitHub account reference as it appears in payloads.
type userJSON struct {
	Login string `json:"login"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// issueTypeJSON is the repository-level issue type object.
type issueTypeJSON struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// issueJSON is the response shape of GET /repos/{owner}/{repo}/issues/{number}.
type issueJSON struct {
	Number      int            `json:"number"`
	Title       string         `json:"title"`
	Body        string         `json:"body"`
	User        userJSON       `json:"user"`
	State       string         `json:"state"`
	StateReason *string        `json:"state_reason"`
	Type        *issueTypeJSON `json:"type"`
	CreatedAt   time.Time      `json:"created_at"`
	ClosedAt    *time.Time     `json:"closed_at"`
	URL         string         `json:"url"`
	HTMLURL     string         `json:"html_url"`

	// Present only when the issue is a pull request.
	PullRequest *struct {
		URL string `json:"url"`
	} `json:"pull_request"`

	SubIssuesSummary *struct {
		Total int `json:"total"`
	} `json:"sub_issues_summary"`
}

// eventJSON is one entry of the issues timeline. Only the fields shared by
// all variants plus the variant payloads this package consumes are mapped;
// DismissedReview stays raw until the dismissed-review post-processor
// descends into it.
type eventJSON struct {
	Event     string    `json:"event"`
	Actor     userJSON  `json:"actor"`
	CreatedAt time.Time `json:"created_at"`

	CommitID  *string `json:"commit_id"`
	CommitURL string  `json:"commit_url"`

	Label struct {
		Name string `json:"name"`
	} `json:"label"`

	StateReason *string `json:"state_reason"`

	IssueType *issueTypeJSON `json:"issue_type"`

	DismissedReview json.RawMessage `json:"dismissed_review"`
}

// dismissedReviewJSON is the nested object under a review_dismissed event.
// Required fields are pointers so their absence can be told apart from a
// zero value and reported as a structural error.
type dismissedReviewJSON struct {
	ReviewID          *int64  `json:"review_id"`
	State             *string `json:"state"`
	DismissalMessage  *string `json:"dismissal_message"`
	DismissalCommitID *string `json:"dismissal_commit_id"`
}

// commentJSON is one entry of GET /repos/{owner}/{repo}/issues/{number}/comments.
type commentJSON struct {
	Body      string    `json:"body"`
	User      userJSON  `json:"user"`
	CreatedAt time.Time `json:"created_at"`
}

// reviewJSON is one entry of GET /repos/{owner}/{repo}/pulls/{number}/reviews.
type reviewJSON struct {
	ID          int64     `json:"id"`
	User        userJSON  `json:"user"`
	State       string    `json:"state"`
	Body        string    `json:"body"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// commitJSON is the response shape of GET /repos/{owner}/{repo}/commits/{sha}.
type commitJSON struct {
	SHA     string `json:"sha"`
	HTMLURL string `json:"html_url"`
	Commit  struct {
		Message string       `json:"message"`
		Author  gitActorJSON `json:"author"`
		// Committer mirrors Author for the committing side.
		Committer gitActorJSON `json:"committer"`
	} `json:"commit"`
}

// gitActorJSON is the git-level author/committer stamp inside a commit.
type gitActorJSON struct {
	Name  string     `json:"name"`
	Email string     `json:"email"`
	Date  *time.Time `json:"date"`
}

// errorJSON is GitHub's error response body.
type errorJSON struct {
	Message          string `json:"message"`
	DocumentationURL string `json:"documentation_url"`
	Errors           []struct {
		Resource string `json:"resource"`
		Field    string `json:"field"`
		Code     string `json:"code"`
		Message  string `json:"message"`
	} `json:"errors,omitempty"`
}
