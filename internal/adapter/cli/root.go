package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/bkyoung/issuegraph/internal/domain"
)

// ErrVersionRequested indicates the user requested the CLI version and no further work should be done.
var ErrVersionRequested = errors.New("version requested")

// IssueService defines the dependency required to run the fetch and show
// commands. FetchIssue always goes to the API; IssueByNumber prefers the
// local cache.
type IssueService interface {
	FetchIssue(ctx context.Context, number int) (*domain.Issue, error)
	IssueByNumber(ctx context.Context, number int) (*domain.Issue, bool)
}

// Arguments encapsulates IO writers injected from the host process.
type Arguments struct {
	OutWriter io.Writer
	ErrWriter io.Writer
}

// Dependencies captures the collaborators for the CLI.
type Dependencies struct {
	Issues  IssueService
	Args    Arguments
	Version string
}

// NewRootCommand constructs the root Cobra command.
func NewRootCommand(deps Dependencies) *cobra.Command {
	versionString := deps.Version
	if versionString == "" {
		versionString = "v0.0.0"
	}

	root := &cobra.Command{
		Use:   "ig",
		Short: "GitHub issue graph fetcher",
	}
	root.SilenceUsage = true
	root.SilenceErrors = true

	outWriter := deps.Args.OutWriter
	if outWriter == nil {
		outWriter = os.Stdout
	}
	errWriter := deps.Args.ErrWriter
	if errWriter == nil {
		errWriter = os.Stderr
	}
	root.SetOut(outWriter)
	root.SetErr(errWriter)

	root.AddCommand(fetchCommand(deps.Issues))
	root.AddCommand(showCommand(deps.Issues))

	var showVersion bool
	root.PersistentFlags().BoolVarP(&showVersion, "version", "v", false, "Show version and exit")
	versionHandler := func(cmd *cobra.Command, args []string) error {
		if showVersion {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), versionString)
			return ErrVersionRequested
		}
		return nil
	}
	root.PersistentPreRunE = versionHandler
	root.PreRunE = versionHandler
	root.RunE = func(cmd *cobra.Command, args []string) error {
		if err := versionHandler(cmd, args); err != nil {
			return err
		}
		return cmd.Help()
	}

	return root
}

func fetchCommand(issues IssueService) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "fetch <number>...",
		Short: "Fetch issues with their comments, timeline, and cross references",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			numbers, err := parseNumbers(args)
			if err != nil {
				return err
			}

			for _, number := range numbers {
				issue, err := issues.FetchIssue(cmd.Context(), number)
				if err != nil {
					return fmt.Errorf("fetch issue %d: %w", number, err)
				}
				if asJSON {
					if err := renderJSON(cmd.OutOrStdout(), issue); err != nil {
						return err
					}
					continue
				}
				renderSummary(cmd.OutOrStdout(), issue)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print issues as JSON")

	return cmd
}

func showCommand(issues IssueService) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <number>",
		Short: "Show an issue, preferring the local cache",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			number, err := strconv.Atoi(args[0])
			if err != nil || number <= 0 {
				return fmt.Errorf("invalid issue number %q", args[0])
			}

			issue, ok := issues.IssueByNumber(cmd.Context(), number)
			if !ok {
				return fmt.Errorf("issue %d not found", number)
			}
			if asJSON {
				return renderJSON(cmd.OutOrStdout(), issue)
			}
			renderSummary(cmd.OutOrStdout(), issue)
			renderTimeline(cmd.OutOrStdout(), issue)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the issue as JSON")

	return cmd
}

func parseNumbers(args []string) ([]int, error) {
	numbers := make([]int, 0, len(args))
	for _, arg := range args {
		number, err := strconv.Atoi(arg)
		if err != nil || number <= 0 {
			return nil, fmt.Errorf("invalid issue number %q", arg)
		}
		numbers = append(numbers, number)
	}
	return numbers, nil
}

func renderSummary(w io.Writer, issue *domain.Issue) {
	kind := "issue"
	if issue.IsPullRequest() {
		kind = "pull request"
	}

	state := string(issue.State())
	if reason := issue.StateReason(); reason != domain.StateReasonNone {
		state += "/" + string(reason)
	}

	fmt.Fprintf(w, "#%d %s (%s, %s)\n", issue.Number(), issue.Title(), kind, state)
	fmt.Fprintf(w, "  opened by %s on %s\n", issue.User().Login, issue.CreatedAt().Format("2006-01-02"))
	if issueType := issue.Type(); issueType != nil {
		fmt.Fprintf(w, "  type: %s\n", issueType.Name)
	}
	fmt.Fprintf(w, "  comments: %d, events: %d, reviews: %d\n",
		len(issue.Comments()), len(issue.Events()), len(issue.Reviews()))
	if related := issue.RelatedIssueNumbers(); len(related) > 0 {
		refs := make([]string, len(related))
		for i, link := range related {
			refs[i] = "#" + strconv.Itoa(link.Target)
		}
		fmt.Fprintf(w, "  related issues: %s\n", strings.Join(refs, " "))
	}
	if commits := issue.RelatedCommits(); len(commits) > 0 {
		fmt.Fprintf(w, "  related commits: %d\n", len(commits))
	}
	if subs := issue.SubIssues(); len(subs) > 0 {
		refs := make([]string, len(subs))
		for i, sub := range subs {
			refs[i] = "#" + strconv.Itoa(sub)
		}
		fmt.Fprintf(w, "  sub-issues: %s\n", strings.Join(refs, " "))
	}
}

func renderTimeline(w io.Writer, issue *domain.Issue) {
	events := issue.Events()
	if len(events) == 0 {
		return
	}
	fmt.Fprintln(w, "  timeline:")
	for _, event := range events {
		fmt.Fprintf(w, "    %s  %s  by %s\n",
			event.CreatedAt.Format(time.RFC3339), HumanizeEventKind(event), event.Actor.Login)
	}
}

// HumanizeEventKind renders an event's wire name as a display label, e.g.
// "issue_type_added" becomes "Issue Type Added". Events that arrived without
// a known name fall back to the variant name.
func HumanizeEventKind(event domain.Event) string {
	raw := event.RawKind
	if raw == "" {
		return event.Kind.String()
	}
	return cases.Title(language.English).String(strings.ReplaceAll(raw, "_", " "))
}

// issueView is the JSON rendering of a frozen issue.
type issueView struct {
	Number       int           `json:"number"`
	Title        string        `json:"title"`
	Body         string        `json:"body,omitempty"`
	User         string        `json:"user"`
	State        string        `json:"state"`
	StateReason  string        `json:"state_reason,omitempty"`
	Type         string        `json:"type,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	ClosedAt     *time.Time    `json:"closed_at,omitempty"`
	PullRequest  bool          `json:"pull_request"`
	URL          string        `json:"url"`
	Comments     int           `json:"comments"`
	Events       []eventView   `json:"events"`
	RelatedViews []int         `json:"related_issues,omitempty"`
	SubIssues    []int         `json:"sub_issues,omitempty"`
	Commits      []string      `json:"related_commits,omitempty"`
	Reviews      int           `json:"reviews"`
}

type eventView struct {
	Kind      string    `json:"kind"`
	Actor     string    `json:"actor,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func renderJSON(w io.Writer, issue *domain.Issue) error {
	view := issueView{
		Number:      issue.Number(),
		Title:       issue.Title(),
		Body:        issue.Body(),
		User:        issue.User().Login,
		State:       string(issue.State()),
		CreatedAt:   issue.CreatedAt(),
		ClosedAt:    issue.ClosedAt(),
		PullRequest: issue.IsPullRequest(),
		URL:         issue.URL(),
		Comments:    len(issue.Comments()),
		SubIssues:   issue.SubIssues(),
		Reviews:     len(issue.Reviews()),
	}
	if reason := issue.StateReason(); reason != domain.StateReasonNone {
		view.StateReason = string(reason)
	}
	if issueType := issue.Type(); issueType != nil {
		view.Type = issueType.Name
	}
	for _, event := range issue.Events() {
		view.Events = append(view.Events, eventView{
			Kind:      HumanizeEventKind(event),
			Actor:     event.Actor.Login,
			CreatedAt: event.CreatedAt,
		})
	}
	for _, link := range issue.RelatedIssueNumbers() {
		view.RelatedViews = append(view.RelatedViews, link.Target)
	}
	for _, link := range issue.RelatedCommits() {
		view.Commits = append(view.Commits, link.Target.Hash)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(view)
}
