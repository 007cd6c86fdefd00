package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"time"

	"github.com/bkyoung/issuegraph/internal/adapter/resthttp"
	"github.com/bkyoung/issuegraph/internal/domain"
)

const (
	defaultBaseURL        = "https://api.github.com"
	defaultTimeout        = 30 * time.Second
	defaultMaxRetries     = 3
	defaultInitialBackoff = 2 * time.Second
	perPage               = 100
)

// nextLinkRe extracts the rel="next" target from a Link header.
var nextLinkRe = regexp.MustCompile(`<([^>]+)>;\s*rel="next"`)

// Client is an HTTP client for the GitHub issues, timeline, comments,
// reviews, and commits endpoints.
type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
	retryConf  resthttp.RetryConfig
	logger     resthttp.Logger
}

// NewClient creates a new GitHub API client with the given token.
// The token should be a personal access token or GITHUB_TOKEN from Actions.
func NewClient(token string) *Client {
	return &Client{
		token:      token,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		retryConf: resthttp.RetryConfig{
			MaxRetries:     defaultMaxRetries,
			InitialBackoff: defaultInitialBackoff,
			MaxBackoff:     32 * time.Second,
			Multiplier:     2.0,
		},
	}
}

// SetBaseURL sets a custom base URL (for testing).
func (c *Client) SetBaseURL(url string) {
	c.baseURL = url
}

// SetTimeout sets the HTTP timeout.
func (c *Client) SetTimeout(timeout time.Duration) {
	c.httpClient.Timeout = timeout
}

// SetRetryConfig overrides the retry behavior.
func (c *Client) SetRetryConfig(conf resthttp.RetryConfig) {
	c.retryConf = conf
}

// SetLogger wires structured request/response logging.
func (c *Client) SetLogger(logger resthttp.Logger) {
	c.logger = logger
}

// GetIssue fetches one issue and returns a builder seeded with its fields.
func (c *Client) GetIssue(ctx context.Context, owner, repo string, number int) (*domain.IssueBuilder, error) {
	endpoint := fmt.Sprintf("%s/repos/%s/%s/issues/%d", c.baseURL, owner, repo, number)

	var wire issueJSON
	if err := c.getJSON(ctx, endpoint, &wire); err != nil {
		return nil, fmt.Errorf("get issue %s/%s#%d: %w", owner, repo, number, err)
	}
	return MapIssue(wire), nil
}

// ListTimeline fetches every timeline entry for an issue, following
// pagination. Entries come back raw so the event mapper can post-process
// them with full payload access.
func (c *Client) ListTimeline(ctx context.Context, owner, repo string, number int) ([]json.RawMessage, error) {
	endpoint := fmt.Sprintf("%s/repos/%s/%s/issues/%d/timeline?per_page=%d", c.baseURL, owner, repo, number, perPage)

	var entries []json.RawMessage
	err := c.listPages(ctx, endpoint, func(page []byte) error {
		var batch []json.RawMessage
		if err := json.Unmarshal(page, &batch); err != nil {
			return fmt.Errorf("decode timeline page: %w", err)
		}
		entries = append(entries, batch...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list timeline %s/%s#%d: %w", owner, repo, number, err)
	}
	return entries, nil
}

// ListComments fetches every comment for an issue as links to their bodies.
func (c *Client) ListComments(ctx context.Context, owner, repo string, number int) ([]*domain.ReferencedLink[string], error) {
	endpoint := fmt.Sprintf("%s/repos/%s/%s/issues/%d/comments?per_page=%d", c.baseURL, owner, repo, number, perPage)

	var comments []*domain.ReferencedLink[string]
	err := c.listPages(ctx, endpoint, func(page []byte) error {
		var batch []commentJSON
		if err := json.Unmarshal(page, &batch); err != nil {
			return fmt.Errorf("decode comments page: %w", err)
		}
		for _, wire := range batch {
			comments = append(comments, mapComment(wire))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list comments %s/%s#%d: %w", owner, repo, number, err)
	}
	return comments, nil
}

// ListReviews fetches every review for a pull request.
func (c *Client) ListReviews(ctx context.Context, owner, repo string, number int) ([]*domain.Review, error) {
	endpoint := fmt.Sprintf("%s/repos/%s/%s/pulls/%d/reviews?per_page=%d", c.baseURL, owner, repo, number, perPage)

	var reviews []*domain.Review
	err := c.listPages(ctx, endpoint, func(page []byte) error {
		var batch []reviewJSON
		if err := json.Unmarshal(page, &batch); err != nil {
			return fmt.Errorf("decode reviews page: %w", err)
		}
		for _, wire := range batch {
			reviews = append(reviews, mapReview(wire))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list reviews %s/%s#%d: %w", owner, repo, number, err)
	}
	return reviews, nil
}

// ListSubIssueNumbers fetches the numbers of an issue's sub-issues.
func (c *Client) ListSubIssueNumbers(ctx context.Context, owner, repo string, number int) ([]int, error) {
	endpoint := fmt.Sprintf("%s/repos/%s/%s/issues/%d/sub_issues?per_page=%d", c.baseURL, owner, repo, number, perPage)

	var numbers []int
	err := c.listPages(ctx, endpoint, func(page []byte) error {
		var batch []issueJSON
		if err := json.Unmarshal(page, &batch); err != nil {
			return fmt.Errorf("decode sub-issues page: %w", err)
		}
		for _, wire := range batch {
			numbers = append(numbers, wire.Number)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list sub-issues %s/%s#%d: %w", owner, repo, number, err)
	}
	return numbers, nil
}

// GetCommit fetches one commit by hash.
func (c *Client) GetCommit(ctx context.Context, owner, repo, sha string) (*domain.Commit, error) {
	endpoint := fmt.Sprintf("%s/repos/%s/%s/commits/%s", c.baseURL, owner, repo, sha)

	var wire commitJSON
	if err := c.getJSON(ctx, endpoint, &wire); err != nil {
		return nil, fmt.Errorf("get commit %s: %w", sha, err)
	}
	return mapCommit(wire), nil
}

// GetCommitByURL fetches a commit through the commit_url GitHub supplied in
// a timeline event. Used as the fallback when a hash lookup misses.
func (c *Client) GetCommitByURL(ctx context.Context, url string) (*domain.Commit, error) {
	var wire commitJSON
	if err := c.getJSON(ctx, url, &wire); err != nil {
		return nil, fmt.Errorf("get commit by url: %w", err)
	}
	return mapCommit(wire), nil
}

// listPages walks a paginated endpoint, invoking handle for each page body
// and following the Link header's rel="next" until exhausted.
func (c *Client) listPages(ctx context.Context, endpoint string, handle func(page []byte) error) error {
	start := time.Now()
	pages := 0
	next := endpoint

	for next != "" {
		body, linkHeader, err := c.get(ctx, next)
		if err != nil {
			return err
		}
		if err := handle(body); err != nil {
			return err
		}
		pages++
		next = parseNextLink(linkHeader)
	}

	if c.logger != nil {
		c.logger.LogResponse(ctx, resthttp.ResponseLog{
			Method:     http.MethodGet,
			Endpoint:   endpoint,
			Timestamp:  start,
			Duration:   time.Since(start),
			StatusCode: http.StatusOK,
			Pages:      pages,
		})
	}
	return nil
}

// getJSON performs a GET and decodes the response body into out.
func (c *Client) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	body, _, err := c.get(ctx, endpoint)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// get executes a single GET with retry, returning the body and Link header.
func (c *Client) get(ctx context.Context, endpoint string) ([]byte, string, error) {
	var body []byte
	var linkHeader string

	if c.logger != nil {
		c.logger.LogRequest(ctx, resthttp.RequestLog{
			Method:    http.MethodGet,
			Endpoint:  endpoint,
			Timestamp: time.Now(),
			Token:     c.token,
		})
	}

	err := resthttp.RetryWithBackoff(ctx, func(ctx context.Context) error {
		req, reqErr := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if reqErr != nil {
			return &resthttp.Error{
				Type:      resthttp.ErrTypeUnknown,
				Message:   reqErr.Error(),
				Retryable: false,
				Endpoint:  endpoint,
			}
		}

		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("Accept", "application/vnd.github+json")
		req.Header.Set("X-GitHub-Api-Version", "2022-11-28")

		resp, callErr := c.httpClient.Do(req)
		if callErr != nil {
			return resthttp.NewTimeoutError(endpoint, callErr.Error())
		}
		defer resp.Body.Close()

		respBody, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return &resthttp.Error{
				Type:      resthttp.ErrTypeUnknown,
				Message:   readErr.Error(),
				Retryable: true,
				Endpoint:  endpoint,
			}
		}

		if resp.StatusCode != http.StatusOK {
			return MapHTTPError(endpoint, resp.StatusCode, respBody)
		}

		body = respBody
		linkHeader = resp.Header.Get("Link")
		return nil
	}, c.retryConf)

	if err != nil {
		return nil, "", err
	}
	return body, linkHeader, nil
}

// parseNextLink extracts the rel="next" URL from a Link header, or ""
// when this was the last page.
func parseNextLink(header string) string {
	if header == "" {
		return ""
	}
	match := nextLinkRe.FindStringSubmatch(header)
	if match == nil {
		return ""
	}
	return match[1]
}
