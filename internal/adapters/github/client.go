// Package github implements the Board port against the GitHub REST
// API. Board columns are modeled as "status:" and "review:" labels on
// the backing repository's issues, which keeps the adapter on the
// stable REST surface.
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	defaultAPIEndpoint = "https://api.github.com"
	defaultTimeout     = 30 * time.Second
	maxRetryElapsed    = 45 * time.Second
	maxResponseSize    = 10 * 1024 * 1024
)

// Client is a minimal GitHub REST client scoped to one repository.
type Client struct {
	token      string
	owner      string
	repo       string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for owner/repo authenticated with token.
func NewClient(token, owner, repo string) *Client {
	return &Client{
		token:   token,
		owner:   owner,
		repo:    repo,
		baseURL: defaultAPIEndpoint,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

// WithBaseURL returns a client pointed at a custom API endpoint, for
// tests or GitHub Enterprise.
func (c *Client) WithBaseURL(baseURL string) *Client {
	copied := *c
	copied.baseURL = baseURL
	return &copied
}

// repoPath returns the "/repos/owner/repo" path prefix.
func (c *Client) repoPath() string {
	return "/repos/" + c.owner + "/" + c.repo
}

func (c *Client) buildURL(path string, params map[string]string) string {
	u := c.baseURL + path
	if len(params) > 0 {
		values := url.Values{}
		for k, v := range params {
			values.Set(k, v)
		}
		u += "?" + values.Encode()
	}
	return u
}

// apiError is a non-2xx response. Client errors are permanent; the
// retry loop only retries transport failures, 5xx, and rate limits.
type apiError struct {
	status int
	body   string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("GitHub API error: %s (status %d)", e.body, e.status)
}

// doRequest performs an authenticated request with exponential-backoff
// retry on transient failures.
func (c *Client) doRequest(ctx context.Context, method, urlStr string, body any) ([]byte, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	attempt := func() ([]byte, error) {
		var reqBody io.Reader
		if payload != nil {
			reqBody = bytes.NewReader(payload)
		}

		req, err := http.NewRequestWithContext(ctx, method, urlStr, reqBody)
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/vnd.github+json")
		req.Header.Set("X-GitHub-Api-Version", "2022-11-28")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("request failed: %w", err)
		}

		respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
		_ = resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read response: %w", err)
		}

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			return respBody, nil
		case resp.StatusCode == http.StatusTooManyRequests,
			resp.StatusCode == http.StatusForbidden && resp.Header.Get("X-RateLimit-Remaining") == "0",
			resp.StatusCode >= 500:
			return nil, &apiError{status: resp.StatusCode, body: string(respBody)}
		default:
			return nil, backoff.Permanent(&apiError{status: resp.StatusCode, body: string(respBody)})
		}
	}

	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = maxRetryElapsed

	return backoff.RetryWithData(attempt, backoff.WithContext(policy, ctx))
}

func (c *Client) get(ctx context.Context, path string, params map[string]string, out any) error {
	data, err := c.doRequest(ctx, http.MethodGet, c.buildURL(path, params), nil)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, body, out any) error {
	data, err := c.doRequest(ctx, method, c.buildURL(path, nil), body)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
