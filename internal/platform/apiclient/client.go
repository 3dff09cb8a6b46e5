package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	ballothttp "ballot/contexts/governance/ballot-engine/transport/http"

	"github.com/hashicorp/go-retryablehttp"
)

// APIError is a non-2xx response decoded from the ballot API error body.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("ballot api: %d %s", e.StatusCode, e.Code)
	}
	return fmt.Sprintf("ballot api: %d %s: %s", e.StatusCode, e.Code, e.Message)
}

type Options struct {
	// Identity is sent as X-User-Id.
	Identity     string
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	Logger       *slog.Logger
}

// Client talks to the ballot HTTP API. Transport failures are retried for
// every request, 5xx responses only for GETs. Any other non-2xx response is
// returned immediately as *APIError.
type Client struct {
	baseURL  *url.URL
	identity string
	client   *retryablehttp.Client
}

func New(baseURL string, opts Options) (*Client, error) {
	parsed, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("parsing api url: %w", err)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("api url %q has no host", baseURL)
	}
	if parsed.Scheme == "" {
		parsed.Scheme = "http"
	}

	client := retryablehttp.NewClient()
	client.RetryMax = 3
	if opts.RetryMax > 0 {
		client.RetryMax = opts.RetryMax
	}
	if opts.RetryWaitMin > 0 {
		client.RetryWaitMin = opts.RetryWaitMin
	}
	if opts.RetryWaitMax > 0 {
		client.RetryWaitMax = opts.RetryWaitMax
	}
	client.Backoff = retryablehttp.LinearJitterBackoff
	client.CheckRetry = checkRetry
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler
	client.Logger = nil
	if opts.Logger != nil {
		client.Logger = opts.Logger
	}

	return &Client{
		baseURL:  parsed,
		identity: strings.TrimSpace(opts.Identity),
		client:   client,
	}, nil
}

func checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err == nil && resp != nil {
		if resp.StatusCode < http.StatusInternalServerError {
			return false, nil
		}
		// A 5xx on a write may follow a committed transition.
		if resp.Request != nil && resp.Request.Method != http.MethodGet {
			return false, nil
		}
	}
	return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
}

func (c *Client) DeployBallot(ctx context.Context, req ballothttp.InitializeBallotRequest) (ballothttp.BallotResponse, error) {
	var resp ballothttp.BallotResponse
	err := c.do(ctx, http.MethodPost, "/v1/ballots", req, &resp)
	return resp, err
}

func (c *Client) Ballot(ctx context.Context, ballotID string) (ballothttp.BallotResponse, error) {
	var resp ballothttp.BallotResponse
	err := c.do(ctx, http.MethodGet, ballotPath(ballotID), nil, &resp)
	return resp, err
}

func (c *Client) GiveRightToVote(ctx context.Context, ballotID string, voter string) (ballothttp.VoterResponse, error) {
	var resp ballothttp.VoterResponse
	err := c.do(ctx, http.MethodPost, ballotPath(ballotID, "voters"), ballothttp.GiveRightRequest{Voter: voter}, &resp)
	return resp, err
}

func (c *Client) Voter(ctx context.Context, ballotID string, address string) (ballothttp.VoterResponse, error) {
	var resp ballothttp.VoterResponse
	err := c.do(ctx, http.MethodGet, ballotPath(ballotID, "voters", address), nil, &resp)
	return resp, err
}

func (c *Client) Vote(ctx context.Context, ballotID string, proposal int) (ballothttp.VoteResponse, error) {
	var resp ballothttp.VoteResponse
	err := c.do(ctx, http.MethodPost, ballotPath(ballotID, "votes"), ballothttp.VoteRequest{Proposal: &proposal}, &resp)
	return resp, err
}

func (c *Client) Delegate(ctx context.Context, ballotID string, to string) (ballothttp.DelegateResponse, error) {
	var resp ballothttp.DelegateResponse
	err := c.do(ctx, http.MethodPost, ballotPath(ballotID, "delegations"), ballothttp.DelegateRequest{To: to}, &resp)
	return resp, err
}

func (c *Client) Proposals(ctx context.Context, ballotID string) (ballothttp.ProposalsResponse, error) {
	var resp ballothttp.ProposalsResponse
	err := c.do(ctx, http.MethodGet, ballotPath(ballotID, "proposals"), nil, &resp)
	return resp, err
}

func (c *Client) Proposal(ctx context.Context, ballotID string, index int) (ballothttp.ProposalResponse, error) {
	var resp ballothttp.ProposalResponse
	err := c.do(ctx, http.MethodGet, ballotPath(ballotID, "proposals", strconv.Itoa(index)), nil, &resp)
	return resp, err
}

func (c *Client) Winner(ctx context.Context, ballotID string) (ballothttp.WinnerResponse, error) {
	var resp ballothttp.WinnerResponse
	err := c.do(ctx, http.MethodGet, ballotPath(ballotID, "winner"), nil, &resp)
	return resp, err
}

// ballotPath returns an unescaped path; JoinPath escapes it on the way out.
func ballotPath(ballotID string, parts ...string) string {
	segments := append([]string{"v1", "ballots", ballotID}, parts...)
	return "/" + strings.Join(segments, "/")
}

func (c *Client) do(ctx context.Context, method string, path string, body any, out any) error {
	var payload []byte
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		payload = raw
	}

	target := c.baseURL.JoinPath(path).String()
	var reqBody any
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.identity != "" {
		req.Header.Set("X-User-Id", c.identity)
	}

	res, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: res.StatusCode, Code: http.StatusText(res.StatusCode)}
		var decoded ballothttp.ErrorResponse
		if json.Unmarshal(data, &decoded) == nil && decoded.Code != "" {
			apiErr.Code = decoded.Code
			apiErr.Message = decoded.Message
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding response body: %w", err)
	}
	return nil
}
