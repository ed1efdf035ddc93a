package notices

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

// transient reports whether an HTTP status is worth retrying.
func transient(status int) bool {
	return status == 429 || status >= 500
}

// TransportError is a network failure or transient HTTP error that
// persisted after the retry budget was spent.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ClientError is a non-transient HTTP error (4xx other than 429). It is
// never retried; the request itself is wrong.
type ClientError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *ClientError) Error() string {
	return fmt.Sprintf("api rejected request: %s", e.Status)
}

// ClientOptions configures a notices API client.
type ClientOptions struct {
	BaseURL string
	Token   string
	// Timeout applies per attempt, not per call.
	Timeout      time.Duration
	RetryCount   int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
}

// Client is a procurement-notices API client.
type Client struct {
	http *resty.Client
}

// NewClient creates a new API client. The client holds no state beyond
// the underlying HTTP session; construct one per run.
func NewClient(opts ClientOptions) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.RetryCount <= 0 {
		opts.RetryCount = 3
	}
	if opts.RetryWaitMin <= 0 {
		opts.RetryWaitMin = 500 * time.Millisecond
	}
	if opts.RetryWaitMax <= 0 {
		opts.RetryWaitMax = 10 * time.Second
	}

	httpClient := resty.New().
		SetBaseURL(opts.BaseURL).
		SetTimeout(opts.Timeout).
		SetRetryCount(opts.RetryCount).
		SetRetryWaitTime(opts.RetryWaitMin).
		SetRetryMaxWaitTime(opts.RetryWaitMax).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return transient(r.StatusCode())
		})
	if opts.Token != "" {
		httpClient.SetAuthToken(opts.Token)
	}

	return &Client{http: httpClient}
}

// PageParams selects one page of the notices listing. An empty Month
// means the unscoped feed.
type PageParams struct {
	Month  string // YYYY-MM publication month
	Offset int
	Limit  int
}

// FetchPage retrieves a single page of notices. Transient failures are
// retried with backoff before a *TransportError surfaces; other HTTP
// errors surface immediately as *ClientError.
func (c *Client) FetchPage(ctx context.Context, params PageParams) (*Page, error) {
	var page Page

	req := c.http.R().
		SetContext(ctx).
		SetQueryParam("offset", strconv.Itoa(params.Offset)).
		SetQueryParam("limit", strconv.Itoa(params.Limit)).
		SetResult(&page)
	if params.Month != "" {
		req.SetQueryParam("pubMonth", params.Month)
	}

	resp, err := req.Get("/api/notices")
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	if resp.IsError() {
		if transient(resp.StatusCode()) {
			return nil, &TransportError{
				Err: fmt.Errorf("giving up after retries: %s", resp.Status()),
			}
		}
		return nil, &ClientError{
			StatusCode: resp.StatusCode(),
			Status:     resp.Status(),
			Body:       resp.String(),
		}
	}

	return &page, nil
}
