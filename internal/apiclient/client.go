package apiclient

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// Logger is the logging surface the client needs.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Client talks to the backend's house API over HTTP. All mutations go
// through here; the realtime channel only carries notifications back.
type Client struct {
	http   *resty.Client
	logger Logger
}

// Options configures a Client.
type Options struct {
	BaseURL string
	Token   string
	Timeout time.Duration
	Logger  Logger
}

// New builds a client for the backend at opts.BaseURL. The bearer token
// is optional; agents on a trusted network may run without one.
func New(opts Options) *Client {
	httpClient := resty.New().
		SetBaseURL(opts.BaseURL).
		SetTimeout(opts.Timeout).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	if opts.Token != "" {
		httpClient.SetAuthToken(opts.Token)
	}

	return &Client{http: httpClient, logger: opts.Logger}
}

// checkStatus maps HTTP error statuses onto the package's sentinel errors.
func checkStatus(resp *resty.Response) error {
	if resp.IsSuccess() {
		return nil
	}
	switch resp.StatusCode() {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrUnauthorized, resp.Status())
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s %s", ErrNotFound, resp.Request.Method, resp.Request.URL)
	default:
		return fmt.Errorf("%w: %s returned %s", ErrBackend, resp.Request.URL, resp.Status())
	}
}
