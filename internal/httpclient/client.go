package httpclient

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// Client wraps an http.Client to space out requests to the same upstream.
// It never retries: a failed request is reported to the caller as is.
type Client struct {
	httpClient *http.Client

	minRequestInterval time.Duration
	lastRequest        time.Time
	mu                 sync.Mutex
}

// NewClient creates a new rate-limited HTTP client.
func NewClient(httpClient *http.Client, minRequestInterval time.Duration) *Client {
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 2,
				IdleConnTimeout:     30 * time.Second,
				TLSHandshakeTimeout: 5 * time.Second,
			},
		}
	}
	return &Client{
		httpClient:         httpClient,
		minRequestInterval: minRequestInterval,
	}
}

// Do waits for the next free slot, then executes req bound to ctx.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	// Check context before claiming a time slot
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if wait := c.reserve(); wait > 0 {
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	return c.httpClient.Do(req.WithContext(ctx))
}

// reserve claims the next request slot and returns how long to wait for it.
func (c *Client) reserve() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	nextAllowed := c.lastRequest.Add(c.minRequestInterval)
	if now.Before(nextAllowed) {
		c.lastRequest = nextAllowed
		return nextAllowed.Sub(now)
	}
	c.lastRequest = now
	return 0
}
