// Package forecast fetches and parses daily forecasts from an OpenWeatherMap-style API.
package forecast

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"

	"github.com/cesargomez89/weathercache/internal/constants"
	"github.com/cesargomez89/weathercache/internal/domain"
	"github.com/cesargomez89/weathercache/internal/httpclient"
	"github.com/cesargomez89/weathercache/internal/logger"
	"github.com/cesargomez89/weathercache/internal/metrics"
)

// Config holds the forecast API settings.
type Config struct {
	BaseURL string
	APIKey  string
	Days    int
	Timeout time.Duration
}

// Client issues one forecast request per call. It does not retry; a failed call is a FetchError.
type Client struct {
	cfg     Config
	http    *httpclient.Client
	breaker *gobreaker.CircuitBreaker
	logger  *logger.Logger
}

type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.code)
}

func NewClient(cfg Config, httpClient *httpclient.Client, log *logger.Logger) *Client {
	if cfg.Days <= 0 {
		cfg.Days = constants.ForecastDays
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = constants.DefaultFetchTimeout
	}
	log = log.WithComponent("forecast")

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "forecast",
		MaxRequests: constants.BreakerMaxRequests,
		Interval:    constants.BreakerInterval,
		Timeout:     constants.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= constants.BreakerMaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.ForecastBreakerState.Set(float64(to))
			log.Warn("Circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})

	return &Client{
		cfg:     cfg,
		http:    httpClient,
		breaker: cb,
		logger:  log,
	}
}

// URL builds the request URL for location in the given unit system.
func (c *Client) URL(location, units string) (string, error) {
	u, err := url.Parse(c.cfg.BaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid forecast url: %w", err)
	}
	q := u.Query()
	q.Set(constants.ParamQuery, location)
	q.Set(constants.ParamFormat, constants.ForecastFormat)
	q.Set(constants.ParamUnits, units)
	q.Set(constants.ParamDays, strconv.Itoa(c.cfg.Days))
	if c.cfg.APIKey != "" {
		q.Set(constants.ParamAPIKey, c.cfg.APIKey)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Fetch returns the raw forecast body for location. Transport failures, timeouts,
// non-2xx responses and an open breaker all come back as *domain.FetchError.
func (c *Client) Fetch(ctx context.Context, location, units string) ([]byte, error) {
	endpoint, err := c.URL(location, units)
	if err != nil {
		return nil, &domain.FetchError{Location: location, Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	result, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(ctx, req)
		if err != nil {
			metrics.ForecastAPICallsTotal.WithLabelValues("error").Inc()
			return nil, err
		}
		defer resp.Body.Close()
		metrics.ForecastAPICallsTotal.WithLabelValues(statusClass(resp.StatusCode)).Inc()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			// Drain so the connection can be reused; the body itself is discarded.
			_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, constants.MaxPayloadSize))
			return nil, &statusError{code: resp.StatusCode}
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, constants.MaxPayloadSize))
		if err != nil {
			return nil, fmt.Errorf("failed to read body: %w", err)
		}
		return body, nil
	})
	if err != nil {
		fetchErr := &domain.FetchError{Location: location, Err: err}
		var se *statusError
		if errors.As(err, &se) {
			fetchErr.StatusCode = se.code
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.ForecastAPICallsTotal.WithLabelValues("breaker_open").Inc()
		}
		c.logger.Warn("Forecast fetch failed", "location", location, "status", fetchErr.StatusCode, "error", err)
		return nil, fetchErr
	}

	return result.([]byte), nil
}

func statusClass(code int) string {
	return strconv.Itoa(code/100) + "xx"
}
