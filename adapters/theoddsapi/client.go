package theoddsapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/XavierBriggs/Pythia/pkg/contracts"
	"github.com/XavierBriggs/Pythia/pkg/models"
)

const (
	DefaultBaseURL = "https://api.the-odds-api.com"
	apiVersion     = "v4"
	userAgent      = "Pythia/1.0 (Fortuna Player Props)"
	defaultTimeout = 10 * time.Second
	maxRetries     = 3
	retryDelay     = 2 * time.Second
)

// Client implements the OddsProvider interface for The Odds API
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	maxRetries int
	retryDelay time.Duration

	rateLimits models.RateLimits
	mu         sync.RWMutex
}

// Ensure Client implements OddsProvider
var _ contracts.OddsProvider = (*Client)(nil)

// Option configures a Client
type Option func(*Client)

// WithBaseURL points the client at another host (tests, proxies)
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithTimeout sets the per-call HTTP timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithRetry sets how many attempts a retryable call gets and the initial backoff
func WithRetry(attempts int, delay time.Duration) Option {
	return func(c *Client) {
		if attempts > 0 {
			c.maxRetries = attempts
		}
		c.retryDelay = delay
	}
}

// NewClient creates a new The Odds API client
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		maxRetries: maxRetries,
		retryDelay: retryDelay,
		rateLimits: models.RateLimits{
			RequestsRemaining: 500, // Default quota
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// FetchEventOdds retrieves event-specific odds (for props markets)
func (c *Client) FetchEventOdds(ctx context.Context, opts *models.FetchEventOddsOptions) (*models.FetchResult, error) {
	endpoint := fmt.Sprintf("%s/%s/sports/%s/events/%s/odds", c.baseURL, apiVersion, opts.Sport, opts.EventID)

	params := url.Values{}
	params.Set("apiKey", c.apiKey)
	params.Set("markets", strings.Join(opts.Markets, ","))
	if len(opts.Bookmakers) > 0 {
		params.Set("bookmakers", strings.Join(opts.Bookmakers, ","))
	} else {
		params.Set("regions", strings.Join(opts.Regions, ","))
	}
	params.Set("oddsFormat", "american")
	params.Set("dateFormat", "iso")

	fullURL := fmt.Sprintf("%s?%s", endpoint, params.Encode())

	body, err := c.doRequestWithRetry(ctx, fullURL)
	if err != nil {
		return nil, fmt.Errorf("fetch event odds failed: %w", err)
	}

	// Single event response
	var apiResp oddsResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("parse event odds response: %w", err)
	}

	return parseEventOdds(apiResp, time.Now()), nil
}

// GetRateLimits returns current rate limit information
func (c *Client) GetRateLimits() models.RateLimits {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.rateLimits
}

// doRequestWithRetry retries rate-limited and server errors with exponential
// backoff. Transport errors, including timeouts, are returned immediately.
func (c *Client) doRequestWithRetry(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			// Exponential backoff
			backoff := c.retryDelay * time.Duration(1<<uint(attempt-1))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		body, err := c.doRequest(ctx, fullURL)
		if err == nil {
			return body, nil
		}

		lastErr = err

		var httpErr *HTTPError
		if !errors.As(err, &httpErr) || !httpErr.Retryable() {
			return nil, err
		}
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

// doRequest performs a single HTTP request
func (c *Client) doRequest(ctx context.Context, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	// Update rate limits from headers
	c.updateRateLimits(resp.Header)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &HTTPError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
		}
	}

	return body, nil
}

// updateRateLimits extracts rate limit info from response headers
func (c *Client) updateRateLimits(headers http.Header) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if remaining := headers.Get("x-requests-remaining"); remaining != "" {
		if val, err := strconv.Atoi(remaining); err == nil {
			c.rateLimits.RequestsRemaining = val
		}
	}

	if used := headers.Get("x-requests-used"); used != "" {
		if val, err := strconv.Atoi(used); err == nil {
			c.rateLimits.RequestsUsed = val
		}
	}
}

// parseEventOdds flattens bookmakers → markets → outcomes into quotes
func parseEventOdds(event oddsResponse, receivedAt time.Time) *models.FetchResult {
	commenceTime, err := time.Parse(time.RFC3339, event.CommenceTime)
	if err != nil {
		commenceTime = receivedAt // Fallback
	}

	result := &models.FetchResult{
		Event: &models.Event{
			EventID:      event.ID,
			SportKey:     event.SportKey,
			HomeTeam:     event.HomeTeam,
			AwayTeam:     event.AwayTeam,
			CommenceTime: commenceTime,
		},
	}

	for _, bookmaker := range event.Bookmakers {
		vendorUpdate, err := time.Parse(time.RFC3339, bookmaker.LastUpdate)
		if err != nil {
			vendorUpdate = receivedAt
		}

		for _, market := range bookmaker.Markets {
			for _, outcome := range market.Outcomes {
				quote := models.RawQuote{
					EventID:          event.ID,
					SportKey:         event.SportKey,
					BookKey:          bookmaker.Key,
					MarketKey:        market.Key,
					OutcomeName:      outcome.Name,
					Price:            outcome.Price,
					Description:      outcome.Description,
					VendorLastUpdate: vendorUpdate,
					ReceivedAt:       receivedAt,
				}

				if outcome.Point != nil {
					point := *outcome.Point
					quote.Point = &point
				}

				result.Quotes = append(result.Quotes, quote)
			}
		}
	}

	return result
}

// HTTPError represents a non-200 response from the API
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// HTTPStatus returns the response status code
func (e *HTTPError) HTTPStatus() int {
	return e.StatusCode
}

// Retryable reports whether the request may succeed if repeated
func (e *HTTPError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// API response structures matching The Odds API JSON format

type oddsResponse struct {
	ID           string      `json:"id"`
	SportKey     string      `json:"sport_key"`
	SportTitle   string      `json:"sport_title"`
	CommenceTime string      `json:"commence_time"`
	HomeTeam     string      `json:"home_team"`
	AwayTeam     string      `json:"away_team"`
	Bookmakers   []bookmaker `json:"bookmakers"`
}

type bookmaker struct {
	Key        string   `json:"key"`
	Title      string   `json:"title"`
	LastUpdate string   `json:"last_update"`
	Markets    []market `json:"markets"`
}

type market struct {
	Key        string    `json:"key"`
	LastUpdate string    `json:"last_update"`
	Outcomes   []outcome `json:"outcomes"`
}

type outcome struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Price       float64  `json:"price"`
	Point       *float64 `json:"point,omitempty"`
}
