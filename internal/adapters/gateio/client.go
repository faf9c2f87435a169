package gateio

// client.go — Gate.io spot v4 REST client.
//
// Public endpoints go out unsigned; private endpoints (accounts, orders)
// carry the v4 HMAC-SHA512 signature in KEY/Timestamp/SIGN headers.
// Every call is rate limited and retried with exponential backoff.

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://api.gateio.ws/api/v4"
	apiPrefix      = "/api/v4"

	// Conservative fractions of Gate.io's documented limits:
	// public spot endpoints 200 req/10s, order placement 10 req/s.
	publicRatePerSec = 10
	orderRatePerSec  = 5

	maxRetries    = 3
	baseRetryWait = 500 * time.Millisecond
)

// Client talks to the Gate.io spot API with rate limiting and retries.
type Client struct {
	http          *http.Client
	baseURL       string
	apiKey        string
	apiSecret     string
	publicLimiter *rate.Limiter
	orderLimiter  *rate.Limiter
	log           zerolog.Logger
}

// NewClient creates a Client. baseURL falls back to production when empty;
// key and secret are only needed for balance and order endpoints.
func NewClient(baseURL, apiKey, apiSecret string, log zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		http:          &http.Client{Timeout: 10 * time.Second},
		baseURL:       baseURL,
		apiKey:        apiKey,
		apiSecret:     apiSecret,
		publicLimiter: rate.NewLimiter(publicRatePerSec, 5),
		orderLimiter:  rate.NewLimiter(orderRatePerSec, 2),
		log:           log.With().Str("component", "gateio").Logger(),
	}
}

// get performs an unsigned GET against path (e.g. "/spot/tickers").
func (c *Client) get(ctx context.Context, path, query string, out any) error {
	return c.doWithRetry(ctx, c.publicLimiter, func() (*http.Response, error) {
		url := c.baseURL + path
		if query != "" {
			url += "?" + query
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		return c.http.Do(req)
	}, out)
}

// getSigned performs a signed GET for private endpoints.
func (c *Client) getSigned(ctx context.Context, path, query string, out any) error {
	return c.doWithRetry(ctx, c.publicLimiter, func() (*http.Response, error) {
		return c.signedRequest(ctx, http.MethodGet, path, query, nil)
	}, out)
}

// postSigned performs a signed POST with a JSON body.
func (c *Client) postSigned(ctx context.Context, limiter *rate.Limiter, path string, body, out any) error {
	return c.doWithRetry(ctx, limiter, func() (*http.Response, error) {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		return c.signedRequest(ctx, http.MethodPost, path, "", b)
	}, out)
}

// signedRequest builds a request carrying the v4 signature:
// HMAC-SHA512(secret, "METHOD\nPATH\nQUERY\nSHA512(body)\nTIMESTAMP").
func (c *Client) signedRequest(ctx context.Context, method, path, query string, body []byte) (*http.Response, error) {
	url := c.baseURL + path
	if query != "" {
		url += "?" + query
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, err
	}

	ts := strconv.FormatInt(time.Now().Unix(), 10)
	bodyHash := sha512.Sum512(body)
	payload := fmt.Sprintf("%s\n%s\n%s\n%s\n%s",
		method, apiPrefix+path, query, hex.EncodeToString(bodyHash[:]), ts)

	mac := hmac.New(sha512.New, []byte(c.apiSecret))
	mac.Write([]byte(payload))

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("KEY", c.apiKey)
	req.Header.Set("Timestamp", ts)
	req.Header.Set("SIGN", hex.EncodeToString(mac.Sum(nil)))
	return c.http.Do(req)
}

// doWithRetry executes fn with exponential backoff on 429/5xx/transport
// errors. 4xx responses are returned immediately with the body included.
func (c *Client) doWithRetry(ctx context.Context, limiter *rate.Limiter, fn func() (*http.Response, error), out any) error {
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}

		resp, err := fn()
		if err != nil {
			if attempt == maxRetries {
				return fmt.Errorf("request failed after %d retries: %w", maxRetries, err)
			}
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			resp.Body.Close()
			c.log.Warn().Int("attempt", attempt+1).Msg("rate limited by exchange")
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode >= 500 {
			resp.Body.Close()
			if attempt == maxRetries {
				return fmt.Errorf("server error %d after %d retries", resp.StatusCode, maxRetries)
			}
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode >= 400 {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return fmt.Errorf("client error %d: %s", resp.StatusCode, string(body))
		}

		defer resp.Body.Close()
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}
	return fmt.Errorf("exhausted %d retries", maxRetries)
}

func (c *Client) sleep(ctx context.Context, attempt int) {
	wait := time.Duration(math.Pow(2, float64(attempt))) * baseRetryWait
	select {
	case <-time.After(wait):
	case <-ctx.Done():
	}
}
