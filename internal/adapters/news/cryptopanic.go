package news

// cryptopanic.go — headline collection from the CryptoPanic developer API.
//
// Collection never fails the cycle: a missing token, timeout, or bad status
// marks the source failed in the bundle and moves on.

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"rwafolio/internal/domain"
)

const (
	cryptopanicURL = "https://cryptopanic.com/api/developer/v2/posts/"
	sourceName     = "cryptopanic"
	maxItems       = 10
	fetchTimeout   = 10 * time.Second
)

// Collector implements ports.NewsCollector over the CryptoPanic API.
type Collector struct {
	http      *http.Client
	baseURL   string
	authToken string
	log       zerolog.Logger
}

// NewCollector creates a Collector. An empty authToken is allowed; the
// source is then reported as failed on every cycle.
func NewCollector(authToken string, log zerolog.Logger) *Collector {
	return &Collector{
		http:      &http.Client{Timeout: fetchTimeout},
		baseURL:   cryptopanicURL,
		authToken: authToken,
		log:       log.With().Str("component", "news").Logger(),
	}
}

// Collect gathers the latest headlines. Per-source success lands in
// FetchStatus; failures in FailedSources.
func (c *Collector) Collect(ctx context.Context) domain.NewsBundle {
	bundle := domain.NewsBundle{
		FetchStatus: make(map[string]bool),
	}

	items, err := c.fetchCryptoPanic(ctx)
	if err != nil {
		c.log.Warn().Err(err).Str("source", sourceName).Msg("news fetch failed")
		bundle.FetchStatus[sourceName] = false
		bundle.FailedSources = append(bundle.FailedSources, sourceName)
	} else {
		bundle.FetchStatus[sourceName] = true
		bundle.Items = append(bundle.Items, items...)
	}

	text := ""
	for _, item := range bundle.Items {
		if text != "" {
			text += "\n"
		}
		text += fmt.Sprintf("[%s] %s", item.Source, item.Title)
		bundle.SourceURLs = append(bundle.SourceURLs, item.URL)
	}
	bundle.Text = text
	return bundle
}

type postsResponse struct {
	Results []struct {
		Title       string `json:"title"`
		URL         string `json:"url"`
		OriginalURL string `json:"original_url"`
	} `json:"results"`
}

func (c *Collector) fetchCryptoPanic(ctx context.Context) ([]domain.NewsItem, error) {
	if c.authToken == "" {
		return nil, fmt.Errorf("auth token not configured")
	}

	q := url.Values{
		"auth_token": {c.authToken},
		"public":     {"true"},
		"filter":     {"hot"},
		"kind":       {"news"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	var posts postsResponse
	if err := json.NewDecoder(resp.Body).Decode(&posts); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	items := make([]domain.NewsItem, 0, maxItems)
	for i, r := range posts.Results {
		if i >= maxItems {
			break
		}
		itemURL := r.OriginalURL
		if itemURL == "" {
			itemURL = r.URL
		}
		items = append(items, domain.NewsItem{
			Title:  r.Title,
			URL:    itemURL,
			Source: sourceName,
		})
	}
	return items, nil
}
