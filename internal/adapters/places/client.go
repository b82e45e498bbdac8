// Package places is the outbound adapter for the Google Place Details API
// (legacy Places API, JSON output).
package places

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"reviews_importer/internal/adapters/observability"
	"reviews_importer/internal/domain"
)

// detailFields is the bounded field set requested on every call. Keeping it
// fixed keeps the response shape (and billing SKU) predictable.
var detailFields = []string{
	"formatted_address", "icon", "id", "name", "rating",
	"reviews", "url", "user_ratings_total", "vicinity",
}

type Client struct {
	base string
	hc   *http.Client
	rl   *rate.Limiter
}

// New builds a client for the given details endpoint. rps bounds outbound
// request rate across all languages of a run.
func New(base string, rps int) (*Client, error) {
	if base == "" {
		return nil, fmt.Errorf("places base URL is required")
	}
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		base: base,
		hc:   &http.Client{Timeout: 20 * time.Second},
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

// PlaceDetails issues one GET for one language and returns the decoded JSON
// payload. A provider-reported error (error_message/status in the body) comes
// back as *domain.ProviderError. There is deliberately no retry here: a failed
// fetch aborts the whole import run.
func (c *Client) PlaceDetails(ctx context.Context, placeID, apiKey, sortOrder, language string) (map[string]any, error) {
	if err := c.rl.Wait(ctx); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("placeid", placeID)
	q.Set("key", apiKey)
	q.Set("fields", strings.Join(detailFields, ","))
	q.Set("reviews_sort", sortOrder)
	q.Set("reviews_no_translations", "false")
	if language != "" {
		q.Set("language", language)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "reviews-importer/1.0")

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveExternal("places", "details", 0, time.Since(start))
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	defer resp.Body.Close()
	observability.ObserveExternal("places", "details", resp.StatusCode, time.Since(start))

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("places: bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("places: decode response: %w", err)
	}

	// The details endpoint reports API-level failures inside a 200 body.
	if msg, ok := out["error_message"].(string); ok && msg != "" {
		status, _ := out["status"].(string)
		return nil, &domain.ProviderError{Status: status, Message: msg}
	}
	return out, nil
}
