package domain

import (
	"context"
	"time"
)

type ReviewRepository interface {
	// Write paths
	// FindIDByReviewID returns the entity id for a review_id, ok=false when absent.
	FindIDByReviewID(ctx context.Context, reviewID string) (int64, bool, error)
	// CreateReview inserts a new entity; the publish decision is made here and
	// never re-evaluated afterwards.
	CreateReview(ctx context.Context, r Review, published bool) (int64, error)
	// UpdateReview overwrites the language-independent fields of an entity.
	UpdateReview(ctx context.Context, id int64, r Review) error
	// UpsertText writes the single per-language text row, leaving every other
	// language untouched.
	UpsertText(ctx context.Context, id int64, lang, body string) error

	// Read paths
	ListReviews(ctx context.Context, q ReviewsQuery) (ReviewsPage, error)
}

type SettingsRepository interface {
	Get(ctx context.Context, name string) (string, error) // "" when unset
	Set(ctx context.Context, name, value string) error
	Delete(ctx context.Context, name string) error
}

// PlacesClient fetches one Place Details payload for one language.
type PlacesClient interface {
	PlaceDetails(ctx context.Context, placeID, apiKey, sortOrder, language string) (map[string]any, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
	// SetNX acquires key for ttl if nobody holds it; used for the run lease and
	// manual-trigger nonce replay protection.
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
}
