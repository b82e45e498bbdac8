package app

import (
	"crypto/md5"
	"encoding/hex"
	"math"
	"strconv"
	"strings"
	"time"

	"reviews_importer/internal/domain"
)

// reviewIdentity derives the stable content-based id: a hash over the trimmed
// author profile URL and the trimmed epoch-seconds string. Neither text nor
// language participates, so the same underlying review maps to the same id
// across languages and refetches.
func reviewIdentity(authorURL, epoch string) string {
	sum := md5.Sum([]byte(strings.TrimSpace(authorURL) + strings.TrimSpace(epoch)))
	return hex.EncodeToString(sum[:])
}

/********** payload helpers **********/

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func strAt(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	s, _ := m[key].(string)
	return s
}

// floatAt: number under key as float64 (JSON numbers, ints, "4,5" strings).
func floatAt(m map[string]any, key string) (float64, bool) {
	if m == nil {
		return 0, false
	}
	switch v := m[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(v, ",", "."))
		if s == "" {
			return 0, false
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

func int64At(m map[string]any, key string) (int64, bool) {
	if f, ok := floatAt(m, key); ok {
		return int64(f), true
	}
	return 0, false
}

/********** normalizer **********/

// normalizeReviews maps a raw Place Details payload into canonical reviews,
// preserving provider order, and captures the provider-level aggregate stats
// when present. Empty-text entries are silently dropped when skipEmpty is set;
// that filtering is policy, not an error. The returned stats may be non-nil
// even when the error is ErrNoReviewsWithComment.
func normalizeReviews(payload map[string]any, skipEmpty bool) ([]domain.Review, *domain.AggregateStats, error) {
	result := asMap(payload["result"])

	rawList, ok := result["reviews"].([]any)
	if !ok {
		return nil, nil, domain.ErrNoReviews
	}

	out := make([]domain.Review, 0, len(rawList))
	for _, item := range rawList {
		r := asMap(item)
		if r == nil {
			continue
		}
		text := strings.TrimSpace(strAt(r, "text"))
		if skipEmpty && text == "" {
			continue
		}

		epochStr := ""
		var reviewedAt, reviewedAtGMT time.Time
		if epoch, ok := int64At(r, "time"); ok {
			epochStr = strconv.FormatInt(epoch, 10)
			reviewedAt = time.Unix(epoch, 0)
			reviewedAtGMT = reviewedAt.UTC()
		}

		rating := 0
		if f, ok := floatAt(r, "rating"); ok {
			rating = int(f)
		}

		out = append(out, domain.Review{
			ReviewID:      reviewIdentity(strAt(r, "author_url"), epochStr),
			Author:        strings.TrimSpace(strAt(r, "author_name")),
			Rating:        rating,
			Text:          text,
			PhotoURL:      strings.TrimSpace(strAt(r, "profile_photo_url")),
			ReviewedAt:    reviewedAt,
			ReviewedAtGMT: reviewedAtGMT,
		})
	}

	stats := aggregateStats(result)

	if len(out) == 0 {
		return nil, stats, domain.ErrNoReviewsWithComment
	}
	return out, stats, nil
}

// aggregateStats pulls the provider-level rating pair out of the result block.
// Rating keeps one decimal, matching what the front end displays.
func aggregateStats(result map[string]any) *domain.AggregateStats {
	if result == nil {
		return nil
	}
	var s domain.AggregateStats
	has := false
	if f, ok := floatAt(result, "rating"); ok {
		s.Rating = math.Round(f*10) / 10
		has = true
	}
	if n, ok := int64At(result, "user_ratings_total"); ok {
		s.RatingCount = int(n)
		has = true
	}
	if !has {
		return nil
	}
	return &s
}
