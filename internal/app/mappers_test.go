package app

import (
	"errors"
	"testing"
	"time"

	"reviews_importer/internal/domain"
)

func entryInLang(text string) map[string]any {
	return map[string]any{
		"author_name":       "  Jane Doe ",
		"author_url":        " https://maps.google.com/contrib/123 ",
		"rating":            5.0,
		"text":              text,
		"time":              float64(1719846000),
		"profile_photo_url": " https://img.example/jane.png ",
	}
}

func payloadWith(entries ...map[string]any) map[string]any {
	list := make([]any, 0, len(entries))
	for _, e := range entries {
		list = append(list, e)
	}
	return map[string]any{"result": map[string]any{"reviews": list}}
}

func TestNormalize_IdentityStableAcrossLanguages(t *testing.T) {
	en, _, err := normalizeReviews(payloadWith(entryInLang("lovely place")), true)
	if err != nil {
		t.Fatalf("en: %v", err)
	}
	hu, _, err := normalizeReviews(payloadWith(entryInLang("kellemes hely")), true)
	if err != nil {
		t.Fatalf("hu: %v", err)
	}
	if en[0].ReviewID == "" || en[0].ReviewID != hu[0].ReviewID {
		t.Fatalf("identity differs across languages: %q vs %q", en[0].ReviewID, hu[0].ReviewID)
	}

	// identity depends only on the trimmed author URL + epoch pair
	untrimmed := entryInLang("x")
	untrimmed["author_url"] = "https://maps.google.com/contrib/123"
	again, _, err := normalizeReviews(payloadWith(untrimmed), true)
	if err != nil {
		t.Fatalf("untrimmed: %v", err)
	}
	if again[0].ReviewID != en[0].ReviewID {
		t.Fatalf("trimming must not change identity")
	}
}

func TestNormalize_FieldsAndTimestamps(t *testing.T) {
	revs, _, err := normalizeReviews(payloadWith(entryInLang("  nice  ")), true)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	rv := revs[0]
	if rv.Author != "Jane Doe" || rv.Text != "nice" || rv.Rating != 5 {
		t.Fatalf("unexpected fields: %+v", rv)
	}
	if rv.PhotoURL != "https://img.example/jane.png" {
		t.Fatalf("photo url not trimmed: %q", rv.PhotoURL)
	}
	want := time.Unix(1719846000, 0)
	if !rv.ReviewedAt.Equal(want) || !rv.ReviewedAtGMT.Equal(want.UTC()) {
		t.Fatalf("timestamps wrong: %v / %v", rv.ReviewedAt, rv.ReviewedAtGMT)
	}
	if rv.ReviewedAtGMT.Location() != time.UTC {
		t.Fatalf("GMT timestamp must be in UTC")
	}
}

func TestNormalize_ProviderOrderPreserved(t *testing.T) {
	a := entryInLang("first")
	a["author_url"] = "https://g/a"
	b := entryInLang("second")
	b["author_url"] = "https://g/b"
	revs, _, err := normalizeReviews(payloadWith(a, b), true)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if revs[0].Text != "first" || revs[1].Text != "second" {
		t.Fatalf("order not preserved: %+v", revs)
	}
}

func TestNormalize_ErrorTaxonomy(t *testing.T) {
	// missing reviews array entirely
	_, _, err := normalizeReviews(map[string]any{"result": map[string]any{"rating": 4.0}}, true)
	if !errors.Is(err, domain.ErrNoReviews) {
		t.Fatalf("expected ErrNoReviews, got %v", err)
	}

	// reviews exist but none survive the filter; stats still captured
	blank := entryInLang("   ")
	payload := payloadWith(blank)
	payload["result"].(map[string]any)["rating"] = 4.44
	payload["result"].(map[string]any)["user_ratings_total"] = float64(7)
	revs, stats, err := normalizeReviews(payload, true)
	if !errors.Is(err, domain.ErrNoReviewsWithComment) {
		t.Fatalf("expected ErrNoReviewsWithComment, got %v", err)
	}
	if revs != nil {
		t.Fatalf("no reviews expected")
	}
	if stats == nil || stats.Rating != 4.4 || stats.RatingCount != 7 {
		t.Fatalf("stats should survive filtering: %+v", stats)
	}

	// same payload with the filter off succeeds
	revs, _, err = normalizeReviews(payload, false)
	if err != nil || len(revs) != 1 || revs[0].Text != "" {
		t.Fatalf("filter-off path wrong: revs=%+v err=%v", revs, err)
	}
}

func TestAggregateStats_Rounding(t *testing.T) {
	stats := aggregateStats(map[string]any{"rating": 4.651, "user_ratings_total": float64(321)})
	if stats == nil || stats.Rating != 4.7 || stats.RatingCount != 321 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if aggregateStats(map[string]any{"name": "x"}) != nil {
		t.Fatalf("no stats expected without rating fields")
	}
}
