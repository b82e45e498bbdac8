package app_test

import (
	"context"
	"testing"

	"reviews_importer/internal/app"
	"reviews_importer/internal/domain"
)

func TestImportConfig_DefaultsAndSanitation(t *testing.T) {
	sr := newFakeSettingsRepo(map[string]string{
		"google_places_api_key": "  key  ",
		"google_place_id":       "place",
		"min_review_rating":     "9",
		"imported_languages":    "hu_HU,en_US\nhu",
		"import_order":          "RANDOM",
		"import_frequency":      "weekly",
	})
	s := app.NewSettingsService(sr, "de_DE")

	cfg, err := s.ImportConfig(context.Background())
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	if cfg.APIKey != "key" || cfg.PlaceID != "place" {
		t.Fatalf("credentials not trimmed: %+v", cfg)
	}
	if cfg.MinRating != 5 {
		t.Fatalf("min rating not clamped: %d", cfg.MinRating)
	}
	want := []string{"hu", "en", "de"}
	if len(cfg.Languages) != len(want) {
		t.Fatalf("languages = %v, want %v", cfg.Languages, want)
	}
	for i := range want {
		if cfg.Languages[i] != want[i] {
			t.Fatalf("languages = %v, want %v", cfg.Languages, want)
		}
	}
	if cfg.SortOrder != app.OrderNewest {
		t.Fatalf("order = %q, want newest fallback", cfg.SortOrder)
	}
	if cfg.Frequency != app.DefaultInterval {
		t.Fatalf("frequency = %q, want default", cfg.Frequency)
	}
	if !cfg.SkipEmpty {
		t.Fatalf("skip-empty should default on")
	}
}

func TestImportConfig_MinRatingDefault(t *testing.T) {
	s := app.NewSettingsService(newFakeSettingsRepo(nil), "en_US")
	cfg, err := s.ImportConfig(context.Background())
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	if cfg.MinRating != 4 {
		t.Fatalf("min rating default = %d, want 4", cfg.MinRating)
	}
	if len(cfg.Languages) != 1 || cfg.Languages[0] != "en" {
		t.Fatalf("languages default = %v", cfg.Languages)
	}
}

func TestAggregateStats_RoundTripWithOneDecimal(t *testing.T) {
	s := app.NewSettingsService(newFakeSettingsRepo(nil), "en_US")
	ctx := context.Background()

	if err := s.SetAggregateStats(ctx, domain.AggregateStats{Rating: 4.649999, RatingCount: 88}); err != nil {
		t.Fatalf("set: %v", err)
	}
	st, err := s.AggregateStats(ctx)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if st.Rating != 4.6 || st.RatingCount != 88 {
		t.Fatalf("unexpected stats: %+v", st)
	}
}

func TestSanitizeOrder(t *testing.T) {
	cases := map[string]string{
		"newest":          app.OrderNewest,
		"most_relevant":   app.OrderMostRelevant,
		" MOST_RELEVANT ": app.OrderMostRelevant,
		"shuffle":         app.OrderNewest,
		"":                app.OrderNewest,
	}
	for in, want := range cases {
		if got := app.SanitizeOrder(in); got != want {
			t.Errorf("SanitizeOrder(%q) = %q, want %q", in, got, want)
		}
	}
}
