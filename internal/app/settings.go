package app

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"reviews_importer/internal/domain"
	"reviews_importer/internal/lang"
)

// Setting names in the key/value store. The admin/settings UI that writes the
// import_* inputs lives outside this service; we read them and own only the
// stats and run-state keys.
const (
	keyAPIKey       = "google_places_api_key"
	keyPlaceID      = "google_place_id"
	keyMinRating    = "min_review_rating"
	keyLanguages    = "imported_languages"
	keySkipEmpty    = "skip_empty_reviews"
	keyImportOrder  = "import_order"
	keyFrequency    = "import_frequency"
	keyGoogleRating = "google_rating"
	keyGoogleTotal  = "google_ratings_total"
	keyLastRun      = "import_last_run"
	keyLastError    = "import_last_error"
)

const (
	OrderNewest       = "newest"
	OrderMostRelevant = "most_relevant"
)

// ImportConfig is one consistent snapshot of the import settings, read once
// per run.
type ImportConfig struct {
	APIKey    string
	PlaceID   string
	MinRating int // 1..5
	Languages []string
	SkipEmpty bool
	SortOrder string
	Frequency string
}

// SettingsService reads the operator-owned import settings with defaults and
// sanitization, and writes the importer-owned values (aggregate stats,
// last-run, last-error).
type SettingsService struct {
	repo       domain.SettingsRepository
	siteLocale string
}

func NewSettingsService(repo domain.SettingsRepository, siteLocale string) *SettingsService {
	return &SettingsService{repo: repo, siteLocale: siteLocale}
}

func (s *SettingsService) ImportConfig(ctx context.Context) (ImportConfig, error) {
	get := func(name string) (string, error) { return s.repo.Get(ctx, name) }

	apiKey, err := get(keyAPIKey)
	if err != nil {
		return ImportConfig{}, err
	}
	placeID, err := get(keyPlaceID)
	if err != nil {
		return ImportConfig{}, err
	}
	rawMin, err := get(keyMinRating)
	if err != nil {
		return ImportConfig{}, err
	}
	rawLangs, err := get(keyLanguages)
	if err != nil {
		return ImportConfig{}, err
	}
	rawSkip, err := get(keySkipEmpty)
	if err != nil {
		return ImportConfig{}, err
	}
	rawOrder, err := get(keyImportOrder)
	if err != nil {
		return ImportConfig{}, err
	}
	rawFreq, err := get(keyFrequency)
	if err != nil {
		return ImportConfig{}, err
	}

	return ImportConfig{
		APIKey:    strings.TrimSpace(apiKey),
		PlaceID:   strings.TrimSpace(placeID),
		MinRating: sanitizeMinRating(rawMin),
		Languages: lang.SanitizeList(rawLangs, s.siteLocale),
		SkipEmpty: sanitizeBool(rawSkip, true),
		SortOrder: SanitizeOrder(rawOrder),
		Frequency: SanitizeInterval(rawFreq),
	}, nil
}

// Frequency returns the configured schedule interval; errors fall back to the
// default so a flaky settings read never stops the scheduler.
func (s *SettingsService) Frequency(ctx context.Context) string {
	v, err := s.repo.Get(ctx, keyFrequency)
	if err != nil {
		log.Warn().Err(err).Msg("read import frequency failed; using default")
		return DefaultInterval
	}
	return SanitizeInterval(v)
}

func (s *SettingsService) SetAggregateStats(ctx context.Context, st domain.AggregateStats) error {
	if err := s.repo.Set(ctx, keyGoogleRating, strconv.FormatFloat(st.Rating, 'f', 1, 64)); err != nil {
		return err
	}
	return s.repo.Set(ctx, keyGoogleTotal, strconv.Itoa(st.RatingCount))
}

func (s *SettingsService) AggregateStats(ctx context.Context) (domain.AggregateStats, error) {
	var st domain.AggregateStats
	raw, err := s.repo.Get(ctx, keyGoogleRating)
	if err != nil {
		return st, err
	}
	if f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
		st.Rating = f
	}
	raw, err = s.repo.Get(ctx, keyGoogleTotal)
	if err != nil {
		return st, err
	}
	if n, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil {
		st.RatingCount = n
	}
	return st, nil
}

// RecordSuccess stamps the last-run time and clears any previous error.
func (s *SettingsService) RecordSuccess(ctx context.Context, t time.Time) error {
	if err := s.repo.Set(ctx, keyLastRun, t.UTC().Format(time.RFC3339)); err != nil {
		return err
	}
	return s.repo.Delete(ctx, keyLastError)
}

// RecordFailure stores the error payload; the last-run stamp is left alone.
func (s *SettingsService) RecordFailure(ctx context.Context, re domain.RunError) error {
	b, err := json.Marshal(re)
	if err != nil {
		return err
	}
	return s.repo.Set(ctx, keyLastError, string(b))
}

func (s *SettingsService) RunStatus(ctx context.Context) (domain.RunStatus, error) {
	var out domain.RunStatus
	raw, err := s.repo.Get(ctx, keyLastRun)
	if err != nil {
		return out, err
	}
	if raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			out.LastRun = &t
		}
	}
	raw, err = s.repo.Get(ctx, keyLastError)
	if err != nil {
		return out, err
	}
	if raw != "" {
		var re domain.RunError
		if err := json.Unmarshal([]byte(raw), &re); err == nil {
			out.LastError = &re
		}
	}
	return out, nil
}

/********** sanitizers **********/

func sanitizeMinRating(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 4
	}
	if n < 1 {
		n = 1
	}
	if n > 5 {
		n = 5
	}
	return n
}

func sanitizeBool(raw string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return def
	}
}

// SanitizeOrder whitelists the provider sort order; anything else means newest.
func SanitizeOrder(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case OrderMostRelevant:
		return OrderMostRelevant
	default:
		return OrderNewest
	}
}
