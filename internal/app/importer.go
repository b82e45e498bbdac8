package app

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"reviews_importer/internal/adapters/observability"
	"reviews_importer/internal/domain"
)

// Trigger paths recorded with run outcomes.
const (
	TriggerManual = "manual"
	TriggerCron   = "cron"
	TriggerCLI    = "cli"
)

const (
	runLockKey = "import:run_lock"
	// Stale-lock timeout for the cross-process lease. A run that dies without
	// releasing unblocks the next trigger after this long.
	runLockTTL = 15 * time.Minute
)

// ImportService runs one full reconciliation pass: one provider fetch per
// configured language, normalized reviews reconciled into the store, aggregate
// stats and run state recorded. A run is all-or-nothing: the first failing
// language aborts the remaining ones.
type ImportService struct {
	places   domain.PlacesClient
	repo     domain.ReviewRepository
	settings *SettingsService
	cache    domain.Cache // optional; nil disables caching and the cross-process lease
	sem      *semaphore.Weighted
}

func NewImportService(places domain.PlacesClient, repo domain.ReviewRepository, settings *SettingsService, cache domain.Cache) *ImportService {
	return &ImportService{
		places:   places,
		repo:     repo,
		settings: settings,
		cache:    cache,
		sem:      semaphore.NewWeighted(1),
	}
}

// Run executes one import pass. Overlapping triggers (manual on top of cron,
// or a second process) get ErrRunInProgress instead of racing. Incomplete
// configuration is a silent no-op, not a failure.
func (s *ImportService) Run(ctx context.Context, trigger string) error {
	if !s.sem.TryAcquire(1) {
		observability.ObserveImportRun(trigger, "skipped")
		return domain.ErrRunInProgress
	}
	defer s.sem.Release(1)

	if s.cache != nil {
		ok, err := s.cache.SetNX(ctx, runLockKey, trigger, runLockTTL)
		if err != nil {
			// cache being down must not stop imports; the in-process
			// semaphore still serializes within this process
			log.Warn().Err(err).Msg("run lease unavailable; continuing without it")
		} else if !ok {
			observability.ObserveImportRun(trigger, "skipped")
			return domain.ErrRunInProgress
		} else {
			defer func() { _ = s.cache.Del(ctx, runLockKey) }()
		}
	}

	cfg, err := s.settings.ImportConfig(ctx)
	if err != nil {
		return s.fail(ctx, trigger, "settings", err)
	}
	if cfg.APIKey == "" || cfg.PlaceID == "" || len(cfg.Languages) == 0 {
		log.Info().Str("trigger", trigger).Msg("import skipped: configuration incomplete")
		observability.ObserveImportRun(trigger, "noop")
		return nil
	}

	for _, lng := range cfg.Languages {
		if err := s.importLanguage(ctx, cfg, lng); err != nil {
			return s.fail(ctx, trigger, "language:"+lng, err)
		}
	}

	if err := s.settings.RecordSuccess(ctx, time.Now()); err != nil {
		return s.fail(ctx, trigger, "record_success", err)
	}
	s.invalidate(ctx, cfg.Languages)
	observability.ObserveImportRun(trigger, "ok")
	log.Info().Str("trigger", trigger).Strs("languages", cfg.Languages).Msg("import run ok")
	return nil
}

func (s *ImportService) importLanguage(ctx context.Context, cfg ImportConfig, lng string) error {
	payload, err := s.places.PlaceDetails(ctx, cfg.PlaceID, cfg.APIKey, cfg.SortOrder, lng)
	if err != nil {
		return err
	}

	revs, stats, nerr := normalizeReviews(payload, cfg.SkipEmpty)

	// Aggregate stats are applied whenever the response carries them, even
	// when every individual review was filtered out.
	if stats != nil {
		if err := s.settings.SetAggregateStats(ctx, *stats); err != nil {
			return err
		}
	}
	if nerr != nil {
		return nerr
	}

	for _, rv := range revs {
		if _, err := s.reconcile(ctx, rv, lng, cfg.MinRating); err != nil {
			return err
		}
		observability.ReviewsUpserted.Inc()
	}
	return nil
}

// reconcile finds or creates the entity for rv and merges the one language
// just fetched. The publish decision happens only on the create path; existing
// entities keep their state no matter how the threshold has moved since.
func (s *ImportService) reconcile(ctx context.Context, rv domain.Review, lng string, minRating int) (int64, error) {
	id, found, err := s.repo.FindIDByReviewID(ctx, rv.ReviewID)
	if err != nil {
		return 0, err
	}
	if !found {
		id, err = s.repo.CreateReview(ctx, rv, rv.Rating >= minRating)
		if err != nil {
			return 0, err
		}
	} else if err := s.repo.UpdateReview(ctx, id, rv); err != nil {
		return 0, err
	}
	return id, s.repo.UpsertText(ctx, id, lng, rv.Text)
}

func (s *ImportService) fail(ctx context.Context, trigger, step string, err error) error {
	log.Error().Err(err).Str("trigger", trigger).Str("step", step).Msg("import run failed")
	re := domain.RunError{Message: err.Error(), Time: time.Now(), Context: trigger + ":" + step}
	if serr := s.settings.RecordFailure(ctx, re); serr != nil {
		log.Warn().Err(serr).Msg("recording import failure failed")
	}
	if s.cache != nil {
		_ = s.cache.Del(ctx, statusCacheKey)
	}
	observability.ObserveImportRun(trigger, "error")
	return err
}

func (s *ImportService) invalidate(ctx context.Context, langs []string) {
	if s.cache == nil {
		return
	}
	for _, lng := range langs {
		// default API page size plus the larger limits clients commonly use
		for _, lim := range []int{50, 100, 200} {
			_ = s.cache.Del(ctx, reviewsCacheKey(lng, lim))
		}
	}
	_ = s.cache.Del(ctx, statsCacheKey)
	_ = s.cache.Del(ctx, statusCacheKey)
}
