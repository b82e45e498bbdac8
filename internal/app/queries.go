package app

import (
	"context"
	"fmt"
	"time"

	"reviews_importer/internal/domain"
)

const (
	statsCacheKey  = "stats:google"
	statusCacheKey = "import:status"
)

func reviewsCacheKey(lang string, limit int) string {
	return fmt.Sprintf("reviews:%s:%d", lang, limit)
}

// QueryService serves the read side (review lists, aggregate stats, run
// status) cache-aside.
type QueryService struct {
	repo     domain.ReviewRepository
	settings *SettingsService
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewQueryService(repo domain.ReviewRepository, settings *SettingsService, cache domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{repo: repo, settings: settings, cache: cache, cacheTTL: ttl}
}

func (s *QueryService) ListReviews(ctx context.Context, q domain.ReviewsQuery) (domain.ReviewsPage, error) {
	key := reviewsCacheKey(q.Lang, q.Limit)
	var out domain.ReviewsPage
	if ok, _ := s.cache.Get(ctx, key, &out); ok {
		return out, nil
	}

	page, err := s.repo.ListReviews(ctx, q)
	if err != nil {
		return domain.ReviewsPage{}, err
	}

	// copy before caching so callers mutating the result can't poison the cache
	cp := deepCopyReviewsPage(page)
	_ = s.cache.Set(ctx, key, cp, int(s.cacheTTL.Seconds()))
	return cp, nil
}

func (s *QueryService) AggregateStats(ctx context.Context) (domain.AggregateStats, error) {
	var st domain.AggregateStats
	if ok, _ := s.cache.Get(ctx, statsCacheKey, &st); ok {
		return st, nil
	}
	st, err := s.settings.AggregateStats(ctx)
	if err != nil {
		return domain.AggregateStats{}, err
	}
	_ = s.cache.Set(ctx, statsCacheKey, st, int(s.cacheTTL.Seconds()))
	return st, nil
}

func (s *QueryService) RunStatus(ctx context.Context) (domain.RunStatus, error) {
	var rs domain.RunStatus
	if ok, _ := s.cache.Get(ctx, statusCacheKey, &rs); ok {
		return rs, nil
	}
	rs, err := s.settings.RunStatus(ctx)
	if err != nil {
		return domain.RunStatus{}, err
	}
	_ = s.cache.Set(ctx, statusCacheKey, rs, int(s.cacheTTL.Seconds()))
	return rs, nil
}

func deepCopyReviewsPage(in domain.ReviewsPage) domain.ReviewsPage {
	var out domain.ReviewsPage
	if n := len(in.Items); n > 0 {
		out.Items = make([]domain.StoredReview, n)
		copy(out.Items, in.Items)
		for i := range out.Items {
			if src := in.Items[i].Texts; src != nil {
				dst := make(map[string]string, len(src))
				for k, v := range src {
					dst[k] = v
				}
				out.Items[i].Texts = dst
			}
		}
	}
	return out
}
