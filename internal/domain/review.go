package domain

import "time"

// Review is one provider review normalized for reconciliation. Text carries the
// single language that was fetched; the store accumulates languages per ReviewID.
type Review struct {
	ReviewID      string // md5 over (trimmed author_url, trimmed epoch seconds)
	Author        string
	Rating        int // 1..5
	Text          string
	PhotoURL      string
	ReviewedAt    time.Time // provider epoch rendered in local time
	ReviewedAtGMT time.Time // same instant in UTC
}

// StoredReview is the persisted shape with per-language texts accumulated
// across import runs.
type StoredReview struct {
	ID         int64             `json:"id"`
	ReviewID   string            `json:"review_id"`
	Author     string            `json:"author"`
	Rating     int               `json:"rating"`
	Source     string            `json:"source"`
	PhotoURL   string            `json:"photo_url,omitempty"`
	Texts      map[string]string `json:"texts,omitempty"` // lang -> body
	Published  bool              `json:"published"`
	ReviewedAt time.Time         `json:"reviewed_at"`
}

// AggregateStats is the provider-level rating pair, overwritten wholesale on
// every successful response that includes it.
type AggregateStats struct {
	Rating      float64 `json:"rating"`
	RatingCount int     `json:"rating_count"`
}

const SourceGoogle = "Google"

type ReviewsQuery struct {
	Lang  string
	Limit int
}

type ReviewsPage struct {
	Items []StoredReview `json:"items"`
}

// RunStatus is what the status surface exposes: when the last successful run
// finished and, if the most recent attempt failed, what went wrong.
type RunStatus struct {
	LastRun   *time.Time `json:"last_run,omitempty"`
	LastError *RunError  `json:"last_error,omitempty"`
}

// RunError is recorded on a failed run and cleared on the next success.
type RunError struct {
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
	Context string    `json:"context"` // trigger path: "manual", "cron", "cli"
}
