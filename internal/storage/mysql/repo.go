package mysql

import (
	"context"
	"database/sql"
	"time"

	"reviews_importer/internal/domain"
)

const mysqlTime = "2006-01-02 15:04:05"

// fmtLocal / fmtGMT render the two stored representations of the review
// instant. DATETIME columns have no zone, so the wall-clock strings are
// written explicitly rather than letting the driver re-interpret them.
func fmtLocal(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.Format(mysqlTime)
}

func fmtGMT(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(mysqlTime)
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) FindIDByReviewID(ctx context.Context, reviewID string) (int64, bool, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, findReviewSQL, reviewID).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

func (r *Repo) CreateReview(ctx context.Context, rv domain.Review, published bool) (int64, error) {
	res, err := r.db.ExecContext(ctx, insertReviewSQL,
		rv.ReviewID,
		rv.Author,
		rv.Rating,
		domain.SourceGoogle,
		rv.PhotoURL,
		published,
		fmtLocal(rv.ReviewedAt),
		fmtGMT(rv.ReviewedAtGMT),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *Repo) UpdateReview(ctx context.Context, id int64, rv domain.Review) error {
	_, err := r.db.ExecContext(ctx, updateReviewSQL,
		rv.Author,
		rv.Rating,
		domain.SourceGoogle,
		rv.PhotoURL,
		fmtLocal(rv.ReviewedAt),
		fmtGMT(rv.ReviewedAtGMT),
		id,
	)
	return err
}

func (r *Repo) UpsertText(ctx context.Context, id int64, lang, body string) error {
	_, err := r.db.ExecContext(ctx, upsertTextSQL, id, lang, body)
	return err
}

func (r *Repo) ListReviews(ctx context.Context, q domain.ReviewsQuery) (domain.ReviewsPage, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, listReviewsSQL, q.Lang, limit)
	if err != nil {
		return domain.ReviewsPage{}, err
	}
	defer rows.Close()

	var out []domain.StoredReview
	for rows.Next() {
		var (
			sr         domain.StoredReview
			author     sql.NullString
			photo      sql.NullString
			reviewedAt sql.NullTime
			lang, body sql.NullString
		)
		if err := rows.Scan(
			&sr.ID,
			&sr.ReviewID,
			&author,
			&sr.Rating,
			&sr.Source,
			&photo,
			&sr.Published,
			&reviewedAt,
			&lang,
			&body,
		); err != nil {
			return domain.ReviewsPage{}, err
		}
		if author.Valid {
			sr.Author = author.String
		}
		if photo.Valid {
			sr.PhotoURL = photo.String
		}
		if reviewedAt.Valid {
			sr.ReviewedAt = reviewedAt.Time
		}
		if lang.Valid {
			sr.Texts = map[string]string{lang.String: body.String}
		}
		out = append(out, sr)
	}
	if err := rows.Err(); err != nil {
		return domain.ReviewsPage{}, err
	}
	return domain.ReviewsPage{Items: out}, nil
}

// SettingsRepo is the generic key/value store shared with the (external)
// settings UI.
type SettingsRepo struct{ db *sql.DB }

func NewSettings(db *sql.DB) *SettingsRepo { return &SettingsRepo{db: db} }

func (r *SettingsRepo) Get(ctx context.Context, name string) (string, error) {
	var v string
	err := r.db.QueryRowContext(ctx, getSettingSQL, name).Scan(&v)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return v, nil
}

func (r *SettingsRepo) Set(ctx context.Context, name, value string) error {
	_, err := r.db.ExecContext(ctx, setSettingSQL, name, value)
	return err
}

func (r *SettingsRepo) Delete(ctx context.Context, name string) error {
	_, err := r.db.ExecContext(ctx, deleteSettingSQL, name)
	return err
}
