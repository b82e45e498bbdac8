package mysql

const findReviewSQL = `
SELECT id FROM reviews WHERE review_id = ? LIMIT 1
`

// Creation also decides `published`; updates never touch that column.
const insertReviewSQL = `
INSERT INTO reviews
  (review_id, author, rating, source, photo_url, published, reviewed_at, reviewed_at_gmt)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?)
`

const updateReviewSQL = `
UPDATE reviews
SET author          = ?,
    rating          = ?,
    source          = ?,
    photo_url       = ?,
    reviewed_at     = ?,
    reviewed_at_gmt = ?,
    updated_at      = CURRENT_TIMESTAMP
WHERE id = ?
`

// One row per (review, lang); re-importing a language overwrites only that
// language's body.
const upsertTextSQL = `
INSERT INTO review_texts (review_pk, lang, body)
VALUES (?, ?, ?)
ON DUPLICATE KEY UPDATE body = VALUES(body)
`

const listReviewsSQL = `
SELECT
  r.id,
  r.review_id,
  r.author,
  r.rating,
  r.source,
  r.photo_url,
  r.published,
  r.reviewed_at,
  t.lang,
  t.body
FROM reviews r
LEFT JOIN review_texts t
  ON t.review_pk = r.id AND t.lang = ?
WHERE r.published = 1
ORDER BY r.reviewed_at DESC, r.id DESC
LIMIT ?
`

const getSettingSQL = `
SELECT value FROM settings WHERE name = ?
`

const setSettingSQL = `
INSERT INTO settings (name, value)
VALUES (?, ?)
ON DUPLICATE KEY UPDATE value = VALUES(value), updated_at = CURRENT_TIMESTAMP
`

const deleteSettingSQL = `
DELETE FROM settings WHERE name = ?
`
