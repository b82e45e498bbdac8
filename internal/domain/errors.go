package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNoReviews: the provider response had no reviews array at all.
	ErrNoReviews = errors.New("provider returned no reviews")

	// ErrNoReviewsWithComment: reviews existed but none survived the
	// skip-empty filter.
	ErrNoReviewsWithComment = errors.New("no reviews with comment")

	// ErrRunInProgress: another import run holds the lock.
	ErrRunInProgress = errors.New("import run already in progress")

	ErrNotFound = errors.New("not found")
)

// ProviderError carries an explicit error payload returned by the review
// provider (error_message + status in the response body).
type ProviderError struct {
	Status  string
	Message string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("google api error: %s, status: %s", e.Message, e.Status)
}
