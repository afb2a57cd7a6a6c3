package review

import "errors"

var (
	ErrReviewNotFound    = errors.New("review not found")
	ErrAlreadyReviewed   = errors.New("booking already reviewed")
	ErrNotEligible       = errors.New("only guests with a completed booking can review")
	ErrCannotDeleteOther = errors.New("cannot delete another user's review")
)
