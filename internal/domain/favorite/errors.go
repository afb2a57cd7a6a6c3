package favorite

import "errors"

var (
	ErrFavoriteNotFound = errors.New("listing is not in favorites")
	ErrInvalidKind      = errors.New("favorites hold homes or experiences")
)
