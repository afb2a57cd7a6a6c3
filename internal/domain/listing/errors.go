package listing

import "errors"

var (
	ErrListingNotFound = errors.New("listing not found")
	ErrNotHost         = errors.New("only hosts can manage listings")
	ErrInvalidFilter   = errors.New("invalid search filter")
	ErrNoImages        = errors.New("listing needs at least one image")
)
