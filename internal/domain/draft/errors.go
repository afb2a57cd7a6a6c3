package draft

import "errors"

var (
	ErrUnknownKind   = errors.New("unknown draft kind")
	ErrUnknownStep   = errors.New("unknown wizard step")
	ErrUnknownField  = errors.New("field does not belong to this step")
	ErrFirstStep     = errors.New("already at the first step")
	ErrLastStep      = errors.New("already at the last step")
	ErrNotAnImage    = errors.New("photo is not an image")
	ErrPhotoTooLarge = errors.New("photo is too large")
	ErrNoPhoto       = errors.New("no photo at that position")
	ErrNoOwner       = errors.New("draft needs an owner")
	ErrNoGeocoder    = errors.New("no geocoder configured")
	ErrNoUploader    = errors.New("no media uploader configured")
)
