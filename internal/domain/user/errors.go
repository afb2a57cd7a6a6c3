package user

import "errors"

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrWrongPassword    = errors.New("current password is incorrect")
	ErrInvalidStatus    = errors.New("invalid status, must be 'active' or 'banned'")
	ErrAvatarNotAnImage = errors.New("avatar must be an image")
	ErrNotAuthenticated = errors.New("not signed in")
)
