package catalog

import "errors"

var (
	ErrEntryNotFound = errors.New("catalog entry not found")
	ErrDuplicateName = errors.New("catalog entry with this name already exists")
	ErrAdminOnly     = errors.New("only admins can change catalogs")
)
