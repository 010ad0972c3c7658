package registry

import "errors"

var (
	ErrNotFound      = errors.New("code not found")
	ErrInvalidCode   = errors.New("invalid code record")
	ErrDuplicateCode = errors.New("duplicate code in snapshot")
	ErrDuplicateID   = errors.New("duplicate id in snapshot")
	ErrUnknownSystem = errors.New("unsupported code system")
	ErrQueryRequired = errors.New("query parameter is required")
)
