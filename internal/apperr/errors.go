package apperr

import "errors"

var (
	ErrNotFound = errors.New("not found")
	ErrInvalid  = errors.New("invalid")
	ErrLoad     = errors.New("load failed")
	ErrPersist  = errors.New("persist failed")
)
