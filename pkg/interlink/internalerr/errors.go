package internalerr

import "errors"

// Sentinel errors for common cases
var (
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrInvalidPage   = errors.New("invalid page")
	ErrNotFound      = errors.New("not found")
	ErrEmptyCorpus   = errors.New("empty corpus")
)
