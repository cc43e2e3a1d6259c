package usecase

import "github.com/cockroachdb/errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDependencyUnavailable = errors.New("dependency unavailable")

	ErrFeedUnavailable   = errors.New("results feed unavailable")
	ErrFeedDataMalformed = errors.New("results feed data malformed")
	ErrStoreWriteFailed  = errors.New("store write failed")
	ErrConfigInvalid     = errors.New("config invalid")
)
