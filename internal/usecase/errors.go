package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrInvalidConfig         = errors.New("invalid sync configuration")
	ErrRateLimited           = errors.New("provider rate limited")
	ErrUpstreamFailed        = errors.New("provider request failed")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)
