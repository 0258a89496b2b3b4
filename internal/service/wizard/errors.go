package wizard

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrSessionNotFound = errors.New("wizard session not found")
	ErrRateLimited     = errors.New("too many submissions")
)

// RateLimitedError carries how long the client should wait before retrying.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("%s, retry in %s", ErrRateLimited, e.RetryAfter)
}

func (e *RateLimitedError) Is(target error) bool {
	return target == ErrRateLimited
}
