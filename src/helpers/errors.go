package helpers

import (
	"errors"
	"fmt"
	"time"
)

// -----------------------------------------------------------------------------
// Custom Error Types
// -----------------------------------------------------------------------------

type TraderError struct {
	Message string
	Cause   error
}

func (e *TraderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *TraderError) Unwrap() error {
	return e.Cause
}

// Distinct error types for the mutation and feed paths.
type ValidationError struct{ TraderError }
type NotFoundError struct{ TraderError }
type InsufficientQuantityError struct{ TraderError }
type UpstreamFeedError struct{ TraderError }
type StoreError struct{ TraderError }

// -----------------------------------------------------------------------------
// Constructors
// -----------------------------------------------------------------------------

func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{TraderError{Message: fmt.Sprintf(format, args...)}}
}

func NewNotFoundError(format string, args ...interface{}) *NotFoundError {
	return &NotFoundError{TraderError{Message: fmt.Sprintf(format, args...)}}
}

func NewInsufficientQuantityError(format string, args ...interface{}) *InsufficientQuantityError {
	return &InsufficientQuantityError{TraderError{Message: fmt.Sprintf(format, args...)}}
}

func NewUpstreamFeedError(message string, cause error) *UpstreamFeedError {
	return &UpstreamFeedError{TraderError{Message: message, Cause: cause}}
}

func NewStoreError(message string, cause error) *StoreError {
	return &StoreError{TraderError{Message: message, Cause: cause}}
}

// -----------------------------------------------------------------------------
// Type checks
// -----------------------------------------------------------------------------

func IsValidation(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}

func IsNotFound(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}

func IsInsufficientQuantity(err error) bool {
	var e *InsufficientQuantityError
	return errors.As(err, &e)
}

// -----------------------------------------------------------------------------
// Backoff
// -----------------------------------------------------------------------------

// BackoffDelay returns min(base * 2^attempt, max) for attempt = 0, 1, 2, ...
func BackoffDelay(attempt int, base, max time.Duration) time.Duration {
	if base <= 0 {
		base = time.Second
	}
	if max <= 0 {
		max = 30 * time.Second
	}
	// Shifting past 30 bits would overflow before reaching any sane cap.
	if attempt > 30 {
		return max
	}
	d := base * time.Duration(1<<uint(attempt))
	if d > max {
		return max
	}
	return d
}

// -----------------------------------------------------------------------------
// Retry Logic
// -----------------------------------------------------------------------------

// RetryWithBackoff attempts to execute the operation up to maxRetries times with exponential backoff.
func RetryWithBackoff(operation string, maxRetries int, baseDelay time.Duration, fn func() (interface{}, error)) (interface{}, error) {
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		res, err := fn()
		if err == nil {
			return res, nil
		}

		lastErr = err
		if attempt == maxRetries-1 {
			break
		}

		delay := BackoffDelay(attempt, baseDelay, 30*time.Second)
		fmt.Printf("Warning: Attempt %d/%d failed for %s: %v. Retrying in %v\n", attempt+1, maxRetries, operation, err, delay)
		time.Sleep(delay)
	}

	return nil, lastErr
}
