package swipes

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/RCDNC/swipedeck/internal/domain/enums"
)

var (
	ErrValidation      = errors.New("validation error")
	ErrNotFound        = errors.New("candidate is not at the head of the queue")
	ErrInvalidState    = errors.New("no decision to rewind")
	ErrBusy            = errors.New("another session operation is in flight")
	ErrDependenciesNil = errors.New("swipe dependencies are not configured")
)

type QuotaExceededError struct {
	Decision enums.SwipeDecision
	Limit    int
}

func (e QuotaExceededError) Error() string {
	return fmt.Sprintf("%s quota exceeded (limit %d)", strings.ToLower(string(e.Decision)), e.Limit)
}

func IsQuotaExceeded(err error) (*QuotaExceededError, bool) {
	var qe QuotaExceededError
	if errors.As(err, &qe) {
		return &qe, true
	}
	return nil, false
}

// RemoteServiceError wraps any failure of the candidate source, the action
// service or the metrics store. Message is safe to show to the user.
type RemoteServiceError struct {
	Op        string
	Message   string
	Retryable bool
	Err       error
}

func (e *RemoteServiceError) Error() string {
	if e == nil {
		return ""
	}
	if e.Message == "" {
		return e.Op
	}
	return e.Op + ": " + e.Message
}

func (e *RemoteServiceError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func IsRemoteService(err error) (*RemoteServiceError, bool) {
	var re *RemoteServiceError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}

type TooFastError struct {
	RetryAfterSec int64
}

func (e TooFastError) Error() string {
	return "too fast"
}

func (e TooFastError) RetryAfter() int64 {
	if e.RetryAfterSec <= 0 {
		return 1
	}
	return e.RetryAfterSec
}

func IsTooFast(err error) (*TooFastError, bool) {
	var tf TooFastError
	if errors.As(err, &tf) {
		return &tf, true
	}
	return nil, false
}

type retryableError interface {
	IsRetryable() bool
}

func remoteError(op string, err error) *RemoteServiceError {
	if err == nil {
		return nil
	}
	var existing *RemoteServiceError
	if errors.As(err, &existing) {
		return existing
	}

	retryable := errors.Is(err, context.DeadlineExceeded)
	var r retryableError
	if errors.As(err, &r) {
		retryable = r.IsRetryable()
	}

	return &RemoteServiceError{
		Op:        op,
		Message:   err.Error(),
		Retryable: retryable,
		Err:       err,
	}
}
