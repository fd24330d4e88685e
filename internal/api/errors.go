package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/jmagar/axon/internal/batchexecute"
)

// Common errors returned by the API
var (
	ErrNotFound           = errors.New("not found")
	ErrUnauthorized       = batchexecute.ErrUnauthorized
	ErrMissingCredentials = errors.New("missing credentials")
	ErrRPC                = errors.New("remote call failed")
	ErrSourceRejected     = errors.New("source rejected")
	ErrRateLimited        = errors.New("rate limited")
	ErrWaitTimeout        = errors.New("timed out waiting for sources")
)

// NotFoundError wraps ErrNotFound with context
type NotFoundError struct {
	ResourceType string
	ID           string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.ResourceType, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// RPCError is a call the service answered with an error that is neither
// "not found" nor an authentication failure.
type RPCError struct {
	Op  string
	Err error
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RPCError) Unwrap() error { return e.Err }

func (e *RPCError) Is(target error) bool { return target == ErrRPC }

// SourceAddError is a URL the service refused to take as a source.
type SourceAddError struct {
	URL    string
	Reason string
	Err    error
}

func (e *SourceAddError) Error() string {
	return "failed to add source: " + e.Reason
}

func (e *SourceAddError) Unwrap() error { return e.Err }

func (e *SourceAddError) Is(target error) bool { return target == ErrSourceRejected }

// RateLimitError is a submission turned away because of request quotas.
type RateLimitError struct {
	Reason string
	Err    error
}

func (e *RateLimitError) Error() string {
	return "rate limited: " + e.Reason
}

func (e *RateLimitError) Unwrap() error { return e.Err }

func (e *RateLimitError) Is(target error) bool { return target == ErrRateLimited }

// SourceProcessingError is a source the service failed to process.
type SourceProcessingError struct {
	SourceID string
	Status   SourceStatus
}

func (e *SourceProcessingError) Error() string {
	return fmt.Sprintf("source %s failed processing (status %s)", e.SourceID, e.Status)
}

// SourceTimeoutError is returned when sources are still pending at the deadline.
type SourceTimeoutError struct {
	Pending []string
	Timeout time.Duration
}

func (e *SourceTimeoutError) Error() string {
	return fmt.Sprintf("%d source(s) still processing after %s: %s",
		len(e.Pending), e.Timeout, strings.Join(e.Pending, ", "))
}

func (e *SourceTimeoutError) Unwrap() error { return ErrWaitTimeout }

// classifyLookup maps a failed read of resource id onto the package error
// taxonomy. Authentication, transport and context errors pass through.
func classifyLookup(op, resource, id string, err error) error {
	if errors.Is(err, ErrUnauthorized) {
		return errors.WithHint(errors.Wrap(err, op), "refresh NLM_AUTH_TOKEN and NLM_COOKIES (run 'nlm auth')")
	}
	var apiErr *batchexecute.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Type() == batchexecute.ErrorTypeNotFound {
			return &NotFoundError{ResourceType: resource, ID: id}
		}
		return &RPCError{Op: op, Err: err}
	}
	var beErr *batchexecute.BatchExecuteError
	if errors.As(err, &beErr) {
		if beErr.ErrorType() == batchexecute.ErrorTypeNotFound {
			return &NotFoundError{ResourceType: resource, ID: id}
		}
		return &RPCError{Op: op, Err: err}
	}
	return errors.Wrap(err, op)
}

// classifySubmission maps a failed AddSources call onto SourceAddError and
// RateLimitError. Anything else is returned unchanged.
func classifySubmission(url string, err error) error {
	if errors.Is(err, ErrUnauthorized) {
		return err
	}
	var apiErr *batchexecute.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Type() {
		case batchexecute.ErrorTypeRateLimit, batchexecute.ErrorTypeResourceExhausted:
			return &RateLimitError{Reason: apiErr.Message, Err: err}
		default:
			return &SourceAddError{URL: url, Reason: apiErr.Message, Err: err}
		}
	}
	var beErr *batchexecute.BatchExecuteError
	if errors.As(err, &beErr) {
		reason := http.StatusText(beErr.StatusCode)
		switch beErr.ErrorType() {
		case batchexecute.ErrorTypeRateLimit, batchexecute.ErrorTypeResourceExhausted:
			return &RateLimitError{Reason: reason, Err: err}
		case batchexecute.ErrorTypeInvalidInput, batchexecute.ErrorTypeNotFound,
			batchexecute.ErrorTypePermissionDenied, batchexecute.ErrorTypeAuthorization:
			return &SourceAddError{URL: url, Reason: reason, Err: err}
		}
	}
	return err
}
