package batchexecute

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ErrorType represents different categories of API errors
type ErrorType int

const (
	ErrorTypeUnknown ErrorType = iota
	ErrorTypeAuthentication
	ErrorTypeAuthorization
	ErrorTypeRateLimit
	ErrorTypeNotFound
	ErrorTypeInvalidInput
	ErrorTypeServerError
	ErrorTypePermissionDenied
	ErrorTypeResourceExhausted
	ErrorTypeUnavailable
)

var errorTypeNames = [...]string{
	ErrorTypeUnknown:           "Unknown",
	ErrorTypeAuthentication:    "Authentication",
	ErrorTypeAuthorization:     "Authorization",
	ErrorTypeRateLimit:         "RateLimit",
	ErrorTypeNotFound:          "NotFound",
	ErrorTypeInvalidInput:      "InvalidInput",
	ErrorTypeServerError:       "ServerError",
	ErrorTypePermissionDenied:  "PermissionDenied",
	ErrorTypeResourceExhausted: "ResourceExhausted",
	ErrorTypeUnavailable:       "Unavailable",
}

func (e ErrorType) String() string {
	if e < 0 || int(e) >= len(errorTypeNames) {
		return "Unknown"
	}
	return errorTypeNames[e]
}

// ErrorCode describes a numeric code the service is known to return.
type ErrorCode struct {
	Code      int
	Type      ErrorType
	Message   string
	Retryable bool
}

// APIError is a failure reported inside an otherwise successful HTTP exchange.
type APIError struct {
	ErrorCode *ErrorCode
	Message   string
}

func (e *APIError) Error() string {
	if e.ErrorCode != nil {
		return fmt.Sprintf("API error %d (%s): %s", e.ErrorCode.Code, e.ErrorCode.Type, e.ErrorCode.Message)
	}
	return fmt.Sprintf("API error: %s", e.Message)
}

// Type returns the error category, or ErrorTypeUnknown for free-form errors.
func (e *APIError) Type() ErrorType {
	if e.ErrorCode == nil {
		return ErrorTypeUnknown
	}
	return e.ErrorCode.Type
}

// IsRetryable returns true if the error can be retried
func (e *APIError) IsRetryable() bool {
	return e.ErrorCode != nil && e.ErrorCode.Retryable
}

func (e *APIError) Unwrap() error {
	if e.Type() == ErrorTypeAuthentication {
		return ErrUnauthorized
	}
	return nil
}

func code(c int, t ErrorType, msg string, retryable bool) ErrorCode {
	return ErrorCode{Code: c, Type: t, Message: msg, Retryable: retryable}
}

// errorCodes holds the gRPC status codes that appear in response envelopes,
// NotebookLM's own numeric codes, and the HTTP statuses we classify.
var errorCodes = map[int]ErrorCode{
	2:  code(2, ErrorTypeServerError, "Unknown", true),
	3:  code(3, ErrorTypeInvalidInput, "Invalid argument", false),
	4:  code(4, ErrorTypeUnavailable, "Deadline exceeded", true),
	5:  code(5, ErrorTypeNotFound, "Not found", false),
	6:  code(6, ErrorTypeInvalidInput, "Already exists", false),
	7:  code(7, ErrorTypePermissionDenied, "Permission denied", false),
	8:  code(8, ErrorTypeResourceExhausted, "Resource exhausted", true),
	9:  code(9, ErrorTypeInvalidInput, "Failed precondition", false),
	10: code(10, ErrorTypeServerError, "Aborted", true),
	11: code(11, ErrorTypeInvalidInput, "Out of range", false),
	12: code(12, ErrorTypeServerError, "Unimplemented", false),
	13: code(13, ErrorTypeServerError, "Internal error", true),
	14: code(14, ErrorTypeUnavailable, "Unavailable", true),
	15: code(15, ErrorTypeServerError, "Data loss", false),
	16: code(16, ErrorTypeAuthentication, "Unauthenticated", false),

	143:    code(143, ErrorTypeNotFound, "Resource not found", false),
	80620:  code(80620, ErrorTypeAuthorization, "Access denied", false),
	277566: code(277566, ErrorTypeAuthentication, "Authentication required", false),
	277567: code(277567, ErrorTypeAuthentication, "Authentication token expired", false),
	324934: code(324934, ErrorTypeRateLimit, "Rate limit exceeded", true),

	400: code(400, ErrorTypeInvalidInput, "Bad Request", false),
	401: code(401, ErrorTypeAuthentication, "Unauthorized", false),
	403: code(403, ErrorTypePermissionDenied, "Forbidden", false),
	404: code(404, ErrorTypeNotFound, "Not Found", false),
	429: code(429, ErrorTypeRateLimit, "Too Many Requests", true),
	500: code(500, ErrorTypeServerError, "Internal Server Error", true),
	502: code(502, ErrorTypeServerError, "Bad Gateway", true),
	503: code(503, ErrorTypeUnavailable, "Service Unavailable", true),
	504: code(504, ErrorTypeServerError, "Gateway Timeout", true),
}

// GetErrorCode returns the ErrorCode for a given numeric code
func GetErrorCode(c int) (*ErrorCode, bool) {
	if ec, ok := errorCodes[c]; ok {
		return &ec, true
	}
	return nil, false
}

func errorForCode(c int) *APIError {
	if ec, ok := GetErrorCode(c); ok {
		return &APIError{ErrorCode: ec, Message: ec.Message}
	}
	return &APIError{Message: fmt.Sprintf("Unknown error code: %d", c)}
}

// IsErrorResponse reports whether a decoded response carries a server error
// rather than a payload. Codes 0 and 1 are success markers.
func IsErrorResponse(r *Response) (*APIError, bool) {
	if r == nil {
		return nil, false
	}
	if r.Error != "" {
		return &APIError{Message: r.Error}, true
	}
	if r.Code != 0 {
		return errorForCode(r.Code), true
	}
	if len(r.Data) == 0 {
		return nil, false
	}

	var v interface{}
	if err := json.Unmarshal(r.Data, &v); err != nil {
		return nil, false
	}
	switch data := v.(type) {
	case float64:
		if c := int(data); c != 0 && c != 1 {
			return errorForCode(c), true
		}
	case string:
		if c, err := strconv.Atoi(strings.TrimSpace(data)); err == nil && c != 0 && c != 1 {
			return errorForCode(c), true
		}
	case map[string]interface{}:
		if msg, ok := data["error"].(string); ok && msg != "" {
			return &APIError{Message: msg}, true
		}
		if c, ok := data["error_code"].(float64); ok {
			return errorForCode(int(c)), true
		}
	}
	return nil, false
}
