package batchexecute

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestGetErrorCode(t *testing.T) {
	tests := []struct {
		code     int
		wantType ErrorType
		retry    bool
	}{
		{3, ErrorTypeInvalidInput, false},
		{5, ErrorTypeNotFound, false},
		{7, ErrorTypePermissionDenied, false},
		{8, ErrorTypeResourceExhausted, true},
		{14, ErrorTypeUnavailable, true},
		{16, ErrorTypeAuthentication, false},
		{143, ErrorTypeNotFound, false},
		{277566, ErrorTypeAuthentication, false},
		{324934, ErrorTypeRateLimit, true},
		{429, ErrorTypeRateLimit, true},
		{503, ErrorTypeUnavailable, true},
	}
	for _, tt := range tests {
		ec, ok := GetErrorCode(tt.code)
		if !ok {
			t.Errorf("GetErrorCode(%d) not found", tt.code)
			continue
		}
		if ec.Type != tt.wantType || ec.Retryable != tt.retry {
			t.Errorf("GetErrorCode(%d) = %v/%v, want %v/%v", tt.code, ec.Type, ec.Retryable, tt.wantType, tt.retry)
		}
	}
	if _, ok := GetErrorCode(999999); ok {
		t.Error("GetErrorCode(999999) found")
	}
}

func TestIsErrorResponse(t *testing.T) {
	tests := []struct {
		name         string
		response     *Response
		wantError    bool
		wantErrorMsg string
		wantCode     int
	}{
		{name: "nil response", response: nil},
		{
			name:         "explicit error field",
			response:     &Response{ID: "test", Error: "Something went wrong"},
			wantError:    true,
			wantErrorMsg: "Something went wrong",
		},
		{
			name:         "envelope status code",
			response:     &Response{ID: "test", Code: 5},
			wantError:    true,
			wantErrorMsg: "Not found",
			wantCode:     5,
		},
		{
			name:         "numeric error code 277566",
			response:     &Response{ID: "test", Data: json.RawMessage("277566")},
			wantError:    true,
			wantErrorMsg: "Authentication required",
			wantCode:     277566,
		},
		{
			name:         "string numeric error code",
			response:     &Response{ID: "test", Data: json.RawMessage(`"277567"`)},
			wantError:    true,
			wantErrorMsg: "Authentication token expired",
			wantCode:     277567,
		},
		{
			name:         "object with error field",
			response:     &Response{ID: "test", Data: json.RawMessage(`{"error": "Custom error message"}`)},
			wantError:    true,
			wantErrorMsg: "Custom error message",
		},
		{
			name:         "object with error_code field",
			response:     &Response{ID: "test", Data: json.RawMessage(`{"error_code": 7, "message": "Access denied"}`)},
			wantError:    true,
			wantErrorMsg: "Permission denied",
			wantCode:     7,
		},
		{
			name:         "unknown numeric error code",
			response:     &Response{ID: "test", Data: json.RawMessage("999999")},
			wantError:    true,
			wantErrorMsg: "Unknown error code: 999999",
		},
		{name: "success code 0", response: &Response{ID: "test", Data: json.RawMessage("0")}},
		{name: "success code 1", response: &Response{ID: "test", Data: json.RawMessage("1")}},
		{
			name:     "array leading with a number is a payload",
			response: &Response{ID: "test", Data: json.RawMessage(`[143, "additional", "data"]`)},
		},
		{
			name:     "normal success response",
			response: &Response{ID: "test", Data: json.RawMessage(`[[["Title",[],"nb-1"]]]`)},
		},
		{name: "empty data", response: &Response{ID: "test"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apiError, isError := IsErrorResponse(tt.response)
			if isError != tt.wantError {
				t.Fatalf("IsErrorResponse() isError = %v, want %v", isError, tt.wantError)
			}
			if !tt.wantError {
				return
			}
			if apiError.Message != tt.wantErrorMsg {
				t.Errorf("Message = %q, want %q", apiError.Message, tt.wantErrorMsg)
			}
			if tt.wantCode != 0 {
				if apiError.ErrorCode == nil {
					t.Fatalf("ErrorCode = nil, want code %d", tt.wantCode)
				}
				if apiError.ErrorCode.Code != tt.wantCode {
					t.Errorf("ErrorCode.Code = %d, want %d", apiError.ErrorCode.Code, tt.wantCode)
				}
			}
		})
	}
}

func TestAPIError_Error(t *testing.T) {
	ec, _ := GetErrorCode(277566)
	tests := []struct {
		name     string
		apiError *APIError
		want     string
	}{
		{
			name:     "with error code",
			apiError: &APIError{ErrorCode: ec, Message: ec.Message},
			want:     "API error 277566 (Authentication): Authentication required",
		},
		{
			name:     "free form",
			apiError: &APIError{Message: "Something went wrong"},
			want:     "API error: Something went wrong",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.apiError.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAPIErrorUnwrap(t *testing.T) {
	auth, _ := GetErrorCode(16)
	if err := error(&APIError{ErrorCode: auth}); !errors.Is(err, ErrUnauthorized) {
		t.Error("Unauthenticated should unwrap to ErrUnauthorized")
	}
	nf, _ := GetErrorCode(5)
	if err := error(&APIError{ErrorCode: nf}); errors.Is(err, ErrUnauthorized) {
		t.Error("NotFound should not unwrap to ErrUnauthorized")
	}
	if (&APIError{Message: "x"}).IsRetryable() {
		t.Error("free-form error should not be retryable")
	}
}

func TestBatchExecuteErrorType(t *testing.T) {
	tests := []struct {
		status int
		want   ErrorType
	}{
		{401, ErrorTypeAuthentication},
		{404, ErrorTypeNotFound},
		{429, ErrorTypeRateLimit},
		{418, ErrorTypeUnknown},
	}
	for _, tt := range tests {
		e := &BatchExecuteError{StatusCode: tt.status}
		if got := e.ErrorType(); got != tt.want {
			t.Errorf("status %d: ErrorType() = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestErrorType_String(t *testing.T) {
	tests := []struct {
		errorType ErrorType
		want      string
	}{
		{ErrorTypeAuthentication, "Authentication"},
		{ErrorTypeRateLimit, "RateLimit"},
		{ErrorTypeNotFound, "NotFound"},
		{ErrorTypeUnavailable, "Unavailable"},
		{ErrorTypeUnknown, "Unknown"},
		{ErrorType(999), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.errorType.String(); got != tt.want {
			t.Errorf("ErrorType(%d).String() = %q, want %q", int(tt.errorType), got, tt.want)
		}
	}
}
