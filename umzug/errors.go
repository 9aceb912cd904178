package umzug

import (
	"errors"
	"fmt"
	"sync"
)

// ErrorKind classifies transport and protocol level failures
type ErrorKind int

const (
	// KindOther is any failure that could not be classified
	KindOther ErrorKind = iota
	// KindInvalidURL indicates the request URL could not be built or parsed
	KindInvalidURL
	// KindInvalidAuthentication indicates the credentials cannot be sent
	KindInvalidAuthentication
	// KindClientShutdown indicates the client was closed before the request
	KindClientShutdown
	// KindInvalidStatus indicates the server answered with a status other than 200
	KindInvalidStatus
)

// String returns the string representation of an ErrorKind
func (k ErrorKind) String() string {
	switch k {
	case KindInvalidURL:
		return "invalid URL"
	case KindInvalidAuthentication:
		return "invalid authentication"
	case KindClientShutdown:
		return "client shutdown"
	case KindInvalidStatus:
		return "invalid status"
	default:
		return "other"
	}
}

// Sentinel errors for use with errors.Is
var (
	ErrInvalidURL            = &APIError{Kind: KindInvalidURL}
	ErrInvalidAuthentication = &APIError{Kind: KindInvalidAuthentication}
	ErrClientShutdown        = &APIError{Kind: KindClientShutdown}
	ErrInvalidStatus         = &APIError{Kind: KindInvalidStatus}
	ErrOther                 = &APIError{Kind: KindOther}
)

// APIError is the only error returned by MakeRequest. It aborts the request;
// no domain Result exists when it is returned.
type APIError struct {
	Kind       ErrorKind
	StatusCode int // set for KindInvalidStatus
	Err        error
}

// InvalidStatus returns an APIError for an unexpected status code
func InvalidStatus(code int) *APIError {
	return &APIError{Kind: KindInvalidStatus, StatusCode: code}
}

// Error implements the error interface
func (e *APIError) Error() string {
	msg := "umzug API error: " + e.Kind.String()
	if e.Kind == KindInvalidStatus {
		msg = fmt.Sprintf("%s %d", msg, e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause
func (e *APIError) Unwrap() error {
	return e.Err
}

// Is matches on kind. A target with a status code also matches the code.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	if !ok {
		return false
	}
	if e.Kind != t.Kind {
		return false
	}
	return t.StatusCode == 0 || e.StatusCode == t.StatusCode
}

// ShouldReport reports whether the error invalidates the session and should
// be surfaced to the user
func (e *APIError) ShouldReport() bool {
	switch e.Kind {
	case KindInvalidAuthentication, KindClientShutdown, KindOther:
		return true
	default:
		return false
	}
}

// IsUnauthorized checks if the error indicates an authentication failure
func (e *APIError) IsUnauthorized() bool {
	return e.Kind == KindInvalidAuthentication ||
		(e.Kind == KindInvalidStatus && (e.StatusCode == 401 || e.StatusCode == 403))
}

// IsNotFound checks if the error indicates a not found response
func (e *APIError) IsNotFound() bool {
	return e.Kind == KindInvalidStatus && e.StatusCode == 404
}

// AsAPIError extracts an *APIError from err
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// Reporter holds the first reportable error of a session. Later reports are
// dropped until Clear is called.
type Reporter struct {
	mu  sync.Mutex
	err *APIError
}

// Report stores err if no error is pending. It returns true if err was stored.
func (r *Reporter) Report(err *APIError) bool {
	if err == nil || !err.ShouldReport() {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.err != nil {
		return false
	}
	r.err = err
	return true
}

// Pending returns the reported error, if any
func (r *Reporter) Pending() *APIError {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Clear removes the pending error and returns it
func (r *Reporter) Clear() *APIError {
	r.mu.Lock()
	defer r.mu.Unlock()

	err := r.err
	r.err = nil
	return err
}
