package directory

import "fmt"

// Error taxonomy for directory calls. Every failure carries a message the
// dashboard can display verbatim; callers decide whether to retry (never
// automatic here).

// AuthTokenError means the bearer token could not be obtained from the
// identity provider. Fatal for the pending action, not for the store.
type AuthTokenError struct {
	Err error
}

func (e *AuthTokenError) Error() string {
	return fmt.Sprintf("failed to obtain directory token: %v", e.Err)
}

func (e *AuthTokenError) Unwrap() error { return e.Err }

// NotFoundError is a 404 from the directory service.
type NotFoundError struct {
	Resource string // e.g. "user jsmith"
	Message  string
}

func (e *NotFoundError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// ValidationError is a 4xx rejection carrying the server's own message
// (weak password, duplicate username, malformed field).
type ValidationError struct {
	Status  int
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// HTTPError is any other non-2xx response.
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("HTTP %d", e.Status)
}

// TimeoutError means the call exceeded the configured budget. Surfaced
// distinctly so the UI never sits in a pending state with no explanation.
type TimeoutError struct {
	Op string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("directory %s timed out", e.Op)
}

// NetworkError is a transport failure with no response received.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("directory %s failed: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }
