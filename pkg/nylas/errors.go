package nylas

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrorKind is the stable discriminator shared by every error the SDK returns.
type ErrorKind string

const (
	// KindNetwork is a transport failure that never reached a server response.
	KindNetwork ErrorKind = "network"
	// KindTimeout is a request aborted because its timeout elapsed.
	KindTimeout ErrorKind = "timeout"
	// KindEncoding is a failure to build the request body.
	KindEncoding ErrorKind = "encoding"
	// KindConfig is an invalid client or request configuration.
	KindConfig ErrorKind = "config"
	// KindAPI is a server-reported failure.
	KindAPI ErrorKind = "api"
	// KindRateLimit is an HTTP 429 response.
	KindRateLimit ErrorKind = "rate_limit"
	// KindOAuth is a failure reported by the OAuth endpoints.
	KindOAuth ErrorKind = "oauth"
)

// Error is implemented by all typed SDK errors.
type Error interface {
	error
	Kind() ErrorKind
	Name() string
}

// Static errors for err113 compliance.
var (
	ErrAPIKeyRequired     = errors.New("API key is required")
	ErrConfigRequired     = errors.New("config is required")
	ErrMethodRequired     = errors.New("request method is required")
	ErrPathRequired       = errors.New("request path is required")
	ErrNoMorePages        = errors.New("no more pages")
	ErrStreamConsumed     = errors.New("attachment stream already consumed")
	ErrNilContent         = errors.New("attachment content is nil")
	ErrNilReader          = errors.New("attachment stream reader is nil")
	ErrNotAnObject        = errors.New("request body must encode to a JSON object when attachments are present")
	ErrGrantIDRequired    = errors.New("grant ID is required")
	ErrMessageIDRequired  = errors.New("message ID is required")
	ErrCalendarIDRequired = errors.New("calendar ID is required")
	ErrNotRegularFile     = errors.New("attachment path is not a regular file")
	ErrNilResponse        = errors.New("requester returned no response")
	ErrHTTPClientRequired = errors.New("custom transport requires an HTTP client")
	ErrRetryWaitRange     = errors.New("retry wait min must not exceed retry wait max")
)

// SdkError is a local failure. It never carries a status code.
type SdkError struct {
	ErrKind ErrorKind
	Message string
	URL     string
	// Timeout is the elapsed budget for KindTimeout errors.
	Timeout time.Duration
	Err     error
}

// Error implements the error interface.
func (e *SdkError) Error() string {
	msg := e.Message
	if e.URL != "" {
		msg = fmt.Sprintf("%s (url: %s)", msg, e.URL)
	}

	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}

	return msg
}

// Unwrap returns the underlying error.
func (e *SdkError) Unwrap() error {
	return e.Err
}

// Kind implements Error.
func (e *SdkError) Kind() ErrorKind {
	return e.ErrKind
}

// Name implements Error.
func (e *SdkError) Name() string {
	switch e.ErrKind {
	case KindTimeout:
		return "NylasSdkTimeoutError"
	case KindEncoding:
		return "NylasSdkEncodingError"
	case KindConfig:
		return "NylasSdkConfigError"
	default:
		return "NylasSdkError"
	}
}

// NewTimeoutError creates the error returned when a request's timeout elapses.
func NewTimeoutError(url string, timeout time.Duration, err error) *SdkError {
	return &SdkError{
		ErrKind: KindTimeout,
		Message: fmt.Sprintf("timed out after %s before receiving a response from the server", timeout),
		URL:     url,
		Timeout: timeout,
		Err:     err,
	}
}

// NewNetworkError creates the error returned for transport failures.
func NewNetworkError(url string, err error) *SdkError {
	return &SdkError{
		ErrKind: KindNetwork,
		Message: "request failed",
		URL:     url,
		Err:     err,
	}
}

// NewEncodingError creates the error returned when a request body cannot be built.
func NewEncodingError(err error) *SdkError {
	return &SdkError{
		ErrKind: KindEncoding,
		Message: "encoding request body",
		Err:     err,
	}
}

// NewConfigError creates the error returned for invalid configuration.
func NewConfigError(err error) *SdkError {
	return &SdkError{
		ErrKind: KindConfig,
		Message: "invalid configuration",
		Err:     err,
	}
}

// APIError is a server-reported failure with a structured error body.
type APIError struct {
	StatusCode    int                    `json:"status_code"`
	Type          string                 `json:"type"`
	Message       string                 `json:"message"`
	RequestID     string                 `json:"request_id,omitempty"`
	FlowID        string                 `json:"flow_id,omitempty"`
	ProviderError map[string]interface{} `json:"provider_error,omitempty"`
	MissingFields []string               `json:"missing_fields,omitempty"`
	ServerError   string                 `json:"server_error,omitempty"`
	Headers       http.Header            `json:"-"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s (status: %d, type: %s)", e.Name(), e.Message, e.StatusCode, e.Type)
}

// Kind implements Error.
func (e *APIError) Kind() ErrorKind {
	return KindAPI
}

// Name implements Error. It is derived from the status code.
func (e *APIError) Name() string {
	return StatusName(e.StatusCode)
}

// RateLimitError is returned for HTTP 429 responses.
type RateLimitError struct {
	APIError

	// RateLimit is the request allowance; nil when the header is missing or not numeric.
	RateLimit *int
	// RateLimitReset is the seconds until the allowance resets; nil when unavailable.
	RateLimitReset *int
}

// Error implements the error interface.
func (e *RateLimitError) Error() string {
	msg := e.APIError.Error()
	if e.RateLimit != nil {
		msg += fmt.Sprintf(" limit=%d", *e.RateLimit)
	}

	if e.RateLimitReset != nil {
		msg += fmt.Sprintf(" reset=%ds", *e.RateLimitReset)
	}

	return msg
}

// Kind implements Error.
func (e *RateLimitError) Kind() ErrorKind {
	return KindRateLimit
}

// Unwrap exposes the embedded APIError to errors.As.
func (e *RateLimitError) Unwrap() error {
	return &e.APIError
}

// OAuthError is a failure from the token exchange or revocation endpoints.
type OAuthError struct {
	StatusCode       int    `json:"-"`
	ErrorType        string `json:"error"`
	ErrorDescription string `json:"error_description"`
	ErrorURI         string `json:"error_uri,omitempty"`
	ErrorCode        int    `json:"error_code,omitempty"`
	RequestID        string `json:"request_id,omitempty"`
}

// Error implements the error interface.
func (e *OAuthError) Error() string {
	return fmt.Sprintf("%s: %s (status: %d, error: %s)", e.Name(), e.ErrorDescription, e.StatusCode, e.ErrorType)
}

// Kind implements Error.
func (e *OAuthError) Kind() ErrorKind {
	return KindOAuth
}

// Name implements Error.
func (e *OAuthError) Name() string {
	return StatusName(e.StatusCode)
}

// StatusName returns the human-readable name of an HTTP status code.
func StatusName(statusCode int) string {
	if text := http.StatusText(statusCode); text != "" {
		return text
	}

	return "Unknown Error"
}

// KindOf returns the discriminator of err, or "" if err is not an SDK error.
func KindOf(err error) ErrorKind {
	var sdkErr Error
	if errors.As(err, &sdkErr) {
		return sdkErr.Kind()
	}

	return ""
}

// IsNotFound checks if the error is a 404 API error.
func IsNotFound(err error) bool {
	return statusOf(err) == http.StatusNotFound
}

// IsUnauthorized checks if the error is a 401 API error.
func IsUnauthorized(err error) bool {
	return statusOf(err) == http.StatusUnauthorized
}

// IsRateLimited checks if the error is a rate limit error.
func IsRateLimited(err error) bool {
	rateErr := &RateLimitError{}

	return errors.As(err, &rateErr)
}

// IsTimeout checks if the error is a request timeout.
func IsTimeout(err error) bool {
	return KindOf(err) == KindTimeout
}

// IsOAuthError checks if the error came from an OAuth endpoint.
func IsOAuthError(err error) bool {
	oauthErr := &OAuthError{}

	return errors.As(err, &oauthErr)
}

// IsSdkError checks if the error is a local failure.
func IsSdkError(err error) bool {
	sdkErr := &SdkError{}

	return errors.As(err, &sdkErr)
}

func statusOf(err error) int {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}

	oauthErr := &OAuthError{}
	if errors.As(err, &oauthErr) {
		return oauthErr.StatusCode
	}

	return 0
}
