package nylas

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/nylas/nylas-go/internal/constants"
)

// UnknownErrorType is used when the server did not describe the failure.
const UnknownErrorType = "unknown_error"

// maxErrorBodyMessage caps how much of an unparseable body lands in Message.
const maxErrorBodyMessage = 1024

// errorBody mirrors both failure payload shapes the API produces. Error is a
// JSON object for API errors and a string code for OAuth errors.
type errorBody struct {
	RequestID        string          `json:"request_id"`
	Error            json.RawMessage `json:"error"`
	ErrorDescription string          `json:"error_description"`
	ErrorURI         string          `json:"error_uri"`
	ErrorCode        int             `json:"error_code"`
}

type apiErrorDetail struct {
	Type          string                 `json:"type"`
	Message       string                 `json:"message"`
	ProviderError map[string]interface{} `json:"provider_error"`
	MissingFields []string               `json:"missing_fields"`
	ServerError   string                 `json:"server_error"`
}

// TranslateError converts a failed HTTP response into a typed error. It
// returns nil for status codes below 400.
func TranslateError(statusCode int, path string, header http.Header, body []byte) error {
	if statusCode < http.StatusBadRequest {
		return nil
	}

	var parsed errorBody

	decoded := json.Unmarshal(body, &parsed) == nil

	if statusCode == http.StatusTooManyRequests {
		return &RateLimitError{
			APIError:       *newAPIError(statusCode, header, body, &parsed, decoded),
			RateLimit:      headerInt(header, constants.HeaderRateLimitLimit),
			RateLimitReset: headerInt(header, constants.HeaderRateLimitReset),
		}
	}

	if decoded && isOAuthFailure(path, parsed.Error) {
		return newOAuthError(statusCode, header, &parsed)
	}

	return newAPIError(statusCode, header, body, &parsed, decoded)
}

// isOAuthFailure reports whether a payload is an OAuth error. Only the OAuth
// endpoints produce them, and only when the error member is not an API
// error object.
func isOAuthFailure(path string, raw json.RawMessage) bool {
	if !isOAuthPath(path) {
		return false
	}

	trimmed := bytes.TrimSpace(raw)

	return len(trimmed) == 0 || trimmed[0] != '{'
}

func isOAuthPath(path string) bool {
	return strings.Contains(path, constants.APIPathTokens) || strings.Contains(path, constants.APIPathRevoke)
}

func newOAuthError(statusCode int, header http.Header, parsed *errorBody) *OAuthError {
	oauthErr := &OAuthError{
		StatusCode:       statusCode,
		ErrorDescription: parsed.ErrorDescription,
		ErrorURI:         parsed.ErrorURI,
		ErrorCode:        parsed.ErrorCode,
		RequestID:        firstNonEmpty(parsed.RequestID, header.Get(constants.HeaderRequestID)),
	}

	var code string
	if json.Unmarshal(parsed.Error, &code) == nil {
		oauthErr.ErrorType = code
	}

	if oauthErr.ErrorType == "" {
		oauthErr.ErrorType = UnknownErrorType
	}

	return oauthErr
}

func newAPIError(statusCode int, header http.Header, body []byte, parsed *errorBody, decoded bool) *APIError {
	apiErr := &APIError{
		StatusCode: statusCode,
		Type:       UnknownErrorType,
		RequestID:  header.Get(constants.HeaderRequestID),
		FlowID:     header.Get(constants.HeaderFlowID),
		Headers:    header,
	}

	if decoded {
		apiErr.RequestID = firstNonEmpty(parsed.RequestID, apiErr.RequestID)
	}

	// A string error member is a bare code; error_description carries the text.
	var code string
	if decoded && json.Unmarshal(parsed.Error, &code) == nil && code != "" {
		apiErr.Type = code
		apiErr.Message = firstNonEmpty(parsed.ErrorDescription, code)
	}

	var detail apiErrorDetail
	if decoded && len(parsed.Error) > 0 && json.Unmarshal(parsed.Error, &detail) == nil {
		apiErr.ProviderError = detail.ProviderError
		apiErr.MissingFields = detail.MissingFields
		apiErr.ServerError = detail.ServerError

		if detail.Type != "" {
			apiErr.Type = detail.Type
		}

		apiErr.Message = detail.Message
	}

	if apiErr.Message == "" {
		apiErr.Message = fallbackMessage(statusCode, body)
	}

	return apiErr
}

func fallbackMessage(statusCode int, body []byte) string {
	text := strings.TrimSpace(string(body))
	if text == "" {
		return StatusName(statusCode)
	}

	if len(text) > maxErrorBodyMessage {
		text = text[:maxErrorBodyMessage]
	}

	return text
}

// headerInt parses a numeric header; missing or malformed values yield nil.
func headerInt(header http.Header, key string) *int {
	raw := strings.TrimSpace(header.Get(key))
	if raw == "" {
		return nil
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}

	return &value
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}
