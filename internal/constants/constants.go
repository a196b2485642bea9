package constants

import "time"

// SDK identification.
const (
	// SDKVersion is reported in the User-Agent header.
	SDKVersion = "1.0.0"

	// DefaultUserAgent is sent unless the config overrides it.
	DefaultUserAgent = "Nylas Go SDK v" + SDKVersion

	// APIWrapper identifies the SDK language to the API.
	APIWrapper = "go"
)

// API endpoints.
const (
	// DefaultAPIURI is the US region base URI.
	DefaultAPIURI = "https://api.us.nylas.com"

	// EUAPIURI is the EU region base URI.
	EUAPIURI = "https://api.eu.nylas.com"
)

// HTTP and network timeouts.
const (
	// DefaultTimeout is applied to every request unless overridden.
	DefaultTimeout = 90 * time.Second

	// DefaultRetryWaitMin is the minimum backoff for the retrying transport.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax is the maximum backoff for the retrying transport.
	DefaultRetryWaitMax = 30 * time.Second
)

// Payload encoding.
const (
	// MaxJSONPayloadSize is the encoding threshold. Request bodies whose
	// computed size is strictly below it are sent as JSON, everything else
	// as a multipart/form-data stream.
	MaxJSONPayloadSize = 3 * 1024 * 1024

	// MessagePartName is the multipart part carrying the JSON fields.
	MessagePartName = "message"

	// AttachmentPartPrefix names attachment parts without a content ID.
	AttachmentPartPrefix = "file"
)

// Content types.
const (
	ContentTypeJSON      = "application/json"
	ContentTypeOctet     = "application/octet-stream"
	ContentTypeMultipart = "multipart/form-data"
)

// Request headers.
const (
	HeaderAuthorization = "Authorization"
	HeaderAccept        = "Accept"
	HeaderContentType   = "Content-Type"
	HeaderUserAgent     = "User-Agent"
	HeaderAPIWrapper    = "X-Nylas-API-Wrapper"
	HeaderRequestID     = "X-Request-Id"
)

// Response headers.
const (
	HeaderFlowID         = "X-Fastly-Id"
	HeaderRateLimitLimit = "X-RateLimit-Limit"
	HeaderRateLimitReset = "X-RateLimit-Reset"
)

// Query parameters.
const (
	// PageTokenParam carries the cursor of the next page.
	PageTokenParam = "page_token"
)

// API paths.
const (
	APIPathGrants      = "/v3/grants"
	APIPathTokens      = "/v3/connect/token"
	APIPathRevoke      = "/v3/connect/revoke"
	MessagesResource   = "messages"
	CalendarsResource  = "calendars"
	MessagesSendAction = "send"
)

// Runtime adapters.
const (
	AdapterHTTP      = "http"
	AdapterRetryable = "retryable"
	AdapterCustom    = "custom"
)

// Output formats used by the CLI.
const (
	FormatJSON  = "json"
	FormatYAML  = "yaml"
	FormatTable = "table"
)

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)
