package nylas

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/nylas/nylas-go/internal/constants"
)

// Region selects one of the hosted API regions.
type Region string

const (
	RegionUS Region = "us"
	RegionEU Region = "eu"
)

// URI returns the base URI of the region. Unknown regions fall back to US.
func (r Region) URI() string {
	if r == RegionEU {
		return constants.EUAPIURI
	}

	return constants.DefaultAPIURI
}

// HTTPDoer is the subset of *http.Client the SDK sends requests through.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config represents client configuration for building a nylas.Client.
//
// A Config is read once by nylasclient.New; changing it afterwards has no
// effect on clients already built from it.
type Config struct {
	// APIKey is sent as the bearer token on every request.
	APIKey string `validate:"required"`
	// APIURI is the base URL. When empty, Region selects it.
	APIURI string `validate:"omitempty,url"`
	Region Region `validate:"omitempty,oneof=us eu"`

	// Timeout bounds every request. Zero means the default of 90 seconds.
	Timeout time.Duration `validate:"gte=0"`
	// Headers are sent with every request.
	Headers map[string]string
	// UserAgent overrides the default User-Agent header.
	UserAgent string

	// Transport names the transport adapter: "http" (default), "retryable" or
	// "custom". "custom" requires HTTPClient; setting HTTPClient alone also
	// selects it.
	Transport  string `validate:"omitempty,oneof=http retryable custom"`
	HTTPClient HTTPDoer `validate:"-"`

	// RetryMax, RetryWaitMin and RetryWaitMax configure the retryable
	// adapter and are ignored by the others.
	RetryMax     int           `validate:"gte=0"`
	RetryWaitMin time.Duration `validate:"gte=0"`
	RetryWaitMax time.Duration `validate:"gte=0"`

	// Debug enables request/response logging through Logger.
	Debug  bool
	Logger Logger `validate:"-"`

	// TracerProvider creates request spans. The global provider is used when nil.
	TracerProvider trace.TracerProvider `validate:"-"`

	RequestInterceptors  []RequestInterceptor
	ResponseInterceptors []ResponseInterceptor
}

// DefaultConfig returns a Config with default values for everything but the API key.
func DefaultConfig() *Config {
	return &Config{
		APIURI:    constants.DefaultAPIURI,
		Timeout:   constants.DefaultTimeout,
		Transport: constants.AdapterHTTP,
	}
}

// WithDefaults returns a copy of c with empty fields set to their defaults
// and the API URI normalized.
func (c *Config) WithDefaults() *Config {
	out := *c

	if out.APIURI == "" {
		out.APIURI = out.Region.URI()
	}

	out.APIURI = NormalizeURI(out.APIURI)

	if out.Timeout == 0 {
		out.Timeout = constants.DefaultTimeout
	}

	if out.Transport == "" {
		out.Transport = constants.AdapterHTTP
		if out.HTTPClient != nil {
			out.Transport = constants.AdapterCustom
		}
	}

	if out.UserAgent == "" {
		out.UserAgent = constants.DefaultUserAgent
	}

	if out.RetryWaitMin == 0 {
		out.RetryWaitMin = constants.DefaultRetryWaitMin
	}

	if out.RetryWaitMax == 0 {
		out.RetryWaitMax = constants.DefaultRetryWaitMax
	}

	if out.Logger == nil {
		out.Logger = NopLogger()
	}

	return &out
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c == nil {
		return NewConfigError(ErrConfigRequired)
	}

	if strings.TrimSpace(c.APIKey) == "" {
		return NewConfigError(ErrAPIKeyRequired)
	}

	err := validate.Struct(c)
	if err != nil {
		return NewConfigError(fmt.Errorf("validating config: %w", err))
	}

	if c.Transport == constants.AdapterCustom && c.HTTPClient == nil {
		return NewConfigError(ErrHTTPClientRequired)
	}

	if c.RetryWaitMax > 0 && c.RetryWaitMin > c.RetryWaitMax {
		return NewConfigError(ErrRetryWaitRange)
	}

	return nil
}

// NormalizeURI trims a trailing slash and adds "https://" when no scheme is present.
func NormalizeURI(uri string) string {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return uri
	}

	if !strings.HasPrefix(uri, "http://") && !strings.HasPrefix(uri, "https://") {
		uri = "https://" + uri
	}

	return strings.TrimRight(uri, "/")
}
