package transport

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/hashicorp/go-cleanhttp"

	"github.com/nylas/nylas-go/internal/constants"
	"github.com/nylas/nylas-go/pkg/nylas"
)

// Static errors for err113 compliance.
var (
	ErrUnsupportedAdapter = errors.New("unsupported transport adapter")
)

// Adapter sends a fully built request and returns the server response.
// Implementations must honor the request context.
type Adapter interface {
	Name() string
	Do(req *http.Request) (*http.Response, error)
}

// Options selects and configures an Adapter.
type Options struct {
	// Name is one of "http", "retryable" or "custom". Empty means "http",
	// or "custom" when HTTPClient is set.
	Name       string
	HTTPClient nylas.HTTPDoer

	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration

	Logger nylas.Logger
}

var defaultAdapter = sync.OnceValue(func() Adapter {
	return &httpAdapter{client: cleanhttp.DefaultPooledClient()}
})

// Default returns the shared net/http adapter. Every call returns the same value.
func Default() Adapter {
	return defaultAdapter()
}

// Resolve returns the adapter named by opts. Unknown names fail; there is no
// fallback transport.
func Resolve(opts Options) (Adapter, error) {
	name := opts.Name
	if name == "" {
		name = constants.AdapterHTTP
		if opts.HTTPClient != nil {
			name = constants.AdapterCustom
		}
	}

	switch name {
	case constants.AdapterHTTP:
		return Default(), nil
	case constants.AdapterRetryable:
		return newRetryableAdapter(opts), nil
	case constants.AdapterCustom:
		if opts.HTTPClient == nil {
			return nil, nylas.NewConfigError(nylas.ErrHTTPClientRequired)
		}

		return &customAdapter{doer: opts.HTTPClient}, nil
	default:
		return nil, nylas.NewConfigError(fmt.Errorf("%w: %q", ErrUnsupportedAdapter, name))
	}
}

type httpAdapter struct {
	client *http.Client
}

func (a *httpAdapter) Name() string { return constants.AdapterHTTP }

func (a *httpAdapter) Do(req *http.Request) (*http.Response, error) {
	return a.client.Do(req)
}

// customAdapter sends through a caller supplied client, typically a test
// double or an instrumented *http.Client.
type customAdapter struct {
	doer nylas.HTTPDoer
}

func (a *customAdapter) Name() string { return constants.AdapterCustom }

func (a *customAdapter) Do(req *http.Request) (*http.Response, error) {
	return a.doer.Do(req)
}
