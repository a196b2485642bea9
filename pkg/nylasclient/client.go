package nylasclient

import (
	"github.com/nylas/nylas-go/internal/client"
	"github.com/nylas/nylas-go/internal/http"
	"github.com/nylas/nylas-go/internal/transport"
	"github.com/nylas/nylas-go/pkg/nylas"
)

// New creates a new Nylas API client. The config is validated and copied;
// later changes to it are not observed.
func New(config *nylas.Config) (nylas.Client, error) {
	if config == nil {
		return nil, nylas.NewConfigError(nylas.ErrConfigRequired)
	}

	cfg := config.WithDefaults()

	err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	adapter, err := transport.Resolve(transport.Options{
		Name:         cfg.Transport,
		HTTPClient:   cfg.HTTPClient,
		RetryMax:     cfg.RetryMax,
		RetryWaitMin: cfg.RetryWaitMin,
		RetryWaitMax: cfg.RetryWaitMax,
		Logger:       cfg.Logger,
	})
	if err != nil {
		return nil, err
	}

	chain := nylas.NewInterceptorChain()
	for _, interceptor := range cfg.RequestInterceptors {
		chain.AddRequestInterceptor(interceptor)
	}

	for _, interceptor := range cfg.ResponseInterceptors {
		chain.AddResponseInterceptor(interceptor)
	}

	opts := []http.Option{
		http.WithAdapter(adapter),
		http.WithTimeout(cfg.Timeout),
		http.WithUserAgent(cfg.UserAgent),
		http.WithHeaders(cfg.Headers),
		http.WithLogger(cfg.Logger),
		http.WithDebug(cfg.Debug),
		http.WithTracerProvider(cfg.TracerProvider),
	}

	if !chain.Empty() {
		opts = append(opts, http.WithInterceptors(chain))
	}

	return client.New(http.NewClient(cfg.APIURI, cfg.APIKey, opts...)), nil
}

// NewWithAPIKey creates a client for the US region with default settings.
func NewWithAPIKey(apiKey string) (nylas.Client, error) {
	return New(&nylas.Config{APIKey: apiKey})
}

// NewWithRegion creates a client for the given region.
func NewWithRegion(apiKey string, region nylas.Region) (nylas.Client, error) {
	return New(&nylas.Config{APIKey: apiKey, Region: region})
}
