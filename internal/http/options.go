package http

import (
	"time"

	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/nylas/nylas-go/internal/constants"
	"github.com/nylas/nylas-go/internal/payload"
	"github.com/nylas/nylas-go/internal/transport"
	"github.com/nylas/nylas-go/pkg/nylas"
)

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger nylas.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithDebug enables request/response logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		if userAgent != "" {
			c.userAgent = userAgent
		}
	}
}

// WithTimeout sets the default per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithHeaders adds headers sent with every request.
func WithHeaders(headers map[string]string) Option {
	return func(c *Client) {
		for key, value := range headers {
			c.headers[key] = value
		}
	}
}

// WithAdapter sets the transport adapter.
func WithAdapter(adapter transport.Adapter) Option {
	return func(c *Client) {
		if adapter != nil {
			c.adapter = adapter
			c.retry = nil
		}
	}
}

// WithRetryConfig switches to the retrying adapter. The adapter is built
// once all options have run, so it logs through the final logger.
func WithRetryConfig(maxRetries int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.retry = &transport.Options{
			Name:         constants.AdapterRetryable,
			RetryMax:     maxRetries,
			RetryWaitMin: waitMin,
			RetryWaitMax: waitMax,
		}
	}
}

// WithEncoder replaces the payload encoder.
func WithEncoder(encoder *payload.Encoder) Option {
	return func(c *Client) {
		if encoder != nil {
			c.encoder = encoder
		}
	}
}

// WithTracerProvider sets the provider request spans are created from.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Client) {
		if tp != nil {
			c.tracer = tp.Tracer(tracerName)
		}
	}
}

// WithPropagator sets how trace context is injected into request headers.
func WithPropagator(propagator propagation.TextMapPropagator) Option {
	return func(c *Client) {
		if propagator != nil {
			c.propagator = propagator
		}
	}
}

// WithInterceptors sets the interceptor chain.
func WithInterceptors(chain *nylas.InterceptorChain) Option {
	return func(c *Client) {
		c.interceptors = chain
	}
}

// WithRequestIDFunc replaces the X-Request-Id generator.
func WithRequestIDFunc(fn func() string) Option {
	return func(c *Client) {
		if fn != nil {
			c.requestID = fn
		}
	}
}
