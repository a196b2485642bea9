package transport

import (
	"fmt"
	"io"
	"net/http"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/nylas/nylas-go/internal/constants"
	"github.com/nylas/nylas-go/pkg/nylas"
)

// retryableAdapter retries connection errors, 429 and 5xx responses with
// exponential backoff. When retries run out the last response is returned
// as is so the caller still sees the server error.
type retryableAdapter struct {
	client *retryablehttp.Client
}

func newRetryableAdapter(opts Options) *retryableAdapter {
	client := retryablehttp.NewClient()
	client.RetryMax = opts.RetryMax
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler

	if opts.RetryWaitMin > 0 {
		client.RetryWaitMin = opts.RetryWaitMin
	}

	if opts.RetryWaitMax > 0 {
		client.RetryWaitMax = opts.RetryWaitMax
	}

	if hc, ok := opts.HTTPClient.(*http.Client); ok && hc != nil {
		client.HTTPClient = hc
	} else {
		client.HTTPClient = cleanhttp.DefaultPooledClient()
	}

	if opts.Logger != nil {
		client.Logger = &leveledLogger{logger: opts.Logger}
	} else {
		client.Logger = nil
	}

	return &retryableAdapter{client: client}
}

func (a *retryableAdapter) Name() string { return constants.AdapterRetryable }

// Do replays the body through req.GetBody on every attempt. Requests whose
// body cannot be replayed are sent once.
func (a *retryableAdapter) Do(req *http.Request) (*http.Response, error) {
	var body interface{}

	switch {
	case req.GetBody != nil:
		body = retryablehttp.ReaderFunc(func() (io.Reader, error) {
			return req.GetBody()
		})
	case req.Body != nil && req.Body != http.NoBody:
		return a.client.HTTPClient.Do(req)
	}

	rreq, err := retryablehttp.NewRequestWithContext(req.Context(), req.Method, req.URL.String(), body)
	if err != nil {
		return nil, fmt.Errorf("building retryable request: %w", err)
	}

	rreq.Header = req.Header.Clone()
	rreq.ContentLength = req.ContentLength
	rreq.Host = req.Host

	return a.client.Do(rreq)
}

// leveledLogger forwards retryablehttp's key/value logs to a nylas.Logger.
type leveledLogger struct {
	logger nylas.Logger
}

func (l *leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, fields(keysAndValues))
}

func (l *leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info(msg, fields(keysAndValues))
}

func (l *leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, fields(keysAndValues))
}

func (l *leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn(msg, fields(keysAndValues))
}

func fields(keysAndValues []interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(keysAndValues)/2)

	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			key = fmt.Sprint(keysAndValues[i])
		}

		out[key] = keysAndValues[i+1]
	}

	return out
}
