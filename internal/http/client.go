// Package http executes API requests: it builds the URL and headers, encodes
// the body, applies the timeout, dispatches through a transport adapter and
// translates failures into typed errors.
package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/nylas/nylas-go/internal/constants"
	"github.com/nylas/nylas-go/internal/payload"
	"github.com/nylas/nylas-go/internal/transport"
	"github.com/nylas/nylas-go/pkg/nylas"
)

const tracerName = "github.com/nylas/nylas-go"

// Static errors for err113 compliance.
var (
	ErrRelativeBaseURL = errors.New("base URL must be absolute")
	ErrNilHTTPResponse = errors.New("adapter returned neither a response nor an error")
)

// Client sends requests relative to a base URL. Every call is single
// attempt unless the adapter itself retries.
type Client struct {
	baseURL   string
	apiKey    string
	timeout   time.Duration
	userAgent string
	headers   map[string]string

	adapter      transport.Adapter
	retry        *transport.Options
	encoder      *payload.Encoder
	interceptors *nylas.InterceptorChain

	logger nylas.Logger
	debug  bool

	tracer     trace.Tracer
	propagator propagation.TextMapPropagator
	requestID  func() string
}

// NewClient creates a new HTTP client.
func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		timeout:    constants.DefaultTimeout,
		userAgent:  constants.DefaultUserAgent,
		headers:    make(map[string]string),
		adapter:    transport.Default(),
		encoder:    payload.NewEncoder(constants.MaxJSONPayloadSize),
		logger:     nylas.NopLogger(),
		tracer:     otel.GetTracerProvider().Tracer(tracerName),
		propagator: otel.GetTextMapPropagator(),
		requestID:  uuid.NewString,
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.retry != nil {
		client.retry.Logger = client.logger

		adapter, err := transport.Resolve(*client.retry)
		if err != nil {
			client.logger.Warn("retry adapter unavailable, sending single attempts", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			client.adapter = adapter
		}
	}

	return client
}

// BaseURL returns the default base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Adapter returns the transport adapter.
func (c *Client) Adapter() transport.Adapter {
	return c.adapter
}

// callConfig is the client configuration with per-call overrides applied.
type callConfig struct {
	apiKey  string
	baseURL string
	timeout time.Duration
	headers map[string]string
}

func (c *Client) resolve(overrides *nylas.Overrides) callConfig {
	call := callConfig{
		apiKey:  c.apiKey,
		baseURL: c.baseURL,
		timeout: c.timeout,
		headers: c.headers,
	}

	if overrides == nil {
		return call
	}

	if overrides.APIKey != "" {
		call.apiKey = overrides.APIKey
	}

	if overrides.APIURI != "" {
		call.baseURL = nylas.NormalizeURI(overrides.APIURI)
	}

	if overrides.Timeout > 0 {
		call.timeout = overrides.Timeout
	}

	if len(overrides.Headers) > 0 {
		merged := make(map[string]string, len(c.headers)+len(overrides.Headers))
		for key, value := range c.headers {
			merged[key] = value
		}

		for key, value := range overrides.Headers {
			merged[key] = value
		}

		call.headers = merged
	}

	return call
}

// Do executes one request. For responses with status >= 400 it returns the
// raw response together with the translated error.
//
//nolint:funlen,cyclop // one linear pipeline
func (c *Client) Do(ctx context.Context, opts *nylas.RequestOptions) (*nylas.RawResponse, error) {
	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	call := c.resolve(opts.Overrides)
	if strings.TrimSpace(call.apiKey) == "" {
		return nil, nylas.NewConfigError(nylas.ErrAPIKeyRequired)
	}

	fullURL, err := BuildURL(call.baseURL, opts.Path, opts.Query)
	if err != nil {
		return nil, nylas.NewConfigError(err)
	}

	body, err := c.encoder.Encode(opts.Body, opts.Attachments)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, call.timeout)
	defer cancel()

	method := strings.ToUpper(opts.Method)

	ctx, span := c.tracer.Start(ctx, "nylas "+method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.path", opts.Path),
		))
	defer span.End()

	req, err := c.newRequest(ctx, method, fullURL, body)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())

		return nil, nylas.NewConfigError(err)
	}

	requestID := c.requestID()
	c.setHeaders(req, call, opts.Headers, body, requestID)
	c.propagator.Inject(ctx, propagation.HeaderCarrier(req.Header))

	if body != nil {
		span.SetAttributes(
			attribute.Bool("nylas.multipart", body.Multipart),
			attribute.Int64("nylas.payload_size", body.Size),
		)
	}

	interception := &nylas.Interception{
		Method:  method,
		URL:     fullURL,
		Headers: req.Header,
	}

	err = c.interceptors.ExecuteRequestInterceptors(ctx, interception)
	if err != nil {
		if req.Body != nil {
			_ = req.Body.Close()
		}

		span.SetStatus(codes.Error, err.Error())

		return nil, &nylas.SdkError{ErrKind: nylas.KindNetwork, Message: "request aborted", URL: fullURL, Err: err}
	}

	if interception.Headers != nil {
		req.Header = interception.Headers
	}

	if c.debug {
		c.logger.Debug("HTTP Request", map[string]interface{}{
			"method":     method,
			"url":        fullURL,
			"request_id": requestID,
			"multipart":  body != nil && body.Multipart,
		})
	}

	start := time.Now()

	resp, data, err := c.send(ctx, req)
	if err != nil {
		sdkErr := classify(ctx, fullURL, call.timeout, err)

		span.RecordError(sdkErr)
		span.SetStatus(codes.Error, sdkErr.Message)

		_ = c.interceptors.ExecuteResponseInterceptors(ctx, interception, &nylas.InterceptedResponse{Error: sdkErr})

		if c.debug {
			c.logger.Error("HTTP Request Failed", map[string]interface{}{
				"method":   method,
				"url":      fullURL,
				"duration": time.Since(start).String(),
				"error":    sdkErr.Error(),
			})
		}

		return nil, sdkErr
	}

	raw := &nylas.RawResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       data,
		RequestID:  resp.Header.Get(constants.HeaderRequestID),
		URL:        fullURL,
	}

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if c.debug {
		c.logger.Debug("HTTP Response", map[string]interface{}{
			"method":      method,
			"url":         fullURL,
			"status_code": resp.StatusCode,
			"request_id":  raw.RequestID,
			"duration":    time.Since(start).String(),
		})
	}

	var apiErr error
	if resp.StatusCode >= http.StatusBadRequest {
		apiErr = nylas.TranslateError(resp.StatusCode, opts.Path, resp.Header, data)

		span.RecordError(apiErr)
		span.SetStatus(codes.Error, nylas.StatusName(resp.StatusCode))
	}

	err = c.interceptors.ExecuteResponseInterceptors(ctx, interception, &nylas.InterceptedResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       data,
		Error:      apiErr,
	})
	if err != nil && apiErr == nil {
		return raw, &nylas.SdkError{ErrKind: nylas.KindNetwork, Message: "response rejected", URL: fullURL, Err: err}
	}

	return raw, apiErr
}

type result struct {
	resp *http.Response
	err  error
}

// send races the adapter against the request context. An adapter that
// ignores the context and answers after the deadline is never reported as
// a success.
func (c *Client) send(ctx context.Context, req *http.Request) (*http.Response, []byte, error) {
	done := make(chan result, 1)

	go func() {
		resp, err := c.adapter.Do(req)
		done <- result{resp: resp, err: err}
	}()

	var res result

	select {
	case res = <-done:
	case <-ctx.Done():
		go func() {
			late := <-done
			if late.resp != nil && late.resp.Body != nil {
				_ = late.resp.Body.Close()
			}
		}()

		return nil, nil, ctx.Err()
	}

	if res.err != nil {
		return nil, nil, res.err
	}

	if res.resp == nil {
		return nil, nil, ErrNilHTTPResponse
	}

	// Adapters may hand back a response without a body; treat it as empty.
	if res.resp.Body == nil {
		res.resp.Body = http.NoBody
	}

	defer res.resp.Body.Close()

	data, err := io.ReadAll(res.resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("reading response body: %w", err)
	}

	if ctx.Err() != nil {
		return nil, nil, ctx.Err()
	}

	return res.resp, data, nil
}

func (c *Client) newRequest(ctx context.Context, method, fullURL string, body *payload.Payload) (*http.Request, error) {
	if body == nil {
		req, err := http.NewRequestWithContext(ctx, method, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}

		return req, nil
	}

	reader, err := body.NewBody()
	if err != nil {
		return nil, fmt.Errorf("creating request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		_ = reader.Close()

		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.ContentLength = body.ContentLength()
	req.GetBody = body.NewBody

	return req, nil
}

func (c *Client) setHeaders(req *http.Request, call callConfig, extra map[string]string, body *payload.Payload, requestID string) {
	for key, value := range call.headers {
		req.Header.Set(key, value)
	}

	for key, value := range extra {
		req.Header.Set(key, value)
	}

	req.Header.Set(constants.HeaderAuthorization, "Bearer "+call.apiKey)
	req.Header.Set(constants.HeaderAccept, constants.ContentTypeJSON)
	req.Header.Set(constants.HeaderUserAgent, c.userAgent)
	req.Header.Set(constants.HeaderAPIWrapper, constants.APIWrapper)
	req.Header.Set(constants.HeaderRequestID, requestID)

	if body != nil {
		req.Header.Set(constants.HeaderContentType, body.ContentType)
	}
}

// classify maps a transport failure to a local SDK error.
func classify(ctx context.Context, fullURL string, timeout time.Duration, err error) *nylas.SdkError {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nylas.NewTimeoutError(fullURL, timeout, err)
	}

	streamErr := &payload.StreamError{}
	if errors.As(err, &streamErr) {
		return &nylas.SdkError{ErrKind: nylas.KindEncoding, Message: "streaming request body", URL: fullURL, Err: err}
	}

	return nylas.NewNetworkError(fullURL, err)
}

// BuildURL joins base, path and query. List-valued query entries are
// repeated.
func BuildURL(base, path string, query url.Values) (string, error) {
	parsed, err := url.Parse(strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/"))
	if err != nil {
		return "", fmt.Errorf("parsing request URL: %w", err)
	}

	if !parsed.IsAbs() {
		return "", fmt.Errorf("%w: %s", ErrRelativeBaseURL, base)
	}

	if len(query) > 0 {
		merged := parsed.Query()
		for key, values := range query {
			for _, value := range values {
				merged.Add(key, value)
			}
		}

		parsed.RawQuery = merged.Encode()
	}

	return parsed.String(), nil
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*nylas.RawResponse, error) {
	return c.Do(ctx, &nylas.RequestOptions{Method: http.MethodGet, Path: path, Query: query})
}

// Post performs a POST request.
func (c *Client) Post(ctx context.Context, path string, body any) (*nylas.RawResponse, error) {
	return c.Do(ctx, &nylas.RequestOptions{Method: http.MethodPost, Path: path, Body: body})
}

// Put performs a PUT request.
func (c *Client) Put(ctx context.Context, path string, body any) (*nylas.RawResponse, error) {
	return c.Do(ctx, &nylas.RequestOptions{Method: http.MethodPut, Path: path, Body: body})
}

// Patch performs a PATCH request.
func (c *Client) Patch(ctx context.Context, path string, body any) (*nylas.RawResponse, error) {
	return c.Do(ctx, &nylas.RequestOptions{Method: http.MethodPatch, Path: path, Body: body})
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (*nylas.RawResponse, error) {
	return c.Do(ctx, &nylas.RequestOptions{Method: http.MethodDelete, Path: path})
}
