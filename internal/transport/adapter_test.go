package transport_test

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nylas/nylas-go/internal/transport"
	"github.com/nylas/nylas-go/pkg/nylas"
)

type stubDoer struct {
	calls atomic.Int32
}

func (s *stubDoer) Do(req *http.Request) (*http.Response, error) {
	s.calls.Add(1)

	return &http.Response{StatusCode: http.StatusTeapot, Body: io.NopCloser(bytes.NewReader(nil)), Request: req}, nil
}

func TestDefault_IsCached(t *testing.T) {
	t.Parallel()

	first := transport.Default()
	second := transport.Default()

	assert.Same(t, first, second)
	assert.Equal(t, "http", first.Name())
}

func TestResolve(t *testing.T) {
	t.Parallel()

	doer := &stubDoer{}

	tests := []struct {
		name     string
		opts     transport.Options
		wantName string
		wantErr  error
	}{
		{name: "default", opts: transport.Options{}, wantName: "http"},
		{name: "http", opts: transport.Options{Name: "http"}, wantName: "http"},
		{name: "implicit custom", opts: transport.Options{HTTPClient: doer}, wantName: "custom"},
		{name: "custom", opts: transport.Options{Name: "custom", HTTPClient: doer}, wantName: "custom"},
		{name: "retryable", opts: transport.Options{Name: "retryable", RetryMax: 2}, wantName: "retryable"},
		{name: "custom without client", opts: transport.Options{Name: "custom"}, wantErr: nylas.ErrHTTPClientRequired},
		{name: "unknown", opts: transport.Options{Name: "workers"}, wantErr: transport.ErrUnsupportedAdapter},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			adapter, err := transport.Resolve(testCase.opts)
			if testCase.wantErr != nil {
				require.ErrorIs(t, err, testCase.wantErr)
				assert.Equal(t, nylas.KindConfig, nylas.KindOf(err))
				assert.Nil(t, adapter)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, testCase.wantName, adapter.Name())
		})
	}

	http1, err := transport.Resolve(transport.Options{Name: "http"})
	require.NoError(t, err)
	assert.Same(t, transport.Default(), http1)
}

func TestCustomAdapter_Delegates(t *testing.T) {
	t.Parallel()

	doer := &stubDoer{}

	adapter, err := transport.Resolve(transport.Options{HTTPClient: doer})
	require.NoError(t, err)

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, "https://example.invalid/v3", nil)
	require.NoError(t, err)

	resp, err := adapter.Do(req)
	require.NoError(t, err)

	defer resp.Body.Close()

	assert.Equal(t, http.StatusTeapot, resp.StatusCode)
	assert.Equal(t, int32(1), doer.calls.Load())
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestRetryableAdapter(t *testing.T) {
	t.Parallel()

	t.Run("retries on 5xx errors and replays the body", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			body, _ := io.ReadAll(request.Body)
			assert.Equal(t, `{"subject":"retry"}`, string(body))
			assert.Equal(t, "Bearer key", request.Header.Get("Authorization"))

			if attempts.Add(1) < 3 {
				writer.WriteHeader(http.StatusServiceUnavailable)

				return
			}

			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		adapter, err := transport.Resolve(transport.Options{
			Name:         "retryable",
			RetryMax:     3,
			RetryWaitMin: 5 * time.Millisecond,
			RetryWaitMax: 20 * time.Millisecond,
		})
		require.NoError(t, err)

		payload := []byte(`{"subject":"retry"}`)

		req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, server.URL+"/v3/send", bytes.NewReader(payload))
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer key")

		resp, err := adapter.Do(req)
		require.NoError(t, err)

		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, int32(3), attempts.Load())
	})

	t.Run("returns the last response when retries run out", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			attempts.Add(1)
			writer.WriteHeader(http.StatusTooManyRequests)
		}))
		defer server.Close()

		logger := &MockLogger{}

		adapter, err := transport.Resolve(transport.Options{
			Name:         "retryable",
			RetryMax:     1,
			RetryWaitMin: time.Millisecond,
			RetryWaitMax: 5 * time.Millisecond,
			Logger:       logger,
		})
		require.NoError(t, err)

		req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL, nil)
		require.NoError(t, err)

		resp, err := adapter.Do(req)
		require.NoError(t, err)

		defer resp.Body.Close()

		assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
		assert.Equal(t, int32(2), attempts.Load())
		assert.NotEmpty(t, logger.messages())
	})

	t.Run("does not retry on client errors", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			attempts.Add(1)
			writer.WriteHeader(http.StatusBadRequest)
		}))
		defer server.Close()

		adapter, err := transport.Resolve(transport.Options{Name: "retryable", RetryMax: 3, RetryWaitMin: time.Millisecond})
		require.NoError(t, err)

		req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL, nil)
		require.NoError(t, err)

		resp, err := adapter.Do(req)
		require.NoError(t, err)

		defer resp.Body.Close()

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, int32(1), attempts.Load())
	})

	t.Run("honors context deadline", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		adapter, err := transport.Resolve(transport.Options{Name: "retryable", RetryMax: 10, RetryWaitMin: time.Second, RetryWaitMax: time.Second})
		require.NoError(t, err)

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL, nil)
		require.NoError(t, err)

		start := time.Now()

		resp, err := adapter.Do(req)
		if resp != nil {
			_ = resp.Body.Close()
		}

		require.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Less(t, time.Since(start), time.Second)
	})
}
