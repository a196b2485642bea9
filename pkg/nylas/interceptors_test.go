package nylas_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nylas/nylas-go/pkg/nylas"
)

var ErrTestInterceptor = errors.New("interceptor rejected")

func TestInterceptorChain_RequestInterceptors(t *testing.T) {
	chain := nylas.NewInterceptorChain()
	ctx := context.Background()

	var executionOrder []string

	chain.AddRequestInterceptor(func(ctx context.Context, req *nylas.Interception) error {
		executionOrder = append(executionOrder, "first")
		return nil
	})

	chain.AddRequestInterceptor(func(ctx context.Context, req *nylas.Interception) error {
		executionOrder = append(executionOrder, "second")
		return nil
	})

	req := &nylas.Interception{Method: "GET", URL: "https://api.us.nylas.com/v3/grants"}

	err := chain.ExecuteRequestInterceptors(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, executionOrder)
	assert.False(t, chain.Empty())
}

func TestInterceptorChain_StopsOnError(t *testing.T) {
	chain := nylas.NewInterceptorChain()

	called := false

	chain.AddRequestInterceptor(func(ctx context.Context, req *nylas.Interception) error {
		return ErrTestInterceptor
	})
	chain.AddRequestInterceptor(func(ctx context.Context, req *nylas.Interception) error {
		called = true
		return nil
	})

	err := chain.ExecuteRequestInterceptors(context.Background(), &nylas.Interception{})
	require.ErrorIs(t, err, ErrTestInterceptor)
	assert.False(t, called)

	var nilChain *nylas.InterceptorChain
	require.NoError(t, nilChain.ExecuteRequestInterceptors(context.Background(), &nylas.Interception{}))
	assert.True(t, nilChain.Empty())
}

func TestHeaderInterceptor(t *testing.T) {
	interceptor := nylas.HeaderInterceptor(map[string]string{"X-Tenant": "acme"})

	req := &nylas.Interception{}
	require.NoError(t, interceptor(context.Background(), req))
	assert.Equal(t, "acme", req.Headers.Get("X-Tenant"))
}

func TestMetricsInterceptors(t *testing.T) {
	collector := nylas.NewMetricsCollector()

	var notified []string

	collector.SetOnChange(func(endpoint string, metrics nylas.Metrics) {
		notified = append(notified, endpoint)
	})

	reqInterceptor := nylas.MetricsRequestInterceptor(collector)
	respInterceptor := nylas.MetricsResponseInterceptor(collector)

	for _, status := range []int{http.StatusOK, http.StatusNotFound} {
		req := &nylas.Interception{Method: "GET", URL: "https://api.us.nylas.com/v3/grants/g/messages?limit=5"}
		require.NoError(t, reqInterceptor(context.Background(), req))

		time.Sleep(time.Millisecond)

		require.NoError(t, respInterceptor(context.Background(), req, &nylas.InterceptedResponse{StatusCode: status}))
	}

	metrics, ok := collector.GetMetrics("GET /v3/grants/g/messages")
	require.True(t, ok)
	assert.Equal(t, int64(2), metrics.TotalRequests)
	assert.Equal(t, int64(1), metrics.TotalErrors)
	assert.Positive(t, metrics.AverageLatency)
	assert.Len(t, notified, 2)

	_, ok = collector.GetMetrics("POST /v3/unknown")
	assert.False(t, ok)
}

type recordingLogger struct {
	messages []string
}

func (l *recordingLogger) Debug(msg string, fields map[string]interface{}) {
	l.messages = append(l.messages, "debug:"+msg)
}

func (l *recordingLogger) Info(msg string, fields map[string]interface{}) {
	l.messages = append(l.messages, "info:"+msg)
}

func (l *recordingLogger) Warn(msg string, fields map[string]interface{}) {
	l.messages = append(l.messages, "warn:"+msg)
}

func (l *recordingLogger) Error(msg string, fields map[string]interface{}) {
	l.messages = append(l.messages, "error:"+msg)
}

func TestLoggingInterceptors(t *testing.T) {
	logger := &recordingLogger{}
	req := &nylas.Interception{Method: "GET", URL: "https://x/v3"}

	require.NoError(t, nylas.LoggingInterceptor(logger)(context.Background(), req))
	require.NoError(t, nylas.LoggingResponseInterceptor(logger)(context.Background(), req, &nylas.InterceptedResponse{StatusCode: 200}))
	require.NoError(t, nylas.LoggingResponseInterceptor(logger)(context.Background(), req, &nylas.InterceptedResponse{Error: ErrTestInterceptor}))

	assert.Equal(t, []string{"debug:API Request", "debug:API Response", "error:API Response Error"}, logger.messages)
}

func TestZerologLogger(t *testing.T) {
	var buf bytes.Buffer

	logger := nylas.NewZerologLogger(zerolog.New(&buf).Level(zerolog.DebugLevel))
	logger.Info("HTTP Response", map[string]interface{}{"status_code": 200})

	assert.Contains(t, buf.String(), `"message":"HTTP Response"`)
	assert.Contains(t, buf.String(), `"status_code":200`)

	nop := nylas.NopLogger()
	nop.Error("ignored", nil)
}
