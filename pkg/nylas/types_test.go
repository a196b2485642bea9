package nylas_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nylas/nylas-go/pkg/nylas"
)

type staticRequester struct {
	raw *nylas.RawResponse
	err error
}

func (s *staticRequester) Do(ctx context.Context, opts *nylas.RequestOptions) (*nylas.RawResponse, error) {
	return s.raw, s.err
}

func TestRequest_DecodesEnvelope(t *testing.T) {
	t.Parallel()

	header := http.Header{}
	header.Set("X-RateLimit-Limit", "10")

	requester := &staticRequester{raw: &nylas.RawResponse{
		StatusCode: http.StatusOK,
		Headers:    header,
		Body:       []byte(`{"request_id":"req-1","data":{"id":"m1","subject":"hi","grant_id":"g"}}`),
	}}

	resp, err := nylas.Request[nylas.Message](context.Background(), requester, &nylas.RequestOptions{Method: "GET", Path: "/x"})
	require.NoError(t, err)
	assert.Equal(t, "req-1", resp.RequestID)
	assert.Equal(t, "m1", resp.Data.ID)
	assert.Equal(t, "hi", resp.Data.Subject)
	assert.Equal(t, "10", resp.Headers.Get("X-RateLimit-Limit"))
}

func TestRequest_EmptyBodyUsesHeaderRequestID(t *testing.T) {
	t.Parallel()

	requester := &staticRequester{raw: &nylas.RawResponse{StatusCode: http.StatusNoContent, RequestID: "hdr-1"}}

	resp, err := nylas.Request[nylas.Message](context.Background(), requester, &nylas.RequestOptions{Method: "DELETE", Path: "/x"})
	require.NoError(t, err)
	assert.Equal(t, "hdr-1", resp.RequestID)
}

func TestRequest_Errors(t *testing.T) {
	t.Parallel()

	upstream := nylas.TranslateError(http.StatusNotFound, "/x", nil, nil)

	_, err := nylas.Request[nylas.Message](context.Background(), &staticRequester{err: upstream}, &nylas.RequestOptions{Method: "GET", Path: "/x"})
	require.ErrorIs(t, err, upstream)

	_, err = nylas.Request[nylas.Message](context.Background(), &staticRequester{}, &nylas.RequestOptions{Method: "GET", Path: "/x"})
	require.ErrorIs(t, err, nylas.ErrNilResponse)

	bad := &staticRequester{raw: &nylas.RawResponse{StatusCode: http.StatusOK, Body: []byte("{not json")}}
	_, err = nylas.Request[nylas.Message](context.Background(), bad, &nylas.RequestOptions{Method: "GET", Path: "/x"})
	require.Error(t, err)
	assert.Equal(t, nylas.KindEncoding, nylas.KindOf(err))
}

func TestRequestOptions_Validate(t *testing.T) {
	t.Parallel()

	require.ErrorIs(t, (&nylas.RequestOptions{Path: "/x"}).Validate(), nylas.ErrMethodRequired)
	require.ErrorIs(t, (&nylas.RequestOptions{Method: "GET"}).Validate(), nylas.ErrPathRequired)
	require.NoError(t, (&nylas.RequestOptions{Method: "GET", Path: "/x"}).Validate())
}

func TestCallOptions(t *testing.T) {
	t.Parallel()

	opts := &nylas.RequestOptions{Method: "GET", Path: "/x"}
	opts.Apply(
		nylas.WithHeader("X-Trace", "1"),
		nylas.WithOverrides(nylas.Overrides{APIKey: "other"}),
	)

	assert.Equal(t, "1", opts.Headers["X-Trace"])
	require.NotNil(t, opts.Overrides)
	assert.Equal(t, "other", opts.Overrides.APIKey)
}
