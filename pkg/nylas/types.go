package nylas

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Overrides shadow client configuration for a single call.
type Overrides struct {
	APIKey  string
	APIURI  string
	Timeout time.Duration
	Headers map[string]string
}

// RequestOptions describes one API call. Path is relative to the base URI.
type RequestOptions struct {
	Method      string
	Path        string
	Query       url.Values
	Headers     map[string]string
	Body        any
	Attachments []Attachment
	Overrides   *Overrides
}

// Validate checks the method and path are present.
func (o *RequestOptions) Validate() error {
	if o == nil {
		return NewConfigError(ErrConfigRequired)
	}

	if strings.TrimSpace(o.Method) == "" {
		return NewConfigError(ErrMethodRequired)
	}

	if strings.TrimSpace(o.Path) == "" {
		return NewConfigError(ErrPathRequired)
	}

	return nil
}

// Clone returns a copy whose Query and Headers can be changed without
// touching o.
func (o RequestOptions) Clone() RequestOptions {
	out := o

	out.Query = make(url.Values, len(o.Query))
	for key, values := range o.Query {
		out.Query[key] = append([]string(nil), values...)
	}

	if o.Headers != nil {
		out.Headers = maps.Clone(o.Headers)
	}

	return out
}

// RawResponse is a response as read by the executor, before envelope decoding.
type RawResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	// RequestID is the X-Request-Id response header.
	RequestID string
	URL       string
}

// Response is the envelope for single-entity calls.
type Response[T any] struct {
	RequestID string      `json:"request_id"`
	Data      T           `json:"data"`
	Headers   http.Header `json:"-"`
}

// ListResponse is the envelope for one page of a list call.
type ListResponse[T any] struct {
	RequestID  string      `json:"request_id"`
	Data       []T         `json:"data"`
	NextCursor string      `json:"next_cursor,omitempty"`
	Headers    http.Header `json:"-"`
}

// HasMore reports whether a following page exists.
func (r *ListResponse[T]) HasMore() bool {
	return r.NextCursor != ""
}

// Requester sends a request and returns the raw response. Implementations
// return a typed Error for every failure and include the raw response when
// the server answered.
type Requester interface {
	Do(ctx context.Context, opts *RequestOptions) (*RawResponse, error)
}

// Request sends opts through r and decodes the single-entity envelope.
func Request[T any](ctx context.Context, r Requester, opts *RequestOptions) (*Response[T], error) {
	raw, err := r.Do(ctx, opts)
	if err != nil {
		return nil, err
	}

	resp := &Response[T]{}

	err = decodeEnvelope(raw, resp)
	if err != nil {
		return nil, err
	}

	if resp.RequestID == "" {
		resp.RequestID = raw.RequestID
	}

	resp.Headers = raw.Headers

	return resp, nil
}

// RequestList returns an iterator over the pages of a list call. No request
// is sent until the iterator is used.
func RequestList[T any](r Requester, opts RequestOptions) *ListIterator[T] {
	return NewListIterator[T](r, opts)
}

func requestPage[T any](ctx context.Context, r Requester, opts *RequestOptions) (*ListResponse[T], error) {
	raw, err := r.Do(ctx, opts)
	if err != nil {
		return nil, err
	}

	page := &ListResponse[T]{}

	err = decodeEnvelope(raw, page)
	if err != nil {
		return nil, err
	}

	if page.RequestID == "" {
		page.RequestID = raw.RequestID
	}

	page.Headers = raw.Headers

	return page, nil
}

// decodeEnvelope unmarshals a success body. An empty body leaves out untouched.
func decodeEnvelope(raw *RawResponse, out any) error {
	if raw == nil {
		return ErrNilResponse
	}

	if len(strings.TrimSpace(string(raw.Body))) == 0 {
		return nil
	}

	err := json.Unmarshal(raw.Body, out)
	if err != nil {
		return &SdkError{
			ErrKind: KindEncoding,
			Message: "decoding response body",
			URL:     raw.URL,
			Err:     fmt.Errorf("unmarshaling envelope: %w", err),
		}
	}

	return nil
}
