package nylas

import (
	"context"
)

// CallOption adjusts the options of one resource call.
type CallOption func(*RequestOptions)

// WithOverrides applies per-call overrides.
func WithOverrides(o Overrides) CallOption {
	return func(opts *RequestOptions) {
		opts.Overrides = &o
	}
}

// WithHeader adds a header to one call.
func WithHeader(key, value string) CallOption {
	return func(opts *RequestOptions) {
		if opts.Headers == nil {
			opts.Headers = make(map[string]string)
		}

		opts.Headers[key] = value
	}
}

// Apply runs every option against opts.
func (o *RequestOptions) Apply(options ...CallOption) {
	for _, option := range options {
		option(o)
	}
}

// MessagesClient defines operations for messages of a grant.
type MessagesClient interface {
	List(grantID string, query *ListMessagesQuery, opts ...CallOption) (*ListIterator[Message], error)
	Find(ctx context.Context, grantID, messageID string, opts ...CallOption) (*Response[Message], error)
	Send(ctx context.Context, grantID string, req *SendMessageRequest, opts ...CallOption) (*Response[Message], error)
	Update(ctx context.Context, grantID, messageID string, req *UpdateMessageRequest, opts ...CallOption) (*Response[Message], error)
	Destroy(ctx context.Context, grantID, messageID string, opts ...CallOption) (*DeleteResponse, error)
}

// CalendarsClient defines operations for calendars of a grant.
type CalendarsClient interface {
	List(grantID string, query *ListCalendarsQuery, opts ...CallOption) (*ListIterator[Calendar], error)
	Find(ctx context.Context, grantID, calendarID string, opts ...CallOption) (*Response[Calendar], error)
}

// Client is the API client. Its Do method is the uniform entry point the
// resource clients are built on and can be used for endpoints without a
// dedicated wrapper.
type Client interface {
	Requester

	Messages() MessagesClient
	Calendars() CalendarsClient
}
