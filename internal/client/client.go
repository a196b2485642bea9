// Package client implements the resource clients on top of the request
// executor.
package client

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/nylas/nylas-go/internal/constants"
	"github.com/nylas/nylas-go/internal/http"
	"github.com/nylas/nylas-go/pkg/nylas"
)

// Client implements the nylas.Client interface.
type Client struct {
	httpClient *http.Client

	messages  *MessagesClient
	calendars *CalendarsClient
}

// New creates a client sending through httpClient.
func New(httpClient *http.Client) *Client {
	client := &Client{httpClient: httpClient}
	client.messages = NewMessagesClient(client)
	client.calendars = NewCalendarsClient(client)

	return client
}

// Do implements nylas.Requester.
func (c *Client) Do(ctx context.Context, opts *nylas.RequestOptions) (*nylas.RawResponse, error) {
	return c.httpClient.Do(ctx, opts)
}

// Messages implements nylas.Client.
func (c *Client) Messages() nylas.MessagesClient {
	return c.messages
}

// Calendars implements nylas.Client.
func (c *Client) Calendars() nylas.CalendarsClient {
	return c.calendars
}

// HTTPClient returns the underlying request executor.
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

// grantPath builds /v3/grants/{grantID}/{segments...} with every segment escaped.
func grantPath(grantID string, segments ...string) string {
	var builder strings.Builder

	builder.WriteString(constants.APIPathGrants)
	builder.WriteString("/")
	builder.WriteString(url.PathEscape(grantID))

	for _, segment := range segments {
		builder.WriteString("/")
		builder.WriteString(url.PathEscape(segment))
	}

	return builder.String()
}

func requireID(value string, err error) error {
	if strings.TrimSpace(value) == "" {
		return nylas.NewConfigError(err)
	}

	return nil
}

func wrap(action string, err error) error {
	return fmt.Errorf("%s: %w", action, err)
}
