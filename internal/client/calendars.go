package client

import (
	"context"
	"net/http"

	"github.com/nylas/nylas-go/internal/constants"
	"github.com/nylas/nylas-go/pkg/nylas"
)

// CalendarsClient implements nylas.CalendarsClient.
type CalendarsClient struct {
	requester nylas.Requester
}

// NewCalendarsClient creates a new calendars client.
func NewCalendarsClient(requester nylas.Requester) *CalendarsClient {
	return &CalendarsClient{requester: requester}
}

// List implements nylas.CalendarsClient.List.
func (c *CalendarsClient) List(grantID string, query *nylas.ListCalendarsQuery, opts ...nylas.CallOption) (*nylas.ListIterator[nylas.Calendar], error) {
	err := requireID(grantID, nylas.ErrGrantIDRequired)
	if err != nil {
		return nil, err
	}

	options := nylas.RequestOptions{
		Method: http.MethodGet,
		Path:   grantPath(grantID, constants.CalendarsResource),
		Query:  query.Values(),
	}
	options.Apply(opts...)

	return nylas.RequestList[nylas.Calendar](c.requester, options), nil
}

// Find implements nylas.CalendarsClient.Find.
func (c *CalendarsClient) Find(ctx context.Context, grantID, calendarID string, opts ...nylas.CallOption) (*nylas.Response[nylas.Calendar], error) {
	err := requireID(grantID, nylas.ErrGrantIDRequired)
	if err != nil {
		return nil, err
	}

	err = requireID(calendarID, nylas.ErrCalendarIDRequired)
	if err != nil {
		return nil, err
	}

	options := &nylas.RequestOptions{
		Method: http.MethodGet,
		Path:   grantPath(grantID, constants.CalendarsResource, calendarID),
	}
	options.Apply(opts...)

	resp, err := nylas.Request[nylas.Calendar](ctx, c.requester, options)
	if err != nil {
		return nil, wrap("finding calendar", err)
	}

	return resp, nil
}
