package client

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/nylas/nylas-go/internal/constants"
	"github.com/nylas/nylas-go/pkg/nylas"
)

// MessagesClient implements nylas.MessagesClient.
type MessagesClient struct {
	requester nylas.Requester
}

// NewMessagesClient creates a new messages client.
func NewMessagesClient(requester nylas.Requester) *MessagesClient {
	return &MessagesClient{requester: requester}
}

// List implements nylas.MessagesClient.List. No request is sent until the
// iterator is used.
func (c *MessagesClient) List(grantID string, query *nylas.ListMessagesQuery, opts ...nylas.CallOption) (*nylas.ListIterator[nylas.Message], error) {
	err := requireID(grantID, nylas.ErrGrantIDRequired)
	if err != nil {
		return nil, err
	}

	options := nylas.RequestOptions{
		Method: http.MethodGet,
		Path:   grantPath(grantID, constants.MessagesResource),
		Query:  query.Values(),
	}
	options.Apply(opts...)

	return nylas.RequestList[nylas.Message](c.requester, options), nil
}

// Find implements nylas.MessagesClient.Find.
func (c *MessagesClient) Find(ctx context.Context, grantID, messageID string, opts ...nylas.CallOption) (*nylas.Response[nylas.Message], error) {
	err := c.check(grantID, messageID)
	if err != nil {
		return nil, err
	}

	options := &nylas.RequestOptions{
		Method: http.MethodGet,
		Path:   grantPath(grantID, constants.MessagesResource, messageID),
	}
	options.Apply(opts...)

	resp, err := nylas.Request[nylas.Message](ctx, c.requester, options)
	if err != nil {
		return nil, wrap("finding message", err)
	}

	return resp, nil
}

// Send implements nylas.MessagesClient.Send. Large attachments switch the
// body to multipart automatically.
func (c *MessagesClient) Send(ctx context.Context, grantID string, req *nylas.SendMessageRequest, opts ...nylas.CallOption) (*nylas.Response[nylas.Message], error) {
	err := requireID(grantID, nylas.ErrGrantIDRequired)
	if err != nil {
		return nil, err
	}

	if req == nil {
		return nil, nylas.NewConfigError(nylas.ErrConfigRequired)
	}

	err = req.Validate()
	if err != nil {
		return nil, err
	}

	options := &nylas.RequestOptions{
		Method:      http.MethodPost,
		Path:        grantPath(grantID, constants.MessagesResource, constants.MessagesSendAction),
		Body:        req,
		Attachments: req.Attachments,
	}
	options.Apply(opts...)

	resp, err := nylas.Request[nylas.Message](ctx, c.requester, options)
	if err != nil {
		return nil, wrap("sending message", err)
	}

	return resp, nil
}

// Update implements nylas.MessagesClient.Update.
func (c *MessagesClient) Update(ctx context.Context, grantID, messageID string, req *nylas.UpdateMessageRequest, opts ...nylas.CallOption) (*nylas.Response[nylas.Message], error) {
	err := c.check(grantID, messageID)
	if err != nil {
		return nil, err
	}

	if req == nil {
		req = &nylas.UpdateMessageRequest{}
	}

	options := &nylas.RequestOptions{
		Method: http.MethodPut,
		Path:   grantPath(grantID, constants.MessagesResource, messageID),
		Body:   req,
	}
	options.Apply(opts...)

	resp, err := nylas.Request[nylas.Message](ctx, c.requester, options)
	if err != nil {
		return nil, wrap("updating message", err)
	}

	return resp, nil
}

// Destroy implements nylas.MessagesClient.Destroy.
func (c *MessagesClient) Destroy(ctx context.Context, grantID, messageID string, opts ...nylas.CallOption) (*nylas.DeleteResponse, error) {
	err := c.check(grantID, messageID)
	if err != nil {
		return nil, err
	}

	options := &nylas.RequestOptions{
		Method: http.MethodDelete,
		Path:   grantPath(grantID, constants.MessagesResource, messageID),
	}
	options.Apply(opts...)

	resp, err := nylas.Request[json.RawMessage](ctx, c.requester, options)
	if err != nil {
		return nil, wrap("deleting message", err)
	}

	return &nylas.DeleteResponse{RequestID: resp.RequestID}, nil
}

func (c *MessagesClient) check(grantID, messageID string) error {
	err := requireID(grantID, nylas.ErrGrantIDRequired)
	if err != nil {
		return err
	}

	return requireID(messageID, nylas.ErrMessageIDRequired)
}
