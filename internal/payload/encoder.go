// Package payload encodes request bodies as JSON or as a streamed
// multipart/form-data body, depending on their total size.
package payload

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"

	"github.com/hashicorp/go-multierror"

	"github.com/nylas/nylas-go/internal/constants"
	"github.com/nylas/nylas-go/pkg/nylas"
)

// Encoder chooses the wire encoding of a request body.
type Encoder struct {
	threshold int64
}

// NewEncoder creates an encoder. Bodies whose computed size is at or above
// threshold are sent as multipart. A threshold <= 0 selects the 3 MiB default.
func NewEncoder(threshold int64) *Encoder {
	if threshold <= 0 {
		threshold = constants.MaxJSONPayloadSize
	}

	return &Encoder{threshold: threshold}
}

// Threshold returns the size at which multipart encoding starts.
func (e *Encoder) Threshold() int64 {
	return e.threshold
}

// Payload is an encoded request body.
type Payload struct {
	ContentType string
	Multipart   bool
	// Size is the computed size used for the encoding decision: the JSON
	// length of the non-attachment fields plus every declared attachment size.
	Size int64

	data        []byte
	fields      []byte
	boundary    string
	attachments []nylas.Attachment
}

// ContentLength returns the exact body length for JSON payloads and -1 for
// multipart payloads, which are streamed.
func (p *Payload) ContentLength() int64 {
	if p.Multipart {
		return -1
	}

	return int64(len(p.data))
}

// NewBody returns a reader over the body. JSON bodies can be read any number
// of times. Multipart bodies are produced on first Read by a goroutine
// writing into a pipe; nothing is read from attachment content until then,
// and closing an unread body starts nothing.
func (p *Payload) NewBody() (io.ReadCloser, error) {
	if !p.Multipart {
		return io.NopCloser(bytes.NewReader(p.data)), nil
	}

	return &lazyBody{start: p.startMultipart}, nil
}

// Encode encodes body and attachments. Attachments are checked before
// anything is encoded; every failure is reported together. body must encode
// to a JSON object when attachments are present. A nil body without
// attachments yields a nil Payload.
func (e *Encoder) Encode(body any, attachments []nylas.Attachment) (*Payload, error) {
	if body == nil && len(attachments) == 0 {
		return nil, nil //nolint:nilnil
	}

	err := preflight(attachments)
	if err != nil {
		return nil, nylas.NewEncodingError(err)
	}

	fields, err := marshalFields(body, len(attachments) > 0)
	if err != nil {
		return nil, nylas.NewEncodingError(err)
	}

	size := int64(len(fields))
	for _, att := range attachments {
		size += att.Size
	}

	if size >= e.threshold {
		boundary := newBoundary()

		return &Payload{
			ContentType: constants.ContentTypeMultipart + "; boundary=" + boundary,
			Multipart:   true,
			Size:        size,
			fields:      fields,
			boundary:    boundary,
			attachments: attachments,
		}, nil
	}

	data, err := inlineAttachments(fields, attachments)
	if err != nil {
		return nil, nylas.NewEncodingError(err)
	}

	return &Payload{
		ContentType: constants.ContentTypeJSON,
		Size:        size,
		data:        data,
	}, nil
}

func preflight(attachments []nylas.Attachment) error {
	var result *multierror.Error

	for i := range attachments {
		att := &attachments[i]

		err := att.Validate()
		if err != nil {
			result = multierror.Append(result, err)

			continue
		}

		err = att.Content.Preflight()
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("attachment %q: %w", att.Filename, err))
		}
	}

	return result.ErrorOrNil()
}

// marshalFields encodes the non-attachment fields. With attachments the
// result is always a JSON object; a nil body becomes {}.
func marshalFields(body any, needObject bool) ([]byte, error) {
	if body == nil {
		return []byte("{}"), nil
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling request body: %w", err)
	}

	if !needObject {
		return data, nil
	}

	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		return []byte("{}"), nil
	}

	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, nylas.ErrNotAnObject
	}

	return data, nil
}

type inlineAttachment struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	Content     string `json:"content"`
	ContentID   string `json:"content_id,omitempty"`
	IsInline    bool   `json:"is_inline,omitempty"`
}

// inlineAttachments adds attachments to the fields object under
// "attachments". Fields are returned unchanged when there are none.
func inlineAttachments(fields []byte, attachments []nylas.Attachment) ([]byte, error) {
	if len(attachments) == 0 {
		return fields, nil
	}

	object := map[string]json.RawMessage{}

	err := json.Unmarshal(fields, &object)
	if err != nil {
		return nil, fmt.Errorf("decoding request fields: %w", err)
	}

	inlined := make([]inlineAttachment, 0, len(attachments))

	for _, att := range attachments {
		content, err := att.Content.Inline()
		if err != nil {
			return nil, fmt.Errorf("attachment %q: %w", att.Filename, err)
		}

		inlined = append(inlined, inlineAttachment{
			Filename:    att.Filename,
			ContentType: att.ContentType,
			Size:        att.Size,
			Content:     content,
			ContentID:   att.ContentID,
			IsInline:    att.IsInline,
		})
	}

	encoded, err := json.Marshal(inlined)
	if err != nil {
		return nil, fmt.Errorf("marshaling attachments: %w", err)
	}

	object["attachments"] = encoded

	data, err := json.Marshal(object)
	if err != nil {
		return nil, fmt.Errorf("marshaling request body: %w", err)
	}

	return data, nil
}

func newBoundary() string {
	return multipart.NewWriter(io.Discard).Boundary()
}
