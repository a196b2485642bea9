package payload

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strconv"
	"strings"
	"sync"

	"github.com/nylas/nylas-go/internal/constants"
	"github.com/nylas/nylas-go/pkg/nylas"
)

// StreamError is a failure that happened while the multipart body was being
// produced, after the request had started.
type StreamError struct {
	Part string
	Err  error
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("writing multipart part %q: %v", e.Part, e.Err)
}

func (e *StreamError) Unwrap() error {
	return e.Err
}

// PartName returns the form field name of the attachment at index.
func PartName(att nylas.Attachment, index int) string {
	if att.ContentID != "" {
		return att.ContentID
	}

	return constants.AttachmentPartPrefix + strconv.Itoa(index)
}

func (p *Payload) startMultipart() *io.PipeReader {
	pr, pw := io.Pipe()

	go func() {
		mw := multipart.NewWriter(pw)

		err := mw.SetBoundary(p.boundary)
		if err == nil {
			err = p.writeParts(mw)
		}

		if err == nil {
			err = mw.Close()
		}

		_ = pw.CloseWithError(err)
	}()

	return pr
}

func (p *Payload) writeParts(mw *multipart.Writer) error {
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="`+constants.MessagePartName+`"`)
	header.Set("Content-Type", constants.ContentTypeJSON)

	part, err := mw.CreatePart(header)
	if err != nil {
		return &StreamError{Part: constants.MessagePartName, Err: err}
	}

	_, err = part.Write(p.fields)
	if err != nil {
		return &StreamError{Part: constants.MessagePartName, Err: err}
	}

	for i, att := range p.attachments {
		name := PartName(att, i)

		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name="%s"; filename="%s"`, escapeQuotes(name), escapeQuotes(att.Filename)))
		header.Set("Content-Type", att.ContentType)

		part, err := mw.CreatePart(header)
		if err != nil {
			return &StreamError{Part: name, Err: err}
		}

		_, err = att.Content.WriteTo(part)
		if err != nil {
			return &StreamError{Part: name, Err: err}
		}
	}

	return nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

// lazyBody starts the multipart writer on first Read.
type lazyBody struct {
	mu     sync.Mutex
	start  func() *io.PipeReader
	reader *io.PipeReader
	closed bool
}

func (b *lazyBody) pipe() (*io.PipeReader, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, io.ErrClosedPipe
	}

	if b.reader == nil {
		b.reader = b.start()
	}

	return b.reader, nil
}

func (b *lazyBody) Read(p []byte) (int, error) {
	reader, err := b.pipe()
	if err != nil {
		return 0, err
	}

	return reader.Read(p)
}

// Close stops the writer goroutine if it was started.
func (b *lazyBody) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true

	if b.reader != nil {
		return b.reader.Close()
	}

	return nil
}
