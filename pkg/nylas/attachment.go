package nylas

import (
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/nylas/nylas-go/internal/constants"
)

// ContentKind identifies an AttachmentContent variant.
type ContentKind string

const (
	ContentKindBase64 ContentKind = "base64"
	ContentKindBytes  ContentKind = "bytes"
	ContentKindStream ContentKind = "stream"
	ContentKindFile   ContentKind = "file"
)

// AttachmentContent is the closed set of attachment content shapes:
// Base64Content, BytesContent, FileContent and *StreamContent.
type AttachmentContent interface {
	// Kind returns the variant tag.
	Kind() ContentKind
	// WriteTo streams the content into a multipart part.
	WriteTo(w io.Writer) (int64, error)
	// Inline returns the content as the string value used in a JSON body.
	Inline() (string, error)
	// Preflight reports whether the content can be read, without consuming it.
	Preflight() error

	attachmentContent()
}

// Attachment describes one file sent with a request.
//
// Size must be the byte length of the content as it appears on the wire.
// For Base64Content that is the length of the encoded string. The encoder
// trusts it and never measures the content itself.
type Attachment struct {
	Filename    string            `json:"filename"             validate:"required"`
	ContentType string            `json:"content_type"         validate:"required"`
	Size        int64             `json:"size"                 validate:"gte=0"`
	ContentID   string            `json:"content_id,omitempty"`
	IsInline    bool              `json:"is_inline,omitempty"`
	Content     AttachmentContent `json:"-"`
}

// Validate checks the descriptor fields and the presence of content.
func (a *Attachment) Validate() error {
	err := validate.Struct(a)
	if err != nil {
		return fmt.Errorf("attachment %q: %w", a.Filename, err)
	}

	if a.Content == nil {
		return fmt.Errorf("attachment %q: %w", a.Filename, ErrNilContent)
	}

	return nil
}

// AttachmentFromFile builds a file-backed attachment, filling the filename
// and size from the file system. An empty contentType is guessed from the
// extension.
func AttachmentFromFile(path, contentType string) (Attachment, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Attachment{}, fmt.Errorf("reading attachment file: %w", err)
	}

	if !info.Mode().IsRegular() {
		return Attachment{}, fmt.Errorf("%w: %s", ErrNotRegularFile, path)
	}

	if contentType == "" {
		contentType = mime.TypeByExtension(filepath.Ext(path))
	}

	if contentType == "" {
		contentType = constants.ContentTypeOctet
	}

	return Attachment{
		Filename:    filepath.Base(path),
		ContentType: contentType,
		Size:        info.Size(),
		Content:     FileContent(path),
	}, nil
}

// NewBase64Attachment builds an attachment from pre-encoded content; Size is
// the encoded length.
func NewBase64Attachment(filename, contentType, encoded string) Attachment {
	return Attachment{
		Filename:    filename,
		ContentType: contentType,
		Size:        int64(len(encoded)),
		Content:     Base64Content(encoded),
	}
}

// Base64Content is pre-encoded content passed through verbatim.
type Base64Content string

func (Base64Content) attachmentContent() {}

// Kind implements AttachmentContent.
func (Base64Content) Kind() ContentKind { return ContentKindBase64 }

// WriteTo implements AttachmentContent.
func (c Base64Content) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, string(c))

	return int64(n), err
}

// Inline implements AttachmentContent.
func (c Base64Content) Inline() (string, error) { return string(c), nil }

// Preflight implements AttachmentContent.
func (Base64Content) Preflight() error { return nil }

// BytesContent is raw in-memory content.
type BytesContent []byte

func (BytesContent) attachmentContent() {}

// Kind implements AttachmentContent.
func (BytesContent) Kind() ContentKind { return ContentKindBytes }

// WriteTo implements AttachmentContent. The slice is written as one chunk.
func (c BytesContent) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(c)

	return int64(n), err
}

// Inline implements AttachmentContent.
func (c BytesContent) Inline() (string, error) {
	return base64.StdEncoding.EncodeToString(c), nil
}

// Preflight implements AttachmentContent.
func (BytesContent) Preflight() error { return nil }

// FileContent is content read from a file path when the request is sent.
type FileContent string

func (FileContent) attachmentContent() {}

// Kind implements AttachmentContent.
func (FileContent) Kind() ContentKind { return ContentKindFile }

// WriteTo implements AttachmentContent. The file is piped into w.
func (c FileContent) WriteTo(w io.Writer) (int64, error) {
	file, err := os.Open(string(c))
	if err != nil {
		return 0, fmt.Errorf("opening attachment file: %w", err)
	}
	defer file.Close()

	return io.Copy(w, file)
}

// Inline implements AttachmentContent.
func (c FileContent) Inline() (string, error) { return encodeInline(c) }

// Preflight implements AttachmentContent. The file must exist, be a regular
// file and be readable.
func (c FileContent) Preflight() error {
	file, err := os.Open(string(c))
	if err != nil {
		return fmt.Errorf("opening attachment file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("reading attachment file: %w", err)
	}

	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s", ErrNotRegularFile, string(c))
	}

	return nil
}

// StreamContent is single-use content read from an io.Reader. If the reader
// is also an io.Closer it is closed once the content has been written.
type StreamContent struct {
	reader   io.Reader
	consumed atomic.Bool
}

// NewStreamContent wraps r.
func NewStreamContent(r io.Reader) *StreamContent {
	return &StreamContent{reader: r}
}

func (*StreamContent) attachmentContent() {}

// Kind implements AttachmentContent.
func (*StreamContent) Kind() ContentKind { return ContentKindStream }

// WriteTo implements AttachmentContent. A second call fails with ErrStreamConsumed.
func (c *StreamContent) WriteTo(w io.Writer) (int64, error) {
	err := c.Preflight()
	if err != nil {
		return 0, err
	}

	if c.consumed.Swap(true) {
		return 0, ErrStreamConsumed
	}

	if closer, ok := c.reader.(io.Closer); ok {
		defer closer.Close()
	}

	n, err := io.Copy(w, c.reader)
	if err != nil {
		return n, fmt.Errorf("reading attachment stream: %w", err)
	}

	return n, nil
}

// Inline implements AttachmentContent.
func (c *StreamContent) Inline() (string, error) { return encodeInline(c) }

// Preflight implements AttachmentContent.
func (c *StreamContent) Preflight() error {
	if c.reader == nil {
		return ErrNilReader
	}

	if c.consumed.Load() {
		return ErrStreamConsumed
	}

	return nil
}

// encodeInline base64-encodes everything c writes.
func encodeInline(c io.WriterTo) (string, error) {
	var buf strings.Builder

	enc := base64.NewEncoder(base64.StdEncoding, &buf)

	_, err := c.WriteTo(enc)
	if err != nil {
		return "", err
	}

	err = enc.Close()
	if err != nil {
		return "", fmt.Errorf("encoding attachment: %w", err)
	}

	return buf.String(), nil
}
