package payload_test

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nylas/nylas-go/internal/constants"
	"github.com/nylas/nylas-go/internal/payload"
	"github.com/nylas/nylas-go/pkg/nylas"
)

type message struct {
	Subject string `json:"subject"`
}

type decodedPart struct {
	name        string
	filename    string
	contentType string
	data        []byte
}

func readAll(t *testing.T, p *payload.Payload) []byte {
	t.Helper()

	body, err := p.NewBody()
	require.NoError(t, err)

	defer body.Close()

	data, err := io.ReadAll(body)
	require.NoError(t, err)

	return data
}

func decodeMultipart(t *testing.T, p *payload.Payload) []decodedPart {
	t.Helper()

	mediaType, params, err := mime.ParseMediaType(p.ContentType)
	require.NoError(t, err)
	require.Equal(t, "multipart/form-data", mediaType)

	reader := multipart.NewReader(bytes.NewReader(readAll(t, p)), params["boundary"])

	var parts []decodedPart

	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}

		require.NoError(t, err)

		data, err := io.ReadAll(part)
		require.NoError(t, err)

		parts = append(parts, decodedPart{
			name:        part.FormName(),
			filename:    part.FileName(),
			contentType: part.Header.Get("Content-Type"),
			data:        data,
		})
	}

	return parts
}

func bytesAttachment(name string, size int) nylas.Attachment {
	return nylas.Attachment{
		Filename:    name,
		ContentType: "application/octet-stream",
		Size:        int64(size),
		Content:     nylas.BytesContent(bytes.Repeat([]byte{'x'}, size)),
	}
}

func TestEncoder_SmallAttachmentsUseJSON(t *testing.T) {
	t.Parallel()

	small := []nylas.Attachment{bytesAttachment("a.bin", 10*1024), bytesAttachment("b.bin", 20*1024)}

	p, err := payload.NewEncoder(0).Encode(&message{Subject: "hi"}, small)
	require.NoError(t, err)

	assert.False(t, p.Multipart)
	assert.Equal(t, "application/json", p.ContentType)

	data := readAll(t, p)
	assert.Equal(t, int64(len(data)), p.ContentLength())

	var decoded struct {
		Subject     string `json:"subject"`
		Attachments []struct {
			Filename string `json:"filename"`
			Size     int64  `json:"size"`
			Content  string `json:"content"`
		} `json:"attachments"`
	}

	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "hi", decoded.Subject)
	require.Len(t, decoded.Attachments, 2)

	raw, err := base64.StdEncoding.DecodeString(decoded.Attachments[1].Content)
	require.NoError(t, err)
	assert.Len(t, raw, 20*1024)
	assert.Equal(t, "b.bin", decoded.Attachments[1].Filename)
}

func TestEncoder_LargeAttachmentSwitchesToMultipart(t *testing.T) {
	t.Parallel()

	attachments := []nylas.Attachment{
		bytesAttachment("a.bin", 10*1024),
		bytesAttachment("b.bin", 20*1024),
		bytesAttachment("c.bin", 4*1024*1024),
	}

	p, err := payload.NewEncoder(0).Encode(&message{Subject: "big"}, attachments)
	require.NoError(t, err)
	require.True(t, p.Multipart)
	assert.Equal(t, int64(-1), p.ContentLength())

	parts := decodeMultipart(t, p)
	require.Len(t, parts, 4)

	assert.Equal(t, "message", parts[0].name)
	assert.Equal(t, "application/json", parts[0].contentType)
	assert.JSONEq(t, `{"subject":"big"}`, string(parts[0].data))

	files := 0

	for i, part := range parts[1:] {
		assert.Equal(t, payload.PartName(attachments[i], i), part.name)
		assert.Equal(t, attachments[i].Filename, part.filename)
		assert.Len(t, part.data, int(attachments[i].Size))

		files++
	}

	assert.Equal(t, 3, files)
}

func TestEncoder_ThresholdBoundary(t *testing.T) {
	t.Parallel()

	encoder := payload.NewEncoder(100)
	assert.Equal(t, int64(100), encoder.Threshold())

	// "{}" contributes two bytes.
	below, err := encoder.Encode(nil, []nylas.Attachment{bytesAttachment("a", 97)})
	require.NoError(t, err)
	assert.False(t, below.Multipart)
	assert.Equal(t, int64(99), below.Size)

	exact, err := encoder.Encode(nil, []nylas.Attachment{bytesAttachment("a", 98)})
	require.NoError(t, err)
	assert.True(t, exact.Multipart)
	assert.Equal(t, int64(100), exact.Size)

	assert.Equal(t, int64(constants.MaxJSONPayloadSize), payload.NewEncoder(0).Threshold())
	assert.Equal(t, int64(3*1024*1024), payload.NewEncoder(-5).Threshold())
}

func TestEncoder_LargeBodyWithoutAttachments(t *testing.T) {
	t.Parallel()

	body := map[string]string{"body": strings.Repeat("y", 200)}

	p, err := payload.NewEncoder(100).Encode(body, nil)
	require.NoError(t, err)
	require.True(t, p.Multipart)

	parts := decodeMultipart(t, p)
	require.Len(t, parts, 1)
	assert.Equal(t, "message", parts[0].name)
}

func TestEncoder_MultipartRoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "photo.jpg")
	fileBytes := []byte{0xff, 0xd8, 0xff, 0x00, 0x01}
	require.NoError(t, os.WriteFile(path, fileBytes, 0o600))

	streamBytes := []byte("streamed \x00 content")
	bufferBytes := []byte{1, 2, 3, 4}
	encoded := base64.StdEncoding.EncodeToString([]byte("pre-encoded"))

	attachments := []nylas.Attachment{
		{Filename: "photo.jpg", ContentType: "image/jpeg", Size: int64(len(fileBytes)), Content: nylas.FileContent(path)},
		{Filename: "s.txt", ContentType: "text/plain", Size: int64(len(streamBytes)), Content: nylas.NewStreamContent(bytes.NewReader(streamBytes))},
		{Filename: "b.bin", ContentType: "application/octet-stream", Size: int64(len(bufferBytes)), Content: nylas.BytesContent(bufferBytes), ContentID: "inline-logo", IsInline: true},
		nylas.NewBase64Attachment("e.txt", "text/plain", encoded),
	}

	p, err := payload.NewEncoder(1).Encode(&message{Subject: "mixed"}, attachments)
	require.NoError(t, err)
	require.True(t, p.Multipart)

	parts := decodeMultipart(t, p)
	require.Len(t, parts, 5)

	assert.Equal(t, "file0", parts[1].name)
	assert.Equal(t, fileBytes, parts[1].data)
	assert.Equal(t, "image/jpeg", parts[1].contentType)

	assert.Equal(t, "file1", parts[2].name)
	assert.Equal(t, streamBytes, parts[2].data)

	assert.Equal(t, "inline-logo", parts[3].name)
	assert.Equal(t, bufferBytes, parts[3].data)

	assert.Equal(t, "file3", parts[4].name)
	assert.Equal(t, encoded, string(parts[4].data), "string content is passed through verbatim")
}

func TestEncoder_JSONRoundTrip(t *testing.T) {
	t.Parallel()

	raw := []byte{0x00, 0x10, 0xfe}
	encoded := base64.StdEncoding.EncodeToString([]byte("pre"))

	attachments := []nylas.Attachment{
		{Filename: "r.bin", ContentType: "application/octet-stream", Size: 3, Content: nylas.NewStreamContent(bytes.NewReader(raw))},
		nylas.NewBase64Attachment("p.txt", "text/plain", encoded),
	}

	p, err := payload.NewEncoder(0).Encode(nil, attachments)
	require.NoError(t, err)
	require.False(t, p.Multipart)

	var decoded struct {
		Attachments []struct {
			Content string `json:"content"`
		} `json:"attachments"`
	}

	require.NoError(t, json.Unmarshal(readAll(t, p), &decoded))
	require.Len(t, decoded.Attachments, 2)

	got, err := base64.StdEncoding.DecodeString(decoded.Attachments[0].Content)
	require.NoError(t, err)
	assert.Equal(t, raw, got)
	assert.Equal(t, encoded, decoded.Attachments[1].Content)
}

func TestEncoder_PreflightAggregatesErrors(t *testing.T) {
	t.Parallel()

	consumed := nylas.NewStreamContent(strings.NewReader("x"))
	_, err := consumed.WriteTo(io.Discard)
	require.NoError(t, err)

	untouched := nylas.NewStreamContent(strings.NewReader("keep"))

	attachments := []nylas.Attachment{
		{Filename: "missing.txt", ContentType: "text/plain", Size: 1, Content: nylas.FileContent(filepath.Join(t.TempDir(), "missing.txt"))},
		{Filename: "used.txt", ContentType: "text/plain", Size: 1, Content: consumed},
		{Filename: "ok.txt", ContentType: "text/plain", Size: 4, Content: untouched},
	}

	_, err = payload.NewEncoder(0).Encode(nil, attachments)
	require.Error(t, err)
	assert.Equal(t, nylas.KindEncoding, nylas.KindOf(err))
	require.ErrorIs(t, err, nylas.ErrStreamConsumed)
	require.ErrorIs(t, err, os.ErrNotExist)

	merr := &multierror.Error{}
	require.ErrorAs(t, err, &merr)
	assert.Len(t, merr.Errors, 2)

	require.NoError(t, untouched.Preflight(), "a failed encode must not read valid attachments")
}

func TestEncoder_Rejections(t *testing.T) {
	t.Parallel()

	encoder := payload.NewEncoder(0)

	p, err := encoder.Encode(nil, nil)
	require.NoError(t, err)
	assert.Nil(t, p)

	_, err = encoder.Encode([]string{"not", "an", "object"}, []nylas.Attachment{bytesAttachment("a", 1)})
	require.ErrorIs(t, err, nylas.ErrNotAnObject)

	_, err = encoder.Encode(map[string]any{"bad": make(chan int)}, nil)
	require.Error(t, err)
	assert.Equal(t, nylas.KindEncoding, nylas.KindOf(err))

	list, err := encoder.Encode([]string{"a"}, nil)
	require.NoError(t, err)
	assert.Equal(t, `["a"]`, string(readAll(t, list)))
}

func TestPayload_LazyMultipartBody(t *testing.T) {
	t.Parallel()

	stream := nylas.NewStreamContent(strings.NewReader("lazy"))
	attachments := []nylas.Attachment{{Filename: "l.txt", ContentType: "text/plain", Size: 4, Content: stream}}

	p, err := payload.NewEncoder(1).Encode(nil, attachments)
	require.NoError(t, err)

	probe, err := p.NewBody()
	require.NoError(t, err)
	require.NoError(t, probe.Close())

	require.NoError(t, stream.Preflight(), "closing an unread body must not consume content")

	_, err = probe.Read(make([]byte, 1))
	require.ErrorIs(t, err, io.ErrClosedPipe)

	parts := decodeMultipart(t, p)
	require.Len(t, parts, 2)
	assert.Equal(t, "lazy", string(parts[1].data))
}

func TestPayload_StreamErrorMidBody(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "gone.txt")
	require.NoError(t, os.WriteFile(path, []byte("soon gone"), 0o600))

	attachments := []nylas.Attachment{{Filename: "gone.txt", ContentType: "text/plain", Size: 9, Content: nylas.FileContent(path)}}

	p, err := payload.NewEncoder(1).Encode(nil, attachments)
	require.NoError(t, err)

	require.NoError(t, os.Remove(path))

	body, err := p.NewBody()
	require.NoError(t, err)

	defer body.Close()

	_, err = io.ReadAll(body)

	streamErr := &payload.StreamError{}
	require.ErrorAs(t, err, &streamErr)
	assert.Equal(t, "file0", streamErr.Part)
}
