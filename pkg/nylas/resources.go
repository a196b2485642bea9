package nylas

import (
	"net/url"
	"strconv"
)

// EmailName is a participant of a message.
type EmailName struct {
	Email string `json:"email"          yaml:"email"          validate:"required,email"`
	Name  string `json:"name,omitempty" yaml:"name,omitempty"`
}

// AttachmentInfo describes an attachment already stored with a message.
type AttachmentInfo struct {
	ID          string `json:"id"                   yaml:"id"`
	GrantID     string `json:"grant_id,omitempty"   yaml:"grant_id,omitempty"`
	Filename    string `json:"filename"             yaml:"filename"`
	ContentType string `json:"content_type"         yaml:"content_type"`
	Size        int64  `json:"size"                 yaml:"size"`
	ContentID   string `json:"content_id,omitempty" yaml:"content_id,omitempty"`
	IsInline    bool   `json:"is_inline,omitempty"  yaml:"is_inline,omitempty"`
}

// Message represents an email message.
type Message struct {
	ID          string            `json:"id"                    yaml:"id"`
	GrantID     string            `json:"grant_id"              yaml:"grant_id"`
	Object      string            `json:"object,omitempty"      yaml:"object,omitempty"`
	ThreadID    string            `json:"thread_id,omitempty"   yaml:"thread_id,omitempty"`
	Subject     string            `json:"subject"               yaml:"subject"`
	Body        string            `json:"body,omitempty"        yaml:"body,omitempty"`
	Snippet     string            `json:"snippet,omitempty"     yaml:"snippet,omitempty"`
	From        []EmailName       `json:"from,omitempty"        yaml:"from,omitempty"`
	To          []EmailName       `json:"to,omitempty"          yaml:"to,omitempty"`
	Cc          []EmailName       `json:"cc,omitempty"          yaml:"cc,omitempty"`
	Bcc         []EmailName       `json:"bcc,omitempty"         yaml:"bcc,omitempty"`
	ReplyTo     []EmailName       `json:"reply_to,omitempty"    yaml:"reply_to,omitempty"`
	Date        int64             `json:"date,omitempty"        yaml:"date,omitempty"`
	Unread      bool              `json:"unread"                yaml:"unread"`
	Starred     bool              `json:"starred"               yaml:"starred"`
	Folders     []string          `json:"folders,omitempty"     yaml:"folders,omitempty"`
	Attachments []AttachmentInfo  `json:"attachments,omitempty" yaml:"attachments,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"    yaml:"metadata,omitempty"`
}

// SendMessageRequest represents a request to send a message. Attachments
// travel next to the JSON fields and are encoded by the payload encoder.
type SendMessageRequest struct {
	To               []EmailName       `json:"to"                            validate:"required,min=1,dive"`
	Cc               []EmailName       `json:"cc,omitempty"`
	Bcc              []EmailName       `json:"bcc,omitempty"`
	ReplyTo          []EmailName       `json:"reply_to,omitempty"`
	From             []EmailName       `json:"from,omitempty"`
	Subject          string            `json:"subject,omitempty"`
	Body             string            `json:"body,omitempty"`
	ReplyToMessageID string            `json:"reply_to_message_id,omitempty"`
	SendAt           int64             `json:"send_at,omitempty"`
	Metadata         map[string]string `json:"metadata,omitempty"`
	Attachments      []Attachment      `json:"-"`
}

// Validate checks recipients are present.
func (r *SendMessageRequest) Validate() error {
	err := validate.Struct(r)
	if err != nil {
		return NewConfigError(err)
	}

	return nil
}

// UpdateMessageRequest represents a request to update a message; nil fields
// are left unchanged.
type UpdateMessageRequest struct {
	Unread   *bool             `json:"unread,omitempty"`
	Starred  *bool             `json:"starred,omitempty"`
	Folders  []string          `json:"folders,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// ListMessagesQuery holds the list filters for messages.
type ListMessagesQuery struct {
	Limit          int
	Subject        string
	AnyEmail       []string
	From           []string
	To             []string
	In             []string
	Unread         *bool
	Starred        *bool
	ThreadID       string
	ReceivedBefore int64
	ReceivedAfter  int64
	HasAttachment  *bool
	SearchQuery    string
	// MetadataPair filters on metadata; sent as "key:value".
	MetadataPair map[string]string
}

// Values encodes the query. A nil query encodes to empty values.
func (q *ListMessagesQuery) Values() url.Values {
	if q == nil {
		return url.Values{}
	}

	params := map[string]any{}
	if q.Limit > 0 {
		params["limit"] = q.Limit
	}

	setString(params, "subject", q.Subject)
	setString(params, "thread_id", q.ThreadID)
	setString(params, "search_query_native", q.SearchQuery)
	setStrings(params, "any_email", q.AnyEmail)
	setStrings(params, "from", q.From)
	setStrings(params, "to", q.To)
	setStrings(params, "in", q.In)
	setBool(params, "unread", q.Unread)
	setBool(params, "starred", q.Starred)
	setBool(params, "has_attachment", q.HasAttachment)

	if q.ReceivedBefore > 0 {
		params["received_before"] = strconv.FormatInt(q.ReceivedBefore, 10)
	}

	if q.ReceivedAfter > 0 {
		params["received_after"] = strconv.FormatInt(q.ReceivedAfter, 10)
	}

	if len(q.MetadataPair) > 0 {
		params["metadata_pair"] = q.MetadataPair
	}

	return EncodeQuery(params)
}

// Calendar represents a calendar of a grant.
type Calendar struct {
	ID            string            `json:"id"                    yaml:"id"`
	GrantID       string            `json:"grant_id"              yaml:"grant_id"`
	Object        string            `json:"object,omitempty"      yaml:"object,omitempty"`
	Name          string            `json:"name"                  yaml:"name"`
	Description   string            `json:"description,omitempty" yaml:"description,omitempty"`
	Location      string            `json:"location,omitempty"    yaml:"location,omitempty"`
	Timezone      string            `json:"timezone,omitempty"    yaml:"timezone,omitempty"`
	HexColor      string            `json:"hex_color,omitempty"   yaml:"hex_color,omitempty"`
	ReadOnly      bool              `json:"read_only"             yaml:"read_only"`
	IsOwnedByUser bool              `json:"is_owned_by_user"      yaml:"is_owned_by_user"`
	IsPrimary     bool              `json:"is_primary"            yaml:"is_primary"`
	Metadata      map[string]string `json:"metadata,omitempty"    yaml:"metadata,omitempty"`
}

// ListCalendarsQuery holds the list filters for calendars.
type ListCalendarsQuery struct {
	Limit        int
	MetadataPair map[string]string
}

// Values encodes the query. A nil query encodes to empty values.
func (q *ListCalendarsQuery) Values() url.Values {
	if q == nil {
		return url.Values{}
	}

	params := map[string]any{}
	if q.Limit > 0 {
		params["limit"] = q.Limit
	}

	if len(q.MetadataPair) > 0 {
		params["metadata_pair"] = q.MetadataPair
	}

	return EncodeQuery(params)
}

// DeleteResponse is returned by destroy operations.
type DeleteResponse struct {
	RequestID string `json:"request_id" yaml:"request_id"`
}

func setString(params map[string]any, key, value string) {
	if value != "" {
		params[key] = value
	}
}

func setStrings(params map[string]any, key string, values []string) {
	if len(values) > 0 {
		params[key] = values
	}
}

func setBool(params map[string]any, key string, value *bool) {
	if value != nil {
		params[key] = strconv.FormatBool(*value)
	}
}
