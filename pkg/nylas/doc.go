// Package nylas provides the types, errors and helpers shared by every
// Nylas API call.
//
// # Overview
//
// The package defines the request options and response envelopes, the
// attachment content variants, the typed error taxonomy and the list
// iterator. A concrete client is built by the nylasclient package:
//
//	cli, err := nylasclient.New(&nylas.Config{APIKey: os.Getenv("NYLAS_API_KEY")})
//	if err != nil { log.Fatal(err) }
//
//	msg, err := cli.Messages().Find(ctx, grantID, messageID)
//
// # Pagination
//
// List calls return a ListIterator. First returns the first page; Next and
// Pages walk every page by following next_cursor:
//
//	it, _ := cli.Messages().List(grantID, &nylas.ListMessagesQuery{Limit: 50})
//	for page, err := range it.Pages(ctx) {
//	  if err != nil { break }
//	  _ = page.Data
//	}
//
// # Attachments
//
// Requests with a total size below 3 MiB are sent as JSON with attachments
// inlined as base64. Larger requests are streamed as multipart/form-data.
// Attachment content is one of BytesContent, Base64Content, FileContent or
// a StreamContent created with NewStreamContent.
//
// # Errors
//
// Every error implements Error. Local failures are *SdkError, server
// failures are *APIError, *RateLimitError or *OAuthError. Helpers such as
// IsNotFound, IsRateLimited and IsTimeout branch on common cases.
package nylas
