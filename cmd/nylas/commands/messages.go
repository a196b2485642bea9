package commands

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/nylas/nylas-go/internal/constants"
	"github.com/nylas/nylas-go/pkg/nylas"
)

// NewMessagesCommand creates the messages command group.
func NewMessagesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "messages",
		Aliases: []string{"message", "msg"},
		Short:   "Manage messages",
		Long:    "List, view, send and delete messages of a grant",
	}

	cmd.AddCommand(newMessagesListCommand())
	cmd.AddCommand(newMessagesGetCommand())
	cmd.AddCommand(newMessagesSendCommand())
	cmd.AddCommand(newMessagesDeleteCommand())

	return cmd
}

func newMessagesListCommand() *cobra.Command {
	var (
		grant    string
		limit    int
		all      bool
		in       []string
		anyEmail []string
		unread   bool
		search   string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List messages",
		Long:  "List messages of a grant. Only the first page is shown unless --all is given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			grantID, err := resolveGrant(grant)
			if err != nil {
				return err
			}

			client, err := newClient()
			if err != nil {
				return err
			}

			query := &nylas.ListMessagesQuery{
				Limit:       limit,
				In:          in,
				AnyEmail:    anyEmail,
				SearchQuery: search,
			}
			if cmd.Flags().Changed("unread") {
				query.Unread = &unread
			}

			iterator, err := client.Messages().List(grantID, query)
			if err != nil {
				return err
			}

			var (
				messages   []nylas.Message
				nextCursor string
			)

			if all {
				messages, err = iterator.All(cmd.Context())
				if err != nil {
					return fmt.Errorf("failed to list messages: %w", err)
				}
			} else {
				page, err := iterator.First(cmd.Context())
				if err != nil {
					return fmt.Errorf("failed to list messages: %w", err)
				}

				messages = page.Data
				nextCursor = page.NextCursor
			}

			err = renderMessages(cmd.OutOrStdout(), messages)
			if err != nil {
				return err
			}

			if nextCursor != "" && outputFormat() == constants.FormatTable {
				_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "More messages available; use --all to fetch every page.")
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&grant, "grant", "g", "", "grant ID")
	cmd.Flags().IntVarP(&limit, "limit", "l", 0, "page size")
	cmd.Flags().BoolVar(&all, "all", false, "fetch all pages")
	cmd.Flags().StringSliceVar(&in, "in", nil, "folder or label IDs")
	cmd.Flags().StringSliceVar(&anyEmail, "any-email", nil, "participant email addresses")
	cmd.Flags().BoolVar(&unread, "unread", false, "only unread (or read with --unread=false) messages")
	cmd.Flags().StringVar(&search, "search", "", "provider native search query")

	return cmd
}

func newMessagesGetCommand() *cobra.Command {
	var grant string

	cmd := &cobra.Command{
		Use:   "get MESSAGE_ID",
		Short: "Get message details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			grantID, err := resolveGrant(grant)
			if err != nil {
				return err
			}

			client, err := newClient()
			if err != nil {
				return err
			}

			resp, err := client.Messages().Find(cmd.Context(), grantID, args[0])
			if err != nil {
				return err
			}

			format := outputFormat()
			if format == constants.FormatJSON || format == constants.FormatYAML {
				return encode(cmd.OutOrStdout(), format, resp.Data)
			}

			message := resp.Data
			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.Header("Property", "Value")
			_ = table.Append("ID", message.ID)
			_ = table.Append("Subject", message.Subject)
			_ = table.Append("From", formatParticipants(message.From))
			_ = table.Append("To", formatParticipants(message.To))
			_ = table.Append("Date", formatUnix(message.Date))
			_ = table.Append("Attachments", fmt.Sprintf("%d", len(message.Attachments)))
			_ = table.Append("Snippet", message.Snippet)

			if err := table.Render(); err != nil {
				return fmt.Errorf("failed to render table: %w", err)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&grant, "grant", "g", "", "grant ID")

	return cmd
}

func newMessagesSendCommand() *cobra.Command {
	var (
		grant   string
		to      []string
		cc      []string
		subject string
		body    string
		attach  []string
	)

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send a message",
		Long:  "Send a message. Files given with --attach are streamed; large sends switch to multipart automatically.",
		RunE: func(cmd *cobra.Command, args []string) error {
			grantID, err := resolveGrant(grant)
			if err != nil {
				return err
			}

			req := &nylas.SendMessageRequest{
				To:      participants(to),
				Cc:      participants(cc),
				Subject: subject,
				Body:    body,
			}

			for _, path := range attach {
				attachment, err := nylas.AttachmentFromFile(path, "")
				if err != nil {
					return fmt.Errorf("failed to attach %s: %w", path, err)
				}

				req.Attachments = append(req.Attachments, attachment)
			}

			client, err := newClient()
			if err != nil {
				return err
			}

			resp, err := client.Messages().Send(cmd.Context(), grantID, req)
			if err != nil {
				return err
			}

			format := outputFormat()
			if format == constants.FormatJSON || format == constants.FormatYAML {
				return encode(cmd.OutOrStdout(), format, resp.Data)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Sent message %s (request %s)\n", resp.Data.ID, resp.RequestID)

			return nil
		},
	}

	cmd.Flags().StringVarP(&grant, "grant", "g", "", "grant ID")
	cmd.Flags().StringSliceVar(&to, "to", nil, "recipient email addresses")
	cmd.Flags().StringSliceVar(&cc, "cc", nil, "cc email addresses")
	cmd.Flags().StringVarP(&subject, "subject", "s", "", "subject")
	cmd.Flags().StringVarP(&body, "body", "b", "", "message body")
	cmd.Flags().StringSliceVarP(&attach, "attach", "a", nil, "files to attach")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

func newMessagesDeleteCommand() *cobra.Command {
	var grant string

	cmd := &cobra.Command{
		Use:   "delete MESSAGE_ID",
		Short: "Delete a message",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			grantID, err := resolveGrant(grant)
			if err != nil {
				return err
			}

			client, err := newClient()
			if err != nil {
				return err
			}

			resp, err := client.Messages().Destroy(cmd.Context(), grantID, args[0])
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted message %s (request %s)\n", args[0], resp.RequestID)

			return nil
		},
	}

	cmd.Flags().StringVarP(&grant, "grant", "g", "", "grant ID")

	return cmd
}

func renderMessages(w io.Writer, messages []nylas.Message) error {
	format := outputFormat()
	if format == constants.FormatJSON || format == constants.FormatYAML {
		return encode(w, format, messages)
	}

	if len(messages) == 0 {
		_, _ = fmt.Fprintln(w, "No messages found")

		return nil
	}

	table := tablewriter.NewWriter(w)
	table.Header("ID", "Date", "From", "Subject", "Unread")

	for _, message := range messages {
		_ = table.Append(
			message.ID,
			formatUnix(message.Date),
			formatParticipants(message.From),
			message.Subject,
			fmt.Sprintf("%t", message.Unread),
		)
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

func participants(addresses []string) []nylas.EmailName {
	if len(addresses) == 0 {
		return nil
	}

	out := make([]nylas.EmailName, 0, len(addresses))
	for _, address := range addresses {
		out = append(out, nylas.EmailName{Email: address})
	}

	return out
}
