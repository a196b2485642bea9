package commands

import (
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/nylas/nylas-go/internal/constants"
	"github.com/nylas/nylas-go/pkg/nylas"
)

// NewCalendarsCommand creates the calendars command group.
func NewCalendarsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "calendars",
		Aliases: []string{"calendar", "cal"},
		Short:   "Manage calendars",
		Long:    "List and view calendars of a grant",
	}

	cmd.AddCommand(newCalendarsListCommand())
	cmd.AddCommand(newCalendarsGetCommand())

	return cmd
}

func newCalendarsListCommand() *cobra.Command {
	var (
		grant string
		limit int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List calendars",
		RunE: func(cmd *cobra.Command, args []string) error {
			grantID, err := resolveGrant(grant)
			if err != nil {
				return err
			}

			client, err := newClient()
			if err != nil {
				return err
			}

			iterator, err := client.Calendars().List(grantID, &nylas.ListCalendarsQuery{Limit: limit})
			if err != nil {
				return err
			}

			calendars, err := iterator.All(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list calendars: %w", err)
			}

			format := outputFormat()
			if format == constants.FormatJSON || format == constants.FormatYAML {
				return encode(cmd.OutOrStdout(), format, calendars)
			}

			if len(calendars) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No calendars found")

				return nil
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.Header("ID", "Name", "Timezone", "Primary", "Read Only")

			for _, calendar := range calendars {
				_ = table.Append(
					calendar.ID,
					calendar.Name,
					calendar.Timezone,
					fmt.Sprintf("%t", calendar.IsPrimary),
					fmt.Sprintf("%t", calendar.ReadOnly),
				)
			}

			if err := table.Render(); err != nil {
				return fmt.Errorf("failed to render table: %w", err)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&grant, "grant", "g", "", "grant ID")
	cmd.Flags().IntVarP(&limit, "limit", "l", 0, "page size")

	return cmd
}

func newCalendarsGetCommand() *cobra.Command {
	var grant string

	cmd := &cobra.Command{
		Use:   "get CALENDAR_ID",
		Short: "Get calendar details",
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

			resp, err := client.Calendars().Find(cmd.Context(), grantID, args[0])
			if err != nil {
				return err
			}

			format := outputFormat()
			if format == constants.FormatJSON || format == constants.FormatYAML {
				return encode(cmd.OutOrStdout(), format, resp.Data)
			}

			calendar := resp.Data
			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.Header("Property", "Value")
			_ = table.Append("ID", calendar.ID)
			_ = table.Append("Name", calendar.Name)
			_ = table.Append("Description", calendar.Description)
			_ = table.Append("Timezone", calendar.Timezone)
			_ = table.Append("Primary", fmt.Sprintf("%t", calendar.IsPrimary))

			if err := table.Render(); err != nil {
				return fmt.Errorf("failed to render table: %w", err)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&grant, "grant", "g", "", "grant ID")

	return cmd
}
