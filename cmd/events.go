package cmd

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/teemow/calmux/internal/aggregate"
	"github.com/teemow/calmux/internal/export"
	"github.com/teemow/calmux/internal/provider"
	"github.com/teemow/calmux/internal/temporal"
)

// eventWindow holds the flags shared by events list and export.
type eventWindow struct {
	calendarIDs []string
	from        string
	to          string
}

func (w *eventWindow) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&w.calendarIDs, "calendar", nil, "Only read these calendar IDs (repeatable)")
	cmd.Flags().StringVar(&w.from, "from", "", "Window start: date, instant or zoned date-time (default: now)")
	cmd.Flags().StringVar(&w.to, "to", "", "Window end (default: 30 days after now)")
}

// request builds the aggregation request. Plain dates are read in timeZone.
func (w *eventWindow) request(timeZone string) (aggregate.ListEventsRequest, error) {
	req := aggregate.ListEventsRequest{CalendarIDs: w.calendarIDs, TimeZone: timeZone}

	var err error
	if req.TimeMin, err = parseBound(w.from, timeZone); err != nil {
		return req, fmt.Errorf("invalid --from: %w", err)
	}
	if req.TimeMax, err = parseBound(w.to, timeZone); err != nil {
		return req, fmt.Errorf("invalid --to: %w", err)
	}
	if req.TimeMin != nil && req.TimeMax != nil && req.TimeMax.Before(*req.TimeMin) {
		return req, fmt.Errorf("--to must not be before --from")
	}
	return req, nil
}

func parseBound(s, timeZone string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	v, err := temporal.Parse(s)
	if err != nil {
		return nil, err
	}
	t, err := temporal.ToInstant(v, timeZone)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func newEventsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "List or export the merged events of all accounts",
	}

	cmd.AddCommand(newEventsListCmd())
	cmd.AddCommand(newEventsExportCmd())
	return cmd
}

func newEventsListCmd() *cobra.Command {
	var (
		window eventWindow
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List events ordered by start time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setupApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			req, err := window.request(a.cfg.TimeZone)
			if err != nil {
				return err
			}
			events, err := a.aggregator.ListEvents(a.context(cmd), a.user(), req)
			if err != nil {
				return err
			}

			if asJSON {
				if events == nil {
					events = []provider.CalendarEvent{}
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]any{"events": events})
			}
			return printEvents(cmd.OutOrStdout(), events, a.cfg.TimeZone)
		},
	}

	window.addFlags(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the events as JSON")
	return cmd
}

func printEvents(w io.Writer, events []provider.CalendarEvent, timeZone string) error {
	if len(events) == 0 {
		_, err := fmt.Fprintln(w, "No events.")
		return err
	}

	loc, err := temporal.LoadLocation(timeZone)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "START\tEND\tTITLE\tPROVIDER\tACCOUNT\tCALENDAR")
	for _, ev := range events {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			formatValue(ev.Start, loc), formatValue(ev.End, loc), ev.Title, ev.ProviderID, ev.AccountID, ev.CalendarID)
	}
	return tw.Flush()
}

// formatValue shows dates as dates and date-times in loc.
func formatValue(v temporal.Value, loc *time.Location) string {
	switch {
	case v.IsZero():
		return "-"
	case v.IsDate():
		return v.Date().String()
	default:
		return v.Time().In(loc).Format("2006-01-02 15:04")
	}
}

func newEventsExportCmd() *cobra.Command {
	var (
		window eventWindow
		output string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export events as an iCalendar (.ics) file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setupApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			req, err := window.request(a.cfg.TimeZone)
			if err != nil {
				return err
			}
			events, err := a.aggregator.ListEvents(a.context(cmd), a.user(), req)
			if err != nil {
				return err
			}

			if output == "" || output == "-" {
				return export.WriteICS(cmd.OutOrStdout(), events, time.Now())
			}

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("failed to create output file: %w", err)
			}
			if err := export.WriteICS(f, events, time.Now()); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("failed to write output file: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d events to %s\n", len(events), output)
			return nil
		},
	}

	window.addFlags(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")
	return cmd
}
