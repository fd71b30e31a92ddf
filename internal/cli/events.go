package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/mailbrief/internal/models"
)

var (
	eventsFrom  string
	eventsTo    string
	eventDesc   string
	eventStart  string
	eventEnd    string
	eventAllDay bool
	eventColor  string
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List and manage calendar events",
	Long: `List calendar events, including those derived from deadlines in
analyzed threads.

With no range flags, lists the next 30 days.

Subcommands:
  add  Create an event
  rm   Delete an event

Examples:
  mailbrief events
  mailbrief events --from 2026-09-01 --to 2026-09-30
  mailbrief events add "Budget review" --start "2026-09-04 14:00" --end "2026-09-04 15:00"`,
	RunE: runEventsList,
}

var eventsAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Create a calendar event",
	Args:  cobra.ExactArgs(1),
	RunE:  runEventsAdd,
}

var eventsRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a calendar event",
	Args:  cobra.ExactArgs(1),
	RunE:  runEventsRm,
}

func init() {
	eventsCmd.Flags().StringVar(&eventsFrom, "from", "", "range start (YYYY-MM-DD)")
	eventsCmd.Flags().StringVar(&eventsTo, "to", "", "range end (YYYY-MM-DD)")

	eventsAddCmd.Flags().StringVarP(&eventDesc, "description", "d", "", "event description")
	eventsAddCmd.Flags().StringVar(&eventStart, "start", "", "start time (YYYY-MM-DD or YYYY-MM-DD HH:MM)")
	eventsAddCmd.Flags().StringVar(&eventEnd, "end", "", "end time (defaults to one hour after start)")
	eventsAddCmd.Flags().BoolVar(&eventAllDay, "all-day", false, "all-day event")
	eventsAddCmd.Flags().StringVar(&eventColor, "color", "blue", "display color")

	eventsCmd.AddCommand(eventsAddCmd)
	eventsCmd.AddCommand(eventsRmCmd)
}

func runEventsList(cmd *cobra.Command, args []string) error {
	from, to := eventsFrom, eventsTo
	if from == "" && to == "" {
		now := time.Now()
		from = now.Format(time.RFC3339)
		to = now.AddDate(0, 0, 30).Format(time.RFC3339)
	} else {
		var err error
		if from, err = normalizeRangeBound(from); err != nil {
			return err
		}
		if to, err = normalizeRangeBound(to); err != nil {
			return err
		}
	}

	events, err := apiClient.ListEvents(context.Background(), from, to)
	if err != nil {
		return fmt.Errorf("list events: %w", err)
	}
	if len(events) == 0 {
		fmt.Println("No events in range.")
		return nil
	}

	for _, ev := range events {
		when := ev.StartTime.Local().Format("Mon Jan 2 15:04")
		if ev.AllDay {
			when = ev.StartTime.Local().Format("Mon Jan 2") + " (all day)"
		}
		fmt.Printf("%-8s %s  %s\n", models.MustRecordIDString(ev.ID), when, ev.Title)
		if verbose && ev.Description != "" {
			fmt.Printf("         %s\n", defaultTheme.hintStyle().Render(ev.Description))
		}
	}
	return nil
}

func runEventsAdd(cmd *cobra.Command, args []string) error {
	if eventStart == "" {
		return fmt.Errorf("--start is required")
	}
	start, err := parseEventTime(eventStart)
	if err != nil {
		return fmt.Errorf("invalid --start: %w", err)
	}

	end := start.Add(time.Hour)
	if eventEnd != "" {
		if end, err = parseEventTime(eventEnd); err != nil {
			return fmt.Errorf("invalid --end: %w", err)
		}
	}

	ev, err := apiClient.CreateEvent(context.Background(), models.EventInput{
		Title:       args[0],
		Description: eventDesc,
		StartTime:   start,
		EndTime:     end,
		AllDay:      eventAllDay,
		Color:       eventColor,
	})
	if err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	fmt.Printf("Created %s\n", models.MustRecordIDString(ev.ID))
	return nil
}

func runEventsRm(cmd *cobra.Command, args []string) error {
	if err := apiClient.DeleteEvent(context.Background(), args[0]); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	fmt.Printf("Deleted %s\n", args[0])
	return nil
}

// parseEventTime accepts a date or a date with time, in local time.
func parseEventTime(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02 15:04", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("want YYYY-MM-DD or YYYY-MM-DD HH:MM, got %q", s)
}

// normalizeRangeBound converts a YYYY-MM-DD flag to RFC 3339 for the server.
func normalizeRangeBound(s string) (string, error) {
	if s == "" {
		return "", nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	return t.Format(time.RFC3339), nil
}
