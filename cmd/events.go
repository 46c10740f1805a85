package main

import (
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/fieldobs-cli/internal/events"
)

// eventViews maps a view name to its projection of a field's event log.
var eventViews = map[string]func(*events.Log) any{
	"harvest-dates":   func(l *events.Log) any { return l.HarvestDates() },
	"mowing-dates":    func(l *events.Log) any { return l.MowingDates() },
	"species":         func(l *events.Log) any { return l.SpeciesEvents() },
	"harvest-amounts": func(l *events.Log) any { return l.HarvestAmounts() },
	"harvest-info":    func(l *events.Log) any { return l.HarvestInfo() },
	"mowing-info":     func(l *events.Log) any { return l.MowingsAsHarvestInfo() },
	"observations":    func(l *events.Log) any { return l.ObservationEvents() },
	"agb":             func(l *events.Log) any { return l.AGBObservations() },
}

func eventViewNames() []string {
	names := make([]string, 0, len(eventViews))
	for name := range eventViews {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var eventsCmd = &cobra.Command{
	Use:   "events <field-id> <view>",
	Short: "Project a field's management events",
	Long: "Fetches <field>/events.json and prints one projection of it. Views: " +
		strings.Join(eventViewNames(), ", ") + ". A field without an events document prints an empty list.",
	Args: cobra.ExactArgs(2),
	ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
		if len(args) == 1 {
			return eventViewNames(), cobra.ShellCompDirectiveNoFileComp
		}
		return nil, cobra.ShellCompDirectiveNoFileComp
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		fieldID, view := args[0], args[1]

		project, ok := eventViews[view]
		if !ok {
			return eris.Errorf("unknown view %q (want one of %s)", view, strings.Join(eventViewNames(), ", "))
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}

		log, err := events.NewRepository(st).Fetch(ctx, fieldID)
		if err != nil {
			return eris.Wrap(err, "events")
		}
		return writeResult(cmd.OutOrStdout(), project(log))
	},
}

// onDateResult is what on-date prints.
type onDateResult struct {
	FieldID       string   `json:"field_id" yaml:"field_id"`
	Date          string   `json:"date" yaml:"date"`
	EventType     string   `json:"event_type,omitempty" yaml:"event_type,omitempty"`
	HarvestAmount *float64 `json:"harvest_amount" yaml:"harvest_amount"`
}

var onDateCmd = &cobra.Command{
	Use:   "on-date <field-id> <date>",
	Short: "Show the event type and harvest amount on a date",
	Long:  "Reports the kind of the last event on the given calendar date and the harvest amount recorded for it. Nothing is cached; the events document is fetched once for both answers.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		fieldID, date := args[0], args[1]

		st, err := initStore(ctx)
		if err != nil {
			return err
		}

		log, err := events.NewRepository(st).Fetch(ctx, fieldID)
		if err != nil {
			return eris.Wrap(err, "on-date")
		}

		result := onDateResult{FieldID: fieldID, Date: date}
		kind, found, err := log.EventTypeOnDate(date)
		if err != nil {
			return eris.Wrap(err, "on-date")
		}
		if found {
			result.EventType = string(kind)
		}
		if result.HarvestAmount, err = log.HarvestAmountOnDate(date); err != nil {
			return eris.Wrap(err, "on-date")
		}
		return writeResult(cmd.OutOrStdout(), result)
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd, onDateCmd)
}
