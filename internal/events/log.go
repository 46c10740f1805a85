package events

import (
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/fieldobs-cli/internal/fetcher"
)

// Log is the decoded events document of one field. A Log for a field
// without an events document has Found unset and no events; every view of
// it is empty.
type Log struct {
	FieldID string
	Found   bool
	Events  []Event
}

func (l *Log) events() []Event {
	if l == nil {
		return nil
	}
	return l.Events
}

func (l *Log) datesOf(kind Kind) []string {
	dates := []string{}
	for _, ev := range l.events() {
		if ev.Kind == kind {
			dates = append(dates, ev.Date)
		}
	}
	return dates
}

// HarvestDates returns the date of every harvest event in document order.
func (l *Log) HarvestDates() []string { return l.datesOf(KindHarvest) }

// MowingDates returns the date of every mowing event in document order.
func (l *Log) MowingDates() []string { return l.datesOf(KindMowing) }

// SpeciesEvents returns one entry per harvest or mowing event. Species is
// the harvested or mowed crop; a missing crop is reported as the literal
// Sentinel string rather than absent.
func (l *Log) SpeciesEvents() []SpeciesEvent {
	out := []SpeciesEvent{}
	for _, ev := range l.events() {
		var species string
		switch {
		case ev.Harvest != nil:
			species = ev.Harvest.Crop
		case ev.Mowing != nil:
			species = ev.Mowing.Crop
		default:
			continue
		}
		out = append(out, SpeciesEvent{Date: ev.Date, Species: species, EventType: ev.Kind})
	}
	return out
}

// HarvestAmounts returns the yield of every harvest event that carries a
// yield field, nil where the value is the sentinel. Harvests without any
// yield field are skipped.
func (l *Log) HarvestAmounts() []*float64 {
	out := []*float64{}
	for _, ev := range l.events() {
		if ev.Harvest == nil || !ev.Harvest.HasAmount {
			continue
		}
		out = append(out, ev.Harvest.Amount)
	}
	return out
}

// HarvestInfo returns one entry per harvest event; Amount is nil when the
// yield is missing or the sentinel.
func (l *Log) HarvestInfo() []HarvestInfo {
	out := []HarvestInfo{}
	for _, ev := range l.events() {
		if ev.Harvest == nil {
			continue
		}
		out = append(out, HarvestInfo{Date: ev.Date, Amount: ev.Harvest.Amount, EventType: KindHarvest})
	}
	return out
}

// MowingsAsHarvestInfo returns one amount-less entry per mowing event.
func (l *Log) MowingsAsHarvestInfo() []HarvestInfo {
	out := []HarvestInfo{}
	for _, ev := range l.events() {
		if ev.Kind != KindMowing {
			continue
		}
		out = append(out, HarvestInfo{Date: ev.Date, EventType: KindMowing})
	}
	return out
}

// ObservationEvents returns the raw record of every observation event.
func (l *Log) ObservationEvents() []map[string]any {
	out := []map[string]any{}
	for _, ev := range l.events() {
		if ev.Kind == KindObservation {
			out = append(out, ev.Raw)
		}
	}
	return out
}

// AGBObservations returns the aboveground biomass of every vegetation
// observation that carries a non-sentinel tops_C value.
func (l *Log) AGBObservations() []AGBObservation {
	out := []AGBObservation{}
	for _, ev := range l.events() {
		o := ev.Observation
		if o == nil || o.Type != VegetationObservation || o.TopsC == nil {
			continue
		}
		out = append(out, AGBObservation{Date: ev.Date, AGB: *o.TopsC})
	}
	return out
}

// HarvestAmountOnDate scans the harvest info in order. A harvest on the
// same calendar date as date sets the result to its amount; every other
// harvest resets the result to nil, so only the final harvest entry can
// produce a value. A log without events returns nil before date is parsed.
func (l *Log) HarvestAmountOnDate(date string) (*float64, error) {
	if len(l.events()) == 0 {
		return nil, nil
	}
	want, err := fetcher.ParseTimestamp(date)
	if err != nil {
		return nil, eris.Wrap(err, "events: query date")
	}

	var amount *float64
	for _, info := range l.HarvestInfo() {
		if matchesDate(info.Date, want) {
			amount = info.Amount
		} else {
			amount = nil
		}
	}
	return amount, nil
}

// EventTypeOnDate returns the kind of the last event on the same calendar
// date as date. Events without a date are skipped. ok is false when no
// event matches, including on a log without events, where date is not
// parsed at all.
func (l *Log) EventTypeOnDate(date string) (kind Kind, ok bool, err error) {
	if len(l.events()) == 0 {
		return "", false, nil
	}
	want, err := fetcher.ParseTimestamp(date)
	if err != nil {
		return "", false, eris.Wrap(err, "events: query date")
	}

	for _, ev := range l.events() {
		if !ev.HasDate {
			continue
		}
		if matchesDate(ev.Date, want) {
			kind, ok = ev.Kind, true
		}
	}
	return kind, ok, nil
}

// matchesDate reports whether raw parses to the calendar date of want.
// Unparsable event dates never match.
func matchesDate(raw string, want time.Time) bool {
	got, err := fetcher.ParseTimestamp(raw)
	if err != nil {
		zap.L().Warn("events: skipping unparsable event date", zap.String("date", raw), zap.Error(err))
		return false
	}
	return fetcher.SameDate(got, want)
}
