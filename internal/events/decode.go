package events

import (
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/fieldobs-cli/internal/fetcher"
)

// ErrMalformed marks an events document that cannot be interpreted.
var ErrMalformed = eris.New("events: malformed document")

type document struct {
	Management struct {
		Events []map[string]any `json:"events"`
	} `json:"management"`
}

// Parse decodes an events document into its management events, in document order.
// A document without management.events yields no events.
func Parse(r io.Reader) ([]Event, error) {
	doc, err := fetcher.DecodeJSONObject[document](r)
	if err != nil {
		return nil, eris.Wrapf(ErrMalformed, "%v", err)
	}

	out := make([]Event, 0, len(doc.Management.Events))
	for i, rec := range doc.Management.Events {
		ev, err := decodeEvent(rec)
		if err != nil {
			return nil, eris.Wrapf(err, "event %d", i)
		}
		out = append(out, ev)
	}
	return out, nil
}

func decodeEvent(rec map[string]any) (Event, error) {
	kind, ok := rec[fieldKind].(string)
	if !ok {
		return Event{}, eris.Wrapf(ErrMalformed, "missing or non-string %s", fieldKind)
	}
	ev := Event{Kind: Kind(kind), Raw: rec}

	if v, present := rec[fieldDate]; present && v != nil {
		if s, ok := v.(string); ok {
			ev.Date, ev.HasDate = s, true
		} else {
			ev.discard(fieldDate, v)
		}
	}

	switch ev.Kind {
	case KindHarvest:
		ev.Harvest = ev.decodeHarvest(rec)
	case KindMowing:
		ev.Mowing = &Mowing{Crop: ev.stringField(rec, fieldMowedCrop, Sentinel)}
	case KindObservation:
		ev.Observation = ev.decodeObservation(rec)
	}
	return ev, nil
}

func (ev *Event) decodeHarvest(rec map[string]any) *Harvest {
	h := &Harvest{Crop: ev.stringField(rec, fieldHarvestCrop, Sentinel)}

	// The _total field wins when both are present.
	name := fieldHarvestTotal
	raw, ok := rec[name]
	if !ok {
		name = fieldHarvestYield
		raw, ok = rec[name]
	}
	if !ok {
		return h
	}

	h.HasAmount = true
	h.Amount = ev.amountField(name, raw)
	return h
}

func (ev *Event) decodeObservation(rec map[string]any) *Observation {
	o := &Observation{Type: ev.stringField(rec, fieldObservationType, "")}
	if raw, ok := rec[fieldTopsC]; ok {
		o.TopsC = ev.amountField(fieldTopsC, raw)
	}
	return o
}

// stringField returns rec[name], or def when the field is absent, null or
// not a string.
func (ev *Event) stringField(rec map[string]any, name, def string) string {
	v, ok := rec[name]
	if !ok || v == nil {
		return def
	}
	s, ok := v.(string)
	if !ok {
		ev.discard(name, v)
		return def
	}
	return s
}

// amountField normalises raw, treating a non-numeric value as absent.
func (ev *Event) amountField(name string, raw any) *float64 {
	f, err := normalizeAmount(raw)
	if err != nil {
		ev.discard(name, raw)
		return nil
	}
	return f
}

// discard records a field whose value had the wrong shape. The event keeps
// decoding with that field treated as absent.
func (ev *Event) discard(name string, v any) {
	ev.Discarded = append(ev.Discarded, name)
	zap.L().Warn("events: ignoring invalid field value",
		zap.String("kind", string(ev.Kind)),
		zap.String("field", name),
		zap.Any("value", v),
	)
}

// normalizeAmount maps a numeric or numeric-string value to a float, with nil
// for null, empty, NaN and the sentinel in either representation.
func normalizeAmount(v any) (*float64, error) {
	var f float64
	switch x := v.(type) {
	case nil:
		return nil, nil
	case float64:
		f = x
	case string:
		s := strings.TrimSpace(x)
		if s == "" || s == Sentinel {
			return nil, nil
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, eris.Wrapf(ErrMalformed, "value %q is not numeric", x)
		}
		f = parsed
	default:
		return nil, eris.Wrapf(ErrMalformed, "value of type %T is not numeric", v)
	}

	if f == sentinelValue || math.IsNaN(f) {
		return nil, nil
	}
	return &f, nil
}
