package events

import (
	"bytes"
	"context"
	"path"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/fieldobs-cli/internal/blobstore"
	"github.com/sells-group/fieldobs-cli/internal/metrics"
)

// FileName is the per-field events document name.
const FileName = "events.json"

// Repository fetches events documents from the bucket. Nothing is cached:
// every call lists and downloads again.
type Repository struct {
	store blobstore.Store
}

// NewRepository creates a Repository reading from store.
func NewRepository(store blobstore.Store) *Repository {
	return &Repository{store: store}
}

// Key returns the object key of fieldID's events document.
func Key(fieldID string) string {
	return path.Join(blobstore.FieldPrefix(fieldID), FileName)
}

// Fetch loads the events document of fieldID. A field without one yields an
// empty Log and no error.
func (r *Repository) Fetch(ctx context.Context, fieldID string) (*Log, error) {
	prefix := blobstore.FieldPrefix(fieldID)
	key := Key(fieldID)

	ok, err := blobstore.Exists(ctx, r.store, prefix, key)
	if err != nil {
		return nil, eris.Wrapf(err, "events: look up %s", fieldID)
	}
	if !ok {
		zap.L().Info("no events file for field", zap.String("field_id", fieldID))
		metrics.MissingEventFiles.Inc()
		return &Log{FieldID: fieldID}, nil
	}

	data, err := r.store.Get(ctx, key)
	if err != nil {
		return nil, eris.Wrapf(err, "events: fetch %s", key)
	}
	evs, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, eris.Wrapf(err, "events: parse %s", key)
	}
	return &Log{FieldID: fieldID, Found: true, Events: evs}, nil
}

// HarvestDates fetches fieldID's events and returns Log.HarvestDates.
func (r *Repository) HarvestDates(ctx context.Context, fieldID string) ([]string, error) {
	l, err := r.Fetch(ctx, fieldID)
	if err != nil {
		return nil, err
	}
	return l.HarvestDates(), nil
}

// MowingDates fetches fieldID's events and returns Log.MowingDates.
func (r *Repository) MowingDates(ctx context.Context, fieldID string) ([]string, error) {
	l, err := r.Fetch(ctx, fieldID)
	if err != nil {
		return nil, err
	}
	return l.MowingDates(), nil
}

// SpeciesEvents fetches fieldID's events and returns Log.SpeciesEvents.
func (r *Repository) SpeciesEvents(ctx context.Context, fieldID string) ([]SpeciesEvent, error) {
	l, err := r.Fetch(ctx, fieldID)
	if err != nil {
		return nil, err
	}
	return l.SpeciesEvents(), nil
}

// HarvestAmounts fetches fieldID's events and returns Log.HarvestAmounts.
func (r *Repository) HarvestAmounts(ctx context.Context, fieldID string) ([]*float64, error) {
	l, err := r.Fetch(ctx, fieldID)
	if err != nil {
		return nil, err
	}
	return l.HarvestAmounts(), nil
}

// HarvestInfo fetches fieldID's events and returns Log.HarvestInfo.
func (r *Repository) HarvestInfo(ctx context.Context, fieldID string) ([]HarvestInfo, error) {
	l, err := r.Fetch(ctx, fieldID)
	if err != nil {
		return nil, err
	}
	return l.HarvestInfo(), nil
}

// MowingsAsHarvestInfo fetches fieldID's events and returns Log.MowingsAsHarvestInfo.
func (r *Repository) MowingsAsHarvestInfo(ctx context.Context, fieldID string) ([]HarvestInfo, error) {
	l, err := r.Fetch(ctx, fieldID)
	if err != nil {
		return nil, err
	}
	return l.MowingsAsHarvestInfo(), nil
}

// ObservationEvents fetches fieldID's events and returns Log.ObservationEvents.
func (r *Repository) ObservationEvents(ctx context.Context, fieldID string) ([]map[string]any, error) {
	l, err := r.Fetch(ctx, fieldID)
	if err != nil {
		return nil, err
	}
	return l.ObservationEvents(), nil
}

// AGBObservations fetches fieldID's events and returns Log.AGBObservations.
func (r *Repository) AGBObservations(ctx context.Context, fieldID string) ([]AGBObservation, error) {
	l, err := r.Fetch(ctx, fieldID)
	if err != nil {
		return nil, err
	}
	return l.AGBObservations(), nil
}

// HarvestAmountOnDate fetches fieldID's events and returns Log.HarvestAmountOnDate.
func (r *Repository) HarvestAmountOnDate(ctx context.Context, fieldID, date string) (*float64, error) {
	l, err := r.Fetch(ctx, fieldID)
	if err != nil {
		return nil, err
	}
	return l.HarvestAmountOnDate(date)
}

// EventTypeOnDate fetches fieldID's events and returns Log.EventTypeOnDate.
func (r *Repository) EventTypeOnDate(ctx context.Context, fieldID, date string) (Kind, bool, error) {
	l, err := r.Fetch(ctx, fieldID)
	if err != nil {
		return "", false, err
	}
	return l.EventTypeOnDate(date)
}
