// Package events reads per-field management event documents and projects
// them into task-specific views (harvests, mowings, species changes, biomass).
package events

// Kind is the value of an event's mgmt_operations_event discriminator.
type Kind string

// Known event kinds. Any other discriminator decodes as itself with no
// variant payload.
const (
	KindHarvest     Kind = "harvest"
	KindMowing      Kind = "mowing"
	KindObservation Kind = "observation"
)

// Sentinel is the source system's "no data" marker. Amount and biomass
// fields normalise it to absent; species fields keep it verbatim.
const Sentinel = "-99.0"

const sentinelValue = -99.0

// VegetationObservation is the observation_type carrying aboveground biomass.
const VegetationObservation = "observation_type_vegetation"

// Source record field names.
const (
	fieldKind            = "mgmt_operations_event"
	fieldDate            = "date"
	fieldHarvestTotal    = "harvest_yield_harvest_dw_total"
	fieldHarvestYield    = "harvest_yield_harvest_dw"
	fieldHarvestCrop     = "harvest_crop"
	fieldMowedCrop       = "moved_crop"
	fieldObservationType = "observation_type"
	fieldTopsC           = "tops_C"
)

// Event is one decoded management event. Exactly one of Harvest, Mowing and
// Observation is set for the matching Kind; all are nil for other kinds.
type Event struct {
	Kind    Kind
	Date    string
	HasDate bool

	Harvest     *Harvest
	Mowing      *Mowing
	Observation *Observation

	// Raw is the record as it appeared in the document.
	Raw map[string]any

	// Discarded names the fields whose values had the wrong type and were
	// decoded as absent.
	Discarded []string
}

// Harvest holds the harvest-specific fields.
type Harvest struct {
	Crop string
	// Amount is the dry-weight yield; nil when missing or the sentinel.
	Amount *float64
	// HasAmount reports whether either yield field was present in the record.
	HasAmount bool
}

// Mowing holds the mowing-specific fields.
type Mowing struct {
	Crop string
}

// Observation holds the observation-specific fields.
type Observation struct {
	Type string
	// TopsC is aboveground biomass in gC/m2; nil when missing or the sentinel.
	TopsC *float64
}

// SpeciesEvent is one entry of the species-change view.
type SpeciesEvent struct {
	Date      string `json:"date" yaml:"date"`
	Species   string `json:"species" yaml:"species"`
	EventType Kind   `json:"event_type" yaml:"event_type"`
}

// HarvestInfo is one entry of the harvest-info and mowing-as-harvest views.
type HarvestInfo struct {
	Date      string   `json:"date" yaml:"date"`
	Amount    *float64 `json:"amount" yaml:"amount"`
	EventType Kind     `json:"event_type" yaml:"event_type"`
}

// AGBObservation is one aboveground-biomass observation.
type AGBObservation struct {
	Date string  `json:"date" yaml:"date"`
	AGB  float64 `json:"AGB (gC/m2)" yaml:"AGB (gC/m2)"`
}
