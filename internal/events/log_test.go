package events

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDoc = `{"management":{"events":[
	{"mgmt_operations_event":"planting","date":"2021-04-20","planted_crop":"grass"},
	{"mgmt_operations_event":"harvest","date":"2021-06-01","harvest_crop":"timothy","harvest_yield_harvest_dw_total":310},
	{"mgmt_operations_event":"mowing","date":"2021-06-15","moved_crop":"clover"},
	{"mgmt_operations_event":"observation","date":"2021-06-20","observation_type":"observation_type_vegetation","tops_C":"95.5"},
	{"mgmt_operations_event":"observation","date":"2021-06-21","observation_type":"observation_type_vegetation","tops_C":"-99.0"},
	{"mgmt_operations_event":"observation","date":"2021-06-22","observation_type":"observation_type_soil","tops_C":10},
	{"mgmt_operations_event":"observation","date":"2021-06-23","observation_type":"observation_type_vegetation"},
	{"mgmt_operations_event":"harvest","date":"2021-08-01","harvest_crop":"timothy"},
	{"mgmt_operations_event":"mowing","date":"2021-08-15"},
	{"mgmt_operations_event":"harvest","date":"2021-09-01T00:00:00","harvest_crop":"timothy","harvest_yield_harvest_dw":"280.25"}
]}}`

func mustLog(t *testing.T, doc string) *Log {
	t.Helper()
	evs, err := Parse(strings.NewReader(doc))
	require.NoError(t, err)
	return &Log{FieldID: "ki_0", Found: true, Events: evs}
}

func TestLog_Dates(t *testing.T) {
	l := mustLog(t, sampleDoc)
	assert.Equal(t, []string{"2021-06-01", "2021-08-01", "2021-09-01T00:00:00"}, l.HarvestDates())
	assert.Equal(t, []string{"2021-06-15", "2021-08-15"}, l.MowingDates())
}

func TestLog_SpeciesEvents(t *testing.T) {
	l := mustLog(t, sampleDoc)
	assert.Equal(t, []SpeciesEvent{
		{Date: "2021-06-01", Species: "timothy", EventType: KindHarvest},
		{Date: "2021-06-15", Species: "clover", EventType: KindMowing},
		{Date: "2021-08-01", Species: "timothy", EventType: KindHarvest},
		{Date: "2021-08-15", Species: "-99.0", EventType: KindMowing},
		{Date: "2021-09-01T00:00:00", Species: "timothy", EventType: KindHarvest},
	}, l.SpeciesEvents())
}

func TestLog_HarvestAmountsSkipsEventsWithoutYield(t *testing.T) {
	l := mustLog(t, sampleDoc)
	assert.Equal(t, []*float64{ptr(310), ptr(280.25)}, l.HarvestAmounts())
}

func TestLog_HarvestInfoKeepsEveryHarvest(t *testing.T) {
	l := mustLog(t, sampleDoc)
	assert.Equal(t, []HarvestInfo{
		{Date: "2021-06-01", Amount: ptr(310), EventType: KindHarvest},
		{Date: "2021-08-01", Amount: nil, EventType: KindHarvest},
		{Date: "2021-09-01T00:00:00", Amount: ptr(280.25), EventType: KindHarvest},
	}, l.HarvestInfo())
}

func TestLog_MowingsAsHarvestInfo(t *testing.T) {
	l := mustLog(t, sampleDoc)
	assert.Equal(t, []HarvestInfo{
		{Date: "2021-06-15", EventType: KindMowing},
		{Date: "2021-08-15", EventType: KindMowing},
	}, l.MowingsAsHarvestInfo())
}

func TestLog_Observations(t *testing.T) {
	l := mustLog(t, sampleDoc)

	obs := l.ObservationEvents()
	require.Len(t, obs, 4)
	assert.Equal(t, "2021-06-20", obs[0]["date"])
	assert.Equal(t, "observation_type_soil", obs[2]["observation_type"])

	assert.Equal(t, []AGBObservation{{Date: "2021-06-20", AGB: 95.5}}, l.AGBObservations())
}

func TestLog_SentinelScenario(t *testing.T) {
	l := mustLog(t, `{"management":{"events":[
		{"mgmt_operations_event":"harvest","date":"2021-06-01","harvest_yield_harvest_dw_total":"-99.0"},
		{"mgmt_operations_event":"mowing","date":"2021-07-01"}
	]}}`)

	assert.Equal(t, []string{"2021-06-01"}, l.HarvestDates())
	assert.Equal(t, []*float64{nil}, l.HarvestAmounts(), "field present, sentinel appended as absent")
	assert.Equal(t, []string{"2021-07-01"}, l.MowingDates())

	species := l.SpeciesEvents()
	require.Len(t, species, 2)
	assert.Equal(t, SpeciesEvent{Date: "2021-07-01", Species: "-99.0", EventType: KindMowing}, species[1])

	info := l.HarvestInfo()
	require.Len(t, info, 1)
	assert.Nil(t, info[0].Amount)
}

func TestLog_EmptyViews(t *testing.T) {
	for name, l := range map[string]*Log{"empty": {FieldID: "x_0"}, "nil": nil} {
		t.Run(name, func(t *testing.T) {
			assert.NotNil(t, l.HarvestDates())
			assert.Empty(t, l.HarvestDates())
			assert.Empty(t, l.MowingDates())
			assert.Empty(t, l.SpeciesEvents())
			assert.Empty(t, l.HarvestAmounts())
			assert.Empty(t, l.HarvestInfo())
			assert.Empty(t, l.MowingsAsHarvestInfo())
			assert.Empty(t, l.ObservationEvents())
			assert.Empty(t, l.AGBObservations())

			amount, err := l.HarvestAmountOnDate("2021-06-01")
			require.NoError(t, err)
			assert.Nil(t, amount)

			_, ok, err := l.EventTypeOnDate("2021-06-01")
			require.NoError(t, err)
			assert.False(t, ok)

			// No events means nothing to compare, so the date is never parsed.
			amount, err = l.HarvestAmountOnDate("last summer")
			require.NoError(t, err)
			assert.Nil(t, amount)

			_, ok, err = l.EventTypeOnDate("last summer")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

const twoHarvests = `{"management":{"events":[
	{"mgmt_operations_event":"harvest","date":"2021-06-01","harvest_yield_harvest_dw":100},
	{"mgmt_operations_event":"harvest","date":"2021-08-01","harvest_yield_harvest_dw":200}
]}}`

func TestLog_HarvestAmountOnDate(t *testing.T) {
	l := mustLog(t, twoHarvests)

	amount, err := l.HarvestAmountOnDate("2021-08-01")
	require.NoError(t, err)
	assert.Equal(t, ptr(200), amount)

	amount, err = l.HarvestAmountOnDate("2021-08-01T00:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, ptr(200), amount, "dates compare by calendar date, not by string")

	amount, err = l.HarvestAmountOnDate("2021-07-01")
	require.NoError(t, err)
	assert.Nil(t, amount)
}

func TestLog_HarvestAmountOnDate_LaterMissResets(t *testing.T) {
	// Only the final harvest entry can produce a value.
	l := mustLog(t, twoHarvests)
	amount, err := l.HarvestAmountOnDate("2021-06-01")
	require.NoError(t, err)
	assert.Nil(t, amount)
}

func TestLog_HarvestAmountOnDate_SentinelIsAbsent(t *testing.T) {
	l := mustLog(t, `{"management":{"events":[
		{"mgmt_operations_event":"harvest","date":"2021-06-01","harvest_yield_harvest_dw":-99.0}
	]}}`)
	amount, err := l.HarvestAmountOnDate("2021-06-01")
	require.NoError(t, err)
	assert.Nil(t, amount)
}

func TestLog_HarvestAmountOnDate_BadQuery(t *testing.T) {
	l := mustLog(t, twoHarvests)
	_, err := l.HarvestAmountOnDate("last summer")
	require.Error(t, err)
}

func TestLog_EventTypeOnDate(t *testing.T) {
	l := mustLog(t, `{"management":{"events":[
		{"mgmt_operations_event":"harvest","date":"2021-06-01"},
		{"mgmt_operations_event":"fertilizer"},
		{"mgmt_operations_event":"mowing","date":"2021-06-01 00:00:00"},
		{"mgmt_operations_event":"observation","date":"2021-07-01"},
		{"mgmt_operations_event":"tillage","date":"not a date"}
	]}}`)

	kind, ok, err := l.EventTypeOnDate("2021-06-01")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, KindMowing, kind, "last match wins")

	kind, ok, err = l.EventTypeOnDate("2021-07-01T00:00:00")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, KindObservation, kind, "a match survives later non-matching events")

	_, ok, err = l.EventTypeOnDate("2022-01-01")
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = l.EventTypeOnDate("")
	require.Error(t, err)
}

func TestLog_InvalidFieldStaysLocal(t *testing.T) {
	l := mustLog(t, `{"management":{"events":[
		{"mgmt_operations_event":"harvest","date":"2021-06-01","harvest_crop":12,"harvest_yield_harvest_dw":150},
		{"mgmt_operations_event":"observation","date":"2021-06-20","observation_type":"observation_type_soil","tops_C":"NA"},
		{"mgmt_operations_event":"observation","date":"2021-06-21","observation_type":"observation_type_vegetation","tops_C":"lots"},
		{"mgmt_operations_event":"mowing","date":"2021-07-01"}
	]}}`)
	require.Len(t, l.Events, 4)

	assert.Equal(t, []string{"2021-06-01"}, l.HarvestDates())
	assert.Equal(t, []string{"2021-07-01"}, l.MowingDates())
	assert.Equal(t, []*float64{ptr(150)}, l.HarvestAmounts())
	assert.Equal(t, []SpeciesEvent{
		{Date: "2021-06-01", Species: Sentinel, EventType: KindHarvest},
		{Date: "2021-07-01", Species: Sentinel, EventType: KindMowing},
	}, l.SpeciesEvents())

	obs := l.ObservationEvents()
	require.Len(t, obs, 2)
	assert.Equal(t, "NA", obs[0]["tops_C"], "raw records are untouched")
	assert.Empty(t, l.AGBObservations())

	amount, err := l.HarvestAmountOnDate("2021-06-01")
	require.NoError(t, err)
	assert.Equal(t, ptr(150), amount)
}
