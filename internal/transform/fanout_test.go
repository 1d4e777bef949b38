package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"property-etl/internal/fieldmap"
	"property-etl/internal/reader"
)

func normalizeOK(t *testing.T, raw reader.RawRecord) *CanonicalRecord {
	t.Helper()
	rec, err := NewNormalizer(fieldmap.Default()).Normalize(raw)
	require.NoError(t, err)
	return rec
}

func TestFanOutProperty(t *testing.T) {
	raw := baseRecord()
	raw["Bed"] = 3
	raw["Bath"] = "2.5"
	raw["Market"] = "Austin Metro"

	rec := normalizeOK(t, raw)
	bundle := FanOut(rec, rec.Key())

	assert.Equal(t, rec.Key(), bundle.Property.PropertyKey)
	require.NotNil(t, bundle.Property.StreetAddress)
	assert.Equal(t, "12 Oak St.", *bundle.Property.StreetAddress)
	require.NotNil(t, bundle.Property.Bed)
	assert.Equal(t, 3, *bundle.Property.Bed)
	require.NotNil(t, bundle.Property.Market)
	assert.Equal(t, "Austin Metro", *bundle.Property.Market)
}

func TestFanOutScenarioRanksAreContiguous(t *testing.T) {
	raw := baseRecord()
	raw["Valuation"] = []any{
		map[string]any{"List_Price": 100000},
		map[string]any{}, // entirely null, must be dropped
		map[string]any{"List_Price": 90000},
	}

	rec := normalizeOK(t, raw)
	bundle := FanOut(rec, rec.Key())

	require.Len(t, bundle.Valuations, 2)
	assert.Equal(t, 1, bundle.Valuations[0].ScenarioRank)
	assert.Equal(t, 2, bundle.Valuations[1].ScenarioRank)
	assert.Equal(t, 100000.0, *bundle.Valuations[0].ListPrice)
	assert.Equal(t, 90000.0, *bundle.Valuations[1].ListPrice)
}

func TestFanOutEmptyGroupsEmitNoRows(t *testing.T) {
	rec := normalizeOK(t, baseRecord())
	bundle := FanOut(rec, rec.Key())

	assert.Empty(t, bundle.Valuations)
	assert.Empty(t, bundle.Rehabs)
	assert.Empty(t, bundle.Hoas)
	assert.Nil(t, bundle.Leads)
	assert.Nil(t, bundle.Taxes)
}

func TestFanOutLeadsOnlyWhenPopulated(t *testing.T) {
	raw := baseRecord()
	raw["Occupancy"] = "Occupied"
	raw["Net_Yield"] = "7.25%"

	rec := normalizeOK(t, raw)
	bundle := FanOut(rec, rec.Key())

	require.NotNil(t, bundle.Leads)
	assert.Equal(t, rec.Key(), bundle.Leads.PropertyKey)
	assert.Equal(t, "Occupied", *bundle.Leads.Occupancy)
	assert.InDelta(t, 7.25, *bundle.Leads.NetYield, 1e-9)
}

func TestFanOutTaxes(t *testing.T) {
	raw := baseRecord()
	raw["Taxes"] = "$3,450"

	rec := normalizeOK(t, raw)
	bundle := FanOut(rec, rec.Key())

	require.NotNil(t, bundle.Taxes)
	assert.Equal(t, 3450.0, *bundle.Taxes.Amount)
}

func TestFanOutRehabScenarios(t *testing.T) {
	raw := baseRecord()
	raw["Rehab"] = []any{
		map[string]any{"Underwriting_Rehab": "25000", "Paint": "yes", "Roof_Flag": "no"},
	}

	rec := normalizeOK(t, raw)
	bundle := FanOut(rec, rec.Key())

	require.Len(t, bundle.Rehabs, 1)
	assert.Equal(t, 1, bundle.Rehabs[0].ScenarioRank)
	assert.Equal(t, 25000.0, *bundle.Rehabs[0].UnderwritingRehab)
	assert.True(t, *bundle.Rehabs[0].Paint)
	assert.False(t, *bundle.Rehabs[0].RoofFlag)
}

func TestFanOutHoaScenarios(t *testing.T) {
	raw := baseRecord()
	raw["HOA"] = []any{
		map[string]any{"HOA": 150, "HOA_Flag": "yes"},
		map[string]any{"HOA": 175},
	}

	rec := normalizeOK(t, raw)
	bundle := FanOut(rec, rec.Key())

	require.Len(t, bundle.Hoas, 2)
	assert.Equal(t, 150.0, *bundle.Hoas[0].HoaAmount)
	assert.True(t, *bundle.Hoas[0].HoaFlag)
	assert.Equal(t, 175.0, *bundle.Hoas[1].HoaAmount)
	assert.Equal(t, 2, bundle.Hoas[1].ScenarioRank)
}
