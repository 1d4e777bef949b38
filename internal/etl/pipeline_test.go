package etl

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"property-etl/internal/config"
	"property-etl/internal/database"
	"property-etl/internal/fieldmap"
	"property-etl/internal/reader"
	"property-etl/internal/transform"
)

var sampleDataset = []byte(`[
  {"Street_Address": "12 Oak St.", "City": "Austin", "State": "TX", "Zip": "78701",
   "Bed": "three bed", "Pool": "Yes", "Taxes": "$3,450",
   "Valuation": [{"List_Price": 100000}, {}, {"List_Price": 90000}]},
  {"Street_Address": "12 Oak St.", "City": "Austin", "State": "TX", "Zip": "78701"},
  {"Street_Address": "9 Elm Ave", "City": "Dallas", "State": "TX", "Zip": "75201",
   "Occupancy": "Vacant"},
  {"City": "Austin", "State": "TX"}
]`)

func transformSample(t *testing.T) ([]transform.Bundle, *transform.Report) {
	t.Helper()
	records, err := reader.Parse(sampleDataset)
	require.NoError(t, err)
	return Transform(records, fieldmap.Default())
}

func TestTransformDedupsAndRejects(t *testing.T) {
	bundles, report := transformSample(t)

	// Four raw records: one duplicate address collapsed, one rejected.
	require.Len(t, bundles, 2)
	assert.Equal(t, 3, report.Accepted)
	assert.Equal(t, 1, report.Rejected)
	require.Len(t, report.Rejections, 1)
	assert.Equal(t, "missing required field", report.Rejections[0].Reason)
}

func TestTransformBundleShapes(t *testing.T) {
	bundles, _ := transformSample(t)

	oak := bundles[0]
	assert.Equal(t, "TX", oak.Property.PropertyKey[:2])
	require.NotNil(t, oak.Property.Bed)
	assert.Equal(t, 3, *oak.Property.Bed)
	require.NotNil(t, oak.Taxes)
	assert.Equal(t, 3450.0, *oak.Taxes.Amount)
	require.Len(t, oak.Valuations, 2)
	assert.Equal(t, []int{1, 2}, []int{oak.Valuations[0].ScenarioRank, oak.Valuations[1].ScenarioRank})

	elm := bundles[1]
	require.NotNil(t, elm.Leads)
	assert.Equal(t, "Vacant", *elm.Leads.Occupancy)
	assert.Nil(t, elm.Taxes)
	assert.Empty(t, elm.Valuations)
}

func TestTransformIsIdempotent(t *testing.T) {
	first, _ := transformSample(t)
	second, _ := transformSample(t)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Property.PropertyKey, second[i].Property.PropertyKey)
	}
}

type stubStore struct {
	saved   []string
	stored  []string
	deleted []string
	errFor  map[string]error
}

func (s *stubStore) InitSchema() error { return nil }
func (s *stubStore) Close() error      { return nil }
func (s *stubStore) ListKeys() ([]string, error) {
	return s.stored, nil
}
func (s *stubStore) DeleteProperty(key string) error {
	if err := s.errFor[key]; err != nil {
		return err
	}
	s.deleted = append(s.deleted, key)
	return nil
}
func (s *stubStore) SaveBundle(b transform.Bundle) error {
	key := b.Property.PropertyKey
	if err := s.errFor[key]; err != nil {
		return err
	}
	s.saved = append(s.saved, key)
	return nil
}

func TestLoadContinuesPastRowFailures(t *testing.T) {
	bundles, _ := transformSample(t)
	store := &stubStore{errFor: map[string]error{
		bundles[0].Property.PropertyKey: &database.LoadError{
			PropertyKey: bundles[0].Property.PropertyKey,
			Err:         errors.New("constraint violation"),
		},
	}}

	failures, err := Load(store, bundles)
	require.NoError(t, err)
	assert.Equal(t, 1, failures)
	assert.Len(t, store.saved, 1)
}

func TestLoadAbortsOnConnectivityFailure(t *testing.T) {
	bundles, _ := transformSample(t)
	store := &stubStore{errFor: map[string]error{
		bundles[0].Property.PropertyKey: &database.LoadError{
			PropertyKey:  bundles[0].Property.PropertyKey,
			Connectivity: true,
			Err:          errors.New("broken pipe"),
		},
	}}

	_, err := Load(store, bundles)
	require.Error(t, err)
	assert.True(t, database.IsConnectivity(err))
	assert.Empty(t, store.saved)
}

func TestRunDryRun(t *testing.T) {
	dataPath := writeTempDataset(t)

	cfg := config.DefaultConfig()
	cfg.ETL.DataPath = dataPath

	summary, err := Run(cfg, Options{DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Properties)
	assert.Equal(t, 1, summary.Leads)
	assert.Equal(t, 2, summary.Valuations)
	assert.Equal(t, 1, summary.Taxes)
	assert.Equal(t, 0, summary.LoadFailures)
}

func TestRunBadFieldConfigIsFatal(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.ETL.DataPath = writeTempDataset(t)
	cfg.ETL.FieldConfigPath = writeTempFile(t, "fields.yaml", `
- source: City
  field: city
  table: property
`)

	_, err := Run(cfg, Options{DryRun: true})
	var cerr *fieldmap.ConfigError
	require.ErrorAs(t, err, &cerr)
}

func TestFieldConfigDefault(t *testing.T) {
	cfg := config.DefaultConfig()
	fields, err := FieldConfig(cfg)
	require.NoError(t, err)
	_, _, ok := fields.Resolve("Street_Address")
	assert.True(t, ok)
}

func TestOpenStoreUnknownType(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Database.Type = "oracle"
	_, err := OpenStore(cfg)
	assert.Error(t, err)
}

func writeTempDataset(t *testing.T) string {
	t.Helper()
	return writeTempFile(t, "data.json", string(sampleDataset))
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
