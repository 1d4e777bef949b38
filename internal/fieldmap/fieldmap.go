// Package fieldmap holds the declarative mapping from raw source columns
// to the canonical field vocabulary. The mapping is loaded once at startup
// and immutable for the rest of the run.
package fieldmap

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Kind is the coercion applied to a mapped column's values.
type Kind string

const (
	KindString  Kind = "string"
	KindInt     Kind = "int"
	KindDecimal Kind = "decimal"
	KindBool    Kind = "bool"
	KindDate    Kind = "date"
)

// Table names the target table a canonical field belongs to.
type Table string

const (
	TableProperty  Table = "property"
	TableLeads     Table = "leads"
	TableValuation Table = "valuation"
	TableRehab     Table = "rehab"
	TableHoa       Table = "hoa"
	TableTaxes     Table = "taxes"
)

// ScenarioTables are the repeatable child groups keyed by scenario rank.
var ScenarioTables = map[Table]bool{
	TableValuation: true,
	TableRehab:     true,
	TableHoa:       true,
}

// Mapping is one entry of the field configuration.
type Mapping struct {
	Source   string `yaml:"source"`
	Field    string `yaml:"field"`
	Table    Table  `yaml:"table"`
	Kind     Kind   `yaml:"kind"`
	Places   int    `yaml:"places,omitempty"`
	Required bool   `yaml:"required,omitempty"`
}

// ConfigError reports a malformed mapping table. It is fatal and aborts
// the run before any record is processed.
type ConfigError struct {
	Problems []string
}

func (e *ConfigError) Error() string {
	return "fieldmap: invalid field configuration: " + strings.Join(e.Problems, "; ")
}

// requiredFields must be present in any usable mapping table; without them
// no record can be addressed.
var requiredFields = []string{"street_address", "city", "state", "zip_code"}

// Config is the validated, immutable lookup table.
type Config struct {
	bySource map[string]Mapping
}

// New validates entries and builds the lookup table. Duplicate canonical
// targets within a table or missing required address entries yield a
// ConfigError.
func New(entries []Mapping) (*Config, error) {
	var problems []string
	bySource := make(map[string]Mapping, len(entries))
	byTarget := make(map[string]bool, len(entries))

	for _, m := range entries {
		source := strings.ToLower(strings.TrimSpace(m.Source))
		if source == "" || m.Field == "" {
			problems = append(problems, fmt.Sprintf("entry %q -> %q has an empty name", m.Source, m.Field))
			continue
		}
		if _, dup := bySource[source]; dup {
			problems = append(problems, fmt.Sprintf("duplicate source column %q", m.Source))
			continue
		}
		target := string(m.Table) + "." + m.Field
		if byTarget[target] {
			problems = append(problems, fmt.Sprintf("duplicate target field %q", target))
			continue
		}
		if m.Kind == "" {
			m.Kind = KindString
		}
		byTarget[target] = true
		bySource[source] = m
	}

	for _, field := range requiredFields {
		if !byTarget[string(TableProperty)+"."+field] {
			problems = append(problems, fmt.Sprintf("missing required entry for property.%s", field))
		}
	}

	if len(problems) > 0 {
		return nil, &ConfigError{Problems: problems}
	}
	return &Config{bySource: bySource}, nil
}

// Load reads a YAML field configuration file. The file holds a list of
// Mapping entries and fully replaces the built-in default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("fieldmap: read %s: %w", path, err)
	}
	var entries []Mapping
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, &ConfigError{Problems: []string{fmt.Sprintf("parse %s: %v", path, err)}}
	}
	return New(entries)
}

// Resolve looks up a raw column name, case-insensitively. A trailing
// numeric suffix on a scenario-table column ("List_Price_2") selects that
// scenario; unsuffixed scenario columns resolve to scenario 1.
func (c *Config) Resolve(source string) (m Mapping, scenario int, ok bool) {
	key := strings.ToLower(strings.TrimSpace(source))
	if m, ok = c.bySource[key]; ok {
		return m, 1, true
	}
	base, n, hasSuffix := splitSuffix(key)
	if !hasSuffix {
		return Mapping{}, 0, false
	}
	m, ok = c.bySource[base]
	if !ok || !ScenarioTables[m.Table] {
		return Mapping{}, 0, false
	}
	return m, n, true
}

// Fields returns the canonical field names mapped into a table.
func (c *Config) Fields(table Table) []string {
	var fields []string
	for _, m := range c.bySource {
		if m.Table == table {
			fields = append(fields, m.Field)
		}
	}
	return fields
}

// splitSuffix splits "list_price_2" into ("list_price", 2, true).
func splitSuffix(key string) (string, int, bool) {
	idx := strings.LastIndex(key, "_")
	if idx <= 0 || idx == len(key)-1 {
		return "", 0, false
	}
	n, err := strconv.Atoi(key[idx+1:])
	if err != nil || n < 1 {
		return "", 0, false
	}
	return key[:idx], n, true
}

// Default returns the built-in mapping table covering the source dataset's
// full vocabulary, including the historical aliases (Zip, SQFT_MU,
// BasementYesNo, HOA, Taxes).
func Default() *Config {
	cfg, err := New(defaultEntries)
	if err != nil {
		// The built-in table is validated by tests; reaching this is a bug.
		panic(err)
	}
	return cfg
}

var defaultEntries = []Mapping{
	// property
	{Source: "Property_Title", Field: "property_title", Table: TableProperty, Kind: KindString},
	{Source: "Address", Field: "address", Table: TableProperty, Kind: KindString},
	{Source: "Market", Field: "market", Table: TableProperty, Kind: KindString},
	{Source: "Flood", Field: "flood", Table: TableProperty, Kind: KindString},
	{Source: "Street_Address", Field: "street_address", Table: TableProperty, Kind: KindString, Required: true},
	{Source: "City", Field: "city", Table: TableProperty, Kind: KindString, Required: true},
	{Source: "State", Field: "state", Table: TableProperty, Kind: KindString, Required: true},
	{Source: "Zip", Field: "zip_code", Table: TableProperty, Kind: KindString, Required: true},
	{Source: "Property_Type", Field: "property_type", Table: TableProperty, Kind: KindString},
	{Source: "Highway", Field: "highway", Table: TableProperty, Kind: KindString},
	{Source: "Train", Field: "train", Table: TableProperty, Kind: KindString},
	{Source: "Tax_Rate", Field: "tax_rate", Table: TableProperty, Kind: KindDecimal, Places: 4},
	{Source: "SQFT_Basement", Field: "sqft_basement", Table: TableProperty, Kind: KindInt},
	{Source: "HTW", Field: "htw", Table: TableProperty, Kind: KindString},
	{Source: "Pool", Field: "pool", Table: TableProperty, Kind: KindBool},
	{Source: "Commercial", Field: "commercial", Table: TableProperty, Kind: KindBool},
	{Source: "Water", Field: "water", Table: TableProperty, Kind: KindString},
	{Source: "Sewage", Field: "sewage", Table: TableProperty, Kind: KindString},
	{Source: "Year_Built", Field: "year_built", Table: TableProperty, Kind: KindInt},
	{Source: "SQFT_MU", Field: "sqft_mixed_use", Table: TableProperty, Kind: KindInt},
	{Source: "SQFT_Total", Field: "sqft_total", Table: TableProperty, Kind: KindInt},
	{Source: "Parking", Field: "parking", Table: TableProperty, Kind: KindString},
	{Source: "Bed", Field: "bed", Table: TableProperty, Kind: KindInt},
	{Source: "Bath", Field: "bath", Table: TableProperty, Kind: KindDecimal, Places: 1},
	{Source: "BasementYesNo", Field: "basement", Table: TableProperty, Kind: KindBool},
	{Source: "Layout", Field: "layout", Table: TableProperty, Kind: KindString},
	{Source: "Rent_Restricted", Field: "rent_restricted", Table: TableProperty, Kind: KindBool},
	{Source: "Neighborhood_Rating", Field: "neighborhood_rating", Table: TableProperty, Kind: KindInt},
	{Source: "Latitude", Field: "latitude", Table: TableProperty, Kind: KindDecimal, Places: 6},
	{Source: "Longitude", Field: "longitude", Table: TableProperty, Kind: KindDecimal, Places: 6},
	{Source: "Subdivision", Field: "subdivision", Table: TableProperty, Kind: KindString},
	{Source: "School_Average", Field: "school_average", Table: TableProperty, Kind: KindDecimal, Places: 2},

	// leads
	{Source: "Reviewed_Status", Field: "reviewed_status", Table: TableLeads, Kind: KindString},
	{Source: "Most_Recent_Status", Field: "most_recent_status", Table: TableLeads, Kind: KindString},
	{Source: "Source", Field: "source", Table: TableLeads, Kind: KindString},
	{Source: "Occupancy", Field: "occupancy", Table: TableLeads, Kind: KindString},
	{Source: "Net_Yield", Field: "net_yield", Table: TableLeads, Kind: KindDecimal, Places: 3},
	{Source: "IRR", Field: "irr", Table: TableLeads, Kind: KindDecimal, Places: 3},
	{Source: "Selling_Reason", Field: "selling_reason", Table: TableLeads, Kind: KindString},
	{Source: "Seller_Retained_Broker", Field: "seller_retained_broker", Table: TableLeads, Kind: KindBool},
	{Source: "Final_Reviewer", Field: "final_reviewer", Table: TableLeads, Kind: KindString},

	// valuation scenarios
	{Source: "List_Price", Field: "list_price", Table: TableValuation, Kind: KindDecimal, Places: 2},
	{Source: "Previous_Rent", Field: "previous_rent", Table: TableValuation, Kind: KindDecimal, Places: 2},
	{Source: "ARV", Field: "arv", Table: TableValuation, Kind: KindDecimal, Places: 2},
	{Source: "Expected_Rent", Field: "expected_rent", Table: TableValuation, Kind: KindDecimal, Places: 2},
	{Source: "Rent_Zestimate", Field: "rent_zestimate", Table: TableValuation, Kind: KindDecimal, Places: 2},
	{Source: "Low_FMR", Field: "low_fmr", Table: TableValuation, Kind: KindDecimal, Places: 2},
	{Source: "High_FMR", Field: "high_fmr", Table: TableValuation, Kind: KindDecimal, Places: 2},
	{Source: "Redfin_Value", Field: "redfin_value", Table: TableValuation, Kind: KindDecimal, Places: 2},
	{Source: "Zestimate", Field: "zestimate", Table: TableValuation, Kind: KindDecimal, Places: 2},

	// rehab scenarios
	{Source: "Underwriting_Rehab", Field: "underwriting_rehab", Table: TableRehab, Kind: KindDecimal, Places: 2},
	{Source: "Rehab_Calculation", Field: "rehab_calculation", Table: TableRehab, Kind: KindDecimal, Places: 2},
	{Source: "Paint", Field: "paint", Table: TableRehab, Kind: KindBool},
	{Source: "Flooring_Flag", Field: "flooring_flag", Table: TableRehab, Kind: KindBool},
	{Source: "Foundation_Flag", Field: "foundation_flag", Table: TableRehab, Kind: KindBool},
	{Source: "Roof_Flag", Field: "roof_flag", Table: TableRehab, Kind: KindBool},
	{Source: "HVAC_Flag", Field: "hvac_flag", Table: TableRehab, Kind: KindBool},
	{Source: "Kitchen_Flag", Field: "kitchen_flag", Table: TableRehab, Kind: KindBool},
	{Source: "Bathroom_Flag", Field: "bathroom_flag", Table: TableRehab, Kind: KindBool},
	{Source: "Appliances_Flag", Field: "appliances_flag", Table: TableRehab, Kind: KindBool},
	{Source: "Windows_Flag", Field: "windows_flag", Table: TableRehab, Kind: KindBool},
	{Source: "Landscaping_Flag", Field: "landscaping_flag", Table: TableRehab, Kind: KindBool},
	{Source: "Trashout_Flag", Field: "trashout_flag", Table: TableRehab, Kind: KindBool},

	// hoa scenarios
	{Source: "HOA", Field: "hoa_amount", Table: TableHoa, Kind: KindDecimal, Places: 2},
	{Source: "HOA_Flag", Field: "hoa_flag", Table: TableHoa, Kind: KindBool},

	// taxes
	{Source: "Taxes", Field: "amount", Table: TableTaxes, Kind: KindDecimal, Places: 2},
}
