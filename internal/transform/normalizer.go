package transform

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"property-etl/internal/coerce"
	"property-etl/internal/fieldmap"
	"property-etl/internal/reader"
)

// requiredFields reject the whole record when absent or uncoercible.
var requiredFields = []string{"street_address", "city", "state", "zip_code"}

// groupKeys maps raw top-level keys that carry nested scenario lists to
// their target group.
var groupKeys = map[string]fieldmap.Table{
	"valuation": fieldmap.TableValuation,
	"rehab":     fieldmap.TableRehab,
	"hoa":       fieldmap.TableHoa,
}

// RejectionError reports a record-level validation rejection. The record
// is skipped and counted; nothing is emitted for it.
type RejectionError struct {
	Reason  string
	Missing []string
	Snippet string
}

func (e *RejectionError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("record rejected: %s (missing: %s)", e.Reason, strings.Join(e.Missing, ", "))
	}
	return "record rejected: " + e.Reason
}

// Normalizer applies the field mapping and value coercion to raw records
// and aggregates a run-level validation report. Not safe for concurrent
// use; each worker gets its own.
type Normalizer struct {
	config *fieldmap.Config
	report *Report
	index  int
}

// NewNormalizer builds a normalizer over a validated field configuration.
func NewNormalizer(cfg *fieldmap.Config) *Normalizer {
	return &Normalizer{config: cfg, report: NewReport()}
}

// Report exposes the aggregated validation report.
func (n *Normalizer) Report() *Report {
	return n.report
}

// Normalize converts one raw record into a canonical record, or a
// *RejectionError when a required address field is missing or uncoercible.
// Failures on optional fields degrade to null and are counted in the
// report. The outcome is deterministic for a given input.
func (n *Normalizer) Normalize(raw reader.RawRecord) (*CanonicalRecord, error) {
	n.index++

	rec := &CanonicalRecord{
		fields: make(map[string]Value),
		groups: make(map[fieldmap.Table][]Scenario),
	}
	// Indexed scenario slots per group; compacted into ordered lists below.
	slots := make(map[fieldmap.Table]map[int]Scenario)

	for key, rawValue := range raw {
		if table, ok := groupKeys[strings.ToLower(strings.TrimSpace(key))]; ok {
			if nested, isNested := nestedScenarios(rawValue); isNested {
				n.foldNested(table, nested, slots)
				continue
			}
			// A scalar under a group key (e.g. a bare HOA amount) falls
			// through to plain column resolution.
		}

		mapping, scenario, ok := n.config.Resolve(key)
		if !ok {
			n.report.UnknownFields[key]++
			continue
		}

		value := n.coerceField(mapping, rawValue)
		if fieldmap.ScenarioTables[mapping.Table] {
			setSlot(slots, mapping.Table, scenario, mapping.Field, value)
		} else {
			rec.fields[mapping.Field] = value
		}
	}

	for table, indexed := range slots {
		rec.groups[table] = orderedScenarios(indexed)
	}

	if err := n.checkRequired(rec, raw); err != nil {
		n.report.Rejected++
		return nil, err
	}

	applyZipRule(rec)
	applyYearBuiltRule(rec)

	n.report.Accepted++
	return rec, nil
}

// coerceField runs the mapping's coercer; a failure degrades the field to
// null and is counted. Required-field enforcement happens afterwards in
// checkRequired, so a failed required field surfaces as missing.
func (n *Normalizer) coerceField(m fieldmap.Mapping, raw any) Value {
	var v Value
	var err error

	switch m.Kind {
	case fieldmap.KindInt:
		v.Int, err = coerce.Int(raw)
	case fieldmap.KindDecimal:
		v.Dec, err = coerce.Decimal(raw, m.Places)
	case fieldmap.KindBool:
		v.Bool, err = coerce.Bool(raw)
	case fieldmap.KindDate:
		var t *time.Time
		t, err = coerce.Date(raw)
		if t != nil {
			formatted := t.Format("2006-01-02")
			v.Str = &formatted
		}
	default:
		v.Str = coerce.String(raw)
	}

	if err != nil {
		n.report.FieldFailures[m.Field]++
		return Value{}
	}
	return v
}

// foldNested coerces one nested scenario list ([{...}, {...}]) into slots,
// preserving source order.
func (n *Normalizer) foldNested(table fieldmap.Table, scenarios []map[string]any, slots map[fieldmap.Table]map[int]Scenario) {
	for i, fields := range scenarios {
		for key, rawValue := range fields {
			mapping, _, ok := n.config.Resolve(key)
			if !ok || mapping.Table != table {
				n.report.UnknownFields[key]++
				continue
			}
			setSlot(slots, table, i+1, mapping.Field, n.coerceField(mapping, rawValue))
		}
		// An empty scenario object still occupies its slot so later
		// entries keep their source position.
		if len(fields) == 0 {
			setSlot(slots, table, i+1, "", Value{})
		}
	}
}

func (n *Normalizer) checkRequired(rec *CanonicalRecord, raw reader.RawRecord) error {
	var missing []string
	for _, field := range requiredFields {
		if rec.fields[field].Str == nil {
			missing = append(missing, field)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	reason := "missing required field"
	if len(missing) == len(requiredFields) {
		reason = "unaddressable"
	}
	rej := &RejectionError{Reason: reason, Missing: missing, Snippet: snippet(raw)}
	n.report.Rejections = append(n.report.Rejections, Rejection{
		Index:   n.index,
		Reason:  rej.Reason,
		Missing: missing,
		Snippet: rej.Snippet,
	})
	return rej
}

// nestedScenarios recognizes the array-of-objects scenario encoding. A
// single object counts as a one-element list.
func nestedScenarios(raw any) ([]map[string]any, bool) {
	switch v := raw.(type) {
	case []any:
		scenarios := make([]map[string]any, 0, len(v))
		for _, item := range v {
			fields, ok := asObject(item)
			if !ok {
				return nil, false
			}
			scenarios = append(scenarios, fields)
		}
		return scenarios, true
	default:
		if fields, ok := asObject(raw); ok {
			return []map[string]any{fields}, true
		}
	}
	return nil, false
}

func asObject(item any) (map[string]any, bool) {
	switch m := item.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		fields := make(map[string]any, len(m))
		for k, val := range m {
			fields[fmt.Sprintf("%v", k)] = val
		}
		return fields, true
	}
	return nil, false
}

func setSlot(slots map[fieldmap.Table]map[int]Scenario, table fieldmap.Table, index int, field string, v Value) {
	if slots[table] == nil {
		slots[table] = make(map[int]Scenario)
	}
	if slots[table][index] == nil {
		slots[table][index] = make(Scenario)
	}
	if field != "" {
		slots[table][index][field] = v
	}
}

// orderedScenarios compacts indexed slots into a list in ascending source
// index. Gaps in the suffix numbering collapse; order is preserved.
func orderedScenarios(indexed map[int]Scenario) []Scenario {
	keys := make([]int, 0, len(indexed))
	for i := range indexed {
		keys = append(keys, i)
	}
	sort.Ints(keys)

	scenarios := make([]Scenario, 0, len(keys))
	for _, i := range keys {
		scenarios = append(scenarios, indexed[i])
	}
	return scenarios
}

// applyZipRule strips separators and left-pads numeric ZIPs to five
// digits, matching the char(5) column.
func applyZipRule(rec *CanonicalRecord) {
	v := rec.fields["zip_code"]
	if v.Str == nil {
		return
	}
	sanitized := strings.NewReplacer(" ", "", "-", "").Replace(*v.Str)
	if isDigits(sanitized) {
		for len(sanitized) < 5 {
			sanitized = "0" + sanitized
		}
		rec.fields["zip_code"] = Value{Str: &sanitized}
	}
}

// applyYearBuiltRule nulls out implausible construction years.
func applyYearBuiltRule(rec *CanonicalRecord) {
	v := rec.fields["year_built"]
	if v.Int == nil {
		return
	}
	if *v.Int < 1700 || *v.Int > time.Now().Year() {
		rec.fields["year_built"] = Value{}
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
