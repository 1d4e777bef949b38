// Package reader loads the raw property dataset. The source files are
// JSON-like but loosely formatted (single quotes, unquoted tokens, NaN),
// so they are parsed with a YAML parser, which accepts a superset of JSON.
package reader

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// RawRecord is one untyped source record: raw column name to arbitrary
// scalar (or nested scenario list). Discarded after normalization.
type RawRecord map[string]any

// Load reads the dataset at path and returns its records. A file holding
// a single object yields one record.
func Load(path string) ([]RawRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reader: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes raw dataset bytes into records.
func Parse(data []byte) ([]RawRecord, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("reader: parse dataset: %w", err)
	}
	return asRecords(doc)
}

func asRecords(doc any) ([]RawRecord, error) {
	switch v := doc.(type) {
	case nil:
		return nil, nil
	case []any:
		records := make([]RawRecord, 0, len(v))
		for i, item := range v {
			rec, ok := asRecord(item)
			if !ok {
				return nil, fmt.Errorf("reader: entry %d is not an object", i)
			}
			records = append(records, rec)
		}
		return records, nil
	default:
		rec, ok := asRecord(v)
		if !ok {
			return nil, fmt.Errorf("reader: dataset is neither an object nor a list of objects")
		}
		return []RawRecord{rec}, nil
	}
}

// asRecord converts a decoded YAML mapping to a RawRecord. Non-string keys
// (YAML allows them) are stringified.
func asRecord(item any) (RawRecord, bool) {
	switch m := item.(type) {
	case map[string]any:
		return RawRecord(m), true
	case map[any]any:
		rec := make(RawRecord, len(m))
		for k, val := range m {
			rec[fmt.Sprintf("%v", k)] = val
		}
		return rec, true
	}
	return nil, false
}
