// Package etl orchestrates the batch run: read the raw dataset, normalize
// and fan out every record, and load the resulting bundles into the store.
package etl

import (
	"fmt"
	"log"
	"strconv"

	"property-etl/internal/cleanup"
	"property-etl/internal/config"
	"property-etl/internal/database"
	"property-etl/internal/fieldmap"
	"property-etl/internal/reader"
	"property-etl/internal/transform"
)

// Summary reports what one run produced.
type Summary struct {
	Properties   int
	Leads        int
	Valuations   int
	Rehabs       int
	Hoas         int
	Taxes        int
	LoadFailures int
	Pruned       int
}

func (s Summary) String() string {
	return fmt.Sprintf("properties=%d leads=%d valuations=%d rehabs=%d hoas=%d taxes=%d load_failures=%d pruned=%d",
		s.Properties, s.Leads, s.Valuations, s.Rehabs, s.Hoas, s.Taxes, s.LoadFailures, s.Pruned)
}

// Options are per-run switches set by the CLI.
type Options struct {
	DryRun bool
	Prune  bool
}

// FieldConfig resolves the mapping table: the configured YAML file when
// set, the built-in default otherwise. A malformed table is fatal before
// any record is processed.
func FieldConfig(cfg *config.Config) (*fieldmap.Config, error) {
	if cfg.ETL.FieldConfigPath == "" {
		return fieldmap.Default(), nil
	}
	return fieldmap.Load(cfg.ETL.FieldConfigPath)
}

// Transform normalizes and fans out all raw records. Rejected records are
// skipped and counted; duplicate property keys keep the first occurrence.
func Transform(records []reader.RawRecord, fields *fieldmap.Config) ([]transform.Bundle, *transform.Report) {
	normalizer := transform.NewNormalizer(fields)
	seen := make(map[string]bool)

	var bundles []transform.Bundle
	for _, raw := range records {
		rec, err := normalizer.Normalize(raw)
		if err != nil {
			continue
		}

		key := rec.Key()
		if seen[key] {
			continue
		}
		seen[key] = true

		bundles = append(bundles, transform.FanOut(rec, key))
	}
	return bundles, normalizer.Report()
}

// Load writes every bundle through the store. Row-level failures are
// logged and counted; a connectivity failure aborts since no further
// write can succeed.
func Load(store database.Store, bundles []transform.Bundle) (int, error) {
	failures := 0
	for _, b := range bundles {
		if err := store.SaveBundle(b); err != nil {
			if database.IsConnectivity(err) {
				return failures, err
			}
			log.Printf("Pipeline: %v", err)
			failures++
		}
	}
	return failures, nil
}

// Run executes the batch end to end.
func Run(cfg *config.Config, opts Options) (*Summary, error) {
	fields, err := FieldConfig(cfg)
	if err != nil {
		return nil, err
	}

	log.Printf("Pipeline: reading raw dataset from %s", cfg.ETL.DataPath)
	records, err := reader.Load(cfg.ETL.DataPath)
	if err != nil {
		return nil, err
	}
	log.Printf("Pipeline: loaded %d raw records", len(records))

	bundles, report := Transform(records, fields)
	summary := tally(bundles)

	log.Printf("Pipeline: transform complete: %s", report.Summary())
	for _, line := range report.FailureLines() {
		log.Printf("Pipeline: coercion failures for %s", line)
	}
	for _, rej := range report.Rejections {
		log.Printf("Pipeline: rejected record %d (%s): %s", rej.Index, rej.Reason, rej.Snippet)
	}

	if opts.DryRun {
		log.Println("Pipeline: dry-run enabled, skipping load stage")
		return summary, nil
	}

	store, err := OpenStore(cfg)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	if err := store.InitSchema(); err != nil {
		return nil, err
	}

	summary.LoadFailures, err = Load(store, bundles)
	if err != nil {
		return summary, err
	}

	if opts.Prune {
		keys := make([]string, 0, len(bundles))
		for _, b := range bundles {
			keys = append(keys, b.Property.PropertyKey)
		}
		result, err := cleanup.NewService(store).Prune(keys, cleanup.DefaultConfig())
		if err != nil {
			return summary, err
		}
		summary.Pruned = result.DeletedCount
	}

	log.Printf("Pipeline: load complete: %s", summary)
	return summary, nil
}

// OpenStore connects to the configured database backend.
func OpenStore(cfg *config.Config) (database.Store, error) {
	switch cfg.Database.Type {
	case "postgres":
		pg := cfg.Database.Postgres
		return database.NewPqStore(pg.Host, strconv.Itoa(pg.Port), pg.User, pg.Password, pg.Database, pg.SSLMode)
	case "", "mysql":
		my := cfg.Database.MySQL
		return database.NewGormStore(my.Host, strconv.Itoa(my.Port), my.User, my.Password, my.Database)
	default:
		return nil, fmt.Errorf("etl: unknown database type %q", cfg.Database.Type)
	}
}

func tally(bundles []transform.Bundle) *Summary {
	s := &Summary{Properties: len(bundles)}
	for _, b := range bundles {
		if b.Leads != nil {
			s.Leads++
		}
		if b.Taxes != nil {
			s.Taxes++
		}
		s.Valuations += len(b.Valuations)
		s.Rehabs += len(b.Rehabs)
		s.Hoas += len(b.Hoas)
	}
	return s
}
