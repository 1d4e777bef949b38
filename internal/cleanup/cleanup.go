// Package cleanup removes properties that have disappeared from the source
// dataset. A full load upserts everything the dataset still contains, so any
// stored key absent from the current run is stale and can be deleted; the
// cascade constraints take the child rows along.
package cleanup

import (
	"fmt"
	"log"
	"time"

	"property-etl/internal/database"
)

// Config holds the knobs for one prune pass.
type Config struct {
	MaxDeletionCount int  // abort if more keys than this would be deleted
	DryRun           bool // log candidates without deleting
}

// DefaultConfig returns the default prune configuration.
func DefaultConfig() Config {
	return Config{
		MaxDeletionCount: 10000,
		DryRun:           false,
	}
}

// Result summarizes one prune pass.
type Result struct {
	TargetCount  int       `json:"target_count"`
	DeletedCount int       `json:"deleted_count"`
	ErrorCount   int       `json:"error_count"`
	DryRun       bool      `json:"dry_run"`
	ExecutedAt   time.Time `json:"executed_at"`
	DeletedKeys  []string  `json:"deleted_keys,omitempty"`
	Errors       []string  `json:"errors,omitempty"`
}

// Service deletes stored properties whose keys no longer appear in the
// source dataset.
type Service struct {
	store database.Store
}

// NewService creates a prune service on top of a store.
func NewService(store database.Store) *Service {
	return &Service{store: store}
}

// FindStaleKeys returns the stored keys that are missing from the current
// dataset.
func (s *Service) FindStaleKeys(currentKeys []string) ([]string, error) {
	stored, err := s.store.ListKeys()
	if err != nil {
		return nil, fmt.Errorf("failed to list stored property keys: %w", err)
	}

	current := make(map[string]struct{}, len(currentKeys))
	for _, key := range currentKeys {
		current[key] = struct{}{}
	}

	var stale []string
	for _, key := range stored {
		if _, ok := current[key]; !ok {
			stale = append(stale, key)
		}
	}

	log.Printf("Cleanup: %d stored keys, %d stale", len(stored), len(stale))
	return stale, nil
}

// Prune deletes every stored property absent from currentKeys, subject to
// the safety limit.
func (s *Service) Prune(currentKeys []string, config Config) (*Result, error) {
	result := &Result{
		DryRun:     config.DryRun,
		ExecutedAt: time.Now(),
	}

	stale, err := s.FindStaleKeys(currentKeys)
	if err != nil {
		return nil, err
	}

	result.TargetCount = len(stale)
	if result.TargetCount == 0 {
		log.Println("Cleanup: no stale properties found")
		return result, nil
	}

	if result.TargetCount > config.MaxDeletionCount {
		return nil, fmt.Errorf("safety check failed: %d stale properties exceed max deletion limit of %d",
			result.TargetCount, config.MaxDeletionCount)
	}

	log.Printf("Cleanup: deleting %d stale properties (dry-run: %v)",
		result.TargetCount, config.DryRun)

	for _, key := range stale {
		if config.DryRun {
			log.Printf("Cleanup: [dry-run] would delete property %s", key)
			result.DeletedKeys = append(result.DeletedKeys, key)
			result.DeletedCount++
			continue
		}

		if err := s.store.DeleteProperty(key); err != nil {
			if database.IsConnectivity(err) {
				return result, err
			}
			errMsg := fmt.Sprintf("failed to delete property %s: %v", key, err)
			log.Printf("Cleanup: ERROR %s", errMsg)
			result.Errors = append(result.Errors, errMsg)
			result.ErrorCount++
			continue
		}

		result.DeletedKeys = append(result.DeletedKeys, key)
		result.DeletedCount++
	}

	log.Printf("Cleanup: completed, %d/%d deleted, %d errors (dry-run: %v)",
		result.DeletedCount, result.TargetCount, result.ErrorCount, config.DryRun)

	return result, nil
}
