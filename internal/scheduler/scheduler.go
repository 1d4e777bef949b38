// Package scheduler re-runs the full batch on a daily cron schedule.
// Reloads are idempotent, so a scheduled run is always safe.
package scheduler

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/robfig/cron/v3"

	"property-etl/internal/config"
	"property-etl/internal/etl"
)

// Scheduler handles scheduled full-reload runs.
type Scheduler struct {
	cron      *cron.Cron
	config    *config.Config
	isRunning bool
}

// New creates a scheduler over the run configuration.
func New(cfg *config.Config) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		config: cfg,
	}
}

// Start registers the daily job and starts the cron loop.
func (s *Scheduler) Start() error {
	if !s.config.ETL.DailyRunEnabled {
		log.Println("Scheduler: daily run is disabled in configuration")
		return nil
	}

	cronSpec := parseDailyRunTime(s.config.ETL.DailyRunTime)

	_, err := s.cron.AddFunc(cronSpec, func() {
		log.Println("Scheduler: starting daily reload...")
		summary, err := etl.Run(s.config, etl.Options{})
		if err != nil {
			log.Printf("Scheduler: daily reload failed: %v", err)
			return
		}
		log.Printf("Scheduler: daily reload completed: %s", summary)
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.isRunning = true
	log.Printf("Scheduler: started with daily run at %s (cron: %s)", s.config.ETL.DailyRunTime, cronSpec)

	return nil
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	if s.isRunning {
		s.cron.Stop()
		s.isRunning = false
		log.Println("Scheduler: stopped")
	}
}

// parseDailyRunTime converts an HH:MM config value into a cron spec,
// falling back to 02:00 on malformed input.
func parseDailyRunTime(value string) string {
	parts := strings.SplitN(value, ":", 2)
	if len(parts) == 2 {
		hour, herr := strconv.Atoi(parts[0])
		minute, merr := strconv.Atoi(parts[1])
		if herr == nil && merr == nil && hour >= 0 && hour < 24 && minute >= 0 && minute < 60 {
			return fmt.Sprintf("%d %d * * *", minute, hour)
		}
	}
	log.Printf("Scheduler: invalid daily_run_time %q, defaulting to 02:00", value)
	return "0 2 * * *"
}
