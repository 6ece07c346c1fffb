package etl

import (
	"log"
	"time"

	"millstat/config"
	"millstat/database"
	"millstat/mart"
)

// Scheduler handles periodic ingest, rollup refresh and cleanup
type Scheduler struct {
	cfg         *config.Config
	ingestor    *DataIngestor
	martBuilder *mart.MartBuilder
	repo        *database.Repository
	ticker      *time.Ticker
	quit        chan struct{}
	lastCleanup time.Time
}

// NewScheduler creates a new scheduler
func NewScheduler(cfg *config.Config, ingestor *DataIngestor, martBuilder *mart.MartBuilder, repo *database.Repository) *Scheduler {
	return &Scheduler{
		cfg:         cfg,
		ingestor:    ingestor,
		martBuilder: martBuilder,
		repo:        repo,
		quit:        make(chan struct{}),
	}
}

// Start begins the scheduling loop
func (s *Scheduler) Start() {
	if !s.cfg.Scheduler.Enabled {
		log.Println("Scheduler is disabled by config.")
		return
	}

	interval := time.Duration(s.cfg.Scheduler.IntervalMinutes) * time.Minute
	if interval <= 0 {
		interval = 60 * time.Minute
	}

	log.Printf("Starting Scheduler. Interval: %v (Cleanup at %s)\n", interval, s.cfg.Scheduler.CleanupTime)
	s.ticker = time.NewTicker(interval)

	go func() {
		for {
			select {
			case <-s.ticker.C:
				s.RunJob()
			case <-s.quit:
				s.ticker.Stop()
				return
			}
		}
	}()
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	if s.ticker != nil {
		close(s.quit)
	}
}

// RunJob executes one scheduled ingest, rollup refresh and cleanup check
func (s *Scheduler) RunJob() {
	log.Println("[Scheduler] Starting Scheduled Ingestion...")

	counts, err := s.ingestor.IngestData(time.Time{}, time.Time{})
	if err != nil {
		log.Printf("[Scheduler] Ingestion Failed: %v\n", err)
	} else {
		log.Printf("[Scheduler] Ingestion Complete. Records: %v\n", counts)
	}

	if _, err := s.martBuilder.Refresh(); err != nil {
		log.Printf("[Scheduler] Rollup Refresh Failed: %v\n", err)
	}

	s.checkAndRunCleanup()

	log.Println("[Scheduler] Job Finished.")
}

func (s *Scheduler) checkAndRunCleanup() {
	cleanupTimeStr := s.cfg.Scheduler.CleanupTime
	if cleanupTimeStr == "" {
		cleanupTimeStr = "06:00"
	}

	now := time.Now()
	target, err := time.Parse("15:04", cleanupTimeStr)
	if err != nil {
		log.Printf("[Scheduler] Invalid cleanup time format: %v", err)
		return
	}

	cleanupTarget := time.Date(now.Year(), now.Month(), now.Day(), target.Hour(), target.Minute(), 0, 0, now.Location())

	// Run once per day after the target time; a restart may repeat the run,
	// which is harmless for retention deletes.
	shouldRun := false
	if now.After(cleanupTarget) {
		if s.lastCleanup.IsZero() || s.lastCleanup.Before(cleanupTarget) {
			shouldRun = true
		}
	}

	if shouldRun {
		log.Println("[Scheduler] Starting Daily Cleanup...")
		if err := s.repo.CleanupOldData(s.cfg.DataRetentionDays); err != nil {
			log.Printf("[Scheduler] Cleanup Failed: %v", err)
		}
		s.lastCleanup = now
		log.Println("[Scheduler] Cleanup Completed.")
	}
}
