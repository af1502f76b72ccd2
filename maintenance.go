package main

import (
	"database/sql"
	"log"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// StartMaintenanceScheduler runs audit-log retention pruning on a cron
// schedule. The schedule is a standard 5-field cron expression (minute hour
// day-of-month month day-of-week); an empty schedule disables maintenance.
func StartMaintenanceScheduler(cfg Config, db *sql.DB) {
	schedule := strings.TrimSpace(cfg.PruneSchedule)
	if schedule == "" {
		log.Println("Maintenance disabled (prune_schedule not set)")
		return
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	sched, err := parser.Parse(schedule)
	if err != nil {
		log.Printf("Invalid prune_schedule '%s': %v — maintenance disabled", schedule, err)
		return
	}

	log.Printf("Maintenance scheduled (cron: %s), retention %d days", schedule, cfg.RetentionDays)

	go func() {
		for {
			now := time.Now()
			next := sched.Next(now)
			wait := next.Sub(now)
			log.Printf("Next maintenance at %s (in %s)", next.Format("Mon Jan 2 15:04"), wait.Round(time.Minute))

			time.Sleep(wait)
			// sqlite CURRENT_TIMESTAMP is UTC; compare in UTC.
			RunMaintenance(cfg, db, time.Now().UTC())
		}
	}()
}

// RunMaintenance performs one prune-and-summarize pass. Split out from the
// scheduler loop so it can run directly in tests.
func RunMaintenance(cfg Config, db *sql.DB, now time.Time) {
	cutoff := now.AddDate(0, 0, -cfg.RetentionDays)
	pruned, err := PrunePredictions(db, cutoff)
	if err != nil {
		log.Printf("Maintenance prune error: %v", err)
	} else {
		log.Printf("Maintenance pruned %d audit rows older than %s", pruned, cutoff.Format("2006-01-02"))
	}

	stats, err := GetPredictionStats(db, now.AddDate(0, 0, -7))
	if err != nil {
		log.Printf("Maintenance stats error: %v", err)
		return
	}
	log.Printf("Last 7 days: %d predictions (treat=%d withhold=%d neutral=%d, avg ITE %.4f)",
		stats.Total, stats.Treat, stats.Withhold, stats.Neutral, stats.AvgITE)
}
