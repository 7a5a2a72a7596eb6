package jobs

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/xctd-glitch/trackng.app/database"
	"github.com/xctd-glitch/trackng.app/internal/store"
	"github.com/xctd-glitch/trackng.app/models"
)

// Click log rows older than this are trimmed nightly.
const clickLogRetentionDays = 90

// Start registers the scheduled jobs and starts the cron runner. The
// counter reset also happens lazily in the decision path; the scheduled
// run is a safety net for days with no traffic around midnight.
func Start(st store.ConfigStore, loc *time.Location) *cron.Cron {
	c := cron.New(cron.WithLocation(loc))

	c.AddFunc("1 0 * * *", func() {
		resetCounters(st)
	})
	c.AddFunc("0 3 * * *", func() {
		trimClickLogs()
	})

	c.Start()
	log.Println("[Jobs] Scheduled jobs started (counter reset 00:01, log trim 03:00)")
	return c
}

func resetCounters(st store.ConfigStore) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := st.ResetCountersIfNewDay(ctx); err != nil {
		log.Printf("[Jobs] Error resetting counters: %v", err)
		return
	}
	log.Println("[Jobs] Daily counter reset check completed")
}

func trimClickLogs() {
	cutoff := time.Now().AddDate(0, 0, -clickLogRetentionDays)

	res := database.DB.Where("created_at < ?", cutoff).Delete(&models.ClickLog{})
	if res.Error != nil {
		log.Printf("[Jobs] Error trimming click logs: %v", res.Error)
		return
	}
	if res.RowsAffected > 0 {
		log.Printf("[Jobs] Trimmed %d click log rows older than %d days", res.RowsAffected, clickLogRetentionDays)
	}

	res = database.DB.Where("created_at < ?", cutoff).Delete(&models.PostbackLog{})
	if res.Error != nil {
		log.Printf("[Jobs] Error trimming postback logs: %v", res.Error)
		return
	}
	if res.RowsAffected > 0 {
		log.Printf("[Jobs] Trimmed %d postback log rows", res.RowsAffected)
	}
}
