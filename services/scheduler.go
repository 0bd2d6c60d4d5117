// services/scheduler.go
package services

import (
	"context"
	"log"
	"time"

	"galaxy-learn-backend/storage"

	"github.com/go-co-op/gocron/v2"
)

// StartHealthScheduler pings the store once a minute so backend outages show
// up in the logs before users hit them.
func StartHealthScheduler(store storage.Store) {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := store.Ping(ctx); err != nil {
				log.Printf("[Scheduler] Store ping failed: %v", err)
			}
		}),
	)
}
