package ttlstore

import (
	"context"
	"log"

	"github.com/robfig/cron/v3"
)

// StartPurgeScheduler removes expired entries on the given cron spec.
func StartPurgeScheduler(store Store, spec string) (*cron.Cron, error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	_, err := c.AddFunc(spec, func() {
		n, err := store.Purge(context.Background())
		if err != nil {
			log.Printf("[CLEANUP ERROR] purge ttl entries: %v", err)
			return
		}
		if n > 0 {
			log.Printf("[CLEANUP] %d expired ttl entries removed", n)
		}
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}
