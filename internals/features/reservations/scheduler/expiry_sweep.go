package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"library_backend/internals/features/reservations/service"
)

// Sweeper is the part of the engine the schedule drives.
type Sweeper interface {
	ExpireOld(ctx context.Context) (int64, error)
}

// StartExpirySweep runs ExpireOld on the given cron schedule. Overlapping runs are skipped.
func StartExpirySweep(svc Sweeper, spec string) (*cron.Cron, error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	if _, err := c.AddFunc(spec, func() { RunSweep(svc) }); err != nil {
		return nil, err
	}
	c.Start()
	log.Printf("[SWEEP] reservation expiry scheduled (%s)", spec)
	return c, nil
}

// RunSweep performs one sweep with a bounded timeout.
func RunSweep(svc Sweeper) int64 {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	n, err := svc.ExpireOld(ctx)
	if err != nil {
		log.Printf("[SWEEP ERROR] %v", err)
		return 0
	}
	return n
}

var _ Sweeper = (*service.ReservationService)(nil)
