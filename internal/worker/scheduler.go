package worker

import (
	"context"
	"log"
	"time"

	"github.com/smarteats/orderflow/internal/engine"
)

// Scheduler polls for scheduled orders whose time has come and promotes them
// into the live pipeline. Safe to run on several nodes at once: promotion is
// a conditional write, so duplicates lose the race and are skipped.
type Scheduler struct {
	machine  *engine.OrderStateMachine
	interval time.Duration
}

func NewScheduler(machine *engine.OrderStateMachine, interval time.Duration) *Scheduler {
	return &Scheduler{machine: machine, interval: interval}
}

// Run blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	log.Printf("Starting scheduled-order worker (interval: %v)", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Scheduled-order worker stopping")
			return ctx.Err()
		case <-ticker.C:
			promoted, err := s.machine.PromoteScheduled(ctx, time.Now())
			if err != nil {
				log.Printf("Failed to promote scheduled orders: %v", err)
				continue
			}
			if promoted > 0 {
				log.Printf("Promoted %d scheduled orders", promoted)
			}
		}
	}
}
