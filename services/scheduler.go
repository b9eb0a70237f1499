// services/scheduler.go
package services

import (
	"log"
	"sync"
	"time"
)

// Scheduler drives the lifecycle jobs on fixed intervals. Job runs are
// independent: one failing or overrunning job never blocks the others, and
// because the jobs themselves are compare-and-set idempotent, overlapping
// runs are harmless.
type Scheduler struct {
	Lifecycle *LifecycleService

	OverdueEvery time.Duration
	FeesEvery    time.Duration
	CancelEvery  time.Duration

	stop chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

func NewScheduler(lifecycle *LifecycleService) *Scheduler {
	return &Scheduler{
		Lifecycle:    lifecycle,
		OverdueEvery: 24 * time.Hour,
		// the per-row week bucket keeps a daily sweep from double-charging
		FeesEvery:   24 * time.Hour,
		CancelEvery: 12 * time.Hour,
		stop:        make(chan struct{}),
	}
}

func (s *Scheduler) Start() {
	s.launch("mark_overdue", s.OverdueEvery, s.Lifecycle.MarkOverdue)
	s.launch("accrue_late_fees", s.FeesEvery, s.Lifecycle.AccrueLateFees)
	s.launch("cancel_unpaid_allocations", s.CancelEvery, s.Lifecycle.CancelUnpaidAllocations)
	log.Println("lifecycle scheduler started")
}

func (s *Scheduler) Stop() {
	s.once.Do(func() { close(s.stop) })
	s.wg.Wait()
	log.Println("lifecycle scheduler stopped")
}

func (s *Scheduler) launch(name string, every time.Duration, job func() (JobResult, error)) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(every)
		defer ticker.Stop()

		s.runOne(name, job)
		for {
			select {
			case <-ticker.C:
				s.runOne(name, job)
			case <-s.stop:
				return
			}
		}
	}()
}

func (s *Scheduler) runOne(name string, job func() (JobResult, error)) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("job %s panicked: %v", name, r)
		}
	}()

	res, err := job()
	if err != nil {
		log.Printf("job %s failed: %v", name, err)
		return
	}
	log.Printf("job %s: examined=%d updated=%d failed=%d",
		res.Job, res.Examined, res.Updated, res.Failed)
}
