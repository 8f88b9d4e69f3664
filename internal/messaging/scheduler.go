package messaging

import (
	"time"

	"github.com/example/vaultdesk/internal/logging"
)

// SyncInterval is the single-shot delay before a sync check is requested.
const SyncInterval = 5 * time.Minute

// Scheduler owns the one pending sync check. All methods, and the fire
// callback, run on the dispatch goroutine.
type Scheduler struct {
	clock Clock
	post  func(func())
	fire  func()

	timer      Timer
	generation uint64
}

// NewScheduler returns a Scheduler that arms timers on clock and posts their
// expiry through post. fire runs on expiry of the most recent schedule only.
func NewScheduler(clock Clock, post func(func()), fire func()) *Scheduler {
	if clock == nil {
		clock = SystemClock{}
	}
	if post == nil {
		post = func(fn func()) { fn() }
	}
	return &Scheduler{clock: clock, post: post, fire: fire}
}

// ScheduleNextSync cancels any pending check and arms a new one.
func (s *Scheduler) ScheduleNextSync() {
	s.cancel()
	s.generation++
	gen := s.generation
	s.timer = s.clock.AfterFunc(SyncInterval, func() {
		s.post(func() { s.expire(gen) })
	})
	logging.Debugf("sync check armed (generation %d)", gen)
}

// Pending reports whether a check is armed and has not yet run.
func (s *Scheduler) Pending() bool {
	return s.timer != nil
}

// Stop cancels the pending check, if any.
func (s *Scheduler) Stop() {
	s.cancel()
	s.generation++
}

func (s *Scheduler) cancel() {
	if s.timer == nil {
		return
	}
	s.timer.Stop()
	s.timer = nil
}

func (s *Scheduler) expire(gen uint64) {
	if gen != s.generation {
		logging.Debugf("dropping stale sync check (generation %d, current %d)", gen, s.generation)
		return
	}
	s.timer = nil
	if s.fire != nil {
		s.fire()
	}
}
