package scheduler

import (
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Timer runs fn once at the given time. Armed timers cannot be cancelled.
type Timer interface {
	Once(at time.Time, fn func())
}

// CronTimer implements Timer with one-shot cron entries that remove
// themselves after firing.
type CronTimer struct {
	cron *cron.Cron
	mu   sync.Mutex
}

func NewCronTimer(c *cron.Cron) *CronTimer {
	return &CronTimer{cron: c}
}

func (t *CronTimer) Once(at time.Time, fn func()) {
	if earliest := time.Now().Add(time.Second); at.Before(earliest) {
		at = earliest
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	var id cron.EntryID
	id = t.cron.Schedule(&onceSchedule{at: at}, cron.FuncJob(func() {
		t.mu.Lock()
		entry := id
		t.mu.Unlock()
		t.cron.Remove(entry)
		fn()
	}))
}

// onceSchedule yields a single activation: at, or the evaluation time when
// at has already passed (an entry armed before the cron was started). Every
// later call returns the zero time, which tells cron the entry never runs
// again.
type onceSchedule struct {
	mu     sync.Mutex
	at     time.Time
	issued bool
}

func (s *onceSchedule) Next(t time.Time) time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.issued {
		return time.Time{}
	}
	s.issued = true
	if t.Before(s.at) {
		return s.at
	}
	return t
}
