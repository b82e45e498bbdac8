package app

import (
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Recognized schedule intervals. Anything else falls back to the shortest one.
var intervals = map[string]time.Duration{
	"hourly":     time.Hour,
	"twicedaily": 12 * time.Hour,
	"daily":      24 * time.Hour,
}

const DefaultInterval = "hourly"

// SanitizeInterval whitelists the schedule interval.
func SanitizeInterval(raw string) string {
	if _, ok := intervals[raw]; ok {
		return raw
	}
	return DefaultInterval
}

// Scheduler owns the single recurring import trigger. Rescheduling always
// replaces the previous entry; there is never more than one active trigger.
// The first fire after (re)scheduling happens after a short fixed delay, not
// immediately and not a full interval away.
type Scheduler struct {
	mu       sync.Mutex
	c        *cron.Cron
	entry    cron.EntryID
	interval string
	delay    time.Duration
	initial  *time.Timer
	run      func()
}

// NewScheduler builds a stopped scheduler around run. firstDelay <= 0 selects
// the default 60s initial delay.
func NewScheduler(run func(), firstDelay time.Duration) *Scheduler {
	if firstDelay <= 0 {
		firstDelay = time.Minute
	}
	return &Scheduler{c: cron.New(), delay: firstDelay, run: run}
}

// Start begins dispatching and installs the trigger for interval.
func (s *Scheduler) Start(interval string) {
	s.c.Start()
	s.Reschedule(interval)
}

// Reschedule installs a trigger for interval, cancelling the previous one
// first. A no-op when the interval is unchanged.
func (s *Scheduler) Reschedule(interval string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	interval = SanitizeInterval(interval)
	if interval == s.interval && s.entry != 0 {
		return
	}

	if s.entry != 0 {
		s.c.Remove(s.entry)
		s.entry = 0
	}
	if s.initial != nil {
		s.initial.Stop()
	}

	s.entry = s.c.Schedule(cron.Every(intervals[interval]), cron.FuncJob(s.run))
	s.interval = interval
	s.initial = time.AfterFunc(s.delay, s.run)
	log.Info().Str("interval", interval).Msg("import schedule installed")
}

// Stop cancels the trigger and the pending initial fire. Safe to call when
// nothing is scheduled.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initial != nil {
		s.initial.Stop()
		s.initial = nil
	}
	if s.entry != 0 {
		s.c.Remove(s.entry)
		s.entry = 0
	}
	s.interval = ""
	s.c.Stop()
}

// ActiveTriggers reports how many cron entries are installed.
func (s *Scheduler) ActiveTriggers() int {
	return len(s.c.Entries())
}

// Interval reports the currently installed interval, "" when unscheduled.
func (s *Scheduler) Interval() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}
