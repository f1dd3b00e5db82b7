package schedule

import (
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
)

// Scheduler runs one daily job per chat. Setting a chat's time replaces
// any previous entry for that chat.
type Scheduler struct {
	cron *cron.Cron

	mu      sync.Mutex
	entries map[int64]cron.EntryID
}

// NewScheduler builds a scheduler in the local time zone.
func NewScheduler() *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		entries: make(map[int64]cron.EntryID),
	}
}

// Start begins running scheduled jobs.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// Set registers (or replaces) the daily job for a chat.
func (s *Scheduler) Set(chatID int64, hour, minute int, job func()) error {
	spec := fmt.Sprintf("%d %d * * *", minute, hour)

	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.entries[chatID]; ok {
		s.cron.Remove(old)
		delete(s.entries, chatID)
	}

	id, err := s.cron.AddFunc(spec, job)
	if err != nil {
		return fmt.Errorf("schedule %02d:%02d for chat %d: %w", hour, minute, chatID, err)
	}
	s.entries[chatID] = id
	return nil
}

// Remove drops a chat's daily job, if present.
func (s *Scheduler) Remove(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.entries[chatID]; ok {
		s.cron.Remove(id)
		delete(s.entries, chatID)
	}
}

// Count returns the number of registered chat jobs.
func (s *Scheduler) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
