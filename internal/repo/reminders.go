package repo

import (
	"time"

	"github.com/tomadori/focusdeck/internal/model"
)

// CheckUpcoming scans all tasks and raises a "starting soon" prompt
// for each scheduled, reminder-enabled task whose start lies within
// its reminder lead time. The notified flag guarantees the prompt
// fires exactly once per task.
func (s *Service) CheckUpcoming() {
	now := s.clock.Now()

	s.mu.Lock()
	var due []model.Task
	for _, t := range s.tasks {
		if t.ScheduledFor == nil || t.Completed || t.Notified || !t.ReminderEnabled {
			continue
		}
		lead := t.ReminderMinutes
		if lead < 1 {
			lead = defaultReminderMinutes
		}
		until := t.ScheduledFor.Sub(now)
		if until > 0 && until <= time.Duration(lead)*time.Minute {
			due = append(due, t)
		}
	}
	s.mu.Unlock()

	for _, t := range due {
		s.notifier.NotifyUpcoming(t, t.ScheduledFor.Sub(now))

		notified := true
		if err := s.UpdateTask(t.ID, TaskUpdate{Notified: &notified}); err != nil {
			s.log.Warn().Err(err).Str("task_id", t.ID).Msg("mark task notified")
		}
	}
}
