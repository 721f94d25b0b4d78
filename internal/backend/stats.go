package backend

import (
	"fmt"
	"time"

	"github.com/tomadori/focusdeck/internal/model"
)

// FetchStats returns the user's aggregate counters, creating the row
// lazily on first fetch.
func (s *Store) FetchStats(userID string) (model.Stats, error) {
	if _, err := s.db.Exec(`INSERT OR IGNORE INTO stats (user_id) VALUES (?)`, userID); err != nil {
		return model.Stats{}, fmt.Errorf("init stats row: %w", err)
	}

	var st model.Stats
	err := s.db.QueryRow(
		`SELECT focus_time, completed_tasks, total_pomodoros, current_streak FROM stats WHERE user_id = ?`,
		userID,
	).Scan(&st.FocusTimeMinutes, &st.CompletedTasks, &st.TotalPomodoros, &st.CurrentStreakDays)
	if err != nil {
		return model.Stats{}, fmt.Errorf("fetch stats: %w", err)
	}
	return st, nil
}

func (s *Store) IncrementFocusTime(userID string, minutes int) error {
	return s.bumpStat(userID, "focus_time", minutes)
}

func (s *Store) IncrementCompletedTasks(userID string) error {
	return s.bumpStat(userID, "completed_tasks", 1)
}

func (s *Store) IncrementTotalPomodoros(userID string) error {
	return s.bumpStat(userID, "total_pomodoros", 1)
}

func (s *Store) IncrementStreak(userID string) error {
	return s.bumpStat(userID, "current_streak", 1)
}

func (s *Store) ResetStreak(userID string) error {
	if _, err := s.db.Exec(`UPDATE stats SET current_streak = 0 WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("reset streak: %w", err)
	}
	return nil
}

// bumpStat performs a server-side increment so concurrent sessions
// never lose updates to a read-modify-write cycle.
func (s *Store) bumpStat(userID, column string, delta int) error {
	if _, err := s.db.Exec(`INSERT OR IGNORE INTO stats (user_id) VALUES (?)`, userID); err != nil {
		return fmt.Errorf("init stats row: %w", err)
	}
	_, err := s.db.Exec(
		`UPDATE stats SET `+column+` = `+column+` + ? WHERE user_id = ?`, delta, userID)
	if err != nil {
		return fmt.Errorf("increment %s: %w", column, err)
	}
	return nil
}

// ActivityDate returns the last calendar day (YYYY-MM-DD) streak
// activity was recorded for the user, or "" if never.
func (s *Store) ActivityDate(userID string) (string, error) {
	if _, err := s.db.Exec(`INSERT OR IGNORE INTO stats (user_id) VALUES (?)`, userID); err != nil {
		return "", fmt.Errorf("init stats row: %w", err)
	}
	var d string
	err := s.db.QueryRow(`SELECT last_active FROM stats WHERE user_id = ?`, userID).Scan(&d)
	if err != nil {
		return "", fmt.Errorf("get activity date: %w", err)
	}
	return d, nil
}

func (s *Store) SetActivityDate(userID, date string) error {
	_, err := s.db.Exec(`UPDATE stats SET last_active = ? WHERE user_id = ?`, date, userID)
	if err != nil {
		return fmt.Errorf("set activity date: %w", err)
	}
	return nil
}

// LogPomodoro records one completed work interval for daily summaries.
func (s *Store) LogPomodoro(userID string, completedAt time.Time, minutes int) error {
	_, err := s.db.Exec(
		`INSERT INTO pomodoro_log (user_id, completed_at, minutes) VALUES (?, ?, ?)`,
		userID, completedAt.UTC().Format(time.RFC3339), minutes,
	)
	if err != nil {
		return fmt.Errorf("log pomodoro: %w", err)
	}
	return nil
}

// DayCount aggregates completed pomodoros for one calendar day.
type DayCount struct {
	Date    string
	Count   int
	Minutes int
}

// DailyPomodoros returns per-day completion counts in [from, to).
func (s *Store) DailyPomodoros(userID string, from, to time.Time) ([]DayCount, error) {
	rows, err := s.db.Query(`
		SELECT substr(completed_at, 1, 10), COUNT(*), COALESCE(SUM(minutes), 0)
		FROM pomodoro_log
		WHERE user_id = ? AND completed_at >= ? AND completed_at < ?
		GROUP BY substr(completed_at, 1, 10)
		ORDER BY substr(completed_at, 1, 10)`,
		userID, from.UTC().Format(time.RFC3339), to.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("daily pomodoros: %w", err)
	}
	defer rows.Close()

	var days []DayCount
	for rows.Next() {
		var d DayCount
		if err := rows.Scan(&d.Date, &d.Count, &d.Minutes); err != nil {
			return nil, err
		}
		days = append(days, d)
	}
	return days, rows.Err()
}
