package tui

import (
	"fmt"
	"time"

	"github.com/tomadori/focusdeck/internal/model"
)

// viewState represents the currently active view.
type viewState int

const (
	viewHome viewState = iota
	viewTasks
	viewTimer
	viewAchievements
)

var viewNames = []string{"Home", "Tasks", "Timer", "Achievements"}

// --- Messages ---

type statusMsg struct {
	text    string
	isError bool
}

type tickMsg time.Time

type tasksDataMsg struct {
	tasks   []model.Task
	folders []model.Folder
}

type statsDataMsg struct {
	stats model.Stats
}

type chartDataMsg struct {
	days []dayBar
}

type dayBar struct {
	label string
	count int
}

type workCompleteMsg struct{}
type breakCompleteMsg struct{}

type exportDoneMsg struct {
	path string
}

// reminderMsg is delivered from the repository's reminder scanner via
// Program.Send; it carries a dismissible "starting soon" prompt.
type reminderMsg struct {
	task     model.Task
	startsIn time.Duration
}

type signedInMsg struct {
	user model.User
}

// --- Helpers ---

func formatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func formatSeconds(secs int64) string {
	return formatDuration(time.Duration(secs) * time.Second)
}

// formatClock renders a countdown as MM:SS.
func formatClock(secs int) string {
	if secs < 0 {
		secs = 0
	}
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

// formatMinutes renders accumulated minutes as "Xh Ym".
func formatMinutes(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
