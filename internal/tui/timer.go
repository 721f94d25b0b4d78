package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/tomadori/focusdeck/internal/pomodoro"
	"github.com/tomadori/focusdeck/internal/repo"
)

// timerModel renders the pomodoro engine and translates key presses
// into engine calls. The engine itself lives in internal/pomodoro; the
// model only holds picker and form state.
type timerModel struct {
	svc    *services
	width  int
	height int

	// Task picker state
	picking      bool
	pickerCursor int

	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	workMin  *string
	breakMin *string
}

func newTimerModel(svc *services) timerModel {
	wm, bm := "", ""
	m := timerModel{
		svc:      svc,
		workMin:  &wm,
		breakMin: &bm,
	}
	m.loadDurations()
	return m
}

// loadDurations applies the persisted interval lengths to the engine.
func (m *timerModel) loadDurations() {
	if v, err := m.svc.store.GetSetting("work_duration"); err == nil {
		if secs, err := strconv.Atoi(v); err == nil && secs >= 60 {
			m.svc.timer.SetWorkDuration(secs / 60)
		}
	}
	if v, err := m.svc.store.GetSetting("break_duration"); err == nil {
		if secs, err := strconv.Atoi(v); err == nil && secs >= 60 {
			m.svc.timer.SetBreakDuration(secs / 60)
		}
	}
}

func (m *timerModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m timerModel) update(msg tea.Msg) (timerModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case tickMsg:
		switch m.svc.timer.Tick() {
		case pomodoro.EventWorkComplete:
			return m, func() tea.Msg { return workCompleteMsg{} }
		case pomodoro.EventBreakComplete:
			return m, func() tea.Msg { return breakCompleteMsg{} }
		}
		return m, nil

	case tea.KeyMsg:
		if m.picking {
			return m.updatePicker(msg)
		}

		st := m.svc.timer.Snapshot()
		switch {
		case key.Matches(msg, keys.Start):
			if !st.Running {
				m.svc.timer.Start()
				return m, func() tea.Msg { return statusMsg{text: "Timer started"} }
			}
		case key.Matches(msg, keys.Pause):
			if st.Running {
				if st.Paused {
					m.svc.timer.Resume()
				} else {
					m.svc.timer.Pause()
				}
			}
		case key.Matches(msg, keys.Skip):
			if st.Running {
				m.svc.timer.Skip()
				if st.Break {
					return m, func() tea.Msg { return statusMsg{text: "Break skipped, back to work"} }
				}
				return m, func() tea.Msg { return statusMsg{text: "Work phase skipped"} }
			}
		case key.Matches(msg, keys.Reset):
			m.svc.timer.Reset()
			return m, func() tea.Msg { return statusMsg{text: "Timer reset"} }
		case key.Matches(msg, keys.Finish):
			return m.finishTask()
		case key.Matches(msg, keys.Enter):
			if !st.Running {
				m.picking = true
				m.pickerCursor = 0
			}
		case key.Matches(msg, keys.Edit):
			if !st.Running {
				return m.showDurationsForm()
			}
		}
	}
	return m, nil
}

// finishTask wraps up the attributed task early: completion is
// recorded, the session's elapsed time is folded in by the engine, and
// the lifetime completed counter is bumped.
func (m timerModel) finishTask() (timerModel, tea.Cmd) {
	st := m.svc.timer.Snapshot()
	if st.TaskID == "" {
		return m, nil
	}
	taskID := st.TaskID

	m.svc.timer.Finish()

	return m, func() tea.Msg {
		task, ok := m.svc.repo.Task(taskID)
		if !ok {
			return statusMsg{text: "Task finished"}
		}
		if !task.Completed {
			completed := true
			if err := m.svc.repo.UpdateTask(taskID, repo.TaskUpdate{Completed: &completed}); err != nil {
				return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
			}
			if err := m.svc.stats.IncrementCompletedTasks(); err != nil {
				m.svc.log.Warn().Err(err).Msg("increment completed tasks")
			}
		}
		return statusMsg{text: fmt.Sprintf("Finished %q", task.Title)}
	}
}

func (m timerModel) updatePicker(msg tea.KeyMsg) (timerModel, tea.Cmd) {
	tasks := m.pickableTasks()
	switch {
	case key.Matches(msg, keys.Up):
		if m.pickerCursor > 0 {
			m.pickerCursor--
		}
	case key.Matches(msg, keys.Down):
		if m.pickerCursor < len(tasks) {
			m.pickerCursor++
		}
	case key.Matches(msg, keys.Enter):
		m.picking = false
		if m.pickerCursor == 0 {
			m.svc.timer.SelectTask("")
			return m, func() tea.Msg { return statusMsg{text: "Standalone timer selected"} }
		}
		task := tasks[m.pickerCursor-1]
		m.svc.timer.SelectTask(task.ID)
		return m, func() tea.Msg {
			return statusMsg{text: fmt.Sprintf("Timer set for %q (%d min)", task.Title, task.DurationMinutes)}
		}
	case key.Matches(msg, keys.Back):
		m.picking = false
	}
	return m, nil
}

func (m timerModel) pickableTasks() []pickableTask {
	var out []pickableTask
	for _, t := range m.svc.repo.Tasks() {
		if t.Completed {
			continue
		}
		out = append(out, pickableTask{ID: t.ID, Title: t.Title, DurationMinutes: t.DurationMinutes})
	}
	return out
}

type pickableTask struct {
	ID              string
	Title           string
	DurationMinutes int
}

func (m timerModel) showDurationsForm() (timerModel, tea.Cmd) {
	st := m.svc.timer.Snapshot()
	*m.workMin = strconv.Itoa(st.WorkDuration / 60)
	*m.breakMin = strconv.Itoa(st.BreakDuration / 60)

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Work interval (min)").Value(m.workMin),
			huh.NewInput().Title("Break interval (min)").Value(m.breakMin),
		),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	return m, m.form.Init()
}

func (m timerModel) updateForm(msg tea.Msg) (timerModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			m.formActive = false
			m.form = nil
			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.formActive = false
		m.saveDurations()
		return m, func() tea.Msg { return statusMsg{text: "Durations saved"} }
	}

	return m, cmd
}

func (m timerModel) saveDurations() {
	if mins, err := strconv.Atoi(strings.TrimSpace(*m.workMin)); err == nil && mins >= 1 {
		m.svc.timer.SetWorkDuration(mins)
		if err := m.svc.store.SetSetting("work_duration", strconv.Itoa(mins*60)); err != nil {
			m.svc.log.Warn().Err(err).Msg("persist work duration")
		}
	}
	if mins, err := strconv.Atoi(strings.TrimSpace(*m.breakMin)); err == nil && mins >= 1 {
		m.svc.timer.SetBreakDuration(mins)
		if err := m.svc.store.SetSetting("break_duration", strconv.Itoa(mins*60)); err != nil {
			m.svc.log.Warn().Err(err).Msg("persist break duration")
		}
	}
}

func (m timerModel) view() string {
	w := m.width - 4

	if m.formActive && m.form != nil {
		title := titleStyle.Render("Timer Durations")
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", m.form.View()),
		)
	}

	if m.picking {
		return m.renderPicker(w)
	}

	st := m.svc.timer.Snapshot()

	var timeDisplay, phaseLabel string
	switch {
	case !st.Running:
		timeDisplay = countdownStyle.Width(w - 6).Render(formatClock(st.TimeLeft))
		phaseLabel = mutedStyle.Render("Ready. Press s to start, enter to pick a task.")
	case st.Paused:
		timeDisplay = countdownPausedStyle.Width(w - 6).Render(formatClock(st.TimeLeft))
		phaseLabel = warningStyle.Bold(true).Render("⏸ PAUSED")
	case st.Break:
		timeDisplay = countdownBreakStyle.Width(w - 6).Render(formatClock(st.TimeLeft))
		phaseLabel = successStyle.Bold(true).Render("BREAK")
	default:
		timeDisplay = countdownWorkStyle.Width(w - 6).Render(formatClock(st.TimeLeft))
		phaseLabel = accentStyle.Bold(true).Render("FOCUS")
	}

	taskLine := mutedStyle.Render("Standalone timer")
	if st.TaskID != "" {
		if task, ok := m.svc.repo.Task(st.TaskID); ok {
			taskLine = highlightStyle.Render(task.Title) +
				mutedStyle.Render(fmt.Sprintf("  %d/%d pomodoros", task.Pomodoros, task.EstimatedPomodoros))
		}
	}

	var controls string
	if st.Running {
		controls = mutedStyle.Render("space: pause  x: skip  r: reset  f: finish task")
	} else {
		controls = mutedStyle.Render("s: start  enter: pick task  g: durations  r: reset")
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		titleStyle.Render("Pomodoro"),
		"",
		timeDisplay,
		phaseLabel,
		"",
		taskLine,
		"",
		controls,
	)

	if st.Running {
		return activePanelStyle.Width(w).Render(content)
	}
	return panelStyle.Width(w).Render(content)
}

func (m timerModel) renderPicker(w int) string {
	tasks := m.pickableTasks()

	var rows []string
	rows = append(rows, titleStyle.Render("Attribute timer to"))
	rows = append(rows, "")

	cursor, style := "  ", normalItemStyle
	if m.pickerCursor == 0 {
		cursor, style = "> ", selectedItemStyle
	}
	rows = append(rows, style.Render(cursor+"(standalone, 25 min)"))

	for i, t := range tasks {
		cursor, style = "  ", normalItemStyle
		if m.pickerCursor == i+1 {
			cursor, style = "> ", selectedItemStyle
		}
		rows = append(rows, style.Render(fmt.Sprintf("%s%s (%d min)", cursor, truncate(t.Title, 34), t.DurationMinutes)))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: select  esc: cancel"))
	return activePanelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
