package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/tomadori/focusdeck/internal/model"
	"github.com/tomadori/focusdeck/internal/repo"
)

var folderColors = []string{"#9F353A", "#2EC4B6", "#FF6B6B", "#F39C12", "#2ECC71", "#9B59B6", "#3498DB", "#7AA2F7"}

// tasksModel is the task list screen with folder filtering and the
// new-task / new-folder forms.
type tasksModel struct {
	svc    *services
	width  int
	height int

	tasks   []model.Task
	folders []model.Folder
	cursor  int
	// folderIdx filters the list: -1 shows everything, otherwise an
	// index into folders.
	folderIdx int

	formActive bool
	form       *huh.Form
	formType   string // "task", "folder"

	// Form field pointers (survive value copies)
	formTitle     *string
	formEstimated *string
	formDuration  *string
	formScheduled *string
	formFolder    *string
	formReminder  *bool
	formLead      *string
	formName      *string
	formColor     *string
}

func newTasksModel(svc *services) tasksModel {
	title, est, dur, sched, folder, lead := "", "1", "25", "", "", "15"
	name, color := "", folderColors[0]
	reminder := false
	return tasksModel{
		svc:           svc,
		folderIdx:     -1,
		formTitle:     &title,
		formEstimated: &est,
		formDuration:  &dur,
		formScheduled: &sched,
		formFolder:    &folder,
		formReminder:  &reminder,
		formLead:      &lead,
		formName:      &name,
		formColor:     &color,
	}
}

func (m *tasksModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m tasksModel) refresh() tea.Cmd {
	return func() tea.Msg {
		return tasksDataMsg{tasks: m.svc.repo.Tasks(), folders: m.svc.repo.Folders()}
	}
}

// visible returns the tasks passing the folder filter.
func (m tasksModel) visible() []model.Task {
	if m.folderIdx < 0 || m.folderIdx >= len(m.folders) {
		return m.tasks
	}
	fid := m.folders[m.folderIdx].ID
	var out []model.Task
	for _, t := range m.tasks {
		if t.FolderID != nil && *t.FolderID == fid {
			out = append(out, t)
		}
	}
	return out
}

func (m tasksModel) update(msg tea.Msg) (tasksModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case tasksDataMsg:
		m.tasks = msg.tasks
		m.folders = msg.folders
		if m.folderIdx >= len(m.folders) {
			m.folderIdx = -1
		}
		if n := len(m.visible()); m.cursor >= n {
			m.cursor = max(0, n-1)
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "D" {
			return m.deleteActiveFolder()
		}

		switch {
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.visible())-1 {
				m.cursor++
			}
		case key.Matches(msg, keys.Left):
			if m.folderIdx > -1 {
				m.folderIdx--
				m.cursor = 0
			}
		case key.Matches(msg, keys.Right):
			if m.folderIdx < len(m.folders)-1 {
				m.folderIdx++
				m.cursor = 0
			}
		case key.Matches(msg, keys.Enter):
			return m.toggleSelected()
		case key.Matches(msg, keys.New):
			return m.showNewTaskForm()
		case key.Matches(msg, keys.NewFolder):
			return m.showNewFolderForm()
		case key.Matches(msg, keys.Delete):
			return m.deleteSelected()
		}
	}
	return m, nil
}

// toggleSelected flips completion on the task under the cursor. A
// toggle into the completed state also bumps the lifetime completed
// counter.
func (m tasksModel) toggleSelected() (tasksModel, tea.Cmd) {
	visible := m.visible()
	if m.cursor >= len(visible) {
		return m, nil
	}
	task := visible[m.cursor]

	return m, func() tea.Msg {
		completed, err := m.svc.repo.ToggleTask(task.ID)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
		if completed {
			if err := m.svc.stats.IncrementCompletedTasks(); err != nil {
				m.svc.log.Warn().Err(err).Msg("increment completed tasks")
			}
			return statusMsg{text: fmt.Sprintf("Completed %q", task.Title)}
		}
		return statusMsg{text: fmt.Sprintf("Reopened %q", task.Title)}
	}
}

func (m tasksModel) deleteSelected() (tasksModel, tea.Cmd) {
	visible := m.visible()
	if m.cursor >= len(visible) {
		return m, nil
	}
	task := visible[m.cursor]

	return m, func() tea.Msg {
		if err := m.svc.repo.RemoveTask(task.ID); err != nil {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
		return statusMsg{text: fmt.Sprintf("Deleted %q", task.Title)}
	}
}

// deleteActiveFolder removes the folder the filter points at. Member
// tasks survive and simply lose their folder.
func (m tasksModel) deleteActiveFolder() (tasksModel, tea.Cmd) {
	if m.folderIdx < 0 || m.folderIdx >= len(m.folders) {
		return m, nil
	}
	folder := m.folders[m.folderIdx]
	m.folderIdx = -1

	return m, func() tea.Msg {
		if err := m.svc.repo.RemoveFolder(folder.ID); err != nil {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
		return statusMsg{text: fmt.Sprintf("Deleted folder %q, tasks kept", folder.Name)}
	}
}

func (m tasksModel) showNewTaskForm() (tasksModel, tea.Cmd) {
	*m.formTitle = ""
	*m.formEstimated = "1"
	*m.formDuration = "25"
	*m.formScheduled = ""
	*m.formFolder = ""
	*m.formReminder = false
	*m.formLead = "15"
	if m.folderIdx >= 0 && m.folderIdx < len(m.folders) {
		*m.formFolder = m.folders[m.folderIdx].ID
	}
	m.formType = "task"

	folderOptions := []huh.Option[string]{huh.NewOption("(none)", "")}
	for _, f := range m.folders {
		folderOptions = append(folderOptions, huh.NewOption(f.Name, f.ID))
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Title").Value(m.formTitle),
			huh.NewInput().Title("Estimated pomodoros").Value(m.formEstimated),
			huh.NewInput().Title("Pomodoro length (min)").Value(m.formDuration),
			huh.NewSelect[string]().Title("Folder").Options(folderOptions...).Value(m.formFolder),
		),
		huh.NewGroup(
			huh.NewInput().Title("Scheduled for (e.g. 2026-09-01 14:00)").Value(m.formScheduled),
			huh.NewConfirm().Title("Remind me before it starts").Value(m.formReminder),
			huh.NewInput().Title("Reminder lead (min)").Value(m.formLead),
		),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	return m, m.form.Init()
}

func (m tasksModel) showNewFolderForm() (tasksModel, tea.Cmd) {
	*m.formName = ""
	*m.formColor = folderColors[0]
	m.formType = "folder"

	colorOptions := make([]huh.Option[string], len(folderColors))
	for i, c := range folderColors {
		colorOptions[i] = huh.NewOption(fmt.Sprintf("● %s", c), c)
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Folder Name").Value(m.formName),
			huh.NewSelect[string]().Title("Color").Options(colorOptions...).Value(m.formColor),
		),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	return m, m.form.Init()
}

func (m tasksModel) updateForm(msg tea.Msg) (tasksModel, tea.Cmd) {
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
		switch m.formType {
		case "task":
			return m, tea.Batch(m.submitTask(), m.refresh())
		case "folder":
			return m, tea.Batch(m.submitFolder(), m.refresh())
		}
	}

	return m, cmd
}

func (m tasksModel) submitTask() tea.Cmd {
	params := repo.AddTaskParams{
		Title:           *m.formTitle,
		FolderID:        *m.formFolder,
		ReminderEnabled: *m.formReminder,
	}
	if n, err := strconv.Atoi(strings.TrimSpace(*m.formEstimated)); err == nil {
		params.EstimatedPomodoros = n
	}
	if n, err := strconv.Atoi(strings.TrimSpace(*m.formDuration)); err == nil {
		params.DurationMinutes = n
	}
	if n, err := strconv.Atoi(strings.TrimSpace(*m.formLead)); err == nil {
		params.ReminderMinutes = n
	}
	if sched := strings.TrimSpace(*m.formScheduled); sched != "" {
		params.ScheduledFor = sched
	}

	return func() tea.Msg {
		task, err := m.svc.repo.AddTask(params)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
		return statusMsg{text: fmt.Sprintf("Added %q", task.Title)}
	}
}

func (m tasksModel) submitFolder() tea.Cmd {
	name, color := *m.formName, *m.formColor
	return func() tea.Msg {
		folder, err := m.svc.repo.AddFolder(name, color)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
		return statusMsg{text: fmt.Sprintf("Created folder %q", folder.Name)}
	}
}

func (m tasksModel) view() string {
	w := m.width - 4

	if m.formActive && m.form != nil {
		title := titleStyle.Render("New Task")
		if m.formType == "folder" {
			title = titleStyle.Render("New Folder")
		}
		content := lipgloss.JoinVertical(lipgloss.Left, title, "", m.form.View())
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, m.renderFilterBar())
	rows = append(rows, "")

	visible := m.visible()
	if len(visible) == 0 {
		rows = append(rows, mutedStyle.Render("No tasks here. Press n to add one."))
	}

	for i, task := range visible {
		rows = append(rows, m.renderTaskRow(i, task))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: toggle  n: new  o: new folder  d: delete  D: delete folder  ←/→: filter"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (m tasksModel) renderFilterBar() string {
	var tabs []string
	all := inactiveTabStyle.Render("All")
	if m.folderIdx == -1 {
		all = activeTabStyle.Render("All")
	}
	tabs = append(tabs, all)
	for i, f := range m.folders {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color(f.Color)).Render("●")
		label := dot + " " + f.Name
		if i == m.folderIdx {
			tabs = append(tabs, activeTabStyle.Render(label))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)
}

func (m tasksModel) renderTaskRow(i int, task model.Task) string {
	cursor := "  "
	style := normalItemStyle
	if i == m.cursor {
		cursor = "> "
		style = selectedItemStyle
	}

	check := "☐"
	if task.Completed {
		check = successStyle.Render("☑")
		if i != m.cursor {
			style = completedItemStyle
		}
	}

	progress := mutedStyle.Render(fmt.Sprintf("%d/%d", task.Pomodoros, task.EstimatedPomodoros))
	spent := ""
	if task.TimeSpentSeconds > 0 {
		spent = mutedStyle.Render("  " + formatSeconds(task.TimeSpentSeconds))
	}
	running := ""
	if task.StartedAt != nil {
		running = successStyle.Render(" ●")
	}

	return fmt.Sprintf("%s%s %s %s%s%s",
		cursor, check, style.Render(truncate(task.Title, 36)), progress, spent, running)
}
