package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"

	"github.com/tomadori/focusdeck/internal/auth"
	"github.com/tomadori/focusdeck/internal/backend"
	"github.com/tomadori/focusdeck/internal/export"
	"github.com/tomadori/focusdeck/internal/model"
	"github.com/tomadori/focusdeck/internal/pomodoro"
	"github.com/tomadori/focusdeck/internal/repo"
	"github.com/tomadori/focusdeck/internal/stats"
)

// services bundles the long-lived collaborators every view talks to.
type services struct {
	repo  *repo.Service
	stats *stats.Aggregator
	timer *pomodoro.Timer
	auth  *auth.Service
	store *backend.Store
	log   zerolog.Logger
}

// Config carries the application's wired services into the TUI.
type Config struct {
	Repo    *repo.Service
	Stats   *stats.Aggregator
	Timer   *pomodoro.Timer
	Auth    *auth.Service
	Backend *backend.Store
	Logger  zerolog.Logger
}

// App is the root Bubble Tea model.
type App struct {
	svc    *services
	width  int
	height int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int
	reminder      *reminderMsg

	home         homeModel
	tasks        tasksModel
	timer        timerModel
	achievements achievementsModel
	profile      profileModel

	gateCmd tea.Cmd

	help   help.Model
	status string
}

func NewApp(cfg Config) App {
	h := help.New()
	h.ShowAll = false

	svc := &services{
		repo:  cfg.Repo,
		stats: cfg.Stats,
		timer: cfg.Timer,
		auth:  cfg.Auth,
		store: cfg.Backend,
		log:   cfg.Logger,
	}

	a := App{
		svc:          svc,
		activeView:   viewHome,
		home:         newHomeModel(svc),
		tasks:        newTasksModel(svc),
		timer:        newTimerModel(svc),
		achievements: newAchievementsModel(svc),
		profile:      newProfileModel(svc),
		help:         h,
	}

	// Without a session the sign-in gate owns the screen.
	if _, ok := svc.auth.Current(); !ok {
		a.profile, a.gateCmd = a.profile.showSignInForm()
	}

	return a
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.home.Init(),
		a.tasks.refresh(),
		a.achievements.refresh(),
		tickCmd(),
		a.gateCmd,
	)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.home.setSize(a.width, contentHeight)
		a.tasks.setSize(a.width, contentHeight)
		a.timer.setSize(a.width, contentHeight)
		a.achievements.setSize(a.width, contentHeight)
		a.profile.setSize(a.width, contentHeight)
		return a, nil

	case signedInMsg:
		a.status = fmt.Sprintf("Signed in as %s", msg.user.DisplayName)
		return a, tea.Sequence(
			func() tea.Msg {
				if err := a.svc.repo.Refresh(); err != nil {
					a.svc.log.Warn().Err(err).Msg("refresh after sign-in")
				}
				if err := a.svc.stats.Fetch(); err != nil {
					a.svc.log.Warn().Err(err).Msg("fetch stats after sign-in")
				}
				return nil
			},
			tea.Batch(a.home.loadData(), a.tasks.refresh(), a.achievements.refresh()),
		)

	case reminderMsg:
		a.reminder = &msg
		return a, nil

	case tea.KeyMsg:
		// Sign-in gate and profile editor capture everything.
		if a.profile.formActive {
			var cmd tea.Cmd
			a.profile, cmd = a.profile.update(msg)
			return a, cmd
		}

		// Active reminder prompt: enter starts the task, esc dismisses.
		if a.reminder != nil {
			return a.updateReminderPrompt(msg)
		}

		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Profile):
			var cmd tea.Cmd
			a.profile, cmd = a.profile.showProfileForm()
			return a, cmd
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			a.activeView = viewHome
			return a, a.home.loadData()
		case key.Matches(msg, keys.Tab2):
			a.activeView = viewTasks
			return a, a.tasks.refresh()
		case key.Matches(msg, keys.Tab3):
			a.activeView = viewTimer
			return a, nil
		case key.Matches(msg, keys.Tab4):
			a.activeView = viewAchievements
			return a, a.achievements.refresh()
		case key.Matches(msg, keys.Tab):
			a.activeView = (a.activeView + 1) % 4
			return a, a.refreshCurrentView()
		}

	case tickMsg:
		cmds = append(cmds, tickCmd())
		// The countdown engine ticks regardless of the visible view.
		var cmd tea.Cmd
		a.timer, cmd = a.timer.update(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
		return a, tea.Batch(cmds...)

	case workCompleteMsg:
		a.status = "Focus interval complete. Break time! \a"
		return a, tea.Batch(a.home.loadData(), a.tasks.refresh(), a.achievements.refresh())

	case breakCompleteMsg:
		a.status = "Break over. Back to work! \a"
		return a, nil

	case statusMsg:
		a.status = msg.text
		if a.tasksChanged(msg) {
			return a, tea.Batch(a.tasks.refresh(), a.home.loadData())
		}
		return a, nil

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		a.exportPicking = false
		return a, nil
	}

	return a.updateActiveView(msg)
}

// tasksChanged reports whether a status message came from a mutation
// that should re-snapshot the mirrors.
func (a App) tasksChanged(msg statusMsg) bool {
	return !msg.isError
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg.(type) {
	case tasksDataMsg:
		a.tasks, cmd = a.tasks.update(msg)
		return a, cmd
	case statsDataMsg, chartDataMsg:
		a.home, cmd = a.home.update(msg)
		return a, cmd
	case achievementsDataMsg:
		a.achievements, cmd = a.achievements.update(msg)
		return a, cmd
	}

	switch a.activeView {
	case viewHome:
		a.home, cmd = a.home.update(msg)
	case viewTasks:
		a.tasks, cmd = a.tasks.update(msg)
	case viewTimer:
		a.timer, cmd = a.timer.update(msg)
	case viewAchievements:
		a.achievements, cmd = a.achievements.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewTasks:
		return a.tasks.formActive
	case viewTimer:
		return a.timer.formActive || a.timer.picking
	}
	return false
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewHome:
		return a.home.loadData()
	case viewTasks:
		return a.tasks.refresh()
	case viewAchievements:
		return a.achievements.refresh()
	}
	return nil
}

func (a App) updateReminderPrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	rem := a.reminder
	switch {
	case key.Matches(msg, keys.Enter):
		a.reminder = nil
		a.activeView = viewTimer
		a.svc.timer.SelectTask(rem.task.ID)
		a.svc.timer.Start()
		return a, func() tea.Msg {
			return statusMsg{text: fmt.Sprintf("Started %q", rem.task.Title)}
		}
	case key.Matches(msg, keys.Back):
		a.reminder = nil
		return a, nil
	}
	return a, nil
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	// Sign-in gate replaces the whole frame.
	if a.profile.formActive {
		return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, a.profile.view())
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewHome:
		content = a.home.view()
	case viewTasks:
		content = a.tasks.view()
	case viewTimer:
		content = a.timer.view()
	case viewAchievements:
		content = a.achievements.view()
	}

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := a.height - headerHeight - footerHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	if a.exportPicking {
		content = a.renderExportPicker()
	}
	if a.reminder != nil {
		content = a.renderReminderPrompt()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("focusdeck")

	user := ""
	if u, ok := a.svc.auth.Current(); ok {
		user = mutedStyle.Render(fmt.Sprintf("%s · %s", u.DisplayName, u.AvatarID))
	}

	gap := a.width - lipgloss.Width(title) - lipgloss.Width(tabRow) - lipgloss.Width(user) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow, " ", user),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		status = mutedStyle.Render(" " + a.status)
	}

	// Countdown indicator in footer
	timerInfo := ""
	if st := a.svc.timer.Snapshot(); st.Running {
		label := formatClock(st.TimeLeft)
		switch {
		case st.Paused:
			timerInfo = warningStyle.Render(" ⏸ " + label)
		case st.Break:
			timerInfo = successStyle.Render(" ☕ " + label)
		default:
			timerInfo = accentStyle.Render(" ● " + label)
		}
	}

	left := footerStyle.Render(helpView)
	right := timerInfo + status

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

func (a App) renderExportPicker() string {
	title := titleStyle.Render("Export Format")
	formats := []string{"CSV", "JSON"}
	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	for i, f := range formats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) renderReminderPrompt() string {
	rem := a.reminder
	title := warningStyle.Bold(true).Render("Task starting soon")
	body := fmt.Sprintf("%q starts %s", rem.task.Title, humanize.Time(*rem.task.ScheduledFor))
	hint := mutedStyle.Render("enter: start now  esc: dismiss")

	w := a.width - 4
	return activePanelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, "", body, "", hint),
	)
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < 1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(a.exportCursor)
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(format int) tea.Cmd {
	return func() tea.Msg {
		tasks := a.svc.repo.Tasks()

		folders := make(map[string]model.Folder)
		for _, f := range a.svc.repo.Folders() {
			folders[f.ID] = f
		}

		home, _ := os.UserHomeDir()
		dateStr := time.Now().Format("2006-01-02")

		var path string
		if format == 0 {
			path = filepath.Join(home, fmt.Sprintf("focusdeck-export-%s.csv", dateStr))
			if err := export.ToCSV(tasks, folders, path); err != nil {
				return statusMsg{text: fmt.Sprintf("CSV error: %v", err), isError: true}
			}
		} else {
			path = filepath.Join(home, fmt.Sprintf("focusdeck-export-%s.json", dateStr))
			if err := export.ToJSON(tasks, folders, path); err != nil {
				return statusMsg{text: fmt.Sprintf("JSON error: %v", err), isError: true}
			}
		}

		return exportDoneMsg{path: path}
	}
}

// Notifier bridges repository prompts into the running program. The
// program is attached after construction because the repository is
// wired before tea.NewProgram runs.
type Notifier struct {
	program *tea.Program
}

func NewNotifier() *Notifier {
	return &Notifier{}
}

func (n *Notifier) SetProgram(p *tea.Program) {
	n.program = p
}

func (n *Notifier) Notify(text string) {
	if n.program == nil {
		return
	}
	n.program.Send(statusMsg{text: text})
}

func (n *Notifier) NotifyUpcoming(task model.Task, startsIn time.Duration) {
	if n.program == nil {
		return
	}
	n.program.Send(reminderMsg{task: task, startsIn: startsIn})
}
