package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/tomadori/focusdeck/internal/model"
)

// homeModel is the overview screen: aggregate counters, the weekly
// pomodoro chart and the next scheduled tasks.
type homeModel struct {
	svc    *services
	width  int
	height int

	stats model.Stats
	days  []dayBar
	chart barchart.Model
}

func newHomeModel(svc *services) homeModel {
	return homeModel{
		svc:   svc,
		chart: barchart.New(60, 10),
	}
}

func (h homeModel) Init() tea.Cmd {
	return h.loadData()
}

func (h *homeModel) setSize(w, ht int) {
	h.width = w
	h.height = ht
}

func (h homeModel) loadData() tea.Cmd {
	return tea.Batch(h.loadStats(), h.loadChart())
}

func (h homeModel) loadStats() tea.Cmd {
	return func() tea.Msg {
		if err := h.svc.stats.Fetch(); err != nil {
			h.svc.log.Warn().Err(err).Msg("fetch stats for home view")
		}
		return statsDataMsg{stats: h.svc.stats.Snapshot()}
	}
}

func (h homeModel) loadChart() tea.Cmd {
	return func() tea.Msg {
		userID, ok := h.svc.auth.CurrentUserID()
		if !ok {
			return chartDataMsg{}
		}

		now := time.Now().UTC()
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		from := today.AddDate(0, 0, -6)
		to := today.AddDate(0, 0, 1)

		counts, err := h.svc.store.DailyPomodoros(userID, from, to)
		if err != nil {
			h.svc.log.Warn().Err(err).Msg("load daily pomodoros")
			return chartDataMsg{}
		}

		byDate := make(map[string]int, len(counts))
		for _, c := range counts {
			byDate[c.Date] = c.Count
		}

		var days []dayBar
		for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
			days = append(days, dayBar{
				label: d.Format("Mon"),
				count: byDate[d.Format(time.DateOnly)],
			})
		}
		return chartDataMsg{days: days}
	}
}

func (h homeModel) update(msg tea.Msg) (homeModel, tea.Cmd) {
	switch msg := msg.(type) {
	case statsDataMsg:
		h.stats = msg.stats
		return h, nil
	case chartDataMsg:
		h.days = msg.days
		h.buildChart()
		return h, nil
	}
	return h, nil
}

func (h *homeModel) buildChart() {
	chartWidth := h.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 8
	if h.height > 30 {
		chartHeight = 12
	}

	h.chart = barchart.New(chartWidth, chartHeight)

	var bars []barchart.BarData
	for _, d := range h.days {
		style := lipgloss.NewStyle().Foreground(colorPrimary)
		if d.count == 0 {
			style = lipgloss.NewStyle().Foreground(colorSubtle)
		}
		bars = append(bars, barchart.BarData{
			Label: d.label,
			Values: []barchart.BarValue{
				{Name: "pomodoros", Value: float64(d.count), Style: style},
			},
		})
	}

	h.chart.PushAll(bars)
	h.chart.Draw()
}

func (h homeModel) view() string {
	if h.width < 20 {
		return "Terminal too small"
	}

	contentWidth := h.width - 4

	statsPanel := h.renderStatsPanel(contentWidth)
	chartPanel := h.renderChartPanel(contentWidth)
	upcomingPanel := h.renderUpcomingPanel(contentWidth)

	return lipgloss.JoinVertical(lipgloss.Left, statsPanel, chartPanel, upcomingPanel)
}

func (h homeModel) renderStatsPanel(w int) string {
	cell := func(label, value string) string {
		return lipgloss.JoinVertical(lipgloss.Center,
			highlightStyle.Bold(true).Render(value),
			mutedStyle.Render(label),
		)
	}

	streak := fmt.Sprintf("%d days", h.stats.CurrentStreakDays)
	if h.stats.CurrentStreakDays == 1 {
		streak = "1 day"
	}

	cells := []string{
		cell("focus time", formatMinutes(h.stats.FocusTimeMinutes)),
		cell("tasks done", fmt.Sprintf("%d", h.stats.CompletedTasks)),
		cell("pomodoros", fmt.Sprintf("%d", h.stats.TotalPomodoros)),
		cell("streak", streak),
	}

	cellWidth := (w - 8) / len(cells)
	if cellWidth < 10 {
		cellWidth = 10
	}
	for i := range cells {
		cells[i] = lipgloss.NewStyle().Width(cellWidth).Align(lipgloss.Center).Render(cells[i])
	}

	grid := lipgloss.JoinHorizontal(lipgloss.Top, cells...)
	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("Overview"), "", grid),
	)
}

func (h homeModel) renderChartPanel(w int) string {
	title := titleStyle.Render("Pomodoros, last 7 days")
	if len(h.days) == 0 {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", mutedStyle.Render("No activity yet")),
		)
	}
	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, "", h.chart.View()),
	)
}

func (h homeModel) renderUpcomingPanel(w int) string {
	title := titleStyle.Render("Scheduled")

	tasks := h.svc.repo.Tasks()
	now := time.Now()
	var upcoming []model.Task
	for _, t := range tasks {
		if t.Completed || t.ScheduledFor == nil || t.ScheduledFor.Before(now) {
			continue
		}
		upcoming = append(upcoming, t)
	}
	sort.Slice(upcoming, func(i, j int) bool {
		return upcoming[i].ScheduledFor.Before(*upcoming[j].ScheduledFor)
	})
	if len(upcoming) > 5 {
		upcoming = upcoming[:5]
	}

	if len(upcoming) == 0 {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, mutedStyle.Render("Nothing scheduled")),
		)
	}

	var rows []string
	rows = append(rows, title)
	for _, t := range upcoming {
		when := humanize.Time(*t.ScheduledFor)
		bell := " "
		if t.ReminderEnabled {
			bell = accentStyle.Render("!")
		}
		rows = append(rows, fmt.Sprintf("  %s %-30s %s", bell, truncate(t.Title, 30), mutedStyle.Render(when)))
	}
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n < 1 {
		return ""
	}
	return s[:n-1] + "…"
}
