package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tomadori/focusdeck/internal/achievements"
)

// achievementsModel renders the badge ladders with progress bars.
// Progress is recomputed from live snapshots on every refresh; nothing
// is stored.
type achievementsModel struct {
	svc    *services
	width  int
	height int

	progress []achievements.Progress
}

func newAchievementsModel(svc *services) achievementsModel {
	return achievementsModel{svc: svc}
}

func (m *achievementsModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

type achievementsDataMsg struct {
	progress []achievements.Progress
}

func (m achievementsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		progress := achievements.Evaluate(
			m.svc.stats.Snapshot(),
			m.svc.repo.Folders(),
			m.svc.repo.Tasks(),
		)
		return achievementsDataMsg{progress: progress}
	}
}

func (m achievementsModel) update(msg tea.Msg) (achievementsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case achievementsDataMsg:
		m.progress = msg.progress
		return m, nil
	}
	return m, nil
}

func (m achievementsModel) view() string {
	w := m.width - 4

	var rows []string
	rows = append(rows, titleStyle.Render("Achievements"))
	rows = append(rows, "")

	for i, a := range achievements.Catalog {
		var p achievements.Progress
		if i < len(m.progress) {
			p = m.progress[i]
		} else {
			p = achievements.Progress{AchievementID: a.ID, TierLabel: "Not Started"}
		}
		rows = append(rows, m.renderAchievement(a, p, w))
		rows = append(rows, "")
	}

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (m achievementsModel) renderAchievement(a achievements.Achievement, p achievements.Progress, w int) string {
	medals := m.renderMedals(a, p.Value)

	label := mutedStyle.Render(p.TierLabel)
	if p.TierLabel != "Not Started" {
		label = successStyle.Render(p.TierLabel)
	}

	header := fmt.Sprintf("  %s %s  %s", medals, titleStyle.Render(a.Title), label)
	desc := "  " + subtitleStyle.Render(a.Description)
	bar := "  " + renderProgressBar(p.Percent, min(w-20, 40)) +
		mutedStyle.Render(fmt.Sprintf(" %3.0f%%", p.Percent))

	return strings.Join([]string{header, desc, bar}, "\n")
}

func (m achievementsModel) renderMedals(a achievements.Achievement, value int) string {
	var parts []string
	for _, tier := range a.Tiers {
		style := barEmptyStyle
		if value >= tier.Threshold {
			switch tier.Medal {
			case achievements.MedalBronze:
				style = medalBronzeStyle
			case achievements.MedalSilver:
				style = medalSilverStyle
			case achievements.MedalGold:
				style = medalGoldStyle
			}
		}
		parts = append(parts, style.Render("●"))
	}
	return strings.Join(parts, "")
}

func renderProgressBar(percent float64, width int) string {
	if width < 4 {
		width = 4
	}
	filled := int(percent / 100 * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return barFilledStyle.Render(strings.Repeat("█", filled)) +
		barEmptyStyle.Render(strings.Repeat("░", width-filled))
}
