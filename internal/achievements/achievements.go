// Package achievements derives tiered badge progress from the current
// stats, folders and tasks. Evaluation is pure: no state, no side
// effects, fully recomputed on demand.
package achievements

import "github.com/tomadori/focusdeck/internal/model"

// ThresholdKind says what unit a tier's threshold measures.
type ThresholdKind int

const (
	ThresholdMinutes ThresholdKind = iota
	ThresholdCount
	ThresholdDays
)

// Medal is the presentation rank of a tier.
type Medal string

const (
	MedalBronze Medal = "bronze"
	MedalSilver Medal = "silver"
	MedalGold   Medal = "gold"
)

// Tier is one rung of an achievement ladder.
type Tier struct {
	Kind      ThresholdKind
	Threshold int
	Reward    string
	Medal     Medal
}

// Achievement is a ladder of tiers over one extracted value.
type Achievement struct {
	ID          string
	Title       string
	Description string
	Tiers       []Tier
	value       func(model.Stats, []model.Folder, []model.Task) int
}

// Progress is the evaluated standing for one achievement.
type Progress struct {
	AchievementID string
	Value         int
	Percent       float64 // 0-100
	TierLabel     string  // reward of the highest satisfied tier, or "Not Started"
}

// Catalog is the fixed achievement set.
var Catalog = []Achievement{
	{
		ID:          "focus-master",
		Title:       "Focus Master",
		Description: "Master the art of deep focus",
		Tiers: []Tier{
			{Kind: ThresholdMinutes, Threshold: 600, Reward: "Bronze Focus Master", Medal: MedalBronze},
			{Kind: ThresholdMinutes, Threshold: 1800, Reward: "Silver Focus Master", Medal: MedalSilver},
			{Kind: ThresholdMinutes, Threshold: 3600, Reward: "Gold Focus Master", Medal: MedalGold},
		},
		value: func(s model.Stats, _ []model.Folder, _ []model.Task) int { return s.FocusTimeMinutes },
	},
	{
		ID:          "task-champion",
		Title:       "Task Champion",
		Description: "Complete tasks like a champion",
		Tiers: []Tier{
			{Kind: ThresholdCount, Threshold: 10, Reward: "Bronze Task Champion", Medal: MedalBronze},
			{Kind: ThresholdCount, Threshold: 50, Reward: "Silver Task Champion", Medal: MedalSilver},
			{Kind: ThresholdCount, Threshold: 100, Reward: "Gold Task Champion", Medal: MedalGold},
		},
		value: func(s model.Stats, _ []model.Folder, _ []model.Task) int { return s.CompletedTasks },
	},
	{
		ID:          "pomodoro-master",
		Title:       "Pomodoro Master",
		Description: "Master the Pomodoro technique",
		Tiers: []Tier{
			{Kind: ThresholdCount, Threshold: 25, Reward: "Bronze Pomodoro Master", Medal: MedalBronze},
			{Kind: ThresholdCount, Threshold: 100, Reward: "Silver Pomodoro Master", Medal: MedalSilver},
			{Kind: ThresholdCount, Threshold: 250, Reward: "Gold Pomodoro Master", Medal: MedalGold},
		},
		value: func(s model.Stats, _ []model.Folder, _ []model.Task) int { return s.TotalPomodoros },
	},
	{
		ID:          "consistency-king",
		Title:       "Consistency King",
		Description: "Rule with consistent daily practice",
		Tiers: []Tier{
			{Kind: ThresholdDays, Threshold: 7, Reward: "Weekly Warrior", Medal: MedalBronze},
			{Kind: ThresholdDays, Threshold: 30, Reward: "Monthly Master", Medal: MedalSilver},
			{Kind: ThresholdDays, Threshold: 100, Reward: "Legendary Streak", Medal: MedalGold},
		},
		value: func(s model.Stats, _ []model.Folder, _ []model.Task) int { return s.CurrentStreakDays },
	},
	{
		ID:          "organization-expert",
		Title:       "Organization Expert",
		Description: "Master task organization",
		Tiers: []Tier{
			{Kind: ThresholdCount, Threshold: 3, Reward: "Folder Beginner", Medal: MedalBronze},
			{Kind: ThresholdCount, Threshold: 5, Reward: "Folder Pro", Medal: MedalSilver},
			{Kind: ThresholdCount, Threshold: 10, Reward: "Folder Master", Medal: MedalGold},
		},
		value: func(_ model.Stats, folders []model.Folder, _ []model.Task) int { return len(folders) },
	},
	{
		ID:          "efficiency-expert",
		Title:       "Efficiency Expert",
		Description: "Complete tasks efficiently",
		Tiers: []Tier{
			{Kind: ThresholdCount, Threshold: 5, Reward: "Bronze Efficiency", Medal: MedalBronze},
			{Kind: ThresholdCount, Threshold: 15, Reward: "Silver Efficiency", Medal: MedalSilver},
			{Kind: ThresholdCount, Threshold: 30, Reward: "Gold Efficiency", Medal: MedalGold},
		},
		value: func(_ model.Stats, _ []model.Folder, tasks []model.Task) int {
			n := 0
			for _, t := range tasks {
				if t.Completed && t.Pomodoros <= t.EstimatedPomodoros {
					n++
				}
			}
			return n
		},
	},
}

// Evaluate computes progress for every achievement in the catalog.
func Evaluate(stats model.Stats, folders []model.Folder, tasks []model.Task) []Progress {
	out := make([]Progress, 0, len(Catalog))
	for _, a := range Catalog {
		out = append(out, a.Evaluate(stats, folders, tasks))
	}
	return out
}

// Evaluate computes the standing for one achievement. The achieved
// tier is the last tier whose threshold the value meets; progress
// toward the next unmet tier interpolates linearly from the previous
// threshold (or zero) and clamps to [0, 100].
func (a Achievement) Evaluate(stats model.Stats, folders []model.Folder, tasks []model.Task) Progress {
	value := a.value(stats, folders, tasks)

	p := Progress{AchievementID: a.ID, Value: value, TierLabel: "Not Started"}

	next := -1
	for i, tier := range a.Tiers {
		if value >= tier.Threshold {
			p.TierLabel = tier.Reward
		} else if next == -1 {
			next = i
		}
	}

	if next == -1 {
		p.Percent = 100
		return p
	}

	prev := 0
	if next > 0 {
		prev = a.Tiers[next-1].Threshold
	}
	pct := float64(value-prev) / float64(a.Tiers[next].Threshold-prev) * 100
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	p.Percent = pct
	return p
}
