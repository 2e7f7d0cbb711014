package economy

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dukerupert/questkeep/internal/dedup"
	"github.com/dukerupert/questkeep/internal/model"
)

// Profile is the per-member view the presentation layer renders:
// balances plus everything derived from them.
type Profile struct {
	Name       string     `json:"name"`
	Role       model.Role `json:"role"`
	Points     float64    `json:"points"`
	XP         float64    `json:"xp"`
	Streak     int        `json:"streak"`
	LastActive *time.Time `json:"last_active,omitempty"`
	Level      int        `json:"level"`
	Title      string     `json:"title"`
	Progress   float64    `json:"progress"`
}

func (l *Ledger) profileOf(u model.User) Profile {
	lvl := l.levels.Level(u.XP)
	return Profile{
		Name:       u.Name,
		Role:       u.Role,
		Points:     u.Points,
		XP:         u.XP,
		Streak:     u.Streak,
		LastActive: u.LastActive,
		Level:      lvl,
		Title:      l.levels.Title(lvl),
		Progress:   l.levels.Progress(u.XP),
	}
}

// Profile returns one member's view.
func (l *Ledger) Profile(name string) (Profile, error) {
	u, _, err := l.users.Get(name)
	if err != nil {
		return Profile{}, err
	}
	return l.profileOf(u), nil
}

// Leaderboard returns all members ordered by XP descending, ties
// broken by name so the order is stable.
func (l *Ledger) Leaderboard() ([]Profile, error) {
	users, err := l.users.All()
	if err != nil {
		return nil, err
	}

	profiles := make([]Profile, 0, len(users))
	for _, u := range users {
		profiles = append(profiles, l.profileOf(u))
	}
	sort.SliceStable(profiles, func(i, j int) bool {
		if profiles[i].XP != profiles[j].XP {
			return profiles[i].XP > profiles[j].XP
		}
		return strings.ToLower(profiles[i].Name) < strings.ToLower(profiles[j].Name)
	})
	return profiles, nil
}

// VisibleTasks returns the tasks the user can complete right now,
// evaluated fresh against the latest history snapshot.
func (l *Ledger) VisibleTasks(userName string) ([]model.Task, error) {
	user, _, err := l.users.Get(userName)
	if err != nil {
		return nil, err
	}
	tasks, err := l.tasks.All()
	if err != nil {
		return nil, err
	}
	entries, err := l.history.ForUser(user.Name)
	if err != nil {
		return nil, err
	}

	ix := dedup.NewIndex(entries, l.rules.PMCutoverHour)
	now := l.now()
	var out []model.Task
	for _, t := range tasks {
		if ix.Available(t, user.Name, now) {
			out = append(out, t)
		}
	}
	return out, nil
}

// AvailableRewards returns the approved catalog.
func (l *Ledger) AvailableRewards() ([]model.Reward, error) {
	rewards, err := l.rewards.All()
	if err != nil {
		return nil, err
	}
	var out []model.Reward
	for _, r := range rewards {
		if r.Status == model.RewardApproved {
			out = append(out, r)
		}
	}
	return out, nil
}

// Goal returns the family goal with its progress fraction available
// via model.Goal.Fraction.
func (l *Ledger) Goal() (model.Goal, error) {
	return l.settings.Goal()
}

// SetGoal lets an admin retitle or retarget the family goal. The
// accumulated current value stays; the goal never ratchets down.
func (l *Ledger) SetGoal(actor, title string, target float64) (model.Goal, error) {
	a, _, err := l.users.Get(actor)
	if err != nil {
		return model.Goal{}, err
	}
	if !a.Role.IsAdmin() {
		return model.Goal{}, fmt.Errorf("%q: %w", actor, ErrNotAdmin)
	}
	if err := l.settings.SetGoal(title, target); err != nil {
		return model.Goal{}, err
	}
	return l.settings.Goal()
}

// RecentHistory returns up to limit entries, newest first.
func (l *Ledger) RecentHistory(limit int) ([]model.HistoryEntry, error) {
	entries, err := l.history.All()
	if err != nil {
		return nil, err
	}
	// Stored order is insertion order; flip it.
	out := make([]model.HistoryEntry, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		out = append(out, entries[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}
