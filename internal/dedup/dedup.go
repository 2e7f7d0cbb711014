// Package dedup decides whether a task is currently available to a
// user. The raw history table stays the ground truth; an Index is a
// derived per-(user, task) view built fresh at evaluation time, so
// availability always reflects the latest snapshot.
package dedup

import (
	"strings"
	"time"

	"github.com/dukerupert/questkeep/internal/model"
)

// DefaultPMCutoverHour splits a twice-daily task's day: completions
// before 16:00 land in the AM window, 16:00 and later in PM.
const DefaultPMCutoverHour = 16

// weeklyLookback is the rolling window for Weekly tasks.
const weeklyLookback = 7 * 24 * time.Hour

type completionKey struct {
	user string
	task string
}

// Index holds quest-completion timestamps grouped by (user, task
// title). Build one from a history snapshot, ask it about
// availability, throw it away.
type Index struct {
	cutover     int
	completions map[completionKey][]time.Time
}

// NewIndex builds an Index from a history snapshot. Only QuestComplete
// entries count; redemptions and mystery boxes never block a task.
func NewIndex(entries []model.HistoryEntry, pmCutoverHour int) *Index {
	if pmCutoverHour < 0 || pmCutoverHour > 23 {
		pmCutoverHour = DefaultPMCutoverHour
	}
	ix := &Index{
		cutover:     pmCutoverHour,
		completions: make(map[completionKey][]time.Time),
	}
	for _, e := range entries {
		if e.Action != model.ActionQuestComplete || e.Timestamp.IsZero() {
			continue
		}
		k := key(e.User, e.Item)
		ix.completions[k] = append(ix.completions[k], e.Timestamp)
	}
	return ix
}

// Available reports whether the user can complete the task right now.
// Assignment and task status gate first; then the frequency window
// rules apply against the user's completion history.
func (ix *Index) Available(task model.Task, user string, now time.Time) bool {
	if !task.AssignedTo(user) {
		return false
	}
	// For one-time tasks the status column is authoritative, which is
	// why it flips to Completed on first success.
	if task.Status != model.TaskActive {
		return false
	}

	times := ix.completions[key(user, task.Title)]
	switch task.Frequency {
	case model.FreqOneTime:
		return true
	case model.FreqDaily:
		return countOnDay(times, now) == 0
	case model.FreqTwiceDaily:
		return ix.countInWindow(times, now) == 0
	case model.FreqWeekly:
		return countSince(times, now.Add(-weeklyLookback), now) == 0
	}
	return false
}

// countInWindow counts completions on now's calendar date that fall in
// the same AM/PM window as now.
func (ix *Index) countInWindow(times []time.Time, now time.Time) int {
	pm := now.Hour() >= ix.cutover
	n := 0
	for _, t := range times {
		if !sameDay(t, now) {
			continue
		}
		if (t.Hour() >= ix.cutover) == pm {
			n++
		}
	}
	return n
}

func countOnDay(times []time.Time, day time.Time) int {
	n := 0
	for _, t := range times {
		if sameDay(t, day) {
			n++
		}
	}
	return n
}

func countSince(times []time.Time, after, until time.Time) int {
	n := 0
	for _, t := range times {
		if t.After(after) && !t.After(until) {
			n++
		}
	}
	return n
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func key(user, task string) completionKey {
	return completionKey{
		user: strings.ToLower(strings.TrimSpace(user)),
		task: strings.ToLower(strings.TrimSpace(task)),
	}
}
