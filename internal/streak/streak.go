// Package streak tracks consecutive-day activity and the payout
// multiplier it earns. Streaks are lazy: they change only when the
// next streak-eligible action happens, never merely because time
// passed.
package streak

import "time"

// Advance applies one streak-eligible event at now to the state
// (last active date, count) and returns the new state. Same calendar
// day: unchanged. Exactly the next day: count+1. Any longer gap, or no
// prior activity: reset to 1.
func Advance(last *time.Time, count int, now time.Time) (time.Time, int) {
	today := dateOf(now)
	if last == nil {
		return today, 1
	}

	switch daysBetween(dateOf(*last), today) {
	case 0:
		return dateOf(*last), count
	case 1:
		return today, count + 1
	default:
		return today, 1
	}
}

// dateOf normalizes to midnight UTC of the local calendar date, which
// makes day arithmetic immune to DST-length days.
func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func daysBetween(a, b time.Time) int {
	return int(b.Sub(a) / (24 * time.Hour))
}

// Multiplier scales quest payouts by streak length. It applies to
// points and xp equally, and never to redemptions or mystery boxes.
type Multiplier struct {
	MidStreak int
	MidFactor float64
	TopStreak int
	TopFactor float64
}

// DefaultMultiplier is the canonical tiering: 1.2x from a 3-day
// streak, 1.5x from 7.
var DefaultMultiplier = Multiplier{
	MidStreak: 3,
	MidFactor: 1.2,
	TopStreak: 7,
	TopFactor: 1.5,
}

// Factor returns the payout multiplier for a streak length.
func (m Multiplier) Factor(streak int) float64 {
	switch {
	case m.TopStreak > 0 && streak >= m.TopStreak:
		return m.TopFactor
	case m.MidStreak > 0 && streak >= m.MidStreak:
		return m.MidFactor
	default:
		return 1.0
	}
}
