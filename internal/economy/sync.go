package economy

import (
	"fmt"
	"strings"

	"github.com/dukerupert/questkeep/internal/model"
)

// Sync recomputes every user's XP from the history log and overwrites
// the stored value. Only quest-completion deltas count: redemptions
// and mystery boxes move spendable points, not lifetime XP. Running it
// twice with no new history is a no-op the second time.
func (l *Ledger) Sync(actor string) (map[string]float64, error) {
	a, _, err := l.users.Get(actor)
	if err != nil {
		return nil, err
	}
	if !a.Role.IsAdmin() {
		return nil, fmt.Errorf("%q: %w", actor, ErrNotAdmin)
	}

	entries, err := l.history.All()
	if err != nil {
		return nil, err
	}
	totals := make(map[string]float64)
	for _, e := range entries {
		if e.Action != model.ActionQuestComplete {
			continue
		}
		totals[strings.ToLower(e.User)] += e.Delta
	}

	users, err := l.users.All()
	if err != nil {
		return nil, err
	}

	result := make(map[string]float64, len(users))
	for _, u := range users {
		want := totals[strings.ToLower(u.Name)]
		if want < 0 {
			want = 0
		}
		if err := l.syncUser(u.Name, want); err != nil {
			return nil, err
		}
		result[u.Name] = want
	}

	l.logger.Info("xp sync complete", "by", actor, "users", len(result))
	return result, nil
}

func (l *Ledger) syncUser(name string, xp float64) error {
	unlock := l.lockUser(name)
	defer unlock()

	// Re-read under the lock for a fresh row version.
	user, ref, err := l.users.Get(name)
	if err != nil {
		return err
	}
	if user.XP == xp {
		return nil
	}
	user.XP = xp
	return l.users.Update(ref, user)
}
