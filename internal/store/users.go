package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/dukerupert/questkeep/internal/model"
)

// dateLayout is how last-active dates are written; calendar precision
// only.
const dateLayout = "2006-01-02"

// Users adapts the raw users table into model.User values. Roles are
// normalized here so nothing downstream ever compares raw role text.
type Users struct {
	st Store
}

func NewUsers(st Store) *Users {
	return &Users{st: st}
}

func (u *Users) All() ([]model.User, error) {
	recs, err := u.st.ReadAll(TableUsers)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	users := make([]model.User, 0, len(recs))
	for _, rec := range recs {
		users = append(users, decodeUser(rec))
	}
	return users, nil
}

func (u *Users) Get(name string) (model.User, RowRef, error) {
	ref, rec, err := u.st.FindRowByKey(TableUsers, "name", strings.TrimSpace(name))
	if err != nil {
		return model.User{}, 0, fmt.Errorf("get user %q: %w", name, err)
	}
	return decodeUser(rec), ref, nil
}

func (u *Users) Create(usr model.User) error {
	rec := Record{
		"name":        strings.TrimSpace(usr.Name),
		"role":        string(model.ParseRole(string(usr.Role))),
		"pin":         usr.PINHash,
		"points":      formatFloat(usr.Points),
		"xp":          formatFloat(usr.XP),
		"streak":      formatFloat(float64(usr.Streak)),
		"last_active": formatDate(usr.LastActive),
	}
	if err := u.st.AppendRow(TableUsers, rec); err != nil {
		return fmt.Errorf("create user %q: %w", usr.Name, err)
	}
	return nil
}

// Update writes the user's mutable ledger fields with a compare-and-
// swap on the version the user was read at. ErrConflict means another
// writer got there first and the whole operation should be retried.
func (u *Users) Update(ref RowRef, usr model.User) error {
	changes := Record{
		"points":      formatFloat(usr.Points),
		"xp":          formatFloat(usr.XP),
		"streak":      formatFloat(float64(usr.Streak)),
		"last_active": formatDate(usr.LastActive),
	}
	if err := u.st.UpdateRow(TableUsers, ref, usr.Version, changes); err != nil {
		return fmt.Errorf("update user %q: %w", usr.Name, err)
	}
	return nil
}

func (u *Users) SetPINHash(ref RowRef, hash string) error {
	if err := u.st.UpdateCell(TableUsers, ref, "pin", hash); err != nil {
		return fmt.Errorf("set pin: %w", err)
	}
	return nil
}

func decodeUser(rec Record) model.User {
	return model.User{
		Name:       strings.TrimSpace(rec["name"]),
		Role:       model.ParseRole(rec["role"]),
		PINHash:    rec["pin"],
		Points:     coerceFloat(rec, "points"),
		XP:         coerceFloat(rec, "xp"),
		Streak:     coerceInt(rec, "streak"),
		LastActive: parseDate(rec["last_active"]),
		Version:    recordVersion(rec),
	}
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}

func parseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	t, err := time.ParseInLocation(dateLayout, s, time.Local)
	if err != nil {
		return nil
	}
	return &t
}
