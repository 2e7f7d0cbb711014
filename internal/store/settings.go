package store

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dukerupert/questkeep/internal/model"
)

const (
	keyGoalTitle   = "goal_title"
	keyGoalTarget  = "goal_target"
	keyGoalCurrent = "goal_current"
)

// casRetries bounds the add-to-goal retry loop; the goal row is shared
// by the whole family, so short races are expected.
const casRetries = 5

// Settings adapts the key/value settings table.
type Settings struct {
	st Store
}

func NewSettings(st Store) *Settings {
	return &Settings{st: st}
}

func (s *Settings) Get(key string) (string, error) {
	_, rec, err := s.st.FindRowByKey(TableSettings, "key", key)
	if err != nil {
		return "", fmt.Errorf("get setting %q: %w", key, err)
	}
	return rec["value"], nil
}

// Set upserts one setting.
func (s *Settings) Set(key, value string) error {
	ref, _, err := s.st.FindRowByKey(TableSettings, "key", key)
	if errors.Is(err, ErrNotFound) {
		if err := s.st.AppendRow(TableSettings, Record{"key": key, "value": value}); err != nil {
			return fmt.Errorf("set setting %q: %w", key, err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("set setting %q: %w", key, err)
	}
	if err := s.st.UpdateCell(TableSettings, ref, "value", value); err != nil {
		return fmt.Errorf("set setting %q: %w", key, err)
	}
	return nil
}

// Goal reads the family goal. Missing keys read as zero values so a
// fresh household starts with an empty goal rather than an error.
func (s *Settings) Goal() (model.Goal, error) {
	var g model.Goal
	for _, key := range []string{keyGoalTitle, keyGoalTarget, keyGoalCurrent} {
		v, err := s.Get(key)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return model.Goal{}, err
		}
		switch key {
		case keyGoalTitle:
			g.Title = strings.TrimSpace(v)
		case keyGoalTarget:
			g.Target = parseSettingFloat(v)
		case keyGoalCurrent:
			g.Current = parseSettingFloat(v)
		}
	}
	return g, nil
}

// SetGoal replaces the goal title and target. The accumulated current
// value is left alone.
func (s *Settings) SetGoal(title string, target float64) error {
	if err := s.Set(keyGoalTitle, strings.TrimSpace(title)); err != nil {
		return err
	}
	return s.Set(keyGoalTarget, formatFloat(target))
}

// AddToGoal ratchets the family goal upward. Non-positive deltas are
// ignored; the goal never decreases. The read-increment-write runs
// under CAS with a short retry loop since every member's completions
// land on the same row.
func (s *Settings) AddToGoal(delta float64) error {
	if delta <= 0 {
		return nil
	}

	for attempt := 0; attempt < casRetries; attempt++ {
		ref, rec, err := s.st.FindRowByKey(TableSettings, "key", keyGoalCurrent)
		if errors.Is(err, ErrNotFound) {
			if err := s.st.AppendRow(TableSettings, Record{"key": keyGoalCurrent, "value": formatFloat(delta)}); err != nil {
				return fmt.Errorf("add to goal: %w", err)
			}
			return nil
		}
		if err != nil {
			return fmt.Errorf("add to goal: %w", err)
		}

		next := parseSettingFloat(rec["value"]) + delta
		err = s.st.UpdateRow(TableSettings, ref, recordVersion(rec), Record{"value": formatFloat(next)})
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrConflict) {
			return fmt.Errorf("add to goal: %w", err)
		}
	}
	return fmt.Errorf("add to goal: %w", ErrConflict)
}

func parseSettingFloat(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}
