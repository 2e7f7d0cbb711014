package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/dukerupert/questkeep/internal/model"
)

// History adapts the append-only history table. Entries come back in
// insertion order; nothing here edits or deletes a row.
type History struct {
	st Store
}

func NewHistory(st Store) *History {
	return &History{st: st}
}

func (h *History) All() ([]model.HistoryEntry, error) {
	recs, err := h.st.ReadAll(TableHistory)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}

	entries := make([]model.HistoryEntry, 0, len(recs))
	for _, rec := range recs {
		entries = append(entries, decodeHistoryEntry(rec))
	}
	return entries, nil
}

// ForUser filters to one user's entries, preserving order.
func (h *History) ForUser(name string) ([]model.HistoryEntry, error) {
	all, err := h.All()
	if err != nil {
		return nil, err
	}
	var out []model.HistoryEntry
	for _, e := range all {
		if strings.EqualFold(e.User, name) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (h *History) Append(e model.HistoryEntry) error {
	rec := Record{
		"entry_id": e.EntryID,
		"date":     e.Timestamp.Format(model.HistoryTimeLayout),
		"user":     e.User,
		"action":   string(e.Action),
		"item":     e.Item,
		"points":   formatFloat(e.Delta),
	}
	if err := h.st.AppendRow(TableHistory, rec); err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}

func decodeHistoryEntry(rec Record) model.HistoryEntry {
	// Unrecognized action labels are kept raw; the engines only look
	// for the known ones, so oddball rows stay audit-only.
	action, err := model.ParseAction(rec["action"])
	if err != nil {
		action = model.Action(strings.TrimSpace(rec["action"]))
	}
	return model.HistoryEntry{
		EntryID:   strings.TrimSpace(rec["entry_id"]),
		Timestamp: parseHistoryTime(rec["date"]),
		User:      strings.TrimSpace(rec["user"]),
		Action:    action,
		Item:      strings.TrimSpace(rec["item"]),
		Delta:     coerceFloat(rec, "points"),
	}
}

func parseHistoryTime(s string) time.Time {
	s = strings.TrimSpace(s)
	if t, err := time.ParseInLocation(model.HistoryTimeLayout, s, time.Local); err == nil {
		return t
	}
	if t, err := time.ParseInLocation(dateLayout, s, time.Local); err == nil {
		return t
	}
	return time.Time{}
}
