package model

import (
	"fmt"
	"strings"
	"time"
)

// Action classifies a history entry.
type Action string

const (
	ActionQuestComplete Action = "QuestComplete"
	ActionReward        Action = "Reward"
	ActionMysteryBox    Action = "MysteryBox"
)

// ParseAction normalizes a raw action cell, including the long-form
// labels the original sheet used ("Completed Task", "Redeemed Reward").
func ParseAction(s string) (Action, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer(" ", "", "-", "", "_", "").Replace(key)
	switch key {
	case "questcomplete", "completedtask", "taskcomplete":
		return ActionQuestComplete, nil
	case "reward", "redeemedreward":
		return ActionReward, nil
	case "mysterybox", "gacha":
		return ActionMysteryBox, nil
	}
	return "", fmt.Errorf("unknown action %q", s)
}

// HistoryTimeLayout is the timestamp format the history table has
// always used.
const HistoryTimeLayout = "2006-01-02 15:04"

// HistoryEntry is one immutable row of the ledger's audit log.
// EntryID is the idempotency key for the logical action that produced
// it. Insertion order is significant; entries are never edited or
// deleted.
type HistoryEntry struct {
	EntryID   string    `json:"entry_id"`
	Timestamp time.Time `json:"timestamp"`
	User      string    `json:"user"`
	Action    Action    `json:"action"`
	Item      string    `json:"item"`
	Delta     float64   `json:"delta"`
}
