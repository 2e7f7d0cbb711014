package model

import (
	"fmt"
	"strings"
)

// Frequency controls how often a task can be completed. The string
// values match the sheet cells the family has been typing for years.
type Frequency string

const (
	FreqOneTime    Frequency = "One-time"
	FreqDaily      Frequency = "Daily"
	FreqTwiceDaily Frequency = "Twice-daily"
	FreqWeekly     Frequency = "Weekly"
)

// ParseFrequency normalizes a raw frequency cell. It tolerates the
// spelling drift seen in real sheets ("one time", "Twice Daily").
func ParseFrequency(s string) (Frequency, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer(" ", "", "-", "", "_", "").Replace(key)
	switch key {
	case "onetime", "once":
		return FreqOneTime, nil
	case "daily", "":
		return FreqDaily, nil
	case "twicedaily", "twiceaday":
		return FreqTwiceDaily, nil
	case "weekly":
		return FreqWeekly, nil
	}
	return "", fmt.Errorf("unknown frequency %q", s)
}

type TaskStatus string

const (
	TaskPendingApproval TaskStatus = "Pending Approval"
	TaskActive          TaskStatus = "Active"
	TaskCompleted       TaskStatus = "Completed"
	TaskRejected        TaskStatus = "Rejected"
)

// ParseTaskStatus normalizes a raw status cell.
func ParseTaskStatus(s string) (TaskStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending approval", "pending":
		return TaskPendingApproval, nil
	case "active":
		return TaskActive, nil
	case "completed", "done":
		return TaskCompleted, nil
	case "rejected":
		return TaskRejected, nil
	}
	return "", fmt.Errorf("unknown task status %q", s)
}

// Task is a quest. An empty Assignees list means anyone may complete
// it (the "Any" cell in the sheet).
type Task struct {
	ID         int64      `json:"id"`
	Title      string     `json:"title"`
	BasePoints float64    `json:"base_points"`
	Assignees  []string   `json:"assignees,omitempty"`
	Frequency  Frequency  `json:"frequency"`
	Status     TaskStatus `json:"status"`
	CreatedBy  string     `json:"created_by,omitempty"`
	Version    int64      `json:"-"`
}

// AssignedTo reports whether the task is open to the given user.
func (t Task) AssignedTo(user string) bool {
	if len(t.Assignees) == 0 {
		return true
	}
	for _, a := range t.Assignees {
		if strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(user)) {
			return true
		}
	}
	return false
}
