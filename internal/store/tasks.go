package store

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dukerupert/questkeep/internal/model"
)

// anyAssignee is the sheet cell meaning "open to everyone".
const anyAssignee = "Any"

// firstTaskID keeps task ids out of the low range the family used for
// hand-numbered rows.
const firstTaskID = 101

type Tasks struct {
	st Store
}

func NewTasks(st Store) *Tasks {
	return &Tasks{st: st}
}

func (t *Tasks) All() ([]model.Task, error) {
	recs, err := t.st.ReadAll(TableTasks)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	tasks := make([]model.Task, 0, len(recs))
	for _, rec := range recs {
		tasks = append(tasks, decodeTask(rec))
	}
	return tasks, nil
}

func (t *Tasks) Get(id int64) (model.Task, RowRef, error) {
	ref, rec, err := t.st.FindRowByKey(TableTasks, "id", strconv.FormatInt(id, 10))
	if err != nil {
		return model.Task{}, 0, fmt.Errorf("get task %d: %w", id, err)
	}
	return decodeTask(rec), ref, nil
}

func (t *Tasks) Append(task model.Task) error {
	rec := Record{
		"id":         strconv.FormatInt(task.ID, 10),
		"title":      strings.TrimSpace(task.Title),
		"points":     formatFloat(task.BasePoints),
		"assignee":   encodeAssignees(task.Assignees),
		"frequency":  string(task.Frequency),
		"status":     string(task.Status),
		"created_by": task.CreatedBy,
	}
	if err := t.st.AppendRow(TableTasks, rec); err != nil {
		return fmt.Errorf("append task %q: %w", task.Title, err)
	}
	return nil
}

// SetStatus flips a task's status with a compare-and-swap on the
// version it was read at, so two admins cannot decide the same
// proposal twice.
func (t *Tasks) SetStatus(ref RowRef, task model.Task, status model.TaskStatus) error {
	changes := Record{"status": string(status)}
	if err := t.st.UpdateRow(TableTasks, ref, task.Version, changes); err != nil {
		return fmt.Errorf("set task %d status: %w", task.ID, err)
	}
	return nil
}

// NextID returns an id one past the highest in the table.
func (t *Tasks) NextID() (int64, error) {
	tasks, err := t.All()
	if err != nil {
		return 0, err
	}
	next := int64(firstTaskID)
	for _, task := range tasks {
		if task.ID >= next {
			next = task.ID + 1
		}
	}
	return next, nil
}

func decodeTask(rec Record) model.Task {
	freq, err := model.ParseFrequency(rec["frequency"])
	if err != nil {
		freq = model.FreqOneTime
	}
	status, err := model.ParseTaskStatus(rec["status"])
	if err != nil {
		status = model.TaskPendingApproval
	}
	return model.Task{
		ID:         coerceInt64(rec, "id"),
		Title:      strings.TrimSpace(rec["title"]),
		BasePoints: coerceFloat(rec, "points"),
		Assignees:  decodeAssignees(rec["assignee"]),
		Frequency:  freq,
		Status:     status,
		CreatedBy:  strings.TrimSpace(rec["created_by"]),
		Version:    recordVersion(rec),
	}
}

func encodeAssignees(names []string) string {
	if len(names) == 0 {
		return anyAssignee
	}
	return strings.Join(names, ", ")
}

func decodeAssignees(cell string) []string {
	cell = strings.TrimSpace(cell)
	if cell == "" || strings.EqualFold(cell, anyAssignee) {
		return nil
	}
	parts := strings.Split(cell, ",")
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			names = append(names, p)
		}
	}
	return names
}
