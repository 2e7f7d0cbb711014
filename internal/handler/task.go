package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/questkeep/internal/approval"
	"github.com/dukerupert/questkeep/internal/economy"
	"github.com/dukerupert/questkeep/internal/model"
	"github.com/dukerupert/questkeep/internal/websocket"
)

type TaskHandler struct {
	ledger    *economy.Ledger
	approvals *approval.Service
	hub       *websocket.Hub
	logger    *slog.Logger
}

func NewTaskHandler(ledger *economy.Ledger, approvals *approval.Service, hub *websocket.Hub, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{ledger: ledger, approvals: approvals, hub: hub, logger: logger}
}

func (h *TaskHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

// List returns the tasks currently visible to ?user=. Availability is
// evaluated fresh on every call; nothing is cached.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	user := strings.TrimSpace(r.URL.Query().Get("user"))
	if user == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "user query parameter is required"})
		return
	}

	tasks, err := h.ledger.VisibleTasks(user)
	if err != nil {
		writeError(w, err)
		return
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

// Pending lists task proposals awaiting an admin.
func (h *TaskHandler) Pending(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.approvals.PendingTasks()
	if err != nil {
		writeError(w, err)
		return
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

// Propose files a new task suggestion.
func (h *TaskHandler) Propose(w http.ResponseWriter, r *http.Request) {
	var req struct {
		User      string   `json:"user"`
		Title     string   `json:"title"`
		Points    float64  `json:"points"`
		Assignees []string `json:"assignees"`
		Frequency string   `json:"frequency"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	freq := model.FreqOneTime
	if strings.TrimSpace(req.Frequency) != "" {
		var err error
		freq, err = model.ParseFrequency(req.Frequency)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
	}

	task, err := h.approvals.ProposeTask(req.User, req.Title, req.Points, req.Assignees, freq)
	if err != nil {
		writeError(w, err)
		return
	}

	h.broadcast(websocket.NewMessage("task", "proposed", task.Title, nil))
	writeJSON(w, http.StatusCreated, task)
}

// Complete pays out a quest.
func (h *TaskHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	var req struct {
		User string `json:"user"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	result, err := h.ledger.CompleteTask(req.User, id)
	if err != nil {
		writeError(w, err)
		return
	}

	h.broadcast(websocket.NewMessage("task", "completed", result.Task.Title, map[string]any{
		"user":   result.User.Name,
		"payout": result.Payout,
	}))
	writeJSON(w, http.StatusOK, result)
}

// Decide approves or rejects a pending task.
func (h *TaskHandler) Decide(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	var req struct {
		Actor    string `json:"actor"`
		Decision string `json:"decision"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	decision, err := approval.ParseDecision(req.Decision)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	task, err := h.approvals.DecideTask(req.Actor, id, decision)
	if err != nil {
		writeError(w, err)
		return
	}

	h.broadcast(websocket.NewMessage("task", decidedAction(decision), task.Title, nil))
	writeJSON(w, http.StatusOK, task)
}
