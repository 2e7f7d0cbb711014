package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dukerupert/questkeep/internal/economy"
	"github.com/dukerupert/questkeep/internal/model"
	"github.com/dukerupert/questkeep/internal/websocket"
)

// LedgerHandler serves the economy odds and ends: mystery box, XP
// sync, the family goal, and the history feed.
type LedgerHandler struct {
	ledger *economy.Ledger
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewLedgerHandler(ledger *economy.Ledger, hub *websocket.Hub, logger *slog.Logger) *LedgerHandler {
	return &LedgerHandler{ledger: ledger, hub: hub, logger: logger}
}

func (h *LedgerHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

// OpenBox draws a mystery box prize.
func (h *LedgerHandler) OpenBox(w http.ResponseWriter, r *http.Request) {
	var req struct {
		User string `json:"user"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	result, err := h.ledger.OpenMysteryBox(req.User)
	if err != nil {
		writeError(w, err)
		return
	}

	h.broadcast(websocket.NewMessage("box", "opened", req.User, map[string]any{
		"prize": result.Prize,
		"net":   result.Net,
	}))
	writeJSON(w, http.StatusOK, result)
}

// Sync recomputes XP from history. Admin only.
func (h *LedgerHandler) Sync(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Actor string `json:"actor"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	result, err := h.ledger.Sync(req.Actor)
	if err != nil {
		writeError(w, err)
		return
	}

	h.broadcast(websocket.NewMessage("ledger", "synced", req.Actor, nil))
	writeJSON(w, http.StatusOK, result)
}

// GetGoal returns the family goal and its progress fraction.
func (h *LedgerHandler) GetGoal(w http.ResponseWriter, r *http.Request) {
	goal, err := h.ledger.Goal()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"goal":     goal,
		"fraction": goal.Fraction(),
	})
}

// SetGoal retitles or retargets the family goal. Admin only.
func (h *LedgerHandler) SetGoal(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Actor  string  `json:"actor"`
		Title  string  `json:"title"`
		Target float64 `json:"target"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	goal, err := h.ledger.SetGoal(req.Actor, req.Title, req.Target)
	if err != nil {
		writeError(w, err)
		return
	}

	h.broadcast(websocket.NewMessage("goal", "updated", goal.Title, nil))
	writeJSON(w, http.StatusOK, goal)
}

// History returns the newest entries, default 20.
func (h *LedgerHandler) History(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid limit"})
			return
		}
		limit = n
	}

	entries, err := h.ledger.RecentHistory(limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if entries == nil {
		entries = []model.HistoryEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}
