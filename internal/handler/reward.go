package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dukerupert/questkeep/internal/approval"
	"github.com/dukerupert/questkeep/internal/economy"
	"github.com/dukerupert/questkeep/internal/model"
	"github.com/dukerupert/questkeep/internal/websocket"
)

type RewardHandler struct {
	ledger    *economy.Ledger
	approvals *approval.Service
	hub       *websocket.Hub
	logger    *slog.Logger
}

func NewRewardHandler(ledger *economy.Ledger, approvals *approval.Service, hub *websocket.Hub, logger *slog.Logger) *RewardHandler {
	return &RewardHandler{ledger: ledger, approvals: approvals, hub: hub, logger: logger}
}

func (h *RewardHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

// List returns the approved reward catalog.
func (h *RewardHandler) List(w http.ResponseWriter, r *http.Request) {
	rewards, err := h.ledger.AvailableRewards()
	if err != nil {
		writeError(w, err)
		return
	}
	if rewards == nil {
		rewards = []model.Reward{}
	}
	writeJSON(w, http.StatusOK, rewards)
}

// Pending lists wishlist items awaiting an admin.
func (h *RewardHandler) Pending(w http.ResponseWriter, r *http.Request) {
	rewards, err := h.approvals.PendingRewards()
	if err != nil {
		writeError(w, err)
		return
	}
	if rewards == nil {
		rewards = []model.Reward{}
	}
	writeJSON(w, http.StatusOK, rewards)
}

// Propose adds an item to the wishlist.
func (h *RewardHandler) Propose(w http.ResponseWriter, r *http.Request) {
	var req struct {
		User  string  `json:"user"`
		Title string  `json:"title"`
		Cost  float64 `json:"cost"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	reward, err := h.approvals.ProposeReward(req.User, req.Title, req.Cost)
	if err != nil {
		writeError(w, err)
		return
	}

	h.broadcast(websocket.NewMessage("reward", "proposed", reward.Title, nil))
	writeJSON(w, http.StatusCreated, reward)
}

// Redeem spends points on a reward.
func (h *RewardHandler) Redeem(w http.ResponseWriter, r *http.Request) {
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

	user, err := h.ledger.RedeemReward(req.User, id)
	if err != nil {
		writeError(w, err)
		return
	}

	h.broadcast(websocket.NewMessage("reward", "redeemed", req.User, map[string]any{
		"points": user.Points,
	}))
	writeJSON(w, http.StatusOK, user)
}

// Decide approves or rejects a wishlist item.
func (h *RewardHandler) Decide(w http.ResponseWriter, r *http.Request) {
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

	reward, err := h.approvals.DecideReward(req.Actor, id, decision)
	if err != nil {
		writeError(w, err)
		return
	}

	h.broadcast(websocket.NewMessage("reward", decidedAction(decision), reward.Title, nil))
	writeJSON(w, http.StatusOK, reward)
}
