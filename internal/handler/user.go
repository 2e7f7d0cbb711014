package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/dukerupert/questkeep/internal/economy"
	"github.com/dukerupert/questkeep/internal/model"
	"github.com/dukerupert/questkeep/internal/store"
	"github.com/dukerupert/questkeep/internal/websocket"
)

type UserHandler struct {
	users  *store.Users
	ledger *economy.Ledger
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewUserHandler(users *store.Users, ledger *economy.Ledger, hub *websocket.Hub, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, ledger: ledger, hub: hub, logger: logger}
}

func (h *UserHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

// List returns every member as a leaderboard: profiles ordered by XP
// descending.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.ledger.Leaderboard()
	if err != nil {
		writeError(w, err)
		return
	}
	if profiles == nil {
		profiles = []economy.Profile{}
	}
	writeJSON(w, http.StatusOK, profiles)
}

// Get returns one member's profile: points, xp, streak, level, title,
// progress.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	profile, err := h.ledger.Profile(r.PathValue("name"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
		Role string `json:"role"`
		PIN  string `json:"pin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}
	if _, _, err := h.users.Get(req.Name); err == nil {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "a member with that name already exists"})
		return
	}

	user := model.User{
		Name: req.Name,
		Role: model.ParseRole(req.Role),
	}
	if req.PIN != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.PIN), bcrypt.DefaultCost)
		if err != nil {
			writeError(w, err)
			return
		}
		user.PINHash = string(hash)
	}

	if err := h.users.Create(user); err != nil {
		writeError(w, err)
		return
	}

	h.logger.Info("member created", "name", user.Name, "role", user.Role)
	h.broadcast(websocket.NewMessage("member", "created", user.Name, nil))
	writeJSON(w, http.StatusCreated, user)
}

// SetPIN hashes and stores a member's PIN.
func (h *UserHandler) SetPIN(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PIN string `json:"pin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if len(req.PIN) < 4 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "PIN must be at least 4 characters"})
		return
	}

	_, ref, err := h.users.Get(r.PathValue("name"))
	if err != nil {
		writeError(w, err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.PIN), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.users.SetPINHash(ref, string(hash)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// VerifyPIN is a stateless check; sessions are someone else's problem.
func (h *UserHandler) VerifyPIN(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PIN string `json:"pin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	user, _, err := h.users.Get(r.PathValue("name"))
	if err != nil {
		writeError(w, err)
		return
	}
	if user.PINHash == "" {
		writeJSON(w, http.StatusOK, map[string]bool{"valid": true})
		return
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PINHash), []byte(req.PIN))
	writeJSON(w, http.StatusOK, map[string]bool{"valid": err == nil})
}
