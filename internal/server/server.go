package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dukerupert/questkeep/internal/approval"
	"github.com/dukerupert/questkeep/internal/economy"
	"github.com/dukerupert/questkeep/internal/handler"
	"github.com/dukerupert/questkeep/internal/middleware"
	"github.com/dukerupert/questkeep/internal/store"
	ws "github.com/dukerupert/questkeep/internal/websocket"
)

// Server wires the ledger, approvals, and handlers onto one router.
type Server struct {
	hub     *ws.Hub
	userH   *handler.UserHandler
	taskH   *handler.TaskHandler
	rewardH *handler.RewardHandler
	ledgerH *handler.LedgerHandler
	logger  *slog.Logger
}

func New(st store.Store, rules economy.Rules, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	ledger := economy.NewLedger(st, rules, logger.With("component", "economy"))
	approvals := approval.NewService(st, logger.With("component", "approval"))
	users := store.NewUsers(st)

	return &Server{
		hub:     hub,
		userH:   handler.NewUserHandler(users, ledger, hub, logger.With("component", "user")),
		taskH:   handler.NewTaskHandler(ledger, approvals, hub, logger.With("component", "task")),
		rewardH: handler.NewRewardHandler(ledger, approvals, hub, logger.With("component", "reward")),
		ledgerH: handler.NewLedgerHandler(ledger, hub, logger.With("component", "ledger")),
		logger:  logger,
	}
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)
	mux.HandleFunc("GET /ws", ws.Handler(s.hub, s.logger.With("component", "websocket")))

	// Members and the leaderboard
	mux.HandleFunc("GET /api/members", s.userH.List)
	mux.HandleFunc("POST /api/members", s.userH.Create)
	mux.HandleFunc("GET /api/members/{name}", s.userH.Get)
	mux.HandleFunc("POST /api/members/{name}/pin", s.userH.SetPIN)
	mux.HandleFunc("POST /api/members/{name}/pin/verify", s.userH.VerifyPIN)

	// Tasks
	mux.HandleFunc("GET /api/tasks", s.taskH.List)
	mux.HandleFunc("GET /api/tasks/pending", s.taskH.Pending)
	mux.HandleFunc("POST /api/tasks", s.taskH.Propose)
	mux.HandleFunc("POST /api/tasks/{id}/complete", s.taskH.Complete)
	mux.HandleFunc("POST /api/tasks/{id}/decide", s.taskH.Decide)

	// Rewards
	mux.HandleFunc("GET /api/rewards", s.rewardH.List)
	mux.HandleFunc("GET /api/rewards/pending", s.rewardH.Pending)
	mux.HandleFunc("POST /api/rewards", s.rewardH.Propose)
	mux.HandleFunc("POST /api/rewards/{id}/redeem", s.rewardH.Redeem)
	mux.HandleFunc("POST /api/rewards/{id}/decide", s.rewardH.Decide)

	// Economy odds and ends
	mux.HandleFunc("POST /api/box/open", s.ledgerH.OpenBox)
	mux.HandleFunc("POST /api/sync", s.ledgerH.Sync)
	mux.HandleFunc("GET /api/goal", s.ledgerH.GetGoal)
	mux.HandleFunc("PUT /api/goal", s.ledgerH.SetGoal)
	mux.HandleFunc("GET /api/history", s.ledgerH.History)

	return middleware.RequestLogger(s.logger.With("component", "http"))(mux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
