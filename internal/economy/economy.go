// Package economy is the points/XP ledger: quest payouts, reward
// redemptions, the mystery box, reconciliation, and the read surface
// the presentation layer consumes. All balance mutations for a user
// run single-file through a per-user lock and land on the store as
// versioned compare-and-swap writes.
package economy

import (
	"errors"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/dukerupert/questkeep/internal/level"
	"github.com/dukerupert/questkeep/internal/store"
	"github.com/dukerupert/questkeep/internal/streak"
)

var (
	// ErrTaskUnavailable means the task is not currently completable
	// by this user: wrong assignee, not active, or already done in the
	// current window.
	ErrTaskUnavailable = errors.New("economy: task not available")

	// ErrRewardUnavailable means the reward is not in the approved
	// catalog.
	ErrRewardUnavailable = errors.New("economy: reward not available")

	// ErrInsufficientPoints gates redemptions and mystery boxes before
	// any state changes.
	ErrInsufficientPoints = errors.New("economy: insufficient points")

	// ErrNotAdmin rejects admin-only operations.
	ErrNotAdmin = errors.New("economy: admin role required")
)

// Rules bundles the gameplay constants, loaded once from config.
type Rules struct {
	Multiplier    streak.Multiplier
	LevelCurve    float64
	BoxCost       float64
	BoxPrizes     []float64
	PMCutoverHour int
}

// DefaultRules returns the canonical constants.
func DefaultRules() Rules {
	return Rules{
		Multiplier:    streak.DefaultMultiplier,
		LevelCurve:    level.DefaultCurve,
		BoxCost:       15,
		BoxPrizes:     []float64{5, 10, 10, 15, 20, 25, 50},
		PMCutoverHour: 16,
	}
}

// Ledger owns every balance mutation. The per-user mutex is the
// single-writer serialization point; the store's row versions catch
// writers outside this process.
type Ledger struct {
	users    *store.Users
	tasks    *store.Tasks
	rewards  *store.Rewards
	history  *store.History
	settings *store.Settings
	rules    Rules
	levels   level.Engine
	logger   *slog.Logger

	// Overridable in tests.
	now  func() time.Time
	draw func(n int) int

	mu        sync.Mutex
	userLocks map[string]*sync.Mutex
}

func NewLedger(st store.Store, rules Rules, logger *slog.Logger) *Ledger {
	if len(rules.BoxPrizes) == 0 {
		rules = DefaultRules()
	}
	return &Ledger{
		users:     store.NewUsers(st),
		tasks:     store.NewTasks(st),
		rewards:   store.NewRewards(st),
		history:   store.NewHistory(st),
		settings:  store.NewSettings(st),
		rules:     rules,
		levels:    level.NewEngine(rules.LevelCurve),
		logger:    logger,
		now:       time.Now,
		draw:      rand.IntN,
		userLocks: make(map[string]*sync.Mutex),
	}
}

// lockUser serializes all balance writes for one user. Returns the
// unlock func.
func (l *Ledger) lockUser(name string) func() {
	key := strings.ToLower(strings.TrimSpace(name))

	l.mu.Lock()
	mu, ok := l.userLocks[key]
	if !ok {
		mu = &sync.Mutex{}
		l.userLocks[key] = mu
	}
	l.mu.Unlock()

	mu.Lock()
	return mu.Unlock
}
