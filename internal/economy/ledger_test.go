package economy

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/dukerupert/questkeep/internal/model"
	"github.com/dukerupert/questkeep/internal/store"
)

var testClock = time.Date(2026, time.April, 10, 9, 30, 0, 0, time.Local)

func testLedger(t *testing.T) (*Ledger, store.Store) {
	t.Helper()

	st := store.NewMemory()
	l := NewLedger(st, DefaultRules(), slog.New(slog.DiscardHandler))
	l.now = func() time.Time { return testClock }
	return l, st
}

func seedUser(t *testing.T, st store.Store, u model.User) {
	t.Helper()
	if err := store.NewUsers(st).Create(u); err != nil {
		t.Fatalf("seed user %q: %v", u.Name, err)
	}
}

func seedTask(t *testing.T, st store.Store, task model.Task) {
	t.Helper()
	if err := store.NewTasks(st).Append(task); err != nil {
		t.Fatalf("seed task %q: %v", task.Title, err)
	}
}

func seedReward(t *testing.T, st store.Store, r model.Reward) {
	t.Helper()
	if err := store.NewRewards(st).Append(r); err != nil {
		t.Fatalf("seed reward %q: %v", r.Title, err)
	}
}

func getUser(t *testing.T, st store.Store, name string) model.User {
	t.Helper()
	u, _, err := store.NewUsers(st).Get(name)
	if err != nil {
		t.Fatalf("get user %q: %v", name, err)
	}
	return u
}

func historyOf(t *testing.T, st store.Store) []model.HistoryEntry {
	t.Helper()
	entries, err := store.NewHistory(st).All()
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	return entries
}

func TestCompleteTaskMidStreakPayout(t *testing.T) {
	l, st := testLedger(t)
	yesterday := testClock.AddDate(0, 0, -1)
	seedUser(t, st, model.User{Name: "Raghav", Streak: 5, LastActive: &yesterday, Points: 3, XP: 3})
	seedTask(t, st, model.Task{ID: 101, Title: "Dishes", BasePoints: 10, Frequency: model.FreqDaily, Status: model.TaskActive})

	result, err := l.CompleteTask("Raghav", 101)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}

	if result.Payout != 12.0 {
		t.Errorf("payout = %g, want 12.0 (10 x 1.2)", result.Payout)
	}
	if result.Multiplier != 1.2 {
		t.Errorf("multiplier = %g, want 1.2", result.Multiplier)
	}

	u := getUser(t, st, "Raghav")
	if u.Points != 15 {
		t.Errorf("points = %g, want 15", u.Points)
	}
	if u.XP != 15 {
		t.Errorf("xp = %g, want 15", u.XP)
	}
	if u.Streak != 6 {
		t.Errorf("streak = %d, want 6 (advanced after payout computed)", u.Streak)
	}

	goal, err := store.NewSettings(st).Goal()
	if err != nil {
		t.Fatalf("goal: %v", err)
	}
	if goal.Current != 12 {
		t.Errorf("goalCurrent = %g, want 12", goal.Current)
	}

	entries := historyOf(t, st)
	if len(entries) != 1 {
		t.Fatalf("history len = %d, want 1", len(entries))
	}
	e := entries[0]
	if e.Action != model.ActionQuestComplete || e.Item != "Dishes" || e.Delta != 12 {
		t.Errorf("entry = %+v", e)
	}
	if e.EntryID == "" {
		t.Error("entry id should be set")
	}
}

func TestCompleteTaskTopStreakPayout(t *testing.T) {
	l, st := testLedger(t)
	yesterday := testClock.AddDate(0, 0, -1)
	seedUser(t, st, model.User{Name: "Rhea", Streak: 8, LastActive: &yesterday})
	seedTask(t, st, model.Task{ID: 102, Title: "Laundry", BasePoints: 10, Frequency: model.FreqDaily, Status: model.TaskActive})

	result, err := l.CompleteTask("Rhea", 102)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if result.Payout != 15.0 {
		t.Errorf("payout = %g, want 15.0 (10 x 1.5)", result.Payout)
	}
}

func TestCompleteTaskUsesStreakBeforeAdvance(t *testing.T) {
	// Streak 2 yesterday becomes 3 today, but the payout still uses
	// the pre-advance streak of 2: multiplier 1.0.
	l, st := testLedger(t)
	yesterday := testClock.AddDate(0, 0, -1)
	seedUser(t, st, model.User{Name: "Raghav", Streak: 2, LastActive: &yesterday})
	seedTask(t, st, model.Task{ID: 101, Title: "Dishes", BasePoints: 10, Frequency: model.FreqDaily, Status: model.TaskActive})

	result, err := l.CompleteTask("Raghav", 101)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if result.Payout != 10.0 {
		t.Errorf("payout = %g, want 10.0", result.Payout)
	}
	if getUser(t, st, "Raghav").Streak != 3 {
		t.Errorf("streak = %d, want 3", getUser(t, st, "Raghav").Streak)
	}
}

func TestCompleteOneTimeTaskFlipsStatus(t *testing.T) {
	l, st := testLedger(t)
	seedUser(t, st, model.User{Name: "Raghav"})
	seedTask(t, st, model.Task{ID: 101, Title: "Clean garage", BasePoints: 50, Frequency: model.FreqOneTime, Status: model.TaskActive})

	if _, err := l.CompleteTask("Raghav", 101); err != nil {
		t.Fatalf("complete: %v", err)
	}

	task, _, err := store.NewTasks(st).Get(101)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if task.Status != model.TaskCompleted {
		t.Errorf("status = %q, want Completed", task.Status)
	}

	// Gone for everyone, forever.
	seedUser(t, st, model.User{Name: "Rhea"})
	_, err = l.CompleteTask("Rhea", 101)
	if !errors.Is(err, ErrTaskUnavailable) {
		t.Errorf("second completion error = %v, want ErrTaskUnavailable", err)
	}
}

func TestCompleteDailyTaskDedup(t *testing.T) {
	l, st := testLedger(t)
	seedUser(t, st, model.User{Name: "Raghav"})
	seedTask(t, st, model.Task{ID: 101, Title: "Dishes", BasePoints: 10, Frequency: model.FreqDaily, Status: model.TaskActive})

	if _, err := l.CompleteTask("Raghav", 101); err != nil {
		t.Fatalf("first completion: %v", err)
	}
	if _, err := l.CompleteTask("Raghav", 101); !errors.Is(err, ErrTaskUnavailable) {
		t.Errorf("same-day repeat error = %v, want ErrTaskUnavailable", err)
	}

	u := getUser(t, st, "Raghav")
	if u.Points != 10 {
		t.Errorf("points = %g, want 10 (no double payout)", u.Points)
	}
	if len(historyOf(t, st)) != 1 {
		t.Errorf("history len = %d, want 1", len(historyOf(t, st)))
	}
}

func TestCompleteTaskUnknownUserAbortsBeforeHistory(t *testing.T) {
	l, st := testLedger(t)
	seedTask(t, st, model.Task{ID: 101, Title: "Dishes", BasePoints: 10, Frequency: model.FreqDaily, Status: model.TaskActive})

	_, err := l.CompleteTask("Nobody", 101)
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
	if len(historyOf(t, st)) != 0 {
		t.Error("a failed operation must not leave a history entry")
	}
}

func TestRedeemReward(t *testing.T) {
	l, st := testLedger(t)
	seedUser(t, st, model.User{Name: "Rhea", Points: 100, XP: 250})
	seedReward(t, st, model.Reward{ID: 201, Title: "Movie night", Cost: 30, Status: model.RewardApproved})

	u, err := l.RedeemReward("Rhea", 201)
	if err != nil {
		t.Fatalf("redeem: %v", err)
	}
	if u.Points != 70 {
		t.Errorf("points = %g, want 70", u.Points)
	}
	if u.XP != 250 {
		t.Errorf("xp = %g, want unchanged 250", u.XP)
	}

	goal, _ := store.NewSettings(st).Goal()
	if goal.Current != 0 {
		t.Errorf("goalCurrent = %g, redemption must not move the goal", goal.Current)
	}

	entries := historyOf(t, st)
	if len(entries) != 1 || entries[0].Action != model.ActionReward || entries[0].Delta != -30 {
		t.Errorf("history = %+v", entries)
	}
}

func TestRedeemRewardInsufficientPoints(t *testing.T) {
	l, st := testLedger(t)
	seedUser(t, st, model.User{Name: "Rhea", Points: 20})
	seedReward(t, st, model.Reward{ID: 201, Title: "Movie night", Cost: 30, Status: model.RewardApproved})

	_, err := l.RedeemReward("Rhea", 201)
	if !errors.Is(err, ErrInsufficientPoints) {
		t.Fatalf("error = %v, want ErrInsufficientPoints", err)
	}
	if getUser(t, st, "Rhea").Points != 20 {
		t.Error("failed redemption must not change the balance")
	}
	if len(historyOf(t, st)) != 0 {
		t.Error("failed redemption must not leave a history entry")
	}
}

func TestRedeemUnapprovedReward(t *testing.T) {
	l, st := testLedger(t)
	seedUser(t, st, model.User{Name: "Rhea", Points: 100})
	seedReward(t, st, model.Reward{ID: 201, Title: "Pony", Cost: 30, Status: model.RewardPendingApproval})

	_, err := l.RedeemReward("Rhea", 201)
	if !errors.Is(err, ErrRewardUnavailable) {
		t.Errorf("error = %v, want ErrRewardUnavailable", err)
	}
}

func TestOpenMysteryBox(t *testing.T) {
	l, st := testLedger(t)
	seedUser(t, st, model.User{Name: "Raghav", Points: 40, XP: 90})

	// Force the 50-point prize (last table slot).
	l.draw = func(n int) int { return n - 1 }

	result, err := l.OpenMysteryBox("Raghav")
	if err != nil {
		t.Fatalf("open box: %v", err)
	}
	if result.Prize != 50 {
		t.Errorf("prize = %g, want 50", result.Prize)
	}
	if result.Net != 35 {
		t.Errorf("net = %g, want 35", result.Net)
	}

	u := getUser(t, st, "Raghav")
	if u.Points != 75 {
		t.Errorf("points = %g, want 75", u.Points)
	}
	if u.XP != 90 {
		t.Errorf("xp = %g, want unchanged 90", u.XP)
	}

	goal, _ := store.NewSettings(st).Goal()
	if goal.Current != 0 {
		t.Errorf("goalCurrent = %g, the box must not move the goal", goal.Current)
	}

	entries := historyOf(t, st)
	if len(entries) != 1 {
		t.Fatalf("history len = %d, want 1", len(entries))
	}
	if entries[0].Action != model.ActionMysteryBox || entries[0].Item != "Won 50" || entries[0].Delta != 35 {
		t.Errorf("entry = %+v", entries[0])
	}
}

func TestOpenMysteryBoxLosingDraw(t *testing.T) {
	l, st := testLedger(t)
	seedUser(t, st, model.User{Name: "Raghav", Points: 15})

	// First slot pays 5: a net loss of 10.
	l.draw = func(n int) int { return 0 }

	result, err := l.OpenMysteryBox("Raghav")
	if err != nil {
		t.Fatalf("open box: %v", err)
	}
	if result.Net != -10 {
		t.Errorf("net = %g, want -10", result.Net)
	}
	if getUser(t, st, "Raghav").Points != 5 {
		t.Errorf("points = %g, want 5", getUser(t, st, "Raghav").Points)
	}
}

func TestOpenMysteryBoxInsufficientPoints(t *testing.T) {
	l, st := testLedger(t)
	seedUser(t, st, model.User{Name: "Raghav", Points: 14.5})

	_, err := l.OpenMysteryBox("Raghav")
	if !errors.Is(err, ErrInsufficientPoints) {
		t.Fatalf("error = %v, want ErrInsufficientPoints", err)
	}
	if len(historyOf(t, st)) != 0 {
		t.Error("failed box must not leave a history entry")
	}
}

func TestStreakResetAfterGap(t *testing.T) {
	l, st := testLedger(t)
	lastWeek := testClock.AddDate(0, 0, -5)
	seedUser(t, st, model.User{Name: "Raghav", Streak: 9, LastActive: &lastWeek})
	seedTask(t, st, model.Task{ID: 101, Title: "Dishes", BasePoints: 10, Frequency: model.FreqDaily, Status: model.TaskActive})

	// The 9-day streak still pays 1.5x one last time, then resets.
	result, err := l.CompleteTask("Raghav", 101)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if result.Payout != 15 {
		t.Errorf("payout = %g, want 15", result.Payout)
	}
	if getUser(t, st, "Raghav").Streak != 1 {
		t.Errorf("streak = %d, want reset to 1", getUser(t, st, "Raghav").Streak)
	}
}

func TestSameDayCompletionKeepsStreak(t *testing.T) {
	l, st := testLedger(t)
	today := testClock
	seedUser(t, st, model.User{Name: "Raghav", Streak: 4, LastActive: &today})
	seedTask(t, st, model.Task{ID: 101, Title: "Dishes", BasePoints: 10, Frequency: model.FreqDaily, Status: model.TaskActive})
	seedTask(t, st, model.Task{ID: 102, Title: "Laundry", BasePoints: 10, Frequency: model.FreqDaily, Status: model.TaskActive})

	if _, err := l.CompleteTask("Raghav", 101); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if getUser(t, st, "Raghav").Streak != 4 {
		t.Errorf("streak = %d, want unchanged 4", getUser(t, st, "Raghav").Streak)
	}
}
