package economy

import (
	"errors"
	"testing"
	"time"

	"github.com/dukerupert/questkeep/internal/model"
	"github.com/dukerupert/questkeep/internal/store"
)

func seedHistory(t *testing.T, st store.Store, user string, action model.Action, delta float64) {
	t.Helper()
	e := model.HistoryEntry{
		EntryID:   user + "-" + string(action) + "-" + time.Now().Format("150405.000000000"),
		Timestamp: testClock,
		User:      user,
		Action:    action,
		Item:      "seed",
		Delta:     delta,
	}
	if err := store.NewHistory(st).Append(e); err != nil {
		t.Fatalf("seed history: %v", err)
	}
}

func TestSyncRebuildsXPFromQuestDeltas(t *testing.T) {
	l, st := testLedger(t)
	seedUser(t, st, model.User{Name: "Mom", Role: model.RoleAdmin})
	seedUser(t, st, model.User{Name: "Raghav", XP: 999})

	seedHistory(t, st, "Raghav", model.ActionQuestComplete, 12)
	seedHistory(t, st, "Raghav", model.ActionQuestComplete, 15)
	// Spend-side actions must not count toward XP.
	seedHistory(t, st, "Raghav", model.ActionReward, -30)
	seedHistory(t, st, "Raghav", model.ActionMysteryBox, 35)

	totals, err := l.Sync("Mom")
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if totals["Raghav"] != 27 {
		t.Errorf("total = %g, want 27", totals["Raghav"])
	}

	u := getUser(t, st, "Raghav")
	if u.XP != 27 {
		t.Errorf("xp = %g, want 27 (drifted value overwritten)", u.XP)
	}
	if u.Points != 0 {
		t.Errorf("points = %g, sync must not touch spendable points", u.Points)
	}
}

func TestSyncIsIdempotent(t *testing.T) {
	l, st := testLedger(t)
	seedUser(t, st, model.User{Name: "Mom", Role: model.RoleAdmin})
	seedUser(t, st, model.User{Name: "Raghav"})
	seedHistory(t, st, "raghav", model.ActionQuestComplete, 10)

	first, err := l.Sync("Mom")
	if err != nil {
		t.Fatalf("first sync: %v", err)
	}
	second, err := l.Sync("Mom")
	if err != nil {
		t.Fatalf("second sync: %v", err)
	}

	// History user names match case-insensitively.
	if first["Raghav"] != 10 || second["Raghav"] != 10 {
		t.Errorf("totals = %g then %g, want 10 both times", first["Raghav"], second["Raghav"])
	}
	if getUser(t, st, "Raghav").XP != 10 {
		t.Errorf("xp = %g, want 10", getUser(t, st, "Raghav").XP)
	}
}

func TestSyncFloorsNegativeTotals(t *testing.T) {
	l, st := testLedger(t)
	seedUser(t, st, model.User{Name: "Mom", Role: model.RoleAdmin})
	seedUser(t, st, model.User{Name: "Raghav", XP: 40})

	// A legacy log where completions were retracted by hand.
	seedHistory(t, st, "Raghav", model.ActionQuestComplete, 5)
	seedHistory(t, st, "Raghav", model.ActionQuestComplete, -20)

	totals, err := l.Sync("Mom")
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if totals["Raghav"] != 0 {
		t.Errorf("total = %g, want floor at 0", totals["Raghav"])
	}
	if getUser(t, st, "Raghav").XP != 0 {
		t.Errorf("xp = %g, want 0", getUser(t, st, "Raghav").XP)
	}
}

func TestSyncRequiresAdmin(t *testing.T) {
	l, st := testLedger(t)
	seedUser(t, st, model.User{Name: "Raghav", XP: 40})

	if _, err := l.Sync("Raghav"); !errors.Is(err, ErrNotAdmin) {
		t.Errorf("error = %v, want ErrNotAdmin", err)
	}
	if getUser(t, st, "Raghav").XP != 40 {
		t.Error("rejected sync must not change anything")
	}
}

func TestSyncAgreesWithLiveLedger(t *testing.T) {
	l, st := testLedger(t)
	seedUser(t, st, model.User{Name: "Mom", Role: model.RoleAdmin})
	seedUser(t, st, model.User{Name: "Raghav", Points: 100})
	seedTask(t, st, model.Task{ID: 101, Title: "Dishes", BasePoints: 10, Frequency: model.FreqDaily, Status: model.TaskActive})
	seedReward(t, st, model.Reward{ID: 201, Title: "Movie night", Cost: 30, Status: model.RewardApproved})

	if _, err := l.CompleteTask("Raghav", 101); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if _, err := l.RedeemReward("Raghav", 201); err != nil {
		t.Fatalf("redeem: %v", err)
	}

	before := getUser(t, st, "Raghav")
	if _, err := l.Sync("Mom"); err != nil {
		t.Fatalf("sync: %v", err)
	}
	after := getUser(t, st, "Raghav")

	// The live ledger and the replay agree, so sync changes nothing.
	if after.XP != before.XP {
		t.Errorf("xp = %g, want unchanged %g", after.XP, before.XP)
	}
	if after.Points != before.Points {
		t.Errorf("points = %g, want unchanged %g", after.Points, before.Points)
	}
}
