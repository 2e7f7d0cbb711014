package economy

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/dukerupert/questkeep/internal/dedup"
	"github.com/dukerupert/questkeep/internal/model"
	"github.com/dukerupert/questkeep/internal/streak"
)

// CompletionResult reports what a quest completion paid out.
type CompletionResult struct {
	Task       model.Task  `json:"task"`
	User       model.User  `json:"user"`
	Payout     float64     `json:"payout"`
	Multiplier float64     `json:"multiplier"`
}

// CompleteTask pays a user for completing a task. The multiplier uses
// the streak as it stood before this completion advances it. Write
// order is balance, task status, family goal, then the history append;
// a history row is never retracted once written.
func (l *Ledger) CompleteTask(userName string, taskID int64) (CompletionResult, error) {
	unlock := l.lockUser(userName)
	defer unlock()

	user, uref, err := l.users.Get(userName)
	if err != nil {
		return CompletionResult{}, err
	}
	task, tref, err := l.tasks.Get(taskID)
	if err != nil {
		return CompletionResult{}, err
	}

	entries, err := l.history.ForUser(user.Name)
	if err != nil {
		return CompletionResult{}, err
	}
	now := l.now()
	ix := dedup.NewIndex(entries, l.rules.PMCutoverHour)
	if !ix.Available(task, user.Name, now) {
		return CompletionResult{}, fmt.Errorf("task %q for %q: %w", task.Title, user.Name, ErrTaskUnavailable)
	}

	factor := l.rules.Multiplier.Factor(user.Streak)
	payout := task.BasePoints * factor

	// Only a positive payout counts as streak activity.
	if payout > 0 {
		last, count := streak.Advance(user.LastActive, user.Streak, now)
		user.LastActive = &last
		user.Streak = count
	}
	user.Points += payout
	user.XP += payout

	if err := l.users.Update(uref, user); err != nil {
		return CompletionResult{}, err
	}

	if task.Frequency == model.FreqOneTime {
		if err := l.tasks.SetStatus(tref, task, model.TaskCompleted); err != nil {
			return CompletionResult{}, err
		}
		task.Status = model.TaskCompleted
	}

	if err := l.settings.AddToGoal(payout); err != nil {
		// Balance is already paid; the shared goal is display-level
		// aggregate, so log and keep going rather than strand the
		// completion half-recorded.
		l.logger.Warn("goal update failed after payout", "user", user.Name, "task", task.Title, "error", err)
	}

	entry := model.HistoryEntry{
		EntryID:   uuid.NewString(),
		Timestamp: now,
		User:      user.Name,
		Action:    model.ActionQuestComplete,
		Item:      task.Title,
		Delta:     payout,
	}
	if err := l.history.Append(entry); err != nil {
		l.logger.Error("history append failed after payout", "user", user.Name, "task", task.Title, "error", err)
		return CompletionResult{}, err
	}

	l.logger.Info("quest complete",
		"user", user.Name, "task", task.Title,
		"payout", payout, "multiplier", factor, "streak", user.Streak)

	return CompletionResult{Task: task, User: user, Payout: payout, Multiplier: factor}, nil
}

// RedeemReward spends points on an approved reward. XP and the family
// goal are untouched; redemption is spend-only.
func (l *Ledger) RedeemReward(userName string, rewardID int64) (model.User, error) {
	unlock := l.lockUser(userName)
	defer unlock()

	user, uref, err := l.users.Get(userName)
	if err != nil {
		return model.User{}, err
	}
	reward, _, err := l.rewards.Get(rewardID)
	if err != nil {
		return model.User{}, err
	}
	if reward.Status != model.RewardApproved {
		return model.User{}, fmt.Errorf("reward %q is %q: %w", reward.Title, reward.Status, ErrRewardUnavailable)
	}
	if user.Points < reward.Cost {
		return model.User{}, fmt.Errorf("%q has %g points, reward %q costs %g: %w",
			user.Name, user.Points, reward.Title, reward.Cost, ErrInsufficientPoints)
	}

	user.Points -= reward.Cost
	if err := l.users.Update(uref, user); err != nil {
		return model.User{}, err
	}

	entry := model.HistoryEntry{
		EntryID:   uuid.NewString(),
		Timestamp: l.now(),
		User:      user.Name,
		Action:    model.ActionReward,
		Item:      reward.Title,
		Delta:     -reward.Cost,
	}
	if err := l.history.Append(entry); err != nil {
		l.logger.Error("history append failed after redemption", "user", user.Name, "reward", reward.Title, "error", err)
		return model.User{}, err
	}

	l.logger.Info("reward redeemed", "user", user.Name, "reward", reward.Title, "cost", reward.Cost)
	return user, nil
}

// BoxResult reports a mystery box draw.
type BoxResult struct {
	User  model.User `json:"user"`
	Prize float64    `json:"prize"`
	Net   float64    `json:"net"`
}

// OpenMysteryBox charges the fixed box cost and pays a prize drawn
// uniformly from the prize table. Only spendable points move; XP and
// the family goal stay put.
func (l *Ledger) OpenMysteryBox(userName string) (BoxResult, error) {
	unlock := l.lockUser(userName)
	defer unlock()

	user, uref, err := l.users.Get(userName)
	if err != nil {
		return BoxResult{}, err
	}
	if user.Points < l.rules.BoxCost {
		return BoxResult{}, fmt.Errorf("%q has %g points, box costs %g: %w",
			user.Name, user.Points, l.rules.BoxCost, ErrInsufficientPoints)
	}

	prize := l.rules.BoxPrizes[l.draw(len(l.rules.BoxPrizes))]
	net := prize - l.rules.BoxCost

	user.Points += net
	if err := l.users.Update(uref, user); err != nil {
		return BoxResult{}, err
	}

	entry := model.HistoryEntry{
		EntryID:   uuid.NewString(),
		Timestamp: l.now(),
		User:      user.Name,
		Action:    model.ActionMysteryBox,
		Item:      fmt.Sprintf("Won %g", prize),
		Delta:     net,
	}
	if err := l.history.Append(entry); err != nil {
		l.logger.Error("history append failed after box", "user", user.Name, "prize", prize, "error", err)
		return BoxResult{}, err
	}

	l.logger.Info("mystery box opened", "user", user.Name, "prize", prize, "net", net)
	return BoxResult{User: user, Prize: prize, Net: net}, nil
}
