package approval

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/dukerupert/questkeep/internal/model"
	"github.com/dukerupert/questkeep/internal/store"
)

// Service runs the proposal workflow against the store. Decisions go
// through a versioned status write, so two admins racing on the same
// proposal cannot both win.
type Service struct {
	users   *store.Users
	tasks   *store.Tasks
	rewards *store.Rewards
	logger  *slog.Logger
}

func NewService(st store.Store, logger *slog.Logger) *Service {
	return &Service{
		users:   store.NewUsers(st),
		tasks:   store.NewTasks(st),
		rewards: store.NewRewards(st),
		logger:  logger,
	}
}

// ProposeTask files a task suggestion. Whoever proposes it, it starts
// in Pending Approval.
func (s *Service) ProposeTask(proposer, title string, basePoints float64, assignees []string, freq model.Frequency) (model.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return model.Task{}, fmt.Errorf("task title is required")
	}
	if basePoints < 0 {
		return model.Task{}, fmt.Errorf("task points must be non-negative")
	}
	if _, _, err := s.users.Get(proposer); err != nil {
		return model.Task{}, err
	}

	id, err := s.tasks.NextID()
	if err != nil {
		return model.Task{}, err
	}
	task := model.Task{
		ID:         id,
		Title:      title,
		BasePoints: basePoints,
		Assignees:  assignees,
		Frequency:  freq,
		Status:     model.TaskPendingApproval,
		CreatedBy:  proposer,
	}
	if err := s.tasks.Append(task); err != nil {
		return model.Task{}, err
	}

	s.logger.Info("task proposed", "task", title, "by", proposer, "points", basePoints)
	return task, nil
}

// ProposeReward files a wishlist item, always starting Pending
// Approval.
func (s *Service) ProposeReward(proposer, title string, cost float64) (model.Reward, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return model.Reward{}, fmt.Errorf("reward title is required")
	}
	if cost < 0 {
		return model.Reward{}, fmt.Errorf("reward cost must be non-negative")
	}
	if _, _, err := s.users.Get(proposer); err != nil {
		return model.Reward{}, err
	}

	id, err := s.rewards.NextID()
	if err != nil {
		return model.Reward{}, err
	}
	reward := model.Reward{
		ID:        id,
		Title:     title,
		Cost:      cost,
		Status:    model.RewardPendingApproval,
		CreatedBy: proposer,
	}
	if err := s.rewards.Append(reward); err != nil {
		return model.Reward{}, err
	}

	s.logger.Info("reward proposed", "reward", title, "by", proposer, "cost", cost)
	return reward, nil
}

// DecideTask applies an admin's decision to a pending task.
func (s *Service) DecideTask(actor string, taskID int64, d Decision) (model.Task, error) {
	if err := s.requireAdmin(actor); err != nil {
		return model.Task{}, err
	}

	task, ref, err := s.tasks.Get(taskID)
	if err != nil {
		return model.Task{}, err
	}
	next, err := NextTaskStatus(task.Status, d)
	if err != nil {
		return model.Task{}, err
	}
	if err := s.tasks.SetStatus(ref, task, next); err != nil {
		return model.Task{}, err
	}
	task.Status = next

	s.logger.Info("task decided", "task", task.Title, "by", actor, "status", next)
	return task, nil
}

// DecideReward applies an admin's decision to a pending reward.
func (s *Service) DecideReward(actor string, rewardID int64, d Decision) (model.Reward, error) {
	if err := s.requireAdmin(actor); err != nil {
		return model.Reward{}, err
	}

	reward, ref, err := s.rewards.Get(rewardID)
	if err != nil {
		return model.Reward{}, err
	}
	next, err := NextRewardStatus(reward.Status, d)
	if err != nil {
		return model.Reward{}, err
	}
	if err := s.rewards.SetStatus(ref, reward, next); err != nil {
		return model.Reward{}, err
	}
	reward.Status = next

	s.logger.Info("reward decided", "reward", reward.Title, "by", actor, "status", next)
	return reward, nil
}

// PendingTasks lists proposals awaiting a decision.
func (s *Service) PendingTasks() ([]model.Task, error) {
	tasks, err := s.tasks.All()
	if err != nil {
		return nil, err
	}
	var out []model.Task
	for _, t := range tasks {
		if t.Status == model.TaskPendingApproval {
			out = append(out, t)
		}
	}
	return out, nil
}

// PendingRewards lists wishlist items awaiting a decision.
func (s *Service) PendingRewards() ([]model.Reward, error) {
	rewards, err := s.rewards.All()
	if err != nil {
		return nil, err
	}
	var out []model.Reward
	for _, r := range rewards {
		if r.Status == model.RewardPendingApproval {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *Service) requireAdmin(actor string) error {
	u, _, err := s.users.Get(actor)
	if err != nil {
		return err
	}
	if !u.Role.IsAdmin() {
		return fmt.Errorf("%q: %w", actor, ErrNotAdmin)
	}
	return nil
}
