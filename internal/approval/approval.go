// Package approval manages task and reward proposals: anyone may
// propose, only admins decide, and a decided proposal never moves
// again.
package approval

import (
	"errors"
	"fmt"

	"github.com/dukerupert/questkeep/internal/model"
)

type Decision string

const (
	Approve Decision = "approve"
	Reject  Decision = "reject"
)

var (
	// ErrNotAdmin rejects a decision from a non-admin actor.
	ErrNotAdmin = errors.New("approval: admin role required")

	// ErrAlreadyDecided rejects a transition on anything that has left
	// Pending Approval. There is no way back.
	ErrAlreadyDecided = errors.New("approval: proposal already decided")
)

// ParseDecision normalizes a decision string.
func ParseDecision(s string) (Decision, error) {
	switch Decision(s) {
	case Approve, Reject:
		return Decision(s), nil
	}
	return "", fmt.Errorf("unknown decision %q", s)
}

// NextTaskStatus applies a decision to a task's current status.
// Approved tasks go Active; rejected ones are terminal.
func NextTaskStatus(cur model.TaskStatus, d Decision) (model.TaskStatus, error) {
	if cur != model.TaskPendingApproval {
		return cur, fmt.Errorf("task is %q: %w", cur, ErrAlreadyDecided)
	}
	if d == Approve {
		return model.TaskActive, nil
	}
	return model.TaskRejected, nil
}

// NextRewardStatus applies a decision to a reward's current status.
func NextRewardStatus(cur model.RewardStatus, d Decision) (model.RewardStatus, error) {
	if cur != model.RewardPendingApproval {
		return cur, fmt.Errorf("reward is %q: %w", cur, ErrAlreadyDecided)
	}
	if d == Approve {
		return model.RewardApproved, nil
	}
	return model.RewardRejected, nil
}
