package model

import (
	"fmt"
	"strings"
)

type RewardStatus string

const (
	RewardPendingApproval RewardStatus = "Pending Approval"
	RewardApproved        RewardStatus = "Approved"
	RewardRejected        RewardStatus = "Rejected"
)

// ParseRewardStatus normalizes a raw status cell.
func ParseRewardStatus(s string) (RewardStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending approval", "pending":
		return RewardPendingApproval, nil
	case "approved", "active":
		return RewardApproved, nil
	case "rejected":
		return RewardRejected, nil
	}
	return "", fmt.Errorf("unknown reward status %q", s)
}

// Reward is a catalog item points can be spent on.
type Reward struct {
	ID        int64        `json:"id"`
	Title     string       `json:"title"`
	Cost      float64      `json:"cost"`
	Status    RewardStatus `json:"status"`
	CreatedBy string       `json:"created_by,omitempty"`
	Version   int64        `json:"-"`
}
