package store

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dukerupert/questkeep/internal/model"
)

const firstRewardID = 201

type Rewards struct {
	st Store
}

func NewRewards(st Store) *Rewards {
	return &Rewards{st: st}
}

func (r *Rewards) All() ([]model.Reward, error) {
	recs, err := r.st.ReadAll(TableRewards)
	if err != nil {
		return nil, fmt.Errorf("list rewards: %w", err)
	}

	rewards := make([]model.Reward, 0, len(recs))
	for _, rec := range recs {
		rewards = append(rewards, decodeReward(rec))
	}
	return rewards, nil
}

func (r *Rewards) Get(id int64) (model.Reward, RowRef, error) {
	ref, rec, err := r.st.FindRowByKey(TableRewards, "id", strconv.FormatInt(id, 10))
	if err != nil {
		return model.Reward{}, 0, fmt.Errorf("get reward %d: %w", id, err)
	}
	return decodeReward(rec), ref, nil
}

func (r *Rewards) Append(reward model.Reward) error {
	rec := Record{
		"id":         strconv.FormatInt(reward.ID, 10),
		"title":      strings.TrimSpace(reward.Title),
		"cost":       formatFloat(reward.Cost),
		"status":     string(reward.Status),
		"created_by": reward.CreatedBy,
	}
	if err := r.st.AppendRow(TableRewards, rec); err != nil {
		return fmt.Errorf("append reward %q: %w", reward.Title, err)
	}
	return nil
}

func (r *Rewards) SetStatus(ref RowRef, reward model.Reward, status model.RewardStatus) error {
	changes := Record{"status": string(status)}
	if err := r.st.UpdateRow(TableRewards, ref, reward.Version, changes); err != nil {
		return fmt.Errorf("set reward %d status: %w", reward.ID, err)
	}
	return nil
}

func (r *Rewards) NextID() (int64, error) {
	rewards, err := r.All()
	if err != nil {
		return 0, err
	}
	next := int64(firstRewardID)
	for _, reward := range rewards {
		if reward.ID >= next {
			next = reward.ID + 1
		}
	}
	return next, nil
}

func decodeReward(rec Record) model.Reward {
	status, err := model.ParseRewardStatus(rec["status"])
	if err != nil {
		status = model.RewardPendingApproval
	}
	return model.Reward{
		ID:        coerceInt64(rec, "id"),
		Title:     strings.TrimSpace(rec["title"]),
		Cost:      coerceFloat(rec, "cost"),
		Status:    status,
		CreatedBy: strings.TrimSpace(rec["created_by"]),
		Version:   recordVersion(rec),
	}
}
