package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mmtigers/questboard/internal/model"
)

// Result is the server's answer to a mutating action. Gold and experience
// accounting happens server-side; these fields are display only.
type Result struct {
	Status     string `json:"status"`
	Message    string `json:"message"`
	LeveledUp  bool   `json:"leveled_up"`
	NewLevel   int    `json:"new_level,omitempty"`
	ExpGained  int    `json:"exp_gained"`
	GoldGained int    `json:"gold_gained"`
}

type questRequest struct {
	UserID  string `json:"user_id"`
	QuestID int64  `json:"quest_id"`
}

type historyRequest struct {
	HistoryID  int64  `json:"history_id"`
	ApproverID string `json:"approver_id,omitempty"`
}

type purchaseRequest struct {
	UserID      string `json:"user_id"`
	RewardID    int64  `json:"reward_id,omitempty"`
	EquipmentID int64  `json:"equipment_id,omitempty"`
}

func (c *Client) post(ctx context.Context, op, path string, in any) (Result, error) {
	var res Result
	if err := c.do(ctx, http.MethodPost, path, in, &res); err != nil {
		return Result{}, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// CompleteQuest reports that userID finished questID. The server records a
// pending history entry awaiting parent approval.
func (c *Client) CompleteQuest(ctx context.Context, userID string, questID int64) (Result, error) {
	return c.post(ctx, "complete quest", "/api/quests/complete", questRequest{UserID: userID, QuestID: questID})
}

// CancelQuest deletes a history entry.
func (c *Client) CancelQuest(ctx context.Context, historyID int64) (Result, error) {
	return c.post(ctx, "cancel quest", "/api/quests/cancel", historyRequest{HistoryID: historyID})
}

func (c *Client) ApproveQuest(ctx context.Context, historyID int64, approverID string) (Result, error) {
	return c.post(ctx, "approve quest", "/api/quests/approve", historyRequest{HistoryID: historyID, ApproverID: approverID})
}

func (c *Client) RejectQuest(ctx context.Context, historyID int64, approverID string) (Result, error) {
	return c.post(ctx, "reject quest", "/api/quests/reject", historyRequest{HistoryID: historyID, ApproverID: approverID})
}

func (c *Client) PurchaseReward(ctx context.Context, userID string, rewardID int64) (Result, error) {
	return c.post(ctx, "purchase reward", "/api/rewards/purchase", purchaseRequest{UserID: userID, RewardID: rewardID})
}

func (c *Client) BuyEquipment(ctx context.Context, userID string, equipmentID int64) (Result, error) {
	return c.post(ctx, "buy equipment", "/api/equipment/buy", purchaseRequest{UserID: userID, EquipmentID: equipmentID})
}

// ChangeEquipment equips an owned item, replacing whatever held its slot.
func (c *Client) ChangeEquipment(ctx context.Context, userID string, equipmentID int64) (Result, error) {
	return c.post(ctx, "change equipment", "/api/equipment/change", purchaseRequest{UserID: userID, EquipmentID: equipmentID})
}

func (c *Client) UpdateBoss(ctx context.Context, u model.BossUpdate) (Result, error) {
	return c.post(ctx, "update boss", "/api/admin/boss", u)
}
