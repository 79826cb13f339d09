package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mmtigers/questboard/internal/api"
	"github.com/mmtigers/questboard/internal/model"
	"github.com/mmtigers/questboard/internal/quest"
)

var (
	ErrUnknownUser     = errors.New("unknown user")
	ErrUnknownQuest    = errors.New("unknown quest")
	ErrNotAssigned     = errors.New("quest is assigned to someone else")
	ErrQuestLocked     = errors.New("quest is locked behind its prerequisite")
	ErrQuestPending    = errors.New("quest is waiting for approval")
	ErrNothingToCancel = errors.New("no completion to cancel")
)

// Client is the slice of the game server API the dispatcher drives.
type Client interface {
	CompleteQuest(ctx context.Context, userID string, questID int64) (api.Result, error)
	CancelQuest(ctx context.Context, historyID int64) (api.Result, error)
	ApproveQuest(ctx context.Context, historyID int64, approverID string) (api.Result, error)
	RejectQuest(ctx context.Context, historyID int64, approverID string) (api.Result, error)
	PurchaseReward(ctx context.Context, userID string, rewardID int64) (api.Result, error)
	BuyEquipment(ctx context.Context, userID string, equipmentID int64) (api.Result, error)
	ChangeEquipment(ctx context.Context, userID string, equipmentID int64) (api.Result, error)
	UpdateBoss(ctx context.Context, u model.BossUpdate) (api.Result, error)
}

// Refresher owns the current snapshot and can re-fetch it.
type Refresher interface {
	Current() model.Snapshot
	Refresh(ctx context.Context) error
}

// Outcome reports what a click turned into. Result is zero when the click
// was blocked.
type Outcome struct {
	Action quest.Action `json:"action"`
	Result api.Result   `json:"result"`
}

// Dispatcher turns board interactions into game server calls. Calls are not
// queued, retried or deduplicated; two concurrent clicks are two requests.
type Dispatcher struct {
	client    Client
	refresher Refresher
	logger    *slog.Logger
}

func New(client Client, refresher Refresher, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		client:    client,
		refresher: refresher,
		logger:    logger.With("component", "dispatch"),
	}
}

// Click resolves questID for userID against the current snapshot and acts on
// it: complete, cancel the latest approved completion, or refuse.
func (d *Dispatcher) Click(ctx context.Context, userID string, questID int64) (Outcome, error) {
	snap := d.refresher.Current()

	user, ok := snap.User(userID)
	if !ok {
		return Outcome{}, fmt.Errorf("click %s: %w", userID, ErrUnknownUser)
	}
	q, ok := snap.Quest(questID)
	if !ok {
		return Outcome{}, fmt.Errorf("click quest %d: %w", questID, ErrUnknownQuest)
	}
	if q.Target != "" && q.Target != model.TargetAll && q.Target != user.ID {
		return Outcome{}, fmt.Errorf("click quest %d: %w", questID, ErrNotAssigned)
	}

	action := quest.Decide(q, user, snap.Completed, snap.Pending)
	out := Outcome{Action: action}

	var (
		res api.Result
		err error
	)
	switch action.Kind {
	case quest.ActionBlockedLocked:
		return out, ErrQuestLocked
	case quest.ActionBlockedPending:
		return out, ErrQuestPending
	case quest.ActionCancel:
		if action.HistoryID == 0 {
			return out, ErrNothingToCancel
		}
		res, err = d.client.CancelQuest(ctx, action.HistoryID)
	default:
		res, err = d.client.CompleteQuest(ctx, user.ID, q.ID)
	}
	if err != nil {
		return out, err
	}

	d.logger.Info("quest clicked", "user", user.ID, "quest", q.ID, "action", action.Kind, "leveled_up", res.LeveledUp)
	out.Result = res
	d.refresh(ctx)
	return out, nil
}

func (d *Dispatcher) Cancel(ctx context.Context, historyID int64) (api.Result, error) {
	return d.mutate(ctx, "cancel", func() (api.Result, error) {
		return d.client.CancelQuest(ctx, historyID)
	})
}

func (d *Dispatcher) Approve(ctx context.Context, historyID int64, approverID string) (api.Result, error) {
	return d.mutate(ctx, "approve", func() (api.Result, error) {
		return d.client.ApproveQuest(ctx, historyID, approverID)
	})
}

func (d *Dispatcher) Reject(ctx context.Context, historyID int64, approverID string) (api.Result, error) {
	return d.mutate(ctx, "reject", func() (api.Result, error) {
		return d.client.RejectQuest(ctx, historyID, approverID)
	})
}

func (d *Dispatcher) PurchaseReward(ctx context.Context, userID string, rewardID int64) (api.Result, error) {
	return d.mutate(ctx, "purchase reward", func() (api.Result, error) {
		return d.client.PurchaseReward(ctx, userID, rewardID)
	})
}

func (d *Dispatcher) BuyEquipment(ctx context.Context, userID string, equipmentID int64) (api.Result, error) {
	return d.mutate(ctx, "buy equipment", func() (api.Result, error) {
		return d.client.BuyEquipment(ctx, userID, equipmentID)
	})
}

func (d *Dispatcher) ChangeEquipment(ctx context.Context, userID string, equipmentID int64) (api.Result, error) {
	return d.mutate(ctx, "change equipment", func() (api.Result, error) {
		return d.client.ChangeEquipment(ctx, userID, equipmentID)
	})
}

func (d *Dispatcher) UpdateBoss(ctx context.Context, u model.BossUpdate) (api.Result, error) {
	return d.mutate(ctx, "update boss", func() (api.Result, error) {
		return d.client.UpdateBoss(ctx, u)
	})
}

func (d *Dispatcher) mutate(ctx context.Context, op string, call func() (api.Result, error)) (api.Result, error) {
	res, err := call()
	if err != nil {
		return api.Result{}, err
	}
	d.logger.Info("action dispatched", "op", op, "status", res.Status)
	d.refresh(ctx)
	return res, nil
}

// refresh pulls fresh state after a mutation. The mutation already
// succeeded, so a failed refresh is only logged; the next poll catches up.
func (d *Dispatcher) refresh(ctx context.Context) {
	if err := d.refresher.Refresh(ctx); err != nil {
		d.logger.Warn("refresh after action", "error", err)
	}
}
