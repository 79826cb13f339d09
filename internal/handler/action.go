package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mmtigers/questboard/internal/api"
	"github.com/mmtigers/questboard/internal/auth"
	"github.com/mmtigers/questboard/internal/dispatch"
	"github.com/mmtigers/questboard/internal/model"
	"github.com/mmtigers/questboard/internal/quest"
	"github.com/mmtigers/questboard/internal/websocket"
)

// Dispatcher is what the action routes need from dispatch.Dispatcher.
type Dispatcher interface {
	Click(ctx context.Context, userID string, questID int64) (dispatch.Outcome, error)
	Cancel(ctx context.Context, historyID int64) (api.Result, error)
	Approve(ctx context.Context, historyID int64, approverID string) (api.Result, error)
	Reject(ctx context.Context, historyID int64, approverID string) (api.Result, error)
	PurchaseReward(ctx context.Context, userID string, rewardID int64) (api.Result, error)
	BuyEquipment(ctx context.Context, userID string, equipmentID int64) (api.Result, error)
	ChangeEquipment(ctx context.Context, userID string, equipmentID int64) (api.Result, error)
	UpdateBoss(ctx context.Context, u model.BossUpdate) (api.Result, error)
}

type ActionHandler struct {
	dispatcher Dispatcher
	hub        *websocket.Hub
	logger     *slog.Logger
}

func NewActionHandler(d Dispatcher, hub *websocket.Hub, logger *slog.Logger) *ActionHandler {
	return &ActionHandler{dispatcher: d, hub: hub, logger: logger}
}

func (h *ActionHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

func resultHints(res api.Result) map[string]any {
	if !res.LeveledUp {
		return nil
	}
	return map[string]any{"leveled_up": true, "new_level": res.NewLevel}
}

// Click is the single board interaction: it completes, cancels or refuses
// depending on the quest's status for the user.
func (h *ActionHandler) Click(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("user_id")
	questID, err := parseIDParam(r, "quest_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid quest id")
		return
	}

	out, err := h.dispatcher.Click(r.Context(), userID, questID)
	if errors.Is(err, dispatch.ErrQuestLocked) || errors.Is(err, dispatch.ErrQuestPending) {
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":  err.Error(),
			"action": out.Action,
		})
		return
	}
	if err != nil {
		writeActionError(w, h.logger, "click", err)
		return
	}

	typ := websocket.TypeQuestCompleted
	if out.Action.Kind == quest.ActionCancel {
		typ = websocket.TypeQuestCancelled
	}
	h.broadcast(websocket.NewMessage(typ, userID, questID, resultHints(out.Result)))

	writeJSON(w, http.StatusOK, out)
}

func (h *ActionHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	res, err := h.dispatcher.Cancel(r.Context(), id)
	if err != nil {
		writeActionError(w, h.logger, "cancel", err)
		return
	}

	h.broadcast(websocket.NewMessage(websocket.TypeQuestCancelled, "", id, nil))
	writeJSON(w, http.StatusOK, res)
}

func (h *ActionHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, "approve", h.dispatcher.Approve, websocket.TypeQuestApproved)
}

func (h *ActionHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, "reject", h.dispatcher.Reject, websocket.TypeQuestRejected)
}

func (h *ActionHandler) review(w http.ResponseWriter, r *http.Request, op string,
	call func(context.Context, int64, string) (api.Result, error), typ string) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	approver := auth.ActorID(r.Context(), string(auth.RoleParent))
	res, err := call(r.Context(), id, approver)
	if err != nil {
		writeActionError(w, h.logger, op, err)
		return
	}

	h.broadcast(websocket.NewMessage(typ, "", id, resultHints(res)))
	writeJSON(w, http.StatusOK, res)
}

func (h *ActionHandler) PurchaseReward(w http.ResponseWriter, r *http.Request) {
	h.purchase(w, r, "reward_id", "purchase reward", h.dispatcher.PurchaseReward, websocket.TypeRewardPurchased)
}

func (h *ActionHandler) BuyEquipment(w http.ResponseWriter, r *http.Request) {
	h.purchase(w, r, "equipment_id", "buy equipment", h.dispatcher.BuyEquipment, websocket.TypeEquipmentBought)
}

func (h *ActionHandler) ChangeEquipment(w http.ResponseWriter, r *http.Request) {
	h.purchase(w, r, "equipment_id", "change equipment", h.dispatcher.ChangeEquipment, websocket.TypeEquipmentChanged)
}

func (h *ActionHandler) purchase(w http.ResponseWriter, r *http.Request, param, op string,
	call func(context.Context, string, int64) (api.Result, error), typ string) {
	userID := r.PathValue("user_id")
	id, err := parseIDParam(r, param)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid "+strings.ReplaceAll(param, "_", " "))
		return
	}

	res, err := call(r.Context(), userID, id)
	if err != nil {
		writeActionError(w, h.logger, op, err)
		return
	}

	h.broadcast(websocket.NewMessage(typ, userID, id, nil))
	writeJSON(w, http.StatusOK, res)
}

func (h *ActionHandler) UpdateBoss(w http.ResponseWriter, r *http.Request) {
	var req model.BossUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.MaxHP <= 0 {
		writeError(w, http.StatusBadRequest, "max_hp must be positive")
		return
	}
	if req.HP < 0 || req.HP > req.MaxHP {
		writeError(w, http.StatusBadRequest, "hp must be between 0 and max_hp")
		return
	}

	res, err := h.dispatcher.UpdateBoss(r.Context(), req)
	if err != nil {
		writeActionError(w, h.logger, "update boss", err)
		return
	}

	h.broadcast(websocket.NewMessage(websocket.TypeBossUpdated, "", 0, nil))
	writeJSON(w, http.StatusOK, res)
}
