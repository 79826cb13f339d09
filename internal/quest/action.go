package quest

import "github.com/mmtigers/questboard/internal/model"

type ActionKind string

const (
	ActionComplete       ActionKind = "complete"
	ActionCancel         ActionKind = "cancel"
	ActionBlockedLocked  ActionKind = "blocked_locked"
	ActionBlockedPending ActionKind = "blocked_pending"
)

// Action is what activating a quest on the board means for the user.
// HistoryID is set only for ActionCancel.
type Action struct {
	Kind      ActionKind  `json:"kind"`
	Quest     model.Quest `json:"quest"`
	HistoryID int64       `json:"history_id,omitempty"`
	Status    Status      `json:"status"`
}

// Decide turns a quest click into an explicit action using the same status
// the board was rendered from.
func Decide(q model.Quest, user model.User, completed, pending []model.HistoryEntry) Action {
	s := Resolve(q, user, completed, pending)
	a := Action{Quest: q, Status: s}

	switch {
	case s.Locked:
		a.Kind = ActionBlockedLocked
	case s.Infinite:
		a.Kind = ActionComplete
	case s.Pending:
		a.Kind = ActionBlockedPending
	case s.Done:
		a.Kind = ActionCancel
		a.HistoryID = latestApproved(completed, user.ID, q.ID)
	default:
		a.Kind = ActionComplete
	}
	return a
}

func latestApproved(completed []model.HistoryEntry, userID string, questID int64) int64 {
	var id int64
	for _, h := range completed {
		if h.UserID == userID && h.QuestID == questID && h.Status == model.HistoryApproved && h.ID > id {
			id = h.ID
		}
	}
	return id
}
