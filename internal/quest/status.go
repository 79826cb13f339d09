package quest

import (
	"fmt"

	"github.com/mmtigers/questboard/internal/model"
)

type Category string

const (
	CategoryDefault   Category = "default"
	CategoryCompleted Category = "completed"
	CategoryPending   Category = "pending"
	CategoryLocked    Category = "locked"
	CategoryInfinite  Category = "infinite"
	CategoryTimeLimit Category = "timeLimit"
	CategoryRandom    Category = "random"
	CategoryLimited   Category = "limited"
)

// Status is the display state of one quest for one user. It is derived fresh
// from the current snapshot and never stored.
type Status struct {
	Done        bool     `json:"done"`
	Pending     bool     `json:"pending"`
	Locked      bool     `json:"locked"`
	Infinite    bool     `json:"is_infinite"`
	Random      bool     `json:"is_random"`
	TimeLimited bool     `json:"is_time_limited"`
	Limited     bool     `json:"is_limited"`
	Completions int      `json:"completions"`
	Title       string   `json:"display_title"`
	Category    Category `json:"category"`
}

// Resolve computes the status of q for user. completed and pending are the
// unfiltered history lists for every family member; Resolve does its own
// per-user filtering so one member's history never leaks into another's view.
func Resolve(q model.Quest, user model.User, completed, pending []model.HistoryEntry) Status {
	s := Status{
		Infinite:    q.Type == model.QuestInfinite || q.Infinite,
		Random:      q.Type == model.QuestRandom,
		Limited:     q.Type == model.QuestLimited,
		TimeLimited: q.StartTime != "",
	}

	s.Completions = approvedCount(completed, user.ID, q.ID)
	s.Done = s.Completions > 0 && !s.Infinite

	for _, h := range pending {
		if h.UserID == user.ID && h.QuestID == q.ID {
			s.Pending = true
			break
		}
	}

	if q.PrerequisiteID != 0 {
		s.Locked = approvedCount(completed, user.ID, q.PrerequisiteID) == 0
	}

	s.Title = q.Title
	if s.Infinite {
		s.Title = fmt.Sprintf("%s (%d回目)", q.Title, s.Completions+1)
	}

	s.Category = categorize(s)
	return s
}

func categorize(s Status) Category {
	switch {
	case s.Done:
		return CategoryCompleted
	case s.Pending:
		return CategoryPending
	case s.Locked:
		return CategoryLocked
	case s.Infinite:
		return CategoryInfinite
	case s.TimeLimited:
		return CategoryTimeLimit
	case s.Random:
		return CategoryRandom
	case s.Limited:
		return CategoryLimited
	default:
		return CategoryDefault
	}
}

// approvedCount counts approved completions of questID by userID. Rejected
// or pending rows that show up in the completed list never count.
func approvedCount(completed []model.HistoryEntry, userID string, questID int64) int {
	n := 0
	for _, h := range completed {
		if h.UserID == userID && h.QuestID == questID && h.Status == model.HistoryApproved {
			n++
		}
	}
	return n
}
