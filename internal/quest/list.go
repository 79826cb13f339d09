package quest

import (
	"cmp"
	"slices"
	"time"

	"github.com/mmtigers/questboard/internal/model"
)

// Entry pairs a quest with its resolved status for display.
type Entry struct {
	Quest  model.Quest `json:"quest"`
	Status Status      `json:"status"`
}

// Visible reports whether user may see q on the day of today.
//
// Days holds time.Weekday values (0 = Sunday). An empty Days on a daily quest
// means every day, unless DaysRestricted says the server named days that
// could not be read; then the quest is hidden rather than shown all week.
func Visible(q model.Quest, user model.User, today time.Time) bool {
	if q.Target != "" && q.Target != model.TargetAll && q.Target != user.ID {
		return false
	}
	if q.Type == model.QuestDaily && (len(q.Days) > 0 || q.DaysRestricted) {
		return slices.Contains(q.Days, today.Weekday())
	}
	return true
}

// Filter returns the quests visible to user today, preserving catalog order.
func Filter(quests []model.Quest, user model.User, today time.Time) []model.Quest {
	out := make([]model.Quest, 0, len(quests))
	for _, q := range quests {
		if Visible(q, user, today) {
			out = append(out, q)
		}
	}
	return out
}

// Score ranks a status for display; lower sorts first.
func Score(s Status) int {
	switch {
	case s.Infinite:
		return 0
	case s.Done:
		return 3
	case s.Pending:
		return 1
	case s.Locked:
		return 2
	default:
		return 0
	}
}

// Board resolves every quest and orders the result by score, then by
// combined bonus descending, then by quest ID descending.
func Board(quests []model.Quest, user model.User, completed, pending []model.HistoryEntry) []Entry {
	entries := make([]Entry, len(quests))
	for i, q := range quests {
		entries[i] = Entry{Quest: q, Status: Resolve(q, user, completed, pending)}
	}

	slices.SortStableFunc(entries, func(a, b Entry) int {
		if c := cmp.Compare(Score(a.Status), Score(b.Status)); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Quest.Bonus(), a.Quest.Bonus()); c != 0 {
			return c
		}
		return cmp.Compare(b.Quest.ID, a.Quest.ID)
	})
	return entries
}

// Sort returns a new slice of quests in board order.
func Sort(quests []model.Quest, user model.User, completed, pending []model.HistoryEntry) []model.Quest {
	entries := Board(quests, user, completed, pending)
	out := make([]model.Quest, len(entries))
	for i, e := range entries {
		out[i] = e.Quest
	}
	return out
}

// FilterAndSort narrows the catalog to what user may see today and orders it.
func FilterAndSort(quests []model.Quest, user model.User, completed, pending []model.HistoryEntry, today time.Time) []model.Quest {
	return Sort(Filter(quests, user, today), user, completed, pending)
}

// TodayBoard is FilterAndSort with each quest's status attached.
func TodayBoard(snap model.Snapshot, user model.User, today time.Time) []Entry {
	return Board(Filter(snap.Quests, user, today), user, snap.Completed, snap.Pending)
}
