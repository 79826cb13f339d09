package model

import "time"

type QuestType string

const (
	QuestDaily     QuestType = "daily"
	QuestInfinite  QuestType = "infinite"
	QuestRandom    QuestType = "random"
	QuestLimited   QuestType = "limited"
	QuestChallenge QuestType = "challenge"
	QuestWeekly    QuestType = "weekly"
)

// TargetAll marks a quest any family member may take.
const TargetAll = "all"

type Quest struct {
	ID    int64     `json:"id"`
	Title string    `json:"title"`
	Type  QuestType `json:"type"`
	// Infinite is set by callers re-dispatching a quest that was already
	// classified as repeatable, independent of Type.
	Infinite       bool           `json:"infinite,omitempty"`
	Days           []time.Weekday `json:"days,omitempty"`
	// DaysRestricted is set when the server sent a non-empty day list, even
	// if none of its values were usable. A daily quest like that is never shown.
	DaysRestricted bool           `json:"days_restricted,omitempty"`
	StartTime      string         `json:"start_time,omitempty"`
	EndTime        string         `json:"end_time,omitempty"`
	Target         string         `json:"target,omitempty"`
	PrerequisiteID int64          `json:"prerequisite_id,omitempty"`
	ExpReward      int            `json:"exp_reward"`
	GoldReward     int            `json:"gold_reward"`
	BonusExp       int            `json:"bonus_exp,omitempty"`
	BonusGold      int            `json:"bonus_gold,omitempty"`
	Icon           string         `json:"icon,omitempty"`
}

// Bonus is the combined temporary reward shown as "UP!".
func (q Quest) Bonus() int {
	return q.BonusGold + q.BonusExp
}

type HistoryStatus string

const (
	HistoryPending  HistoryStatus = "pending"
	HistoryApproved HistoryStatus = "approved"
	HistoryRejected HistoryStatus = "rejected"
)

type HistoryEntry struct {
	ID         int64         `json:"id"`
	UserID     string        `json:"user_id"`
	QuestID    int64         `json:"quest_id"`
	Status     HistoryStatus `json:"status"`
	QuestTitle string        `json:"quest_title"`
}
