package model

import "time"

// Snapshot is the last known game server state. It is replaced wholesale on
// every successful fetch and never mutated in place.
type Snapshot struct {
	Users     []User          `json:"users"`
	Quests    []Quest         `json:"quests"`
	Completed []HistoryEntry  `json:"completed_quests"`
	Pending   []HistoryEntry  `json:"pending_quests"`
	Rewards   []Reward        `json:"rewards"`
	Equipment []Equipment     `json:"equipment"`
	Inventory []InventoryItem `json:"inventory"`
	Logs      []LogEntry      `json:"logs"`
	Boss      *Boss           `json:"boss,omitempty"`
	FetchedAt time.Time       `json:"fetched_at"`
	// Fallback is true when the quest catalog is the built-in default.
	Fallback bool `json:"fallback,omitempty"`
}

func (s Snapshot) User(id string) (User, bool) {
	for _, u := range s.Users {
		if u.ID == id {
			return u, true
		}
	}
	return User{}, false
}

func (s Snapshot) Quest(id int64) (Quest, bool) {
	for _, q := range s.Quests {
		if q.ID == id {
			return q, true
		}
	}
	return Quest{}, false
}

type UserStats struct {
	UserID      string `json:"user_id"`
	TotalQuests int    `json:"total_quests"`
	TotalExp    int    `json:"total_exp"`
	TotalGold   int    `json:"total_gold"`
	Streak      int    `json:"streak"`
}

type Chronicle struct {
	Stats     []UserStats `json:"stats"`
	FetchedAt time.Time   `json:"fetched_at"`
}
