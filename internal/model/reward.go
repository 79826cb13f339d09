package model

import "time"

type Reward struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Cost  int    `json:"cost"`
	Icon  string `json:"icon,omitempty"`
}

type Equipment struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Slot  string `json:"slot"`
	Price int    `json:"price"`
	Icon  string `json:"icon,omitempty"`
}

type InventoryItem struct {
	UserID      string `json:"user_id"`
	EquipmentID int64  `json:"equipment_id"`
	Equipped    bool   `json:"equipped"`
}

type Boss struct {
	Name     string `json:"name"`
	HP       int    `json:"hp"`
	MaxHP    int    `json:"max_hp"`
	Defeated bool   `json:"defeated"`
}

// BossUpdate is the admin payload for resetting or adjusting the boss.
type BossUpdate struct {
	Name  string `json:"name"`
	HP    int    `json:"hp"`
	MaxHP int    `json:"max_hp"`
}

type LogEntry struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}
