package api

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/mmtigers/questboard/internal/model"
)

// The game server has renamed fields over time and different endpoints emit
// different spellings of the same concept. Everything below accepts every
// known spelling and collapses it to the canonical model types, so nothing
// past this file ever needs an `a or b` fallback.

// flexInt accepts a JSON number, a numeric string, or null.
type flexInt struct {
	Value int64
	Set   bool
}

func (f *flexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	s := strings.Trim(string(data), `"`)
	if s == "" {
		return nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		// Unparsable values degrade to absent rather than failing the snapshot.
		return nil
	}
	f.Value = int64(n)
	f.Set = true
	return nil
}

func (f flexInt) Int() int { return int(f.Value) }

// firstInt returns the first set value, or zero.
func firstInt(vals ...flexInt) int64 {
	for _, v := range vals {
		if v.Set {
			return v.Value
		}
	}
	return 0
}

// flexString accepts a JSON string, a number, or null.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	*f = flexString(string(data))
	return nil
}

func firstString(vals ...flexString) string {
	for _, v := range vals {
		if s := strings.TrimSpace(string(v)); s != "" {
			return s
		}
	}
	return ""
}

// flexDays accepts [1,3,5], ["1","3"], "1,3,5", "" or null. Values are
// time.Weekday indices (0 = Sunday); tokens outside 0..6 are dropped.
// declared records whether any non-blank token was present at all.
type flexDays struct {
	days     []time.Weekday
	declared bool
}

func (f *flexDays) UnmarshalJSON(data []byte) error {
	*f = flexDays{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	var tokens []string
	switch data[0] {
	case '[':
		var raw []flexString
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil
		}
		for _, r := range raw {
			tokens = append(tokens, string(r))
		}
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		tokens = strings.Split(s, ",")
	default:
		tokens = []string{string(data)}
	}

	f.days = make([]time.Weekday, 0, len(tokens))
	for _, tok := range tokens {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		f.declared = true
		n, err := strconv.Atoi(tok)
		if err != nil || n < 0 || n > 6 {
			continue
		}
		f.days = append(f.days, time.Weekday(n))
	}
	return nil
}

// flexBool accepts true/false, 0/1, or their string forms.
type flexBool bool

func (f *flexBool) UnmarshalJSON(data []byte) error {
	s := strings.ToLower(strings.Trim(string(bytes.TrimSpace(data)), `"`))
	switch s {
	case "true", "1":
		*f = true
	default:
		*f = false
	}
	return nil
}

type rawUser struct {
	ID       flexString `json:"id"`
	UserID   flexString `json:"user_id"`
	Name     string     `json:"name"`
	Level    flexInt    `json:"level"`
	Exp      flexInt    `json:"exp"`
	Gold     flexInt    `json:"gold"`
	JobClass string     `json:"job_class"`
	Job      string     `json:"job"`
	Avatar   string     `json:"avatar"`
	Icon     string     `json:"icon"`
}

func normalizeUser(r rawUser) model.User {
	u := model.User{
		ID:       firstString(r.UserID, r.ID),
		Name:     r.Name,
		Level:    r.Level.Int(),
		Exp:      r.Exp.Int(),
		Gold:     r.Gold.Int(),
		JobClass: r.JobClass,
		Avatar:   r.Avatar,
	}
	if u.Level < 1 {
		u.Level = 1
	}
	if u.JobClass == "" {
		u.JobClass = r.Job
	}
	if u.Avatar == "" {
		u.Avatar = r.Icon
	}
	return u
}

type rawQuest struct {
	QuestID      flexInt    `json:"quest_id"`
	ID           flexInt    `json:"id"`
	Title        string     `json:"title"`
	Type         string     `json:"type"`
	QuestType    string     `json:"quest_type"`
	IsInfinite   flexBool   `json:"is_infinite"`
	Days         flexDays   `json:"days"`
	StartTime    flexString `json:"start_time"`
	EndTime      flexString `json:"end_time"`
	Target       flexString `json:"target"`
	PreRequisite flexInt    `json:"pre_requisite_quest_id"`
	Prerequisite flexInt    `json:"prerequisite_quest_id"`
	ExpGain      flexInt    `json:"exp_gain"`
	Exp          flexInt    `json:"exp"`
	GoldGain     flexInt    `json:"gold_gain"`
	Gold         flexInt    `json:"gold"`
	BonusExp     flexInt    `json:"bonus_exp"`
	BonusGold    flexInt    `json:"bonus_gold"`
	Icon         string     `json:"icon"`
	IconKey      string     `json:"icon_key"`
}

func normalizeQuest(r rawQuest) model.Quest {
	q := model.Quest{
		ID:             firstInt(r.QuestID, r.ID),
		Title:          r.Title,
		Type:           model.QuestType(strings.ToLower(strings.TrimSpace(r.Type))),
		Infinite:       bool(r.IsInfinite),
		Days:           r.Days.days,
		DaysRestricted: r.Days.declared,
		StartTime:      firstString(r.StartTime),
		EndTime:        firstString(r.EndTime),
		Target:         firstString(r.Target),
		PrerequisiteID: firstInt(r.PreRequisite, r.Prerequisite),
		ExpReward:      int(firstInt(r.ExpGain, r.Exp)),
		GoldReward:     int(firstInt(r.GoldGain, r.Gold)),
		BonusExp:       r.BonusExp.Int(),
		BonusGold:      r.BonusGold.Int(),
		Icon:           r.Icon,
	}
	if q.Type == "" {
		q.Type = model.QuestType(strings.ToLower(strings.TrimSpace(r.QuestType)))
	}
	if q.Target == "" {
		q.Target = model.TargetAll
	}
	if q.Icon == "" {
		q.Icon = r.IconKey
	}
	return q
}

type rawHistory struct {
	ID         flexInt    `json:"id"`
	UserID     flexString `json:"user_id"`
	QuestID    flexInt    `json:"quest_id"`
	Status     string     `json:"status"`
	QuestTitle string     `json:"quest_title"`
	Title      string     `json:"title"`
}

func normalizeHistory(r rawHistory) model.HistoryEntry {
	h := model.HistoryEntry{
		ID:         r.ID.Value,
		UserID:     firstString(r.UserID),
		QuestID:    r.QuestID.Value,
		Status:     model.HistoryStatus(strings.ToLower(strings.TrimSpace(r.Status))),
		QuestTitle: r.QuestTitle,
	}
	if h.QuestTitle == "" {
		h.QuestTitle = r.Title
	}
	return h
}

type rawReward struct {
	ID       flexInt `json:"id"`
	RewardID flexInt `json:"reward_id"`
	Title    string  `json:"title"`
	Name     string  `json:"name"`
	Cost     flexInt `json:"cost"`
	CostGold flexInt `json:"cost_gold"`
	Icon     string  `json:"icon"`
}

func normalizeReward(r rawReward) model.Reward {
	rw := model.Reward{
		ID:    firstInt(r.RewardID, r.ID),
		Title: r.Title,
		Cost:  int(firstInt(r.CostGold, r.Cost)),
		Icon:  r.Icon,
	}
	if rw.Title == "" {
		rw.Title = r.Name
	}
	return rw
}

type rawEquipment struct {
	ID          flexInt `json:"id"`
	EquipmentID flexInt `json:"equipment_id"`
	Name        string  `json:"name"`
	Type        string  `json:"type"`
	Slot        string  `json:"slot"`
	Price       flexInt `json:"price"`
	Cost        flexInt `json:"cost"`
	Icon        string  `json:"icon"`
}

func normalizeEquipment(r rawEquipment) model.Equipment {
	e := model.Equipment{
		ID:    firstInt(r.EquipmentID, r.ID),
		Name:  r.Name,
		Slot:  r.Slot,
		Price: int(firstInt(r.Price, r.Cost)),
		Icon:  r.Icon,
	}
	if e.Slot == "" {
		e.Slot = r.Type
	}
	return e
}

type rawInventory struct {
	UserID      flexString `json:"user_id"`
	EquipmentID flexInt    `json:"equipment_id"`
	IsEquipped  flexBool   `json:"is_equipped"`
	Equipped    flexBool   `json:"equipped"`
}

func normalizeInventory(r rawInventory) model.InventoryItem {
	return model.InventoryItem{
		UserID:      firstString(r.UserID),
		EquipmentID: r.EquipmentID.Value,
		Equipped:    bool(r.Equipped || r.IsEquipped),
	}
}

type rawBoss struct {
	Name      string   `json:"name"`
	BossName  string   `json:"boss_name"`
	HP        flexInt  `json:"hp"`
	CurrentHP flexInt  `json:"current_hp"`
	MaxHP     flexInt  `json:"max_hp"`
	Defeated  flexBool `json:"is_defeated"`
}

func normalizeBoss(r *rawBoss) *model.Boss {
	if r == nil {
		return nil
	}
	b := &model.Boss{
		Name:  r.Name,
		HP:    int(firstInt(r.CurrentHP, r.HP)),
		MaxHP: r.MaxHP.Int(),
	}
	if b.Name == "" {
		b.Name = r.BossName
	}
	b.Defeated = bool(r.Defeated) || (b.MaxHP > 0 && b.HP <= 0)
	return b
}

type rawLog struct {
	ID        flexInt    `json:"id"`
	UserID    flexString `json:"user_id"`
	Text      string     `json:"text"`
	Message   string     `json:"message"`
	CreatedAt string     `json:"created_at"`
}

func normalizeLog(r rawLog) model.LogEntry {
	l := model.LogEntry{
		ID:     r.ID.Value,
		UserID: firstString(r.UserID),
		Text:   r.Text,
	}
	if l.Text == "" {
		l.Text = r.Message
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, r.CreatedAt); err == nil {
			l.CreatedAt = t
			break
		}
	}
	return l
}

type rawSnapshot struct {
	Users           []rawUser      `json:"users"`
	Quests          []rawQuest     `json:"quests"`
	CompletedQuests []rawHistory   `json:"completedQuests"`
	CompletedSnake  []rawHistory   `json:"completed_quests"`
	PendingQuests   []rawHistory   `json:"pendingQuests"`
	PendingSnake    []rawHistory   `json:"pending_quests"`
	Rewards         []rawReward    `json:"rewards"`
	Equipments      []rawEquipment `json:"equipments"`
	Equipment       []rawEquipment `json:"equipment"`
	Inventory       []rawInventory `json:"inventory"`
	Logs            []rawLog       `json:"logs"`
	Boss            *rawBoss       `json:"boss"`
}

func normalizeSnapshot(r rawSnapshot, fetchedAt time.Time) model.Snapshot {
	s := model.Snapshot{FetchedAt: fetchedAt}

	s.Users = make([]model.User, 0, len(r.Users))
	for _, u := range r.Users {
		s.Users = append(s.Users, normalizeUser(u))
	}
	s.Quests = make([]model.Quest, 0, len(r.Quests))
	for _, q := range r.Quests {
		s.Quests = append(s.Quests, normalizeQuest(q))
	}
	s.Completed = normalizeHistories(r.CompletedQuests, r.CompletedSnake)
	s.Pending = normalizeHistories(r.PendingQuests, r.PendingSnake)

	s.Rewards = make([]model.Reward, 0, len(r.Rewards))
	for _, rw := range r.Rewards {
		s.Rewards = append(s.Rewards, normalizeReward(rw))
	}
	equipment := r.Equipments
	if len(equipment) == 0 {
		equipment = r.Equipment
	}
	s.Equipment = make([]model.Equipment, 0, len(equipment))
	for _, e := range equipment {
		s.Equipment = append(s.Equipment, normalizeEquipment(e))
	}
	s.Inventory = make([]model.InventoryItem, 0, len(r.Inventory))
	for _, i := range r.Inventory {
		s.Inventory = append(s.Inventory, normalizeInventory(i))
	}
	s.Logs = make([]model.LogEntry, 0, len(r.Logs))
	for _, l := range r.Logs {
		s.Logs = append(s.Logs, normalizeLog(l))
	}
	s.Boss = normalizeBoss(r.Boss)
	return s
}

func normalizeHistories(primary, alt []rawHistory) []model.HistoryEntry {
	src := primary
	if len(src) == 0 {
		src = alt
	}
	out := make([]model.HistoryEntry, 0, len(src))
	for _, h := range src {
		out = append(out, normalizeHistory(h))
	}
	return out
}

type rawUserStats struct {
	UserID      flexString `json:"user_id"`
	TotalQuests flexInt    `json:"total_quests"`
	QuestCount  flexInt    `json:"quest_count"`
	TotalExp    flexInt    `json:"total_exp"`
	TotalGold   flexInt    `json:"total_gold"`
	Streak      flexInt    `json:"streak"`
}

type rawChronicle struct {
	Stats []rawUserStats `json:"stats"`
}

func normalizeChronicle(r rawChronicle, fetchedAt time.Time) model.Chronicle {
	c := model.Chronicle{
		Stats:     make([]model.UserStats, 0, len(r.Stats)),
		FetchedAt: fetchedAt,
	}
	for _, s := range r.Stats {
		c.Stats = append(c.Stats, model.UserStats{
			UserID:      firstString(s.UserID),
			TotalQuests: int(firstInt(s.TotalQuests, s.QuestCount)),
			TotalExp:    s.TotalExp.Int(),
			TotalGold:   s.TotalGold.Int(),
			Streak:      s.Streak.Int(),
		})
	}
	return c
}
