package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/mmtigers/questboard/internal/model"
)

const gameDataJSON = `{
	"users": [
		{"user_id": "kid1", "name": "Taro", "level": 3, "exp": 120, "gold": 40, "job_class": "勇者"},
		{"id": "kid2", "name": "Hana", "level": "5", "gold": null}
	],
	"quests": [
		{"quest_id": 5, "title": "Wash dishes", "type": "daily", "days": "1,3,5", "exp_gain": 10, "gold_gain": 5},
		{"id": 7, "title": "Fold laundry", "quest_type": "infinite", "exp": 3, "gold": 1, "target": null},
		{"id": 12, "title": "Cook dinner", "pre_requisite_quest_id": 5, "bonus_gold": 50, "target": "kid1"}
	],
	"completedQuests": [
		{"id": 1, "user_id": "kid1", "quest_id": 5, "status": "approved", "quest_title": "Wash dishes"}
	],
	"pendingQuests": [
		{"id": 2, "user_id": "kid2", "quest_id": 7, "status": "pending"}
	],
	"rewards": [{"reward_id": 3, "title": "Ice cream", "cost_gold": 100}],
	"equipments": [{"id": 4, "name": "Wooden sword", "type": "weapon", "price": 30}],
	"inventory": [{"user_id": "kid1", "equipment_id": 4, "is_equipped": 1}],
	"boss": {"name": "Dust King", "hp": 0, "max_hp": 500}
}`

func TestFetchSnapshot(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/game-data" {
			t.Errorf("path = %q, want /api/game-data", r.URL.Path)
		}
		if r.Header.Get(RequestIDHeader) == "" {
			t.Error("expected request id header")
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("authorization = %q, want %q", got, "Bearer secret")
		}
		w.Write([]byte(gameDataJSON))
	}))
	defer server.Close()

	c := NewClient(Config{BaseURL: server.URL + "/", Token: "secret"})
	snap, err := c.FetchSnapshot(context.Background())
	if err != nil {
		t.Fatalf("fetch snapshot: %v", err)
	}

	if len(snap.Users) != 2 {
		t.Fatalf("users = %d, want 2", len(snap.Users))
	}
	if snap.Users[1].ID != "kid2" || snap.Users[1].Level != 5 || snap.Users[1].Gold != 0 {
		t.Errorf("kid2 = %+v", snap.Users[1])
	}
	if len(snap.Quests) != 3 {
		t.Fatalf("quests = %d, want 3", len(snap.Quests))
	}
	if snap.Quests[0].ID != 5 || len(snap.Quests[0].Days) != 3 || snap.Quests[0].Days[0] != time.Monday {
		t.Errorf("quest 5 = %+v", snap.Quests[0])
	}
	if snap.Quests[1].ID != 7 || snap.Quests[1].Type != model.QuestInfinite || snap.Quests[1].ExpReward != 3 {
		t.Errorf("quest 7 = %+v", snap.Quests[1])
	}
	if snap.Quests[1].Target != model.TargetAll {
		t.Errorf("quest 7 target = %q, want %q", snap.Quests[1].Target, model.TargetAll)
	}
	if snap.Quests[2].PrerequisiteID != 5 || snap.Quests[2].Bonus() != 50 {
		t.Errorf("quest 12 = %+v", snap.Quests[2])
	}
	if len(snap.Completed) != 1 || snap.Completed[0].Status != model.HistoryApproved {
		t.Errorf("completed = %+v", snap.Completed)
	}
	if len(snap.Pending) != 1 || snap.Pending[0].UserID != "kid2" {
		t.Errorf("pending = %+v", snap.Pending)
	}
	if len(snap.Rewards) != 1 || snap.Rewards[0].ID != 3 || snap.Rewards[0].Cost != 100 {
		t.Errorf("rewards = %+v", snap.Rewards)
	}
	if len(snap.Equipment) != 1 || snap.Equipment[0].Slot != "weapon" {
		t.Errorf("equipment = %+v", snap.Equipment)
	}
	if len(snap.Inventory) != 1 || !snap.Inventory[0].Equipped {
		t.Errorf("inventory = %+v", snap.Inventory)
	}
	if snap.Boss == nil || !snap.Boss.Defeated {
		t.Errorf("boss = %+v", snap.Boss)
	}
	if snap.FetchedAt.IsZero() {
		t.Error("expected fetched_at to be set")
	}
}

func TestFetchSnapshotServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]string{"detail": "maintenance"})
	}))
	defer server.Close()

	c := NewClient(Config{BaseURL: server.URL})
	_, err := c.FetchSnapshot(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}

	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected StatusError, got %T: %v", err, err)
	}
	if se.Code != http.StatusServiceUnavailable {
		t.Errorf("code = %d, want %d", se.Code, http.StatusServiceUnavailable)
	}
	if se.Message != "maintenance" {
		t.Errorf("message = %q, want %q", se.Message, "maintenance")
	}
	if !IsStatus(err, http.StatusServiceUnavailable) {
		t.Error("expected IsStatus to match")
	}
}

func TestFetchSnapshotMalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"users": [`))
	}))
	defer server.Close()

	c := NewClient(Config{BaseURL: server.URL})
	if _, err := c.FetchSnapshot(context.Background()); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestFetchSnapshotUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	c := NewClient(Config{BaseURL: url, Timeout: time.Second})
	if _, err := c.FetchSnapshot(context.Background()); err == nil {
		t.Fatal("expected network error")
	}
}

func TestFetchChronicle(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"stats": [{"user_id": "kid1", "quest_count": 42, "total_exp": 900, "streak": 3}]}`))
	}))
	defer server.Close()

	c := NewClient(Config{BaseURL: server.URL})
	chron, err := c.FetchChronicle(context.Background())
	if err != nil {
		t.Fatalf("fetch chronicle: %v", err)
	}
	if len(chron.Stats) != 1 {
		t.Fatalf("stats = %d, want 1", len(chron.Stats))
	}
	if chron.Stats[0].TotalQuests != 42 || chron.Stats[0].Streak != 3 {
		t.Errorf("stats = %+v", chron.Stats[0])
	}
}

func TestCompleteQuest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/quests/complete" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content-type = %q", ct)
		}
		var req questRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.UserID != "kid1" || req.QuestID != 5 {
			t.Errorf("request = %+v", req)
		}
		json.NewEncoder(w).Encode(Result{Status: "ok", Message: "pending approval", ExpGained: 10})
	}))
	defer server.Close()

	c := NewClient(Config{BaseURL: server.URL})
	res, err := c.CompleteQuest(context.Background(), "kid1", 5)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if res.Message != "pending approval" || res.ExpGained != 10 {
		t.Errorf("result = %+v", res)
	}
}

func TestActionsHitExpectedEndpoints(t *testing.T) {
	var (
		mu    sync.Mutex
		paths []string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.URL.Path)
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	c := NewClient(Config{BaseURL: server.URL})
	ctx := context.Background()

	calls := []func() (Result, error){
		func() (Result, error) { return c.CancelQuest(ctx, 1) },
		func() (Result, error) { return c.ApproveQuest(ctx, 1, "parent") },
		func() (Result, error) { return c.RejectQuest(ctx, 1, "parent") },
		func() (Result, error) { return c.PurchaseReward(ctx, "kid1", 3) },
		func() (Result, error) { return c.BuyEquipment(ctx, "kid1", 4) },
		func() (Result, error) { return c.ChangeEquipment(ctx, "kid1", 4) },
		func() (Result, error) { return c.UpdateBoss(ctx, model.BossUpdate{Name: "Dust King", HP: 500, MaxHP: 500}) },
	}
	for i, call := range calls {
		if _, err := call(); err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
	}

	mu.Lock()
	defer mu.Unlock()
	want := []string{
		"/api/quests/cancel",
		"/api/quests/approve",
		"/api/quests/reject",
		"/api/rewards/purchase",
		"/api/equipment/buy",
		"/api/equipment/change",
		"/api/admin/boss",
	}
	if len(paths) != len(want) {
		t.Fatalf("paths = %v, want %v", paths, want)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("paths[%d] = %q, want %q", i, paths[i], want[i])
		}
	}
}

func TestPurchaseRewardRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": "not enough gold"}`))
	}))
	defer server.Close()

	c := NewClient(Config{BaseURL: server.URL})
	_, err := c.PurchaseReward(context.Background(), "kid1", 3)
	if !IsStatus(err, http.StatusBadRequest) {
		t.Fatalf("expected 400 status error, got %v", err)
	}
}
