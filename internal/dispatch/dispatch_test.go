package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmtigers/questboard/internal/api"
	"github.com/mmtigers/questboard/internal/model"
	"github.com/mmtigers/questboard/internal/quest"
)

type call struct {
	op   string
	args []any
}

type fakeClient struct {
	mu    sync.Mutex
	calls []call
	err   error
	res   api.Result
}

func (f *fakeClient) record(op string, args ...any) (api.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{op: op, args: args})
	if f.err != nil {
		return api.Result{}, f.err
	}
	return f.res, nil
}

func (f *fakeClient) CompleteQuest(ctx context.Context, userID string, questID int64) (api.Result, error) {
	return f.record("complete", userID, questID)
}

func (f *fakeClient) CancelQuest(ctx context.Context, historyID int64) (api.Result, error) {
	return f.record("cancel", historyID)
}

func (f *fakeClient) ApproveQuest(ctx context.Context, historyID int64, approverID string) (api.Result, error) {
	return f.record("approve", historyID, approverID)
}

func (f *fakeClient) RejectQuest(ctx context.Context, historyID int64, approverID string) (api.Result, error) {
	return f.record("reject", historyID, approverID)
}

func (f *fakeClient) PurchaseReward(ctx context.Context, userID string, rewardID int64) (api.Result, error) {
	return f.record("purchase", userID, rewardID)
}

func (f *fakeClient) BuyEquipment(ctx context.Context, userID string, equipmentID int64) (api.Result, error) {
	return f.record("buy", userID, equipmentID)
}

func (f *fakeClient) ChangeEquipment(ctx context.Context, userID string, equipmentID int64) (api.Result, error) {
	return f.record("equip", userID, equipmentID)
}

func (f *fakeClient) UpdateBoss(ctx context.Context, u model.BossUpdate) (api.Result, error) {
	return f.record("boss", u)
}

type fakeRefresher struct {
	snap      model.Snapshot
	refreshes int
	err       error
}

func (f *fakeRefresher) Current() model.Snapshot { return f.snap }

func (f *fakeRefresher) Refresh(ctx context.Context) error {
	f.refreshes++
	return f.err
}

func testSnapshot() model.Snapshot {
	return model.Snapshot{
		Users: []model.User{{ID: "kid1"}, {ID: "kid2"}},
		Quests: []model.Quest{
			{ID: 1, Title: "Dishes", Type: model.QuestDaily},
			{ID: 2, Title: "Bath", Type: model.QuestDaily},
			{ID: 3, Title: "Homework", Type: model.QuestDaily, PrerequisiteID: 2},
			{ID: 4, Title: "Help out", Type: model.QuestInfinite},
			{ID: 5, Title: "Feed fish", Type: model.QuestDaily, Target: "kid2"},
		},
		Completed: []model.HistoryEntry{
			{ID: 10, UserID: "kid1", QuestID: 1, Status: model.HistoryApproved},
			{ID: 12, UserID: "kid1", QuestID: 1, Status: model.HistoryApproved},
			{ID: 11, UserID: "kid1", QuestID: 4, Status: model.HistoryApproved},
		},
		Pending: []model.HistoryEntry{
			{ID: 20, UserID: "kid2", QuestID: 2, Status: model.HistoryPending},
			{ID: 21, UserID: "kid1", QuestID: 4, Status: model.HistoryPending},
		},
	}
}

func newDispatcher() (*Dispatcher, *fakeClient, *fakeRefresher) {
	c := &fakeClient{res: api.Result{Status: "success"}}
	r := &fakeRefresher{snap: testSnapshot()}
	return New(c, r, slog.Default()), c, r
}

func TestClickCompletesAvailableQuest(t *testing.T) {
	d, c, r := newDispatcher()

	out, err := d.Click(context.Background(), "kid2", 1)
	require.NoError(t, err)
	assert.Equal(t, quest.ActionComplete, out.Action.Kind)
	assert.Equal(t, "success", out.Result.Status)
	require.Len(t, c.calls, 1)
	assert.Equal(t, call{op: "complete", args: []any{"kid2", int64(1)}}, c.calls[0])
	assert.Equal(t, 1, r.refreshes)
}

func TestClickCancelsLatestApprovedCompletion(t *testing.T) {
	d, c, _ := newDispatcher()

	out, err := d.Click(context.Background(), "kid1", 1)
	require.NoError(t, err)
	assert.Equal(t, quest.ActionCancel, out.Action.Kind)
	require.Len(t, c.calls, 1)
	assert.Equal(t, call{op: "cancel", args: []any{int64(12)}}, c.calls[0])
}

func TestClickLockedMakesNoCall(t *testing.T) {
	d, c, r := newDispatcher()

	out, err := d.Click(context.Background(), "kid1", 3)
	assert.ErrorIs(t, err, ErrQuestLocked)
	assert.Equal(t, quest.ActionBlockedLocked, out.Action.Kind)
	assert.Empty(t, c.calls)
	assert.Zero(t, r.refreshes)
}

func TestClickPendingMakesNoCall(t *testing.T) {
	d, c, _ := newDispatcher()

	_, err := d.Click(context.Background(), "kid2", 2)
	assert.ErrorIs(t, err, ErrQuestPending)
	assert.Empty(t, c.calls)
}

func TestClickInfiniteAlwaysCompletes(t *testing.T) {
	d, c, _ := newDispatcher()

	out, err := d.Click(context.Background(), "kid1", 4)
	require.NoError(t, err)
	assert.Equal(t, quest.ActionComplete, out.Action.Kind)
	require.Len(t, c.calls, 1)
	assert.Equal(t, "complete", c.calls[0].op)
}

func TestClickUnknownIDs(t *testing.T) {
	d, c, _ := newDispatcher()

	_, err := d.Click(context.Background(), "ghost", 1)
	assert.ErrorIs(t, err, ErrUnknownUser)

	_, err = d.Click(context.Background(), "kid1", 99)
	assert.ErrorIs(t, err, ErrUnknownQuest)

	_, err = d.Click(context.Background(), "kid1", 5)
	assert.ErrorIs(t, err, ErrNotAssigned)

	assert.Empty(t, c.calls)
}

func TestClickUpstreamErrorSkipsRefresh(t *testing.T) {
	d, c, r := newDispatcher()
	c.err = &api.StatusError{Code: 400, Message: "not enough gold"}

	_, err := d.Click(context.Background(), "kid2", 1)
	var se *api.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 400, se.Code)
	assert.Zero(t, r.refreshes)
}

func TestRefreshFailureIsNotReturned(t *testing.T) {
	d, _, r := newDispatcher()
	r.err = errors.New("server down")

	res, err := d.Approve(context.Background(), 20, "mom")
	require.NoError(t, err)
	assert.Equal(t, "success", res.Status)
	assert.Equal(t, 1, r.refreshes)
}

func TestPassThroughActions(t *testing.T) {
	d, c, r := newDispatcher()
	ctx := context.Background()
	boss := model.BossUpdate{Name: "Dust King", HP: 300, MaxHP: 300}

	_, err := d.Cancel(ctx, 11)
	require.NoError(t, err)
	_, err = d.Approve(ctx, 20, "mom")
	require.NoError(t, err)
	_, err = d.Reject(ctx, 21, "dad")
	require.NoError(t, err)
	_, err = d.PurchaseReward(ctx, "kid1", 7)
	require.NoError(t, err)
	_, err = d.BuyEquipment(ctx, "kid1", 8)
	require.NoError(t, err)
	_, err = d.ChangeEquipment(ctx, "kid1", 8)
	require.NoError(t, err)
	_, err = d.UpdateBoss(ctx, boss)
	require.NoError(t, err)

	assert.Equal(t, []call{
		{op: "cancel", args: []any{int64(11)}},
		{op: "approve", args: []any{int64(20), "mom"}},
		{op: "reject", args: []any{int64(21), "dad"}},
		{op: "purchase", args: []any{"kid1", int64(7)}},
		{op: "buy", args: []any{"kid1", int64(8)}},
		{op: "equip", args: []any{"kid1", int64(8)}},
		{op: "boss", args: []any{boss}},
	}, c.calls)
	assert.Equal(t, 7, r.refreshes)
}
