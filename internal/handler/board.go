package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/mmtigers/questboard/internal/model"
	"github.com/mmtigers/questboard/internal/quest"
)

// StateSource serves the snapshot currently in effect.
type StateSource interface {
	Current() model.Snapshot
	Chronicle() model.Chronicle
}

type BoardHandler struct {
	source StateSource
	now    func() time.Time
}

func NewBoardHandler(source StateSource) *BoardHandler {
	return &BoardHandler{source: source, now: time.Now}
}

type boardResponse struct {
	User      model.User    `json:"user"`
	Weekday   time.Weekday  `json:"weekday"`
	Entries   []quest.Entry `json:"entries"`
	Fallback  bool          `json:"fallback"`
	FetchedAt time.Time     `json:"fetched_at"`
	Boss      *model.Boss   `json:"boss,omitempty"`
}

func (h *BoardHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.source.Current())
}

func (h *BoardHandler) Chronicle(w http.ResponseWriter, r *http.Request) {
	c := h.source.Chronicle()
	if c.Stats == nil {
		c.Stats = []model.UserStats{}
	}
	writeJSON(w, http.StatusOK, c)
}

// Board renders today's filtered and ordered quests for one user.
// ?weekday=0..6 (0 = Sunday) renders another day of the current week.
func (h *BoardHandler) Board(w http.ResponseWriter, r *http.Request) {
	snap := h.source.Current()
	user, ok := snap.User(r.PathValue("user_id"))
	if !ok {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	today := h.now()
	if v := r.URL.Query().Get("weekday"); v != "" {
		wd, err := strconv.Atoi(v)
		if err != nil || wd < 0 || wd > 6 {
			writeError(w, http.StatusBadRequest, "weekday must be 0-6")
			return
		}
		today = today.AddDate(0, 0, wd-int(today.Weekday()))
	}

	entries := quest.TodayBoard(snap, user, today)
	if entries == nil {
		entries = []quest.Entry{}
	}
	writeJSON(w, http.StatusOK, boardResponse{
		User:      user,
		Weekday:   today.Weekday(),
		Entries:   entries,
		Fallback:  snap.Fallback,
		FetchedAt: snap.FetchedAt,
		Boss:      snap.Boss,
	})
}
