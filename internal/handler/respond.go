package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/mmtigers/questboard/internal/api"
	"github.com/mmtigers/questboard/internal/dispatch"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func parseIDParam(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(r.PathValue(name), 10, 64)
}

// writeActionError maps a dispatch or upstream failure onto a response.
// Upstream status codes pass through; transport failures become 502.
func writeActionError(w http.ResponseWriter, logger *slog.Logger, op string, err error) {
	var se *api.StatusError
	switch {
	case errors.Is(err, dispatch.ErrUnknownUser), errors.Is(err, dispatch.ErrUnknownQuest):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, dispatch.ErrNotAssigned):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, dispatch.ErrNothingToCancel):
		writeError(w, http.StatusConflict, err.Error())
	case errors.As(err, &se):
		logger.Warn(op+" rejected upstream", "code", se.Code, "error", se.Message)
		msg := se.Message
		if msg == "" {
			msg = http.StatusText(se.Code)
		}
		writeError(w, se.Code, msg)
	default:
		logger.Error(op+" failed", "error", err)
		writeError(w, http.StatusBadGateway, "game server unavailable")
	}
}
