package middleware

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/mmtigers/questboard/internal/auth"
)

const (
	ParentPINHeader = "X-Parent-PIN"
	ActorIDHeader   = "X-Actor-ID"
)

// RequireParent checks the X-Parent-PIN header against gate and marks the
// request as driven by a parent. X-Actor-ID, when present, names the parent.
func RequireParent(gate *auth.PINGate, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := gate.Check(r.Header.Get(ParentPINHeader)); err != nil {
				if errors.Is(err, auth.ErrInvalidPIN) {
					writeError(w, http.StatusForbidden, "parent PIN required")
					return
				}
				logger.Error("check parent pin", "error", err)
				writeError(w, http.StatusInternalServerError, "internal error")
				return
			}

			actor := auth.Actor{
				ID:   r.Header.Get(ActorIDHeader),
				Role: auth.RoleParent,
			}
			ctx := auth.WithActor(r.Context(), actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
