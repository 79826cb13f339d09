package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/mmtigers/questboard/internal/auth"
	"github.com/mmtigers/questboard/internal/handler"
	"github.com/mmtigers/questboard/internal/middleware"
	ws "github.com/mmtigers/questboard/internal/websocket"
)

type Config struct {
	ParentPINHash string
	RateLimit     int
	RateBurst     int
}

type Server struct {
	source      handler.StateSource
	hub         *ws.Hub
	boardH      *handler.BoardHandler
	actionH     *handler.ActionHandler
	gate        *auth.PINGate
	rateLimiter *middleware.RateLimiter
	logger      *slog.Logger
}

func New(source handler.StateSource, dispatcher handler.Dispatcher, hub *ws.Hub, cfg Config, logger *slog.Logger) *Server {
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 60
	}
	if cfg.RateBurst <= 0 {
		cfg.RateBurst = 10
	}
	return &Server{
		source:      source,
		hub:         hub,
		boardH:      handler.NewBoardHandler(source),
		actionH:     handler.NewActionHandler(dispatcher, hub, logger.With("component", "action")),
		gate:        auth.NewPINGate(cfg.ParentPINHash),
		rateLimiter: middleware.NewRateLimiter(cfg.RateLimit, cfg.RateBurst),
		logger:      logger,
	}
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)

	// Reads
	mux.HandleFunc("GET /api/snapshot", s.boardH.Snapshot)
	mux.HandleFunc("GET /api/chronicle", s.boardH.Chronicle)
	mux.HandleFunc("GET /api/users/{user_id}/board", s.boardH.Board)

	// Board actions
	mux.HandleFunc("POST /api/users/{user_id}/quests/{quest_id}/click", s.limited(s.actionH.Click))
	mux.HandleFunc("DELETE /api/history/{id}", s.limited(s.actionH.Cancel))
	mux.HandleFunc("POST /api/users/{user_id}/rewards/{reward_id}/purchase", s.limited(s.actionH.PurchaseReward))
	mux.HandleFunc("POST /api/users/{user_id}/equipment/{equipment_id}/buy", s.limited(s.actionH.BuyEquipment))
	mux.HandleFunc("POST /api/users/{user_id}/equipment/{equipment_id}/equip", s.limited(s.actionH.ChangeEquipment))

	// Parent only
	mux.HandleFunc("POST /api/history/{id}/approve", s.parentOnly(s.actionH.Approve))
	mux.HandleFunc("POST /api/history/{id}/reject", s.parentOnly(s.actionH.Reject))
	mux.HandleFunc("PUT /api/admin/boss", s.parentOnly(s.actionH.UpdateBoss))

	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, s.logger.With("component", "websocket")))

	logged := middleware.RequestLogger(s.logger.With("component", "http"))(mux)
	return middleware.RequestID(logged)
}

type healthResponse struct {
	Status    string    `json:"status"`
	Fallback  bool      `json:"fallback"`
	FetchedAt time.Time `json:"fetched_at"`
	Displays  int       `json:"displays"`
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	snap := s.source.Current()
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Fallback:  snap.Fallback,
		FetchedAt: snap.FetchedAt,
		Displays:  s.hub.ClientCount(),
	})
}

func (s *Server) limited(h http.HandlerFunc) http.HandlerFunc {
	rl := middleware.RateLimit(s.rateLimiter, middleware.RealIP)
	wrapped := rl(h)
	return wrapped.ServeHTTP
}

// parentOnly gates h behind the parent PIN. Failed PIN attempts count
// against the rate limit too.
func (s *Server) parentOnly(h http.HandlerFunc) http.HandlerFunc {
	gated := middleware.RequireParent(s.gate, s.logger.With("component", "auth"))(h)
	return s.limited(gated.ServeHTTP)
}
