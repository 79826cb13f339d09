package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mmtigers/questboard/internal/api"
	"github.com/mmtigers/questboard/internal/auth"
	"github.com/mmtigers/questboard/internal/config"
	"github.com/mmtigers/questboard/internal/database"
	"github.com/mmtigers/questboard/internal/dispatch"
	"github.com/mmtigers/questboard/internal/logging"
	"github.com/mmtigers/questboard/internal/model"
	"github.com/mmtigers/questboard/internal/server"
	"github.com/mmtigers/questboard/internal/snapshot"
	"github.com/mmtigers/questboard/internal/store"
	ws "github.com/mmtigers/questboard/internal/websocket"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "hash-pin" {
		os.Exit(hashPIN(os.Args[2:]))
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := logging.Setup(cfg.LogLevel)

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	client := api.NewClient(api.Config{
		BaseURL: cfg.APIBaseURL,
		Token:   cfg.APIToken,
		Timeout: cfg.APITimeout,
	})

	hub := ws.NewHub(logger.With("component", "websocket"))

	poller := snapshot.NewPoller(client, store.NewSnapshotStore(db), snapshot.Options{
		Interval: cfg.PollInterval,
		Logger:   logger.With("component", "poller"),
		OnUpdate: func(s model.Snapshot) {
			hub.Broadcast(ws.NewMessage(ws.TypeSnapshotRefreshed, "", 0, nil))
		},
		OnChronicle: func(c model.Chronicle) {
			hub.Broadcast(ws.NewMessage(ws.TypeChronicleUpdated, "", 0, nil))
		},
	})

	dispatcher := dispatch.New(client, poller, logger)

	srv := server.New(poller, dispatcher, hub, server.Config{
		ParentPINHash: cfg.ParentPINHash,
		RateLimit:     cfg.RateLimit,
		RateBurst:     cfg.RateBurst,
	}, logger)

	if cfg.ParentPINHash == "" {
		logger.Warn("parent PIN not configured; approvals are open to everyone on the network")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	poller.Start(ctx)
	defer poller.Stop()

	if snap := poller.Current(); snap.Fallback {
		logger.Warn("game server unreachable; showing built-in quests", "api", cfg.APIBaseURL)
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.APITimeout + 10*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Background cleanup goroutine
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				srv.RateLimiter().Cleanup(30 * time.Minute)
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		slog.Info("questboard starting", "addr", ":"+cfg.Port, "api", cfg.APIBaseURL, "poll", cfg.PollInterval)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}

func hashPIN(args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: questboard hash-pin <pin>")
		return 2
	}
	h, err := auth.HashPIN(args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println(h)
	return 0
}
