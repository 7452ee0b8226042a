package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	app "github.com/scotow/buzzer/internal/app"
	httpx "github.com/scotow/buzzer/internal/http"
	store "github.com/scotow/buzzer/internal/store"
	ws "github.com/scotow/buzzer/internal/ws"
)

func main() {
	// Load local .env (dev only)
	_ = godotenv.Load()

	cfg, err := app.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}
	logger := app.NewLogger(cfg.Env, cfg.LogLevel)

	// Cancel on SIGINT/SIGTERM
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Optional journal sinks
	var sinks []ws.EventSink
	if cfg.PGURL != "" {
		pg, err := store.NewPostgres(ctx, cfg, logger)
		if err != nil {
			logger.Error("postgres connect", "err", err)
			log.Fatal(err)
		}
		defer pg.Close()
		if err := store.RunMigrations(ctx, pg, logger); err != nil {
			logger.Error("migrations", "err", err)
			log.Fatal(err)
		}
		sinks = append(sinks, pg)
	}
	if cfg.RedisAddr != "" {
		bus, err := ws.NewRedisBus(ctx, cfg, logger)
		if err != nil {
			logger.Error("redis connect", "err", err)
			log.Fatal(err)
		}
		defer bus.Close()
		sinks = append(sinks, bus)
	}

	var journal *ws.Journal
	if len(sinks) > 0 {
		journal = ws.NewJournal(logger, cfg.JournalSize, sinks...)
		go journal.Run(ctx)
	}

	registry := ws.NewRegistry(logger, journal, ws.Options{
		ReservationTTL:    cfg.ReservationTTL,
		MinRoomNameLength: cfg.RoomNameMinLength,
		MinUsernameLength: cfg.UsernameMinLength,
		MailboxSize:       cfg.MailboxSize,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpx.NewRouter(cfg, logger, registry),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server
	go func() {
		logger.Info("server.listening", "addr", cfg.HTTPAddr, "version", app.Version)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server.crash", "err", err)
			cancel()
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	logger.Info("server.shutdown.start")

	// Hijacked websockets are not tracked by Shutdown; close the rooms explicitly
	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	_ = srv.Shutdown(shutdownCtx)
	if err := registry.Close(shutdownCtx); err != nil {
		logger.Warn("registry.close", "err", err)
	}

	logger.Info("server.shutdown.complete")
	_ = os.Stdout.Sync()
}
