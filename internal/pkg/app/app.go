package app

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	router "tmibot/internal/app/adapters/http"
	"tmibot/internal/app/adapters/twitch/tmi"
	"tmibot/internal/app/domain/events"
	"tmibot/internal/app/infrastructure/config"
	"tmibot/pkg/logger"
)

const configPath = "config.json"

func New() error {
	log := logger.New()

	manager, err := config.New(configPath)
	if err != nil {
		log.Fatal("Error loading config", err)
	}

	cfg := manager.Get()
	log.SetLogLevel(cfg.App.LogLevel)
	gin.SetMode(cfg.HTTP.GinMode)

	client, err := tmi.New(logger.NewPrefixedLogger(log, "tmi"), cfg)
	if err != nil {
		log.Error("Error creating chat client", err)
		return err
	}

	go consumeEvents(log, client.Events())

	r := router.NewRouter(log, manager, client)
	go func() {
		if err := r.Run(); err != nil {
			log.Error("Admin server stopped", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	case err := <-client.Err():
		log.Error("Chat connection failed permanently", err)
	}

	drainCtx, cancel := context.WithTimeout(context.Background(), cfg.Queue.DrainTimeout())
	defer cancel()

	cancelled := client.Shutdown(drainCtx)
	if len(cancelled) > 0 {
		log.Warn("Dropped queued messages on shutdown", slog.Int("count", len(cancelled)))
	}
	return nil
}

// consumeEvents drains the subscriber stream. The command layer plugs in
// here; until then the stream is logged so the channel never backs up.
func consumeEvents(log logger.Logger, stream <-chan events.Event) {
	for ev := range stream {
		switch e := ev.(type) {
		case events.PrivMsg:
			log.Debug("Chat message",
				slog.String("channel", e.Channel), slog.String("login", e.Login), slog.String("text", e.Text))
		case events.Notice:
			log.Info("Server notice", slog.String("channel", e.Channel), slog.String("text", e.Text))
		case events.ClearChat:
			log.Info("Moderation action",
				slog.String("channel", e.Channel), slog.String("target", e.TargetLogin))
		case events.Connected:
			log.Info("Joined channels", slog.Any("channels", e.Channels))
		case events.JoinFailed:
			log.Warn("Channels not joined", slog.Any("channels", e.Channels))
		case events.Disconnected:
			log.Warn("Disconnected", slog.String("reason", e.Reason))
		}
	}
}
