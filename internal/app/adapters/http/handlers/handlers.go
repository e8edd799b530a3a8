package handlers

import (
	"time"

	"tmibot/internal/app/infrastructure/config"
	"tmibot/internal/app/ports"
	"tmibot/pkg/logger"
)

type Handlers struct {
	log     logger.Logger
	manager *config.Manager
	chat    ports.ChatPort

	startedAt time.Time
}

func New(log logger.Logger, manager *config.Manager, chat ports.ChatPort) *Handlers {
	return &Handlers{
		log:       log,
		manager:   manager,
		chat:      chat,
		startedAt: time.Now(),
	}
}
