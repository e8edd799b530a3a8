package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"tmibot/internal/app/domain/irc"
	"tmibot/internal/app/domain/queue"
	"tmibot/internal/app/infrastructure/config"
)

type sendRequest struct {
	Channel  string `json:"channel" binding:"required"`
	Text     string `json:"text" binding:"required"`
	Elevated bool   `json:"elevated"`
}

func (h *Handlers) SendHandler(c *gin.Context) {
	var req sendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	class := queue.Normal
	if req.Elevated {
		class = queue.Elevated
	}

	switch err := h.chat.Enqueue(req.Channel, req.Text, class); {
	case errors.Is(err, queue.ErrQueueFull):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "send queue is full"})
	case errors.Is(err, irc.ErrTooLong):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "message exceeds the line limit"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		c.Status(http.StatusAccepted)
	}
}

func (h *Handlers) JoinChannelHandler(c *gin.Context) {
	channel := normalizeChannel(c.Param("channel"))
	if channel == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "empty channel name"})
		return
	}

	h.chat.AddChannel(channel)
	if err := h.manager.Update(func(cfg *config.Config) {
		if !slices.Contains(cfg.App.Channels, channel) {
			cfg.App.Channels = append(cfg.App.Channels, channel)
		}
	}); err != nil {
		h.log.Error("Failed to persist channel", err, slog.String("channel", channel))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "channel joined but not persisted"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handlers) PartChannelHandler(c *gin.Context) {
	channel := normalizeChannel(c.Param("channel"))
	if channel == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "empty channel name"})
		return
	}

	h.chat.RemoveChannel(channel)
	if err := h.manager.Update(func(cfg *config.Config) {
		cfg.App.Channels = slices.DeleteFunc(cfg.App.Channels, func(ch string) bool {
			return normalizeChannel(ch) == channel
		})
	}); err != nil {
		h.log.Error("Failed to persist channel removal", err, slog.String("channel", channel))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "channel parted but not persisted"})
		return
	}
	c.Status(http.StatusNoContent)
}

func normalizeChannel(channel string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(channel), "#"))
}
