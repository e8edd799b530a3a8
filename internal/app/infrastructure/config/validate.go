package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

func (m *Manager) validate(cfg *Config) error {
	if cfg.App.Username == "" {
		return errors.New("app.username is required")
	}
	if cfg.App.OAuth == "" {
		return errors.New("app.oauth is required")
	}
	if len(cfg.App.Channels) == 0 {
		return errors.New("app.channels must list at least one channel")
	}
	for _, ch := range cfg.App.Channels {
		if strings.ContainsAny(ch, " ,\r\n") {
			return fmt.Errorf("app.channels: invalid channel name %q", ch)
		}
	}

	for name, l := range map[string]RateLimit{"normal": cfg.Limits.Normal, "elevated": cfg.Limits.Elevated} {
		if l.Capacity <= 0 {
			return fmt.Errorf("limits.%s.capacity must be positive", name)
		}
		if l.WindowSecs <= 0 {
			return fmt.Errorf("limits.%s.window_secs must be positive", name)
		}
	}

	if cfg.Queue.MaxPending <= 0 {
		return errors.New("queue.max_pending must be positive")
	}

	u, err := url.Parse(cfg.Connection.ServerURL)
	if err != nil || (u.Scheme != "ws" && u.Scheme != "wss") {
		return fmt.Errorf("connection.server_url must be a ws:// or wss:// url, got %q", cfg.Connection.ServerURL)
	}
	if cfg.Connection.BackoffBaseMS <= 0 || cfg.Connection.BackoffMaxSecs <= 0 {
		return errors.New("connection backoff settings must be positive")
	}
	if cfg.Connection.AuthRetries <= 0 {
		return errors.New("connection.auth_retries must be positive")
	}

	if cfg.Proxy != nil && (cfg.Proxy.Address == "" || cfg.Proxy.Port <= 0) {
		return errors.New("proxy requires both address and port")
	}

	return nil
}
