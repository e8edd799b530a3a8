package config

func (m *Manager) GetDefault() *Config {
	return &Config{
		App: App{
			LogLevel: "info",
			Username: "",
			OAuth:    "",
			Channels: []string{},
		},
		Limits: Limits{
			// TMI ceilings: 20 messages per 30s for plain users,
			// 100 per 30s with moderator or broadcaster status.
			Normal:   RateLimit{Capacity: 20, WindowSecs: 30},
			Elevated: RateLimit{Capacity: 100, WindowSecs: 30},
		},
		Queue: Queue{
			MaxPending:       256,
			HistoryTTLSecs:   30,
			DrainTimeoutSecs: 10,
		},
		Connection: Connection{
			ServerURL:           "wss://irc-ws.chat.twitch.tv:443",
			JoinTimeoutSecs:     10,
			LivenessTimeoutSecs: 300,
			BackoffBaseMS:       1000,
			BackoffMaxSecs:      120,
			AuthRetries:         3,
		},
		HTTP: HTTP{
			ListenAddr: ":8080",
			GinMode:    "release",
			AuthToken:  "",
		},
	}
}
