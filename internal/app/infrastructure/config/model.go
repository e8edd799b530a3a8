package config

import "time"

type Config struct {
	App        App        `json:"app"`
	Limits     Limits     `json:"limits"`
	Queue      Queue      `json:"queue"`
	Connection Connection `json:"connection"`
	HTTP       HTTP       `json:"http"`
	Proxy      *Proxy     `json:"proxy"`
}

type App struct {
	LogLevel string   `json:"log_level"`
	Username string   `json:"username"`
	OAuth    string   `json:"oauth"`
	Channels []string `json:"channels"`
}

// Limits holds the token bucket settings per rate class. Capacity tokens
// refill over the window; both track the server-enforced send ceilings.
type Limits struct {
	Normal   RateLimit `json:"normal"`
	Elevated RateLimit `json:"elevated"`
}

type RateLimit struct {
	Capacity   int `json:"capacity"`
	WindowSecs int `json:"window_secs"`
}

func (r RateLimit) Window() time.Duration {
	return time.Duration(r.WindowSecs) * time.Second
}

type Queue struct {
	MaxPending       int `json:"max_pending"`
	HistoryTTLSecs   int `json:"history_ttl_secs"`
	DrainTimeoutSecs int `json:"drain_timeout_secs"`
}

func (q Queue) HistoryTTL() time.Duration {
	return time.Duration(q.HistoryTTLSecs) * time.Second
}

func (q Queue) DrainTimeout() time.Duration {
	return time.Duration(q.DrainTimeoutSecs) * time.Second
}

type Connection struct {
	ServerURL           string `json:"server_url"`
	JoinTimeoutSecs     int    `json:"join_timeout_secs"`
	LivenessTimeoutSecs int    `json:"liveness_timeout_secs"`
	BackoffBaseMS       int    `json:"backoff_base_ms"`
	BackoffMaxSecs      int    `json:"backoff_max_secs"`
	AuthRetries         int    `json:"auth_retries"`
}

func (c Connection) JoinTimeout() time.Duration {
	return time.Duration(c.JoinTimeoutSecs) * time.Second
}

func (c Connection) LivenessTimeout() time.Duration {
	return time.Duration(c.LivenessTimeoutSecs) * time.Second
}

func (c Connection) BackoffBase() time.Duration {
	return time.Duration(c.BackoffBaseMS) * time.Millisecond
}

func (c Connection) BackoffMax() time.Duration {
	return time.Duration(c.BackoffMaxSecs) * time.Second
}

type HTTP struct {
	ListenAddr  string   `json:"listen_addr"`
	GinMode     string   `json:"gin_mode"`
	AuthToken   string   `json:"auth_token"`
	CertDomains []string `json:"cert_domains"`
}

type Proxy struct {
	Address string `json:"address"`
	Port    int    `json:"port"`
}
