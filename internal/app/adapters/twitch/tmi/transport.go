package tmi

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/net/proxy"

	"tmibot/internal/app/infrastructure/config"
)

// transport is one live connection to the chat server. A read returns the
// complete lines of one frame; an expired liveness deadline surfaces as a
// read error, which the caller treats like any transport failure.
type transport interface {
	ReadLines() ([][]byte, error)
	WriteLine(line []byte) error
	Close() error
}

type dialFunc func(ctx context.Context) (transport, error)

type wsTransport struct {
	conn        *websocket.Conn
	readTimeout time.Duration
}

func newWSDial(cfg *config.Config) (dialFunc, error) {
	dialer := &websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
		TLSClientConfig:  &tls.Config{MinVersion: tls.VersionTLS12},
	}

	if cfg.Proxy != nil && cfg.Proxy.Address != "" {
		socks, err := proxy.SOCKS5("tcp", fmt.Sprintf("%s:%d", cfg.Proxy.Address, cfg.Proxy.Port), nil, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("socks5 proxy: %w", err)
		}
		dialer.NetDialContext = func(_ context.Context, network, addr string) (net.Conn, error) {
			return socks.Dial(network, addr)
		}
	}

	url := cfg.Connection.ServerURL
	readTimeout := cfg.Connection.LivenessTimeout()

	return func(ctx context.Context) (transport, error) {
		conn, _, err := dialer.DialContext(ctx, url, nil)
		if err != nil {
			return nil, fmt.Errorf("websocket dial %s: %w", url, err)
		}
		return &wsTransport{conn: conn, readTimeout: readTimeout}, nil
	}, nil
}

func (w *wsTransport) ReadLines() ([][]byte, error) {
	if w.readTimeout > 0 {
		_ = w.conn.SetReadDeadline(time.Now().Add(w.readTimeout))
	}

	_, data, err := w.conn.ReadMessage()
	if err != nil {
		return nil, err
	}

	var lines [][]byte
	for _, raw := range bytes.Split(data, []byte("\r\n")) {
		if len(raw) > 0 {
			lines = append(lines, raw)
		}
	}
	return lines, nil
}

func (w *wsTransport) WriteLine(line []byte) error {
	return w.conn.WriteMessage(websocket.TextMessage, line)
}

func (w *wsTransport) Close() error {
	return w.conn.Close()
}
