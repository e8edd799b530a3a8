package tmi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"tmibot/internal/app/adapters/metrics"
	"tmibot/internal/app/domain/events"
	"tmibot/internal/app/domain/irc"
	"tmibot/internal/app/domain/queue"
	"tmibot/internal/app/infrastructure/config"
	"tmibot/internal/app/ports"
	"tmibot/pkg/logger"
)

var (
	errAuthRejected    = errors.New("authentication rejected")
	errServerReconnect = errors.New("server requested reconnect")
	errNotConnected    = errors.New("not connected")
)

// Auth rejections arrive as plain NOTICE text rather than a numeric.
var authFailureNotices = []string{
	"Login authentication failed",
	"Improperly formatted auth",
}

// Client maintains one logical connection to the chat server: it drives the
// handshake and reconnect state machine, feeds parsed lines through the
// dispatcher to the subscriber, and owns the rate-limited sender on the
// write side.
type Client struct {
	log logger.Logger
	cfg *config.Config

	state  *connState
	sender *queue.Sender
	events chan events.Event
	errs   chan error
	dial   dialFunc

	mu        sync.Mutex
	conn      transport
	channels  map[string]struct{}
	joinTimer *time.Timer

	// writeMu serializes transport writes: the websocket allows only one
	// concurrent writer, and writes arrive from the sender, the read loop
	// and the channel management calls.
	writeMu sync.Mutex

	lastRecv  atomic.Int64
	readySeen atomic.Bool

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

func New(log logger.Logger, cfg *config.Config) (*Client, error) {
	dial, err := newWSDial(cfg)
	if err != nil {
		return nil, err
	}
	return newClient(log, cfg, dial), nil
}

func newClient(log logger.Logger, cfg *config.Config, dial dialFunc) *Client {
	ctx, cancel := context.WithCancel(context.Background())

	c := &Client{
		log:      log,
		cfg:      cfg,
		state:    newConnState(),
		events:   make(chan events.Event, 256),
		errs:     make(chan error, 1),
		dial:     dial,
		channels: make(map[string]struct{}, len(cfg.App.Channels)),
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	for _, ch := range cfg.App.Channels {
		c.channels[normalizeChannel(ch)] = struct{}{}
	}

	c.sender = queue.NewSender(log, cfg.Limits, cfg.Queue, c.transportWrite, func() bool {
		return c.state.phaseIs(ports.PhaseReady)
	})

	go c.run()

	return c
}

// Events returns the subscriber stream. Delivery order equals wire arrival
// order.
func (c *Client) Events() <-chan events.Event {
	return c.events
}

// Err reports a terminal failure, currently only repeated auth rejection.
func (c *Client) Err() <-chan error {
	return c.errs
}

// Enqueue submits a chat message under the given rate class.
func (c *Client) Enqueue(channel, text string, class queue.RateClass) error {
	return c.sender.Enqueue(normalizeChannel(channel), text, class)
}

// Status returns a snapshot of the connection state.
func (c *Client) Status() ports.ConnectionSnapshot {
	snap := c.state.snapshot()
	if ns := c.lastRecv.Load(); ns > 0 {
		snap.LastRecv = time.Unix(0, ns)
	}
	return snap
}

// AddChannel joins a channel now if connected; either way it stays in the
// set replayed on every reconnect.
func (c *Client) AddChannel(channel string) {
	ch := normalizeChannel(channel)

	c.mu.Lock()
	_, known := c.channels[ch]
	c.channels[ch] = struct{}{}
	c.mu.Unlock()

	if known {
		return
	}
	if c.state.phaseIs(ports.PhaseReady) {
		if err := c.transportWrite(irc.NewMessage("JOIN", "#"+ch)); err != nil {
			c.log.Error("Failed to join channel", err, slog.String("channel", ch))
		}
	}
}

// RemoveChannel parts a channel and drops it from the replay set.
func (c *Client) RemoveChannel(channel string) {
	ch := normalizeChannel(channel)

	c.mu.Lock()
	_, known := c.channels[ch]
	delete(c.channels, ch)
	c.mu.Unlock()

	if !known {
		return
	}
	c.state.dropJoined(ch)
	if c.state.phaseIs(ports.PhaseReady) {
		if err := c.transportWrite(irc.NewMessage("PART", "#"+ch)); err != nil {
			c.log.Error("Failed to part channel", err, slog.String("channel", ch))
		}
	}
}

// Shutdown drains pending sends within ctx, closes the transport and
// returns the requests that could not be flushed. It always wins over an
// in-progress reconnect: no new connection attempt starts afterwards.
func (c *Client) Shutdown(ctx context.Context) []queue.Request {
	c.cancel()

	cancelled := c.sender.Shutdown(ctx)

	c.closeConn()
	c.state.toClosed()
	<-c.done

	return cancelled
}

func (c *Client) run() {
	defer close(c.done)

	authFails := 0
	attempt := 0
	for {
		if c.ctx.Err() != nil {
			return
		}
		if !c.state.toConnecting() {
			return
		}

		err := c.session()
		if c.ctx.Err() != nil {
			return
		}
		if err == nil {
			err = errors.New("connection closed")
		}
		if c.readySeen.Swap(false) {
			authFails = 0
			attempt = 0
		}

		trigger := "transport"
		switch {
		case errors.Is(err, errAuthRejected):
			authFails++
			trigger = "auth"
			if authFails >= c.cfg.Connection.AuthRetries {
				c.log.Error("Giving up on authentication", err, slog.Int("attempts", authFails))
				c.closeConn()
				c.state.toClosed()
				c.errs <- fmt.Errorf("authentication rejected %d times: %w", authFails, err)
				return
			}
		case errors.Is(err, errServerReconnect):
			trigger = "server"
		}

		attempt++
		delay := backoffDelay(attempt, c.cfg.Connection.BackoffBase(), c.cfg.Connection.BackoffMax())
		if !c.state.toReconnecting(attempt, time.Now().Add(delay)) {
			return
		}
		metrics.Reconnects.WithLabelValues(trigger).Inc()
		c.emit(events.Disconnected{Reason: err.Error()})
		c.log.Warn("Connection lost, retrying",
			slog.String("error", err.Error()), slog.Int("attempt", attempt), slog.Duration("delay", delay))

		select {
		case <-c.ctx.Done():
			return
		case <-time.After(delay):
		}
	}
}

// session runs one full connection: dial, handshake, read until failure.
func (c *Client) session() error {
	conn, err := c.dial(c.ctx)
	if err != nil {
		return err
	}
	c.setConn(conn)
	defer c.stopJoinTimer()
	defer c.closeConn()

	if !c.state.toAuthenticating() {
		return errors.New("closed during connect")
	}
	if err := c.handshake(); err != nil {
		return err
	}

	for {
		lines, err := conn.ReadLines()
		if err != nil {
			return err
		}
		for _, line := range lines {
			if err := c.handleLine(line); err != nil {
				return err
			}
		}
	}
}

func (c *Client) handshake() error {
	token := strings.TrimPrefix(c.cfg.App.OAuth, "oauth:")

	for _, msg := range []*irc.Message{
		irc.NewMessage("PASS", "oauth:"+token),
		irc.NewMessage("NICK", c.login()),
		irc.NewMessage("CAP", "REQ").WithTrailing("twitch.tv/tags twitch.tv/commands twitch.tv/membership"),
	} {
		if err := c.transportWrite(msg); err != nil {
			return fmt.Errorf("handshake: %w", err)
		}
	}
	return nil
}

func (c *Client) handleLine(line []byte) error {
	metrics.LinesReceived.Inc()
	c.lastRecv.Store(time.Now().UnixNano())

	msg, err := irc.ParseLine(line)
	if err != nil {
		metrics.MalformedLines.Inc()
		c.log.Warn("Dropped unparseable line",
			slog.String("error", err.Error()), slog.String("line", string(line)))
		return nil
	}

	switch msg.Command {
	case "PING":
		// protocol-mandatory, answered ahead of any queued traffic
		pong := irc.NewMessage("PONG")
		if msg.HasTrailing {
			pong.WithTrailing(msg.Trailing)
		}
		if err := c.transportWrite(pong); err != nil {
			return err
		}

	case "001":
		c.beginJoining()

	case "JOIN":
		if msg.Prefix.Nick == c.login() {
			remaining := c.state.confirmJoin(msg.ChannelParam())
			if remaining == 0 && c.state.phaseIs(ports.PhaseJoining) {
				c.finishJoining()
			}
		}

	case "NOTICE":
		if c.state.phaseIs(ports.PhaseAuthenticating) && isAuthFailure(msg.Trailing) {
			return fmt.Errorf("%w: %s", errAuthRejected, msg.Trailing)
		}

	case "RECONNECT":
		c.emit(events.Classify(msg))
		return errServerReconnect
	}

	c.emit(events.Classify(msg))
	return nil
}

func (c *Client) beginJoining() {
	channels := c.channelList()
	if !c.state.toJoining(channels) {
		return
	}

	for _, ch := range channels {
		if err := c.transportWrite(irc.NewMessage("JOIN", "#"+ch)); err != nil {
			c.log.Error("Failed to send join", err, slog.String("channel", ch))
		}
	}

	if len(channels) == 0 {
		c.finishJoining()
		return
	}

	c.mu.Lock()
	c.joinTimer = time.AfterFunc(c.cfg.Connection.JoinTimeout(), c.joinTimedOut)
	c.mu.Unlock()
}

func (c *Client) joinTimedOut() {
	if !c.state.phaseIs(ports.PhaseJoining) {
		return
	}

	failed := c.state.abandonJoins()
	if len(failed) > 0 {
		c.log.Warn("Join confirmation timed out", slog.Any("channels", failed))
		c.emit(events.JoinFailed{Channels: failed})
	}
	c.finishJoining()
}

func (c *Client) finishJoining() {
	c.stopJoinTimer()
	if !c.state.toReady() {
		return
	}
	c.readySeen.Store(true)

	joined := c.state.snapshot().Joined
	c.log.Info("Connection ready", slog.Any("channels", joined))
	c.emit(events.Connected{Channels: joined})
	c.sender.Wake()
}

func (c *Client) emit(ev events.Event) {
	select {
	case c.events <- ev:
		metrics.EventsDelivered.WithLabelValues(events.Name(ev)).Inc()
	case <-c.ctx.Done():
	}
}

// transportWrite serializes and writes one line on the live transport.
// Every write funnels through here and holds writeMu across the call, so
// the transport never sees two writers at once.
func (c *Client) transportWrite(msg *irc.Message) error {
	data, err := msg.Serialize()
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return errNotConnected
	}

	if err := conn.WriteLine(data); err != nil {
		return err
	}
	metrics.LinesSent.Inc()
	return nil
}

// setConn installs a new transport, closing the previous one first. There
// is never more than one live transport per client.
func (c *Client) setConn(conn transport) {
	c.mu.Lock()
	prev := c.conn
	c.conn = conn
	c.mu.Unlock()

	if prev != nil {
		_ = prev.Close()
	}
}

func (c *Client) closeConn() {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}
}

func (c *Client) stopJoinTimer() {
	c.mu.Lock()
	if c.joinTimer != nil {
		c.joinTimer.Stop()
		c.joinTimer = nil
	}
	c.mu.Unlock()
}

func (c *Client) channelList() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	set := make(map[string]struct{}, len(c.channels))
	for ch := range c.channels {
		set[ch] = struct{}{}
	}
	return sortedKeys(set)
}

func (c *Client) login() string {
	return strings.ToLower(c.cfg.App.Username)
}

func normalizeChannel(channel string) string {
	return strings.ToLower(strings.TrimPrefix(channel, "#"))
}

func isAuthFailure(notice string) bool {
	for _, s := range authFailureNotices {
		if strings.Contains(notice, s) {
			return true
		}
	}
	return false
}
