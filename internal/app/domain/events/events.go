package events

import (
	"tmibot/internal/app/domain/irc"
)

// Event is the closed set of things the client reports to its subscriber.
// Every recognized protocol command has a variant; anything else arrives as
// Unknown with the original message attached.
type Event interface {
	isEvent()
}

// PrivMsg is one chat message in a channel.
type PrivMsg struct {
	Channel     string
	MessageID   string
	RoomID      string
	UserID      string
	Login       string
	DisplayName string
	Text        string

	IsFirst       bool
	IsMod         bool
	IsVIP         bool
	IsSubscriber  bool
	IsBroadcaster bool

	Tags map[string]string
}

// Join reports a user entering a channel.
type Join struct {
	Channel string
	Login   string
}

// Part reports a user leaving a channel.
type Part struct {
	Channel string
	Login   string
}

// RoomState carries the channel mode tags (slow, emote-only, ...).
type RoomState struct {
	Channel string
	Tags    map[string]string
}

// UserState reports the client's own state in a channel. The badge set lets
// the caller decide the rate class for subsequent sends; the client itself
// never acts on it.
type UserState struct {
	Channel string
	IsMod   bool
	Badges  []string
	Tags    map[string]string
}

// Notice is a server-issued informational message.
type Notice struct {
	Channel string
	MsgID   string
	Text    string
}

// ClearChat reports a chat clear, ban or timeout. TargetLogin is empty when
// the whole chat was cleared; BanDuration is zero for permanent bans.
type ClearChat struct {
	Channel     string
	TargetLogin string
	BanDuration int
}

// UserNotice covers subs, raids and similar announcements.
type UserNotice struct {
	Channel string
	MsgID   string
	Login   string
	Text    string
	Tags    map[string]string
}

// Ping is a server keepalive probe; the client answers it itself and also
// delivers it for observability.
type Ping struct {
	Payload string
}

// Reconnect is a server-requested reconnect. The client honors it on its
// own; the event is delivered so the caller sees the transition coming.
type Reconnect struct{}

// Unknown wraps a command with no typed variant.
type Unknown struct {
	Msg *irc.Message
}

// Connected is synthetic: the connection reached Ready with these channels.
type Connected struct {
	Channels []string
}

// Disconnected is synthetic: the transport dropped and a reconnect is pending.
type Disconnected struct {
	Reason string
}

// JoinFailed is synthetic: these channels did not confirm within the join
// timeout. They stay configured and are retried on the next reconnect.
type JoinFailed struct {
	Channels []string
}

func (PrivMsg) isEvent()      {}
func (Join) isEvent()         {}
func (Part) isEvent()         {}
func (RoomState) isEvent()    {}
func (UserState) isEvent()    {}
func (Notice) isEvent()       {}
func (ClearChat) isEvent()    {}
func (UserNotice) isEvent()   {}
func (Ping) isEvent()         {}
func (Reconnect) isEvent()    {}
func (Unknown) isEvent()      {}
func (Connected) isEvent()    {}
func (Disconnected) isEvent() {}
func (JoinFailed) isEvent()   {}
