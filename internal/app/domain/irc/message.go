package irc

import (
	"errors"
	"strings"
)

// MaxLineLen is the hard ceiling for a single encoded line, CRLF included.
const MaxLineLen = 4096

var (
	ErrMalformed = errors.New("malformed irc line")
	ErrTooLong   = errors.New("irc line too long")
	ErrEncoding  = errors.New("invalid encoding")
)

// Prefix is the optional sender part of a line. Three wire shapes exist:
// nick!user@host, user@host and a bare host. Empty fields select the shape.
type Prefix struct {
	Nick string
	User string
	Host string
}

func (p Prefix) IsZero() bool {
	return p.Nick == "" && p.User == "" && p.Host == ""
}

func (p Prefix) String() string {
	switch {
	case p.Nick != "":
		return ":" + p.Nick + "!" + p.User + "@" + p.Host
	case p.User != "":
		return ":" + p.User + "@" + p.Host
	case p.Host != "":
		return ":" + p.Host
	}
	return ""
}

// Message is one parsed protocol line. Command is never empty; a line without
// a command token is a parse error, not a zero-value Message.
type Message struct {
	Tags        map[string]string
	Prefix      Prefix
	Command     string
	Params      []string
	Trailing    string
	HasTrailing bool
}

func NewMessage(command string, params ...string) *Message {
	return &Message{Command: command, Params: params}
}

func (m *Message) WithTag(key, value string) *Message {
	if m.Tags == nil {
		m.Tags = make(map[string]string)
	}
	m.Tags[key] = value
	return m
}

func (m *Message) WithPrefix(p Prefix) *Message {
	m.Prefix = p
	return m
}

func (m *Message) WithTrailing(trailing string) *Message {
	m.Trailing = trailing
	m.HasTrailing = true
	return m
}

// TagValue returns the unescaped value of a tag, or "" if the tag is absent
// or carries no value.
func (m *Message) TagValue(key string) string {
	return m.Tags[key]
}

// ChannelParam returns the first parameter without its leading '#'.
func (m *Message) ChannelParam() string {
	if len(m.Params) == 0 {
		return ""
	}
	return strings.TrimPrefix(m.Params[0], "#")
}
