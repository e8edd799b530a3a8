package irc

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

// Serialize encodes the message as one CRLF-terminated line. It refuses to
// produce anything over MaxLineLen rather than truncate: a cut line would
// corrupt user-visible text.
func (m *Message) Serialize() ([]byte, error) {
	if m.Command == "" {
		return nil, fmt.Errorf("%w: empty command", ErrMalformed)
	}
	if !utf8.ValidString(m.Trailing) {
		return nil, fmt.Errorf("%w: trailing is not valid utf-8", ErrEncoding)
	}

	line := m.String()
	if len(line)+2 > MaxLineLen {
		return nil, fmt.Errorf("%w: %d bytes over the %d limit", ErrTooLong, len(line)+2-MaxLineLen, MaxLineLen)
	}

	return []byte(line + "\r\n"), nil
}

// String renders the line without the CRLF terminator. Tags are emitted in
// sorted key order so output is deterministic.
func (m *Message) String() string {
	var b strings.Builder

	if len(m.Tags) > 0 {
		keys := make([]string, 0, len(m.Tags))
		for k := range m.Tags {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		b.WriteByte('@')
		for i, k := range keys {
			if i > 0 {
				b.WriteByte(';')
			}
			b.WriteString(k)
			b.WriteByte('=')
			b.WriteString(escapeTagValue(m.Tags[k]))
		}
		b.WriteByte(' ')
	}

	if !m.Prefix.IsZero() {
		b.WriteString(m.Prefix.String())
		b.WriteByte(' ')
	}

	b.WriteString(m.Command)
	for _, p := range m.Params {
		b.WriteByte(' ')
		b.WriteString(p)
	}

	if m.HasTrailing {
		b.WriteString(" :")
		b.WriteString(m.Trailing)
	}

	return b.String()
}

func escapeTagValue(v string) string {
	if !strings.ContainsAny(v, ";\\ \r\n") {
		return v
	}

	var b strings.Builder
	b.Grow(len(v) + 4)
	for i := 0; i < len(v); i++ {
		switch v[i] {
		case ';':
			b.WriteString(`\:`)
		case ' ':
			b.WriteString(`\s`)
		case '\\':
			b.WriteString(`\\`)
		case '\r':
			b.WriteString(`\r`)
		case '\n':
			b.WriteString(`\n`)
		default:
			b.WriteByte(v[i])
		}
	}
	return b.String()
}
