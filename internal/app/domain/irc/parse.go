package irc

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// ParseLine parses one raw protocol line into a Message. The trailing CRLF
// may be present or already stripped. The input is untrusted network text:
// any shape of garbage must come back as an error, never a panic.
func ParseLine(line []byte) (*Message, error) {
	if !utf8.Valid(line) {
		return nil, fmt.Errorf("%w: line is not valid utf-8", ErrEncoding)
	}

	raw := strings.TrimRight(string(line), "\r\n")
	if raw == "" {
		return nil, fmt.Errorf("%w: empty line", ErrMalformed)
	}

	msg := &Message{}

	if raw[0] == '@' {
		sp := strings.IndexByte(raw, ' ')
		if sp == -1 {
			return nil, fmt.Errorf("%w: unexpected end of input after tags", ErrMalformed)
		}
		msg.Tags = parseTags(raw[1:sp])
		raw = raw[sp+1:]
	}

	if raw != "" && raw[0] == ':' {
		sp := strings.IndexByte(raw, ' ')
		if sp == -1 {
			return nil, fmt.Errorf("%w: unexpected end of input after prefix", ErrMalformed)
		}
		msg.Prefix = parsePrefix(raw[1:sp])
		raw = raw[sp+1:]
	}

	if idx := strings.Index(raw, " :"); idx != -1 {
		msg.Trailing = raw[idx+2:]
		msg.HasTrailing = true
		raw = raw[:idx]
	}

	for _, token := range strings.Split(raw, " ") {
		if token == "" {
			continue
		}
		if msg.Command == "" {
			msg.Command = token
			continue
		}
		msg.Params = append(msg.Params, token)
	}

	if msg.Command == "" {
		return nil, fmt.Errorf("%w: command token expected", ErrMalformed)
	}
	if msg.Command[0] == ':' {
		return nil, fmt.Errorf("%w: command token starts with ':'", ErrMalformed)
	}

	return msg, nil
}

func parseTags(rawTags string) map[string]string {
	tags := make(map[string]string)
	for start := 0; start <= len(rawTags); {
		end := strings.IndexByte(rawTags[start:], ';')
		if end == -1 {
			end = len(rawTags)
		} else {
			end += start
		}

		if pair := rawTags[start:end]; pair != "" {
			if eq := strings.IndexByte(pair, '='); eq != -1 {
				tags[pair[:eq]] = unescapeTagValue(pair[eq+1:])
			} else {
				tags[pair] = ""
			}
		}
		start = end + 1
	}
	return tags
}

// parsePrefix splits a prefix into its components. The host is whatever
// follows the last '@'; a '!' before it separates nick from user.
func parsePrefix(prefix string) Prefix {
	at := strings.LastIndexByte(prefix, '@')
	if at == -1 {
		return Prefix{Host: prefix}
	}

	host := prefix[at+1:]
	rest := prefix[:at]

	if bang := strings.LastIndexByte(rest, '!'); bang != -1 {
		return Prefix{Nick: rest[:bang], User: rest[bang+1:], Host: host}
	}
	return Prefix{User: rest, Host: host}
}

// unescapeTagValue reverses the IRCv3 tag value escaping. An unknown escape
// keeps the escaped character, a lone trailing backslash is dropped.
func unescapeTagValue(v string) string {
	if !strings.ContainsRune(v, '\\') {
		return v
	}

	var b strings.Builder
	b.Grow(len(v))
	for i := 0; i < len(v); i++ {
		if v[i] != '\\' {
			b.WriteByte(v[i])
			continue
		}
		i++
		if i == len(v) {
			break
		}
		switch v[i] {
		case ':':
			b.WriteByte(';')
		case 's':
			b.WriteByte(' ')
		case '\\':
			b.WriteByte('\\')
		case 'r':
			b.WriteByte('\r')
		case 'n':
			b.WriteByte('\n')
		default:
			b.WriteByte(v[i])
		}
	}
	return b.String()
}
