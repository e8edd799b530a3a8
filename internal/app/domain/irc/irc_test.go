package irc_test

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"tmibot/internal/app/domain/irc"
)

func TestParseLine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		line string
		want irc.Message
	}{
		{
			name: "command with arg",
			line: "CAP LS",
			want: irc.Message{Command: "CAP", Params: []string{"LS"}},
		},
		{
			name: "host prefix",
			line: ":tmi.twitch.tv CAP LS",
			want: irc.Message{Prefix: irc.Prefix{Host: "tmi.twitch.tv"}, Command: "CAP", Params: []string{"LS"}},
		},
		{
			name: "full prefix",
			line: ":nick!user@host.com PRIVMSG #chan :hi",
			want: irc.Message{
				Prefix:      irc.Prefix{Nick: "nick", User: "user", Host: "host.com"},
				Command:     "PRIVMSG",
				Params:      []string{"#chan"},
				Trailing:    "hi",
				HasTrailing: true,
			},
		},
		{
			name: "user host prefix",
			line: ":user@host.com CAP LS",
			want: irc.Message{Prefix: irc.Prefix{User: "user", Host: "host.com"}, Command: "CAP", Params: []string{"LS"}},
		},
		{
			name: "tags with and without values",
			line: "@a=a_value;b;c=c_value :host.com CAP LS",
			want: irc.Message{
				Tags:    map[string]string{"a": "a_value", "b": "", "c": "c_value"},
				Prefix:  irc.Prefix{Host: "host.com"},
				Command: "CAP",
				Params:  []string{"LS"},
			},
		},
		{
			name: "escaped tag value",
			line: `@msg=hello\sworld\:\\end PING`,
			want: irc.Message{
				Tags:    map[string]string{"msg": `hello world;\end`},
				Command: "PING",
			},
		},
		{
			name: "trailing with spaces",
			line: ":host.com PRIVMSG #chan :some longer text here",
			want: irc.Message{
				Prefix:      irc.Prefix{Host: "host.com"},
				Command:     "PRIVMSG",
				Params:      []string{"#chan"},
				Trailing:    "some longer text here",
				HasTrailing: true,
			},
		},
		{
			name: "empty trailing",
			line: "PING :",
			want: irc.Message{Command: "PING", Trailing: "", HasTrailing: true},
		},
		{
			name: "crlf stripped",
			line: "PING :tmi.twitch.tv\r\n",
			want: irc.Message{Command: "PING", Trailing: "tmi.twitch.tv", HasTrailing: true},
		},
		{
			name: "repeated spaces between params",
			line: "CMD  a   b",
			want: irc.Message{Command: "CMD", Params: []string{"a", "b"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := irc.ParseLine([]byte(tt.line))
			if err != nil {
				t.Fatalf("ParseLine(%q) failed: %v", tt.line, err)
			}
			if !reflect.DeepEqual(*got, tt.want) {
				t.Errorf("ParseLine(%q) = %+v, want %+v", tt.line, *got, tt.want)
			}
		})
	}
}

func TestParseLineErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		line    []byte
		wantErr error
	}{
		{"empty", []byte(""), irc.ErrMalformed},
		{"only crlf", []byte("\r\n"), irc.ErrMalformed},
		{"tags without command", []byte("@a=b"), irc.ErrMalformed},
		{"prefix without command", []byte(":host.com"), irc.ErrMalformed},
		{"tags and prefix only", []byte("@a=b :host.com "), irc.ErrMalformed},
		{"spaces only", []byte("   "), irc.ErrMalformed},
		{"colon-initial command", []byte(":prefix :trailing"), irc.ErrMalformed},
		{"invalid utf-8", []byte{'P', 'I', 0xff, 0xfe, 'G'}, irc.ErrEncoding},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := irc.ParseLine(tt.line)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ParseLine(%q) error = %v, want %v", tt.line, err, tt.wantErr)
			}
		})
	}
}

func TestSerializeBuilder(t *testing.T) {
	t.Parallel()

	msg := irc.NewMessage("CAP", "arg1", "arg2").
		WithTrailing("message").
		WithPrefix(irc.Prefix{Host: "tmi.twitch.tv"}).
		WithTag("color", "blue")

	if got, want := msg.String(), "@color=blue :tmi.twitch.tv CAP arg1 arg2 :message"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	lines := []string{
		"PING :tmi.twitch.tv",
		":nick!user@host.com PRIVMSG #chan :hello there",
		"@badge-info=;badges=moderator/1;color=#FF0000;display-name=Some1;mod=1 :some1!some1@some1.tmi.twitch.tv PRIVMSG #test :!cmd arg",
		"@emote-only=0;followers-only=-1;r9k=0;slow=0 :tmi.twitch.tv ROOMSTATE #test",
		"CAP LS",
	}

	for _, line := range lines {
		first, err := irc.ParseLine([]byte(line))
		if err != nil {
			t.Fatalf("ParseLine(%q) failed: %v", line, err)
		}

		encoded, err := first.Serialize()
		if err != nil {
			t.Fatalf("Serialize of %q failed: %v", line, err)
		}
		if !strings.HasSuffix(string(encoded), "\r\n") {
			t.Errorf("Serialize of %q is not CRLF-terminated", line)
		}

		second, err := irc.ParseLine(encoded)
		if err != nil {
			t.Fatalf("reparse of %q failed: %v", encoded, err)
		}
		if !reflect.DeepEqual(first, second) {
			t.Errorf("round trip of %q: %+v != %+v", line, first, second)
		}
	}
}

func TestTagEscapingRoundTrip(t *testing.T) {
	t.Parallel()

	values := []string{
		"plain",
		"with space",
		"semi;colon",
		`back\slash`,
		`trailing\`,
		"\r\n",
		`\s literal escape ; mixed \`,
		"",
	}

	for _, v := range values {
		msg := irc.NewMessage("PING").WithTag("k", v)

		encoded, err := msg.Serialize()
		if err != nil {
			t.Fatalf("Serialize with tag %q failed: %v", v, err)
		}

		parsed, err := irc.ParseLine(encoded)
		if err != nil {
			t.Fatalf("reparse with tag %q failed: %v", v, err)
		}
		if got := parsed.TagValue("k"); got != v {
			t.Errorf("tag value %q round-tripped to %q (wire: %q)", v, got, encoded)
		}
	}
}

func TestSerializeRejectsOversize(t *testing.T) {
	t.Parallel()

	msg := irc.NewMessage("PRIVMSG", "#chan").WithTrailing(strings.Repeat("a", irc.MaxLineLen))
	if _, err := msg.Serialize(); !errors.Is(err, irc.ErrTooLong) {
		t.Errorf("Serialize error = %v, want %v", err, irc.ErrTooLong)
	}

	// one byte under the ceiling must pass
	fit := irc.MaxLineLen - 2 - len("PRIVMSG #chan :")
	msg = irc.NewMessage("PRIVMSG", "#chan").WithTrailing(strings.Repeat("a", fit))
	if _, err := msg.Serialize(); err != nil {
		t.Errorf("Serialize at the limit failed: %v", err)
	}
}

func TestSerializeRejectsEmptyCommand(t *testing.T) {
	t.Parallel()

	msg := &irc.Message{}
	if _, err := msg.Serialize(); !errors.Is(err, irc.ErrMalformed) {
		t.Errorf("Serialize error = %v, want %v", err, irc.ErrMalformed)
	}
}

func TestChannelParam(t *testing.T) {
	t.Parallel()

	msg := irc.NewMessage("PRIVMSG", "#somechannel")
	if got := msg.ChannelParam(); got != "somechannel" {
		t.Errorf("ChannelParam() = %q, want %q", got, "somechannel")
	}

	if got := irc.NewMessage("PING").ChannelParam(); got != "" {
		t.Errorf("ChannelParam() on no params = %q, want empty", got)
	}
}
