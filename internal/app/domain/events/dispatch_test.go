package events_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tmibot/internal/app/domain/events"
	"tmibot/internal/app/domain/irc"
)

func classify(t *testing.T, line string) events.Event {
	t.Helper()

	msg, err := irc.ParseLine([]byte(line))
	require.NoError(t, err)
	return events.Classify(msg)
}

func TestClassifyPrivMsg(t *testing.T) {
	t.Parallel()

	ev := classify(t, "@badges=moderator/1,subscriber/12;display-name=Some1;first-msg=0;id=abc-123;mod=1;room-id=99;user-id=42 :some1!some1@some1.tmi.twitch.tv PRIVMSG #test :hello world")

	pm, ok := ev.(events.PrivMsg)
	require.True(t, ok, "expected PrivMsg, got %T", ev)

	assert.Equal(t, "test", pm.Channel)
	assert.Equal(t, "abc-123", pm.MessageID)
	assert.Equal(t, "42", pm.UserID)
	assert.Equal(t, "99", pm.RoomID)
	assert.Equal(t, "some1", pm.Login)
	assert.Equal(t, "Some1", pm.DisplayName)
	assert.Equal(t, "hello world", pm.Text)
	assert.True(t, pm.IsMod)
	assert.True(t, pm.IsSubscriber)
	assert.False(t, pm.IsVIP)
	assert.False(t, pm.IsFirst)
}

func TestClassifyKnownCommands(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		line string
		want any
	}{
		{"join", ":nick!nick@nick.tmi.twitch.tv JOIN #chan", events.Join{Channel: "chan", Login: "nick"}},
		{"part", ":nick!nick@nick.tmi.twitch.tv PART #chan", events.Part{Channel: "chan", Login: "nick"}},
		{"ping", "PING :tmi.twitch.tv", events.Ping{Payload: "tmi.twitch.tv"}},
		{"reconnect", ":tmi.twitch.tv RECONNECT", events.Reconnect{}},
		{
			"notice",
			"@msg-id=msg_ratelimit :tmi.twitch.tv NOTICE #chan :Your message was not sent because you are sending messages too quickly.",
			events.Notice{Channel: "chan", MsgID: "msg_ratelimit", Text: "Your message was not sent because you are sending messages too quickly."},
		},
		{
			"clearchat timeout",
			"@ban-duration=600 :tmi.twitch.tv CLEARCHAT #chan :baduser",
			events.ClearChat{Channel: "chan", TargetLogin: "baduser", BanDuration: 600},
		},
		{
			"clearchat full",
			":tmi.twitch.tv CLEARCHAT #chan",
			events.ClearChat{Channel: "chan"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, classify(t, tt.line))
		})
	}
}

func TestClassifyUserStateModerator(t *testing.T) {
	t.Parallel()

	ev := classify(t, "@badges=moderator/1;mod=1 :tmi.twitch.tv USERSTATE #chan")

	us, ok := ev.(events.UserState)
	require.True(t, ok, "expected UserState, got %T", ev)
	assert.True(t, us.IsMod)
	assert.Equal(t, "chan", us.Channel)
	assert.Equal(t, []string{"moderator/1"}, us.Badges)
}

func TestClassifyUnknownKeepsMessage(t *testing.T) {
	t.Parallel()

	msg, err := irc.ParseLine([]byte(":tmi.twitch.tv 366 nick #chan :End of /NAMES list"))
	require.NoError(t, err)

	ev := events.Classify(msg)
	unknown, ok := ev.(events.Unknown)
	require.True(t, ok, "expected Unknown, got %T", ev)
	assert.Same(t, msg, unknown.Msg)
}

func TestClassifyIsTotal(t *testing.T) {
	t.Parallel()

	for _, cmd := range []string{"001", "002", "CAP", "GLOBALUSERSTATE", "WHISPER", "366", "utter-nonsense"} {
		msg := irc.NewMessage(cmd, "#chan")
		assert.NotNil(t, events.Classify(msg), "command %s", cmd)
	}
}
