package events

import (
	"strconv"
	"strings"

	"tmibot/internal/app/domain/irc"
)

var classifiers = map[string]func(*irc.Message) Event{
	"PRIVMSG":    classifyPrivMsg,
	"JOIN":       classifyJoin,
	"PART":       classifyPart,
	"ROOMSTATE":  classifyRoomState,
	"USERSTATE":  classifyUserState,
	"NOTICE":     classifyNotice,
	"CLEARCHAT":  classifyClearChat,
	"USERNOTICE": classifyUserNotice,
	"PING":       classifyPing,
	"RECONNECT":  func(*irc.Message) Event { return Reconnect{} },
}

// Classify maps a parsed message onto its typed event. It is total: every
// command resolves, unrecognized ones to Unknown.
func Classify(msg *irc.Message) Event {
	if classify, ok := classifiers[msg.Command]; ok {
		return classify(msg)
	}
	return Unknown{Msg: msg}
}

func classifyPrivMsg(msg *irc.Message) Event {
	ev := PrivMsg{
		Channel:     msg.ChannelParam(),
		MessageID:   msg.TagValue("id"),
		RoomID:      msg.TagValue("room-id"),
		UserID:      msg.TagValue("user-id"),
		Login:       msg.Prefix.Nick,
		DisplayName: msg.TagValue("display-name"),
		Text:        msg.Trailing,
		IsFirst:     msg.TagValue("first-msg") == "1",
		IsMod:       msg.TagValue("mod") == "1",
		Tags:        msg.Tags,
	}

	for _, badge := range parseBadges(msg.TagValue("badges")) {
		switch {
		case strings.HasPrefix(badge, "broadcaster"):
			ev.IsBroadcaster = true
		case strings.HasPrefix(badge, "moderator"):
			ev.IsMod = true
		case strings.HasPrefix(badge, "vip"):
			ev.IsVIP = true
		case strings.HasPrefix(badge, "subscriber"):
			ev.IsSubscriber = true
		}
	}

	return ev
}

func classifyJoin(msg *irc.Message) Event {
	return Join{Channel: msg.ChannelParam(), Login: msg.Prefix.Nick}
}

func classifyPart(msg *irc.Message) Event {
	return Part{Channel: msg.ChannelParam(), Login: msg.Prefix.Nick}
}

func classifyRoomState(msg *irc.Message) Event {
	return RoomState{Channel: msg.ChannelParam(), Tags: msg.Tags}
}

func classifyUserState(msg *irc.Message) Event {
	badges := parseBadges(msg.TagValue("badges"))

	isMod := msg.TagValue("mod") == "1"
	for _, badge := range badges {
		if strings.HasPrefix(badge, "moderator") || strings.HasPrefix(badge, "broadcaster") {
			isMod = true
		}
	}

	return UserState{
		Channel: msg.ChannelParam(),
		IsMod:   isMod,
		Badges:  badges,
		Tags:    msg.Tags,
	}
}

func classifyNotice(msg *irc.Message) Event {
	return Notice{
		Channel: msg.ChannelParam(),
		MsgID:   msg.TagValue("msg-id"),
		Text:    msg.Trailing,
	}
}

func classifyClearChat(msg *irc.Message) Event {
	duration, _ := strconv.Atoi(msg.TagValue("ban-duration"))
	return ClearChat{
		Channel:     msg.ChannelParam(),
		TargetLogin: msg.Trailing,
		BanDuration: duration,
	}
}

func classifyUserNotice(msg *irc.Message) Event {
	return UserNotice{
		Channel: msg.ChannelParam(),
		MsgID:   msg.TagValue("msg-id"),
		Login:   msg.TagValue("login"),
		Text:    msg.Trailing,
		Tags:    msg.Tags,
	}
}

func classifyPing(msg *irc.Message) Event {
	return Ping{Payload: msg.Trailing}
}

func parseBadges(raw string) []string {
	if raw == "" {
		return nil
	}
	return strings.Split(raw, ",")
}
