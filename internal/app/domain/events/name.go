package events

// Name returns a stable label for an event, usable as a metric dimension.
func Name(ev Event) string {
	switch ev.(type) {
	case PrivMsg:
		return "privmsg"
	case Join:
		return "join"
	case Part:
		return "part"
	case RoomState:
		return "roomstate"
	case UserState:
		return "userstate"
	case Notice:
		return "notice"
	case ClearChat:
		return "clearchat"
	case UserNotice:
		return "usernotice"
	case Ping:
		return "ping"
	case Reconnect:
		return "reconnect"
	case Connected:
		return "connected"
	case Disconnected:
		return "disconnected"
	case JoinFailed:
		return "join_failed"
	}
	return "unknown"
}
