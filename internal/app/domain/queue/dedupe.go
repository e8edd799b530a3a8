package queue

// The server refuses a message identical to the previous one in the same
// channel. Repeats inside the history TTL get one of these invisible tag
// runes appended, rotating so back-to-back repeats stay distinct.
var dupSuffixes = [...]rune{'\U000E0000', '\U000E0002', '\U000E0003', '\U000E0004'}

func (s *Sender) dedupe(channel, text string) string {
	key := channel + "\x00" + text

	n, seen := s.history.Get(key)
	if !seen {
		s.history.Set(key, 0)
		return text
	}

	s.history.Set(key, n+1)

	// admission validated the unmodified text, so a repeat sitting within
	// a suffix width of the ceiling goes out unchanged rather than failing
	// at write time with the token already spent
	suffixed := text + string(dupSuffixes[n%len(dupSuffixes)])
	if _, err := buildPrivMsg(channel, suffixed).Serialize(); err != nil {
		return text
	}
	return suffixed
}
