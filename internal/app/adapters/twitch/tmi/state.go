package tmi

import (
	"sort"
	"sync"
	"time"

	"tmibot/internal/app/adapters/metrics"
	"tmibot/internal/app/ports"
)

// connState is the single owner of the connection lifecycle. Every
// transition happens under the mutex, so readers never observe a
// half-applied state. Closed is terminal: all transitions refuse it.
type connState struct {
	mu        sync.Mutex
	phase     ports.Phase
	awaiting  map[string]struct{}
	joined    map[string]struct{}
	attempt   int
	nextRetry time.Time
}

func newConnState() *connState {
	return &connState{
		phase:    ports.PhaseDisconnected,
		awaiting: make(map[string]struct{}),
		joined:   make(map[string]struct{}),
	}
}

func (s *connState) snapshot() ports.ConnectionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return ports.ConnectionSnapshot{
		Phase:     s.phase,
		Joining:   sortedKeys(s.awaiting),
		Joined:    sortedKeys(s.joined),
		Attempt:   s.attempt,
		NextRetry: s.nextRetry,
	}
}

func (s *connState) phaseIs(p ports.Phase) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase == p
}

func (s *connState) toConnecting() bool {
	return s.transition(ports.PhaseConnecting, func() {
		s.awaiting = make(map[string]struct{})
		s.joined = make(map[string]struct{})
	})
}

func (s *connState) toAuthenticating() bool {
	return s.transition(ports.PhaseAuthenticating, nil)
}

func (s *connState) toJoining(channels []string) bool {
	return s.transition(ports.PhaseJoining, func() {
		s.awaiting = make(map[string]struct{}, len(channels))
		for _, ch := range channels {
			s.awaiting[ch] = struct{}{}
		}
	})
}

// confirmJoin moves a channel from awaiting to joined and reports how many
// confirmations are still outstanding.
func (s *connState) confirmJoin(channel string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.awaiting, channel)
	s.joined[channel] = struct{}{}
	return len(s.awaiting)
}

func (s *connState) dropJoined(channel string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.joined, channel)
	delete(s.awaiting, channel)
}

// abandonJoins gives up on the channels still awaiting confirmation and
// returns them.
func (s *connState) abandonJoins() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	failed := sortedKeys(s.awaiting)
	s.awaiting = make(map[string]struct{})
	return failed
}

// toReady only fires from Joining, so a join timeout racing the last
// confirmation cannot enter Ready twice.
func (s *connState) toReady() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != ports.PhaseJoining {
		return false
	}

	s.phase = ports.PhaseReady
	s.attempt = 0
	s.nextRetry = time.Time{}
	metrics.ConnectionState.Set(float64(ports.PhaseReady))
	return true
}

func (s *connState) toReconnecting(attempt int, nextRetry time.Time) bool {
	return s.transition(ports.PhaseReconnecting, func() {
		s.attempt = attempt
		s.nextRetry = nextRetry
	})
}

func (s *connState) toClosed() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.phase = ports.PhaseClosed
	metrics.ConnectionState.Set(float64(ports.PhaseClosed))
}

func (s *connState) transition(to ports.Phase, apply func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase == ports.PhaseClosed {
		return false
	}

	s.phase = to
	if apply != nil {
		apply()
	}
	metrics.ConnectionState.Set(float64(to))
	return true
}

func sortedKeys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
