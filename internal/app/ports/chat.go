package ports

import (
	"context"
	"time"

	"tmibot/internal/app/domain/events"
	"tmibot/internal/app/domain/queue"
)

// Phase is the connection lifecycle position.
type Phase int

const (
	PhaseDisconnected Phase = iota
	PhaseConnecting
	PhaseAuthenticating
	PhaseJoining
	PhaseReady
	PhaseReconnecting
	PhaseClosed
)

func (p Phase) MarshalJSON() ([]byte, error) {
	return []byte(`"` + p.String() + `"`), nil
}

func (p Phase) String() string {
	switch p {
	case PhaseDisconnected:
		return "disconnected"
	case PhaseConnecting:
		return "connecting"
	case PhaseAuthenticating:
		return "authenticating"
	case PhaseJoining:
		return "joining"
	case PhaseReady:
		return "ready"
	case PhaseReconnecting:
		return "reconnecting"
	case PhaseClosed:
		return "closed"
	}
	return "unknown"
}

// ConnectionSnapshot is a point-in-time copy of the connection state.
type ConnectionSnapshot struct {
	Phase     Phase     `json:"phase"`
	Joining   []string  `json:"joining,omitempty"`
	Joined    []string  `json:"joined,omitempty"`
	Attempt   int       `json:"attempt,omitempty"`
	NextRetry time.Time `json:"next_retry,omitzero"`
	LastRecv  time.Time `json:"last_recv,omitzero"`
}

// ChatPort is the contract the chat client core exposes to the command and
// permission layer. The caller supplies the rate class per send; the core
// never inspects permission state itself.
type ChatPort interface {
	Events() <-chan events.Event
	Enqueue(channel, text string, class queue.RateClass) error
	AddChannel(channel string)
	RemoveChannel(channel string)
	Status() ConnectionSnapshot
	Err() <-chan error
	Shutdown(ctx context.Context) []queue.Request
}
