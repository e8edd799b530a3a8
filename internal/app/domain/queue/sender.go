package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"tmibot/internal/app/adapters/metrics"
	"tmibot/internal/app/domain/irc"
	"tmibot/internal/app/infrastructure/config"
	"tmibot/internal/app/infrastructure/storage"
	"tmibot/pkg/logger"
)

var (
	ErrQueueFull    = errors.New("outgoing queue is full")
	ErrShuttingDown = errors.New("sender is shutting down")
)

// Request is one pending chat message.
type Request struct {
	Channel    string
	Text       string
	Class      RateClass
	EnqueuedAt time.Time
}

// WriteFunc hands a serialized-ready message to the transport.
type WriteFunc func(msg *irc.Message) error

// ReadyFunc reports whether the connection currently accepts sends.
type ReadyFunc func() bool

// Sender is the rate-limited admission scheduler for outgoing messages.
// Producers enqueue concurrently; one dispatch goroutine owns the buckets
// and the transport hand-off, so token accounting is never racy.
type Sender struct {
	log logger.Logger

	mu      sync.Mutex
	pending [numClasses][]Request
	closed  bool

	buckets    [numClasses]*Bucket
	maxPending int
	history    *storage.Cache[int]

	write WriteFunc
	ready ReadyFunc
	now   func() time.Time

	wake     chan struct{}
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

func NewSender(log logger.Logger, limits config.Limits, q config.Queue, write WriteFunc, ready ReadyFunc) *Sender {
	s := &Sender{
		log:        log,
		maxPending: q.MaxPending,
		history:    storage.NewCache[int](q.MaxPending, q.HistoryTTL()),
		write:      write,
		ready:      ready,
		now:        time.Now,
		wake:       make(chan struct{}, 1),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
	s.buckets[Normal] = NewBucket(limits.Normal, s.now)
	s.buckets[Elevated] = NewBucket(limits.Elevated, s.now)

	go s.loop()

	return s
}

// Enqueue admits a request into its class queue. It fails fast with
// ErrQueueFull past the bound and never blocks on transport I/O. Oversized
// messages are rejected here rather than discovered by the writer.
func (s *Sender) Enqueue(channel, text string, class RateClass) error {
	if class < 0 || class >= numClasses {
		return fmt.Errorf("unknown rate class %d", class)
	}
	if _, err := buildPrivMsg(channel, text).Serialize(); err != nil {
		return err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrShuttingDown
	}
	if len(s.pending[class]) >= s.maxPending {
		s.mu.Unlock()
		metrics.QueueRejected.WithLabelValues(class.String()).Inc()
		return ErrQueueFull
	}
	s.pending[class] = append(s.pending[class], Request{
		Channel:    channel,
		Text:       text,
		Class:      class,
		EnqueuedAt: s.now(),
	})
	depth := len(s.pending[class])
	s.mu.Unlock()

	metrics.QueueDepth.WithLabelValues(class.String()).Set(float64(depth))
	s.Wake()

	return nil
}

// Wake nudges the dispatch loop. The connection manager calls this when the
// connection becomes Ready again.
func (s *Sender) Wake() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Shutdown stops the dispatch loop, flushes what the buckets allow until ctx
// expires and returns whatever could not be sent. Nothing is dropped
// silently: Enqueue refuses new requests from this point on, so none can
// slip in after the cancelled set is collected.
func (s *Sender) Shutdown(ctx context.Context) []Request {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.stopOnce.Do(func() { close(s.stop) })
	<-s.done

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

drain:
	for {
		s.dispatchReady()

		s.mu.Lock()
		remaining := len(s.pending[Normal]) + len(s.pending[Elevated])
		s.mu.Unlock()
		if remaining == 0 {
			break
		}

		wait, ok := s.nextWake()
		if !ok {
			break
		}

		timer.Reset(wait)
		select {
		case <-ctx.Done():
			break drain
		case <-timer.C:
		}
	}

	s.mu.Lock()
	cancelled := append(s.pending[Elevated], s.pending[Normal]...)
	s.pending[Normal] = nil
	s.pending[Elevated] = nil
	s.mu.Unlock()

	metrics.QueueDepth.WithLabelValues(Normal.String()).Set(0)
	metrics.QueueDepth.WithLabelValues(Elevated.String()).Set(0)

	return cancelled
}

func (s *Sender) loop() {
	defer close(s.done)

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		s.dispatchReady()

		var timerC <-chan time.Time
		if wait, ok := s.nextWake(); ok {
			timer.Reset(wait)
			timerC = timer.C
		}

		select {
		case <-s.stop:
			return
		case <-s.wake:
		case <-timerC:
		}

		timer.Stop()
		select {
		case <-timer.C:
		default:
		}
	}
}

// dispatchReady sends everything that has both a pending request and an
// available token, elevated class first. Within a class order is strict
// FIFO. The token is consumed before the write and a failed write does not
// refund it: the server has seen the attempt.
func (s *Sender) dispatchReady() {
	if !s.ready() {
		return
	}

	for _, class := range []RateClass{Elevated, Normal} {
		for {
			s.mu.Lock()
			if len(s.pending[class]) == 0 {
				s.mu.Unlock()
				break
			}
			if !s.buckets[class].Take() {
				s.mu.Unlock()
				break
			}
			req := s.pending[class][0]
			s.pending[class] = s.pending[class][1:]
			depth := len(s.pending[class])
			s.mu.Unlock()

			metrics.QueueDepth.WithLabelValues(class.String()).Set(float64(depth))
			s.send(req)
		}
	}
}

func (s *Sender) send(req Request) {
	text := s.dedupe(req.Channel, req.Text)

	if err := s.write(buildPrivMsg(req.Channel, text)); err != nil {
		s.log.Error("Failed to write chat message", err,
			slog.String("channel", req.Channel), slog.String("class", req.Class.String()))
		return
	}

	metrics.MessagesSent.WithLabelValues(req.Class.String()).Inc()
	s.log.Debug("Chat message sent",
		slog.String("channel", req.Channel), slog.String("class", req.Class.String()))
}

// nextWake reports the earliest instant any class with pending work gets its
// next token. ok is false when there is nothing to wait for.
func (s *Sender) nextWake() (time.Duration, bool) {
	if !s.ready() {
		return 0, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var min time.Duration
	found := false
	for class := RateClass(0); class < numClasses; class++ {
		if len(s.pending[class]) == 0 {
			continue
		}
		d := s.buckets[class].Delay()
		if !found || d < min {
			min = d
			found = true
		}
	}
	return min, found
}

func buildPrivMsg(channel, text string) *irc.Message {
	return irc.NewMessage("PRIVMSG", "#"+channel).WithTrailing(text)
}
