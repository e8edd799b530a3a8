package queue

import (
	"time"

	"golang.org/x/time/rate"

	"tmibot/internal/app/infrastructure/config"
)

// RateClass selects which token bucket a send is charged against.
type RateClass int

const (
	Normal RateClass = iota
	Elevated

	numClasses
)

func (c RateClass) String() string {
	switch c {
	case Normal:
		return "normal"
	case Elevated:
		return "elevated"
	}
	return "unknown"
}

// Bucket is a lazily refilled token bucket. All time arithmetic goes through
// one injected clock so concurrent admission checks cannot disagree on the
// token count, and nothing ever polls on a tick.
type Bucket struct {
	lim *rate.Limiter
	now func() time.Time
}

func NewBucket(l config.RateLimit, now func() time.Time) *Bucket {
	if now == nil {
		now = time.Now
	}
	return &Bucket{
		lim: rate.NewLimiter(rate.Limit(float64(l.Capacity)/l.Window().Seconds()), l.Capacity),
		now: now,
	}
}

// Take consumes one token if available.
func (b *Bucket) Take() bool {
	return b.lim.AllowN(b.now(), 1)
}

// Delay reports how long until the next token becomes available. The probe
// reservation is cancelled at the same instant, so no token is spent.
func (b *Bucket) Delay() time.Duration {
	t := b.now()
	r := b.lim.ReserveN(t, 1)
	d := r.DelayFrom(t)
	r.CancelAt(t)
	return d
}

// Tokens reports the current token count.
func (b *Bucket) Tokens() float64 {
	return b.lim.TokensAt(b.now())
}
