package tmi

import (
	"math/rand/v2"
	"time"
)

// backoffDelay grows exponentially with the attempt number, caps at max and
// keeps a random upper half so simultaneous clients do not stampede.
func backoffDelay(attempt int, base, max time.Duration) time.Duration {
	d := base
	for i := 1; i < attempt && d < max; i++ {
		d *= 2
	}
	if d > max {
		d = max
	}

	half := d / 2
	return half + rand.N(half+1)
}
