package worker

import (
	"math"
	"math/rand"
	"time"
)

const (
	backoffBase = 2 * time.Second
	backoffCap  = 5 * time.Minute
)

// Backoff is the delay before retry number attempt (0-based): 2s, 4s, 8s...
// capped at 5m, plus up to 250ms of jitter.
func Backoff(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	delay := backoffCap
	if attempt < 16 {
		delay = time.Duration(float64(backoffBase) * math.Pow(2, float64(attempt)))
	}
	if delay > backoffCap {
		delay = backoffCap
	}
	return delay + time.Duration(rand.Intn(250))*time.Millisecond
}
