package retry

import "time"

// maxShift bounds the exponent so the delay cannot overflow time.Duration.
const maxShift = 20

// ExponentialBackoff returns base * 2^attempt. Negative attempts count as 0.
func ExponentialBackoff(attempt int, base time.Duration) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt > maxShift {
		attempt = maxShift
	}
	return base * (1 << attempt)
}
