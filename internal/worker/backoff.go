package worker

import (
	"math"
	"math/rand"
	"time"
)

// slotBackoff computes the jittered delay for a Fetcher task that found no
// free per-user slot: base = min(2^retries, 64) seconds, plus a random
// [0.1, 0.7]s jitter, mirroring internal/pkg/httpretry's full-jitter
// exponential backoff shape but with the fixed floor/ceiling spec §4.2 names
// explicitly.
func slotBackoff(retries int) time.Duration {
	base := math.Min(math.Pow(2, float64(retries)), 64)
	jitter := 0.1 + rand.Float64()*0.6
	return time.Duration((base + jitter) * float64(time.Second))
}

// stageRetryBackoff computes the Relevance/Classifier re-enqueue delay for a
// given attempt: (2^(attempt-1)) * 60 seconds, per spec §4.3 op 7 and §4.5
// op 9 (identical retry policy).
func stageRetryBackoff(attempt int) time.Duration {
	seconds := math.Pow(2, float64(attempt-1)) * 60
	return time.Duration(seconds) * time.Second
}

// fetchRetryBackoff computes the Fetcher's re-enqueue delay for message ids
// that came back rate-limited, landing in the 2-4s window named by spec
// §8's rate-limit scenario.
func fetchRetryBackoff() time.Duration {
	return time.Duration((2 + rand.Float64()*2) * float64(time.Second))
}
