// Package schedule holds the pure scheduling arithmetic: retry backoff,
// cron "next fire" calculation and the idle-poll jitter. No I/O.
package schedule

import (
	"math/rand"
	"time"

	"github.com/robfig/cron/v3"
)

// Expressions may carry an optional leading seconds field, so both
// five-field ("*/5 * * * *") and six-field ("0 */5 * * * *") forms
// parse.
var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Backoff returns the delay before the next retry:
// 1000·2^attempts ms plus uniform jitter in [-500, 500] ms, never
// negative. attempts is the current attempt count, already incremented
// by the claim.
func Backoff(attempts int) time.Duration {
	ms := int64(1000) * (int64(1) << uint(attempts))
	ms += rand.Int63n(1001) - 500
	if ms < 0 {
		ms = 0
	}
	return time.Duration(ms) * time.Millisecond
}

// NextCron returns the first scheduled instant strictly after now, or
// ok=false when the expression does not parse.
func NextCron(expr string, now time.Time) (next time.Time, ok bool) {
	sched, err := cronParser.Parse(expr)
	if err != nil {
		return time.Time{}, false
	}
	return sched.Next(now), true
}

// PickupJitter returns a random duration in [0, 1000] ms added to the
// idle-poll sleep so that workers started together drift apart.
func PickupJitter() time.Duration {
	return time.Duration(rand.Int63n(1001)) * time.Millisecond
}
