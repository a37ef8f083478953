// Package poll runs a step function on a fixed interval until it reports
// completion or stays idle for too many iterations in a row.
package poll

import (
	"context"
	"time"
)

type Step int

const (
	// Idle means nothing changed; the idle counter grows.
	Idle Step = iota
	// Progress resets the idle counter.
	Progress
	// Done stops the loop.
	Done
)

type Outcome int

const (
	Finished Outcome = iota
	Exhausted
)

type Config struct {
	Interval  time.Duration
	IdleLimit int
}

// Until calls step, then waits Interval, until step returns Done or the idle
// counter reaches IdleLimit. A cancelled ctx ends the loop with ctx.Err().
func Until(ctx context.Context, config Config, step func(ctx context.Context) Step) (Outcome, error) {
	idle := 0
	timer := time.NewTimer(0)
	defer timer.Stop()
	<-timer.C

	for {
		switch step(ctx) {
		case Done:
			return Finished, nil
		case Progress:
			idle = 0
		default:
			idle++
		}
		if config.IdleLimit > 0 && idle >= config.IdleLimit {
			return Exhausted, nil
		}

		timer.Reset(config.Interval)
		select {
		case <-ctx.Done():
			return Finished, ctx.Err()
		case <-timer.C:
		}
	}
}
