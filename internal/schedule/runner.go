package schedule

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Policy decides what a failed pass does to the loop.
type Policy int

const (
	// PolicyStop ends Run with the pass error.
	PolicyStop Policy = iota
	// PolicyContinue logs the error and waits for the next pass.
	PolicyContinue
)

func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "stop":
		return PolicyStop, nil
	case "continue":
		return PolicyContinue, nil
	default:
		return PolicyStop, fmt.Errorf("unknown pass error policy %q (want stop|continue)", s)
	}
}

func (p Policy) String() string {
	if p == PolicyContinue {
		return "continue"
	}
	return "stop"
}

type SleepFunc func(ctx context.Context, d time.Duration) error

// Runner calls a pass, sleeps a fixed Interval, and repeats. The sleep starts
// after the pass returns, so the period drifts by the pass duration.
type Runner struct {
	Interval time.Duration
	OnError  Policy
	// MaxPasses stops the loop after that many passes; 0 runs until ctx is done.
	MaxPasses int
	Sleep     SleepFunc
	Logger    zerolog.Logger
}

func (r *Runner) Run(ctx context.Context, pass func(context.Context) error) error {
	sleep := r.Sleep
	if sleep == nil {
		sleep = TimerSleep
	}

	for n := 1; ; n++ {
		if err := ctx.Err(); err != nil {
			return nil
		}

		start := time.Now()
		r.Logger.Info().Int("pass", n).Msg("runner: starting pass")
		if err := pass(ctx); err != nil {
			if ctx.Err() != nil {
				r.Logger.Info().Err(ctx.Err()).Msg("shutdown")
				return nil
			}
			if r.OnError == PolicyStop {
				return fmt.Errorf("pass %d: %w", n, err)
			}
			r.Logger.Error().Err(err).Int("pass", n).Msg("runner: pass failed")
		} else {
			r.Logger.Info().Int("pass", n).Dur("took", time.Since(start)).Msg("runner: pass ok")
		}

		if r.MaxPasses > 0 && n >= r.MaxPasses {
			return nil
		}

		r.Logger.Debug().Dur("interval", r.Interval).Msg("runner: sleeping")
		if err := sleep(ctx, r.Interval); err != nil {
			r.Logger.Info().Err(err).Msg("shutdown")
			return nil
		}
	}
}

// TimerSleep waits for d or until ctx is done, whichever comes first.
func TimerSleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
