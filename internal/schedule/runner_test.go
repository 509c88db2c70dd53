package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sleepRecorder struct {
	slept []time.Duration
}

func (s *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	s.slept = append(s.slept, d)
	return ctx.Err()
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyStop, p)

	p, err = ParsePolicy(" Continue ")
	require.NoError(t, err)
	assert.Equal(t, PolicyContinue, p)
	assert.Equal(t, "continue", p.String())

	_, err = ParsePolicy("retry")
	assert.Error(t, err)
}

func TestRunner_MaxPasses(t *testing.T) {
	rec := &sleepRecorder{}
	r := &Runner{Interval: time.Minute, MaxPasses: 3, Sleep: rec.sleep, Logger: zerolog.Nop()}

	var passes int
	err := r.Run(context.Background(), func(context.Context) error {
		passes++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, passes)
	assert.Equal(t, []time.Duration{time.Minute, time.Minute}, rec.slept, "no sleep after the last pass")
}

func TestRunner_StopPolicyReturnsError(t *testing.T) {
	rec := &sleepRecorder{}
	r := &Runner{Interval: time.Minute, OnError: PolicyStop, Sleep: rec.sleep, Logger: zerolog.Nop()}

	boom := errors.New("boom")
	var passes int
	err := r.Run(context.Background(), func(context.Context) error {
		passes++
		if passes == 2 {
			return boom
		}
		return nil
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 2, passes)
	assert.Len(t, rec.slept, 1)
}

func TestRunner_ContinuePolicyKeepsGoing(t *testing.T) {
	rec := &sleepRecorder{}
	r := &Runner{Interval: time.Second, OnError: PolicyContinue, MaxPasses: 4, Sleep: rec.sleep, Logger: zerolog.Nop()}

	var passes int
	err := r.Run(context.Background(), func(context.Context) error {
		passes++
		return errors.New("flaky")
	})
	require.NoError(t, err)
	assert.Equal(t, 4, passes)
	assert.Len(t, rec.slept, 3)
}

func TestRunner_CancelDuringSleep(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := &Runner{Interval: time.Hour, Logger: zerolog.Nop()}

	var passes int
	done := make(chan error, 1)
	go func() {
		done <- r.Run(ctx, func(context.Context) error {
			passes++
			return nil
		})
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("runner did not stop after cancel")
	}
	assert.Equal(t, 1, passes)
}

func TestRunner_PassErrorAfterCancelIsShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := &Runner{Interval: time.Minute, Logger: zerolog.Nop()}

	err := r.Run(ctx, func(ctx context.Context) error {
		cancel()
		return ctx.Err()
	})
	assert.NoError(t, err)
}

func TestTimerSleep(t *testing.T) {
	require.NoError(t, TimerSleep(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, TimerSleep(ctx, time.Hour), context.Canceled)
	assert.ErrorIs(t, TimerSleep(ctx, 0), context.Canceled)
}
