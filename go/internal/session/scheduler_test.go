package session

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_Fire(t *testing.T) {
	clock := clockwork.NewFakeClock()
	out := make(chan Event, 8)
	sched := NewScheduler(clock, out)

	seq := sched.Replace(TimerReveal, 5*time.Second)
	assert.Equal(t, seq, sched.Seq())

	clock.BlockUntil(1)
	clock.Advance(5 * time.Second)

	select {
	case ev := <-out:
		fired, ok := ev.(TimerFired)
		require.True(t, ok)
		assert.Equal(t, TimerReveal, fired.Kind)
		assert.Equal(t, seq, fired.Seq)
	case <-time.After(time.Second):
		t.Fatal("timer never fired")
	}
}

func TestScheduler_ReplaceDisarmsPrevious(t *testing.T) {
	clock := clockwork.NewFakeClock()
	out := make(chan Event, 8)
	sched := NewScheduler(clock, out)

	first := sched.Replace(TimerQuestionDeadline, 10*time.Second)
	clock.BlockUntil(1)

	second := sched.Replace(TimerReveal, 3*time.Second)
	assert.Greater(t, second, first)
	assert.Equal(t, second, sched.Seq())

	// Advance past both durations. Only a fire carrying the current
	// sequence counts; anything else is a replaced timer racing its
	// cancellation and gets dropped by the session's dispatch.
	clock.BlockUntil(1)
	clock.Advance(10 * time.Second)

	var current []TimerFired
	deadline := time.After(time.Second)
collect:
	for {
		select {
		case ev := <-out:
			fired := ev.(TimerFired)
			if fired.Seq == sched.Seq() {
				current = append(current, fired)
				break collect
			}
			assert.Equal(t, first, fired.Seq)
		case <-deadline:
			break collect
		}
	}

	require.Len(t, current, 1)
	assert.Equal(t, TimerReveal, current[0].Kind)
	assert.Equal(t, second, current[0].Seq)
}

func TestScheduler_Cancel(t *testing.T) {
	clock := clockwork.NewFakeClock()
	out := make(chan Event, 8)
	sched := NewScheduler(clock, out)

	sched.Replace(TimerLeaderboard, time.Second)
	clock.BlockUntil(1)
	sched.Cancel()

	clock.Advance(time.Second)
	select {
	case ev := <-out:
		t.Fatalf("cancelled timer delivered: %v", ev)
	case <-time.After(50 * time.Millisecond):
	}

	// Cancel with nothing armed is a no-op.
	sched.Cancel()
}
