package session

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Scheduler owns the single phase timer. Arming a new timer replaces
// the previous one; a replaced timer can never deliver a fire, and each
// fire carries a sequence number so a late delivery racing replacement
// is detectable.
type Scheduler struct {
	clock clockwork.Clock
	out   chan<- Event

	mu     sync.Mutex
	cancel chan struct{}
	seq    uint64
}

func NewScheduler(clock clockwork.Clock, out chan<- Event) *Scheduler {
	return &Scheduler{clock: clock, out: out}
}

// Replace arms the timer for kind, disarming any previous timer first.
func (s *Scheduler) Replace(kind TimerKind, d time.Duration) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelLocked()
	s.seq++
	seq := s.seq
	cancel := make(chan struct{})
	s.cancel = cancel

	timer := s.clock.NewTimer(d)
	go func() {
		defer timer.Stop()
		select {
		case <-timer.Chan():
			// Both channels can be ready when a cancel races the
			// fire. Cancellation wins.
			select {
			case <-cancel:
			default:
				s.out <- TimerFired{Kind: kind, Seq: seq}
			}
		case <-cancel:
		}
	}()
	return seq
}

// Cancel disarms the timer if one is armed.
func (s *Scheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked()
}

// Seq returns the sequence of the currently armed timer. A TimerFired
// with any other sequence is from a replaced timer and must be dropped.
func (s *Scheduler) Seq() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq
}

func (s *Scheduler) cancelLocked() {
	if s.cancel != nil {
		close(s.cancel)
		s.cancel = nil
	}
}
