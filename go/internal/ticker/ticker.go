// Package ticker drives server-side round advancement. Client
// heartbeats already tick their own rooms; the ticker is the backstop
// that advances rooms whose players all went quiet, so a shared screen
// watching a room never stalls.
package ticker

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/popqiz/popqiz/go/internal/round"
)

const (
	defaultWorkers   = 4
	defaultBatchSize = 16

	// maxWait caps how long the loop sleeps with no known deadline, so
	// rooms created on another instance are still picked up.
	maxWait = 5 * time.Second
)

// RoomSource exposes the deadline index the ticker polls.
type RoomSource interface {
	NextDeadline(ctx context.Context) (*time.Time, error)
	DueRoomCodes(ctx context.Context, now time.Time, limit int) ([]string, error)
}

// Advancer runs the round advance check for one room.
type Advancer interface {
	Tick(ctx context.Context, code string) (*round.TickResult, error)
}

// Ticker polls for rooms whose round deadline has passed and ticks
// them through a worker pool. Concurrent ticks on the same room are
// safe downstream, but the in-flight set keeps this instance from
// queueing a room twice.
type Ticker struct {
	rooms      RoomSource
	advancer   Advancer
	clock      clockwork.Clock
	instanceID string

	wakeCh chan struct{}
	workCh chan string

	numWorkers int
	batchSize  int

	inFlight   map[string]bool
	inFlightMu sync.Mutex
}

func New(rooms RoomSource, advancer Advancer, clock clockwork.Clock) *Ticker {
	return &Ticker{
		rooms:      rooms,
		advancer:   advancer,
		clock:      clock,
		instanceID: uuid.New().String()[:8],
		wakeCh:     make(chan struct{}, 1),
		workCh:     make(chan string, defaultWorkers*2),
		numWorkers: defaultWorkers,
		batchSize:  defaultBatchSize,
		inFlight:   make(map[string]bool),
	}
}

// Wake nudges the loop to re-read the deadline index. Called after a
// mutation that may have moved a deadline earlier.
func (t *Ticker) Wake() {
	select {
	case t.wakeCh <- struct{}{}:
	default:
	}
}

// Run polls until ctx is done.
func (t *Ticker) Run(ctx context.Context) error {
	log.Info().
		Str("instance", t.instanceID).
		Int("workers", t.numWorkers).
		Msg("round ticker started")

	var wg sync.WaitGroup
	workerCtx, cancelWorkers := context.WithCancel(ctx)
	defer cancelWorkers()

	for i := 0; i < t.numWorkers; i++ {
		wg.Add(1)
		go t.worker(workerCtx, &wg, i)
	}
	defer func() {
		cancelWorkers()
		close(t.workCh)
		wg.Wait()
		log.Info().Str("instance", t.instanceID).Msg("round ticker stopped")
	}()

	for {
		timer := t.clock.NewTimer(t.nextWait(ctx))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-t.wakeCh:
			timer.Stop()
		case <-timer.Chan():
		}
		t.processDue(ctx)
	}
}

// nextWait returns how long to sleep before the next due check.
func (t *Ticker) nextWait(ctx context.Context) time.Duration {
	deadline, err := t.rooms.NextDeadline(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to read next room deadline")
		return maxWait
	}
	if deadline == nil {
		return maxWait
	}
	wait := deadline.Sub(t.clock.Now())
	if wait < 0 {
		wait = 0
	}
	if wait > maxWait {
		wait = maxWait
	}
	return wait
}

// processDue claims all currently due rooms and hands them to workers.
func (t *Ticker) processDue(ctx context.Context) {
	codes, err := t.rooms.DueRoomCodes(ctx, t.clock.Now(), t.batchSize)
	if err != nil {
		log.Error().Err(err).Msg("failed to list due rooms")
		return
	}

	for _, code := range codes {
		if !t.claim(code) {
			continue
		}
		select {
		case t.workCh <- code:
		default:
			t.release(code)
			log.Warn().Str("code", code).Msg("work channel full, room deferred to next poll")
		}
	}
}

func (t *Ticker) worker(ctx context.Context, wg *sync.WaitGroup, workerID int) {
	defer wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case code, ok := <-t.workCh:
			if !ok {
				return
			}
			result, err := t.advancer.Tick(ctx, code)
			t.release(code)
			if err != nil {
				log.Error().
					Err(err).
					Str("code", code).
					Int("worker_id", workerID).
					Msg("round tick failed")
				continue
			}
			if result.Advanced {
				log.Info().
					Str("code", code).
					Int("round", result.RoundNumber).
					Str("instance", t.instanceID).
					Msg("advanced stalled room")
			}
		}
	}
}

func (t *Ticker) claim(code string) bool {
	t.inFlightMu.Lock()
	defer t.inFlightMu.Unlock()
	if t.inFlight[code] {
		return false
	}
	t.inFlight[code] = true
	return true
}

func (t *Ticker) release(code string) {
	t.inFlightMu.Lock()
	defer t.inFlightMu.Unlock()
	delete(t.inFlight, code)
}
