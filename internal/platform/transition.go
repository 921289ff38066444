package platform

import (
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
)

const frameInterval = 16 * time.Millisecond

// EaseOut is a cubic ease-out curve over [0,1].
func EaseOut(t float64) float64 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	return 1 - math.Pow(1-t, 3)
}

// Transitions runs fire-and-forget animated surface transactions. Several
// transitions may be in flight at once, including two for the same surface;
// the later one simply wins on screen.
type Transitions struct {
	mu       sync.Mutex
	inFlight map[uuid.UUID]SurfaceID
	wg       sync.WaitGroup
}

// NewTransitions creates an empty transition runner.
func NewTransitions() *Transitions {
	return &Transitions{inFlight: make(map[uuid.UUID]SurfaceID)}
}

// Start launches a transition for surface. step receives eased progress on
// every frame and finish runs once after the final frame. It returns
// immediately with the transition id.
func (t *Transitions) Start(surface SurfaceID, d time.Duration, step func(progress float64), finish func()) uuid.UUID {
	id := uuid.New()
	t.mu.Lock()
	t.inFlight[id] = surface
	t.mu.Unlock()

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		defer func() {
			t.mu.Lock()
			delete(t.inFlight, id)
			t.mu.Unlock()
		}()

		start := time.Now()
		ticker := time.NewTicker(frameInterval)
		defer ticker.Stop()
		for {
			elapsed := time.Since(start)
			if elapsed >= d {
				break
			}
			if step != nil {
				step(EaseOut(float64(elapsed) / float64(d)))
			}
			<-ticker.C
		}
		if step != nil {
			step(1)
		}
		if finish != nil {
			finish()
		}
	}()
	return id
}

// InFlight returns the number of running transitions.
func (t *Transitions) InFlight() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.inFlight)
}

// Wait blocks until every started transition has finished.
func (t *Transitions) Wait() {
	t.wg.Wait()
}
