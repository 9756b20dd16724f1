package service

import (
	"sync"
	"time"

	"github.com/steppet/steppet-engine/internal/logger"
	"github.com/steppet/steppet-engine/internal/model"
	"github.com/steppet/steppet-engine/internal/observability"
)

// RenderFunc receives walking renders: the walking flag and the frame to
// draw. It must tolerate repeated identical calls.
type RenderFunc func(walking bool, frame int)

// Walker drives the walking animation. It goes Walking the instant a sample
// rises above the previous one and Idle the instant a sample does not; an
// Idle transition is immediate, with no debounce, so a single stalled sample
// ends the animation. While Walking a ticker advances the frame ring and
// re-renders each tick.
type Walker struct {
	frames   int
	interval time.Duration
	clock    model.Clock
	render   RenderFunc
	logger   *logger.Logger

	mu         sync.Mutex
	walking    bool
	frame      int
	prevSample int64
	hasSample  bool
	cancel     chan struct{}
}

func NewWalker(frames int, interval time.Duration, clock model.Clock, render RenderFunc, logger *logger.Logger) *Walker {
	if frames < 1 {
		frames = 1
	}
	return &Walker{
		frames:   frames,
		interval: interval,
		clock:    clock,
		render:   render,
		logger:   logger,
	}
}

// Observe feeds one step sample. The previous sample updates on every call
// regardless of transitions; the very first sample only establishes it.
func (w *Walker) Observe(sample int64) {
	w.mu.Lock()

	rising := w.hasSample && sample > w.prevSample
	w.prevSample = sample
	w.hasSample = true

	switch {
	case rising && !w.walking:
		w.walking = true
		w.frame = 1
		w.cancel = make(chan struct{})
		go w.tickLoop(w.cancel)
		w.mu.Unlock()
		observability.SetWalking(true)
		w.render(true, 1)

	case !rising && w.walking:
		w.stopLocked()
		w.mu.Unlock()
		observability.SetWalking(false)
		w.render(false, 1)

	default:
		w.mu.Unlock()
	}
}

// Stop ends the hosting session: the ticker is cancelled unconditionally and
// all transient state resets. No final render is emitted.
func (w *Walker) Stop() {
	w.mu.Lock()
	if w.walking {
		w.stopLocked()
	}
	w.prevSample = 0
	w.hasSample = false
	w.mu.Unlock()
	observability.SetWalking(false)
}

// State returns the current walking flag and frame.
func (w *Walker) State() (bool, int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.walking {
		return false, 1
	}
	return true, w.frame
}

func (w *Walker) stopLocked() {
	w.walking = false
	w.frame = 1
	close(w.cancel)
	w.cancel = nil
}

func (w *Walker) tickLoop(cancel chan struct{}) {
	ticker := w.clock.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C():
			w.mu.Lock()
			if !w.walking {
				w.mu.Unlock()
				return
			}
			w.frame = w.frame%w.frames + 1
			frame := w.frame
			w.mu.Unlock()
			w.render(true, frame)

		case <-cancel:
			return
		}
	}
}
