package game

import (
	"context"
	"sync"
	"time"

	"github.com/roach88/questlog/internal/engine"
)

// DefaultConfettiDelay is how long the celebratory signal stays up before
// the auto-dismiss fires.
const DefaultConfettiDelay = 3 * time.Second

// ConfettiTimer schedules the auto-dismiss of the confetti signal.
//
// Arm cancels any still-pending dismiss before scheduling a new one, so a
// stale timer from a previous celebration can never extinguish a newer
// one. Cancel discards a pending dismiss outright (unmount).
type ConfettiTimer struct {
	mu    sync.Mutex
	timer *time.Timer
	store *Store
	delay time.Duration
}

// NewConfettiTimer builds a timer dispatching into store after delay.
// delay <= 0 uses DefaultConfettiDelay.
func NewConfettiTimer(store *Store, delay time.Duration) *ConfettiTimer {
	if delay <= 0 {
		delay = DefaultConfettiDelay
	}
	return &ConfettiTimer{store: store, delay: delay}
}

// Arm schedules a dismiss, replacing any pending one.
func (t *ConfettiTimer) Arm(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
	}
	t.timer = time.AfterFunc(t.delay, func() {
		t.store.Dispatch(ctx, engine.ShowConfetti{Visible: false})
	})
}

// Cancel discards a pending dismiss, if any.
func (t *ConfettiTimer) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}
