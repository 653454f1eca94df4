package frame

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

var ErrFenceWait = errors.New("fence wait failed")

// Fence is a monotonically increasing counter the GPU advances as it finishes work.
type Fence interface {
	// CompletedValue is the highest value the GPU has reached.
	CompletedValue() uint64
	// Wait blocks until CompletedValue() >= value or ctx is done.
	Wait(ctx context.Context, value uint64) error
}

// SlotFences are the binary fences a graphics API gives us, one per frame
// resource slot.
type SlotFences interface {
	// Signaled reports whether the fence of slot is signalled, without blocking.
	Signaled(slot int) (bool, error)
	// WaitSlot blocks for the fence of slot for at most timeout. ok is false on timeout.
	WaitSlot(slot int, timeout time.Duration) (ok bool, err error)
}

// waitSlice bounds each blocking wait so cancellation is noticed.
const waitSlice = 100 * time.Millisecond

/**
 * @brief A Fence built out of per-slot binary fences. Each submission gets
 * the next value through Signal; submissions on one queue complete in order,
 * so a signalled slot means every lower value is complete too.
 */
type Timeline struct {
	mu        sync.Mutex
	fences    SlotFences
	current   uint64
	completed uint64
	pending   []uint64
}

func NewTimeline(fences SlotFences, slots int) *Timeline {
	return &Timeline{
		fences:  fences,
		pending: make([]uint64, slots),
	}
}

// Signal records that the work just submitted for slot will signal its fence,
// and returns the fence value standing for that work.
func (t *Timeline) Signal(slot int) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.current++
	t.pending[slot] = t.current
	return t.current
}

// Current is the last value handed out by Signal.
func (t *Timeline) Current() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

func (t *Timeline) CompletedValue() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.poll()
	return t.completed
}

func (t *Timeline) poll() {
	for slot, v := range t.pending {
		if v == 0 {
			continue
		}
		if v <= t.completed {
			t.pending[slot] = 0
			continue
		}
		ok, err := t.fences.Signaled(slot)
		if err != nil || !ok {
			continue
		}
		t.complete(slot, v)
	}
}

func (t *Timeline) complete(slot int, v uint64) {
	t.pending[slot] = 0
	if v > t.completed {
		t.completed = v
	}
}

func (t *Timeline) Wait(ctx context.Context, value uint64) error {
	for {
		t.mu.Lock()
		if value > t.current {
			t.mu.Unlock()
			return fmt.Errorf("%w: value %d was never signalled (current %d)", ErrFenceWait, value, t.current)
		}
		t.poll()
		if t.completed >= value {
			t.mu.Unlock()
			return nil
		}
		// the lowest outstanding value at or above the target
		slot := -1
		for s, v := range t.pending {
			if v >= value && (slot < 0 || v < t.pending[slot]) {
				slot = s
			}
		}
		t.mu.Unlock()

		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %w", ErrFenceWait, err)
		}
		if slot < 0 {
			return fmt.Errorf("%w: no submission covers value %d", ErrFenceWait, value)
		}
		ok, err := t.fences.WaitSlot(slot, waitSlice)
		if err != nil {
			return fmt.Errorf("%w: slot %d: %w", ErrFenceWait, slot, err)
		}
		if ok {
			t.mu.Lock()
			if t.pending[slot] != 0 {
				t.complete(slot, t.pending[slot])
			}
			t.mu.Unlock()
		}
	}
}
