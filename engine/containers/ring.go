package containers

import "errors"

var ErrEmptyRing = errors.New("ring needs at least one slot")

// Ring is a fixed set of slots visited in order, wrapping around at the end.
// The cursor starts on the last slot so that the first Advance lands on slot 0.
type Ring[T any] struct {
	data  []T
	index int
}

// Create a new Ring over the given slots. The slice is owned by the ring afterwards.
func NewRing[T any](slots []T) (*Ring[T], error) {
	if len(slots) == 0 {
		return nil, ErrEmptyRing
	}
	return &Ring[T]{
		data:  slots,
		index: len(slots) - 1,
	}, nil
}

// Advance moves the cursor to the next slot and returns it
func (r *Ring[T]) Advance() T {
	r.index = (r.index + 1) % len(r.data)
	return r.data[r.index]
}

// Current returns the slot under the cursor
func (r *Ring[T]) Current() T {
	return r.data[r.index]
}

// Index returns the cursor position
func (r *Ring[T]) Index() int {
	return r.index
}

func (r *Ring[T]) At(i int) T {
	return r.data[i]
}

func (r *Ring[T]) Len() int {
	return len(r.data)
}

// Each calls fn for every slot in index order
func (r *Ring[T]) Each(fn func(i int, v T)) {
	for i, v := range r.data {
		fn(i, v)
	}
}
