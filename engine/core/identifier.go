package core

import "fmt"

// IDPool hands out small integer ids, reusing released ones first.
// Ids are dense, which makes them usable as indices into constant buffers.
type IDPool struct {
	owners []interface{}
	used   int
}

func NewIDPool() *IDPool {
	return &IDPool{}
}

// Acquire returns the lowest free id and records owner against it.
func (p *IDPool) Acquire(owner interface{}) uint32 {
	for i := range p.owners {
		// Existing free spot. Take it.
		if p.owners[i] == nil {
			p.owners[i] = owner
			p.used++
			return uint32(i)
		}
	}
	// If here, no existing free slots. Need a new id, so push one.
	p.owners = append(p.owners, owner)
	p.used++
	return uint32(len(p.owners) - 1)
}

func (p *IDPool) Release(id uint32) error {
	if int(id) >= len(p.owners) {
		return fmt.Errorf("release id '%d' out of range (max=%d). Nothing was done", id, len(p.owners))
	}
	if p.owners[id] == nil {
		return fmt.Errorf("release id '%d': not acquired. Nothing was done", id)
	}
	p.owners[id] = nil
	p.used--
	return nil
}

// Owner returns whatever was registered with id, or nil.
func (p *IDPool) Owner(id uint32) interface{} {
	if int(id) >= len(p.owners) {
		return nil
	}
	return p.owners[id]
}

// Len is the number of ids in use.
func (p *IDPool) Len() int {
	return p.used
}

// Cap is one past the highest id ever handed out; buffers indexed by id need this many slots.
func (p *IDPool) Cap() int {
	return len(p.owners)
}
