package frame

import (
	"context"
	"fmt"

	"github.com/spaghettifunk/citadel/engine/containers"
	"github.com/spaghettifunk/citadel/engine/core"
	"github.com/spaghettifunk/citadel/engine/scene"
)

// DefaultFrameCount is how many frames the CPU may run ahead of the GPU.
const DefaultFrameCount = 3

/**
 * @brief Everything the CPU writes to build one frame. The buffers may only
 * be written once the GPU has reached Fence.
 */
type FrameResource struct {
	Index    int
	ObjectCB UploadBuffer
	PassCB   UploadBuffer
	// Fence is the value marking the last submission that read these
	// buffers. Zero means never submitted.
	Fence uint64
}

// Ring cycles through the frame resources, gating each reuse on its fence.
type Ring struct {
	ring  *containers.Ring[*FrameResource]
	fence Fence
}

func NewRing(resources []*FrameResource, fence Fence) (*Ring, error) {
	r, err := containers.NewRing(resources)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrInvalidConfig, err)
	}
	return &Ring{ring: r, fence: fence}, nil
}

/**
 * @brief Moves to the next frame resource and returns it once the GPU is done
 * with it. Blocks while the GPU is still reading that resource's buffers.
 */
func (r *Ring) Advance(ctx context.Context) (*FrameResource, error) {
	fr := r.ring.Advance()
	if fr.Fence != 0 && r.fence.CompletedValue() < fr.Fence {
		if err := r.fence.Wait(ctx, fr.Fence); err != nil {
			return nil, fmt.Errorf("frame resource %d: %w", fr.Index, err)
		}
	}
	return fr, nil
}

func (r *Ring) Current() *FrameResource {
	return r.ring.Current()
}

func (r *Ring) CurrentIndex() int {
	return r.ring.Index()
}

func (r *Ring) Len() int {
	return r.ring.Len()
}

func (r *Ring) Fence() Fence {
	return r.fence
}

// Drain waits until the GPU is done with every frame resource.
func (r *Ring) Drain(ctx context.Context) error {
	var last uint64
	r.ring.Each(func(_ int, fr *FrameResource) {
		if fr.Fence > last {
			last = fr.Fence
		}
	})
	if last == 0 || r.fence.CompletedValue() >= last {
		return nil
	}
	return r.fence.Wait(ctx, last)
}

/**
 * @brief Copies the constants of every dirty item into the frame resource's
 * object buffer and decrements its dirty counter. Clean items are skipped;
 * their constants from an earlier pass over this resource are still valid.
 * Returns how many items were written.
 */
func UpdateObjectConstants(fr *FrameResource, items []*scene.RenderItem) (int, error) {
	written := 0
	for _, ri := range items {
		if ri.NumFramesDirty <= 0 {
			continue
		}
		oc := ObjectConstants{World: ri.World, Colour: ri.Colour}
		if err := fr.ObjectCB.CopyData(int(ri.ObjCBIndex), oc.Bytes()); err != nil {
			return written, fmt.Errorf("object constants for '%s': %w", ri.Name, err)
		}
		ri.NumFramesDirty--
		written++
	}
	return written, nil
}

// UpdatePassConstants writes the per-frame constants. They change every frame.
func UpdatePassConstants(fr *FrameResource, pc *PassConstants) error {
	if err := fr.PassCB.CopyData(0, pc.Bytes()); err != nil {
		return fmt.Errorf("pass constants: %w", err)
	}
	return nil
}

/**
 * @brief Descriptor slot arithmetic for a heap holding one view per object per
 * frame resource, followed by one pass view per frame resource.
 */
type DescriptorLayout struct {
	ObjectCount int
	FrameCount  int
}

// ObjectIndex is the slot of object o's view in frame resource f.
func (d DescriptorLayout) ObjectIndex(f, o int) int {
	return f*d.ObjectCount + o
}

// PassOffset is the first pass view slot.
func (d DescriptorLayout) PassOffset() int {
	return d.ObjectCount * d.FrameCount
}

// PassIndex is the slot of frame resource f's pass view.
func (d DescriptorLayout) PassIndex(f int) int {
	return d.PassOffset() + f
}

// Total is the number of descriptors the heap needs.
func (d DescriptorLayout) Total() int {
	return (d.ObjectCount + 1) * d.FrameCount
}
