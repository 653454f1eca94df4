package frame

import (
	"errors"
	"fmt"
)

var ErrOutOfRange = errors.New("element index out of range")

// UploadBuffer is a CPU-writable array of fixed-size elements the GPU reads from.
type UploadBuffer interface {
	// CopyData writes data into element i. data must fit in one element.
	CopyData(i int, data []byte) error
	ElementCount() int
	// ElementByteSize is the aligned stride between elements.
	ElementByteSize() uint64
}

// HostBuffer is an UploadBuffer over a plain byte slice. The Vulkan backend
// hands it persistently mapped device memory; tests hand it heap memory.
type HostBuffer struct {
	mem    []byte
	stride uint64
	count  int
}

// NewHostBuffer allocates count elements of elementSize bytes, each aligned to alignment.
func NewHostBuffer(count int, elementSize, alignment uint64) *HostBuffer {
	stride := AlignConstantBufferSize(elementSize, alignment)
	return &HostBuffer{
		mem:    make([]byte, stride*uint64(count)),
		stride: stride,
		count:  count,
	}
}

// WrapHostBuffer lays count elements of the given stride over mem.
func WrapHostBuffer(mem []byte, count int, stride uint64) (*HostBuffer, error) {
	if need := stride * uint64(count); uint64(len(mem)) < need {
		return nil, fmt.Errorf("host buffer needs %d bytes, got %d", need, len(mem))
	}
	return &HostBuffer{mem: mem, stride: stride, count: count}, nil
}

func (b *HostBuffer) CopyData(i int, data []byte) error {
	if i < 0 || i >= b.count {
		return fmt.Errorf("%w: %d (count %d)", ErrOutOfRange, i, b.count)
	}
	if uint64(len(data)) > b.stride {
		return fmt.Errorf("element of %d bytes does not fit stride %d", len(data), b.stride)
	}
	off := uint64(i) * b.stride
	copy(b.mem[off:off+b.stride], data)
	return nil
}

func (b *HostBuffer) ElementCount() int {
	return b.count
}

func (b *HostBuffer) ElementByteSize() uint64 {
	return b.stride
}

// Element returns the raw bytes of element i. Meant for inspection.
func (b *HostBuffer) Element(i int) []byte {
	off := uint64(i) * b.stride
	return b.mem[off : off+b.stride]
}
