package vulkan

import (
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"
)

type VulkanBuffer struct {
	Handle vk.Buffer
	Memory vk.DeviceMemory
	Size   uint64
	Usage  vk.BufferUsageFlags
	// Mapped is the host address of the whole buffer while it is mapped.
	Mapped unsafe.Pointer
}

// BufferCreate creates a buffer and binds freshly allocated memory with the given properties.
func BufferCreate(context *VulkanContext, size uint64, usage vk.BufferUsageFlags, memoryFlags vk.MemoryPropertyFlags) (*VulkanBuffer, error) {
	device := context.Device.LogicalDevice
	buffer := &VulkanBuffer{Size: size, Usage: usage}

	bufferInfo := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        vk.DeviceSize(size),
		Usage:       usage,
		SharingMode: vk.SharingModeExclusive, // NOTE: Only used in one queue.
	}
	var handle vk.Buffer
	if res := vk.CreateBuffer(device, &bufferInfo, context.Allocator, &handle); res != vk.Success {
		return nil, fmt.Errorf("vkCreateBuffer failed with %s", VulkanResultString(res))
	}
	buffer.Handle = handle

	var requirements vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(device, buffer.Handle, &requirements)
	requirements.Deref()

	memoryType, err := context.FindMemoryIndex(requirements.MemoryTypeBits, memoryFlags)
	if err != nil {
		buffer.Destroy(context)
		return nil, err
	}

	allocateInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  requirements.Size,
		MemoryTypeIndex: memoryType,
	}
	var memory vk.DeviceMemory
	if res := vk.AllocateMemory(device, &allocateInfo, context.Allocator, &memory); res != vk.Success {
		buffer.Destroy(context)
		return nil, fmt.Errorf("failed to allocate buffer memory: %s", VulkanResultString(res))
	}
	buffer.Memory = memory

	if res := vk.BindBufferMemory(device, buffer.Handle, buffer.Memory, 0); res != vk.Success {
		buffer.Destroy(context)
		return nil, fmt.Errorf("failed to bind buffer memory: %s", VulkanResultString(res))
	}
	return buffer, nil
}

// Map maps the whole buffer and returns it as a byte slice. The memory must be host visible.
func (b *VulkanBuffer) Map(context *VulkanContext) ([]byte, error) {
	if b.Mapped == nil {
		var data unsafe.Pointer
		if res := vk.MapMemory(context.Device.LogicalDevice, b.Memory, 0, vk.DeviceSize(b.Size), 0, &data); res != vk.Success {
			return nil, fmt.Errorf("vkMapMemory failed with %s", VulkanResultString(res))
		}
		b.Mapped = data
	}
	return unsafe.Slice((*byte)(b.Mapped), b.Size), nil
}

func (b *VulkanBuffer) Unmap(context *VulkanContext) {
	if b.Mapped != nil {
		vk.UnmapMemory(context.Device.LogicalDevice, b.Memory)
		b.Mapped = nil
	}
}

// LoadData copies data into a host visible buffer at offset.
func (b *VulkanBuffer) LoadData(context *VulkanContext, offset uint64, data []byte) error {
	if offset+uint64(len(data)) > b.Size {
		return fmt.Errorf("load of %d bytes at %d overflows buffer of %d", len(data), offset, b.Size)
	}
	mem, err := b.Map(context)
	if err != nil {
		return err
	}
	vk.Memcopy(unsafe.Pointer(&mem[offset]), data)
	return nil
}

// CopyTo records and submits a copy of size bytes into dst and waits for it.
func (b *VulkanBuffer) CopyTo(context *VulkanContext, pool vk.CommandPool, queue vk.Queue, queueFamily uint32, dst *VulkanBuffer, size uint64) error {
	cb, err := AllocateAndBeginSingleUse(context, pool)
	if err != nil {
		return err
	}
	region := vk.BufferCopy{
		SrcOffset: 0,
		DstOffset: 0,
		Size:      vk.DeviceSize(size),
	}
	vk.CmdCopyBuffer(cb.Handle, b.Handle, dst.Handle, 1, []vk.BufferCopy{region})
	return cb.EndSingleUse(context, pool, queue, queueFamily)
}

func (b *VulkanBuffer) Destroy(context *VulkanContext) {
	device := context.Device.LogicalDevice
	b.Unmap(context)
	if b.Memory != vk.NullDeviceMemory {
		vk.FreeMemory(device, b.Memory, context.Allocator)
		b.Memory = vk.NullDeviceMemory
	}
	if b.Handle != vk.NullBuffer {
		vk.DestroyBuffer(device, b.Handle, context.Allocator)
		b.Handle = vk.NullBuffer
	}
	b.Size = 0
}

// uploadDeviceLocal creates a device local buffer holding data, going through a
// host visible staging buffer.
func uploadDeviceLocal(context *VulkanContext, data []byte, usage vk.BufferUsageFlags) (*VulkanBuffer, error) {
	size := uint64(len(data))
	staging, err := BufferCreate(context, size,
		vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit)|vk.MemoryPropertyFlags(vk.MemoryPropertyHostCoherentBit))
	if err != nil {
		return nil, fmt.Errorf("staging buffer: %w", err)
	}
	defer staging.Destroy(context)

	if err := staging.LoadData(context, 0, data); err != nil {
		return nil, err
	}
	staging.Unmap(context)

	buffer, err := BufferCreate(context, size,
		usage|vk.BufferUsageFlags(vk.BufferUsageTransferDstBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit))
	if err != nil {
		return nil, err
	}

	device := context.Device
	if err := staging.CopyTo(context, device.GraphicsCommandPool, device.GraphicsQueue, uint32(device.GraphicsQueueIndex), buffer, size); err != nil {
		buffer.Destroy(context)
		return nil, fmt.Errorf("staging copy: %w", err)
	}
	return buffer, nil
}

// vulkanGeometryData is a shared mesh geometry living on the GPU.
type vulkanGeometryData struct {
	ID           uint32
	Generation   uint16
	VertexCount  uint32
	IndexCount   uint32
	VertexBuffer *VulkanBuffer
	IndexBuffer  *VulkanBuffer
}

func (g *vulkanGeometryData) destroy(context *VulkanContext) {
	if g.VertexBuffer != nil {
		g.VertexBuffer.Destroy(context)
	}
	if g.IndexBuffer != nil {
		g.IndexBuffer.Destroy(context)
	}
}
