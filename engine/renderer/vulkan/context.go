package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
)

type VulkanContext struct {
	// The framebuffer's current width.
	FramebufferWidth uint32
	// The framebuffer's current height.
	FramebufferHeight uint32
	// Current generation of framebuffer size. If it does not match FramebufferSizeLastGeneration,
	// a new swapchain should be created.
	FramebufferSizeGeneration uint64
	// The generation of the framebuffer when it was last created.
	FramebufferSizeLastGeneration uint64

	Instance  vk.Instance
	Allocator *vk.AllocationCallbacks
	Surface   vk.Surface

	debugMessenger vk.DebugReportCallback

	Device *VulkanDevice

	Swapchain      *VulkanSwapchain
	MainRenderpass *VulkanRenderpass

	// One command buffer per frame resource slot.
	GraphicsCommandBuffers []*VulkanCommandBuffer

	// Signalled by the swapchain when an image is ready, one per slot.
	ImageAvailableSemaphores []vk.Semaphore
	// Signalled when rendering to a swapchain image is done, one per swapchain image.
	QueueCompleteSemaphores []vk.Semaphore

	// One per slot. These are the fences the frame ring's timeline is built on.
	InFlightFences []*VulkanFence

	// The slot whose fence last used each swapchain image, -1 for none.
	ImagesInFlight []int

	ImageIndex uint32

	RecreatingSwapchain bool

	Locks *VulkanLockPool
}

func (vc *VulkanContext) FindMemoryIndex(typeFilter uint32, propertyFlags vk.MemoryPropertyFlags) (uint32, error) {
	var memoryProperties vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(vc.Device.PhysicalDevice, &memoryProperties)
	memoryProperties.Deref()

	for i := uint32(0); i < memoryProperties.MemoryTypeCount; i++ {
		// Check each memory type to see if its bit is set to 1.
		memoryType := memoryProperties.MemoryTypes[i]
		memoryType.Deref()
		if (typeFilter&(1<<i)) != 0 && (memoryType.PropertyFlags&propertyFlags) == propertyFlags {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unable to find suitable memory type for filter %b", typeFilter)
}
