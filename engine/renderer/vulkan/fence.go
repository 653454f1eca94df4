package vulkan

import (
	"fmt"
	"time"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/citadel/engine/core"
)

type VulkanFence struct {
	Handle     vk.Fence
	IsSignaled bool
}

func NewFence(context *VulkanContext, createSignaled bool) (*VulkanFence, error) {
	fence := &VulkanFence{
		// Make sure to signal the fence if required.
		IsSignaled: createSignaled,
	}

	fenceCreateInfo := vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
	}
	if fence.IsSignaled {
		fenceCreateInfo.Flags = vk.FenceCreateFlags(vk.FenceCreateSignaledBit)
	}

	var handle vk.Fence
	if res := vk.CreateFence(context.Device.LogicalDevice, &fenceCreateInfo, context.Allocator, &handle); res != vk.Success {
		return nil, fmt.Errorf("failed to create fence: %s", VulkanResultString(res))
	}
	fence.Handle = handle
	return fence, nil
}

func (vf *VulkanFence) FenceDestroy(context *VulkanContext) {
	if vf.Handle != vk.NullFence {
		vk.DestroyFence(context.Device.LogicalDevice, vf.Handle, context.Allocator)
		vf.Handle = vk.NullFence
	}
	vf.IsSignaled = false
}

// FenceWait blocks for at most timeoutNs. ok is false on timeout.
func (vf *VulkanFence) FenceWait(context *VulkanContext, timeoutNs uint64) (bool, error) {
	if vf.IsSignaled {
		// If already signaled, do not wait.
		return true, nil
	}
	result := vk.WaitForFences(context.Device.LogicalDevice, 1, []vk.Fence{vf.Handle}, vk.True, timeoutNs)
	switch result {
	case vk.Success:
		vf.IsSignaled = true
		return true, nil
	case vk.Timeout:
		core.LogDebug("vk_fence_wait - Timed out")
		return false, nil
	}
	return false, fmt.Errorf("vk_fence_wait: %s", VulkanResultString(result))
}

// FenceStatus polls the fence without blocking.
func (vf *VulkanFence) FenceStatus(context *VulkanContext) (bool, error) {
	if vf.IsSignaled {
		return true, nil
	}
	result := vk.GetFenceStatus(context.Device.LogicalDevice, vf.Handle)
	switch result {
	case vk.Success:
		vf.IsSignaled = true
		return true, nil
	case vk.NotReady:
		return false, nil
	}
	return false, fmt.Errorf("vkGetFenceStatus: %s", VulkanResultString(result))
}

func (vf *VulkanFence) FenceReset(context *VulkanContext) error {
	if vf.IsSignaled {
		if res := vk.ResetFences(context.Device.LogicalDevice, 1, []vk.Fence{vf.Handle}); res != vk.Success {
			return fmt.Errorf("failed to reset fence: %s", VulkanResultString(res))
		}
		vf.IsSignaled = false
	}
	return nil
}

// slotFences exposes the in-flight fences to the frame ring.
type slotFences struct {
	context *VulkanContext
}

func (s slotFences) Signaled(slot int) (bool, error) {
	return s.context.InFlightFences[slot].FenceStatus(s.context)
}

func (s slotFences) WaitSlot(slot int, timeout time.Duration) (bool, error) {
	return s.context.InFlightFences[slot].FenceWait(s.context, uint64(timeout.Nanoseconds()))
}
