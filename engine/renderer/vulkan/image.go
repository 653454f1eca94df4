package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
)

type VulkanImage struct {
	Handle vk.Image
	Memory vk.DeviceMemory
	View   vk.ImageView
	Width  uint32
	Height uint32
}

// ImageCreate creates a 2D image, binds memory to it and creates a view with the given aspect.
func ImageCreate(
	context *VulkanContext,
	width, height uint32,
	format vk.Format,
	tiling vk.ImageTiling,
	usage vk.ImageUsageFlags,
	memoryFlags vk.MemoryPropertyFlags,
	viewAspectFlags vk.ImageAspectFlags,
) (*VulkanImage, error) {
	image := &VulkanImage{Width: width, Height: height}
	device := context.Device.LogicalDevice

	imageCreateInfo := vk.ImageCreateInfo{
		SType:     vk.StructureTypeImageCreateInfo,
		ImageType: vk.ImageType2d,
		Extent: vk.Extent3D{
			Width:  width,
			Height: height,
			Depth:  1,
		},
		MipLevels:     1,
		ArrayLayers:   1,
		Format:        format,
		Tiling:        tiling,
		InitialLayout: vk.ImageLayoutUndefined,
		Usage:         usage,
		Samples:       vk.SampleCount1Bit,
		SharingMode:   vk.SharingModeExclusive,
	}

	var handle vk.Image
	if res := vk.CreateImage(device, &imageCreateInfo, context.Allocator, &handle); res != vk.Success {
		return nil, fmt.Errorf("vkCreateImage failed with %s", VulkanResultString(res))
	}
	image.Handle = handle

	var memoryRequirements vk.MemoryRequirements
	vk.GetImageMemoryRequirements(device, image.Handle, &memoryRequirements)
	memoryRequirements.Deref()

	memoryType, err := context.FindMemoryIndex(memoryRequirements.MemoryTypeBits, memoryFlags)
	if err != nil {
		image.ImageDestroy(context)
		return nil, err
	}

	allocateInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  memoryRequirements.Size,
		MemoryTypeIndex: memoryType,
	}
	var memory vk.DeviceMemory
	if res := vk.AllocateMemory(device, &allocateInfo, context.Allocator, &memory); res != vk.Success {
		image.ImageDestroy(context)
		return nil, fmt.Errorf("failed to allocate image memory: %s", VulkanResultString(res))
	}
	image.Memory = memory

	// TODO: configurable memory offset once images share allocations.
	if res := vk.BindImageMemory(device, image.Handle, image.Memory, 0); res != vk.Success {
		image.ImageDestroy(context)
		return nil, fmt.Errorf("failed to bind image memory: %s", VulkanResultString(res))
	}

	viewCreateInfo := vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    image.Handle,
		ViewType: vk.ImageViewType2d,
		Format:   format,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: viewAspectFlags,
			LevelCount: 1,
			LayerCount: 1,
		},
	}
	var view vk.ImageView
	if res := vk.CreateImageView(device, &viewCreateInfo, context.Allocator, &view); res != vk.Success {
		image.ImageDestroy(context)
		return nil, fmt.Errorf("failed to create image view: %s", VulkanResultString(res))
	}
	image.View = view

	return image, nil
}

func (image *VulkanImage) ImageDestroy(context *VulkanContext) {
	device := context.Device.LogicalDevice
	if image.View != vk.NullImageView {
		vk.DestroyImageView(device, image.View, context.Allocator)
		image.View = vk.NullImageView
	}
	if image.Memory != vk.NullDeviceMemory {
		vk.FreeMemory(device, image.Memory, context.Allocator)
		image.Memory = vk.NullDeviceMemory
	}
	if image.Handle != vk.NullImage {
		vk.DestroyImage(device, image.Handle, context.Allocator)
		image.Handle = vk.NullImage
	}
}
