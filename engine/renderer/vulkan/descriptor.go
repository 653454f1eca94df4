package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/citadel/engine/frame"
)

const (
	// Set 0 holds the object constants, set 1 the pass constants.
	objectDescriptorSet uint32 = 0
	passDescriptorSet   uint32 = 1
)

// VulkanDescriptors owns the descriptor pool and one set per constant buffer
// view, indexed the way frame.DescriptorLayout lays them out.
type VulkanDescriptors struct {
	ObjectSetLayout vk.DescriptorSetLayout
	PassSetLayout   vk.DescriptorSetLayout

	Pool   vk.DescriptorPool
	Sets   []vk.DescriptorSet
	Layout frame.DescriptorLayout
}

func createUniformSetLayout(context *VulkanContext) (vk.DescriptorSetLayout, error) {
	binding := vk.DescriptorSetLayoutBinding{
		Binding:         0,
		DescriptorType:  vk.DescriptorTypeUniformBuffer,
		DescriptorCount: 1,
		StageFlags:      vk.ShaderStageFlags(vk.ShaderStageVertexBit) | vk.ShaderStageFlags(vk.ShaderStageFragmentBit),
	}
	layoutInfo := vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: 1,
		PBindings:    []vk.DescriptorSetLayoutBinding{binding},
	}
	var layout vk.DescriptorSetLayout
	if res := vk.CreateDescriptorSetLayout(context.Device.LogicalDevice, &layoutInfo, context.Allocator, &layout); res != vk.Success {
		return vk.NullDescriptorSetLayout, fmt.Errorf("vkCreateDescriptorSetLayout failed with %s", VulkanResultString(res))
	}
	return layout, nil
}

// NewVulkanDescriptors creates the two set layouts. Sets are allocated per scene by Allocate.
func NewVulkanDescriptors(context *VulkanContext) (*VulkanDescriptors, error) {
	d := &VulkanDescriptors{}
	var err error
	if d.ObjectSetLayout, err = createUniformSetLayout(context); err != nil {
		return nil, fmt.Errorf("object set layout: %w", err)
	}
	if d.PassSetLayout, err = createUniformSetLayout(context); err != nil {
		d.Destroy(context)
		return nil, fmt.Errorf("pass set layout: %w", err)
	}
	return d, nil
}

// SetLayouts in set number order, for the pipeline layout.
func (d *VulkanDescriptors) SetLayouts() []vk.DescriptorSetLayout {
	return []vk.DescriptorSetLayout{d.ObjectSetLayout, d.PassSetLayout}
}

/**
 * @brief Creates a pool big enough for layout and writes one descriptor per
 * object per frame resource, plus one pass descriptor per frame resource.
 * Object o of frame f views objectBuffers[f] at o*objectStride.
 */
func (d *VulkanDescriptors) Allocate(context *VulkanContext, layout frame.DescriptorLayout, objectBuffers, passBuffers []*VulkanBuffer, objectStride, passStride uint64) error {
	if len(objectBuffers) != layout.FrameCount || len(passBuffers) != layout.FrameCount {
		return fmt.Errorf("descriptor layout wants %d frame buffers, got %d/%d", layout.FrameCount, len(objectBuffers), len(passBuffers))
	}
	device := context.Device.LogicalDevice
	total := uint32(layout.Total())

	poolSize := vk.DescriptorPoolSize{
		Type:            vk.DescriptorTypeUniformBuffer,
		DescriptorCount: total,
	}
	poolInfo := vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		PoolSizeCount: 1,
		PPoolSizes:    []vk.DescriptorPoolSize{poolSize},
		MaxSets:       total,
	}
	var pool vk.DescriptorPool
	if res := vk.CreateDescriptorPool(device, &poolInfo, context.Allocator, &pool); res != vk.Success {
		return fmt.Errorf("vkCreateDescriptorPool failed with %s", VulkanResultString(res))
	}
	d.Pool = pool
	d.Layout = layout

	// Object sets first, then the pass sets from PassOffset on.
	setLayouts := make([]vk.DescriptorSetLayout, total)
	for i := range setLayouts {
		if i < layout.PassOffset() {
			setLayouts[i] = d.ObjectSetLayout
		} else {
			setLayouts[i] = d.PassSetLayout
		}
	}
	allocInfo := vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		DescriptorPool:     d.Pool,
		DescriptorSetCount: total,
		PSetLayouts:        setLayouts,
	}
	d.Sets = make([]vk.DescriptorSet, total)
	if res := vk.AllocateDescriptorSets(device, &allocInfo, &d.Sets[0]); res != vk.Success {
		d.Release(context)
		return fmt.Errorf("vkAllocateDescriptorSets failed with %s", VulkanResultString(res))
	}

	writes := make([]vk.WriteDescriptorSet, 0, total)
	write := func(set vk.DescriptorSet, buffer vk.Buffer, offset, size uint64) {
		writes = append(writes, vk.WriteDescriptorSet{
			SType:           vk.StructureTypeWriteDescriptorSet,
			DstSet:          set,
			DstBinding:      0,
			DstArrayElement: 0,
			DescriptorType:  vk.DescriptorTypeUniformBuffer,
			DescriptorCount: 1,
			PBufferInfo: []vk.DescriptorBufferInfo{{
				Buffer: buffer,
				Offset: vk.DeviceSize(offset),
				Range:  vk.DeviceSize(size),
			}},
		})
	}
	for f := 0; f < layout.FrameCount; f++ {
		for o := 0; o < layout.ObjectCount; o++ {
			write(d.Sets[layout.ObjectIndex(f, o)], objectBuffers[f].Handle, uint64(o)*objectStride, frame.ObjectConstantsSize)
		}
		write(d.Sets[layout.PassIndex(f)], passBuffers[f].Handle, 0, passStride)
	}

	return context.Locks.SafeCall(DescriptorManagement, func() error {
		vk.UpdateDescriptorSets(device, uint32(len(writes)), writes, 0, nil)
		return nil
	})
}

// ObjectSet is the descriptor set viewing object o of frame resource f.
func (d *VulkanDescriptors) ObjectSet(f, o int) vk.DescriptorSet {
	return d.Sets[d.Layout.ObjectIndex(f, o)]
}

func (d *VulkanDescriptors) PassSet(f int) vk.DescriptorSet {
	return d.Sets[d.Layout.PassIndex(f)]
}

// Release frees the pool and every set in it, keeping the layouts.
func (d *VulkanDescriptors) Release(context *VulkanContext) {
	if d.Pool != vk.NullDescriptorPool {
		vk.DestroyDescriptorPool(context.Device.LogicalDevice, d.Pool, context.Allocator)
		d.Pool = vk.NullDescriptorPool
	}
	d.Sets = nil
	d.Layout = frame.DescriptorLayout{}
}

func (d *VulkanDescriptors) Destroy(context *VulkanContext) {
	d.Release(context)
	if d.ObjectSetLayout != vk.NullDescriptorSetLayout {
		vk.DestroyDescriptorSetLayout(context.Device.LogicalDevice, d.ObjectSetLayout, context.Allocator)
		d.ObjectSetLayout = vk.NullDescriptorSetLayout
	}
	if d.PassSetLayout != vk.NullDescriptorSetLayout {
		vk.DestroyDescriptorSetLayout(context.Device.LogicalDevice, d.PassSetLayout, context.Allocator)
		d.PassSetLayout = vk.NullDescriptorSetLayout
	}
}
