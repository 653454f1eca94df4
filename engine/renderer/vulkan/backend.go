package vulkan

import (
	"context"
	"fmt"
	gomath "math"
	"runtime"
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/citadel/engine/core"
	"github.com/spaghettifunk/citadel/engine/frame"
	"github.com/spaghettifunk/citadel/engine/math"
	"github.com/spaghettifunk/citadel/engine/platform"
	"github.com/spaghettifunk/citadel/engine/renderer/metadata"
	"github.com/spaghettifunk/citadel/engine/scene"
)

type VulkanRenderer struct {
	platform                *platform.Platform
	config                  *metadata.RendererBackendConfig
	context                 *VulkanContext
	cachedFramebufferWidth  uint32
	cachedFramebufferHeight uint32

	framesInFlight   int
	uniformAlignment uint64

	shaderStages []*VulkanShaderStage
	pipelines    map[pipelineKey]*VulkanPipeline
	descriptors  *VulkanDescriptors

	geometries     map[uint32]*vulkanGeometryData
	nextGeometryID uint32

	objectBuffers []*VulkanBuffer
	passBuffers   []*VulkanBuffer

	debug bool
}

// pipelineKey selects a pipeline by primitive topology and polygon fill.
type pipelineKey struct {
	topology  scene.PrimitiveTopology
	wireframe bool
}

func New(p *platform.Platform) *VulkanRenderer {
	return &VulkanRenderer{
		platform: p,
		context: &VulkanContext{
			Allocator: nil,
			Locks:     NewVulkanLockPool(),
		},
		pipelines:      make(map[pipelineKey]*VulkanPipeline),
		geometries:     make(map[uint32]*vulkanGeometryData),
		nextGeometryID: 1,
	}
}

func (vr *VulkanRenderer) Initialize(config *metadata.RendererBackendConfig) error {
	if config.FramesInFlight < 1 {
		return fmt.Errorf("%w: frames in flight must be at least 1", core.ErrInvalidConfig)
	}
	vr.config = config
	vr.framesInFlight = config.FramesInFlight
	vr.debug = config.Validation

	procAddr := glfw.GetVulkanGetInstanceProcAddress()
	if procAddr == nil {
		return fmt.Errorf("GetInstanceProcAddress is nil")
	}
	vk.SetGetInstanceProcAddr(procAddr)

	if err := vk.Init(); err != nil {
		return fmt.Errorf("failed to initialize vk: %w", err)
	}

	vr.context.FramebufferWidth = config.Width
	vr.context.FramebufferHeight = config.Height

	if err := vr.createInstance(config.ApplicationName); err != nil {
		return err
	}

	// Debugger
	if vr.debug {
		core.LogDebug("Creating Vulkan debugger...")
		debugCreateInfo := vk.DebugReportCallbackCreateInfo{
			SType:       vk.StructureTypeDebugReportCallbackCreateInfo,
			Flags:       vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit | vk.DebugReportPerformanceWarningBit),
			PfnCallback: dbgCallbackFunc,
		}
		var dbg vk.DebugReportCallback
		if err := vk.Error(vk.CreateDebugReportCallback(vr.context.Instance, &debugCreateInfo, nil, &dbg)); err != nil {
			return fmt.Errorf("vk.CreateDebugReportCallback failed with %w", err)
		}
		vr.context.debugMessenger = dbg
		core.LogDebug("Vulkan debugger created.")
	}

	// Surface
	core.LogDebug("Creating Vulkan surface...")
	surface, err := vr.platform.CreateWindowSurface(vr.context.Instance)
	if err != nil {
		return fmt.Errorf("vulkan surface creation failed: %w", err)
	}
	vr.context.Surface = vk.SurfaceFromPointer(surface)
	core.LogDebug("Vulkan surface created.")

	// Device creation
	vr.context.Device = &VulkanDevice{SwapchainSupport: &VulkanSwapchainSupportInfo{}}
	if err := DeviceCreate(vr.context); err != nil {
		return fmt.Errorf("failed to create device: %w", err)
	}
	limits := vr.context.Device.Properties.Limits
	limits.Deref()
	vr.uniformAlignment = uint64(limits.MinUniformBufferOffsetAlignment)
	if vr.uniformAlignment == 0 {
		vr.uniformAlignment = frame.DefaultConstantBufferAlignment
	}

	// Swapchain
	sc, err := SwapchainCreate(vr.context, vr.context.FramebufferWidth, vr.context.FramebufferHeight, config.VSync)
	if err != nil {
		return err
	}
	vr.context.Swapchain = sc
	vr.context.FramebufferWidth = sc.Extent.Width
	vr.context.FramebufferHeight = sc.Extent.Height

	rp, err := RenderpassCreate(
		vr.context,
		0, 0, float32(vr.context.FramebufferWidth), float32(vr.context.FramebufferHeight),
		config.ClearColour,
		1.0,
		0)
	if err != nil {
		return err
	}
	vr.context.MainRenderpass = rp

	// Swapchain framebuffers.
	if err := vr.regenerateFramebuffers(); err != nil {
		return err
	}

	if err := vr.createCommandBuffers(); err != nil {
		return err
	}

	if err := vr.createSyncObjects(); err != nil {
		return err
	}

	vr.descriptors, err = NewVulkanDescriptors(vr.context)
	if err != nil {
		return err
	}

	if err := vr.createPipelines(); err != nil {
		return err
	}

	core.LogInfo("Vulkan renderer initialized successfully.")
	return nil
}

func (vr *VulkanRenderer) createInstance(appName string) error {
	appInfo := &vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		ApiVersion:         uint32(vk.MakeVersion(1, 1, 0)),
		ApplicationVersion: uint32(vk.MakeVersion(1, 0, 0)),
		PApplicationName:   VulkanSafeString(appName),
		PEngineName:        VulkanSafeString("Citadel"),
	}

	createInfo := vk.InstanceCreateInfo{
		SType:            vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: appInfo,
	}

	// Obtain a list of required extensions
	requiredExtensions := vr.platform.GetRequiredExtensionNames()
	if runtime.GOOS == "darwin" {
		requiredExtensions = append(requiredExtensions,
			"VK_KHR_portability_enumeration",
			"VK_KHR_get_physical_device_properties2",
		)
		// VK_INSTANCE_CREATE_ENUMERATE_PORTABILITY_BIT_KHR
		createInfo.Flags |= 1
	}
	if vr.debug {
		requiredExtensions = append(requiredExtensions, vk.ExtDebugReportExtensionName)
	}
	core.LogDebug("Required extensions: %v", requiredExtensions)

	createInfo.EnabledExtensionCount = uint32(len(requiredExtensions))
	createInfo.PpEnabledExtensionNames = VulkanSafeStrings(requiredExtensions)

	// Validation layers.
	var requiredValidationLayerNames []string
	if vr.debug {
		core.LogInfo("Validation layers enabled. Enumerating...")
		requiredValidationLayerNames = []string{"VK_LAYER_KHRONOS_validation"}

		var availableLayerCount uint32
		if res := vk.EnumerateInstanceLayerProperties(&availableLayerCount, nil); res != vk.Success {
			return fmt.Errorf("vkEnumerateInstanceLayerProperties failed with %s", VulkanResultString(res))
		}
		availableLayers := make([]vk.LayerProperties, availableLayerCount)
		if res := vk.EnumerateInstanceLayerProperties(&availableLayerCount, availableLayers); res != vk.Success {
			return fmt.Errorf("vkEnumerateInstanceLayerProperties failed with %s", VulkanResultString(res))
		}

		// Verify all required layers are available.
		for _, required := range requiredValidationLayerNames {
			found := false
			for j := range availableLayers {
				availableLayers[j].Deref()
				if required == vk.ToString(availableLayers[j].LayerName[:]) {
					found = true
					break
				}
			}
			if !found {
				return fmt.Errorf("required validation layer is missing: %s", required)
			}
		}
		core.LogInfo("All required validation layers are present.")
	}

	createInfo.EnabledLayerCount = uint32(len(requiredValidationLayerNames))
	createInfo.PpEnabledLayerNames = VulkanSafeStrings(requiredValidationLayerNames)

	var instance vk.Instance
	if res := vk.CreateInstance(&createInfo, vr.context.Allocator, &instance); res != vk.Success {
		return fmt.Errorf("failed in creating the Vulkan Instance with error `%s`", VulkanResultString(res))
	}
	vr.context.Instance = instance
	if err := vk.InitInstance(vr.context.Instance); err != nil {
		return err
	}

	core.LogInfo("Vulkan Instance created.")
	return nil
}

func (vr *VulkanRenderer) createSyncObjects() error {
	device := vr.context.Device.LogicalDevice
	semaphoreCreateInfo := vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
	}

	vr.context.ImageAvailableSemaphores = make([]vk.Semaphore, vr.framesInFlight)
	vr.context.InFlightFences = make([]*VulkanFence, vr.framesInFlight)
	for i := 0; i < vr.framesInFlight; i++ {
		var semaphore vk.Semaphore
		if res := vk.CreateSemaphore(device, &semaphoreCreateInfo, vr.context.Allocator, &semaphore); res != vk.Success {
			return fmt.Errorf("failed to create image available semaphore: %s", VulkanResultString(res))
		}
		vr.context.ImageAvailableSemaphores[i] = semaphore

		// Create the fence in a signaled state, indicating that the first frame has already been "rendered".
		f, err := NewFence(vr.context, true)
		if err != nil {
			return err
		}
		vr.context.InFlightFences[i] = f
	}
	return vr.createImageSyncObjects()
}

// createImageSyncObjects makes the per swapchain image semaphores. A semaphore
// waited on by present is only safe to reuse once that image is acquired again.
func (vr *VulkanRenderer) createImageSyncObjects() error {
	device := vr.context.Device.LogicalDevice
	semaphoreCreateInfo := vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
	}
	count := int(vr.context.Swapchain.ImageCount)
	vr.context.QueueCompleteSemaphores = make([]vk.Semaphore, count)
	vr.context.ImagesInFlight = make([]int, count)
	for i := 0; i < count; i++ {
		var semaphore vk.Semaphore
		if res := vk.CreateSemaphore(device, &semaphoreCreateInfo, vr.context.Allocator, &semaphore); res != vk.Success {
			return fmt.Errorf("failed to create queue complete semaphore: %s", VulkanResultString(res))
		}
		vr.context.QueueCompleteSemaphores[i] = semaphore
		vr.context.ImagesInFlight[i] = -1
	}
	return nil
}

func (vr *VulkanRenderer) destroyImageSyncObjects() {
	for i, s := range vr.context.QueueCompleteSemaphores {
		if s != vk.NullSemaphore {
			vk.DestroySemaphore(vr.context.Device.LogicalDevice, s, vr.context.Allocator)
			vr.context.QueueCompleteSemaphores[i] = vk.NullSemaphore
		}
	}
	vr.context.QueueCompleteSemaphores = nil
	vr.context.ImagesInFlight = nil
}

func (vr *VulkanRenderer) createPipelines() error {
	vertex, err := NewShaderStage(vr.context, vr.config.VertexShader, vk.ShaderStageVertexBit)
	if err != nil {
		return fmt.Errorf("%s shader: %w", metadata.ShaderStageVertex, err)
	}
	vr.shaderStages = append(vr.shaderStages, vertex)
	fragment, err := NewShaderStage(vr.context, vr.config.FragmentShader, vk.ShaderStageFragmentBit)
	if err != nil {
		return fmt.Errorf("%s shader: %w", metadata.ShaderStageFragment, err)
	}
	vr.shaderStages = append(vr.shaderStages, fragment)

	stages := []vk.PipelineShaderStageCreateInfo{vertex.ShaderStageCreateInfo, fragment.ShaderStageCreateInfo}
	width := float32(vr.context.FramebufferWidth)
	height := float32(vr.context.FramebufferHeight)

	topologies := map[scene.PrimitiveTopology]vk.PrimitiveTopology{
		scene.TopologyTriangleList: vk.PrimitiveTopologyTriangleList,
		scene.TopologyLineList:     vk.PrimitiveTopologyLineList,
	}
	keys := []pipelineKey{
		{topology: scene.TopologyTriangleList},
		{topology: scene.TopologyLineList},
	}
	// Line lists already draw edges; only triangles get a line-fill twin.
	if vr.SupportsWireframe() {
		keys = append(keys, pipelineKey{topology: scene.TopologyTriangleList, wireframe: true})
	}
	for _, key := range keys {
		config := &VulkanPipelineConfig{
			Renderpass:           vr.context.MainRenderpass,
			Stride:               uint32(unsafe.Sizeof(math.Vertex3D{})),
			Attributes:           vertexAttributes(),
			DescriptorSetLayouts: vr.descriptors.SetLayouts(),
			Stages:               stages,
			Viewport:             vk.Viewport{Width: width, Height: height, MaxDepth: 1.0},
			Scissor:              vk.Rect2D{Extent: vk.Extent2D{Width: vr.context.FramebufferWidth, Height: vr.context.FramebufferHeight}},
			CullMode:             vr.config.CullMode,
			IsWireframe:          key.wireframe,
			DepthTest:            true,
			DepthWrite:           true,
			Topology:             topologies[key.topology],
		}
		p, err := NewGraphicsPipeline(vr.context, config)
		if err != nil {
			return fmt.Errorf("pipeline for topology %d (wireframe %t): %w", key.topology, key.wireframe, err)
		}
		vr.pipelines[key] = p
	}
	return nil
}

// SupportsWireframe reports whether the device can rasterise polygons as lines.
func (vr *VulkanRenderer) SupportsWireframe() bool {
	return vr.context.Device != nil && vr.context.Device.Features.FillModeNonSolid == vk.True
}

func (vr *VulkanRenderer) Shutdown() error {
	if vr.context.Device == nil || vr.context.Device.LogicalDevice == nil {
		return nil
	}
	vk.DeviceWaitIdle(vr.context.Device.LogicalDevice)

	// Destroy in the opposite order of creation.
	vr.DestroyFrameResources()
	for id, g := range vr.geometries {
		g.destroy(vr.context)
		delete(vr.geometries, id)
	}

	for key, p := range vr.pipelines {
		p.Destroy(vr.context)
		delete(vr.pipelines, key)
	}
	for _, s := range vr.shaderStages {
		s.Destroy(vr.context)
	}
	vr.shaderStages = nil
	if vr.descriptors != nil {
		vr.descriptors.Destroy(vr.context)
	}

	// Sync objects
	for i := range vr.context.ImageAvailableSemaphores {
		if vr.context.ImageAvailableSemaphores[i] != vk.NullSemaphore {
			vk.DestroySemaphore(vr.context.Device.LogicalDevice, vr.context.ImageAvailableSemaphores[i], vr.context.Allocator)
			vr.context.ImageAvailableSemaphores[i] = vk.NullSemaphore
		}
		vr.context.InFlightFences[i].FenceDestroy(vr.context)
	}
	vr.context.ImageAvailableSemaphores = nil
	vr.context.InFlightFences = nil
	vr.destroyImageSyncObjects()

	// Command buffers
	for _, cb := range vr.context.GraphicsCommandBuffers {
		cb.Free(vr.context, vr.context.Device.GraphicsCommandPool)
	}
	vr.context.GraphicsCommandBuffers = nil

	vr.destroyFramebuffers()
	vr.context.MainRenderpass.RenderpassDestroy(vr.context)
	vr.context.Swapchain.SwapchainDestroy(vr.context)

	core.LogDebug("Destroying Vulkan device...")
	DeviceDestroy(vr.context)

	core.LogDebug("Destroying Vulkan surface...")
	if vr.context.Surface != vk.NullSurface {
		vk.DestroySurface(vr.context.Instance, vr.context.Surface, vr.context.Allocator)
		vr.context.Surface = vk.NullSurface
	}

	if vr.debug && vr.context.debugMessenger != vk.NullDebugReportCallback {
		core.LogDebug("Destroying Vulkan debugger...")
		vk.DestroyDebugReportCallback(vr.context.Instance, vr.context.debugMessenger, vr.context.Allocator)
	}

	core.LogDebug("Destroying Vulkan instance...")
	vk.DestroyInstance(vr.context.Instance, vr.context.Allocator)
	return nil
}

func (vr *VulkanRenderer) Resized(width, height uint32) error {
	// Update the "framebuffer size generation", a counter which indicates when the
	// framebuffer size has been updated.
	vr.cachedFramebufferWidth = width
	vr.cachedFramebufferHeight = height
	vr.context.FramebufferSizeGeneration++

	core.LogInfo("Vulkan renderer backend->resized: w/h/gen: %d/%d/%d", width, height, vr.context.FramebufferSizeGeneration)
	return nil
}

func (vr *VulkanRenderer) FramesInFlight() int {
	return vr.framesInFlight
}

func (vr *VulkanRenderer) Fences() frame.SlotFences {
	return slotFences{context: vr.context}
}

func (vr *VulkanRenderer) UniformAlignment() uint64 {
	return vr.uniformAlignment
}

// CreateGeometry uploads the shared vertex and index buffers to device local memory.
func (vr *VulkanRenderer) CreateGeometry(geometry *scene.MeshGeometry) error {
	if len(geometry.Vertices) == 0 || len(geometry.Indices) == 0 {
		return fmt.Errorf("geometry '%s' is empty", geometry.Name)
	}
	if old, ok := vr.geometries[geometry.InternalID]; ok && geometry.InternalID != 0 {
		old.destroy(vr.context)
		delete(vr.geometries, geometry.InternalID)
	}

	vertexBuffer, err := uploadDeviceLocal(vr.context, geometry.VertexBytes(), vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit))
	if err != nil {
		return fmt.Errorf("vertex buffer: %w", err)
	}
	indexBuffer, err := uploadDeviceLocal(vr.context, geometry.IndexBytes(), vk.BufferUsageFlags(vk.BufferUsageIndexBufferBit))
	if err != nil {
		vertexBuffer.Destroy(vr.context)
		return fmt.Errorf("index buffer: %w", err)
	}

	geometry.InternalID = vr.nextGeometryID
	geometry.Generation++
	vr.nextGeometryID++
	vr.geometries[geometry.InternalID] = &vulkanGeometryData{
		ID:           geometry.InternalID,
		Generation:   geometry.Generation,
		VertexCount:  uint32(len(geometry.Vertices)),
		IndexCount:   uint32(len(geometry.Indices)),
		VertexBuffer: vertexBuffer,
		IndexBuffer:  indexBuffer,
	}
	core.LogDebug("Uploaded geometry '%s' (id %d): %d vertices, %d indices.", geometry.Name, geometry.InternalID, len(geometry.Vertices), len(geometry.Indices))
	return nil
}

func (vr *VulkanRenderer) DestroyGeometry(geometry *scene.MeshGeometry) {
	if g, ok := vr.geometries[geometry.InternalID]; ok {
		g.destroy(vr.context)
		delete(vr.geometries, geometry.InternalID)
	}
	geometry.InternalID = 0
}

/**
 * @brief Creates one persistently mapped object buffer and one pass buffer per
 * frame slot, and the descriptor sets viewing them.
 */
func (vr *VulkanRenderer) CreateFrameResources(objectCount int) ([]*frame.FrameResource, error) {
	if len(vr.objectBuffers) > 0 {
		return nil, fmt.Errorf("frame resources already exist")
	}
	objectStride := frame.AlignConstantBufferSize(frame.ObjectConstantsSize, vr.uniformAlignment)
	passStride := frame.AlignConstantBufferSize(frame.PassConstantsSize, vr.uniformAlignment)
	hostVisible := vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit) | vk.MemoryPropertyFlags(vk.MemoryPropertyHostCoherentBit)
	usage := vk.BufferUsageFlags(vk.BufferUsageUniformBufferBit)

	resources := make([]*frame.FrameResource, vr.framesInFlight)
	for i := range resources {
		objectBuffer, err := BufferCreate(vr.context, objectStride*uint64(objectCount), usage, hostVisible)
		if err != nil {
			vr.DestroyFrameResources()
			return nil, fmt.Errorf("object constants of frame %d: %w", i, err)
		}
		vr.objectBuffers = append(vr.objectBuffers, objectBuffer)
		passBuffer, err := BufferCreate(vr.context, passStride, usage, hostVisible)
		if err != nil {
			vr.DestroyFrameResources()
			return nil, fmt.Errorf("pass constants of frame %d: %w", i, err)
		}
		vr.passBuffers = append(vr.passBuffers, passBuffer)

		objectMem, err := objectBuffer.Map(vr.context)
		if err != nil {
			vr.DestroyFrameResources()
			return nil, err
		}
		passMem, err := passBuffer.Map(vr.context)
		if err != nil {
			vr.DestroyFrameResources()
			return nil, err
		}
		objectCB, err := frame.WrapHostBuffer(objectMem, objectCount, objectStride)
		if err != nil {
			vr.DestroyFrameResources()
			return nil, err
		}
		passCB, err := frame.WrapHostBuffer(passMem, 1, passStride)
		if err != nil {
			vr.DestroyFrameResources()
			return nil, err
		}
		resources[i] = &frame.FrameResource{Index: i, ObjectCB: objectCB, PassCB: passCB}
	}

	layout := frame.DescriptorLayout{ObjectCount: objectCount, FrameCount: vr.framesInFlight}
	if err := vr.descriptors.Allocate(vr.context, layout, vr.objectBuffers, vr.passBuffers, objectStride, passStride); err != nil {
		vr.DestroyFrameResources()
		return nil, err
	}
	core.LogDebug("Frame resources created: %d slots, %d objects, stride %d.", vr.framesInFlight, objectCount, objectStride)
	return resources, nil
}

func (vr *VulkanRenderer) DestroyFrameResources() {
	if vr.descriptors != nil {
		vr.descriptors.Release(vr.context)
	}
	for _, b := range vr.objectBuffers {
		b.Destroy(vr.context)
	}
	for _, b := range vr.passBuffers {
		b.Destroy(vr.context)
	}
	vr.objectBuffers = nil
	vr.passBuffers = nil
}

func (vr *VulkanRenderer) BeginFrame(ctx context.Context, fr *frame.FrameResource) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	device := vr.context.Device
	// Check if recreating swap chain and boot out.
	if vr.context.RecreatingSwapchain {
		if result := vk.DeviceWaitIdle(device.LogicalDevice); !VulkanResultIsSuccess(result) {
			return fmt.Errorf("vkDeviceWaitIdle (1) failed: '%s'", VulkanResultString(result))
		}
		core.LogInfo("Recreating swapchain, booting.")
		return core.ErrSwapchainBooting
	}

	// Check if the framebuffer has been resized. If so, a new swapchain must be created.
	if vr.context.FramebufferSizeGeneration != vr.context.FramebufferSizeLastGeneration {
		if result := vk.DeviceWaitIdle(device.LogicalDevice); !VulkanResultIsSuccess(result) {
			return fmt.Errorf("vkDeviceWaitIdle (2) failed: '%s'", VulkanResultString(result))
		}
		// A failed recreation (for example a minimised window) keeps the generations
		// apart, so the next frame tries again.
		if _, err := vr.recreateSwapchain(); err != nil {
			return err
		}
		core.LogInfo("Resized, booting.")
		return core.ErrSwapchainBooting
	}

	slot := fr.Index
	// The ring has already waited for this slot; this only catches a caller that did not.
	if _, err := vr.context.InFlightFences[slot].FenceWait(vr.context, gomath.MaxUint64); err != nil {
		return err
	}

	// Acquire the next image from the swap chain. Pass along the semaphore that should signaled when this completes.
	// This same semaphore will later be waited on by the queue submission to ensure this image is available.
	imageIndex, ok, err := vr.context.Swapchain.SwapchainAcquireNextImageIndex(vr.context, gomath.MaxUint64, vr.context.ImageAvailableSemaphores[slot], vk.NullFence)
	if err != nil {
		return err
	}
	if !ok {
		// Trigger swapchain recreation, then boot out of the render loop.
		vr.markSwapchainStale()
		return core.ErrSwapchainBooting
	}
	vr.context.ImageIndex = imageIndex

	// Make sure the previous frame is not using this image.
	if owner := vr.context.ImagesInFlight[imageIndex]; owner >= 0 && owner != slot {
		if _, err := vr.context.InFlightFences[owner].FenceWait(vr.context, gomath.MaxUint64); err != nil {
			return err
		}
	}

	// Begin recording commands.
	commandBuffer := vr.context.GraphicsCommandBuffers[slot]
	if err := commandBuffer.Reset(); err != nil {
		return err
	}
	if err := commandBuffer.Begin(false, false, false); err != nil {
		return err
	}

	// Dynamic state. The y axis is flipped in the vertex shader.
	viewport := vk.Viewport{
		X:        0.0,
		Y:        0.0,
		Width:    float32(vr.context.FramebufferWidth),
		Height:   float32(vr.context.FramebufferHeight),
		MinDepth: 0.0,
		MaxDepth: 1.0,
	}
	scissor := vk.Rect2D{
		Offset: vk.Offset2D{X: 0, Y: 0},
		Extent: vk.Extent2D{
			Width:  vr.context.FramebufferWidth,
			Height: vr.context.FramebufferHeight,
		},
	}
	vk.CmdSetViewport(commandBuffer.Handle, 0, 1, []vk.Viewport{viewport})
	vk.CmdSetScissor(commandBuffer.Handle, 0, 1, []vk.Rect2D{scissor})

	vr.context.MainRenderpass.W = float32(vr.context.FramebufferWidth)
	vr.context.MainRenderpass.H = float32(vr.context.FramebufferHeight)

	// Begin the render pass.
	vr.context.MainRenderpass.RenderpassBegin(commandBuffer, vr.context.Swapchain.Framebuffers[imageIndex].Handle)
	return nil
}

// DrawRenderItems records one indexed draw per item, binding the object's
// descriptor set of this frame resource before each one. wireframe swaps the
// triangle pipeline for its line-fill twin when the device has one.
func (vr *VulkanRenderer) DrawRenderItems(fr *frame.FrameResource, items []*scene.RenderItem, wireframe bool) error {
	commandBuffer := vr.context.GraphicsCommandBuffers[fr.Index]
	if commandBuffer.State != COMMAND_BUFFER_STATE_IN_RENDER_PASS {
		return fmt.Errorf("draw outside of a render pass")
	}
	layout := vr.pipelines[pipelineKey{topology: scene.TopologyTriangleList}].PipelineLayout

	// Set layouts are shared by every pipeline, so the pass set survives pipeline switches.
	vk.CmdBindDescriptorSets(commandBuffer.Handle, vk.PipelineBindPointGraphics, layout,
		passDescriptorSet, 1, []vk.DescriptorSet{vr.descriptors.PassSet(fr.Index)}, 0, nil)

	var (
		boundPipeline *VulkanPipeline
		boundGeometry uint32
	)
	for _, item := range items {
		if int(item.ObjCBIndex) >= vr.descriptors.Layout.ObjectCount {
			return fmt.Errorf("render item '%s' uses object slot %d of %d", item.Name, item.ObjCBIndex, vr.descriptors.Layout.ObjectCount)
		}
		key := pipelineKey{topology: item.Topology, wireframe: wireframe && item.Topology == scene.TopologyTriangleList}
		pipeline, ok := vr.pipelines[key]
		if !ok && key.wireframe {
			key.wireframe = false
			pipeline, ok = vr.pipelines[key]
		}
		if !ok {
			return fmt.Errorf("render item '%s' has unsupported topology %d", item.Name, item.Topology)
		}
		if pipeline != boundPipeline {
			pipeline.Bind(commandBuffer, vk.PipelineBindPointGraphics)
			boundPipeline = pipeline
		}

		if item.Geo == nil {
			return fmt.Errorf("render item '%s' has no geometry", item.Name)
		}
		if item.Geo.InternalID != boundGeometry {
			g, ok := vr.geometries[item.Geo.InternalID]
			if !ok {
				return fmt.Errorf("geometry '%s' of render item '%s' is not uploaded", item.Geo.Name, item.Name)
			}
			vk.CmdBindVertexBuffers(commandBuffer.Handle, 0, 1, []vk.Buffer{g.VertexBuffer.Handle}, []vk.DeviceSize{0})
			vk.CmdBindIndexBuffer(commandBuffer.Handle, g.IndexBuffer.Handle, 0, vk.IndexTypeUint32)
			boundGeometry = g.ID
		}

		vk.CmdBindDescriptorSets(commandBuffer.Handle, vk.PipelineBindPointGraphics, layout,
			objectDescriptorSet, 1, []vk.DescriptorSet{vr.descriptors.ObjectSet(fr.Index, int(item.ObjCBIndex))}, 0, nil)
		vk.CmdDrawIndexed(commandBuffer.Handle, item.IndexCount, 1, item.StartIndexLocation, item.BaseVertexLocation, 0)
	}
	return nil
}

func (vr *VulkanRenderer) EndFrame(fr *frame.FrameResource) error {
	slot := fr.Index
	imageIndex := vr.context.ImageIndex
	commandBuffer := vr.context.GraphicsCommandBuffers[slot]

	vr.context.MainRenderpass.RenderpassEnd(commandBuffer)
	if err := commandBuffer.End(); err != nil {
		return err
	}

	// Mark the image as in use by this slot.
	vr.context.ImagesInFlight[imageIndex] = slot

	// Only reset the fence when work is actually submitted.
	fence := vr.context.InFlightFences[slot]
	if err := fence.FenceReset(vr.context); err != nil {
		return err
	}

	submitInfo := vk.SubmitInfo{
		SType: vk.StructureTypeSubmitInfo,
		// Command buffer(s) to be executed.
		CommandBufferCount: 1,
		PCommandBuffers:    []vk.CommandBuffer{commandBuffer.Handle},
		// The semaphore(s) to be signaled when the queue is complete.
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{vr.context.QueueCompleteSemaphores[imageIndex]},
		// Wait semaphore ensures that the operation cannot begin until the image is available.
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{vr.context.ImageAvailableSemaphores[slot]},
		// Colour attachment writes wait for the image; vertex work can start before it.
		PWaitDstStageMask: []vk.PipelineStageFlags{vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)},
	}

	device := vr.context.Device
	if err := vr.context.Locks.SafeQueueCall(uint32(device.GraphicsQueueIndex), func() error {
		if result := vk.QueueSubmit(device.GraphicsQueue, 1, []vk.SubmitInfo{submitInfo}, fence.Handle); result != vk.Success {
			return fmt.Errorf("vkQueueSubmit failed with result: %s", VulkanResultString(result))
		}
		return nil
	}); err != nil {
		return err
	}
	commandBuffer.UpdateSubmitted()

	// Give the image back to the swapchain.
	stale, err := vr.context.Swapchain.SwapchainPresent(vr.context, device.PresentQueue, vr.context.QueueCompleteSemaphores[imageIndex], imageIndex)
	if err != nil {
		return err
	}
	if stale {
		vr.markSwapchainStale()
	}
	return nil
}

func (vr *VulkanRenderer) WaitIdle() error {
	if result := vk.DeviceWaitIdle(vr.context.Device.LogicalDevice); result != vk.Success {
		return fmt.Errorf("vkDeviceWaitIdle failed: %s", VulkanResultString(result))
	}
	return nil
}

// markSwapchainStale schedules a swapchain rebuild at the current size for the next frame.
func (vr *VulkanRenderer) markSwapchainStale() {
	if vr.cachedFramebufferWidth == 0 && vr.cachedFramebufferHeight == 0 {
		vr.cachedFramebufferWidth = vr.context.FramebufferWidth
		vr.cachedFramebufferHeight = vr.context.FramebufferHeight
	}
	vr.context.FramebufferSizeGeneration++
}

func (vr *VulkanRenderer) createCommandBuffers() error {
	vr.context.GraphicsCommandBuffers = make([]*VulkanCommandBuffer, vr.framesInFlight)
	for i := range vr.context.GraphicsCommandBuffers {
		cb, err := NewVulkanCommandBuffer(vr.context, vr.context.Device.GraphicsCommandPool, true)
		if err != nil {
			return err
		}
		vr.context.GraphicsCommandBuffers[i] = cb
	}

	core.LogDebug("Vulkan command buffers created.")
	return nil
}

func (vr *VulkanRenderer) regenerateFramebuffers() error {
	swapchain := vr.context.Swapchain
	swapchain.Framebuffers = make([]*VulkanFramebuffer, swapchain.ImageCount)
	for i := range swapchain.Framebuffers {
		attachments := []vk.ImageView{
			swapchain.Views[i],
			swapchain.DepthAttachment.View,
		}
		fb, err := FramebufferCreate(vr.context, vr.context.MainRenderpass, swapchain.Extent.Width, swapchain.Extent.Height, attachments)
		if err != nil {
			return err
		}
		swapchain.Framebuffers[i] = fb
	}
	return nil
}

func (vr *VulkanRenderer) destroyFramebuffers() {
	for _, fb := range vr.context.Swapchain.Framebuffers {
		if fb != nil {
			fb.Destroy(vr.context)
		}
	}
	vr.context.Swapchain.Framebuffers = nil
}

// recreateSwapchain returns false without error when the window has no area to draw to.
func (vr *VulkanRenderer) recreateSwapchain() (bool, error) {
	// If already being recreated, do not try again.
	if vr.context.RecreatingSwapchain {
		core.LogDebug("recreateSwapchain called when already recreating. Booting.")
		return false, nil
	}

	// Detect if the window is too small to be drawn to
	if vr.cachedFramebufferWidth == 0 || vr.cachedFramebufferHeight == 0 {
		core.LogDebug("recreateSwapchain called when window is < 1 in a dimension. Booting.")
		return false, nil
	}

	// Mark as recreating if the dimensions are valid.
	vr.context.RecreatingSwapchain = true
	defer func() { vr.context.RecreatingSwapchain = false }()

	// Wait for any operations to complete.
	vk.DeviceWaitIdle(vr.context.Device.LogicalDevice)

	// Requery support
	if err := DeviceQuerySwapchainSupport(vr.context.Device.PhysicalDevice, vr.context.Surface, vr.context.Device.SwapchainSupport); err != nil {
		return false, err
	}
	DeviceDetectDepthFormat(vr.context.Device)

	vr.destroyFramebuffers()
	vr.destroyImageSyncObjects()

	sc, err := vr.context.Swapchain.SwapchainRecreate(vr.context, vr.cachedFramebufferWidth, vr.cachedFramebufferHeight)
	if err != nil {
		return false, err
	}
	vr.context.Swapchain = sc

	// Sync the framebuffer size with what the surface actually gave us.
	vr.context.FramebufferWidth = sc.Extent.Width
	vr.context.FramebufferHeight = sc.Extent.Height
	vr.cachedFramebufferWidth = 0
	vr.cachedFramebufferHeight = 0

	// Update framebuffer size generation.
	vr.context.FramebufferSizeLastGeneration = vr.context.FramebufferSizeGeneration

	vr.context.MainRenderpass.X = 0
	vr.context.MainRenderpass.Y = 0
	vr.context.MainRenderpass.W = float32(vr.context.FramebufferWidth)
	vr.context.MainRenderpass.H = float32(vr.context.FramebufferHeight)

	if err := vr.regenerateFramebuffers(); err != nil {
		return false, err
	}
	if err := vr.createImageSyncObjects(); err != nil {
		return false, err
	}
	return true, nil
}

func dbgCallbackFunc(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType, object uint64, location uint64, messageCode int32, pLayerPrefix string, pMessage string, pUserData unsafe.Pointer) vk.Bool32 {
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		core.LogError("ERROR: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit) != 0:
		core.LogWarn("WARNING: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportPerformanceWarningBit) != 0:
		core.LogWarn("PERFORMANCE WARNING: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	default:
		core.LogDebug("INFORMATION: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	}
	return vk.Bool32(vk.False)
}
