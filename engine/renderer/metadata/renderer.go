package metadata

import (
	"github.com/spaghettifunk/citadel/engine/math"
)

/**
 * @brief Everything a renderer backend needs to come up. Shader code is
 * SPIR-V, already loaded by the asset manager.
 */
type RendererBackendConfig struct {
	/** @brief The name of the application */
	ApplicationName string
	/** @brief The initial framebuffer size. */
	Width  uint32
	Height uint32
	/** @brief How many frames the CPU may record ahead of the GPU. */
	FramesInFlight int
	/** @brief Present with FIFO instead of mailbox/immediate. */
	VSync bool
	/** @brief Draw triangle edges only. */
	Wireframe bool
	CullMode  FaceCullMode
	/** @brief Colour the render target is cleared to each frame. */
	ClearColour math.Vec4
	/** @brief Enable the API validation layers. */
	Validation bool

	VertexShader   []uint32
	FragmentShader []uint32
}

// Backend-independent names for the two stages the castle pipeline uses.
const (
	ShaderStageVertex   = "vertex"
	ShaderStageFragment = "fragment"
)
