package metadata

import (
	"fmt"
	"strings"
)

/** @brief Determines face culling mode during rendering. */
type FaceCullMode int

const (
	/** @brief No faces are culled. */
	FaceCullModeNone FaceCullMode = 0x0
	/** @brief Only front faces are culled. */
	FaceCullModeFront FaceCullMode = 0x1
	/** @brief Only back faces are culled. */
	FaceCullModeBack FaceCullMode = 0x2
	/** @brief Both front and back faces are culled. */
	FaceCullModeFrontAndBack FaceCullMode = 0x3
)

func (m FaceCullMode) String() string {
	switch m {
	case FaceCullModeNone:
		return "none"
	case FaceCullModeFront:
		return "front"
	case FaceCullModeBack:
		return "back"
	case FaceCullModeFrontAndBack:
		return "front_and_back"
	}
	return fmt.Sprintf("cull(%d)", int(m))
}

// ParseFaceCullMode accepts none, front, back and front_and_back.
func ParseFaceCullMode(s string) (FaceCullMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return FaceCullModeNone, nil
	case "front":
		return FaceCullModeFront, nil
	case "back":
		return FaceCullModeBack, nil
	case "front_and_back", "both":
		return FaceCullModeFrontAndBack, nil
	}
	return FaceCullModeNone, fmt.Errorf("unknown cull mode %q", s)
}
