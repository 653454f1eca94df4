package castle

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/spaghettifunk/citadel/engine/core"
)

/**
 * @brief The base measurements every castle transform is derived from. All
 * lengths are in world units. The courtyard is a square of WallLength per
 * side centred on the origin, with the gate in the +Z wall.
 */
type Layout struct {
	WallLength    float32 `toml:"wall_length"`
	WallHeight    float32 `toml:"wall_height"`
	WallThickness float32 `toml:"wall_thickness"`
	GateGap       float32 `toml:"gate_gap"`
	GateHeight    float32 `toml:"gate_height"`
	ToothSize     float32 `toml:"tooth_size"`

	TowerRadius float32 `toml:"tower_radius"`
	TowerHeight float32 `toml:"tower_height"`
	RoofHeight  float32 `toml:"roof_height"`

	PlatformHeight float32 `toml:"platform_height"`
	PlatformMargin float32 `toml:"platform_margin"`
	RampLength     float32 `toml:"ramp_length"`

	FountainRadius       float32 `toml:"fountain_radius"`
	FountainTube         float32 `toml:"fountain_tube"`
	FountainColumnHeight float32 `toml:"fountain_column_height"`

	ButtressCount int     `toml:"buttress_count"`
	GroundSize    float32 `toml:"ground_size"`
	// Tessellation of every round shape.
	Slices uint32 `toml:"slices"`
	// Heading of the whole castle about Y, in degrees. Changing it only moves objects.
	Rotation float32 `toml:"rotation"`
}

func DefaultLayout() Layout {
	return Layout{
		WallLength:           20,
		WallHeight:           4,
		WallThickness:        1,
		GateGap:              4,
		GateHeight:           3,
		ToothSize:            0.5,
		TowerRadius:          1.5,
		TowerHeight:          7,
		RoofHeight:           3,
		PlatformHeight:       0.5,
		PlatformMargin:       4,
		RampLength:           5,
		FountainRadius:       2,
		FountainTube:         0.4,
		FountainColumnHeight: 2,
		ButtressCount:        3,
		GroundSize:           80,
		Slices:               20,
	}
}

const maxButtresses = 16

func (l Layout) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}
	for _, f := range []struct {
		name  string
		value float32
	}{
		{"wall_length", l.WallLength},
		{"wall_height", l.WallHeight},
		{"wall_thickness", l.WallThickness},
		{"gate_gap", l.GateGap},
		{"gate_height", l.GateHeight},
		{"tooth_size", l.ToothSize},
		{"tower_radius", l.TowerRadius},
		{"tower_height", l.TowerHeight},
		{"roof_height", l.RoofHeight},
		{"platform_height", l.PlatformHeight},
		{"platform_margin", l.PlatformMargin},
		{"ramp_length", l.RampLength},
		{"fountain_radius", l.FountainRadius},
		{"fountain_tube", l.FountainTube},
		{"fountain_column_height", l.FountainColumnHeight},
		{"ground_size", l.GroundSize},
	} {
		check(f.value > 0, "%s must be positive, got %v", f.name, f.value)
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", core.ErrInvalidConfig, errors.Join(errs...))
	}

	check(l.Slices >= 3, "slices must be at least 3, got %d", l.Slices)
	check(l.ButtressCount >= 0 && l.ButtressCount <= maxButtresses, "buttress_count must be between 0 and %d, got %d", maxButtresses, l.ButtressCount)
	check(l.WallThickness < l.WallLength/4, "wall_thickness %v is too large for wall_length %v", l.WallThickness, l.WallLength)
	check(2*l.TowerRadius < l.WallLength/2, "towers of radius %v do not fit on walls of length %v", l.TowerRadius, l.WallLength)
	check(l.GateGap < l.WallLength-2*l.TowerRadius, "gate_gap %v is wider than the wall between the towers", l.GateGap)
	check(l.GateHeight < l.WallHeight, "gate_height %v must be lower than wall_height %v", l.GateHeight, l.WallHeight)
	check(l.TowerHeight > l.WallHeight, "tower_height %v must exceed wall_height %v", l.TowerHeight, l.WallHeight)
	check(2*l.ToothSize <= l.WallLength/2-l.TowerRadius, "tooth_size %v leaves no room for crenellation", l.ToothSize)
	check(l.FountainTube < l.FountainRadius, "fountain_tube %v must be smaller than fountain_radius %v", l.FountainTube, l.FountainRadius)
	check(l.FountainRadius+l.FountainTube < l.WallLength/2-l.WallThickness, "fountain does not fit in the courtyard")
	check(l.GroundSize >= l.platformSize()+2*l.RampLength, "ground_size %v must cover the platform and ramp (%v)", l.GroundSize, l.platformSize()+2*l.RampLength)
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", core.ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

func (l Layout) platformSize() float32 {
	return l.WallLength + 2*l.PlatformMargin
}

// frontSegment is the length of each front wall piece beside the gate.
func (l Layout) frontSegment() float32 {
	return (l.WallLength - l.GateGap) * 0.5
}

// DecodeLayout reads the [castle] table of a configuration document over the defaults.
// Other tables are ignored.
func DecodeLayout(data []byte) (Layout, error) {
	doc := struct {
		Castle Layout `toml:"castle"`
	}{Castle: DefaultLayout()}
	if err := toml.NewDecoder(bytes.NewReader(data)).Decode(&doc); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return Layout{}, fmt.Errorf("%w: line %d column %d: %s", core.ErrInvalidConfig, row, col, derr.Error())
		}
		return Layout{}, fmt.Errorf("%w: %w", core.ErrInvalidConfig, err)
	}
	if err := doc.Castle.Validate(); err != nil {
		return Layout{}, err
	}
	return doc.Castle, nil
}

func LoadLayout(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("read layout: %w", err)
	}
	l, err := DecodeLayout(data)
	if err != nil {
		return Layout{}, fmt.Errorf("%s: %w", path, err)
	}
	return l, nil
}
