package geometry

import gomath "math"

func sin(x float32) float32 { return float32(gomath.Sin(float64(x))) }
func cos(x float32) float32 { return float32(gomath.Cos(float64(x))) }
